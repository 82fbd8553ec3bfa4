package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	"github.com/VitalisClinicas/clinic-scheduler/internal/middleware"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
	ucPackage "github.com/VitalisClinicas/clinic-scheduler/internal/usecase/clientpackage"
)

// ======================================================
// HANDLER
// ======================================================

type PackageHandler struct {
	db        *gorm.DB
	sellUC    *ucPackage.SellPackage
	balanceUC *ucPackage.ResolveBalance
	correctUC *ucPackage.CorrectHistory
}

func NewPackageHandler(
	db *gorm.DB,
	sellUC *ucPackage.SellPackage,
	balanceUC *ucPackage.ResolveBalance,
	correctUC *ucPackage.CorrectHistory,
) *PackageHandler {
	return &PackageHandler{
		db:        db,
		sellUC:    sellUC,
		balanceUC: balanceUC,
		correctUC: correctUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CatalogPackageRequest struct {
	Name         string                  `json:"name" binding:"required"`
	Description  string                  `json:"description"`
	Price        float64                 `json:"price"`
	ValidityDays int                     `json:"validity_days"`
	Services     []ledger.PackageService `json:"services" binding:"required"`
}

type UpdateCatalogPackageRequest struct {
	Name         *string                 `json:"name"`
	Description  *string                 `json:"description"`
	Price        *float64                `json:"price"`
	ValidityDays *int                    `json:"validity_days"`
	Active       *bool                   `json:"active"`
	Services     []ledger.PackageService `json:"services"`
}

type SellPackageRequest struct {
	ClientID         uint  `json:"client_id" binding:"required"`
	CatalogPackageID *uint `json:"catalog_package_id"`

	CustomServices []ledger.PackageService `json:"custom_services"`
	CustomPrice    float64                 `json:"custom_price"`
	CustomName     string                  `json:"custom_name"`

	GeneratePaymentLink bool `json:"generate_payment_link"`
}

// ======================================================
// CATALOG PACKAGES
// ======================================================

func (h *PackageHandler) ListCatalog(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var packages []models.CatalogPackage
	q := h.db.Where("clinic_id = ?", clinicID)

	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	if err := q.Order("name asc").Find(&packages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_packages"})
		return
	}

	c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) CreateCatalog(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var req CatalogPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if len(req.Services) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "services_required"})
		return
	}

	services, err := marshalServices(req.Services)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_services"})
		return
	}

	pkg := models.CatalogPackage{
		ClinicID:     clinicID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		ValidityDays: req.ValidityDays,
		Active:       true,
		Services:     services,
	}

	if err := h.db.Create(&pkg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_package"})
		return
	}

	c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) UpdateCatalog(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return
	}

	var pkg models.CatalogPackage
	if err := h.db.Where("id = ? AND clinic_id = ?", id, clinicID).First(&pkg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "package_not_found"})
		return
	}

	var req UpdateCatalogPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.Description != nil {
		pkg.Description = *req.Description
	}
	if req.Price != nil {
		pkg.Price = *req.Price
	}
	if req.ValidityDays != nil {
		pkg.ValidityDays = *req.ValidityDays
	}
	if req.Active != nil {
		pkg.Active = *req.Active
	}
	if req.Services != nil {
		services, err := marshalServices(req.Services)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_services"})
			return
		}
		pkg.Services = services
	}

	// Pacotes já vendidos carregam snapshot próprio; editar o
	// catálogo não altera o que o cliente comprou
	if err := h.db.Save(&pkg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_package"})
		return
	}

	c.JSON(http.StatusOK, pkg)
}

// ======================================================
// CLIENT PACKAGES (sale + balance + ledger correction)
// ======================================================

func (h *PackageHandler) Sell(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var req SellPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	pkg, err := h.sellUC.Execute(c.Request.Context(), ucPackage.SellPackageInput{
		ClinicID:            clinicID,
		ClientID:            req.ClientID,
		CatalogPackageID:    req.CatalogPackageID,
		CustomServices:      req.CustomServices,
		CustomPrice:         req.CustomPrice,
		CustomName:          req.CustomName,
		GeneratePaymentLink: req.GeneratePaymentLink,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) ListByClient(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	clientID, err := strconv.ParseUint(c.Query("client_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_client_id"})
		return
	}

	q := h.db.Where("clinic_id = ? AND client_id = ?", clinicID, clientID)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var packages []models.ClientPackage
	if err := q.Order("created_at desc").Find(&packages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_packages"})
		return
	}

	c.JSON(http.StatusOK, packages)
}

// Balance resolve qual pacote cobre o serviço informado e quantas
// sessões restam nele
func (h *PackageHandler) Balance(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	clientID, err := strconv.ParseUint(c.Query("client_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_client_id"})
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_service_id"})
		return
	}

	balance, err := h.balanceUC.Execute(c.Request.Context(), clinicID, uint(clientID), uint(serviceID))
	if err != nil {
		writeEngineError(c, err)
		return
	}

	if balance == nil {
		c.JSON(http.StatusOK, gin.H{"covered": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"covered":   true,
		"package":   balance.Package,
		"source":    balance.Source,
		"remaining": balance.Remaining,
	})
}

func (h *PackageHandler) Remaining(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	packageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_service_id"})
		return
	}

	remaining, err := h.balanceUC.RemainingForPackage(
		c.Request.Context(), clinicID, uint(packageID), uint(serviceID))
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}

func (h *PackageHandler) RemoveHistoryEntry(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	packageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_index"})
		return
	}

	pkg, err := h.correctUC.Execute(c.Request.Context(), clinicID, uint(packageID), index)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg)
}

func marshalServices(services []ledger.PackageService) (datatypes.JSON, error) {
	raw, err := json.Marshal(services)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
