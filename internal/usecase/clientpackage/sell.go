package clientpackage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// PaymentLinker gera o link de cobrança da venda (colaborador
// externo; a implementação Mercado Pago vive em infra/payment)
type PaymentLinker interface {
	CreateLink(ctx context.Context, title string, amount float64, reference string) (string, error)
}

// ======================================================
// INPUT
// ======================================================

type SellPackageInput struct {
	ClinicID uint
	ClientID uint

	// Venda de catálogo: id do pacote; os serviços/quantidades são
	// congelados em snapshot no ato
	CatalogPackageID *uint

	// Venda personalizada: lista própria de serviços, sem lastro
	// de catálogo
	CustomServices []ledger.PackageService
	CustomPrice    float64
	CustomName     string

	GeneratePaymentLink bool
}

// ======================================================
// USE CASE
// ======================================================

type SellPackage struct {
	repo     domain.Repository
	payments PaymentLinker
	audit    *audit.Dispatcher
	clock    clock.Clock
}

func NewSellPackage(
	repo domain.Repository,
	payments PaymentLinker,
	audit *audit.Dispatcher,
	clk clock.Clock,
) *SellPackage {
	return &SellPackage{
		repo:     repo,
		payments: payments,
		audit:    audit,
		clock:    clk,
	}
}

func (uc *SellPackage) Execute(
	ctx context.Context,
	in SellPackageInput,
) (*models.ClientPackage, error) {

	if in.ClientID == 0 {
		return nil, httperr.ErrValidation("client")
	}

	if _, err := uc.repo.GetClient(ctx, in.ClinicID, in.ClientID); err != nil {
		return nil, httperr.ErrNotFound("client", in.ClientID)
	}

	pkg := &models.ClientPackage{
		ClinicID:       in.ClinicID,
		ClientID:       in.ClientID,
		Status:         ledger.PackageActive,
		SessionHistory: datatypes.JSON([]byte("[]")),
	}

	var title string
	var price float64

	switch {
	case in.CatalogPackageID != nil:
		catalog, err := uc.repo.GetCatalogPackage(ctx, in.ClinicID, *in.CatalogPackageID)
		if err != nil {
			return nil, httperr.ErrNotFound("catalog_package", *in.CatalogPackageID)
		}

		var services []ledger.PackageService
		if len(catalog.Services) > 0 {
			if err := json.Unmarshal(catalog.Services, &services); err != nil {
				return nil, err
			}
		}
		if len(services) == 0 {
			return nil, httperr.ErrConsistency("catalog package has no services")
		}

		// O snapshot congela o catálogo no ato da venda: edições e
		// exclusões posteriores não mudam o que o cliente comprou
		snap, err := json.Marshal(ledger.Snapshot{Services: services})
		if err != nil {
			return nil, err
		}

		pkg.PackageID = in.CatalogPackageID
		pkg.PackageSnapshot = datatypes.JSON(snap)
		pkg.TotalSessions = totalQuantity(services)
		pkg.ReferenceCode = uuid.NewString()

		if catalog.ValidityDays > 0 {
			exp := uc.clock.Now().AddDate(0, 0, catalog.ValidityDays)
			pkg.ExpiresAt = &exp
		}

		title = catalog.Name
		price = catalog.Price

	case len(in.CustomServices) > 0:
		own, err := json.Marshal(in.CustomServices)
		if err != nil {
			return nil, err
		}

		pkg.IsCustomPackage = true
		pkg.Services = datatypes.JSON(own)
		pkg.TotalSessions = totalQuantity(in.CustomServices)
		pkg.ReferenceCode = "custom_" + uuid.NewString()

		title = in.CustomName
		if title == "" {
			title = "Pacote personalizado"
		}
		price = in.CustomPrice

	default:
		return nil, httperr.ErrValidation("package")
	}

	if in.GeneratePaymentLink && uc.payments != nil {
		link, err := uc.payments.CreateLink(ctx, title, price, pkg.ReferenceCode)
		if err != nil {
			return nil, err
		}
		pkg.PaymentLink = link
	}

	if err := uc.repo.CreateClientPackage(ctx, pkg); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ClinicID: in.ClinicID,
		Action:   "package_sold",
		Entity:   "client_package",
		EntityID: &pkg.ID,
	})

	return pkg, nil
}

func totalQuantity(services []ledger.PackageService) int {
	total := 0
	for _, s := range services {
		total += s.Quantity
	}
	return total
}

// ======================================================
// Tempo de expiração / esgotamento
// ======================================================

// RefreshOnLoad aplica a checagem oportunista de expiração e
// esgotamento a um pacote recém carregado, persistindo quando o
// status virou
func RefreshOnLoad(
	ctx context.Context,
	repo domain.Repository,
	pkg *models.ClientPackage,
	now time.Time,
) error {

	changed, err := ledger.RefreshStatus(pkg, now)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	return repo.UpdateClientPackage(ctx, pkg)
}
