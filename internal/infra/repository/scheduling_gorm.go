package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

type SchedulingGormRepository struct {
	db *gorm.DB
}

func NewSchedulingGormRepository(db *gorm.DB) *SchedulingGormRepository {
	return &SchedulingGormRepository{db: db}
}

// --------------------------------------------------
// Clinic
// --------------------------------------------------

func (r *SchedulingGormRepository) GetClinicByID(
	ctx context.Context,
	id uint,
) (*models.Clinic, error) {

	var clinic models.Clinic
	if err := r.db.WithContext(ctx).First(&clinic, id).Error; err != nil {
		return nil, err
	}
	return &clinic, nil
}

// --------------------------------------------------
// People / catalog
// --------------------------------------------------

func (r *SchedulingGormRepository) GetEmployee(
	ctx context.Context,
	clinicID uint,
	employeeID uint,
) (*models.User, error) {

	var employee models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", employeeID, clinicID).
		First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *SchedulingGormRepository) GetClient(
	ctx context.Context,
	clinicID uint,
	clientID uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", clientID, clinicID).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *SchedulingGormRepository) GetService(
	ctx context.Context,
	clinicID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", serviceID, clinicID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *SchedulingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *SchedulingGormRepository) GetAppointment(
	ctx context.Context,
	clinicID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", appointmentID, clinicID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *SchedulingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *SchedulingGormRepository) DeleteAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Delete(ap).Error
}

func (r *SchedulingGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	employeeID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"employee_id = ? AND status <> 'cancelled' AND date >= ? AND date < ?",
			employeeID, start, end,
		).
		Order("date ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *SchedulingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	employeeID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"employee_id = ? AND date >= ? AND date < ?",
			employeeID,
			start,
			end,
		).
		Order("date ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Client packages
// --------------------------------------------------

func (r *SchedulingGormRepository) GetClientPackage(
	ctx context.Context,
	clinicID uint,
	id uint,
) (*models.ClientPackage, error) {

	var pkg models.ClientPackage
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *SchedulingGormRepository) ListActiveClientPackages(
	ctx context.Context,
	clientID uint,
) ([]models.ClientPackage, error) {

	var pkgs []models.ClientPackage
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND status = 'active'", clientID).
		Order("created_at ASC").
		Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *SchedulingGormRepository) GetCatalogPackage(
	ctx context.Context,
	clinicID uint,
	id uint,
) (*models.CatalogPackage, error) {

	var pkg models.CatalogPackage
	if err := r.db.WithContext(ctx).
		Where("id = ? AND clinic_id = ?", id, clinicID).
		First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *SchedulingGormRepository) ListCatalogPackages(
	ctx context.Context,
	clinicID uint,
) ([]models.CatalogPackage, error) {

	var pkgs []models.CatalogPackage
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *SchedulingGormRepository) CreateClientPackage(
	ctx context.Context,
	pkg *models.ClientPackage,
) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *SchedulingGormRepository) UpdateClientPackage(
	ctx context.Context,
	pkg *models.ClientPackage,
) error {
	return r.db.WithContext(ctx).Save(pkg).Error
}

// --------------------------------------------------
// Escritas acopladas (status + ledger)
// --------------------------------------------------

func (r *SchedulingGormRepository) UpdateAppointmentAndPackage(
	ctx context.Context,
	ap *models.Appointment,
	pkg *models.ClientPackage,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ap).Error; err != nil {
			return err
		}
		if pkg != nil {
			if err := tx.Save(pkg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SchedulingGormRepository) DeleteAppointmentAndPackage(
	ctx context.Context,
	ap *models.Appointment,
	pkg *models.ClientPackage,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(ap).Error; err != nil {
			return err
		}
		if pkg != nil {
			if err := tx.Save(pkg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// --------------------------------------------------
// Pending services
// --------------------------------------------------

func (r *SchedulingGormRepository) GetPendingService(
	ctx context.Context,
	id uint,
) (*models.PendingService, error) {

	var pending models.PendingService
	if err := r.db.WithContext(ctx).First(&pending, id).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *SchedulingGormRepository) UpdatePendingService(
	ctx context.Context,
	id uint,
	status string,
	appointmentID *uint,
) error {

	return r.db.WithContext(ctx).
		Model(&models.PendingService{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"appointment_id": appointmentID,
		}).Error
}

// Compile-time check
var _ domain.Repository = (*SchedulingGormRepository)(nil)
