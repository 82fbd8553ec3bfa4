package scheduling

import (
	"context"
	"time"

	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

type Repository interface {
	// -------- Clinic --------
	GetClinicByID(
		ctx context.Context,
		id uint,
	) (*models.Clinic, error)

	// -------- People / catalog --------
	GetEmployee(
		ctx context.Context,
		clinicID uint,
		employeeID uint,
	) (*models.User, error)

	GetClient(
		ctx context.Context,
		clinicID uint,
		clientID uint,
	) (*models.Client, error)

	GetService(
		ctx context.Context,
		clinicID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		clinicID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	DeleteAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsForDay(
		ctx context.Context,
		employeeID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		employeeID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Client packages --------
	GetClientPackage(
		ctx context.Context,
		clinicID uint,
		id uint,
	) (*models.ClientPackage, error)

	ListActiveClientPackages(
		ctx context.Context,
		clientID uint,
	) ([]models.ClientPackage, error)

	GetCatalogPackage(
		ctx context.Context,
		clinicID uint,
		id uint,
	) (*models.CatalogPackage, error)

	ListCatalogPackages(
		ctx context.Context,
		clinicID uint,
	) ([]models.CatalogPackage, error)

	CreateClientPackage(
		ctx context.Context,
		pkg *models.ClientPackage,
	) error

	UpdateClientPackage(
		ctx context.Context,
		pkg *models.ClientPackage,
	) error

	// -------- Escritas acopladas (status + ledger) --------
	// A transição de status e a escrita do ledger vão na mesma
	// transação: falha no ledger derruba a transição inteira.
	UpdateAppointmentAndPackage(
		ctx context.Context,
		ap *models.Appointment,
		pkg *models.ClientPackage,
	) error

	DeleteAppointmentAndPackage(
		ctx context.Context,
		ap *models.Appointment,
		pkg *models.ClientPackage,
	) error

	// -------- Pending services --------
	GetPendingService(
		ctx context.Context,
		id uint,
	) (*models.PendingService, error)

	UpdatePendingService(
		ctx context.Context,
		id uint,
		status string,
		appointmentID *uint,
	) error
}
