package appointment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/cache"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ClinicID   uint
	EmployeeID uint
	ClientID   uint
	ServiceID  uint

	Date  string // "2006-01-02"
	Time  string // "15:04"
	Notes string

	DependentIndex *int

	// Consumir contra este pacote do cliente; nulo = avulso
	ClientPackageID *uint

	// Registro de serviço pendente a marcar como agendado
	PendingServiceID *uint

	// Confirmação explícita de encaixe em slot ocupado
	OverrideConflict bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	cache *cache.AvailabilityCache
	clock clock.Clock
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache *cache.AvailabilityCache,
	clk clock.Clock,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
		cache: cache,
		clock: clk,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Campos obrigatórios
	// --------------------------------------------------
	if in.ClientID == 0 {
		return nil, httperr.ErrValidation("client")
	}
	if in.EmployeeID == 0 {
		return nil, httperr.ErrValidation("employee")
	}
	if in.ServiceID == 0 {
		return nil, httperr.ErrValidation("service")
	}

	// --------------------------------------------------
	// 2. Data/hora em relógio de parede local
	// --------------------------------------------------
	date, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		time.Local,
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 3. Referências
	// --------------------------------------------------
	if _, err := uc.repo.GetEmployee(ctx, in.ClinicID, in.EmployeeID); err != nil {
		return nil, notFoundOr(err, "employee", in.EmployeeID)
	}
	if _, err := uc.repo.GetClient(ctx, in.ClinicID, in.ClientID); err != nil {
		return nil, notFoundOr(err, "client", in.ClientID)
	}
	if _, err := uc.repo.GetService(ctx, in.ClinicID, in.ServiceID); err != nil {
		return nil, notFoundOr(err, "service", in.ServiceID)
	}

	// --------------------------------------------------
	// 4. Conflito de slot: avisa, não bloqueia
	// --------------------------------------------------
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	existing, err := uc.repo.ListAppointmentsForDay(
		ctx,
		in.EmployeeID,
		dayStart,
		dayStart.Add(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	report := domain.CheckConflict(in.EmployeeID, date, in.Time, existing)
	if report.Occupied && !in.OverrideConflict {
		return nil, httperr.ErrConflict(report.Conflicting)
	}

	// --------------------------------------------------
	// 5. Criação do agendamento
	// --------------------------------------------------
	ap := &models.Appointment{
		ClinicID:         in.ClinicID,
		EmployeeID:       in.EmployeeID,
		ClientID:         in.ClientID,
		ServiceID:        in.ServiceID,
		Date:             date,
		Status:           string(domain.InitialStatus()),
		Notes:            in.Notes,
		DependentIndex:   in.DependentIndex,
		ClientPackageID:  in.ClientPackageID,
		PendingServiceID: in.PendingServiceID,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6. Ledger do pacote (agendar não consome sessão)
	// --------------------------------------------------
	if in.ClientPackageID != nil {
		if err := uc.recordScheduled(ctx, in.ClinicID, *in.ClientPackageID, ap); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 7. Serviço pendente vira "scheduled"
	// --------------------------------------------------
	if in.PendingServiceID != nil {
		if err := uc.repo.UpdatePendingService(
			ctx,
			*in.PendingServiceID,
			"scheduled",
			&ap.ID,
		); err != nil {
			return nil, err
		}
	}

	uc.cache.Invalidate(ctx, in.EmployeeID, in.Date)

	uc.audit.Dispatch(audit.Event{
		ClinicID: in.ClinicID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

func (uc *CreateAppointment) recordScheduled(
	ctx context.Context,
	clinicID uint,
	packageID uint,
	ap *models.Appointment,
) error {

	pkg, err := uc.repo.GetClientPackage(ctx, clinicID, packageID)
	if err != nil {
		return notFoundOr(err, "client_package", packageID)
	}

	if err := ledger.RecordScheduled(pkg, ap); err != nil {
		return err
	}

	return uc.repo.UpdateClientPackage(ctx, pkg)
}

// notFoundOr traduz record-not-found do store no erro de domínio
func notFoundOr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(entity, id)
	}
	return err
}
