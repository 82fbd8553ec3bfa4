package appointment

import (
	"context"
	"time"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/cache"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

type RescheduleInput struct {
	Date  string // "2006-01-02"
	Time  string // "15:04"
	Notes string

	OverrideConflict bool
}

// RescheduleAppointment nunca reaproveita o registro original: cria
// um agendamento novo apontando para ele via OriginalAppointmentID.
// Um original ainda agendado é cancelado como parte da operação; um
// já cancelado simplesmente ganha o sucessor.
type RescheduleAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	cache *cache.AvailabilityCache
	clock clock.Clock
}

func NewRescheduleAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache *cache.AvailabilityCache,
	clk clock.Clock,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:  repo,
		audit: audit,
		cache: cache,
		clock: clk,
	}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	clinicID uint,
	originalAppointmentID uint,
	in RescheduleInput,
) (*models.Appointment, error) {

	orig, err := uc.repo.GetAppointment(ctx, clinicID, originalAppointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment", originalAppointmentID)
	}

	if err := domain.CanReschedule(domain.Status(orig.Status)); err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		time.Local,
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	existing, err := uc.repo.ListAppointmentsForDay(
		ctx,
		orig.EmployeeID,
		dayStart,
		dayStart.Add(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	report := domain.CheckConflict(orig.EmployeeID, date, in.Time, existing)
	if report.Occupied && !in.OverrideConflict {
		return nil, httperr.ErrConflict(report.Conflicting)
	}

	now := uc.clock.Now()

	newAp := domain.NewFromReschedule(orig, date, in.Notes)
	if err := uc.repo.CreateAppointment(ctx, newAp); err != nil {
		return nil, err
	}

	if orig.Status == string(domain.StatusScheduled) {
		if err := domain.Cancel(orig, now); err != nil {
			return nil, err
		}
	}

	// A migração do ledger é uma mutação única do histórico: a
	// entrada do original sai e a do novo entra na mesma escrita,
	// sem janela em que a sessão suma ou duplique.
	var pkg *models.ClientPackage
	if orig.ClientPackageID != nil {
		pkg, err = uc.repo.GetClientPackage(ctx, clinicID, *orig.ClientPackageID)
		if err != nil {
			return nil, notFoundOr(err, "client_package", *orig.ClientPackageID)
		}

		if err := ledger.MigrateOnReschedule(pkg, orig.ID, newAp); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.UpdateAppointmentAndPackage(ctx, orig, pkg); err != nil {
		return nil, err
	}

	if orig.PendingServiceID != nil {
		if err := uc.repo.UpdatePendingService(
			ctx,
			*orig.PendingServiceID,
			"scheduled",
			&newAp.ID,
		); err != nil {
			return nil, err
		}
	}

	uc.cache.Invalidate(ctx, orig.EmployeeID, orig.Date.Format("2006-01-02"))
	uc.cache.Invalidate(ctx, newAp.EmployeeID, in.Date)

	uc.audit.Dispatch(audit.Event{
		ClinicID: clinicID,
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &newAp.ID,
		Metadata: map[string]uint{"original_appointment_id": orig.ID},
	})

	return newAp, nil
}
