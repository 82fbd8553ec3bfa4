package appointment

import (
	"context"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/cache"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// TransitionAppointment conduz scheduled→completed e
// scheduled→cancelled, mantendo ledger e serviço pendente em sincronia
// com o status do agendamento, o contrato central do motor.
type TransitionAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	cache *cache.AvailabilityCache
	clock clock.Clock
}

func NewTransitionAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache *cache.AvailabilityCache,
	clk clock.Clock,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:  repo,
		audit: audit,
		cache: cache,
		clock: clk,
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	clinicID uint,
	appointmentID uint,
	newStatus domain.Status,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, clinicID, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment", appointmentID)
	}

	now := uc.clock.Now()

	switch newStatus {
	case domain.StatusCompleted:
		err = domain.Complete(ap, now)
	case domain.StatusCancelled:
		err = domain.Cancel(ap, now)
	default:
		err = httperr.ErrBusiness("invalid_status")
	}
	if err != nil {
		return nil, err
	}

	// Pacote vinculado: escolhido na criação, ou resolvido agora
	// entre os pacotes ativos do cliente que cobrem o serviço
	pkg, err := uc.resolvePackage(ctx, clinicID, ap)
	if err != nil {
		return nil, err
	}

	if pkg != nil {
		catalog, err := uc.repo.ListCatalogPackages(ctx, clinicID)
		if err != nil {
			return nil, err
		}

		// Falha aqui aborta a transição antes de qualquer escrita
		if err := ledger.RecordStatus(pkg, catalog, ap, string(newStatus)); err != nil {
			return nil, err
		}

		if _, err := ledger.RefreshStatus(pkg, now); err != nil {
			return nil, err
		}

		// Status e ledger na mesma transação
		if err := uc.repo.UpdateAppointmentAndPackage(ctx, ap, pkg); err != nil {
			return nil, err
		}
	} else if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	if ap.PendingServiceID != nil {
		pending := "scheduled"
		if newStatus == domain.StatusCompleted {
			pending = "completed"
		}
		if err := uc.repo.UpdatePendingService(ctx, *ap.PendingServiceID, pending, &ap.ID); err != nil {
			return nil, err
		}
	}

	uc.cache.Invalidate(ctx, ap.EmployeeID, ap.Date.Format("2006-01-02"))

	uc.audit.Dispatch(audit.Event{
		ClinicID: clinicID,
		Action:   "appointment_" + string(newStatus),
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

func (uc *TransitionAppointment) resolvePackage(
	ctx context.Context,
	clinicID uint,
	ap *models.Appointment,
) (*models.ClientPackage, error) {

	if ap.ClientPackageID != nil {
		pkg, err := uc.repo.GetClientPackage(ctx, clinicID, *ap.ClientPackageID)
		if err != nil {
			return nil, notFoundOr(err, "client_package", *ap.ClientPackageID)
		}
		return pkg, nil
	}

	pkgs, err := uc.repo.ListActiveClientPackages(ctx, ap.ClientID)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, nil
	}

	catalog, err := uc.repo.ListCatalogPackages(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	pkg, _ := ledger.ResolveApplicablePackage(pkgs, catalog, ap.ServiceID)
	return pkg, nil
}
