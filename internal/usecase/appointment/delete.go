package appointment

import (
	"context"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/cache"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// DeletePolicy decide o que acontece com o ledger quando um
// agendamento é apagado. Exclusão é correção administrativa, não
// cancelamento; por padrão a sessão consumida fica como está e a
// correção do pacote é manual.
type DeletePolicy string

const (
	// DeleteKeepLedger mantém a entrada do histórico (padrão)
	DeleteKeepLedger DeletePolicy = "keep"

	// DeleteRefundSession remove a entrada e devolve a sessão
	DeleteRefundSession DeletePolicy = "refund"
)

type DeleteAppointment struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	cache  *cache.AvailabilityCache
	policy DeletePolicy
}

func NewDeleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	cache *cache.AvailabilityCache,
	policy DeletePolicy,
) *DeleteAppointment {
	if policy != DeleteRefundSession {
		policy = DeleteKeepLedger
	}

	return &DeleteAppointment{
		repo:   repo,
		audit:  audit,
		cache:  cache,
		policy: policy,
	}
}

func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	clinicID uint,
	appointmentID uint,
) error {

	ap, err := uc.repo.GetAppointment(ctx, clinicID, appointmentID)
	if err != nil {
		return notFoundOr(err, "appointment", appointmentID)
	}

	var pkg *models.ClientPackage
	if uc.policy == DeleteRefundSession && ap.ClientPackageID != nil {
		pkg, err = uc.repo.GetClientPackage(ctx, clinicID, *ap.ClientPackageID)
		if err != nil {
			return notFoundOr(err, "client_package", *ap.ClientPackageID)
		}

		removed, err := ledger.RemoveAppointmentEntry(pkg, ap.ID)
		if err != nil {
			return err
		}
		if !removed {
			pkg = nil
		}
	}

	if err := uc.repo.DeleteAppointmentAndPackage(ctx, ap, pkg); err != nil {
		return err
	}

	// O registro pendente volta para a fila em vez de apontar para
	// um agendamento que não existe mais
	if ap.PendingServiceID != nil {
		if err := uc.repo.UpdatePendingService(ctx, *ap.PendingServiceID, "pending", nil); err != nil {
			return err
		}
	}

	uc.cache.Invalidate(ctx, ap.EmployeeID, ap.Date.Format("2006-01-02"))

	uc.audit.Dispatch(audit.Event{
		ClinicID: clinicID,
		Action:   "appointment_deleted",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return nil
}
