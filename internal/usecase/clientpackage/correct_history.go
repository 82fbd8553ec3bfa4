package clientpackage

import (
	"context"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// CorrectHistory remove uma entrada do ledger por posição: ajuste
// manual de contabilidade, usado em conjunto com exclusões
// administrativas de agendamento
type CorrectHistory struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCorrectHistory(repo domain.Repository, audit *audit.Dispatcher) *CorrectHistory {
	return &CorrectHistory{repo: repo, audit: audit}
}

func (uc *CorrectHistory) Execute(
	ctx context.Context,
	clinicID uint,
	packageID uint,
	index int,
) (*models.ClientPackage, error) {

	pkg, err := uc.repo.GetClientPackage(ctx, clinicID, packageID)
	if err != nil {
		return nil, httperr.ErrNotFound("client_package", packageID)
	}

	if err := ledger.RemoveHistoryEntry(pkg, index); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateClientPackage(ctx, pkg); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ClinicID: clinicID,
		Action:   "package_history_corrected",
		Entity:   "client_package",
		EntityID: &pkg.ID,
		Metadata: map[string]int{"removed_index": index},
	})

	return pkg, nil
}
