package clientpackage

import (
	"context"

	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

type PackageBalance struct {
	Package   *models.ClientPackage `json:"package"`
	Source    string                `json:"source"`
	Remaining int                   `json:"remaining"`
}

// ResolveBalance responde "qual pacote cobre este serviço e quanto
// resta nele", a consulta feita pela tela de agendamento antes de
// vincular o atendimento a um pacote
type ResolveBalance struct {
	repo  domain.Repository
	clock clock.Clock
}

func NewResolveBalance(repo domain.Repository, clk clock.Clock) *ResolveBalance {
	return &ResolveBalance{repo: repo, clock: clk}
}

func (uc *ResolveBalance) Execute(
	ctx context.Context,
	clinicID uint,
	clientID uint,
	serviceID uint,
) (*PackageBalance, error) {

	pkgs, err := uc.repo.ListActiveClientPackages(ctx, clientID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	for i := range pkgs {
		if err := RefreshOnLoad(ctx, uc.repo, &pkgs[i], now); err != nil {
			return nil, err
		}
	}

	catalog, err := uc.repo.ListCatalogPackages(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	pkg, source := ledger.ResolveApplicablePackage(pkgs, catalog, serviceID)
	if pkg == nil {
		return nil, nil
	}

	remaining, err := ledger.RemainingSessions(pkg, catalog, serviceID)
	if err != nil {
		return nil, err
	}

	return &PackageBalance{
		Package:   pkg,
		Source:    source.String(),
		Remaining: remaining,
	}, nil
}

// RemainingForPackage calcula o saldo de um serviço em um pacote
// específico
func (uc *ResolveBalance) RemainingForPackage(
	ctx context.Context,
	clinicID uint,
	packageID uint,
	serviceID uint,
) (int, error) {

	pkg, err := uc.repo.GetClientPackage(ctx, clinicID, packageID)
	if err != nil {
		return 0, httperr.ErrNotFound("client_package", packageID)
	}

	catalog, err := uc.repo.ListCatalogPackages(ctx, clinicID)
	if err != nil {
		return 0, err
	}

	return ledger.RemainingSessions(pkg, catalog, serviceID)
}
