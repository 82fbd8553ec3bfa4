package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// ===============================
// Package Status
// ===============================

const (
	PackageActive    = "active"
	PackageFinished  = "finished"
	PackageExpired   = "expired"
	PackageCancelled = "cancelled"
)

// ===============================
// Package Source
// ===============================

// PackageSource identifica de onde veio a lista de serviços que
// tornou o pacote aplicável. A precedência é fixa: serviços próprios
// (pacote personalizado) → snapshot da venda → consulta ao catálogo.
// Assim o dado autoritativo de um pacote personalizado nunca é
// atropelado por um registro de catálogo defasado.
type PackageSource int

const (
	SourceNone PackageSource = iota
	SourceOwnServices
	SourceSnapshot
	SourceCatalog
)

func (s PackageSource) String() string {
	switch s {
	case SourceOwnServices:
		return "own_services"
	case SourceSnapshot:
		return "snapshot"
	case SourceCatalog:
		return "catalog"
	}
	return "none"
}

// ===============================
// Resolução de pacote
// ===============================

func parseServices(raw []byte) []PackageService {
	if len(raw) == 0 {
		return nil
	}
	var out []PackageService
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func parseSnapshot(raw []byte) *Snapshot {
	if len(raw) == 0 {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return &snap
}

func findCatalog(catalog []models.CatalogPackage, id uint) *models.CatalogPackage {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}

func quantityOf(services []PackageService, serviceID uint) (int, bool) {
	for _, s := range services {
		if s.ServiceID == serviceID {
			return s.Quantity, true
		}
	}
	return 0, false
}

// sourceFor resolve a origem da lista de serviços de um pacote para
// um serviço, na ordem de precedência fixa. Catálogo apagado sem
// snapshot degrada para "nenhuma origem" em vez de falhar.
func sourceFor(
	pkg *models.ClientPackage,
	catalog []models.CatalogPackage,
	serviceID uint,
) (PackageSource, int) {

	if qty, ok := quantityOf(parseServices(pkg.Services), serviceID); ok {
		return SourceOwnServices, qty
	}

	if snap := parseSnapshot(pkg.PackageSnapshot); snap != nil {
		if qty, ok := quantityOf(snap.Services, serviceID); ok {
			return SourceSnapshot, qty
		}
	}

	if pkg.PackageID != nil {
		if cp := findCatalog(catalog, *pkg.PackageID); cp != nil {
			if qty, ok := quantityOf(parseServices(cp.Services), serviceID); ok {
				return SourceCatalog, qty
			}
		}
	}

	return SourceNone, 0
}

// ResolveApplicablePackage escolhe, entre os pacotes do cliente, o
// primeiro ativo que cobre o serviço
func ResolveApplicablePackage(
	clientPackages []models.ClientPackage,
	catalog []models.CatalogPackage,
	serviceID uint,
) (*models.ClientPackage, PackageSource) {

	for i := range clientPackages {
		pkg := &clientPackages[i]
		if pkg.Status != PackageActive {
			continue
		}
		if src, _ := sourceFor(pkg, catalog, serviceID); src != SourceNone {
			return pkg, src
		}
	}

	return nil, SourceNone
}

// Allotted devolve a quantidade contratada do serviço no pacote
func Allotted(
	pkg *models.ClientPackage,
	catalog []models.CatalogPackage,
	serviceID uint,
) int {
	_, qty := sourceFor(pkg, catalog, serviceID)
	return qty
}

// RemainingSessions = contratado - consumido (entradas completed).
// Nunca negativo: RecordStatus recusa consumo com saldo esgotado.
func RemainingSessions(
	pkg *models.ClientPackage,
	catalog []models.CatalogPackage,
	serviceID uint,
) (int, error) {

	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return 0, err
	}

	return Allotted(pkg, catalog, serviceID) - h.CompletedCount(serviceID), nil
}

// ===============================
// Mutações do ledger
// ===============================

func entryFor(ap *models.Appointment, status string) Entry {
	return Entry{
		ServiceID:     ap.ServiceID,
		EmployeeID:    ap.EmployeeID,
		Date:          ap.Date,
		AppointmentID: ap.ID,
		Status:        status,
		Notes:         ap.Notes,
	}
}

// writeBack serializa o histórico e recomputa SessionsUsed a partir
// da fonte (contagem cheia, não incremento) para que o agregado
// nunca derive do histórico.
func writeBack(pkg *models.ClientPackage, h *History) error {
	raw, err := h.JSON()
	if err != nil {
		return err
	}

	pkg.SessionHistory = raw
	pkg.SessionsUsed = h.CompletedTotal()
	return nil
}

// RecordScheduled anexa a entrada "scheduled" do agendamento recém
// criado. Agendar não consome sessão.
func RecordScheduled(pkg *models.ClientPackage, ap *models.Appointment) error {
	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return err
	}

	if err := h.Append(entryFor(ap, string(scheduling.StatusScheduled))); err != nil {
		return err
	}

	return writeBack(pkg, h)
}

// RecordStatus espelha no ledger o novo status do agendamento:
// atualiza a entrada existente in place, ou anexa uma nova quando o
// agendamento nasceu antes de o pacote ser escolhido. Consumo com
// saldo esgotado é recusado; atendimento avulso nunca passa por aqui.
func RecordStatus(
	pkg *models.ClientPackage,
	catalog []models.CatalogPackage,
	ap *models.Appointment,
	newStatus string,
) error {

	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return err
	}

	existing, found := h.Get(ap.ID)

	if newStatus == string(scheduling.StatusCompleted) &&
		(!found || existing.Status != string(scheduling.StatusCompleted)) {

		remaining := Allotted(pkg, catalog, ap.ServiceID) - h.CompletedCount(ap.ServiceID)
		if remaining <= 0 {
			return httperr.ErrConsistency(
				fmt.Sprintf("no remaining sessions for service %d", ap.ServiceID),
			)
		}
	}

	if found {
		h.SetStatus(ap.ID, newStatus)
	} else if err := h.Append(entryFor(ap, newStatus)); err != nil {
		return err
	}

	return writeBack(pkg, h)
}

// MigrateOnReschedule troca a entrada do agendamento original pela
// do novo em uma única mutação do histórico: em nenhum momento o
// pacote fica sem a sessão nem com ela duplicada, e a visita lógica
// nunca é cobrada duas vezes.
func MigrateOnReschedule(
	pkg *models.ClientPackage,
	originalAppointmentID uint,
	newAp *models.Appointment,
) error {

	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return err
	}

	h.RemoveByAppointment(originalAppointmentID)

	if err := h.Append(entryFor(newAp, string(scheduling.StatusScheduled))); err != nil {
		return err
	}

	return writeBack(pkg, h)
}

// RemoveHistoryEntry apaga uma entrada por posição (correção manual)
func RemoveHistoryEntry(pkg *models.ClientPackage, index int) error {
	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return err
	}

	if err := h.RemoveAt(index); err != nil {
		return err
	}

	return writeBack(pkg, h)
}

// RemoveAppointmentEntry apaga a entrada de um agendamento, se
// existir (política de estorno na exclusão administrativa)
func RemoveAppointmentEntry(pkg *models.ClientPackage, appointmentID uint) (bool, error) {
	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return false, err
	}

	removed := h.RemoveByAppointment(appointmentID)
	if !removed {
		return false, nil
	}

	return true, writeBack(pkg, h)
}

// RefreshStatus vira o pacote para expired/finished quando couber.
// Checagem oportunista feita ao carregar o dado; não há job de fundo.
func RefreshStatus(pkg *models.ClientPackage, now time.Time) (bool, error) {
	if pkg.Status != PackageActive {
		return false, nil
	}

	if pkg.ExpiresAt != nil && now.After(*pkg.ExpiresAt) {
		pkg.Status = PackageExpired
		return true, nil
	}

	h, err := ParseHistory(pkg.SessionHistory)
	if err != nil {
		return false, err
	}

	if pkg.TotalSessions > 0 && h.CompletedTotal() >= pkg.TotalSessions {
		pkg.Status = PackageFinished
		return true, nil
	}

	return false, nil
}
