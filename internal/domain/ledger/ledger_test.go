package ledger

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

func snapshotPackage(serviceID uint, quantity int) *models.ClientPackage {
	pkgID := uint(1)
	snap := fmt.Sprintf(
		`{"services":[{"service_id":%d,"quantity":%d}]}`,
		serviceID, quantity,
	)

	return &models.ClientPackage{
		ID:              50,
		ClientID:        5,
		PackageID:       &pkgID,
		Status:          PackageActive,
		TotalSessions:   quantity,
		PackageSnapshot: datatypes.JSON([]byte(snap)),
		SessionHistory:  datatypes.JSON([]byte("[]")),
	}
}

func appointmentFor(id uint, serviceID uint) *models.Appointment {
	return &models.Appointment{
		ID:         id,
		EmployeeID: 7,
		ClientID:   5,
		ServiceID:  serviceID,
		Date:       time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local),
		Status:     "scheduled",
	}
}

// ===============================
// Resolução de origem
// ===============================

func TestSourceFor_Priority(t *testing.T) {
	pkgID := uint(1)
	catalog := []models.CatalogPackage{
		{ID: 1, Services: datatypes.JSON([]byte(`[{"service_id":2,"quantity":99}]`))},
	}

	pkg := &models.ClientPackage{
		PackageID:       &pkgID,
		Services:        datatypes.JSON([]byte(`[{"service_id":2,"quantity":5}]`)),
		PackageSnapshot: datatypes.JSON([]byte(`{"services":[{"service_id":2,"quantity":10}]}`)),
	}

	// Serviços próprios na frente de snapshot e catálogo
	src, qty := sourceFor(pkg, catalog, 2)
	if src != SourceOwnServices || qty != 5 {
		t.Fatalf("expected own_services/5, got %s/%d", src, qty)
	}

	pkg.Services = nil
	src, qty = sourceFor(pkg, catalog, 2)
	if src != SourceSnapshot || qty != 10 {
		t.Fatalf("expected snapshot/10, got %s/%d", src, qty)
	}

	pkg.PackageSnapshot = nil
	src, qty = sourceFor(pkg, catalog, 2)
	if src != SourceCatalog || qty != 99 {
		t.Fatalf("expected catalog/99, got %s/%d", src, qty)
	}

	// Catálogo apagado e sem snapshot: degrada, não falha
	src, _ = sourceFor(pkg, nil, 2)
	if src != SourceNone {
		t.Fatalf("expected none, got %s", src)
	}
}

func TestResolveApplicablePackage_SkipsInactive(t *testing.T) {
	pkgs := []models.ClientPackage{
		{
			ID:       1,
			Status:   PackageExpired,
			Services: datatypes.JSON([]byte(`[{"service_id":2,"quantity":5}]`)),
		},
		{
			ID:       2,
			Status:   PackageActive,
			Services: datatypes.JSON([]byte(`[{"service_id":2,"quantity":3}]`)),
		},
	}

	pkg, src := ResolveApplicablePackage(pkgs, nil, 2)
	if pkg == nil || pkg.ID != 2 {
		t.Fatalf("expected active package 2, got %+v", pkg)
	}
	if src != SourceOwnServices {
		t.Fatalf("expected own_services, got %s", src)
	}

	if pkg, _ := ResolveApplicablePackage(pkgs, nil, 9); pkg != nil {
		t.Fatalf("service not covered by any package, got %+v", pkg)
	}
}

// ===============================
// Consumo de sessão
// ===============================

func TestRecordScheduled_DoesNotConsume(t *testing.T) {
	pkg := snapshotPackage(2, 3)

	if err := RecordScheduled(pkg, appointmentFor(10, 2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pkg.SessionsUsed != 0 {
		t.Fatalf("scheduling must not consume a session, used=%d", pkg.SessionsUsed)
	}

	remaining, err := RemainingSessions(pkg, nil, 2)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 3 {
		t.Fatalf("expected 3 remaining, got %d", remaining)
	}
}

func TestRecordStatus_CompleteConsumesOnce(t *testing.T) {
	pkg := snapshotPackage(2, 3)
	ap := appointmentFor(10, 2)

	if err := RecordScheduled(pkg, ap); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := RecordStatus(pkg, nil, ap, "completed"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if pkg.SessionsUsed != 1 {
		t.Fatalf("expected 1 used, got %d", pkg.SessionsUsed)
	}

	remaining, _ := RemainingSessions(pkg, nil, 2)
	if remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", remaining)
	}

	// Reaplicar o mesmo status é idempotente: a entrada é atualizada
	// in place, nunca duplicada
	if err := RecordStatus(pkg, nil, ap, "completed"); err != nil {
		t.Fatalf("idempotent complete: %v", err)
	}
	if pkg.SessionsUsed != 1 {
		t.Fatalf("double completion must not consume twice, used=%d", pkg.SessionsUsed)
	}

	h, _ := ParseHistory(pkg.SessionHistory)
	if h.Len() != 1 {
		t.Fatalf("expected a single history entry, got %d", h.Len())
	}
}

func TestRecordStatus_CancelRestoresSession(t *testing.T) {
	pkg := snapshotPackage(2, 3)
	ap := appointmentFor(10, 2)

	RecordScheduled(pkg, ap)
	RecordStatus(pkg, nil, ap, "completed")
	RecordStatus(pkg, nil, ap, "cancelled")

	if pkg.SessionsUsed != 0 {
		t.Fatalf("cancelling must restore the session, used=%d", pkg.SessionsUsed)
	}

	remaining, _ := RemainingSessions(pkg, nil, 2)
	if remaining != 3 {
		t.Fatalf("expected 3 remaining after cancel, got %d", remaining)
	}
}

func TestRecordStatus_RefusesExhaustedBalance(t *testing.T) {
	pkg := snapshotPackage(2, 1)

	first := appointmentFor(10, 2)
	RecordScheduled(pkg, first)
	if err := RecordStatus(pkg, nil, first, "completed"); err != nil {
		t.Fatalf("first completion: %v", err)
	}

	second := appointmentFor(11, 2)
	RecordScheduled(pkg, second)

	err := RecordStatus(pkg, nil, second, "completed")
	if err == nil {
		t.Fatalf("expected refusal on exhausted balance")
	}
	if !httperr.IsConsistency(err) {
		t.Fatalf("expected consistency error, got %v", err)
	}

	// A recusa não pode ter efeito colateral
	if pkg.SessionsUsed != 1 {
		t.Fatalf("refused completion must not consume, used=%d", pkg.SessionsUsed)
	}
}

func TestRecordStatus_AppendsWhenEntryMissing(t *testing.T) {
	// Agendamento criado antes de o pacote ser escolhido: a primeira
	// transição cria a entrada
	pkg := snapshotPackage(2, 3)
	ap := appointmentFor(10, 2)

	if err := RecordStatus(pkg, nil, ap, "completed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.SessionsUsed != 1 {
		t.Fatalf("expected 1 used, got %d", pkg.SessionsUsed)
	}
}

// ===============================
// Reagendamento
// ===============================

func TestMigrateOnReschedule_SingleMutation(t *testing.T) {
	pkg := snapshotPackage(2, 3)
	orig := appointmentFor(10, 2)

	RecordScheduled(pkg, orig)

	newAp := appointmentFor(20, 2)
	newAp.Date = time.Date(2025, 6, 3, 9, 0, 0, 0, time.Local)

	if err := MigrateOnReschedule(pkg, orig.ID, newAp); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h, _ := ParseHistory(pkg.SessionHistory)
	if h.Len() != 1 {
		t.Fatalf("expected exactly one entry after migration, got %d", h.Len())
	}

	if _, ok := h.Get(orig.ID); ok {
		t.Fatalf("original entry must be gone")
	}

	e, ok := h.Get(newAp.ID)
	if !ok {
		t.Fatalf("expected entry for new appointment")
	}
	if e.Status != "scheduled" {
		t.Fatalf("migrated entry must be scheduled, got %s", e.Status)
	}
	if pkg.SessionsUsed != 0 {
		t.Fatalf("migration must not consume, used=%d", pkg.SessionsUsed)
	}
}

// ===============================
// Correções e estorno
// ===============================

func TestRemoveAppointmentEntry(t *testing.T) {
	pkg := snapshotPackage(2, 3)
	ap := appointmentFor(10, 2)

	RecordScheduled(pkg, ap)
	RecordStatus(pkg, nil, ap, "completed")

	removed, err := RemoveAppointmentEntry(pkg, ap.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatalf("expected removal")
	}
	if pkg.SessionsUsed != 0 {
		t.Fatalf("refund must restore the session, used=%d", pkg.SessionsUsed)
	}

	removed, err = RemoveAppointmentEntry(pkg, 999)
	if err != nil || removed {
		t.Fatalf("missing entry: removed=%v err=%v", removed, err)
	}
}

func TestRemoveHistoryEntry_Index(t *testing.T) {
	pkg := snapshotPackage(2, 3)
	RecordScheduled(pkg, appointmentFor(10, 2))

	if err := RemoveHistoryEntry(pkg, 3); err == nil {
		t.Fatalf("expected out of range error")
	}
	if err := RemoveHistoryEntry(pkg, 0); err != nil {
		t.Fatalf("valid index: %v", err)
	}

	h, _ := ParseHistory(pkg.SessionHistory)
	if h.Len() != 0 {
		t.Fatalf("expected empty history, got %d", h.Len())
	}
}

// ===============================
// Expiração / esgotamento
// ===============================

func TestRefreshStatus(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local)

	// Expirado por data
	past := now.AddDate(0, 0, -1)
	pkg := snapshotPackage(2, 3)
	pkg.ExpiresAt = &past

	changed, err := RefreshStatus(pkg, now)
	if err != nil || !changed {
		t.Fatalf("expected expiry, changed=%v err=%v", changed, err)
	}
	if pkg.Status != PackageExpired {
		t.Fatalf("expected expired, got %s", pkg.Status)
	}

	// Esgotado por consumo
	pkg = snapshotPackage(2, 1)
	ap := appointmentFor(10, 2)
	RecordScheduled(pkg, ap)
	RecordStatus(pkg, nil, ap, "completed")

	changed, err = RefreshStatus(pkg, now)
	if err != nil || !changed {
		t.Fatalf("expected finish, changed=%v err=%v", changed, err)
	}
	if pkg.Status != PackageFinished {
		t.Fatalf("expected finished, got %s", pkg.Status)
	}

	// Pacote saudável não muda
	pkg = snapshotPackage(2, 3)
	changed, err = RefreshStatus(pkg, now)
	if err != nil || changed {
		t.Fatalf("healthy package must not change, changed=%v err=%v", changed, err)
	}
}
