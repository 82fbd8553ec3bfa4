package appointment

import (
	"context"
	"testing"

	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
)

func rescheduleInput() RescheduleInput {
	return RescheduleInput{Date: "2025-06-03", Time: "09:00"}
}

func TestReschedule_CreatesNewAndCancelsOriginal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orig, err := env.createUC().Execute(ctx, env.createInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newAp, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, rescheduleInput())
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	if newAp.ID == orig.ID {
		t.Fatalf("reschedule must not reuse the original record")
	}
	if newAp.OriginalAppointmentID == nil || *newAp.OriginalAppointmentID != orig.ID {
		t.Fatalf("expected link to original %d", orig.ID)
	}
	if newAp.Status != "scheduled" {
		t.Fatalf("expected new appointment scheduled, got %s", newAp.Status)
	}

	got := env.reloadAppointment(t, orig.ID)
	if got.Status != "cancelled" {
		t.Fatalf("original must be cancelled, got %s", got.Status)
	}
}

func TestReschedule_CancelledOriginalStaysCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orig, _ := env.createUC().Execute(ctx, env.createInput())
	if _, err := env.transitionUC().Execute(ctx, env.clinic.ID, orig.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Reagendar um cancelado apenas cria o sucessor
	newAp, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, rescheduleInput())
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if newAp.Status != "scheduled" {
		t.Fatalf("expected scheduled successor, got %s", newAp.Status)
	}
}

func TestReschedule_CompletedIsRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orig, _ := env.createUC().Execute(ctx, env.createInput())
	if _, err := env.transitionUC().Execute(ctx, env.clinic.ID, orig.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, rescheduleInput())
	if !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestReschedule_MigratesLedgerEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pkg := env.seedPackage(t, 3)

	in := env.createInput()
	in.ClientPackageID = &pkg.ID
	orig, _ := env.createUC().Execute(ctx, in)

	newAp, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, rescheduleInput())
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	got := env.reloadPackage(t, pkg.ID)
	h := historyOf(t, got)

	if h.Len() != 1 {
		t.Fatalf("migration must keep exactly one entry, got %d", h.Len())
	}
	if _, ok := h.Get(orig.ID); ok {
		t.Fatalf("original entry must be gone from the ledger")
	}

	e, ok := h.Get(newAp.ID)
	if !ok || e.Status != "scheduled" {
		t.Fatalf("expected scheduled entry for %d, got %+v ok=%v", newAp.ID, e, ok)
	}
	if got.SessionsUsed != 0 {
		t.Fatalf("the logical visit must never be charged twice, used=%d", got.SessionsUsed)
	}

	// O vínculo de pacote acompanha o novo agendamento
	if newAp.ClientPackageID == nil || *newAp.ClientPackageID != pkg.ID {
		t.Fatalf("expected package link on the new appointment")
	}
}

func TestReschedule_ConflictAtTargetSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uc := env.createUC()

	orig, _ := uc.Execute(ctx, env.createInput())

	// Ocupa o slot de destino
	occupant := env.createInput()
	occupant.Date = "2025-06-03"
	occupant.Time = "09:00"
	if _, err := uc.Execute(ctx, occupant); err != nil {
		t.Fatalf("occupant: %v", err)
	}

	_, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, rescheduleInput())
	if _, ok := httperr.AsConflict(err); !ok {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Com confirmação o encaixe passa
	in := rescheduleInput()
	in.OverrideConflict = true
	if _, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, in); err != nil {
		t.Fatalf("override reschedule: %v", err)
	}
}

func TestReschedule_PendingServiceFollowsNewAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.seedPending(t)

	in := env.createInput()
	in.PendingServiceID = &pending.ID
	orig, _ := env.createUC().Execute(ctx, in)

	newAp, err := env.rescheduleUC().Execute(ctx, env.clinic.ID, orig.ID, rescheduleInput())
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	got := env.reloadPending(t, pending.ID)
	if got.AppointmentID == nil || *got.AppointmentID != newAp.ID {
		t.Fatalf("pending service must point at the new appointment")
	}
	if got.Status != "scheduled" {
		t.Fatalf("expected scheduled, got %s", got.Status)
	}
}
