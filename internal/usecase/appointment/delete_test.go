package appointment

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

func TestDelete_KeepPolicyLeavesLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pkg := env.seedPackage(t, 3)

	in := env.createInput()
	in.ClientPackageID = &pkg.ID
	ap, _ := env.createUC().Execute(ctx, in)

	if _, err := env.transitionUC().Execute(ctx, env.clinic.ID, ap.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := env.deleteUC(DeleteKeepLedger).Execute(ctx, env.clinic.ID, ap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var gone models.Appointment
	if err := env.db.First(&gone, ap.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("appointment should be deleted, got %v", err)
	}

	// A sessão consumida permanece; a correção do pacote é manual
	got := env.reloadPackage(t, pkg.ID)
	if got.SessionsUsed != 1 {
		t.Fatalf("keep policy must preserve the ledger, used=%d", got.SessionsUsed)
	}
}

func TestDelete_RefundPolicyRestoresSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pkg := env.seedPackage(t, 3)

	in := env.createInput()
	in.ClientPackageID = &pkg.ID
	ap, _ := env.createUC().Execute(ctx, in)

	if _, err := env.transitionUC().Execute(ctx, env.clinic.ID, ap.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := env.deleteUC(DeleteRefundSession).Execute(ctx, env.clinic.ID, ap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got := env.reloadPackage(t, pkg.ID)
	if got.SessionsUsed != 0 {
		t.Fatalf("refund policy must restore the session, used=%d", got.SessionsUsed)
	}

	h := historyOf(t, got)
	if _, ok := h.Get(ap.ID); ok {
		t.Fatalf("refunded entry must be removed")
	}
}

func TestDelete_ResetsPendingService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.seedPending(t)

	in := env.createInput()
	in.PendingServiceID = &pending.ID
	ap, _ := env.createUC().Execute(ctx, in)

	if err := env.deleteUC(DeleteKeepLedger).Execute(ctx, env.clinic.ID, ap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got := env.reloadPending(t, pending.ID)
	if got.Status != "pending" {
		t.Fatalf("pending service must return to the queue, got %s", got.Status)
	}
	if got.AppointmentID != nil {
		t.Fatalf("dangling appointment link must be cleared")
	}
}

func TestDelete_UnknownAppointment(t *testing.T) {
	env := newTestEnv(t)

	err := env.deleteUC(DeleteKeepLedger).Execute(context.Background(), env.clinic.ID, 999)
	if !httperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
