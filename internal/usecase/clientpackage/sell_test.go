package clientpackage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	infraRepo "github.com/VitalisClinicas/clinic-scheduler/internal/infra/repository"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local)

type fakeLinker struct {
	calls []string
}

func (f *fakeLinker) CreateLink(_ context.Context, title string, amount float64, reference string) (string, error) {
	f.calls = append(f.calls, reference)
	return "https://pay.test/" + reference, nil
}

type sellEnv struct {
	db     *gorm.DB
	repo   *infraRepo.SchedulingGormRepository
	audit  *audit.Dispatcher
	linker *fakeLinker

	clinic  models.Clinic
	client  models.Client
	catalog models.CatalogPackage
}

func newSellEnv(t *testing.T) *sellEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Clinic{},
		&models.User{},
		&models.Service{},
		&models.Client{},
		&models.CatalogPackage{},
		&models.ClientPackage{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &sellEnv{
		db:     db,
		repo:   infraRepo.NewSchedulingGormRepository(db),
		audit:  audit.NewDispatcher(audit.New(db), zap.NewNop()),
		linker: &fakeLinker{},

		clinic: models.Clinic{Name: "Vitalis", Slug: "vitalis"},
		client: models.Client{Name: "Carlos"},
	}

	if err := db.Create(&env.clinic).Error; err != nil {
		t.Fatalf("seed clinic: %v", err)
	}

	env.client.ClinicID = env.clinic.ID
	if err := db.Create(&env.client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	env.catalog = models.CatalogPackage{
		ClinicID:     env.clinic.ID,
		Name:         "Pacote 10 sessões",
		Price:        900,
		ValidityDays: 90,
		Active:       true,
		Services:     datatypes.JSON([]byte(`[{"service_id":2,"quantity":10}]`)),
	}
	if err := db.Create(&env.catalog).Error; err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	return env
}

func (env *sellEnv) uc() *SellPackage {
	return NewSellPackage(env.repo, env.linker, env.audit, clock.Fixed{T: testNow})
}

func TestSellPackage_CatalogSaleFreezesSnapshot(t *testing.T) {
	env := newSellEnv(t)

	pkg, err := env.uc().Execute(context.Background(), SellPackageInput{
		ClinicID:         env.clinic.ID,
		ClientID:         env.client.ID,
		CatalogPackageID: &env.catalog.ID,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if pkg.TotalSessions != 10 {
		t.Fatalf("expected 10 sessions, got %d", pkg.TotalSessions)
	}
	if pkg.Status != ledger.PackageActive {
		t.Fatalf("expected active, got %s", pkg.Status)
	}
	if pkg.ExpiresAt == nil || !pkg.ExpiresAt.Equal(testNow.AddDate(0, 0, 90)) {
		t.Fatalf("expected expiry 90 days out, got %v", pkg.ExpiresAt)
	}
	if strings.HasPrefix(pkg.ReferenceCode, "custom_") {
		t.Fatalf("catalog sale must not carry the custom prefix")
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(pkg.PackageSnapshot, &snap); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Services) != 1 || snap.Services[0].Quantity != 10 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// Editar o catálogo depois da venda não muda o snapshot
	env.catalog.Services = datatypes.JSON([]byte(`[{"service_id":2,"quantity":1}]`))
	if err := env.db.Save(&env.catalog).Error; err != nil {
		t.Fatalf("update catalog: %v", err)
	}

	var reloaded models.ClientPackage
	if err := env.db.First(&reloaded, pkg.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := json.Unmarshal(reloaded.PackageSnapshot, &snap); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Services[0].Quantity != 10 {
		t.Fatalf("snapshot must be immutable, got %+v", snap)
	}
}

func TestSellPackage_CustomSale(t *testing.T) {
	env := newSellEnv(t)

	pkg, err := env.uc().Execute(context.Background(), SellPackageInput{
		ClinicID: env.clinic.ID,
		ClientID: env.client.ID,
		CustomServices: []ledger.PackageService{
			{ServiceID: 2, Quantity: 3},
			{ServiceID: 4, Quantity: 2},
		},
		CustomName:  "Combo facial",
		CustomPrice: 450,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if !pkg.IsCustomPackage {
		t.Fatalf("expected custom package")
	}
	if pkg.PackageID != nil {
		t.Fatalf("custom sale has no catalog backing")
	}
	if pkg.TotalSessions != 5 {
		t.Fatalf("expected 5 sessions, got %d", pkg.TotalSessions)
	}
	if !strings.HasPrefix(pkg.ReferenceCode, "custom_") {
		t.Fatalf("expected custom_ reference, got %s", pkg.ReferenceCode)
	}
	if pkg.ExpiresAt != nil {
		t.Fatalf("custom sale has no expiry")
	}
}

func TestSellPackage_PaymentLink(t *testing.T) {
	env := newSellEnv(t)

	pkg, err := env.uc().Execute(context.Background(), SellPackageInput{
		ClinicID:            env.clinic.ID,
		ClientID:            env.client.ID,
		CatalogPackageID:    &env.catalog.ID,
		GeneratePaymentLink: true,
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if pkg.PaymentLink != "https://pay.test/"+pkg.ReferenceCode {
		t.Fatalf("unexpected payment link: %s", pkg.PaymentLink)
	}
	if len(env.linker.calls) != 1 {
		t.Fatalf("expected one linker call, got %d", len(env.linker.calls))
	}
}

func TestSellPackage_Validation(t *testing.T) {
	env := newSellEnv(t)
	uc := env.uc()
	ctx := context.Background()

	if _, err := uc.Execute(ctx, SellPackageInput{ClinicID: env.clinic.ID}); !httperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Nem catálogo nem serviços próprios
	_, err := uc.Execute(ctx, SellPackageInput{
		ClinicID: env.clinic.ID,
		ClientID: env.client.ID,
	})
	if !httperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	unknown := uint(999)
	_, err = uc.Execute(ctx, SellPackageInput{
		ClinicID:         env.clinic.ID,
		ClientID:         env.client.ID,
		CatalogPackageID: &unknown,
	})
	if !httperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
