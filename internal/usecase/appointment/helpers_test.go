package appointment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/ledger"
	infraRepo "github.com/VitalisClinicas/clinic-scheduler/internal/infra/repository"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local)

type testEnv struct {
	db    *gorm.DB
	repo  *infraRepo.SchedulingGormRepository
	audit *audit.Dispatcher
	clock clock.Fixed

	clinic   models.Clinic
	employee models.User
	client   models.Client
	service  models.Service
}

func newTestEnv(t *testing.T) *testEnv {
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
		&models.PendingService{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		db:    db,
		repo:  infraRepo.NewSchedulingGormRepository(db),
		audit: audit.NewDispatcher(audit.New(db), zap.NewNop()),
		clock: clock.Fixed{T: testNow},

		clinic:   models.Clinic{Name: "Vitalis", Slug: "vitalis", OpeningTime: "07:00", ClosingTime: "20:00"},
		employee: models.User{Name: "Dra. Ana", Email: "ana@vitalis.test", PasswordHash: "x", AppointmentInterval: 30},
		client:   models.Client{Name: "Carlos"},
		service:  models.Service{Name: "Limpeza de pele", DurationMin: 60, Price: 120, Active: true},
	}

	if err := db.Create(&env.clinic).Error; err != nil {
		t.Fatalf("seed clinic: %v", err)
	}

	env.employee.ClinicID = env.clinic.ID
	env.client.ClinicID = env.clinic.ID
	env.service.ClinicID = env.clinic.ID

	for _, rec := range []any{&env.employee, &env.client, &env.service} {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	return env
}

func (env *testEnv) createUC() *CreateAppointment {
	return NewCreateAppointment(env.repo, env.audit, nil, env.clock)
}

func (env *testEnv) transitionUC() *TransitionAppointment {
	return NewTransitionAppointment(env.repo, env.audit, nil, env.clock)
}

func (env *testEnv) rescheduleUC() *RescheduleAppointment {
	return NewRescheduleAppointment(env.repo, env.audit, nil, env.clock)
}

func (env *testEnv) deleteUC(policy DeletePolicy) *DeleteAppointment {
	return NewDeleteAppointment(env.repo, env.audit, nil, policy)
}

func (env *testEnv) createInput() CreateAppointmentInput {
	return CreateAppointmentInput{
		ClinicID:   env.clinic.ID,
		EmployeeID: env.employee.ID,
		ClientID:   env.client.ID,
		ServiceID:  env.service.ID,
		Date:       "2025-06-02",
		Time:       "10:00",
	}
}

// seedPackage cria um pacote ativo do cliente com snapshot cobrindo
// o serviço padrão do ambiente
func (env *testEnv) seedPackage(t *testing.T, quantity int) *models.ClientPackage {
	t.Helper()

	snap, err := json.Marshal(ledger.Snapshot{
		Services: []ledger.PackageService{
			{ServiceID: env.service.ID, Quantity: quantity},
		},
	})
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	catalogID := uint(1)
	pkg := &models.ClientPackage{
		ClinicID:        env.clinic.ID,
		ClientID:        env.client.ID,
		PackageID:       &catalogID,
		ReferenceCode:   uuid.NewString(),
		Status:          ledger.PackageActive,
		TotalSessions:   quantity,
		PackageSnapshot: datatypes.JSON(snap),
		SessionHistory:  datatypes.JSON([]byte("[]")),
	}

	if err := env.db.Create(pkg).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}
	return pkg
}

func (env *testEnv) reloadPackage(t *testing.T, id uint) *models.ClientPackage {
	t.Helper()

	var pkg models.ClientPackage
	if err := env.db.First(&pkg, id).Error; err != nil {
		t.Fatalf("reload package: %v", err)
	}
	return &pkg
}

func (env *testEnv) seedPending(t *testing.T) *models.PendingService {
	t.Helper()

	pending := &models.PendingService{
		ClinicID:  env.clinic.ID,
		ClientID:  env.client.ID,
		ServiceID: env.service.ID,
		Status:    "pending",
		Token:     uuid.NewString(),
	}

	if err := env.db.Create(pending).Error; err != nil {
		t.Fatalf("seed pending service: %v", err)
	}
	return pending
}

func (env *testEnv) reloadPending(t *testing.T, id uint) *models.PendingService {
	t.Helper()

	var pending models.PendingService
	if err := env.db.First(&pending, id).Error; err != nil {
		t.Fatalf("reload pending service: %v", err)
	}
	return &pending
}

func historyOf(t *testing.T, pkg *models.ClientPackage) *ledger.History {
	t.Helper()

	h, err := ledger.ParseHistory(pkg.SessionHistory)
	if err != nil {
		t.Fatalf("parse history: %v", err)
	}
	return h
}

func (env *testEnv) reloadAppointment(t *testing.T, id uint) *models.Appointment {
	t.Helper()

	var ap models.Appointment
	if err := env.db.First(&ap, id).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	return &ap
}
