package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClinicID uint   `json:"clinic_id"`
	Clinic   Clinic `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"clinic"`

	EmployeeID uint `json:"employee_id"`
	Employee   User `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"employee"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	// Início do slot, relógio de parede local (sem conversão de fuso)
	Date time.Time `json:"date"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Notes string `gorm:"size:255" json:"notes"`

	// Consumo contra pacote do cliente; nulo = atendimento avulso
	ClientPackageID *uint `json:"client_package_id"`

	// Registro externo de serviço pendente vinculado a este agendamento
	PendingServiceID *uint `json:"pending_service_id"`

	// Preenchido quando este agendamento nasceu de um reagendamento
	OriginalAppointmentID *uint `json:"original_appointment_id"`

	// Índice do dependente do cliente, quando o atendido não é o titular
	DependentIndex *int `json:"dependent_index"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
