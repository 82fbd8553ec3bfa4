package models

import "time"

// Serviço devido ao cliente e ainda não agendado/realizado, mantido
// fora do motor de agenda e sincronizado por status
type PendingService struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClinicID uint `json:"clinic_id"`

	ClientID  uint `json:"client_id"`
	ServiceID uint `json:"service_id"`

	// pending | scheduled | completed
	Status string `gorm:"size:20;default:'pending'" json:"status"`

	AppointmentID *uint `json:"appointment_id"`

	// Token público usado em links de confirmação
	Token string `gorm:"size:50;uniqueIndex" json:"token"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
