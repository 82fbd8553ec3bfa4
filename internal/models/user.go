package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClinicID uint   `json:"clinic_id"`
	Clinic   Clinic `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"clinic"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`

	// Agenda do profissional.
	// AppointmentInterval em minutos; zero cai na grade horária padrão.
	// WorkHours: {"monday":[{"start":"08:00","end":"12:00"}], ...}
	// Profissional sem work hours é tratado como sempre disponível
	// (regra permissiva explícita).
	AppointmentInterval int            `json:"appointment_interval"`
	WorkHours           datatypes.JSON `gorm:"type:json" json:"work_hours"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
