package models

import (
	"time"

	"gorm.io/datatypes"
)

// Cliente da clínica, sem login, vinculado ao tenant
type Client struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClinicID uint `json:"clinic_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	// Dependentes atendidos sob o cadastro do titular: ["Maria", "João"].
	// Agendamentos referenciam um dependente por índice.
	Dependents datatypes.JSON `gorm:"type:json" json:"dependents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
