package models

import (
	"time"

	"gorm.io/datatypes"
)

type ClientPackage struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClinicID uint `json:"clinic_id"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	// Nulo em pacote personalizado (sem lastro de catálogo)
	PackageID       *uint `json:"package_id"`
	IsCustomPackage bool  `gorm:"default:false" json:"is_custom_package"`

	// Identificador de venda: uuid, prefixado com "custom_" em
	// pacotes personalizados
	ReferenceCode string `gorm:"size:50;uniqueIndex" json:"reference_code"`

	Status string `gorm:"size:20;default:'active'" json:"status"`

	TotalSessions int `json:"total_sessions"`
	SessionsUsed  int `json:"sessions_used"`

	// Lista própria de serviços do pacote personalizado:
	// [{"service_id":1,"quantity":5}, ...]
	Services datatypes.JSON `gorm:"type:json" json:"services"`

	// Cópia imutável dos serviços/quantidades do catálogo no momento
	// da venda: {"services":[{"service_id":1,"quantity":10}]}
	PackageSnapshot datatypes.JSON `gorm:"type:json" json:"package_snapshot"`

	// Ledger de sessões: uma entrada por agendamento já vinculado
	// ao pacote, nunca duplicada
	SessionHistory datatypes.JSON `gorm:"type:json" json:"session_history"`

	PaymentLink string     `gorm:"size:512" json:"payment_link"`
	ExpiresAt   *time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
