package models

import (
	"time"

	"gorm.io/datatypes"
)

// Pacote de catálogo vendável. A lista de serviços é congelada em
// snapshot no ClientPackage no momento da venda; editar ou excluir o
// catálogo não altera o que já foi vendido.
type CatalogPackage struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClinicID uint `json:"clinic_id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description"`
	Price       float64 `json:"price"`

	// [{"service_id":1,"quantity":10}, ...]
	Services datatypes.JSON `gorm:"type:json" json:"services"`

	ValidityDays int  `json:"validity_days"`
	Active       bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
