package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingRate prices one origin/destination lane, optionally scoped to a plan.
type ShippingRate struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Origin               string          `gorm:"column:origin;not null"`
	Destination          string          `gorm:"column:destination;not null"`
	ShippingPlanID       *uuid.UUID      `gorm:"column:shipping_plan_id;type:uuid"`
	MinimumWeight        decimal.Decimal `gorm:"column:minimum_weight;type:numeric(10,3);not null"`
	MinimumPrice         decimal.Decimal `gorm:"column:minimum_price;type:numeric(12,2);not null"`
	AdditionalPricePerKg decimal.Decimal `gorm:"column:additional_price_per_kg;type:numeric(12,2);not null"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// NormalizeLocation is the canonical form of an origin or destination code.
func NormalizeLocation(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func (r *ShippingRate) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *ShippingRate) BeforeSave(*gorm.DB) error {
	r.Origin = NormalizeLocation(r.Origin)
	r.Destination = NormalizeLocation(r.Destination)
	return nil
}
