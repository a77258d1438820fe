package shippingrates

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/pkg/db/models"
)

type RateDTO struct {
	ID                   uuid.UUID       `json:"id"`
	Origin               string          `json:"origin"`
	Destination          string          `json:"destination"`
	ShippingPlanID       *uuid.UUID      `json:"shipping_plan_id"`
	MinimumWeight        decimal.Decimal `json:"minimum_weight"`
	MinimumPrice         decimal.Decimal `json:"minimum_price"`
	AdditionalPricePerKg decimal.Decimal `json:"additional_price_per_kg"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func FromModel(r *models.ShippingRate) RateDTO {
	return RateDTO{
		ID:                   r.ID,
		Origin:               r.Origin,
		Destination:          r.Destination,
		ShippingPlanID:       r.ShippingPlanID,
		MinimumWeight:        r.MinimumWeight,
		MinimumPrice:         r.MinimumPrice,
		AdditionalPricePerKg: r.AdditionalPricePerKg,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// RateInput is the full set of fields for a lane.
type RateInput struct {
	Origin               string
	Destination          string
	ShippingPlanID       *uuid.UUID
	MinimumWeight        decimal.Decimal
	MinimumPrice         decimal.Decimal
	AdditionalPricePerKg decimal.Decimal
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	Origin               *string
	Destination          *string
	ShippingPlanID       *uuid.UUID
	ClearShippingPlan    bool
	MinimumWeight        *decimal.Decimal
	MinimumPrice         *decimal.Decimal
	AdditionalPricePerKg *decimal.Decimal
}

// ListFilter narrows the rate table. DefaultOnly selects plan-less lanes and
// wins over ShippingPlanID.
type ListFilter struct {
	Origin         string
	Destination    string
	ShippingPlanID *uuid.UUID
	DefaultOnly    bool
}
