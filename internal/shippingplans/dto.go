package shippingplans

import (
	"time"

	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/pkg/db/models"
)

type PlanDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(p *models.ShippingPlan) PlanDTO {
	return PlanDTO{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromModels(rows []models.ShippingPlan) []PlanDTO {
	out := make([]PlanDTO, len(rows))
	for i := range rows {
		out[i] = FromModel(&rows[i])
	}
	return out
}
