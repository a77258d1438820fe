package shippingplans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/internal/repo"
	"github.com/overnite/manifest-backend/pkg/db/models"
)

// Repository persists shipping plans.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, plan *models.ShippingPlan) error {
	return r.DB(ctx).Create(plan).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingPlan, error) {
	var plan models.ShippingPlan
	if err := r.DB(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *Repository) FindByName(ctx context.Context, name string) (*models.ShippingPlan, error) {
	var plan models.ShippingPlan
	if err := r.DB(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *Repository) List(ctx context.Context) ([]models.ShippingPlan, error) {
	var plans []models.ShippingPlan
	if err := r.DB(ctx).Order("name ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
