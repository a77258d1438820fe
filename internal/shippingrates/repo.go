package shippingrates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/internal/repo"
	"github.com/overnite/manifest-backend/pkg/db/models"
)

// Repository exposes shipping rate persistence operations.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) Create(ctx context.Context, rate *models.ShippingRate) error {
	return r.DB(ctx).Create(rate).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingRate, error) {
	var rate models.ShippingRate
	if err := r.DB(ctx).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

// FindLane matches a lane exactly; a nil plan selects the default table.
func (r *Repository) FindLane(ctx context.Context, origin, destination string, planID *uuid.UUID) (*models.ShippingRate, error) {
	query := r.DB(ctx).
		Where("origin = ? AND destination = ?", models.NormalizeLocation(origin), models.NormalizeLocation(destination))
	if planID == nil {
		query = query.Where("shipping_plan_id IS NULL")
	} else {
		query = query.Where("shipping_plan_id = ?", *planID)
	}

	var rate models.ShippingRate
	if err := query.First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.ShippingRate, error) {
	query := r.DB(ctx).Model(&models.ShippingRate{})
	if filter.Origin != "" {
		query = query.Where("origin = ?", models.NormalizeLocation(filter.Origin))
	}
	if filter.Destination != "" {
		query = query.Where("destination = ?", models.NormalizeLocation(filter.Destination))
	}
	switch {
	case filter.DefaultOnly:
		query = query.Where("shipping_plan_id IS NULL")
	case filter.ShippingPlanID != nil:
		query = query.Where("shipping_plan_id = ?", *filter.ShippingPlanID)
	}

	var rows []models.ShippingRate
	if err := query.Order("origin ASC").Order("destination ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Save(ctx context.Context, rate *models.ShippingRate) error {
	return r.DB(ctx).Save(rate).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.ShippingRate{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DistinctOrigins lists every origin code present in the rate table.
func (r *Repository) DistinctOrigins(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "origin")
}

func (r *Repository) DistinctDestinations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "destination")
}

func (r *Repository) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := r.DB(ctx).
		Model(&models.ShippingRate{}).
		Distinct(column).
		Order(column+" ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
