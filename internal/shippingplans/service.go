package shippingplans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

type plansRepository interface {
	Create(ctx context.Context, plan *models.ShippingPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingPlan, error)
	FindByName(ctx context.Context, name string) (*models.ShippingPlan, error)
	List(ctx context.Context) ([]models.ShippingPlan, error)
}

// Service manages the pricing tiers clients can be assigned to.
type Service interface {
	List(ctx context.Context) ([]models.ShippingPlan, error)
	Create(ctx context.Context, name string) (*models.ShippingPlan, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ShippingPlan, error)
}

type service struct {
	repo plansRepository
}

func NewService(repo plansRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping plan repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.ShippingPlan, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipping plans")
	}
	return plans, nil
}

func (s *service) Create(ctx context.Context, name string) (*models.ShippingPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.Field("name", "is required")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipping plan already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shipping plan")
	}

	plan := &models.ShippingPlan{Name: name}
	if err := s.repo.Create(ctx, plan); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipping plan already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shipping plan")
	}
	return plan, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ShippingPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipping plan")
	}
	return plan, nil
}
