package shippingrates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

type ratesRepository interface {
	Create(ctx context.Context, rate *models.ShippingRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingRate, error)
	FindLane(ctx context.Context, origin, destination string, planID *uuid.UUID) (*models.ShippingRate, error)
	List(ctx context.Context, filter ListFilter) ([]models.ShippingRate, error)
	Save(ctx context.Context, rate *models.ShippingRate) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DistinctOrigins(ctx context.Context) ([]string, error)
	DistinctDestinations(ctx context.Context) ([]string, error)
}

type plansLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingPlan, error)
}

// Service manages the lane rate tables.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]RateDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RateDTO, error)
	Create(ctx context.Context, input RateInput) (*RateDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*RateDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Origins(ctx context.Context) ([]string, error)
	Destinations(ctx context.Context) ([]string, error)
}

type service struct {
	repo  ratesRepository
	plans plansLookup
}

func NewService(repo ratesRepository, plans plansLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping rate repository required")
	}
	if plans == nil {
		return nil, fmt.Errorf("shipping plan lookup required")
	}
	return &service{repo: repo, plans: plans}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]RateDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shipping rates")
	}
	items := make([]RateDTO, len(rows))
	for i := range rows {
		items[i] = FromModel(&rows[i])
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RateDTO, error) {
	rate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(rate)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input RateInput) (*RateDTO, error) {
	rate := &models.ShippingRate{
		Origin:               models.NormalizeLocation(input.Origin),
		Destination:          models.NormalizeLocation(input.Destination),
		ShippingPlanID:       input.ShippingPlanID,
		MinimumWeight:        input.MinimumWeight,
		MinimumPrice:         input.MinimumPrice,
		AdditionalPricePerKg: input.AdditionalPricePerKg,
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if err := s.ensurePlan(ctx, rate.ShippingPlanID); err != nil {
		return nil, err
	}
	if err := s.ensureLaneFree(ctx, rate); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rate); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, laneTaken()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shipping rate")
	}
	dto := FromModel(rate)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*RateDTO, error) {
	rate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Origin != nil {
		rate.Origin = models.NormalizeLocation(*input.Origin)
	}
	if input.Destination != nil {
		rate.Destination = models.NormalizeLocation(*input.Destination)
	}
	switch {
	case input.ClearShippingPlan:
		rate.ShippingPlanID = nil
	case input.ShippingPlanID != nil:
		rate.ShippingPlanID = input.ShippingPlanID
	}
	if input.MinimumWeight != nil {
		rate.MinimumWeight = *input.MinimumWeight
	}
	if input.MinimumPrice != nil {
		rate.MinimumPrice = *input.MinimumPrice
	}
	if input.AdditionalPricePerKg != nil {
		rate.AdditionalPricePerKg = *input.AdditionalPricePerKg
	}

	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if err := s.ensurePlan(ctx, rate.ShippingPlanID); err != nil {
		return nil, err
	}
	if err := s.ensureLaneFree(ctx, rate); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rate); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, laneTaken()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shipping rate")
	}
	dto := FromModel(rate)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shipping rate")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shipping rate not found")
	}
	return nil
}

func (s *service) Origins(ctx context.Context) ([]string, error) {
	values, err := s.repo.DistinctOrigins(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list origins")
	}
	return values, nil
}

func (s *service) Destinations(ctx context.Context) ([]string, error) {
	values, err := s.repo.DistinctDestinations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list destinations")
	}
	return values, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ShippingRate, error) {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping rate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shipping rate")
	}
	return rate, nil
}

func (s *service) ensurePlan(ctx context.Context, planID *uuid.UUID) error {
	if planID == nil {
		return nil
	}
	if _, err := s.plans.FindByID(ctx, *planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Field("shipping_plan_id", "does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shipping plan")
	}
	return nil
}

func (s *service) ensureLaneFree(ctx context.Context, rate *models.ShippingRate) error {
	existing, err := s.repo.FindLane(ctx, rate.Origin, rate.Destination, rate.ShippingPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shipping lane")
	}
	if existing.ID != rate.ID {
		return laneTaken()
	}
	return nil
}

func validateRate(rate *models.ShippingRate) error {
	details := map[string]string{}
	if rate.Origin == "" {
		details["origin"] = "is required"
	}
	if rate.Destination == "" {
		details["destination"] = "is required"
	}
	checkNonNegative(details, "minimum_weight", rate.MinimumWeight)
	checkNonNegative(details, "minimum_price", rate.MinimumPrice)
	checkNonNegative(details, "additional_price_per_kg", rate.AdditionalPricePerKg)
	if len(details) > 0 {
		return pkgerrors.Validation(details)
	}
	return nil
}

func checkNonNegative(details map[string]string, field string, value decimal.Decimal) {
	if value.IsNegative() {
		details[field] = "must be at least 0"
	}
}

func laneTaken() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "a rate already exists for this lane and plan")
}

// LaneKey renders a lane for log lines and error messages.
func LaneKey(origin, destination string) string {
	return strings.Join([]string{models.NormalizeLocation(origin), models.NormalizeLocation(destination)}, "-")
}
