package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

// RateLookup finds the rate of an exact lane; a nil plan is the default table.
type RateLookup interface {
	FindLane(ctx context.Context, origin, destination string, planID *uuid.UUID) (*models.ShippingRate, error)
}

// ClientLookup loads consignors by id.
type ClientLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// QuoteRequest prices a lane for an optional consignor. Without a consignor
// the default rate table applies.
type QuoteRequest struct {
	Origin      string
	Destination string
	ConsignorID *uuid.UUID
	Weight      decimal.Decimal
	Discount    decimal.Decimal
}

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

type service struct {
	rates   RateLookup
	clients ClientLookup
}

func NewService(rates RateLookup, clients ClientLookup) (Service, error) {
	if rates == nil {
		return nil, fmt.Errorf("rate lookup required")
	}
	if clients == nil {
		return nil, fmt.Errorf("clients lookup required")
	}
	return &service{rates: rates, clients: clients}, nil
}

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	var planID *uuid.UUID
	if req.ConsignorID != nil {
		client, err := LoadConsignor(ctx, s.clients, *req.ConsignorID)
		if err != nil {
			return nil, err
		}
		planID = client.ShippingPlanID
	}

	rate, err := ResolveRate(ctx, s.rates, req.Origin, req.Destination, planID)
	if err != nil {
		return nil, err
	}
	quote, err := Calculate(*rate, req.Weight, req.Discount)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ResolveRate prefers the plan's own lane and falls back to the default
// table. A lane missing from both is a domain error.
func ResolveRate(ctx context.Context, lookup RateLookup, origin, destination string, planID *uuid.UUID) (*models.ShippingRate, error) {
	if models.NormalizeLocation(origin) == "" || models.NormalizeLocation(destination) == "" {
		return nil, pkgerrors.Validation(map[string]string{"origin": "is required", "destination": "is required"})
	}

	candidates := []*uuid.UUID{nil}
	if planID != nil {
		candidates = []*uuid.UUID{planID, nil}
	}
	for _, candidate := range candidates {
		rate, err := lookup.FindLane(ctx, origin, destination, candidate)
		if err == nil {
			return rate, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shipping rate")
		}
	}
	return nil, ErrRateNotFound()
}

// LoadConsignor maps a missing client to the consignor domain error.
func LoadConsignor(ctx context.Context, lookup ClientLookup, id uuid.UUID) (*models.Client, error) {
	client, err := lookup.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsignorNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load consignor")
	}
	return client, nil
}

func ErrRateNotFound() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeDomain, "shipping rate not found for this route")
}

func ErrConsignorNotFound() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeDomain, "consignor not found")
}
