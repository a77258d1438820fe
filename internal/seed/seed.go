// Package seed loads the records a fresh install needs: one superadmin, a
// default shipping plan and a starter rate table. Running it twice is safe.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/shippingplans"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
)

// Lane is one sample rate row. Plan lanes belong to the seeded plan.
type Lane struct {
	Origin               string
	Destination          string
	Plan                 bool
	MinimumWeight        string
	MinimumPrice         string
	AdditionalPricePerKg string
}

type Options struct {
	AdminEmail    string
	AdminPassword string
	CompanyName   string
	PlanName      string
	Lanes         []Lane
}

// DefaultLanes is the starter table used when Options.Lanes is empty.
var DefaultLanes = []Lane{
	{Origin: "KL", Destination: "PEN", MinimumWeight: "5", MinimumPrice: "25.00", AdditionalPricePerKg: "3.50"},
	{Origin: "PEN", Destination: "KL", MinimumWeight: "5", MinimumPrice: "25.00", AdditionalPricePerKg: "3.50"},
	{Origin: "KL", Destination: "JB", MinimumWeight: "5", MinimumPrice: "22.00", AdditionalPricePerKg: "3.00"},
	{Origin: "KL", Destination: "BKI", MinimumWeight: "3", MinimumPrice: "35.00", AdditionalPricePerKg: "6.00"},
	{Origin: "KL", Destination: "PEN", Plan: true, MinimumWeight: "5", MinimumPrice: "20.00", AdditionalPricePerKg: "2.80"},
	{Origin: "KL", Destination: "JB", Plan: true, MinimumWeight: "5", MinimumPrice: "18.00", AdditionalPricePerKg: "2.50"},
}

type Params struct {
	Clients clients.Service
	Plans   shippingplans.Service
	Rates   shippingrates.Service
	Logger  *logger.Logger
}

// Report summarises what a run created. TemporaryPassword is set only when
// the admin was created without a password.
type Report struct {
	AdminCreated      bool
	TemporaryPassword string
	PlanID            uuid.UUID
	RatesCreated      int
	RatesSkipped      int
}

// Run creates whatever is missing. Existing records are left untouched and
// lane failures are collected so one bad row does not hide the rest.
func Run(ctx context.Context, p Params, opts Options) (*Report, error) {
	if p.Clients == nil || p.Plans == nil || p.Rates == nil || p.Logger == nil {
		return nil, fmt.Errorf("seed requires clients, plans, rates and logger")
	}
	if strings.TrimSpace(opts.AdminEmail) == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	if strings.TrimSpace(opts.PlanName) == "" {
		opts.PlanName = "Corporate"
	}
	if strings.TrimSpace(opts.CompanyName) == "" {
		opts.CompanyName = "Operations"
	}
	lanes := opts.Lanes
	if len(lanes) == 0 {
		lanes = DefaultLanes
	}

	report := &Report{}

	created, err := p.Clients.Create(ctx, enums.ClientRoleSuperAdmin, clients.CreateInput{
		CompanyName: opts.CompanyName,
		Email:       opts.AdminEmail,
		Password:    opts.AdminPassword,
		Role:        enums.ClientRoleSuperAdmin,
	})
	switch {
	case err == nil:
		report.AdminCreated = true
		report.TemporaryPassword = created.TemporaryPassword
		p.Logger.Info(p.Logger.WithUserID(ctx, created.Client.ID.String()), "seed.admin.created")
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		p.Logger.Info(ctx, "seed.admin.exists")
	default:
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	planID, err := ensurePlan(ctx, p.Plans, opts.PlanName)
	if err != nil {
		return report, fmt.Errorf("seed plan: %w", err)
	}
	report.PlanID = planID

	var errs error
	for _, lane := range lanes {
		input, err := lane.input(planID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, err := p.Rates.Create(ctx, input); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				report.RatesSkipped++
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("lane %s-%s: %w", lane.Origin, lane.Destination, err))
			continue
		}
		report.RatesCreated++
	}

	p.Logger.Info(p.Logger.WithFields(ctx, map[string]any{
		"rates_created": report.RatesCreated,
		"rates_skipped": report.RatesSkipped,
		"plan_id":       planID.String(),
	}), "seed.completed")
	return report, errs
}

func ensurePlan(ctx context.Context, plans shippingplans.Service, name string) (uuid.UUID, error) {
	plan, err := plans.Create(ctx, name)
	if err == nil {
		return plan.ID, nil
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return uuid.Nil, err
	}
	existing, err := plans.List(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("plan %q reported as existing but not listed", name)
}

func (l Lane) input(planID uuid.UUID) (shippingrates.RateInput, error) {
	var in shippingrates.RateInput
	var err error
	in.Origin, in.Destination = l.Origin, l.Destination
	if l.Plan {
		id := planID
		in.ShippingPlanID = &id
	}
	if in.MinimumWeight, err = decimal.NewFromString(l.MinimumWeight); err != nil {
		return in, fmt.Errorf("lane %s-%s minimum weight: %w", l.Origin, l.Destination, err)
	}
	if in.MinimumPrice, err = decimal.NewFromString(l.MinimumPrice); err != nil {
		return in, fmt.Errorf("lane %s-%s minimum price: %w", l.Origin, l.Destination, err)
	}
	if in.AdditionalPricePerKg, err = decimal.NewFromString(l.AdditionalPricePerKg); err != nil {
		return in, fmt.Errorf("lane %s-%s additional price: %w", l.Origin, l.Destination, err)
	}
	return in, nil
}
