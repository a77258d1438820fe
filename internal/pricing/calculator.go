package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Quote is the outcome of pricing one consignment against a lane rate.
type Quote struct {
	Weight     decimal.Decimal
	BasePrice  decimal.Decimal
	Discount   decimal.Decimal
	FinalPrice decimal.Decimal
}

// Total is the final price rounded to cents for storage.
func (q Quote) Total() decimal.Decimal {
	return q.FinalPrice.Round(2)
}

func (q Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Weight     string `json:"weight"`
		BasePrice  string `json:"base_price"`
		Discount   string `json:"discount"`
		FinalPrice string `json:"total_price"`
	}{
		Weight:     q.Weight.String(),
		BasePrice:  q.BasePrice.StringFixed(2),
		Discount:   q.Discount.StringFixed(2),
		FinalPrice: q.FinalPrice.StringFixed(2),
	})
}

// Calculate prices weight kilograms on rate. Up to the minimum weight the
// minimum price applies; every kilogram beyond it costs the additional rate.
// The discount is a percentage in [0,100].
func Calculate(rate models.ShippingRate, weight, discount decimal.Decimal) (Quote, error) {
	details := map[string]string{}
	if weight.IsNegative() {
		details["kg"] = "must be at least 0"
	}
	if problem := DiscountProblem(discount); problem != "" {
		details["discount"] = problem
	}
	if len(details) > 0 {
		return Quote{}, pkgerrors.Validation(details)
	}

	price := rate.MinimumPrice
	if weight.GreaterThan(rate.MinimumWeight) {
		extra := weight.Sub(rate.MinimumWeight).Mul(rate.AdditionalPricePerKg)
		price = price.Add(extra)
	}
	final := price.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))

	return Quote{
		Weight:     weight,
		BasePrice:  price,
		Discount:   discount,
		FinalPrice: final,
	}, nil
}

// DiscountProblem describes why discount is not an accepted percentage, or
// returns "". Discounts are stored as numeric(5,2); finer values are rejected.
func DiscountProblem(discount decimal.Decimal) string {
	switch {
	case discount.IsNegative() || discount.GreaterThan(hundred):
		return "must be between 0 and 100"
	case !discount.Equal(discount.Round(2)):
		return "must have at most 2 decimal places"
	}
	return ""
}

// SplitWeight breaks decimal kilograms into whole kilograms and grams.
// Grams that round up to a full kilogram carry over.
func SplitWeight(weight decimal.Decimal) (int, int) {
	whole := weight.Floor()
	gram := weight.Sub(whole).Mul(thousand).Round(0).IntPart()
	kg := whole.IntPart()
	if gram >= 1000 {
		kg++
		gram -= 1000
	}
	return int(kg), int(gram)
}

// CombineWeight is the inverse of SplitWeight.
func CombineWeight(kg, gram int) decimal.Decimal {
	return decimal.NewFromInt(int64(kg)).Add(decimal.NewFromInt(int64(gram)).Div(thousand))
}
