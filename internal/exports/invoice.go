package exports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

const (
	invoiceDateLayout = "02/01/2006"
	variousBillTo     = "VARIOUS"
	maxListedRefs     = 3
)

// Invoice is the document both renderers draw from.
type Invoice struct {
	Letterhead config.InvoiceConfig
	Number     string
	Reference  string
	BillTo     string
	IssuedAt   time.Time
	Lines      []InvoiceLine
	Total      decimal.Decimal
}

// InvoiceLine is one consignment note on the invoice. UnitPrice is the
// per-kg rate of the lane, zero when the lane no longer has a rate.
type InvoiceLine struct {
	Item            int
	ManifestNo      string
	Description     string
	ConsignmentNote string
	Consignor       string
	Consignee       string
	DeliveryDate    string
	Qty             int
	Weight          decimal.Decimal
	UnitPrice       decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

type rateKey struct {
	origin      string
	destination string
	plan        uuid.UUID
}

// BuildInvoice flattens manifests into invoice lines, in manifest order then
// line order.
func BuildInvoice(ctx context.Context, rates pricing.RateLookup, letterhead config.InvoiceConfig, issuedAt time.Time, manifests []models.ManifestInfo) (*Invoice, error) {
	inv := &Invoice{
		Letterhead: letterhead,
		IssuedAt:   issuedAt,
		Total:      decimal.Zero,
	}

	unitPrices := map[rateKey]decimal.Decimal{}
	consignors := map[uuid.UUID]string{}
	numbers := make([]string, 0, len(manifests))
	awbs := make([]string, 0, len(manifests))

	for _, manifest := range manifests {
		numbers = append(numbers, manifest.ManifestNo)
		awbs = append(awbs, manifest.AwbNo)
		deliveryDate := manifest.Date
		if manifest.DeliveryDate != nil {
			deliveryDate = *manifest.DeliveryDate
		}

		for _, line := range manifest.Lists {
			var planID *uuid.UUID
			consignor := ""
			if line.Consignor != nil {
				planID = line.Consignor.ShippingPlanID
				consignor = line.Consignor.CompanyName
			}
			consignors[line.ConsignorID] = consignor

			unit, err := unitPrice(ctx, rates, unitPrices, line.Origin, line.Destination, planID)
			if err != nil {
				return nil, err
			}
			discount := decimal.Zero
			if line.Discount.Valid {
				discount = line.Discount.Decimal
			}

			inv.Lines = append(inv.Lines, InvoiceLine{
				Item:            len(inv.Lines) + 1,
				ManifestNo:      manifest.ManifestNo,
				Description:     fmt.Sprintf("%s - %s", line.Origin, line.Destination),
				ConsignmentNote: line.CnNo,
				Consignor:       consignor,
				Consignee:       line.ConsigneeName,
				DeliveryDate:    deliveryDate.Format(invoiceDateLayout),
				Qty:             line.Pcs,
				Weight:          line.Weight(),
				UnitPrice:       unit,
				Discount:        discount,
				Total:           line.TotalPrice,
			})
			inv.Total = inv.Total.Add(line.TotalPrice)
		}
	}

	inv.Number = joinRefs(numbers)
	inv.Reference = joinRefs(awbs)
	inv.BillTo = billTo(consignors)
	return inv, nil
}

func unitPrice(ctx context.Context, rates pricing.RateLookup, cache map[rateKey]decimal.Decimal, origin, destination string, planID *uuid.UUID) (decimal.Decimal, error) {
	key := rateKey{origin: origin, destination: destination}
	if planID != nil {
		key.plan = *planID
	}
	if price, ok := cache[key]; ok {
		return price, nil
	}

	price := decimal.Zero
	rate, err := pricing.ResolveRate(ctx, rates, origin, destination, planID)
	switch {
	case err == nil:
		price = rate.AdditionalPricePerKg
	case isDomainError(err):
	default:
		return decimal.Zero, err
	}
	cache[key] = price
	return price, nil
}

func isDomainError(err error) bool {
	appErr := pkgerrors.As(err)
	return appErr != nil && appErr.Code() == pkgerrors.CodeDomain
}

func billTo(consignors map[uuid.UUID]string) string {
	if len(consignors) != 1 {
		return variousBillTo
	}
	for _, name := range consignors {
		if strings.TrimSpace(name) != "" {
			return name
		}
	}
	return variousBillTo
}

// joinRefs lists up to maxListedRefs references, otherwise the first and
// last with a count.
func joinRefs(values []string) string {
	if len(values) <= maxListedRefs {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s .. %s (%d)", values[0], values[len(values)-1], len(values))
}
