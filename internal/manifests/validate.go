package manifests

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/internal/pricing"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.Validation(map[string]string(f))
}

func validateBatch(input BatchInput) error {
	errs := fieldErrors{}
	appending := input.appending()

	if appending {
		if *input.ManifestInfoID == uuid.Nil {
			errs.add("manifest_info_id", "is invalid")
		}
	} else {
		h := input.Header
		if h.Date == nil || h.Date.IsZero() {
			errs.add("date", "is required")
		}
		if strings.TrimSpace(h.AwbNo) == "" {
			errs.add("awb_no", "is required")
		}
		if strings.TrimSpace(h.From) == "" {
			errs.add("from", "is required")
		}
		if strings.TrimSpace(h.To) == "" {
			errs.add("to", "is required")
		}
	}

	if len(input.Lines) == 0 {
		errs.add("manifest_lists", "must contain at least 1 item")
	}
	for i, line := range input.Lines {
		field := func(name string) string {
			return fmt.Sprintf("manifest_lists[%d].%s", i, name)
		}
		if line.ConsignorID == uuid.Nil {
			errs.add(field("consignor_id"), "is required")
		}
		if strings.TrimSpace(line.ConsigneeName) == "" {
			errs.add(field("consignee_name"), "is required")
		}
		validateCnNo(errs, field("cn_no"), line.CnNo)
		if line.Pcs < 1 {
			errs.add(field("pcs"), "must be at least 1")
		}
		if line.Kg.IsNegative() {
			errs.add(field("kg"), "must be at least 0")
		}
		if line.Discount != nil {
			checkDiscount(errs, field("discount"), *line.Discount)
		}
		if strings.TrimSpace(line.Origin) == "" {
			errs.add(field("origin"), "is required")
		}
		if strings.TrimSpace(line.Destination) == "" {
			errs.add(field("destination"), "is required")
		}

		switch {
		case appending && line.TotalPrice != nil:
			errs.add(field("total_price"), "is prohibited")
		case !appending && line.TotalPrice == nil:
			errs.add(field("total_price"), "is required")
		case !appending && line.TotalPrice.IsNegative():
			errs.add(field("total_price"), "must be at least 0")
		}
	}
	return errs.err()
}

func checkDiscount(errs fieldErrors, field string, discount decimal.Decimal) {
	if problem := pricing.DiscountProblem(discount); problem != "" {
		errs.add(field, problem)
	}
}

// validateCnNo accepts consignment note numbers made of digits only.
func validateCnNo(errs fieldErrors, field, cnNo string) {
	cnNo = strings.TrimSpace(cnNo)
	if cnNo == "" {
		errs.add(field, "is required")
		return
	}
	for _, r := range cnNo {
		if r < '0' || r > '9' {
			errs.add(field, "must be numeric")
			return
		}
	}
}
