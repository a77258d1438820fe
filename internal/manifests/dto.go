package manifests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/pkg/db/models"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgpagination "github.com/overnite/manifest-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

// HeaderInput carries the manifest header for a new batch.
type HeaderInput struct {
	Date  *time.Time
	AwbNo string
	From  string
	To    string
	Flt   *string
}

// LineInput is one consignment of a batch. TotalPrice is required when the
// batch creates a manifest and rejected when it appends to one.
type LineInput struct {
	ConsignorID   uuid.UUID
	ConsigneeName string
	CnNo          string
	Pcs           int
	Kg            decimal.Decimal
	TotalPrice    *decimal.Decimal
	Discount      *decimal.Decimal
	Origin        string
	Destination   string
	Remarks       *string
}

// BatchInput creates a manifest from Header, or appends to ManifestInfoID.
type BatchInput struct {
	ManifestInfoID *uuid.UUID
	Header         HeaderInput
	Lines          []LineInput
}

func (in BatchInput) appending() bool {
	return in.ManifestInfoID != nil
}

type Result struct {
	Created      bool      `json:"-"`
	ManifestInfo *InfoDTO  `json:"manifest_info"`
	Lines        []LineDTO `json:"manifest_lists"`
	Warnings     []string  `json:"warnings"`
}

// Message is the human summary returned with a batch write.
func (r *Result) Message() string {
	if r.Created {
		return "Manifest created successfully"
	}
	return "Manifest updated successfully"
}

type InfoDTO struct {
	ID           uuid.UUID            `json:"id"`
	ManifestNo   string               `json:"manifest_no"`
	Date         string               `json:"date"`
	AwbNo        string               `json:"awb_no"`
	From         string               `json:"from"`
	To           string               `json:"to"`
	Flt          *string              `json:"flt"`
	UserID       uuid.UUID            `json:"user_id"`
	DeliveryDate *string              `json:"delivery_date"`
	Status       enums.ShipmentStatus `json:"status"`
	LineCount    int                  `json:"line_count"`
	TotalPrice   string               `json:"total_price"`
	Lists        []LineDTO            `json:"manifest_lists,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type LineDTO struct {
	ID             uuid.UUID `json:"id"`
	ManifestInfoID uuid.UUID `json:"manifest_info_id"`
	ConsignorID    uuid.UUID `json:"consignor_id"`
	Consignor      string    `json:"consignor,omitempty"`
	ConsigneeName  string    `json:"consignee_name"`
	CnNo           string    `json:"cn_no"`
	Pcs            int       `json:"pcs"`
	Kg             int       `json:"kg"`
	Gram           int       `json:"gram"`
	TotalPrice     string    `json:"total_price"`
	Discount       *string   `json:"discount"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Remarks        *string   `json:"remarks"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InfoFromModel maps a header. Lines are included when they were loaded.
func InfoFromModel(m *models.ManifestInfo, withLines bool) *InfoDTO {
	if m == nil {
		return nil
	}
	dto := &InfoDTO{
		ID:         m.ID,
		ManifestNo: m.ManifestNo,
		Date:       m.Date.Format(dateLayout),
		AwbNo:      m.AwbNo,
		From:       m.From,
		To:         m.To,
		Flt:        m.Flt,
		UserID:     m.UserID,
		Status:     m.Status(),
		LineCount:  len(m.Lists),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.DeliveryDate != nil {
		formatted := m.DeliveryDate.Format(dateLayout)
		dto.DeliveryDate = &formatted
	}
	total := decimal.Zero
	for i := range m.Lists {
		total = total.Add(m.Lists[i].TotalPrice)
	}
	dto.TotalPrice = total.StringFixed(2)
	if withLines {
		dto.Lists = LinesFromModels(m.Lists)
	}
	return dto
}

func LineFromModel(l *models.ManifestList) LineDTO {
	dto := LineDTO{
		ID:             l.ID,
		ManifestInfoID: l.ManifestInfoID,
		ConsignorID:    l.ConsignorID,
		ConsigneeName:  l.ConsigneeName,
		CnNo:           l.CnNo,
		Pcs:            l.Pcs,
		Kg:             l.Kg,
		Gram:           l.Gram,
		TotalPrice:     l.TotalPrice.StringFixed(2),
		Origin:         l.Origin,
		Destination:    l.Destination,
		Remarks:        l.Remarks,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if l.Consignor != nil {
		dto.Consignor = l.Consignor.CompanyName
	}
	if l.Discount.Valid {
		discount := l.Discount.Decimal.StringFixed(2)
		dto.Discount = &discount
	}
	return dto
}

func LinesFromModels(rows []models.ManifestList) []LineDTO {
	out := make([]LineDTO, len(rows))
	for i := range rows {
		out[i] = LineFromModel(&rows[i])
	}
	return out
}

// HeaderUpdate changes only the non-nil header fields.
type HeaderUpdate struct {
	Date     *time.Time
	AwbNo    *string
	From     *string
	To       *string
	Flt      *string
	ClearFlt bool
}

// LineUpdate changes only the non-nil line fields. Changing the consignor,
// weight, discount or lane re-prices the line.
type LineUpdate struct {
	ConsignorID   *uuid.UUID
	ConsigneeName *string
	CnNo          *string
	Pcs           *int
	Kg            *decimal.Decimal
	Discount      *decimal.Decimal
	ClearDiscount bool
	Origin        *string
	Destination   *string
	Remarks       *string
}

func (u LineUpdate) reprices() bool {
	return u.ConsignorID != nil || u.Kg != nil || u.Discount != nil || u.ClearDiscount ||
		u.Origin != nil || u.Destination != nil
}

type LineResult struct {
	Line     LineDTO  `json:"manifest_list"`
	Warnings []string `json:"warnings"`
}

type ListParams struct {
	Status *enums.ShipmentStatus
	Search string
	pkgpagination.Params
}

type ListResult struct {
	Items  []InfoDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

type listQuery struct {
	status *enums.ShipmentStatus
	search string
	limit  int
	cursor *pkgpagination.Cursor
}

// EstimateInput previews the price of a line before it is submitted.
type EstimateInput struct {
	Origin      string
	Destination string
	ConsignorID uuid.UUID
	Kg          decimal.Decimal
	Discount    *decimal.Decimal
	CnNo        string
}

type EstimateResult struct {
	EstimatedTotalPrice string `json:"estimated_total_price"`
	Duplicate           bool   `json:"duplicate"`
	Message             string `json:"message,omitempty"`
}

type CompanyOption struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
}

// FormData feeds the manifest entry form.
type FormData struct {
	Companies []CompanyOption `json:"companies"`
	From      []string        `json:"from"`
	To        []string        `json:"to"`
}

type CnNumber struct {
	ConsigneeName string  `json:"consignee_name"`
	CnNo          string  `json:"cn_no"`
	Pcs           int     `json:"pcs"`
	Kg            int     `json:"kg"`
	Gram          int     `json:"gram"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Remarks       *string `json:"remarks"`
}

// StatementParams selects a consignor's lines, optionally bounded by
// inclusive calendar dates in the business time zone.
type StatementParams struct {
	ConsignorID uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

type StatementLine struct {
	Description     string `json:"description"`
	ConsignmentNote string `json:"consignment_note"`
	DeliveryDate    string `json:"delivery_date"`
	Qty             int    `json:"qty"`
	Total           string `json:"total"`
}

type Statement struct {
	ConsignorID uuid.UUID       `json:"consignor_id"`
	Lines       []StatementLine `json:"data"`
	TotalPrice  string          `json:"total_price"`
}
