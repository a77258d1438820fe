package exports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/clock"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/metrics"
)

type stubRates struct {
	rates map[string]models.ShippingRate
	calls int
	err   error
}

func laneKey(origin, destination string, planID *uuid.UUID) string {
	plan := "default"
	if planID != nil {
		plan = planID.String()
	}
	return origin + "-" + destination + "/" + plan
}

func (s *stubRates) FindLane(_ context.Context, origin, destination string, planID *uuid.UUID) (*models.ShippingRate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rate, ok := s.rates[laneKey(origin, destination, planID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rate, nil
}

type stubManifests struct {
	rows []models.ManifestInfo
	err  error
}

func (s *stubManifests) FindForExport(_ context.Context, ids []uuid.UUID) ([]models.ManifestInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.ManifestInfo
	for _, id := range ids {
		for _, row := range s.rows {
			if row.ID == id {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

var (
	goldPlan       = uuid.New()
	testLetterhead = config.InvoiceConfig{
		CompanyName: "OVERNITE EXPRESS",
		Address:     []string{"Lot 12, Jalan Cargo", "64000 Sepang"},
		Phone:       "03-8787 1234",
		Terms:       "C.O.D.",
		Currency:    "RM",
	}
)

func sampleRates() *stubRates {
	return &stubRates{rates: map[string]models.ShippingRate{
		laneKey("KL", "PEN", nil):       {AdditionalPricePerKg: decimal.NewFromInt(3)},
		laneKey("KL", "PEN", &goldPlan): {AdditionalPricePerKg: decimal.RequireFromString("2.50")},
		laneKey("KL", "JHB", nil):       {AdditionalPricePerKg: decimal.NewFromInt(4)},
	}}
}

func sampleManifests() []models.ManifestInfo {
	acme := &models.Client{ID: uuid.New(), CompanyName: "Acme Sdn Bhd"}
	gold := &models.Client{ID: uuid.New(), CompanyName: "Gold Traders", ShippingPlanID: &goldPlan}
	delivered := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)

	return []models.ManifestInfo{
		{
			ID:         uuid.New(),
			ManifestNo: "202503001",
			AwbNo:      "23288311",
			Date:       time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
			Lists: []models.ManifestList{
				{ConsignorID: acme.ID, Consignor: acme, ConsigneeName: "Penang Traders", CnNo: "5001", Pcs: 2, Kg: 8, TotalPrice: decimal.RequireFromString("26.10"), Discount: decimal.NewNullDecimal(decimal.NewFromInt(10)), Origin: "KL", Destination: "PEN"},
				{ConsignorID: acme.ID, Consignor: acme, ConsigneeName: "Ipoh Mart", CnNo: "5002", Pcs: 1, Kg: 3, Gram: 757, TotalPrice: decimal.NewFromInt(20), Origin: "KL", Destination: "KCH"},
			},
		},
		{
			ID:           uuid.New(),
			ManifestNo:   "202503002",
			AwbNo:        "23288312",
			Date:         time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
			DeliveryDate: &delivered,
			Lists: []models.ManifestList{
				{ConsignorID: gold.ID, Consignor: gold, ConsigneeName: "Penang Traders", CnNo: "5003", Pcs: 3, Kg: 6, TotalPrice: decimal.RequireFromString("17.50"), Origin: "KL", Destination: "PEN"},
			},
		},
	}
}

func TestBuildInvoiceFlattensLines(t *testing.T) {
	rates := sampleRates()
	issued := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	inv, err := BuildInvoice(context.Background(), rates, testLetterhead, issued, sampleManifests())
	require.NoError(t, err)

	require.Len(t, inv.Lines, 3)
	assert.Equal(t, "202503001, 202503002", inv.Number)
	assert.Equal(t, "23288311, 23288312", inv.Reference)
	assert.Equal(t, variousBillTo, inv.BillTo)
	assert.Equal(t, "63.60", inv.Total.StringFixed(2))

	first := inv.Lines[0]
	assert.Equal(t, 1, first.Item)
	assert.Equal(t, "KL - PEN", first.Description)
	assert.Equal(t, "14/03/2025", first.DeliveryDate)
	assert.Equal(t, "3.00", first.UnitPrice.StringFixed(2))
	assert.Equal(t, "10.00", first.Discount.StringFixed(2))

	assert.True(t, inv.Lines[1].UnitPrice.IsZero(), "lane without a rate prints a zero unit price")
	assert.Equal(t, "3.757", inv.Lines[1].Weight.StringFixed(3))

	third := inv.Lines[2]
	assert.Equal(t, 3, third.Item)
	assert.Equal(t, "16/03/2025", third.DeliveryDate)
	assert.Equal(t, "2.50", third.UnitPrice.StringFixed(2))
	assert.Equal(t, "Gold Traders", third.Consignor)
}

func TestBuildInvoiceCachesLanes(t *testing.T) {
	rates := sampleRates()
	rows := sampleManifests()[:1]
	rows[0].Lists = append(rows[0].Lists, rows[0].Lists[0], rows[0].Lists[0])

	inv, err := BuildInvoice(context.Background(), rates, testLetterhead, time.Now(), rows)
	require.NoError(t, err)
	require.Len(t, inv.Lines, 4)
	assert.Equal(t, "Acme Sdn Bhd", inv.BillTo)
	assert.Equal(t, 2, rates.calls, "each lane is looked up once")
}

func TestBuildInvoiceSurfacesLookupFailure(t *testing.T) {
	rates := &stubRates{err: errors.New("connection reset")}
	_, err := BuildInvoice(context.Background(), rates, testLetterhead, time.Now(), sampleManifests())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestJoinRefs(t *testing.T) {
	assert.Equal(t, "", joinRefs(nil))
	assert.Equal(t, "a, b, c", joinRefs([]string{"a", "b", "c"}))
	assert.Equal(t, "a .. e (5)", joinRefs([]string{"a", "b", "c", "d", "e"}))
}

func TestRenderPDF(t *testing.T) {
	inv, err := BuildInvoice(context.Background(), sampleRates(), testLetterhead, time.Now(), sampleManifests())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, inv))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderPDFBreaksLongInvoicesAcrossPages(t *testing.T) {
	rows := sampleManifests()[:1]
	line := rows[0].Lists[0]
	rows[0].Lists = nil
	for i := 0; i < 120; i++ {
		rows[0].Lists = append(rows[0].Lists, line)
	}
	inv, err := BuildInvoice(context.Background(), sampleRates(), testLetterhead, time.Now(), rows)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, inv))
	assert.GreaterOrEqual(t, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")), 3)
}

func TestRenderExcel(t *testing.T) {
	issued := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	inv, err := BuildInvoice(context.Background(), sampleRates(), testLetterhead, issued, sampleManifests())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderExcel(&buf, inv))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	cell := func(name string) string {
		value, err := book.GetCellValue(excelSheet, name)
		require.NoError(t, err)
		return value
	}
	assert.Equal(t, "INVOICE", cell("A1"))
	assert.Equal(t, "OVERNITE EXPRESS", cell("A3"))
	assert.Equal(t, "202503001, 202503002", cell("K3"))
	assert.Equal(t, "31/03/2025", cell("K6"))
	assert.Equal(t, "Total RM", cell("L8"))
	assert.Equal(t, "5001", cell("D9"))
	assert.Equal(t, "Gold Traders", cell("E11"))
	assert.Equal(t, "Total Price:", cell("K12"))
	assert.Equal(t, "63.60", cell("L12"))
}

func newTestService(t *testing.T, rows []models.ManifestInfo) (Service, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Manifests:  &stubManifests{rows: rows},
		Rates:      sampleRates(),
		Letterhead: testLetterhead,
		Clock:      &clock.Fixed{At: time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC)},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Metrics:    metrics.NewManifestMetrics(registry),
	})
	require.NoError(t, err)
	return svc, registry
}

func TestServiceRenderSingleManifest(t *testing.T) {
	rows := sampleManifests()
	svc, registry := newTestService(t, rows)

	doc, err := svc.Render(context.Background(), FormatPDF, []uuid.UUID{rows[0].ID, rows[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "manifest-202503001.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.NotEmpty(t, doc.Body)

	doc, err = svc.Render(context.Background(), FormatExcel, []uuid.UUID{rows[0].ID, rows[1].ID})
	require.NoError(t, err)
	assert.Equal(t, "manifests.xlsx", doc.Filename)

	families, err := registry.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "manifest_exports_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"pdf": 1, "xlsx": 1}, counts)
}

func TestServiceRenderErrors(t *testing.T) {
	rows := sampleManifests()
	svc, _ := newTestService(t, rows)
	ctx := context.Background()

	_, err := svc.Render(ctx, FormatPDF, nil)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Render(ctx, FormatPDF, []uuid.UUID{uuid.Nil})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Render(ctx, Format("docx"), []uuid.UUID{rows[0].ID})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	missing := uuid.New()
	_, err = svc.Render(ctx, FormatExcel, []uuid.UUID{rows[0].ID, missing})
	appErr := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
	assert.Equal(t, map[string]any{"manifest_ids": []string{missing.String()}}, appErr.Details())
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
