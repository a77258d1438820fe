package exports

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/pkg/clock"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/metrics"
)

// Format selects the rendered document type.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
)

const maxExportManifests = 200

func (f Format) contentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Document is a rendered export ready to stream.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type manifestSource interface {
	FindForExport(ctx context.Context, ids []uuid.UUID) ([]models.ManifestInfo, error)
}

// Service renders manifests as invoices.
type Service interface {
	Render(ctx context.Context, format Format, ids []uuid.UUID) (*Document, error)
}

type ServiceParams struct {
	Manifests  manifestSource
	Rates      pricing.RateLookup
	Letterhead config.InvoiceConfig
	Clock      clock.Clock
	Logger     *logger.Logger
	Metrics    *metrics.ManifestMetrics
}

type service struct {
	manifests  manifestSource
	rates      pricing.RateLookup
	letterhead config.InvoiceConfig
	clock      clock.Clock
	logg       *logger.Logger
	metrics    *metrics.ManifestMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Manifests == nil {
		return nil, fmt.Errorf("manifest source required")
	}
	if params.Rates == nil {
		return nil, fmt.Errorf("rate lookup required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clk := params.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &service{
		manifests:  params.Manifests,
		rates:      params.Rates,
		letterhead: params.Letterhead,
		clock:      clk,
		logg:       params.Logger,
		metrics:    params.Metrics,
	}, nil
}

func (s *service) Render(ctx context.Context, format Format, ids []uuid.UUID) (*Document, error) {
	if format != FormatPDF && format != FormatExcel {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported export format")
	}
	ids, err := uniqueIDs(ids)
	if err != nil {
		return nil, err
	}

	rows, err := s.manifests.FindForExport(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load manifests")
	}
	if missing := missingIDs(ids, rows); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manifest not found").
			WithDetails(map[string]any{"manifest_ids": missing})
	}

	inv, err := BuildInvoice(ctx, s.rates, s.letterhead, clock.Today(s.clock), rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build invoice")
	}

	var buf bytes.Buffer
	switch format {
	case FormatPDF:
		err = RenderPDF(&buf, inv)
	case FormatExcel:
		err = RenderExcel(&buf, inv)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render "+string(format))
	}

	s.metrics.IncExport(string(format))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"format":    string(format),
		"manifests": len(rows),
		"lines":     len(inv.Lines),
		"bytes":     buf.Len(),
	})
	s.logg.Info(logCtx, "manifest.exported")

	return &Document{
		Filename:    filename(format, rows),
		ContentType: format.contentType(),
		Body:        buf.Bytes(),
	}, nil
}

func uniqueIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.Field("manifest_ids", "must contain at least 1 item")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, pkgerrors.Field("manifest_ids", "must contain valid ids")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) > maxExportManifests {
		return nil, pkgerrors.Field("manifest_ids", fmt.Sprintf("must contain at most %d items", maxExportManifests))
	}
	return out, nil
}

func missingIDs(ids []uuid.UUID, rows []models.ManifestInfo) []string {
	found := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		found[row.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	return missing
}

func filename(format Format, rows []models.ManifestInfo) string {
	if len(rows) == 1 {
		return fmt.Sprintf("manifest-%s.%s", strings.TrimSpace(rows[0].ManifestNo), format)
	}
	return fmt.Sprintf("manifests.%s", format)
}
