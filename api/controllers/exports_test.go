package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overnite/manifest-backend/internal/exports"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

type stubExports struct {
	format exports.Format
	ids    []uuid.UUID
	err    error
}

func (s *stubExports) Render(ctx context.Context, format exports.Format, ids []uuid.UUID) (*exports.Document, error) {
	s.format, s.ids = format, ids
	if s.err != nil {
		return nil, s.err
	}
	return &exports.Document{
		Filename:    "manifest-202503001." + string(format),
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.3 stub"),
	}, nil
}

func TestExportManifestStreamsAttachment(t *testing.T) {
	svc := &stubExports{}
	id := uuid.New()
	req := withParams(jsonRequest(http.MethodGet, "/api/manifest/pdf/"+id.String(), ""), map[string]string{"id": id.String()})
	rec := serve(ExportManifest(svc, exports.FormatPDF, nil), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exports.FormatPDF, svc.format)
	assert.Equal(t, []uuid.UUID{id}, svc.ids)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=manifest-202503001.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 stub", rec.Body.String())
}

func TestExportManifestsReadsBodyIDs(t *testing.T) {
	svc := &stubExports{}
	a, b := uuid.New(), uuid.New()
	body := `{"manifest_ids":["` + a.String() + `","` + b.String() + `"]}`
	rec := serve(ExportManifests(svc, exports.FormatExcel, nil), jsonRequest(http.MethodPost, "/api/manifest/excel", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exports.FormatExcel, svc.format)
	assert.Equal(t, []uuid.UUID{a, b}, svc.ids)
}

func TestExportManifestsRequiresIDs(t *testing.T) {
	rec := serve(ExportManifests(&stubExports{}, exports.FormatPDF, nil), jsonRequest(http.MethodPost, "/", `{"manifest_ids":[]}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Details, "manifest_ids")
}

func TestExportManifestMissingIsNotFound(t *testing.T) {
	svc := &stubExports{err: pkgerrors.New(pkgerrors.CodeNotFound, "manifest not found")}
	id := uuid.New()
	rec := serve(ExportManifest(svc, exports.FormatExcel, nil), withParams(jsonRequest(http.MethodGet, "/", ""), map[string]string{"id": id.String()}))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
