package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/api/responses"
	"github.com/overnite/manifest-backend/api/validators"
	"github.com/overnite/manifest-backend/internal/exports"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
)

type exportRequest struct {
	ManifestIDs []uuid.UUID `json:"manifest_ids" validate:"required,min=1"`
}

// ExportManifest renders the manifest in the path as a single invoice.
func ExportManifest(svc exports.Service, format exports.Format, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		renderExport(w, r, svc, format, []uuid.UUID{id}, logg)
	}
}

// ExportManifests renders every manifest in the body onto one invoice.
func ExportManifests(svc exports.Service, format exports.Format, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		var body exportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		renderExport(w, r, svc, format, body.ManifestIDs, logg)
	}
}

func renderExport(w http.ResponseWriter, r *http.Request, svc exports.Service, format exports.Format, ids []uuid.UUID, logg *logger.Logger) {
	doc, err := svc.Render(r.Context(), format, ids)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteFile(w, doc.Filename, doc.ContentType, doc.Body)
}
