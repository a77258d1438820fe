package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/overnite/manifest-backend/api/middleware"
	"github.com/overnite/manifest-backend/api/responses"
	"github.com/overnite/manifest-backend/api/validators"
	"github.com/overnite/manifest-backend/internal/manifests"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/pagination"
	"github.com/overnite/manifest-backend/pkg/types"
)

type manifestLineRequest struct {
	ConsignorID   uuid.UUID        `json:"consignor_id"`
	ConsigneeName string           `json:"consignee_name"`
	CnNo          types.FlexString `json:"cn_no"`
	Pcs           int              `json:"pcs"`
	Kg            *decimal.Decimal `json:"kg" validate:"required"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	Discount      *decimal.Decimal `json:"discount"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	Remarks       *string          `json:"remarks"`
}

type manifestBatchRequest struct {
	ManifestInfoID *uuid.UUID            `json:"manifest_info_id"`
	Date           *types.Date           `json:"date"`
	AwbNo          types.FlexString      `json:"awb_no"`
	From           string                `json:"from"`
	To             string                `json:"to"`
	Flt            *string               `json:"flt"`
	Lines          []manifestLineRequest `json:"manifest_lists" validate:"dive"`
}

func (b manifestBatchRequest) input() manifests.BatchInput {
	in := manifests.BatchInput{
		ManifestInfoID: b.ManifestInfoID,
		Header: manifests.HeaderInput{
			Date:  b.Date.Ptr(),
			AwbNo: b.AwbNo.String(),
			From:  b.From,
			To:    b.To,
			Flt:   b.Flt,
		},
		Lines: make([]manifests.LineInput, len(b.Lines)),
	}
	for i, l := range b.Lines {
		in.Lines[i] = manifests.LineInput{
			ConsignorID:   l.ConsignorID,
			ConsigneeName: l.ConsigneeName,
			CnNo:          l.CnNo.String(),
			Pcs:           l.Pcs,
			Kg:            *l.Kg,
			TotalPrice:    l.TotalPrice,
			Discount:      l.Discount,
			Origin:        l.Origin,
			Destination:   l.Destination,
			Remarks:       l.Remarks,
		}
	}
	return in
}

type manifestHeaderRequest struct {
	Date  *types.Date          `json:"date"`
	AwbNo *types.FlexString    `json:"awb_no"`
	From  *string              `json:"from"`
	To    *string              `json:"to"`
	Flt   types.NullableString `json:"flt"`
}

type manifestLineUpdateRequest struct {
	ConsignorID   *uuid.UUID            `json:"consignor_id"`
	ConsigneeName *string               `json:"consignee_name"`
	CnNo          *types.FlexString     `json:"cn_no"`
	Pcs           *int                  `json:"pcs"`
	Kg            *decimal.Decimal      `json:"kg"`
	Discount      types.NullableDecimal `json:"discount"`
	Origin        *string               `json:"origin"`
	Destination   *string               `json:"destination"`
	Remarks       *string               `json:"remarks"`
}

type manifestConfirmRequest struct {
	Date *types.Date `json:"date"`
}

type manifestEstimateRequest struct {
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	ConsignorID uuid.UUID        `json:"consignor_id"`
	Kg          *decimal.Decimal `json:"kg" validate:"required"`
	Discount    *decimal.Decimal `json:"discount"`
	CnNo        types.FlexString `json:"cn_no"`
}

type batchResponse struct {
	Message string `json:"message"`
	*manifests.Result
}

func ManifestsList(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := manifests.ListParams{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 100),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseShipmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
					WithDetails(map[string]string{"status": "must be one of pending delivered"}))
				return
			}
			params.Status = &status
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ManifestsCreate creates a manifest, or appends to one when the body names
// manifest_info_id.
func ManifestsCreate(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		var body manifestBatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeBatch(w, r, svc, logg, body.input())
	}
}

// ManifestsAppendLines adds consignments to the manifest in the path.
func ManifestsAppendLines(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body manifestBatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.ManifestInfoID = &id
		writeBatch(w, r, svc, logg, body.input())
	}
}

func writeBatch(w http.ResponseWriter, r *http.Request, svc manifests.Service, logg *logger.Logger, input manifests.BatchInput) {
	result, err := svc.CreateOrAppend(r.Context(), middleware.ClientIDFromContext(r.Context()), input)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, batchResponse{Message: result.Message(), Result: result})
}

func ManifestsFormData(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}
		data, err := svc.FormData(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, data)
	}
}

// ManifestsEstimate previews a line price without writing anything.
func ManifestsEstimate(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		var body manifestEstimateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Estimate(r.Context(), manifests.EstimateInput{
			Origin:      body.Origin,
			Destination: body.Destination,
			ConsignorID: body.ConsignorID,
			Kg:          *body.Kg,
			Discount:    body.Discount,
			CnNo:        body.CnNo.String(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ManifestsGet(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		info, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

func ManifestsUpdate(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body manifestHeaderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := manifests.HeaderUpdate{
			From:     body.From,
			To:       body.To,
			Flt:      body.Flt.Value,
			ClearFlt: body.Flt.Cleared(),
		}
		if body.Date != nil {
			date := body.Date.Time
			update.Date = &date
		}
		if body.AwbNo != nil {
			awb := body.AwbNo.String()
			update.AwbNo = &awb
		}

		info, err := svc.UpdateHeader(r.Context(), id, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

func ManifestsUpdateLine(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		infoID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body manifestLineUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := manifests.LineUpdate{
			ConsignorID:   body.ConsignorID,
			ConsigneeName: body.ConsigneeName,
			Pcs:           body.Pcs,
			Kg:            body.Kg,
			Discount:      body.Discount.Value,
			ClearDiscount: body.Discount.Cleared(),
			Origin:        body.Origin,
			Destination:   body.Destination,
			Remarks:       body.Remarks,
		}
		if body.CnNo != nil {
			cn := body.CnNo.String()
			update.CnNo = &cn
		}

		result, err := svc.UpdateLine(r.Context(), infoID, lineID, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ManifestsDelete(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ManifestsConfirm marks the shipment delivered, today unless a date is given.
func ManifestsConfirm(svc manifests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifests service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body manifestConfirmRequest
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.Confirm(r.Context(), id, body.Date.Ptr())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"message":       "Shipment confirmed successfully",
			"manifest_info": info,
		})
	}
}
