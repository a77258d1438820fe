package controllers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overnite/manifest-backend/internal/manifests"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
)

type stubManifests struct {
	createFn     func(ctx context.Context, actorID uuid.UUID, input manifests.BatchInput) (*manifests.Result, error)
	listFn       func(ctx context.Context, params manifests.ListParams) (*manifests.ListResult, error)
	headerFn     func(ctx context.Context, id uuid.UUID, input manifests.HeaderUpdate) (*manifests.InfoDTO, error)
	lineFn       func(ctx context.Context, infoID, lineID uuid.UUID, input manifests.LineUpdate) (*manifests.LineResult, error)
	confirmFn    func(ctx context.Context, id uuid.UUID, date *time.Time) (*manifests.InfoDTO, error)
	estimateFn   func(ctx context.Context, input manifests.EstimateInput) (*manifests.EstimateResult, error)
	statementFn  func(ctx context.Context, params manifests.StatementParams) (*manifests.Statement, error)
	deleteCalled uuid.UUID
}

func (s *stubManifests) CreateOrAppend(ctx context.Context, actorID uuid.UUID, input manifests.BatchInput) (*manifests.Result, error) {
	return s.createFn(ctx, actorID, input)
}

func (s *stubManifests) Get(ctx context.Context, id uuid.UUID) (*manifests.InfoDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manifest not found")
}

func (s *stubManifests) List(ctx context.Context, params manifests.ListParams) (*manifests.ListResult, error) {
	return s.listFn(ctx, params)
}

func (s *stubManifests) UpdateHeader(ctx context.Context, id uuid.UUID, input manifests.HeaderUpdate) (*manifests.InfoDTO, error) {
	return s.headerFn(ctx, id, input)
}

func (s *stubManifests) UpdateLine(ctx context.Context, infoID, lineID uuid.UUID, input manifests.LineUpdate) (*manifests.LineResult, error) {
	return s.lineFn(ctx, infoID, lineID, input)
}

func (s *stubManifests) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleteCalled = id
	return nil
}

func (s *stubManifests) Confirm(ctx context.Context, id uuid.UUID, date *time.Time) (*manifests.InfoDTO, error) {
	return s.confirmFn(ctx, id, date)
}

func (s *stubManifests) Estimate(ctx context.Context, input manifests.EstimateInput) (*manifests.EstimateResult, error) {
	return s.estimateFn(ctx, input)
}

func (s *stubManifests) FormData(ctx context.Context) (*manifests.FormData, error) {
	return &manifests.FormData{From: []string{"KL"}, To: []string{"PEN"}}, nil
}

func (s *stubManifests) CnNumbers(ctx context.Context, consignorID uuid.UUID) ([]manifests.CnNumber, error) {
	return []manifests.CnNumber{{CnNo: "1001"}}, nil
}

func (s *stubManifests) Statement(ctx context.Context, params manifests.StatementParams) (*manifests.Statement, error) {
	return s.statementFn(ctx, params)
}

const createBody = `{
	"date": "2025-03-14",
	"awb_no": 77812,
	"from": "KL",
	"to": "PEN",
	"manifest_lists": [
		{"consignor_id": "%s", "consignee_name": "Beta", "cn_no": 1001, "pcs": 2, "kg": "12.345", "total_price": "40.00", "origin": "KL", "destination": "PEN"},
		{"consignor_id": "%s", "consignee_name": "Gamma", "cn_no": "1002", "pcs": 1, "kg": 3, "total_price": 15, "discount": 10, "origin": "KL", "destination": "PEN", "remarks": "fragile"}
	]
}`

func TestManifestsCreateMapsBatchAndActor(t *testing.T) {
	actor := uuid.New()
	consignor := uuid.New()
	var got manifests.BatchInput
	var gotActor uuid.UUID
	svc := &stubManifests{createFn: func(ctx context.Context, actorID uuid.UUID, input manifests.BatchInput) (*manifests.Result, error) {
		got, gotActor = input, actorID
		return &manifests.Result{
			Created:      true,
			ManifestInfo: &manifests.InfoDTO{ManifestNo: "202503001"},
			Warnings:     []string{"CN No: 1001 already exists, the total price will be set to 0"},
		}, nil
	}}

	body := fmt.Sprintf(createBody, consignor, consignor)
	req := asClient(jsonRequest(http.MethodPost, "/api/manifests", body), actor, enums.ClientRoleAdmin)
	rec := serve(ManifestsCreate(svc, nil), req)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, actor, gotActor)
	assert.Nil(t, got.ManifestInfoID)
	require.NotNil(t, got.Header.Date)
	assert.Equal(t, "2025-03-14", got.Header.Date.Format("2006-01-02"))
	assert.Equal(t, "77812", got.Header.AwbNo)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "1001", got.Lines[0].CnNo)
	assert.Equal(t, "12.345", got.Lines[0].Kg.String())
	assert.Equal(t, "15", got.Lines[1].TotalPrice.String())
	assert.Equal(t, "10", got.Lines[1].Discount.String())
	assert.Equal(t, "fragile", *got.Lines[1].Remarks)

	var data struct {
		Message      string              `json:"message"`
		ManifestInfo manifests.InfoDTO   `json:"manifest_info"`
		Warnings     []string            `json:"warnings"`
		Lines        []manifests.LineDTO `json:"manifest_lists"`
	}
	decodeData(t, rec, &data)
	assert.Equal(t, "Manifest created successfully", data.Message)
	assert.Equal(t, "202503001", data.ManifestInfo.ManifestNo)
	assert.Len(t, data.Warnings, 1)
}

func TestManifestsCreateRequiresKg(t *testing.T) {
	svc := &stubManifests{createFn: func(ctx context.Context, actorID uuid.UUID, input manifests.BatchInput) (*manifests.Result, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}
	body := `{"date":"2025-03-14","awb_no":"1","from":"KL","to":"PEN","manifest_lists":[{"cn_no":"1","pcs":1}]}`
	rec := serve(ManifestsCreate(svc, nil), jsonRequest(http.MethodPost, "/api/manifests", body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, "is required", env.Error.Details["manifest_lists[0].kg"])
}

func TestManifestsCreateSurfacesServiceValidation(t *testing.T) {
	svc := &stubManifests{createFn: func(ctx context.Context, actorID uuid.UUID, input manifests.BatchInput) (*manifests.Result, error) {
		return nil, pkgerrors.Field("manifest_lists[1].cn_no", "is required")
	}}
	body := `{"manifest_lists":[{"kg":1},{"kg":2}]}`
	rec := serve(ManifestsCreate(svc, nil), jsonRequest(http.MethodPost, "/api/manifests", body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeValidation), env.Error.Code)
	assert.Equal(t, "is required", env.Error.Details["manifest_lists[1].cn_no"])
}

func TestManifestsAppendUsesPathID(t *testing.T) {
	infoID := uuid.New()
	var got manifests.BatchInput
	svc := &stubManifests{createFn: func(ctx context.Context, actorID uuid.UUID, input manifests.BatchInput) (*manifests.Result, error) {
		got = input
		return &manifests.Result{}, nil
	}}
	body := `{"manifest_lists":[{"consignor_id":"` + uuid.NewString() + `","kg":"3.757","cn_no":"2001","pcs":1,"origin":"KL","destination":"PEN"}]}`
	req := withParams(jsonRequest(http.MethodPost, "/api/manifests/"+infoID.String()+"/lists", body), map[string]string{"id": infoID.String()})
	rec := serve(ManifestsAppendLines(svc, nil), req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got.ManifestInfoID)
	assert.Equal(t, infoID, *got.ManifestInfoID)
	assert.Nil(t, got.Lines[0].TotalPrice)

	var data struct {
		Message string `json:"message"`
	}
	decodeData(t, rec, &data)
	assert.Equal(t, "Manifest updated successfully", data.Message)
}

func TestManifestsConfirmAcceptsEmptyBody(t *testing.T) {
	id := uuid.New()
	var gotDate *time.Time
	svc := &stubManifests{confirmFn: func(ctx context.Context, got uuid.UUID, date *time.Time) (*manifests.InfoDTO, error) {
		gotDate = date
		return &manifests.InfoDTO{ID: got, Status: enums.ShipmentStatusDelivered}, nil
	}}

	req := withParams(jsonRequest(http.MethodPost, "/", ""), map[string]string{"id": id.String()})
	rec := serve(ManifestsConfirm(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotDate)

	req = withParams(jsonRequest(http.MethodPost, "/", `{"date":"2025-03-20"}`), map[string]string{"id": id.String()})
	rec = serve(ManifestsConfirm(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotDate)
	assert.Equal(t, 20, gotDate.Day())
}

func TestManifestsConfirmTwiceIsBadRequest(t *testing.T) {
	svc := &stubManifests{confirmFn: func(ctx context.Context, id uuid.UUID, date *time.Time) (*manifests.InfoDTO, error) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment already confirmed")
	}}
	req := withParams(jsonRequest(http.MethodPost, "/", ""), map[string]string{"id": uuid.NewString()})
	rec := serve(ManifestsConfirm(svc, nil), req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "shipment already confirmed", decodeError(t, rec).Error.Message)
}

func TestManifestsUpdateLineMapsNullDiscount(t *testing.T) {
	var got manifests.LineUpdate
	svc := &stubManifests{lineFn: func(ctx context.Context, infoID, lineID uuid.UUID, input manifests.LineUpdate) (*manifests.LineResult, error) {
		got = input
		return &manifests.LineResult{}, nil
	}}
	params := map[string]string{"id": uuid.NewString(), "lineId": uuid.NewString()}

	req := withParams(jsonRequest(http.MethodPut, "/", `{"discount":null,"cn_no":3003,"kg":4.2}`), params)
	rec := serve(ManifestsUpdateLine(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.ClearDiscount)
	assert.Nil(t, got.Discount)
	assert.Equal(t, "3003", *got.CnNo)
	assert.Equal(t, "4.2", got.Kg.String())

	req = withParams(jsonRequest(http.MethodPut, "/", `{"discount":5}`), params)
	rec = serve(ManifestsUpdateLine(svc, nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.ClearDiscount)
	assert.Equal(t, "5", got.Discount.String())
}

func TestManifestsUpdateHeaderClearsFlight(t *testing.T) {
	var got manifests.HeaderUpdate
	svc := &stubManifests{headerFn: func(ctx context.Context, id uuid.UUID, input manifests.HeaderUpdate) (*manifests.InfoDTO, error) {
		got = input
		return &manifests.InfoDTO{ID: id}, nil
	}}
	req := withParams(jsonRequest(http.MethodPut, "/", `{"flt":null,"awb_no":"A-1"}`), map[string]string{"id": uuid.NewString()})
	rec := serve(ManifestsUpdate(svc, nil), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.ClearFlt)
	assert.Equal(t, "A-1", *got.AwbNo)
	assert.Nil(t, got.Date)
}

func TestManifestsListParsesQuery(t *testing.T) {
	var got manifests.ListParams
	svc := &stubManifests{listFn: func(ctx context.Context, params manifests.ListParams) (*manifests.ListResult, error) {
		got = params
		return &manifests.ListResult{}, nil
	}}

	rec := serve(ManifestsList(svc, nil), jsonRequest(http.MethodGet, "/api/manifests?status=pending&limit=5&search=202503&cursor=abc", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Status)
	assert.Equal(t, enums.ShipmentStatusPending, *got.Status)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "202503", got.Search)
	assert.Equal(t, "abc", got.Cursor)

	rec = serve(ManifestsList(svc, nil), jsonRequest(http.MethodGet, "/api/manifests?status=lost", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestManifestsEstimateAndDelete(t *testing.T) {
	var got manifests.EstimateInput
	svc := &stubManifests{estimateFn: func(ctx context.Context, input manifests.EstimateInput) (*manifests.EstimateResult, error) {
		got = input
		return &manifests.EstimateResult{EstimatedTotalPrice: "29.00"}, nil
	}}
	consignor := uuid.New()
	body := `{"origin":"KL","destination":"PEN","consignor_id":"` + consignor.String() + `","kg":8,"cn_no":5005}`
	rec := serve(ManifestsEstimate(svc, nil), jsonRequest(http.MethodPost, "/", body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5005", got.CnNo)
	assert.Equal(t, consignor, got.ConsignorID)

	var data manifests.EstimateResult
	decodeData(t, rec, &data)
	assert.Equal(t, "29.00", data.EstimatedTotalPrice)

	id := uuid.New()
	rec = serve(ManifestsDelete(svc, nil), withParams(jsonRequest(http.MethodDelete, "/", ""), map[string]string{"id": id.String()}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, svc.deleteCalled)
}

func TestManifestsEstimateRequiresKg(t *testing.T) {
	svc := &stubManifests{estimateFn: func(ctx context.Context, input manifests.EstimateInput) (*manifests.EstimateResult, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}
	body := `{"origin":"KL","destination":"PEN","consignor_id":"` + uuid.New().String() + `","cn_no":5006}`
	rec := serve(ManifestsEstimate(svc, nil), jsonRequest(http.MethodPost, "/", body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "is required", decodeError(t, rec).Error.Details["kg"])
}

func TestManifestsGetRejectsBadID(t *testing.T) {
	rec := serve(ManifestsGet(&stubManifests{}, nil), withParams(jsonRequest(http.MethodGet, "/", ""), map[string]string{"id": "123"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(ManifestsGet(&stubManifests{}, nil), withParams(jsonRequest(http.MethodGet, "/", ""), map[string]string{"id": uuid.NewString()}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManifestsNilService(t *testing.T) {
	rec := serve(ManifestsCreate(nil, nil), jsonRequest(http.MethodPost, "/", "{}"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
