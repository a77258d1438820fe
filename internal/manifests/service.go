package manifests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/internal/clients"
	"github.com/overnite/manifest-backend/internal/pricing"
	"github.com/overnite/manifest-backend/internal/shippingrates"
	"github.com/overnite/manifest-backend/pkg/clock"
	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/db/models"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/metrics"
	pkgpagination "github.com/overnite/manifest-backend/pkg/pagination"
)

const (
	maxAllocationAttempts = 3
	cnNoLockKey           = "manifest_lists:cn_no"
	manifestNoLockPrefix  = "manifest_no:"
	statementDateLayout   = "02-01-2006"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns manifest headers, their consignment lines and the shipment
// confirmation flag.
type Service interface {
	CreateOrAppend(ctx context.Context, actorID uuid.UUID, input BatchInput) (*Result, error)
	Get(ctx context.Context, id uuid.UUID) (*InfoDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateHeader(ctx context.Context, id uuid.UUID, input HeaderUpdate) (*InfoDTO, error)
	UpdateLine(ctx context.Context, infoID, lineID uuid.UUID, input LineUpdate) (*LineResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Confirm(ctx context.Context, id uuid.UUID, date *time.Time) (*InfoDTO, error)
	Estimate(ctx context.Context, input EstimateInput) (*EstimateResult, error)
	FormData(ctx context.Context) (*FormData, error)
	CnNumbers(ctx context.Context, consignorID uuid.UUID) ([]CnNumber, error)
	Statement(ctx context.Context, params StatementParams) (*Statement, error)
}

// ServiceParams configure the manifest service.
type ServiceParams struct {
	Tx      txRunner
	Repo    Repository
	Rates   *shippingrates.Repository
	Clients *clients.Repository
	Clock   clock.Clock
	Logger  *logger.Logger
	Metrics *metrics.ManifestMetrics
}

type service struct {
	tx      txRunner
	repo    Repository
	rates   *shippingrates.Repository
	clients *clients.Repository
	clock   clock.Clock
	logg    *logger.Logger
	metrics *metrics.ManifestMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("manifest repository required")
	}
	if params.Rates == nil {
		return nil, fmt.Errorf("shipping rate repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clk := params.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &service{
		tx:      params.Tx,
		repo:    params.Repo,
		rates:   params.Rates,
		clients: params.Clients,
		clock:   clk,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) CreateOrAppend(ctx context.Context, actorID uuid.UUID, input BatchInput) (*Result, error) {
	if err := validateBatch(input); err != nil {
		return nil, err
	}
	if !input.appending() && actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor required")
	}

	var (
		result *Result
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = s.writeBatch(ctx, actorID, input)
		if err == nil {
			break
		}
		if input.appending() || !isManifestNoConflict(err) {
			return nil, err
		}
		if attempt >= maxAllocationAttempts {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a manifest number, retry the request")
		}
		s.metrics.IncNumberConflict()
		logCtx := s.logg.WithFields(ctx, map[string]any{"attempt": attempt})
		s.logg.Warn(logCtx, "manifest.number.conflict")
	}

	logCtx := s.logg.WithManifestID(ctx, result.ManifestInfo.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"manifest_no": result.ManifestInfo.ManifestNo,
		"lines":       len(result.Lines),
		"warnings":    len(result.Warnings),
	})
	if result.Created {
		s.metrics.IncCreated()
		s.logg.Info(logCtx, "manifest.created")
	} else {
		s.logg.Info(logCtx, "manifest.lines.appended")
	}
	s.metrics.AddLines(len(result.Lines))
	return result, nil
}

func (s *service) writeBatch(ctx context.Context, actorID uuid.UUID, input BatchInput) (*Result, error) {
	result := &Result{Created: !input.appending(), Warnings: []string{}}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rates := s.rates.WithTx(tx)
		consignors := s.clients.WithTx(tx)

		var info *models.ManifestInfo
		if input.appending() {
			existing, err := repo.FindInfo(ctx, *input.ManifestInfoID, false)
			if err != nil {
				return mapNotFound(err, "manifest not found", "load manifest")
			}
			info = existing
		} else {
			created, err := s.createHeader(ctx, tx, repo, actorID, input.Header)
			if err != nil {
				return err
			}
			info = created
		}

		if err := db.AdvisoryXactLock(tx, cnNoLockKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cn numbers")
		}

		cache := map[uuid.UUID]*models.Client{}
		seen := map[string]struct{}{}
		lines := make([]models.ManifestList, 0, len(input.Lines))
		for i, in := range input.Lines {
			consignor, err := s.consignor(ctx, consignors, cache, in.ConsignorID)
			if err != nil {
				return withLineField(err, i, "consignor_id")
			}

			cnNo := strings.TrimSpace(in.CnNo)
			duplicate, err := s.isDuplicate(ctx, repo, seen, cnNo)
			if err != nil {
				return err
			}

			line := models.ManifestList{
				ManifestInfoID: info.ID,
				ConsignorID:    consignor.ID,
				ConsigneeName:  strings.TrimSpace(in.ConsigneeName),
				CnNo:           cnNo,
				Pcs:            in.Pcs,
				Origin:         models.NormalizeLocation(in.Origin),
				Destination:    models.NormalizeLocation(in.Destination),
				Remarks:        trimOptional(in.Remarks),
			}
			line.Kg, line.Gram = pricing.SplitWeight(in.Kg)
			if in.Discount != nil {
				line.Discount = decimal.NewNullDecimal(*in.Discount)
			}

			switch {
			case duplicate:
				line.TotalPrice = decimal.Zero
				result.Warnings = append(result.Warnings, duplicateWarning(cnNo))
				s.metrics.IncDuplicateCnNo()
				warnCtx := s.logg.WithFields(ctx, map[string]any{"cn_no": cnNo, "manifest_id": info.ID.String()})
				s.logg.Warn(warnCtx, "manifest.cn_no.duplicate")
			case input.appending():
				quote, err := s.quote(ctx, rates, consignor, in.Origin, in.Destination, in.Kg, in.Discount)
				if err != nil {
					return withLineField(err, i, "origin")
				}
				line.TotalPrice = quote.Total()
			default:
				line.TotalPrice = in.TotalPrice.Round(2)
			}

			lines = append(lines, line)
		}

		if err := repo.CreateLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert manifest lines")
		}
		for i := range lines {
			lines[i].Consignor = cache[lines[i].ConsignorID]
		}

		info.Lists = append(info.Lists, lines...)
		result.ManifestInfo = InfoFromModel(info, false)
		result.Lines = LinesFromModels(lines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) createHeader(ctx context.Context, tx *gorm.DB, repo Repository, actorID uuid.UUID, h HeaderInput) (*models.ManifestInfo, error) {
	now := s.clock.Now()
	prefix := MonthPrefix(now)
	if err := db.AdvisoryXactLock(tx, manifestNoLockPrefix+prefix); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock manifest numbering")
	}
	latest, err := repo.LatestManifestNo(ctx, prefix)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read latest manifest number")
	}

	info := &models.ManifestInfo{
		Date:       dateOnly(*h.Date),
		AwbNo:      strings.TrimSpace(h.AwbNo),
		From:       models.NormalizeLocation(h.From),
		To:         models.NormalizeLocation(h.To),
		Flt:        trimOptional(h.Flt),
		ManifestNo: NextManifestNo(now, latest),
		UserID:     actorID,
	}
	if err := repo.CreateInfo(ctx, info); err != nil {
		if isManifestNoConflict(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create manifest")
	}
	return info, nil
}

func (s *service) consignor(ctx context.Context, lookup pricing.ClientLookup, cache map[uuid.UUID]*models.Client, id uuid.UUID) (*models.Client, error) {
	if client, ok := cache[id]; ok {
		return client, nil
	}
	client, err := pricing.LoadConsignor(ctx, lookup, id)
	if err != nil {
		return nil, err
	}
	cache[id] = client
	return client, nil
}

// isDuplicate checks stored lines and the lines seen earlier in this batch.
func (s *service) isDuplicate(ctx context.Context, repo Repository, seen map[string]struct{}, cnNo string) (bool, error) {
	if _, ok := seen[cnNo]; ok {
		return true, nil
	}
	seen[cnNo] = struct{}{}
	exists, err := repo.CnNoExists(ctx, cnNo, nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cn number")
	}
	return exists, nil
}

func (s *service) quote(ctx context.Context, rates pricing.RateLookup, consignor *models.Client, origin, destination string, weight decimal.Decimal, discount *decimal.Decimal) (pricing.Quote, error) {
	rate, err := pricing.ResolveRate(ctx, rates, origin, destination, consignor.ShippingPlanID)
	if err != nil {
		return pricing.Quote{}, err
	}
	pct := decimal.Zero
	if discount != nil {
		pct = *discount
	}
	return pricing.Calculate(*rate, weight, pct)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InfoDTO, error) {
	info, err := s.repo.FindInfo(ctx, id, true)
	if err != nil {
		return nil, mapNotFound(err, "manifest not found", "load manifest")
	}
	return InfoFromModel(info, true), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		status: params.Status,
		search: strings.TrimSpace(params.Search),
		limit:  pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListInfos(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list manifests")
	}

	rows, nextCursor := pkgpagination.Page(rows, params.Limit, func(row models.ManifestInfo) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})

	items := make([]InfoDTO, len(rows))
	for i := range rows {
		items[i] = *InfoFromModel(&rows[i], false)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) UpdateHeader(ctx context.Context, id uuid.UUID, input HeaderUpdate) (*InfoDTO, error) {
	errs := fieldErrors{}
	if input.Date != nil && input.Date.IsZero() {
		errs.add("date", "is invalid")
	}
	checkNotBlank(errs, "awb_no", input.AwbNo)
	checkNotBlank(errs, "from", input.From)
	checkNotBlank(errs, "to", input.To)
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		info, err := repo.FindInfoForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "manifest not found", "load manifest")
		}
		if input.Date != nil {
			info.Date = dateOnly(*input.Date)
		}
		if input.AwbNo != nil {
			info.AwbNo = strings.TrimSpace(*input.AwbNo)
		}
		if input.From != nil {
			info.From = models.NormalizeLocation(*input.From)
		}
		if input.To != nil {
			info.To = models.NormalizeLocation(*input.To)
		}
		switch {
		case input.ClearFlt:
			info.Flt = nil
		case input.Flt != nil:
			info.Flt = trimOptional(input.Flt)
		}
		if err := repo.SaveInfo(ctx, info); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update manifest")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) UpdateLine(ctx context.Context, infoID, lineID uuid.UUID, input LineUpdate) (*LineResult, error) {
	errs := fieldErrors{}
	if input.ConsignorID != nil && *input.ConsignorID == uuid.Nil {
		errs.add("consignor_id", "is invalid")
	}
	checkNotBlank(errs, "consignee_name", input.ConsigneeName)
	if input.CnNo != nil {
		validateCnNo(errs, "cn_no", *input.CnNo)
	}
	if input.Pcs != nil && *input.Pcs < 1 {
		errs.add("pcs", "must be at least 1")
	}
	if input.Kg != nil && input.Kg.IsNegative() {
		errs.add("kg", "must be at least 0")
	}
	if input.Discount != nil {
		checkDiscount(errs, "discount", *input.Discount)
	}
	checkNotBlank(errs, "origin", input.Origin)
	checkNotBlank(errs, "destination", input.Destination)
	if err := errs.err(); err != nil {
		return nil, err
	}

	result := &LineResult{Warnings: []string{}}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		consignors := s.clients.WithTx(tx)

		if _, err := repo.FindInfoForUpdate(ctx, infoID); err != nil {
			return mapNotFound(err, "manifest not found", "load manifest")
		}
		line, err := repo.FindLine(ctx, infoID, lineID)
		if err != nil {
			return mapNotFound(err, "manifest line not found", "load manifest line")
		}
		if err := db.AdvisoryXactLock(tx, cnNoLockKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cn numbers")
		}

		if input.ConsignorID != nil && *input.ConsignorID != line.ConsignorID {
			consignor, err := pricing.LoadConsignor(ctx, consignors, *input.ConsignorID)
			if err != nil {
				return err
			}
			line.ConsignorID = consignor.ID
			line.Consignor = consignor
		}
		if input.ConsigneeName != nil {
			line.ConsigneeName = strings.TrimSpace(*input.ConsigneeName)
		}
		cnChanged := false
		if input.CnNo != nil {
			cnNo := strings.TrimSpace(*input.CnNo)
			cnChanged = cnNo != line.CnNo
			line.CnNo = cnNo
		}
		if input.Pcs != nil {
			line.Pcs = *input.Pcs
		}
		if input.Kg != nil {
			line.Kg, line.Gram = pricing.SplitWeight(*input.Kg)
		}
		switch {
		case input.ClearDiscount:
			line.Discount = decimal.NullDecimal{}
		case input.Discount != nil:
			line.Discount = decimal.NewNullDecimal(*input.Discount)
		}
		if input.Origin != nil {
			line.Origin = models.NormalizeLocation(*input.Origin)
		}
		if input.Destination != nil {
			line.Destination = models.NormalizeLocation(*input.Destination)
		}
		if input.Remarks != nil {
			line.Remarks = trimOptional(input.Remarks)
		}

		duplicate, err := repo.CnNoExists(ctx, line.CnNo, &line.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cn number")
		}
		switch {
		case duplicate && (cnChanged || line.TotalPrice.IsZero()):
			line.TotalPrice = decimal.Zero
			if cnChanged {
				result.Warnings = append(result.Warnings, duplicateWarning(line.CnNo))
				s.metrics.IncDuplicateCnNo()
			}
		case input.reprices() || cnChanged:
			if line.Consignor == nil {
				consignor, err := pricing.LoadConsignor(ctx, consignors, line.ConsignorID)
				if err != nil {
					return err
				}
				line.Consignor = consignor
			}
			var discount *decimal.Decimal
			if line.Discount.Valid {
				discount = &line.Discount.Decimal
			}
			quote, err := s.quote(ctx, s.rates.WithTx(tx), line.Consignor, line.Origin, line.Destination, line.Weight(), discount)
			if err != nil {
				return err
			}
			line.TotalPrice = quote.Total()
		}

		if err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update manifest line")
		}
		result.Line = LineFromModel(line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.SoftDeleteInfo(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete manifest")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "manifest not found")
	}
	s.logg.Info(s.logg.WithManifestID(ctx, id.String()), "manifest.deleted")
	return nil
}

// Confirm moves a shipment from pending to delivered. The transition happens
// once; a delivered manifest keeps its original delivery date.
func (s *service) Confirm(ctx context.Context, id uuid.UUID, date *time.Time) (*InfoDTO, error) {
	delivered := clock.Today(s.clock)
	if date != nil && !date.IsZero() {
		delivered = *date
	}
	delivered = dateOnly(delivered)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		info, err := repo.FindInfoForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err, "manifest not found", "load manifest")
		}
		if info.DeliveryDate != nil {
			return errAlreadyConfirmed()
		}
		updated, err := repo.MarkDelivered(ctx, id, delivered)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm shipment")
		}
		if !updated {
			return errAlreadyConfirmed()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncConfirmed()
	logCtx := s.logg.WithManifestID(ctx, id.String())
	s.logg.Info(s.logg.WithField(logCtx, "delivery_date", delivered.Format(dateLayout)), "manifest.confirmed")
	return s.Get(ctx, id)
}

func (s *service) Estimate(ctx context.Context, input EstimateInput) (*EstimateResult, error) {
	errs := fieldErrors{}
	if input.ConsignorID == uuid.Nil {
		errs.add("consignor_id", "is required")
	}
	validateCnNo(errs, "cn_no", input.CnNo)
	if input.Kg.IsNegative() {
		errs.add("kg", "must be at least 0")
	}
	if input.Discount != nil {
		checkDiscount(errs, "discount", *input.Discount)
	}
	checkRequired(errs, "origin", input.Origin)
	checkRequired(errs, "destination", input.Destination)
	if err := errs.err(); err != nil {
		return nil, err
	}

	cnNo := strings.TrimSpace(input.CnNo)
	exists, err := s.repo.CnNoExists(ctx, cnNo, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cn number")
	}
	if exists {
		return &EstimateResult{
			EstimatedTotalPrice: decimal.Zero.StringFixed(2),
			Duplicate:           true,
			Message:             fmt.Sprintf("CN No: %s already exists, total price set to 0.", cnNo),
		}, nil
	}

	consignor, err := pricing.LoadConsignor(ctx, s.clients, input.ConsignorID)
	if err != nil {
		return nil, err
	}
	quote, err := s.quote(ctx, s.rates, consignor, input.Origin, input.Destination, input.Kg, input.Discount)
	if err != nil {
		return nil, err
	}
	return &EstimateResult{EstimatedTotalPrice: quote.FinalPrice.StringFixed(2)}, nil
}

func (s *service) FormData(ctx context.Context) (*FormData, error) {
	companies, err := s.clients.ListConsignors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list consignors")
	}
	origins, err := s.rates.DistinctOrigins(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list origins")
	}
	destinations, err := s.rates.DistinctDestinations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list destinations")
	}

	options := make([]CompanyOption, len(companies))
	for i, c := range companies {
		options[i] = CompanyOption{ID: c.ID, CompanyName: c.CompanyName}
	}
	return &FormData{Companies: options, From: origins, To: destinations}, nil
}

func (s *service) CnNumbers(ctx context.Context, consignorID uuid.UUID) ([]CnNumber, error) {
	rows, err := s.repo.LinesByConsignor(ctx, consignorID, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cn numbers")
	}
	out := make([]CnNumber, len(rows))
	for i, row := range rows {
		out[i] = CnNumber{
			ConsigneeName: row.ConsigneeName,
			CnNo:          row.CnNo,
			Pcs:           row.Pcs,
			Kg:            row.Kg,
			Gram:          row.Gram,
			Origin:        row.Origin,
			Destination:   row.Destination,
			Remarks:       row.Remarks,
		}
	}
	return out, nil
}

// Statement lists a consignor's lines with their total. Start and end dates
// are inclusive calendar days in the business time zone.
func (s *service) Statement(ctx context.Context, params StatementParams) (*Statement, error) {
	if params.ConsignorID == uuid.Nil {
		return nil, pkgerrors.Field("consignor_id", "is required")
	}
	loc := s.clock.Now().Location()

	var from, to *time.Time
	if params.StartDate != nil {
		start := startOfDay(*params.StartDate, loc).UTC()
		from = &start
	}
	if params.EndDate != nil {
		end := startOfDay(*params.EndDate, loc).AddDate(0, 0, 1).UTC()
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, pkgerrors.Field("end_date", "must not be before start_date")
	}

	rows, err := s.repo.LinesByConsignor(ctx, params.ConsignorID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load statement")
	}

	total := decimal.Zero
	lines := make([]StatementLine, len(rows))
	for i, row := range rows {
		total = total.Add(row.TotalPrice)
		lines[i] = StatementLine{
			Description:     fmt.Sprintf("DCN %s-%s", row.Origin, row.Destination),
			ConsignmentNote: row.CnNo,
			DeliveryDate:    row.CreatedAt.In(loc).Format(statementDateLayout),
			Qty:             row.Pcs,
			Total:           row.TotalPrice.StringFixed(2),
		}
	}
	return &Statement{ConsignorID: params.ConsignorID, Lines: lines, TotalPrice: total.StringFixed(2)}, nil
}

func duplicateWarning(cnNo string) string {
	return fmt.Sprintf("CN No: %s already exists, the total price will be set to 0", cnNo)
}

func errAlreadyConfirmed() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "shipment already confirmed")
}

func isManifestNoConflict(err error) bool {
	return db.IsUniqueViolation(err, manifestNoConstraint) || db.IsUniqueViolation(err, manifestNoColumn)
}

func mapNotFound(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internalMsg)
}

// withLineField points a consignor or rate domain error at the offending line.
func withLineField(err error, index int, field string) error {
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeDomain {
		return err
	}
	return pkgerrors.New(appErr.Code(), appErr.Message()).
		WithDetails(map[string]string{fmt.Sprintf("manifest_lists[%d].%s", index, field): appErr.Message()})
}

func checkNotBlank(errs fieldErrors, field string, value *string) {
	if value != nil && strings.TrimSpace(*value) == "" {
		errs.add(field, "must not be blank")
	}
}

func checkRequired(errs fieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
	}
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// dateOnly keeps the calendar date of t at UTC midnight, the form DATE
// columns are written in.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
