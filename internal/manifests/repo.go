package manifests

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/overnite/manifest-backend/internal/repo"
	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/db/models"
	"github.com/overnite/manifest-backend/pkg/enums"
)

// Repository defines persistence for manifest headers and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateInfo(ctx context.Context, info *models.ManifestInfo) error
	FindInfo(ctx context.Context, id uuid.UUID, withLines bool) (*models.ManifestInfo, error)
	FindInfoForUpdate(ctx context.Context, id uuid.UUID) (*models.ManifestInfo, error)
	SaveInfo(ctx context.Context, info *models.ManifestInfo) error
	SoftDeleteInfo(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, date time.Time) (bool, error)
	ListInfos(ctx context.Context, opts listQuery) ([]models.ManifestInfo, error)
	FindForExport(ctx context.Context, ids []uuid.UUID) ([]models.ManifestInfo, error)
	LatestManifestNo(ctx context.Context, prefix string) (string, error)
	CreateLines(ctx context.Context, lines []models.ManifestList) error
	FindLine(ctx context.Context, infoID, lineID uuid.UUID) (*models.ManifestList, error)
	SaveLine(ctx context.Context, line *models.ManifestList) error
	CnNoExists(ctx context.Context, cnNo string, excludeLineID *uuid.UUID) (bool, error)
	LinesByConsignor(ctx context.Context, consignorID uuid.UUID, from, to *time.Time) ([]models.ManifestList, error)
}

type repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) CreateInfo(ctx context.Context, info *models.ManifestInfo) error {
	return r.DB(ctx).Omit("Lists").Create(info).Error
}

func (r *repository) FindInfo(ctx context.Context, id uuid.UUID, withLines bool) (*models.ManifestInfo, error) {
	query := r.DB(ctx)
	if withLines {
		query = preloadLines(query)
	} else {
		query = query.Preload("Lists", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "manifest_info_id", "total_price")
		})
	}
	var info models.ManifestInfo
	if err := query.First(&info, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// FindInfoForUpdate locks the header row for the rest of the transaction.
func (r *repository) FindInfoForUpdate(ctx context.Context, id uuid.UUID) (*models.ManifestInfo, error) {
	query := r.DB(ctx)
	if db.IsPostgres(query) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var info models.ManifestInfo
	if err := query.First(&info, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) SaveInfo(ctx context.Context, info *models.ManifestInfo) error {
	return r.DB(ctx).Omit("Lists").Save(info).Error
}

func (r *repository) SoftDeleteInfo(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.ManifestInfo{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkDelivered sets delivery_date only while it is still empty.
func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, date time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.ManifestInfo{}).
		Where("id = ? AND delivery_date IS NULL", id).
		Update("delivery_date", date)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListInfos(ctx context.Context, opts listQuery) ([]models.ManifestInfo, error) {
	query := r.DB(ctx).Model(&models.ManifestInfo{}).
		Preload("Lists", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "manifest_info_id", "total_price")
		})

	if opts.status != nil {
		switch *opts.status {
		case enums.ShipmentStatusDelivered:
			query = query.Where("delivery_date IS NOT NULL")
		case enums.ShipmentStatusPending:
			query = query.Where("delivery_date IS NULL")
		}
	}
	if opts.search != "" {
		like := strings.TrimSpace(opts.search) + "%"
		query = query.Where("manifest_no LIKE ? OR awb_no LIKE ?", like, like)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	var rows []models.ManifestInfo
	if err := query.Order("created_at DESC").Order("id DESC").Limit(opts.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindForExport loads headers with their lines and consignors, preserving
// the order of ids.
func (r *repository) FindForExport(ctx context.Context, ids []uuid.UUID) ([]models.ManifestInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ManifestInfo
	if err := preloadLines(r.DB(ctx)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.ManifestInfo, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.ManifestInfo, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// LatestManifestNo returns the highest number carrying prefix, soft-deleted
// headers included, or "" when the month has none. Longer numbers sort
// first so a widened suffix beats 999.
func (r *repository) LatestManifestNo(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.DB(ctx).
		Unscoped().
		Model(&models.ManifestInfo{}).
		Where("manifest_no LIKE ?", prefix+"%").
		Order("LENGTH(manifest_no) DESC").
		Order("manifest_no DESC").
		Limit(1).
		Pluck("manifest_no", &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *repository) CreateLines(ctx context.Context, lines []models.ManifestList) error {
	if len(lines) == 0 {
		return nil
	}
	return r.DB(ctx).Omit("Consignor").Create(&lines).Error
}

func (r *repository) FindLine(ctx context.Context, infoID, lineID uuid.UUID) (*models.ManifestList, error) {
	var line models.ManifestList
	err := r.DB(ctx).
		Preload("Consignor").
		Where("manifest_info_id = ?", infoID).
		First(&line, "id = ?", lineID).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) SaveLine(ctx context.Context, line *models.ManifestList) error {
	return r.DB(ctx).Omit("Consignor").Save(line).Error
}

// CnNoExists reports whether any stored line already uses cnNo.
func (r *repository) CnNoExists(ctx context.Context, cnNo string, excludeLineID *uuid.UUID) (bool, error) {
	query := r.DB(ctx).Model(&models.ManifestList{}).Where("cn_no = ?", cnNo)
	if excludeLineID != nil {
		query = query.Where("id <> ?", *excludeLineID)
	}
	var count int64
	if err := query.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LinesByConsignor lists a consignor's lines on live manifests, oldest
// first, optionally bounded to created_at in [from, to).
func (r *repository) LinesByConsignor(ctx context.Context, consignorID uuid.UUID, from, to *time.Time) ([]models.ManifestList, error) {
	query := r.DB(ctx).
		Model(&models.ManifestList{}).
		Joins("JOIN manifest_infos ON manifest_infos.id = manifest_lists.manifest_info_id AND manifest_infos.deleted_at IS NULL").
		Where("manifest_lists.consignor_id = ?", consignorID)
	if from != nil {
		query = query.Where("manifest_lists.created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("manifest_lists.created_at < ?", *to)
	}

	var rows []models.ManifestList
	err := query.
		Order("manifest_lists.created_at ASC").
		Order("manifest_lists.cn_no ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func preloadLines(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Lists", func(db *gorm.DB) *gorm.DB {
			return db.Order("manifest_lists.created_at ASC").Order("manifest_lists.cn_no ASC")
		}).
		Preload("Lists.Consignor")
}
