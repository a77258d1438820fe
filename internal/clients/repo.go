package clients

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/internal/repo"
	"github.com/overnite/manifest-backend/pkg/db/models"
	"github.com/overnite/manifest-backend/pkg/enums"
)

// Repository exposes client persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a clients repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, client *models.Client) error {
	return r.DB(ctx).Create(client).Error
}

// FindByID loads a client together with its shipping plan.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.DB(ctx).Preload("ShippingPlan").First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByEmail matches case-insensitively; emails are stored lower-cased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := r.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Client, error) {
	query := r.DB(ctx).Model(&models.Client{}).Preload("ShippingPlan")

	if opts.role != nil {
		query = query.Where("role = ?", *opts.role)
	}
	if opts.search != "" {
		like := "%" + strings.ToLower(opts.search) + "%"
		query = query.Where("LOWER(company_name) LIKE ? OR email LIKE ?", like, like)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Client
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListConsignors returns every non-staff client ordered by company name.
func (r *Repository) ListConsignors(ctx context.Context) ([]models.Client, error) {
	var rows []models.Client
	err := r.DB(ctx).
		Where("role = ?", enums.ClientRoleClient).
		Order("company_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Save(ctx context.Context, client *models.Client) error {
	return r.DB(ctx).Omit("ShippingPlan").Save(client).Error
}

// UpdateLastLogin refreshes the client's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash swaps the stored hash, used when upgrading legacy hashes.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}
