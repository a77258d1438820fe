package clients

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/db/models"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	pkgpagination "github.com/overnite/manifest-backend/pkg/pagination"
	"github.com/overnite/manifest-backend/pkg/security"
)

const tempPasswordLength = 12

type clientsRepository interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	List(ctx context.Context, opts listQuery) ([]models.Client, error)
	ListConsignors(ctx context.Context) ([]models.Client, error)
	Save(ctx context.Context, client *models.Client) error
}

type plansLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingPlan, error)
}

// Service exposes client administration.
type Service interface {
	Create(ctx context.Context, actorRole enums.ClientRole, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ClientDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListConsignors(ctx context.Context) ([]ClientDTO, error)
	Update(ctx context.Context, actorRole enums.ClientRole, id uuid.UUID, input UpdateInput) (*ClientDTO, error)
}

type service struct {
	repo     clientsRepository
	plans    plansLookup
	password config.PasswordConfig
}

func NewService(repo clientsRepository, plans plansLookup, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if plans == nil {
		return nil, fmt.Errorf("shipping plan lookup required")
	}
	return &service{repo: repo, plans: plans, password: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, actorRole enums.ClientRole, input CreateInput) (*CreateResult, error) {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.Email = normalizeEmail(input.Email)
	if input.Role == "" {
		input.Role = enums.ClientRoleClient
	}

	details := map[string]string{}
	if input.CompanyName == "" {
		details["company_name"] = "is required"
	}
	if !validEmail(input.Email) {
		details["email"] = "must be a valid email"
	}
	if !input.Role.IsValid() {
		details["role"] = "is invalid"
	}
	if len(details) > 0 {
		return nil, pkgerrors.Validation(details)
	}
	if err := authorizeRoleGrant(actorRole, input.Role); err != nil {
		return nil, err
	}
	if err := s.ensurePlan(ctx, input.ShippingPlanID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client email")
	}

	result := &CreateResult{}
	password := input.Password
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = generated
		result.TemporaryPassword = generated
	}
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	client := &models.Client{
		CompanyName:    input.CompanyName,
		Email:          input.Email,
		PasswordHash:   hash,
		Role:           input.Role,
		ShippingPlanID: input.ShippingPlanID,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create client")
	}

	created, err := s.repo.FindByID(ctx, client.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload client")
	}
	result.Client = FromModel(created)
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(client), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		role:   params.Role,
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

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients")
	}

	rows, nextCursor := pkgpagination.Page(rows, params.Limit, func(row models.Client) pkgpagination.Cursor {
		return pkgpagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})

	items := make([]ClientDTO, len(rows))
	for i := range rows {
		items[i] = *FromModel(&rows[i])
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) ListConsignors(ctx context.Context) ([]ClientDTO, error) {
	rows, err := s.repo.ListConsignors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list consignors")
	}
	items := make([]ClientDTO, len(rows))
	for i := range rows {
		items[i] = *FromModel(&rows[i])
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, actorRole enums.ClientRole, id uuid.UUID, input UpdateInput) (*ClientDTO, error) {
	client, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if client.Role.IsStaff() && actorRole != enums.ClientRoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only a superadmin may modify staff accounts")
	}

	details := map[string]string{}
	if input.CompanyName != nil {
		name := strings.TrimSpace(*input.CompanyName)
		if name == "" {
			details["company_name"] = "is required"
		}
		client.CompanyName = name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !validEmail(email) {
			details["email"] = "must be a valid email"
		} else if email != client.Email {
			if other, err := s.repo.FindByEmail(ctx, email); err == nil && other.ID != client.ID {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client email")
			}
		}
		client.Email = email
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			details["role"] = "is invalid"
		} else if err := authorizeRoleGrant(actorRole, *input.Role); err != nil {
			return nil, err
		}
		client.Role = *input.Role
	}
	if len(details) > 0 {
		return nil, pkgerrors.Validation(details)
	}

	switch {
	case input.ClearShippingPlan:
		client.ShippingPlanID = nil
	case input.ShippingPlanID != nil:
		if err := s.ensurePlan(ctx, input.ShippingPlanID); err != nil {
			return nil, err
		}
		client.ShippingPlanID = input.ShippingPlanID
	}
	if input.IsActive != nil {
		client.IsActive = *input.IsActive
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		client.PasswordHash = hash
	}

	client.ShippingPlan = nil
	if err := s.repo.Save(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update client")
	}
	return s.Get(ctx, id)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}
	return client, nil
}

func (s *service) ensurePlan(ctx context.Context, planID *uuid.UUID) error {
	if planID == nil {
		return nil
	}
	if _, err := s.plans.FindByID(ctx, *planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Field("shipping_plan_id", "does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shipping plan")
	}
	return nil
}

// authorizeRoleGrant keeps staff roles in the hands of superadmins.
func authorizeRoleGrant(actor, granted enums.ClientRole) error {
	if granted.IsStaff() && actor != enums.ClientRoleSuperAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only a superadmin may grant staff roles")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
