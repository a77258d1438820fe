package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/internal/clients"
	pkgAuth "github.com/overnite/manifest-backend/pkg/auth"
	"github.com/overnite/manifest-backend/pkg/auth/session"
	"github.com/overnite/manifest-backend/pkg/clock"
	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db/models"
	"github.com/overnite/manifest-backend/pkg/enums"
	pkgerrors "github.com/overnite/manifest-backend/pkg/errors"
	"github.com/overnite/manifest-backend/pkg/logger"
	"github.com/overnite/manifest-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tokenType                 = "Bearer"
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, accessID, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, clientID uuid.UUID) (*clients.ClientDTO, error)
}

type clientRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type clientRegistrar interface {
	Create(ctx context.Context, actorRole enums.ClientRole, input clients.CreateInput) (*clients.CreateResult, error)
}

type sessionManager interface {
	Generate(ctx context.Context, clientID uuid.UUID, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (uuid.UUID, string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Clients          clientRepository
	Registrar        clientRegistrar
	Sessions         sessionManager
	JWTConfig        config.JWTConfig
	PasswordConfig   config.PasswordConfig
	OpenRegistration bool
	Clock            clock.Clock
	Logger           *logger.Logger
}

type service struct {
	clients          clientRepository
	registrar        clientRegistrar
	sessions         sessionManager
	jwtCfg           config.JWTConfig
	passwordCfg      config.PasswordConfig
	openRegistration bool
	clock            clock.Clock
	logg             *logger.Logger
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository is required")
	}
	if params.Registrar == nil {
		return nil, fmt.Errorf("client registrar is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	clk := params.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &service{
		clients:          params.Clients,
		registrar:        params.Registrar,
		sessions:         params.Sessions,
		jwtCfg:           params.JWTConfig,
		passwordCfg:      params.PasswordConfig,
		openRegistration: params.OpenRegistration,
		clock:            clk,
		logg:             params.Logger,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	client, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := s.clients.UpdateLastLogin(ctx, client.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	client.LastLoginAt = &now

	return s.issue(ctx, client, session.NewAccessID())
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if !s.openRegistration {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "registration is closed")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.Field("password", "is required")
	}

	created, err := s.registrar.Create(ctx, enums.ClientRoleClient, clients.CreateInput{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        enums.ClientRoleClient,
	})
	if err != nil {
		return nil, err
	}
	client, err := s.clients.FindByID(ctx, created.Client.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load registered client")
	}

	s.logg.Info(s.logg.WithUserID(ctx, client.ID.String()), "client.registered")
	return s.issue(ctx, client, session.NewAccessID())
}

// Refresh swaps the session behind accessID for a new one. The access token
// is minted from the stored client so role and activation changes apply.
func (s *service) Refresh(ctx context.Context, accessID, refreshToken string) (*TokenResponse, error) {
	clientID, newAccessID, newRefresh, err := s.sessions.Rotate(ctx, accessID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil || !client.IsActive {
		if revokeErr := s.sessions.Revoke(ctx, newAccessID); revokeErr != nil {
			s.logg.Warn(ctx, "revoke session of unavailable client failed")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	resp, err := s.token(client, newAccessID)
	if err != nil {
		return nil, err
	}
	resp.RefreshToken = newRefresh
	return resp, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, clientID uuid.UUID) (*clients.ClientDTO, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}
	return clients.FromModel(client), nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Client, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	client, err := s.clients.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client")
	}

	valid, err := security.VerifyPassword(password, client.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !client.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if security.NeedsRehash(client.PasswordHash, s.passwordCfg) {
		s.upgradeHash(ctx, client, password)
	}
	return client, nil
}

// upgradeHash rewrites a bcrypt or outdated argon2id hash with the current
// settings. Failures are logged and do not block the login.
func (s *service) upgradeHash(ctx context.Context, client *models.Client, password string) {
	logCtx := s.logg.WithUserID(ctx, client.ID.String())
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err == nil {
		err = s.clients.UpdatePasswordHash(ctx, client.ID, hash)
	}
	if err != nil {
		s.logg.Warn(logCtx, "password.rehash.failed")
		return
	}
	client.PasswordHash = hash
	s.logg.Info(logCtx, "password.rehashed")
}

func (s *service) issue(ctx context.Context, client *models.Client, accessID string) (*TokenResponse, error) {
	resp, err := s.token(client, accessID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sessions.Generate(ctx, client.ID, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	resp.RefreshToken = refreshToken
	return resp, nil
}

func (s *service) token(client *models.Client, accessID string) (*TokenResponse, error) {
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.clock.Now().UTC(), pkgAuth.AccessTokenPayload{
		ClientID: client.ID,
		Role:     client.Role,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   tokenType,
		ExpiresIn:   s.jwtCfg.ExpirationMinutes * 60,
		Client:      clients.FromModel(client),
	}, nil
}
