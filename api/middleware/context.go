package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/overnite/manifest-backend/pkg/enums"
)

type contextKey string

const (
	ctxClientID contextKey = "client_id"
	ctxRole     contextKey = "actor_role"
)

// ClientIDFromContext returns the authenticated client, or uuid.Nil.
func ClientIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxClientID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.ClientRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ClientRole); ok {
		return v
	}
	return ""
}

// WithClient injects the authenticated identity into the context.
func WithClient(ctx context.Context, clientID uuid.UUID, role enums.ClientRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClientID, clientID)
	return context.WithValue(ctx, ctxRole, role)
}
