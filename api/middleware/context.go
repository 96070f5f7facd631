package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// CanActFor reports whether the authenticated actor may touch customerID's
// data: admins act for anyone, customers only for themselves.
func CanActFor(ctx context.Context, customerID uuid.UUID) bool {
	switch RoleFromContext(ctx) {
	case enums.RoleAdmin:
		return true
	case enums.RoleCustomer:
		return UserIDFromContext(ctx) == customerID.String()
	default:
		return false
	}
}
