package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/enums"
)

// AccessTokenClaims identifies the acting user. Customers are scoped to
// their own customer id; admins may act for any customer.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

// CanActFor reports whether the claims may read or mutate customerID's data.
func (c *AccessTokenClaims) CanActFor(customerID uuid.UUID) bool {
	if c == nil {
		return false
	}
	return c.Role == enums.RoleAdmin || (c.Role == enums.RoleCustomer && c.UserID == customerID)
}
