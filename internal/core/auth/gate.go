package auth

import (
	"crypto/subtle"

	"estate-api/internal/domain"
)

// Gate decides which principal, if any, a credential token stands for.
//
// A token equal to StaticToken binds the fixed administrative principal.
// Otherwise the token must be a JWT issued by JWT. An empty StaticToken or
// a nil JWT disables that path.
type Gate struct {
	StaticToken string
	JWT         *JWTer
}

func (g *Gate) Verify(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	if g.StaticToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(g.StaticToken)) == 1 {
		return domain.AdminPrincipal(), nil
	}
	if g.JWT != nil {
		if c, err := g.JWT.Parse(token); err == nil {
			role := c.Role
			if role == "" {
				role = domain.RoleUser
			}
			return domain.Principal{ID: c.UID, Role: role}, nil
		}
	}
	return domain.Principal{}, domain.ErrForbidden
}
