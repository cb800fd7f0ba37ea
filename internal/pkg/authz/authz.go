// Package authz implements user.Authorizer over the role claim of the verified token.
package authz

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// RoleAuthorizer grants whatever the caller's role capability set contains.
type RoleAuthorizer struct {
	capabilities map[user.Role][]user.Capability
}

func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{capabilities: user.RoleCapabilities}
}

// NewRoleAuthorizerWith uses a custom role -> capabilities table.
func NewRoleAuthorizerWith(capabilities map[user.Role][]user.Capability) *RoleAuthorizer {
	return &RoleAuthorizer{capabilities: capabilities}
}

func (a *RoleAuthorizer) Can(ctx context.Context, action user.Action, resource user.Resource) bool {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return false
	}

	role, ok := claims["role"].(string)
	if !ok {
		return false
	}

	for _, c := range a.capabilities[user.Role(role)] {
		if c.Action == action && c.Resource == resource {
			return true
		}
	}
	return false
}
