// Package authz is the single authorization choke point for government-only
// actions. Roles come exclusively from verified identity-token claims.
package authz

import (
	"infrasense-be/apperrors"
	"infrasense-be/models"
)

// metadataClaims are the nested claim objects that may carry the role.
var metadataClaims = []string{"publicMetadata", "public_metadata"}

// ResolveRole extracts the caller's role from verified token claims.
// Missing, malformed or unknown roles resolve to citizen.
func ResolveRole(claims map[string]interface{}) models.Role {
	for _, key := range metadataClaims {
		meta, ok := claims[key].(map[string]interface{})
		if !ok {
			continue
		}
		raw, ok := meta["role"].(string)
		if !ok {
			continue
		}
		switch role := models.Role(raw); role {
		case models.RoleCitizen, models.RoleGovernment, models.RoleAdmin:
			return role
		}
	}
	return models.RoleCitizen
}

// RequireGovernment accepts government and admin callers.
func RequireGovernment(id *models.Identity) error {
	if id == nil || id.UserID == "" {
		return apperrors.ErrUnauthenticated
	}
	if !id.Role.IsGovernment() {
		return &apperrors.ForbiddenError{Role: string(id.Role)}
	}
	return nil
}
