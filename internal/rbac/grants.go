package rbac

import (
	"slices"
)

type User struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Email   string   `json:"email" yaml:"email"`
	RoleIDs []string `json:"roleIds" yaml:"roleIds"`
}

func (u User) HasRole(roleID string) bool {
	return slices.Contains(u.RoleIDs, roleID)
}

func (u User) Clone() User {
	u.RoleIDs = slices.Clone(u.RoleIDs)
	return u
}

type Role struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// PermissionGrant gives a role an action. A nil Constraints is an
// unconditional grant.
type PermissionGrant struct {
	ID          string       `json:"id" yaml:"id"`
	RoleID      string       `json:"roleId" yaml:"roleId"`
	Action      Action       `json:"action" yaml:"action"`
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

func (g PermissionGrant) Unconstrained() bool {
	return g.Constraints == nil
}

func (g PermissionGrant) Clone() PermissionGrant {
	if g.Constraints != nil {
		c := g.Constraints.Clone()
		g.Constraints = &c
	}
	return g
}

// Constraints restrict a grant to particular lots. A nil field places no
// restriction of that kind; a non-nil field, even an empty one, must be
// satisfied. Fields are not omitempty: an empty list must survive a round
// trip.
type Constraints struct {
	AllowedPoolIDs []string `json:"allowedPoolIds" yaml:"allowedPoolIds"`
	AllowedAreaIDs []string `json:"allowedAreaIds" yaml:"allowedAreaIds"`
	MatchingSSCIDs []string `json:"matchingSscIds" yaml:"matchingSscIds"`
}

// IsEmpty reports whether no restriction is set at all.
func (c Constraints) IsEmpty() bool {
	return c.AllowedPoolIDs == nil && c.AllowedAreaIDs == nil && c.MatchingSSCIDs == nil
}

func (c Constraints) Clone() Constraints {
	return Constraints{
		AllowedPoolIDs: slices.Clone(c.AllowedPoolIDs),
		AllowedAreaIDs: slices.Clone(c.AllowedAreaIDs),
		MatchingSSCIDs: slices.Clone(c.MatchingSSCIDs),
	}
}
