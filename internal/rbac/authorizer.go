package rbac

import (
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/samber/lo"
)

// Context carries the record an action is performed on, if any.
type Context struct {
	StockLot *models.StockLot
}

// ForLot is shorthand for a Context scoped to one lot.
func ForLot(lot models.StockLot) Context {
	return Context{StockLot: &lot}
}

// GrantSource supplies the current grant and SSC snapshot. It is read on
// every decision.
type GrantSource interface {
	Permissions() []PermissionGrant
	StockSelectionCriteria() []models.StockSelectionCriteria
}

// DecisionRecorder observes decisions, e.g. for metrics.
type DecisionRecorder interface {
	RecordDecision(action Action, allowed bool)
}

type Authorizer struct {
	source   GrantSource
	recorder DecisionRecorder
}

func NewAuthorizer(source GrantSource, recorder DecisionRecorder) *Authorizer {
	return &Authorizer{
		source:   source,
		recorder: recorder,
	}
}

// Can decides whether user may perform action. It never fails: missing
// users, grants or context all resolve to deny.
func (a *Authorizer) Can(user *User, action Action, ctx Context) bool {
	allowed := Decide(user, action, ctx, a.source.Permissions(), a.source.StockSelectionCriteria())
	if a.recorder != nil {
		a.recorder.RecordDecision(action, allowed)
	}
	return allowed
}

// GrantsFor returns the grants attached to any of the user's roles.
func (a *Authorizer) GrantsFor(user *User) []PermissionGrant {
	return grantsFor(user, a.source.Permissions())
}

// AllowedActions lists the actions user can perform without a lot context,
// in vocabulary order. Recorder is not notified.
func (a *Authorizer) AllowedActions(user *User) []Action {
	grants := a.source.Permissions()
	sscs := a.source.StockSelectionCriteria()
	return lo.Filter(actions, func(action Action, _ int) bool {
		return Decide(user, action, Context{}, grants, sscs)
	})
}

// Decide is the pure decision over an explicit snapshot.
func Decide(user *User, action Action, ctx Context, grants []PermissionGrant, sscs []models.StockSelectionCriteria) bool {
	if user == nil {
		return false
	}

	relevant := lo.Filter(grantsFor(user, grants), func(g PermissionGrant, _ int) bool {
		return g.Action == action
	})
	if len(relevant) == 0 {
		return false
	}

	// an unconstrained grant wins over any constrained ones
	if lo.SomeBy(relevant, PermissionGrant.Unconstrained) {
		return true
	}

	if ctx.StockLot == nil {
		return false
	}

	index := IndexSSCs(sscs)
	return lo.SomeBy(relevant, func(g PermissionGrant) bool {
		return Matches(*ctx.StockLot, *g.Constraints, index)
	})
}

func grantsFor(user *User, grants []PermissionGrant) []PermissionGrant {
	if user == nil {
		return nil
	}
	return lo.Filter(grants, func(g PermissionGrant, _ int) bool {
		return user.HasRole(g.RoleID)
	})
}
