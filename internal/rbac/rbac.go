package rbac

import (
	"sort"
	"strings"
)

type Action string

// actions checked by the admin screens and stock operations
const (
	ViewDashboard Action = "VIEW_DASHBOARD" // Dashboard, stock lists, inbound ledger
	ViewPools     Action = "VIEW_POOLS"     // Pool catalogue
	ManagePools   Action = "MANAGE_POOLS"   // CRUD operations on pools

	ViewLocations   Action = "VIEW_LOCATIONS"   // Location tree
	ManageLocations Action = "MANAGE_LOCATIONS" // CRUD operations on locations
	ViewAreas       Action = "VIEW_AREAS"       // Areas (zones)
	ManageAreas     Action = "MANAGE_AREAS"     // CRUD operations on areas

	ViewSSC   Action = "VIEW_SSC"   // Stock selection criteria
	ManageSSC Action = "MANAGE_SSC" // CRUD operations on stock selection criteria

	ViewPermissions   Action = "VIEW_PERMISSIONS"   // Users, roles and grants
	ManagePermissions Action = "MANAGE_PERMISSIONS" // CRUD operations on grants

	AllocateStock    Action = "ALLOCATE_STOCK"     // Assign received lots to an owner pool
	ChangeStockState Action = "CHANGE_STOCK_STATE" // Flip stock/quality/supply RAG states
)

var actions = []Action{
	ViewDashboard,
	ViewPools, ManagePools,
	ViewLocations, ManageLocations,
	ViewAreas, ManageAreas,
	ViewSSC, ManageSSC,
	ViewPermissions, ManagePermissions,
	AllocateStock, ChangeStockState,
}

var knownActions = buildActionSet()

func buildActionSet() map[Action]struct{} {
	out := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		out[a] = struct{}{}
	}
	return out
}

func AllActions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

func IsKnownAction(a Action) bool {
	_, ok := knownActions[a]
	return ok
}

// ParseAction accepts any casing and surrounding whitespace.
func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(raw)))
	return a, IsKnownAction(a)
}

// NormalizeActions splits raw names into sorted, de-duplicated known and
// unknown sets.
func NormalizeActions(in []string) ([]Action, []string) {
	validSet := map[Action]struct{}{}
	invalidSet := map[string]struct{}{}
	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if a, ok := ParseAction(raw); ok {
			validSet[a] = struct{}{}
			continue
		}
		invalidSet[strings.TrimSpace(raw)] = struct{}{}
	}
	valid := make([]Action, 0, len(validSet))
	for a := range validSet {
		valid = append(valid, a)
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i] < valid[j] })
	invalid := make([]string, 0, len(invalidSet))
	for s := range invalidSet {
		invalid = append(invalid, s)
	}
	sort.Strings(invalid)
	return valid, invalid
}
