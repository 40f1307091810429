package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/USSTM/wms-backend/internal/rbac"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func validateUser(u rbac.User) error {
	return errors.Join(required("name", u.Name), required("email", u.Email))
}

func validateRole(r rbac.Role) error {
	return required("name", r.Name)
}

func validateGrant(g rbac.PermissionGrant) error {
	if err := required("roleId", g.RoleID); err != nil {
		return err
	}
	if !rbac.IsKnownAction(g.Action) {
		return fmt.Errorf("unknown action %q", g.Action)
	}
	return nil
}

func validateSSC(s models.StockSelectionCriteria) error {
	if err := errors.Join(required("poolId", s.PoolID), required("areaId", s.AreaID)); err != nil {
		return err
	}
	if !s.Status.Valid() {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	return nil
}

func validateLocation(l models.Location) error {
	if err := required("name", l.Name); err != nil {
		return err
	}
	if l.ParentID != "" && l.ParentID == l.ID {
		return errors.New("location cannot be its own parent")
	}
	return nil
}

func validateArea(a models.Area) error {
	if err := errors.Join(required("name", a.Name), required("locationId", a.LocationID)); err != nil {
		return err
	}
	if a.SquareFeet != nil && *a.SquareFeet < 0 {
		return errors.New("squareFeet must not be negative")
	}
	return nil
}

func validateStockLot(l models.StockLot) error {
	if err := errors.Join(
		required("sku", l.SKU),
		required("mpId", l.MPID),
		required("spId", l.SPID),
		required("cpId", l.CPID),
	); err != nil {
		return err
	}
	if l.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	for field, s := range map[string]models.RAGState{
		"stockState":   l.StockState,
		"qualityState": l.QualityState,
		"supplyState":  l.SupplyState,
	} {
		if !s.Valid() {
			return fmt.Errorf("invalid %s %q", field, s)
		}
	}
	return nil
}
