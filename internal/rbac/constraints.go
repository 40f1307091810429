package rbac

import (
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/samber/lo"
)

// SSCIndex maps stock selection criteria by id.
type SSCIndex map[string]models.StockSelectionCriteria

func IndexSSCs(sscs []models.StockSelectionCriteria) SSCIndex {
	return lo.KeyBy(sscs, func(s models.StockSelectionCriteria) string { return s.ID })
}

// MatchesSSC requires pool, area and stock state to all be equal.
func MatchesSSC(lot models.StockLot, ssc models.StockSelectionCriteria) bool {
	return lot.MPID == ssc.PoolID &&
		lot.AreaID == ssc.AreaID &&
		lot.StockState == ssc.Status
}

// Matches reports whether lot satisfies every restriction present in c.
// Unknown SSC ids never match. A constraints object with nothing set is no
// restriction at all.
func Matches(lot models.StockLot, c Constraints, sscs SSCIndex) bool {
	if c.IsEmpty() {
		return true
	}

	result := true

	if c.AllowedPoolIDs != nil {
		result = result && lo.Contains(c.AllowedPoolIDs, lot.MPID)
	}

	if c.AllowedAreaIDs != nil {
		result = result && lot.HasArea() && lo.Contains(c.AllowedAreaIDs, lot.AreaID)
	}

	if c.MatchingSSCIDs != nil {
		result = result && lo.SomeBy(c.MatchingSSCIDs, func(id string) bool {
			ssc, ok := sscs[id]
			return ok && MatchesSSC(lot, ssc)
		})
	}

	return result
}
