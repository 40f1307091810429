package stock

import (
	"github.com/USSTM/wms-backend/internal/models"
	"github.com/samber/lo"
)

const (
	LabelStockInHand  = "Total Stock-in-hand"
	LabelCurrentStock = "Total Current Stock"
	LabelMyOwnedStock = "My Owned Stock (My Custody)"
	LabelI3PSInHand   = "I3PS In-hand"
	LabelO3PSOwned    = "O3PS Owned"
	LabelChainConsign = "Chain Consigned"
)

// DerivedState is one named aggregate quantity.
type DerivedState struct {
	Label       string `json:"label"`
	Value       int    `json:"value"`
	Description string `json:"description"`
}

type category struct {
	label       string
	description string
	match       func(c *Classifier, lot models.StockLot) bool
}

// categories are listed in Classify result order.
var categories = []category{
	{
		label:       LabelStockInHand,
		description: "All stock physically in our custody (CP = Me)",
		match: func(c *Classifier, l models.StockLot) bool {
			return c.mine(l.CPID)
		},
	},
	{
		label:       LabelCurrentStock,
		description: "All stock we are tracking (MP = Me), incl. I3PS & O3PS",
		match: func(c *Classifier, l models.StockLot) bool {
			return c.mine(l.MPID)
		},
	},
	{
		label:       LabelMyOwnedStock,
		description: "Stock we own and hold (MP = SP = CP = Me)",
		match: func(c *Classifier, l models.StockLot) bool {
			return c.mine(l.MPID) && l.SPID == l.MPID && l.CPID == l.MPID
		},
	},
	{
		label:       LabelI3PSInHand,
		description: "Others' stock we hold ((MP=CP=Me) <> SP)",
		match: func(c *Classifier, l models.StockLot) bool {
			return c.mine(l.MPID) && c.mine(l.CPID) && !c.mine(l.SPID)
		},
	},
	{
		label:       LabelO3PSOwned,
		description: "Our stock held by others ((MP=SP=Me) <> CP)",
		match: func(c *Classifier, l models.StockLot) bool {
			return c.mine(l.MPID) && l.SPID == l.MPID && !c.mine(l.CPID)
		},
	},
	{
		label:       LabelChainConsign,
		description: "Our tracked stock, from others, held by others (MP=Me, SP<>Me, CP<>Me)",
		match: func(c *Classifier, l models.StockLot) bool {
			return !c.mine(l.SPID) && !c.mine(l.CPID) && c.mine(l.MPID)
		},
	},
}

// Labels returns the metric labels in result order.
func Labels() []string {
	return lo.Map(categories, func(c category, _ int) string { return c.label })
}

// Classifier sums lot quantities into ownership/custody categories relative
// to the pools of the acting organisation.
type Classifier struct {
	myPools map[string]struct{}
}

func NewClassifier(myPools []string) *Classifier {
	set := make(map[string]struct{}, len(myPools))
	for _, p := range myPools {
		set[p] = struct{}{}
	}
	return &Classifier{myPools: set}
}

func (c *Classifier) mine(poolID string) bool {
	_, ok := c.myPools[poolID]
	return ok
}

// MyPools returns the configured pool ids (unordered).
func (c *Classifier) MyPools() []string {
	return lo.Keys(c.myPools)
}

// Classify returns the six aggregates in fixed order. Each is an
// independent filter and sum; lots with a negative quantity are skipped.
func (c *Classifier) Classify(lots []models.StockLot) []DerivedState {
	valid := lo.Filter(lots, func(l models.StockLot, _ int) bool { return l.Quantity >= 0 })

	out := make([]DerivedState, 0, len(categories))
	for _, cat := range categories {
		value := lo.SumBy(valid, func(l models.StockLot) int {
			if cat.match(c, l) {
				return l.Quantity
			}
			return 0
		})
		out = append(out, DerivedState{
			Label:       cat.label,
			Value:       value,
			Description: cat.description,
		})
	}
	return out
}

// Value looks up a single aggregate by label.
func Value(states []DerivedState, label string) int {
	s, _ := lo.Find(states, func(s DerivedState) bool { return s.Label == label })
	return s.Value
}
