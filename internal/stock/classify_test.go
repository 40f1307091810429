package stock

import (
	"testing"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lot(mp, sp, cp string, qty int) models.StockLot {
	return models.StockLot{MPID: mp, SPID: sp, CPID: cp, Quantity: qty}
}

func TestClassify_OrderAndDescriptions(t *testing.T) {
	states := NewClassifier([]string{"P1"}).Classify(nil)

	require.Len(t, states, 6)
	assert.Equal(t, []string{
		"Total Stock-in-hand",
		"Total Current Stock",
		"My Owned Stock (My Custody)",
		"I3PS In-hand",
		"O3PS Owned",
		"Chain Consigned",
	}, Labels())
	for i, s := range states {
		assert.Equal(t, Labels()[i], s.Label)
		assert.NotEmpty(t, s.Description)
		assert.Zero(t, s.Value)
	}
}

func TestClassify_Scenario(t *testing.T) {
	lots := []models.StockLot{
		lot("P1", "P1", "P1", 10),
		lot("P1", "P2", "P1", 5),
	}

	states := NewClassifier([]string{"P1"}).Classify(lots)

	assert.Equal(t, 10, Value(states, LabelMyOwnedStock))
	assert.Equal(t, 5, Value(states, LabelI3PSInHand))
	assert.Equal(t, 15, Value(states, LabelCurrentStock))
	assert.Equal(t, 15, Value(states, LabelStockInHand))
	assert.Equal(t, 0, Value(states, LabelO3PSOwned))
	assert.Equal(t, 0, Value(states, LabelChainConsign))
}

func TestClassify_SingleLotContributions(t *testing.T) {
	c := NewClassifier([]string{"P"})

	tests := []struct {
		name string
		lot  models.StockLot
		want map[string]int
	}{
		{
			name: "owned and held",
			lot:  lot("P", "P", "P", 7),
			want: map[string]int{LabelStockInHand: 7, LabelCurrentStock: 7, LabelMyOwnedStock: 7},
		},
		{
			name: "others' stock we hold",
			lot:  lot("P", "Q", "P", 3),
			want: map[string]int{LabelStockInHand: 3, LabelCurrentStock: 3, LabelI3PSInHand: 3},
		},
		{
			name: "our stock held by others",
			lot:  lot("P", "P", "Q", 4),
			want: map[string]int{LabelCurrentStock: 4, LabelO3PSOwned: 4},
		},
		{
			name: "chain consigned",
			lot:  lot("P", "Q", "R", 2),
			want: map[string]int{LabelCurrentStock: 2, LabelChainConsign: 2},
		},
		{
			name: "held for a third party we do not track",
			lot:  lot("Q", "Q", "P", 9),
			want: map[string]int{LabelStockInHand: 9},
		},
		{
			name: "unrelated lot",
			lot:  lot("Q", "R", "S", 11),
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := c.Classify([]models.StockLot{tt.lot})
			for _, s := range states {
				assert.Equal(t, tt.want[s.Label], s.Value, s.Label)
			}
		})
	}
}

func TestClassify_CurrentStockIsPartitioned(t *testing.T) {
	pools := []string{"P", "Q", "R"}
	var lots []models.StockLot
	qty := 1
	for _, mp := range pools {
		for _, sp := range pools {
			for _, cp := range pools {
				lots = append(lots, lot(mp, sp, cp, qty))
				qty++
			}
		}
	}

	states := NewClassifier([]string{"P"}).Classify(lots)

	parts := Value(states, LabelMyOwnedStock) +
		Value(states, LabelI3PSInHand) +
		Value(states, LabelO3PSOwned) +
		Value(states, LabelChainConsign)
	assert.Equal(t, Value(states, LabelCurrentStock), parts)
	assert.Positive(t, parts)
}

func TestClassify_EmptyAndDegenerateInput(t *testing.T) {
	t.Run("no pools configured", func(t *testing.T) {
		states := NewClassifier(nil).Classify([]models.StockLot{lot("P", "P", "P", 5)})
		for _, s := range states {
			assert.Zero(t, s.Value, s.Label)
		}
	})

	t.Run("negative quantities are skipped", func(t *testing.T) {
		states := NewClassifier([]string{"P"}).Classify([]models.StockLot{
			lot("P", "P", "P", -50),
			lot("P", "P", "P", 8),
		})
		assert.Equal(t, 8, Value(states, LabelCurrentStock))
		for _, s := range states {
			assert.GreaterOrEqual(t, s.Value, 0)
		}
	})

	t.Run("unknown label is zero", func(t *testing.T) {
		assert.Zero(t, Value(nil, "nope"))
	})
}

func TestClassifier_MyPools(t *testing.T) {
	c := NewClassifier([]string{"pool-main", "pool-assets", "pool-main"})
	assert.ElementsMatch(t, []string{"pool-main", "pool-assets"}, c.MyPools())
}
