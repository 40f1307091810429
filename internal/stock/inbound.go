package stock

import (
	"errors"
	"fmt"

	"github.com/USSTM/wms-backend/internal/models"
	"github.com/samber/lo"
)

var (
	ErrNotPendingAssignment = errors.New("stock lot is not pending assignment")
	ErrInvalidDestination   = errors.New("invalid destination")
	ErrInvalidState         = errors.New("invalid RAG state")
	ErrUnknownStateField    = errors.New("unknown state field")
)

// Inbound handles lots that have arrived in the receiving pool and are
// waiting to be assigned to an owner pool.
type Inbound struct {
	receivingPoolID string
	receivingAreaID string
}

func NewInbound(receivingPoolID, receivingAreaID string) *Inbound {
	return &Inbound{
		receivingPoolID: receivingPoolID,
		receivingAreaID: receivingAreaID,
	}
}

// Pending returns lots still owned by the receiving pool.
func (in *Inbound) Pending(lots []models.StockLot) []models.StockLot {
	return lo.Filter(lots, func(l models.StockLot, _ int) bool {
		return l.MPID == in.receivingPoolID
	})
}

// OwnerPools returns the pools a received lot may be assigned to.
func OwnerPools(pools []models.Pool) []models.Pool {
	return lo.Filter(pools, func(p models.Pool, _ int) bool {
		return p.Nature.IsOwner()
	})
}

// DestinationAreas returns the storage areas available for lot: areas in the
// lot's location other than the receiving area.
func (in *Inbound) DestinationAreas(lot models.StockLot, areas []models.Area) []models.Area {
	return lo.Filter(areas, func(a models.Area, _ int) bool {
		return a.LocationID == lot.LocationID && a.ID != in.receivingAreaID
	})
}

// Assign moves lot to dest: owner and custody become the destination pool,
// stock and supply turn Green. Quality is left for the QC process.
func (in *Inbound) Assign(lot models.StockLot, dest models.Pool, area models.Area) (models.StockLot, error) {
	if lot.MPID != in.receivingPoolID {
		return models.StockLot{}, ErrNotPendingAssignment
	}
	if !dest.Nature.IsOwner() {
		return models.StockLot{}, fmt.Errorf("%w: pool %s has nature %s", ErrInvalidDestination, dest.ID, dest.Nature)
	}
	if area.LocationID != lot.LocationID || area.ID == in.receivingAreaID {
		return models.StockLot{}, fmt.Errorf("%w: area %s is not a storage area of location %s", ErrInvalidDestination, area.ID, lot.LocationID)
	}

	updated := lot.Clone()
	updated.MPID = dest.ID
	updated.CPID = dest.ID
	updated.AreaID = area.ID
	updated.StockState = models.RAGGreen
	updated.SupplyState = models.RAGGreen
	return updated, nil
}

type StateField string

const (
	StockStateField   StateField = "stock"
	QualityStateField StateField = "quality"
	SupplyStateField  StateField = "supply"
)

// ChangeState returns a copy of lot with one RAG flag replaced.
func ChangeState(lot models.StockLot, field StateField, state models.RAGState) (models.StockLot, error) {
	if !state.Valid() {
		return models.StockLot{}, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}

	updated := lot.Clone()
	switch field {
	case StockStateField:
		updated.StockState = state
	case QualityStateField:
		updated.QualityState = state
	case SupplyStateField:
		updated.SupplyState = state
	default:
		return models.StockLot{}, fmt.Errorf("%w: %q", ErrUnknownStateField, field)
	}
	return updated, nil
}
