package models

import (
	"strings"
)

// RAGState is the categorical Red/Amber/Green flag used for stock, quality
// and supply. The values carry no ordering.
type RAGState string

const (
	RAGRed   RAGState = "Red"   // blocked
	RAGAmber RAGState = "Amber" // pending
	RAGGreen RAGState = "Green" // unrestricted
)

func (s RAGState) Valid() bool {
	switch s {
	case RAGRed, RAGAmber, RAGGreen:
		return true
	}
	return false
}

type Pool struct {
	ID       string      `json:"id" yaml:"id"`
	Code     string      `json:"code" yaml:"code"`
	Name     string      `json:"name" yaml:"name"`
	Nature   PoolNature  `json:"nature" yaml:"nature"`
	Subtype  PoolSubtype `json:"subtype" yaml:"subtype"`
	IsNested bool        `json:"isNested,omitempty" yaml:"isNested,omitempty"`
	ParentID string      `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

type Location struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	IsNested    bool   `json:"isNested,omitempty" yaml:"isNested,omitempty"`
	ParentID    string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
}

type Area struct {
	ID            string `json:"id" yaml:"id"`
	LocationID    string `json:"locationId" yaml:"locationId"`
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	SquareFeet    *int   `json:"squareFeet,omitempty" yaml:"squareFeet,omitempty"`
	IsQualityArea bool   `json:"isQualityArea,omitempty" yaml:"isQualityArea,omitempty"`
}

// StockSelectionCriteria is a reusable rule selecting stock in one pool and
// area with a given stock state.
type StockSelectionCriteria struct {
	ID      string   `json:"id" yaml:"id"`
	PoolID  string   `json:"poolId" yaml:"poolId"`
	AreaID  string   `json:"areaId" yaml:"areaId"`
	Status  RAGState `json:"status" yaml:"status"`
	Classes string   `json:"classes" yaml:"classes"`
}

// ClassList splits the comma-separated class list, dropping blank entries.
func (c StockSelectionCriteria) ClassList() []string {
	var out []string
	for _, part := range strings.Split(c.Classes, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// StockLot is a quantity of one SKU. MPID is the owning pool, SPID the
// source pool and CPID the custody pool; how the three relate decides the
// ownership category of the lot.
type StockLot struct {
	ID           string   `json:"id" yaml:"id"`
	SKU          string   `json:"sku" yaml:"sku"`
	MPID         string   `json:"mpId" yaml:"mpId"`
	SPID         string   `json:"spId" yaml:"spId"`
	CPID         string   `json:"cpId" yaml:"cpId"`
	Quantity     int      `json:"quantity" yaml:"quantity"`
	LocationID   string   `json:"locationId" yaml:"locationId"`
	AreaID       string   `json:"areaId,omitempty" yaml:"areaId,omitempty"`
	StockState   RAGState `json:"stockState" yaml:"stockState"`
	QualityState RAGState `json:"qualityState" yaml:"qualityState"`
	SupplyState  RAGState `json:"supplyState" yaml:"supplyState"`
	MarkingIDs   []string `json:"markingIds,omitempty" yaml:"markingIds,omitempty"`
}

func (l StockLot) HasArea() bool {
	return l.AreaID != ""
}

// Clone returns a copy that shares no slices with l.
func (l StockLot) Clone() StockLot {
	if l.MarkingIDs != nil {
		l.MarkingIDs = append([]string(nil), l.MarkingIDs...)
	}
	return l
}

func (a Area) Clone() Area {
	if a.SquareFeet != nil {
		v := *a.SquareFeet
		a.SquareFeet = &v
	}
	return a
}
