package models

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownNature   = errors.New("unknown pool nature")
	ErrInvalidSubtype  = errors.New("subtype not allowed for pool nature")
	ErrMissingPoolCode = errors.New("pool code is required")
)

type PoolNature string

const (
	NatureInventory      PoolNature = "Inventory"
	NatureAssets         PoolNature = "Assets"
	NatureOffInventory   PoolNature = "Off-Inventory"
	NatureOffAssets      PoolNature = "Off-Assets"
	NatureResources      PoolNature = "Resources"
	NatureBookables      PoolNature = "Bookables"
	NatureTrackables     PoolNature = "Trackables"
	NatureControlAccount PoolNature = "Control Account"
	NatureThirdParty     PoolNature = "3rd Party"
)

type PoolSubtype string

const (
	// Inventory
	SubtypeStockInTrade PoolSubtype = "Stock in Trade"
	SubtypeProduction   PoolSubtype = "Production"
	SubtypeMRO          PoolSubtype = "MRO"
	SubtypeSpares       PoolSubtype = "Spares"
	SubtypeConsumables  PoolSubtype = "Consumables"
	// Assets
	SubtypeFixedAssets PoolSubtype = "Fixed Assets"
	// Off-Inventory
	SubtypeSupplies           PoolSubtype = "Supplies"
	SubtypePackingMaterials   PoolSubtype = "Packing Materials"
	SubtypeSecurityTags       PoolSubtype = "Security Tags"
	SubtypeMarketingMaterials PoolSubtype = "Marketing Materials"
	SubtypeOfficeSupplies     PoolSubtype = "Office Supplies"
	SubtypeHousekeeping       PoolSubtype = "Housekeeping"
	SubtypeElectrical         PoolSubtype = "Electrical"
	SubtypeITConsumables      PoolSubtype = "IT Consumables"
	SubtypeTools              PoolSubtype = "Tools"
	SubtypeSafety             PoolSubtype = "Safety"
	SubtypeUniforms           PoolSubtype = "Uniforms"
	// Off-Assets
	SubtypeExpensedAssets PoolSubtype = "Expensed Assets"
	// Resources
	SubtypeProviders PoolSubtype = "Providers"
	// Bookables
	SubtypeStockKits    PoolSubtype = "Stock Kits"
	SubtypeDeluxeRooms  PoolSubtype = "Deluxe Rooms"
	SubtypeSurgerySets  PoolSubtype = "Surgery Sets"
	SubtypeDemoKits     PoolSubtype = "Demo Kits"
	// Trackables
	SubtypeInteractions PoolSubtype = "Interactions"
	SubtypeEvents       PoolSubtype = "Events"
	SubtypeKPIs         PoolSubtype = "KPIs"
	// Control Account
	SubtypePurchase    PoolSubtype = "Purchase"
	SubtypeConsignment PoolSubtype = "Consignment"
	SubtypeRepair      PoolSubtype = "Repair"
	// 3rd Party
	SubtypeNone PoolSubtype = "N/A"
)

var natureOrder = []PoolNature{
	NatureInventory,
	NatureAssets,
	NatureOffInventory,
	NatureOffAssets,
	NatureResources,
	NatureBookables,
	NatureTrackables,
	NatureControlAccount,
	NatureThirdParty,
}

var subtypesByNature = map[PoolNature][]PoolSubtype{
	NatureInventory: {
		SubtypeStockInTrade, SubtypeProduction, SubtypeMRO, SubtypeSpares, SubtypeConsumables,
	},
	NatureAssets: {SubtypeFixedAssets},
	NatureOffInventory: {
		SubtypeSupplies, SubtypePackingMaterials, SubtypeSecurityTags, SubtypeMarketingMaterials,
		SubtypeOfficeSupplies, SubtypeHousekeeping, SubtypeElectrical, SubtypeITConsumables,
		SubtypeTools, SubtypeSafety, SubtypeUniforms,
	},
	NatureOffAssets:      {SubtypeExpensedAssets},
	NatureResources:      {SubtypeProviders},
	NatureBookables:      {SubtypeStockKits, SubtypeDeluxeRooms, SubtypeSurgerySets, SubtypeDemoKits},
	NatureTrackables:     {SubtypeInteractions, SubtypeEvents, SubtypeKPIs},
	NatureControlAccount: {SubtypePurchase, SubtypeConsignment, SubtypeRepair},
	NatureThirdParty:     {SubtypeNone},
}

// Natures returns every pool nature in catalogue order.
func Natures() []PoolNature {
	return slices.Clone(natureOrder)
}

func (n PoolNature) Valid() bool {
	_, ok := subtypesByNature[n]
	return ok
}

// Subtypes returns the subtypes a pool of this nature may use.
func (n PoolNature) Subtypes() []PoolSubtype {
	return slices.Clone(subtypesByNature[n])
}

func (n PoolNature) Allows(s PoolSubtype) bool {
	return slices.Contains(subtypesByNature[n], s)
}

// IsOwner reports whether pools of this nature can own received stock.
func (n PoolNature) IsOwner() bool {
	switch n {
	case NatureInventory, NatureAssets, NatureOffInventory:
		return true
	}
	return false
}

func (p Pool) Validate() error {
	if p.Code == "" {
		return ErrMissingPoolCode
	}
	if !p.Nature.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownNature, p.Nature)
	}
	if !p.Nature.Allows(p.Subtype) {
		return fmt.Errorf("%w: %q is not a %s subtype", ErrInvalidSubtype, p.Subtype, p.Nature)
	}
	return nil
}
