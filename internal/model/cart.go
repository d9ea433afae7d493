package model

import "time"

// Selection is the closed set of option choices attached to a cart
// line: at most one variant plus any number of addons. It is validated
// once at the cart materializer boundary; downstream code can rely on
// the ids having been resolved against the catalog.
type Selection struct {
	VariantID *uint64  `json:"variant_id,omitempty"`
	AddonIDs  []uint64 `json:"addon_ids,omitempty"`
}

// CartLine is one mutable line in a customer's cart. Lines reference
// catalog items by id; prices are never stored on the line because the
// catalog is re-resolved at checkout time.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the cart.
//  ItemID    – referenced menu item.
//  Quantity  – number of units, always >= 1.
//  Selection – chosen variant and addons.
//  CreatedAt – when the line was added.
type CartLine struct {
	ID        uint64
	UserID    uint64
	ItemID    uint64
	Quantity  uint32
	Selection Selection
	CreatedAt time.Time
}

// PricedLine is the immutable snapshot of a cart line resolved against
// catalog state at a point in time. It is embedded into an order at
// commit time and never persisted standalone.
//
// Fields:
//  ItemID         – referenced menu item.
//  Name           – item name at resolution time.
//  UnitPriceCents – base-or-variant price plus addons, per unit.
//  Quantity       – number of units.
//  LineTotalCents – UnitPriceCents * Quantity.
//  Selection      – the validated option choices, kept so the price can
//                   be re-derived against current catalog state at
//                   confirmation time.
type PricedLine struct {
	ItemID         uint64    `json:"item_id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       uint32    `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
	Selection      Selection `json:"selection"`
}
