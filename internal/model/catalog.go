package model

// MenuItem is a sellable catalog item belonging to a restaurant. Items
// are owned by the catalog service; this core only reads them when
// materializing a cart, so the struct carries exactly what pricing and
// validation need.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantID   – restaurant the item belongs to.
//  Name           – display name, snapshotted into order lines.
//  BasePriceCents – base price in cents before variants and addons.
//  Available      – whether the item can currently be ordered.
//  Variants       – selectable variants (e.g. size); at most one applies.
//  Addons         – optional extras; any number may apply.
type MenuItem struct {
	ID             uint64
	RestaurantID   uint64
	Name           string
	BasePriceCents int64
	Available      bool
	Variants       []ItemVariant
	Addons         []ItemAddon
}

// ItemVariant is a mutually exclusive option on a menu item. When a
// variant is chosen its price replaces the item's base price.
type ItemVariant struct {
	ID         uint64
	Name       string
	PriceCents int64
}

// ItemAddon is an additive extra on a menu item. Each chosen addon adds
// its price on top of the base or variant price.
type ItemAddon struct {
	ID         uint64
	Name       string
	PriceCents int64
}

// Coordinates is a geographic point used by the delivery fee
// calculator. Latitude and longitude are in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliverySettings configures how a restaurant charges for delivery.
//
// Fields:
//  MaxRadiusKm  – beyond this distance delivery is refused.
//  FreeRadiusKm – within this distance delivery is free.
//  PerKmCents   – charge per kilometre beyond the free radius.
type DeliverySettings struct {
	MaxRadiusKm  float64
	FreeRadiusKm float64
	PerKmCents   int64
}

// RestaurantSettings carries the per-restaurant configuration consumed
// by the pricing engine and the booking policy checks. It is read from
// the catalog at checkout time and again at confirmation time so the
// authoritative price always reflects current state.
//
// Fields:
//  RestaurantID        – restaurant these settings belong to.
//  HandlingRate        – fraction of the subtotal charged as handling.
//  Location            – restaurant coordinates for distance pricing.
//  Delivery            – delivery radius and fee configuration.
//  BookingDepositCents – per-guest deposit charged for table bookings.
type RestaurantSettings struct {
	RestaurantID        uint64
	HandlingRate        float64
	Location            Coordinates
	Delivery            DeliverySettings
	BookingDepositCents int64
}
