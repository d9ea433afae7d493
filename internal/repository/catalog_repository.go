package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

// CatalogRepo is the read-only view of catalog data this core
// consumes: menu items with their variants and addons, restaurant
// settings, and promotional offers. Catalog management itself belongs
// to the catalog service; checkout only ever reads current state so
// the authoritative price reflects what is sellable right now.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// Item loads a menu item with its variants and addons. Unknown ids
// return fault.ErrNotFound.
func (r *CatalogRepo) Item(ctx context.Context, id uint64) (*model.MenuItem, error) {
	const q = `SELECT id, restaurant_id, name, base_price_cents, available FROM menu_items WHERE id = ?`
	var it model.MenuItem
	err := r.db.QueryRowContext(ctx, q, id).Scan(&it.ID, &it.RestaurantID, &it.Name, &it.BasePriceCents, &it.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	const vq = `SELECT id, name, price_cents FROM item_variants WHERE item_id = ? ORDER BY id`
	vrows, err := r.db.QueryContext(ctx, vq, id)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v model.ItemVariant
		if err := vrows.Scan(&v.ID, &v.Name, &v.PriceCents); err != nil {
			return nil, err
		}
		it.Variants = append(it.Variants, v)
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}
	const aq = `SELECT id, name, price_cents FROM item_addons WHERE item_id = ? ORDER BY id`
	arows, err := r.db.QueryContext(ctx, aq, id)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a model.ItemAddon
		if err := arows.Scan(&a.ID, &a.Name, &a.PriceCents); err != nil {
			return nil, err
		}
		it.Addons = append(it.Addons, a)
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	return &it, nil
}

// Settings loads the pricing and booking configuration of a
// restaurant.
func (r *CatalogRepo) Settings(ctx context.Context, restaurantID uint64) (*model.RestaurantSettings, error) {
	const q = `SELECT id, handling_rate, lat, lng, max_radius_km, free_radius_km, per_km_cents, booking_deposit_cents
	           FROM restaurants WHERE id = ?`
	var s model.RestaurantSettings
	err := r.db.QueryRowContext(ctx, q, restaurantID).Scan(
		&s.RestaurantID, &s.HandlingRate,
		&s.Location.Lat, &s.Location.Lng,
		&s.Delivery.MaxRadiusKm, &s.Delivery.FreeRadiusKm, &s.Delivery.PerKmCents,
		&s.BookingDepositCents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Offer loads a promotional offer by id.
func (r *CatalogRepo) Offer(ctx context.Context, offerID uint64) (*model.Offer, error) {
	const q = `SELECT id, restaurant_id, code, type, percent, amount_cents, max_discount_cents, min_order_cents, active
	           FROM offers WHERE id = ?`
	return r.scanOffer(r.db.QueryRowContext(ctx, q, offerID))
}

// OfferByCode loads a restaurant's offer by its promo code.
func (r *CatalogRepo) OfferByCode(ctx context.Context, restaurantID uint64, code string) (*model.Offer, error) {
	const q = `SELECT id, restaurant_id, code, type, percent, amount_cents, max_discount_cents, min_order_cents, active
	           FROM offers WHERE restaurant_id = ? AND code = ?`
	return r.scanOffer(r.db.QueryRowContext(ctx, q, restaurantID, code))
}

func (r *CatalogRepo) scanOffer(row *sql.Row) (*model.Offer, error) {
	var o model.Offer
	var typ string
	err := row.Scan(&o.ID, &o.RestaurantID, &o.Code, &typ, &o.Percent, &o.AmountCents, &o.MaxDiscountCents, &o.MinOrderCents, &o.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}
	o.Type = model.OfferType(typ)
	return &o, nil
}

// OwnerID returns the owning user of a restaurant, used to authorize
// owner-side cancellations.
func (r *CatalogRepo) OwnerID(ctx context.Context, restaurantID uint64) (uint64, error) {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM restaurants WHERE id = ?`, restaurantID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fault.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}
