// Package cart resolves a stored cart against current catalog state,
// turning mutable cart lines into the immutable priced lines consumed
// by the pricing engine. Validation of variant and addon selections
// happens here, once, at the boundary; downstream code trusts the
// result.
package cart

import (
	"context"
	"fmt"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

// Catalog is the read-only surface of the catalog service this core
// consumes. Implementations must return fault.ErrNotFound for unknown
// ids.
type Catalog interface {
	Item(ctx context.Context, id uint64) (*model.MenuItem, error)
	Settings(ctx context.Context, restaurantID uint64) (*model.RestaurantSettings, error)
	Offer(ctx context.Context, offerID uint64) (*model.Offer, error)
	OfferByCode(ctx context.Context, restaurantID uint64, code string) (*model.Offer, error)
}

// Materializer re-resolves cart lines against the catalog. It is
// stateless; the same instance is safe for concurrent use.
type Materializer struct {
	catalog Catalog
}

// NewMaterializer returns a Materializer backed by the given catalog.
func NewMaterializer(catalog Catalog) *Materializer {
	if catalog == nil {
		panic("nil catalog passed to NewMaterializer")
	}
	return &Materializer{catalog: catalog}
}

// Materialize resolves each cart line to a priced line at current
// catalog state. It fails fast on the first unavailable item, unknown
// variant or addon, and rejects carts spanning more than one
// restaurant. The returned restaurant id is the single restaurant all
// lines belong to.
func (m *Materializer) Materialize(ctx context.Context, lines []model.CartLine) (uint64, []model.PricedLine, error) {
	if len(lines) == 0 {
		return 0, nil, fault.ErrEmptyCart
	}
	var restaurantID uint64
	priced := make([]model.PricedLine, 0, len(lines))
	for _, line := range lines {
		item, err := m.catalog.Item(ctx, line.ItemID)
		if err != nil {
			return 0, nil, err
		}
		if !item.Available {
			return 0, nil, fmt.Errorf("%w: %s", fault.ErrItemUnavailable, item.Name)
		}
		if restaurantID == 0 {
			restaurantID = item.RestaurantID
		} else if item.RestaurantID != restaurantID {
			return 0, nil, fault.ErrMixedRestaurants
		}
		if line.Quantity == 0 {
			return 0, nil, fmt.Errorf("%w: zero quantity for item %d", fault.ErrValidation, item.ID)
		}
		unit, err := unitPrice(item, line.Selection)
		if err != nil {
			return 0, nil, err
		}
		priced = append(priced, model.PricedLine{
			ItemID:         item.ID,
			Name:           item.Name,
			UnitPriceCents: unit,
			Quantity:       line.Quantity,
			LineTotalCents: unit * int64(line.Quantity),
			Selection:      line.Selection,
		})
	}
	return restaurantID, priced, nil
}

// unitPrice resolves the per-unit price of an item for a selection:
// the chosen variant's price (or the base price when no variant is
// chosen) plus every chosen addon.
func unitPrice(item *model.MenuItem, sel model.Selection) (int64, error) {
	price := item.BasePriceCents
	if sel.VariantID != nil {
		found := false
		for _, v := range item.Variants {
			if v.ID == *sel.VariantID {
				price = v.PriceCents
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: variant %d on item %d", fault.ErrInvalidSelection, *sel.VariantID, item.ID)
		}
	}
	for _, id := range sel.AddonIDs {
		found := false
		for _, a := range item.Addons {
			if a.ID == id {
				price += a.PriceCents
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: addon %d on item %d", fault.ErrInvalidSelection, id, item.ID)
		}
	}
	return price, nil
}
