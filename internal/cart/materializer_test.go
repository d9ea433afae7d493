package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
)

// fakeCatalog serves items from a map; Settings and OfferByCode are
// unused by the materializer itself.
type fakeCatalog struct {
	items map[uint64]*model.MenuItem
}

func (f *fakeCatalog) Item(_ context.Context, id uint64) (*model.MenuItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	return it, nil
}

func (f *fakeCatalog) Settings(context.Context, uint64) (*model.RestaurantSettings, error) {
	return nil, fault.ErrNotFound
}

func (f *fakeCatalog) Offer(context.Context, uint64) (*model.Offer, error) {
	return nil, fault.ErrNotFound
}

func (f *fakeCatalog) OfferByCode(context.Context, uint64, string) (*model.Offer, error) {
	return nil, fault.ErrNotFound
}

func u64(v uint64) *uint64 { return &v }

func testCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[uint64]*model.MenuItem{
		1: {
			ID: 1, RestaurantID: 10, Name: "Margherita", BasePriceCents: 900, Available: true,
			Variants: []model.ItemVariant{{ID: 100, Name: "Large", PriceCents: 1300}},
			Addons:   []model.ItemAddon{{ID: 200, Name: "Extra cheese", PriceCents: 150}},
		},
		2: {ID: 2, RestaurantID: 10, Name: "Cola", BasePriceCents: 250, Available: true},
		3: {ID: 3, RestaurantID: 99, Name: "Sushi", BasePriceCents: 1800, Available: true},
		4: {ID: 4, RestaurantID: 10, Name: "Old Special", BasePriceCents: 700, Available: false},
	}}
}

func TestMaterializeResolvesPrices(t *testing.T) {
	m := NewMaterializer(testCatalog())
	restID, priced, err := m.Materialize(context.Background(), []model.CartLine{
		{ItemID: 1, Quantity: 2, Selection: model.Selection{VariantID: u64(100), AddonIDs: []uint64{200}}},
		{ItemID: 2, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), restID)
	require.Len(t, priced, 2)
	// Large variant 13.00 + extra cheese 1.50 = 14.50 per unit.
	assert.Equal(t, int64(1450), priced[0].UnitPriceCents)
	assert.Equal(t, int64(2900), priced[0].LineTotalCents)
	assert.Equal(t, int64(250), priced[1].LineTotalCents)
}

func TestMaterializeEmptyCart(t *testing.T) {
	m := NewMaterializer(testCatalog())
	_, _, err := m.Materialize(context.Background(), nil)
	assert.ErrorIs(t, err, fault.ErrEmptyCart)
}

func TestMaterializeUnavailableItem(t *testing.T) {
	m := NewMaterializer(testCatalog())
	_, _, err := m.Materialize(context.Background(), []model.CartLine{
		{ItemID: 4, Quantity: 1},
	})
	assert.ErrorIs(t, err, fault.ErrItemUnavailable)
}

func TestMaterializeInvalidSelection(t *testing.T) {
	m := NewMaterializer(testCatalog())
	_, _, err := m.Materialize(context.Background(), []model.CartLine{
		{ItemID: 1, Quantity: 1, Selection: model.Selection{VariantID: u64(777)}},
	})
	assert.ErrorIs(t, err, fault.ErrInvalidSelection)

	_, _, err = m.Materialize(context.Background(), []model.CartLine{
		{ItemID: 2, Quantity: 1, Selection: model.Selection{AddonIDs: []uint64{888}}},
	})
	assert.ErrorIs(t, err, fault.ErrInvalidSelection)
}

func TestMaterializeMixedRestaurants(t *testing.T) {
	m := NewMaterializer(testCatalog())
	_, _, err := m.Materialize(context.Background(), []model.CartLine{
		{ItemID: 1, Quantity: 1},
		{ItemID: 3, Quantity: 1},
	})
	assert.ErrorIs(t, err, fault.ErrMixedRestaurants)
}
