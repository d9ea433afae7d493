package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/keyvanfa/tableside/internal/fault"
	"github.com/keyvanfa/tableside/internal/model"
	"github.com/keyvanfa/tableside/internal/payment"
)

// fakeStore is an in-memory Store honoring the same invariants the
// MySQL implementation enforces with unique keys.
type fakeStore struct {
	nextID    uint64
	carts     map[uint64][]model.CartLine
	orders    map[uint64]*model.Order
	bySession map[string]uint64
	locks     map[string]uint64 // slot key -> order id holding the lock
	slots     map[string]uint64 // confirmed slot claims -> order id
	owners    map[uint64]uint64 // restaurant id -> owner user id
	cleared   map[uint64]int    // user id -> times cart was cleared
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:     map[uint64][]model.CartLine{},
		orders:    map[uint64]*model.Order{},
		bySession: map[string]uint64{},
		locks:     map[string]uint64{},
		slots:     map[string]uint64{},
		owners:    map[uint64]uint64{},
		cleared:   map[uint64]int{},
	}
}

func slotKey(restaurantID uint64, slotAt time.Time) string {
	return fmt.Sprintf("%d@%s", restaurantID, slotAt.UTC().Format("2006-01-02 15:04:05"))
}

func (s *fakeStore) CartLines(_ context.Context, userID uint64) ([]model.CartLine, error) {
	return s.carts[userID], nil
}

func (s *fakeStore) CreatePending(ctx context.Context, ord *model.Order, acquireLock bool, open SessionOpener) (*payment.Session, error) {
	s.nextID++
	ord.ID = s.nextID
	var key string
	if acquireLock && ord.SlotAt != nil {
		key = slotKey(ord.RestaurantID, *ord.SlotAt)
		if _, held := s.locks[key]; held {
			return nil, fault.ErrSlotContended
		}
		s.locks[key] = ord.ID
	}
	sess, err := open(ctx)
	if err != nil {
		// Transaction rollback: the lock insert is undone with it.
		delete(s.locks, key)
		return nil, err
	}
	ord.SessionID = sess.ID
	cp := *ord
	s.orders[ord.ID] = &cp
	s.bySession[sess.ID] = ord.ID
	return sess, nil
}

func (s *fakeStore) BySession(_ context.Context, sessionID string) (*model.Order, error) {
	id, ok := s.bySession[sessionID]
	if !ok {
		return nil, fault.ErrUnknownSession
	}
	cp := *s.orders[id]
	return &cp, nil
}

func (s *fakeStore) ByID(_ context.Context, orderID uint64) (*model.Order, error) {
	ord, ok := s.orders[orderID]
	if !ok {
		return nil, fault.ErrNotFound
	}
	cp := *ord
	return &cp, nil
}

func (s *fakeStore) Confirm(_ context.Context, orderID uint64, paymentRef string, quote model.Quote) error {
	ord := s.orders[orderID]
	if ord.Kind == model.KindBooking && ord.SlotAt != nil {
		key := slotKey(ord.RestaurantID, *ord.SlotAt)
		if holder, taken := s.slots[key]; taken && holder != orderID {
			return fault.ErrSlotAlreadyBooked
		}
		s.slots[key] = orderID
		delete(s.locks, key)
	}
	if ord.Kind == model.KindOrder {
		delete(s.carts, ord.UserID)
		s.cleared[ord.UserID]++
	}
	ord.Status = model.StatusConfirmed
	ord.PaymentStatus = model.PaymentPaid
	ord.PaymentRef = &paymentRef
	ord.Pricing = quote
	return nil
}

func (s *fakeStore) MarkCancelled(_ context.Context, orderID uint64, status, refundStatus string) error {
	ord := s.orders[orderID]
	ord.Status = status
	if refundStatus != "" {
		ord.PaymentStatus = model.PaymentRefunded
		ord.RefundStatus = &refundStatus
	}
	if ord.SlotAt != nil {
		key := slotKey(ord.RestaurantID, *ord.SlotAt)
		delete(s.locks, key)
		if s.slots[key] == orderID {
			delete(s.slots, key)
		}
	}
	return nil
}

func (s *fakeStore) CancelConfirmed(ctx context.Context, orderID uint64, status string, refund RefundFunc) error {
	refundStatus, err := refund(ctx)
	if err != nil {
		return err
	}
	return s.MarkCancelled(ctx, orderID, status, refundStatus)
}

func (s *fakeStore) OwnerID(_ context.Context, restaurantID uint64) (uint64, error) {
	owner, ok := s.owners[restaurantID]
	if !ok {
		return 0, fault.ErrNotFound
	}
	return owner, nil
}

// fakeProvider simulates the payment provider in memory.
type fakeProvider struct {
	nextID    int
	sessions  map[string]*payment.Session
	createErr error
	refundErr error
	refunds   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*payment.Session{}}
}

func (p *fakeProvider) CreateSession(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*payment.Session, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.nextID++
	id := fmt.Sprintf("cs_%d", p.nextID)
	sess := &payment.Session{
		ID:            id,
		RedirectURL:   "https://pay.example/" + id,
		PaymentStatus: payment.StatusUnpaid,
		AmountCents:   amountCents,
		Currency:      currency,
		Metadata:      metadata,
	}
	p.sessions[id] = sess
	return sess, nil
}

func (p *fakeProvider) RetrieveSession(_ context.Context, sessionID string) (*payment.Session, error) {
	sess, ok := p.sessions[sessionID]
	if !ok {
		return nil, fault.ErrUnknownSession
	}
	cp := *sess
	return &cp, nil
}

func (p *fakeProvider) Refund(_ context.Context, paymentRef string) (string, error) {
	if p.refundErr != nil {
		return "", p.refundErr
	}
	p.refunds = append(p.refunds, paymentRef)
	return "refunded", nil
}

// markPaid flips a session to paid as the customer's out-of-band
// payment would.
func (p *fakeProvider) markPaid(sessionID string) {
	sess := p.sessions[sessionID]
	sess.PaymentStatus = payment.StatusPaid
	sess.PaymentRef = "ch_" + sessionID
}

// fakeCatalog serves catalog reads from maps.
type fakeCatalog struct {
	items    map[uint64]*model.MenuItem
	settings map[uint64]*model.RestaurantSettings
	offers   map[uint64]*model.Offer
}

func (f *fakeCatalog) Item(_ context.Context, id uint64) (*model.MenuItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, fault.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeCatalog) Settings(_ context.Context, restaurantID uint64) (*model.RestaurantSettings, error) {
	s, ok := f.settings[restaurantID]
	if !ok {
		return nil, fault.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCatalog) Offer(_ context.Context, offerID uint64) (*model.Offer, error) {
	o, ok := f.offers[offerID]
	if !ok {
		return nil, fault.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeCatalog) OfferByCode(_ context.Context, restaurantID uint64, code string) (*model.Offer, error) {
	for _, o := range f.offers {
		if o.RestaurantID == restaurantID && o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, fault.ErrNotFound
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	confirmed []string
	cancelled []string
}

func (n *fakeNotifier) OrderConfirmed(_ context.Context, ord *model.Order) {
	n.confirmed = append(n.confirmed, ord.Number)
}

func (n *fakeNotifier) OrderCancelled(_ context.Context, ord *model.Order, _ string) {
	n.cancelled = append(n.cancelled, ord.Number)
}

// testWorld bundles a consistent fixture: restaurant 10 owned by user
// 77, one customer (user 5) with a cart worth 25.00 subtotal.
type testWorld struct {
	store    *fakeStore
	catalog  *fakeCatalog
	provider *fakeProvider
	notifier *fakeNotifier
	cfg      Config
}

func newTestWorld() *testWorld {
	store := newFakeStore()
	store.owners[10] = 77
	store.carts[5] = []model.CartLine{
		{UserID: 5, ItemID: 1, Quantity: 2}, // 2 x 9.00
		{UserID: 5, ItemID: 2, Quantity: 1}, // 1 x 7.00
	}
	catalog := &fakeCatalog{
		items: map[uint64]*model.MenuItem{
			1: {ID: 1, RestaurantID: 10, Name: "Pad Thai", BasePriceCents: 900, Available: true},
			2: {ID: 2, RestaurantID: 10, Name: "Spring Rolls", BasePriceCents: 700, Available: true},
		},
		settings: map[uint64]*model.RestaurantSettings{
			10: {
				RestaurantID:        10,
				HandlingRate:        0.10,
				Location:            model.Coordinates{Lat: 0, Lng: 0},
				Delivery:            model.DeliverySettings{MaxRadiusKm: 10, FreeRadiusKm: 5, PerKmCents: 100},
				BookingDepositCents: 1500,
			},
		},
		offers: map[uint64]*model.Offer{
			1: {ID: 1, RestaurantID: 10, Code: "SAVE20", Type: model.OfferPercentage, Percent: 20, MaxDiscountCents: 8000, MinOrderCents: 1000, Active: true},
		},
	}
	return &testWorld{
		store:    store,
		catalog:  catalog,
		provider: newFakeProvider(),
		notifier: &fakeNotifier{},
		cfg: Config{
			Currency:            "EUR",
			SlotLockTTL:         5 * time.Minute,
			SlotLockingEnabled:  true,
			PriceToleranceCents: 1,
			CancelMinLead:       5 * time.Hour,
		},
	}
}

func (w *testWorld) initiator() *Initiator {
	return NewInitiator(w.store, w.catalog, w.provider, w.cfg)
}

func (w *testWorld) confirmer() *Confirmer {
	return NewConfirmer(w.store, w.catalog, w.provider, w.notifier, nil, w.cfg)
}

func (w *testWorld) canceller() *Canceller {
	return NewCanceller(w.store, w.provider, w.notifier, w.cfg)
}
