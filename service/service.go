package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront-cart/model"
	"storefront-cart/store"
)

// Engine owns the cart and order history of the currently bound identity.
// Every public method runs to completion under mu; mutations build a new
// slice and swap it in.
type Engine struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	identity string
	cart     []model.LineItem
	orders   []model.Order
	method   model.ShippingMethod
	dest     model.Destination
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock replaces time.Now for order IDs and dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine bound to the guest bucket.
func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		log:    zap.NewNop(),
		now:    time.Now,
		method: model.Standard,
		dest:   model.Canada,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.load()
	return e
}

// Snapshot is a consistent read of everything the presentation layer shows.
type Snapshot struct {
	Identity       string               `json:"identity"`
	Items          []model.LineItem     `json:"items"`
	Count          int                  `json:"count"`
	ShippingMethod model.ShippingMethod `json:"shipping_method"`
	Destination    model.Destination    `json:"destination"`
	Pricing        model.Pricing        `json:"pricing"`
}

// Bind switches to identity's bucket ("" is the guest). In-memory state is
// discarded and reloaded from the store; buckets are never merged.
func (e *Engine) Bind(identity string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if store.Bucket(identity) == store.Bucket(e.identity) {
		return
	}
	e.identity = identity
	e.load()
}

func (e *Engine) Identity() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// AddItem merges item into the entry with the same key, or appends it.
func (e *Engine) AddItem(item model.LineItem) {
	if item.Quantity < 1 {
		e.log.Warn("ignoring add with non-positive quantity",
			zap.String("product_id", item.ProductID), zap.Int("quantity", item.Quantity))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := model.CloneItems(e.cart)
	key := item.Key()
	merged := false
	for i := range next {
		if next[i].Key() == key {
			next[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, item)
	}
	e.setCart(next)
}

// RemoveItem deletes the entry with the exact key. Absent keys are a no-op.
func (e *Engine) RemoveItem(productID, size, color string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remove(model.ItemKey{ProductID: productID, Size: size, Color: color})
}

func (e *Engine) remove(key model.ItemKey) {
	next := make([]model.LineItem, 0, len(e.cart))
	for _, it := range e.cart {
		if it.Key() != key {
			next = append(next, it)
		}
	}
	if len(next) == len(e.cart) {
		return
	}
	e.setCart(next)
}

// SetQuantity replaces the quantity of an existing entry in place.
// quantity < 1 removes the entry; absent keys are a no-op.
func (e *Engine) SetQuantity(productID, size, color string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := model.ItemKey{ProductID: productID, Size: size, Color: color}
	if quantity < 1 {
		e.remove(key)
		return
	}

	next := model.CloneItems(e.cart)
	for i := range next {
		if next[i].Key() == key {
			next[i].Quantity = quantity
			e.setCart(next)
			return
		}
	}
}

func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, it := range e.cart {
		n += it.Quantity
	}
	return n
}

// Clear empties the cart. Order history is untouched.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setCart([]model.LineItem{})
}

func (e *Engine) SetShippingMethod(m model.ShippingMethod) {
	if !m.Valid() {
		e.log.Warn("ignoring unknown shipping method", zap.Stringer("method", m))
		return
	}
	e.mu.Lock()
	e.method = m
	e.mu.Unlock()
}

func (e *Engine) SetDestination(d model.Destination) {
	if !d.Valid() {
		e.log.Warn("ignoring unknown destination", zap.Stringer("destination", d))
		return
	}
	e.mu.Lock()
	e.dest = d
	e.mu.Unlock()
}

// Checkout snapshots the cart and its current total into a new order,
// appends it to the history and clears the cart. An empty cart yields an
// order with no items and a zero total.
func (e *Engine) Checkout() model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC().Truncate(time.Millisecond)
	order := model.Order{
		ID:    fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Items: model.CloneItems(e.cart),
		Total: model.Price(e.cart, e.method, e.dest).Total,
		Date:  now,
	}

	history := make([]model.Order, 0, len(e.orders)+1)
	history = append(history, e.orders...)
	history = append(history, order)
	e.orders = history
	e.persist(store.OrdersKey(e.identity), e.orders)

	e.setCart([]model.LineItem{})

	e.log.Info("checkout",
		zap.String("bucket", store.Bucket(e.identity)),
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Stringer("total", order.Total))

	order.Items = model.CloneItems(order.Items)
	return order
}

func (e *Engine) Cart() []model.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneItems(e.cart)
}

func (e *Engine) Orders() []model.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneOrders(e.orders)
}

func (e *Engine) ShippingMethod() model.ShippingMethod {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.method
}

func (e *Engine) Destination() model.Destination {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dest
}

// Pricing is recomputed from the cart on every call.
func (e *Engine) Pricing() model.Pricing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.Price(e.cart, e.method, e.dest)
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, it := range e.cart {
		n += it.Quantity
	}
	return Snapshot{
		Identity:       e.identity,
		Items:          model.CloneItems(e.cart),
		Count:          n,
		ShippingMethod: e.method,
		Destination:    e.dest,
		Pricing:        model.Price(e.cart, e.method, e.dest),
	}
}

// setCart swaps in next and writes it through. Callers hold mu.
func (e *Engine) setCart(next []model.LineItem) {
	e.cart = next
	e.persist(store.CartKey(e.identity), e.cart)
}

// persist writes the full collection. Failures are logged, never returned,
// so in-memory state stays authoritative for the session.
func (e *Engine) persist(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		e.log.Error("encode state", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.Set(key, string(data)); err != nil {
		e.log.Error("persist state", zap.String("key", key), zap.Error(err))
	}
}

// load replaces in-memory state with the bound bucket's persisted state.
// Callers hold mu (or are the constructor).
func (e *Engine) load() {
	var cart []model.LineItem
	if !e.read(store.CartKey(e.identity), &cart) || !validCart(cart) {
		cart = nil
	}
	var orders []model.Order
	if !e.read(store.OrdersKey(e.identity), &orders) {
		orders = nil
	}
	if cart == nil {
		cart = []model.LineItem{}
	}
	if orders == nil {
		orders = []model.Order{}
	}
	e.cart = cart
	e.orders = orders

	e.log.Debug("bucket loaded",
		zap.String("bucket", store.Bucket(e.identity)),
		zap.Int("items", len(cart)),
		zap.Int("orders", len(orders)))
}

// read decodes key into v. Missing, unreadable and malformed values all
// report false.
func (e *Engine) read(key string, v any) bool {
	raw, ok, err := e.store.Get(key)
	if err != nil {
		e.log.Warn("read state", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		e.log.Warn("discarding malformed state", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// validCart rejects persisted carts that break the engine's invariants.
func validCart(items []model.LineItem) bool {
	seen := make(map[model.ItemKey]struct{}, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return false
		}
		k := it.Key()
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}
