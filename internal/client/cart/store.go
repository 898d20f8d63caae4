package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/client/session"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	msgAddFailed    = "Failed to add item to cart"
	msgUpdateFailed = "Failed to update cart item"
	msgRemoveFailed = "Failed to remove item from cart"
	msgClearFailed  = "Failed to clear cart"
	msgLoadFailed   = "Failed to load cart"
	msgLoginFirst   = "Please log in to manage your cart"
)

// API is the part of the transport the cart needs.
type API interface {
	GetCart(ctx context.Context) (*models.Cart, error)
	AddCartItem(ctx context.Context, req models.AddItemRequest) error
	UpdateCartItem(ctx context.Context, req models.UpdateItemRequest) error
	RemoveCartItem(ctx context.Context, req models.RemoveItemRequest) error
	ClearCart(ctx context.Context) error
}

// Session is the view of the session the cart depends on.
type Session interface {
	State() session.State
	Subscribe(l session.Listener) (unsubscribe func())
}

// Store serializes cart mutations in submission order and tags every
// reload with a sequence number so that only the newest one is applied.
type Store struct {
	api  API
	sess Session
	log  logging.Logger

	// mutations holds a token while a mutation runs; blocked senders are
	// served in arrival order.
	mutations chan struct{}
	loads     singleflight.Group

	mu    sync.Mutex
	state State
	seq   uint64

	unsubscribe func()
}

// NewStore creates the cart and binds it to the session: it loads when the
// session becomes authenticated and empties when it ends.
func NewStore(a API, sess Session, log logging.Logger) *Store {
	s := &Store{
		api:       a,
		sess:      sess,
		log:       log,
		mutations: make(chan struct{}, 1),
		state:     Reduce(State{}, Reset{}),
	}
	s.unsubscribe = sess.Subscribe(s.onSession)
	return s
}

func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Store) onSession(ctx context.Context, prev, next session.State) {
	switch {
	case next.Authenticated() && !prev.Authenticated():
		if err := s.Load(ctx); err != nil {
			s.log.Warn(ctx, "initial cart load failed", "error", err)
		}
	case next.Authenticated() && prev.User.ID != next.User.ID:
		// Another account logged in over the current one.
		s.reset()
		if err := s.Load(ctx); err != nil {
			s.log.Warn(ctx, "initial cart load failed", "error", err)
		}
	case next.Status == session.StatusUnauthenticated:
		s.reset()
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) dispatch(e Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, e)
	return s.state
}

// supersede applies e and invalidates every reload issued before it.
func (s *Store) supersede(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state = Reduce(s.state, e)
}

func (s *Store) reset() {
	s.supersede(Reset{})
}

func (s *Store) requireAuth(op string) error {
	if !s.sess.State().Authenticated() {
		return &common.OpError{Op: op, Msg: msgLoginFirst, Err: common.ErrNotAuthenticated}
	}
	return nil
}

// lock waits for the mutation token. The returned func releases it.
func (s *Store) lock(ctx context.Context) (func(), error) {
	select {
	case s.mutations <- struct{}{}:
		return func() { <-s.mutations }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load replaces the cart with the server's. Concurrent calls share one
// request, which outlives any single caller giving up. A 404 means the user
// has no cart yet and yields an empty cart.
func (s *Store) Load(ctx context.Context) error {
	if err := s.requireAuth("load cart"); err != nil {
		return err
	}
	shared := context.WithoutCancel(ctx)
	ch := s.loads.DoChan("load", func() (any, error) {
		return nil, s.reload(shared)
	})
	var err error
	select {
	case res := <-ch:
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		return &common.OpError{Op: "load cart", Msg: api.MessageOf(err, msgLoadFailed), Err: err}
	}
	return nil
}

func (s *Store) reload(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state = Reduce(s.state, LoadStarted{})
	s.mu.Unlock()

	c, err := s.api.GetCart(ctx)
	if errors.Is(err, common.ErrNotFound) {
		c, err = &models.Cart{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.log.Debug(ctx, "stale cart response discarded", "seq", seq, "latest", s.seq)
		return nil
	}
	if err != nil {
		s.state = Reduce(s.state, Failed{Message: api.MessageOf(err, msgLoadFailed)})
		return err
	}
	s.state = Reduce(s.state, Loaded{Items: c.Items})
	return nil
}

// reconcile reloads after a confirmed mutation. The mutation already
// succeeded, so a failed reload is only logged.
func (s *Store) reconcile(ctx context.Context, op string) {
	if err := s.reload(ctx); err != nil {
		s.log.Warn(ctx, "cart reload after mutation failed", "op", op, "error", err)
	}
}

func (s *Store) fail(op, fallback string, err error) error {
	msg := api.MessageOf(err, fallback)
	s.dispatch(Failed{Message: msg})
	return &common.OpError{Op: op, Msg: msg, Err: err}
}

// Add puts quantity units of the product (and optional variant) in the
// cart. A quantity below 1 adds a single unit.
func (s *Store) Add(ctx context.Context, productID int64, variantID *int64, quantity int) error {
	const op = "add to cart"
	if err := s.requireAuth(op); err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	req := models.AddItemRequest{ProductID: productID, VariantID: variantID, Quantity: quantity}
	if err := s.api.AddCartItem(ctx, req); err != nil {
		return s.fail(op, msgAddFailed, err)
	}
	s.log.Debug(ctx, "item added", "product", productID, "quantity", quantity)
	s.reconcile(ctx, op)
	return nil
}

// Update sets the quantity of a cart line. A quantity of zero or less
// removes the line.
func (s *Store) Update(ctx context.Context, itemID int64, quantity int) error {
	const op = "update cart item"
	if err := s.requireAuth(op); err != nil {
		return err
	}
	if quantity <= 0 {
		return s.Remove(ctx, itemID)
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.api.UpdateCartItem(ctx, models.UpdateItemRequest{CartItemID: itemID, Quantity: quantity}); err != nil {
		return s.fail(op, msgUpdateFailed, err)
	}
	s.reconcile(ctx, op)
	return nil
}

// Remove deletes a cart line. The line disappears locally as soon as the
// server confirms, and a reload follows.
func (s *Store) Remove(ctx context.Context, itemID int64) error {
	const op = "remove cart item"
	if err := s.requireAuth(op); err != nil {
		return err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.api.RemoveCartItem(ctx, models.RemoveItemRequest{CartItemID: itemID}); err != nil {
		return s.fail(op, msgRemoveFailed, err)
	}
	s.supersede(ItemRemoved{ID: itemID})
	s.reconcile(ctx, op)
	return nil
}

// Clear empties the cart on the server and locally.
func (s *Store) Clear(ctx context.Context) error {
	const op = "clear cart"
	if err := s.requireAuth(op); err != nil {
		return err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.api.ClearCart(ctx); err != nil {
		return s.fail(op, msgClearFailed, err)
	}
	s.reset()
	return nil
}

// Item returns the line holding productID with variantID.
func (s *Store) Item(productID int64, variantID *int64) (models.CartItem, bool) {
	return s.State().Find(productID, variantID)
}

func (s *Store) InCart(productID int64, variantID *int64) bool {
	_, ok := s.Item(productID, variantID)
	return ok
}

// Quantity returns how many units of the product/variant are in the cart.
func (s *Store) Quantity(productID int64, variantID *int64) int {
	it, _ := s.Item(productID, variantID)
	return it.Quantity
}
