// Package orders reads order projections and performs the two narrow order
// actions the client is allowed: a buyer cancelling an early order and a
// seller advancing a paid order to its next status. After either action the
// order is fetched again; the client never infers a status on its own.
package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/client/session"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/logging"
)

const (
	msgListFailed    = "Failed to load orders"
	msgGetFailed     = "Failed to load order"
	msgCancelFailed  = "Failed to cancel order"
	msgAdvanceFailed = "Failed to update order status"
	msgPayFailed     = "Failed to initialize payment"
	msgStatusFailed  = "Failed to load payment status"
)

type API interface {
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, ref string) (*models.Order, error)
	CancelOrder(ctx context.Context, id int64) error
	ListSellerOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	GetSellerOrder(ctx context.Context, id int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	InitializePayment(ctx context.Context, orderID int64) (*models.PaymentInit, error)
	PaymentStatus(ctx context.Context, orderID int64) (*models.PaymentStatus, error)
}

type Session interface {
	State() session.State
}

type Service struct {
	api  API
	sess Session
	log  logging.Logger
}

func NewService(a API, sess Session, log logging.Logger) *Service {
	return &Service{api: a, sess: sess, log: log}
}

func (s *Service) user(op string) (*models.User, error) {
	st := s.sess.State()
	if !st.Authenticated() {
		return nil, &common.OpError{Op: op, Msg: "Please log in to view your orders", Err: common.ErrNotAuthenticated}
	}
	return st.User, nil
}

func (s *Service) seller(op string) error {
	u, err := s.user(op)
	if err != nil {
		return err
	}
	if !u.IsSeller {
		return &common.OpError{Op: op, Msg: "This action is only available to sellers", Err: common.ErrNotSeller}
	}
	return nil
}

func opErr(op, fallback string, err error) error {
	return &common.OpError{Op: op, Msg: api.MessageOf(err, fallback), Err: err}
}

// List returns the buyer's orders, newest first unless f says otherwise.
func (s *Service) List(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	if _, err := s.user("list orders"); err != nil {
		return nil, err
	}
	if f.Ordering == "" {
		f.Ordering = "-created_at"
	}
	list, err := s.api.ListOrders(ctx, f)
	if err != nil {
		return nil, opErr("list orders", msgListFailed, err)
	}
	return list, nil
}

// Get fetches one order by id or order number.
func (s *Service) Get(ctx context.Context, ref string) (*models.Order, error) {
	if _, err := s.user("get order"); err != nil {
		return nil, err
	}
	o, err := s.api.GetOrder(ctx, ref)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, &common.OpError{Op: "get order", Msg: "Order not found", Err: err}
		}
		return nil, opErr("get order", msgGetFailed, err)
	}
	return o, nil
}

// Cancel cancels a pending or processing order and returns it as the
// server now reports it.
func (s *Service) Cancel(ctx context.Context, o *models.Order) (*models.Order, error) {
	const op = "cancel order"
	if _, err := s.user(op); err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		return nil, &common.OpError{Op: op, Msg: "This order can no longer be cancelled", Err: common.ErrCancelNotAllowed}
	}

	if err := s.api.CancelOrder(ctx, o.ID); err != nil {
		return nil, opErr(op, msgCancelFailed, err)
	}
	s.log.Info(ctx, "order cancelled", "order", o.OrderNumber)

	fresh, err := s.api.GetOrder(ctx, strconv.FormatInt(o.ID, 10))
	if err != nil {
		return nil, opErr(op, msgGetFailed, err)
	}
	return fresh, nil
}

// SellerOrders lists orders containing the seller's products.
func (s *Service) SellerOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	const op = "list seller orders"
	if err := s.seller(op); err != nil {
		return nil, err
	}
	list, err := s.api.ListSellerOrders(ctx, f)
	if err != nil {
		return nil, opErr(op, msgListFailed, err)
	}
	return list, nil
}

// Advance moves a paid order to the immediate next status.
func (s *Service) Advance(ctx context.Context, o *models.Order) (*models.Order, error) {
	const op = "advance order"
	if err := s.seller(op); err != nil {
		return nil, err
	}
	if !o.IsPaid {
		return nil, &common.OpError{Op: op, Msg: "Only paid orders can be processed", Err: common.ErrNotPaid}
	}
	next, ok := o.Status.Next()
	if !ok {
		return nil, &common.OpError{Op: op, Msg: "This order has no further status", Err: common.ErrNoNextStatus}
	}

	if err := s.api.UpdateOrderStatus(ctx, o.ID, next); err != nil {
		return nil, opErr(op, msgAdvanceFailed, err)
	}
	s.log.Info(ctx, "order status advanced", "order", o.OrderNumber, "from", o.Status, "to", next)

	fresh, err := s.api.GetSellerOrder(ctx, o.ID)
	if err != nil {
		return nil, opErr(op, msgGetFailed, err)
	}
	return fresh, nil
}

// RetryPayment starts a new gateway payment for an unpaid card order and
// returns where to send the buyer.
func (s *Service) RetryPayment(ctx context.Context, o *models.Order) (*models.PaymentInit, error) {
	const op = "retry payment"
	if _, err := s.user(op); err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, &common.OpError{Op: op, Msg: "This order is already paid", Err: errors.New("order already paid")}
	}
	if o.PaymentMethod != models.PaymentGatewayCard {
		return nil, &common.OpError{Op: op, Msg: "This order is not paid by card", Err: errors.New("not a card payment")}
	}

	init, err := s.api.InitializePayment(ctx, o.ID)
	if err != nil {
		return nil, opErr(op, msgPayFailed, err)
	}
	return init, nil
}

func (s *Service) PaymentStatus(ctx context.Context, orderID int64) (*models.PaymentStatus, error) {
	if _, err := s.user("payment status"); err != nil {
		return nil, err
	}
	st, err := s.api.PaymentStatus(ctx, orderID)
	if err != nil {
		return nil, opErr("payment status", msgStatusFailed, err)
	}
	return st, nil
}
