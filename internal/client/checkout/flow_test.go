package checkout

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/cart"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fakes
 *************/

type fakeAPI struct {
	mu sync.Mutex

	addresses    []models.Address
	addressesErr error
	config       *models.PaymentConfig
	configErr    error
	// configHangs makes PaymentConfig wait for its context to end.
	configHangs bool

	checkoutResp *models.CheckoutResponse
	checkoutErr  error
	checkoutReqs []models.CheckoutRequest
	checkoutGate chan struct{}

	verify     *models.PaymentVerification
	verifyErr  error
	verifyRefs []string
}

func (f *fakeAPI) ListAddresses(context.Context) ([]models.Address, error) {
	return f.addresses, f.addressesErr
}

func (f *fakeAPI) PaymentConfig(ctx context.Context) (*models.PaymentConfig, error) {
	if f.configHangs {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.config, f.configErr
}

func (f *fakeAPI) Checkout(_ context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	f.mu.Lock()
	f.checkoutReqs = append(f.checkoutReqs, req)
	gate := f.checkoutGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.checkoutResp, f.checkoutErr
}

func (f *fakeAPI) VerifyPayment(_ context.Context, ref string) (*models.PaymentVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyRefs = append(f.verifyRefs, ref)
	return f.verify, f.verifyErr
}

func (f *fakeAPI) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checkoutReqs)
}

type fakeCart struct {
	state    cart.State
	clearErr error
	cleared  int
	loaded   int
}

func (c *fakeCart) State() cart.State { return c.state }

func (c *fakeCart) Load(context.Context) error {
	c.loaded++
	return nil
}

func (c *fakeCart) Clear(context.Context) error {
	c.cleared++
	if c.clearErr != nil {
		return c.clearErr
	}
	c.state = cart.Reduce(c.state, cart.Reset{})
	return nil
}

func mouseCart() *fakeCart {
	return &fakeCart{state: cart.Reduce(cart.State{}, cart.Loaded{Items: []models.CartItem{
		{ID: 1, ProductID: 10, ProductName: "Wireless Mouse", Quantity: 2, Price: decimal.RequireFromString("150.00")},
	}})}
}

var (
	home   = models.Address{ID: 4, StreetAddress: "Hall 3, Room 12", City: "Kumasi", State: "Ashanti", PostalCode: "00233", IsDefault: true}
	office = models.Address{ID: 5, StreetAddress: "Library Annex", City: "Kumasi", State: "Ashanti", PostalCode: "00233"}
)

func newFlow(a *fakeAPI, c *fakeCart) *Flow {
	return NewFlow(a, c, logging.Nop(), 5*time.Millisecond)
}

/*************
 * Begin
 *************/

func TestBegin_EmptyCartIsRefused(t *testing.T) {
	a := &fakeAPI{}
	f := newFlow(a, &fakeCart{})

	st, err := f.Begin(context.Background())
	assert.ErrorIs(t, err, common.ErrEmptyCart)
	assert.Equal(t, Products, st.Navigation.To)

	_, err = f.Submit(context.Background())
	require.Error(t, err)
	assert.Zero(t, a.requests(), "no checkout request for an empty cart")
}

func TestBegin_PreselectsDefaultAndComputesTotals(t *testing.T) {
	a := &fakeAPI{addresses: []models.Address{office, home}, config: &models.PaymentConfig{PublicKey: "pk_test", Currency: "GHS"}}
	f := newFlow(a, mouseCart())

	st, err := f.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepCollecting, st.Step)
	require.NotNil(t, st.AddressID)
	assert.Equal(t, home.ID, *st.AddressID)
	assert.Equal(t, models.PaymentGatewayCard, st.PaymentMethod)
	assert.Equal(t, "GHS", st.Gateway.Currency)

	assert.Equal(t, "300.00", st.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", st.Totals.PlatformFee.StringFixed(2))
	assert.Equal(t, "300.00", st.Totals.Total.StringFixed(2))
}

func TestBegin_AddressFailureStillCollects(t *testing.T) {
	a := &fakeAPI{addressesErr: &api.ServerError{Status: 500}, configErr: errors.New("down")}
	f := newFlow(a, mouseCart())

	st, err := f.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepCollecting, st.Step)
	assert.Equal(t, "Failed to load addresses", st.Err)
	assert.Nil(t, st.AddressID)
	assert.Nil(t, st.Gateway)

	_, err = f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Please select a shipping address", err.Error())
	assert.Zero(t, a.requests())
}

func TestBegin_CancelStopsFetches(t *testing.T) {
	a := &fakeAPI{addresses: []models.Address{home}, configHangs: true}
	f := newFlow(a, mouseCart())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Begin(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Begin did not return after cancel")
	}
	assert.NotEqual(t, StepCollecting, f.State().Step)
}

func TestSelections(t *testing.T) {
	a := &fakeAPI{addresses: []models.Address{home, office}}
	f := newFlow(a, mouseCart())

	require.Error(t, f.SelectAddress(office.ID), "not started")

	_, err := f.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.SelectAddress(office.ID))
	assert.ErrorIs(t, f.SelectAddress(99), common.ErrNotFound)
	require.NoError(t, f.SelectPaymentMethod(models.PaymentBankTransfer))
	require.Error(t, f.SelectPaymentMethod("crypto"))
	require.NoError(t, f.SetNote("leave at the porter's lodge"))

	st := f.State()
	assert.Equal(t, office.ID, *st.AddressID)
	assert.Equal(t, models.PaymentBankTransfer, st.PaymentMethod)
	assert.Equal(t, "leave at the porter's lodge", st.Note)
}

/*************
 * Submit
 *************/

func TestSubmit_CashOnDeliveryPlacesOrder(t *testing.T) {
	a := &fakeAPI{
		addresses:    []models.Address{home},
		checkoutResp: &models.CheckoutResponse{Order: &models.Order{ID: 31, OrderNumber: "ORD-2024-0031"}},
	}
	c := mouseCart()
	f := newFlow(a, c)

	_, err := f.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.SelectPaymentMethod(models.PaymentCashOnDelivery))
	require.NoError(t, f.SetNote("call on arrival"))

	st, err := f.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StepPlaced, st.Step)
	assert.Equal(t, Navigation{To: OrderDetail, OrderNumber: "ORD-2024-0031", Success: true, Message: "Order placed successfully!"}, st.Navigation)
	assert.Equal(t, 1, c.cleared)
	assert.True(t, c.State().Empty())

	id := home.ID
	want := models.CheckoutRequest{
		ShippingAddressID: &id,
		BillingAddressID:  &id,
		PaymentMethod:     models.PaymentCashOnDelivery,
		CustomerNote:      "call on arrival",
		AgreeToTerms:      true,
	}
	require.Len(t, a.checkoutReqs, 1)
	if diff := cmp.Diff(want, a.checkoutReqs[0]); diff != "" {
		t.Errorf("checkout request mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_GatewayRedirectKeepsCart(t *testing.T) {
	const payURL = "https://checkout.paystack.com/0peioxfhpn"
	a := &fakeAPI{
		addresses:    []models.Address{home},
		checkoutResp: &models.CheckoutResponse{OrderNumber: "ORD-2024-0032", PaymentURL: payURL, Reference: "ref_123"},
	}
	c := mouseCart()
	f := newFlow(a, c)

	_, err := f.Begin(context.Background())
	require.NoError(t, err)

	st, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepRedirecting, st.Step)
	assert.Equal(t, External, st.Navigation.To)
	assert.Equal(t, payURL, st.Navigation.URL)
	assert.Zero(t, c.cleared)
	assert.False(t, c.State().Empty())
}

func TestSubmit_ClearFailureFallsBackToReload(t *testing.T) {
	a := &fakeAPI{
		addresses:    []models.Address{home},
		checkoutResp: &models.CheckoutResponse{OrderNumber: "ORD-1"},
	}
	c := mouseCart()
	c.clearErr = errors.New("offline")
	f := newFlow(a, c)

	_, err := f.Begin(context.Background())
	require.NoError(t, err)
	st, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepPlaced, st.Step)
	assert.Equal(t, 1, c.loaded)
}

func TestSubmit_FailureReturnsToCollecting(t *testing.T) {
	a := &fakeAPI{
		addresses:   []models.Address{home},
		checkoutErr: &api.ValidationError{Status: 400, Problem: api.ErrorMessage("Insufficient stock for Wireless Mouse")},
	}
	c := mouseCart()
	f := newFlow(a, c)

	_, err := f.Begin(context.Background())
	require.NoError(t, err)

	st, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock for Wireless Mouse", err.Error())
	assert.Equal(t, StepCollecting, st.Step)
	assert.Equal(t, err.Error(), st.Err)
	assert.Zero(t, c.cleared)

	a.checkoutErr = &api.ServerError{Status: 500}
	_, err = f.Submit(context.Background())
	assert.Equal(t, "Checkout failed. Please try again.", err.Error())
}

func TestSubmit_DuplicateWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	a := &fakeAPI{
		addresses:    []models.Address{home},
		checkoutResp: &models.CheckoutResponse{OrderNumber: "ORD-1"},
		checkoutGate: gate,
	}
	f := newFlow(a, mouseCart())
	_, err := f.Begin(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.State().Step == StepSubmitting }, time.Second, time.Millisecond)

	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, common.ErrInFlight)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, a.requests())
}

/*************
 * Payment callback
 *************/

func TestReferenceFrom(t *testing.T) {
	assert.Equal(t, "a", ReferenceFrom(url.Values{"reference": {"a"}, "trxref": {"b"}}))
	assert.Equal(t, "b", ReferenceFrom(url.Values{"trxref": {"b"}}))
	assert.Empty(t, ReferenceFrom(url.Values{}))
}

func TestVerifyPayment_NoReferenceNoRequest(t *testing.T) {
	a := &fakeAPI{}
	f := newFlow(a, mouseCart())

	v := f.VerifyPayment(context.Background(), url.Values{})
	assert.Equal(t, StepFailed, v.Step)
	assert.Equal(t, "No payment reference found", v.Message)
	assert.Empty(t, a.verifyRefs)
}

func TestVerifyPayment_Success(t *testing.T) {
	a := &fakeAPI{verify: &models.PaymentVerification{Success: true, Order: &models.Order{OrderNumber: "ORD-9", IsPaid: true}}}
	c := mouseCart()
	f := newFlow(a, c)

	v := f.VerifyPayment(context.Background(), url.Values{"trxref": {"T1"}})
	require.Equal(t, StepSucceeded, v.Step)
	assert.Equal(t, []string{"T1"}, a.verifyRefs)
	assert.Equal(t, "ORD-9", v.Order.OrderNumber)
	assert.Equal(t, 1, c.loaded)

	nav, ok := v.AwaitRedirect(context.Background())
	require.True(t, ok)
	assert.Equal(t, Navigation{To: OrderDetail, OrderNumber: "ORD-9", Success: true}, nav)
}

func TestVerifyPayment_FailureKeepsReferenceAndCart(t *testing.T) {
	a := &fakeAPI{verifyErr: &api.ValidationError{Status: 400, Problem: api.ErrorMessage("Transaction was not successful")}}
	c := mouseCart()
	before := c.State()
	f := newFlow(a, c)

	v := f.VerifyPayment(context.Background(), url.Values{"reference": {"ref_fail"}})
	assert.Equal(t, StepFailed, v.Step)
	assert.Equal(t, "ref_fail", v.Reference)
	assert.Equal(t, "Transaction was not successful", v.Message)
	assert.Equal(t, FailureGuidance, v.Guidance)
	assert.Len(t, v.Guidance, 3)

	assert.Equal(t, before, c.State())
	assert.Zero(t, c.cleared)
	assert.Zero(t, c.loaded)

	_, ok := v.AwaitRedirect(context.Background())
	assert.False(t, ok)
}

func TestVerifyPayment_NetworkAndUnsuccessful(t *testing.T) {
	a := &fakeAPI{verifyErr: &api.NetworkError{Err: errors.New("reset")}}
	f := newFlow(a, mouseCart())

	v := f.VerifyPayment(context.Background(), url.Values{"reference": {"r"}})
	assert.Equal(t, "Network error occurred while verifying payment", v.Message)

	a.verifyErr = nil
	a.verify = &models.PaymentVerification{Success: false}
	v = f.VerifyPayment(context.Background(), url.Values{"reference": {"r"}})
	assert.Equal(t, StepFailed, v.Step)
	assert.Equal(t, "Payment verification failed", v.Message)

	// An order in an unsuccessful reply does not make it a success.
	c := mouseCart()
	before := c.State()
	f = newFlow(a, c)
	a.verify = &models.PaymentVerification{Success: false, Message: "Payment not completed", Order: &models.Order{OrderNumber: "ORD-1"}}
	v = f.VerifyPayment(context.Background(), url.Values{"reference": {"r"}})
	assert.Equal(t, StepFailed, v.Step)
	assert.Equal(t, "Payment not completed", v.Message)
	assert.Equal(t, Navigation{}, v.Next)
	assert.Zero(t, c.loaded)
	assert.Equal(t, before, c.State())
	_, ok := v.AwaitRedirect(context.Background())
	assert.False(t, ok)
}

func TestVerifyPayment_Cancelled(t *testing.T) {
	a := &fakeAPI{verifyErr: context.Canceled}
	f := newFlow(a, mouseCart())

	v := f.VerifyPayment(context.Background(), url.Values{"reference": {"r"}})
	assert.Equal(t, StepCancelled, v.Step)
	assert.Equal(t, "r", v.Reference)
}

func TestAwaitRedirect_ContextEnds(t *testing.T) {
	v := Verification{Step: StepSucceeded, RedirectAfter: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := v.AwaitRedirect(ctx)
	assert.False(t, ok)
}

func TestComputeTotals(t *testing.T) {
	tt := ComputeTotals(decimal.RequireFromString("1234.57"))
	assert.Equal(t, "61.73", tt.PlatformFee.StringFixed(2))
	assert.Equal(t, "1234.57", tt.Total.StringFixed(2))
	assert.True(t, tt.Tax.IsZero())
	assert.True(t, tt.Shipping.IsZero())
}
