package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort-backend/models"
)

// mockPaymentLedger emulates the idempotent MarkPaid: the first call flips
// the invoice to paid, redeliveries report no change.
type mockPaymentLedger struct {
	inv       *models.Invoice
	markCalls int
	markErr   error
}

func (m *mockPaymentLedger) GetByCode(code string) (*models.Invoice, error) {
	if m.inv == nil || m.inv.BookingCode != code {
		return nil, ErrInvoiceNotFound
	}
	return m.inv, nil
}

func (m *mockPaymentLedger) MarkPaid(code, transactionRef string) (*models.Invoice, bool, error) {
	m.markCalls++
	if m.markErr != nil {
		return nil, false, m.markErr
	}
	if m.inv == nil || m.inv.BookingCode != code {
		return nil, false, ErrInvoiceNotFound
	}
	if m.inv.Paid {
		return m.inv, false, nil
	}
	m.inv.Paid = true
	m.inv.TransactionRef = transactionRef
	m.inv.Status = models.StatusPaidAwaiting
	return m.inv, true, nil
}

type mockDispatcher struct {
	events []string
}

func (m *mockDispatcher) Enqueue(inv models.Invoice, kind string) {
	m.events = append(m.events, kind+":"+inv.BookingCode)
}

func newTestPaymentService(ledger paymentLedger, notify Dispatcher) *PaymentService {
	return &PaymentService{
		ledger:      ledger,
		notify:      notify,
		tmnCode:     "TESTTMN1",
		hashSecret:  "test-secret",
		payURL:      "https://gateway.example/pay",
		returnURL:   "https://api.example/api/payment/callback",
		frontendURL: "https://shop.example",
		locale:      "vn",
	}
}

func TestCanonicalQuery(t *testing.T) {
	q := canonicalQuery(map[string]string{
		"b_key": "two words",
		"a_key": "1",
		"empty": "",
		"z_key": "x&y=1",
	})

	// Keys sorted, empties dropped, space as "+", reserved chars escaped.
	assert.Equal(t, "a_key=1&b_key=two+words&z_key=x%26y%3D1", q)
}

func TestBuildSignedURLRoundTrip(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":    "FS-12345678",
		"vnp_Amount":    "220000000",
		"vnp_OrderInfo": "Payment for booking FS-12345678",
	}
	signed := buildSignedURL("https://gateway.example/pay", "test-secret", params)

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	values, err := url.ParseQuery(parsed.RawQuery)
	require.NoError(t, err)

	// The URL carries the signature plus every non-empty param, decodable
	// back to the originals.
	assert.Equal(t, "Payment for booking FS-12345678", values.Get("vnp_OrderInfo"))
	require.NotEmpty(t, values.Get(secureHashParam))

	svc := newTestPaymentService(&mockPaymentLedger{}, &mockDispatcher{})
	verified, err := svc.VerifyCallback(values)
	require.NoError(t, err)
	assert.Equal(t, "FS-12345678", verified["vnp_TxnRef"])
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	svc := newTestPaymentService(&mockPaymentLedger{}, &mockDispatcher{})

	params := map[string]string{"vnp_TxnRef": "FS-12345678", "vnp_Amount": "100"}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set(secureHashParam, hmacSHA512Hex("test-secret", canonicalQuery(params)))

	_, err := svc.VerifyCallback(values)
	require.NoError(t, err)

	// Changing any single parameter invalidates the signature.
	values.Set("vnp_Amount", "101")
	_, err = svc.VerifyCallback(values)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// Missing signature is rejected outright.
	values.Del(secureHashParam)
	_, err = svc.VerifyCallback(values)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestBuildPaymentURLStateGuard(t *testing.T) {
	svc := newTestPaymentService(&mockPaymentLedger{}, &mockDispatcher{})

	inv := &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
		TotalAmount: 2200000,
	}
	signed, err := svc.BuildPaymentURL(inv, "203.0.113.9")
	require.NoError(t, err)

	values, err := url.ParseQuery(strings.SplitN(signed, "?", 2)[1])
	require.NoError(t, err)
	// Amounts go out in minor units.
	assert.Equal(t, "220000000", values.Get("vnp_Amount"))
	assert.Equal(t, "FS-12345678", values.Get("vnp_TxnRef"))

	inv.Status = models.StatusPaidAwaiting
	_, err = svc.BuildPaymentURL(inv, "203.0.113.9")
	assert.ErrorIs(t, err, ErrPaymentState)
}

func TestBuildPaymentURLRoundsMinorUnits(t *testing.T) {
	svc := newTestPaymentService(&mockPaymentLedger{}, &mockDispatcher{})

	// 100000.1 * 100 is 10000009.999... in floats; the amount must round,
	// not truncate.
	inv := &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
		TotalAmount: 100000.1,
	}
	signed, err := svc.BuildPaymentURL(inv, "203.0.113.9")
	require.NoError(t, err)

	values, err := url.ParseQuery(strings.SplitN(signed, "?", 2)[1])
	require.NoError(t, err)
	assert.Equal(t, "10000010", values.Get("vnp_Amount"))
}

func TestRegeneratePaymentURL(t *testing.T) {
	ledger := &mockPaymentLedger{inv: &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
		TotalAmount: 500000,
	}}
	svc := newTestPaymentService(ledger, &mockDispatcher{})

	signed, err := svc.RegeneratePaymentURL("FS-12345678", "203.0.113.9")
	require.NoError(t, err)
	assert.Contains(t, signed, secureHashParam+"=")

	_, err = svc.RegeneratePaymentURL("FS-00000000", "203.0.113.9")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func signedCallback(secret string, params map[string]string) url.Values {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set(secureHashParam, hmacSHA512Hex(secret, canonicalQuery(params)))
	return values
}

func TestHandleCallbackSuccess(t *testing.T) {
	ledger := &mockPaymentLedger{inv: &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
	}}
	notify := &mockDispatcher{}
	svc := newTestPaymentService(ledger, notify)

	values := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":        "FS-12345678",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "GW-777",
	})

	target := svc.HandleCallback(values)
	assert.Contains(t, target, "status=success")
	assert.Contains(t, target, "FS-12345678")
	assert.True(t, ledger.inv.Paid)
	assert.Equal(t, "GW-777", ledger.inv.TransactionRef)
	assert.Equal(t, []string{NotifyConfirmation + ":FS-12345678"}, notify.events)
}

func TestHandleCallbackRedeliveryIsIdempotent(t *testing.T) {
	ledger := &mockPaymentLedger{inv: &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
	}}
	notify := &mockDispatcher{}
	svc := newTestPaymentService(ledger, notify)

	values := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":        "FS-12345678",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "GW-777",
	})

	first := svc.HandleCallback(values)
	second := svc.HandleCallback(values)

	// The browser still lands on the success page both times, but only the
	// first delivery sends a confirmation.
	assert.Contains(t, first, "status=success")
	assert.Contains(t, second, "status=success")
	assert.Equal(t, 2, ledger.markCalls)
	assert.Len(t, notify.events, 1)
}

func TestHandleCallbackDeclined(t *testing.T) {
	ledger := &mockPaymentLedger{inv: &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
	}}
	notify := &mockDispatcher{}
	svc := newTestPaymentService(ledger, notify)

	values := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":       "FS-12345678",
		"vnp_ResponseCode": "24", // customer cancelled at the gateway
	})

	target := svc.HandleCallback(values)
	assert.Contains(t, target, "status=failed")
	assert.Zero(t, ledger.markCalls)
	assert.False(t, ledger.inv.Paid)
	assert.Empty(t, notify.events)
}

func TestHandleCallbackBadSignature(t *testing.T) {
	ledger := &mockPaymentLedger{inv: &models.Invoice{
		BookingCode: "FS-12345678",
		Status:      models.StatusAwaitingOnlinePayment,
	}}
	notify := &mockDispatcher{}
	svc := newTestPaymentService(ledger, notify)

	values := signedCallback("wrong-secret", map[string]string{
		"vnp_TxnRef":       "FS-12345678",
		"vnp_ResponseCode": "00",
	})

	target := svc.HandleCallback(values)
	assert.Equal(t, svc.FailureRedirect(), target)
	assert.Zero(t, ledger.markCalls)
	assert.Empty(t, notify.events)
}
