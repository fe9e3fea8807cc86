// services/payment_service.go
package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"resort-backend/models"
	"resort-backend/utils"
)

var (
	ErrPaymentState     = errors.New("invoice is not awaiting online payment")
	ErrInvalidSignature = errors.New("invalid signature")
)

const (
	gatewayVersion     = "2.1.0"
	gatewayCommand     = "pay"
	gatewayCurrency    = "VND"
	secureHashParam    = "vnp_SecureHash"
	secureHashTypParam = "vnp_SecureHashType"
	responseCodeOK     = "00"
)

// paymentLedger is the slice of the booking ledger the adapter needs.
type paymentLedger interface {
	GetByCode(code string) (*models.Invoice, error)
	MarkPaid(code, transactionRef string) (*models.Invoice, bool, error)
}

// PaymentService builds signed redirect URLs for the online gateway and
// verifies/applies its asynchronous callbacks.
type PaymentService struct {
	ledger paymentLedger
	notify Dispatcher

	tmnCode     string
	hashSecret  string
	payURL      string
	returnURL   string
	frontendURL string
	locale      string
}

func NewPaymentService(ledger paymentLedger, notify Dispatcher) *PaymentService {
	return &PaymentService{
		ledger:      ledger,
		notify:      notify,
		tmnCode:     utils.EnvOrDefault("VNP_TMN_CODE", "DEMOTMN1"),
		hashSecret:  utils.EnvOrDefault("VNP_HASH_SECRET", "demosecret"),
		payURL:      utils.EnvOrDefault("VNP_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		returnURL:   utils.EnvOrDefault("VNP_RETURN_URL", "http://localhost:8080/api/payment/callback"),
		frontendURL: strings.TrimRight(utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		locale:      utils.EnvOrDefault("VNP_LOCALE", "vn"),
	}
}

// canonicalQuery sorts keys lexicographically and percent-encodes values
// with url.QueryEscape, which renders spaces as "+" per the gateway's
// convention. The signature is computed over exactly this string and the
// same string is sent as the query, so parameters are never encoded twice.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}
	return sb.String()
}

func hmacSHA512Hex(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// buildSignedURL assembles the final redirect URL: the canonical query plus
// the signature over that exact query.
func buildSignedURL(baseURL, secret string, params map[string]string) string {
	query := canonicalQuery(params)
	hash := hmacSHA512Hex(secret, query)
	return baseURL + "?" + query + "&" + secureHashParam + "=" + hash
}

// BuildPaymentURL produces the signed gateway redirect for a pending
// invoice. Amounts go out in minor units (x100).
func (s *PaymentService) BuildPaymentURL(inv *models.Invoice, clientIP string) (string, error) {
	if inv.Status != models.StatusAwaitingOnlinePayment {
		return "", fmt.Errorf("%w: %s is %s", ErrPaymentState, inv.BookingCode, inv.Status)
	}

	params := map[string]string{
		"vnp_Version":    gatewayVersion,
		"vnp_Command":    gatewayCommand,
		"vnp_TmnCode":    s.tmnCode,
		"vnp_Locale":     s.locale,
		"vnp_CurrCode":   gatewayCurrency,
		"vnp_TxnRef":     inv.BookingCode,
		"vnp_OrderInfo":  fmt.Sprintf("Payment for booking %s", inv.BookingCode),
		"vnp_OrderType":  "other",
		"vnp_Amount":     strconv.FormatInt(int64(math.Round(inv.TotalAmount*100)), 10),
		"vnp_ReturnUrl":  s.returnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": time.Now().Format("20060102150405"),
	}
	return buildSignedURL(s.payURL, s.hashSecret, params), nil
}

// RegeneratePaymentURL rebuilds the redirect for an invoice that is still
// exactly in AWAITING_ONLINE_PAYMENT; any other state is refused.
func (s *PaymentService) RegeneratePaymentURL(code, clientIP string) (string, error) {
	inv, err := s.ledger.GetByCode(code)
	if err != nil {
		return "", err
	}
	return s.BuildPaymentURL(inv, clientIP)
}

// VerifyCallback recomputes the signature over every callback parameter
// except the signature fields themselves and compares in constant time.
func (s *PaymentService) VerifyCallback(values url.Values) (map[string]string, error) {
	received := values.Get(secureHashParam)
	if received == "" {
		return nil, ErrInvalidSignature
	}

	params := make(map[string]string, len(values))
	for k := range values {
		if k == secureHashParam || k == secureHashTypParam {
			continue
		}
		params[k] = values.Get(k)
	}

	expected := hmacSHA512Hex(s.hashSecret, canonicalQuery(params))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return nil, ErrInvalidSignature
	}
	return params, nil
}

// FailureRedirect is the generic failure page used when nothing else is
// known about the callback.
func (s *PaymentService) FailureRedirect() string {
	return s.frontendURL + "/payment/result?status=failed"
}

// HandleCallback verifies an inbound gateway return and applies it to the
// ledger. It always yields a browser redirect target: signature failures
// and internal errors degrade to the generic failure page, never an error
// body, because the caller is the customer's browser mid-flow.
func (s *PaymentService) HandleCallback(values url.Values) string {
	params, err := s.VerifyCallback(values)
	if err != nil {
		log.Printf("payment callback rejected: %v", err)
		return s.frontendURL + "/payment/result?status=failed"
	}

	code := params["vnp_TxnRef"]
	respCode := params["vnp_ResponseCode"]
	transNo := params["vnp_TransactionNo"]

	if respCode != responseCodeOK {
		log.Printf("payment declined for %s (response code %s)", code, respCode)
		return fmt.Sprintf("%s/payment/result?status=failed&code=%s", s.frontendURL, url.QueryEscape(code))
	}

	inv, changed, err := s.ledger.MarkPaid(code, transNo)
	if err != nil {
		log.Printf("failed to apply payment for %s: %v", code, err)
		return fmt.Sprintf("%s/payment/result?status=failed&code=%s", s.frontendURL, url.QueryEscape(code))
	}
	if changed {
		s.notify.Enqueue(*inv, NotifyConfirmation)
	} else {
		log.Printf("payment callback for %s was already applied, ignoring redelivery", code)
	}
	return fmt.Sprintf("%s/payment/result?status=success&code=%s", s.frontendURL, url.QueryEscape(code))
}
