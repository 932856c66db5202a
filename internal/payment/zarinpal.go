package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Gateway creates payment sessions and verifies completed ones. The bot only
// needs these two calls; everything else stays behind the implementation.
type Gateway interface {
	CreatePayment(amount int, description string, userID int64) (*PaymentRequest, error)
	VerifyPayment(authority string, amount int) (bool, error)
}

// PaymentRequest is a created payment session: the URL the user must open and
// the authority token the gateway will echo back on the callback.
type PaymentRequest struct {
	PaymentURL string
	Authority  string
}

const (
	zarinpalRequestURL = "https://api.zarinpal.com/pg/v4/payment/request.json"
	zarinpalVerifyURL  = "https://api.zarinpal.com/pg/v4/payment/verify.json"
	zarinpalGateURL    = "https://www.zarinpal.com/pg/StartPay/"

	sandboxRequestURL = "https://sandbox.zarinpal.com/pg/v4/payment/request.json"
	sandboxVerifyURL  = "https://sandbox.zarinpal.com/pg/v4/payment/verify.json"
	sandboxGateURL    = "https://sandbox.zarinpal.com/pg/StartPay/"
)

// ZarinPal talks to the ZarinPal REST gateway.
type ZarinPal struct {
	merchantID  string
	callbackURL string
	client      *http.Client

	requestURL string
	verifyURL  string
	gateURL    string
}

// NewZarinPal returns a gateway client. The callback URL receives the
// Authority and Status query parameters after the user pays.
func NewZarinPal(merchantID, callbackURL string, sandbox bool) *ZarinPal {
	z := &ZarinPal{
		merchantID:  merchantID,
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		requestURL:  zarinpalRequestURL,
		verifyURL:   zarinpalVerifyURL,
		gateURL:     zarinpalGateURL,
	}
	if sandbox {
		z.requestURL = sandboxRequestURL
		z.verifyURL = sandboxVerifyURL
		z.gateURL = sandboxGateURL
	}
	return z
}

type requestPayload struct {
	MerchantID  string            `json:"merchant_id"`
	Amount      int               `json:"amount"`
	CallbackURL string            `json:"callback_url"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type requestResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Authority string `json:"authority"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// CreatePayment opens a payment session for the given amount (in rials).
func (z *ZarinPal) CreatePayment(amount int, description string, userID int64) (*PaymentRequest, error) {
	payload := requestPayload{
		MerchantID:  z.merchantID,
		Amount:      amount,
		CallbackURL: fmt.Sprintf("%s?user_id=%d", z.callbackURL, userID),
		Description: description,
	}

	var resp requestResponse
	if err := z.post(z.requestURL, payload, &resp); err != nil {
		return nil, fmt.Errorf("payment request: %w", err)
	}
	if resp.Data.Code != 100 || resp.Data.Authority == "" {
		return nil, fmt.Errorf("payment request rejected: code %d", resp.Data.Code)
	}

	return &PaymentRequest{
		PaymentURL: z.gateURL + resp.Data.Authority,
		Authority:  resp.Data.Authority,
	}, nil
}

type verifyPayload struct {
	MerchantID string `json:"merchant_id"`
	Amount     int    `json:"amount"`
	Authority  string `json:"authority"`
}

type verifyResponse struct {
	Data struct {
		Code  int    `json:"code"`
		RefID int64  `json:"ref_id"`
		Card  string `json:"card_pan"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// VerifyPayment confirms a completed payment. Code 100 is a fresh success,
// 101 means the payment was already verified before; both count as paid.
func (z *ZarinPal) VerifyPayment(authority string, amount int) (bool, error) {
	payload := verifyPayload{
		MerchantID: z.merchantID,
		Amount:     amount,
		Authority:  authority,
	}

	var resp verifyResponse
	if err := z.post(z.verifyURL, payload, &resp); err != nil {
		return false, fmt.Errorf("payment verify: %w", err)
	}
	return resp.Data.Code == 100 || resp.Data.Code == 101, nil
}

func (z *ZarinPal) post(url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := z.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
