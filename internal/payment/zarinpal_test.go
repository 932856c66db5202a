package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *ZarinPal {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	z := NewZarinPal("merchant-1", "https://bot.example.com/payment/verify", false)
	z.requestURL = server.URL + "/request"
	z.verifyURL = server.URL + "/verify"
	z.gateURL = server.URL + "/StartPay/"
	z.client = server.Client()
	return z
}

func TestCreatePayment(t *testing.T) {
	var got requestPayload
	z := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/request", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"code": 100, "authority": "A00012345"},
		})
	})

	req, err := z.CreatePayment(200000, "1 Month Premium", 42)
	require.NoError(t, err)
	assert.Equal(t, "A00012345", req.Authority)
	assert.Contains(t, req.PaymentURL, "/StartPay/A00012345")

	assert.Equal(t, "merchant-1", got.MerchantID)
	assert.Equal(t, 200000, got.Amount)
	assert.Equal(t, "https://bot.example.com/payment/verify?user_id=42", got.CallbackURL)
}

func TestCreatePaymentRejected(t *testing.T) {
	z := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"code": -9},
		})
	})

	_, err := z.CreatePayment(200000, "1 Month Premium", 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code -9")
}

func TestVerifyPayment(t *testing.T) {
	codes := map[string]int{"A1": 100, "A2": 101, "A3": -51}
	z := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var payload verifyPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"code": codes[payload.Authority]},
		})
	})

	ok, err := z.VerifyPayment("A1", 200000)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = z.VerifyPayment("A2", 200000)
	require.NoError(t, err)
	assert.True(t, ok, "already-verified counts as paid")

	ok, err = z.VerifyPayment("A3", 200000)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGatewayHTTPError(t *testing.T) {
	z := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := z.CreatePayment(200000, "1 Month Premium", 42)
	require.Error(t, err)

	_, err = z.VerifyPayment("A1", 200000)
	require.Error(t, err)
}
