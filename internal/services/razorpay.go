package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const razorpayAPIBase = "https://api.razorpay.com/v1"

// RazorpayService talks to the Razorpay orders API and validates payment
// signatures returned by the checkout widget.
type RazorpayService struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewRazorpayService creates a RazorpayService.
func NewRazorpayService(keyID, keySecret string) *RazorpayService {
	return &RazorpayService{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayAPIBase,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (s *RazorpayService) SetBaseURL(url string) {
	s.baseURL = url
}

// KeyID returns the public key id the checkout widget is initialized with.
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// GatewayOrder is the subset of the Razorpay order response we keep.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder mints a gateway order for the given rupee amount. Razorpay
// amounts are integer paise, so the conversion goes through decimal to avoid
// float drift on the boundary.
func (s *RazorpayService) CreateOrder(amount float64, receipt string) (*GatewayOrder, error) {
	if s.keyID == "" || s.keySecret == "" {
		return nil, fmt.Errorf("razorpay credentials not configured")
	}

	paise := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if paise <= 0 {
		return nil, fmt.Errorf("invalid order amount")
	}

	payload := map[string]any{
		"amount":   paise,
		"currency": "INR",
		"receipt":  receipt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[Razorpay] Order creation request failed: %v", err)
		return nil, fmt.Errorf("payment gateway unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr razorpayErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Description != "" {
			log.Printf("[Razorpay] Order creation rejected: %s", apiErr.Error.Description)
			return nil, fmt.Errorf("payment gateway error: %s", apiErr.Error.Description)
		}
		log.Printf("[Razorpay] Unexpected status %d: %s", resp.StatusCode, respBody)
		return nil, fmt.Errorf("payment gateway error")
	}

	var order GatewayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

// VerifySignature checks the signature the checkout widget hands back after
// payment. The expected value is HMAC-SHA256 over "order_id|payment_id"
// keyed with the merchant secret. This is the only trusted proof of payment;
// a forged client request must not be able to pass it.
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
