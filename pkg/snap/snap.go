// Package snap wraps a Midtrans-Snap-style hosted checkout API. The gateway
// is a black box: the platform creates a transaction to obtain a hosted
// payment page token and later receives webhook notifications, authenticated
// only by the SHA-512 signature over order id, status code, gross amount and
// the merchant server key.
package snap

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Order describes the transaction to open a hosted payment page for.
type Order struct {
	OrderID     string
	GrossAmount float64
	ItemName    string
	// Customer details shown on the payment page.
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ExpiryMinutes int
}

// Transaction is the gateway's answer: a token for the embedded widget and a
// redirect URL for the hosted page.
type Transaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway is the surface services depend on; the HTTP client below is the
// production implementation.
type Gateway interface {
	CreateTransaction(ctx context.Context, order Order) (*Transaction, error)
}

// Client calls the Snap transactions endpoint with server-key basic auth.
type Client struct {
	BaseURL   string
	ServerKey string
	client    *http.Client
}

func NewClient(baseURL, serverKey string) *Client {
	if baseURL == "" {
		baseURL = "https://app.sandbox.midtrans.com"
	}
	return &Client{
		BaseURL:   baseURL,
		ServerKey: serverKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string  `json:"order_id"`
		GrossAmount float64 `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails []struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"item_details"`
	CustomerDetails struct {
		FirstName string `json:"first_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	} `json:"customer_details"`
	Expiry struct {
		Unit     string `json:"unit"`
		Duration int    `json:"duration"`
	} `json:"expiry"`
}

// CreateTransaction opens a hosted payment page for the order and returns its
// token and redirect URL.
func (c *Client) CreateTransaction(ctx context.Context, order Order) (*Transaction, error) {
	var payload snapRequest
	payload.TransactionDetails.OrderID = order.OrderID
	payload.TransactionDetails.GrossAmount = order.GrossAmount
	payload.ItemDetails = append(payload.ItemDetails, struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}{Name: order.ItemName, Price: order.GrossAmount, Quantity: 1})
	payload.CustomerDetails.FirstName = order.CustomerName
	payload.CustomerDetails.Email = order.CustomerEmail
	payload.CustomerDetails.Phone = order.CustomerPhone
	payload.Expiry.Unit = "minute"
	payload.Expiry.Duration = order.ExpiryMinutes
	if payload.Expiry.Duration <= 0 {
		payload.Expiry.Duration = 60
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/snap/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.ServerKey+":")))
	log.Printf("[snap] POST /snap/v1/transactions order_id=%s amount=%.2f", order.OrderID, order.GrossAmount)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[snap] error status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("snap: create transaction: %d", resp.StatusCode)
	}
	var out Transaction
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("snap: empty token for order %s", order.OrderID)
	}
	return &out, nil
}

// Signature computes the webhook signature:
// hex(SHA-512(order_id + status_code + gross_amount + server_key)).
// gross_amount is the raw string from the notification payload; re-formatting
// it would break verification.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return fmt.Sprintf("%x", sum)
}

// VerifySignature checks a notification's signature_key in constant time.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	expected := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
