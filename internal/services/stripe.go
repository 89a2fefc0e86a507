package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PaymentIntent is the gateway-side record created for an order awaiting
// payment confirmation.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentGateway creates payment intents sized in minor currency units.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*PaymentIntent, error)
}

// StripeService talks to the Stripe REST API.
type StripeService struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewStripeService constructs a StripeService with the given secret key.
func NewStripeService(secretKey string) *StripeService {
	return &StripeService{
		secretKey: secretKey,
		baseURL:   "https://api.stripe.com",
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateIntent creates a payment intent and returns its ID and client secret.
func (s *StripeService) CreateIntent(ctx context.Context, amount int64, currency string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Error        *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("stripe: unexpected response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices || parsed.ID == "" {
		message := "create intent failed"
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return nil, fmt.Errorf("stripe: %s", message)
	}

	return &PaymentIntent{ID: parsed.ID, ClientSecret: parsed.ClientSecret}, nil
}
