package middleware_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lumo/internal/middleware"
)

const webhookSecret = "whsec_test"

func webhookApp() *fiber.App {
	app := fiber.New()
	app.Post("/webhook", middleware.StripeWebhookAuth(webhookSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func signedHeader(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, header string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestStripeWebhookAuth(t *testing.T) {
	app := webhookApp()
	payload := []byte(`{"type":"payment_intent.succeeded"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		header := signedHeader(webhookSecret, time.Now().Unix(), payload)
		resp := postWebhook(t, app, payload, header)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		resp := postWebhook(t, app, payload, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		header := signedHeader("whsec_other", time.Now().Unix(), payload)
		resp := postWebhook(t, app, payload, header)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("tampered payload rejected", func(t *testing.T) {
		header := signedHeader(webhookSecret, time.Now().Unix(), payload)
		resp := postWebhook(t, app, []byte(`{"type":"something_else"}`), header)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("stale timestamp rejected", func(t *testing.T) {
		stale := time.Now().Add(-10 * time.Minute).Unix()
		header := signedHeader(webhookSecret, stale, payload)
		resp := postWebhook(t, app, payload, header)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
