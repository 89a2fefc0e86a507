package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const signatureTolerance = 5 * time.Minute

// StripeWebhookAuth verifies the Stripe-Signature header before the webhook
// handler runs. The signed payload is "<timestamp>.<raw body>" and signatures
// are HMAC-SHA256 hex digests keyed with the webhook secret.
func StripeWebhookAuth(webhookSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Stripe-Signature")
		if header == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing signature header")
		}

		timestamp, signatures := parseStripeSignature(header)
		if timestamp == 0 || len(signatures) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid signature header")
		}

		skew := time.Since(time.Unix(timestamp, 0))
		if skew > signatureTolerance || skew < -signatureTolerance {
			return fiber.NewError(fiber.StatusBadRequest, "signature timestamp outside tolerance")
		}

		expected := signPayload(webhookSecret, timestamp, c.Body())
		for _, signature := range signatures {
			if hmac.Equal([]byte(signature), []byte(expected)) {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusBadRequest, "signature verification failed")
	}
}

func parseStripeSignature(header string) (int64, []string) {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp, _ = strconv.ParseInt(kv[1], 10, 64)
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	return timestamp, signatures
}

func signPayload(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
