package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signCommerce(t *testing.T, secret, msgID, timestamp string, body []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret)
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyCommerceSignature(t *testing.T) {
	rawSecret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	secret := "whsec_" + rawSecret
	body := []byte(`{"type":"subscription.created","data":{}}`)
	msgID := "msg_2xYz"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	t.Run("valid signature passes", func(t *testing.T) {
		sig := signCommerce(t, rawSecret, msgID, timestamp, body)
		assert.NoError(t, VerifyCommerceSignature(secret, msgID, timestamp, sig, body))
	})

	t.Run("secret without whsec prefix also works", func(t *testing.T) {
		sig := signCommerce(t, rawSecret, msgID, timestamp, body)
		assert.NoError(t, VerifyCommerceSignature(rawSecret, msgID, timestamp, sig, body))
	})

	t.Run("multiple candidates, one valid", func(t *testing.T) {
		sig := "v1,Zm9yZ2VkZm9yZ2VkZm9yZ2Vk " + signCommerce(t, rawSecret, msgID, timestamp, body)
		assert.NoError(t, VerifyCommerceSignature(secret, msgID, timestamp, sig, body))
	})

	t.Run("tampered body fails", func(t *testing.T) {
		sig := signCommerce(t, rawSecret, msgID, timestamp, body)
		tampered := []byte(`{"type":"subscription.created","data":{"plan":"pro"}}`)
		err := VerifyCommerceSignature(secret, msgID, timestamp, sig, tampered)
		assert.ErrorIs(t, err, ErrWebhookSignature)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		otherSecret := base64.StdEncoding.EncodeToString([]byte("another-secret-another-secret!!!"))
		sig := signCommerce(t, otherSecret, msgID, timestamp, body)
		err := VerifyCommerceSignature(secret, msgID, timestamp, sig, body)
		assert.ErrorIs(t, err, ErrWebhookSignature)
	})

	t.Run("stale timestamp fails", func(t *testing.T) {
		old := fmt.Sprintf("%d", time.Now().Add(-10*time.Minute).Unix())
		sig := signCommerce(t, rawSecret, msgID, old, body)
		err := VerifyCommerceSignature(secret, msgID, old, sig, body)
		assert.ErrorIs(t, err, ErrWebhookSignature)
	})

	t.Run("missing headers fail", func(t *testing.T) {
		sig := signCommerce(t, rawSecret, msgID, timestamp, body)
		assert.ErrorIs(t, VerifyCommerceSignature(secret, "", timestamp, sig, body), ErrWebhookSignature)
		assert.ErrorIs(t, VerifyCommerceSignature(secret, msgID, "", sig, body), ErrWebhookSignature)
		assert.ErrorIs(t, VerifyCommerceSignature(secret, msgID, timestamp, "", body), ErrWebhookSignature)
	})

	t.Run("unconfigured secret fails", func(t *testing.T) {
		sig := signCommerce(t, rawSecret, msgID, timestamp, body)
		assert.ErrorIs(t, VerifyCommerceSignature("", msgID, timestamp, sig, body), ErrWebhookSignature)
	})

	t.Run("unknown version candidates are skipped", func(t *testing.T) {
		sig := "v2," + base64.StdEncoding.EncodeToString([]byte("whatever"))
		err := VerifyCommerceSignature(secret, msgID, timestamp, sig, body)
		assert.ErrorIs(t, err, ErrWebhookSignature)
	})
}
