package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const webhookTimestampTolerance = 5 * time.Minute

// VerifyCommerceSignature verifies the commerce platform's webhook headers
// (svix scheme: shared secret, HMAC-SHA256 over "id.timestamp.body",
// signatures sent as a space-separated list of "v1,<base64>"). Verification
// runs before any payload parsing; a failure means the request is dropped.
func VerifyCommerceSignature(secret, msgID, msgTimestamp, sigHeader string, body []byte) error {
	if secret == "" {
		return fmt.Errorf("%w: secret not configured", ErrWebhookSignature)
	}
	if msgID == "" || msgTimestamp == "" || sigHeader == "" {
		return fmt.Errorf("%w: missing headers", ErrWebhookSignature)
	}

	ts, err := strconv.ParseInt(msgTimestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrWebhookSignature)
	}
	age := time.Since(time.Unix(ts, 0))
	if age > webhookTimestampTolerance || age < -webhookTimestampTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrWebhookSignature)
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return fmt.Errorf("%w: bad secret encoding", ErrWebhookSignature)
	}

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", msgID, msgTimestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(sigHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return fmt.Errorf("%w: no matching signature", ErrWebhookSignature)
}
