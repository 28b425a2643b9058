//go:build !integration

package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func signManifest(t *testing.T, secret, dataID, requestID, ts string) string {
	t.Helper()
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignatureVerifier_Verify(t *testing.T) {
	logger := zerolog.New(io.Discard)
	const secret = "test-webhook-secret"
	v := NewSignatureVerifier(secret, &logger)

	t.Run("accepts a correctly signed notification", func(t *testing.T) {
		v1 := signManifest(t, secret, "12345", "req-abc", "1700000000")
		header := fmt.Sprintf("ts=1700000000,v1=%s", v1)
		if !v.Verify(header, "req-abc", "12345") {
			t.Fatal("expected a valid signature to verify")
		}
	})

	t.Run("folds the resource id to lowercase before verifying", func(t *testing.T) {
		// MP signs alphanumeric ids lowercased even when the notification
		// carries them uppercased.
		v1 := signManifest(t, secret, "ABC123DEF", "req-abc", "1700000000")
		header := fmt.Sprintf("ts=1700000000,v1=%s", v1)
		if !v.Verify(header, "req-abc", "ABC123DEF") {
			t.Fatal("expected the uppercased id to verify against the lowercased manifest")
		}
	})

	t.Run("tolerates spaces around the header parts", func(t *testing.T) {
		v1 := signManifest(t, secret, "12345", "req-abc", "1700000000")
		header := fmt.Sprintf("ts = 1700000000 , v1 = %s", v1)
		if !v.Verify(header, "req-abc", "12345") {
			t.Fatal("expected a padded header to verify")
		}
	})

	t.Run("rejects a tampered timestamp", func(t *testing.T) {
		v1 := signManifest(t, secret, "12345", "req-abc", "1700000000")
		header := fmt.Sprintf("ts=1700009999,v1=%s", v1)
		if v.Verify(header, "req-abc", "12345") {
			t.Fatal("expected a mutated ts to fail")
		}
	})

	t.Run("rejects the wrong secret", func(t *testing.T) {
		v1 := signManifest(t, "other-secret", "12345", "req-abc", "1700000000")
		header := fmt.Sprintf("ts=1700000000,v1=%s", v1)
		if v.Verify(header, "req-abc", "12345") {
			t.Fatal("expected a foreign signature to fail")
		}
	})

	t.Run("fails closed on a missing ts or v1", func(t *testing.T) {
		if v.Verify("v1=deadbeef", "req-abc", "12345") {
			t.Error("expected missing ts to fail")
		}
		if v.Verify("ts=1700000000", "req-abc", "12345") {
			t.Error("expected missing v1 to fail")
		}
		if v.Verify("", "req-abc", "12345") {
			t.Error("expected an empty header to fail")
		}
	})

	t.Run("empty secret disables verification", func(t *testing.T) {
		open := NewSignatureVerifier("", &logger)
		if !open.Verify("", "", "12345") {
			t.Fatal("expected the unconfigured verifier to accept everything")
		}
	})
}
