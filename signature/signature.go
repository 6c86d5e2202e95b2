package signature

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	// AccountIDHeader carries the account's public identifier
	AccountIDHeader = "X-ACCT-ID"

	// SignatureHeader carries the lowercase hex SHA-256 payload signature
	SignatureHeader = "X-PAYLOAD-SIG"

	// SigPayloadParam is the query parameter holding the encoded payload on reads
	SigPayloadParam = "sig_payload"

	// Length is the size of a hex-encoded SHA-256 digest
	Length = sha256.Size * 2

	// MinSecretBytes is the minimum shared secret size (256 bits)
	MinSecretBytes = 32

	// MaxSecretBytes is the maximum shared secret size (512 bits)
	MaxSecretBytes = 64
)

// DefaultPayload is signed whenever the caller has nothing else to sign
var DefaultPayload = map[string]string{"id": "0"}

/* EncodePayload returns the canonical encoding: base64 of the JSON
 * serialization of payload. A nil payload encodes DefaultPayload.
 * Structs keep their field order, json.RawMessage is compacted as-is.
 * HTML characters are not escaped so the output matches the JSON the other
 * SDKs produce for the same object.
 */
func EncodePayload(payload any) (string, error) {
	if payload == nil {
		payload = DefaultPayload
	}

	if raw, ok := payload.(json.RawMessage); ok {
		return EncodeRaw(raw)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}

	// Encoder always terminates with a newline
	data := bytes.TrimRight(buf.Bytes(), "\n")
	return base64.StdEncoding.EncodeToString(data), nil
}

// EncodeRaw canonicalizes an already serialized JSON document without
// reordering its keys
func EncodeRaw(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("compacting payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodePayload reverses the base64 step of the canonical encoding
func DecodePayload(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return data, nil
}

// Sign derives the payload signature: hex(SHA256(sharedSecret + encoded))
func Sign(sharedSecret, encoded string) string {
	sum := sha256.Sum256([]byte(sharedSecret + encoded))
	return hex.EncodeToString(sum[:])
}

/* Verify recomputes the signature and compares it in constant time.
 * Any mismatch, including a length mismatch, yields false.
 */
func Verify(sharedSecret, encoded, candidate string) bool {
	if len(candidate) != Length {
		return false
	}
	expected := Sign(sharedSecret, encoded)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

// GenerateSecret creates a random hex-encoded secret of size bytes
func GenerateSecret(size int) (string, error) {
	if size < MinSecretBytes || size > MaxSecretBytes {
		return "", fmt.Errorf("secret size must be between %d and %d bytes", MinSecretBytes, MaxSecretBytes)
	}

	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}

	return hex.EncodeToString(raw), nil
}

// AuthHeaders builds the headers for a mutating request carrying payload
// as its body. A nil payload signs DefaultPayload.
func AuthHeaders(accountID, sharedSecret string, payload any) (http.Header, error) {
	encoded, err := EncodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	return buildHeaders(accountID, Sign(sharedSecret, encoded)), nil
}

/* GetAuthHeaders builds the headers for a read request and returns the
 * sig_payload query value the server verifies against
 */
func GetAuthHeaders(accountID, sharedSecret string, sigPayload any) (http.Header, string, error) {
	encoded, err := EncodePayload(sigPayload)
	if err != nil {
		return nil, "", fmt.Errorf("encoding payload: %w", err)
	}

	return buildHeaders(accountID, Sign(sharedSecret, encoded)), encoded, nil
}

// WithSigPayload appends the sig_payload query parameter to rawURL
func WithSigPayload(rawURL, encoded string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	q.Set(SigPayloadParam, encoded)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func buildHeaders(accountID, sig string) http.Header {
	h := http.Header{}
	h.Set(AccountIDHeader, accountID)
	h.Set(SignatureHeader, sig)
	h.Set("Content-Type", "application/json")
	return h
}
