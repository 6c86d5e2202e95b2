package chi

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/wusul-core/auth"
	"github.com/marcelsud/wusul-core/signature"
)

const maxBodyBytes = 1 << 20

// Route params that name the resource a body-less mutating request signs
var resourceParams = []string{"id", "card_id", "template_id"}

// Authenticate rejects requests that fail the X-ACCT-ID / X-PAYLOAD-SIG check
func Authenticate(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := readBody(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body could not be read")
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), auth.Request{
				Method:     r.Method,
				AccountID:  r.Header.Get(signature.AccountIDHeader),
				Signature:  r.Header.Get(signature.SignatureHeader),
				SigPayload: r.URL.Query().Get(signature.SigPayloadParam),
				Body:       body,
				ResourceID: resourceID(r),
			})
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireTier rejects authenticated callers whose tier does not satisfy required
func RequireTier(required auth.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}
			if !identity.Tier.Satisfies(required) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "This feature requires the "+string(required)+" tier")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// readBody drains the body and puts it back for the handler
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	r.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("body too large")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func resourceID(r *http.Request) string {
	for _, param := range resourceParams {
		if v := chi.URLParam(r, param); v != "" {
			return v
		}
	}
	return ""
}
