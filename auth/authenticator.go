package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/marcelsud/wusul-core/signature"
	"github.com/rs/zerolog"
)

// CredentialReader looks up credentials by their public account identifier
type CredentialReader interface {
	FindByAccountID(ctx context.Context, accountID string) (Credential, error)
}

/* Request is the transport-neutral view of an inbound call that the
 * authenticator needs. The HTTP layer fills it from headers, query and body.
 */
type Request struct {
	Method     string
	AccountID  string
	Signature  string
	SigPayload string // sig_payload query value, reads only
	Body       []byte // raw request body, mutating requests only
	ResourceID string // id taken from the route, "" when absent
}

// Authenticator implements the X-ACCT-ID / X-PAYLOAD-SIG decision procedure
type Authenticator struct {
	Credentials CredentialReader
	Logger      zerolog.Logger
}

// NewAuthenticator creates an authenticator backed by the given store
func NewAuthenticator(credentials CredentialReader, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		Credentials: credentials,
		Logger:      logger,
	}
}

/* Authenticate resolves the caller or returns ErrUnauthorized.
 * The reason for a rejection is logged but never returned, so unknown
 * accounts, inactive accounts and bad signatures are indistinguishable.
 */
func (a *Authenticator) Authenticate(ctx context.Context, req Request) (Identity, error) {
	accountID := strings.TrimSpace(req.AccountID)
	sig := strings.TrimSpace(req.Signature)
	if accountID == "" || sig == "" {
		a.Logger.Warn().Msg("missing authentication headers")
		return Identity{}, ErrUnauthorized
	}

	cred, err := a.Credentials.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.Logger.Warn().Str("account_id", accountID).Msg("account not found")
		} else {
			a.Logger.Error().Err(err).Str("account_id", accountID).Msg("looking up credential")
		}
		return Identity{}, ErrUnauthorized
	}
	if !cred.IsActive {
		a.Logger.Warn().Str("account_id", accountID).Msg("account is inactive")
		return Identity{}, ErrUnauthorized
	}

	encoded, ok := a.expectedPayload(req)
	if !ok {
		return Identity{}, ErrUnauthorized
	}

	if !signature.Verify(cred.SharedSecret, encoded, sig) {
		a.Logger.Warn().Str("account_id", accountID).Msg("invalid payload signature")
		return Identity{}, ErrUnauthorized
	}

	a.Logger.Debug().Str("account_id", accountID).Msg("request authenticated")
	return cred.identity(), nil
}

// expectedPayload reconstructs the canonical encoding the client signed
func (a *Authenticator) expectedPayload(req Request) (string, bool) {
	switch strings.ToUpper(req.Method) {
	case http.MethodGet, http.MethodHead:
		if req.SigPayload == "" {
			a.Logger.Warn().Str("account_id", req.AccountID).Msg("missing sig_payload for read request")
			return "", false
		}
		return req.SigPayload, true
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		if !isEmptyBody(req.Body) {
			encoded, err := signature.EncodeRaw(req.Body)
			if err != nil {
				a.Logger.Warn().Err(err).Str("account_id", req.AccountID).Msg("unreadable request body")
				return "", false
			}
			return encoded, true
		}
	}

	encoded, err := signature.EncodePayload(defaultPayload(req.ResourceID))
	if err != nil {
		a.Logger.Error().Err(err).Msg("encoding default payload")
		return "", false
	}
	return encoded, true
}

func defaultPayload(resourceID string) map[string]string {
	if resourceID == "" {
		resourceID = "0"
	}
	return map[string]string{"id": resourceID}
}

// isEmptyBody treats no body, whitespace, {} and [] as "nothing to sign"
func isEmptyBody(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return true
	}
	if len(trimmed) < 2 {
		return false
	}
	switch trimmed[0:1] + trimmed[len(trimmed)-1:] {
	case "{}", "[]":
		return strings.TrimSpace(trimmed[1:len(trimmed)-1]) == ""
	}
	return false
}

type identityKey struct{}

// WithIdentity attaches the authenticated identity to ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by WithIdentity
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
