package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/marcelsud/wusul-core/signature"
	"github.com/spf13/cobra"
)

/* sign prints the authentication headers a client sends for one request
 * The shared secret is read from WUSUL_SHARED_SECRET and never printed.
 *
 * Usage:
 *   WUSUL_SHARED_SECRET=... go run ./cmd/sign --account acct_123 --method POST --payload '{"id":"42"}'
 *   WUSUL_SHARED_SECRET=... go run ./cmd/sign --account acct_123 --method GET --url https://api.wusul.io/v1/webhooks
 *   WUSUL_SHARED_SECRET=... go run ./cmd/sign --account acct_123 --method DELETE --id sub-1
 */

const secretEnv = "WUSUL_SHARED_SECRET"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sign",
		Short:        "Print the X-ACCT-ID and X-PAYLOAD-SIG headers for one request",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, _ := cmd.Flags().GetString("account")
			method, _ := cmd.Flags().GetString("method")
			payload, _ := cmd.Flags().GetString("payload")
			resourceID, _ := cmd.Flags().GetString("id")
			target, _ := cmd.Flags().GetString("url")

			secret := os.Getenv(secretEnv)
			if account == "" || secret == "" {
				return fmt.Errorf("--account and %s are required", secretEnv)
			}

			headers, sigPayload, err := sign(account, secret, strings.ToUpper(method), payload, resourceID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", signature.AccountIDHeader, headers.Get(signature.AccountIDHeader))
			fmt.Fprintf(out, "%s: %s\n", signature.SignatureHeader, headers.Get(signature.SignatureHeader))
			if sigPayload == "" {
				return nil
			}

			fmt.Fprintf(out, "%s: %s\n", signature.SigPayloadParam, sigPayload)
			if target != "" {
				u, err := signature.WithSigPayload(target, sigPayload)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "URL: %s\n", u)
			}
			return nil
		},
	}

	cmd.Flags().StringP("account", "a", "", "account id sent as X-ACCT-ID")
	cmd.Flags().StringP("method", "m", http.MethodPost, "HTTP method of the request")
	cmd.Flags().StringP("payload", "p", "", "JSON body (mutating) or object to sign as sig_payload (reads)")
	cmd.Flags().String("id", "", "route resource id signed when there is no body")
	cmd.Flags().String("url", "", "request URL; reads get sig_payload appended")

	return cmd
}

// sign returns the headers and, for reads, the sig_payload value
func sign(account, secret, method, payload, resourceID string) (http.Header, string, error) {
	var body any
	if payload != "" {
		if !json.Valid([]byte(payload)) {
			return nil, "", errors.New("payload is not valid JSON")
		}
		body = json.RawMessage(payload)
	} else if resourceID != "" {
		body = map[string]string{"id": resourceID}
	}

	switch method {
	case http.MethodGet, http.MethodHead:
		return signature.GetAuthHeaders(account, secret, body)
	default:
		headers, err := signature.AuthHeaders(account, secret, body)
		return headers, "", err
	}
}
