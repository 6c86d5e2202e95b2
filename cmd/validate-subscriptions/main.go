package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/wusul-core/subscriptions"
)

/* validate-subscriptions - Standalone CLI tool to validate subscriptions.yaml
 * Usage: go run cmd/validate-subscriptions/main.go [subscriptions.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	// Get subscriptions file path from args or use default
	file := "subscriptions.yaml"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	fmt.Printf("Validating subscriptions file: %s\n", file)
	fmt.Println(strings.Repeat("-", 50))

	loader := subscriptions.NewLoader()
	if err := loader.Load(file); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Success - print loaded subscriptions, never their secrets
	loaded := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d subscription(s):\n", len(loaded))

	for i, sub := range loaded {
		fmt.Printf("\n%d. Subscription: %s\n", i+1, sub.ID)
		fmt.Printf("   Account: %s\n", sub.AccountID)
		fmt.Printf("   URL:     %s\n", sub.URL)
		fmt.Printf("   Events:  %s\n", strings.Join(sub.Events, ", "))
		fmt.Printf("   Active:  %t\n", sub.IsActive)
	}

	fmt.Printf("\n✓ All subscriptions are valid!\n")
	os.Exit(0)
}
