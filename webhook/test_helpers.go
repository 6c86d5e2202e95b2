package webhook

import "github.com/stretchr/testify/mock"

// MatchAttempt creates a custom matcher for delivery attempt arguments in mocks
func MatchAttempt(matcher func(DeliveryAttempt) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchSubscription creates a custom matcher for subscription arguments in mocks
func MatchSubscription(matcher func(Subscription) bool) interface{} {
	return mock.MatchedBy(matcher)
}
