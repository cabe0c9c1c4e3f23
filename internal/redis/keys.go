package redisx

import "fmt"

const ns = "ticketd:v1"

func KeyAvailability() string {
	return ns + ":availability"
}

func KeyIdemCheckout(paymentID string) string {
	return fmt.Sprintf("%s:idem:checkout:%s", ns, paymentID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelCapacityChanged() string {
	return ns + ":capacity:changed"
}
