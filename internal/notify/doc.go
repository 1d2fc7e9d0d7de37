// Package notify delivers outbound alerts: the bearer-authenticated form POST
// to the notification endpoint and the plain GET that pulses the local
// trigger server.
//
// Delivery is best effort. Every call returns a Result that has already been
// logged; callers inspect it for metrics but never abort on it.
package notify
