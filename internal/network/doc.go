// Package network establishes the wireless link the notifications travel over.
//
// The Connector blocks with a fixed-interval retry until the Link reports it is
// connected; an optional bound and the caller's context are the only ways out.
// Links are thin adapters over the host network stack.
package network
