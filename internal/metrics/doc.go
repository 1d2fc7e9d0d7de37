// Package metrics exposes controller activity as Prometheus collectors and
// serves them, together with a JSON status snapshot, over a chi router.
package metrics
