// Package tracking correlates links embedded in outbound emails back to
// their originating notifications.
//
// Every notification gets one opaque tracking token at creation time. When
// a customer follows (or an email client prefetches) a tracking URL, the
// service records the first open - timestamp, client IP and user agent -
// through a single conditional storage update, so two near-simultaneous
// opens cannot double-credit. Later opens never overwrite the first
// attribution.
//
// The HTTP surface is deliberately tiny:
//
//	GET /track/{token}/          -> 1x1 tracking pixel
//	GET /track/{token}/view/     -> read-only reservation snapshot
//	GET /track/{token}/confirm/  -> action confirmation view
//
// Anyone holding a token can hit these URLs; resolution of an unknown
// token is a plain 404 with no state mutation.
package tracking
