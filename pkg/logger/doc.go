// Package logger provides a context-aware slog factory for the service.
//
// New builds a *slog.Logger from functional options: format (json/text),
// level, static attributes and context extractors that inject
// request-scoped values like request ids at log time. Attribute helpers
// (Error, ReservationID, TrackingToken, ...) keep key names consistent
// across packages.
package logger
