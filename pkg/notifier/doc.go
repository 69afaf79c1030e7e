// Package notifier stores internal alerts about reservation events and
// maintains their read state.
//
// Every Notification carries two independent read flags that must never be
// conflated: OperatorRead (an internal user looked at the alert) and
// EmailOpened (the customer opened the tracked email). The Manager owns the
// operator side; the tracking service drives the customer side through the
// storage's conditional MarkEmailOpened, which records only the first open.
//
// Storage ships in three flavors: in-memory for tests and development,
// Postgres (pgx) for production, and whatever else implements the Storage
// interface.
package notifier
