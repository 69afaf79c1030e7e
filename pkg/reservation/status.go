package reservation

import "strings"

// Status is the canonical reservation lifecycle status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// legacyStatuses maps historical spellings (French admin labels and
// mixed-case English) to the canonical enum. The original data set carries
// both, so normalization has to happen before any status comparison.
var legacyStatuses = map[string]Status{
	"pending":    StatusPending,
	"confirmed":  StatusConfirmed,
	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
	"completed":  StatusCompleted,
	"en attente": StatusPending,
	"confirmée":  StatusConfirmed,
	"annulée":    StatusCancelled,
	"terminée":   StatusCompleted,
}

// NormalizeStatus resolves any known spelling to the canonical Status.
// Unknown values are returned lowercased as-is so they survive round-trips;
// Valid reports whether the result is one of the four canonical values.
func NormalizeStatus(s string) Status {
	key := strings.ToLower(strings.TrimSpace(s))
	if canonical, ok := legacyStatuses[key]; ok {
		return canonical
	}
	return Status(key)
}

// Valid reports whether the status is one of the canonical four values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether the status is one an operator actively moved the
// reservation into, implying prior alerts about it have been acted on.
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
