package reservation

import "context"

// Store persists reservation records and classifies every write.
//
// Save must compute the before/after status diff atomically with the write
// itself; implementations must not expose a window where two overlapping
// saves of the same record can misclassify each other's transition.
type Store interface {
	// Get retrieves a reservation by ID.
	Get(ctx context.Context, id string) (*Reservation, error)

	// Save creates or updates a reservation and returns the classified
	// transition. The record's status is normalized in place.
	Save(ctx context.Context, r *Reservation) (Transition, error)

	// Delete removes a reservation and returns its final snapshot.
	Delete(ctx context.Context, id string) (*Reservation, error)

	// List returns all reservations.
	List(ctx context.Context) ([]Reservation, error)
}
