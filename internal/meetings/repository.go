package meetings

import "context"

// Repository is the persistence contract for meetings.
type Repository interface {
	Insert(ctx context.Context, m Meeting) error
	Get(ctx context.Context, id string) (Meeting, error)

	// List returns meetings visible to the user: all of them when
	// visibleTo is empty, otherwise those the user organizes.
	List(ctx context.Context, visibleTo string) ([]Meeting, error)

	Update(ctx context.Context, m Meeting) error
	Delete(ctx context.Context, id string) error

	// FindConflict reports a non-cancelled meeting of the organizer whose
	// interval intersects [startTime, endTime), skipping excludeID.
	FindConflict(ctx context.Context, organizerID, startTime, endTime, excludeID string) (Meeting, bool, error)
}
