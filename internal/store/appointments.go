package store

import (
	"context"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
)

type AppointmentRepository interface {
	// Create inserts the appointment and returns it with its assigned id and
	// creation timestamp. Returns ErrConflict when the (date, time) slot is
	// already taken.
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)

	// List returns all appointments ordered by date descending, then time
	// descending.
	List(ctx context.Context) ([]domain.Appointment, error)

	// ListForDate returns the appointments on a civil date ordered by time
	// ascending.
	ListForDate(ctx context.Context, date string) ([]domain.Appointment, error)

	// GetByID returns ErrNotFound when no row has the id.
	GetByID(ctx context.Context, id int64) (domain.Appointment, error)

	// Delete removes the row; ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id int64) error

	// ExistsAt reports whether a row already occupies the (date, clock) slot.
	ExistsAt(ctx context.Context, date, clock string) (bool, error)

	// TimesForDate returns the appointment_time values stored for a date, in
	// whatever form they were stored.
	TimesForDate(ctx context.Context, date string) ([]string, error)

	// CountDistinctEmails counts distinct email addresses across all rows.
	CountDistinctEmails(ctx context.Context) (int, error)
}
