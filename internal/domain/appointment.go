package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Civil date and time-of-day layouts used throughout the module. Both are
// stored as text; lexicographic order matches chronological order.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          int64     `bun:"id,pk,autoincrement"`
	FirstName   string    `bun:"first_name,notnull"`
	LastName    string    `bun:"last_name,notnull"`
	Email       string    `bun:"email,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	Date        string    `bun:"appointment_date,notnull"`
	Time        string    `bun:"appointment_time,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

// StartsAt combines the appointment's civil date and time-of-day into an
// instant in the process timezone.
func (a *Appointment) StartsAt() (time.Time, error) {
	return time.ParseInLocation(
		DateLayout+"T"+TimeLayout,
		a.Date+"T"+NormalizeClock(a.Time),
		time.Local,
	)
}

// Partition splits appointments into upcoming and past relative to now. An
// appointment is upcoming iff its start is strictly after now; one starting
// exactly now counts as past. Rows whose date or time cannot be parsed are
// treated as past.
func Partition(appts []Appointment, now time.Time) (upcoming, past []Appointment) {
	for _, a := range appts {
		start, err := a.StartsAt()
		if err == nil && start.After(now) {
			upcoming = append(upcoming, a)
			continue
		}
		past = append(past, a)
	}
	return upcoming, past
}
