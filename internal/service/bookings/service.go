package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/metrics"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/store"
)

// Shape check only: something@something.tld. No deeper RFC validation.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CancellationCutoff is how close to an appointment's start a cancellation is
// no longer accepted. The comparison is strict: exactly 24 hours out is
// already too late.
const CancellationCutoff = 24 * time.Hour

// ErrTooLateToCancel rejects cancellations inside the cutoff window. It is a
// conflict with current time, not an input error.
var ErrTooLateToCancel = errors.New("cannot cancel appointments within 24 hours")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	repo store.AppointmentRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo store.AppointmentRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo: repo,
		log:  log.With(slog.String("component", "bookings")),
		now:  time.Now,
	}
}

type CreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	Title       string
	Description string
	Date        string
	Time        string
}

// Create validates a proposed booking and persists it. Checks run in a fixed
// order and the first failure determines the reported reason; nothing is
// written unless every check passes.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	email := strings.TrimSpace(in.Email)
	title := strings.TrimSpace(in.Title)
	date := strings.TrimSpace(in.Date)
	clock := strings.TrimSpace(in.Time)

	if firstName == "" || lastName == "" || email == "" || title == "" || date == "" || clock == "" {
		return domain.Appointment{}, validationError("missing required fields")
	}
	if !emailPattern.MatchString(email) {
		return domain.Appointment{}, validationError("invalid email format")
	}

	clock = domain.NormalizeClock(clock)

	taken, err := s.repo.ExistsAt(ctx, date, clock)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("checking slot: %w", err)
	}
	if taken {
		metrics.BookingConflicts.Inc()
		return domain.Appointment{}, store.ErrConflict
	}

	day, err := time.ParseInLocation(domain.DateLayout, date, time.Local)
	if err != nil {
		return domain.Appointment{}, validationError("invalid date")
	}
	start, err := time.Parse(domain.TimeLayout, clock)
	if err != nil {
		return domain.Appointment{}, validationError("invalid time")
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return domain.Appointment{}, validationError("cannot book appointments in the past")
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return domain.Appointment{}, validationError("appointments are only available Monday to Friday")
	}
	if hour := start.Hour(); hour < domain.OpeningHour || hour >= domain.ClosingHour {
		return domain.Appointment{}, validationError("appointments are only available from 9:00 AM to 6:00 PM")
	}

	created, err := s.repo.Create(ctx, domain.Appointment{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		Time:        clock,
	})
	if err != nil {
		// The unique index on (date, time) is the real uniqueness guarantee;
		// the pre-check above only orders the reported reasons. A concurrent
		// writer can still lose the race here.
		if errors.Is(err, store.ErrConflict) {
			metrics.BookingConflicts.Inc()
		}
		return domain.Appointment{}, err
	}

	metrics.BookingsCreated.Inc()
	s.log.Info("appointment booked",
		slog.Int64("appointment_id", created.ID),
		slog.String("date", created.Date),
		slog.String("time", created.Time),
	)
	return created, nil
}

// List returns every appointment, newest date and time first.
func (s *Service) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.List(ctx)
}

// Cancel deletes an appointment unless its start is within the cancellation
// cutoff. Once the guard passes the delete is unconditional.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	start, err := appt.StartsAt()
	if err != nil {
		return fmt.Errorf("parsing appointment start: %w", err)
	}
	if start.Sub(s.now()) <= CancellationCutoff {
		return ErrTooLateToCancel
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.BookingsCancelled.Inc()
	s.log.Info("appointment cancelled", slog.Int64("appointment_id", id))
	return nil
}

// AvailableSlots returns the open half-hour slots for a civil date. When the
// booked-times lookup fails the full grid is returned instead of an error:
// over-offering is tolerated because the unique index rejects a double
// booking at creation time.
func (s *Service) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, validationError("date parameter is required")
	}
	if _, err := time.ParseInLocation(domain.DateLayout, date, time.Local); err != nil {
		return nil, validationError("invalid date")
	}

	booked, err := s.repo.TimesForDate(ctx, date)
	if err != nil {
		metrics.SlotQueriesDegraded.Inc()
		s.log.Warn("slot lookup failed; offering full grid",
			slog.String("date", date),
			slog.Any("err", err),
		)
		return domain.SlotUniverse(), nil
	}
	return domain.AvailableSlots(booked), nil
}

type Stats struct {
	Total        int
	Upcoming     int
	Past         int
	PeopleServed int
}

// Stats recomputes the dashboard numbers on every call. PeopleServed counts
// distinct email addresses across all rows.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	upcoming, past := domain.Partition(appts, s.now())

	people, err := s.repo.CountDistinctEmails(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Total:        len(appts),
		Upcoming:     len(upcoming),
		Past:         len(past),
		PeopleServed: people,
	}, nil
}
