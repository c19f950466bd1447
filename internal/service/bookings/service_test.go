package bookings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/store"
)

type fakeRepo struct {
	createFn              func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	listFn                func(ctx context.Context) ([]domain.Appointment, error)
	listForDateFn         func(ctx context.Context, date string) ([]domain.Appointment, error)
	getByIDFn             func(ctx context.Context, id int64) (domain.Appointment, error)
	deleteFn              func(ctx context.Context, id int64) error
	existsAtFn            func(ctx context.Context, date, clock string) (bool, error)
	timesForDateFn        func(ctx context.Context, date string) ([]string, error)
	countDistinctEmailsFn func(ctx context.Context) (int, error)
}

func (f *fakeRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, appt)
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeRepo) ListForDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	if f.listForDateFn == nil {
		panic("ListForDate not configured")
	}
	return f.listForDateFn(ctx, date)
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (domain.Appointment, error) {
	if f.getByIDFn == nil {
		panic("GetByID not configured")
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeRepo) ExistsAt(ctx context.Context, date, clock string) (bool, error) {
	if f.existsAtFn == nil {
		panic("ExistsAt not configured")
	}
	return f.existsAtFn(ctx, date, clock)
}

func (f *fakeRepo) TimesForDate(ctx context.Context, date string) ([]string, error) {
	if f.timesForDateFn == nil {
		panic("TimesForDate not configured")
	}
	return f.timesForDateFn(ctx, date)
}

func (f *fakeRepo) CountDistinctEmails(ctx context.Context) (int, error) {
	if f.countDistinctEmailsFn == nil {
		panic("CountDistinctEmails not configured")
	}
	return f.countDistinctEmailsFn(ctx)
}

// Monday, local time. All create tests are phrased relative to this instant.
var testNow = time.Date(2025, 3, 3, 12, 0, 0, 0, time.Local)

func newTestService(repo *fakeRepo, now time.Time) *Service {
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc
}

func validInput() CreateInput {
	return CreateInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Title:     "Consultation",
		Date:      "2025-03-10",
		Time:      "10:00:00",
	}
}

func freeSlotRepo() *fakeRepo {
	return &fakeRepo{
		existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			appt.ID = 1
			appt.CreatedAt = testNow
			return appt, nil
		},
	}
}

func TestCreate_MissingRequiredField(t *testing.T) {
	for _, mutate := range []func(*CreateInput){
		func(in *CreateInput) { in.FirstName = "  " },
		func(in *CreateInput) { in.LastName = "" },
		func(in *CreateInput) { in.Email = "" },
		func(in *CreateInput) { in.Title = "" },
		func(in *CreateInput) { in.Date = "" },
		func(in *CreateInput) { in.Time = "" },
	} {
		in := validInput()
		mutate(&in)

		svc := newTestService(&fakeRepo{}, testNow)
		_, err := svc.Create(context.Background(), in)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error type = %T, want *ValidationError", err)
		}
		if vErr.Error() != "missing required fields" {
			t.Fatalf("error = %q, want %q", vErr.Error(), "missing required fields")
		}
	}
}

func TestCreate_DescriptionIsOptional(t *testing.T) {
	in := validInput()
	in.Description = ""

	svc := newTestService(freeSlotRepo(), testNow)
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_EmailShape(t *testing.T) {
	for _, bad := range []string{"not-an-email", "a@b", "a b@c.d", "@x.y", "a@.y"} {
		in := validInput()
		in.Email = bad

		svc := newTestService(&fakeRepo{}, testNow)
		_, err := svc.Create(context.Background(), in)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("email %q: error type = %T, want *ValidationError", bad, err)
		}
		if vErr.Error() != "invalid email format" {
			t.Fatalf("email %q: error = %q, want %q", bad, vErr.Error(), "invalid email format")
		}
	}

	in := validInput()
	in.Email = "a@b.co"
	svc := newTestService(freeSlotRepo(), testNow)
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("email a@b.co rejected: %v", err)
	}
}

func TestCreate_SlotAlreadyTaken(t *testing.T) {
	svc := newTestService(&fakeRepo{
		existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
			return true, nil
		},
	}, testNow)

	_, err := svc.Create(context.Background(), validInput())
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want %v", err, store.ErrConflict)
	}
}

func TestCreate_SlotCheckRunsBeforeDateChecks(t *testing.T) {
	// A taken slot on a Saturday reports the conflict, not the weekend rule.
	svc := newTestService(&fakeRepo{
		existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
			return true, nil
		},
	}, testNow)

	in := validInput()
	in.Date = "2025-03-08"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want %v", err, store.ErrConflict)
	}
}

func TestCreate_SlotCheckErrorIsNotValidation(t *testing.T) {
	svc := newTestService(&fakeRepo{
		existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
			return false, errors.New("connection refused")
		},
	}, testNow)

	_, err := svc.Create(context.Background(), validInput())
	if err == nil {
		t.Fatalf("expected error")
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		t.Fatalf("store error reported as validation: %v", err)
	}
}

func TestCreate_NormalizesShortClock(t *testing.T) {
	var gotClock string
	repo := freeSlotRepo()
	repo.existsAtFn = func(ctx context.Context, date, clock string) (bool, error) {
		gotClock = clock
		return false, nil
	}

	in := validInput()
	in.Time = "10:00"
	svc := newTestService(repo, testNow)
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if gotClock != "10:00:00" {
		t.Fatalf("pre-check clock = %q, want %q", gotClock, "10:00:00")
	}
	if created.Time != "10:00:00" {
		t.Fatalf("stored time = %q, want %q", created.Time, "10:00:00")
	}
}

func TestCreate_RejectsPastDate(t *testing.T) {
	in := validInput()
	in.Date = "2025-02-28" // a Friday before testNow

	svc := newTestService(&fakeRepo{
		existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
			return false, nil
		},
	}, testNow)

	_, err := svc.Create(context.Background(), in)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if vErr.Error() != "cannot book appointments in the past" {
		t.Fatalf("error = %q", vErr.Error())
	}
}

func TestCreate_AcceptsToday(t *testing.T) {
	// Date-only comparison: today at midnight is not before today.
	in := validInput()
	in.Date = "2025-03-03"
	in.Time = "17:30:00"

	svc := newTestService(freeSlotRepo(), testNow)
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_RejectsWeekends(t *testing.T) {
	for _, date := range []string{"2025-03-08", "2025-03-09"} {
		in := validInput()
		in.Date = date

		svc := newTestService(&fakeRepo{
			existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
				return false, nil
			},
		}, testNow)

		_, err := svc.Create(context.Background(), in)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("date %s: error type = %T, want *ValidationError", date, err)
		}
		if vErr.Error() != "appointments are only available Monday to Friday" {
			t.Fatalf("date %s: error = %q", date, vErr.Error())
		}
	}
}

func TestCreate_BusinessHourBounds(t *testing.T) {
	rejected := []string{"08:30:00", "18:00:00", "20:00:00"}
	for _, clock := range rejected {
		in := validInput()
		in.Time = clock

		svc := newTestService(&fakeRepo{
			existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
				return false, nil
			},
		}, testNow)

		_, err := svc.Create(context.Background(), in)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("time %s: error type = %T, want *ValidationError", clock, err)
		}
		if vErr.Error() != "appointments are only available from 9:00 AM to 6:00 PM" {
			t.Fatalf("time %s: error = %q", clock, vErr.Error())
		}
	}

	for _, clock := range []string{"09:00:00", "17:30:00"} {
		in := validInput()
		in.Time = clock

		svc := newTestService(freeSlotRepo(), testNow)
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("time %s rejected: %v", clock, err)
		}
	}
}

func TestCreate_SequentialDuplicateRejected(t *testing.T) {
	booked := make(map[string]domain.Appointment)
	var nextID int64

	repo := &fakeRepo{
		existsAtFn: func(ctx context.Context, date, clock string) (bool, error) {
			_, ok := booked[date+" "+clock]
			return ok, nil
		},
		createFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			key := appt.Date + " " + appt.Time
			if _, ok := booked[key]; ok {
				return domain.Appointment{}, store.ErrConflict
			}
			nextID++
			appt.ID = nextID
			booked[key] = appt
			return appt, nil
		},
	}
	svc := newTestService(repo, testNow)

	first, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}

	_, err = svc.Create(context.Background(), validInput())
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second Create error = %v, want %v", err, store.ErrConflict)
	}
}

func TestCreate_TrimsFields(t *testing.T) {
	var got domain.Appointment
	repo := freeSlotRepo()
	repo.createFn = func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
		got = appt
		return appt, nil
	}

	in := validInput()
	in.FirstName = "  Ada "
	in.Description = " notes "

	svc := newTestService(repo, testNow)
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.FirstName != "Ada" {
		t.Fatalf("first name = %q, want %q", got.FirstName, "Ada")
	}
	if got.Description != "notes" {
		t.Fatalf("description = %q, want %q", got.Description, "notes")
	}
}

func cancelRepo(start time.Time, deleted *bool) *fakeRepo {
	return &fakeRepo{
		getByIDFn: func(ctx context.Context, id int64) (domain.Appointment, error) {
			return domain.Appointment{
				ID:   id,
				Date: start.Format(domain.DateLayout),
				Time: start.Format(domain.TimeLayout),
			}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			if deleted != nil {
				*deleted = true
			}
			return nil
		},
	}
}

func TestCancel_MoreThan24HoursOut(t *testing.T) {
	var deleted bool
	svc := newTestService(cancelRepo(testNow.Add(25*time.Hour), &deleted), testNow)

	if err := svc.Cancel(context.Background(), 7); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete")
	}
}

func TestCancel_Within24Hours(t *testing.T) {
	svc := newTestService(cancelRepo(testNow.Add(23*time.Hour), nil), testNow)

	err := svc.Cancel(context.Background(), 7)
	if !errors.Is(err, ErrTooLateToCancel) {
		t.Fatalf("error = %v, want %v", err, ErrTooLateToCancel)
	}
}

func TestCancel_ExactCutoffIsRejected(t *testing.T) {
	// Strictly more than 24 hours is required; exactly 24.000 is too late.
	svc := newTestService(cancelRepo(testNow.Add(24*time.Hour), nil), testNow)

	err := svc.Cancel(context.Background(), 7)
	if !errors.Is(err, ErrTooLateToCancel) {
		t.Fatalf("error = %v, want %v", err, ErrTooLateToCancel)
	}
}

func TestCancel_NotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{
		getByIDFn: func(ctx context.Context, id int64) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrNotFound
		},
	}, testNow)

	err := svc.Cancel(context.Background(), 99)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestAvailableSlots_RequiresDate(t *testing.T) {
	svc := newTestService(&fakeRepo{}, testNow)

	_, err := svc.AvailableSlots(context.Background(), "  ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if vErr.Error() != "date parameter is required" {
		t.Fatalf("error = %q", vErr.Error())
	}
}

func TestAvailableSlots_SubtractsBookedTimes(t *testing.T) {
	svc := newTestService(&fakeRepo{
		timesForDateFn: func(ctx context.Context, date string) ([]string, error) {
			return []string{"09:00", "13:30:00"}, nil
		},
	}, testNow)

	slots, err := svc.AvailableSlots(context.Background(), "2025-03-10")
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	for _, s := range slots {
		if s == "09:00:00" || s == "13:30:00" {
			t.Fatalf("booked slot %q still offered", s)
		}
	}
}

func TestAvailableSlots_DegradesToFullGridOnStoreError(t *testing.T) {
	svc := newTestService(&fakeRepo{
		timesForDateFn: func(ctx context.Context, date string) ([]string, error) {
			return nil, errors.New("connection refused")
		},
	}, testNow)

	slots, err := svc.AvailableSlots(context.Background(), "2025-03-10")
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	if len(slots) != 18 {
		t.Fatalf("len(slots) = %d, want the full 18-slot grid", len(slots))
	}
}

func TestList_Passthrough(t *testing.T) {
	want := []domain.Appointment{{ID: 2}, {ID: 1}}
	svc := newTestService(&fakeRepo{
		listFn: func(ctx context.Context) ([]domain.Appointment, error) {
			return want, nil
		},
	}, testNow)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestStats_PartitionAndPeopleServed(t *testing.T) {
	appts := []domain.Appointment{
		{ID: 1, Email: "a@x.co", Date: "2025-03-10", Time: "10:00:00"}, // upcoming
		{ID: 2, Email: "b@x.co", Date: "2025-03-04", Time: "09:00:00"}, // upcoming
		{ID: 3, Email: "a@x.co", Date: "2025-03-03", Time: "09:00:00"}, // past
	}
	svc := newTestService(&fakeRepo{
		listFn: func(ctx context.Context) ([]domain.Appointment, error) {
			return appts, nil
		},
		countDistinctEmailsFn: func(ctx context.Context) (int, error) {
			return 2, nil
		},
	}, testNow)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	want := Stats{Total: 3, Upcoming: 2, Past: 1, PeopleServed: 2}
	if stats != want {
		t.Fatalf("Stats = %+v, want %+v", stats, want)
	}
}

func TestStats_PropagatesStoreError(t *testing.T) {
	svc := newTestService(&fakeRepo{
		listFn: func(ctx context.Context) ([]domain.Appointment, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}, testNow)

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
