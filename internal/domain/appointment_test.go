package domain

import (
	"testing"
	"time"
)

func TestStartsAt_CombinesDateAndTime(t *testing.T) {
	a := Appointment{Date: "2025-03-10", Time: "10:00:00"}

	got, err := a.StartsAt()
	if err != nil {
		t.Fatalf("StartsAt error: %v", err)
	}
	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("StartsAt = %v, want %v", got, want)
	}
}

func TestStartsAt_AcceptsShortClockForm(t *testing.T) {
	a := Appointment{Date: "2025-03-10", Time: "09:30"}

	got, err := a.StartsAt()
	if err != nil {
		t.Fatalf("StartsAt error: %v", err)
	}
	want := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("StartsAt = %v, want %v", got, want)
	}
}

func TestStartsAt_RejectsMalformedDate(t *testing.T) {
	a := Appointment{Date: "not-a-date", Time: "09:00:00"}
	if _, err := a.StartsAt(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPartition_StrictlyAfterNowIsUpcoming(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	appts := []Appointment{
		{ID: 1, Date: "2025-03-10", Time: "10:30:00"}, // future
		{ID: 2, Date: "2025-03-10", Time: "10:00:00"}, // exactly now
		{ID: 3, Date: "2025-03-10", Time: "09:30:00"}, // past
		{ID: 4, Date: "garbage", Time: "09:30:00"},    // unparseable
	}

	upcoming, past := Partition(appts, now)

	if len(upcoming) != 1 || upcoming[0].ID != 1 {
		t.Fatalf("upcoming = %v, want only id 1", upcoming)
	}
	if len(past) != 3 {
		t.Fatalf("len(past) = %d, want 3", len(past))
	}
}
