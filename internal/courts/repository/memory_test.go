package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	courtserrors "courts/internal/courts/errors"
	"courts/pkg/model"

	"golang.org/x/sync/errgroup"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) error = %v", s, err)
	}
	return d
}

func TestMemoryRegister_FirstReservationCreatesSlot(t *testing.T) {
	repo := NewMemoryCourtSlotRepository()
	date := mustDate(t, "2025-01-01")

	slot, err := repo.Register(context.Background(), date, "08:00", 6)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if slot.ReservedCourts != 1 || slot.TotalCourts != 6 {
		t.Errorf("expected 1/6, got %d/%d", slot.ReservedCourts, slot.TotalCourts)
	}
	if slot.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if !slot.Date.Equal(date) || slot.TimeSlot != "08:00" {
		t.Errorf("unexpected slot key %s", slot.Key())
	}
}

func TestMemoryRegister_FullSlotIsUnchanged(t *testing.T) {
	repo := NewMemoryCourtSlotRepository()
	ctx := context.Background()
	date := mustDate(t, "2025-01-01")

	for i := range 2 {
		if _, err := repo.Register(ctx, date, "08:00", 2); err != nil {
			t.Fatalf("registration %d: %v", i+1, err)
		}
	}

	_, err := repo.Register(ctx, date, "08:00", 2)
	if !errors.Is(err, courtserrors.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	slots, _ := repo.FindByDateRange(ctx, date, date)
	if len(slots) != 1 || slots[0].ReservedCourts != 2 {
		t.Errorf("expected slot to stay at 2 reserved, got %+v", slots)
	}
}

func TestMemoryRegister_CapacityIsFixedAtCreation(t *testing.T) {
	repo := NewMemoryCourtSlotRepository()
	ctx := context.Background()
	date := mustDate(t, "2025-01-01")

	_, _ = repo.Register(ctx, date, "08:00", 1)
	if _, err := repo.Register(ctx, date, "08:00", 10); !errors.Is(err, courtserrors.ErrCapacityExceeded) {
		t.Errorf("expected stored capacity to win, got %v", err)
	}
}

func TestMemoryRegister_ConcurrentRegistrationsNeverOverbook(t *testing.T) {
	const (
		totalCourts = 6
		extra       = 14
	)
	repo := NewMemoryCourtSlotRepository()
	date := mustDate(t, "2025-01-01")

	var succeeded, rejected int32
	var g errgroup.Group
	for range totalCourts + extra {
		g.Go(func() error {
			_, err := repo.Register(context.Background(), date, "08:00", totalCourts)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, courtserrors.ErrCapacityExceeded):
				atomic.AddInt32(&rejected, 1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if succeeded != totalCourts {
		t.Errorf("expected %d successes, got %d", totalCourts, succeeded)
	}
	if rejected != extra {
		t.Errorf("expected %d rejections, got %d", extra, rejected)
	}

	slots, _ := repo.FindByDateRange(context.Background(), date, date)
	if len(slots) != 1 || slots[0].ReservedCourts != totalCourts {
		t.Errorf("expected one slot with %d reserved, got %+v", totalCourts, slots)
	}
}

func TestMemoryFindByDateRange(t *testing.T) {
	repo := NewMemoryCourtSlotRepository()
	ctx := context.Background()

	seed := []struct {
		date string
		slot string
	}{
		{"2024-12-31", "08:00"},
		{"2025-01-01", "10:00"},
		{"2025-01-01", "08:00"},
		{"2025-01-03", "09:00"},
		{"2025-01-07", "21:00"},
		{"2025-01-08", "08:00"},
	}
	for _, s := range seed {
		if _, err := repo.Register(ctx, mustDate(t, s.date), s.slot, 6); err != nil {
			t.Fatalf("seed %v: %v", s, err)
		}
	}

	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{
			name:  "inclusive bounds ordered by date and slot",
			start: "2025-01-01",
			end:   "2025-01-07",
			want:  []string{"2025-01-01|08:00", "2025-01-01|10:00", "2025-01-03|09:00", "2025-01-07|21:00"},
		},
		{
			name:  "single day",
			start: "2025-01-03",
			end:   "2025-01-03",
			want:  []string{"2025-01-03|09:00"},
		},
		{
			name:  "rfc3339 bounds truncate to date",
			start: "2025-01-07T23:59:00Z",
			end:   "2025-01-08T00:00:01Z",
			want:  []string{"2025-01-07|21:00", "2025-01-08|08:00"},
		},
		{
			name:  "no matches",
			start: "2026-01-01",
			end:   "2026-01-07",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := repo.FindByDateRange(ctx, mustDate(t, tt.start), mustDate(t, tt.end))
			if err != nil {
				t.Fatalf("FindByDateRange() error = %v", err)
			}
			if slots == nil {
				t.Fatal("expected a non-nil slice")
			}
			if len(slots) != len(tt.want) {
				t.Fatalf("expected %d slots, got %d", len(tt.want), len(slots))
			}
			for i, slot := range slots {
				if slot.Key() != tt.want[i] {
					t.Errorf("slot %d: expected %s, got %s", i, tt.want[i], slot.Key())
				}
			}
		})
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewMemoryCourtSlotRepository()
	ctx := context.Background()
	date := mustDate(t, "2025-01-01")

	slot, _ := repo.Register(ctx, date, "08:00", 6)
	slot.ReservedCourts = 99

	slots, _ := repo.FindByDateRange(ctx, date, date)
	if slots[0].ReservedCourts != 1 {
		t.Errorf("caller mutation leaked into the store: %d", slots[0].ReservedCourts)
	}
}

func TestMemoryHonorsCancelledContext(t *testing.T) {
	repo := NewMemoryCourtSlotRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Register(ctx, mustDate(t, "2025-01-01"), "08:00", 6); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
