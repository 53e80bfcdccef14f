package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	courtserrors "courts/internal/courts/errors"
	"courts/internal/courts/repository"
	"courts/internal/courts/validator"
	"courts/pkg/config"
	apperrors "courts/pkg/errors"
	"courts/pkg/logger"
	"courts/pkg/model"

	"golang.org/x/sync/errgroup"
)

type mockRepository struct {
	findFunc     func(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error)
	registerFunc func(ctx context.Context, date time.Time, timeSlot string, totalCourts int) (*model.CourtSlot, error)
}

func (m *mockRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, start, end)
	}
	return nil, nil
}

func (m *mockRepository) Register(ctx context.Context, date time.Time, timeSlot string, totalCourts int) (*model.CourtSlot, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, date, timeSlot, totalCourts)
	}
	return &model.CourtSlot{Date: date, TimeSlot: timeSlot, ReservedCourts: 1, TotalCourts: totalCourts}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ReservationEvent
	err    error
}

func (p *recordingPublisher) PublishReserved(_ context.Context, event model.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log:           logger.Nop(),
		TotalCourts:   6,
		CourtsOpenAt:  "08:00",
		CourtsCloseAt: "22:00",
	}
}

func newTestService(repo repository.CourtSlotRepository, pub *recordingPublisher) CourtSlotService {
	cfg := testConfig()
	v := validator.NewCourtSlotValidator(cfg.Log, cfg.CourtsOpenAt, cfg.CourtsCloseAt, true)
	if pub == nil {
		return NewCourtSlotService(repo, v, nil, cfg)
	}
	return NewCourtSlotService(repo, v, pub, cfg)
}

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{Date: "2025-01-01", TimeSlot: "08:00", TeamID: "A"}
}

func TestRegister_FirstReservation(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(repository.NewMemoryCourtSlotRepository(), pub)

	slot, err := svc.Register(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if slot.ReservedCourts != 1 || slot.TotalCourts != 6 {
		t.Errorf("expected 1/6, got %d/%d", slot.ReservedCourts, slot.TotalCourts)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	event := pub.events[0]
	if event.Date != "2025-01-01" || event.TimeSlot != "08:00" || event.TeamID != "A" || event.ReservedCourts != 1 {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestRegister_SanitizesInput(t *testing.T) {
	var gotSlot string
	var gotDate time.Time
	repo := &mockRepository{
		registerFunc: func(_ context.Context, date time.Time, timeSlot string, total int) (*model.CourtSlot, error) {
			gotDate, gotSlot = date, timeSlot
			return &model.CourtSlot{Date: date, TimeSlot: timeSlot, ReservedCourts: 1, TotalCourts: total}, nil
		},
	}
	svc := newTestService(repo, nil)

	req := &model.ReservationRequest{Date: " 2025-01-01T15:30:00Z ", TimeSlot: " 9:00", TeamID: "  Team   A "}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if gotSlot != "09:00" {
		t.Errorf("expected padded slot 09:00, got %q", gotSlot)
	}
	if !gotDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date normalized to midnight UTC, got %v", gotDate)
	}
	if req.TeamID != "Team A" {
		t.Errorf("expected normalized team id, got %q", req.TeamID)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  *model.ReservationRequest
	}{
		{"nil request", nil},
		{"missing date", &model.ReservationRequest{TimeSlot: "08:00", TeamID: "A"}},
		{"missing time slot", &model.ReservationRequest{Date: "2025-01-01", TeamID: "A"}},
		{"missing team", &model.ReservationRequest{Date: "2025-01-01", TimeSlot: "08:00"}},
		{"blank team", &model.ReservationRequest{Date: "2025-01-01", TimeSlot: "08:00", TeamID: "   "}},
		{"closed hour", &model.ReservationRequest{Date: "2025-01-01", TimeSlot: "03:00", TeamID: "A"}},
		{"unparseable date", &model.ReservationRequest{Date: "tomorrow", TimeSlot: "08:00", TeamID: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			repo := &mockRepository{
				registerFunc: func(context.Context, time.Time, string, int) (*model.CourtSlot, error) {
					called = true
					return nil, nil
				},
			}
			svc := newTestService(repo, nil)

			_, err := svc.Register(context.Background(), tt.req)
			appErr := apperrors.AsAppError(err)
			if err == nil || appErr.StatusCode() != 400 {
				t.Fatalf("expected a 400 error, got %v", err)
			}
			if appErr.Code == apperrors.CodeCapacityExceeded {
				t.Error("validation failure must not look like a capacity error")
			}
			if called {
				t.Error("repository must not be called for invalid input")
			}
		})
	}
}

func TestRegister_CapacityExceeded(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(repository.NewMemoryCourtSlotRepository(), pub)
	ctx := context.Background()

	for i := range 6 {
		if _, err := svc.Register(ctx, validRequest()); err != nil {
			t.Fatalf("registration %d: %v", i+1, err)
		}
	}

	_, err := svc.Register(ctx, validRequest())
	if !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	if apperrors.AsAppError(err).StatusCode() != 400 {
		t.Errorf("expected 400, got %d", apperrors.AsAppError(err).StatusCode())
	}
	if len(pub.events) != 6 {
		t.Errorf("expected events only for successful reservations, got %d", len(pub.events))
	}

	slots, _ := svc.ListByDateRange(ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(slots) != 1 || slots[0].ReservedCourts != 6 {
		t.Errorf("expected slot to stay full at 6, got %+v", slots)
	}
}

func TestRegister_RepositoryFailureIsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	repo := &mockRepository{
		registerFunc: func(context.Context, time.Time, string, int) (*model.CourtSlot, error) {
			return nil, cause
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), validRequest())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInternal || appErr.StatusCode() != 500 {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved for logging")
	}
}

func TestRegister_WrappedCapacitySentinel(t *testing.T) {
	repo := &mockRepository{
		registerFunc: func(context.Context, time.Time, string, int) (*model.CourtSlot, error) {
			return nil, errors.Join(errors.New("slot 08:00"), courtserrors.ErrCapacityExceeded)
		},
	}
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), validRequest()); !apperrors.IsCode(err, apperrors.CodeCapacityExceeded) {
		t.Errorf("expected capacity exceeded, got %v", err)
	}
}

func TestRegister_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("queue full")}
	svc := newTestService(repository.NewMemoryCourtSlotRepository(), pub)

	if _, err := svc.Register(context.Background(), validRequest()); err != nil {
		t.Errorf("expected success despite publish failure, got %v", err)
	}
}

func TestRegister_ConcurrentRequestsFillExactlyCapacity(t *testing.T) {
	svc := newTestService(repository.NewMemoryCourtSlotRepository(), &recordingPublisher{})

	var succeeded, full int32
	var g errgroup.Group
	for range 25 {
		g.Go(func() error {
			_, err := svc.Register(context.Background(), validRequest())
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case apperrors.IsCode(err, apperrors.CodeCapacityExceeded):
				atomic.AddInt32(&full, 1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if succeeded != 6 || full != 19 {
		t.Errorf("expected 6 successes and 19 rejections, got %d and %d", succeeded, full)
	}
}

func TestListByDateRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	t.Run("returns repository result", func(t *testing.T) {
		repo := &mockRepository{
			findFunc: func(_ context.Context, start, end time.Time) ([]*model.CourtSlot, error) {
				if !start.Equal(day(1)) || !end.Equal(day(7)) {
					t.Errorf("unexpected range %v..%v", start, end)
				}
				return []*model.CourtSlot{{Date: day(2), TimeSlot: "08:00", ReservedCourts: 3, TotalCourts: 6}}, nil
			},
		}
		slots, err := newTestService(repo, nil).ListByDateRange(context.Background(), day(1), day(7))
		if err != nil || len(slots) != 1 {
			t.Fatalf("expected 1 slot, got %v, %v", slots, err)
		}
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		slots, err := newTestService(&mockRepository{}, nil).ListByDateRange(context.Background(), day(1), day(7))
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if slots == nil || len(slots) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", slots)
		}
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		_, err := newTestService(&mockRepository{}, nil).ListByDateRange(context.Background(), day(7), day(1))
		if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})

	t.Run("same day with different clock times is valid", func(t *testing.T) {
		start := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
		end := time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)
		if _, err := newTestService(&mockRepository{}, nil).ListByDateRange(context.Background(), start, end); err != nil {
			t.Errorf("expected same calendar day to be accepted, got %v", err)
		}
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		repo := &mockRepository{
			findFunc: func(context.Context, time.Time, time.Time) ([]*model.CourtSlot, error) {
				return nil, errors.New("server selection timeout")
			},
		}
		_, err := newTestService(repo, nil).ListByDateRange(context.Background(), day(1), day(7))
		if !apperrors.IsCode(err, apperrors.CodeInternal) {
			t.Errorf("expected internal error, got %v", err)
		}
	})
}
