package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	courtserrors "courts/internal/courts/errors"
	"courts/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryCourtSlotRepository applies the same conditional increment as the
// Mongo repository, serialized by a mutex.
type memoryCourtSlotRepository struct {
	mu    sync.Mutex
	slots map[string]*model.CourtSlot
}

func NewMemoryCourtSlotRepository() CourtSlotRepository {
	return &memoryCourtSlotRepository{
		slots: make(map[string]*model.CourtSlot),
	}
}

func (r *memoryCourtSlotRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, end = model.NormalizeDate(start), model.NormalizeDate(end)

	r.mu.Lock()
	result := make([]*model.CourtSlot, 0)
	for _, slot := range r.slots {
		if slot.Date.Before(start) || slot.Date.After(end) {
			continue
		}
		copied := *slot
		result = append(result, &copied)
	}
	r.mu.Unlock()

	slices.SortFunc(result, func(a, b *model.CourtSlot) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.TimeSlot, b.TimeSlot)
	})
	return result, nil
}

func (r *memoryCourtSlotRepository) Register(ctx context.Context, date time.Time, timeSlot string, totalCourts int) (*model.CourtSlot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	date = model.NormalizeDate(date)
	key := model.SlotKey(date, timeSlot)
	now := time.Now().UTC().Truncate(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[key]
	if !ok {
		slot = &model.CourtSlot{
			ID:          primitive.NewObjectID().Hex(),
			Date:        date,
			TimeSlot:    timeSlot,
			TotalCourts: totalCourts,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.slots[key] = slot
	}

	if slot.ReservedCourts >= slot.TotalCourts {
		return nil, courtserrors.ErrCapacityExceeded
	}
	slot.ReservedCourts++
	slot.UpdatedAt = now

	copied := *slot
	return &copied, nil
}
