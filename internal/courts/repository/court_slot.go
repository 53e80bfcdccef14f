package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	courtserrors "courts/internal/courts/errors"
	"courts/pkg/config"
	"courts/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Court_slots"
)

type CourtSlotRepository interface {
	// FindByDateRange returns slots with start <= date <= end, ordered by date then time slot.
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error)
	// Register creates the slot on first use and reserves one court in a single
	// atomic step. A full slot yields ErrCapacityExceeded and is left untouched.
	Register(ctx context.Context, date time.Time, timeSlot string, totalCourts int) (*model.CourtSlot, error)
}

type mongoCourtSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCourtSlotRepository(cfg *config.Config) CourtSlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCourtSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout keeps the caller's deadline when it is the tighter one.
func (r *mongoCourtSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCourtSlotRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date": bson.M{
			"$gte": model.NormalizeDate(start),
			"$lte": model.NormalizeDate(end),
		},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time_slot", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find court slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := make([]*model.CourtSlot, 0)
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode court slots: %w", err)
	}
	for _, slot := range slots {
		slot.Date = slot.Date.UTC()
	}

	return slots, nil
}

func (r *mongoCourtSlotRepository) Register(ctx context.Context, date time.Time, timeSlot string, totalCourts int) (*model.CourtSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	date = model.NormalizeDate(date)
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := r.ensureSlot(ctx, date, timeSlot, totalCourts, now); err != nil {
		return nil, err
	}

	filter := bson.M{
		"date":      date,
		"time_slot": timeSlot,
		"$expr": bson.M{
			"$lt": bson.A{"$reserved_courts", "$total_courts"},
		},
	}
	update := bson.M{
		"$inc": bson.M{"reserved_courts": 1},
		"$set": bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var slot model.CourtSlot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, courtserrors.ErrCapacityExceeded
		}
		return nil, fmt.Errorf("failed to reserve court slot: %w", err)
	}

	slot.Date = slot.Date.UTC()
	return &slot, nil
}

// ensureSlot upserts an empty slot. Two first registrations may race on the
// unique (date, time_slot) index; the loser sees a duplicate key and proceeds.
func (r *mongoCourtSlotRepository) ensureSlot(ctx context.Context, date time.Time, timeSlot string, totalCourts int, now time.Time) error {
	filter := bson.M{"date": date, "time_slot": timeSlot}
	update := bson.M{
		"$setOnInsert": bson.M{
			"reserved_courts": 0,
			"total_courts":    totalCourts,
			"created_at":      now,
			"updated_at":      now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create court slot: %w", err)
	}
	return nil
}
