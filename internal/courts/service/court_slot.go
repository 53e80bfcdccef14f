package service

import (
	"context"
	"errors"
	"time"

	courtserrors "courts/internal/courts/errors"
	"courts/internal/courts/events"
	"courts/internal/courts/repository"
	"courts/internal/courts/validator"
	"courts/pkg/config"
	apperrors "courts/pkg/errors"
	"courts/pkg/model"
	"courts/pkg/sanitizer"
)

type CourtSlotService interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error)
	Register(ctx context.Context, req *model.ReservationRequest) (*model.CourtSlot, error)
}

type courtSlotService struct {
	repo      repository.CourtSlotRepository
	validator *validator.CourtSlotValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewCourtSlotService(
	repo repository.CourtSlotRepository,
	validator *validator.CourtSlotValidator,
	publisher events.Publisher,
	cfg *config.Config,
) CourtSlotService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &courtSlotService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *courtSlotService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.CourtSlot, error) {
	start, end = model.NormalizeDate(start), model.NormalizeDate(end)
	if start.After(end) {
		return nil, apperrors.InvalidInput(courtserrors.ErrInvalidDateRange.Error()).WithDetails(map[string]any{
			"startDate": start.Format(model.DateLayout),
			"endDate":   end.Format(model.DateLayout),
		})
	}

	slots, err := s.repo.FindByDateRange(ctx, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to list court slots",
			"start_date", start.Format(model.DateLayout),
			"end_date", end.Format(model.DateLayout),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve court slots", err)
	}
	if slots == nil {
		slots = []*model.CourtSlot{}
	}

	return slots, nil
}

func (s *courtSlotService) Register(ctx context.Context, req *model.ReservationRequest) (*model.CourtSlot, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Reservation request cannot be empty")
	}

	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	slot, err := s.repo.Register(ctx, date, req.TimeSlot, s.cfg.TotalCourts)
	if err != nil {
		if errors.Is(err, courtserrors.ErrCapacityExceeded) {
			s.cfg.Log.Info("Court slot is fully booked",
				"date", date.Format(model.DateLayout),
				"time_slot", req.TimeSlot,
				"team_id", req.TeamID,
			)
			return nil, apperrors.CapacityExceeded("Time slot is fully booked", map[string]any{
				"date":     date.Format(model.DateLayout),
				"timeSlot": req.TimeSlot,
			})
		}
		s.cfg.Log.Error("Failed to register reservation",
			"date", date.Format(model.DateLayout),
			"time_slot", req.TimeSlot,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to register reservation", err)
	}

	s.cfg.Log.Info("Court reserved successfully",
		"id", slot.ID,
		"date", date.Format(model.DateLayout),
		"time_slot", slot.TimeSlot,
		"team_id", req.TeamID,
		"reserved_courts", slot.ReservedCourts,
		"total_courts", slot.TotalCourts,
	)

	s.publishReserved(ctx, slot, req.TeamID)
	return slot, nil
}

func (s *courtSlotService) publishReserved(ctx context.Context, slot *model.CourtSlot, teamID string) {
	event := model.ReservationEvent{
		Date:           slot.Date.Format(model.DateLayout),
		TimeSlot:       slot.TimeSlot,
		TeamID:         teamID,
		ReservedCourts: slot.ReservedCourts,
		TotalCourts:    slot.TotalCourts,
		ReservedAt:     slot.UpdatedAt,
	}
	if err := s.publisher.PublishReserved(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"key", slot.Key(),
			"error", err,
		)
	}
}

func (s *courtSlotService) sanitize(req *model.ReservationRequest) {
	req.Date = sanitizer.SanitizeDate(req.Date)
	req.TimeSlot = sanitizer.SanitizeTimeSlot(req.TimeSlot)
	req.TeamID = sanitizer.SanitizeTeamID(req.TeamID)
}

func (s *courtSlotService) validate(req *model.ReservationRequest) error {
	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.Validation(validationErrs[0].Message, map[string]any{"errors": validationErrs})
		}
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
