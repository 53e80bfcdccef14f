package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// CourtSlot holds the reservation counter for one time slot on one date.
// Date is always stored as UTC midnight so (Date, TimeSlot) is a stable key.
type CourtSlot struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	Date           time.Time `json:"date" bson:"date"`
	TimeSlot       string    `json:"timeSlot" bson:"time_slot"`
	ReservedCourts int       `json:"reservedCourts" bson:"reserved_courts"`
	TotalCourts    int       `json:"totalCourts" bson:"total_courts"`
	CreatedAt      time.Time `json:"createdAt,omitempty" bson:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

func (s *CourtSlot) Available() int {
	return max(s.TotalCourts-s.ReservedCourts, 0)
}

func (s *CourtSlot) IsFull() bool {
	return s.ReservedCourts >= s.TotalCourts
}

// Key identifies the slot independently of the store.
func (s *CourtSlot) Key() string {
	return SlotKey(s.Date, s.TimeSlot)
}

func SlotKey(date time.Time, timeSlot string) string {
	return date.UTC().Format(DateLayout) + "|" + timeSlot
}

type ReservationRequest struct {
	Date     string `json:"date" validate:"required"`
	TimeSlot string `json:"timeSlot" validate:"required,time_slot"`
	TeamID   string `json:"teamId" validate:"required,max=100"`
}

type ReservationResponse struct {
	Message string     `json:"message"`
	Slot    *CourtSlot `json:"slot,omitempty"`
}

// ReservationEvent is published after a registration has been committed.
type ReservationEvent struct {
	Date           string    `json:"date"`
	TimeSlot       string    `json:"timeSlot"`
	TeamID         string    `json:"teamId"`
	ReservedCourts int       `json:"reservedCourts"`
	TotalCourts    int       `json:"totalCourts"`
	ReservedAt     time.Time `json:"reservedAt"`
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the UTC calendar date at midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
	}
	return NormalizeDate(t), nil
}

func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
