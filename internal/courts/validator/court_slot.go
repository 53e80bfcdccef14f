package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"courts/pkg/logger"
	"courts/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	hourlySlotRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):00$`)
	timeSlotRegex   = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CourtSlotValidator struct {
	validate *validator.Validate
	openAt   string
	closeAt  string
	hourly   bool
	logger   *logger.Logger
}

// NewCourtSlotValidator accepts slots from openAt through closeAt, both HH:MM and inclusive.
// With hourly set, only whole hours (HH:00) are valid labels.
func NewCourtSlotValidator(log *logger.Logger, openAt, closeAt string, hourly bool) *CourtSlotValidator {
	v := validator.New()

	slotRegex := timeSlotRegex
	if hourly {
		slotRegex = hourlySlotRegex
	}
	validateTimeSlot := func(fl validator.FieldLevel) bool {
		return slotRegex.MatchString(fl.Field().String())
	}
	if err := v.RegisterValidation("time_slot", validateTimeSlot); err != nil {
		log.Fatal("Failed to register 'time_slot' validator", "error", err)
	}

	log.Info("Court slot validator initialized successfully", "open_at", openAt, "close_at", closeAt, "hourly", hourly)

	return &CourtSlotValidator{
		validate: v,
		openAt:   openAt,
		closeAt:  closeAt,
		hourly:   hourly,
		logger:   log,
	}
}

func (v *CourtSlotValidator) Validate(req *model.ReservationRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var problems ValidationErrors

	if _, err := model.ParseDate(req.Date); err != nil {
		problems = append(problems, ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD or RFC3339",
		})
	}

	// HH:MM strings order lexically.
	if req.TimeSlot < v.openAt || req.TimeSlot > v.closeAt {
		problems = append(problems, ValidationError{
			Field:   "timeSlot",
			Message: fmt.Sprintf("timeSlot must be between %s and %s", v.openAt, v.closeAt),
		})
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}

func (v *CourtSlotValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := jsonFieldName(err.Field())
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "time_slot":
			if v.hourly {
				message = fmt.Sprintf("%s must be a whole hour in HH:00 format (e.g., 08:00)", field)
			} else {
				message = fmt.Sprintf("%s must be in HH:MM format (e.g., 08:30)", field)
			}
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

func jsonFieldName(structField string) string {
	switch structField {
	case "TeamID":
		return "teamId"
	case "TimeSlot":
		return "timeSlot"
	case "Date":
		return "date"
	default:
		return structField
	}
}
