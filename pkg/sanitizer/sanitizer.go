package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reSingleDigitHour = regexp.MustCompile(`^([0-9]):([0-5][0-9])$`)
	reControlChars    = regexp.MustCompile(`[\p{Cc}\p{Cf}]+`)
)

func padHour(s string) string {
	return reSingleDigitHour.ReplaceAllString(s, "0${1}:${2}")
}

func stripControl(s string) string {
	return reControlChars.ReplaceAllString(s, " ")
}

// SanitizeTimeSlot trims and zero-pads the hour, so "8:00" becomes "08:00".
func SanitizeTimeSlot(input string) string {
	return Pipeline{strings.TrimSpace, padHour}.Apply(input)
}

// SanitizeTeamID keeps the team's spelling but drops control characters and extra whitespace.
func SanitizeTeamID(input string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(input)
}

func SanitizeDate(input string) string {
	return strings.TrimSpace(input)
}
