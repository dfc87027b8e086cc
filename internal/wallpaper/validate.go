package wallpaper

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Dimension bounds accepted by the render service.
const (
	MinDimension  = 512
	MaxDimension  = 4096
	DimensionStep = 8
)

// FieldErrors reports per-field validation failures.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid generation request: " + strings.Join(fields, ", ")
}

// Validate checks every field against its bounds. It always runs before any
// external call is made.
func (r GenerationRequest) Validate() error {
	errs := FieldErrors{}
	checkText(errs, "city", r.City, 200)
	checkText(errs, "weather", r.Weather, 500)
	checkText(errs, "datetime", r.Moment, 200)
	checkDimension(errs, "width", r.Width)
	checkDimension(errs, "height", r.Height)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateDimensions checks a width/height pair alone; the synchronous
// endpoints share the render service's bounds without the scene fields.
func ValidateDimensions(width, height int) error {
	errs := FieldErrors{}
	checkDimension(errs, "width", width)
	checkDimension(errs, "height", height)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkText(errs FieldErrors, field, value string, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n == 0:
		errs[field] = "must not be empty"
	case n > max:
		errs[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}

func checkDimension(errs FieldErrors, field string, value int) {
	switch {
	case value < MinDimension || value > MaxDimension:
		errs[field] = fmt.Sprintf("must be between %d and %d", MinDimension, MaxDimension)
	case value%DimensionStep != 0:
		errs[field] = fmt.Sprintf("must be divisible by %d", DimensionStep)
	}
}
