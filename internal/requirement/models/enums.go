package models

import (
	"fmt"
	"strings"
	"time"

	e "github.com/talentops/rfh/internal/requirement/errors"
)

// EnumType names one of the extensible selection lists.
type EnumType string

const (
	EnumCompany    EnumType = "company"
	EnumDepartment EnumType = "department"
	EnumShift      EnumType = "shift"
	EnumJobType    EnumType = "job_type"
	EnumPriority   EnumType = "priority"
)

// predefinedValues are the fixed members shipped per enum type. Company and
// department have no built-ins and are fully registry-driven.
var predefinedValues = map[EnumType][]string{
	EnumCompany:    {},
	EnumDepartment: {},
	EnumShift:      {"day", "night", "rotational"},
	EnumJobType:    {"full_time", "part_time", "contract", "internship"},
	EnumPriority:   {"high", "medium", "low", "urgent"},
}

// EnumValue is one registered extension of a selection list. The sanitized
// value is what requirement records persist; the display value is what
// pickers show.
type EnumValue struct {
	ID             uint     `gorm:"primaryKey"`
	EnumType       EnumType `gorm:"size:32;uniqueIndex:idx_enum_type_value"`
	SanitizedValue string   `gorm:"size:128;uniqueIndex:idx_enum_type_value"`
	DisplayValue   string   `gorm:"size:128"`
	CreatedAt      time.Time
}

// ParseEnumType validates a raw enum type token.
func ParseEnumType(raw string) (EnumType, error) {
	t := EnumType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := predefinedValues[t]; !ok {
		return "", fmt.Errorf("%w: unknown enum type %q", e.ErrInvalidInput, raw)
	}
	return t, nil
}

// PredefinedEnumValues returns the fixed members of an enum type.
func PredefinedEnumValues(t EnumType) []string {
	vals := predefinedValues[t]
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// SanitizeEnumValue produces the stable storage form of a raw input:
// trimmed, lower case, whitespace runs joined with underscores. The result
// has the same shape as the predefined members, which is what makes the
// collision check meaningful.
func SanitizeEnumValue(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	return strings.Join(fields, "_")
}

// CollidesWithPredefined reports whether a sanitized value shadows a fixed
// member of the same enum type.
func CollidesWithPredefined(t EnumType, sanitized string) bool {
	for _, v := range predefinedValues[t] {
		if strings.EqualFold(v, sanitized) {
			return true
		}
	}
	return false
}
