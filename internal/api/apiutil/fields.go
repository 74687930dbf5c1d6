package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// PathID reads a positive integer path value.
func PathID(r *http.Request, key, label string) (int64, error) {
	id, err := ParsePositiveInt64Field(r.PathValue(key), label)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", label)
	}
	return id, nil
}

// ParseDate accepts RFC 3339 timestamps or plain dates and returns UTC.
func ParseDate(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(DateLayout, raw); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%s must be a valid date", field)
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(raw string, field string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := ParseDate(raw, field)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
