package producthunt

import (
	"fmt"
	"strings"
	"time"

	"phposts/internal/domain"
)

const (
	dateLayout = time.DateOnly
	day        = 24 * time.Hour
)

// ParseDate reads a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)

	t, err := time.ParseInLocation(dateLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w (value = %q)", ErrInvalidDateFormat, s)
	}

	return t, nil
}

func ComputeWindow(date string) (domain.DateWindow, error) {
	t, err := ParseDate(date)
	if err != nil {
		return domain.DateWindow{}, err
	}

	return WindowFor(t), nil
}

// WindowFor returns [midnight, next midnight) of the UTC day containing t.
func WindowFor(t time.Time) domain.DateWindow {
	after := t.UTC().Truncate(day)

	return domain.DateWindow{
		After:  after.Format(time.RFC3339),
		Before: after.Add(day).Format(time.RFC3339),
	}
}
