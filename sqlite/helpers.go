package sqlite

import (
	"fmt"
	"time"
)

// timeLayout keeps sub-second precision so entries committed in quick
// succession still sort correctly when compared by time.
const timeLayout = time.RFC3339Nano

// parseTime parses a timestamp stored with timeLayout.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
