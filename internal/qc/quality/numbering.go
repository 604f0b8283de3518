package quality

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	InspectionPrefix = "QC"
	CAPAPrefix       = "CAPA"
)

// FormatNumber renders {prefix}-{yyyy}-{6 digit sequence}.
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, seq)
}

// FormatInspectionNumber renders QC-{yyyy}-{000000}.
func FormatInspectionNumber(year, seq int) string {
	return FormatNumber(InspectionPrefix, year, seq)
}

// ParseSequence extracts the trailing numeric suffix of an issued number.
func ParseSequence(number string) (int, error) {
	i := strings.LastIndex(number, "-")
	seq, err := strconv.Atoi(number[i+1:])
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("invalid sequence in %q", number)
	}
	return seq, nil
}

// NextSequence returns the sequence following latest, or 1 when nothing was issued yet.
func NextSequence(latest string) (int, error) {
	if latest == "" {
		return 1, nil
	}
	seq, err := ParseSequence(latest)
	if err != nil {
		return 0, err
	}
	return seq + 1, nil
}

// YearBounds returns [Jan 1 of year, Jan 1 of year+1) in loc.
func YearBounds(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}
