package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInspectionNumber(t *testing.T) {
	assert.Equal(t, "QC-2025-000042", FormatInspectionNumber(2025, 42))
	assert.Equal(t, "CAPA-2026-000001", FormatNumber(CAPAPrefix, 2026, 1))
}

func TestNextSequence(t *testing.T) {
	seq, err := NextSequence("")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	seq, err = NextSequence("QC-2025-000007")
	require.NoError(t, err)
	assert.Equal(t, 8, seq)
	assert.Equal(t, "QC-2025-000008", FormatInspectionNumber(2025, seq))

	_, err = NextSequence("QC-2025-abc")
	assert.Error(t, err)
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2025, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}
