package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDefect_KnownCodes(t *testing.T) {
	assert.Equal(t, SeverityCritical, ClassifyDefect(MethodSilkscreen, "UNDER_CURE").Severity)
	assert.Equal(t, "Under Cured", ClassifyDefect(MethodSilkscreen, "UNDER_CURE").DisplayName)

	// same code, different method, different severity
	assert.Equal(t, SeverityMajor, ClassifyDefect(MethodSilkscreen, "GHOSTING").Severity)
	assert.Equal(t, SeverityMinor, ClassifyDefect(MethodSublimation, "GHOSTING").Severity)

	assert.Equal(t, SeverityCritical, ClassifyDefect(MethodEmbroidery, "WRONG_COLOR").Severity)
	assert.Equal(t, "Color Mismatch", ClassifyDefect(MethodDTF, "COLOR_OFF").DisplayName)
}

func TestClassifyDefect_EveryCatalogEntryRoundTrips(t *testing.T) {
	for _, m := range Methods {
		types := DefectTypes(m)
		assert.NotEmpty(t, types, m)
		for _, dt := range types {
			assert.Equal(t, dt, ClassifyDefect(m, dt.Code))
		}
	}
}

func TestClassifyDefect_UnknownFallsBackToMinor(t *testing.T) {
	got := ClassifyDefect(MethodDTF, "SOMETHING_ELSE")
	assert.Equal(t, DefectType{Code: "SOMETHING_ELSE", DisplayName: "SOMETHING_ELSE", Severity: SeverityMinor}, got)

	// unknown method has an empty catalog
	got = ClassifyDefect(ProductionMethod("SCREENLESS"), "UNDER_CURE")
	assert.Equal(t, SeverityMinor, got.Severity)
	assert.Equal(t, "UNDER_CURE", got.DisplayName)
	assert.Empty(t, DefectTypes(ProductionMethod("SCREENLESS")))
}

func TestDefectTypes_ReturnsCopy(t *testing.T) {
	types := DefectTypes(MethodSilkscreen)
	types[0].Severity = SeverityMinor
	assert.Equal(t, SeverityMajor, ClassifyDefect(MethodSilkscreen, "MISALIGNMENT").Severity)
}

func TestParseCostAttribution(t *testing.T) {
	a, err := ParseCostAttribution("")
	assert.NoError(t, err)
	assert.Equal(t, AttributionCompany, a)

	a, err = ParseCostAttribution("supplier")
	assert.NoError(t, err)
	assert.Equal(t, AttributionSupplier, a)

	_, err = ParseCostAttribution("NOBODY")
	assert.True(t, IsValidation(err))
}
