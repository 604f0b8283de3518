package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSamplingPlan_Level2Lot10(t *testing.T) {
	plan := ResolveSamplingPlan(LevelII, 10)
	assert.Equal(t, 5, plan.SampleSize)
	assert.Equal(t, 0, plan.AcceptNumber)
	assert.Equal(t, 1, plan.RejectNumber)
	assert.Equal(t, "9-15", plan.Range)
	assert.False(t, plan.Fallback)
}

func TestResolveSamplingPlan_ZeroAcceptanceEverywhere(t *testing.T) {
	for _, level := range []InspectionLevel{LevelI, LevelII, LevelIII} {
		for lot := 2; lot <= 3200; lot++ {
			plan := ResolveSamplingPlan(level, lot)
			if plan.AcceptNumber != 0 || plan.RejectNumber != 1 {
				t.Fatalf("level %s lot %d: got accept=%d reject=%d", level, lot, plan.AcceptNumber, plan.RejectNumber)
			}
			if plan.Fallback {
				t.Fatalf("level %s lot %d: unexpected fallback", level, lot)
			}
		}
	}
}

func TestResolveSamplingPlan_MonotonicByRange(t *testing.T) {
	for _, level := range []InspectionLevel{LevelI, LevelII, LevelIII} {
		prev := 0
		for _, r := range LotRanges() {
			plan := ResolveSamplingPlan(level, r.Min)
			assert.GreaterOrEqual(t, plan.SampleSize, prev, "level %s range %s", level, r)
			prev = plan.SampleSize
		}
	}
}

func TestResolveSamplingPlan_MonotonicByLevel(t *testing.T) {
	for _, r := range LotRanges() {
		i := ResolveSamplingPlan(LevelI, r.Max).SampleSize
		ii := ResolveSamplingPlan(LevelII, r.Max).SampleSize
		iii := ResolveSamplingPlan(LevelIII, r.Max).SampleSize
		assert.LessOrEqual(t, i, ii, "range %s", r)
		assert.LessOrEqual(t, ii, iii, "range %s", r)
	}
}

func TestResolveSamplingPlan_OutOfRangeFallsBack(t *testing.T) {
	for _, level := range []InspectionLevel{LevelI, LevelII, LevelIII} {
		want := ResolveSamplingPlan(level, 3200)
		for _, lot := range []int{-5, 0, 1, 3201, 100000} {
			got := ResolveSamplingPlan(level, lot)
			assert.True(t, got.Fallback, "lot %d", lot)
			got.Fallback = false
			assert.Equal(t, want, got, "level %s lot %d", level, lot)
		}
	}
}

func TestLookupSamplingPlan_Miss(t *testing.T) {
	_, ok := LookupSamplingPlan(LevelII, 1)
	assert.False(t, ok)
	_, ok = LookupSamplingPlan(LevelII, 3201)
	assert.False(t, ok)
}

func TestResolveSamplingPlan_UnknownLevelUsesDefault(t *testing.T) {
	plan := ResolveSamplingPlan(InspectionLevel("IV"), 100)
	assert.Equal(t, LevelII, plan.Level)
	assert.Equal(t, 32, plan.SampleSize)
}

func TestParseInspectionLevel(t *testing.T) {
	cases := map[string]InspectionLevel{
		"I":           LevelI,
		"ii":          LevelII,
		"GENERAL_III": LevelIII,
		"":            LevelII,
	}
	for in, want := range cases {
		got, err := ParseInspectionLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseInspectionLevel("S-4")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
