package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummarizeExcludesAbsentFromAverageAndDenominator(t *testing.T) {
	samples := []Sample{
		{Marks: 80, IsPassed: true},
		{Marks: 60, IsPassed: true},
		{Marks: 20},
		{IsAbsent: true},
	}

	summary := Summarize(samples)
	require.Equal(t, 4, summary.Total)
	require.Equal(t, 2, summary.Passed)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Absent)
	require.InDelta(t, (80.0+60+20)/3, summary.AverageMarks, 1e-9)
	require.InDelta(t, 2.0/3*100, summary.PassPercentage, 1e-9)
}

func TestSummarizeAllAbsent(t *testing.T) {
	summary := Summarize([]Sample{{IsAbsent: true}, {IsAbsent: true}})
	require.Equal(t, 2, summary.Total)
	require.Equal(t, 2, summary.Absent)
	require.Zero(t, summary.AverageMarks)
	require.Zero(t, summary.PassPercentage, "empty denominator must not fault")
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	require.Zero(t, summary.Total)
	require.Zero(t, summary.PassPercentage)
}

func TestSummarizeIdempotent(t *testing.T) {
	samples := []Sample{{Marks: 55, IsPassed: true}, {Marks: 30}}
	first := Summarize(samples)
	second := Summarize(samples)
	require.Equal(t, first, second)
}

func TestSummarizeEndToEndScenario(t *testing.T) {
	// Subject with total 100, passing 40. X scores 38 and fails, Y is
	// absent, Z scores 70 and passes.
	outcomeX, err := Compute(38, false, 100, 40)
	require.NoError(t, err)
	require.Equal(t, "D", outcomeX.Grade)
	require.False(t, outcomeX.IsPassed)

	outcomeY, err := Compute(0, true, 100, 40)
	require.NoError(t, err)
	require.True(t, outcomeY.IsAbsent)
	require.Empty(t, outcomeY.Grade)

	outcomeZ, err := Compute(70, false, 100, 40)
	require.NoError(t, err)
	require.True(t, outcomeZ.IsPassed)

	summary := Summarize([]Sample{
		{Marks: 38, IsPassed: outcomeX.IsPassed},
		{IsAbsent: true},
		{Marks: 70, IsPassed: outcomeZ.IsPassed},
	})

	require.Equal(t, 3, summary.Total)
	require.Equal(t, 1, summary.Absent)
	require.Equal(t, 1, summary.Passed)
	require.Equal(t, 1, summary.Failed)
	require.InDelta(t, (38.0+70)/2, summary.AverageMarks, 1e-9)
	require.InDelta(t, 1.0/2*100, summary.PassPercentage, 1e-9)
}
