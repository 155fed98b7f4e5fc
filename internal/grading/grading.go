// Package grading converts raw marks into grades, pass status and
// percentages, and rolls stored results up into aggregate statistics. It is
// pure: callers invoke it from write paths and reports, persistence stays
// outside.
package grading

import "errors"

// ErrMarksOutOfRange indicates marks outside [0, total marks].
var ErrMarksOutOfRange = errors.New("marks outside the 0..total range")

// ErrInvalidScheme indicates a marking scheme with total marks of zero or
// passing marks above total marks.
var ErrInvalidScheme = errors.New("invalid marking scheme")

// Outcome is the derived result for one (student, subject, exam) triple.
// For absent students Grade is empty and Percentage is zero; such results
// are excluded from averages by the aggregator.
type Outcome struct {
	Grade      string
	Percentage float64
	IsPassed   bool
	IsAbsent   bool
}

// gradeBands is the threshold table, inclusive lower bounds evaluated
// highest first. Anything below the last band is an F.
var gradeBands = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{80, "A"},
	{70, "B+"},
	{60, "B"},
	{50, "C+"},
	{40, "C"},
	{33, "D"},
}

// Letter maps a percentage to its letter grade.
func Letter(percentage float64) string {
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.grade
		}
	}
	return "F"
}

// Compute derives the outcome for one result. Pass status compares marks
// against the subject's passing marks and is independent of the letter
// grade: a grade D can still fail when passing marks sit above 33% of total.
func Compute(marks float64, isAbsent bool, totalMarks, passingMarks uint) (Outcome, error) {
	if totalMarks == 0 || passingMarks > totalMarks {
		return Outcome{}, ErrInvalidScheme
	}
	if isAbsent {
		return Outcome{IsAbsent: true}, nil
	}
	if marks < 0 || marks > float64(totalMarks) {
		return Outcome{}, ErrMarksOutOfRange
	}

	percentage := marks / float64(totalMarks) * 100

	return Outcome{
		Grade:      Letter(percentage),
		Percentage: percentage,
		IsPassed:   marks >= float64(passingMarks),
	}, nil
}
