// Package source holds the parsing rules shared by the exercise data
// readers: id normalization, the boolean and timestamp spellings found in
// exports, and optional numeric cells.
package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
)

// NormalizeID trims an id and drops the ".0" that float-typed exports put on
// integer ids. "nan" and "null" count as empty.
func NormalizeID(raw string) string {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "", "nan", "null", "none":
		return ""
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		if strings.ContainsAny(v, ".eE") {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return v
}

func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "nan", "null", "none":
		return false, nil
	case "true", "t", "1", "1.0", "yes", "y":
		return true, nil
	case "false", "f", "0", "0.0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

// ParseFloat returns nil for an empty cell. Only finite, non-negative
// amounts are accepted.
func ParseFloat(raw string) (*float64, error) {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "", "nan", "null", "none":
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f < 0 {
		return nil, fmt.Errorf("number %q must be finite and non-negative", raw)
	}
	return &f, nil
}

func ParseInterpretation(raw string) (exercise.Interpretation, error) {
	v := exercise.Interpretation(strings.ToLower(strings.TrimSpace(raw)))
	switch v {
	case "", "nan", "null", "none":
		return "", nil
	case exercise.Correct, exercise.Incorrect, exercise.Neutral:
		return v, nil
	}
	return "", fmt.Errorf("invalid answer interpretation %q", raw)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTime accepts the timestamp spellings of database and dataframe
// exports. An empty cell is the zero time.
func ParseTime(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "", "nan", "nat", "null", "none":
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}
