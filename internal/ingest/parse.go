package ingest

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults substituted when a present field fails numeric coercion.
// Missing fields stay absent; these apply to unparsable values only.
const (
	DefaultMEWSScore       = 2.0
	DefaultTimeCriticality = 60.0
)

var arrivalLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseFloatOr coerces raw to a float, substituting def on failure. The
// substitution is logged as a warning, never raised as an error.
func parseFloatOr(logger *zap.Logger, raw string, def float64, field string, line int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		logger.Warn("Unparsable numeric field, using default",
			zap.String("field", field),
			zap.String("value", raw),
			zap.Float64("default", def),
			zap.Int("line", line),
		)
		return def
	}
	return v
}

// parseIntOr coerces raw to an int (accepting float spellings),
// substituting def on failure.
func parseIntOr(logger *zap.Logger, raw string, def int, field string, line int) int {
	s := strings.TrimSpace(raw)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	logger.Warn("Unparsable numeric field, using default",
		zap.String("field", field),
		zap.String("value", raw),
		zap.Int("default", def),
		zap.Int("line", line),
	)
	return def
}

// parseArrival tries the accepted timestamp layouts. A nil result means
// the arrival time is unknown.
func parseArrival(logger *zap.Logger, raw string, line int) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range arrivalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	logger.Warn("Unparsable arrival timestamp, treating as unknown",
		zap.String("value", raw),
		zap.Int("line", line),
	)
	return nil
}

// triageRankFromLabel maps a categorical triage label to its numeric
// rank 1 (most urgent) through 5. Unrecognized labels get the middle
// rank 3.
func triageRankFromLabel(label string) int {
	switch strings.TrimSpace(label) {
	case "Immediate", "Emergency":
		return 1
	case "Urgent":
		return 2
	case "Semi-urgent":
		return 3
	case "Non-urgent":
		return 4
	case "Minor":
		return 5
	default:
		return 3
	}
}

// parseTriage resolves the Triage Priority cell: numeric values are used
// directly (clamped to 1..5), labels go through the category mapping.
// Returns nil when the cell is empty.
func parseTriage(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		rank := int(f)
		if rank < 1 {
			rank = 1
		}
		if rank > 5 {
			rank = 5
		}
		return &rank
	}
	rank := triageRankFromLabel(s)
	return &rank
}
