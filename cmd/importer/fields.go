package importer

import (
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// ParseMALID coerces the external id cell: a real number truncated to
// an integer. A row whose id does not parse this way is rejected.
func ParseMALID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("missing mal_id")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("unparseable mal_id %q", raw)
	}

	return int64(f), nil
}

// ParseScore coerces a score cell to a floating-point value. Any
// failure yields absent; unlike episode counts, scores get no
// digit-scan fallback.
func ParseScore(raw string) sql.NullFloat64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return sql.NullFloat64{}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: f, Valid: true}
}

// ParseEpisodes coerces an episode-count cell: a real number truncated
// to an integer, else the first contiguous run of digits in the text
// ("12 eps" counts as 12), else absent.
func ParseEpisodes(raw string) sql.NullInt64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return sql.NullInt64{}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return sql.NullInt64{Int64: int64(f), Valid: true}
	}

	if m := digitRun.FindString(s); m != "" {
		if n, err := strconv.ParseInt(m, 10, 64); err == nil {
			return sql.NullInt64{Int64: n, Valid: true}
		}
	}

	return sql.NullInt64{}
}
