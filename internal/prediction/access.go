package prediction

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"trailcast/internal/types"
)

const (
	// ClosedConfidence is reported for explicit closures (permanent or dated).
	ClosedConfidence = 100

	// SeasonalClosureConfidence is reported when a generic "seasonally" closure
	// is inferred from month and elevation. The inference is itself a guess.
	SeasonalClosureConfidence = 70

	// seasonalClosureElevationFt is the lowest trail elevation at which a
	// "seasonally" trail is assumed closed during the snow season.
	seasonalClosureElevationFt = 9500

	// FeetPerMeter converts metric elevations for the imperial thresholds.
	FeetPerMeter = 3.28084
)

// permanentClosures are access values that close a trail regardless of date.
var permanentClosures = map[string]bool{
	"no":                             true,
	"authorized user only":           true,
	"permitted user only":            true,
	"authorized/permitted user only": true,
}

// dateRangePattern matches "M/D-M/D" with one or two digits per field.
var dateRangePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})\s*-\s*(\d{1,2})/(\d{1,2})`)

// AccessDecision is the outcome of evaluating a trail's access text.
type AccessDecision struct {
	Closed     bool
	Rule       types.AccessRule
	Confidence int
}

// IsClosed reports whether the access text closes the trail on today.
func IsClosed(access *string, elevationMinM *int, today time.Time) bool {
	return EvaluateAccess(access, elevationMinM, today).Closed
}

// EvaluateAccess applies the access rules in order: empty text, permanent
// closure, explicit date range, the generic "seasonally" heuristic, and
// finally anything else, which never closes a trail.
//
// A date range names the open season. When the close date falls before the
// open date in the calendar ("11/1-3/31") the season wraps through year end.
func EvaluateAccess(access *string, elevationMinM *int, today time.Time) AccessDecision {
	if access == nil {
		return AccessDecision{Rule: types.AccessRuleNone}
	}
	text := strings.ToLower(strings.TrimSpace(*access))
	if text == "" {
		return AccessDecision{Rule: types.AccessRuleNone}
	}

	if permanentClosures[text] {
		return AccessDecision{Closed: true, Rule: types.AccessRulePermanent, Confidence: ClosedConfidence}
	}

	if m := dateRangePattern.FindStringSubmatch(text); m != nil {
		open, okOpen := monthDay(today, m[1], m[2])
		closeDate, okClose := monthDay(today, m[3], m[4])
		if !okOpen || !okClose {
			return AccessDecision{Rule: types.AccessRuleUnparsed}
		}
		return AccessDecision{
			Closed:     outsideSeason(types.DateOf(today), open, closeDate),
			Rule:       types.AccessRuleDateRange,
			Confidence: ClosedConfidence,
		}
	}

	if text == "seasonally" {
		closed := InSnowSeason(today) &&
			elevationMinM != nil &&
			float64(*elevationMinM)*FeetPerMeter > seasonalClosureElevationFt
		return AccessDecision{Closed: closed, Rule: types.AccessRuleSeasonal, Confidence: SeasonalClosureConfidence}
	}

	return AccessDecision{Rule: types.AccessRuleUnparsed}
}

// InSnowSeason reports whether t falls in November through April.
func InSnowSeason(t time.Time) bool {
	m := t.Month()
	return m >= time.November || m <= time.April
}

// monthDay builds midnight of month/day in today's year and location. It
// rejects out-of-range fields and dates that do not exist in that year.
func monthDay(today time.Time, month, day string) (time.Time, bool) {
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(today.Year(), time.Month(mo), d, 0, 0, 0, 0, today.Location())
	if t.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return t, true
}

func outsideSeason(today, open, closeDate time.Time) bool {
	if !closeDate.Before(open) {
		return today.Before(open) || today.After(closeDate)
	}
	return today.After(closeDate) && today.Before(open)
}
