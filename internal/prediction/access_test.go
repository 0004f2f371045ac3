package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trailcast/internal/types"
)

func TestIsClosed_DateRange(t *testing.T) {
	access := ptr("5/1-11/30")

	tests := []struct {
		name  string
		today time.Time
		want  bool
	}{
		{"before season", date(2024, time.March, 15), true},
		{"opening day", date(2024, time.May, 1), false},
		{"mid season", date(2024, time.July, 4), false},
		{"closing day", date(2024, time.November, 30), false},
		{"after season", date(2024, time.December, 1), true},
		{"time of day ignored", date(2024, time.November, 30).Add(23 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClosed(access, nil, tt.today))
		})
	}
}

func TestIsClosed_DateRangeWrapsYearEnd(t *testing.T) {
	access := ptr("Open 11/1 - 3/31 for winter use")

	assert.False(t, IsClosed(access, nil, date(2024, time.January, 15)))
	assert.False(t, IsClosed(access, nil, date(2024, time.November, 1)))
	assert.False(t, IsClosed(access, nil, date(2024, time.March, 31)))
	assert.True(t, IsClosed(access, nil, date(2024, time.April, 1)))
	assert.True(t, IsClosed(access, nil, date(2024, time.July, 4)))
	assert.True(t, IsClosed(access, nil, date(2024, time.October, 31)))
}

func TestIsClosed_Permanent(t *testing.T) {
	for _, v := range []string{"no", "NO", "  no ", "Authorized User Only", "permitted user only", "authorized/permitted user only"} {
		d := EvaluateAccess(ptr(v), nil, date(2024, time.July, 4))
		assert.True(t, d.Closed, "access %q", v)
		assert.Equal(t, types.AccessRulePermanent, d.Rule)
		assert.Equal(t, ClosedConfidence, d.Confidence)
	}
}

func TestIsClosed_OpenValues(t *testing.T) {
	today := date(2024, time.January, 15)

	assert.False(t, IsClosed(nil, nil, today))
	assert.False(t, IsClosed(ptr(""), nil, today))
	assert.False(t, IsClosed(ptr("   "), nil, today))
	assert.False(t, IsClosed(ptr("yes"), nil, today))
	assert.False(t, IsClosed(ptr("not open to e-bikes"), nil, today))

	assert.Equal(t, types.AccessRuleNone, EvaluateAccess(nil, nil, today).Rule)
	assert.Equal(t, types.AccessRuleUnparsed, EvaluateAccess(ptr("yes"), nil, today).Rule)
}

func TestIsClosed_InvalidDateRangeNeverCloses(t *testing.T) {
	today := date(2023, time.January, 15)
	for _, v := range []string{"13/1-14/2", "0/5-6/1", "2/30-3/1", "2/29-10/1"} {
		d := EvaluateAccess(ptr(v), nil, today)
		assert.False(t, d.Closed, "access %q", v)
		assert.Equal(t, types.AccessRuleUnparsed, d.Rule, "access %q", v)
	}

	// 2/29 exists in a leap year.
	d := EvaluateAccess(ptr("2/29-10/1"), nil, date(2024, time.January, 15))
	assert.Equal(t, types.AccessRuleDateRange, d.Rule)
	assert.True(t, d.Closed)
}

func TestIsClosed_Seasonally(t *testing.T) {
	access := ptr("Seasonally")
	high := ptr(3000) // ~9843 ft
	low := ptr(2895)  // ~9498 ft

	assert.True(t, IsClosed(access, high, date(2024, time.January, 10)))
	assert.True(t, IsClosed(access, high, date(2024, time.November, 1)))
	assert.False(t, IsClosed(access, high, date(2024, time.July, 10)))
	assert.False(t, IsClosed(access, low, date(2024, time.January, 10)))
	assert.False(t, IsClosed(access, nil, date(2024, time.January, 10)))

	d := EvaluateAccess(access, high, date(2024, time.January, 10))
	assert.Equal(t, types.AccessRuleSeasonal, d.Rule)
	assert.Equal(t, SeasonalClosureConfidence, d.Confidence)
}
