package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairwaylabs/outings/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{"single day", date(2026, time.June, 14), date(2026, time.June, 14), "Jun 14, 2026"},
		{"no end date", date(2026, time.June, 14), time.Time{}, "Jun 14, 2026"},
		{"same month", date(2026, time.June, 14), date(2026, time.June, 15), "Jun 14-15, 2026"},
		{"same year", date(2026, time.June, 30), date(2026, time.July, 1), "Jun 30 - Jul 1, 2026"},
		{"across years", date(2026, time.December, 31), date(2027, time.January, 1), "Dec 31, 2026 - Jan 1, 2027"},
		{"no start date", time.Time{}, time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDateRange(tt.start, tt.end))
		})
	}
}

func TestBuildRuleSummary(t *testing.T) {
	o := &model.Outing{
		TeamSizeExact:   4,
		MemberOnly:      true,
		RequirePartner:  true,
		RequireHandicap: true,
		HandicapMin:     0,
		HandicapMax:     20.5,
		AllowedModes:    []model.Mode{model.ModeFullTeam, model.ModeJoinTeam},
	}
	got := buildRuleSummary(o)
	assert.Equal(t, []string{
		"Teams of exactly 4 players",
		"Members only",
		"Partner required",
		"Signup options: full team, join team",
		"Handicap index between 0 and 20.5 required",
	}, got)

	got = buildRuleSummary(&model.Outing{TeamSizeMin: 2, TeamSizeMax: 4, AllowGuests: true})
	assert.Equal(t, []string{"Teams of 2 to 4 players", "Guests welcome"}, got)

	got = buildRuleSummary(&model.Outing{TeamSizeMin: 3, TeamSizeMax: 3})
	assert.Equal(t, []string{"Teams of 3 players", "No guests"}, got)
}
