package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/outings/internal/model"
)

func TestEmailKey(t *testing.T) {
	assert.Equal(t, "alice@example.com", model.EmailKey("  Alice@Example.COM "))
	assert.Equal(t, "", model.EmailKey("   "))
}

func TestModeHelpers(t *testing.T) {
	assert.True(t, model.ModeFullTeam.Valid())
	assert.False(t, model.Mode("walk_on").Valid())

	assert.True(t, model.ModeCaptain.CreatesTeam())
	assert.True(t, model.ModeCaptain.SoloOnly())
	assert.False(t, model.ModeJoinTeam.CreatesTeam())
	assert.False(t, model.ModeFullTeam.SoloOnly())
}

func TestSizeThreshold(t *testing.T) {
	o := &model.Outing{TeamSizeMax: 4}
	assert.Equal(t, 4, o.SizeThreshold())
	o.TeamSizeExact = 2
	assert.Equal(t, 2, o.SizeThreshold())
}

func TestHandicapIndexUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		value float64
		valid bool
	}{
		{"number", `{"handicap": 12.4}`, 12.4, true},
		{"numeric string", `{"handicap": "8"}`, 8, true},
		{"padded string", `{"handicap": " 3.2 "}`, 3.2, true},
		{"null", `{"handicap": null}`, 0, false},
		{"empty string", `{"handicap": ""}`, 0, false},
		{"non-numeric", `{"handicap": "scratch"}`, 0, false},
		{"wrong type", `{"handicap": [1]}`, 0, false},
		{"absent", `{}`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p model.Player
			require.NoError(t, json.Unmarshal([]byte(tc.in), &p))
			assert.Equal(t, tc.valid, p.Handicap.Valid)
			if tc.valid {
				assert.Equal(t, tc.value, p.Handicap.Value)
			}
		})
	}
}

func TestHandicapIndexMarshal(t *testing.T) {
	b, err := json.Marshal(model.HandicapIndex{Value: 9.5, Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "9.5", string(b))

	b, err = json.Marshal(model.HandicapIndex{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
