package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchetypes_Embedded(t *testing.T) {
	all := Archetypes()

	require.NotEmpty(t, all)
	ids := make([]string, 0, len(all))
	for _, a := range all {
		ids = append(ids, a.ID)
		assert.NotEmpty(t, a.Sequence, "archetype %s", a.ID)
	}
	assert.Contains(t, ids, "case-presentation")
	assert.Contains(t, ids, "journal-club")
}

func TestArchetypes_ReturnsCopy(t *testing.T) {
	first := Archetypes()
	first[0].ID = "mutated"

	second := Archetypes()
	assert.NotEqual(t, "mutated", second[0].ID)
}

func TestLookupArchetype(t *testing.T) {
	a, ok := LookupArchetype("journal-club")
	require.True(t, ok)
	assert.Contains(t, a.Sequence, "pico")

	_, ok = LookupArchetype("podcast")
	assert.False(t, ok)
}

func TestParseArchetypes_Errors(t *testing.T) {
	_, err := ParseArchetypes([]byte("archetypes: [{name: x, sequence: [title]}]"))
	assert.Error(t, err)

	_, err = ParseArchetypes([]byte("archetypes: [{id: x}]"))
	assert.Error(t, err)

	_, err = ParseArchetypes([]byte("archetypes: ["))
	assert.Error(t, err)
}

func TestTemplateCatalog(t *testing.T) {
	c := TemplateCatalog()

	assert.Len(t, c.Archetypes, len(Archetypes()))
	assert.Len(t, c.SlideTypes, len(SlideTiming)-1)
	for i := 1; i < len(c.SlideTypes); i++ {
		assert.Less(t, c.SlideTypes[i-1].Type, c.SlideTypes[i].Type)
	}
	for _, info := range c.SlideTypes {
		assert.NotEqual(t, "default", info.Type)
		assert.NotNil(t, info.RequiredFields)
	}
}

func TestSlideTiming_Default(t *testing.T) {
	assert.Equal(t, 60, SlideTiming["default"])
}

func TestLabRange_PlausibilityBand(t *testing.T) {
	r, ok := LookupLab("sodium")
	require.True(t, ok)

	assert.InDelta(t, 13.5, r.PlausibleLow(), 1e-9)
	assert.InDelta(t, 1450, r.PlausibleHigh(), 1e-9)
}

func TestLabPatterns(t *testing.T) {
	tests := []struct {
		lab   string
		text  string
		value string
	}{
		{"sodium", "Sodium: 128 on admission", "128"},
		{"potassium", "K 5.9", "5.9"},
		{"creatinine", "creatinine of 2.1", "2.1"},
		{"inr", "the INR is 3.4", "3.4"},
		{"hemoglobin", "Hgb=9.8", "9.8"},
	}

	for _, tt := range tests {
		t.Run(tt.lab, func(t *testing.T) {
			r, ok := LookupLab(tt.lab)
			require.True(t, ok)
			m := r.Pattern.FindStringSubmatch(tt.text)
			require.Len(t, m, 2)
			assert.Equal(t, tt.value, m[1])
		})
	}
}
