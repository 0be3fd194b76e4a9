package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/souschef-agent/internal/domain"
)

func TestMergePreferencesUnionsDietaryRestrictions(t *testing.T) {
	base := domain.PreferenceSet{DietaryRestrictions: []string{"vegan", "gluten-free"}}
	delta := domain.PreferenceSet{DietaryRestrictions: []string{"gluten-free", "nut-free"}}

	merged := domain.MergePreferences(base, delta)

	assert.Equal(t, []string{"vegan", "gluten-free", "nut-free"}, merged.DietaryRestrictions)
}

func TestMergePreferencesUnionIsOrderIndependentAsSet(t *testing.T) {
	a := domain.PreferenceSet{DietaryRestrictions: []string{"vegan"}}
	b := domain.PreferenceSet{DietaryRestrictions: []string{"gluten-free"}}

	ab := domain.MergePreferences(a, b)
	ba := domain.MergePreferences(b, a)

	assert.ElementsMatch(t, ab.DietaryRestrictions, ba.DietaryRestrictions)
}

func TestMergePreferencesLastWriteWinsPerScalarField(t *testing.T) {
	base := domain.PreferenceSet{
		Cuisine:        "italian",
		MaxTimeMinutes: 45,
		MaxDifficulty:  domain.DifficultyHard,
	}
	delta := domain.PreferenceSet{Cuisine: "thai"}

	merged := domain.MergePreferences(base, delta)

	assert.Equal(t, "thai", merged.Cuisine)
	assert.Equal(t, 45, merged.MaxTimeMinutes)
	assert.Equal(t, domain.DifficultyHard, merged.MaxDifficulty)
}

func TestMergePreferencesEmptyDeltaIsNoOp(t *testing.T) {
	base := domain.PreferenceSet{
		DietaryRestrictions: []string{"vegan"},
		Cuisine:             "mexican",
		MaxTimeMinutes:      30,
		MaxDifficulty:       domain.DifficultyEasy,
	}

	merged := domain.MergePreferences(base, domain.PreferenceSet{})

	assert.Equal(t, base.DietaryRestrictions, merged.DietaryRestrictions)
	assert.Equal(t, base.Cuisine, merged.Cuisine)
	assert.Equal(t, base.MaxTimeMinutes, merged.MaxTimeMinutes)
	assert.Equal(t, base.MaxDifficulty, merged.MaxDifficulty)
}

func TestPreferenceSetSummary(t *testing.T) {
	empty := domain.PreferenceSet{}
	assert.Equal(t, "", empty.Summary())

	full := domain.PreferenceSet{
		DietaryRestrictions: []string{"vegan", "nut-free"},
		Cuisine:             "thai",
		MaxTimeMinutes:      30,
		MaxDifficulty:       domain.DifficultyEasy,
	}
	summary := full.Summary()
	assert.Contains(t, summary, "vegan, nut-free")
	assert.Contains(t, summary, "thai")
	assert.Contains(t, summary, "30 minutes")
	assert.Contains(t, summary, "easy")
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, domain.DifficultyEasy, domain.ParseDifficulty(" Easy "))
	assert.Equal(t, domain.DifficultyMedium, domain.ParseDifficulty("MEDIUM"))
	assert.Equal(t, domain.Difficulty(""), domain.ParseDifficulty("impossible"))
}

func TestDifficultyRank(t *testing.T) {
	assert.True(t, domain.DifficultyEasy.Rank() < domain.DifficultyMedium.Rank())
	assert.True(t, domain.DifficultyMedium.Rank() < domain.DifficultyHard.Rank())
	assert.Equal(t, -1, domain.Difficulty("unknown").Rank())
}
