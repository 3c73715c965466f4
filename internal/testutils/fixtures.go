package testutils

import (
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
)

// Epoch is a fixed instant tests anchor their clocks on
var Epoch = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// CreateTestCharacter creates a level 5 character stocked for alchemy
func CreateTestCharacter(id string) *character.Character {
	ch := character.NewCharacter(id, "Disciple "+id)
	ch.Level = 5
	ch.AddResource(character.ResourceSpiritStones, 100)
	ch.AddResource("spirit_herb", 30)
	ch.AddResource("beast_core", 5)
	return ch
}

// CreateTestRecipe creates a simple common-tier recipe
func CreateTestRecipe(id string) *alchemy.Recipe {
	return &alchemy.Recipe{
		ID:              id,
		Name:            "Test " + id,
		Materials:       map[string]int64{"spirit_herb": 3},
		BaseDuration:    30 * time.Minute,
		BaseSuccessRate: 0.70,
		MinLevel:        1,
		OutputItem:      id,
		BaseQuality:     alchemy.QualityCommon,
		ExpReward:       40,
	}
}
