package alchemy

import "github.com/KirkDiggler/cultivation-idle/internal/domain/character"

// Credit applies a resolved outcome to the owning character: experience
// always, the crafted item only on success
func Credit(ch *character.Character, out Outcome) {
	ch.AddExperience(out.ExpGained)
	if out.Success && out.Quality != nil && out.ItemID != "" {
		ch.AddItem(ItemKey(out.ItemID, *out.Quality), 1)
	}
}
