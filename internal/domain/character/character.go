package character

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/luck"
)

// Well-known resource pools. Crafting materials share the same map.
const (
	ResourceSpiritStones = "spirit_stones"
	ResourceJade         = "jade"
)

// Character is a player avatar advanced by the tick scheduler and the
// alchemy service. Only the owning service mutates it, under the
// per-character lock.
type Character struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	Realm        int    `json:"realm"`
	AlchemyLevel int    `json:"alchemy_level"`
	CaveLevel    int    `json:"cave_level"`

	// LastTickAt is the last fully processed cycle boundary; nil until the
	// character is first observed active
	LastTickAt *time.Time `json:"last_tick_at,omitempty"`

	Experience int64            `json:"experience"`
	Resources  map[string]int64 `json:"resources"`
	Inventory  map[string]int   `json:"inventory"`

	// DelayActive doubles the next cycle's interval and clears after one cycle
	DelayActive bool `json:"delay_active"`

	// Luck is always within [0,100]; write it with SetLuck
	Luck int `json:"luck"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCharacter creates a level 1 character with neutral luck
func NewCharacter(id, name string) *Character {
	return &Character{
		ID:        id,
		Name:      name,
		Level:     1,
		Luck:      luck.Baseline,
		Resources: make(map[string]int64),
		Inventory: make(map[string]int),
	}
}

// SetLuck stores luck clamped to [0,100]
func (c *Character) SetLuck(value int) {
	c.Luck = luck.Clamp(value)
}

// AddLuck shifts luck by delta, clamped
func (c *Character) AddLuck(delta int) {
	c.SetLuck(c.Luck + delta)
}

// Resource returns the amount held in a pool
func (c *Character) Resource(name string) int64 {
	return c.Resources[name]
}

// AddResource credits (or debits, for negative amounts) a pool, never below zero
func (c *Character) AddResource(name string, amount int64) {
	if c.Resources == nil {
		c.Resources = make(map[string]int64)
	}
	c.Resources[name] += amount
	if c.Resources[name] < 0 {
		c.Resources[name] = 0
	}
}

// AddExperience credits progress, never below zero
func (c *Character) AddExperience(amount int64) {
	c.Experience += amount
	if c.Experience < 0 {
		c.Experience = 0
	}
}

// MissingMaterials lists the materials the character cannot cover
func (c *Character) MissingMaterials(cost map[string]int64) map[string]int64 {
	missing := make(map[string]int64)
	for name, qty := range cost {
		if have := c.Resources[name]; have < qty {
			missing[name] = qty - have
		}
	}
	return missing
}

// Deduct removes the full cost or nothing at all
func (c *Character) Deduct(cost map[string]int64) error {
	if missing := c.MissingMaterials(cost); len(missing) > 0 {
		return fmt.Errorf("insufficient materials: %v", missing)
	}
	for name, qty := range cost {
		c.Resources[name] -= qty
	}
	return nil
}

// AddItem credits a crafted item
func (c *Character) AddItem(key string, qty int) {
	if c.Inventory == nil {
		c.Inventory = make(map[string]int)
	}
	c.Inventory[key] += qty
}

// ItemCount returns how many of an item the character holds
func (c *Character) ItemCount(key string) int {
	return c.Inventory[key]
}

// Clone returns a deep copy so a failed operation can discard its changes
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}

	cp := *c
	if c.LastTickAt != nil {
		t := *c.LastTickAt
		cp.LastTickAt = &t
	}
	cp.Resources = make(map[string]int64, len(c.Resources))
	for k, v := range c.Resources {
		cp.Resources[k] = v
	}
	cp.Inventory = make(map[string]int, len(c.Inventory))
	for k, v := range c.Inventory {
		cp.Inventory[k] = v
	}
	return &cp
}
