package alchemy

import (
	"maps"
	"time"
)

// Recipe is static reference data describing one craftable pill
type Recipe struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Materials       map[string]int64 `json:"materials" yaml:"materials"`
	BaseDuration    time.Duration    `json:"base_duration" yaml:"base_duration"`
	BaseSuccessRate float64          `json:"base_success_rate" yaml:"base_success_rate"`
	MinLevel        int              `json:"min_level" yaml:"min_level"`
	OutputItem      string           `json:"output_item" yaml:"output_item"`
	BaseQuality     Quality          `json:"base_quality" yaml:"base_quality"`
	ExpReward       int64            `json:"exp_reward" yaml:"exp_reward"`
}

// Clone returns a copy of r that shares no maps with it
func (r *Recipe) Clone() *Recipe {
	cp := *r
	cp.Materials = maps.Clone(r.Materials)
	return &cp
}
