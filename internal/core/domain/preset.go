package domain

import "time"

// Preset is a named, persisted generation config.
type Preset struct {
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	Config    GenerationConfig `json:"config"`
}

// PresetInfo is one row of a preset listing. Err is set instead of Summary
// when the stored preset cannot be read.
type PresetInfo struct {
	Name      string    `json:"name"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Err       string    `json:"error,omitempty"`
}
