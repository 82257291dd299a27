package models

// Preset is a named technical/fundamental weighting.
type Preset struct {
	ID          string  `json:"id" yaml:"id" validate:"required,alphanum"`
	Name        string  `json:"name" yaml:"name" validate:"required"`
	Tech        float64 `json:"tech" yaml:"tech" validate:"min=0,max=100"`
	Fund        float64 `json:"fund" yaml:"fund" validate:"min=0,max=100"`
	Description string  `json:"description" yaml:"description"`
}

// Weights returns the preset as an un-normalized weight pair.
func (p Preset) Weights() Weights {
	return Weights{Technical: p.Tech, Fundamental: p.Fund}
}
