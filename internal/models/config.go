package models

// GeneratorConfig represents the parsed jobgen.toml configuration.
type GeneratorConfig struct {
	// Script is the command list every generated job runs.
	Script []string `toml:"script" json:"script"`
	// Concurrency bounds parallel matrix loading and job derivation.
	Concurrency int `toml:"concurrency" json:"concurrency"`
	// Template is the path of the shared job template (YAML), empty for none.
	Template  string            `toml:"template,omitempty" json:"template,omitempty"`
	Waves     WaveSize          `toml:"waves,omitempty" json:"waves,omitempty"`
	Variables map[string]string `toml:"variables,omitempty" json:"variables,omitempty"`
	Catalog   CatalogConfig     `toml:"catalog" json:"catalog"`
}

type CatalogConfig struct {
	// Strict turns catalog misses into errors instead of warnings.
	Strict bool `toml:"strict" json:"strict"`
	// Versions replaces the default version list of each listed tool.
	Versions map[string][]string `toml:"versions,omitempty" json:"versions,omitempty"`
}
