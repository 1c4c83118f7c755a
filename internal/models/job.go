package models

// JobBody is the CI definition of a single job as written to the pipeline
// document.
type JobBody struct {
	Image         string            `yaml:"image,omitempty" json:"image,omitempty"`
	Stage         string            `yaml:"stage,omitempty" json:"stage,omitempty"`
	Variables     map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
	Script        []string          `yaml:"script" json:"script"`
	Tags          []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Interruptible bool              `yaml:"interruptible" json:"interruptible"`
}

// NamedJob is a rendered job together with its globally unique name.
type NamedJob struct {
	Name string
	Body JobBody
	// Descriptor is nil for jobs that arrived already rendered.
	Descriptor JobDescriptor
}

// MatrixEntry is one element of the job matrix produced by the external
// combinatorics tool.
type MatrixEntry struct {
	// Name overrides the name derived from Descriptor.
	Name       string            `yaml:"name,omitempty" json:"name,omitempty"`
	Descriptor JobDescriptor     `yaml:"descriptor,omitempty" json:"descriptor,omitempty"`
	Image      string            `yaml:"image,omitempty" json:"image,omitempty"`
	Variables  map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// Matrix is the parsed job matrix document.
type Matrix struct {
	Jobs []MatrixEntry `yaml:"jobs" json:"jobs"`
}
