package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category keys of a job descriptor.
const (
	HostCompiler     = "host_compiler"
	DeviceCompiler   = "device_compiler"
	CMake            = "cmake"
	Boost            = "boost"
	Ubuntu           = "ubuntu"
	CXXStandard      = "cxx_standard"
	BuildType        = "build_type"
	JobExecutionType = "job_execution_type"
	SMLevel          = "sm_level"
	CUDABackend      = "alpaka_ACC_GPU_CUDA_ENABLE"
	HIPBackend       = "alpaka_ACC_GPU_HIP_ENABLE"
)

// Compiler names.
const (
	GCC       = "gcc"
	Clang     = "clang"
	NVCC      = "nvcc"
	ClangCUDA = "clang-cuda"
	HIPCC     = "hipcc"
	NVHPC     = "nvhpc"
)

// Values of the job_execution_type category.
const (
	ExecutionCompileOnly = "compile_only"
	ExecutionRuntime     = "runtime"
)

// BackendOff is the version of a backend flag that is switched off.
const BackendOff = "off"

// Software is a (name, version) pair of one tool in a job.
type Software struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

func (s Software) String() string {
	return s.Name + s.Version
}

// UnmarshalYAML accepts either a {name, version} mapping or a [name, version]
// sequence.
func (s *Software) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var pair []string
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: software pair must have 2 elements, got %d", node.Line, len(pair))
		}
		s.Name, s.Version = pair[0], pair[1]
		return nil
	case yaml.MappingNode:
		type plain Software
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*s = Software(p)
		return nil
	default:
		return fmt.Errorf("line %d: software must be a mapping or a sequence", node.Line)
	}
}

// JobDescriptor maps a category key to the software chosen for it.
// Descriptors are read-only once produced by the matrix builder.
type JobDescriptor map[string]Software

// Get returns the software for key and whether it is present.
func (d JobDescriptor) Get(key string) (Software, bool) {
	sw, ok := d[key]
	return sw, ok
}

// Has reports whether key is present.
func (d JobDescriptor) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Name returns the software name for key, or "" when absent.
func (d JobDescriptor) Name(key string) string {
	return d[key].Name
}

// Version returns the software version for key, or "" when absent.
func (d JobDescriptor) Version(key string) string {
	return d[key].Version
}

// BackendEnabled reports whether the backend flag key is present and not off.
func (d JobDescriptor) BackendEnabled(key string) bool {
	sw, ok := d[key]
	return ok && !strings.EqualFold(sw.Version, BackendOff)
}

// CompileOnly reports whether the job only compiles and runs no tests.
func (d JobDescriptor) CompileOnly() bool {
	return d.Version(JobExecutionType) == ExecutionCompileOnly
}
