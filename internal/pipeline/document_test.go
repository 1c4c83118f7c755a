package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spachava753/jobgen/internal/models"
	"github.com/spachava753/jobgen/internal/wave"
)

func exampleMatrix() models.WaveMatrix {
	var jobs []models.NamedJob
	for _, n := range []string{
		"linux_gcc9_compile_only",
		"linux_gcc9",
		"linux_hipcc5.0",
		"linux_nvcc11.0-gcc9",
		"linux_foo_custom",
	} {
		jobs = append(jobs, models.NamedJob{
			Name: n,
			Body: models.JobBody{
				Image:         "registry.example.com/ci:3.0",
				Script:        []string{"./run.sh"},
				Tags:          []string{"x86_64", "cpuonly"},
				Interruptible: true,
			},
		})
	}
	return wave.Distribute(jobs, wave.DefaultRules(), models.WaveSize{models.WaveRuntime: 1})
}

func render(t *testing.T, matrix models.WaveMatrix, doc Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, matrix, doc))
	return buf.Bytes()
}

// topLevelKeys returns the keys of the document's top-level mapping in order.
func topLevelKeys(t *testing.T, data []byte) []string {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &node))
	require.Equal(t, yaml.DocumentNode, node.Kind)
	mapping := node.Content[0]
	require.Equal(t, yaml.MappingNode, mapping.Kind)

	var keys []string
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys
}

func TestWrite_EmptyMatrixWritesPlaceholder(t *testing.T) {
	matrix := wave.Distribute(nil, wave.DefaultRules(), nil)

	out := render(t, matrix, Document{Variables: map[string]string{"A": "B"}})

	var doc map[string]models.JobBody
	require.NoError(t, yaml.Unmarshal(out, &doc))
	require.Len(t, doc, 1)

	job, ok := doc[PlaceholderJobName]
	require.True(t, ok, "placeholder job missing:\n%s", out)
	assert.Equal(t, "alpine:latest", job.Image)
	assert.True(t, job.Interruptible)
	assert.Len(t, job.Script, 1)
	assert.NotContains(t, string(out), "stages")
}

func TestWrite_Document(t *testing.T) {
	tmpl := writeTemplate(t, ".base_job:\n  before_script:\n    - echo base\n")

	out := render(t, exampleMatrix(), Document{
		Variables: map[string]string{"alpaka_CI": "GITLAB", "ALPAKA_CI_OS_NAME": "Linux"},
		Template:  tmpl,
	})

	assert.Equal(t, []string{
		"stages",
		"variables",
		".base_job",
		"linux_gcc9_compile_only",
		"linux_hipcc5.0",
		"linux_nvcc11.0-gcc9",
		"linux_gcc9",
		"linux_foo_custom",
	}, topLevelKeys(t, out))

	var doc struct {
		Stages    []string          `yaml:"stages"`
		Variables map[string]string `yaml:"variables"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))

	assert.Equal(t, []string{
		"compile_only-stage0",
		"runtime-stage0",
		"runtime-stage1",
		"unclassified-stage0",
	}, doc.Stages)
	assert.Equal(t, "GITLAB", doc.Variables["alpaka_CI"])

	jobs := decodeJobs(t, out)
	assert.Equal(t, "compile_only-stage0", jobs["linux_gcc9_compile_only"].Stage)
	assert.Equal(t, "runtime-stage0", jobs["linux_hipcc5.0"].Stage)
	assert.Equal(t, "runtime-stage1", jobs["linux_nvcc11.0-gcc9"].Stage)
	assert.Equal(t, "unclassified-stage0", jobs["linux_gcc9"].Stage)
	assert.Equal(t, "unclassified-stage0", jobs["linux_foo_custom"].Stage)
	assert.Equal(t, []string{"x86_64", "cpuonly"}, jobs["linux_gcc9"].Tags)
	assert.True(t, jobs["linux_gcc9"].Interruptible)
}

func TestWrite_StageMarkers(t *testing.T) {
	out := render(t, exampleMatrix(), Document{})

	text := string(out)
	markers := []string{
		"# <<<<<<<<<<<<< compile_only-stage0 >>>>>>>>>>>>>",
		"# <<<<<<<<<<<<< runtime-stage0 >>>>>>>>>>>>>",
		"# <<<<<<<<<<<<< runtime-stage1 >>>>>>>>>>>>>",
		"# <<<<<<<<<<<<< unclassified-stage0 >>>>>>>>>>>>>",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(text, m)
		require.NotEqual(t, -1, idx, "marker %q missing", m)
		assert.Greater(t, idx, last, "marker %q out of order", m)
		last = idx
	}
	assert.Contains(t, text, "variables: {}")
	assert.NotContains(t, text, "---")
}

func TestWrite_DoesNotModifyJobs(t *testing.T) {
	matrix := exampleMatrix()

	render(t, matrix, Document{})

	for _, c := range models.WaveCategories {
		for _, batch := range matrix[c] {
			for _, job := range batch {
				assert.Empty(t, job.Body.Stage, "job %s was modified", job.Name)
			}
		}
	}
}

func TestLoadTemplate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTemplate(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	list := filepath.Join(dir, "list.yml")
	require.NoError(t, os.WriteFile(list, []byte("- a\n- b\n"), 0644))
	_, err = LoadTemplate(list)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte("a: [\n"), 0644))
	_, err = LoadTemplate(broken)
	assert.Error(t, err)
}

func writeTemplate(t *testing.T, content string) *yaml.Node {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job_base.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	node, err := LoadTemplate(path)
	require.NoError(t, err)
	return node
}

// decodeJobs decodes every top-level entry of the document that is a job.
func decodeJobs(t *testing.T, data []byte) map[string]models.JobBody {
	t.Helper()
	var raw map[string]yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &raw))

	jobs := make(map[string]models.JobBody)
	for name, node := range raw {
		if name == "stages" || name == "variables" || strings.HasPrefix(name, ".") {
			continue
		}
		var body models.JobBody
		require.NoError(t, node.Decode(&body), "decoding job %s", name)
		jobs[name] = body
	}
	return jobs
}
