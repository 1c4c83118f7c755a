// Package pipeline writes the GitLab CI document of a wave matrix.
package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/jobgen/internal/models"
	"github.com/spachava753/jobgen/internal/wave"
)

// PlaceholderJobName is the job written when the matrix has no jobs.
const PlaceholderJobName = "dummy-job"

// PlaceholderJob keeps a pipeline with no work from failing to start.
func PlaceholderJob() models.JobBody {
	return models.JobBody{
		Image:         "alpine:latest",
		Script:        []string{`echo "This is a dummy job so that the CI does not fail."`},
		Interruptible: true,
	}
}

// Document holds the parts of the CI document shared by all jobs.
type Document struct {
	// Variables are written as the global variables section.
	Variables map[string]string
	// Template is a YAML mapping, typically hidden jobs other jobs extend,
	// written verbatim after the variables. Nil for none.
	Template *yaml.Node
}

// LoadTemplate reads the shared job template from path.
func LoadTemplate(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job template: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing job template %s: %w", path, err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) != 1 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("job template %s: top level must be a mapping", path)
	}
	return &node, nil
}

// Write writes the CI document of matrix to w.
//
// The stage list follows models.WaveCategories and batch order. Jobs are
// written one at a time below a marker comment of their stage, so their order
// in the output is the batch order. The jobs in matrix are not modified.
func Write(w io.Writer, matrix models.WaveMatrix, doc Document) error {
	if wave.JobCount(matrix) == 0 {
		return encode(w, map[string]models.JobBody{PlaceholderJobName: PlaceholderJob()})
	}

	if err := encode(w, map[string][]string{"stages": wave.Stages(matrix)}); err != nil {
		return fmt.Errorf("writing stages: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	vars := doc.Variables
	if vars == nil {
		vars = map[string]string{}
	}
	if err := encode(w, map[string]map[string]string{"variables": vars}); err != nil {
		return fmt.Errorf("writing variables: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if doc.Template != nil {
		if err := encode(w, doc.Template); err != nil {
			return fmt.Errorf("writing job template: %w", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	for _, category := range models.WaveCategories {
		for i, batch := range matrix[category] {
			stage := models.StageName(category, i)
			if _, err := fmt.Fprintf(w, "# <<<<<<<<<<<<< %s >>>>>>>>>>>>>\n\n", stage); err != nil {
				return err
			}
			for _, job := range batch {
				body := job.Body
				body.Stage = stage
				if err := encode(w, map[string]models.JobBody{job.Name: body}); err != nil {
					return fmt.Errorf("writing job %s: %w", job.Name, err)
				}
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// encode writes v as a single YAML document without a document marker.
func encode(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
