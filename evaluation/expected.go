package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadExpected reads a job name to expected answer mapping from a .json,
// .yaml or .yml file.
//
//	job_0: "10am"
//	job_1: "blue"
func LoadExpected(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read expected answers: %w", err)
	}

	expected := map[string]string{}
	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(data, &expected); err != nil {
			return nil, fmt.Errorf("failed to parse JSON expected answers: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &expected); err != nil {
			return nil, fmt.Errorf("failed to parse YAML expected answers: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported expected answers format: %s (supported: .json, .yaml, .yml)", ext)
	}
	return expected, nil
}
