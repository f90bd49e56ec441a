package conda

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// envFile is the subset of an environment definition file gantry reads.
// Dependency resolution itself is conda's job.
type envFile struct {
	Name string `yaml:"name"`
}

// EnvFileName returns the environment name declared in an environment
// definition file, or empty if the file declares none.
func EnvFileName(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided env file path
	if err != nil {
		return "", fmt.Errorf("reading environment file: %w", err)
	}
	return parseEnvFileName(data)
}

func parseEnvFileName(data []byte) (string, error) {
	var ef envFile
	if err := yaml.Unmarshal(data, &ef); err != nil {
		return "", fmt.Errorf("parsing environment file YAML: %w", err)
	}
	return ef.Name, nil
}
