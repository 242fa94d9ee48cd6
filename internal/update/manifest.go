package update

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestReadErrorTemplateConstant  = "unable to read roster manifest %s: %w"
	manifestParseErrorTemplateConstant = "unable to parse roster manifest %s: %w"
)

type rosterManifest struct {
	Repositories []rosterManifestEntry `yaml:"repositories"`
}

type rosterManifestEntry struct {
	Path     string   `yaml:"path"`
	Branches []string `yaml:"branches"`
	Enabled  *bool    `yaml:"enabled"`
}

// loadYAMLRoster parses a YAML roster manifest into repository configurations,
// applying the same row validation as the CSV loader.
func (loader *RosterLoader) loadYAMLRoster(rosterPath string) ([]RepositoryConfiguration, error) {
	manifestData, readError := os.ReadFile(rosterPath)
	if readError != nil {
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, rosterPath, readError)
	}

	var manifest rosterManifest
	if parseError := yaml.Unmarshal(manifestData, &manifest); parseError != nil {
		return nil, fmt.Errorf(manifestParseErrorTemplateConstant, rosterPath, parseError)
	}

	repositories := []RepositoryConfiguration{}
	for entryIndex, manifestEntry := range manifest.Repositories {
		repositoryConfiguration := RepositoryConfiguration{
			Path:     manifestEntry.Path,
			Branches: manifestEntry.Branches,
			Enabled:  true,
		}
		if manifestEntry.Enabled != nil {
			repositoryConfiguration.Enabled = *manifestEntry.Enabled
		}

		sanitizedConfiguration, entryValid := loader.validateRow(repositoryConfiguration, rosterPath, entryIndex+1)
		if !entryValid {
			continue
		}
		repositories = append(repositories, sanitizedConfiguration)
	}

	return repositories, nil
}
