package update

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	rosterOpenErrorTemplateConstant       = "unable to open roster %s: %w"
	rosterHeaderReadErrorTemplateConstant = "unable to read roster header from %s: %w"
	rosterRowReadErrorTemplateConstant    = "unable to read roster row from %s: %w"
	rosterMissingColumnsMessageConstant   = "roster header must include path and branches columns"
	rosterPathColumnNameConstant          = "path"
	rosterBranchesColumnNameConstant      = "branches"
	rosterEnabledColumnNameConstant       = "enabled"
	branchListSeparatorConstant           = ","
	yamlRosterExtensionConstant           = ".yaml"
	yamlRosterShortExtensionConstant      = ".yml"
	rowSkippedEmptyPathMessageConstant    = "roster row skipped: empty repository path"
	rowSkippedNoBranchesMessageConstant   = "roster row skipped: no branches configured"
	logFieldRosterPathConstant            = "roster_path"
	logFieldRosterRowNumberConstant       = "row_number"
)

// ErrRosterMissingColumns indicates the roster header lacks the required columns.
var ErrRosterMissingColumns = errors.New(rosterMissingColumnsMessageConstant)

var enabledFalseValues = map[string]bool{
	"false": true,
	"no":    true,
	"0":     true,
	"off":   true,
}

// RosterLoader reads repository rosters from CSV or YAML files.
type RosterLoader struct {
	logger *zap.Logger
}

// NewRosterLoader constructs a roster loader that reports skipped rows through the provided logger.
func NewRosterLoader(logger *zap.Logger) *RosterLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterLoader{logger: logger}
}

// LoadRepositories parses the roster at rosterPath, dispatching on the file extension.
// Malformed rows are skipped with a warning; an unreadable file or missing header is fatal.
func (loader *RosterLoader) LoadRepositories(rosterPath string) ([]RepositoryConfiguration, error) {
	rosterExtension := strings.ToLower(filepath.Ext(strings.TrimSpace(rosterPath)))
	if rosterExtension == yamlRosterExtensionConstant || rosterExtension == yamlRosterShortExtensionConstant {
		return loader.loadYAMLRoster(rosterPath)
	}
	return loader.loadCSVRoster(rosterPath)
}

func (loader *RosterLoader) loadCSVRoster(rosterPath string) ([]RepositoryConfiguration, error) {
	rosterFile, openError := os.Open(rosterPath)
	if openError != nil {
		return nil, fmt.Errorf(rosterOpenErrorTemplateConstant, rosterPath, openError)
	}
	defer rosterFile.Close()

	rosterReader := csv.NewReader(rosterFile)
	rosterReader.FieldsPerRecord = -1
	rosterReader.TrimLeadingSpace = true

	headerRecord, headerError := rosterReader.Read()
	if headerError != nil {
		return nil, fmt.Errorf(rosterHeaderReadErrorTemplateConstant, rosterPath, headerError)
	}

	columnIndexes := map[string]int{}
	for columnIndex, columnName := range headerRecord {
		columnIndexes[strings.ToLower(strings.TrimSpace(columnName))] = columnIndex
	}

	pathColumnIndex, pathColumnPresent := columnIndexes[rosterPathColumnNameConstant]
	branchesColumnIndex, branchesColumnPresent := columnIndexes[rosterBranchesColumnNameConstant]
	if !pathColumnPresent || !branchesColumnPresent {
		return nil, ErrRosterMissingColumns
	}
	enabledColumnIndex, enabledColumnPresent := columnIndexes[rosterEnabledColumnNameConstant]

	repositories := []RepositoryConfiguration{}
	rowNumber := 1
	for {
		rowRecord, rowError := rosterReader.Read()
		if rowError == io.EOF {
			break
		}
		if rowError != nil {
			return nil, fmt.Errorf(rosterRowReadErrorTemplateConstant, rosterPath, rowError)
		}
		rowNumber++

		repositoryConfiguration := RepositoryConfiguration{
			Path:     recordFieldAt(rowRecord, pathColumnIndex),
			Branches: splitBranchList(recordFieldAt(rowRecord, branchesColumnIndex)),
			Enabled:  true,
		}
		if enabledColumnPresent {
			repositoryConfiguration.Enabled = parseEnabledValue(recordFieldAt(rowRecord, enabledColumnIndex))
		}

		sanitizedConfiguration, rowValid := loader.validateRow(repositoryConfiguration, rosterPath, rowNumber)
		if !rowValid {
			continue
		}
		repositories = append(repositories, sanitizedConfiguration)
	}

	return repositories, nil
}

func (loader *RosterLoader) validateRow(configuration RepositoryConfiguration, rosterPath string, rowNumber int) (RepositoryConfiguration, bool) {
	sanitizedConfiguration := configuration.Sanitize()

	if len(sanitizedConfiguration.Path) == 0 {
		loader.logger.Warn(
			rowSkippedEmptyPathMessageConstant,
			zap.String(logFieldRosterPathConstant, rosterPath),
			zap.Int(logFieldRosterRowNumberConstant, rowNumber),
		)
		return RepositoryConfiguration{}, false
	}

	if len(sanitizedConfiguration.Branches) == 0 {
		loader.logger.Warn(
			rowSkippedNoBranchesMessageConstant,
			zap.String(logFieldRosterPathConstant, rosterPath),
			zap.Int(logFieldRosterRowNumberConstant, rowNumber),
		)
		return RepositoryConfiguration{}, false
	}

	return sanitizedConfiguration, true
}

func recordFieldAt(record []string, fieldIndex int) string {
	if fieldIndex >= 0 && fieldIndex < len(record) {
		return record[fieldIndex]
	}
	return ""
}

func splitBranchList(branchListValue string) []string {
	branchNames := []string{}
	for _, branchName := range strings.Split(branchListValue, branchListSeparatorConstant) {
		trimmedBranchName := strings.TrimSpace(branchName)
		if len(trimmedBranchName) == 0 {
			continue
		}
		branchNames = append(branchNames, trimmedBranchName)
	}
	return branchNames
}

// parseEnabledValue treats absent or unrecognized values as enabled.
func parseEnabledValue(enabledValue string) bool {
	normalizedValue := strings.ToLower(strings.TrimSpace(enabledValue))
	return !enabledFalseValues[normalizedValue]
}
