package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Common error codes
const (
	// Catalog error codes
	CodeCatalogRead      = "001"
	CodeCatalogParse     = "002"
	CodeCatalogMalformed = "003"

	// Validation error codes
	CodeValidationInput = "001"
	CodeValidationQC    = "002"

	// Configuration error codes
	CodeConfigRoot = "001"
	CodeConfigFile = "002"

	// Workflow error codes
	CodeWorkflowDuplicate  = "001"
	CodeWorkflowDependency = "002"
	CodeWorkflowCycle      = "003"

	// IO error codes
	CodeIOWrite = "001"
	CodeIOLock  = "002"
)

// NewCatalogReadError creates an error for an unreadable catalog source
func NewCatalogReadError(path string, originalErr error) *BuildError {
	return NewCatalogError(CodeCatalogRead,
		fmt.Sprintf("Cannot read analysis catalog '%s'", path),
		"Catalog load").
		WithContext("path", path).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check that O2DPG_ROOT points to an O2DPG installation",
			"Pass an explicit catalog with --catalog",
		)
}

// NewCatalogParseError creates an error for a catalog that cannot be decoded
func NewCatalogParseError(path string, originalErr error) *BuildError {
	return NewCatalogError(CodeCatalogParse,
		fmt.Sprintf("Cannot parse analysis catalog '%s'", path),
		"Catalog load").
		WithContext("path", path).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Validate the file, e.g. with 'jq . <file>'",
			"The top-level object needs an 'analyses' list",
		)
}

// NewQCPreconditionError is returned when QC upload lacks its provenance metadata
func NewQCPreconditionError(periodName, passName string) *BuildError {
	return NewValidationError(CodeValidationQC,
		"QC upload was requested, however in that case a --pass-name and --period-name are required",
		"Parameter validation").
		WithContext("period_name", periodName).
		WithContext("pass_name", passName).
		WithTroubleshooting(
			"Specify --period-name <production tag>",
			"Specify --pass-name <pass name>",
			"Or drop --with-qc-upload",
		)
}

// IsCategory reports whether err wraps a BuildError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Category == category
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
