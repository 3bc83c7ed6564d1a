// Package loader holds what the Go source and schema loaders share: the
// loaded package, load errors and the schema record document.
//
// Subpackages turn an input directory into ir.RecordDefinition values:
//
//	gosrc      - //telegraf:metric types in a Go package
//	cueschema  - record: Name: {...} declarations in CUE files
//	yamlschema - records: [...] lists in YAML files
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/telegen/internal/ir"
)

// Package is the result of loading one input directory.
type Package struct {
	Name    string // Go package name of the output file
	Dir     string
	Imports []string // extra imports needed by emitted types
	Records []ir.RecordDefinition
	Files   []string
}

// Error codes for load failures. Record-level problems use the analysis codes.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"
	ErrCodeSchema      = "E007" // record document has the wrong structure
)

// LoadError reports a problem reading an input, as opposed to a problem with
// a record it declares.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CheckDir verifies dir exists and is a directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("directory not found: %s", dir)}
	}
	if err != nil {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing directory: %v", err)}
	}
	if !info.IsDir() {
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	return nil
}

// FindFiles returns the files directly in dir whose extension is one of exts,
// sorted by name. Subdirectories are not searched; a Go package is one
// directory and schema inputs follow the same rule. Names starting with "."
// or "_" are ignored, as the go tool does, which keeps .telegen.yaml out of
// YAML schema input.
func FindFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "_") {
			continue
		}
		if slices.Contains(exts, filepath.Ext(e.Name())) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
