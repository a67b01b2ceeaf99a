package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error codes reported by LoadError.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeNoProjects = "E201" // No project struct
	ErrCodeSchema     = "E202" // Schema violation
	ErrCodeSegment    = "E203" // Malformed segment
	ErrCodeGesture    = "E204" // Malformed gesture
)

// LoadResult contains the projects loaded from a file or directory.
type LoadResult struct {
	Projects  []Definition
	CUEValue  cue.Value
	FileCount int
}

// LoadError is a loading failure with a stable code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFile compiles every project in a single .cue file.
func LoadFile(path string, mode LoadMode) (*LoadResult, []error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
	}

	value := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, []error{convertCompileError(formatCUEError(err), ErrCodeBuildFailed, path)}
	}

	result := &LoadResult{CUEValue: value, FileCount: 1}
	errs := compileProjects(value, mode, result)
	return result, errs
}

// LoadDir loads the CUE package in dir and compiles every project in it.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{convertCompileError(formatCUEError(err), ErrCodeBuildFailed, dir)}
	}

	result := &LoadResult{CUEValue: value, FileCount: len(cueFiles)}
	errs := compileProjects(value, mode, result)
	return result, errs
}

// Load dispatches to LoadFile or LoadDir depending on what path is.
func Load(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return LoadDir(path, mode)
	}
	return LoadFile(path, mode)
}

func compileProjects(value cue.Value, mode LoadMode, result *LoadResult) []error {
	projectsVal := value.LookupPath(cue.ParsePath("project"))
	if !projectsVal.Exists() {
		return []error{&LoadError{Code: ErrCodeNoProjects, Message: "no project struct found"}}
	}

	iter, err := projectsVal.Fields()
	if err != nil {
		return []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating projects: %v", err)}}
	}

	var errs []error
	for iter.Next() {
		label := iter.Selector().String()
		def, err := Compile(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "", "project."+label))
			if mode == LoadModeFailFast {
				return errs
			}
			continue
		}
		result.Projects = append(result.Projects, *def)
	}

	if len(result.Projects) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoProjects, Message: "project struct is empty"})
	}
	return errs
}

// FindCUEFiles walks dir and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertCompileError converts a compile error to a LoadError with position
// info. code overrides the field-derived code when non-empty.
func convertCompileError(err error, code, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		if code == "" {
			code = MapFieldToErrorCode(compileErr.Field)
		}
		return &LoadError{
			Code:    code,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	if code == "" {
		code = ErrCodeGeneric
	}
	return &LoadError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// MapFieldToErrorCode maps a CompileError field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeSchema
	case field == "segments.end":
		return ErrCodeSegment
	case strings.HasPrefix(field, "gestures"):
		return ErrCodeGesture
	default:
		return ErrCodeGeneric
	}
}
