package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Error codes for load failures, shared with the CLI's JSON output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoParser    = "E007" // No parser struct defined

	ErrCodeInvalidMatcher = "E101" // Matcher pattern, operator or rule invalid
	ErrCodeInvalidSetting = "E102" // Alias, table, columns, order or limit invalid
)

// LoadError represents an error that occurred while loading a config
// directory.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadResult is a loaded config directory.
type LoadResult struct {
	Config    *Config
	FileCount int
}

// Load reads every .cue file in dir as one CUE instance and compiles its
// "parser" struct.
func Load(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err), Err: inst.Err}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Err: err}
	}

	cfg, err := compileParser(value)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, FileCount: len(cueFiles)}, nil
}

// loadString compiles CUE source text holding a "parser" struct.
func loadString(src string) (*Config, error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), Err: err}
	}
	return compileParser(value)
}

func compileParser(value cue.Value) (*Config, error) {
	parserVal := value.LookupPath(cue.ParsePath("parser"))
	if !parserVal.Exists() {
		return nil, &LoadError{Code: ErrCodeNoParser, Message: "no parser struct found"}
	}
	cfg, err := Compile(parserVal)
	if err != nil {
		return nil, &LoadError{Code: MapFieldToErrorCode(err), Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
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
	return files, err
}

// MapFieldToErrorCode maps a compile error to an error code by the field it
// names.
func MapFieldToErrorCode(err error) string {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return ErrCodeGeneric
	}
	switch {
	case ce.Field == "cue":
		return ErrCodeBuildFailed
	case strings.HasPrefix(ce.Field, "matchers"), ce.Field == "transform":
		return ErrCodeInvalidMatcher
	default:
		return ErrCodeInvalidSetting
	}
}
