package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qparam/internal/config"
	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/queryir"
)

// ValidationError is one problem found in a parser config.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Matchers int               `json:"matchers"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-dir>",
		Short: "Validate a parser config",
		Long: `Validate a CUE parser config without running a query.

Every matcher pattern is compiled and registered on a fresh parser, and
the table, columns and order settings are checked by compiling an
unfiltered query.

Exit codes:
  0 - Config valid
  1 - Config loaded but has invalid matchers or settings
  2 - Config could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, configDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := config.Load(configDir)
	if err != nil {
		var loadErr *config.LoadError
		if errors.As(err, &loadErr) && loadErr.Code != config.ErrCodeInvalidMatcher && loadErr.Code != config.ErrCodeInvalidSetting {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		// Compile errors are config content problems, not load failures.
		return outputValidationErrors(formatter, 0, []ValidationError{toValidationError(err)})
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, configDir)

	errs := validateConfig(loaded.Config, formatter)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, len(loaded.Config.Matchers), errs)
	}
	return outputValidateSuccess(formatter, len(loaded.Config.Matchers))
}

// validateConfig registers each matcher on its own parser so that every
// bad matcher is reported, then compiles an unfiltered query.
func validateConfig(cfg *config.Config, formatter *OutputFormatter) []ValidationError {
	var errs []ValidationError

	for i, m := range cfg.Matchers {
		formatter.VerboseLog("Validating matcher %d: %s", i, m.Pattern)
		single := &config.Config{Matchers: []config.MatcherConfig{m}}
		if err := single.Apply(dsl.New(queryir.NewBuilder())); err != nil {
			ve := toValidationError(err)
			ve.Field = fmt.Sprintf("matchers[%d]", i)
			errs = append(errs, ve)
		}
	}

	parser := dsl.New(queryir.NewBuilder())
	if cfg.Alias != "" {
		parser.SetAlias(cfg.Alias)
	}
	eng := engine.New(nil, parser, engine.UUIDv7Generator{}, cfg.EngineOptions()...)
	if _, err := eng.Plan(context.Background(), nil); err != nil {
		errs = append(errs, ValidationError{
			Field:   "parser",
			Message: err.Error(),
			Code:    config.ErrCodeInvalidSetting,
		})
	}
	return errs
}

func toValidationError(err error) ValidationError {
	ve := ValidationError{
		Field:   "parser",
		Message: err.Error(),
		Code:    config.MapFieldToErrorCode(err),
	}
	var ce *config.CompileError
	if errors.As(err, &ce) {
		ve.Field = ce.Field
		ve.Message = ce.Message
		if ce.Pos.IsValid() {
			ve.Line = ce.Pos.Line()
		}
	}
	return ve
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, matchers int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Matchers: matchers})
	}

	fmt.Fprintf(formatter.Writer, "✓ Config valid (%d matcher(s))\n", matchers)
	return nil
}

// outputValidateError outputs a load failure.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every problem found in a loaded config.
func outputValidationErrors(formatter *OutputFormatter, matchers int, errs []ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:    false,
				Matchers: matchers,
				Errors:   errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}

// ValidateConfigDir validates the parser config in a directory.
// This is a helper function for external callers.
func ValidateConfigDir(configDir string) ([]ValidationError, error) {
	loaded, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	silent := &OutputFormatter{Format: "text", Writer: io.Discard}
	return validateConfig(loaded.Config, silent), nil
}
