package cli

import (
	"errors"
	"log/slog"

	"github.com/roach88/qparam/internal/config"
	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/engine"
	"github.com/roach88/qparam/internal/queryir"
)

// Error code constants, unified across all CLI commands. Config load
// failures keep the codes assigned by the config package.
const (
	ErrCodeGeneric  = config.ErrCodeGeneric
	ErrCodeNotFound = config.ErrCodeNotFound

	// Filter parse errors
	ErrCodeMixedOperators   = "E201" // && and || in one value
	ErrCodeNoMatch          = "E202" // no value matcher accepted an operand
	ErrCodeNoBuilder        = "E203" // parser has no expression builder
	ErrCodeDuplicateParam   = "E204" // placeholder bound twice in one filter
	ErrCodeInvalidMatcher   = "E205" // matcher registration rejected
	ErrCodeInvalidPair      = "E210" // argument is not key=value
	ErrCodeUnknownField     = "E211" // field is not a column
	ErrCodeFilterDeclined   = "E213" // no handler accepted a parameter
	ErrCodeInvalidQuery     = "E214" // assembled query failed validation
	ErrCodeScenariosMissing = "E301" // scenarios directory not found
)

var errorCodes = map[string]string{
	string(dsl.ErrMixedOperators):        ErrCodeMixedOperators,
	string(dsl.ErrNoMatchingPattern):     ErrCodeNoMatch,
	string(dsl.ErrNoExpressionBuilder):   ErrCodeNoBuilder,
	string(dsl.ErrDuplicatePlaceholder):  ErrCodeDuplicateParam,
	string(dsl.ErrInvalidMatcher):        ErrCodeInvalidMatcher,
	string(engine.ErrCodeInvalidPair):    ErrCodeInvalidPair,
	string(engine.ErrCodeUnknownField):   ErrCodeUnknownField,
	string(engine.ErrCodeFilterDeclined): ErrCodeFilterDeclined,
	string(engine.ErrCodeInvalidQuery):   ErrCodeInvalidQuery,
}

// ErrorCode maps an error to its CLI error code.
func ErrorCode(err error) string {
	var loadErr *config.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	if code, ok := errorCodes[engine.CodeOf(err)]; ok {
		return code
	}
	return ErrCodeGeneric
}

// buildParser creates a parser with the queryir builder, applies the CUE
// config if one is set, and then the alias flag. The returned config is
// empty when no --config was given.
func buildParser(opts *RootOptions) (*dsl.Parser, *config.Config, error) {
	parser := dsl.New(queryir.NewBuilder(), dsl.WithLogger(slog.Default()))
	cfg := &config.Config{}

	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded.Config
		if err := cfg.Apply(parser); err != nil {
			return nil, nil, err
		}
	}

	if opts.Alias != "" {
		parser.SetAlias(opts.Alias)
	}
	return parser, cfg, nil
}

// failWith reports err through the formatter and returns an ExitError.
// Config problems are command errors; rejected filter input is a failure.
func failWith(formatter *OutputFormatter, message string, err error) error {
	exit := ExitFailure
	var loadErr *config.LoadError
	if errors.As(err, &loadErr) {
		exit = ExitCommandError
	}
	return formatter.Fail(exit, ErrorCode(err), message, err)
}
