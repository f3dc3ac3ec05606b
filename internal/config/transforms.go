package config

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/qparam/internal/dsl"
	"github.com/roach88/qparam/internal/ir"
)

// transforms are the named value transforms a config matcher may use.
// Each receives the first capture group of the match.
var transforms = map[string]func(string) ir.IRValue{
	"split": dsl.SplitList,
	"lower": func(s string) ir.IRValue { return ir.IRString(strings.ToLower(s)) },
	"upper": func(s string) ir.IRValue { return ir.IRString(strings.ToUpper(s)) },
	"trim":  func(s string) ir.IRValue { return ir.IRString(strings.TrimSpace(s)) },
	"int":   toInt,
}

// toInt binds a decimal capture as an integer. Anything else stays a string
// and is compared by the database's own affinity rules.
func toInt(s string) ir.IRValue {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return ir.IRString(s)
	}
	return ir.IRInt(n)
}

// TransformNames lists the known transform names, sorted.
func TransformNames() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func transformNames() string {
	return strings.Join(TransformNames(), ", ")
}
