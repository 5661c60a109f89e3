// Package filter narrows an inventory of stacks with field:pattern expressions.
//
// The stack and region fields select stacks. Every other field selects layers:
// layer matches the layer shortname, anything else is looked up in the layer's
// effective configuration. Patterns match the whole value and * stands for any
// sequence of characters.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/ikorchynskyi/opsworks-curator/internal/types"
)

const (
	FieldStack  = "stack"
	FieldRegion = "region"
	FieldLayer  = "layer"

	separator = ":"
)

var (
	ErrMalformedExpression = errors.New("incorrect filter (format: name:value)")
	ErrDuplicateField      = errors.New("cannot use the same filter twice")
)

// Expression is a parsed field:pattern pair
type Expression struct {
	Field   string
	Pattern string

	regex *regexp.Regexp
}

func (e Expression) String() string {
	return e.Field + separator + e.Pattern
}

// StackLevel reports whether the expression selects stacks rather than layers.
func (e Expression) StackLevel() bool {
	return e.Field == FieldStack || e.Field == FieldRegion
}

// Match reports whether value matches the whole pattern.
func (e Expression) Match(value string) bool {
	return e.regex.MatchString(value)
}

// Compile turns a wildcard pattern into an anchored regular expression.
func Compile(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// ParseExpression parses a single field:pattern expression.
func ParseExpression(raw string) (Expression, error) {
	split := strings.Split(raw, separator)
	if len(split) != 2 || split[0] == "" || split[1] == "" {
		return Expression{}, fmt.Errorf("%w: %q", ErrMalformedExpression, raw)
	}
	return Expression{
		Field:   split[0],
		Pattern: split[1],
		regex:   Compile(split[1]),
	}, nil
}

// Parse parses a batch of expressions. A field may only be used once per batch.
func Parse(raw []string) ([]Expression, error) {
	expressions := make([]Expression, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		e, err := ParseExpression(r)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[e.Field]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, e.Field)
		}
		seen[e.Field] = struct{}{}
		expressions = append(expressions, e)
	}
	return expressions, nil
}

// Split breaks a comma separated flag value into expressions, ignoring blanks.
func Split(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HasLayerFilter reports whether any expression filters layers.
func HasLayerFilter(expressions []Expression) bool {
	for _, e := range expressions {
		if !e.StackLevel() {
			return true
		}
	}
	return false
}

// Apply parses raw and narrows stacks with every expression in order.
// The input is left untouched.
func Apply(stacks []types.Stack, raw []string) ([]types.Stack, error) {
	expressions, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return ApplyExpressions(stacks, expressions), nil
}

// ApplyExpressions narrows stacks with already parsed expressions.
func ApplyExpressions(stacks []types.Stack, expressions []Expression) []types.Stack {
	out := stacks
	for _, e := range expressions {
		out = applyExpression(out, e)
	}
	return out
}

func applyExpression(stacks []types.Stack, e Expression) []types.Stack {
	out := make([]types.Stack, 0, len(stacks))
	for _, stack := range stacks {
		if e.StackLevel() {
			if e.Match(stackValue(stack, e.Field)) {
				out = append(out, stack)
			}
			continue
		}

		layers := make([]types.Layer, 0, len(stack.Layers))
		for _, layer := range stack.Layers {
			if matchLayer(layer, e) {
				layers = append(layers, layer)
			}
		}
		if len(layers) == 0 {
			continue
		}
		stack.Layers = layers
		out = append(out, stack)
	}
	return out
}

func stackValue(stack types.Stack, field string) string {
	if field == FieldRegion {
		return stack.Region
	}
	return stack.Name
}

func matchLayer(layer types.Layer, e Expression) bool {
	if e.Field == FieldLayer && e.Match(layer.Shortname) {
		return true
	}
	value, ok := configValue(layer.Config, e.Field)
	return ok && e.Match(value)
}

// configValue resolves a key of the effective configuration to a matchable string.
// Dotted keys that are not present verbatim are evaluated as JMESPath expressions.
func configValue(config map[string]interface{}, key string) (string, bool) {
	if len(config) == 0 {
		return "", false
	}
	value, ok := config[key]
	if !ok && strings.Contains(key, ".") {
		found, err := jmespath.Search(key, config)
		if err != nil || found == nil {
			return "", false
		}
		value, ok = found, true
	}
	if !ok {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case bool, float64, json.Number:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
