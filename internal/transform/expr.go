package transform

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// allowedBuiltins are the expr builtins custom expressions may call.
// Everything else (now, env access helpers, JSON/base64 codecs) stays off.
var allowedBuiltins = []string{
	"upper", "lower", "trim", "trimPrefix", "trimSuffix",
	"replace", "split", "join", "indexOf",
	"hasPrefix", "hasSuffix", "len", "int", "float", "string",
	"abs", "round", "first", "last",
}

// maxExprWidth caps the strings pad and repeat may build.
const maxExprWidth = 256

// exprEnv is the compile-time shape of the expression environment.
func exprEnv(value, secondary string) map[string]any {
	return map[string]any{
		"value":     value,
		"secondary": secondary,
	}
}

func exprOptions() []expr.Option {
	title := cases.Title(language.Und)
	opts := []expr.Option{
		expr.Env(exprEnv("", "")),
		expr.DisableAllBuiltins(),
		expr.Function("title", func(params ...any) (any, error) {
			return title.String(params[0].(string)), nil
		}, new(func(string) string)),
		expr.Function("pad", func(params ...any) (any, error) {
			s, width := params[0].(string), params[1].(int)
			if width > maxExprWidth {
				return "", fmt.Errorf("pad width %d exceeds %d", width, maxExprWidth)
			}
			if n := utf8.RuneCountInString(s); n < width {
				s = strings.Repeat("0", width-n) + s
			}
			return s, nil
		}, new(func(string, int) string)),
		expr.Function("repeat", func(params ...any) (any, error) {
			s, n := params[0].(string), params[1].(int)
			if n < 0 || n > maxExprWidth || n*utf8.RuneCountInString(s) > maxExprWidth {
				return "", fmt.Errorf("repeat of %d exceeds %d characters", n, maxExprWidth)
			}
			return strings.Repeat(s, n), nil
		}, new(func(string, int) string)),
		expr.Function("substr", func(params ...any) (any, error) {
			r := []rune(params[0].(string))
			start, n := params[1].(int), params[2].(int)
			if start < 0 || start > len(r) {
				return "", nil
			}
			end := min(start+n, len(r))
			if end < start {
				return "", nil
			}
			return string(r[start:end]), nil
		}, new(func(string, int, int) string)),
		expr.Function("str", func(params ...any) (any, error) {
			return stringify(params[0]), nil
		}, new(func(any) string)),
		expr.Function("isoDate", func(params ...any) (any, error) {
			return FormatDate(params[0].(string))
		}, new(func(string) string)),
	}
	for _, name := range allowedBuiltins {
		opts = append(opts, expr.EnableBuiltin(name))
	}
	return opts
}

// compile returns the cached program for code.
func (e *Engine) compile(code string) (*vm.Program, error) {
	if p, ok := e.programs[code]; ok {
		return p, nil
	}
	if err, ok := e.compileErrs[code]; ok {
		return nil, err
	}
	p, err := expr.Compile(code, exprOptions()...)
	if err != nil {
		err = fmt.Errorf("invalid expression: %w", err)
		e.compileErrs[code] = err
		return nil, err
	}
	e.programs[code] = p
	return p, nil
}

func (e *Engine) evaluate(code, value, secondary string) (string, error) {
	p, err := e.compile(code)
	if err != nil {
		return "", err
	}
	out, err := expr.Run(p, exprEnv(value, secondary))
	if err != nil {
		return "", fmt.Errorf("expression failed: %w", err)
	}
	return stringify(out), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
