package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr/vm"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/source"
)

// ConcatSeparator joins the two halves of a Concatenate rule.
const ConcatSeparator = " - "

// Engine applies mapping rules to source cells. It caches compiled
// expressions and is not safe for concurrent use.
type Engine struct {
	lookups     map[string]map[string]string
	log         logrus.FieldLogger
	title       cases.Caser
	programs    map[string]*vm.Program
	compileErrs map[string]error
	issues      []*CellError
}

// New creates an engine over the given lookup tables.
func New(lookups map[string]map[string]string, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		lookups:     lookups,
		log:         log,
		title:       cases.Title(language.Und),
		programs:    map[string]*vm.Program{},
		compileErrs: map[string]error{},
	}
}

// Issues returns every cell error recorded so far.
func (e *Engine) Issues() []*CellError { return e.issues }

// Apply transforms value according to rule. row is the source row the value
// came from and supplies the secondary column. A failed transformation
// yields the original value together with a *CellError.
func (e *Engine) Apply(value source.Field, rule mapping.Rule, row source.Row) (string, error) {
	in := value
	if in.Empty() && rule.DefaultValue != "" {
		in = source.Value(rule.DefaultValue)
	}

	out, err := e.transform(in, rule, row)
	if err != nil {
		cerr := &CellError{Field: rule.TargetField, Kind: rule.Transformation, Line: row.Line, Value: in.Raw, Err: err}
		e.issues = append(e.issues, cerr)
		e.log.WithFields(logrus.Fields{
			"field": rule.TargetField,
			"line":  row.Line,
			"value": in.Raw,
		}).Warnf("%s failed, keeping original value: %v", rule.Transformation, err)
		out = in.Raw
		err = cerr
	}

	if strings.TrimSpace(out) == "" && rule.DefaultValue != "" {
		out = rule.DefaultValue
	}
	return out, err
}

func (e *Engine) transform(in source.Field, rule mapping.Rule, row source.Row) (string, error) {
	v := in.Raw
	if in.Empty() {
		v = ""
	}

	switch rule.Transformation {
	case mapping.KindNone, "":
		return v, nil
	case mapping.KindTrim:
		return strings.TrimSpace(v), nil
	case mapping.KindTitle:
		return e.title.String(v), nil
	case mapping.KindUpper:
		return strings.ToUpper(v), nil
	case mapping.KindLower:
		return strings.ToLower(v), nil
	case mapping.KindFirstWord:
		if f := strings.Fields(v); len(f) > 0 {
			return f[0], nil
		}
		return "", nil
	case mapping.KindDate:
		if in.Empty() {
			return "", nil
		}
		return FormatDate(v)
	case mapping.KindLookup:
		if in.Empty() {
			return "", nil
		}
		return e.lookup(strings.TrimSpace(v), rule)
	case mapping.KindConcat:
		secondary, err := secondaryValue(rule, row)
		if err != nil {
			return "", err
		}
		return Concat(strings.TrimSpace(v), strings.TrimSpace(secondary)), nil
	case mapping.KindExpr:
		secondary := ""
		if rule.SecondaryColumn != "" {
			secondary = row.Field(rule.SecondaryColumn).Raw
		}
		return e.evaluate(rule.Expression, v, secondary)
	default:
		return "", fmt.Errorf("unknown transformation %q", rule.Transformation)
	}
}

// Concat joins a and b with the separator, dropping empty sides.
func Concat(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + ConcatSeparator + b
	}
}

func secondaryValue(rule mapping.Rule, row source.Row) (string, error) {
	if rule.SecondaryColumn == "" {
		return "", errors.New("no secondary column configured")
	}
	f := row.Field(rule.SecondaryColumn)
	if f.State == source.Absent {
		return "", fmt.Errorf("secondary column %q not found", rule.SecondaryColumn)
	}
	return f.String(), nil
}

// lookup maps a code through the rule's table. Codes may arrive as spreadsheet
// numbers ("1.0") or as the label itself. Unknown codes take the rule default,
// then the table fallback.
func (e *Engine) lookup(code string, rule mapping.Rule) (string, error) {
	name := rule.LookupTable
	if name == "" {
		name = mapping.DefaultLookup
	}
	table, ok := e.lookups[name]
	if !ok {
		return "", fmt.Errorf("lookup table %q not configured", name)
	}

	code = strings.TrimSuffix(code, ".0")
	if label, ok := table[code]; ok && code != mapping.LookupFallbackKey {
		return label, nil
	}
	for k, label := range table {
		if k != mapping.LookupFallbackKey && strings.EqualFold(label, code) {
			return label, nil
		}
	}

	e.log.WithFields(logrus.Fields{"field": rule.TargetField, "code": code, "table": name}).Debug("unrecognised lookup code, using fallback")
	if rule.DefaultValue != "" {
		return rule.DefaultValue, nil
	}
	if fallback, ok := table[mapping.LookupFallbackKey]; ok {
		return fallback, nil
	}
	return "", fmt.Errorf("unrecognised code %q in lookup table %q", code, name)
}
