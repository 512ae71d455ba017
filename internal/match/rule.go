// Package match evaluates declarative selection rules against tree node names.
// Rules are immutable value objects; evaluating one never mutates state.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// Subject is the view of a node a rule is evaluated against.
type Subject struct {
	Name     string
	Path     string
	Depth    int
	Children int
}

// Rule is a pure predicate over a Subject.
type Rule interface {
	Match(s Subject) bool
	String() string
}

// Matches reports whether name satisfies rule. A nil rule matches nothing.
func Matches(name string, rule Rule) bool {
	if rule == nil {
		return false
	}
	return rule.Match(Subject{Name: name})
}

// Pattern matches when the regular expression is found anywhere in the name.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles src; a bad expression is reported as errkind.ErrMalformed.
func NewPattern(src string) (Pattern, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: regex %q: %w", errkind.ErrMalformed, src, err)
	}
	return Pattern{re: re}, nil
}

// MustPattern is NewPattern for constant expressions.
func MustPattern(src string) Pattern {
	p, err := NewPattern(src)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) Match(s Subject) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(s.Name)
}

func (p Pattern) String() string {
	if p.re == nil {
		return "regex()"
	}
	return "regex(" + p.re.String() + ")"
}

// Keywords matches when any keyword is contained in the lowercased name.
type Keywords struct {
	words []string
}

// NewKeywords lowercases and trims words; blanks are dropped.
func NewKeywords(words ...string) Keywords {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return Keywords{words: out}
}

func (k Keywords) Match(s Subject) bool {
	name := strings.ToLower(s.Name)
	for _, w := range k.words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// Words returns a copy of the normalized vocabulary.
func (k Keywords) Words() []string {
	return append([]string(nil), k.words...)
}

func (k Keywords) String() string {
	return "keywords(" + strings.Join(k.words, ",") + ")"
}

// Glob matches the name (or the full path when OnPath is set) against a doublestar pattern.
type Glob struct {
	pattern string
	onPath  bool
}

// NewGlob validates pattern up front so evaluation cannot fail later.
func NewGlob(pattern string, onPath bool) (Glob, error) {
	if !doublestar.ValidatePattern(pattern) {
		return Glob{}, fmt.Errorf("%w: glob %q", errkind.ErrMalformed, pattern)
	}
	return Glob{pattern: pattern, onPath: onPath}, nil
}

func (g Glob) Match(s Subject) bool {
	target := s.Name
	if g.onPath {
		target = s.Path
	}
	ok, err := doublestar.Match(g.pattern, target)
	return err == nil && ok
}

func (g Glob) String() string {
	if g.onPath {
		return "path-glob(" + g.pattern + ")"
	}
	return "glob(" + g.pattern + ")"
}

// Expr is a boolean expression over name, path, depth, and children.
type Expr struct {
	src     string
	program *vm.Program
}

func exprEnv(s Subject) map[string]any {
	return map[string]any{
		"name":     s.Name,
		"path":     s.Path,
		"depth":    s.Depth,
		"children": s.Children,
	}
}

// NewExpr compiles src against the subject environment.
func NewExpr(src string) (Expr, error) {
	program, err := expr.Compile(src, expr.Env(exprEnv(Subject{})), expr.AsBool())
	if err != nil {
		return Expr{}, fmt.Errorf("%w: expr %q: %w", errkind.ErrMalformed, src, err)
	}
	return Expr{src: src, program: program}, nil
}

func (e Expr) Match(s Subject) bool {
	if e.program == nil {
		return false
	}
	out, err := expr.Run(e.program, exprEnv(s))
	if err != nil {
		return false
	}
	matched, _ := out.(bool)
	return matched
}

func (e Expr) String() string {
	return "expr(" + e.src + ")"
}

// AnyOf matches when at least one member matches. The empty set matches nothing.
type AnyOf []Rule

func (a AnyOf) Match(s Subject) bool {
	for _, r := range a {
		if r != nil && r.Match(s) {
			return true
		}
	}
	return false
}

func (a AnyOf) String() string {
	parts := make([]string, 0, len(a))
	for _, r := range a {
		if r != nil {
			parts = append(parts, r.String())
		}
	}
	return "any(" + strings.Join(parts, " | ") + ")"
}
