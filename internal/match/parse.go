package match

import (
	"fmt"
	"strings"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// Rule kinds accepted by Parse.
const (
	KindRegex    = "regex"
	KindKeywords = "keywords"
	KindGlob     = "glob"
	KindPathGlob = "path-glob"
	KindExpr     = "expr"
)

// Parse builds a rule of the given kind from its textual form. Keywords are
// comma separated.
func Parse(kind string, source string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindRegex:
		return NewPattern(source)
	case KindKeywords:
		return NewKeywords(strings.Split(source, ",")...), nil
	case KindGlob:
		return NewGlob(source, false)
	case KindPathGlob:
		return NewGlob(source, true)
	case KindExpr:
		return NewExpr(source)
	default:
		return nil, fmt.Errorf("%w: unknown rule kind %q", errkind.ErrMalformed, kind)
	}
}
