// Package dependency implements the reldep value type and DependencyList
// collection: structured "name [op EVR]" dependency expressions, their
// string parsing, and glob expansion against a candidate name space.
package dependency

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rpmgoal/rpmgoal/internal/nevra"
)

// Op is a relational operator attached to a reldep's EVR, a small subset
// of the comparison-flags bitset spec.md §3 defines for Filter, specialized
// to the operators a dependency expression can actually spell out.
type Op int

const (
	// OpNone means the reldep carries no version constraint, just a name.
	OpNone Op = iota
	OpLT
	OpLE
	OpEQ
	OpGE
	OpGT
	OpNE
)

func (o Op) String() string {
	switch o {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpEQ:
		return "="
	case OpGE:
		return ">="
	case OpGT:
		return ">"
	case OpNE:
		return "!="
	default:
		return ""
	}
}

var opTokens = []struct {
	token string
	op    Op
}{
	{"<=", OpLE},
	{">=", OpGE},
	{"==", OpEQ},
	{"!=", OpNE},
	{"<", OpLT},
	{">", OpGT},
	{"=", OpEQ},
}

// Reldep is a single structured dependency expression: a name, optionally
// constrained to an EVR via a relational operator.
type Reldep struct {
	Name   string
	Op     Op
	EVR    nevra.EVR
	HasEVR bool
}

// String renders the canonical "name[ op evr]" form.
func (r Reldep) String() string {
	if r.Op == OpNone || !r.HasEVR {
		return r.Name
	}
	return fmt.Sprintf("%s %s %s", r.Name, r.Op, r.EVR.String())
}

// ParseReldep parses "name", "name op evr", or "name op version[-release]"
// where op is one of <, <=, =, ==, >=, >, !=; whitespace around op is
// optional (e.g. "libc >= 2.34-1" or "libc>=2.34").
func ParseReldep(s string) (Reldep, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reldep{}, fmt.Errorf("dependency: empty reldep")
	}

	for _, t := range opTokens {
		if idx := strings.Index(s, t.token); idx > 0 {
			name := strings.TrimSpace(s[:idx])
			rest := strings.TrimSpace(s[idx+len(t.token):])
			if name == "" || rest == "" {
				continue
			}
			if strings.ContainsAny(name, "<>=!") || strings.ContainsAny(rest, "<>=!") {
				// The operator token matched inside a longer token
				// (e.g. "!=" also contains "=", ">=" also contains ">");
				// keep scanning for the longest/earliest real split.
				continue
			}
			return Reldep{Name: name, Op: t.op, EVR: nevra.ParseEVR(rest), HasEVR: true}, nil
		}
	}

	if strings.ContainsAny(s, "<>=! \t") {
		return Reldep{}, fmt.Errorf("dependency: %q: malformed reldep expression", s)
	}
	return Reldep{Name: s}, nil
}

// Satisfies reports whether a candidate EVR satisfies this reldep's
// constraint (always true for a bare, unconstrained name reldep).
func (r Reldep) Satisfies(candidate nevra.EVR) bool {
	if r.Op == OpNone || !r.HasEVR {
		return true
	}
	c := nevra.Compare(candidate, r.EVR)
	switch r.Op {
	case OpLT:
		return c < 0
	case OpLE:
		return c <= 0
	case OpEQ:
		return c == 0
	case OpGE:
		return c >= 0
	case OpGT:
		return c > 0
	case OpNE:
		return c != 0
	default:
		return true
	}
}

// DependencyList is an ordered collection of reldeps, the unit attached to
// each solvable's provides/requires/conflicts/... arrays and the shape a
// Filter's match-type=reldep value carries.
type DependencyList struct {
	deps []Reldep
}

// NewDependencyList returns an empty list, optionally parsing each of the
// given strings as a reldep. A parse failure is returned immediately and no
// partial list is built.
func NewDependencyList(exprs ...string) (*DependencyList, error) {
	dl := &DependencyList{}
	for _, e := range exprs {
		r, err := ParseReldep(e)
		if err != nil {
			return nil, err
		}
		dl.deps = append(dl.deps, r)
	}
	return dl, nil
}

// Add appends a reldep.
func (dl *DependencyList) Add(r Reldep) { dl.deps = append(dl.deps, r) }

// Len returns the number of reldeps.
func (dl *DependencyList) Len() int { return len(dl.deps) }

// At returns the reldep at index i.
func (dl *DependencyList) At(i int) Reldep { return dl.deps[i] }

// All returns the underlying slice; callers must not mutate it.
func (dl *DependencyList) All() []Reldep { return dl.deps }

// String joins every reldep with ", ".
func (dl *DependencyList) String() string {
	parts := make([]string, len(dl.deps))
	for i, d := range dl.deps {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

// ExpandGlob matches pattern (shell-glob syntax, e.g. "kernel-*") against
// every name in candidates and returns one unconstrained EQ-less reldep per
// match, in candidates order. Invalid glob syntax is reported rather than
// silently matching nothing.
func ExpandGlob(pattern string, candidates []string) ([]Reldep, error) {
	var out []Reldep
	for _, name := range candidates {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("dependency: bad glob %q: %w", pattern, err)
		}
		if ok {
			out = append(out, Reldep{Name: name})
		}
	}
	return out, nil
}
