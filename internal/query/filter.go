// Package query implements the Filter predicate and Query evaluation
// engine: an ordered list of filters lazily evaluated into a PackageSet,
// set algebra over queries, and the convenience reducers (latest,
// duplicated, extras, recent, unneeded, safe-to-remove, installed,
// available) layered on top.
package query

import (
	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/idset"
)

// Keyname selects which evaluator a Filter dispatches to.
type Keyname int

const (
	PKG Keyname = iota
	PKG_ALL
	PKG_EMPTY
	NAME
	EPOCH
	EVR
	VERSION
	RELEASE
	ARCH
	NEVRA
	NEVRA_STRICT
	SOURCERPM
	PROVIDES
	CONFLICTS
	ENHANCES
	RECOMMENDS
	REQUIRES
	SUGGESTS
	SUPPLEMENTS
	OBSOLETES
	OBSOLETES_BY_PRIORITY
	REPONAME
	LOCATION
	ADVISORY
	ADVISORY_TYPE
	ADVISORY_SEVERITY
	LATEST
	LATEST_PER_ARCH
	LATEST_PER_ARCH_BY_PRIORITY
	UPGRADES
	DOWNGRADES
	UPGRADES_BY_PRIORITY
	UPGRADABLE
	DOWNGRADABLE
	DESCRIPTION
	SUMMARY
	URL
	FILE
)

// Cmp is the comparison-flags bitset spec.md §3 defines for Filter.
type Cmp uint32

const (
	CmpEQ Cmp = 1 << iota
	CmpLT
	CmpGT
	CmpGlob
	CmpICase
	CmpSubstr
	CmpNot
)

// CmpNEQ is EQ|NOT, spelled out per spec.md's "NEQ = EQ|NOT" note.
const CmpNEQ = CmpEQ | CmpNot

// MatchType names which field of a Filter's match payload is populated.
type MatchType int

const (
	MatchNum MatchType = iota
	MatchStr
	MatchReldep
	MatchPkgSet
)

// Filter is an immutable predicate value: a keyname, comparison flags, and
// exactly one kind of match payload.
type Filter struct {
	Keyname   Keyname
	Cmp       Cmp
	MatchType MatchType
	Nums      []int
	Strs      []string
	Reldeps   []dependency.Reldep
	PkgSet    *idset.PackageSet
}

// hasGlobMeta reports whether s contains any fnmatch-style metacharacter,
// used to downgrade a GLOB comparison to EQ when the pattern is actually
// a plain string per spec.md §4.1's validation rule.
func hasGlobMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}

// normalizeCmp downgrades GLOB to EQ when none of the filter's string
// matches contain glob metacharacters.
func normalizeCmp(cmp Cmp, strs []string) Cmp {
	if cmp&CmpGlob == 0 {
		return cmp
	}
	for _, s := range strs {
		if hasGlobMeta(s) {
			return cmp
		}
	}
	return (cmp &^ CmpGlob) | CmpEQ
}

// keynameAllows reports whether keyname accepts the given match type and
// comparison combination, the table spec.md §4.1 validates addFilter
// against.
func keynameAllows(k Keyname, mt MatchType, cmp Cmp) bool {
	switch k {
	case PKG, OBSOLETES, OBSOLETES_BY_PRIORITY:
		return mt == MatchPkgSet
	case PKG_ALL, PKG_EMPTY:
		return true
	case NAME, ARCH, SOURCERPM, REPONAME, LOCATION, DESCRIPTION, SUMMARY, URL, FILE, NEVRA, NEVRA_STRICT,
		EPOCH, EVR, VERSION, RELEASE, ADVISORY, ADVISORY_TYPE, ADVISORY_SEVERITY:
		return mt == MatchStr || mt == MatchNum
	case PROVIDES, CONFLICTS, ENHANCES, RECOMMENDS, REQUIRES, SUGGESTS, SUPPLEMENTS:
		return mt == MatchStr || mt == MatchReldep || mt == MatchPkgSet
	case LATEST, LATEST_PER_ARCH, LATEST_PER_ARCH_BY_PRIORITY:
		return mt == MatchNum
	case UPGRADES, DOWNGRADES, UPGRADES_BY_PRIORITY, UPGRADABLE, DOWNGRADABLE:
		return true
	default:
		return false
	}
}
