package cli

import (
	"fmt"

	"github.com/rpmgoal/rpmgoal/internal/query"
	"github.com/rpmgoal/rpmgoal/internal/selector"
)

// targetSelector builds a name-or-provides Selector from the given flag
// values, the shape every mutating subcommand's target argument lowers to.
func targetSelector(name, provides string) (selector.Selector, error) {
	var sel selector.Selector
	switch {
	case name != "" && provides != "":
		return sel, fmt.Errorf("specify either a package name or --provides, not both")
	case name != "":
		cmp := query.CmpEQ
		if hasGlobChar(name) {
			cmp = query.CmpGlob
		}
		sel.Name = &query.Filter{Keyname: query.NAME, Cmp: cmp, MatchType: query.MatchStr, Strs: []string{name}}
	case provides != "":
		sel.Provides = &query.Filter{Keyname: query.PROVIDES, Cmp: query.CmpEQ, MatchType: query.MatchStr, Strs: []string{provides}}
	default:
		return sel, fmt.Errorf("a package name or --provides is required")
	}
	return sel, nil
}
