// Package selector implements the Selector value type and sltrToJob
// lowering: a small structured target description that validates itself
// for well-formedness and resolves to a solver job.
package selector

import (
	"path/filepath"
	"strings"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/goalerr"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/query"
	"github.com/rpmgoal/rpmgoal/internal/solver"
)

// Selector is a small structured target description: at most one required
// filter (pkgs/name/file/provides) plus optional modifiers (arch/evr/
// reponame) that further narrow the required filter's matches.
type Selector struct {
	Pkgs     *idset.PackageSet
	Name     *query.Filter
	File     *query.Filter
	Provides *query.Filter
	Arch     *query.Filter
	EVR      *query.Filter
	Reponame *query.Filter
}

// IsEmpty reports whether no filter at all is set.
func (s Selector) IsEmpty() bool {
	return s.Pkgs == nil && s.Name == nil && s.File == nil && s.Provides == nil &&
		s.Arch == nil && s.EVR == nil && s.Reponame == nil
}

func hasRequired(s Selector) bool {
	return s.Pkgs != nil || s.Name != nil || s.File != nil || s.Provides != nil
}

func hasOptional(s Selector) bool {
	return s.Arch != nil || s.EVR != nil || s.Reponame != nil
}

func singleMatch(f *query.Filter) (string, error) {
	if len(f.Strs) != 1 {
		return "", goalerr.New(goalerr.BadSelector, "filter must carry exactly one match, got %d", len(f.Strs))
	}
	return f.Strs[0], nil
}

// ToJob lowers sel into zero or one solver jobs, OR-ing action into the
// resulting tuple's flags. An empty selector (no filter at all) lowers to
// an empty job queue. A selector with only optional filters set is
// BAD_SELECTOR.
func ToJob(p *pool.Pool, sel Selector, action solver.Action) ([]solver.Job, error) {
	if sel.IsEmpty() {
		return nil, nil
	}
	if !hasRequired(sel) && hasOptional(sel) {
		return nil, goalerr.New(goalerr.BadSelector, "optional filter set without a required filter")
	}

	result := idset.New()
	var mods []solver.Modifier
	matchedAny := false

	if sel.Pkgs != nil {
		result.Union(sel.Pkgs)
		mods = append(mods, solver.ModSetArch, solver.ModSetEVR)
		matchedAny = true
	}

	if sel.Name != nil {
		ids, err := resolveName(p, sel.Name)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			matchedAny = true
		}
		result.Union(idsToSet(ids))
	}

	if sel.File != nil {
		ids, err := resolveFile(p, sel.File)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			matchedAny = true
		}
		result.Union(idsToSet(ids))
	}

	if sel.Provides != nil {
		ids, err := resolveProvides(p, sel.Provides)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			matchedAny = true
		}
		result.Union(idsToSet(ids))
	}

	if !matchedAny {
		// Every required filter came back NO_MATCH: an empty job, which the
		// solver will later report as JOB_UNKNOWN_PACKAGE/NOTHING_PROVIDES.
		return []solver.Job{{Flags: solver.NewJobFlags(solver.SelectionOneOf, action), OneOf: nil}}, nil
	}

	if sel.Arch != nil {
		arch, err := singleCmpEQ(sel.Arch, "arch")
		if err != nil {
			return nil, err
		}
		result = narrow(p, result, func(sv *pool.Solvable) bool { return sv.Arch == arch })
		mods = append(mods, solver.ModSetArch)
	}

	if sel.EVR != nil {
		evrStr, err := singleCmpEQ(sel.EVR, "evr")
		if err != nil {
			return nil, err
		}
		target := nevra.ParseEVR(evrStr)
		result = narrow(p, result, func(sv *pool.Solvable) bool { return nevra.Compare(sv.EVR, target) == 0 })
		mods = append(mods, solver.ModSetEVR)
	}

	if sel.Reponame != nil {
		name, err := singleCmpEQ(sel.Reponame, "reponame")
		if err != nil {
			return nil, err
		}
		result = narrow(p, result, func(sv *pool.Solvable) bool {
			repo := p.Repo(sv.RepoId)
			return repo != nil && repo.Name == name
		})
	}

	flags := solver.NewJobFlags(solver.SelectionOneOf, action).With(mods...)
	return []solver.Job{{Flags: flags, OneOf: result.Ids()}}, nil
}

func singleCmpEQ(f *query.Filter, label string) (string, error) {
	if f.Cmp&query.CmpEQ == 0 {
		return "", goalerr.New(goalerr.BadSelector, "%s filter must use EQ", label)
	}
	return singleMatch(f)
}

func idsToSet(ids []int) *idset.PackageSet {
	s := idset.New()
	for _, id := range ids {
		s.Set(id)
	}
	return s
}

func narrow(p *pool.Pool, in *idset.PackageSet, keep func(*pool.Solvable) bool) *idset.PackageSet {
	out := idset.New()
	in.Each(func(id int) {
		if keep(p.MustGet(id)) {
			out.Set(id)
		}
	})
	return out
}

func resolveName(p *pool.Pool, f *query.Filter) ([]int, error) {
	if f.Cmp&query.CmpEQ == 0 && f.Cmp&query.CmpGlob == 0 {
		return nil, goalerr.New(goalerr.BadSelector, "name filter must use EQ or GLOB")
	}
	match, err := singleMatch(f)
	if err != nil {
		return nil, err
	}
	if f.Cmp&query.CmpGlob != 0 {
		var out []int
		for _, id := range p.Considered().Ids() {
			sv := p.MustGet(id)
			if ok, _ := filepath.Match(match, sv.Name); ok {
				out = append(out, id)
			}
		}
		return out, nil
	}
	var out []int
	for _, id := range p.ByName(match) {
		if p.Considered().Has(id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func resolveFile(p *pool.Pool, f *query.Filter) ([]int, error) {
	if f.Cmp&query.CmpEQ == 0 && f.Cmp&query.CmpGlob == 0 {
		return nil, goalerr.New(goalerr.BadSelector, "file filter must use EQ or GLOB")
	}
	match, err := singleMatch(f)
	if err != nil {
		return nil, err
	}
	icase := f.Cmp&query.CmpICase != 0
	var out []int
	for _, id := range p.Considered().Ids() {
		sv := p.MustGet(id)
		for _, path := range sv.Files {
			p1, p2 := path, match
			if icase {
				p1, p2 = strings.ToLower(p1), strings.ToLower(p2)
			}
			if f.Cmp&query.CmpGlob != 0 {
				if ok, _ := filepath.Match(p2, p1); ok {
					out = append(out, id)
					break
				}
			} else if p1 == p2 {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

func resolveProvides(p *pool.Pool, f *query.Filter) ([]int, error) {
	var expr string
	switch {
	case len(f.Reldeps) == 1:
		return p.WhatProvides(f.Reldeps[0]).Ids(), nil
	case len(f.Strs) == 1:
		expr = f.Strs[0]
	default:
		return nil, goalerr.New(goalerr.BadSelector, "provides filter must carry exactly one match")
	}
	r, err := dependency.ParseReldep(expr)
	if err != nil {
		return nil, goalerr.Wrap(goalerr.BadSelector, err, "invalid provides match %q", expr)
	}
	return p.WhatProvides(r).Ids(), nil
}
