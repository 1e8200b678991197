// Package pool implements the read-only façade over the package universe
// that every other core component borrows ids from: solvable storage,
// EVR comparison, provides/requires/conflicts/obsoletes walking, repository
// enumeration, and the considered bitmap that excludes/module-excludes
// apply against.
package pool

import (
	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
)

// Repo is a package source: the installed repo, or an available repo with
// a priority (higher wins ties between repos offering the same name).
type Repo struct {
	Id        int
	Name      string
	Installed bool
	Priority  int
}

// SolvableSpec is the caller-facing shape used to add a package to the
// pool; Pool copies it into an owned Solvable and assigns the id.
type SolvableSpec struct {
	Name        string
	EVR         nevra.EVR
	Arch        string
	Provides    []dependency.Reldep
	Requires    []dependency.Reldep
	Conflicts   []dependency.Reldep
	Obsoletes   []dependency.Reldep
	Recommends  []dependency.Reldep
	Suggests    []dependency.Reldep
	Supplements []dependency.Reldep
	Enhances    []dependency.Reldep
	Files       []string
	Description string
	Summary     string
	URL         string
	SourceRPM   string
	Location    string
	BuildTime   int64
}

// Solvable is one package instance: a name/EVR/arch identity plus its
// attribute arrays. Solvables are immutable once added; ids are stable for
// the Pool's lifetime.
type Solvable struct {
	Id     int
	RepoId int
	SolvableSpec
}

// Pool owns every Solvable and Repo and is the only thing the rest of the
// core holds borrowed ids into; higher components never store *Solvable or
// *Repo pointers, only ids, per the arena+index design.
type Pool struct {
	solvables     []*Solvable // index 0 is never used; ids start at 1
	repos         []*Repo
	installedRepo int // -1 if no repo is marked installed
	considered    *idset.PackageSet
	nameIndex     map[string][]int
	advisories    []Advisory
}

// New returns an empty Pool with no repos and an unset considered bitmap
// (meaning: nothing excluded).
func New() *Pool {
	return &Pool{
		solvables:     []*Solvable{nil},
		installedRepo: -1,
		considered:    idset.New(),
		nameIndex:     make(map[string][]int),
	}
}

// AddRepo registers a repo and returns its id. At most one repo may be
// marked installed; adding a second installed repo is a programmer error
// and panics, mirroring the pool's "one repository is marked installed"
// invariant.
func (p *Pool) AddRepo(name string, installed bool, priority int) int {
	if installed && p.installedRepo != -1 {
		panic("pool: a second repo was marked installed")
	}
	id := len(p.repos) + 1
	p.repos = append(p.repos, &Repo{Id: id, Name: name, Installed: installed, Priority: priority})
	if installed {
		p.installedRepo = id
	}
	return id
}

// Repo returns the repo with the given id, or nil if it does not exist.
func (p *Pool) Repo(id int) *Repo {
	if id <= 0 || id > len(p.repos) {
		return nil
	}
	return p.repos[id-1]
}

// Repos returns every registered repo.
func (p *Pool) Repos() []*Repo { return p.repos }

// RepoByName returns the repo with the given name, or nil.
func (p *Pool) RepoByName(name string) *Repo {
	for _, r := range p.repos {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// InstalledRepoId returns the installed repo's id, or (-1, false) if none
// has been registered yet.
func (p *Pool) InstalledRepoId() (int, bool) {
	return p.installedRepo, p.installedRepo != -1
}

// AddSolvable adds a package to repoId and returns its new id. A self
// provide ("name = evr") is implicitly prepended to Provides, mirroring
// RPM's own implicit self-provide rule, so explicit provides never need to
// restate the package's own identity.
func (p *Pool) AddSolvable(repoId int, spec SolvableSpec) int {
	id := len(p.solvables)
	self := dependency.Reldep{Name: spec.Name, Op: dependency.OpEQ, EVR: spec.EVR, HasEVR: true}
	spec.Provides = append([]dependency.Reldep{self}, spec.Provides...)

	sv := &Solvable{Id: id, RepoId: repoId, SolvableSpec: spec}
	p.solvables = append(p.solvables, sv)
	p.nameIndex[spec.Name] = append(p.nameIndex[spec.Name], id)
	p.considered.Set(id)
	return id
}

// Get returns the solvable for id, or (nil, false) if id is out of range.
func (p *Pool) Get(id int) (*Solvable, bool) {
	if id <= 0 || id >= len(p.solvables) {
		return nil, false
	}
	return p.solvables[id], true
}

// MustGet is Get without the ok return, for call sites already holding an
// id known to be valid (e.g. one just read back from a PackageSet this
// Pool produced).
func (p *Pool) MustGet(id int) *Solvable {
	sv, ok := p.Get(id)
	if !ok {
		panic("pool: invalid solvable id")
	}
	return sv
}

// Size returns one past the highest assigned id.
func (p *Pool) Size() int { return len(p.solvables) }

// AllIds returns every real solvable id, without considering the
// considered bitmap.
func (p *Pool) AllIds() *idset.PackageSet {
	s := idset.New()
	for id := 1; id < len(p.solvables); id++ {
		s.Set(id)
	}
	return s
}

// Considered returns the pool-wide considered bitmap. It starts out
// containing every solvable as it is added; ExcludeIds/IncludeIds
// narrow or widen it.
func (p *Pool) Considered() *idset.PackageSet { return p.considered }

// SetConsidered replaces the considered bitmap wholesale.
func (p *Pool) SetConsidered(s *idset.PackageSet) { p.considered = s }

// ExcludeIds removes ids from the considered bitmap (ordinary or modular
// excludes).
func (p *Pool) ExcludeIds(ids *idset.PackageSet) { p.considered.Difference(ids) }

// IncludeIds re-adds previously excluded ids to the considered bitmap.
func (p *Pool) IncludeIds(ids *idset.PackageSet) { p.considered.Union(ids) }

// CompareEVR exposes the pool's EVR ordering to higher components so they
// never need to import nevra directly for comparisons tied to a solvable.
func (p *Pool) CompareEVR(a, b nevra.EVR) int { return nevra.Compare(a, b) }

// ByName returns every solvable id with the given name, considered or not.
func (p *Pool) ByName(name string) []int {
	ids := p.nameIndex[name]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// WhatProvides returns every considered solvable id whose Provides array
// contains an entry matching r: same name, and (if r carries a version
// constraint) a provide version that satisfies it. A provide with no
// version of its own is treated as satisfying any constraint on its name,
// mirroring unversioned-provides semantics.
func (p *Pool) WhatProvides(r dependency.Reldep) *idset.PackageSet {
	return p.matchReldepArray(r, func(sv *Solvable) []dependency.Reldep { return sv.Provides })
}

// WhatRequires returns every considered solvable id that requires r.
func (p *Pool) WhatRequires(r dependency.Reldep) *idset.PackageSet {
	return p.matchReldepArray(r, func(sv *Solvable) []dependency.Reldep { return sv.Requires })
}

// WhatConflicts returns every considered solvable id that conflicts with r.
func (p *Pool) WhatConflicts(r dependency.Reldep) *idset.PackageSet {
	return p.matchReldepArray(r, func(sv *Solvable) []dependency.Reldep { return sv.Conflicts })
}

// WhatObsoletes returns every considered solvable id that obsoletes r.
// obsoletesUsesProvides mirrors POOL_FLAG_OBSOLETEUSESPROVIDES: when false,
// matching requires an exact name+evr match on the candidate itself
// (pool_match_nevr) rather than a provides walk.
func (p *Pool) WhatObsoletes(r dependency.Reldep, obsoletesUsesProvides bool) *idset.PackageSet {
	result := idset.New()
	p.considered.Each(func(id int) {
		sv := p.solvables[id]
		for _, od := range sv.Obsoletes {
			if od.Name != r.Name {
				continue
			}
			if !reldepSatisfiedBy(r, od) {
				continue
			}
			if obsoletesUsesProvides {
				result.Set(id)
			} else if p.matchNevr(id, r) {
				result.Set(id)
			}
			break
		}
	})
	return result
}

// matchNevr reports whether solvable id's own name+evr exactly matches r,
// the pool_match_nevr helper obsoletes-without-provides relies on.
func (p *Pool) matchNevr(id int, r dependency.Reldep) bool {
	sv := p.solvables[id]
	if sv.Name != r.Name {
		return false
	}
	if !r.HasEVR {
		return true
	}
	return r.Satisfies(sv.EVR)
}

func (p *Pool) matchReldepArray(r dependency.Reldep, arrayOf func(*Solvable) []dependency.Reldep) *idset.PackageSet {
	result := idset.New()
	p.considered.Each(func(id int) {
		sv := p.solvables[id]
		for _, d := range arrayOf(sv) {
			if d.Name != r.Name {
				continue
			}
			if reldepSatisfiedBy(r, d) {
				result.Set(id)
				break
			}
		}
	})
	return result
}

// reldepSatisfiedBy reports whether an attribute-array entry d (e.g. one
// solvable's single Provides entry) matches a query reldep r: same name
// already established by the caller; here we check the version relation.
// An unversioned d satisfies any r (an unversioned provide covers every
// version constraint on its name). An unversioned r is satisfied by any d.
func reldepSatisfiedBy(r, d dependency.Reldep) bool {
	if !r.HasEVR || !d.HasEVR {
		return true
	}
	return r.Satisfies(d.EVR)
}
