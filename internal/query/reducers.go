package query

import (
	"github.com/rpmgoal/rpmgoal/internal/idset"
)

// HistoryProvider restricts a package set to what the user originally
// requested, the contract the History DB collaborator exposes.
type HistoryProvider interface {
	FilterUserInstalled(*idset.PackageSet) *idset.PackageSet
}

// UnneededComputer runs a throwaway resolve marking the given set as
// user-installed and reports back which installed packages nothing
// depends on, the contract a Goal exposes without this package needing to
// import internal/goal.
type UnneededComputer interface {
	ComputeUnneeded(userInstalled *idset.PackageSet) (*idset.PackageSet, error)
}

// Installed intersects the current result with solvables in the installed
// repo.
func (q *Query) Installed() (*idset.PackageSet, error) {
	result, err := q.Apply()
	if err != nil {
		return nil, err
	}
	p := q.sack.Pool()
	repoId, ok := p.InstalledRepoId()
	if !ok {
		q.result = idset.New()
		return q.result, nil
	}
	installed := idset.New()
	result.Each(func(id int) {
		if p.MustGet(id).RepoId == repoId {
			installed.Set(id)
		}
	})
	q.result = installed
	return q.result, nil
}

// Available subtracts installed-repo solvables from the current result.
func (q *Query) Available() (*idset.PackageSet, error) {
	result, err := q.Apply()
	if err != nil {
		return nil, err
	}
	p := q.sack.Pool()
	repoId, ok := p.InstalledRepoId()
	if !ok {
		return result, nil
	}
	available := idset.New()
	result.Each(func(id int) {
		if p.MustGet(id).RepoId != repoId {
			available.Set(id)
		}
	})
	q.result = available
	return q.result, nil
}

// FilterExtras narrows the result to installed solvables with no
// (name,arch) match among all available solvables.
func (q *Query) FilterExtras() (*idset.PackageSet, error) {
	result, err := q.Apply()
	if err != nil {
		return nil, err
	}
	p := q.sack.Pool()
	repoId, ok := p.InstalledRepoId()
	if !ok {
		return result, nil
	}

	availableNameArch := map[[2]string]bool{}
	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		if sv.RepoId != repoId {
			availableNameArch[[2]string{sv.Name, sv.Arch}] = true
		}
	})

	extras := idset.New()
	result.Each(func(id int) {
		sv := p.MustGet(id)
		if sv.RepoId == repoId && !availableNameArch[[2]string{sv.Name, sv.Arch}] {
			extras.Set(id)
		}
	})
	q.result = extras
	return q.result, nil
}

// FilterDuplicated narrows the result to installed solvables whose name
// group has at least two distinct evrs.
func (q *Query) FilterDuplicated() (*idset.PackageSet, error) {
	if _, err := q.Apply(); err != nil {
		return nil, err
	}
	p := q.sack.Pool()
	repoId, ok := p.InstalledRepoId()
	if !ok {
		q.result = idset.New()
		return q.result, nil
	}

	byName := map[string][]int{}
	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		if sv.RepoId == repoId {
			byName[sv.Name] = append(byName[sv.Name], id)
		}
	})

	dup := idset.New()
	for _, ids := range byName {
		distinctEVRs := map[string]bool{}
		for _, id := range ids {
			distinctEVRs[p.MustGet(id).EVR.String()] = true
		}
		if len(distinctEVRs) >= 2 {
			for _, id := range ids {
				dup.Set(id)
			}
		}
	}
	q.result = dup
	return q.result, nil
}

// FilterRecent drops solvables with build-time at or before cutoff.
func (q *Query) FilterRecent(cutoff int64) (*idset.PackageSet, error) {
	result, err := q.Apply()
	if err != nil {
		return nil, err
	}
	p := q.sack.Pool()
	recent := idset.New()
	result.Each(func(id int) {
		if p.MustGet(id).BuildTime > cutoff {
			recent.Set(id)
		}
	})
	q.result = recent
	return q.result, nil
}

// FilterUnneeded narrows the result to installed-but-unneeded packages:
// packages the user did not ask for and that nothing remaining installed
// requires.
func (q *Query) FilterUnneeded(history HistoryProvider, uc UnneededComputer) (*idset.PackageSet, error) {
	result, err := q.Apply()
	if err != nil {
		return nil, err
	}
	userInstalled := history.FilterUserInstalled(q.sack.PkgSolvables())
	unneeded, err := uc.ComputeUnneeded(userInstalled)
	if err != nil {
		return nil, err
	}
	q.result = idset.Intersect(result, unneeded)
	return q.result, nil
}

// FilterSafeToRemove is FilterUnneeded but first subtracts the current
// result from the user-installed set before marking, so packages already
// in the result are never treated as "the user asked for this".
func (q *Query) FilterSafeToRemove(history HistoryProvider, uc UnneededComputer) (*idset.PackageSet, error) {
	result, err := q.Apply()
	if err != nil {
		return nil, err
	}
	userInstalled := history.FilterUserInstalled(q.sack.PkgSolvables())
	adjusted := idset.Difference(userInstalled, result)
	unneeded, err := uc.ComputeUnneeded(adjusted)
	if err != nil {
		return nil, err
	}
	q.result = idset.Intersect(result, unneeded)
	return q.result, nil
}
