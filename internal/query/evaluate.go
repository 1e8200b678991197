package query

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
)

func matchString(cmp Cmp, value string, patterns []string) bool {
	icase := cmp&CmpICase != 0
	for _, pat := range patterns {
		v, p := value, pat
		if icase {
			v = strings.ToLower(v)
			p = strings.ToLower(p)
		}
		switch {
		case cmp&CmpGlob != 0:
			if ok, _ := filepath.Match(p, v); ok {
				return true
			}
		case cmp&CmpSubstr != 0:
			if strings.Contains(v, p) {
				return true
			}
		default:
			if v == p {
				return true
			}
		}
	}
	return false
}

func matchNum(cmp Cmp, value int, nums []int) bool {
	for _, n := range nums {
		switch {
		case cmp&CmpLT != 0:
			if value < n {
				return true
			}
		case cmp&CmpGT != 0:
			if value > n {
				return true
			}
		default:
			if value == n {
				return true
			}
		}
	}
	return false
}

func matchEVR(cmp Cmp, candidate nevra.EVR, targets []nevra.EVR) bool {
	for _, t := range targets {
		c := nevra.Compare(candidate, t)
		switch {
		case cmp&CmpLT != 0:
			if c < 0 {
				return true
			}
		case cmp&CmpGT != 0:
			if c > 0 {
				return true
			}
		default:
			if c == 0 {
				return true
			}
		}
	}
	return false
}

func solvableReldepArray(sv *pool.Solvable, k Keyname) []dependency.Reldep {
	switch k {
	case PROVIDES:
		return sv.Provides
	case REQUIRES:
		return sv.Requires
	case CONFLICTS:
		return sv.Conflicts
	case OBSOLETES, OBSOLETES_BY_PRIORITY:
		return sv.Obsoletes
	case RECOMMENDS:
		return sv.Recommends
	case SUGGESTS:
		return sv.Suggests
	case SUPPLEMENTS:
		return sv.Supplements
	case ENHANCES:
		return sv.Enhances
	default:
		return nil
	}
}

// evalPositive computes a filter's raw match bitmap m over every considered
// candidate, ignoring the NOT bit (Apply handles inversion by subtracting m
// instead of intersecting it).
func evalPositive(p *pool.Pool, candidates []int, f Filter) (*idset.PackageSet, error) {
	switch f.Keyname {
	case PKG:
		return f.PkgSet.Clone(), nil
	case PKG_ALL:
		s := idset.New()
		for _, id := range candidates {
			s.Set(id)
		}
		return s, nil
	case PKG_EMPTY:
		return idset.New(), nil
	case NAME:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.Name }), nil
	case ARCH:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.Arch }), nil
	case SOURCERPM:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.SourceRPM }), nil
	case LOCATION:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.Location }), nil
	case DESCRIPTION:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.Description }), nil
	case SUMMARY:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.Summary }), nil
	case URL:
		return evalSimpleString(p, candidates, f, func(sv *pool.Solvable) string { return sv.URL }), nil
	case FILE:
		return evalFile(p, candidates, f), nil
	case EPOCH:
		return evalEpoch(p, candidates, f), nil
	case VERSION:
		return evalEVRComponent(p, candidates, f, func(e nevra.EVR) nevra.EVR { return nevra.EVR{Version: e.Version} }), nil
	case RELEASE:
		return evalEVRComponent(p, candidates, f, func(e nevra.EVR) nevra.EVR { return nevra.EVR{Version: e.Release} }), nil
	case EVR:
		return evalEVRComponent(p, candidates, f, func(e nevra.EVR) nevra.EVR { return e }), nil
	case NEVRA:
		return evalNevraString(p, candidates, f), nil
	case NEVRA_STRICT:
		return evalNevraStrict(p, candidates, f), nil
	case PROVIDES:
		return evalDependencyKeyname(p, candidates, f)
	case REQUIRES, CONFLICTS, RECOMMENDS, SUGGESTS, SUPPLEMENTS, ENHANCES:
		return evalDependencyKeyname(p, candidates, f)
	case OBSOLETES:
		return evalObsoletes(p, candidates, f.PkgSet, true), nil
	case OBSOLETES_BY_PRIORITY:
		return evalObsoletesByPriority(p, candidates, f.PkgSet), nil
	case REPONAME:
		return evalReponame(p, candidates, f), nil
	case ADVISORY:
		return evalAdvisory(p, candidates, f, func(a pool.Advisory) string { return a.ID }), nil
	case ADVISORY_TYPE:
		return evalAdvisory(p, candidates, f, func(a pool.Advisory) string { return a.Type }), nil
	case ADVISORY_SEVERITY:
		return evalAdvisory(p, candidates, f, func(a pool.Advisory) string { return a.Severity }), nil
	case LATEST:
		return evalLatest(p, candidates, f, false, false), nil
	case LATEST_PER_ARCH:
		return evalLatest(p, candidates, f, true, false), nil
	case LATEST_PER_ARCH_BY_PRIORITY:
		return evalLatest(p, candidates, f, true, true), nil
	case UPGRADES:
		return evalUpgradesDowngrades(p, candidates, true, false), nil
	case DOWNGRADES:
		return evalUpgradesDowngrades(p, candidates, false, false), nil
	case UPGRADES_BY_PRIORITY:
		return evalUpgradesDowngrades(p, candidates, true, true), nil
	case UPGRADABLE:
		return evalUpgradableDowngradable(p, candidates, true), nil
	case DOWNGRADABLE:
		return evalUpgradableDowngradable(p, candidates, false), nil
	default:
		return idset.New(), nil
	}
}

func evalSimpleString(p *pool.Pool, candidates []int, f Filter, field func(*pool.Solvable) string) *idset.PackageSet {
	result := idset.New()
	for _, id := range candidates {
		sv := p.MustGet(id)
		if matchString(f.Cmp, field(sv), f.Strs) {
			result.Set(id)
		}
	}
	return result
}

func evalFile(p *pool.Pool, candidates []int, f Filter) *idset.PackageSet {
	result := idset.New()
	for _, id := range candidates {
		sv := p.MustGet(id)
		for _, file := range sv.Files {
			if matchString(f.Cmp, file, f.Strs) {
				result.Set(id)
				break
			}
		}
	}
	return result
}

func evalEpoch(p *pool.Pool, candidates []int, f Filter) *idset.PackageSet {
	result := idset.New()
	nums := f.Nums
	if len(nums) == 0 {
		for _, s := range f.Strs {
			if n, err := strconv.Atoi(s); err == nil {
				nums = append(nums, n)
			}
		}
	}
	for _, id := range candidates {
		sv := p.MustGet(id)
		if matchNum(f.Cmp, sv.EVR.Epoch, nums) {
			result.Set(id)
		}
	}
	return result
}

func evalEVRComponent(p *pool.Pool, candidates []int, f Filter, project func(nevra.EVR) nevra.EVR) *idset.PackageSet {
	result := idset.New()
	targets := make([]nevra.EVR, len(f.Strs))
	for i, s := range f.Strs {
		targets[i] = project(nevra.ParseEVR(s))
	}
	for _, id := range candidates {
		sv := p.MustGet(id)
		if matchEVR(f.Cmp, project(sv.EVR), targets) {
			result.Set(id)
		}
	}
	return result
}

func evalNevraString(p *pool.Pool, candidates []int, f Filter) *idset.PackageSet {
	result := idset.New()
	for _, id := range candidates {
		sv := p.MustGet(id)
		n := nevra.NEVRA{Name: sv.Name, Epoch: sv.EVR.Epoch, HasEpoch: sv.EVR.HasEpoch, Version: sv.EVR.Version, Release: sv.EVR.Release, Arch: sv.Arch}
		if matchString(f.Cmp, n.String(), f.Strs) {
			result.Set(id)
			continue
		}
		noEpoch := n
		noEpoch.HasEpoch = false
		if matchString(f.Cmp, noEpoch.String(), f.Strs) {
			result.Set(id)
		}
	}
	return result
}

func evalNevraStrict(p *pool.Pool, candidates []int, f Filter) *idset.PackageSet {
	result := idset.New()
	var parsed []nevra.NEVRA
	for _, s := range f.Strs {
		if n, err := nevra.Parse(s); err == nil {
			parsed = append(parsed, n)
		}
	}
	for _, id := range candidates {
		sv := p.MustGet(id)
		for _, t := range parsed {
			if t.Name != sv.Name || t.Arch != sv.Arch {
				continue
			}
			c := nevra.Compare(sv.EVR, t.EVR())
			matched := false
			switch {
			case f.Cmp&CmpLT != 0:
				matched = c < 0
			case f.Cmp&CmpGT != 0:
				matched = c > 0
			default:
				matched = c == 0
			}
			if matched {
				result.Set(id)
				break
			}
		}
	}
	return result
}

func evalDependencyKeyname(p *pool.Pool, candidates []int, f Filter) (*idset.PackageSet, error) {
	reldeps := f.Reldeps
	if f.MatchType == MatchStr {
		for _, s := range f.Strs {
			r, err := dependency.ParseReldep(s)
			if err != nil {
				return nil, err
			}
			reldeps = append(reldeps, r)
		}
	}

	result := idset.New()
	if f.MatchType == MatchPkgSet {
		f.PkgSet.Each(func(targetId int) {
			target := p.MustGet(targetId)
			for _, id := range candidates {
				sv := p.MustGet(id)
				for _, d := range solvableReldepArray(sv, f.Keyname) {
					if d.Name == target.Name {
						result.Set(id)
						break
					}
				}
			}
		})
		return result, nil
	}

	for _, id := range candidates {
		sv := p.MustGet(id)
		arr := solvableReldepArray(sv, f.Keyname)
		for _, r := range reldeps {
			for _, d := range arr {
				if d.Name == r.Name && (!r.HasEVR || !d.HasEVR || r.Satisfies(d.EVR)) {
					result.Set(id)
					break
				}
			}
		}
	}
	return result, nil
}

func evalObsoletes(p *pool.Pool, candidates []int, target *idset.PackageSet, obsoletesUsesProvides bool) *idset.PackageSet {
	result := idset.New()
	for _, id := range candidates {
		sv := p.MustGet(id)
		for _, od := range sv.Obsoletes {
			matched := false
			if obsoletesUsesProvides {
				providers := p.WhatProvides(od)
				target.Each(func(tid int) {
					if providers.Has(tid) {
						matched = true
					}
				})
			} else {
				target.Each(func(tid int) {
					tsv := p.MustGet(tid)
					if tsv.Name == od.Name && od.Satisfies(tsv.EVR) {
						matched = true
					}
				})
			}
			if matched {
				result.Set(id)
				break
			}
		}
	}
	return result
}

func evalObsoletesByPriority(p *pool.Pool, candidates []int, target *idset.PackageSet) *idset.PackageSet {
	byName := map[string][]int{}
	for _, id := range candidates {
		sv := p.MustGet(id)
		byName[sv.Name] = append(byName[sv.Name], id)
	}
	var reduced []int
	for _, ids := range byName {
		bestPriority := -1 << 31
		for _, id := range ids {
			sv := p.MustGet(id)
			if repo := p.Repo(sv.RepoId); repo != nil && !repo.Installed && repo.Priority > bestPriority {
				bestPriority = repo.Priority
			}
		}
		for _, id := range ids {
			sv := p.MustGet(id)
			repo := p.Repo(sv.RepoId)
			if repo != nil && (repo.Installed || repo.Priority == bestPriority) {
				reduced = append(reduced, id)
			}
		}
	}
	return evalObsoletes(p, reduced, target, true)
}

func evalReponame(p *pool.Pool, candidates []int, f Filter) *idset.PackageSet {
	marked := map[int]bool{}
	for _, r := range p.Repos() {
		if matchString(f.Cmp, r.Name, f.Strs) {
			marked[r.Id] = true
		}
	}
	result := idset.New()
	for _, id := range candidates {
		sv := p.MustGet(id)
		if marked[sv.RepoId] {
			result.Set(id)
		}
	}
	return result
}

// evalAdvisory implements the exact-NEVRA-triple (EQ) case only. The
// EQG|UPGRADE restriction (evr-floor, obsoletes, priority tie-break) is an
// open question — see SPEC_FULL.md §7.5.
func evalAdvisory(p *pool.Pool, candidates []int, f Filter, field func(pool.Advisory) string) *idset.PackageSet {
	var triples []pool.NEVRATriple
	for _, a := range p.Advisories() {
		if matchString(f.Cmp, field(a), f.Strs) {
			triples = append(triples, a.Packages...)
		}
	}
	result := idset.New()
	for _, id := range candidates {
		sv := p.MustGet(id)
		for _, t := range triples {
			if t.Name == sv.Name && t.Arch == sv.Arch && nevra.Compare(sv.EVR, t.EVR) == 0 {
				result.Set(id)
				break
			}
		}
	}
	return result
}

func evalLatest(p *pool.Pool, candidates []int, f Filter, perArch, byPriority bool) *idset.PackageSet {
	n := 1
	if len(f.Nums) > 0 {
		n = f.Nums[0]
	}

	type key struct {
		name string
		arch string
		prio int
	}
	groups := map[key][]int{}
	for _, id := range candidates {
		sv := p.MustGet(id)
		k := key{name: sv.Name}
		if perArch {
			k.arch = sv.Arch
		}
		if byPriority {
			if repo := p.Repo(sv.RepoId); repo != nil {
				k.prio = repo.Priority
			}
		}
		groups[k] = append(groups[k], id)
	}

	result := idset.New()
	for _, ids := range groups {
		sort.SliceStable(ids, func(i, j int) bool {
			return p.CompareEVR(p.MustGet(ids[i]).EVR, p.MustGet(ids[j]).EVR) > 0
		})

		var distinctEVRGroups [][]int
		for _, id := range ids {
			evr := p.MustGet(id).EVR
			if len(distinctEVRGroups) > 0 {
				lastGroup := distinctEVRGroups[len(distinctEVRGroups)-1]
				if nevra.Compare(p.MustGet(lastGroup[0]).EVR, evr) == 0 {
					distinctEVRGroups[len(distinctEVRGroups)-1] = append(lastGroup, id)
					continue
				}
			}
			distinctEVRGroups = append(distinctEVRGroups, []int{id})
		}

		var chosen [][]int
		if n > 0 {
			if n > len(distinctEVRGroups) {
				n = len(distinctEVRGroups)
			}
			chosen = distinctEVRGroups[:n]
		} else if n < 0 {
			skip := -n
			if skip > len(distinctEVRGroups) {
				skip = len(distinctEVRGroups)
			}
			chosen = distinctEVRGroups[skip:]
		}
		for _, group := range chosen {
			for _, id := range group {
				result.Set(id)
			}
		}
	}
	return result
}

func evalUpgradesDowngrades(p *pool.Pool, candidates []int, upgrades bool, byPriority bool) *idset.PackageSet {
	installedRepo, hasInstalled := p.InstalledRepoId()
	result := idset.New()

	var considered []int
	if byPriority {
		byName := map[string][]int{}
		for _, id := range candidates {
			sv := p.MustGet(id)
			if hasInstalled && sv.RepoId == installedRepo {
				continue
			}
			byName[sv.Name] = append(byName[sv.Name], id)
		}
		for _, ids := range byName {
			best := -1 << 31
			for _, id := range ids {
				if repo := p.Repo(p.MustGet(id).RepoId); repo != nil && repo.Priority > best {
					best = repo.Priority
				}
			}
			for _, id := range ids {
				if repo := p.Repo(p.MustGet(id).RepoId); repo != nil && repo.Priority == best {
					considered = append(considered, id)
				}
			}
		}
	} else {
		considered = candidates
	}

	for _, id := range considered {
		sv := p.MustGet(id)
		if hasInstalled && sv.RepoId == installedRepo {
			continue
		}
		for _, otherId := range p.ByName(sv.Name) {
			other := p.MustGet(otherId)
			if !hasInstalled || other.RepoId != installedRepo {
				continue
			}
			cmp := nevra.Compare(sv.EVR, other.EVR)
			if (upgrades && cmp > 0) || (!upgrades && cmp < 0) {
				result.Set(id)
				break
			}
		}
	}
	return result
}

func evalUpgradableDowngradable(p *pool.Pool, candidates []int, upgradable bool) *idset.PackageSet {
	installedRepo, hasInstalled := p.InstalledRepoId()
	result := idset.New()
	if !hasInstalled {
		return result
	}
	for _, id := range candidates {
		sv := p.MustGet(id)
		if sv.RepoId != installedRepo {
			continue
		}
		for _, otherId := range p.ByName(sv.Name) {
			other := p.MustGet(otherId)
			if other.RepoId == installedRepo {
				continue
			}
			cmp := nevra.Compare(other.EVR, sv.EVR)
			if (upgradable && cmp > 0) || (!upgradable && cmp < 0) {
				result.Set(id)
				break
			}
		}
	}
	return result
}
