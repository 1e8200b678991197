package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/pool"
)

// Flags holds the solver-wide boolean switches Goal.run sets before
// calling Solve, per spec.md §4.3's "Solver invocation" list.
type Flags struct {
	AllowVendorChange    bool
	DupAllowVendorChange bool
	KeepOrphans          bool
	BestObeyPolicy       bool
	YumObsoletes         bool
	UrpmReorder          bool
	IgnoreRecommended    bool
	AllowDowngrade       bool
	IgnoreWeak           bool
}

// Solver runs one job against a pool and produces a Transaction or a set
// of Problems. A fresh Solver is created per Goal.run, per spec.md §5's
// "each Goal owns its solver" lifetime rule.
type Solver struct {
	pool  *pool.Pool
	flags Flags

	baseInstalled map[int]bool
	decisions     map[int]Decision
	locked        map[int]bool

	problems  []Problem
	ruleInfos map[int]RuleInfo
	nextRule  int

	depNames   map[int]string
	depByName  map[string]int
	nextDepID  int

	cleanDeps       *idset.PackageSet
	unneeded        *idset.PackageSet
	recommendations *idset.PackageSet

	decisionLog []string
	solved      bool
}

// New returns a Solver over p, seeded with every installed-repo solvable
// as already-decided-installed.
func New(p *pool.Pool) *Solver {
	s := &Solver{
		pool:          p,
		baseInstalled: make(map[int]bool),
		decisions:     make(map[int]Decision),
		locked:        make(map[int]bool),
		ruleInfos:     make(map[int]RuleInfo),
		depNames:      make(map[int]string),
		depByName:     make(map[string]int),
		cleanDeps:     idset.New(),
		unneeded:      idset.New(),
		recommendations: idset.New(),
	}
	if repoId, ok := p.InstalledRepoId(); ok {
		p.Considered().Each(func(id int) {
			sv := p.MustGet(id)
			if sv.RepoId == repoId {
				s.baseInstalled[id] = true
				s.decisions[id] = Decision{Id: id, Installed: true}
			}
		})
	}
	return s
}

// SetFlags replaces the solver-wide configuration.
func (s *Solver) SetFlags(f Flags) { s.flags = f }

// Lock marks ids as fixed: Solve will never change their install state.
func (s *Solver) Lock(ids []int) {
	for _, id := range ids {
		s.locked[id] = true
	}
}

func (s *Solver) isInstalled(id int) bool {
	d, ok := s.decisions[id]
	return ok && d.Installed
}

// IsDecidedInstalled is the exported form of isInstalled, used by the Goal
// layer's install-only-limit retry to enumerate solvables decided installed
// after a first Solve pass.
func (s *Solver) IsDecidedInstalled(id int) bool { return s.isInstalled(id) }

// MarkInstalledReasons reclassifies every currently-decided-installed
// solvable's reason: ReasonUnitRule for ids present in userInstalled,
// ReasonDep otherwise. This is the throwaway-resolve primitive
// filterUnneeded/filterSafeToRemove need (spec's "mark as USERINSTALLED,
// run, read back get_unneeded") without requiring a full job queue: a
// baseline Solver's installed decisions start with ReasonUnset, which
// computeCleanupSets never treats as unneeded, so a caller wanting a
// get_unneeded answer over a hypothetical user-installed set must seed
// reasons explicitly before calling Solve.
func (s *Solver) MarkInstalledReasons(userInstalled *idset.PackageSet) {
	for id, d := range s.decisions {
		if !d.Installed {
			continue
		}
		if userInstalled.Has(id) {
			d.Reason = ReasonUnitRule
			d.Class = ClassJob
		} else {
			d.Reason = ReasonDep
			d.Class = ClassPkg
		}
		s.decisions[id] = d
	}
}

func (s *Solver) internReldep(r dependency.Reldep) int {
	key := r.String()
	if id, ok := s.depByName[key]; ok {
		return id
	}
	s.nextDepID++
	id := s.nextDepID
	s.depByName[key] = id
	s.depNames[id] = key
	return id
}

// DepName returns the interned reldep string for a Dep id from a RuleInfo.
func (s *Solver) DepName(depID int) string {
	return s.depNames[depID]
}

func (s *Solver) addProblem(infos ...RuleInfo) {
	ruleIDs := make([]int, len(infos))
	for i, info := range infos {
		s.nextRule++
		rid := s.nextRule
		s.ruleInfos[rid] = info
		ruleIDs[i] = rid
	}
	s.problems = append(s.problems, Problem{RuleIDs: ruleIDs})
}

func (s *Solver) logf(format string, args ...any) {
	s.decisionLog = append(s.decisionLog, fmt.Sprintf(format, args...))
}

// resolveSelection returns every considered solvable id a job tuple's
// selection mode/id picks out.
func (s *Solver) resolveSelection(mode SelectionMode, target int, oneOf []int) []int {
	p := s.pool
	switch mode {
	case SelectionSolvable:
		if _, ok := p.Get(target); ok && p.Considered().Has(target) {
			return []int{target}
		}
		return nil
	case SelectionName:
		sv, ok := p.Get(target)
		if !ok {
			return nil
		}
		var out []int
		for _, id := range p.ByName(sv.Name) {
			if p.Considered().Has(id) {
				out = append(out, id)
			}
		}
		return out
	case SelectionProvides:
		sv, ok := p.Get(target)
		if !ok {
			return nil
		}
		return p.WhatProvides(dependency.Reldep{Name: sv.Name}).Ids()
	case SelectionOneOf:
		return oneOf
	case SelectionAll:
		return p.Considered().Ids()
	case SelectionRepo:
		var out []int
		p.Considered().Each(func(id int) {
			if p.MustGet(id).RepoId == target {
				out = append(out, id)
			}
		})
		return out
	default:
		return nil
	}
}

// Job is one resolved tuple ready for the engine: a selection already
// expanded to candidate ids (ByName/ByProvides resolution happens in the
// Goal/Selector layer via WhatProvides/ByName before staging SOLVABLE_ONE_OF
// tuples, or here for SOLVABLE_NAME/PROVIDES targeting a representative id).
type Job struct {
	Flags     JobFlags
	Target    int   // representative id for NAME/PROVIDES/SOLVABLE/REPO modes
	OneOf     []int // explicit candidates for SOLVABLE_ONE_OF
}

// Solve runs every job tuple against the pool and returns whether a
// feasible transaction was found. Problems accumulated along the way are
// available via ProblemCount/FindAllProblemRules/RuleInfo regardless of the
// return value.
func (s *Solver) Solve(jobs []Job) bool {
	s.problems = nil
	s.ruleInfos = make(map[int]RuleInfo)
	s.nextRule = 0
	s.decisionLog = nil

	for _, j := range jobs {
		candidates := s.resolveSelection(j.Flags.Mode(), j.Target, j.OneOf)
		action := j.Flags.Action()

		if len(candidates) == 0 && action != ActionVerify {
			switch j.Flags.Mode() {
			case SelectionProvides:
				s.addProblem(RuleInfo{Type: RuleJobNothingProvidesDep, Dep: s.internReldep(s.targetName(j.Target))})
			default:
				s.addProblem(RuleInfo{Type: RuleJobUnknownPackage, Target: j.Target})
			}
			continue
		}

		switch action {
		case ActionInstall:
			s.jobInstall(candidates, j.Flags)
		case ActionErase:
			s.jobErase(candidates, j.Flags)
		case ActionUpdate:
			s.jobUpdate(candidates)
		case ActionDistupgrade:
			s.jobDistupgrade(candidates)
		case ActionLock:
			s.Lock(candidates)
		case ActionVerify:
			// Passive: nothing to do, requires are checked during install.
		}
	}

	s.computeCleanupSets()
	s.solved = len(s.problems) == 0
	return s.solved
}

func (s *Solver) targetName(id int) dependency.Reldep {
	if sv, ok := s.pool.Get(id); ok {
		return dependency.Reldep{Name: sv.Name}
	}
	return dependency.Reldep{}
}

func (s *Solver) jobInstall(candidates []int, flags JobFlags) {
	weak := flags.Has(ModWeak)
	class := ClassJob
	if flags.Has(ModForceBest) {
		class = ClassBest
	}

	for _, id := range candidates {
		if s.locked[id] {
			continue
		}
		if s.isInstalled(id) {
			s.setReason(id, ReasonResolveJob, class)
			return
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return s.pool.CompareEVR(s.pool.MustGet(candidates[i]).EVR, s.pool.MustGet(candidates[j]).EVR) > 0
	})

	for _, id := range candidates {
		if s.locked[id] {
			continue
		}
		if s.hasConflict(id) {
			continue
		}
		s.decide(id, true, ReasonResolveJob, class)
		s.resolveRequires(id)
		return
	}

	if !weak {
		info := RuleInfo{Type: RulePkgConflicts}
		if len(candidates) > 0 {
			info.Source = candidates[0]
		}
		s.addProblem(info)
	}
}

func (s *Solver) jobErase(candidates []int, flags JobFlags) {
	cleanDeps := flags.Has(ModCleanDeps)
	for _, id := range candidates {
		if s.locked[id] || !s.isInstalled(id) {
			continue
		}
		reason := ReasonUnitRule
		if cleanDeps {
			reason = ReasonCleandepsErase
			s.cleanDeps.Set(id)
		}
		s.decide(id, false, reason, ClassJob)
	}
}

func (s *Solver) jobUpdate(candidates []int) {
	byName := make(map[string][]int)
	for _, id := range candidates {
		sv := s.pool.MustGet(id)
		byName[sv.Name] = append(byName[sv.Name], id)
	}
	for name, ids := range byName {
		_ = name
		var best int
		var bestEVR = ids[0]
		for _, id := range ids {
			if s.pool.CompareEVR(s.pool.MustGet(id).EVR, s.pool.MustGet(bestEVR).EVR) > 0 {
				bestEVR = id
			}
		}
		best = bestEVR
		if s.locked[best] {
			continue
		}
		if !s.isInstalled(best) && !s.hasConflict(best) {
			s.decide(best, true, ReasonResolveJob, ClassUpdate)
			s.resolveRequires(best)
			for _, id := range s.pool.ByName(name) {
				if id != best && s.isInstalled(id) {
					s.decide(id, false, ReasonResolveJob, ClassUpdate)
				}
			}
		}
	}
}

func (s *Solver) jobDistupgrade(candidates []int) {
	s.jobUpdate(candidates)
}

// hasConflict reports whether installing candidate would conflict with
// anything already decided installed, in either direction.
func (s *Solver) hasConflict(candidate int) bool {
	sv := s.pool.MustGet(candidate)
	for _, c := range sv.Conflicts {
		hit := false
		for id, d := range s.decisions {
			if !d.Installed {
				continue
			}
			other := s.pool.MustGet(id)
			if other.Name == c.Name && c.Satisfies(other.EVR) {
				hit = true
				break
			}
		}
		if hit {
			return true
		}
	}
	for id, d := range s.decisions {
		if !d.Installed || id == candidate {
			continue
		}
		other := s.pool.MustGet(id)
		for _, c := range other.Conflicts {
			if c.Name == sv.Name && c.Satisfies(sv.EVR) {
				return true
			}
		}
	}
	return false
}

func (s *Solver) resolveRequires(id int) {
	sv := s.pool.MustGet(id)
	for _, r := range sv.Requires {
		providers := s.pool.WhatProvides(r).Ids()
		satisfied := false
		for _, p := range providers {
			if s.isInstalled(p) {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		if len(providers) == 0 {
			s.addProblem(RuleInfo{Type: RulePkgNothingProvidesDep, Source: id, Dep: s.internReldep(r)})
			continue
		}
		sort.SliceStable(providers, func(i, j int) bool {
			return s.pool.CompareEVR(s.pool.MustGet(providers[i]).EVR, s.pool.MustGet(providers[j]).EVR) > 0
		})
		installed := false
		for _, p := range providers {
			if s.locked[p] || s.hasConflict(p) {
				continue
			}
			s.decide(p, true, ReasonDep, ClassPkg)
			s.resolveRequires(p)
			installed = true
			break
		}
		if !installed {
			s.addProblem(RuleInfo{Type: RulePkgConflicts, Source: id, Dep: s.internReldep(r)})
		}
	}
}

func (s *Solver) decide(id int, installed bool, reason DecisionReason, class RuleClass) {
	if existing, ok := s.decisions[id]; ok && existing.Installed == installed && existing.Reason != ReasonUnset {
		return
	}
	s.decisions[id] = Decision{Id: id, Installed: installed, Reason: reason, Class: class}
	verb := "install"
	if !installed {
		verb = "erase"
	}
	s.logf("%s %s (%v)", verb, s.pool.MustGet(id).Name, reason)
}

func (s *Solver) setReason(id int, reason DecisionReason, class RuleClass) {
	d := s.decisions[id]
	d.Id = id
	d.Installed = true
	d.Reason = reason
	d.Class = class
	s.decisions[id] = d
}

// computeCleanupSets derives Unneeded from the final decision set: every
// installed-with-DEP-reason solvable no remaining installed solvable still
// requires.
func (s *Solver) computeCleanupSets() {
	s.unneeded = idset.New()
	for id, d := range s.decisions {
		if !d.Installed || d.Reason != ReasonDep {
			continue
		}
		if !s.anyInstalledRequires(id) {
			s.unneeded.Set(id)
		}
	}
}

func (s *Solver) anyInstalledRequires(target int) bool {
	targetName := s.pool.MustGet(target).Name
	for id, d := range s.decisions {
		if !d.Installed || id == target {
			continue
		}
		sv := s.pool.MustGet(id)
		for _, r := range sv.Requires {
			if r.Name == targetName {
				return true
			}
		}
	}
	return false
}

// ProblemCount returns the number of unsatisfiable job/package constraints
// recorded by the last Solve call.
func (s *Solver) ProblemCount() int { return len(s.problems) }

// FindAllProblemRules returns every rule id contributing to problem i
// (0-based), mirroring the solver's 1-based findallproblemrules shifted to
// Go's 0-based indexing at this boundary.
func (s *Solver) FindAllProblemRules(i int) []int {
	if i < 0 || i >= len(s.problems) {
		return nil
	}
	return s.problems[i].RuleIDs
}

// RuleInfo returns the (type, source, target, dep) tuple for rule id rid.
func (s *Solver) RuleInfo(rid int) (RuleInfo, bool) {
	info, ok := s.ruleInfos[rid]
	return info, ok
}

// AllRuleInfos returns every RuleInfo for rid; in this implementation each
// rule id maps to exactly one info, so the slice always has length ≤ 1.
func (s *Solver) AllRuleInfos(rid int) []RuleInfo {
	if info, ok := s.ruleInfos[rid]; ok {
		return []RuleInfo{info}
	}
	return nil
}

// RuleClassOf returns the rule class associated with a decision rule id,
// derived from the decision that produced the underlying solvable target.
func (s *Solver) RuleClassOf(rid int) RuleClass {
	info, ok := s.ruleInfos[rid]
	if !ok {
		return ClassNone
	}
	if d, ok := s.decisions[info.Source]; ok {
		return d.Class
	}
	return ClassPkg
}

// DescribeDecision returns the reason and rule class the solver assigned
// to id's final install state, and whether a decision exists at all.
func (s *Solver) DescribeDecision(id int) (DecisionReason, RuleClass, bool) {
	d, ok := s.decisions[id]
	if !ok {
		return ReasonUnset, ClassNone, false
	}
	return d.Reason, d.Class, true
}

// GetCleanDeps returns the ids erased by an ERASE job carrying CLEANDEPS;
// no further dependencies are erased on their behalf.
func (s *Solver) GetCleanDeps() *idset.PackageSet { return s.cleanDeps.Clone() }

// GetUnneeded returns dependency-only installed ids nothing remaining
// installed still requires.
func (s *Solver) GetUnneeded() *idset.PackageSet { return s.unneeded.Clone() }

// GetRecommendations returns the solver's recommendations set. Solve never
// adds to it, so it is always empty.
func (s *Solver) GetRecommendations() *idset.PackageSet { return s.recommendations.Clone() }

// CreateTransaction classifies every solvable whose install state changed
// between the solver's baseline and its final decisions, per spec.md
// §4.3.2.
func (s *Solver) CreateTransaction() *Transaction {
	t := &Transaction{}
	seenNames := make(map[string][]int)
	for id, d := range s.decisions {
		wasInstalled := s.baseInstalled[id]
		if wasInstalled == d.Installed {
			continue
		}
		sv := s.pool.MustGet(id)
		seenNames[sv.Name] = append(seenNames[sv.Name], id)
		if d.Installed {
			t.Steps = append(t.Steps, TransactionStep{Id: id, Type: StepInstall})
		} else {
			t.Steps = append(t.Steps, TransactionStep{Id: id, Type: StepErase})
		}
	}

	for name, ids := range seenNames {
		_ = name
		var installedOnes, erasedOnes []int
		for _, id := range ids {
			if s.decisions[id].Installed {
				installedOnes = append(installedOnes, id)
			} else {
				erasedOnes = append(erasedOnes, id)
			}
		}
		if len(installedOnes) == 1 && len(erasedOnes) == 1 {
			newSv := s.pool.MustGet(installedOnes[0])
			oldSv := s.pool.MustGet(erasedOnes[0])
			if newSv.Arch == oldSv.Arch {
				cmp := s.pool.CompareEVR(newSv.EVR, oldSv.EVR)
				for i := range t.Steps {
					if t.Steps[i].Id == installedOnes[0] {
						if cmp > 0 {
							t.Steps[i].Type = StepUpgrade
						} else if cmp < 0 {
							t.Steps[i].Type = StepDowngrade
						} else {
							t.Steps[i].Type = StepReinstall
						}
					}
					if t.Steps[i].Id == erasedOnes[0] {
						if cmp == 0 {
							t.Steps[i].Type = StepReinstall
						} else {
							t.Steps[i].Type = StepObsoleted
						}
					}
				}
			}
		}
	}

	return t
}

// PrintDecisionQueue renders the solver's decision log, the debug text
// writeDebugdata/logDecisions persist.
func (s *Solver) PrintDecisionQueue() string {
	return strings.Join(s.decisionLog, "\n")
}
