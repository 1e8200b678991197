// Package goal implements the Goal collaborator: accumulates staged
// solver jobs from intents, runs the solver under policy flags,
// classifies the resulting transaction into typed lists, enforces
// protected-package and install-only-limit policy, and exposes problem
// explanations.
package goal

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/goalerr"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/problem"
	"github.com/rpmgoal/rpmgoal/internal/sack"
	"github.com/rpmgoal/rpmgoal/internal/selector"
	"github.com/rpmgoal/rpmgoal/internal/solver"
)

// Reason names why a package ended up in its final install state, the
// vocabulary GetReason switches on per spec.md §4.3.3.
type Reason int

const (
	ReasonUser Reason = iota
	ReasonClean
	ReasonWeakDep
	ReasonDep
)

func (r Reason) String() string {
	switch r {
	case ReasonUser:
		return "user"
	case ReasonClean:
		return "clean"
	case ReasonWeakDep:
		return "weakdep"
	case ReasonDep:
		return "dep"
	default:
		return "unknown"
	}
}

// action bits recording which intents have been staged, mirroring
// spec.md §3's "actions mirrors the union of intents" invariant.
const (
	actionInstall uint32 = 1 << iota
	actionErase
	actionUpdate
	actionDistupgrade
	actionLock
	actionVerify
)

// Goal accumulates staged solver jobs and policy state, then runs a fresh
// solver per Run() call, per spec.md §3's Goal data model and §5's
// "each Goal owns its solver" lifetime rule.
type Goal struct {
	sack    *sack.Sack
	staging []solver.Job
	actions uint32

	protected      *idset.PackageSet
	protectedNames []string
	protectKernel  bool

	excludeFromWeak *idset.PackageSet
	forceBest       bool
	allowUninstall  bool
	verify          bool

	multiVersioned []string
	runID          uuid.UUID

	solver             *solver.Solver
	transaction        *solver.Transaction
	removalOfProtected *idset.PackageSet

	logger *zerolog.Logger
}

// New returns an empty Goal over s.
func New(s *sack.Sack) *Goal {
	return &Goal{
		sack:            s,
		protected:       idset.New(),
		excludeFromWeak: idset.New(),
	}
}

// SetLogger attaches a logger for debug/warn events during job
// construction and weak-dep policy evaluation. Nil-safe: a Goal with no
// logger set stays silent.
func (g *Goal) SetLogger(log *zerolog.Logger) { g.logger = log }

// Actions returns the bitset of action kinds staged so far.
func (g *Goal) Actions() uint32 { return g.actions }

func (g *Goal) stage(jobs ...solver.Job) { g.staging = append(g.staging, jobs...) }

// InstallPkg stages INSTALL[|WEAK] against a single solvable id.
func (g *Goal) InstallPkg(id int, weak bool) {
	flags := solver.NewJobFlags(solver.SelectionSolvable, solver.ActionInstall)
	if weak {
		flags = flags.With(solver.ModWeak)
	}
	g.stage(solver.Job{Flags: flags, Target: id})
	g.actions |= actionInstall
}

// InstallSelector stages INSTALL[|WEAK] against every id sel resolves to.
func (g *Goal) InstallSelector(sel selector.Selector, weak bool) error {
	jobs, err := selector.ToJob(g.sack.Pool(), sel, solver.ActionInstall)
	if err != nil {
		return err
	}
	if weak {
		for i := range jobs {
			jobs[i].Flags = jobs[i].Flags.With(solver.ModWeak)
		}
	}
	g.stage(jobs...)
	g.actions |= actionInstall
	return nil
}

// ErasePkg stages ERASE[|CLEANDEPS] against a single solvable id.
func (g *Goal) ErasePkg(id int, cleanDeps bool) {
	flags := solver.NewJobFlags(solver.SelectionSolvable, solver.ActionErase)
	if cleanDeps {
		flags = flags.With(solver.ModCleanDeps)
	}
	g.stage(solver.Job{Flags: flags, Target: id})
	g.actions |= actionErase
}

// EraseSelector stages ERASE[|CLEANDEPS] against every id sel resolves to.
func (g *Goal) EraseSelector(sel selector.Selector, cleanDeps bool) error {
	jobs, err := selector.ToJob(g.sack.Pool(), sel, solver.ActionErase)
	if err != nil {
		return err
	}
	if cleanDeps {
		for i := range jobs {
			jobs[i].Flags = jobs[i].Flags.With(solver.ModCleanDeps)
		}
	}
	g.stage(jobs...)
	g.actions |= actionErase
	return nil
}

// Upgrade stages UPDATE|SOLVABLE_ALL.
func (g *Goal) Upgrade() {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionAll, solver.ActionUpdate)})
	g.actions |= actionUpdate
}

// UpgradePkg stages UPDATE against a single solvable id.
func (g *Goal) UpgradePkg(id int) {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, solver.ActionUpdate), Target: id})
	g.actions |= actionUpdate
}

// UpgradeSelector stages UPDATE against sel's matches, adding TARGETED iff
// sel carries an explicit package-set filter.
func (g *Goal) UpgradeSelector(sel selector.Selector) error {
	jobs, err := selector.ToJob(g.sack.Pool(), sel, solver.ActionUpdate)
	if err != nil {
		return err
	}
	if sel.Pkgs != nil {
		for i := range jobs {
			jobs[i].Flags = jobs[i].Flags.With(solver.ModTargeted)
		}
	}
	g.stage(jobs...)
	g.actions |= actionUpdate
	return nil
}

// Distupgrade stages DISTUPGRADE over every available solvable.
func (g *Goal) Distupgrade() {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionAll, solver.ActionDistupgrade)})
	g.actions |= actionDistupgrade
}

// DistupgradePkg stages DISTUPGRADE against a single solvable id.
func (g *Goal) DistupgradePkg(id int) {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, solver.ActionDistupgrade), Target: id})
	g.actions |= actionDistupgrade
}

// DistupgradeSelector stages DISTUPGRADE against sel's matches.
func (g *Goal) DistupgradeSelector(sel selector.Selector) error {
	jobs, err := selector.ToJob(g.sack.Pool(), sel, solver.ActionDistupgrade)
	if err != nil {
		return err
	}
	g.stage(jobs...)
	g.actions |= actionDistupgrade
	return nil
}

// Lock stages LOCK against a single solvable id.
func (g *Goal) Lock(id int) {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, solver.ActionLock), Target: id})
	g.actions |= actionLock
}

// Favor stages a FAVOR hint against a single solvable id.
func (g *Goal) Favor(id int) {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, 0).With(solver.ModFavor), Target: id})
}

// Disfavor stages a DISFAVOR hint against a single solvable id.
func (g *Goal) Disfavor(id int) {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, 0).With(solver.ModDisfavor), Target: id})
}

// UserInstalled stages a USERINSTALLED hint against a single solvable id.
func (g *Goal) UserInstalled(id int) {
	g.stage(solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, 0).With(solver.ModUserInstalled), Target: id})
}

// AddExcludeFromWeak adds id to the weak-exclude set without staging a job.
func (g *Goal) AddExcludeFromWeak(id int) { g.excludeFromWeak.Set(id) }

// AddProtected unions ids into the protected set.
func (g *Goal) AddProtected(ids *idset.PackageSet) { g.protected.Union(ids) }

// SetProtected replaces the protected set wholesale.
func (g *Goal) SetProtected(ids *idset.PackageSet) { g.protected = ids.Clone() }

// SetProtectedNames configures name-glob patterns resolved against the
// pool at Run() time, in addition to any id-based protected set.
func (g *Goal) SetProtectedNames(patterns []string) { g.protectedNames = patterns }

// SetProtectRunningKernel toggles whether the running kernel is treated
// as implicitly protected.
func (g *Goal) SetProtectRunningKernel(v bool) { g.protectKernel = v }

// SetForceBest toggles whether FORCEBEST is OR'd into every staged tuple.
func (g *Goal) SetForceBest(v bool) { g.forceBest = v }

// SetAllowUninstall toggles whether ALLOWUNINSTALL tuples are appended for
// every installed, non-protected, non-running-kernel solvable.
func (g *Goal) SetAllowUninstall(v bool) { g.allowUninstall = v }

// SetVerify toggles whether a VERIFY|SOLVABLE_ALL tuple is appended.
func (g *Goal) SetVerify(v bool) { g.verify = v }

// ExcludeFromWeakAutodetect populates the weak-exclude set: for each
// installed package's recommends dep that already has an installed
// provider, excludes every other (not-yet-installed) provider of that
// dep from weak pulling; then, for each available package whose name is
// not installed, excludes it if any of its supplements is provided by an
// installed package.
func (g *Goal) ExcludeFromWeakAutodetect() {
	p := g.sack.Pool()
	installedRepo, ok := p.InstalledRepoId()
	if !ok {
		return
	}

	installedNames := map[string]bool{}
	p.Considered().Each(func(id int) {
		if p.MustGet(id).RepoId == installedRepo {
			installedNames[p.MustGet(id).Name] = true
		}
	})

	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		if sv.RepoId != installedRepo {
			return
		}
		for _, r := range sv.Recommends {
			providers := p.WhatProvides(r)
			if providers.Size() == 0 {
				if g.logger != nil {
					g.logger.Warn().Str("name", sv.Name).Str("recommends", r.Name).
						Msg("weak-dep autodetect: skipping unprovided recommends")
				}
				continue
			}
			hasInstalledProvider := false
			providers.Each(func(pid int) {
				if p.MustGet(pid).RepoId == installedRepo {
					hasInstalledProvider = true
				}
			})
			if !hasInstalledProvider {
				continue
			}
			providers.Each(func(pid int) {
				if p.MustGet(pid).RepoId != installedRepo {
					g.excludeFromWeak.Set(pid)
				}
			})
		}
	})

	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		if sv.RepoId == installedRepo || installedNames[sv.Name] {
			return
		}
		for _, sp := range sv.Supplements {
			providers := p.WhatProvides(sp)
			anyInstalled := false
			providers.Each(func(pid int) {
				if p.MustGet(pid).RepoId == installedRepo {
					anyInstalled = true
				}
			})
			if anyInstalled {
				g.excludeFromWeak.Set(id)
				break
			}
		}
	})
}

func (g *Goal) protectedSet() *idset.PackageSet {
	result := g.protected.Clone()
	if len(g.protectedNames) == 0 {
		return result
	}
	p := g.sack.Pool()
	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		for _, pattern := range g.protectedNames {
			if matched, err := dependency.ExpandGlob(pattern, []string{sv.Name}); err == nil && len(matched) > 0 {
				result.Set(id)
				return
			}
		}
	})
	return result
}

// dependsOn reports whether solvable a requires anything providing b,
// libdnf's can_depend_on check, used both for install-only limiting's
// ALLOWUNINSTALL cascade and its kernel-dependents sort tie-break.
func dependsOn(p *pool.Pool, aID, bID int) bool {
	a, ok1 := p.Get(aID)
	b, ok2 := p.Get(bID)
	if !ok1 || !ok2 {
		return false
	}
	for _, r := range a.Requires {
		if r.Name == b.Name && r.Satisfies(b.EVR) {
			return true
		}
	}
	return false
}

func (g *Goal) appendMultiVersionTuples(job []solver.Job) []solver.Job {
	p := g.sack.Pool()
	seen := map[string]bool{}
	var applied []string
	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		if seen[sv.Name] || !g.sack.IsInstallOnly(sv) {
			return
		}
		seen[sv.Name] = true
		applied = append(applied, sv.Name)
		job = append(job, solver.Job{
			Flags:  solver.NewJobFlags(solver.SelectionProvides, 0).With(solver.ModMultiVersion),
			Target: id,
		})
	})
	g.multiVersioned = applied
	return job
}

// constructJob clones staging and appends the derived tuples spec.md
// §4.3's "Job construction" describes: FORCEBEST, EXCLUDEFROMWEAK,
// MULTIVERSION per install-only class, ALLOWUNINSTALL, and VERIFY.
func (g *Goal) constructJob() []solver.Job {
	job := make([]solver.Job, len(g.staging))
	copy(job, g.staging)

	if g.forceBest {
		for i := range job {
			job[i].Flags = job[i].Flags.With(solver.ModForceBest)
		}
	}

	g.excludeFromWeak.Each(func(id int) {
		job = append(job, solver.Job{
			Flags:  solver.NewJobFlags(solver.SelectionSolvable, 0).With(solver.ModExcludeFromWeak),
			Target: id,
		})
	})

	job = g.appendMultiVersionTuples(job)

	if g.allowUninstall {
		if repoId, ok := g.sack.Pool().InstalledRepoId(); ok {
			protected := g.protectedSet()
			runningKernel, hasKernel := g.sack.RunningKernel()
			p := g.sack.Pool()
			p.Considered().Each(func(id int) {
				sv := p.MustGet(id)
				if sv.RepoId != repoId || protected.Has(id) {
					return
				}
				if hasKernel && id == runningKernel {
					return
				}
				job = append(job, solver.Job{
					Flags:  solver.NewJobFlags(solver.SelectionSolvable, 0).With(solver.ModAllowUninstall),
					Target: id,
				})
			})
		}
	}

	if g.verify {
		job = append(job, solver.Job{Flags: solver.NewJobFlags(solver.SelectionAll, solver.ActionVerify)})
	}

	if g.logger != nil {
		g.logger.Debug().Int("staged", len(g.staging)).Int("total", len(job)).Msg("constructed solver job queue")
	}

	return job
}

// installOnlyLimitRetry implements spec.md §4.3.1: for every install-only
// name with more decided-installed candidates than the configured limit,
// keep the best `limit` (sorted name asc, available-before-installed,
// running-kernel-and-its-dependents kept first, same-evr-as-kernel kept
// next, evr desc) and stage ERASE for the rest, cascading ALLOWUNINSTALL
// to their dependents.
func (g *Goal) installOnlyLimitRetry(s *solver.Solver, job []solver.Job) ([]solver.Job, bool) {
	limit := g.sack.InstallOnlyLimit()
	if limit <= 0 {
		return job, false
	}
	p := g.sack.Pool()
	installedRepoId, hasInstalledRepo := p.InstalledRepoId()
	runningKernel, hasKernel := g.sack.RunningKernel()

	byName := map[string][]int{}
	p.Considered().Each(func(id int) {
		sv := p.MustGet(id)
		if g.sack.IsInstallOnly(sv) && s.IsDecidedInstalled(id) {
			byName[sv.Name] = append(byName[sv.Name], id)
		}
	})

	changed := false
	for _, ids := range byName {
		if len(ids) <= limit {
			continue
		}
		hasNewInstall := false
		for _, id := range ids {
			if !hasInstalledRepo || p.MustGet(id).RepoId != installedRepoId {
				hasNewInstall = true
			}
		}
		if !hasNewInstall {
			continue
		}

		sort.SliceStable(ids, func(i, j int) bool {
			a, b := p.MustGet(ids[i]), p.MustGet(ids[j])
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			aAvail := !hasInstalledRepo || a.RepoId != installedRepoId
			bAvail := !hasInstalledRepo || b.RepoId != installedRepoId
			if aAvail != bAvail {
				return aAvail
			}
			aKernelTied := hasKernel && (ids[i] == runningKernel || dependsOn(p, ids[i], runningKernel))
			bKernelTied := hasKernel && (ids[j] == runningKernel || dependsOn(p, ids[j], runningKernel))
			if aKernelTied != bKernelTied {
				return aKernelTied
			}
			aSameEVR := hasKernel && p.CompareEVR(a.EVR, p.MustGet(runningKernel).EVR) == 0
			bSameEVR := hasKernel && p.CompareEVR(b.EVR, p.MustGet(runningKernel).EVR) == 0
			if aSameEVR != bSameEVR {
				return aSameEVR
			}
			return p.CompareEVR(a.EVR, b.EVR) > 0
		})

		for i, id := range ids {
			if i < limit {
				job = append(job, solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, solver.ActionInstall), Target: id})
				continue
			}
			job = append(job, solver.Job{Flags: solver.NewJobFlags(solver.SelectionSolvable, solver.ActionErase), Target: id})
			p.Considered().Each(func(depID int) {
				if depID != id && dependsOn(p, depID, id) {
					job = append(job, solver.Job{
						Flags:  solver.NewJobFlags(solver.SelectionSolvable, 0).With(solver.ModAllowUninstall),
						Target: depID,
					})
				}
			})
		}
		changed = true
	}
	return job, changed
}

// Run constructs the final job, sets the solver's flags from the sack's
// policy plus the caller's overrides, solves, then — whether or not the
// first pass succeeded — checks every install-only name against the
// configured limit and re-solves once with explicit erases for the
// excess versions if any name exceeded it, materializes the resulting
// transaction, then checks protected removal.
func (g *Goal) Run(flags solver.Flags) error {
	g.runID = uuid.New()

	if flags.IgnoreWeak {
		for i := range g.staging {
			g.staging[i].Flags = g.staging[i].Flags.Without(solver.ModWeak)
		}
	}

	job := g.constructJob()

	s := solver.New(g.sack.Pool())
	s.SetFlags(flags)
	ok := s.Solve(job)

	retryJob, changed := g.installOnlyLimitRetry(s, job)
	if changed {
		s = solver.New(g.sack.Pool())
		s.SetFlags(flags)
		ok = s.Solve(retryJob)
	}

	g.solver = s
	if !ok {
		return goalerr.New(goalerr.NoSolution, "the solver could not satisfy the requested job")
	}

	g.transaction = s.CreateTransaction()

	// Install-only names are multiversion: a new version is installed next
	// to the old ones, so their steps stay plain installs and erases.
	for i, step := range g.transaction.Steps {
		if !g.sack.IsInstallOnly(g.sack.Pool().MustGet(step.Id)) {
			continue
		}
		if s.IsDecidedInstalled(step.Id) {
			g.transaction.Steps[i].Type = solver.StepInstall
		} else {
			g.transaction.Steps[i].Type = solver.StepErase
		}
	}

	// StepObsoleted only ever marks the old half of a same-name
	// upgrade/downgrade pair (see CreateTransaction's seenNames
	// grouping), so the name survives the transaction; only a real
	// StepErase can trigger removal-of-protected.
	erased := idset.New()
	for _, step := range g.transaction.Steps {
		if step.Type == solver.StepErase {
			erased.Set(step.Id)
		}
	}
	removal := idset.Intersect(erased, g.protectedSet())
	if runningKernel, hasKernel := g.sack.RunningKernel(); g.protectKernel && hasKernel && erased.Has(runningKernel) {
		removal.Set(runningKernel)
	}
	if removal.Size() > 0 {
		g.removalOfProtected = removal
		return goalerr.New(goalerr.RemovalOfProtectedPkg, "transaction would remove %d protected package(s)", removal.Size())
	}
	return nil
}

// Transaction returns the materialized transaction, or INTERNAL_ERROR if
// Run has not produced one yet.
func (g *Goal) Transaction() (*solver.Transaction, error) {
	if g.transaction == nil {
		return nil, goalerr.New(goalerr.InternalError, "goal has not been run yet")
	}
	return g.transaction, nil
}

func (g *Goal) stepsOfType(t solver.StepType) []int {
	if g.transaction == nil {
		return nil
	}
	var out []int
	for _, step := range g.transaction.Steps {
		if step.Type == t {
			out = append(out, step.Id)
		}
	}
	return out
}

// ListInstalls returns every id the transaction installs fresh.
func (g *Goal) ListInstalls() []int { return g.stepsOfType(solver.StepInstall) }

// ListErases returns every id the transaction erases outright.
func (g *Goal) ListErases() []int { return g.stepsOfType(solver.StepErase) }

// ListUpgrades returns every id the transaction upgrades to.
func (g *Goal) ListUpgrades() []int { return g.stepsOfType(solver.StepUpgrade) }

// ListDowngrades returns every id the transaction downgrades to.
func (g *Goal) ListDowngrades() []int { return g.stepsOfType(solver.StepDowngrade) }

// ListReinstalls returns every id the transaction reinstalls.
func (g *Goal) ListReinstalls() []int { return g.stepsOfType(solver.StepReinstall) }

// ListObsoleted returns every id the transaction obsoletes away.
func (g *Goal) ListObsoleted() []int { return g.stepsOfType(solver.StepObsoleted) }

// Unneeded returns installed-dependency-only ids nothing remaining
// installed still requires, straight from the last run's solver.
func (g *Goal) Unneeded() *idset.PackageSet {
	if g.solver == nil {
		return idset.New()
	}
	return g.solver.GetUnneeded()
}

// Suggested returns the last run's solver recommendations set, which the
// solver never populates, so it is always empty.
func (g *Goal) Suggested() *idset.PackageSet {
	if g.solver == nil {
		return idset.New()
	}
	return g.solver.GetRecommendations()
}

// ComputeUnneeded runs a throwaway solver over the sack's pool, seeded
// with userInstalled marked ReasonUnitRule and every other installed
// solvable marked ReasonDep, and returns the resulting unneeded set. This
// satisfies internal/query's UnneededComputer interface without query
// importing this package.
func (g *Goal) ComputeUnneeded(userInstalled *idset.PackageSet) (*idset.PackageSet, error) {
	s := solver.New(g.sack.Pool())
	s.MarkInstalledReasons(userInstalled)
	s.Solve(nil)
	return s.GetUnneeded(), nil
}

// GetReason implements spec.md §4.3.3's getReason(pkg).
func (g *Goal) GetReason(id int) Reason {
	if g.solver == nil {
		return ReasonUser
	}
	reason, class, ok := g.solver.DescribeDecision(id)
	if !ok {
		return ReasonUser
	}
	if (reason == solver.ReasonUnitRule || reason == solver.ReasonResolveJob) &&
		(class == solver.ClassJob || class == solver.ClassBest) {
		return ReasonUser
	}
	if reason == solver.ReasonCleandepsErase {
		return ReasonClean
	}
	if reason == solver.ReasonWeakdep {
		return ReasonWeakDep
	}
	if g.solver.GetCleanDeps().Has(id) {
		return ReasonClean
	}
	return ReasonDep
}

// MultiVersioned returns every install-only name the last Run applied
// MULTIVERSION|SOLVABLE_PROVIDES to, a supplemental read-back API.
func (g *Goal) MultiVersioned() []string { return g.multiVersioned }

// RunID returns the correlation id of the last Run call.
func (g *Goal) RunID() uuid.UUID { return g.runID }

// RemovalOfProtected returns the protected/running-kernel ids the last
// Run's transaction would have removed, or nil if Run succeeded without
// touching any of them.
func (g *Goal) RemovalOfProtected() *idset.PackageSet { return g.removalOfProtected }

// CountProblems implements spec.md §4.3.4's countProblems().
func (g *Goal) CountProblems() int {
	n := 0
	if g.solver != nil {
		n = g.solver.ProblemCount()
	}
	if g.removalOfProtected != nil && g.removalOfProtected.Size() > 0 {
		n++
	}
	return n
}

// DescribeProblemRules implements spec.md §4.3.4's describeProblemRules,
// deduplicating rendered sentences within the problem.
func (g *Goal) DescribeProblemRules(i int, vocab problem.Vocab, locale string) []string {
	if g.removalOfProtected != nil && g.removalOfProtected.Size() > 0 {
		if i == 0 {
			return []string{problem.FormatRemovalOfProtected(g.sack.Pool(), g.removalOfProtected, vocab)}
		}
		i--
	}
	if g.solver == nil {
		return nil
	}
	ruleIDs := g.solver.FindAllProblemRules(i)
	seen := map[string]bool{}
	var out []string
	for _, rid := range ruleIDs {
		info, ok := g.solver.RuleInfo(rid)
		if !ok {
			continue
		}
		s := problem.Format(g.sack.Pool(), g.solver, info, vocab, locale)
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// DescribeAllProblemRules implements describeAllProblemRules, deduplicated
// by multiset equality across the returned list-of-lists.
func (g *Goal) DescribeAllProblemRules(vocab problem.Vocab, locale string) [][]string {
	n := g.CountProblems()
	result := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rules := g.DescribeProblemRules(i, vocab, locale)
		if isDuplicateMultiset(result, rules) {
			continue
		}
		result = append(result, rules)
	}
	return result
}

func isDuplicateMultiset(all [][]string, candidate []string) bool {
	for _, existing := range all {
		if multisetEqual(existing, candidate) {
			return true
		}
	}
	return false
}

// multisetEqual reports whether every element of a is in b. It does not
// require a and b to have equal length, so a strict subset of b is
// considered a match; this is intentional (spec.md "open questions").
func multisetEqual(a, b []string) bool {
	inB := map[string]bool{}
	for _, s := range b {
		inB[s] = true
	}
	for _, s := range a {
		if !inB[s] {
			return false
		}
	}
	return true
}
