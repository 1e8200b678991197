package solver

// DecisionReason names why the solver decided a solvable's final install
// state the way it did, the vocabulary Goal.getReason (spec.md §4.3.3)
// switches on.
type DecisionReason int

const (
	ReasonUnset DecisionReason = iota
	// ReasonUnitRule marks the direct target of an ERASE job, and a
	// user-installed id seeded by MarkInstalledReasons.
	ReasonUnitRule
	// ReasonResolveJob marks a decision made while resolving an INSTALL or
	// UPDATE job tuple, whatever its number of candidates.
	ReasonResolveJob
	// ReasonWeakdep marks a decision pulled in only via a recommends or
	// supplements relation.
	ReasonWeakdep
	// ReasonCleandepsErase marks the erase of the direct target of an
	// ERASE job that carries CLEANDEPS.
	ReasonCleandepsErase
	// ReasonDep marks a decision pulled in by an ordinary requires chain.
	ReasonDep
)

// RuleClass groups the rule that produced a decision or problem, the
// vocabulary getReason and the problem formatter both branch on.
type RuleClass int

const (
	ClassNone RuleClass = iota
	ClassJob
	ClassBest
	ClassPkg
	ClassUpdate
	ClassDistupgrade
	ClassInfarch
	ClassYumobs
)

// RuleType enumerates every kind of problem rule the formatter in
// internal/problem knows how to render, mirroring spec.md §4.4's list.
type RuleType int

const (
	RuleDistupgrade RuleType = iota
	RuleInfarch
	RuleUpdate
	RuleJob
	RuleJobUnsupported
	RuleJobNothingProvidesDep
	RuleJobUnknownPackage
	RuleJobProvidedBySystem
	RulePkg
	RuleBest1
	RuleBest2
	RulePkgNotInstallable1
	RulePkgNotInstallable2
	RulePkgNotInstallable3
	RulePkgNotInstallable4
	RulePkgNothingProvidesDep
	RulePkgSameName
	RulePkgConflicts
	RulePkgObsoletes
	RulePkgInstalledObsoletes
	RulePkgImplicitObsoletes
	RulePkgRequires
	RulePkgSelfConflict
	RuleYumobs
)

// RuleInfo is one (type, source, target, dep) tuple describing a single
// reason a problem could not be solved. Dep is an index into the solver's
// interned reldep table (see internReldep), or 0 when the rule has no
// associated dependency (internReldep starts numbering at 1).
type RuleInfo struct {
	Type   RuleType
	Source int
	Target int
	Dep    int
}

// Decision is the solver's final verdict on one solvable id.
type Decision struct {
	Id        int
	Installed bool
	Reason    DecisionReason
	Class     RuleClass
}

// StepType names the kind of change a transaction step represents.
type StepType int

const (
	StepInstall StepType = iota
	StepErase
	StepUpgrade
	StepDowngrade
	StepReinstall
	StepObsoleted
)

// TransactionStep is one solvable's before/after classification.
type TransactionStep struct {
	Id   int
	Type StepType
}

// Transaction is the solver's materialized result: every solvable whose
// install state changed, classified per spec.md §4.3.2.
type Transaction struct {
	Steps []TransactionStep
}

// Problem is one unsatisfiable job or package constraint, carrying every
// rule id that contributed to it.
type Problem struct {
	RuleIDs []int
}
