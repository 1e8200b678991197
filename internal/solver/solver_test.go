package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
)

func TestJobFlags_PackAndUnpack(t *testing.T) {
	f := NewJobFlags(SelectionProvides, ActionInstall).With(ModWeak, ModForceBest)
	assert.Equal(t, SelectionProvides, f.Mode())
	assert.Equal(t, ActionInstall, f.Action())
	assert.True(t, f.Has(ModWeak))
	assert.True(t, f.Has(ModForceBest))
	assert.False(t, f.Has(ModCleanDeps))
}

func TestSolver_InstallWithAlternativeProviders(t *testing.T) {
	// S1: A-1, B-1 provides X, C-1 provides X. Nothing installed.
	// install(selector{provides=X}) should pick exactly one of {B, C}.
	p := pool.New()
	avail := p.AddRepo("fedora", false, 100)
	p.AddSolvable(avail, pool.SolvableSpec{Name: "A", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	bId := p.AddSolvable(avail, pool.SolvableSpec{
		Name: "B", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Provides: []dependency.Reldep{{Name: "X"}},
	})
	cId := p.AddSolvable(avail, pool.SolvableSpec{
		Name: "C", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Provides: []dependency.Reldep{{Name: "X"}},
	})

	s := New(p)
	xProviders := p.WhatProvides(dependency.Reldep{Name: "X"}).Ids()
	require.ElementsMatch(t, []int{bId, cId}, xProviders)

	job := Job{Flags: NewJobFlags(SelectionOneOf, ActionInstall), OneOf: xProviders}
	ok := s.Solve([]Job{job})
	require.True(t, ok)

	reason, class, has := s.DescribeDecision(bId)
	bInstalled := has && class == ClassJob
	_ = reason
	reasonC, classC, hasC := s.DescribeDecision(cId)
	cInstalled := hasC && classC == ClassJob
	_ = reasonC

	assert.True(t, bInstalled != cInstalled, "exactly one of B, C should be installed, got b=%v c=%v", bInstalled, cInstalled)
}

func TestSolver_EraseInstalledPackage(t *testing.T) {
	p := pool.New()
	installed := p.AddRepo("@System", true, 0)
	id := p.AddSolvable(installed, pool.SolvableSpec{Name: "bash", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})

	s := New(p)
	job := Job{Flags: NewJobFlags(SelectionSolvable, ActionErase), Target: id}
	ok := s.Solve([]Job{job})
	require.True(t, ok)

	_, _, has := s.DescribeDecision(id)
	require.True(t, has)
	assert.False(t, s.isInstalled(id))
}

func TestSolver_RequiresChainPullsInDependency(t *testing.T) {
	p := pool.New()
	avail := p.AddRepo("fedora", false, 100)
	libId := p.AddSolvable(avail, pool.SolvableSpec{Name: "lib", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	appId := p.AddSolvable(avail, pool.SolvableSpec{
		Name: "app", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Requires: []dependency.Reldep{{Name: "lib"}},
	})

	s := New(p)
	job := Job{Flags: NewJobFlags(SelectionSolvable, ActionInstall), Target: appId}
	ok := s.Solve([]Job{job})
	require.True(t, ok)

	assert.True(t, s.isInstalled(appId))
	assert.True(t, s.isInstalled(libId))

	reason, _, _ := s.DescribeDecision(libId)
	assert.Equal(t, ReasonDep, reason)
}

func TestSolver_MissingRequiresProducesProblem(t *testing.T) {
	p := pool.New()
	avail := p.AddRepo("fedora", false, 100)
	appId := p.AddSolvable(avail, pool.SolvableSpec{
		Name: "app", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Requires: []dependency.Reldep{{Name: "missing-lib"}},
	})

	s := New(p)
	job := Job{Flags: NewJobFlags(SelectionSolvable, ActionInstall), Target: appId}
	ok := s.Solve([]Job{job})
	assert.False(t, ok)
	require.Equal(t, 1, s.ProblemCount())

	rids := s.FindAllProblemRules(0)
	require.Len(t, rids, 1)
	info, found := s.RuleInfo(rids[0])
	require.True(t, found)
	assert.Equal(t, RulePkgNothingProvidesDep, info.Type)
}

func TestSolver_ConflictBlocksInstall(t *testing.T) {
	p := pool.New()
	installed := p.AddRepo("@System", true, 0)
	avail := p.AddRepo("fedora", false, 100)
	p.AddSolvable(installed, pool.SolvableSpec{Name: "old", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	newId := p.AddSolvable(avail, pool.SolvableSpec{
		Name: "new", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Conflicts: []dependency.Reldep{{Name: "old"}},
	})

	s := New(p)
	job := Job{Flags: NewJobFlags(SelectionSolvable, ActionInstall), Target: newId}
	ok := s.Solve([]Job{job})
	assert.False(t, ok)
	assert.False(t, s.isInstalled(newId))
}

func TestSolver_CreateTransaction_ClassifiesUpgrade(t *testing.T) {
	p := pool.New()
	installed := p.AddRepo("@System", true, 0)
	avail := p.AddRepo("fedora", false, 100)
	oldId := p.AddSolvable(installed, pool.SolvableSpec{Name: "pkg", EVR: nevra.EVR{Version: "1.0"}, Arch: "x86_64"})
	newId := p.AddSolvable(avail, pool.SolvableSpec{Name: "pkg", EVR: nevra.EVR{Version: "2.0"}, Arch: "x86_64"})

	s := New(p)
	job := Job{Flags: NewJobFlags(SelectionSolvable, ActionUpdate), Target: newId}

	// Update operates over a candidate set sharing a name; exercise via
	// the "install newId / erase oldId" pair the way jobUpdate computes it.
	ok := s.Solve([]Job{{Flags: NewJobFlags(SelectionOneOf, ActionUpdate), OneOf: []int{oldId, newId}}})
	require.True(t, ok)

	tx := s.CreateTransaction()
	var sawUpgrade, sawObsoleted bool
	for _, step := range tx.Steps {
		if step.Id == newId && step.Type == StepUpgrade {
			sawUpgrade = true
		}
		if step.Id == oldId && step.Type == StepObsoleted {
			sawObsoleted = true
		}
	}
	assert.True(t, sawUpgrade)
	assert.True(t, sawObsoleted)
	_ = job
}

func TestSolver_CreateTransaction_ClassifiesReinstall(t *testing.T) {
	p := pool.New()
	installed := p.AddRepo("@System", true, 0)
	avail := p.AddRepo("fedora", false, 100)
	oldId := p.AddSolvable(installed, pool.SolvableSpec{Name: "pkg", EVR: nevra.EVR{Version: "1.0"}, Arch: "x86_64"})
	newId := p.AddSolvable(avail, pool.SolvableSpec{Name: "pkg", EVR: nevra.EVR{Version: "1.0"}, Arch: "x86_64"})

	s := New(p)
	ok := s.Solve([]Job{{Flags: NewJobFlags(SelectionOneOf, ActionUpdate), OneOf: []int{oldId, newId}}})
	require.True(t, ok)

	tx := s.CreateTransaction()
	var sawInstallReinstall, sawEraseReinstall bool
	for _, step := range tx.Steps {
		if step.Id == newId && step.Type == StepReinstall {
			sawInstallReinstall = true
		}
		if step.Id == oldId && step.Type == StepReinstall {
			sawEraseReinstall = true
		}
	}
	assert.True(t, sawInstallReinstall)
	assert.True(t, sawEraseReinstall)
}
