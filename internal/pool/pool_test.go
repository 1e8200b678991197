package pool

import (
	"testing"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) (*Pool, int, int) {
	t.Helper()
	p := New()
	installed := p.AddRepo("@System", true, 0)
	avail := p.AddRepo("fedora", false, 100)
	return p, installed, avail
}

func TestPool_AddRepo_SecondInstalledPanics(t *testing.T) {
	p := New()
	p.AddRepo("@System", true, 0)
	assert.Panics(t, func() {
		p.AddRepo("other", true, 0)
	})
}

func TestPool_AddSolvable_SelfProvide(t *testing.T) {
	p, _, avail := newTestPool(t)
	id := p.AddSolvable(avail, SolvableSpec{
		Name: "bash",
		EVR:  nevra.EVR{Version: "5.1", Release: "1"},
		Arch: "x86_64",
	})
	sv := p.MustGet(id)
	require.Len(t, sv.Provides, 1)
	assert.Equal(t, "bash", sv.Provides[0].Name)
	assert.True(t, sv.Provides[0].HasEVR)
}

func TestPool_GetInvalidId(t *testing.T) {
	p := New()
	_, ok := p.Get(0)
	assert.False(t, ok)
	_, ok = p.Get(999)
	assert.False(t, ok)
}

func TestPool_InstalledRepoId(t *testing.T) {
	p, installed, _ := newTestPool(t)
	id, ok := p.InstalledRepoId()
	assert.True(t, ok)
	assert.Equal(t, installed, id)
}

func TestPool_AllIdsAndConsidered(t *testing.T) {
	p, _, avail := newTestPool(t)
	a := p.AddSolvable(avail, SolvableSpec{Name: "a", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	b := p.AddSolvable(avail, SolvableSpec{Name: "b", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})

	assert.Equal(t, []int{a, b}, p.AllIds().Ids())
	assert.Equal(t, []int{a, b}, p.Considered().Ids())

	excl := p.AllIds()
	excl.Remove(a)
	p.SetConsidered(excl)
	assert.Equal(t, []int{b}, p.Considered().Ids())
}

func TestPool_WhatProvides_ByName(t *testing.T) {
	p, _, avail := newTestPool(t)
	aId := p.AddSolvable(avail, SolvableSpec{Name: "A", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	bId := p.AddSolvable(avail, SolvableSpec{
		Name: "B", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Provides: []dependency.Reldep{{Name: "X"}},
	})
	cId := p.AddSolvable(avail, SolvableSpec{
		Name: "C", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Provides: []dependency.Reldep{{Name: "X"}},
	})

	result := p.WhatProvides(dependency.Reldep{Name: "X"})
	assert.ElementsMatch(t, []int{bId, cId}, result.Ids())
	assert.False(t, result.Has(aId))
}

func TestPool_WhatProvides_VersionConstraint(t *testing.T) {
	p, _, avail := newTestPool(t)
	old := p.AddSolvable(avail, SolvableSpec{Name: "lib", EVR: nevra.EVR{Version: "1.0"}, Arch: "x86_64"})
	new_ := p.AddSolvable(avail, SolvableSpec{Name: "lib", EVR: nevra.EVR{Version: "2.0"}, Arch: "x86_64"})

	req := dependency.Reldep{Name: "lib", Op: dependency.OpGE, EVR: nevra.EVR{Version: "1.5"}, HasEVR: true}
	result := p.WhatProvides(req)
	assert.True(t, result.Has(new_))
	assert.False(t, result.Has(old))
}

func TestPool_WhatRequires(t *testing.T) {
	p, _, avail := newTestPool(t)
	dep := p.AddSolvable(avail, SolvableSpec{Name: "dep", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	consumer := p.AddSolvable(avail, SolvableSpec{
		Name: "app", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Requires: []dependency.Reldep{{Name: "dep"}},
	})

	result := p.WhatRequires(dependency.Reldep{Name: "dep"})
	assert.Equal(t, []int{consumer}, result.Ids())
	assert.False(t, result.Has(dep))
}

func TestPool_WhatObsoletes_WithProvides(t *testing.T) {
	p, installed, avail := newTestPool(t)
	old := p.AddSolvable(installed, SolvableSpec{Name: "old", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	newer := p.AddSolvable(avail, SolvableSpec{
		Name: "new", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Obsoletes: []dependency.Reldep{{Name: "old"}},
	})

	result := p.WhatObsoletes(dependency.Reldep{Name: "old"}, true)
	assert.Equal(t, []int{newer}, result.Ids())
	_ = old
}

func TestPool_WhatObsoletes_RequiresNevrMatchWithoutProvides(t *testing.T) {
	p, installed, avail := newTestPool(t)
	p.AddSolvable(installed, SolvableSpec{Name: "old", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	newer := p.AddSolvable(avail, SolvableSpec{
		Name: "new", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64",
		Obsoletes: []dependency.Reldep{{Name: "old"}},
	})

	// Candidate here is "new" itself; its own name/evr doesn't match "old",
	// so without provides semantics the match must fail.
	result := p.WhatObsoletes(dependency.Reldep{Name: "old"}, false)
	assert.False(t, result.Has(newer))
}

func TestPool_ByName(t *testing.T) {
	p, _, avail := newTestPool(t)
	a := p.AddSolvable(avail, SolvableSpec{Name: "dup", EVR: nevra.EVR{Version: "1"}, Arch: "x86_64"})
	b := p.AddSolvable(avail, SolvableSpec{Name: "dup", EVR: nevra.EVR{Version: "2"}, Arch: "x86_64"})

	assert.Equal(t, []int{a, b}, p.ByName("dup"))
	assert.Empty(t, p.ByName("missing"))
}

func TestPool_CompareEVR(t *testing.T) {
	p := New()
	a := nevra.EVR{Version: "1.0"}
	b := nevra.EVR{Version: "2.0"}
	assert.Equal(t, -1, p.CompareEVR(a, b))
}
