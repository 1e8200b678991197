package query

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/sack"
)

func evr(v string) nevra.EVR { return nevra.EVR{Version: v} }

func newTestSack(t *testing.T) (*sack.Sack, *pool.Pool, int, int) {
	t.Helper()
	p := pool.New()
	installed := p.AddRepo("@System", true, 0)
	avail := p.AddRepo("fedora", false, 100)
	s := sack.New(p, afero.NewMemMapFs())
	s.RecomputeConsidered()
	return s, p, installed, avail
}

func TestQuery_AddFilter_RejectsBadCombination(t *testing.T) {
	s, _, _, _ := newTestSack(t)
	q := New(s)
	err := q.AddFilter(Filter{Keyname: PKG, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"bash"}})
	require.Error(t, err)
}

func TestQuery_AddFilter_DowngradesGlobWithoutMeta(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})
	q := New(s)
	require.NoError(t, q.AddFilter(Filter{Keyname: NAME, Cmp: CmpGlob, MatchType: MatchStr, Strs: []string{"bash"}}))
	result, err := q.Apply()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Size())
}

func TestQuery_Apply_LogsFilterApplication(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	q := New(s)
	q.SetLogger(&logger)
	require.NoError(t, q.AddFilter(Filter{Keyname: NAME, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"bash"}}))
	_, err := q.Apply()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "applied filter")
}

func TestQuery_AddFilter_ValidatesNevraStrict(t *testing.T) {
	s, _, _, _ := newTestSack(t)
	q := New(s)
	err := q.AddFilter(Filter{Keyname: NEVRA_STRICT, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"not a nevra"}})
	require.Error(t, err)
}

func TestQuery_Apply_IsIdempotentWithoutNewFilters(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})

	q := New(s)
	require.NoError(t, q.AddFilter(Filter{Keyname: NAME, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"bash"}}))

	first, err := q.Apply()
	require.NoError(t, err)
	second, err := q.Apply()
	require.NoError(t, err)
	assert.True(t, idset.Equal(first, second))
}

func TestQuery_AddFilter_ReopensAppliedQuery(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	bashId := p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})
	p.AddSolvable(avail, pool.SolvableSpec{Name: "zsh", EVR: evr("1"), Arch: "x86_64"})

	q := New(s)
	require.NoError(t, q.AddFilter(Filter{Keyname: ARCH, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"x86_64"}}))
	result, err := q.Apply()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Size())

	require.NoError(t, q.AddFilter(Filter{Keyname: NAME, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"bash"}}))
	result, err = q.Apply()
	require.NoError(t, err)
	assert.Equal(t, []int{bashId}, result.Ids())
}

func TestQuery_Result_IsSubsetOfConsidered(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})
	p.AddSolvable(avail, pool.SolvableSpec{Name: "zsh", EVR: evr("1"), Arch: "x86_64"})

	excluded := idset.New()
	excluded.Set(2)
	s.SetUserExcludes(excluded)
	s.RecomputeConsidered()

	q := New(s)
	require.NoError(t, q.AddFilter(Filter{Keyname: PKG_ALL}))
	result, err := q.Apply()
	require.NoError(t, err)

	considered := p.Considered()
	result.Each(func(id int) {
		assert.True(t, considered.Has(id))
	})
}

func TestQuery_InstalledAvailablePartitionResult(t *testing.T) {
	s, p, installed, avail := newTestSack(t)
	instId := p.AddSolvable(installed, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})
	availId := p.AddSolvable(avail, pool.SolvableSpec{Name: "zsh", EVR: evr("1"), Arch: "x86_64"})

	installedQ := New(s)
	installedResult, err := installedQ.Installed()
	require.NoError(t, err)
	assert.Equal(t, []int{instId}, installedResult.Ids())

	availableQ := New(s)
	availableResult, err := availableQ.Available()
	require.NoError(t, err)
	assert.Equal(t, []int{availId}, availableResult.Ids())
}

func TestQuery_SetAlgebra(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	bashId := p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})
	zshId := p.AddSolvable(avail, pool.SolvableSpec{Name: "zsh", EVR: evr("1"), Arch: "x86_64"})

	bashQ := New(s)
	require.NoError(t, bashQ.AddFilter(Filter{Keyname: NAME, Cmp: CmpEQ, MatchType: MatchStr, Strs: []string{"bash"}}))

	allQ := New(s)
	require.NoError(t, allQ.AddFilter(Filter{Keyname: PKG_ALL}))

	union, err := bashQ.Union(allQ)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{bashId, zshId}, union.Ids())

	inter, err := bashQ.Intersection(allQ)
	require.NoError(t, err)
	assert.Equal(t, []int{bashId}, inter.Ids())

	diff, err := allQ.Difference(bashQ)
	require.NoError(t, err)
	assert.Equal(t, []int{zshId}, diff.Ids())
}

func TestQuery_FilterDuplicated(t *testing.T) {
	s, p, installed, _ := newTestSack(t)
	oldId := p.AddSolvable(installed, pool.SolvableSpec{Name: "foo", EVR: evr("1"), Arch: "x86_64"})
	newId := p.AddSolvable(installed, pool.SolvableSpec{Name: "foo", EVR: evr("2"), Arch: "x86_64"})
	p.AddSolvable(installed, pool.SolvableSpec{Name: "bar", EVR: evr("1"), Arch: "x86_64"})

	q := New(s)
	result, err := q.FilterDuplicated()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{oldId, newId}, result.Ids())
}

func TestQuery_FilterExtras(t *testing.T) {
	s, p, installed, avail := newTestSack(t)
	stillAvailable := p.AddSolvable(installed, pool.SolvableSpec{Name: "bash", EVR: evr("1"), Arch: "x86_64"})
	p.AddSolvable(avail, pool.SolvableSpec{Name: "bash", EVR: evr("2"), Arch: "x86_64"})
	extraId := p.AddSolvable(installed, pool.SolvableSpec{Name: "localpkg", EVR: evr("1"), Arch: "x86_64"})

	q := New(s)
	result, err := q.FilterExtras()
	require.NoError(t, err)
	assert.Equal(t, []int{extraId}, result.Ids())
	assert.NotContains(t, result.Ids(), stillAvailable)
}

func TestQuery_FilterRecent(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	oldId := p.AddSolvable(avail, pool.SolvableSpec{Name: "old", EVR: evr("1"), Arch: "x86_64", BuildTime: 100})
	newId := p.AddSolvable(avail, pool.SolvableSpec{Name: "new", EVR: evr("1"), Arch: "x86_64", BuildTime: 200})

	q := New(s)
	result, err := q.FilterRecent(150)
	require.NoError(t, err)
	assert.Equal(t, []int{newId}, result.Ids())
	assert.NotContains(t, result.Ids(), oldId)
}

type fakeHistory struct{ userInstalled *idset.PackageSet }

func (h fakeHistory) FilterUserInstalled(candidates *idset.PackageSet) *idset.PackageSet {
	return idset.Intersect(candidates, h.userInstalled)
}

type fakeUnneededComputer struct{ unneeded *idset.PackageSet }

func (c fakeUnneededComputer) ComputeUnneeded(userInstalled *idset.PackageSet) (*idset.PackageSet, error) {
	return c.unneeded, nil
}

func TestQuery_FilterUnneeded(t *testing.T) {
	s, p, installed, _ := newTestSack(t)
	depId := p.AddSolvable(installed, pool.SolvableSpec{Name: "dep", EVR: evr("1"), Arch: "x86_64"})
	p.AddSolvable(installed, pool.SolvableSpec{Name: "kept", EVR: evr("1"), Arch: "x86_64"})

	unneeded := idset.New()
	unneeded.Set(depId)

	history := fakeHistory{userInstalled: idset.New()}
	uc := fakeUnneededComputer{unneeded: unneeded}

	q := New(s)
	result, err := q.FilterUnneeded(history, uc)
	require.NoError(t, err)
	assert.Equal(t, []int{depId}, result.Ids())
}

func TestQuery_LatestNCoversDistinctEVRsExactlyOnce(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	v1 := p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("1"), Arch: "x86_64"})
	v2 := p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("2"), Arch: "x86_64"})
	v3 := p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("3"), Arch: "x86_64"})

	topQ := New(s)
	require.NoError(t, topQ.AddFilter(Filter{Keyname: LATEST, Cmp: CmpEQ, MatchType: MatchNum, Nums: []int{1}}))
	top, err := topQ.Apply()
	require.NoError(t, err)

	restQ := New(s)
	require.NoError(t, restQ.AddFilter(Filter{Keyname: LATEST, Cmp: CmpEQ, MatchType: MatchNum, Nums: []int{-1}}))
	rest, err := restQ.Apply()
	require.NoError(t, err)

	assert.Equal(t, []int{v3}, top.Ids())
	assert.ElementsMatch(t, []int{v1, v2}, rest.Ids())
	assert.Equal(t, 0, idset.Intersect(top, rest).Size())
	assert.ElementsMatch(t, []int{v1, v2, v3}, idset.Union(top, rest).Ids())
}

func TestQuery_LatestPerArch(t *testing.T) {
	s, p, _, avail := newTestSack(t)
	x64 := p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("2"), Arch: "x86_64"})
	p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("1"), Arch: "x86_64"})
	arm := p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("1"), Arch: "aarch64"})

	q := New(s)
	require.NoError(t, q.AddFilter(Filter{Keyname: LATEST_PER_ARCH, Cmp: CmpEQ, MatchType: MatchNum, Nums: []int{1}}))
	result, err := q.Apply()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{x64, arm}, result.Ids())
}

func TestQuery_ObsoletesChain(t *testing.T) {
	s, p, installed, avail := newTestSack(t)
	oldPkg := p.AddSolvable(installed, pool.SolvableSpec{Name: "old-name", EVR: evr("1"), Arch: "x86_64"})
	p.AddSolvable(avail, pool.SolvableSpec{
		Name: "new-name", EVR: evr("1"), Arch: "x86_64",
		Obsoletes: []dependency.Reldep{{Name: "old-name"}},
	})

	target := idset.New()
	target.Set(oldPkg)

	q := New(s)
	require.NoError(t, q.AddFilter(Filter{Keyname: OBSOLETES, Cmp: CmpEQ, MatchType: MatchPkgSet, PkgSet: target}))
	result, err := q.Apply()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Size())
	assert.Equal(t, "new-name", p.MustGet(result.Ids()[0]).Name)
}

func TestQuery_DuplicatedDetectionAcrossRepos(t *testing.T) {
	s, p, installed, avail := newTestSack(t)
	oldInstalled := p.AddSolvable(installed, pool.SolvableSpec{Name: "foo", EVR: evr("1"), Arch: "x86_64"})
	newInstalled := p.AddSolvable(installed, pool.SolvableSpec{Name: "foo", EVR: evr("2"), Arch: "x86_64"})
	p.AddSolvable(avail, pool.SolvableSpec{Name: "foo", EVR: evr("3"), Arch: "x86_64"})

	q := New(s)
	result, err := q.FilterDuplicated()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{oldInstalled, newInstalled}, result.Ids())
}
