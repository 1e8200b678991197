package dependency

import (
	"testing"

	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReldep(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Reldep
	}{
		{"bare name", "libc", Reldep{Name: "libc"}},
		{"ge", "libc >= 2.34", Reldep{Name: "libc", Op: OpGE, EVR: nevra.EVR{Version: "2.34"}, HasEVR: true}},
		{"le", "libc <= 2.34-1", Reldep{Name: "libc", Op: OpLE, EVR: nevra.EVR{Version: "2.34", Release: "1"}, HasEVR: true}},
		{"eq", "libc = 2.34", Reldep{Name: "libc", Op: OpEQ, EVR: nevra.EVR{Version: "2.34"}, HasEVR: true}},
		{"ne", "libc != 2.34", Reldep{Name: "libc", Op: OpNE, EVR: nevra.EVR{Version: "2.34"}, HasEVR: true}},
		{"epoch evr", "glibc >= 2:2.34-1", Reldep{Name: "glibc", Op: OpGE, EVR: nevra.EVR{Epoch: 2, HasEpoch: true, Version: "2.34", Release: "1"}, HasEVR: true}},
		{"no whitespace", "libc>=2.34", Reldep{Name: "libc", Op: OpGE, EVR: nevra.EVR{Version: "2.34"}, HasEVR: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReldep(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReldep_Errors(t *testing.T) {
	tests := []string{"", "   ", "libc >=", ">= 2.34"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseReldep(in)
			assert.Error(t, err)
		})
	}
}

func TestReldep_String(t *testing.T) {
	assert.Equal(t, "libc", Reldep{Name: "libc"}.String())
	r, err := ParseReldep("libc >= 2.34")
	require.NoError(t, err)
	assert.Equal(t, "libc >= 2.34", r.String())
}

func TestReldep_Satisfies(t *testing.T) {
	r, err := ParseReldep("libc >= 2.34")
	require.NoError(t, err)

	assert.True(t, r.Satisfies(nevra.EVR{Version: "2.34"}))
	assert.True(t, r.Satisfies(nevra.EVR{Version: "2.35"}))
	assert.False(t, r.Satisfies(nevra.EVR{Version: "2.33"}))

	bare := Reldep{Name: "libc"}
	assert.True(t, bare.Satisfies(nevra.EVR{Version: "0.0.1"}))
}

func TestDependencyList_AddAndString(t *testing.T) {
	dl, err := NewDependencyList("libc >= 2.34", "libm")
	require.NoError(t, err)
	assert.Equal(t, 2, dl.Len())
	assert.Equal(t, "libc >= 2.34, libm", dl.String())

	dl.Add(Reldep{Name: "libz"})
	assert.Equal(t, 3, dl.Len())
	assert.Equal(t, "libz", dl.At(2).Name)
}

func TestNewDependencyList_PropagatesParseError(t *testing.T) {
	_, err := NewDependencyList("libc >= 2.34", "")
	assert.Error(t, err)
}

func TestExpandGlob(t *testing.T) {
	candidates := []string{"kernel-core", "kernel-devel", "bash", "kernel"}

	got, err := ExpandGlob("kernel-*", candidates)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "kernel-core", got[0].Name)
	assert.Equal(t, "kernel-devel", got[1].Name)
}

func TestExpandGlob_NoMatches(t *testing.T) {
	got, err := ExpandGlob("nonexistent-*", []string{"bash"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExpandGlob_BadPattern(t *testing.T) {
	_, err := ExpandGlob("[", []string{"bash"})
	assert.Error(t, err)
}
