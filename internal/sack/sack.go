// Package sack implements the Sack collaborator: the mutable policy layer
// sitting on top of a read-only Pool — install-only configuration, the
// running kernel, vendor-change policy, module/user excludes, and the
// considered-bitmap recompute hooks every Query/Selector/Goal path needs
// before it can read the pool.
package sack

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/goalerr"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/pool"
)

// Sack owns a Pool plus the policy state that Query/Selector/Goal read:
// install-only names and limit, the running kernel, vendor-change
// tolerance, and the exclude sets that feed the considered bitmap.
type Sack struct {
	pool *pool.Pool
	fs   afero.Fs

	installOnlyNames  []string
	installOnlyLimit  int
	runningKernel     int
	allowVendorChange bool

	moduleExcludes *idset.PackageSet
	userExcludes   *idset.PackageSet

	providesReady     bool
	pkgSolvablesCache *idset.PackageSet
}

// New wraps p in a Sack with the given filesystem (afero, for
// WriteDebugdata and future metadata loading — swappable with an in-memory
// fs in tests).
func New(p *pool.Pool, fs afero.Fs) *Sack {
	return &Sack{
		pool:              p,
		fs:                fs,
		installOnlyLimit:  1,
		runningKernel:     -1,
		allowVendorChange: true,
		moduleExcludes:    idset.New(),
		userExcludes:      idset.New(),
	}
}

// Pool returns the underlying pool.
func (s *Sack) Pool() *pool.Pool { return s.pool }

// SetInstallOnlyNames configures the glob-expandable name list identifying
// install-only packages (e.g. "kernel", "kernel-core", "kernel-devel*").
func (s *Sack) SetInstallOnlyNames(names []string) { s.installOnlyNames = names }

// InstallOnlyNames returns the configured install-only name patterns.
func (s *Sack) InstallOnlyNames() []string { return s.installOnlyNames }

// SetInstallOnlyLimit sets how many concurrent versions an install-only
// name may keep installed.
func (s *Sack) SetInstallOnlyLimit(n int) { s.installOnlyLimit = n }

// InstallOnlyLimit returns the configured limit.
func (s *Sack) InstallOnlyLimit() int { return s.installOnlyLimit }

// IsInstallOnly reports whether sv's name matches one of the configured
// install-only patterns.
func (s *Sack) IsInstallOnly(sv *pool.Solvable) bool {
	for _, pattern := range s.installOnlyNames {
		matched, err := dependency.ExpandGlob(pattern, []string{sv.Name})
		if err == nil && len(matched) > 0 {
			return true
		}
	}
	return false
}

// SetRunningKernel records the installed solvable id of the kernel package
// currently running, or -1 if unknown.
func (s *Sack) SetRunningKernel(id int) { s.runningKernel = id }

// RunningKernel returns the running kernel's solvable id, if known.
func (s *Sack) RunningKernel() (int, bool) {
	return s.runningKernel, s.runningKernel != -1
}

// SetAllowVendorChange toggles whether upgrades may switch a package's
// packaging vendor.
func (s *Sack) SetAllowVendorChange(v bool) { s.allowVendorChange = v }

// AllowVendorChange reports the current vendor-change policy.
func (s *Sack) AllowVendorChange() bool { return s.allowVendorChange }

// SetModuleExcludes replaces the module-exclude set (excludes originating
// from active module-stream filtering, tracked separately from ordinary
// user excludes per spec.md's glossary distinction).
func (s *Sack) SetModuleExcludes(ids *idset.PackageSet) {
	s.moduleExcludes = ids
	s.invalidate()
}

// ModuleExcludes returns the current module-exclude set.
func (s *Sack) ModuleExcludes() *idset.PackageSet { return s.moduleExcludes }

// SetUserExcludes replaces the ordinary user-exclude set.
func (s *Sack) SetUserExcludes(ids *idset.PackageSet) {
	s.userExcludes = ids
	s.invalidate()
}

// UserExcludes returns the current user-exclude set.
func (s *Sack) UserExcludes() *idset.PackageSet { return s.userExcludes }

func (s *Sack) invalidate() {
	s.pkgSolvablesCache = nil
}

// RecomputeConsidered rebuilds the pool's considered bitmap from scratch:
// every real solvable, minus module excludes, minus user excludes. Every
// evaluator path that depends on the considered bitmap invokes this eagerly
// before reading it, per spec.md §5's shared-resources note.
func (s *Sack) RecomputeConsidered() {
	all := s.pool.AllIds()
	all.Difference(s.moduleExcludes)
	all.Difference(s.userExcludes)
	s.pool.SetConsidered(all)
	s.invalidate()
}

// RecomputeConsideredMap mirrors RecomputeConsidered but also returns which
// exclude source removed which ids, a debug aid rather than anything the
// solver consumes.
func (s *Sack) RecomputeConsideredMap() map[string]*idset.PackageSet {
	s.RecomputeConsidered()
	return map[string]*idset.PackageSet{
		"module_excludes": s.moduleExcludes.Clone(),
		"user_excludes":   s.userExcludes.Clone(),
	}
}

// MakeProvidesReady marks the pool's provides index as warm. Pool
// maintains its name index eagerly on AddSolvable, so this call is
// idempotent bookkeeping kept for parity with the external Sack contract
// callers expect to invoke before relying on provides lookups.
func (s *Sack) MakeProvidesReady() {
	s.providesReady = true
}

// ProvidesReady reports whether MakeProvidesReady has ever been called on
// this sack; nothing resets it.
func (s *Sack) ProvidesReady() bool { return s.providesReady }

// PkgSolvables returns every considered real solvable id, cached until the
// next exclude-set mutation invalidates it.
func (s *Sack) PkgSolvables() *idset.PackageSet {
	if s.pkgSolvablesCache == nil {
		s.pkgSolvablesCache = s.pool.Considered().Clone()
	}
	return s.pkgSolvablesCache
}

// WriteDebugdata makes dir absolute, creates it, and writes the given
// transaction/problems debug text into it, mirroring the solver's
// testcase_write(RESULT_TRANSACTION|RESULT_PROBLEMS) contract. Failures are
// surfaced as goalerr.FileInvalid.
func (s *Sack) WriteDebugdata(dir, transactionText, problemsText string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return goalerr.Wrap(goalerr.FileInvalid, err, "resolve debugdata dir %q", dir)
	}
	if err := s.fs.MkdirAll(abs, 0o755); err != nil {
		return goalerr.Wrap(goalerr.FileInvalid, err, "create debugdata dir %q", abs)
	}

	stamp := time.Now().UTC().Format("20060102T150405Z")
	txPath := filepath.Join(abs, fmt.Sprintf("%s-transaction.txt", stamp))
	probPath := filepath.Join(abs, fmt.Sprintf("%s-problems.txt", stamp))

	if err := afero.WriteFile(s.fs, txPath, []byte(transactionText), 0o644); err != nil {
		return goalerr.Wrap(goalerr.FileInvalid, err, "write %q", txPath)
	}
	if err := afero.WriteFile(s.fs, probPath, []byte(problemsText), 0o644); err != nil {
		return goalerr.Wrap(goalerr.FileInvalid, err, "write %q", probPath)
	}
	return nil
}
