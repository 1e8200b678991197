// Package problem implements the problem-rule formatter: a pure function
// mapping a solver rule (type, source, target, dep) to a localized,
// parameterized human sentence, in either a package or a module
// vocabulary, plus the final bullet-list assembly.
package problem

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/solver"
)

// Vocab selects how a solvable renders inside a rendered sentence: the
// package vocabulary uses canonical NEVRA, the module vocabulary uses
// "description:evr:summary.arch".
type Vocab int

const (
	VocabPackage Vocab = iota
	VocabModule
)

func init() {
	registerEnglish()
	registerSpanish()
}

func msgKey(vocab Vocab, t solver.RuleType) string {
	prefix := "pkg"
	if vocab == VocabModule {
		prefix = "mod"
	}
	return fmt.Sprintf("%s.%d", prefix, t)
}

func registerEnglish() {
	set := func(vocab Vocab, t solver.RuleType, template string) {
		message.SetString(language.English, msgKey(vocab, t), template)
	}
	for _, vocab := range []Vocab{VocabPackage, VocabModule} {
		set(vocab, solver.RuleDistupgrade, "problem with installed package %[1]s")
		set(vocab, solver.RuleInfarch, "problem with installed package %[1]s")
		set(vocab, solver.RuleUpdate, "nothing provides an update for %[1]s")
		set(vocab, solver.RuleJob, "the requested operation on %[1]s cannot be satisfied")
		set(vocab, solver.RuleJobUnsupported, "the requested job is unsupported")
		set(vocab, solver.RuleJobNothingProvidesDep, "nothing provides %[3]s")
		set(vocab, solver.RuleJobUnknownPackage, "unknown package %[2]s")
		set(vocab, solver.RuleJobProvidedBySystem, "%[3]s is already provided by the system")
		set(vocab, solver.RulePkg, "problem with package %[1]s")
		set(vocab, solver.RuleBest1, "cannot install the best candidate for the job")
		set(vocab, solver.RuleBest2, "cannot install the best update candidate for package %[1]s")
		set(vocab, solver.RulePkgNotInstallable1, "package %[1]s is filtered out by exclude filtering")
		set(vocab, solver.RulePkgNotInstallable2, "package %[1]s is only available for a different architecture")
		set(vocab, solver.RulePkgNotInstallable3, "package %[1]s is not installable")
		set(vocab, solver.RulePkgNotInstallable4, "package %[1]s is excluded by configuration")
		set(vocab, solver.RulePkgNothingProvidesDep, "package %[1]s requires %[3]s, but none of the providers can be installed")
		set(vocab, solver.RulePkgSameName, "cannot install both %[1]s and %[2]s")
		set(vocab, solver.RulePkgConflicts, "package %[1]s conflicts with %[2]s")
		set(vocab, solver.RulePkgObsoletes, "package %[1]s obsoletes %[2]s")
		set(vocab, solver.RulePkgInstalledObsoletes, "installed package %[1]s obsoletes %[2]s")
		set(vocab, solver.RulePkgImplicitObsoletes, "package %[1]s implicitly obsoletes %[2]s providing %[3]s")
		set(vocab, solver.RulePkgRequires, "package %[1]s requires %[3]s, but none of the providers can be installed")
		set(vocab, solver.RulePkgSelfConflict, "package %[1]s conflicts with itself")
		set(vocab, solver.RuleYumobs, "both package %[1]s and %[2]s obsolete %[3]s")
	}
}

func registerSpanish() {
	set := func(vocab Vocab, t solver.RuleType, template string) {
		message.SetString(language.Spanish, msgKey(vocab, t), template)
	}
	for _, vocab := range []Vocab{VocabPackage, VocabModule} {
		set(vocab, solver.RuleJobUnknownPackage, "paquete desconocido %[2]s")
		set(vocab, solver.RulePkgConflicts, "el paquete %[1]s está en conflicto con %[2]s")
		set(vocab, solver.RulePkgNothingProvidesDep, "el paquete %[1]s requiere %[3]s, pero ningún proveedor puede instalarse")
		set(vocab, solver.RuleJobNothingProvidesDep, "nada provee %[3]s")
	}
}

func renderSolvable(p *pool.Pool, id int, vocab Vocab) string {
	sv, ok := p.Get(id)
	if !ok {
		return "?"
	}
	if vocab == VocabModule {
		return fmt.Sprintf("%s:%s:%s.%s", sv.Description, sv.EVR.String(), sv.Summary, sv.Arch)
	}
	n := nevra.NEVRA{Name: sv.Name, Epoch: sv.EVR.Epoch, HasEpoch: sv.EVR.HasEpoch, Version: sv.EVR.Version, Release: sv.EVR.Release, Arch: sv.Arch}
	return n.String()
}

// Format renders a single RuleInfo into a sentence using the given
// vocabulary and locale tag (e.g. "en", "es"; unknown tags fall back to
// English via the message package's own matcher).
func Format(p *pool.Pool, s *solver.Solver, info solver.RuleInfo, vocab Vocab, locale string) string {
	tag, _, _ := language.NewMatcher([]language.Tag{language.English, language.Spanish}).Match(language.Make(locale))
	printer := message.NewPrinter(tag)

	source := "?"
	if info.Source != 0 {
		source = renderSolvable(p, info.Source, vocab)
	}
	target := "?"
	if info.Target != 0 {
		target = renderSolvable(p, info.Target, vocab)
	}
	dep := "?"
	if info.Dep != 0 && s != nil {
		if name := s.DepName(info.Dep); name != "" {
			dep = name
		}
	}

	key := msgKey(vocab, info.Type)
	return printer.Sprintf(key, source, target, dep)
}

// FormatRemovalOfProtected renders the single sentence used when a
// transaction's only obstacle is that it would remove protected packages,
// per spec.md §4.4.
func FormatRemovalOfProtected(p *pool.Pool, removed *idset.PackageSet, vocab Vocab) string {
	var names []string
	removed.Each(func(id int) {
		names = append(names, renderSolvable(p, id, vocab))
	})
	return "the operation would remove protected packages: " + strings.Join(names, ", ")
}

// FormatProblems assembles the final bullet-listed message for a list of
// problems (each a list of already-deduplicated sentences), per spec.md
// §4.4's "Problem: " / "Problem 1: … Problem 2: …" rule.
func FormatProblems(problems [][]string) string {
	if len(problems) == 0 {
		return ""
	}
	if len(problems) == 1 {
		return "Problem: " + bullets(problems[0])
	}
	var b strings.Builder
	for i, p := range problems {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "Problem %d: %s", i+1, bullets(p))
	}
	return b.String()
}

func bullets(sentences []string) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString("\n  - ")
		b.WriteString(s)
	}
	return b.String()
}
