package pool

import "github.com/rpmgoal/rpmgoal/internal/nevra"

// NEVRATriple is the (name, arch, evr) shape advisory collections reference
// a package by, without requiring a resolved solvable id.
type NEVRATriple struct {
	Name string
	Arch string
	EVR  nevra.EVR
}

// Advisory is the minimal errata shape the ADVISORY* query keynames walk:
// an id, a type/severity classification, and the packages it references.
// It exists to drive the documented filter semantics without a real
// errata-metadata extractor, which is out of scope.
type Advisory struct {
	ID       string
	Type     string
	Severity string
	Packages []NEVRATriple
}

// AddAdvisory registers an advisory with the pool.
func (p *Pool) AddAdvisory(a Advisory) {
	p.advisories = append(p.advisories, a)
}

// Advisories returns every registered advisory.
func (p *Pool) Advisories() []Advisory { return p.advisories }
