package nevra

import (
	"fmt"
	"strconv"
	"strings"
)

// NEVRA is a fully-qualified solvable identity: name, epoch/version/release,
// and architecture. Epoch is carried the same way as in EVR: HasEpoch
// records whether the source string spelled one out.
type NEVRA struct {
	Name     string
	Epoch    int
	HasEpoch bool
	Version  string
	Release  string
	Arch     string
}

// EVR extracts the epoch/version/release triple for comparison.
func (n NEVRA) EVR() EVR {
	return EVR{Epoch: n.Epoch, HasEpoch: n.HasEpoch, Version: n.Version, Release: n.Release}
}

// String renders the canonical "name-[epoch:]version-release.arch" form.
func (n NEVRA) String() string {
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('-')
	if n.HasEpoch {
		fmt.Fprintf(&b, "%d:", n.Epoch)
	}
	b.WriteString(n.Version)
	b.WriteByte('-')
	b.WriteString(n.Release)
	b.WriteByte('.')
	b.WriteString(n.Arch)
	return b.String()
}

// Parse parses a strict "name-[epoch:]version-release.arch" string: no
// globs, no ambiguity tolerance. It walks from the right, since name may
// itself contain hyphens, the way rpm's own NEVRA splitter does.
func Parse(s string) (NEVRA, error) {
	arch, rest, ok := cutLast(s, '.')
	if !ok || arch == "" {
		return NEVRA{}, fmt.Errorf("nevra: %q: missing arch component", s)
	}

	release, rest, ok := cutLast(rest, '-')
	if !ok || release == "" {
		return NEVRA{}, fmt.Errorf("nevra: %q: missing release component", s)
	}

	name, evrPart, ok := cutLast(rest, '-')
	if !ok || name == "" || evrPart == "" {
		return NEVRA{}, fmt.Errorf("nevra: %q: missing name/version component", s)
	}

	n := NEVRA{Name: name, Release: release, Arch: arch, Version: evrPart}
	if i := strings.IndexByte(evrPart, ':'); i >= 0 {
		epoch, err := strconv.Atoi(evrPart[:i])
		if err != nil {
			return NEVRA{}, fmt.Errorf("nevra: %q: invalid epoch: %w", s, err)
		}
		n.Epoch = epoch
		n.HasEpoch = true
		n.Version = evrPart[i+1:]
	}
	if n.Version == "" {
		return NEVRA{}, fmt.Errorf("nevra: %q: empty version component", s)
	}

	return n, nil
}

// cutLast splits s at the last occurrence of sep, returning the piece
// after sep and the piece before it. ok is false if sep does not occur.
func cutLast(s string, sep byte) (after, before string, ok bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return "", s, false
	}
	return s[i+1:], s[:i], true
}
