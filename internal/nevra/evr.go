// Package nevra implements RPM-style EVR (epoch:version-release) comparison
// and strict NEVRA (name-[epoch:]version-release.arch) parsing, per spec.md
// §2 C4 and the EVR/NEVRA glossary entries.
package nevra

import (
	"strconv"
	"strings"
)

// EVR is an epoch-version-release triple. Epoch defaults to 0 when absent
// from the source string, matching RPM's own convention, but HasEpoch
// records whether the string actually spelled one out (needed by the
// NEVRA keyname's "with or without epoch to mirror the pattern" rule).
type EVR struct {
	Epoch    int
	HasEpoch bool
	Version  string
	Release  string
}

// String renders the canonical form, omitting the release segment when
// empty (version-only EVRs) and the epoch when absent.
func (e EVR) String() string {
	var b strings.Builder
	if e.HasEpoch {
		b.WriteString(strconv.Itoa(e.Epoch))
		b.WriteByte(':')
	}
	b.WriteString(e.Version)
	if e.Release != "" {
		b.WriteByte('-')
		b.WriteString(e.Release)
	}
	return b.String()
}

// ParseEVR parses "[epoch:]version[-release]". It never fails: any string
// is a legal version under RPM semantics, this just splits it.
func ParseEVR(s string) EVR {
	var e EVR
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if n, err := strconv.Atoi(s[:i]); err == nil {
			e.Epoch = n
			e.HasEpoch = true
			s = s[i+1:]
		}
	}
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		e.Version = s[:i]
		e.Release = s[i+1:]
	} else {
		e.Version = s
	}
	return e
}

// Compare orders two EVRs using RPM version-comparison semantics: epoch
// first (absent treated as 0), then version, then release, each compared
// with rpmvercmp.
func Compare(a, b EVR) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := rpmvercmp(a.Version, b.Version); c != 0 {
		return c
	}
	return rpmvercmp(a.Release, b.Release)
}

func isAlphaByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

// rpmvercmp implements RPM's segment-based version string comparison:
// strings are split into alternating runs of digits and letters (other
// characters act as separators and are skipped), numeric runs compare
// numerically, alphabetic runs compare lexically, and a numeric run always
// outranks a missing/alphabetic run in the other string.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}
	var i, j int
	for i < len(a) || j < len(b) {
		// Skip non-alphanumeric separators on both sides.
		for i < len(a) && !isAlphaByte(a[i]) && !isDigitByte(a[i]) {
			i++
		}
		for j < len(b) && !isAlphaByte(b[j]) && !isDigitByte(b[j]) {
			j++
		}

		if i >= len(a) || j >= len(b) {
			break
		}

		startI := i
		startJ := j

		isNum := isDigitByte(a[i])
		// Segment kind is driven by 'a'; if 'b' disagrees in kind at this
		// position, the numeric side wins outright (RPM semantics).
		if isNum {
			for i < len(a) && isDigitByte(a[i]) {
				i++
			}
			for j < len(b) && isDigitByte(b[j]) {
				j++
			}
			if startJ == j {
				// b has no digits here: numeric beats empty/alpha.
				return 1
			}
		} else {
			for i < len(a) && isAlphaByte(a[i]) {
				i++
			}
			for j < len(b) && isAlphaByte(b[j]) {
				j++
			}
			if startJ == j {
				return -1
			}
		}

		segA := a[startI:i]
		segB := b[startJ:j]

		if isNum {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
			if segA != segB {
				if segA > segB {
					return 1
				}
				return -1
			}
			continue
		}

		if segA != segB {
			if segA > segB {
				return 1
			}
			return -1
		}
	}

	remA := i < len(a)
	remB := j < len(b)
	switch {
	case remA && !remB:
		return 1
	case !remA && remB:
		return -1
	default:
		return 0
	}
}
