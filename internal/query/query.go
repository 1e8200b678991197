package query

import (
	"github.com/rs/zerolog"

	"github.com/rpmgoal/rpmgoal/internal/dependency"
	"github.com/rpmgoal/rpmgoal/internal/goalerr"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
)

// sackLike is the slice of Sack behavior Query needs: a pool plus the
// considered-bitmap recompute hook. Defined here, at the point of use, so
// this package never imports internal/sack directly.
type sackLike interface {
	Pool() *pool.Pool
	PkgSolvables() *idset.PackageSet
	RecomputeConsidered()
}

// Query is an ordered list of filters lazily evaluated into a PackageSet,
// per spec.md §3's Query data model.
type Query struct {
	sack    sackLike
	filters []Filter
	applied bool
	result  *idset.PackageSet

	logger *zerolog.Logger
}

// New returns an open Query with no filters and no result against s.
func New(s sackLike) *Query {
	return &Query{sack: s}
}

// SetLogger attaches a logger for debug-level filter-application events.
// Nil-safe: a Query with no logger set stays silent.
func (q *Query) SetLogger(log *zerolog.Logger) { q.logger = log }

// AddFilter validates and appends a filter, rejecting invalid
// keyname/comparison/match-type combinations with BAD_QUERY, downgrading
// GLOB to EQ when the pattern has no glob metacharacters, and parsing
// NEVRA_STRICT eagerly rather than deferring it to Apply. Adding a filter
// after Apply re-opens the query.
func (q *Query) AddFilter(f Filter) error {
	if !keynameAllows(f.Keyname, f.MatchType, f.Cmp) {
		return goalerr.New(goalerr.BadQuery, "keyname %d incompatible with match type %d", f.Keyname, f.MatchType)
	}
	f.Cmp = normalizeCmp(f.Cmp, f.Strs)

	if f.Keyname == NEVRA_STRICT {
		for _, s := range f.Strs {
			if _, err := nevra.Parse(s); err != nil {
				return goalerr.Wrap(goalerr.BadQuery, err, "invalid NEVRA_STRICT match %q", s)
			}
		}
	}

	if f.MatchType == MatchReldep && f.Keyname != PROVIDES && f.Keyname != REQUIRES &&
		f.Keyname != CONFLICTS && f.Keyname != RECOMMENDS && f.Keyname != SUGGESTS &&
		f.Keyname != SUPPLEMENTS && f.Keyname != ENHANCES {
		return goalerr.New(goalerr.BadQuery, "keyname %d does not accept a reldep match", f.Keyname)
	}

	q.filters = append(q.filters, f)
	q.applied = false
	return nil
}

// AddReldepStrings is a convenience that parses each string as a reldep
// before delegating to AddFilter.
func (q *Query) AddReldepStrings(k Keyname, cmp Cmp, exprs ...string) error {
	dl, err := dependency.NewDependencyList(exprs...)
	if err != nil {
		return goalerr.Wrap(goalerr.BadQuery, err, "parsing reldep matches")
	}
	return q.AddFilter(Filter{Keyname: k, Cmp: cmp, MatchType: MatchReldep, Reldeps: dl.All()})
}

// Apply evaluates every queued filter into q.result and clears filters[].
// Idempotent: calling Apply twice without adding a filter in between
// returns the same result without re-evaluating.
func (q *Query) Apply() (*idset.PackageSet, error) {
	if q.applied {
		return q.result, nil
	}

	q.sack.RecomputeConsidered()
	p := q.sack.Pool()
	q.result = q.sack.PkgSolvables()

	for _, f := range q.filters {
		candidates := p.Considered().Ids()
		m, err := evalPositive(p, candidates, f)
		if err != nil {
			return nil, err
		}
		if f.Cmp&CmpNot != 0 {
			q.result = idset.Difference(q.result, m)
		} else {
			q.result = idset.Intersect(q.result, m)
		}
		if q.logger != nil {
			q.logger.Debug().Int("keyname", int(f.Keyname)).Int("matched", m.Size()).
				Int("result", q.result.Size()).Msg("applied filter")
		}
	}

	q.filters = nil
	q.applied = true
	return q.result, nil
}

// Result returns the current result, applying first if needed.
func (q *Query) Result() (*idset.PackageSet, error) {
	return q.Apply()
}

// Clone returns an independent copy sharing the same sack.
func (q *Query) Clone() *Query {
	c := &Query{sack: q.sack, applied: q.applied}
	c.filters = append([]Filter(nil), q.filters...)
	if q.result != nil {
		c.result = q.result.Clone()
	}
	return c
}

// Union applies both queries and returns the union of their results.
func (q *Query) Union(other *Query) (*idset.PackageSet, error) {
	a, err := q.Apply()
	if err != nil {
		return nil, err
	}
	b, err := other.Apply()
	if err != nil {
		return nil, err
	}
	return idset.Union(a, b), nil
}

// Intersection applies both queries and returns their intersection.
func (q *Query) Intersection(other *Query) (*idset.PackageSet, error) {
	a, err := q.Apply()
	if err != nil {
		return nil, err
	}
	b, err := other.Apply()
	if err != nil {
		return nil, err
	}
	return idset.Intersect(a, b), nil
}

// Difference applies both queries and returns q's result minus other's.
func (q *Query) Difference(other *Query) (*idset.PackageSet, error) {
	a, err := q.Apply()
	if err != nil {
		return nil, err
	}
	b, err := other.Apply()
	if err != nil {
		return nil, err
	}
	return idset.Difference(a, b), nil
}
