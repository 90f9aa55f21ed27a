package shared

import (
	"fmt"
	"strings"
)

// Clause is one filter predicate of a specification: a SQL-ish expression with
// positional placeholders and its arguments. Clauses combine with AND.
type Clause struct {
	Expr string
	Args []any
}

// Specification describes a query declaratively: filter clauses, eager-load
// directives and at most one ordering. It is consumed by two collaborators
// that must agree on its meaning: the evaluator, which turns it into an
// executable query, and the cache-key builder, which only reads StringForm.
//
// Identity for caching is the textual/structural form, so two specifications
// built from the same clauses, includes and ordering produce the same key
// material regardless of where they were constructed.
type Specification struct {
	clauses     []Clause
	includes    []string
	orderBy     string
	orderByDesc string
}

// NewSpecification creates an empty specification ("match everything").
func NewSpecification() *Specification {
	return &Specification{}
}

// Where appends a filter clause.
func (s *Specification) Where(expr string, args ...any) *Specification {
	s.clauses = append(s.clauses, Clause{Expr: expr, Args: args})
	return s
}

// Include adds an eager-load directive for the named association. Directives
// are independent of each other; their order does not change the query.
func (s *Specification) Include(association string) *Specification {
	s.includes = append(s.includes, association)
	return s
}

// OrderBy sets an ascending ordering. A specification holds at most one
// ordering; setting both directions is a caller error and ascending wins.
func (s *Specification) OrderBy(column string) *Specification {
	s.orderBy = column
	return s
}

// OrderByDesc sets a descending ordering.
func (s *Specification) OrderByDesc(column string) *Specification {
	s.orderByDesc = column
	return s
}

// Clauses returns the filter clauses in the order they were added.
func (s *Specification) Clauses() []Clause { return s.clauses }

// Includes returns the eager-load directives.
func (s *Specification) Includes() []string { return s.includes }

// Ordering returns the ordering column and direction. Ascending takes
// precedence when both were set.
func (s *Specification) Ordering() (column string, desc bool) {
	if s.orderBy != "" {
		return s.orderBy, false
	}
	return s.orderByDesc, true
}

// StringForm renders the deterministic key material for this specification:
// the filter's textual form ("all" when unfiltered), the joined include list
// and the two ordering slots. Structurally equal specifications render
// identically.
func (s *Specification) StringForm() string {
	var b strings.Builder

	if len(s.clauses) == 0 {
		b.WriteString("all")
	} else {
		for i, c := range s.clauses {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString(c.Expr)
			if len(c.Args) > 0 {
				fmt.Fprintf(&b, "%v", c.Args)
			}
		}
	}

	b.WriteString(strings.Join(s.includes, "-"))
	b.WriteString(s.orderBy)
	b.WriteString(s.orderByDesc)
	return b.String()
}
