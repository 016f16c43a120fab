// Package buildfile parses, inspects, and rewrites container build files
// written in the Dockerfile instruction language: it turns source bytes into
// a typed instruction tree with source spans, and turns edits phrased as
// (span, replacement text) back into a new source string with translated
// spans for anything that moved. The package neither executes nor validates
// build files beyond what the grammar requires.
package buildfile

import "github.com/docker-lint/buildfile/internal/grammar"

// Span is a half-open byte range [Start, End) into the original source.
// Spans are immutable: for any parent node, every child span lies within it
// and children appear in non-decreasing start order.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool { return s.Start <= o.Start && o.End <= s.End }

// Overlaps reports whether s and o share any byte.
func (s Span) Overlaps(o Span) bool { return s.Start < o.End && o.Start < s.End }

func fromGrammarSpan(s grammar.Span) Span { return Span{Start: s.Start, End: s.End} }

// shift translates a span by an offset into its enclosing ArgText span.
func (s Span) shift(base int) Span { return Span{Start: s.Start + base, End: s.End + base} }
