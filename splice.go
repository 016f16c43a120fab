package buildfile

import (
	"sort"
	"strings"
)

// Edit is one (span, replacement) request against a source string.
type Edit struct {
	Span        Span
	Replacement string
}

// Outcome describes how a span queried through a Translator relates to the
// edits that produced it.
type Outcome int

const (
	// Unchanged means the span is untouched by any edit and did not move.
	Unchanged Outcome = iota
	// Shifted means the span survives but its coordinates changed: edits
	// before it moved it, or edits nested inside it changed its length.
	Shifted
	// Invalidated means the span can no longer be represented in the
	// spliced source: it lies inside an edit's replaced range, or it
	// partially overlaps an edit without either containing it or being
	// contained by it.
	Invalidated
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "Unchanged"
	case Shifted:
		return "Shifted"
	case Invalidated:
		return "Invalidated"
	default:
		return "UnknownOutcome"
	}
}

// Translator maps spans from the source a Splice call read into the source
// it produced.
type Translator struct {
	edits []Edit // sorted by Span.Start, pairwise disjoint
}

// Translate maps sp, a span into Splice's original source, into the spliced
// source's coordinates. An edit entirely before sp shifts sp wholesale; an
// edit entirely after sp has no effect; an edit nested inside sp shifts only
// sp's end (sp's content changed internally but the span itself survives);
// an edit that contains sp, or one that partially overlaps sp without either
// containing the other, invalidates sp.
func (t *Translator) Translate(sp Span) (Span, Outcome) {
	deltaBefore := 0
	deltaWithin := 0
	shifted := false

	for _, e := range t.edits {
		d := len(e.Replacement) - e.Span.Len()
		switch {
		case e.Span.End <= sp.Start:
			deltaBefore += d
			if d != 0 {
				shifted = true
			}
		case sp.End <= e.Span.Start:
			// edit lies entirely after sp: no effect.
		case e.Span.Contains(sp):
			return Span{}, Invalidated
		case sp.Contains(e.Span):
			deltaWithin += d
			shifted = true
		default:
			return Span{}, Invalidated
		}
	}

	out := Span{Start: sp.Start + deltaBefore, End: sp.End + deltaBefore + deltaWithin}
	if shifted {
		return out, Shifted
	}
	return out, Unchanged
}

// Splice applies a batch of edits to source in one pass, returning the new
// source and a Translator for mapping old spans into it. Edits must be
// pairwise disjoint: two edits may not share a byte, even if one would nest
// inside the other, since applying both at once leaves no well-defined
// answer for what happens to their shared range.
func Splice(source string, edits []Edit) (string, *Translator, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End < e.Span.Start || e.Span.End > len(source) {
			return "", nil, errf(EditOutOfBounds, e.Span, "", "edit span %d-%d is out of bounds for a %d-byte source", e.Span.Start, e.Span.End, len(source))
		}
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Span.Overlaps(sorted[i].Span) {
			return "", nil, errf(OverlappingEdits, sorted[i].Span, "", "edit %d-%d overlaps edit %d-%d", sorted[i].Span.Start, sorted[i].Span.End, sorted[i-1].Span.Start, sorted[i-1].Span.End)
		}
	}

	var b strings.Builder
	cursor := 0
	for _, e := range sorted {
		b.WriteString(source[cursor:e.Span.Start])
		b.WriteString(e.Replacement)
		cursor = e.Span.End
	}
	b.WriteString(source[cursor:])

	return b.String(), &Translator{edits: sorted}, nil
}
