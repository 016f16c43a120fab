// Package grammar implements a small PEG-style grammar interpreter. Grammars
// are expressed as data (a Grammar is a map of rule name to Expr) rather than
// as hand-written recursive-descent Go functions, so the rule table and the
// parser's behavior stay in one-to-one correspondence.
package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Span is a half-open byte range into the source the grammar is applied to.
type Span struct {
	Start int
	End   int
}

// Node is a production of the grammar: either a named rule or an explicitly
// labeled sub-expression. Unnamed structural expressions (Seq, Choice, Star,
// ...) do not produce nodes themselves; they splice their children's nodes
// into whatever enclosing Ref or Label does.
type Node struct {
	Rule     string
	Span     Span
	Text     string
	Children []*Node
}

// Child returns the first direct child with the given rule name, or nil.
func (n *Node) Child(rule string) *Node {
	for _, c := range n.Children {
		if c.Rule == rule {
			return c
		}
	}
	return nil
}

// All returns every direct child with the given rule name, in source order.
func (n *Node) All(rule string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Rule == rule {
			out = append(out, c)
		}
	}
	return out
}

// Grammar is a named rule table. It is the "grammar as data" artifact: a
// Grammar value is built once (per escape-character configuration, see
// Dockerfile in dockerfile.go) and then reused for every Parse call.
type Grammar map[string]Expr

// Expr is a parsing expression. Implementations live in this file; the
// dockerfile-specific rule table is assembled from them in dockerfile.go.
type Expr interface {
	eval(s *state, pos int) (int, []*Node, bool)
}

type state struct {
	src      string
	g        Grammar
	farthest int
	expected map[string]struct{}
}

func (s *state) fail(pos int, label string) {
	if pos > s.farthest {
		s.farthest = pos
		s.expected = map[string]struct{}{label: {}}
		return
	}
	if pos == s.farthest {
		if s.expected == nil {
			s.expected = map[string]struct{}{}
		}
		s.expected[label] = struct{}{}
	}
}

// ParseError reports the deepest position the interpreter reached and the
// set of rule/literal names it was expecting there.
type ParseError struct {
	Pos      int
	Expected []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: expected one of %s", e.Pos, strings.Join(e.Expected, ", "))
}

// Parse matches the named start rule against the whole of src, requiring the
// rule to consume every byte. On failure it returns the deepest-reaching
// ParseError.
func Parse(g Grammar, start string, src string) (*Node, *ParseError) {
	s := &state{src: src, g: g}
	end, nodes, ok := (Ref{Name: start}).eval(s, 0)
	if ok && end == len(src) {
		return nodes[0], nil
	}
	if !ok || s.farthest < len(src) {
		// Either the start rule itself failed, or it matched a strict
		// prefix: in both cases the farthest-reaching failure recorded
		// during the attempt is the most useful diagnostic.
	}
	exp := make([]string, 0, len(s.expected))
	for k := range s.expected {
		exp = append(exp, k)
	}
	sort.Strings(exp)
	pos := s.farthest
	if ok && end != len(src) && pos < end {
		pos = end
		exp = []string{"end of input"}
	}
	return nil, &ParseError{Pos: pos, Expected: exp}
}

// --- Expr implementations -------------------------------------------------

// Lit matches a literal string, optionally case-insensitively (Fold).
type Lit struct {
	S    string
	Fold bool
}

func (e Lit) eval(s *state, pos int) (int, []*Node, bool) {
	n := len(e.S)
	if pos+n > len(s.src) {
		s.fail(pos, "\""+e.S+"\"")
		return pos, nil, false
	}
	chunk := s.src[pos : pos+n]
	if e.Fold {
		if !strings.EqualFold(chunk, e.S) {
			s.fail(pos, "\""+e.S+"\"")
			return pos, nil, false
		}
	} else if chunk != e.S {
		s.fail(pos, "\""+e.S+"\"")
		return pos, nil, false
	}
	return pos + n, nil, true
}

// Class matches a single byte satisfying Pred.
type Class struct {
	Name string
	Pred func(byte) bool
}

func (e Class) eval(s *state, pos int) (int, []*Node, bool) {
	if pos >= len(s.src) || !e.Pred(s.src[pos]) {
		s.fail(pos, e.Name)
		return pos, nil, false
	}
	return pos + 1, nil, true
}

// Seq matches a sequence of expressions, all of which must match in order.
type Seq struct{ Exprs []Expr }

func (e Seq) eval(s *state, pos int) (int, []*Node, bool) {
	cur := pos
	var nodes []*Node
	for _, sub := range e.Exprs {
		np, ns, ok := sub.eval(s, cur)
		if !ok {
			return pos, nil, false
		}
		cur = np
		nodes = append(nodes, ns...)
	}
	return cur, nodes, true
}

// Choice matches the first alternative that succeeds, in order.
type Choice struct{ Exprs []Expr }

func (e Choice) eval(s *state, pos int) (int, []*Node, bool) {
	for _, sub := range e.Exprs {
		if np, ns, ok := sub.eval(s, pos); ok {
			return np, ns, true
		}
	}
	return pos, nil, false
}

// Star matches Expr zero or more times; it always succeeds.
type Star struct{ Expr Expr }

func (e Star) eval(s *state, pos int) (int, []*Node, bool) {
	cur := pos
	var nodes []*Node
	for {
		np, ns, ok := e.Expr.eval(s, cur)
		if !ok {
			break
		}
		nodes = append(nodes, ns...)
		if np == cur {
			cur = np
			break
		}
		cur = np
	}
	return cur, nodes, true
}

// Plus matches Expr one or more times.
type Plus struct{ Expr Expr }

func (e Plus) eval(s *state, pos int) (int, []*Node, bool) {
	np, ns, ok := e.Expr.eval(s, pos)
	if !ok {
		return pos, nil, false
	}
	cur := np
	nodes := append([]*Node{}, ns...)
	for {
		np2, ns2, ok2 := e.Expr.eval(s, cur)
		if !ok2 {
			break
		}
		nodes = append(nodes, ns2...)
		if np2 == cur {
			break
		}
		cur = np2
	}
	return cur, nodes, true
}

// Opt matches Expr zero or one times; it always succeeds.
type Opt struct{ Expr Expr }

func (e Opt) eval(s *state, pos int) (int, []*Node, bool) {
	if np, ns, ok := e.Expr.eval(s, pos); ok {
		return np, ns, true
	}
	return pos, nil, true
}

// And is a positive lookahead: it consumes no input.
type And struct{ Expr Expr }

func (e And) eval(s *state, pos int) (int, []*Node, bool) {
	if _, _, ok := e.Expr.eval(s, pos); ok {
		return pos, nil, true
	}
	return pos, nil, false
}

// Not is a negative lookahead: it consumes no input and succeeds only if
// Expr fails.
type Not struct{ Expr Expr }

func (e Not) eval(s *state, pos int) (int, []*Node, bool) {
	if _, _, ok := e.Expr.eval(s, pos); ok {
		return pos, nil, false
	}
	return pos, nil, true
}

// Ref references a named rule in the grammar table. Evaluating a Ref wraps
// its result in a Node named after the rule, distinguishing the production's
// own span from any inner captured spans (its Children).
type Ref struct{ Name string }

func (e Ref) eval(s *state, pos int) (int, []*Node, bool) {
	sub, ok := s.g[e.Name]
	if !ok {
		panic("grammar: undefined rule " + e.Name)
	}
	np, kids, ok := sub.eval(s, pos)
	if !ok {
		s.fail(pos, e.Name)
		return pos, nil, false
	}
	node := &Node{Rule: e.Name, Span: Span{pos, np}, Text: s.src[pos:np], Children: kids}
	return np, []*Node{node}, true
}

// Label captures a sub-expression's match under an explicit name, without
// requiring a separate grammar table entry. Used for ad-hoc captures inside
// a rule (e.g. naming the key and value halves of a flag) that don't
// warrant their own top-level rule.
type Label struct {
	Name string
	Expr Expr
}

func (e Label) eval(s *state, pos int) (int, []*Node, bool) {
	np, kids, ok := e.Expr.eval(s, pos)
	if !ok {
		return pos, nil, false
	}
	node := &Node{Rule: e.Name, Span: Span{pos, np}, Text: s.src[pos:np], Children: kids}
	return np, []*Node{node}, true
}
