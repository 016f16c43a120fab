package buildfile

import (
	"fmt"
	"strings"

	"github.com/docker-lint/buildfile/internal/grammar"
)

// decoder converts grammar parse-tree fragments into typed Instruction
// values. One decoder is built per Parse call; it shares the single grammar
// table (and therefore the argument-shape rules: ExecForm, KVList, Flags,
// Tokens, ...) across every instruction in the file.
type decoder struct {
	g grammar.Grammar
}

func stripQuotes(raw string) string {
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// unquoteEscapes processes the backslash escapes shared by double-quoted
// values and JSON exec-form strings: \" \\ \n \r \t, plus \' and \<space>
// for double-quoted key/value text specifically. An escape outside this set
// is left as a literal backslash followed by the character — callers that
// need to reject that case (InvalidEscape) check for it before calling this.
func unquoteEscapes(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i += 2
				continue
			case 'r':
				b.WriteByte('\r')
				i += 2
				continue
			case 't':
				b.WriteByte('\t')
				i += 2
				continue
			case '"', '\\', '\'', ' ':
				b.WriteByte(s[i+1])
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func unquoteDouble(raw string) string { return unquoteEscapes(stripQuotes(raw)) }
func unquoteSingle(raw string) string { return stripQuotes(raw) }

// leafText descends through the wrapper nodes the grammar produces (Elem ->
// Token -> DQString, Value -> BareValue, ...) to the first meaningfully
// typed leaf, decoding quoted forms along the way.
func leafText(n *grammar.Node) string {
	cur := n
	for {
		switch cur.Rule {
		case "DQString":
			return unquoteDouble(cur.Text)
		case "SQString":
			return unquoteSingle(cur.Text)
		case "JString":
			return unquoteDouble(cur.Text)
		}
		if len(cur.Children) == 0 {
			return cur.Text
		}
		cur = cur.Children[0]
	}
}

func subParse(g grammar.Grammar, rule, src string) (*grammar.Node, *grammar.ParseError) {
	return grammar.Parse(g, rule, src)
}

// diagnoseQuoting scans already-joined instruction-argument text for the
// first quoting problem: a quoted string with no closing delimiter, or (only
// inside a double-quoted string) a backslash escape outside the allowed set.
// execForm selects the stricter escape set a JSON exec-form string element
// accepts (`\"` `\\` `\n` `\r` `\t`) over the more permissive set double-
// quoted key/value text accepts (those five plus `\'` and `\<space>`).
// Single-quoted strings never process escapes, matching the grammar's
// SQString rule, so a backslash inside one is just a literal byte.
func diagnoseQuoting(s string, execForm bool) (kind ErrorKind, start, end int, found bool) {
	allowed := func(b byte) bool {
		switch b {
		case '"', '\\', 'n', 'r', 't':
			return true
		case '\'', ' ':
			return !execForm
		}
		return false
	}
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '"' && c != '\'' {
			i++
			continue
		}
		qStart := i
		j := i + 1
		closed := false
		for j < len(s) {
			if c == '"' && s[j] == '\\' && j+1 < len(s) {
				if allowed(s[j+1]) {
					j += 2
					continue
				}
				return InvalidEscape, j, j + 2, true
			}
			if s[j] == c {
				closed = true
				j++
				break
			}
			j++
		}
		if !closed {
			return UnterminatedQuote, qStart, len(s), true
		}
		i = j
	}
	return 0, 0, 0, false
}

func quoteErrorMessage(kind ErrorKind, text string) string {
	if kind == UnterminatedQuote {
		return "quoted string is missing its closing quote"
	}
	return fmt.Sprintf("invalid escape sequence %q", text)
}

// argError turns a failed grammar sub-parse of already-joined instruction
// argument text into the most specific ErrorKind the raw text supports: an
// unterminated quote or a disallowed escape takes priority over fallback,
// the kind the caller would otherwise report for its farthest-position
// grammar failure.
func argError(ctx argCtx, rule string, perr *grammar.ParseError, execForm bool, fallback ErrorKind, msg string) *Error {
	if kind, start, end, ok := diagnoseQuoting(ctx.joined, execForm); ok {
		return errf(kind, ctx.span(start, end), rule, "%s", quoteErrorMessage(kind, ctx.joined[start:end]))
	}
	return errf(fallback, ctx.span(perr.Pos, perr.Pos), rule, "%s: %v", msg, perr)
}

// parseInstruction dispatches a single "Instr" grammar node — keyword plus
// already-joined argument context — to the decoder for its keyword,
// returning the catch-all MiscInstr for anything outside the closed
// keyword set (a deprecated instruction like MAINTAINER, or an unknown
// keyword entirely) so callers never have to special-case a rejected file.
func (d *decoder) parseInstruction(instrSpan, kwSpan Span, kwText string, ctx argCtx) (Instruction, error) {
	base := instrBase{Sp: instrSpan, KwSp: kwSpan, KwText: kwText}
	canon := strings.ToUpper(kwText)

	switch canon {
	case "FROM":
		return d.decodeFrom(base, ctx)
	case "ARG":
		return d.decodeArg(base, ctx)
	case "ENV":
		return d.decodeEnvLabel(base, ctx, false)
	case "LABEL":
		return d.decodeEnvLabel(base, ctx, true)
	case "RUN":
		return d.decodeRun(base, ctx)
	case "CMD":
		return d.decodeCmd(base, ctx)
	case "ENTRYPOINT":
		return d.decodeEntrypoint(base, ctx)
	case "SHELL":
		return d.decodeShell(base, ctx)
	case "COPY":
		return d.decodeCopy(base, ctx)
	case "ADD":
		return d.decodeAdd(base, ctx)
	case "EXPOSE":
		return d.decodeExpose(base, ctx)
	case "USER":
		return d.decodeUser(base, ctx)
	case "WORKDIR":
		return d.decodeWorkdir(base, ctx)
	case "VOLUME":
		return d.decodeVolume(base, ctx)
	case "STOPSIGNAL":
		return d.decodeStopsignal(base, ctx)
	case "HEALTHCHECK":
		return d.decodeHealthcheck(base, ctx)
	case "ONBUILD":
		return d.decodeOnbuild(base, ctx)
	default:
		return &MiscInstr{instrBase: base, Args: ctx.joined, ArgsSpan: ctx.span(0, len(ctx.joined))}, nil
	}
}
