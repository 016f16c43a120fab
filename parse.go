package buildfile

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/docker-lint/buildfile/internal/grammar"
)

// directiveLineRe matches a parser-directive-shaped comment line, `# key=value`,
// the same shape BuildKit recognizes for `syntax=` and `escape=` alike.
var directiveLineRe = regexp.MustCompile(`(?i)^#\s*([a-z][a-z0-9_]*)\s*=\s*(.*?)\s*$`)

// escapeValueRe matches the only two legal values of an escape= directive.
var escapeValueRe = regexp.MustCompile("^(\\\\|`)$")

func stripBOM(src []byte) []byte {
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		return src[3:]
	}
	return src
}

// detectEscape scans the contiguous run of directive-shaped comment lines
// (`# key=value`) at the very top of the file — the same zone BuildKit scans
// for `# syntax=` and `# escape=` before any blank line, ordinary comment, or
// instruction appears. The run ends at the first line that isn't
// directive-shaped, so a blank line or a plain comment before `# escape=`
// takes it out of the directive zone and leaves it as an ordinary comment.
// An `escape=` directive found anywhere in that run sets the escape
// character; absent one, '\\' is used.
func detectEscape(src []byte) byte {
	rest := src
	for len(rest) > 0 {
		line := rest
		if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
			line = rest[:nl]
			rest = rest[nl+1:]
		} else {
			rest = nil
		}
		line = bytes.TrimRight(line, "\r")

		m := directiveLineRe.FindSubmatch(line)
		if m == nil {
			break
		}
		if strings.EqualFold(string(m[1]), "escape") {
			val := m[2]
			if escapeValueRe.Match(val) {
				return val[0]
			}
			break
		}
	}
	return '\\'
}

// Parse parses build-file source into a BuildFile. It never mutates source;
// the returned BuildFile borrows it for the lifetime of its Source, Position
// and Span-bearing fields.
func Parse(source []byte) (*BuildFile, error) {
	src := stripBOM(source)
	escape := detectEscape(src)
	g := grammar.Dockerfile(rune(escape))

	root, perr := grammar.Parse(g, "File", string(src))
	if perr != nil {
		return nil, errf(SyntaxError, Span{Start: perr.Pos, End: perr.Pos}, "File", "%v", perr)
	}

	d := &decoder{g: g}
	var instructions []Instruction
	var comments []Comment
	sawFrom := false

	for _, line := range root.All("Line") {
		if c := line.Child("Comment"); c != nil {
			comments = append(comments, Comment{
				Span: Span{Start: c.Span.Start, End: c.Span.End},
				Text: c.Text,
			})
			continue
		}

		instr := line.Child("Instr")
		if instr == nil {
			continue // blank line
		}

		kwNode := instr.Child("Keyword")
		argNode := instr.Child("ArgText")
		kwText := kwNode.Text
		kwSpan := Span{Start: kwNode.Span.Start, End: kwNode.Span.End}
		instrSpan := Span{Start: instr.Span.Start, End: instr.Span.End}

		raw := ""
		rawBase := instrSpan.End
		if argNode != nil {
			raw = argNode.Text
			rawBase = argNode.Span.Start
		}
		// A continuation escape ending the file has no line to continue.
		if argNode != nil && argNode.Span.End == len(src) {
			tail := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
			if strings.HasSuffix(tail, string(escape)) {
				escAt := rawBase + len(tail) - 1
				return nil, errf(SyntaxError, Span{Start: escAt, End: len(src)}, "File", "line continuation at end of file has no following line")
			}
		}
		joined, offsets := joinLogical(raw, escape)
		ctx := argCtx{joined: joined, offsets: offsets, base: rawBase}

		parsed, err := d.parseInstruction(instrSpan, kwSpan, kwText, ctx)
		if err != nil {
			return nil, err
		}

		switch parsed.(type) {
		case *FromInstr:
			sawFrom = true
		case *ArgInstr:
			// ARG is the only instruction permitted before the first FROM.
		default:
			if !sawFrom {
				return nil, errf(SyntaxError, instrSpan, "Instr", "%s is not permitted before the first FROM instruction", strings.ToUpper(kwText))
			}
		}

		instructions = append(instructions, parsed)
	}

	globals, stages := partition(instructions)

	return &BuildFile{
		source:       src,
		sourceMap:    newSourceMap(src),
		Instructions: instructions,
		GlobalArgs:   globals,
		Stages:       stages,
		Comments:     comments,
	}, nil
}
