package buildfile

import (
	"fmt"
	"strings"

	"github.com/docker-lint/buildfile/internal/grammar"
)

func pairsFromKVList(root *grammar.Node, ctx argCtx) []KV {
	var pairs []KV
	for _, p := range root.All("Pair") {
		kv := p.Child("KVPair")
		keyNode := kv.Child("Key")
		valNode := kv.Child("Value")
		pairs = append(pairs, KV{
			Key:       leafText(keyNode),
			KeySpan:   ctx.span(keyNode.Span.Start, keyNode.Span.End),
			Value:     leafText(valNode),
			ValueSpan: ctx.span(valNode.Span.Start, valNode.Span.End),
		})
	}
	return pairs
}

// decodeEnvLabel handles both ENV and LABEL, which share a syntax: either the
// legacy single-pair form `KEY VALUE` or the multi-pair `KEY1=VAL1 KEY2=VAL2
// ...` form. The mode is decided up front, the same way the Dockerfile
// frontend decides it: if the first whitespace-separated token contains '=',
// the whole instruction is multi-pair and a KVList parse failure (a bare
// equals, an unterminated quote, ...) is a real error rather than a reason
// to fall back to single-pair parsing.
func (d *decoder) decodeEnvLabel(base instrBase, ctx argCtx, isLabel bool) (Instruction, error) {
	kind := "ENV"
	if isLabel {
		kind = "LABEL"
	}
	trimmed := strings.TrimSpace(ctx.joined)
	if trimmed == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "%s requires at least one key", kind)
	}

	firstToken := trimmed
	if sp := strings.IndexAny(trimmed, " \t"); sp >= 0 {
		firstToken = trimmed[:sp]
	}

	if strings.ContainsRune(firstToken, '=') {
		root, perr := subParse(d.g, "KVList", ctx.joined)
		if perr != nil {
			return nil, argError(ctx, "KVList", perr, false, SyntaxError, fmt.Sprintf("malformed %s key=value list", kind))
		}
		pairs := pairsFromKVList(root, ctx)
		if isLabel {
			return &LabelInstr{instrBase: base, Multi: true, Pairs: pairs}, nil
		}
		return &EnvInstr{instrBase: base, Multi: true, Pairs: pairs}, nil
	}

	i := 0
	for i < len(ctx.joined) && isSP(ctx.joined[i]) {
		i++
	}
	start := i
	for i < len(ctx.joined) && !isSP(ctx.joined[i]) {
		i++
	}
	if i == start {
		return nil, errf(MissingArgument, base.Sp, "Instr", "%s requires a key", kind)
	}
	key := ctx.joined[start:i]
	keySpan := ctx.span(start, i)

	j := i
	for j < len(ctx.joined) && isSP(ctx.joined[j]) {
		j++
	}
	if j >= len(ctx.joined) {
		return nil, errf(MissingArgument, base.Sp, "Instr", "%s %s requires a value", kind, key)
	}
	end := len(ctx.joined)
	for end > j && isSP(ctx.joined[end-1]) {
		end--
	}
	raw := ctx.joined[j:end]
	if kind, qStart, qEnd, ok := diagnoseQuoting(raw, false); ok {
		return nil, errf(kind, ctx.span(j+qStart, j+qEnd), "Instr", "%s", quoteErrorMessage(kind, raw[qStart:qEnd]))
	}
	value := raw
	switch {
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		value = unquoteDouble(raw)
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		value = unquoteSingle(raw)
	}
	valueSpan := ctx.span(j, end)

	pair := KV{Key: key, KeySpan: keySpan, Value: value, ValueSpan: valueSpan}
	if isLabel {
		return &LabelInstr{instrBase: base, Multi: false, Pairs: []KV{pair}}, nil
	}
	return &EnvInstr{instrBase: base, Multi: false, Pairs: []KV{pair}}, nil
}

func isSP(b byte) bool { return b == ' ' || b == '\t' }

// decodeArg parses `ARG NAME[=VALUE]`.
func (d *decoder) decodeArg(base instrBase, ctx argCtx) (Instruction, error) {
	trimmed := strings.TrimSpace(ctx.joined)
	if trimmed == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "ARG requires a name")
	}

	eq := strings.IndexByte(ctx.joined, '=')
	nameEnd := len(ctx.joined)
	nameStart := strings.IndexFunc(ctx.joined, func(r rune) bool { return r != ' ' && r != '\t' })
	if nameStart < 0 {
		nameStart = 0
	}
	if eq >= 0 {
		nameEnd = eq
	} else {
		for nameEnd > nameStart && isSP(ctx.joined[nameEnd-1]) {
			nameEnd--
		}
	}
	nameRaw := strings.TrimRight(ctx.joined[nameStart:nameEnd], " \t")
	name := nameRaw
	nameSpan := ctx.span(nameStart, nameStart+len(nameRaw))

	if eq < 0 {
		return &ArgInstr{instrBase: base, Name: name, NameSpan: nameSpan, HasValue: false}, nil
	}

	valStart := eq + 1
	valEnd := len(ctx.joined)
	raw := ctx.joined[valStart:valEnd]
	if kind, qStart, qEnd, ok := diagnoseQuoting(raw, false); ok {
		return nil, errf(kind, ctx.span(valStart+qStart, valStart+qEnd), "Instr", "%s", quoteErrorMessage(kind, raw[qStart:qEnd]))
	}
	value := raw
	switch {
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		value = unquoteDouble(raw)
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		value = unquoteSingle(raw)
	}
	return &ArgInstr{
		instrBase: base,
		Name:      name,
		NameSpan:  nameSpan,
		HasValue:  true,
		Value:     value,
		ValueSpan: ctx.span(valStart, valEnd),
	}, nil
}
