package buildfile

import (
	"fmt"
	"strings"
)

// decodeCopyAdd handles the shared COPY/ADD shape: leading `--flag=value`
// options (any flag name is accepted and preserved, not just the well-known
// ones), then one or more source paths and a final destination. A line with
// fewer than two path tokens is missing its destination.
func (d *decoder) decodeCopyAdd(base instrBase, ctx argCtx, kind string) ([]Flag, []PathArg, PathArg, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, nil, PathArg{}, errf(MissingArgument, base.Sp, "Instr", "%s requires source and destination arguments", kind)
	}

	root, perr := subParse(d.g, "FlagsThenTokens", ctx.joined)
	if perr != nil {
		return nil, nil, PathArg{}, argError(ctx, "FlagsThenTokens", perr, false, SyntaxError, fmt.Sprintf("malformed %s arguments", kind))
	}

	var flags []Flag
	for _, f := range root.Child("Flags").All("Flag") {
		nameNode := f.Child("Name")
		valNode := f.Child("Value")
		flags = append(flags, Flag{
			Name:      nameNode.Text,
			NameSpan:  ctx.span(nameNode.Span.Start, nameNode.Span.End),
			Value:     valNode.Text,
			ValueSpan: ctx.span(valNode.Span.Start, valNode.Span.End),
			Span:      ctx.span(f.Span.Start, f.Span.End),
		})
	}

	elems := root.Child("Tokens").All("Elem")
	if len(elems) < 2 {
		return nil, nil, PathArg{}, errf(MissingArgument, base.Sp, "Instr", "%s requires at least one source and a destination", kind)
	}

	sources := make([]PathArg, 0, len(elems)-1)
	for _, e := range elems[:len(elems)-1] {
		sources = append(sources, PathArg{Value: leafText(e), Span: ctx.span(e.Span.Start, e.Span.End)})
	}
	destElem := elems[len(elems)-1]
	dest := PathArg{Value: leafText(destElem), Span: ctx.span(destElem.Span.Start, destElem.Span.End)}

	return flags, sources, dest, nil
}

func (d *decoder) decodeCopy(base instrBase, ctx argCtx) (Instruction, error) {
	flags, sources, dest, err := d.decodeCopyAdd(base, ctx, "COPY")
	if err != nil {
		return nil, err
	}
	return &CopyInstr{instrBase: base, Flags: flags, Sources: sources, Dest: dest}, nil
}

func (d *decoder) decodeAdd(base instrBase, ctx argCtx) (Instruction, error) {
	flags, sources, dest, err := d.decodeCopyAdd(base, ctx, "ADD")
	if err != nil {
		return nil, err
	}
	return &AddInstr{instrBase: base, Flags: flags, Sources: sources, Dest: dest}, nil
}
