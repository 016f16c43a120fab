package buildfile

import "strings"

// decodeOnbuild parses `ONBUILD <INSTRUCTION> <args...>`, recursively
// dispatching the wrapped instruction through parseInstruction. FROM, SHELL,
// and a nested ONBUILD are rejected as wrapped instructions, matching the
// build-time restriction they exist to enforce.
func (d *decoder) decodeOnbuild(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "ONBUILD requires a wrapped instruction")
	}

	root, perr := subParse(d.g, "OnbuildArgs", ctx.joined)
	if perr != nil {
		return nil, argError(ctx, "OnbuildArgs", perr, false, SyntaxError, "malformed ONBUILD arguments")
	}

	kwNode := root.Child("Keyword")
	bodyNode := root.Child("Body")
	kwText := kwNode.Text
	kwSpan := ctx.span(kwNode.Span.Start, kwNode.Span.End)

	switch strings.ToUpper(kwText) {
	case "FROM", "SHELL", "ONBUILD":
		return nil, errf(SyntaxError, kwSpan, "Instr", "ONBUILD does not permit %s as its wrapped instruction", strings.ToUpper(kwText))
	}

	bodyText := ""
	if bodyNode != nil {
		bodyText = bodyNode.Text
	}
	innerCtx := ctx.sub(bodyNode.Span.Start, bodyText)
	innerSpan := ctx.span(kwNode.Span.Start, bodyNode.Span.End)

	inner, err := d.parseInstruction(innerSpan, kwSpan, kwText, innerCtx)
	if err != nil {
		return nil, err
	}
	return &OnbuildInstr{instrBase: base, Inner: inner}, nil
}
