package buildfile

import "strings"

// decodeHealthcheck parses `HEALTHCHECK NONE` (no further tokens permitted —
// NONE disables any inherited healthcheck and takes no options) or
// `HEALTHCHECK [--flag=value ...] CMD <command>`.
func (d *decoder) decodeHealthcheck(base instrBase, ctx argCtx) (Instruction, error) {
	trimmed := strings.TrimSpace(ctx.joined)
	if trimmed == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "HEALTHCHECK requires NONE or options plus a command")
	}

	fields := strings.Fields(trimmed)
	if strings.EqualFold(fields[0], "NONE") {
		if len(fields) > 1 {
			return nil, errf(SyntaxError, base.Sp, "Instr", "HEALTHCHECK NONE takes no further arguments")
		}
		return &HealthcheckInstr{instrBase: base, None: true}, nil
	}

	root, perr := subParse(d.g, "HealthcheckArgs", ctx.joined)
	if perr != nil {
		return nil, argError(ctx, "HealthcheckArgs", perr, false, SyntaxError, "malformed HEALTHCHECK arguments")
	}

	var options []Flag
	for _, f := range root.Child("Flags").All("Flag") {
		nameNode := f.Child("Name")
		valNode := f.Child("Value")
		options = append(options, Flag{
			Name:      nameNode.Text,
			NameSpan:  ctx.span(nameNode.Span.Start, nameNode.Span.End),
			Value:     valNode.Text,
			ValueSpan: ctx.span(valNode.Span.Start, valNode.Span.End),
			Span:      ctx.span(f.Span.Start, f.Span.End),
		})
	}

	bodyNode := root.Child("Body")
	if bodyNode == nil {
		return nil, errf(MissingArgument, base.Sp, "Instr", "HEALTHCHECK requires CMD and a command body")
	}
	bodyCtx := ctx.sub(bodyNode.Span.Start, bodyNode.Text)
	return &HealthcheckInstr{instrBase: base, Options: options, Command: d.decodeCommandForm(bodyCtx)}, nil
}
