package buildfile

import "strings"

// decodeCommandForm parses the shared RUN/CMD/ENTRYPOINT/HEALTHCHECK body
// shape: try exec form (a JSON array) first; anything that isn't a full
// match is shell form, taken verbatim (continuations already folded).
func (d *decoder) decodeCommandForm(ctx argCtx) CommandForm {
	if root, perr := subParse(d.g, "ExecForm", ctx.joined); perr == nil {
		var args []string
		var spans []Span
		for _, e := range root.All("Elem") {
			args = append(args, leafText(e))
			spans = append(spans, ctx.span(e.Span.Start, e.Span.End))
		}
		return CommandForm{Exec: true, Args: args, ArgSpans: spans}
	}
	start, end := 0, len(ctx.joined)
	for start < end && isSP(ctx.joined[start]) {
		start++
	}
	for end > start && isSP(ctx.joined[end-1]) {
		end--
	}
	return CommandForm{Shell: ctx.joined[start:end], ShellSpan: ctx.span(start, end)}
}

func (d *decoder) decodeRun(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "RUN requires a command")
	}
	return &RunInstr{instrBase: base, CommandForm: d.decodeCommandForm(ctx)}, nil
}

func (d *decoder) decodeCmd(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "CMD requires a command")
	}
	return &CmdInstr{instrBase: base, CommandForm: d.decodeCommandForm(ctx)}, nil
}

func (d *decoder) decodeEntrypoint(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "ENTRYPOINT requires a command")
	}
	return &EntrypointInstr{instrBase: base, CommandForm: d.decodeCommandForm(ctx)}, nil
}

// decodeShell requires exec form; SHELL has no shell-form meaning to fall
// back to, so anything that doesn't parse as a JSON array of strings is
// reported as an invalid exec form (or, where the text narrows to a specific
// quoting mistake, as that mistake).
func (d *decoder) decodeShell(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "SHELL requires exec-form arguments")
	}
	root, perr := subParse(d.g, "ExecForm", ctx.joined)
	if perr != nil {
		return nil, argError(ctx, "ExecForm", perr, true, InvalidExecForm, "SHELL requires exec form, shell form is not permitted")
	}
	var args []string
	var spans []Span
	for _, e := range root.All("Elem") {
		args = append(args, leafText(e))
		spans = append(spans, ctx.span(e.Span.Start, e.Span.End))
	}
	return &ShellInstr{instrBase: base, Args: args, ArgSpans: spans}, nil
}

// decodeVolume accepts either exec-form JSON array or bare whitespace-
// separated path tokens.
func (d *decoder) decodeVolume(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "VOLUME requires at least one path")
	}
	if root, perr := subParse(d.g, "ExecForm", ctx.joined); perr == nil {
		var paths []string
		var spans []Span
		for _, e := range root.All("Elem") {
			paths = append(paths, leafText(e))
			spans = append(spans, ctx.span(e.Span.Start, e.Span.End))
		}
		return &VolumeInstr{instrBase: base, Paths: paths, PathSpans: spans}, nil
	}
	root, perr := subParse(d.g, "Tokens", ctx.joined)
	if perr != nil {
		return nil, argError(ctx, "Tokens", perr, false, SyntaxError, "malformed VOLUME arguments")
	}
	var paths []string
	var spans []Span
	for _, e := range root.All("Elem") {
		paths = append(paths, leafText(e))
		spans = append(spans, ctx.span(e.Span.Start, e.Span.End))
	}
	return &VolumeInstr{instrBase: base, Paths: paths, PathSpans: spans}, nil
}

// decodeExpose parses one or more PORT[/PROTO] tokens.
func (d *decoder) decodeExpose(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "EXPOSE requires at least one port")
	}
	root, perr := subParse(d.g, "Tokens", ctx.joined)
	if perr != nil {
		return nil, argError(ctx, "Tokens", perr, false, SyntaxError, "malformed EXPOSE arguments")
	}
	var ports []string
	var spans []Span
	for _, e := range root.All("Elem") {
		ports = append(ports, leafText(e))
		spans = append(spans, ctx.span(e.Span.Start, e.Span.End))
	}
	return &ExposeInstr{instrBase: base, Ports: ports, PortSpans: spans}, nil
}

// decodeUser parses `user[:group]`.
func (d *decoder) decodeUser(base instrBase, ctx argCtx) (Instruction, error) {
	trimmed := strings.TrimSpace(ctx.joined)
	if trimmed == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "USER requires a user argument")
	}
	start := strings.Index(ctx.joined, trimmed)
	if colon := strings.IndexByte(trimmed, ':'); colon >= 0 {
		return &UserInstr{
			instrBase: base,
			User:      trimmed[:colon],
			UserSpan:  ctx.span(start, start+colon),
			Group:     trimmed[colon+1:],
			GroupSpan: ctx.span(start+colon+1, start+len(trimmed)),
		}, nil
	}
	return &UserInstr{instrBase: base, User: trimmed, UserSpan: ctx.span(start, start+len(trimmed))}, nil
}

// singleArg handles the WORKDIR/STOPSIGNAL shape: one raw argument, unquoted
// if it is entirely wrapped in a single matching quote pair.
func (d *decoder) singleArg(base instrBase, ctx argCtx, kind string) (string, Span, error) {
	trimmed := strings.TrimSpace(ctx.joined)
	if trimmed == "" {
		return "", Span{}, errf(MissingArgument, base.Sp, "Instr", "%s requires an argument", kind)
	}
	start := strings.Index(ctx.joined, trimmed)
	end := start + len(trimmed)
	value := trimmed
	switch {
	case len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"':
		value = unquoteDouble(trimmed)
	case len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'':
		value = unquoteSingle(trimmed)
	}
	return value, ctx.span(start, end), nil
}

func (d *decoder) decodeWorkdir(base instrBase, ctx argCtx) (Instruction, error) {
	path, span, err := d.singleArg(base, ctx, "WORKDIR")
	if err != nil {
		return nil, err
	}
	return &WorkdirInstr{instrBase: base, Path: path, PathSpan: span}, nil
}

func (d *decoder) decodeStopsignal(base instrBase, ctx argCtx) (Instruction, error) {
	sig, span, err := d.singleArg(base, ctx, "STOPSIGNAL")
	if err != nil {
		return nil, err
	}
	return &StopsignalInstr{instrBase: base, Signal: sig, SignalSpan: span}, nil
}
