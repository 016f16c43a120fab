package buildfile

import (
	"regexp"
	"strings"
)

var aliasRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// parseImageRef splits an image reference into registry/name/tag/digest the
// same way the Docker CLI's reference parser does: after peeling off an
// optional "@digest" and ":tag" suffix, the first '/'-separated segment is
// the registry only if it looks like a host (contains '.' or ':', or is
// exactly "localhost"); otherwise there is no registry and the whole
// reference is the image name, e.g. "library/ubuntu".
func parseImageRef(raw string) ImageRef {
	ref := ImageRef{Raw: raw}
	rest := raw

	if at := strings.LastIndex(rest, "@"); at >= 0 {
		ref.Digest = rest[at+1:]
		rest = rest[:at]
	}

	slash := strings.LastIndex(rest, "/")
	if colon := strings.LastIndex(rest, ":"); colon > slash {
		ref.Tag = rest[colon+1:]
		rest = rest[:colon]
	}

	seg := rest
	idx := strings.Index(rest, "/")
	if idx >= 0 {
		seg = rest[:idx]
	}
	if strings.Contains(seg, ".") || strings.Contains(seg, ":") || seg == "localhost" {
		if idx >= 0 {
			ref.Registry = rest[:idx]
			ref.Name = rest[idx+1:]
		} else {
			ref.Registry = seg
		}
	} else {
		ref.Name = rest
	}
	return ref
}

// decodeFrom parses `FROM [--platform=<platform>] <image-ref> [AS <alias>]`.
func (d *decoder) decodeFrom(base instrBase, ctx argCtx) (Instruction, error) {
	if strings.TrimSpace(ctx.joined) == "" {
		return nil, errf(MissingArgument, base.Sp, "Instr", "FROM requires an image argument")
	}

	root, perr := subParse(d.g, "FlagsThenTokens", ctx.joined)
	if perr != nil {
		return nil, argError(ctx, "FlagsThenTokens", perr, false, SyntaxError, "malformed FROM arguments")
	}

	instr := &FromInstr{instrBase: base}

	for _, f := range root.Child("Flags").All("Flag") {
		name := f.Child("Name").Text
		if name != "platform" {
			return nil, errf(InvalidFlag, ctx.span(f.Span.Start, f.Span.End), "Flag", "unsupported FROM flag --%s", name)
		}
		instr.Platform = leafText(f.Child("Value"))
		instr.PlatformSpan = ctx.span(f.Span.Start, f.Span.End)
	}

	elems := root.Child("Tokens").All("Elem")
	if len(elems) == 0 {
		return nil, errf(MissingArgument, base.Sp, "Instr", "FROM requires an image argument")
	}

	imageElem := elems[0]
	instr.Image = parseImageRef(leafText(imageElem))
	instr.ImageSpan = ctx.span(imageElem.Span.Start, imageElem.Span.End)

	for i := 1; i < len(elems); i++ {
		if strings.EqualFold(leafText(elems[i]), "AS") && i+1 < len(elems) {
			aliasElem := elems[i+1]
			alias := leafText(aliasElem)
			if !aliasRe.MatchString(alias) {
				return nil, errf(SyntaxError, ctx.span(aliasElem.Span.Start, aliasElem.Span.End), "FlagsThenTokens", "invalid stage alias %q", alias)
			}
			instr.Alias = alias
			instr.AliasSpan = ctx.span(aliasElem.Span.Start, aliasElem.Span.End)
			break
		}
	}

	return instr, nil
}
