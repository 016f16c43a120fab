package buildfile

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *BuildFile {
	t.Helper()
	bf, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q) unexpected error: %v", src, err)
	}
	return bf
}

func TestParseFromVariants(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		registry string
		image    string
		tag      string
		digest   string
		alias    string
	}{
		{name: "bare", src: "FROM alpine", image: "alpine"},
		{name: "tag", src: "FROM alpine:3.18", image: "alpine", tag: "3.18"},
		{name: "digest", src: "FROM alpine@sha256:abc123", image: "alpine", digest: "sha256:abc123"},
		{name: "alias", src: "FROM alpine:3.18 AS builder", image: "alpine", tag: "3.18", alias: "builder"},
		{name: "registry with port, no tag", src: "FROM foo:443/bar", registry: "foo:443", image: "bar"},
		{name: "official library image", src: "FROM library/ubuntu", image: "library/ubuntu"},
		{name: "localhost registry", src: "FROM localhost/myimage", registry: "localhost", image: "myimage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := mustParse(t, tt.src)
			if len(bf.Stages) != 1 {
				t.Fatalf("got %d stages, want 1", len(bf.Stages))
			}
			from := bf.Stages[0].From
			if from.Image.Registry != tt.registry {
				t.Errorf("Registry = %q, want %q", from.Image.Registry, tt.registry)
			}
			if from.Image.Name != tt.image {
				t.Errorf("Name = %q, want %q", from.Image.Name, tt.image)
			}
			if from.Image.Tag != tt.tag {
				t.Errorf("Tag = %q, want %q", from.Image.Tag, tt.tag)
			}
			if from.Image.Digest != tt.digest {
				t.Errorf("Digest = %q, want %q", from.Image.Digest, tt.digest)
			}
			if from.Alias != tt.alias {
				t.Errorf("Alias = %q, want %q", from.Alias, tt.alias)
			}
		})
	}
}

func TestParseFromPlatformFlag(t *testing.T) {
	bf := mustParse(t, "FROM --platform=linux/amd64 alpine AS base")
	from := bf.Stages[0].From
	if from.Platform != "linux/amd64" {
		t.Errorf("Platform = %q, want linux/amd64", from.Platform)
	}
	if from.Alias != "base" {
		t.Errorf("Alias = %q, want base", from.Alias)
	}
}

func TestParseEnvSingleAndMultiPair(t *testing.T) {
	bf := mustParse(t, "FROM alpine\nENV FOO bar baz\nENV A=1 B=2\n")
	instrs := bf.Stages[0].Instructions

	single := instrs[1].(*EnvInstr)
	if single.Multi {
		t.Errorf("expected single-pair ENV")
	}
	if len(single.Pairs) != 1 || single.Pairs[0].Key != "FOO" || single.Pairs[0].Value != "bar baz" {
		t.Errorf("got pairs %+v, want FOO=\"bar baz\"", single.Pairs)
	}

	multi := instrs[2].(*EnvInstr)
	if !multi.Multi {
		t.Errorf("expected multi-pair ENV")
	}
	if len(multi.Pairs) != 2 || multi.Pairs[0].Key != "A" || multi.Pairs[0].Value != "1" || multi.Pairs[1].Key != "B" || multi.Pairs[1].Value != "2" {
		t.Errorf("got pairs %+v, want A=1 B=2", multi.Pairs)
	}
}

func TestParseArgWithAndWithoutDefault(t *testing.T) {
	bf := mustParse(t, "ARG VERSION\nFROM alpine:${VERSION}\nARG BUILD_ID=1\n")
	if len(bf.GlobalArgs) != 1 || bf.GlobalArgs[0].Name != "VERSION" || bf.GlobalArgs[0].HasValue {
		t.Errorf("GlobalArgs = %+v, want one valueless VERSION", bf.GlobalArgs)
	}
	stageArg := bf.Stages[0].Instructions[1].(*ArgInstr)
	if stageArg.Name != "BUILD_ID" || !stageArg.HasValue || stageArg.Value != "1" {
		t.Errorf("got %+v, want BUILD_ID=1", stageArg)
	}
}

func TestParseRunExecAndShellForm(t *testing.T) {
	bf := mustParse(t, `FROM alpine
RUN echo hello
RUN ["/bin/sh", "-c", "echo hi"]
`)
	shell := bf.Stages[0].Instructions[1].(*RunInstr)
	if shell.Exec || shell.Shell != "echo hello" {
		t.Errorf("got %+v, want shell form \"echo hello\"", shell.CommandForm)
	}
	exec := bf.Stages[0].Instructions[2].(*RunInstr)
	if !exec.Exec {
		t.Fatalf("expected exec form")
	}
	want := []string{"/bin/sh", "-c", "echo hi"}
	if len(exec.Args) != len(want) {
		t.Fatalf("got %d args, want %d", len(exec.Args), len(want))
	}
	for i, w := range want {
		if exec.Args[i] != w {
			t.Errorf("Args[%d] = %q, want %q", i, exec.Args[i], w)
		}
	}
}

func TestParseCopyWithFlags(t *testing.T) {
	bf := mustParse(t, "FROM alpine\nCOPY --from=builder --chown=1000:1000 /src/a /src/b /dst/\n")
	copyInstr := bf.Stages[0].Instructions[1].(*CopyInstr)
	if len(copyInstr.Flags) != 2 {
		t.Fatalf("got %d flags, want 2", len(copyInstr.Flags))
	}
	if copyInstr.Flags[0].Name != "from" || copyInstr.Flags[0].Value != "builder" {
		t.Errorf("Flags[0] = %+v, want from=builder", copyInstr.Flags[0])
	}
	if copyInstr.Flags[1].Name != "chown" || copyInstr.Flags[1].Value != "1000:1000" {
		t.Errorf("Flags[1] = %+v, want chown=1000:1000", copyInstr.Flags[1])
	}
	if len(copyInstr.Sources) != 2 || copyInstr.Sources[0].Value != "/src/a" || copyInstr.Sources[1].Value != "/src/b" {
		t.Errorf("Sources = %+v, want [/src/a /src/b]", copyInstr.Sources)
	}
	if copyInstr.Dest.Value != "/dst/" {
		t.Errorf("Dest = %q, want /dst/ (trailing slash preserved)", copyInstr.Dest.Value)
	}
}

func TestParseCopyMissingDestination(t *testing.T) {
	_, err := Parse([]byte("FROM alpine\nCOPY /src/a\n"))
	if err == nil {
		t.Fatalf("expected error for COPY with a single path token")
	}
	if !isErrorKind(err, MissingArgument) {
		t.Errorf("got error %v, want MissingArgument", err)
	}
}

func TestParseExposeUserWorkdirVolumeStopsignal(t *testing.T) {
	bf := mustParse(t, strings.Join([]string{
		"FROM alpine",
		"EXPOSE 80 443/tcp",
		"USER app:staff",
		"WORKDIR /app",
		"VOLUME [\"/data\"]",
		"STOPSIGNAL SIGTERM",
	}, "\n") + "\n")
	instrs := bf.Stages[0].Instructions

	expose := instrs[1].(*ExposeInstr)
	if len(expose.Ports) != 2 || expose.Ports[0] != "80" || expose.Ports[1] != "443/tcp" {
		t.Errorf("Ports = %v, want [80 443/tcp]", expose.Ports)
	}

	user := instrs[2].(*UserInstr)
	if user.User != "app" || user.Group != "staff" {
		t.Errorf("got %+v, want app:staff", user)
	}

	workdir := instrs[3].(*WorkdirInstr)
	if workdir.Path != "/app" {
		t.Errorf("Path = %q, want /app", workdir.Path)
	}

	volume := instrs[4].(*VolumeInstr)
	if len(volume.Paths) != 1 || volume.Paths[0] != "/data" {
		t.Errorf("Paths = %v, want [/data]", volume.Paths)
	}

	stop := instrs[5].(*StopsignalInstr)
	if stop.Signal != "SIGTERM" {
		t.Errorf("Signal = %q, want SIGTERM", stop.Signal)
	}
}

func TestParseHealthcheckNoneAndCommand(t *testing.T) {
	bf := mustParse(t, "FROM alpine\nHEALTHCHECK NONE\n")
	hc := bf.Stages[0].Instructions[1].(*HealthcheckInstr)
	if !hc.None {
		t.Errorf("expected None")
	}

	bf = mustParse(t, "FROM alpine\nHEALTHCHECK --interval=5s --retries=3 CMD curl -f http://localhost/ || exit 1\n")
	hc = bf.Stages[0].Instructions[1].(*HealthcheckInstr)
	if hc.None {
		t.Errorf("did not expect None")
	}
	if len(hc.Options) != 2 || hc.Options[0].Name != "interval" || hc.Options[1].Name != "retries" {
		t.Errorf("Options = %+v, want interval, retries", hc.Options)
	}
	if hc.Command.Exec || !strings.Contains(hc.Command.Shell, "curl") {
		t.Errorf("Command = %+v, want shell form containing curl", hc.Command)
	}
}

func TestParseHealthcheckNoneRejectsTrailingTokens(t *testing.T) {
	_, err := Parse([]byte("FROM alpine\nHEALTHCHECK NONE CMD true\n"))
	if err == nil || !isErrorKind(err, SyntaxError) {
		t.Fatalf("got %v, want SyntaxError for HEALTHCHECK NONE with trailing tokens", err)
	}
}

func TestParseShellRequiresExecForm(t *testing.T) {
	bf := mustParse(t, `FROM alpine
SHELL ["/bin/bash", "-c"]
`)
	sh := bf.Stages[0].Instructions[1].(*ShellInstr)
	if len(sh.Args) != 2 || sh.Args[0] != "/bin/bash" || sh.Args[1] != "-c" {
		t.Errorf("Args = %v, want [/bin/bash -c]", sh.Args)
	}

	_, err := Parse([]byte("FROM alpine\nSHELL /bin/bash -c\n"))
	if err == nil || !isErrorKind(err, InvalidExecForm) {
		t.Fatalf("got %v, want InvalidExecForm for shell-form SHELL", err)
	}
}

func TestParseCopyUnterminatedQuote(t *testing.T) {
	_, err := Parse([]byte("FROM alpine\nCOPY \"/src/a /dst\n"))
	if err == nil || !isErrorKind(err, UnterminatedQuote) {
		t.Fatalf("got %v, want UnterminatedQuote for an unclosed double quote", err)
	}
}

func TestParseFromUnterminatedSingleQuote(t *testing.T) {
	_, err := Parse([]byte("FROM 'alpine AS build\n"))
	if err == nil || !isErrorKind(err, UnterminatedQuote) {
		t.Fatalf("got %v, want UnterminatedQuote for an unclosed single quote", err)
	}
}

func TestParseEnvInvalidEscape(t *testing.T) {
	_, err := Parse([]byte("FROM alpine\nENV FOO=\"bar\\xbaz\"\n"))
	if err == nil || !isErrorKind(err, InvalidEscape) {
		t.Fatalf("got %v, want InvalidEscape for a disallowed backslash escape", err)
	}
}

func TestParseArgInvalidEscape(t *testing.T) {
	_, err := Parse([]byte("FROM alpine\nARG FOO=\"bar\\xbaz\"\n"))
	if err == nil || !isErrorKind(err, InvalidEscape) {
		t.Fatalf("got %v, want InvalidEscape for a disallowed backslash escape", err)
	}
}

func TestParseShellInvalidExecFormEscape(t *testing.T) {
	_, err := Parse([]byte(`FROM alpine
SHELL ["/bin/bash", "-c\x41"]
`))
	if err == nil || !isErrorKind(err, InvalidEscape) {
		t.Fatalf("got %v, want InvalidEscape for an exec-form string using an escape outside the JSON set", err)
	}
}

func TestParseOnbuild(t *testing.T) {
	bf := mustParse(t, "FROM alpine\nONBUILD COPY . /app\n")
	ob := bf.Stages[0].Instructions[1].(*OnbuildInstr)
	inner, ok := ob.Inner.(*CopyInstr)
	if !ok {
		t.Fatalf("Inner = %T, want *CopyInstr", ob.Inner)
	}
	if inner.Dest.Value != "/app" {
		t.Errorf("Inner.Dest = %q, want /app", inner.Dest.Value)
	}
}

func TestParseOnbuildRejectsFromAndShell(t *testing.T) {
	for _, src := range []string{
		"FROM alpine\nONBUILD FROM ubuntu\n",
		"FROM alpine\nONBUILD SHELL [\"/bin/sh\"]\n",
		"FROM alpine\nONBUILD ONBUILD RUN true\n",
	} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q): expected error, got none", src)
		}
	}
}

func TestParseMiscAndMaintainer(t *testing.T) {
	bf := mustParse(t, "FROM alpine\nMAINTAINER Jane Doe <jane@example.com>\n")
	misc := bf.Stages[0].Instructions[1].(*MiscInstr)
	if misc.KeywordText() != "MAINTAINER" {
		t.Errorf("KeywordText() = %q, want MAINTAINER", misc.KeywordText())
	}
	if misc.Args != "Jane Doe <jane@example.com>" {
		t.Errorf("Args = %q", misc.Args)
	}
}

func TestParseKeywordCaseInsensitive(t *testing.T) {
	bf := mustParse(t, "from alpine\nRun echo hi\n")
	if bf.Stages[0].From.Kind() != KindFrom {
		t.Errorf("Kind() = %v, want FROM regardless of source casing", bf.Stages[0].From.Kind())
	}
	if bf.Stages[0].From.KeywordText() != "from" {
		t.Errorf("KeywordText() = %q, want the lowercase source spelling preserved", bf.Stages[0].From.KeywordText())
	}
}

func TestParseRejectsNonArgBeforeFirstFrom(t *testing.T) {
	_, err := Parse([]byte("RUN echo hi\nFROM alpine\n"))
	if err == nil || !isErrorKind(err, SyntaxError) {
		t.Fatalf("got %v, want SyntaxError", err)
	}
}

func TestParseLineContinuation(t *testing.T) {
	bf := mustParse(t, "FROM alpine\nRUN apk add --no-cache \\\n    curl \\\n    git\n")
	run := bf.Stages[0].Instructions[1].(*RunInstr)
	if strings.Contains(run.Shell, "\\") || strings.Contains(run.Shell, "\n") {
		t.Fatalf("Shell = %q, continuation bytes should have been elided", run.Shell)
	}
	fields := strings.Fields(run.Shell)
	want := []string{"apk", "add", "--no-cache", "curl", "git"}
	if len(fields) != len(want) {
		t.Fatalf("Shell fields = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestParseEscapeDirectiveHonoredAsFirstLine(t *testing.T) {
	bf := mustParse(t, "# escape=`\nFROM alpine\nRUN echo a `\n    echo b\n")
	run := bf.Stages[0].Instructions[1].(*RunInstr)
	if !strings.Contains(run.Shell, "echo a") || !strings.Contains(run.Shell, "echo b") {
		t.Errorf("Shell = %q, want backtick continuation honored", run.Shell)
	}

}

func TestParseEscapeDirectiveHonoredAfterSyntaxDirective(t *testing.T) {
	// "# syntax=" and "# escape=" are both directive-shaped comments; a
	// contiguous run of them at the top of the file is still the directive
	// zone, so escape= takes effect even though it isn't literally line 1.
	bf := mustParse(t, "# syntax=docker/dockerfile:1\n# escape=`\nFROM alpine\nRUN echo a `\n    echo b\n")
	run := bf.Stages[0].Instructions[1].(*RunInstr)
	if !strings.Contains(run.Shell, "echo a") || !strings.Contains(run.Shell, "echo b") {
		t.Errorf("Shell = %q, want backtick continuation honored", run.Shell)
	}
	if len(bf.Comments) != 2 {
		t.Errorf("Comments = %+v, want both directive lines recorded as comments", bf.Comments)
	}
}

func TestParseEscapeDirectiveIgnoredAfterNonDirectiveLine(t *testing.T) {
	// A later "# escape=`" is outside the directive zone, since FROM (not a
	// directive-shaped comment) precedes it; it's just an ordinary comment
	// and '\\' remains the escape byte for the rest of the file.
	bf := mustParse(t, "FROM alpine\n# escape=`\nRUN echo a\n")
	run := bf.Stages[0].Instructions[1].(*RunInstr)
	if run.Shell != "echo a" {
		t.Errorf("Shell = %q, want \"echo a\"", run.Shell)
	}
	if len(bf.Comments) != 1 || bf.Comments[0].Text != "# escape=`" {
		t.Errorf("Comments = %+v, want the escape directive treated as an ordinary comment", bf.Comments)
	}
}

func TestParseEscapeDirectiveIgnoredAfterBlankLine(t *testing.T) {
	// A blank line before "# escape=`" also ends the directive zone.
	bf := mustParse(t, "\n# escape=`\nFROM alpine\nRUN echo a\n")
	run := bf.Stages[0].Instructions[1].(*RunInstr)
	if run.Shell != "echo a" {
		t.Errorf("Shell = %q, want \"echo a\"", run.Shell)
	}
}

func TestParseStructureGlobalArgsAndStages(t *testing.T) {
	bf := mustParse(t, strings.Join([]string{
		"ARG BASE=alpine",
		"FROM ${BASE} AS builder",
		"RUN echo build",
		"FROM ${BASE}",
		"COPY --from=builder /out /out",
	}, "\n") + "\n")

	if len(bf.GlobalArgs) != 1 || bf.GlobalArgs[0].Name != "BASE" {
		t.Fatalf("GlobalArgs = %+v", bf.GlobalArgs)
	}
	if len(bf.Stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(bf.Stages))
	}
	if bf.Stages[0].Alias != "builder" || bf.Stages[0].Index != 0 {
		t.Errorf("Stages[0] = %+v", bf.Stages[0])
	}
	if bf.Stages[1].Alias != "" || bf.Stages[1].Index != 1 {
		t.Errorf("Stages[1] = %+v", bf.Stages[1])
	}
	if len(bf.Stages[0].Instructions) != 2 || len(bf.Stages[1].Instructions) != 2 {
		t.Errorf("stage instruction counts = %d, %d, want 2, 2", len(bf.Stages[0].Instructions), len(bf.Stages[1].Instructions))
	}
}

func TestParseComments(t *testing.T) {
	bf := mustParse(t, "# top comment\nFROM alpine\n# another one\nRUN true\n")
	if len(bf.Comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(bf.Comments))
	}
	if bf.Comments[0].Text != "# top comment" || bf.Comments[1].Text != "# another one" {
		t.Errorf("Comments = %+v", bf.Comments)
	}
}

func isErrorKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
