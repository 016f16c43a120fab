package buildfile

// InstructionKind identifies which of the closed set of instruction variants
// an Instruction value is.
type InstructionKind string

const (
	KindFrom        InstructionKind = "FROM"
	KindArg         InstructionKind = "ARG"
	KindEnv         InstructionKind = "ENV"
	KindLabel       InstructionKind = "LABEL"
	KindRun         InstructionKind = "RUN"
	KindCmd         InstructionKind = "CMD"
	KindEntrypoint  InstructionKind = "ENTRYPOINT"
	KindCopy        InstructionKind = "COPY"
	KindAdd         InstructionKind = "ADD"
	KindExpose      InstructionKind = "EXPOSE"
	KindUser        InstructionKind = "USER"
	KindWorkdir     InstructionKind = "WORKDIR"
	KindVolume      InstructionKind = "VOLUME"
	KindStopsignal  InstructionKind = "STOPSIGNAL"
	KindHealthcheck InstructionKind = "HEALTHCHECK"
	KindShell       InstructionKind = "SHELL"
	KindOnbuild     InstructionKind = "ONBUILD"
	// KindMisc is the catch-all for any otherwise-unrecognized uppercase
	// keyword, retained verbatim rather than rejected.
	KindMisc InstructionKind = "MISC"
)

// Instruction is the interface every instruction variant implements. It is a
// tagged sum expressed as a Go interface plus type switches in consumer
// code, not an inheritance hierarchy: each variant below carries its own
// fields and nothing is shared except the bookkeeping in instrBase.
type Instruction interface {
	Kind() InstructionKind
	Span() Span
	KeywordSpan() Span
	// KeywordText is the instruction keyword exactly as written in the
	// source, preserving the author's casing (e.g. "from", "FROM"); Kind
	// always reports the canonical uppercase form.
	KeywordText() string
}

type instrBase struct {
	Sp     Span
	KwSp   Span
	KwText string
}

func (b instrBase) Span() Span          { return b.Sp }
func (b instrBase) KeywordSpan() Span   { return b.KwSp }
func (b instrBase) KeywordText() string { return b.KwText }

// KV is one key/value pair of an ENV or LABEL instruction.
type KV struct {
	Key       string
	KeySpan   Span
	Value     string
	ValueSpan Span
}

// Flag is one `--name=value` leading flag, as accepted by FROM (--platform),
// COPY/ADD (--from, --chown, --chmod, and any unrecognized name), and
// HEALTHCHECK (--interval, --timeout, --retries, --start-period, and any
// unrecognized name).
type Flag struct {
	Name      string
	NameSpan  Span
	Value     string
	ValueSpan Span
	Span      Span
}

// PathArg is one quoted-or-bare path token, as used by COPY/ADD sources and
// destination.
type PathArg struct {
	Value string
	Span  Span
}

// ImageRef is the parsed form of a FROM instruction's image reference. The
// registry segment is distinguished from the image path the same way the
// Docker CLI does it: the first '/'-separated segment is the registry only
// if it looks like a host (contains '.' or ':', or is exactly "localhost");
// otherwise the whole reference is treated as a path on the default
// registry, even when it has multiple '/'-separated components.
type ImageRef struct {
	Registry string
	Name     string
	Tag      string
	Digest   string
	Raw      string
}

// CommandForm is the shared shape of RUN/CMD/ENTRYPOINT/HEALTHCHECK's
// command body: either a single shell-form string, or an exec-form list of
// arguments, with the distinction recorded explicitly.
type CommandForm struct {
	Exec      bool
	Shell     string // shell form text, continuations folded
	ShellSpan Span
	Args      []string // exec form elements, already unescaped
	ArgSpans  []Span
}

// FromInstr is a FROM instruction.
type FromInstr struct {
	instrBase
	Platform     string
	PlatformSpan Span
	Image        ImageRef
	ImageSpan    Span
	Alias        string
	AliasSpan    Span
}

func (f *FromInstr) Kind() InstructionKind { return KindFrom }

// ArgInstr is an ARG instruction.
type ArgInstr struct {
	instrBase
	Name      string
	NameSpan  Span
	HasValue  bool
	Value     string
	ValueSpan Span
}

func (a *ArgInstr) Kind() InstructionKind { return KindArg }

// EnvInstr is an ENV instruction, in either single-pair or multi-pair mode.
type EnvInstr struct {
	instrBase
	Multi bool
	Pairs []KV
}

func (e *EnvInstr) Kind() InstructionKind { return KindEnv }

// LabelInstr is a LABEL instruction, in either single-pair or multi-pair
// mode.
type LabelInstr struct {
	instrBase
	Multi bool
	Pairs []KV
}

func (l *LabelInstr) Kind() InstructionKind { return KindLabel }

// RunInstr is a RUN instruction.
type RunInstr struct {
	instrBase
	CommandForm
}

func (r *RunInstr) Kind() InstructionKind { return KindRun }

// CmdInstr is a CMD instruction.
type CmdInstr struct {
	instrBase
	CommandForm
}

func (c *CmdInstr) Kind() InstructionKind { return KindCmd }

// EntrypointInstr is an ENTRYPOINT instruction.
type EntrypointInstr struct {
	instrBase
	CommandForm
}

func (e *EntrypointInstr) Kind() InstructionKind { return KindEntrypoint }

// CopyInstr is a COPY instruction.
type CopyInstr struct {
	instrBase
	Flags   []Flag
	Sources []PathArg
	Dest    PathArg
}

func (c *CopyInstr) Kind() InstructionKind { return KindCopy }

// AddInstr is an ADD instruction.
type AddInstr struct {
	instrBase
	Flags   []Flag
	Sources []PathArg
	Dest    PathArg
}

func (a *AddInstr) Kind() InstructionKind { return KindAdd }

// ExposeInstr is an EXPOSE instruction.
type ExposeInstr struct {
	instrBase
	Ports     []string
	PortSpans []Span
}

func (e *ExposeInstr) Kind() InstructionKind { return KindExpose }

// UserInstr is a USER instruction.
type UserInstr struct {
	instrBase
	User      string
	UserSpan  Span
	Group     string
	GroupSpan Span
}

func (u *UserInstr) Kind() InstructionKind { return KindUser }

// WorkdirInstr is a WORKDIR instruction.
type WorkdirInstr struct {
	instrBase
	Path     string
	PathSpan Span
}

func (w *WorkdirInstr) Kind() InstructionKind { return KindWorkdir }

// VolumeInstr is a VOLUME instruction.
type VolumeInstr struct {
	instrBase
	Paths     []string
	PathSpans []Span
}

func (v *VolumeInstr) Kind() InstructionKind { return KindVolume }

// StopsignalInstr is a STOPSIGNAL instruction.
type StopsignalInstr struct {
	instrBase
	Signal     string
	SignalSpan Span
}

func (s *StopsignalInstr) Kind() InstructionKind { return KindStopsignal }

// ShellInstr is a SHELL instruction. Shell form is rejected: SHELL always
// requires exec form.
type ShellInstr struct {
	instrBase
	Args     []string
	ArgSpans []Span
}

func (s *ShellInstr) Kind() InstructionKind { return KindShell }

// HealthcheckInstr is a HEALTHCHECK instruction, either `NONE` or a set of
// `--flag=value` options followed by `CMD` and a RUN-style body.
type HealthcheckInstr struct {
	instrBase
	None    bool
	Options []Flag
	Command CommandForm
}

func (h *HealthcheckInstr) Kind() InstructionKind { return KindHealthcheck }

// OnbuildInstr is an ONBUILD instruction, wrapping exactly one inner
// instruction.
type OnbuildInstr struct {
	instrBase
	Inner Instruction
}

func (o *OnbuildInstr) Kind() InstructionKind { return KindOnbuild }

// MiscInstr is the catch-all for any uppercase keyword not in the closed set
// above (including the deprecated MAINTAINER instruction), retained verbatim
// rather than rejected.
type MiscInstr struct {
	instrBase
	Args     string
	ArgsSpan Span
}

func (m *MiscInstr) Kind() InstructionKind { return KindMisc }
