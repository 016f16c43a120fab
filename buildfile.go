package buildfile

// Stage is the sequence of instructions from one FROM (inclusive) to the
// next FROM (exclusive).
type Stage struct {
	Index        int
	Alias        string
	From         *FromInstr
	Instructions []Instruction
}

// Comment is a top-level `#`-led comment line, tracked so a consumer that
// wants to reflow or preserve comments (or honor a parser directive like
// `# syntax=`) has the data even though comments carry no build semantics
// of their own.
type Comment struct {
	Span Span
	Text string
}

// BuildFile is a parsed build file: an ordered sequence of top-level nodes,
// each either a global ARG (appearing before the first FROM) or a stage.
// BuildFile is immutable once returned by Parse; edits are expressed through
// Splice, which produces a new source string for the caller to re-parse.
type BuildFile struct {
	source       []byte
	sourceMap    *SourceMap
	Instructions []Instruction
	GlobalArgs   []*ArgInstr
	Stages       []Stage
	Comments     []Comment
}

// Source returns the exact bytes the BuildFile was parsed from (with any
// leading UTF-8 BOM already stripped). A BuildFile borrows this slice for
// its lifetime; callers must not mutate it.
func (b *BuildFile) Source() []byte { return b.source }

// Position returns the 1-based (line, column) of a byte offset into Source.
func (b *BuildFile) Position(offset int) Position { return b.sourceMap.Position(offset) }

// partition assigns the flat instruction list into global ARGs and stages:
// any ARG before the first FROM is global (the one instruction BuildKit
// permits before a base image is chosen, typically used to parameterize the
// FROM line itself); each FROM opens a new stage running up to (but not
// including) the next FROM. A build file with zero FROM instructions is
// valid (no stages, possibly some global ARGs); any other instruction
// before the first FROM is a structural error surfaced by the caller
// (Parse, in parse.go).
func partition(instructions []Instruction) ([]*ArgInstr, []Stage) {
	var globals []*ArgInstr
	var stages []Stage
	var current *Stage
	stageIndex := 0

	for _, instr := range instructions {
		if from, ok := instr.(*FromInstr); ok {
			if current != nil {
				stages = append(stages, *current)
			}
			current = &Stage{
				Index:        stageIndex,
				Alias:        from.Alias,
				From:         from,
				Instructions: []Instruction{from},
			}
			stageIndex++
			continue
		}
		if current == nil {
			if arg, ok := instr.(*ArgInstr); ok {
				globals = append(globals, arg)
			}
			continue
		}
		current.Instructions = append(current.Instructions, instr)
	}
	if current != nil {
		stages = append(stages, *current)
	}
	return globals, stages
}
