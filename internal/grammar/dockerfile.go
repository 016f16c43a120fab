package grammar

// Dockerfile builds the rule table for the build-file instruction language.
// It is parameterized on the file's escape character (normally '\\', or '`'
// when selected by a leading "# escape=" directive — the usual override for
// Windows-style Dockerfiles, where '\\' collides with path separators)
// because line-continuation recognition is the one place the grammar's
// shape depends on file content rather than being fixed.
//
// Two groups of rules live in the same table:
//
//   - the top-level "File" rules, which split source into Lines (comments,
//     blank lines, and instructions), folding line continuations as they go;
//   - a library of argument-shape rules (ExecForm, KVList, Flags, Tokens,
//     ...) that instruction decoders re-enter via grammar.Parse with a
//     different start rule, against an instruction's already-joined
//     argument text (continuations already folded, so these rules need no
//     escape-character awareness of their own).
func Dockerfile(escape rune) Grammar {
	g := Grammar{}

	isWS := func(b byte) bool { return b == ' ' || b == '\t' }
	isLetter := func(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
	isDigit := func(b byte) bool { return b >= '0' && b <= '9' }
	isWordChar := func(b byte) bool { return isLetter(b) || isDigit(b) || b == '_' }
	isLowerFlag := func(b byte) bool { return (b >= 'a' && b <= 'z') || b == '-' }
	isLowerFlagStart := func(b byte) bool { return b >= 'a' && b <= 'z' }

	any := Class{"any character", func(byte) bool { return true }}

	g["WS"] = Class{"whitespace", isWS}
	g["WSs"] = Star{g["WS"]}
	g["WSp"] = Plus{g["WS"]}
	g["LF"] = Choice{[]Expr{Lit{S: "\r\n"}, Lit{S: "\n"}}}
	g["EOF"] = Not{any}
	g["LineEnd"] = Choice{[]Expr{Ref{"LF"}, Ref{"EOF"}}}

	g["EscChar"] = Lit{S: string(escape)}
	g["Continuation"] = Seq{[]Expr{Ref{"EscChar"}, Ref{"LF"}}}
	g["Blank"] = Ref{"WSs"}
	g["Comment"] = Seq{[]Expr{Lit{S: "#"}, Star{Seq{[]Expr{Not{Ref{"LF"}}, any}}}}}

	g["Keyword"] = Plus{Class{"instruction keyword", isWordChar}}
	g["ArgText"] = Star{Choice{[]Expr{Ref{"Continuation"}, Seq{[]Expr{Not{Ref{"LF"}}, any}}}}}
	g["Instr"] = Seq{[]Expr{Ref{"Keyword"}, Ref{"WSs"}, Ref{"ArgText"}}}

	g["Line"] = Choice{[]Expr{
		Seq{[]Expr{Ref{"Comment"}, Ref{"LineEnd"}}},
		Seq{[]Expr{Ref{"Instr"}, Ref{"LineEnd"}}},
		Seq{[]Expr{Ref{"Blank"}, Ref{"LineEnd"}}},
	}}
	g["File"] = Seq{[]Expr{Star{Ref{"Line"}}, Ref{"EOF"}}}

	// --- argument-shape rules, reused by decoders against joined text ---

	g["DQEscape"] = Seq{[]Expr{Lit{S: "\\"}, Class{"escape char", func(b byte) bool {
		switch b {
		case '"', '\\', 'n', 'r', 't', '\'', ' ':
			return true
		}
		return false
	}}}}
	g["DQChar"] = Choice{[]Expr{Ref{"DQEscape"}, Seq{[]Expr{Not{Lit{S: "\""}}, Not{Lit{S: "\\"}}, any}}}}
	g["DQString"] = Seq{[]Expr{Lit{S: "\""}, Star{Ref{"DQChar"}}, Lit{S: "\""}}}

	g["SQChar"] = Seq{[]Expr{Not{Lit{S: "'"}}, any}}
	g["SQString"] = Seq{[]Expr{Lit{S: "'"}, Star{Ref{"SQChar"}}, Lit{S: "'"}}}

	// A bare token may not open with a quote: a quote that DQString/SQString
	// could not close is a quoting error, not the start of a bare token.
	g["BareTok"] = Seq{[]Expr{
		Not{Class{"quote", func(b byte) bool { return b == '"' || b == '\'' }}},
		Plus{Class{"token character", func(b byte) bool { return !isWS(b) }}},
	}}
	g["BareValue"] = Plus{Class{"value character", func(b byte) bool {
		return !isWS(b) && b != '"' && b != '\''
	}}}

	g["Token"] = Choice{[]Expr{Ref{"DQString"}, Ref{"SQString"}, Ref{"BareTok"}}}
	g["Tokens"] = Seq{[]Expr{Ref{"WSs"}, Opt{Seq{[]Expr{
		Label{"Elem", Ref{"Token"}},
		Star{Seq{[]Expr{Ref{"WSp"}, Label{"Elem", Ref{"Token"}}}}},
	}}}, Ref{"WSs"}}}

	g["Value"] = Choice{[]Expr{Ref{"DQString"}, Ref{"SQString"}, Ref{"BareValue"}}}
	g["Key"] = Plus{Class{"key character", func(b byte) bool { return !isWS(b) && b != '=' }}}
	g["KVPair"] = Seq{[]Expr{Label{"Key", Ref{"Key"}}, Lit{S: "="}, Label{"Value", Opt{Ref{"Value"}}}}}
	g["KVList"] = Seq{[]Expr{Ref{"WSs"}, Label{"Pair", Ref{"KVPair"}}, Star{Seq{[]Expr{Ref{"WSp"}, Label{"Pair", Ref{"KVPair"}}}}}, Ref{"WSs"}}}

	g["FlagName"] = Seq{[]Expr{Class{"flag name", isLowerFlagStart}, Star{Class{"flag name", isLowerFlag}}}}
	g["FlagValue"] = Star{Class{"flag value character", func(b byte) bool { return !isWS(b) }}}
	g["Flag"] = Seq{[]Expr{Lit{S: "--"}, Label{"Name", Ref{"FlagName"}}, Lit{S: "="}, Label{"Value", Ref{"FlagValue"}}}}
	g["Flags"] = Seq{[]Expr{Ref{"WSs"}, Star{Seq{[]Expr{Ref{"Flag"}, Ref{"WSp"}}}}}}

	g["JEscape"] = Seq{[]Expr{Lit{S: "\\"}, Class{"exec-form escape", func(b byte) bool {
		switch b {
		case '"', '\\', 'n', 'r', 't':
			return true
		}
		return false
	}}}}
	g["JChar"] = Choice{[]Expr{Ref{"JEscape"}, Seq{[]Expr{Not{Lit{S: "\""}}, Not{Lit{S: "\\"}}, any}}}}
	g["JString"] = Seq{[]Expr{Lit{S: "\""}, Star{Ref{"JChar"}}, Lit{S: "\""}}}
	g["ExecForm"] = Seq{[]Expr{Ref{"WSs"}, Lit{S: "["}, Ref{"WSs"},
		Opt{Seq{[]Expr{
			Label{"Elem", Ref{"JString"}},
			Star{Seq{[]Expr{Ref{"WSs"}, Lit{S: ","}, Ref{"WSs"}, Label{"Elem", Ref{"JString"}}}}},
		}}},
		Ref{"WSs"}, Lit{S: "]"}, Ref{"WSs"}}}

	// --- composite rules used directly by instruction decoders ---

	g["Rest"] = Star{any}
	g["FlagsThenTokens"] = Seq{[]Expr{Ref{"Flags"}, Ref{"Tokens"}}}
	g["CmdLit"] = Lit{S: "CMD", Fold: true}
	g["HealthcheckArgs"] = Seq{[]Expr{Ref{"Flags"}, Ref{"WSs"},
		Opt{Seq{[]Expr{Ref{"CmdLit"}, Ref{"WSs"}, Label{"Body", Ref{"Rest"}}}}}}}
	g["OnbuildArgs"] = Seq{[]Expr{Ref{"WSs"}, Label{"Keyword", Ref{"BareTok"}}, Ref{"WSs"}, Label{"Body", Ref{"Rest"}}}}

	return g
}
