package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/docker-lint/buildfile"
)

// version is set at build time using -ldflags. Defaults to "dev" when not set.
var version = "dev"

func main() {
	var (
		jsonOutput bool
		versionFlg bool
	)

	flag.BoolVar(&jsonOutput, "json", false, "Output the parsed structure as JSON")
	flag.BoolVar(&jsonOutput, "j", false, "Output the parsed structure as JSON")

	flag.BoolVar(&versionFlg, "version", false, "Show version information")
	flag.BoolVar(&versionFlg, "v", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if versionFlg {
		fmt.Println(version)
		return
	}

	args := flag.Args()
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "too many arguments: only one build-file path is supported")
		os.Exit(2)
	}

	var reader io.Reader = os.Stdin
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open file: %v\n", err)
			os.Exit(2)
		}
		defer file.Close()
		reader = file
	}

	source, err := io.ReadAll(reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read source: %v\n", err)
		os.Exit(2)
	}

	bf, err := buildfile.Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse build file: %v\n", err)
		os.Exit(2)
	}

	if jsonOutput {
		printJSON(bf)
		return
	}
	printText(bf)
}

func printText(bf *buildfile.BuildFile) {
	fmt.Printf("global args: %d\n", len(bf.GlobalArgs))
	for _, a := range bf.GlobalArgs {
		pos := bf.Position(a.NameSpan.Start)
		fmt.Printf("  %d:%d ARG %s\n", pos.Line, pos.Column, a.Name)
	}
	fmt.Printf("stages: %d\n", len(bf.Stages))
	for _, st := range bf.Stages {
		pos := bf.Position(st.From.Span().Start)
		label := st.Alias
		if label == "" {
			label = fmt.Sprintf("#%d", st.Index)
		}
		fmt.Printf("  stage %s from %s (%d instructions, %d:%d)\n", label, st.From.Image.Raw, len(st.Instructions), pos.Line, pos.Column)
		for _, instr := range st.Instructions {
			pos := bf.Position(instr.KeywordSpan().Start)
			fmt.Printf("    %d:%d %s\n", pos.Line, pos.Column, instr.Kind())
		}
	}
	if len(bf.Comments) > 0 {
		fmt.Printf("comments: %d\n", len(bf.Comments))
	}
}

type jsonStage struct {
	Index        int      `json:"index"`
	Alias        string   `json:"alias,omitempty"`
	Image        string   `json:"image"`
	Instructions []string `json:"instructions"`
}

type jsonFile struct {
	GlobalArgs []string    `json:"global_args"`
	Stages     []jsonStage `json:"stages"`
	Comments   int         `json:"comments"`
}

func printJSON(bf *buildfile.BuildFile) {
	out := jsonFile{Comments: len(bf.Comments)}
	for _, a := range bf.GlobalArgs {
		out.GlobalArgs = append(out.GlobalArgs, a.Name)
	}
	for _, st := range bf.Stages {
		js := jsonStage{Index: st.Index, Alias: st.Alias, Image: st.From.Image.Raw}
		for _, instr := range st.Instructions {
			js.Instructions = append(js.Instructions, string(instr.Kind()))
		}
		out.Stages = append(out.Stages, js)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}
