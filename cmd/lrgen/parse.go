package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/nihei9/lrgen/driver/parser"
	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	onlyParse *bool
	json      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | lrgen parse grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser performs only parse and doesn't build a CST")
	parseFlags.json = cmd.Flags().Bool("json", false, "print a CST in JSON format")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				err = fmt.Errorf("an unexpected error occurred: %v", v)
			}
			fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
			retErr = err
		}
	}()

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var p *parser.Parser
	var builder *parser.DefaultSyntaxTreeBuilder
	{
		src := os.Stdin
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			src = f
		}

		toks, err := parser.NewTokenStream(cgram, src)
		if err != nil {
			return err
		}

		gram := parser.NewGrammar(cgram)
		var opts []parser.ParserOption
		if !*parseFlags.onlyParse {
			builder = parser.NewDefaultSyntaxTreeBuilder()
			opts = append(opts, parser.SemanticAction(parser.NewCSTActionSet(gram, builder)))
		}

		p, err = parser.NewParser(toks, gram, opts...)
		if err != nil {
			return err
		}
	}

	err = p.Parse()
	if err != nil {
		return err
	}

	synErrs := p.SyntaxErrors()
	for _, synErr := range synErrs {
		tok := synErr.Token

		var msg string
		switch {
		case tok.EOF():
			msg = "<eof>"
		case tok.Invalid():
			msg = fmt.Sprintf("'%v' (<invalid>)", string(tok.Lexeme()))
		default:
			msg = fmt.Sprintf("'%v' (%v)", string(tok.Lexeme()), cgram.Syntactic.Terminals[tok.TerminalID()])
		}

		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v", synErr.Row+1, synErr.Col+1, synErr.Message, msg)
		if len(synErr.ExpectedTerminals) > 0 {
			fmt.Fprintf(os.Stderr, "; expected: %v", synErr.ExpectedTerminals[0])
			for _, t := range synErr.ExpectedTerminals[1:] {
				fmt.Fprintf(os.Stderr, ", %v", t)
			}
		}
		fmt.Fprintf(os.Stderr, "\n")
	}
	if len(synErrs) > 0 {
		return fmt.Errorf("%v syntax error(s)", len(synErrs))
	}

	if builder == nil {
		return nil
	}
	if *parseFlags.json {
		b, err := json.Marshal(builder.Tree())
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}
	parser.PrintTree(os.Stdout, builder.Tree())

	return nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
