package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

// tracer traces with key 'lrgen.cli'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.cli")
}

var traceKeys = []string{
	"lrgen.cli",
	"lrgen.grammar",
	"lrgen.lexical",
	"lrgen.driver",
}

var rootFlags = struct {
	traceLevel *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lrgen",
	Short: "Generate an LALR(1) parsing table and a lexical DFA from a grammar",
	Long: `lrgen provides two features:
- Generates a portable LALR(1) parsing table and a lexical DFA from a grammar written in YAML.
- Parses a text stream according to the compiled grammar.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.traceLevel)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
}

func init() {
	rootFlags.traceLevel = rootCmd.PersistentFlags().String("trace-level", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	return rootCmd.Execute()
}
