package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cnf/structhash"
	"github.com/nihei9/lrgen/compressor"
	lerr "github.com/nihei9/lrgen/error"
	"github.com/nihei9/lrgen/grammar"
	def "github.com/nihei9/lrgen/spec"
	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output           *string
	report           *bool
	compressionLevel *int
	fingerprint      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile grammar you defined into a parsing table",
		Example: `  lrgen compile grammar.yaml -o grammar.json --report`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.report = cmd.Flags().Bool("report", false, "write a report file next to the compiled grammar")
	compileFlags.compressionLevel = cmd.Flags().Int("compression-level", compressor.LevelMax, fmt.Sprintf("compression level of the tables (%v..%v)", compressor.LevelMin, compressor.LevelMax))
	compileFlags.fingerprint = cmd.Flags().Bool("fingerprint", false, "print a fingerprint of the compiled grammar to stderr")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var grmPath string
	sourceName := "stdin"
	if len(args) > 0 {
		grmPath = args[0]
		sourceName = grmPath
	}
	defer func() {
		var specErrs lerr.SpecErrors
		if errors.As(retErr, &specErrs) {
			specErrs.SetSource(sourceName, grmPath)
		}
	}()

	root, err := readGrammar(grmPath)
	if err != nil {
		return err
	}

	opts := []grammar.CompileOption{
		grammar.CompressionLevel(*compileFlags.compressionLevel),
	}
	if *compileFlags.report {
		opts = append(opts, grammar.EnableReporting())
	}
	cgram, report, err := grammar.Compile(root, opts...)
	var conflictErr *grammar.ConflictError
	if err != nil && !errors.As(err, &conflictErr) {
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	if *compileFlags.fingerprint {
		h, err := structhash.Hash(cgram, 1)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "fingerprint: %v\n", h)
	}

	if conflictErr != nil {
		fmt.Fprintf(os.Stderr, "%v conflicts\n", len(conflictErr.Conflicts))
		tracer().Infof("%v", conflictErr)
	}

	return nil
}

func readGrammar(path string) (*def.RootNode, error) {
	if path == "" {
		return def.Parse(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	return def.Parse(f)
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to a files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-exitent path, this function asumes that the path represents a file
//     path for the compiled grammar. Then it also writes the report in the same directory as the compiled grammar.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
//
// When report is nil, no report file is written.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cgramW, "%v\n", string(b))
	}

	if report == nil {
		return nil
	}

	{
		reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(reportFile, "%v\n", string(b))
	}

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}
