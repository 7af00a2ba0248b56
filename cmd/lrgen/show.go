package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	spec "github.com/nihei9/lrgen/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  lrgen show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	err = writeReport(os.Stdout, report)
	if err != nil {
		return err
	}

	return nil
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const reportTemplate = `# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range slice .Productions 1 -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ if .Accept -}}
accept on <eof>
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .Conflicts -}}
{{ printConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	termCount := len(report.Terminals)

	symName := func(sym int) string {
		if sym < termCount {
			return report.Terminals[sym].Name
		}
		return report.NonTerminals[sym-termCount].Name
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			var count int
			for _, s := range report.States {
				count += len(s.Conflicts)
			}

			switch count {
			case 0:
				return "No conflict"
			case 1:
				return "1 conflict remains unresolved."
			default:
				return fmt.Sprintf("%v conflicts remain unresolved.", count)
			}
		},
		"printTerminal": func(term *spec.Terminal) string {
			var skip string
			if term.Skip {
				skip = " (skip)"
			}
			return fmt.Sprintf("%4v %v %v%v", term.Number, term.Name, term.Pattern, skip)
		},
		"printProduction": func(prod *spec.Production) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", symName(prod.LHS))
			if len(prod.RHS) > 0 {
				for _, e := range prod.RHS {
					fmt.Fprintf(&b, " %v", symName(e))
				}
			} else {
				fmt.Fprintf(&b, " ε")
			}
			if prod.Label != "" {
				fmt.Fprintf(&b, " #%v", prod.Label)
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printItem": func(item *spec.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", symName(prod.LHS))
			for i, e := range prod.RHS {
				if i == item.Dot {
					fmt.Fprintf(&b, " ・")
				}
				fmt.Fprintf(&b, " %v", symName(e))
			}
			if item.Dot >= len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, symName(tran.Symbol))
		},
		"printReduce": func(reduce *spec.Reduce) string {
			var b strings.Builder
			for i, a := range reduce.LookAhead {
				if i > 0 {
					fmt.Fprintf(&b, ", ")
				}
				fmt.Fprintf(&b, "%v", symName(a))
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, b.String())
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, symName(tran.Symbol))
		},
		"printConflict": func(c *spec.Conflict) string {
			var items strings.Builder
			for i, item := range c.Items {
				if i > 0 {
					fmt.Fprintf(&items, ", ")
				}
				fmt.Fprintf(&items, "%v@%v", item.Production, item.Dot)
			}
			var adopted string
			switch {
			case c.AdoptedState != nil:
				adopted = fmt.Sprintf("shift %v", *c.AdoptedState)
			case c.AdoptedProduction != nil:
				adopted = fmt.Sprintf("reduce %v", *c.AdoptedProduction)
			}
			return fmt.Sprintf("conflict on %v among items %v: %v adopted", symName(c.Symbol), items.String(), adopted)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	err = tmpl.Execute(w, report)
	if err != nil {
		return err
	}

	return nil
}
