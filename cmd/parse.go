package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runlens/runlens/internal/parser"
	"github.com/runlens/runlens/internal/tui"
)

var flagParseSection string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Decompose a log file into sections without the TUI",
	Long: `Parse reads a job log from the given file, or from stdin when no file
or "-" is given, decomposes it with the same engine the TUI uses, and prints
each section as plain text. Logs no parser recognises come back as the raw
log only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&flagParseSection, "section", "", "print only the section with this title")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sections, err := parser.Default(cfg.Parser.MaxSlowRows()).Parse(string(data))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagParseSection != "" {
		for _, sec := range sections {
			if strings.EqualFold(sec.Title, flagParseSection) {
				fmt.Fprintln(out, tui.RenderSectionText(sec))
				return nil
			}
		}
		titles := make([]string, len(sections))
		for i, sec := range sections {
			titles[i] = sec.Title
		}
		return fmt.Errorf("no section titled %q, have: %s", flagParseSection, strings.Join(titles, ", "))
	}

	for i, sec := range sections {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s ==\n", sec.Title)
		fmt.Fprintln(out, tui.RenderSectionText(sec))
	}
	return nil
}
