package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openfoia/foiagraph/internal/core/redaction"
)

// redactionsCmd counts exemption citations without calling a backend
var redactionsCmd = &cobra.Command{
	Use:   "redactions [file]",
	Short: "Count FOIA exemption citations in a text file or stdin",
	Long: `Count FOIA exemption citations such as (b)(6) or (b)(7)(C).

Examples:
  foiagraph redactions response.txt
  pdftotext release.pdf - | foiagraph redactions -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRedactions,
}

func runRedactions(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	d := redaction.NewDetector(redaction.Options{
		DarkThreshold: cfg.Redaction.DarkThreshold,
		MinDarkRatio:  cfg.Redaction.MinDarkRatio,
		Logger:        logger,
	})
	summary := d.ScanText(string(text))
	for _, c := range summary.ExemptionsCited {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %4d  %s\n", c.Code, c.Count, c.Description)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", summary.TotalExemptionCitations)
	return nil
}
