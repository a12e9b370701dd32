package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a controls CSV against the schema",
	Long: `Validate reads CSV text from the given file, or from stdin when the
argument is "-" or omitted, and prints every schema violation found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	rep := schema.Validate(string(raw))

	if rep.IsValid {
		printf(cmd, "valid: %d rows, %d columns\n", rep.RowCount, rep.ColumnCount)
		return nil
	}

	printf(cmd, "invalid: %d rows, %d issues\n", rep.RowCount, len(rep.Issues))
	for _, issue := range rep.Issues {
		printf(cmd, "  - %s\n", issue)
	}
	return fmt.Errorf("table failed validation with %d issues", len(rep.Issues))
}
