package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/minimodel"
)

var validateCmd = &cobra.Command{
	Use:   "validate [document.json]",
	Short: "Validate documents against the schema",
	Long: `Validate assigns each document to a new model instance and reports
every failing field by JSON Pointer. The command fails when any document is
invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	mt, err := loadSchema()
	if err != nil {
		return err
	}
	docs, _, err := readDocuments(args)
	if err != nil {
		return err
	}
	ms, err := instantiate(mt, docs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	invalid := 0
	for i, m := range ms {
		iss := minimodel.IssuesOf(m.Validate())
		if len(iss) == 0 {
			fmt.Fprintf(out, "document %d: ok\n", i)
			continue
		}
		invalid++
		for _, it := range iss {
			fmt.Fprintf(out, "document %d: %s %s: %s\n", i, it.Path, it.Code, it.Message)
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d documents invalid", invalid, len(ms))
	}
	return nil
}
