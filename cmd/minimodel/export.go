package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/minimodel"
)

var exportCmd = &cobra.Command{
	Use:   "export [document.json]",
	Short: "Cast documents through the schema and print an export target",
	Long: `Export assigns each document to a new model instance, applies defaults and
prints the chosen export (object, json, db or all) as JSON in schema field
order. Validation is not enforced unless --validate is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var (
	exportTarget   string
	exportValidate bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportTarget, "target", "t", "json", "export target (object, json, db, all)")
	exportCmd.Flags().BoolVar(&exportValidate, "validate", false, "fail when a document is invalid")
}

func runExport(cmd *cobra.Command, args []string) error {
	target, ok := minimodel.ParseTarget(exportTarget)
	if !ok {
		return fmt.Errorf("unknown target %q", exportTarget)
	}
	mt, err := loadSchema()
	if err != nil {
		return err
	}
	docs, list, err := readDocuments(args)
	if err != nil {
		return err
	}
	ms, err := instantiate(mt, docs)
	if err != nil {
		return err
	}
	if exportValidate {
		if err := ms.Validate(); err != nil {
			return minimodel.IssuesOf(err)
		}
	}
	var v any
	if !list {
		v = ms[0].ExportOrdered(target)
	} else {
		arr := make([]any, len(ms))
		for i, m := range ms {
			arr[i] = m.ExportOrdered(target)
		}
		v = arr
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
