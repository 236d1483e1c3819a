package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/splitkit-dev/splitkit/internal/activity"
	"github.com/splitkit-dev/splitkit/internal/importer"
	"github.com/splitkit-dev/splitkit/internal/trip"
)

func newImportCommand(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import expenses from a CSV file, or every CSV in the trip's inbox",
		Long: `Import expenses from a CSV file. Without a file, every CSV in
<trip>/inbox is imported and moved to inbox/processed.

The generic format has the header:
  ` + importer.GenericHeader,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return runImport(g, file, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "file format")

	return cmd
}

func runImport(g *globals, file, format string) error {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown import format %q", format)
	}

	t, err := g.open()
	if err != nil {
		return err
	}

	if file != "" {
		return importFile(t, parser, file)
	}

	files, err := importer.Scan(t.Dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("Inbox is empty.")
		return nil
	}
	for _, fi := range files {
		if err := importFile(t, parser, fi.Path); err != nil {
			return err
		}
		if err := importer.MarkProcessed(t.Dir, fi.Name); err != nil {
			return err
		}
	}
	return nil
}

// importFile adds every expense in path, or none of them if any row fails.
func importFile(t *trip.Trip, parser importer.Parser, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	params, err := importer.Build(rows, t.Members, t.Config.Rate)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	var errs []error
	for i, p := range params {
		if err := t.Expenses.Validate(p); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", rows[i].Line, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("importing %s: %w", path, errors.Join(errs...))
	}

	if _, err := t.Expenses.AddBatch(params); err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	name := filepath.Base(path)
	summary := fmt.Sprintf("import %d expenses from %s", len(params), name)
	if _, err := t.Record(activity.Imported, name, summary); err != nil {
		return err
	}

	fmt.Printf("Imported %d expenses from %s\n", len(params), name)
	return nil
}
