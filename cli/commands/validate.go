package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/query/sqlgen"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema-path]",
	Short: "Validate a schema file",
	Long: `Validate a schema file for syntax and semantic errors.

This command will:
- Parse the schema file
- Compile every model for the configured dialect
- Display validation results`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := schemaPath(args)
	ui.PrintHeader("magicorm", "Validate Schema")

	models, err := loadModels(path)
	if err != nil {
		return err
	}

	d, err := sqlgen.DialectFor(cfg.Driver)
	if err != nil {
		return err
	}
	var failed int
	for _, m := range models {
		if _, err := sqlgen.CompileCreateTable(d, m); err != nil {
			ui.PrintError("%v", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d model(s) do not compile for %s", failed, d.Name())
	}

	absPath, _ := filepath.Abs(path)
	ui.PrintSuccess("Schema is valid: %s", absPath)

	ui.PrintSection("Models")
	summary := make([]string, len(models))
	for i, m := range models {
		summary[i] = fmt.Sprintf("%s (%d columns)", m.Name(), len(m.Columns()))
	}
	ui.PrintList(summary)
	return nil
}
