package commands

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/config"
	"github.com/satishbabariya/magicorm/cli/internal/ui"
)

const starterSchema = `// Models of this project. Each model is one table.
model user {
  id      int         @primary @autoinc
  email   varchar(128) @notnull @unique
  name    string
  age     int         @default(0)
}
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter schema and configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	fs := config.AppFs

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	schemaFile := filepath.Join(dir, filepath.Base(cfg.SchemaPath))
	if ok, _ := afero.Exists(fs, schemaFile); ok {
		ui.PrintWarning("Schema file already exists: %s", schemaFile)
	} else {
		if err := afero.WriteFile(fs, schemaFile, []byte(starterSchema), 0o644); err != nil {
			return err
		}
		ui.PrintSuccess("Created schema file: %s", schemaFile)
	}

	if ok, _ := afero.Exists(fs, filepath.Join(dir, config.FileName+".yaml")); ok {
		ui.PrintWarning("Configuration already exists, leaving it unchanged")
		return nil
	}
	saved := *cfg
	saved.SchemaPath = filepath.Base(cfg.SchemaPath)
	path, err := config.Save(fs, &saved, dir)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Created configuration: %s", path)
	ui.PrintInfo("Next: magicorm push %s", saved.SchemaPath)
	return nil
}
