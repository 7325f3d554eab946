package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/engine"
)

var pushCmd = &cobra.Command{
	Use:   "push [schema-path]",
	Short: "Create (or drop) the tables of a schema in the database",
	Long: `Connect to the configured database and apply the schema.

Modes:
  create        create every table (default)
  drop          drop every table
  drop-create   drop, then create every table

Modes that drop tables ask for confirmation unless --yes is given.`,
	Example: `  magicorm push --driver sqlite --dsn app.db
  magicorm push schema.morm --mode drop-create --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPush,
}

var (
	pushMode string
	pushYes  bool
)

func init() {
	pushCmd.Flags().StringVar(&pushMode, "mode", "", "create, drop or drop-create (defaults to the configured m2ddl)")
	pushCmd.Flags().BoolVarP(&pushYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	raw := pushMode
	if raw == "" {
		raw = cfg.M2DDL
	}
	mode, err := engine.ParseM2DDL(raw)
	if err != nil {
		return err
	}
	if mode == engine.M2DDLNone {
		ui.PrintInfo("m2ddl is none, nothing to push")
		return nil
	}

	path := schemaPath(args)
	models, err := loadModels(path)
	if err != nil {
		return err
	}

	if (mode == engine.M2DDLDrop || mode == engine.M2DDLDropCreate) && !pushYes {
		ok, err := ui.Confirm(fmt.Sprintf("Drop %d table(s) on %s? Their data will be lost", len(models), cfg.Driver))
		if err != nil {
			return err
		}
		if !ok {
			ui.PrintWarning("Aborted")
			return nil
		}
	}

	ui.PrintStep(1, 2, fmt.Sprintf("Connecting to %s", cfg.Driver))
	e, err := openEngine(cmd.Context(), mode, models)
	if err != nil {
		return err
	}
	defer e.Close(cmd.Context())

	ui.PrintStep(2, 2, fmt.Sprintf("Applied %s", mode))
	for _, m := range models {
		ui.PrintSuccess("%s", m.Name())
	}
	return nil
}
