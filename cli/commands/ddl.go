package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/cli/internal/watch"
	"github.com/satishbabariya/magicorm/query/sqlgen"
	"github.com/satishbabariya/magicorm/schema"
)

var ddlCmd = &cobra.Command{
	Use:   "ddl [schema-path]",
	Short: "Print the CREATE TABLE statements of a schema",
	Long: `Compile every model of a schema to CREATE TABLE statements.

With --drop a DROP TABLE statement precedes each CREATE. With --watch the
statements are printed again whenever the schema file changes.`,
	Example: `  magicorm ddl schema.morm --dialect postgres
  magicorm ddl --drop --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDDL,
}

var (
	ddlDialect string
	ddlDrop    bool
	ddlWatch   bool
)

func init() {
	ddlCmd.Flags().StringVar(&ddlDialect, "dialect", "", "SQL dialect (defaults to the configured driver)")
	ddlCmd.Flags().BoolVar(&ddlDrop, "drop", false, "Emit DROP TABLE before each CREATE TABLE")
	ddlCmd.Flags().BoolVarP(&ddlWatch, "watch", "w", false, "Recompile when the schema changes")

	rootCmd.AddCommand(ddlCmd)
}

func runDDL(cmd *cobra.Command, args []string) error {
	name := ddlDialect
	if name == "" {
		name = cfg.Driver
	}
	d, err := sqlgen.DialectFor(name)
	if err != nil {
		return err
	}
	path := schemaPath(args)
	out := cmd.OutOrStdout()

	compile := func() error {
		models, err := loadModels(path)
		if err != nil {
			return err
		}
		return renderDDL(out, d, models, ddlDrop)
	}
	if !ddlWatch {
		return compile()
	}

	w, err := watch.New(path, 0, compile)
	if err != nil {
		return err
	}
	ui.PrintInfo("Watching %s (ctrl-c to stop)", path)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	_ = w.Run(ctx, func(err error) { ui.PrintError("%v", err) })
	return nil
}

func renderDDL(w io.Writer, d sqlgen.Dialect, models []*schema.Model, drop bool) error {
	fmt.Fprintf(w, "-- %s\n", d.Name())
	for _, m := range models {
		if drop {
			fmt.Fprintln(w, sqlgen.CompileDropTable(d, m.Name()))
		}
		create, err := sqlgen.CompileCreateTable(d, m)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, create)
	}
	return nil
}
