// Package commands implements the magicorm CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/magicorm/cli/internal/config"
	"github.com/satishbabariya/magicorm/cli/internal/version"
	"github.com/satishbabariya/magicorm/internal/debug"
)

var (
	cfg *config.Config

	flagDriver string
	flagDSN    string
	flagSchema string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "magicorm",
	Short: "Describe tables and queries as values, run them on MySQL, SQLite or PostgreSQL",
	Long: `magicorm compiles model schemas and query documents to SQL.

Schemas are written in the .morm language:

  model user {
    id   int         @primary @autoinc
    name varchar(72) @notnull
  }

Configuration is read from .magicorm.yaml, .env files and MAGICORM_*
environment variables; flags win over all of them.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Backend driver (mysql, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "Data source name")
	rootCmd.PersistentFlags().StringVarP(&flagSchema, "schema", "s", "", "Path to the schema file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log SQL and driver activity to stderr")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(config.AppFs, ".")
	if err != nil {
		return err
	}
	if flagDriver != "" {
		c.Driver = flagDriver
	}
	if flagDSN != "" {
		c.DSN = flagDSN
	}
	if flagSchema != "" {
		c.SchemaPath = flagSchema
	}
	if flagDebug {
		c.Debug = true
	}
	debug.SetOutput(cmd.ErrOrStderr(), c.Debug)
	cfg = c
	return nil
}

// Execute is the main entry point for the CLI
func Execute() error {
	return rootCmd.Execute()
}
