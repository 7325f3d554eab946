package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/satishbabariya/magicorm/cli/internal/config"
	"github.com/satishbabariya/magicorm/cli/internal/ui"
	"github.com/satishbabariya/magicorm/driver"
	"github.com/satishbabariya/magicorm/engine"
	"github.com/satishbabariya/magicorm/runtime/client"
	"github.com/satishbabariya/magicorm/schema"
	"github.com/satishbabariya/magicorm/schema/dsl"
)

// schemaPath returns the schema argument or the configured path.
func schemaPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.SchemaPath
}

// loadModels parses a schema file. Parse errors are printed with the
// offending source line.
func loadModels(path string) ([]*schema.Model, error) {
	data, err := afero.ReadFile(config.AppFs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	models, err := dsl.ParseString(path, string(data))
	if err != nil {
		dsl.PrettyPrint(ui.ErrOut, err, string(data))
		return nil, fmt.Errorf("schema %s is invalid", path)
	}
	return models, nil
}

func findModel(models []*schema.Model, name string) (*schema.Model, error) {
	for _, m := range models {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("model %q is not defined in the schema", name)
}

// openEngine connects to the configured backend with models registered.
// driverOptions returns the configured connection options. With --debug
// every statement is echoed with its duration, and failures with the error.
func driverOptions() driver.Options {
	opts := cfg.DriverOptions()
	if cfg.Debug {
		opts.Middleware = append(opts.Middleware,
			client.TimingMiddleware(func(query string, d time.Duration) {
				ui.PrintInfo("%s (%s)", query, d.Round(time.Microsecond))
			}),
			client.ErrorMiddleware(func(query string, err error) {
				ui.PrintError("%s: %v", query, err)
			}),
		)
	}
	return opts
}

func openEngine(ctx context.Context, mode engine.M2DDL, models []*schema.Model) (*engine.Engine, error) {
	e, err := engine.New(engine.Options{
		Driver:        cfg.Driver,
		DriverOptions: driverOptions(),
		M2DDL:         mode,
	})
	if err != nil {
		return nil, err
	}
	if err := e.Register(models...); err != nil {
		return nil, err
	}
	if err := e.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	return e, nil
}
