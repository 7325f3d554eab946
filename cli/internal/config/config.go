// Package config loads the magicorm CLI configuration from .magicorm.yaml,
// MAGICORM_* environment variables and .env files.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/magicorm/driver"
)

// AppFs is the filesystem the CLI reads schemas and configuration from.
var AppFs = afero.NewOsFs()

// FileName is the configuration file name without extension.
const FileName = ".magicorm"

// Config holds the application configuration
type Config struct {
	Driver     string
	DSN        string
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SchemaPath string
	M2DDL      string
	Debug      bool
}

// Load reads configuration from fs, looking in dir before the home
// directory. Later sources win: defaults, config file, .env, .env.local,
// MAGICORM_* variables. DATABASE_URL, when set, replaces the dsn.
func Load(fs afero.Fs, dir string) (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}
	// viper makes search paths absolute; do the same for the .env files.
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	if err := loadEnvFile(fs, filepath.Join(dir, ".env"), false); err != nil {
		return nil, err
	}
	if err := loadEnvFile(fs, filepath.Join(dir, ".env.local"), true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "magicorm"))

	v.SetEnvPrefix("MAGICORM")
	v.AutomaticEnv()

	v.SetDefault("driver", "sqlite")
	v.SetDefault("schema_path", "schema.morm")
	v.SetDefault("m2ddl", "create")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		Driver:     v.GetString("driver"),
		DSN:        v.GetString("dsn"),
		Host:       v.GetString("host"),
		Port:       v.GetInt("port"),
		User:       v.GetString("user"),
		Password:   v.GetString("password"),
		Database:   v.GetString("database"),
		SchemaPath: v.GetString("schema_path"),
		M2DDL:      v.GetString("m2ddl"),
		Debug:      v.GetBool("debug"),
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DSN = url
	}
	return cfg, nil
}

// loadEnvFile exports the variables of a dotenv file. Without override,
// non-empty variables of the process environment are kept.
func loadEnvFile(fs afero.Fs, name string, override bool) error {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		// A missing file is fine.
		return nil
	}
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}
	for k, val := range vars {
		if os.Getenv(k) != "" && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}

// DriverOptions converts the connection settings for the driver registry.
func (c *Config) DriverOptions() driver.Options {
	return driver.Options{
		DSN:      c.DSN,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
	}
}

// Save writes cfg as <dir>/.magicorm.yaml. The password is never written.
func Save(fs afero.Fs, cfg *Config, dir string) (string, error) {
	v := viper.New()
	v.SetFs(fs)
	v.Set("driver", cfg.Driver)
	v.Set("schema_path", cfg.SchemaPath)
	v.Set("m2ddl", cfg.M2DDL)
	if cfg.DSN != "" {
		v.Set("dsn", cfg.DSN)
	}
	if cfg.Database != "" {
		v.Set("database", cfg.Database)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName+".yaml")
	return path, v.WriteConfigAs(path)
}
