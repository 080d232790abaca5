// Package runconfig loads the TOML run configuration and table catalog a
// run operates over: the DSN, warehouse flavor, staging directory, the
// SELECT-grantee roles, and the fixed catalog of tables to load. The whole
// DSN may be replaced from the environment (LDP_DATABASE_DSN) so the TOML
// file itself never has to hold a password.
package runconfig

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"ldp/internal/flavor"
)

// TableEntry is one catalog entry: the identity fields a TableSpec needs
// before pass 1 even runs.
type TableEntry struct {
	Name       string `toml:"name"`
	ModuleName string `toml:"module_name"`
	SourcePath string `toml:"source_path"`
}

// tomlDocument is the top-level shape of the run config file.
type tomlDocument struct {
	Database struct {
		DSN    string `toml:"dsn"`
		Flavor string `toml:"flavor"`
	} `toml:"database"`

	Staging struct {
		Directory         string `toml:"directory"`
		LoadFromDirectory bool   `toml:"load_from_directory"`
	} `toml:"staging"`

	Roles  []string     `toml:"roles"`
	Tables []TableEntry `toml:"tables"`
}

// envOverrides is the small struct caarlos0/env parses secret overrides
// into, keeping the TOML file itself the source of truth for everything
// non-secret.
type envOverrides struct {
	DSN string `env:"LDP_DATABASE_DSN"`
}

// Config is the resolved run configuration.
type Config struct {
	DSN               string
	Flavor            flavor.Type
	StagingDir        string
	LoadFromDirectory bool
	Roles             []string
	Tables            []TableEntry
}

// Load parses the TOML document at path and applies any environment
// overrides on top of it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runconfig: open %q: %w", path, err)
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) (*Config, error) {
	var doc tomlDocument
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("runconfig: decode: %w", err)
	}

	if doc.Database.DSN == "" {
		return nil, fmt.Errorf("runconfig: database.dsn is required")
	}
	if len(doc.Tables) == 0 {
		return nil, fmt.Errorf("runconfig: at least one table is required")
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("runconfig: environment overrides: %w", err)
	}

	dsn := doc.Database.DSN
	if overrides.DSN != "" {
		dsn = overrides.DSN
	}

	flavorType, err := parseFlavor(doc.Database.Flavor)
	if err != nil {
		return nil, err
	}

	return &Config{
		DSN:               dsn,
		Flavor:            flavorType,
		StagingDir:        doc.Staging.Directory,
		LoadFromDirectory: doc.Staging.LoadFromDirectory,
		Roles:             doc.Roles,
		Tables:            doc.Tables,
	}, nil
}

func parseFlavor(raw string) (flavor.Type, error) {
	switch raw {
	case "", "postgres", "postgresql":
		return flavor.Postgres, nil
	case "redshift":
		return flavor.Redshift, nil
	default:
		return "", fmt.Errorf("runconfig: unsupported flavor %q", raw)
	}
}
