package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the load section. Credentials are
// usually supplied this way rather than committed to the YAML file.
const (
	EnvDBHost     = "ETL_DB_HOST"
	EnvDBPort     = "ETL_DB_PORT"
	EnvDBName     = "ETL_DB_NAME"
	EnvDBUser     = "ETL_DB_USER"
	EnvDBPassword = "ETL_DB_PASSWORD"
	EnvDBDSN      = "ETL_DB_DSN"
)

// loadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are not overwritten.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		log.Printf("config: loaded environment from %s", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// ApplyEnv overlays the ETL_DB_* variables onto p.Load. getenv is
// os.Getenv in production and a map lookup in tests. An unparsable port is
// left for validation to report.
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if v := getenv(EnvDBHost); v != "" {
		p.Load.Host = v
	}
	if v := getenv(EnvDBPort); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Load.Port = n
		} else {
			p.Load.Port = -1
		}
	}
	if v := getenv(EnvDBName); v != "" {
		p.Load.DBName = v
	}
	if v := getenv(EnvDBUser); v != "" {
		p.Load.User = v
	}
	if v := getenv(EnvDBPassword); v != "" {
		p.Load.Password = v
	}
	if v := getenv(EnvDBDSN); v != "" {
		p.Load.DSN = v
	}
}
