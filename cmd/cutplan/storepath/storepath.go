// Package storepath resolves the cache database location and opens the
// configured storage driver for commands that need the local cache.
package storepath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cutplanco/cutplan/pkg/dotdir"
	"github.com/cutplanco/cutplan/pkg/store"
	"github.com/cutplanco/cutplan/pkg/store/inmemory"
	"github.com/cutplanco/cutplan/pkg/store/postgres"
	"github.com/cutplanco/cutplan/pkg/store/sqlite"
)

// ResolveSQLitePath resolves the SQLite cache path. Precedence: explicit
// override, CUTPLAN_SQLITE, CUTPLAN_DB, then the first existing candidate
// location. When nothing exists yet, the path defaults into the .cutplan
// directory so a first pull can create the database there.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("CUTPLAN_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("CUTPLAN_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", fmt.Errorf("resolving cache dir: %w", err)
	}
	return filepath.Join(target, "cache.db"), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		"cache.db",
		filepath.Join(".cutplan", "cache.db"),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, ".cutplan", "cache.db"),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "cutplan", "cache.db"),
		}, candidates...)
	}

	return candidates
}

// OpenDriver opens the storage driver named by driver. The sqlitePath and
// postgresDSN arguments are consulted only for their respective drivers.
func OpenDriver(ctx context.Context, driver, sqlitePath, postgresDSN, configDir string) (store.Driver, error) {
	switch driver {
	case "sqlite", "":
		path, err := ResolveSQLitePath(sqlitePath, configDir)
		if err != nil {
			return nil, err
		}
		return sqlite.NewDriver(path)
	case "postgres":
		if strings.TrimSpace(postgresDSN) == "" {
			return nil, errors.New("postgres driver requires a connection string; pass --postgres or set storage.postgres_dsn")
		}
		return postgres.NewDriver(ctx, postgresDSN)
	case "memory", "inmemory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", driver)
	}
}
