package migrate

import (
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/modules/bcmr/database/postgresql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const bcmrMigrationTable = "bcmr_schema_migrations"

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

func parseDatabaseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, errors.New("--database is required")
	}
	databaseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}
	return databaseURL, nil
}

// newMigrate creates a Migrate instance on the BCMR migrations table. An empty sourcePath uses the
// migrations embedded in the binary.
func newMigrate(databaseURL *url.URL, sourcePath string) (*migrate.Migrate, error) {
	newDatabaseURL := cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {bcmrMigrationTable}})

	var (
		m   *migrate.Migrate
		err error
	)
	if sourcePath != "" {
		m, err = migrate.New("file://"+sourcePath, newDatabaseURL.String())
	} else {
		source, serr := iofs.New(postgresql.Migrations, postgresql.MigrationsDir)
		if serr != nil {
			return nil, errors.Wrap(serr, "failed to open embedded migrations")
		}
		m, err = migrate.NewWithSourceInstance("iofs", source, newDatabaseURL.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Migrate instance")
	}
	m.Log = &consoleLogger{
		prefix: fmt.Sprintf("[%s] ", "BCMR"),
	}
	return m, nil
}
