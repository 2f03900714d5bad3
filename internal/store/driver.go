package store

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported DATABASE_DRIVER values
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DriverFactory opens a gorm dialector for a DSN
type DriverFactory func(dsn string) gorm.Dialector

var driverFactories = map[string]DriverFactory{
	DriverSQLite:   sqlite.Open,
	DriverPostgres: postgres.Open,
}

// GetDialector returns the dialector registered under driver
func GetDialector(driver, dsn string) (gorm.Dialector, error) {
	factory, ok := driverFactories[driver]
	if !ok {
		return nil, fmt.Errorf(
			"unsupported database driver: %q (available: %s)",
			driver, strings.Join(Drivers(), ", "),
		)
	}
	return factory(dsn), nil
}

// RegisterDriver adds or replaces a driver, mainly for tests
func RegisterDriver(name string, factory DriverFactory) {
	driverFactories[name] = factory
}

// Drivers lists registered driver names in sorted order
func Drivers() []string {
	names := make([]string, 0, len(driverFactories))
	for name := range driverFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isMemorySQLite reports whether every new connection would open a fresh database
func isMemorySQLite(driver, dsn string) bool {
	return driver == DriverSQLite && (dsn == ":memory:" || strings.Contains(dsn, "mode=memory"))
}
