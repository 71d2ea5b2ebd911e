// Package migrations содержит встроенные SQL миграции схемы
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var migrationsFS embed.FS

// ErrMigrate возвращается при ошибке применения миграций
var ErrMigrate = errors.New("migrations: failed to apply migrations")

// Up применяет все встроенные миграции к базе данных.
// Отсутствие изменений ошибкой не считается.
func Up(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: up: %v", ErrMigrate, err)
	}

	return nil
}

// Down откатывает все миграции
func Down(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: down: %v", ErrMigrate, err)
	}

	return nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: create driver: %v", ErrMigrate, err)
	}

	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: create source: %v", ErrMigrate, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", ErrMigrate, err)
	}

	return m, nil
}
