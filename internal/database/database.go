// Package database abre a conexão SQLite e aplica as migrações do schema.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open abre o banco em filepath, liga as chaves estrangeiras e aplica as migrações.
// Sem foreign_keys=on o SQLite ignora os ON DELETE CASCADE / SET NULL.
func Open(filepath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(filepath))
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err = Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(filepath string) string {
	return filepath + "?_foreign_keys=on&_busy_timeout=5000"
}

// Migrate aplica todas as migrações pendentes. Rodar de novo sem mudanças não é erro.
func Migrate(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("abrindo migrações: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("driver de migração: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("preparando migrações: %w", err)
	}
	// m.Close() fecharia também o *sql.DB, que continua em uso pela aplicação.

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Debug("Schema já está atualizado")
			return nil
		}
		return fmt.Errorf("aplicando migrações: %w", err)
	}

	version, _, _ := m.Version()
	slog.Info("Migrações aplicadas", "versao", version)
	return nil
}
