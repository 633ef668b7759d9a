package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

// ErrDuplicado indica violação de uma restrição UNIQUE.
var ErrDuplicado = errors.New("registro duplicado")

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// scanner cobre *sql.Row e *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullString grava "" como NULL, que é como o banco representa "sem valor".
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func formatData(t time.Time) string {
	return domain.Data(t).Format(domain.FormatoData)
}

func parseData(s string) (time.Time, error) {
	t, err := time.Parse(domain.FormatoData, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("data inválida no banco %q: %w", s, err)
	}
	return t, nil
}
