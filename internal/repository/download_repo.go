package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

// DownloadRepository registra downloads e conta o consumo diário.
type DownloadRepository interface {
	Create(ctx context.Context, log domain.LogDownload) (int64, error)
	// CreateWithinLimit só grava se o usuário tiver menos de limite downloads na data do log.
	// Devolve false quando o limite já foi atingido.
	CreateWithinLimit(ctx context.Context, log domain.LogDownload, limite int) (bool, error)
	CountByUsuarioData(ctx context.Context, usuarioID int64, data time.Time) (int, error)
}

type sqliteDownloadRepository struct {
	db *sql.DB
}

func NewDownloadRepository(db *sql.DB) DownloadRepository {
	return &sqliteDownloadRepository{db: db}
}

func (r *sqliteDownloadRepository) Create(ctx context.Context, log domain.LogDownload) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO log_downloads(usuario_id, produto_id, data) VALUES(?, ?, ?)",
		nullInt64(log.UsuarioID), log.ProdutoID, formatData(log.Data))
	if err != nil {
		return 0, fmt.Errorf("registrando download do produto %d: %w", log.ProdutoID, err)
	}
	return res.LastInsertId()
}

// A contagem e o insert ficam no mesmo statement: o SQLite pega o lock de escrita
// antes de ler, então requisições simultâneas não passam do limite.
func (r *sqliteDownloadRepository) CreateWithinLimit(ctx context.Context, log domain.LogDownload, limite int) (bool, error) {
	data := formatData(log.Data)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO log_downloads(usuario_id, produto_id, data)
		SELECT ?, ?, ?
		WHERE (SELECT COUNT(*) FROM log_downloads WHERE usuario_id = ? AND data = ?) < ?`,
		log.UsuarioID, log.ProdutoID, data, log.UsuarioID, data, limite)
	if err != nil {
		return false, fmt.Errorf("registrando download do produto %d: %w", log.ProdutoID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sqliteDownloadRepository) CountByUsuarioData(ctx context.Context, usuarioID int64, data time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM log_downloads WHERE usuario_id = ? AND data = ?",
		usuarioID, formatData(data)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("contando downloads do usuário %d: %w", usuarioID, err)
	}
	return n, nil
}
