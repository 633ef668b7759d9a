package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

// AssinaturaRepository define a persistência das assinaturas (uma por usuário).
type AssinaturaRepository interface {
	Create(ctx context.Context, assinatura domain.Assinatura) (int64, error)
	GetByUsuario(ctx context.Context, usuarioID int64) (*domain.Assinatura, error)
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*domain.Assinatura, error)
	Update(ctx context.Context, assinatura domain.Assinatura) error
	CountAtivasPorPlano(ctx context.Context, hoje time.Time) (map[string]int, error)
	CountExpiradas(ctx context.Context, hoje time.Time) (int, error)
}

type sqliteAssinaturaRepository struct {
	db *sql.DB
}

func NewAssinaturaRepository(db *sql.DB) AssinaturaRepository {
	return &sqliteAssinaturaRepository{db: db}
}

const assinaturaColunas = "id, usuario_id, plano_id, stripe_subscription_id, data_inicio, data_fim"

func (r *sqliteAssinaturaRepository) Create(ctx context.Context, a domain.Assinatura) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO assinaturas(usuario_id, plano_id, stripe_subscription_id, data_inicio, data_fim) VALUES(?, ?, ?, ?, ?)",
		a.UsuarioID, nullInt64(a.PlanoID), nullString(a.StripeSubscriptionID), formatData(a.DataInicio), formatData(a.DataFim))
	if err != nil {
		return 0, fmt.Errorf("inserindo assinatura do usuário %d: %w", a.UsuarioID, err)
	}
	return res.LastInsertId()
}

func (r *sqliteAssinaturaRepository) GetByUsuario(ctx context.Context, usuarioID int64) (*domain.Assinatura, error) {
	return r.getOne(ctx, "SELECT "+assinaturaColunas+" FROM assinaturas WHERE usuario_id = ?", usuarioID)
}

func (r *sqliteAssinaturaRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*domain.Assinatura, error) {
	return r.getOne(ctx, "SELECT "+assinaturaColunas+" FROM assinaturas WHERE stripe_subscription_id = ?", stripeSubscriptionID)
}

func (r *sqliteAssinaturaRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Assinatura, error) {
	a, err := scanAssinatura(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Update sobrescreve plano, ID da Stripe e datas da assinatura.
func (r *sqliteAssinaturaRepository) Update(ctx context.Context, a domain.Assinatura) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE assinaturas SET plano_id = ?, stripe_subscription_id = ?, data_inicio = ?, data_fim = ? WHERE id = ?",
		nullInt64(a.PlanoID), nullString(a.StripeSubscriptionID), formatData(a.DataInicio), formatData(a.DataFim), a.ID)
	if err != nil {
		return fmt.Errorf("atualizando assinatura %d: %w", a.ID, err)
	}
	return nil
}

// CountAtivasPorPlano conta as assinaturas ativas em hoje, agrupadas pelo nome do plano.
func (r *sqliteAssinaturaRepository) CountAtivasPorPlano(ctx context.Context, hoje time.Time) (map[string]int, error) {
	h := formatData(hoje)
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.nome, COUNT(*)
		FROM assinaturas a
		JOIN planos p ON p.id = a.plano_id
		WHERE a.data_inicio <= ? AND a.data_fim >= ?
		GROUP BY p.nome`, h, h)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contagem := make(map[string]int)
	for rows.Next() {
		var (
			nome string
			n    int
		)
		if err := rows.Scan(&nome, &n); err != nil {
			return nil, err
		}
		contagem[nome] += n
	}
	return contagem, rows.Err()
}

func (r *sqliteAssinaturaRepository) CountExpiradas(ctx context.Context, hoje time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assinaturas WHERE data_fim < ?", formatData(hoje)).Scan(&n)
	return n, err
}

func scanAssinatura(row scanner) (*domain.Assinatura, error) {
	var (
		a           domain.Assinatura
		planoID     sql.NullInt64
		stripeID    sql.NullString
		inicio, fim string
	)
	if err := row.Scan(&a.ID, &a.UsuarioID, &planoID, &stripeID, &inicio, &fim); err != nil {
		return nil, err
	}
	a.PlanoID = planoID.Int64
	a.StripeSubscriptionID = stripeID.String

	var err error
	if a.DataInicio, err = parseData(inicio); err != nil {
		return nil, err
	}
	if a.DataFim, err = parseData(fim); err != nil {
		return nil, err
	}
	return &a, nil
}
