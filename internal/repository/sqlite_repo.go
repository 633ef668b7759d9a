package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/willjrcristo/go-assinaturas/internal/domain" // Importa as nossas structs
)

// UsuarioRepository define a interface para as operações de persistência de usuários.
// Usar uma interface nos permite 'mockar' o repositório em testes e trocar a implementação do banco de dados facilmente.
type UsuarioRepository interface {
	Create(ctx context.Context, usuario domain.Usuario) (int64, error)
	GetAll(ctx context.Context) ([]domain.Usuario, error)
	GetByID(ctx context.Context, id int64) (*domain.Usuario, error)
	GetByUsername(ctx context.Context, username string) (*domain.Usuario, error)
	GetByUsernameEmail(ctx context.Context, username, email string) (*domain.Usuario, error)
	GetByStripeID(ctx context.Context, stripeCustomerID string) (*domain.Usuario, error)
	UpdateStripeCustomerID(ctx context.Context, id int64, stripeCustomerID string) error
	Delete(ctx context.Context, id int64) error
}

// sqliteRepository é a implementação do UsuarioRepository para SQLite.
// Ela precisa de uma conexão com o banco de dados (*sql.DB) para funcionar.
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository é uma "fábrica" que cria uma nova instância do nosso repositório.
// É assim que vamos injetar a dependência do banco de dados no nosso repositório.
func NewSQLiteRepository(db *sql.DB) UsuarioRepository {
	return &sqliteRepository{
		db: db,
	}
}

const usuarioColunas = "id, username, email, senha_hash, admin, stripe_customer_id, criado_em"

// --- MÉTODOS DA IMPLEMENTAÇÃO ---

func (r *sqliteRepository) Create(ctx context.Context, usuario domain.Usuario) (int64, error) {
	stmt, err := r.db.PrepareContext(ctx, "INSERT INTO usuarios(username, email, senha_hash, admin, stripe_customer_id, criado_em) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	criadoEm := usuario.CriadoEm
	if criadoEm.IsZero() {
		criadoEm = time.Now()
	}
	res, err := stmt.ExecContext(ctx, usuario.Username, usuario.Email, usuario.SenhaHash,
		usuario.Admin, nullString(usuario.StripeCustomerID), criadoEm.UTC().Format(time.RFC3339))
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("inserindo usuário %q: %w", usuario.Username, ErrDuplicado)
	}
	if err != nil {
		return 0, fmt.Errorf("inserindo usuário %q: %w", usuario.Username, err)
	}

	return res.LastInsertId()
}

func (r *sqliteRepository) GetAll(ctx context.Context) ([]domain.Usuario, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+usuarioColunas+" FROM usuarios ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []domain.Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *u)
	}

	return usuarios, rows.Err()
}

func (r *sqliteRepository) GetByID(ctx context.Context, id int64) (*domain.Usuario, error) {
	return r.getOne(ctx, "SELECT "+usuarioColunas+" FROM usuarios WHERE id = ?", id)
}

func (r *sqliteRepository) GetByUsername(ctx context.Context, username string) (*domain.Usuario, error) {
	return r.getOne(ctx, "SELECT "+usuarioColunas+" FROM usuarios WHERE username = ?", username)
}

func (r *sqliteRepository) GetByUsernameEmail(ctx context.Context, username, email string) (*domain.Usuario, error) {
	return r.getOne(ctx, "SELECT "+usuarioColunas+" FROM usuarios WHERE username = ? AND email = ?", username, email)
}

func (r *sqliteRepository) GetByStripeID(ctx context.Context, stripeCustomerID string) (*domain.Usuario, error) {
	return r.getOne(ctx, "SELECT "+usuarioColunas+" FROM usuarios WHERE stripe_customer_id = ?", stripeCustomerID)
}

func (r *sqliteRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Usuario, error) {
	u, err := scanUsuario(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		// O erro 'sql.ErrNoRows' é tratado separadamente.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Retorna nil, nil se o usuário não for encontrado.
		}
		return nil, err
	}
	return u, nil
}

func (r *sqliteRepository) UpdateStripeCustomerID(ctx context.Context, id int64, stripeCustomerID string) error {
	stmt, err := r.db.PrepareContext(ctx, "UPDATE usuarios SET stripe_customer_id = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, nullString(stripeCustomerID), id)
	return err
}

// Delete remove o usuário. O banco apaga a assinatura e anula os logs de download.
func (r *sqliteRepository) Delete(ctx context.Context, id int64) error {
	stmt, err := r.db.PrepareContext(ctx, "DELETE FROM usuarios WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, id)
	return err
}

func scanUsuario(row scanner) (*domain.Usuario, error) {
	var (
		u        domain.Usuario
		stripeID sql.NullString
		criadoEm string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.SenhaHash, &u.Admin, &stripeID, &criadoEm); err != nil {
		return nil, err
	}
	u.StripeCustomerID = stripeID.String
	if t, err := time.Parse(time.RFC3339, criadoEm); err == nil {
		u.CriadoEm = t
	}
	return &u, nil
}
