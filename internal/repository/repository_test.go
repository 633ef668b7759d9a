package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/go-assinaturas/internal/database"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func data(s string) time.Time {
	t, _ := time.Parse(domain.FormatoData, s)
	return t
}

func TestRepositorios_SQLite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	usuarios := NewSQLiteRepository(db)
	planos := NewPlanoRepository(db)
	produtos := NewProdutoRepository(db)
	assinaturas := NewAssinaturaRepository(db)
	downloads := NewDownloadRepository(db)

	planoID, err := planos.Create(ctx, domain.Plano{Nome: "Basic", PrecoCentavos: 999, LimiteDiario: 10})
	require.NoError(t, err)

	usuarioID, err := usuarios.Create(ctx, domain.Usuario{Username: "ana", Email: "ana@example.com", SenhaHash: "hash"})
	require.NoError(t, err)

	t.Run("usuário por username e email", func(t *testing.T) {
		u, err := usuarios.GetByUsernameEmail(ctx, "ana", "ana@example.com")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, usuarioID, u.ID)
		assert.False(t, u.Admin)
		assert.False(t, u.CriadoEm.IsZero())

		u, err = usuarios.GetByUsernameEmail(ctx, "ana", "outro@example.com")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("username repetido vira ErrDuplicado", func(t *testing.T) {
		_, err := usuarios.Create(ctx, domain.Usuario{Username: "ana", Email: "ana2@example.com", SenhaHash: "hash"})
		assert.ErrorIs(t, err, ErrDuplicado)
	})

	t.Run("plano inexistente devolve nil sem erro", func(t *testing.T) {
		p, err := planos.GetByNome(ctx, "Enterprise")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("produto sem imagem grava NULL", func(t *testing.T) {
		id, err := produtos.Create(ctx, domain.Produto{Nome: "P1", PlanoID: planoID})
		require.NoError(t, err)

		var imagem sql.NullString
		require.NoError(t, db.QueryRow("SELECT imagem FROM produtos WHERE id = ?", id).Scan(&imagem))
		assert.False(t, imagem.Valid)

		require.NoError(t, produtos.UpdateArquivos(ctx, id, "product_images/p1.png", ""))
		p, err := produtos.GetByNomePlano(ctx, "P1", planoID)
		require.NoError(t, err)
		assert.Equal(t, "product_images/p1.png", p.Imagem)
		assert.Empty(t, p.Arquivo)
	})

	t.Run("assinatura grava e lê datas", func(t *testing.T) {
		_, err := assinaturas.Create(ctx, domain.Assinatura{
			UsuarioID: usuarioID, PlanoID: planoID,
			DataInicio: data("2024-01-01"), DataFim: data("2024-12-31"),
		})
		require.NoError(t, err)

		a, err := assinaturas.GetByUsuario(ctx, usuarioID)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, data("2024-01-01"), a.DataInicio)
		assert.Equal(t, data("2024-12-31"), a.DataFim)

		ativas, err := assinaturas.CountAtivasPorPlano(ctx, data("2024-06-15"))
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Basic": 1}, ativas)

		expiradas, err := assinaturas.CountExpiradas(ctx, data("2025-01-01"))
		require.NoError(t, err)
		assert.Equal(t, 1, expiradas)
	})

	t.Run("contagem de downloads por dia", func(t *testing.T) {
		p, err := produtos.GetByNomePlano(ctx, "P1", planoID)
		require.NoError(t, err)

		hoje := data("2024-06-15")
		n, err := downloads.CountByUsuarioData(ctx, usuarioID, hoje)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = downloads.Create(ctx, domain.LogDownload{UsuarioID: usuarioID, ProdutoID: p.ID, Data: hoje})
		require.NoError(t, err)
		_, err = downloads.Create(ctx, domain.LogDownload{UsuarioID: usuarioID, ProdutoID: p.ID, Data: hoje.AddDate(0, 0, -1)})
		require.NoError(t, err)

		n, err = downloads.CountByUsuarioData(ctx, usuarioID, hoje)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("insert com limite para no limite", func(t *testing.T) {
		p, err := produtos.GetByNomePlano(ctx, "P1", planoID)
		require.NoError(t, err)
		dia := data("2024-07-01")
		log := domain.LogDownload{UsuarioID: usuarioID, ProdutoID: p.ID, Data: dia}

		for i := 0; i < 2; i++ {
			ok, err := downloads.CreateWithinLimit(ctx, log, 2)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		ok, err := downloads.CreateWithinLimit(ctx, log, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		n, err := downloads.CountByUsuarioData(ctx, usuarioID, dia)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("remover plano deixa a assinatura sem plano", func(t *testing.T) {
		require.NoError(t, planos.Delete(ctx, planoID))

		a, err := assinaturas.GetByUsuario(ctx, usuarioID)
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.False(t, a.HasPlano())
	})
}

func TestUsuarioRepository_Erros(t *testing.T) {
	ctx := context.Background()

	t.Run("erro do banco é propagado", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM usuarios WHERE id = \?`).
			WithArgs(int64(7)).
			WillReturnError(errors.New("disk I/O error"))

		u, err := NewSQLiteRepository(db).GetByID(ctx, 7)
		assert.Error(t, err)
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sem linhas devolve nil, nil", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM usuarios WHERE username = \?`).
			WithArgs("ninguem").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "senha_hash", "admin", "stripe_customer_id", "criado_em"}))

		u, err := NewSQLiteRepository(db).GetByUsername(ctx, "ninguem")
		assert.NoError(t, err)
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("violação de restrição no insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPrepare(`INSERT INTO usuarios`).
			ExpectExec().
			WillReturnError(errors.New("UNIQUE constraint failed: usuarios.username"))

		_, err = NewSQLiteRepository(db).Create(ctx, domain.Usuario{Username: "ana"})
		assert.ErrorContains(t, err, "UNIQUE constraint failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPlanoRepository_UpdateLimiteDiario_Erro(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE planos SET limite_diario = \? WHERE id = \?`).
		WithArgs(10, int64(2)).
		WillReturnError(sql.ErrConnDone)

	err = NewPlanoRepository(db).UpdateLimiteDiario(context.Background(), 2, 10)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
