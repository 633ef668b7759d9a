package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigraEReabre(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teste.db")

	db, err := Open(path)
	require.NoError(t, err)

	var tabelas int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'
		AND name IN ('usuarios', 'planos', 'produtos', 'assinaturas', 'log_downloads')`).Scan(&tabelas)
	require.NoError(t, err)
	assert.Equal(t, 5, tabelas)
	require.NoError(t, db.Close())

	// Segunda abertura não tem migração pendente.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestSchema_Restricoes(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "teste.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO usuarios(username, email, senha_hash, criado_em) VALUES ('ana', 'a@x.com', 'h', '2024-01-01')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO planos(nome, limite_diario) VALUES ('Free', 3)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO produtos(nome, plano_id) VALUES ('P1', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO assinaturas(usuario_id, plano_id, data_inicio, data_fim) VALUES (1, 1, '2024-01-01', '2024-12-31')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO log_downloads(usuario_id, produto_id, data) VALUES (1, 1, '2024-06-01')`)
	require.NoError(t, err)

	t.Run("uma assinatura por usuário", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO assinaturas(usuario_id, plano_id, data_inicio, data_fim) VALUES (1, 1, '2024-01-01', '2024-12-31')`)
		assert.Error(t, err)
	})

	t.Run("username único", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO usuarios(username, email, senha_hash, criado_em) VALUES ('ana', 'b@x.com', 'h', '2024-01-01')`)
		assert.Error(t, err)
	})

	t.Run("limite diário negativo é rejeitado", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO planos(nome, limite_diario) VALUES ('X', -1)`)
		assert.Error(t, err)
	})

	t.Run("remover usuário apaga a assinatura e anula os logs", func(t *testing.T) {
		_, err := db.Exec(`DELETE FROM usuarios WHERE id = 1`)
		require.NoError(t, err)

		var assinaturas int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM assinaturas`).Scan(&assinaturas))
		assert.Zero(t, assinaturas)

		var nulos int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM log_downloads WHERE usuario_id IS NULL`).Scan(&nulos))
		assert.Equal(t, 1, nulos)
	})

	t.Run("remover plano apaga produtos e seus logs", func(t *testing.T) {
		_, err := db.Exec(`DELETE FROM planos WHERE id = 1`)
		require.NoError(t, err)

		var produtos, logs int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM produtos`).Scan(&produtos))
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM log_downloads`).Scan(&logs))
		assert.Zero(t, produtos)
		assert.Zero(t, logs)
	})
}
