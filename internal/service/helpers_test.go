package service

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/willjrcristo/go-assinaturas/internal/database"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/mail"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
)

type testStore struct {
	db          *sql.DB
	usuarios    repository.UsuarioRepository
	planos      repository.PlanoRepository
	produtos    repository.ProdutoRepository
	assinaturas repository.AssinaturaRepository
	downloads   repository.DownloadRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testStore{
		db:          db,
		usuarios:    repository.NewSQLiteRepository(db),
		planos:      repository.NewPlanoRepository(db),
		produtos:    repository.NewProdutoRepository(db),
		assinaturas: repository.NewAssinaturaRepository(db),
		downloads:   repository.NewDownloadRepository(db),
	}
}

func (s *testStore) count(t *testing.T, tabela string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+tabela).Scan(&n))
	return n
}

func fixedClock(dia string) Clock {
	t, err := time.Parse(domain.FormatoData, dia)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}

// hashRapido evita o custo padrão do bcrypt nos testes.
func hashRapido(senha string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.MinCost)
	return string(b), err
}

// fakeMedia considera existentes só os caminhos cadastrados.
type fakeMedia struct {
	existentes map[string]bool
	salvos     []string
}

func (f *fakeMedia) Exists(rel string) bool { return f.existentes[rel] }

func (f *fakeMedia) Save(filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	rel := "uploads/images/" + filename
	f.salvos = append(f.salvos, rel)
	return rel, nil
}

// recordingMailer guarda os e-mails enviados.
type recordingMailer struct {
	mu    sync.Mutex
	sent  []mail.Mensagem
	falha error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Mensagem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.falha
}
