package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/mail"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
)

// Erros de negócio relacionados a usuários.
var (
	ErrUsuarioNaoEncontrado = errors.New("usuário não encontrado")
	ErrDadosInvalidos       = errors.New("dados do usuário inválidos")
	ErrUsernameEmUso        = errors.New("username já está em uso")
	ErrCredenciaisInvalidas = errors.New("usuário ou senha inválidos")
	ErrSenhaCurta           = errors.New("a senha deve ter pelo menos 8 caracteres")
)

// Clock devolve o instante atual. Os testes fixam "hoje" trocando o relógio.
type Clock func() time.Time

// DuracaoAssinatura é o período de uma assinatura nova (um ano).
const DuracaoAssinatura = 365 * 24 * time.Hour

const tamanhoMinimoSenha = 8

// UsuarioService encapsula a lógica de negócio para usuários.
type UsuarioService struct {
	repo        repository.UsuarioRepository
	planos      repository.PlanoRepository
	assinaturas repository.AssinaturaRepository
	mailer      mail.Sender
	now         Clock
}

// NewUsuarioService cria uma nova instância do UsuarioService.
func NewUsuarioService(repo repository.UsuarioRepository, planos repository.PlanoRepository,
	assinaturas repository.AssinaturaRepository, mailer mail.Sender) *UsuarioService {
	return &UsuarioService{
		repo:        repo,
		planos:      planos,
		assinaturas: assinaturas,
		mailer:      mailer,
		now:         time.Now,
	}
}

// Register cria um usuário comum com assinatura do plano padrão por um ano.
func (s *UsuarioService) Register(ctx context.Context, username, email, senha string) (*domain.Usuario, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || !strings.Contains(email, "@") {
		return nil, ErrDadosInvalidos
	}
	if len(senha) < tamanhoMinimoSenha {
		return nil, ErrSenhaCurta
	}

	existente, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, ErrUsernameEmUso
	}

	hash, err := auth.HashPassword(senha)
	if err != nil {
		return nil, err
	}
	usuario := domain.Usuario{Username: username, Email: email, SenhaHash: hash, CriadoEm: s.now()}
	if usuario.ID, err = s.repo.Create(ctx, usuario); err != nil {
		// Outro cadastro com o mesmo username pode ter passado entre a consulta e o insert.
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrUsernameEmUso
		}
		return nil, err
	}

	plano, err := s.planos.GetByNome(ctx, domain.PlanoPadrao)
	if err != nil {
		return nil, err
	}
	if plano != nil {
		hoje := domain.Data(s.now())
		_, err := s.assinaturas.Create(ctx, domain.Assinatura{
			UsuarioID:  usuario.ID,
			PlanoID:    plano.ID,
			DataInicio: hoje,
			DataFim:    hoje.Add(DuracaoAssinatura),
		})
		if err != nil {
			return nil, err
		}
	} else {
		slog.Warn("Plano padrão não existe, usuário criado sem assinatura", "plano", domain.PlanoPadrao)
	}

	// Falha no e-mail não desfaz o cadastro.
	if err := s.mailer.Send(ctx, mail.Mensagem{
		Para:    usuario.Email,
		Assunto: "Bem-vindo!",
		Corpo:   fmt.Sprintf("Olá %s, sua conta foi criada no plano %s.", usuario.Username, domain.PlanoPadrao),
	}); err != nil {
		slog.Error("Falha ao enviar e-mail de boas-vindas", "usuario_id", usuario.ID, "error", err)
	}

	return &usuario, nil
}

// Authenticate confere username e senha.
func (s *UsuarioService) Authenticate(ctx context.Context, username, senha string) (*domain.Usuario, error) {
	usuario, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if usuario == nil || !auth.CheckPassword(usuario.SenhaHash, senha) {
		return nil, ErrCredenciaisInvalidas
	}
	return usuario, nil
}

func (s *UsuarioService) GetUserByID(ctx context.Context, id int64) (*domain.Usuario, error) {
	usuario, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, ErrUsuarioNaoEncontrado
	}
	return usuario, nil
}

func (s *UsuarioService) GetAllUsers(ctx context.Context) ([]domain.Usuario, error) {
	return s.repo.GetAll(ctx)
}

// DeleteUser remove o usuário; a assinatura vai junto e os logs ficam sem usuário.
func (s *UsuarioService) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
