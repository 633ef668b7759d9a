package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
)

// PlanoSeed, ProdutoSeed e UsuarioSeed descrevem o estado desejado de cada registro.
type PlanoSeed struct {
	Nome          string
	PrecoCentavos int64
	LimiteDiario  int
}

type ProdutoSeed struct {
	Nome    string
	Plano   string
	Imagem  string // relativo ao MEDIA_ROOT
	Arquivo string
}

type UsuarioSeed struct {
	Username string
	Email    string
	Senha    string
	Plano    string
}

type SeedData struct {
	Planos   []PlanoSeed
	Produtos []ProdutoSeed
	Usuarios []UsuarioSeed
	Admin    UsuarioSeed
}

// DefaultSeedData são os dados base de desenvolvimento.
func DefaultSeedData() SeedData {
	return SeedData{
		Planos: []PlanoSeed{
			{Nome: "Free", PrecoCentavos: 0, LimiteDiario: 3},
			{Nome: "Basic", PrecoCentavos: 999, LimiteDiario: 10},
			{Nome: "Pro", PrecoCentavos: 2999, LimiteDiario: 100},
		},
		Produtos: []ProdutoSeed{
			{Nome: "Free Product 1", Plano: "Free", Imagem: "product_images/free1.png", Arquivo: "product_files/free1.pdf"},
			{Nome: "Basic Product 1", Plano: "Basic", Imagem: "product_images/basic1.png", Arquivo: "product_files/basic1.pdf"},
			{Nome: "Pro Product 1", Plano: "Pro", Imagem: "product_images/pro1.png", Arquivo: "product_files/pro1.pdf"},
		},
		Usuarios: []UsuarioSeed{
			{Username: "freeuser", Email: "free@example.com", Senha: "free123", Plano: "Free"},
			{Username: "basicuser", Email: "basic@example.com", Senha: "basic123", Plano: "Basic"},
			{Username: "prouser", Email: "pro@example.com", Senha: "pro123", Plano: "Pro"},
		},
		Admin: UsuarioSeed{Username: "admin", Email: "admin@example.com", Senha: "admin123"},
	}
}

// SeedReport resume o que uma execução criou ou alterou.
type SeedReport struct {
	PlanosCriados, PlanosAtualizados           int
	ProdutosCriados, ProdutosAtualizados       int
	UsuariosCriados                            int
	AssinaturasCriadas, AssinaturasAtualizadas int
	AdminCriado                                bool
}

// MediaChecker diz se um arquivo existe no MEDIA_ROOT.
type MediaChecker interface {
	Exists(rel string) bool
}

// Seeder cria ou reconcilia os registros base sem duplicar nada em execuções repetidas.
// Qualquer erro de persistência interrompe a execução; o que já foi gravado fica.
type Seeder struct {
	usuarios    repository.UsuarioRepository
	planos      repository.PlanoRepository
	produtos    repository.ProdutoRepository
	assinaturas repository.AssinaturaRepository
	media       MediaChecker
	now         Clock
	hashSenha   func(string) (string, error)
}

func NewSeeder(usuarios repository.UsuarioRepository, planos repository.PlanoRepository,
	produtos repository.ProdutoRepository, assinaturas repository.AssinaturaRepository, media MediaChecker) *Seeder {
	return &Seeder{
		usuarios:    usuarios,
		planos:      planos,
		produtos:    produtos,
		assinaturas: assinaturas,
		media:       media,
		now:         time.Now,
		hashSenha:   auth.HashPassword,
	}
}

func (s *Seeder) Run(ctx context.Context, data SeedData) (SeedReport, error) {
	var rep SeedReport

	planos, err := s.seedPlanos(ctx, data.Planos, &rep)
	if err != nil {
		return rep, err
	}
	slog.Info("✅ Planos de assinatura criados/atualizados.", "criados", rep.PlanosCriados, "atualizados", rep.PlanosAtualizados)

	if err := s.seedProdutos(ctx, data.Produtos, planos, &rep); err != nil {
		return rep, err
	}
	slog.Info("✅ Produtos criados/atualizados.", "criados", rep.ProdutosCriados, "atualizados", rep.ProdutosAtualizados)

	if err := s.seedUsuarios(ctx, data.Usuarios, planos, &rep); err != nil {
		return rep, err
	}
	slog.Info("✅ Usuários e assinaturas criados/atualizados.", "usuarios", rep.UsuariosCriados,
		"assinaturas_criadas", rep.AssinaturasCriadas, "assinaturas_atualizadas", rep.AssinaturasAtualizadas)

	if rep.AdminCriado, err = s.seedAdmin(ctx, data.Admin); err != nil {
		return rep, err
	}
	if rep.AdminCriado {
		slog.Info("✅ Superusuário criado.", "username", data.Admin.Username)
	} else {
		slog.Info("ℹ️ Superusuário já existe.", "username", data.Admin.Username)
	}

	return rep, nil
}

func (s *Seeder) seedPlanos(ctx context.Context, seeds []PlanoSeed, rep *SeedReport) (map[string]domain.Plano, error) {
	planos := make(map[string]domain.Plano, len(seeds))
	for _, ps := range seeds {
		plano, err := s.planos.GetByNome(ctx, ps.Nome)
		if err != nil {
			return nil, fmt.Errorf("buscando plano %q: %w", ps.Nome, err)
		}

		if plano == nil {
			plano = &domain.Plano{Nome: ps.Nome, PrecoCentavos: ps.PrecoCentavos, LimiteDiario: ps.LimiteDiario}
			if plano.ID, err = s.planos.Create(ctx, *plano); err != nil {
				return nil, err
			}
			rep.PlanosCriados++
		} else if plano.LimiteDiario != ps.LimiteDiario {
			if err := s.planos.UpdateLimiteDiario(ctx, plano.ID, ps.LimiteDiario); err != nil {
				return nil, err
			}
			plano.LimiteDiario = ps.LimiteDiario
			rep.PlanosAtualizados++
		}
		planos[plano.Nome] = *plano
	}
	return planos, nil
}

func (s *Seeder) seedProdutos(ctx context.Context, seeds []ProdutoSeed, planos map[string]domain.Plano, rep *SeedReport) error {
	for _, ps := range seeds {
		plano, ok := planos[ps.Plano]
		if !ok {
			return fmt.Errorf("produto %q referencia plano desconhecido %q", ps.Nome, ps.Plano)
		}

		produto, err := s.produtos.GetByNomePlano(ctx, ps.Nome, plano.ID)
		if err != nil {
			return fmt.Errorf("buscando produto %q: %w", ps.Nome, err)
		}
		if produto == nil {
			produto = &domain.Produto{Nome: ps.Nome, PlanoID: plano.ID}
			if produto.ID, err = s.produtos.Create(ctx, *produto); err != nil {
				return err
			}
			rep.ProdutosCriados++
		}

		// Arquivos ausentes no disco são ignorados: o produto fica sem imagem/arquivo.
		imagem, arquivo := produto.Imagem, produto.Arquivo
		if s.media.Exists(ps.Imagem) && imagem != ps.Imagem {
			imagem = ps.Imagem
		}
		if s.media.Exists(ps.Arquivo) && arquivo != ps.Arquivo {
			arquivo = ps.Arquivo
		}
		if imagem != produto.Imagem || arquivo != produto.Arquivo {
			if err := s.produtos.UpdateArquivos(ctx, produto.ID, imagem, arquivo); err != nil {
				return err
			}
			rep.ProdutosAtualizados++
		}
	}
	return nil
}

func (s *Seeder) seedUsuarios(ctx context.Context, seeds []UsuarioSeed, planos map[string]domain.Plano, rep *SeedReport) error {
	for _, us := range seeds {
		plano, ok := planos[us.Plano]
		if !ok {
			return fmt.Errorf("usuário %q referencia plano desconhecido %q", us.Username, us.Plano)
		}

		usuario, err := s.usuarios.GetByUsernameEmail(ctx, us.Username, us.Email)
		if err != nil {
			return fmt.Errorf("buscando usuário %q: %w", us.Username, err)
		}
		if usuario == nil {
			if usuario, err = s.createUsuario(ctx, us, false); err != nil {
				return err
			}
			rep.UsuariosCriados++
		}

		inicio := domain.Data(s.now())
		fim := inicio.Add(DuracaoAssinatura)

		assinatura, err := s.assinaturas.GetByUsuario(ctx, usuario.ID)
		if err != nil {
			return fmt.Errorf("buscando assinatura de %q: %w", us.Username, err)
		}
		if assinatura == nil {
			_, err := s.assinaturas.Create(ctx, domain.Assinatura{
				UsuarioID: usuario.ID, PlanoID: plano.ID, DataInicio: inicio, DataFim: fim,
			})
			if err != nil {
				return err
			}
			rep.AssinaturasCriadas++
			continue
		}

		// Assinatura existente: plano e datas são sempre sobrescritos.
		assinatura.PlanoID = plano.ID
		assinatura.DataInicio = inicio
		assinatura.DataFim = fim
		if err := s.assinaturas.Update(ctx, *assinatura); err != nil {
			return err
		}
		rep.AssinaturasAtualizadas++
	}
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin UsuarioSeed) (bool, error) {
	existente, err := s.usuarios.GetByUsername(ctx, admin.Username)
	if err != nil {
		return false, fmt.Errorf("buscando superusuário: %w", err)
	}
	if existente != nil {
		return false, nil
	}
	if _, err := s.createUsuario(ctx, admin, true); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) createUsuario(ctx context.Context, us UsuarioSeed, admin bool) (*domain.Usuario, error) {
	hash, err := s.hashSenha(us.Senha)
	if err != nil {
		return nil, fmt.Errorf("hash da senha de %q: %w", us.Username, err)
	}
	usuario := domain.Usuario{Username: us.Username, Email: us.Email, SenhaHash: hash, Admin: admin, CriadoEm: s.now()}
	if usuario.ID, err = s.usuarios.Create(ctx, usuario); err != nil {
		return nil, err
	}
	return &usuario, nil
}
