package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
)

var (
	ErrPlanoNaoEncontrado   = errors.New("plano não encontrado")
	ErrProdutoNaoEncontrado = errors.New("produto não encontrado")
	ErrProdutoInvalido      = errors.New("dados do produto inválidos")
)

// Upload é um arquivo recebido em um formulário.
type Upload struct {
	Nome     string
	Conteudo io.Reader
}

// NovoProduto são os dados do cadastro de produto. PlanoID zero usa o plano padrão.
type NovoProduto struct {
	Nome    string
	PlanoID int64
	Imagem  *Upload
	Arquivo *Upload
}

// MediaStore grava uploads e responde se arquivos existem.
type MediaStore interface {
	MediaChecker
	Save(filename string, r io.Reader) (string, error)
}

// CatalogoService cuida de planos e produtos.
type CatalogoService struct {
	planos   repository.PlanoRepository
	produtos repository.ProdutoRepository
	media    MediaStore
}

func NewCatalogoService(planos repository.PlanoRepository, produtos repository.ProdutoRepository, media MediaStore) *CatalogoService {
	return &CatalogoService{planos: planos, produtos: produtos, media: media}
}

func (s *CatalogoService) ListPlanos(ctx context.Context) ([]domain.Plano, error) {
	return s.planos.GetAll(ctx)
}

// DeletePlano remove o plano. Os produtos do plano são apagados pelo banco.
func (s *CatalogoService) DeletePlano(ctx context.Context, id int64) error {
	plano, err := s.planos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if plano == nil {
		return ErrPlanoNaoEncontrado
	}
	return s.planos.Delete(ctx, id)
}

func (s *CatalogoService) ListProdutos(ctx context.Context) ([]domain.Produto, error) {
	return s.produtos.GetAll(ctx)
}

func (s *CatalogoService) GetProduto(ctx context.Context, id int64) (*domain.Produto, error) {
	produto, err := s.produtos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if produto == nil {
		return nil, ErrProdutoNaoEncontrado
	}
	return produto, nil
}

// CreateProduto cadastra o produto e grava imagem/arquivo no MEDIA_ROOT.
func (s *CatalogoService) CreateProduto(ctx context.Context, novo NovoProduto) (*domain.Produto, error) {
	nome := strings.TrimSpace(novo.Nome)
	if nome == "" {
		return nil, ErrProdutoInvalido
	}

	var (
		plano *domain.Plano
		err   error
	)
	if novo.PlanoID == 0 {
		plano, err = s.planos.GetByNome(ctx, domain.PlanoPadrao)
	} else {
		plano, err = s.planos.GetByID(ctx, novo.PlanoID)
	}
	if err != nil {
		return nil, err
	}
	if plano == nil {
		return nil, ErrPlanoNaoEncontrado
	}

	produto := domain.Produto{Nome: nome, PlanoID: plano.ID}
	if novo.Imagem != nil {
		if produto.Imagem, err = s.media.Save(novo.Imagem.Nome, novo.Imagem.Conteudo); err != nil {
			return nil, err
		}
	}
	if novo.Arquivo != nil {
		if produto.Arquivo, err = s.media.Save(novo.Arquivo.Nome, novo.Arquivo.Conteudo); err != nil {
			return nil, err
		}
	}

	if produto.ID, err = s.produtos.Create(ctx, produto); err != nil {
		return nil, err
	}
	return &produto, nil
}
