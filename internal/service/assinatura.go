package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/repository"
)

// Erros de negócio relacionados à assinatura e aos downloads.
var (
	ErrSemAssinatura        = errors.New("usuário não possui assinatura")
	ErrAssinaturaInativa    = errors.New("assinatura fora do período de vigência")
	ErrLimiteDiarioAtingido = errors.New("limite diário de downloads atingido")
	ErrPlanoInsuficiente    = errors.New("produto não incluído no plano do usuário")
	ErrArquivoIndisponivel  = errors.New("produto sem arquivo para download")
)

// downloads_total conta os downloads liberados, por plano do produto.
var downloadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "downloads_total",
		Help: "Número total de downloads liberados.",
	},
	[]string{"plano"},
)

// StatusAssinatura é a visão da assinatura calculada no momento da consulta.
type StatusAssinatura struct {
	Plano         *domain.Plano `json:"plano"`
	DataInicio    time.Time     `json:"data_inicio"`
	DataFim       time.Time     `json:"data_fim"`
	Ativa         bool          `json:"ativa"`
	DownloadsHoje int           `json:"downloads_hoje"`
	LimiteDiario  int           `json:"limite_diario"`
	PagaEsteMes   bool          `json:"paga_este_mes"`
}

// AssinaturaService responde as consultas de direito de uso e libera downloads.
// Nada é cacheado: cada chamada relê o banco.
type AssinaturaService struct {
	assinaturas repository.AssinaturaRepository
	planos      repository.PlanoRepository
	produtos    repository.ProdutoRepository
	downloads   repository.DownloadRepository
	media       MediaChecker
	now         Clock
}

func NewAssinaturaService(assinaturas repository.AssinaturaRepository, planos repository.PlanoRepository,
	produtos repository.ProdutoRepository, downloads repository.DownloadRepository, media MediaChecker) *AssinaturaService {
	return &AssinaturaService{
		assinaturas: assinaturas,
		planos:      planos,
		produtos:    produtos,
		downloads:   downloads,
		media:       media,
		now:         time.Now,
	}
}

// DownloadsToday conta os downloads do usuário na data de hoje.
func (s *AssinaturaService) DownloadsToday(ctx context.Context, usuarioID int64) (int, error) {
	return s.downloads.CountByUsuarioData(ctx, usuarioID, s.now())
}

func (s *AssinaturaService) Status(ctx context.Context, usuarioID int64) (*StatusAssinatura, error) {
	assinatura, err := s.assinaturas.GetByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if assinatura == nil {
		return nil, ErrSemAssinatura
	}

	hoje := s.now()
	status := &StatusAssinatura{
		DataInicio:  assinatura.DataInicio,
		DataFim:     assinatura.DataFim,
		Ativa:       assinatura.IsActive(hoje),
		PagaEsteMes: assinatura.PaidThisMonth(hoje),
	}
	if assinatura.HasPlano() {
		if status.Plano, err = s.planos.GetByID(ctx, assinatura.PlanoID); err != nil {
			return nil, err
		}
		if status.Plano != nil {
			status.LimiteDiario = status.Plano.LimiteDiario
		}
	}
	if status.DownloadsHoje, err = s.DownloadsToday(ctx, usuarioID); err != nil {
		return nil, err
	}
	return status, nil
}

// Download verifica o direito de uso, registra o download e devolve o produto.
// O usuário precisa de assinatura ativa com plano, o plano do produto não pode
// custar mais que o do usuário e o limite diário não pode ter sido atingido.
func (s *AssinaturaService) Download(ctx context.Context, usuarioID, produtoID int64) (*domain.Produto, error) {
	produto, err := s.produtos.GetByID(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	if produto == nil {
		return nil, ErrProdutoNaoEncontrado
	}
	if produto.Arquivo == "" || !s.media.Exists(produto.Arquivo) {
		return nil, ErrArquivoIndisponivel
	}

	assinatura, err := s.assinaturas.GetByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if assinatura == nil || !assinatura.HasPlano() {
		return nil, ErrSemAssinatura
	}
	hoje := s.now()
	if !assinatura.IsActive(hoje) {
		return nil, ErrAssinaturaInativa
	}

	planoUsuario, err := s.planos.GetByID(ctx, assinatura.PlanoID)
	if err != nil {
		return nil, err
	}
	planoProduto, err := s.planos.GetByID(ctx, produto.PlanoID)
	if err != nil {
		return nil, err
	}
	if planoUsuario == nil {
		return nil, ErrSemAssinatura
	}
	if planoProduto == nil || planoProduto.PrecoCentavos > planoUsuario.PrecoCentavos {
		return nil, ErrPlanoInsuficiente
	}

	registrado, err := s.downloads.CreateWithinLimit(ctx, domain.LogDownload{
		UsuarioID: usuarioID,
		ProdutoID: produto.ID,
		Data:      hoje,
	}, planoUsuario.LimiteDiario)
	if err != nil {
		return nil, err
	}
	if !registrado {
		return nil, ErrLimiteDiarioAtingido
	}

	downloadsTotal.WithLabelValues(planoProduto.Nome).Inc()
	slog.Info("Download liberado", "usuario_id", usuarioID, "produto_id", produto.ID, "limite_diario", planoUsuario.LimiteDiario)
	return produto, nil
}
