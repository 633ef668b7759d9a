package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

const maxUploadBytes = 32 << 20

type CatalogoService interface {
	ListPlanos(ctx context.Context) ([]domain.Plano, error)
	DeletePlano(ctx context.Context, id int64) error
	ListProdutos(ctx context.Context) ([]domain.Produto, error)
	GetProduto(ctx context.Context, id int64) (*domain.Produto, error)
	CreateProduto(ctx context.Context, novo service.NovoProduto) (*domain.Produto, error)
}

type DownloadService interface {
	Download(ctx context.Context, usuarioID, produtoID int64) (*domain.Produto, error)
}

// MediaResolver traduz o caminho gravado no banco para o arquivo no disco.
type MediaResolver interface {
	Path(rel string) (string, error)
}

// CatalogoHandler atende /planos e /produtos.
type CatalogoHandler struct {
	catalogo  CatalogoService
	downloads DownloadService
	media     MediaResolver
}

func NewCatalogoHandler(catalogo CatalogoService, downloads DownloadService, media MediaResolver) *CatalogoHandler {
	return &CatalogoHandler{catalogo: catalogo, downloads: downloads, media: media}
}

// PlanosRoutes define as rotas de /planos.
func (h *CatalogoHandler) PlanosRoutes(requireAuth Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPlanos)
	r.With(requireAuth, auth.RequireAdmin).Delete("/{id}", h.DeletePlano)

	return r
}

// ProdutosRoutes define as rotas de /produtos.
func (h *CatalogoHandler) ProdutosRoutes(requireAuth Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListProdutos)
	r.Get("/{id}", h.GetProduto)
	r.With(requireAuth, auth.RequireAdmin).Post("/", h.CreateProduto)
	r.With(requireAuth).Get("/{id}/download", h.Download)

	return r
}

// @Summary      Lista os planos
// @Tags         planos
// @Produce      json
// @Success      200  {array}   domain.Plano
// @Failure      500  {object}  map[string]string
// @Router       /planos [get]
func (h *CatalogoHandler) ListPlanos(w http.ResponseWriter, r *http.Request) {
	planos, err := h.catalogo.ListPlanos(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Erro ao buscar planos")
		return
	}
	respondWithJSON(w, http.StatusOK, planos)
}

// @Summary      Remove um plano
// @Description  Remove o plano e os produtos dele. Assinaturas do plano ficam sem plano.
// @Tags         planos
// @Security     BearerAuth
// @Param        id   path      int  true  "ID do Plano"
// @Success      204  {string}  string "No Content"
// @Failure      404  {object}  map[string]string
// @Router       /planos/{id} [delete]
func (h *CatalogoHandler) DeletePlano(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalogo.DeletePlano(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrPlanoNaoEncontrado) {
			respondWithError(w, http.StatusNotFound, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao remover plano")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Lista os produtos
// @Tags         produtos
// @Produce      json
// @Success      200  {array}   domain.Produto
// @Failure      500  {object}  map[string]string
// @Router       /produtos [get]
func (h *CatalogoHandler) ListProdutos(w http.ResponseWriter, r *http.Request) {
	produtos, err := h.catalogo.ListProdutos(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Erro ao buscar produtos")
		return
	}
	respondWithJSON(w, http.StatusOK, produtos)
}

// @Summary      Busca um produto por ID
// @Tags         produtos
// @Produce      json
// @Param        id   path      int  true  "ID do Produto"
// @Success      200  {object}  domain.Produto
// @Failure      404  {object}  map[string]string
// @Router       /produtos/{id} [get]
func (h *CatalogoHandler) GetProduto(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	produto, err := h.catalogo.GetProduto(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProdutoNaoEncontrado) {
			respondWithError(w, http.StatusNotFound, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao buscar produto")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, produto)
}

// @Summary      Cadastra um produto
// @Description  Recebe um formulário multipart com nome, plano_id (opcional, padrão Free), imagem e arquivo
// @Tags         produtos
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        nome      formData  string  true   "Nome do produto"
// @Param        plano_id  formData  int     false  "ID do plano"
// @Param        imagem    formData  file    false  "Imagem do produto"
// @Param        arquivo   formData  file    false  "Arquivo para download"
// @Success      201       {object}  domain.Produto
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /produtos [post]
func (h *CatalogoHandler) CreateProduto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Formulário inválido")
		return
	}
	defer r.MultipartForm.RemoveAll()

	novo := service.NovoProduto{Nome: r.FormValue("nome")}
	if v := r.FormValue("plano_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "plano_id inválido")
			return
		}
		novo.PlanoID = id
	}

	var err error
	if novo.Imagem, err = formUpload(r, "imagem"); err != nil {
		respondWithError(w, http.StatusBadRequest, "Imagem inválida")
		return
	}
	defer closeUpload(novo.Imagem)
	if novo.Arquivo, err = formUpload(r, "arquivo"); err != nil {
		respondWithError(w, http.StatusBadRequest, "Arquivo inválido")
		return
	}
	defer closeUpload(novo.Arquivo)

	produto, err := h.catalogo.CreateProduto(r.Context(), novo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProdutoInvalido):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPlanoNaoEncontrado):
			respondWithError(w, http.StatusNotFound, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao cadastrar produto")
		}
		return
	}
	respondWithJSON(w, http.StatusCreated, produto)
}

// @Summary      Baixa o arquivo de um produto
// @Description  Libera o download se a assinatura estiver ativa, o plano cobrir o produto e o limite diário não tiver sido atingido
// @Tags         produtos
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path      int  true  "ID do Produto"
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /produtos/{id}/download [get]
func (h *CatalogoHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	sessao, _ := auth.FromContext(r.Context())

	produto, err := h.downloads.Download(r.Context(), sessao.UsuarioID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProdutoNaoEncontrado), errors.Is(err, service.ErrArquivoIndisponivel):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSemAssinatura), errors.Is(err, service.ErrAssinaturaInativa),
			errors.Is(err, service.ErrPlanoInsuficiente):
			respondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrLimiteDiarioAtingido):
			respondWithError(w, http.StatusTooManyRequests, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao liberar download")
		}
		return
	}

	arquivo, err := h.media.Path(produto.Arquivo)
	if err != nil {
		respondWithError(w, http.StatusNotFound, service.ErrArquivoIndisponivel.Error())
		return
	}
	if info, err := os.Stat(arquivo); err != nil || info.IsDir() {
		slog.Error("Arquivo do produto ausente no disco", "produto_id", produto.ID, "arquivo", produto.Arquivo)
		respondWithError(w, http.StatusNotFound, service.ErrArquivoIndisponivel.Error())
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(produto.Arquivo)+`"`)
	http.ServeFile(w, r, arquivo)
}

// formUpload devolve nil quando o campo não foi enviado.
func formUpload(r *http.Request, campo string) (*service.Upload, error) {
	file, header, err := r.FormFile(campo)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service.Upload{Nome: header.Filename, Conteudo: file}, nil
}

func closeUpload(u *service.Upload) {
	if u == nil {
		return
	}
	if f, ok := u.Conteudo.(multipart.File); ok {
		f.Close()
	}
}
