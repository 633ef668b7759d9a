package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

// Para facilitar os testes, cada handler depende de uma interface e não da implementação concreta do serviço.
type UsuarioService interface {
	GetUserByID(ctx context.Context, id int64) (*domain.Usuario, error)
	GetAllUsers(ctx context.Context) ([]domain.Usuario, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Middleware é a assinatura dos middlewares de autenticação aplicados nas rotas.
type Middleware func(http.Handler) http.Handler

// UsuarioHandler lida com as requisições HTTP de administração de usuários, nas rotas de /usuarios.
type UsuarioHandler struct {
	service UsuarioService
}

// NewUsuarioHandler cria uma nova instância do UsuarioHandler.
func NewUsuarioHandler(s UsuarioService) *UsuarioHandler {
	return &UsuarioHandler{
		service: s,
	}
}

// Routes define as rotas de /usuarios. Todas exigem um administrador.
func (h *UsuarioHandler) Routes(requireAuth Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAuth, auth.RequireAdmin)

	r.Get("/", h.GetAllUsers)       // GET /usuarios
	r.Get("/{id}", h.GetUserByID)   // GET /usuarios/{id}
	r.Delete("/{id}", h.DeleteUser) // DELETE /usuarios/{id}

	return r
}

// @Summary      Lista todos os usuários
// @Description  Retorna uma lista com todos os usuários cadastrados
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Usuario
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /usuarios [get]
func (h *UsuarioHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.service.GetAllUsers(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Erro ao buscar usuários")
		return
	}
	respondWithJSON(w, http.StatusOK, usuarios)
}

// @Summary      Busca um usuário por ID
// @Description  Retorna os dados de um usuário específico com base no seu ID
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "ID do Usuário"
// @Success      200  {object}  domain.Usuario
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /usuarios/{id} [get]
func (h *UsuarioHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	usuario, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUsuarioNaoEncontrado) {
			respondWithError(w, http.StatusNotFound, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao buscar usuário")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, usuario)
}

// @Summary      Deleta um usuário
// @Description  Remove o usuário e a assinatura dele. Os registros de download ficam sem usuário.
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "ID do Usuário"
// @Success      204  {string}  string "No Content"
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /usuarios/{id} [delete]
func (h *UsuarioHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUsuarioNaoEncontrado) {
			respondWithError(w, http.StatusNotFound, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao deletar usuário")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- FUNÇÕES AUXILIARES ---

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	if code >= http.StatusInternalServerError {
		slog.Error("API Error", "code", code, "message", message)
	} else {
		slog.Warn("API Error", "code", code, "message", message)
	}
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
