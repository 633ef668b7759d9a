package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/willjrcristo/go-assinaturas/internal/auth"
	"github.com/willjrcristo/go-assinaturas/internal/domain"
	"github.com/willjrcristo/go-assinaturas/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, username, email, senha string) (*domain.Usuario, error)
	Authenticate(ctx context.Context, username, senha string) (*domain.Usuario, error)
	GetUserByID(ctx context.Context, id int64) (*domain.Usuario, error)
}

// TokenIssuer emite o token de sessão devolvido no login e no cadastro.
type TokenIssuer interface {
	Issue(u domain.Usuario) (string, time.Time, error)
}

type AuthHandler struct {
	service AuthService
	tokens  TokenIssuer
}

func NewAuthHandler(s AuthService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{service: s, tokens: tokens}
}

type loginRequest struct {
	Username string `json:"username"`
	Senha    string `json:"senha"`
}

type registroRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Senha    string `json:"senha"`
}

type sessaoResponse struct {
	Token    string          `json:"token"`
	ExpiraEm time.Time       `json:"expira_em"`
	Usuario  *domain.Usuario `json:"usuario"`
}

// Routes define as rotas de /auth.
func (h *AuthHandler) Routes(requireAuth Middleware) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/registro", h.Register)
	r.With(requireAuth).Get("/me", h.Me)

	return r
}

// @Summary      Autentica um usuário
// @Description  Confere username e senha e devolve um token de sessão
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credenciais  body      loginRequest  true  "Credenciais"
// @Success      200          {object}  sessaoResponse
// @Failure      400          {object}  map[string]string
// @Failure      401          {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	usuario, err := h.service.Authenticate(r.Context(), req.Username, req.Senha)
	if err != nil {
		if errors.Is(err, service.ErrCredenciaisInvalidas) {
			respondWithError(w, http.StatusUnauthorized, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao autenticar")
		}
		return
	}

	h.respondWithSessao(w, http.StatusOK, usuario)
}

// @Summary      Cadastra um novo usuário
// @Description  Cria um usuário com assinatura do plano Free por um ano e já devolve o token de sessão
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        usuario  body      registroRequest  true  "Dados do cadastro"
// @Success      201      {object}  sessaoResponse
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /auth/registro [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	usuario, err := h.service.Register(r.Context(), req.Username, req.Email, req.Senha)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDadosInvalidos), errors.Is(err, service.ErrSenhaCurta):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUsernameEmUso):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao criar usuário")
		}
		return
	}

	h.respondWithSessao(w, http.StatusCreated, usuario)
}

// @Summary      Usuário autenticado
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Usuario
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.FromContext(r.Context())
	usuario, err := h.service.GetUserByID(r.Context(), sessao.UsuarioID)
	if err != nil {
		if errors.Is(err, service.ErrUsuarioNaoEncontrado) {
			// Token válido de um usuário que já foi removido.
			respondWithError(w, http.StatusUnauthorized, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Erro ao buscar usuário")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, usuario)
}

func (h *AuthHandler) respondWithSessao(w http.ResponseWriter, code int, usuario *domain.Usuario) {
	token, expira, err := h.tokens.Issue(*usuario)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Erro ao gerar token de sessão")
		return
	}
	respondWithJSON(w, code, sessaoResponse{Token: token, ExpiraEm: expira, Usuario: usuario})
}
