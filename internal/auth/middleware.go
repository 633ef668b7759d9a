package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const sessaoContextKey = contextKey("sessao")

// Middleware exige um "Authorization: Bearer <token>" válido e coloca a Sessao no contexto.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Cabeçalho Authorization obrigatório")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				unauthorized(w, "Formato do cabeçalho Authorization inválido")
				return
			}

			sessao, err := issuer.Parse(tokenString)
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessao(r.Context(), sessao)))
		})
	}
}

// RequireAdmin deve vir depois de Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessao, ok := FromContext(r.Context())
		if !ok || !sessao.Admin {
			writeError(w, http.StatusForbidden, "Acesso restrito a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithSessao(ctx context.Context, s Sessao) context.Context {
	return context.WithValue(ctx, sessaoContextKey, s)
}

func FromContext(ctx context.Context) (Sessao, bool) {
	s, ok := ctx.Value(sessaoContextKey).(Sessao)
	return s, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
