// Package auth cuida de senhas, tokens de sessão e do middleware de autenticação.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/willjrcristo/go-assinaturas/internal/domain"
)

var ErrTokenInvalido = errors.New("token inválido")

// Claims são os dados carregados no token de sessão.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Sessao identifica o usuário autenticado de uma requisição.
type Sessao struct {
	UsuarioID int64
	Admin     bool
}

// TokenIssuer emite e valida tokens HS256 assinados com a SECRET_KEY.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue gera um token para o usuário, válido por ttl.
func (i *TokenIssuer) Issue(u domain.Usuario) (string, time.Time, error) {
	agora := i.now()
	expira := agora.Add(i.ttl)
	claims := Claims{
		Admin: u.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(expira),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expira, nil
}

// Parse valida a assinatura e a expiração do token.
func (i *TokenIssuer) Parse(tokenString string) (Sessao, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Sessao{}, ErrTokenInvalido
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Sessao{}, ErrTokenInvalido
	}
	return Sessao{UsuarioID: id, Admin: claims.Admin}, nil
}
