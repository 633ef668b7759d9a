package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrSenhaVazia = errors.New("senha vazia")

// HashPassword gera o hash bcrypt da senha. É o único formato que vai para o banco.
func HashPassword(senha string) (string, error) {
	if senha == "" {
		return "", ErrSenhaVazia
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compara a senha com o hash gravado.
func CheckPassword(hash, senha string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}
