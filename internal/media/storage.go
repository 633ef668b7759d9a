// Package media guarda uploads no MEDIA_ROOT e resolve caminhos relativos a ele.
package media

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DirUploads é o diretório, relativo ao MEDIA_ROOT, onde os uploads são gravados.
const DirUploads = "uploads/images/"

var ErrCaminhoInvalido = errors.New("caminho fora do MEDIA_ROOT")

// UploadPath gera o caminho de armazenamento de um upload:
// uploads/images/<md5(nome + timestamp)>.<extensão original>.
// O timestamp usa o formato YYYYMMDDHHMMSS seguido dos microssegundos, sempre em UTC.
func UploadPath(filename string, t time.Time) string {
	t = t.UTC()
	ext := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i+1:]
	}
	stamp := t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
	sum := md5.Sum([]byte(filename + stamp))
	return path.Join(DirUploads, hex.EncodeToString(sum[:])+"."+ext)
}

// Storage grava e encontra arquivos dentro de Root.
type Storage struct {
	Root string
	now  func() time.Time
}

func NewStorage(root string) *Storage {
	return &Storage{Root: root, now: time.Now}
}

// Path resolve um caminho relativo (como gravado no banco) para o caminho no disco.
func (s *Storage) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrCaminhoInvalido
	}
	return filepath.Join(s.Root, clean), nil
}

// Exists diz se rel aponta para um arquivo existente dentro do Root.
func (s *Storage) Exists(rel string) bool {
	if rel == "" {
		return false
	}
	p, err := s.Path(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Save grava o conteúdo de r usando UploadPath e devolve o caminho relativo.
func (s *Storage) Save(filename string, r io.Reader) (string, error) {
	rel := UploadPath(filename, s.now())
	dst, err := s.Path(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("criando diretório de uploads: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("criando %s: %w", rel, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("gravando %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return rel, nil
}
