// Package storage guarda anexos (fotos) em disco, sob um namespace por
// pessoa ("<person_id>/photo-<ts>.<ext>"), e emite signed URLs de curta
// duração para leitura — o bucket nunca é servido direto.
package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid object path")
	ErrObjectMissing = errors.New("object not found")
)

type Store struct {
	root string
}

// New cria (se preciso) o diretório raiz e retorna o Store.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// cleanObjectPath normaliza e rejeita caminhos que escapam do root.
func cleanObjectPath(objectPath string) (string, error) {
	p := path.Clean(strings.TrimPrefix(objectPath, "/"))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", ErrInvalidPath
	}
	return p, nil
}

func (s *Store) fullPath(objectPath string) (string, error) {
	p, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(p)), nil
}

// Save grava o objeto, criando o diretório do namespace. Sobrescreve se já
// existir (upsert, como o upload de foto do cadastro).
func (s *Store) Save(objectPath string, r io.Reader) error {
	full, err := s.fullPath(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) Open(objectPath string) (io.ReadCloser, error) {
	full, err := s.fullPath(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectMissing
		}
		return nil, err
	}
	return f, nil
}

// List retorna os object paths sob o prefixo (ex.: todos os anexos de uma
// pessoa). Prefixo inexistente retorna lista vazia, não erro.
func (s *Store) List(prefix string) ([]string, error) {
	dir, err := s.fullPath(prefix)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return out, nil
}

// RemoveAll apaga tudo sob o prefixo. Prefixo inexistente é no-op.
func (s *Store) RemoveAll(prefix string) error {
	dir, err := s.fullPath(prefix)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
