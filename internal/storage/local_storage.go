package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("image not found in storage")

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// getPathFromID fans keys out one directory per character so no single
// directory grows too large.
func (ls *LocalStorage) getPathFromID(id string) string {
	pathParts := strings.Split(id, "")
	return filepath.Join(ls.basePath, filepath.Join(pathParts...))
}

func (ls *LocalStorage) Save(id string, data io.Reader) error {
	if id == "" {
		return errors.New("storage key cannot be empty")
	}
	filePath := ls.getPathFromID(id)
	dir := filepath.Dir(filePath)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err = io.Copy(file, data); err != nil {
		os.Remove(filePath)
		return err
	}
	return nil
}

func (ls *LocalStorage) Get(id string) (io.ReadCloser, error) {
	filePath := ls.getPathFromID(id)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image with key %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(id string) error {
	filePath := ls.getPathFromID(id)

	err := os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}
