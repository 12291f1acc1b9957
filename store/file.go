package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"laughschool/models"
)

// fileDoc is the on-disk layout: one JSON document holding every item.
type fileDoc struct {
	Items []models.Item `json:"items"`
}

// FileStore keeps the whole collection in a single JSON file. Every
// mutation re-reads the document, applies the change and writes the whole
// document back under one lock, so readers never observe a partial write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens (or creates) the data file at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(fileDoc{Items: []models.Item{}}); err != nil {
			return nil, fmt.Errorf("initialize data file: %w", err)
		}
	}
	return s, nil
}

func (s *FileStore) load() (fileDoc, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileDoc{Items: []models.Item{}}, nil
		}
		return fileDoc{}, fmt.Errorf("read data file: %w", err)
	}
	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fileDoc{}, fmt.Errorf("parse data file: %w", err)
	}
	return doc, nil
}

// save writes to a temp file in the same directory and renames it over the
// data file, so a crash mid-write never corrupts the collection.
func (s *FileStore) save(doc fileDoc) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".data-*.json")
	if err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return models.Item{}, err
	}
	for _, it := range doc.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return models.Item{}, ErrNotFound
}

func (s *FileStore) Put(ctx context.Context, item models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, it := range doc.Items {
		if it.ID == item.ID {
			doc.Items[i] = item
			return s.save(doc)
		}
	}
	doc.Items = append(doc.Items, item)
	return s.save(doc)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, it := range doc.Items {
		if it.ID == id {
			doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
			return s.save(doc)
		}
	}
	// Deleting an absent id is a no-op.
	return nil
}
