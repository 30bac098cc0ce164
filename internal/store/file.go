package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore keeps every document as a JSON file under
// {root}/artifacts/{appID}/users/{userID}/{collection}/{id}.json.
type FileStore struct {
	root   string
	appID  string
	userID string
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch chan []Document
}

// NewFileStore returns a store for userID. An empty userID yields ErrUnauthenticated.
func NewFileStore(root, appID, userID string, logger *zap.Logger) (*FileStore, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validName("user id", userID); err != nil {
		return nil, err
	}

	appID = strings.TrimSpace(appID)
	if appID == "" {
		appID = defaultAppID
	}
	if err := validName("app id", appID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(root) == "" {
		return nil, errors.New("store root directory is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileStore{
		root:   root,
		appID:  appID,
		userID: userID,
		logger: logger,
		subs:   make(map[string]map[*subscriber]struct{}),
	}, nil
}

// CollectionPath mirrors the namespace used by the hosted document store.
func (s *FileStore) CollectionPath(collection string) string {
	return filepath.Join(s.root, "artifacts", s.appID, "users", s.userID, collection)
}

func (s *FileStore) documentPath(collection, id string) string {
	return filepath.Join(s.CollectionPath(collection), id+".json")
}

func (s *FileStore) Set(ctx context.Context, collection, id string, data any) error {
	if err := checkArgs(ctx, collection, id); err != nil {
		return err
	}

	doc, err := toDocument(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(collection, id, doc); err != nil {
		return err
	}
	s.notifyLocked(collection)
	return nil
}

func (s *FileStore) Add(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *FileStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := checkArgs(ctx, collection, id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(collection, id)
}

func (s *FileStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkArgs(ctx, collection, id); err != nil {
		return err
	}

	patch, err := toDocument(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(collection, id)
	if err != nil {
		return err
	}

	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}

	if err := s.write(collection, id, doc); err != nil {
		return err
	}
	s.notifyLocked(collection)
	return nil
}

func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkArgs(ctx, collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.documentPath(collection, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}

	s.notifyLocked(collection)
	return nil
}

func (s *FileStore) Query(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validName("collection", collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.list(collection)
}

func (s *FileStore) Subscribe(ctx context.Context, collection string) (<-chan []Document, error) {
	if err := validName("collection", collection); err != nil {
		return nil, err
	}

	sub := &subscriber{ch: make(chan []Document, 1)}

	s.mu.Lock()
	initial, err := s.list(collection)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[*subscriber]struct{})
	}
	s.subs[collection][sub] = struct{}{}
	sub.ch <- initial
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs[collection], sub)
		close(sub.ch)
		s.mu.Unlock()
	}()

	return sub.ch, nil
}

// notifyLocked sends the latest snapshot to every subscriber, replacing an undelivered one.
func (s *FileStore) notifyLocked(collection string) {
	subs := s.subs[collection]
	if len(subs) == 0 {
		return
	}

	snapshot, err := s.list(collection)
	if err != nil {
		s.logger.Warn("building snapshot for subscribers", zap.String("collection", collection), zap.Error(err))
		return
	}

	for sub := range subs {
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snapshot
	}
}

func (s *FileStore) read(collection, id string) (Document, error) {
	data, err := os.ReadFile(s.documentPath(collection, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s/%s: %w", collection, id, err)
	}
	if doc == nil {
		doc = Document{}
	}
	doc["id"] = id
	return doc, nil
}

func (s *FileStore) write(collection, id string, doc Document) error {
	dir := s.CollectionPath(collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}

	body := make(Document, len(doc))
	for k, v := range doc {
		body[k] = v
	}
	delete(body, "id")

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	tmp, err := os.CreateTemp(dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}

	if err := os.Rename(tmp.Name(), s.documentPath(collection, id)); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}

	s.logger.Debug("document written", zap.String("collection", collection), zap.String("id", id))
	return nil
}

func (s *FileStore) list(collection string) ([]Document, error) {
	entries, err := os.ReadDir(s.CollectionPath(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.read(collection, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func checkArgs(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName("collection", collection); err != nil {
		return err
	}
	return validName("document id", id)
}

// toDocument turns any JSON-encodable value into a Document.
func toDocument(data any) (Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	if doc == nil {
		return nil, errors.New("document must not be null")
	}
	return doc, nil
}
