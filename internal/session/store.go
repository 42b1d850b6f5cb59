package session

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
)

// CredentialStore persists the opaque access/refresh credential pair across
// restarts. Both credentials are saved and cleared together.
type CredentialStore interface {
	Save(ctx context.Context, access, refresh string) error
	Load(ctx context.Context) (access, refresh string, err error)
	Clear(ctx context.Context) error
}

// memoryCredentialStore keeps credentials for the process lifetime only.
type memoryCredentialStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

// NewMemoryCredentialStore builds a process-local store.
func NewMemoryCredentialStore() CredentialStore {
	return &memoryCredentialStore{}
}

func (s *memoryCredentialStore) Save(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
	return nil
}

func (s *memoryCredentialStore) Load(_ context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.refresh, nil
}

func (s *memoryCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}

const (
	accessKey  = "session:access_token"
	refreshKey = "session:refresh_token"
)

// redisCredentialStore survives process restarts.
type redisCredentialStore struct {
	client *redis.Client
}

// NewRedisCredentialStore builds a durable store on the given client.
func NewRedisCredentialStore(client *redis.Client) CredentialStore {
	return &redisCredentialStore{client: client}
}

func (s *redisCredentialStore) Save(ctx context.Context, access, refresh string) error {
	if err := s.client.Set(ctx, accessKey, access, 0).Err(); err != nil {
		return err
	}
	return s.client.Set(ctx, refreshKey, refresh, 0).Err()
}

func (s *redisCredentialStore) Load(ctx context.Context) (string, string, error) {
	access, err := s.client.Get(ctx, accessKey).Result()
	if err != nil && err != redis.Nil {
		return "", "", err
	}
	refresh, err := s.client.Get(ctx, refreshKey).Result()
	if err != nil && err != redis.Nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *redisCredentialStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, accessKey, refreshKey).Err()
}

// fileCredentialStore persists the pair as a JSON file, for CLI use.
type fileCredentialStore struct {
	mu   sync.Mutex
	path string
}

type storedCredentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewFileCredentialStore builds a store backed by the given file path.
func NewFileCredentialStore(path string) CredentialStore {
	return &fileCredentialStore{path: path}
}

func (s *fileCredentialStore) Save(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	encoded, err := json.Marshal(storedCredentials{Access: access, Refresh: refresh})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, encoded, 0o600)
}

func (s *fileCredentialStore) Load(_ context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", err
	}
	var creds storedCredentials
	if err := json.Unmarshal(content, &creds); err != nil {
		// Unreadable stores behave like empty ones; restoration then
		// silently fails and the caller starts unauthenticated.
		return "", "", nil
	}
	return creds.Access, creds.Refresh, nil
}

func (s *fileCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
