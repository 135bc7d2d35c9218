// Package memory implementa repository.UserRepository in-process.
// Para tests y arranque en dev sin Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeck/garrison/internal/domain/repository"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]*repository.User // por ID
}

func New() *Store {
	return &Store{users: make(map[string]*repository.User)}
}

func (s *Store) GetByID(_ context.Context, id string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetByUsername(_ context.Context, username string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetByDiscordID(_ context.Context, discordID string) (*repository.User, error) {
	if discordID == "" {
		return nil, repository.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.DiscordID == discordID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if in.Username == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, repository.ErrConflict
		}
	}
	u := &repository.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		Avatar:       in.Avatar,
		PasswordHash: in.PasswordHash,
		DiscordID:    in.DiscordID,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *Store) SetDiscordToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.DiscordToken = token
	return nil
}

func (s *Store) SetPasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// SetAdmin marca el flag administrativo persistido (seed/tests).
func (s *Store) SetAdmin(userID string, admin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.IsAdmin = admin
	}
}

var _ repository.UserRepository = (*Store)(nil)
