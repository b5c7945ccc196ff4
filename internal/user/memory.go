package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository used in development and
// tests. Not durable.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email -> id
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryRepository) createOrLogin(email, username, image string) (User, error) {
	if email == "" {
		return User{}, fmt.Errorf("email is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byEmail[email]; ok {
		return m.byID[id], nil
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	m.byID[u.ID] = u
	m.byEmail[email] = u.ID
	return u, nil
}

// CreateOrLoginWithOAuth implements Repository
func (m *MemoryRepository) CreateOrLoginWithOAuth(_ context.Context, profile OAuthProfile) (User, error) {
	image := ""
	if len(profile.Photos) > 0 {
		image = profile.Photos[0].Value
	}
	return m.createOrLogin(profile.Email(), profile.DisplayName, image)
}

// CreateOrLoginWithDev implements Repository
func (m *MemoryRepository) CreateOrLoginWithDev(_ context.Context, email string) (User, error) {
	return m.createOrLogin(email, "", "")
}

// GetByID implements Repository
func (m *MemoryRepository) GetByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}
