package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// UserStore checks staff credentials against bcrypt hashes
type UserStore struct {
	hashes map[string][]byte
	// compared when the user does not exist so lookups take the same time
	dummy []byte
}

// NewUserStore hashes the configured plain-text passwords once at start-up
func NewUserStore(users map[string]string) (*UserStore, error) {
	s := &UserStore{hashes: make(map[string][]byte, len(users))}
	for username, password := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
		}
		s.hashes[username] = hash
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	s.dummy = dummy
	return s, nil
}

func (s *UserStore) Authenticate(username, password string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
