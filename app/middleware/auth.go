package appMiddleware

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-city-forecast/config"
)

var _ CredentialChecker = (*CredentialStore)(nil)

// CredentialChecker decides whether a username/password pair may see protected pages.
type CredentialChecker interface {
	Check(ctx context.Context, username, password string) bool
}

// CredentialStore keeps bcrypt hashes keyed by username.
type CredentialStore struct {
	hashes map[string][]byte
	// compared against for unknown users so both paths cost one bcrypt round
	dummy []byte
}

// NewCredentialStore hashes plain passwords with cost and keeps configured hashes as-is.
func NewCredentialStore(users []config.StatsUser, cost int) (*CredentialStore, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credential store: %w", err)
	}

	s := &CredentialStore{hashes: make(map[string][]byte, len(users)), dummy: dummy}
	for _, u := range users {
		if u.Username == "" {
			return nil, errors.New("credential with empty username")
		}
		if u.PasswordHash != "" {
			if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
				return nil, fmt.Errorf("invalid password hash for %q: %w", u.Username, err)
			}
			s.hashes[u.Username] = []byte(u.PasswordHash)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %q: %w", u.Username, err)
		}
		s.hashes[u.Username] = hash
	}
	return s, nil
}

func (s *CredentialStore) Check(_ context.Context, username, password string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
