package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/kvstore"
)

const tokenKeyPrefix = "token:"

// tokenBytes is the entropy of a session token (32 bytes, hex encoded).
const tokenBytes = 32

// TokenStore issues and resolves opaque bearer tokens backed by the
// key-value store. Expiry is enforced by the store's TTL.
type TokenStore struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewTokenStore creates a TokenStore. Tokens live for ttl after issue.
func NewTokenStore(store kvstore.Store, ttl time.Duration) *TokenStore {
	return &TokenStore{store: store, ttl: ttl}
}

// Issue mints a token for the identity and persists it with the
// configured TTL.
func (s *TokenStore) Issue(ctx context.Context, ident domain.Identity) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	payload, err := json.Marshal(ident)
	if err != nil {
		return "", fmt.Errorf("marshal identity: %w", err)
	}

	if err := s.store.Put(ctx, tokenKeyPrefix+token, payload, s.ttl); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to the identity it was issued for. Returns an
// EUNAUTHORIZED error for unknown or expired tokens.
func (s *TokenStore) Lookup(ctx context.Context, token string) (domain.Identity, error) {
	payload, err := s.store.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return domain.Identity{}, domain.Unauthorized("auth.Lookup", "Invalid or expired token")
		}
		return domain.Identity{}, domain.Internal(err, "auth.Lookup", "failed to load token")
	}

	var ident domain.Identity
	if err := json.Unmarshal(payload, &ident); err != nil {
		return domain.Identity{}, domain.Internal(err, "auth.Lookup", "failed to decode token payload")
	}
	return ident, nil
}

// Revoke deletes a token. Revoking an unknown token is not an error.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	return s.store.Delete(ctx, tokenKeyPrefix+token)
}
