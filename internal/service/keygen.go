package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/pkg/generator"
)

const maxKeyAttempts = 3

type LinkCreator interface {
	Create(ctx context.Context, link *domain.Link) error
	KeyExists(ctx context.Context, key string) (bool, error)
}

// KeyGenerator assigns a public key and a secret key to new links and
// retries generated keys that lose an insert race.
type KeyGenerator struct {
	store     LinkCreator
	newKey    func() (string, error)
	newSecret func() (string, error)
}

func NewKeyGenerator(store LinkCreator) *KeyGenerator {
	return &KeyGenerator{
		store:     store,
		newKey:    generator.GenerateKey,
		newSecret: generator.GenerateSecret,
	}
}

// Insert persists link under customKey, or under a generated key when
// customKey is empty. A custom key that is already taken fails with
// domain.ErrCollision and is never retried.
func (g *KeyGenerator) Insert(ctx context.Context, link *domain.Link, customKey string) error {
	custom := customKey != ""
	link.IsCustom = custom
	link.Key = customKey

	if custom {
		exists, err := g.store.KeyExists(ctx, customKey)
		if err != nil {
			return fmt.Errorf("failed to check custom key: %w", err)
		}
		if exists {
			return fmt.Errorf("custom key %q: %w", customKey, domain.ErrCollision)
		}
	}

	var err error
	regenerateKey := !custom
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		if regenerateKey {
			if link.Key, err = g.newKey(); err != nil {
				return err
			}
		}
		if link.SecretKey, err = g.newSecret(); err != nil {
			return err
		}

		err = g.store.Create(ctx, link)
		if err == nil {
			return nil
		}

		var collision *domain.CollisionError
		if !errors.As(err, &collision) {
			return fmt.Errorf("failed to create link: %w", err)
		}

		switch {
		case collision.OnSecret():
			regenerateKey = false
		case custom:
			return fmt.Errorf("custom key %q: %w", customKey, domain.ErrCollision)
		default:
			regenerateKey = true
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", domain.ErrKeyGenerationExhausted, maxKeyAttempts, err)
}
