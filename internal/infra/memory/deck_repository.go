package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"flashdeck-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// DeckLoader fetches deck content from a backing store.
type DeckLoader interface {
	LoadDeck(ctx context.Context, deckName string) ([]domain.Card, error)
	DeckNames(ctx context.Context) ([]string, error)
}

// DeckRepository caches decks with TTL to avoid repeated store hits.
type DeckRepository struct {
	loader DeckLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedDeck
}

type cachedDeck struct {
	cards     []domain.Card
	expiresAt time.Time
}

func NewDeckRepository(loader DeckLoader, ttl time.Duration) *DeckRepository {
	return &DeckRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedDeck),
	}
}

func (r *DeckRepository) Cards(ctx context.Context, deckName string) ([]domain.Card, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[deckName]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.cards, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(deckName, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[deckName]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.cards, nil
		}
		r.mu.RUnlock()

		cards, err := r.loader.LoadDeck(ctx, deckName)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[deckName] = cachedDeck{
			cards:     cards,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return cards, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Card), nil
}

func (r *DeckRepository) Names(ctx context.Context) ([]string, error) {
	return r.loader.DeckNames(ctx)
}

// Invalidate drops a cached deck after an admin mutation.
func (r *DeckRepository) Invalidate(_ context.Context, deckName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, deckName)
}

func (r *DeckRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
