package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"flashdeck-service/internal/domain"
	"flashdeck-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DeckRepository caches deck cards in Redis (one JSON value per deck) and
// falls back to a loader on cache miss.
// Cards are stored as: SET deck:{name}:cards {json array}
type DeckRepository struct {
	client *redis.Client
	loader memory.DeckLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewDeckRepository(client *redis.Client, loader memory.DeckLoader, ttl time.Duration) *DeckRepository {
	return &DeckRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DeckRepository) Cards(ctx context.Context, deckName string) ([]domain.Card, error) {
	key := r.cardsKey(deckName)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		if cards, ok := decodeCards(raw); ok {
			return cards, nil
		}
	}

	result, err, _ := r.sf.Do(deckName, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			if cards, ok := decodeCards(raw); ok {
				return cards, nil
			}
		}

		cards, err := r.loader.LoadDeck(ctx, deckName)
		if err != nil {
			return nil, err
		}

		if encoded, err := json.Marshal(cards); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, encoded, r.ttlWithJitter()).Err()
		}
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

// Invalidate drops the cached deck after an admin mutation.
func (r *DeckRepository) Invalidate(ctx context.Context, deckName string) {
	_ = r.client.Del(ctx, r.cardsKey(deckName)).Err()
}

func (r *DeckRepository) cardsKey(deckName string) string {
	return "deck:" + deckName + ":cards"
}

func decodeCards(raw []byte) ([]domain.Card, bool) {
	var cards []domain.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		return nil, false
	}
	return cards, true
}

func (r *DeckRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
