package repo

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"estate-api/internal/domain"
)

type memEntry struct {
	l   *domain.Listing
	seq int64
}

// MemoryListingRepo keeps listings in process. Ids have the same shape as
// the Mongo store's so clients see no difference.
type MemoryListingRepo struct {
	mu    sync.RWMutex
	items map[string]memEntry
	next  int64
	now   func() time.Time
}

func NewMemoryListingRepo() *MemoryListingRepo {
	return &MemoryListingRepo{items: map[string]memEntry{}, now: time.Now}
}

func (r *MemoryListingRepo) Insert(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	l.ID = primitive.NewObjectID().Hex()
	l.CreatedAt, l.UpdatedAt = now, now
	r.next++
	r.items[l.ID] = memEntry{l: l.Clone(), seq: r.next}
	return nil
}

func (r *MemoryListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.l.Clone(), nil
}

func (r *MemoryListingRepo) Find(ctx context.Context, f domain.Filter) domain.ListingSeq {
	return func(yield func(*domain.Listing, error) bool) {
		r.mu.RLock()
		matched := make([]memEntry, 0, len(r.items))
		for _, e := range r.items {
			if f.Match(e.l) {
				matched = append(matched, memEntry{l: e.l.Clone(), seq: e.seq})
			}
		}
		r.mu.RUnlock()

		slices.SortFunc(matched, func(a, b memEntry) int {
			c := compareBy(f.Sort, a.l, b.l)
			if c == 0 {
				c = cmp.Compare(a.seq, b.seq)
			}
			if !f.Asc {
				c = -c
			}
			return c
		})

		if f.Offset >= len(matched) {
			return
		}
		matched = matched[f.Offset:]
		if f.Limit > 0 && len(matched) > f.Limit {
			matched = matched[:f.Limit]
		}
		for _, e := range matched {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(e.l, nil) {
				return
			}
		}
	}
}

func compareBy(k domain.SortKey, a, b *domain.Listing) int {
	switch k {
	case domain.SortRegularPrice:
		return cmp.Compare(a.RegularPrice, b.RegularPrice)
	case domain.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (r *MemoryListingRepo) Replace(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	l.CreatedAt = e.l.CreatedAt
	l.UpdatedAt = r.now()
	r.items[l.ID] = memEntry{l: l.Clone(), seq: e.seq}
	return nil
}

func (r *MemoryListingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type MemoryUserRepo struct {
	mu    sync.RWMutex
	byID  map[string]*domain.User
	email map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: map[string]*domain.User{}, email: map[string]string{}}
}

func (r *MemoryUserRepo) Insert(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, taken := r.email[key]; taken {
		return domain.Invalid("username or email already registered")
	}
	for _, other := range r.byID {
		if other.Username == u.Username {
			return domain.Invalid("username or email already registered")
		}
	}
	now := time.Now()
	u.ID = primitive.NewObjectID().Hex()
	u.CreatedAt, u.UpdatedAt = now, now
	c := *u
	r.byID[u.ID] = &c
	r.email[key] = u.ID
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r.byID[id]
	return &c, nil
}
