package domain

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync/atomic"
	"time"
)

type ListingType string

const (
	ListingRent ListingType = "rent"
	ListingSale ListingType = "sale"
)

func (t ListingType) Valid() bool { return t == ListingRent || t == ListingSale }

const (
	MinImages = 1
	MaxImages = 6
)

type Listing struct {
	ID            string      `json:"_id"`
	UserRef       string      `json:"userRef"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	Type          ListingType `json:"type"`
	Bedrooms      int         `json:"bedrooms"`
	Bathrooms     int         `json:"bathrooms"`
	RegularPrice  int         `json:"regularPrice"`
	DiscountPrice int         `json:"discountPrice"`
	Offer         bool        `json:"offer"`
	Parking       bool        `json:"parking"`
	Furnished     bool        `json:"furnished"`
	ImageURLs     []string    `json:"imageUrls"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Validate checks the invariants every stored listing must hold.
// An empty type defaults to rent.
func (l *Listing) Validate() error {
	if l.Type == "" {
		l.Type = ListingRent
	}
	if !l.Type.Valid() {
		return Invalid("type must be rent or sale")
	}
	if l.Bedrooms < 0 || l.Bathrooms < 0 {
		return Invalid("room counts must not be negative")
	}
	if err := ValidateImages(len(l.ImageURLs)); err != nil {
		return err
	}
	return ValidatePricing(l.Offer, l.RegularPrice, l.DiscountPrice)
}

func ValidateImages(n int) error {
	if n < MinImages {
		return Invalid("at least one image is required")
	}
	if n > MaxImages {
		return Invalid("a listing can have at most 6 images")
	}
	return nil
}

func ValidatePricing(offer bool, regular, discount int) error {
	if regular < 0 || discount < 0 {
		return Invalid("prices must not be negative")
	}
	if offer && discount >= regular {
		return Invalid("discount price must be lower than regular price")
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing the
// image slice.
func (l *Listing) Clone() *Listing {
	c := *l
	c.ImageURLs = append([]string(nil), l.ImageURLs...)
	return &c
}

type SortKey string

const (
	SortCreatedAt    SortKey = "createdAt"
	SortUpdatedAt    SortKey = "updatedAt"
	SortRegularPrice SortKey = "regularPrice"
)

const (
	DefaultLimit      = 9
	DefaultAdminLimit = 100
	MaxLimit          = 100
)

// Filter selects listings for ReadMany. Zero values mean "no restriction".
type Filter struct {
	SearchTerm string
	Type       ListingType
	Offer      bool
	Parking    bool
	Furnished  bool
	OwnerID    string
	Offset     int
	Limit      int
	Sort       SortKey
	Asc        bool
}

// Normalize applies the default sort and clamps pagination bounds.
func (f Filter) Normalize() Filter {
	f.SearchTerm = strings.TrimSpace(f.SearchTerm)
	if f.Type == "all" {
		f.Type = ""
	}
	switch f.Sort {
	case SortCreatedAt, SortUpdatedAt, SortRegularPrice:
	default:
		f.Sort = SortCreatedAt
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Match reports whether l satisfies every restriction of f except paging.
func (f Filter) Match(l *Listing) bool {
	if f.SearchTerm != "" && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(f.SearchTerm)) {
		return false
	}
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.Offer && !l.Offer {
		return false
	}
	if f.Parking && !l.Parking {
		return false
	}
	if f.Furnished && !l.Furnished {
		return false
	}
	if f.OwnerID != "" && l.UserRef != f.OwnerID {
		return false
	}
	return true
}

// ListingSeq is a lazy sequence of listings. A non-nil error ends it.
type ListingSeq = iter.Seq2[*Listing, error]

var ErrSeqConsumed = errors.New("listing sequence already consumed")

// Once makes seq single-use: ranging over it a second time yields
// ErrSeqConsumed and nothing else.
func Once(seq ListingSeq) ListingSeq {
	var used atomic.Bool
	return func(yield func(*Listing, error) bool) {
		if used.Swap(true) {
			yield(nil, ErrSeqConsumed)
			return
		}
		seq(yield)
	}
}

// Collect drains seq into a non-nil slice.
func Collect(seq ListingSeq) ([]*Listing, error) {
	out := make([]*Listing, 0)
	for l, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ListingStore is the persistence service for listings. Insert assigns the
// identifier and both timestamps; Replace refreshes UpdatedAt. Operations on
// an absent id return ErrNotFound.
type ListingStore interface {
	Insert(ctx context.Context, l *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	Find(ctx context.Context, f Filter) ListingSeq
	Replace(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
}
