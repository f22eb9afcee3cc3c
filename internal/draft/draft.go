// Package draft models a not-yet-validated listing as an immutable value.
// Changes are expressed as actions and applied by the pure Reduce function,
// which never mutates its input.
package draft

import (
	"slices"

	"estate-api/internal/domain"
)

type Draft struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Address       string             `json:"address"`
	Type          domain.ListingType `json:"type"`
	Bedrooms      int                `json:"bedrooms"`
	Bathrooms     int                `json:"bathrooms"`
	RegularPrice  int                `json:"regularPrice"`
	DiscountPrice int                `json:"discountPrice"`
	Offer         bool               `json:"offer"`
	Parking       bool               `json:"parking"`
	Furnished     bool               `json:"furnished"`
	ImageURLs     []string           `json:"imageUrls"`
}

// New returns the draft an empty create form starts from.
func New() Draft {
	return Draft{
		Type:         domain.ListingRent,
		Bedrooms:     1,
		Bathrooms:    1,
		RegularPrice: 50,
		ImageURLs:    []string{},
	}
}

func FromListing(l *domain.Listing) Draft {
	return Draft{
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		Type:          l.Type,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Offer:         l.Offer,
		Parking:       l.Parking,
		Furnished:     l.Furnished,
		ImageURLs:     slices.Clone(l.ImageURLs),
	}
}

// Listing builds the record a valid draft turns into for owner.
func (d Draft) Listing(owner string) *domain.Listing {
	return &domain.Listing{
		UserRef:       owner,
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		Type:          d.Type,
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Offer:         d.Offer,
		Parking:       d.Parking,
		Furnished:     d.Furnished,
		ImageURLs:     slices.Clone(d.ImageURLs),
	}
}

// Validate runs the same invariants the server enforces on stored listings.
func (d Draft) Validate() error {
	return d.Listing("").Validate()
}

// Action is one change to a draft.
type Action interface {
	apply(d Draft) Draft
}

// Reduce applies actions in order to a copy of d.
func Reduce(d Draft, actions ...Action) Draft {
	d.ImageURLs = slices.Clone(d.ImageURLs)
	for _, a := range actions {
		d = a.apply(d)
	}
	return d
}

// Patch sets every non-nil field.
type Patch struct {
	Name          *string             `json:"name"`
	Description   *string             `json:"description"`
	Address       *string             `json:"address"`
	Type          *domain.ListingType `json:"type"`
	Bedrooms      *int                `json:"bedrooms"`
	Bathrooms     *int                `json:"bathrooms"`
	RegularPrice  *int                `json:"regularPrice"`
	DiscountPrice *int                `json:"discountPrice"`
	Offer         *bool               `json:"offer"`
	Parking       *bool               `json:"parking"`
	Furnished     *bool               `json:"furnished"`
	ImageURLs     *[]string           `json:"imageUrls"`
}

func (p Patch) apply(d Draft) Draft {
	set(&d.Name, p.Name)
	set(&d.Description, p.Description)
	set(&d.Address, p.Address)
	set(&d.Type, p.Type)
	set(&d.Bedrooms, p.Bedrooms)
	set(&d.Bathrooms, p.Bathrooms)
	set(&d.RegularPrice, p.RegularPrice)
	set(&d.DiscountPrice, p.DiscountPrice)
	set(&d.Offer, p.Offer)
	set(&d.Parking, p.Parking)
	set(&d.Furnished, p.Furnished)
	if p.ImageURLs != nil {
		d.ImageURLs = slices.Clone(*p.ImageURLs)
	}
	return d
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// AddImages appends uploaded image references. References past the sixth
// are dropped; the form refuses to upload more than that.
type AddImages []string

func (a AddImages) apply(d Draft) Draft {
	room := domain.MaxImages - len(d.ImageURLs)
	if room <= 0 {
		return d
	}
	add := []string(a)
	if len(add) > room {
		add = add[:room]
	}
	d.ImageURLs = append(d.ImageURLs, add...)
	return d
}

// RemoveImage drops the image at the given display position.
type RemoveImage int

func (r RemoveImage) apply(d Draft) Draft {
	i := int(r)
	if i < 0 || i >= len(d.ImageURLs) {
		return d
	}
	d.ImageURLs = slices.Delete(d.ImageURLs, i, i+1)
	return d
}
