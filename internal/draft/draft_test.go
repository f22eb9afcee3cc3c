package draft

import (
	"errors"
	"testing"

	"estate-api/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestNewDraftDefaults(t *testing.T) {
	d := New()
	if d.Type != domain.ListingRent || d.Bedrooms != 1 || d.Bathrooms != 1 || d.RegularPrice != 50 {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if err := d.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected empty draft to fail image validation, got %v", err)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	orig := Reduce(New(), AddImages{"a", "b"})
	next := Reduce(orig, RemoveImage(0), Patch{Name: ptr("Villa")})

	if len(orig.ImageURLs) != 2 || orig.ImageURLs[0] != "a" {
		t.Errorf("original draft changed: %v", orig.ImageURLs)
	}
	if orig.Name != "" {
		t.Errorf("original name changed: %q", orig.Name)
	}
	if len(next.ImageURLs) != 1 || next.ImageURLs[0] != "b" {
		t.Errorf("expected [b], got %v", next.ImageURLs)
	}
	if next.Name != "Villa" {
		t.Errorf("expected name Villa, got %q", next.Name)
	}
}

func TestAddImagesCapsAtSix(t *testing.T) {
	d := Reduce(New(), AddImages{"1", "2", "3", "4", "5"}, AddImages{"6", "7", "8"})
	if len(d.ImageURLs) != domain.MaxImages {
		t.Fatalf("expected %d images, got %d", domain.MaxImages, len(d.ImageURLs))
	}
	if d.ImageURLs[5] != "6" {
		t.Errorf("expected display order kept, got %v", d.ImageURLs)
	}
}

func TestRemoveImageOutOfRange(t *testing.T) {
	d := Reduce(New(), AddImages{"a"}, RemoveImage(4), RemoveImage(-1))
	if len(d.ImageURLs) != 1 {
		t.Errorf("expected image kept, got %v", d.ImageURLs)
	}
}

func TestPatchMergesOnlySetFields(t *testing.T) {
	base := FromListing(&domain.Listing{
		Name:         "House",
		Address:      "1 Main St",
		Type:         domain.ListingSale,
		RegularPrice: 300,
		ImageURLs:    []string{"x"},
	})
	got := Reduce(base, Patch{Offer: ptr(true), DiscountPrice: ptr(250)})

	if got.Name != "House" || got.Address != "1 Main St" || got.Type != domain.ListingSale {
		t.Errorf("unset fields changed: %+v", got)
	}
	if !got.Offer || got.DiscountPrice != 250 {
		t.Errorf("patch not applied: %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	bad := Reduce(got, Patch{DiscountPrice: ptr(300)})
	if err := bad.Validate(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestListingCarriesOwner(t *testing.T) {
	l := Reduce(New(), AddImages{"a"}).Listing("u1")
	if l.UserRef != "u1" {
		t.Errorf("expected owner u1, got %q", l.UserRef)
	}
}
