package listing

import (
	"time"

	"estate-api/internal/domain"
)

type ListingModel struct {
	ID            string   `gorm:"primaryKey;type:varchar(36)"`
	UserRef       string   `gorm:"size:64;index;not null"`
	Name          string   `gorm:"size:255;not null"`
	Description   string   `gorm:"type:text"`
	Address       string   `gorm:"size:255"`
	Type          string   `gorm:"size:8;index;not null;default:rent"`
	Bedrooms      int      `gorm:"not null;default:0"`
	Bathrooms     int      `gorm:"not null;default:0"`
	RegularPrice  int      `gorm:"not null;default:0"`
	DiscountPrice int      `gorm:"not null;default:0"`
	Offer         bool     `gorm:"index;not null;default:false"`
	Parking       bool     `gorm:"not null;default:false"`
	Furnished     bool     `gorm:"not null;default:false"`
	ImageURLs     []string `gorm:"serializer:json;type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ListingModel) TableName() string { return "listings" }

func FromDomain(l *domain.Listing) *ListingModel {
	return &ListingModel{
		ID:            l.ID,
		UserRef:       l.UserRef,
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		Type:          string(l.Type),
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Offer:         l.Offer,
		Parking:       l.Parking,
		Furnished:     l.Furnished,
		ImageURLs:     l.ImageURLs,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (m *ListingModel) ToDomain() *domain.Listing {
	return &domain.Listing{
		ID:            m.ID,
		UserRef:       m.UserRef,
		Name:          m.Name,
		Description:   m.Description,
		Address:       m.Address,
		Type:          domain.ListingType(m.Type),
		Bedrooms:      m.Bedrooms,
		Bathrooms:     m.Bathrooms,
		RegularPrice:  m.RegularPrice,
		DiscountPrice: m.DiscountPrice,
		Offer:         m.Offer,
		Parking:       m.Parking,
		Furnished:     m.Furnished,
		ImageURLs:     append([]string(nil), m.ImageURLs...),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
