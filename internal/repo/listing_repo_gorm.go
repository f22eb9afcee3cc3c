package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"estate-api/internal/domain"
	"estate-api/internal/feature/listing"
	"estate-api/pkg/utils"
)

type ListingRepo struct{ db *gorm.DB }

func NewListingRepo(db *gorm.DB) *ListingRepo { return &ListingRepo{db: db} }

var sortColumns = map[domain.SortKey]string{
	domain.SortCreatedAt:    "created_at",
	domain.SortUpdatedAt:    "updated_at",
	domain.SortRegularPrice: "regular_price",
}

// likeEscaper makes a search term match literally inside a LIKE pattern. The
// escape character is '!' since MySQL treats a backslash in a string literal
// as an escape of its own.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func (r *ListingRepo) Insert(ctx context.Context, l *domain.Listing) error {
	m := listing.FromDomain(l)
	if m.ID == "" {
		m.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return domain.Upstream("insert listing", err)
	}
	*l = *m.ToDomain()
	return nil
}

func (r *ListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var m listing.ListingModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Upstream("find listing", err)
	}
	return m.ToDomain(), nil
}

// Find streams matching rows; the query runs when the sequence is ranged.
func (r *ListingRepo) Find(ctx context.Context, f domain.Filter) domain.ListingSeq {
	return func(yield func(*domain.Listing, error) bool) {
		q := r.db.WithContext(ctx).Model(&listing.ListingModel{})
		if s := f.SearchTerm; s != "" {
			q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(s))+"%")
		}
		if f.Type != "" {
			q = q.Where("type = ?", string(f.Type))
		}
		if f.Offer {
			q = q.Where("offer = ?", true)
		}
		if f.Parking {
			q = q.Where("parking = ?", true)
		}
		if f.Furnished {
			q = q.Where("furnished = ?", true)
		}
		if f.OwnerID != "" {
			q = q.Where("user_ref = ?", f.OwnerID)
		}
		col, ok := sortColumns[f.Sort]
		if !ok {
			col = "created_at"
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: !f.Asc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: !f.Asc}).
			Offset(f.Offset).
			Limit(f.Limit)

		rows, err := q.Rows()
		if err != nil {
			yield(nil, domain.Upstream("find listings", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var m listing.ListingModel
			if err := r.db.ScanRows(rows, &m); err != nil {
				yield(nil, domain.Upstream("scan listing", err))
				return
			}
			if !yield(m.ToDomain(), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, domain.Upstream("iterate listings", err))
		}
	}
}

func (r *ListingRepo) Replace(ctx context.Context, l *domain.Listing) error {
	m := listing.FromDomain(l)
	m.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&listing.ListingModel{}).
		Where("id = ?", l.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return domain.Upstream("update listing", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	l.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&listing.ListingModel{})
	if res.Error != nil {
		return domain.Upstream("delete listing", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
