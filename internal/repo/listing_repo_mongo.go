package repo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estate-api/internal/domain"
)

type listingDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserRef       string             `bson:"userRef"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Address       string             `bson:"address"`
	Type          string             `bson:"type"`
	Bedrooms      int                `bson:"bedrooms"`
	Bathrooms     int                `bson:"bathrooms"`
	RegularPrice  int                `bson:"regularPrice"`
	DiscountPrice int                `bson:"discountPrice"`
	Offer         bool               `bson:"offer"`
	Parking       bool               `bson:"parking"`
	Furnished     bool               `bson:"furnished"`
	ImageURLs     []string           `bson:"imageUrls"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func toListingDoc(l *domain.Listing) listingDoc {
	return listingDoc{
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
		ImageURLs:     append([]string{}, l.ImageURLs...),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (d *listingDoc) domain() *domain.Listing {
	return &domain.Listing{
		ID:            d.ID.Hex(),
		UserRef:       d.UserRef,
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		Type:          domain.ListingType(d.Type),
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Offer:         d.Offer,
		Parking:       d.Parking,
		Furnished:     d.Furnished,
		ImageURLs:     append([]string{}, d.ImageURLs...),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// mongoNow matches the millisecond precision BSON dates are stored with.
func mongoNow() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

type MongoListingRepo struct{ coll *mongo.Collection }

func NewMongoListingRepo(db *mongo.Database) *MongoListingRepo {
	return &MongoListingRepo{coll: db.Collection("listings")}
}

func (r *MongoListingRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userRef", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "offer", Value: 1}}},
	})
	return err
}

func (r *MongoListingRepo) Insert(ctx context.Context, l *domain.Listing) error {
	now := mongoNow()
	l.CreatedAt, l.UpdatedAt = now, now
	doc := toListingDoc(l)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Upstream("insert listing", err)
	}
	*l = *doc.domain()
	return nil
}

func (r *MongoListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// malformed ids cannot name a stored record
		return nil, domain.ErrNotFound
	}
	var doc listingDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Upstream("find listing", err)
	}
	return doc.domain(), nil
}

func listingQuery(f domain.Filter) bson.M {
	q := bson.M{}
	if f.SearchTerm != "" {
		q["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.SearchTerm), Options: "i"}
	}
	if f.Type != "" {
		q["type"] = string(f.Type)
	}
	if f.Offer {
		q["offer"] = true
	}
	if f.Parking {
		q["parking"] = true
	}
	if f.Furnished {
		q["furnished"] = true
	}
	if f.OwnerID != "" {
		q["userRef"] = f.OwnerID
	}
	return q
}

// Find opens a cursor when ranged and decodes one document per step.
func (r *MongoListingRepo) Find(ctx context.Context, f domain.Filter) domain.ListingSeq {
	return func(yield func(*domain.Listing, error) bool) {
		dir := -1
		if f.Asc {
			dir = 1
		}
		opts := options.Find().
			SetSort(bson.D{{Key: string(f.Sort), Value: dir}, {Key: "_id", Value: dir}}).
			SetSkip(int64(f.Offset)).
			SetLimit(int64(f.Limit))
		cur, err := r.coll.Find(ctx, listingQuery(f), opts)
		if err != nil {
			yield(nil, domain.Upstream("find listings", err))
			return
		}
		defer cur.Close(context.WithoutCancel(ctx))
		for cur.Next(ctx) {
			var doc listingDoc
			if err := cur.Decode(&doc); err != nil {
				yield(nil, domain.Upstream("decode listing", err))
				return
			}
			if !yield(doc.domain(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, domain.Upstream("iterate listings", err))
		}
	}
}

func (r *MongoListingRepo) Replace(ctx context.Context, l *domain.Listing) error {
	oid, err := primitive.ObjectIDFromHex(l.ID)
	if err != nil {
		return domain.ErrNotFound
	}
	l.UpdatedAt = mongoNow()
	doc := toListingDoc(l)
	set := bson.M{
		"userRef":       doc.UserRef,
		"name":          doc.Name,
		"description":   doc.Description,
		"address":       doc.Address,
		"type":          doc.Type,
		"bedrooms":      doc.Bedrooms,
		"bathrooms":     doc.Bathrooms,
		"regularPrice":  doc.RegularPrice,
		"discountPrice": doc.DiscountPrice,
		"offer":         doc.Offer,
		"parking":       doc.Parking,
		"furnished":     doc.Furnished,
		"imageUrls":     doc.ImageURLs,
		"updatedAt":     doc.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return domain.Upstream("update listing", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoListingRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return domain.Upstream("delete listing", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
