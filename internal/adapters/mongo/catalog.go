package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository holds the marketing content guests browse: events,
// experiences, offers and testimonials. The booking flow reads nothing from
// it except for display; offers carry coupon metadata that the wizard's
// coupon sub-flow deliberately ignores.
type CatalogRepository struct {
	db     *mongo.Database
	logger observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{db: db, logger: logger}
}

type EventDoc struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	VenueID     uuid.UUID `bson:"venue_id" json:"venue_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Date        time.Time `bson:"date" json:"date"`
	ImageURL    string    `bson:"image_url" json:"image_url"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type ExperienceDoc struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	VenueID      uuid.UUID `bson:"venue_id" json:"venue_id"`
	Title        string    `bson:"title" json:"title"`
	Description  string    `bson:"description" json:"description"`
	PricePerHead int64     `bson:"price_per_head" json:"price_per_head"`
	ImageURL     string    `bson:"image_url" json:"image_url"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

type OfferDoc struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	CouponCode  string    `bson:"coupon_code" json:"coupon_code"`
	ValidFrom   time.Time `bson:"valid_from" json:"valid_from"`
	ValidTo     time.Time `bson:"valid_to" json:"valid_to"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type TestimonialDoc struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	Author    string    `bson:"author" json:"author"`
	Quote     string    `bson:"quote" json:"quote"`
	Rating    int       `bson:"rating" json:"rating"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

const (
	collEvents       = "events"
	collExperiences  = "experiences"
	collOffers       = "offers"
	collTestimonials = "testimonials"
)

func (c *CatalogRepository) insert(ctx context.Context, coll string, doc interface{}) error {
	_, err := c.db.Collection(coll).InsertOne(ctx, doc)
	if err != nil {
		c.logger.WithField("collection", coll).Error("failed to insert catalog doc", err)
	}
	return err
}

func (c *CatalogRepository) update(ctx context.Context, coll string, id uuid.UUID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := c.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		c.logger.WithField("collection", coll).Error("failed to update catalog doc", err)
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *CatalogRepository) delete(ctx context.Context, coll string, id uuid.UUID) error {
	res, err := c.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *CatalogRepository) CreateEvent(ctx context.Context, doc EventDoc) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	return c.insert(ctx, collEvents, doc)
}

func (c *CatalogRepository) ListEvents(ctx context.Context) ([]EventDoc, error) {
	cur, err := c.db.Collection(collEvents).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, err
	}
	var docs []EventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *CatalogRepository) UpdateEvent(ctx context.Context, id uuid.UUID, title, description, imageURL string, date time.Time) error {
	return c.update(ctx, collEvents, id, bson.M{
		"title": title, "description": description, "image_url": imageURL, "date": date,
	})
}

func (c *CatalogRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, collEvents, id)
}

func (c *CatalogRepository) CreateExperience(ctx context.Context, doc ExperienceDoc) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	return c.insert(ctx, collExperiences, doc)
}

func (c *CatalogRepository) ListExperiences(ctx context.Context) ([]ExperienceDoc, error) {
	cur, err := c.db.Collection(collExperiences).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"title": 1}))
	if err != nil {
		return nil, err
	}
	var docs []ExperienceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *CatalogRepository) UpdateExperience(ctx context.Context, id uuid.UUID, title, description, imageURL string, pricePerHead int64) error {
	return c.update(ctx, collExperiences, id, bson.M{
		"title": title, "description": description, "image_url": imageURL, "price_per_head": pricePerHead,
	})
}

func (c *CatalogRepository) DeleteExperience(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, collExperiences, id)
}

func (c *CatalogRepository) CreateOffer(ctx context.Context, doc OfferDoc) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	return c.insert(ctx, collOffers, doc)
}

func (c *CatalogRepository) ListOffers(ctx context.Context) ([]OfferDoc, error) {
	cur, err := c.db.Collection(collOffers).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"valid_to": -1}))
	if err != nil {
		return nil, err
	}
	var docs []OfferDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *CatalogRepository) UpdateOffer(ctx context.Context, id uuid.UUID, title, description, couponCode string, validFrom, validTo time.Time) error {
	return c.update(ctx, collOffers, id, bson.M{
		"title": title, "description": description, "coupon_code": couponCode,
		"valid_from": validFrom, "valid_to": validTo,
	})
}

func (c *CatalogRepository) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, collOffers, id)
}

func (c *CatalogRepository) CreateTestimonial(ctx context.Context, doc TestimonialDoc) error {
	doc.CreatedAt = time.Now()
	return c.insert(ctx, collTestimonials, doc)
}

func (c *CatalogRepository) ListTestimonials(ctx context.Context) ([]TestimonialDoc, error) {
	cur, err := c.db.Collection(collTestimonials).Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var docs []TestimonialDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *CatalogRepository) UpdateTestimonial(ctx context.Context, id uuid.UUID, author, quote string, rating int) error {
	return c.update(ctx, collTestimonials, id, bson.M{
		"author": author,
		"quote":  quote,
		"rating": rating,
	})
}

func (c *CatalogRepository) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, collTestimonials, id)
}
