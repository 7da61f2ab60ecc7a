package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	listingerrors "moradia/internal/listings/errors"
	"moradia/pkg/config"
	"moradia/pkg/model"
)

const CollectionName = "listings"

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Listing, error)
	Search(ctx context.Context, filter model.ListingFilter, limit int, offset int64) ([]*model.Listing, error)
	CountSearch(ctx context.Context, filter model.ListingFilter) (int64, error)
	Update(ctx context.Context, id string, listing *model.Listing) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	DistinctTypes(ctx context.Context) ([]string, error)
	DistinctCities(ctx context.Context) ([]string, error)
	DistinctDistricts(ctx context.Context, city string) ([]string, error)
}

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoListingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		// Inside a transaction; wrapping a SessionContext breaks its semantics.
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	listing.CreatedAt = now
	listing.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid.Hex()
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	var listing model.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return &listing, nil
}

// FindByIDs resolves a batch of listing ids in one query. Unknown or
// malformed ids are simply absent from the result map.
func (r *mongoListingRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Listing, error) {
	found := make(map[string]*model.Listing, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return found, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find listings by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	for _, l := range listings {
		found[l.ID] = l
	}
	return found, nil
}

func (r *mongoListingRepository) Search(ctx context.Context, filter model.ListingFilter, limit int, offset int64) ([]*model.Listing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "featured", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	return listings, nil
}

func (r *mongoListingRepository) CountSearch(ctx context.Context, filter model.ListingFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// buildSearchFilter translates a ListingFilter into a Mongo query. The query
// engine only ever serves available listings; all criteria combine with AND
// except the free-text term, which matches any of title, description,
// district, or city.
func buildSearchFilter(f model.ListingFilter) bson.M {
	filter := bson.M{"status": model.ListingStatusAvailable}

	if f.Search != "" {
		re := containsRegex(f.Search)
		filter["$or"] = []bson.M{
			{"title": re},
			{"description": re},
			{"address.district": re},
			{"address.city": re},
		}
	}

	if f.Type != "" {
		filter["type"] = f.Type
	}

	if f.PriceMin != nil || f.PriceMax != nil {
		price := bson.M{}
		if f.PriceMin != nil {
			price["$gte"] = *f.PriceMin
		}
		if f.PriceMax != nil {
			price["$lte"] = *f.PriceMax
		}
		filter["price"] = price
	}

	if f.Bedrooms != nil {
		filter["bedrooms"] = *f.Bedrooms
	}

	if f.District != "" {
		filter["address.district"] = containsRegex(f.District)
	}

	if f.City != "" {
		filter["address.city"] = containsRegex(f.City)
	}

	return filter
}

var regexSpecialChars = regexp.MustCompile(`[.*+?^$()[\]{}|\\]`)

// containsRegex builds a case-insensitive substring match with all regex
// metacharacters escaped, so user input cannot trigger catastrophic
// backtracking.
func containsRegex(term string) bson.M {
	escaped := regexSpecialChars.ReplaceAllString(term, `\$0`)
	return bson.M{"$regex": escaped, "$options": "i"}
}

func (r *mongoListingRepository) Update(ctx context.Context, id string, listing *model.Listing) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	listing.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{
		"$set": bson.M{
			"title":             listing.Title,
			"description":       listing.Description,
			"type":              listing.Type,
			"price":             listing.Price,
			"bedrooms":          listing.Bedrooms,
			"bathrooms":         listing.Bathrooms,
			"area":              listing.Area,
			"address":           listing.Address,
			"latitude":          listing.Latitude,
			"longitude":         listing.Longitude,
			"main_image":        listing.MainImage,
			"additional_images": listing.AdditionalImages,
			"status":            listing.Status,
			"featured":          listing.Featured,
			"updated_at":        listing.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return listingerrors.ErrNotFound
	}

	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return listingerrors.ErrNotFound
	}

	return nil
}

func (r *mongoListingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) DistinctTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "type", bson.M{})
}

func (r *mongoListingRepository) DistinctCities(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "address.city", bson.M{})
}

func (r *mongoListingRepository) DistinctDistricts(ctx context.Context, city string) ([]string, error) {
	filter := bson.M{}
	if city != "" {
		filter["address.city"] = city
	}
	return r.distinct(ctx, "address.district", filter)
}

func (r *mongoListingRepository) distinct(ctx context.Context, field string, filter bson.M) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	raw, err := r.collection.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s values: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}
