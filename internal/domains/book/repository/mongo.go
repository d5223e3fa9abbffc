package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"bookshelf-api/internal/domains/book/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// bookDocument is the stored shape of a book.
type bookDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Price       primitive.Decimal128 `bson:"price"`
	Genre       string               `bson:"genre"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   *time.Time           `bson:"updatedAt,omitempty"`
}

type mongoRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoRepository - Constructor
func NewMongoRepository(coll *mongo.Collection, timeout time.Duration) RepositoryInterface {
	return &mongoRepository{
		coll:    coll,
		timeout: timeout,
	}
}

func (r *mongoRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *mongoRepository) FindAll(ctx context.Context, page model.PageRequest) ([]model.Book, int64, error) {
	return r.findPage(ctx, bson.M{}, page)
}

func (r *mongoRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) ([]model.Book, int64, error) {
	filter, err := priceRangeFilter(minPrice, maxPrice)
	if err != nil {
		return nil, 0, err
	}
	return r.findPage(ctx, filter, page)
}

func (r *mongoRepository) FindByText(ctx context.Context, text string, page model.PageRequest) ([]model.Book, int64, error) {
	return r.findPage(ctx, textFilter(text, "name", "description", "genre"), page)
}

func (r *mongoRepository) FindByTextAndPriceRange(ctx context.Context, text string, minPrice, maxPrice decimal.Decimal, page model.PageRequest) ([]model.Book, int64, error) {
	price, err := priceRangeFilter(minPrice, maxPrice)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"$and": bson.A{
		textFilter(text, "name", "description"),
		price,
	}}
	return r.findPage(ctx, filter, page)
}

// findPage counts and fetches concurrently.
func (r *mongoRepository) findPage(ctx context.Context, filter bson.M, page model.PageRequest) ([]model.Book, int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		total int64
		docs  []bookDocument
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := r.coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		opts := options.Find().
			SetSkip(page.Offset()).
			SetLimit(int64(page.Size)).
			SetSort(mongoSort(page))

		cur, err := r.coll.Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find books: %w", err)
		}
		if err := cur.All(gctx, &docs); err != nil {
			return fmt.Errorf("decode books: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Interface("filter", filter).Msg("[BookRepository] Page query failed")
		return nil, 0, err
	}

	books := make([]model.Book, 0, len(docs))
	for i := range docs {
		b, err := docs[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		books = append(books, *b)
	}
	return books, total, nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*model.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrBookNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc bookDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book %s: %w", id, err)
	}
	return doc.toModel()
}

func (r *mongoRepository) Create(ctx context.Context, book *model.Book) error {
	doc, err := newBookDocument(book)
	if err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert book: unexpected id type %T", res.InsertedID)
	}
	book.ID = oid.Hex()
	return nil
}

func (r *mongoRepository) Update(ctx context.Context, book *model.Book) error {
	doc, err := newBookDocument(book)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return model.ErrBookNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("replace book %s: %w", book.ID, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *mongoRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrBookNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// priceRangeFilter matches minPrice < price < maxPrice.
func priceRangeFilter(minPrice, maxPrice decimal.Decimal) (bson.M, error) {
	lo, err := toDecimal128(minPrice)
	if err != nil {
		return nil, fmt.Errorf("min price: %w", err)
	}
	hi, err := toDecimal128(maxPrice)
	if err != nil {
		return nil, fmt.Errorf("max price: %w", err)
	}
	return bson.M{"price": bson.M{"$gt": lo, "$lt": hi}}, nil
}

// textFilter matches text as a literal, case-insensitive substring of any of fields.
func textFilter(text string, fields ...string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}

	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}

var mongoSortFields = map[string]string{
	"id":          "_id",
	"name":        "name",
	"description": "description",
	"price":       "price",
	"genre":       "genre",
	"createdAt":   "createdAt",
	"updatedAt":   "updatedAt",
}

// mongoSort sorts by the requested field, then by _id for a stable order.
func mongoSort(page model.PageRequest) bson.D {
	dir := 1
	if page.Descending() {
		dir = -1
	}

	field, ok := mongoSortFields[page.OrderBy]
	if !ok {
		field = "_id"
	}

	sort := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: dir})
	}
	return sort
}

// toDecimal128 converts d from its coefficient and exponent.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	if err := model.CheckPrice(d); err != nil {
		return primitive.Decimal128{}, err
	}
	v, ok := primitive.ParseDecimal128FromBigInt(d.Coefficient(), int(d.Exponent()))
	if !ok {
		return primitive.Decimal128{}, model.ErrInvalidPrice
	}
	return v, nil
}

func newBookDocument(b *model.Book) (*bookDocument, error) {
	price, err := toDecimal128(b.Price)
	if err != nil {
		return nil, fmt.Errorf("encode price: %w", err)
	}

	doc := &bookDocument{
		Name:        b.Name,
		Description: b.Description,
		Price:       price,
		Genre:       b.Genre,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}

	if b.ID != "" {
		oid, err := primitive.ObjectIDFromHex(b.ID)
		if err != nil {
			return nil, model.ErrBookNotFound
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d *bookDocument) toModel() (*model.Book, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("decode price of %s: %w", d.ID.Hex(), err)
	}

	b := &model.Book{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Genre:       d.Genre,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.UpdatedAt != nil {
		t := d.UpdatedAt.UTC()
		b.UpdatedAt = &t
	}
	return b, nil
}
