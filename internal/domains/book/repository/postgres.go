package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/infrastructure/database"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Querier is the part of pgxpool.Pool the repository uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// documentBody is the JSONB payload stored in book_documents.doc.
type documentBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Genre       string          `json:"genre"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

var (
	pgDialect = goqu.Dialect("postgres")
	docTable  = goqu.T(database.BookDocumentsTable)

	docPrice = goqu.L("(doc->>'price')::numeric")
)

// postgresRepository stores books as JSONB documents.
type postgresRepository struct {
	db      Querier
	timeout time.Duration
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(db Querier, timeout time.Duration) RepositoryInterface {
	return &postgresRepository{
		db:      db,
		timeout: timeout,
	}
}

func (r *postgresRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *postgresRepository) FindAll(ctx context.Context, page model.PageRequest) ([]model.Book, int64, error) {
	return r.findPage(ctx, nil, page)
}

func (r *postgresRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice decimal.Decimal, page model.PageRequest) ([]model.Book, int64, error) {
	return r.findPage(ctx, priceRangeCondition(minPrice, maxPrice), page)
}

func (r *postgresRepository) FindByText(ctx context.Context, text string, page model.PageRequest) ([]model.Book, int64, error) {
	return r.findPage(ctx, textCondition(text, "name", "description", "genre"), page)
}

func (r *postgresRepository) FindByTextAndPriceRange(ctx context.Context, text string, minPrice, maxPrice decimal.Decimal, page model.PageRequest) ([]model.Book, int64, error) {
	return r.findPage(ctx, textAndPriceCondition(text, minPrice, maxPrice), page)
}

func (r *postgresRepository) findPage(ctx context.Context, where exp.Expression, page model.PageRequest) ([]model.Book, int64, error) {
	countSQL, countArgs, err := buildCountQuery(where)
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	listSQL, listArgs, err := buildPageQuery(where, page)
	if err != nil {
		return nil, 0, fmt.Errorf("build page query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		total int64
		books []model.Book
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.db.Query(gctx, listSQL, listArgs...)
		if err != nil {
			return fmt.Errorf("query books: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				return err
			}
			books = append(books, *b)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("query", listSQL).Msg("[BookRepository] Page query failed")
		return nil, 0, err
	}
	return books, total, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id string) (*model.Book, error) {
	sql, args, err := pgDialect.From(docTable).
		Select("id", "doc").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book %s: %w", id, err)
	}
	return b, nil
}

func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	raw, err := encodeBody(book)
	if err != nil {
		return err
	}

	sql, args, err := pgDialect.Insert(docTable).
		Rows(goqu.Record{"doc": goqu.L("?::jsonb", string(raw))}).
		Returning("id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&book.ID); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, book *model.Book) error {
	raw, err := encodeBody(book)
	if err != nil {
		return err
	}

	sql, args, err := pgDialect.Update(docTable).
		Set(goqu.Record{"doc": goqu.L("?::jsonb", string(raw))}).
		Where(goqu.C("id").Eq(book.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update book %s: %w", book.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteByID(ctx context.Context, id string) error {
	sql, args, err := pgDialect.Delete(docTable).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func buildCountQuery(where exp.Expression) (string, []interface{}, error) {
	ds := pgDialect.From(docTable).Select(goqu.COUNT("*"))
	if where != nil {
		ds = ds.Where(where)
	}
	return ds.Prepared(true).ToSQL()
}

func buildPageQuery(where exp.Expression, page model.PageRequest) (string, []interface{}, error) {
	ds := pgDialect.From(docTable).Select("id", "doc")
	if where != nil {
		ds = ds.Where(where)
	}
	return ds.
		Order(pgOrder(page)...).
		Limit(uint(page.Size)).
		Offset(uint(page.Offset())).
		Prepared(true).
		ToSQL()
}

// priceRangeCondition matches minPrice < price < maxPrice. Bounds are sent as text and cast.
func priceRangeCondition(minPrice, maxPrice decimal.Decimal) exp.Expression {
	return goqu.And(
		goqu.L("? > (?::text)::numeric", docPrice, minPrice.String()),
		goqu.L("? < (?::text)::numeric", docPrice, maxPrice.String()),
	)
}

// textCondition matches text as a literal, case-insensitive substring of any of fields.
func textCondition(text string, fields ...string) exp.Expression {
	pattern := "%" + escapeLike(text) + "%"

	ors := make([]exp.Expression, 0, len(fields))
	for _, f := range fields {
		ors = append(ors, goqu.L(fmt.Sprintf("doc->>'%s'", f)).ILike(pattern))
	}
	return goqu.Or(ors...)
}

// textAndPriceCondition matches (name or description) and the strict price range.
func textAndPriceCondition(text string, minPrice, maxPrice decimal.Decimal) exp.Expression {
	return goqu.And(
		textCondition(text, "name", "description"),
		priceRangeCondition(minPrice, maxPrice),
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var pgSortExpressions = map[string]exp.Orderable{
	"id":          goqu.C("id"),
	"name":        goqu.L("doc->>'name'"),
	"description": goqu.L("doc->>'description'"),
	"price":       docPrice,
	"genre":       goqu.L("doc->>'genre'"),
	"createdAt":   goqu.L("(doc->>'createdAt')::timestamptz"),
	"updatedAt":   goqu.L("(doc->>'updatedAt')::timestamptz"),
}

// pgOrder sorts by the requested expression, then by id for a stable order.
func pgOrder(page model.PageRequest) []exp.OrderedExpression {
	key, ok := pgSortExpressions[page.OrderBy]
	if !ok {
		key = goqu.C("id")
	}

	order := []exp.OrderedExpression{direction(key, page.Descending())}
	if page.OrderBy != "id" {
		order = append(order, direction(goqu.C("id"), page.Descending()))
	}
	return order
}

func direction(o exp.Orderable, desc bool) exp.OrderedExpression {
	if desc {
		return o.Desc()
	}
	return o.Asc()
}

func encodeBody(b *model.Book) ([]byte, error) {
	if err := model.CheckPrice(b.Price); err != nil {
		return nil, fmt.Errorf("encode price: %w", err)
	}
	raw, err := json.Marshal(documentBody{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Genre:       b.Genre,
		CreatedAt:   b.CreatedAt.UTC(),
		UpdatedAt:   b.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode book document: %w", err)
	}
	return raw, nil
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}

	var body documentBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode book document %s: %w", id, err)
	}

	b := &model.Book{
		ID:          id,
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Genre:       body.Genre,
		CreatedAt:   body.CreatedAt.UTC(),
	}
	if body.UpdatedAt != nil {
		t := body.UpdatedAt.UTC()
		b.UpdatedAt = &t
	}
	return b, nil
}
