package repository

import (
	"testing"
	"time"

	"bookshelf-api/internal/domains/book/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPriceRangeFilter(t *testing.T) {
	f, err := priceRangeFilter(decimal.RequireFromString("10.5"), decimal.NewFromInt(20))
	require.NoError(t, err)

	bounds, ok := f["price"].(bson.M)
	require.True(t, ok)

	lo, ok := bounds["$gt"].(primitive.Decimal128)
	require.True(t, ok)
	hi, ok := bounds["$lt"].(primitive.Decimal128)
	require.True(t, ok)
	assert.Equal(t, "10.5", lo.String())
	assert.Equal(t, "20", hi.String())

	_, hasGte := bounds["$gte"]
	assert.False(t, hasGte)
}

func TestToDecimal128(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"19.99", "19.99", false},
		{"-5", "-5", false},
		{"0", "0", false},
		{"9999999999999999999999999999999999", "9999999999999999999999999999999999", false},
		{"0.1234567890123456789012345678901234567", "", true},
		{"12345678901234567890123456789012345", "", true},
		{"1e200000000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := toDecimal128(decimal.RequireFromString(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestOversizedPricesAreRejectedBeforeEncoding(t *testing.T) {
	huge := decimal.RequireFromString("1e200000000")
	long := decimal.RequireFromString("0.1234567890123456789012345678901234567")

	_, err := priceRangeFilter(huge, decimal.NewFromInt(2))
	assert.ErrorIs(t, err, model.ErrInvalidPrice)

	_, err = priceRangeFilter(decimal.Zero, long)
	assert.ErrorIs(t, err, model.ErrInvalidPrice)

	_, err = newBookDocument(&model.Book{Name: "x", Price: long})
	assert.ErrorIs(t, err, model.ErrInvalidPrice)

	_, err = encodeBody(&model.Book{Name: "x", Price: huge})
	assert.ErrorIs(t, err, model.ErrInvalidPrice)
}

func TestTextFilter_EscapesAndIgnoresCase(t *testing.T) {
	f := textFilter("c++ (2nd ed.)", "name", "description", "genre")

	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	for i, field := range []string{"name", "description", "genre"} {
		clause := or[i].(bson.M)
		re, ok := clause[field].(primitive.Regex)
		require.True(t, ok, field)
		assert.Equal(t, `c\+\+ \(2nd ed\.\)`, re.Pattern)
		assert.Equal(t, "i", re.Options)
	}
}

func TestMongoSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "_id", Value: 1}}, mongoSort(model.DefaultPageRequest()))

	desc := model.PageRequest{Page: 0, Size: 5, OrderBy: "price", Direction: model.DirectionDesc}
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}, mongoSort(desc))
}

func TestBookDocument_RoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	in := &model.Book{
		ID:          primitive.NewObjectID().Hex(),
		Name:        "Dune",
		Description: "spice",
		Price:       decimal.RequireFromString("19.99"),
		Genre:       "sci-fi",
		CreatedAt:   created,
		UpdatedAt:   &updated,
	}

	doc, err := newBookDocument(in)
	require.NoError(t, err)
	out, err := doc.toModel()
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.True(t, in.Price.Equal(out.Price))
	assert.Equal(t, in.Genre, out.Genre)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.NotNil(t, out.UpdatedAt)
	assert.True(t, updated.Equal(*out.UpdatedAt))
}

func TestNewBookDocument_InvalidID(t *testing.T) {
	_, err := newBookDocument(&model.Book{ID: "not-an-object-id"})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestBuildPageQuery_All(t *testing.T) {
	sql, args, err := buildPageQuery(nil, model.PageRequest{Page: 2, Size: 10, OrderBy: "id", Direction: model.DirectionAsc})
	require.NoError(t, err)

	assert.Contains(t, sql, `SELECT "id", "doc" FROM "book_documents"`)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, `ORDER BY "id" ASC`)
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
	assert.Len(t, args, 2)
}

func TestBuildPageQuery_PriceSortDesc(t *testing.T) {
	page := model.PageRequest{Page: 0, Size: 5, OrderBy: "price", Direction: model.DirectionDesc}
	sql, _, err := buildPageQuery(nil, page)
	require.NoError(t, err)

	assert.Contains(t, sql, `(doc->>'price')::numeric DESC`)
	assert.Contains(t, sql, `"id" DESC`)
}

func TestBuildCountQuery_PriceRange(t *testing.T) {
	cond := priceRangeCondition(decimal.NewFromInt(10), decimal.NewFromInt(20))
	sql, args, err := buildCountQuery(cond)
	require.NoError(t, err)

	assert.Contains(t, sql, `SELECT COUNT(*) FROM "book_documents" WHERE`)
	assert.Contains(t, sql, `(doc->>'price')::numeric > ($1::text)::numeric`)
	assert.Contains(t, sql, `(doc->>'price')::numeric < ($2::text)::numeric`)
	assert.Equal(t, []interface{}{"10", "20"}, args)
}

func TestBuildCountQuery_Text(t *testing.T) {
	sql, args, err := buildCountQuery(textCondition("50%", "name", "description", "genre"))
	require.NoError(t, err)

	assert.Contains(t, sql, "doc->>'name' ILIKE $1")
	assert.Contains(t, sql, "doc->>'description' ILIKE $2")
	assert.Contains(t, sql, "doc->>'genre' ILIKE $3")
	assert.Contains(t, sql, " OR ")
	for _, a := range args {
		assert.Equal(t, `%50\%%`, a)
	}
}

func TestBuildCountQuery_TextAndPrice(t *testing.T) {
	where := textAndPriceCondition("dune", decimal.NewFromInt(1), decimal.NewFromInt(50))
	sql, args, err := buildCountQuery(where)
	require.NoError(t, err)

	assert.Contains(t, sql, "doc->>'name' ILIKE")
	assert.Contains(t, sql, "doc->>'description' ILIKE")
	assert.NotContains(t, sql, "doc->>'genre'")
	assert.Contains(t, sql, " AND ")
	assert.Len(t, args, 4)
}

func TestDocumentBody_RoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 123000000, time.UTC)
	raw, err := encodeBody(&model.Book{
		Name:      "Dune",
		Price:     decimal.RequireFromString("7.50"),
		Genre:     "sci-fi",
		CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "updatedAt")

	var body documentBody
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Price.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, created.Equal(body.CreatedAt))
}
