package normalize_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souqnest/internal/domain"
	"souqnest/internal/normalize"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestExtractArray(t *testing.T) {
	assert.Equal(t, []any{1.0, 2.0, 3.0}, normalize.ExtractArray(decode(t, `[1,2,3]`), nil))
	assert.Equal(t, []any{1.0, 2.0}, normalize.ExtractArray(decode(t, `{"data":[1,2]}`), nil))
	assert.Equal(t, []any{}, normalize.ExtractArray(decode(t, `{"foo":"bar"}`), nil))
	assert.Equal(t, []any{}, normalize.ExtractArray(nil, nil))

	// first known key wins, in declaration order
	got := normalize.ExtractArray(decode(t, `{"rows":[3],"products":[1],"items":[2]}`), nil)
	assert.Equal(t, []any{1.0}, got)

	fb := []any{"x"}
	assert.Equal(t, fb, normalize.ExtractArray(decode(t, `"text"`), fb))
}

func TestExtractArrayIdempotent(t *testing.T) {
	v := decode(t, `{"suppliers":[{"id":"s1"}]}`)
	once := normalize.ExtractArray(v, nil)
	assert.Equal(t, once, normalize.ExtractArray(once, nil))
}

func TestExtractObject(t *testing.T) {
	assert.Equal(t, map[string]any{"id": "p1"}, normalize.ExtractObject(decode(t, `{"data":{"id":"p1"}}`), nil))
	assert.Equal(t, map[string]any{"id": "p1"}, normalize.ExtractObject(decode(t, `{"id":"p1"}`), nil))

	// array data is not unwrapped
	wrapped := decode(t, `{"data":[1]}`)
	assert.Equal(t, wrapped, normalize.ExtractObject(wrapped, nil))

	assert.Equal(t, map[string]any{}, normalize.ExtractObject(decode(t, `[1,2]`), nil))
	fb := map[string]any{"fallback": true}
	assert.Equal(t, fb, normalize.ExtractObject(nil, fb))
}

func TestExtractPaginatedFlat(t *testing.T) {
	resp := decode(t, `{"products":[1,2,3,4,5,6,7,8,9,10],"total":25,"page":2,"limit":10}`)
	got := normalize.ExtractPaginated(resp, normalize.Paginated{})
	assert.Len(t, got.Data, 10)
	require.NotNil(t, got.Meta)
	assert.Equal(t, domain.Meta{Total: 25, Page: 2, Limit: 10, TotalPages: 3}, *got.Meta)
}

func TestExtractPaginatedMetaKeys(t *testing.T) {
	got := normalize.ExtractPaginated(decode(t, `{"data":[1],"meta":{"total":7,"page":1,"limit":5,"totalPages":2}}`), normalize.Paginated{})
	require.NotNil(t, got.Meta)
	assert.Equal(t, 2, got.Meta.TotalPages)

	got = normalize.ExtractPaginated(decode(t, `{"items":[1],"pagination":{"total":21,"limit":10}}`), normalize.Paginated{})
	require.NotNil(t, got.Meta)
	assert.Equal(t, domain.Meta{Total: 21, Page: 1, Limit: 10, TotalPages: 3}, *got.Meta)

	got = normalize.ExtractPaginated(decode(t, `[1,2]`), normalize.Paginated{})
	assert.Nil(t, got.Meta)
	assert.Len(t, got.Data, 2)
}

func TestExtractPaginatedIdempotent(t *testing.T) {
	first := normalize.ExtractPaginated(decode(t, `{"rfqs":[1,2],"total":2,"page":1,"limit":10}`), normalize.Paginated{})
	b, err := json.Marshal(first)
	require.NoError(t, err)
	second := normalize.ExtractPaginated(decode(t, string(b)), normalize.Paginated{})
	assert.Equal(t, first, second)
}

func TestExtractPaginatedNil(t *testing.T) {
	got := normalize.ExtractPaginated(nil, normalize.Paginated{})
	assert.Equal(t, []any{}, got.Data)
	assert.Nil(t, got.Meta)
}

func TestDecodeList(t *testing.T) {
	items, err := normalize.DecodeList[domain.Industry]([]byte(`{"industries":[{"id":"i1","name":"Steel"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []domain.Industry{{ID: "i1", Name: "Steel"}}, items)

	_, err = normalize.DecodeList[domain.Industry]([]byte(`{"foo":"bar"}`))
	var de *normalize.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "object{foo}", de.Shape)

	_, err = normalize.DecodeList[domain.Industry]([]byte(`[{"id":5}]`))
	require.True(t, errors.As(err, &de))
	assert.Error(t, de.Unwrap())
}

func TestDecodeObjectAndPage(t *testing.T) {
	p, err := normalize.DecodeObject[domain.Product]([]byte(`{"data":{"id":"p1","slug":"belt","prices":[{"currency":"USD","amount":"4200.50"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "belt", p.Slug)
	assert.Equal(t, "4200.5", p.FirstPrice().Amount.String())

	_, err = normalize.DecodeObject[domain.Product]([]byte(`[1]`))
	var de *normalize.DecodeError
	assert.True(t, errors.As(err, &de))

	page, err := normalize.DecodePage[domain.Supplier]([]byte(`{"suppliers":[{"id":"s1","companyName":"Atlas"}],"total":11,"limit":5}`))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.Meta)
	assert.Equal(t, 3, page.Meta.TotalPages)
}
