// internal/adapters/erp/client_test.go
package erp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession() domain.CountSession {
	return domain.CountSession{CompanyID: "ACME", BranchID: "01", InventoryID: "INV-7"}
}

func TestClient_SubmitCount(t *testing.T) {
	t.Run("sends quantity and variance, same id means no adoption", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/inventories/counts", r.URL.Path)
			assert.Equal(t, "Bearer sekret", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]string{"inventory_id": "INV-7"})
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, staticToken("sekret"), testLogger())
		newID, err := c.SubmitCount(context.Background(), testSession(), "P-100", "WH-1", 8, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Empty(t, newID)

		assert.Equal(t, "ACME", got["company_id"])
		assert.Equal(t, "INV-7", got["inventory_id"])
		assert.Equal(t, float64(8), got["counted_quantity"])
		assert.Equal(t, "-2", got["variance"])
	})

	t.Run("returns a changed inventory id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"inventory_id": "INV-8"})
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		newID, err := c.SubmitCount(context.Background(), testSession(), "P-100", "WH-1", 6, decimal.NewFromInt(6))
		require.NoError(t, err)
		assert.Equal(t, "INV-8", newID)
	})

	t.Run("non-2xx becomes a server error with the status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"inventory closed"}`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		_, err := c.SubmitCount(context.Background(), testSession(), "P-100", "WH-1", 6, decimal.NewFromInt(6))
		require.Error(t, err)
		assert.Equal(t, domain.KindServerError, domain.KindOf(err))

		var derr *domain.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, http.StatusConflict, derr.Status)
	})

	t.Run("unparseable success body is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<ok/>`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		_, err := c.SubmitCount(context.Background(), testSession(), "P-100", "WH-1", 6, decimal.NewFromInt(6))
		require.Error(t, err)
		assert.Equal(t, domain.KindMalformedResponse, domain.KindOf(err))
	})

	t.Run("timeout reports the timeout kind", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL, SubmitTimeout: 50 * time.Millisecond}, nil, testLogger())
		_, err := c.SubmitCount(context.Background(), testSession(), "P-100", "WH-1", 6, decimal.NewFromInt(6))
		require.Error(t, err)
		assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
	})
}

func TestClient_FetchItems(t *testing.T) {
	t.Run("parses locale quantities and both counted keys", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/inventories/items", r.URL.Path)
			assert.Equal(t, "ACME", r.URL.Query().Get("company_id"))
			assert.Equal(t, "INV-7", r.URL.Query().Get("inventory_id"))
			w.Write([]byte(`{"items":[
				{"product_id":"P-100","description":"Round tube","warehouse_id":"WH-1","expected_stock":"1.234,56"},
				{"product_id":"P-200","description":"Sheet","warehouse_id":"WH-1","expected_stock":"15","counted_quantity":12},
				{"product_id":"P-300","description":"Bar","warehouse_id":"WH-2","expected_stock":"7,00","qtd_contada":"5"},
				{"product_id":"P-400","description":"Coil","warehouse_id":"WH-2","expected_stock":"3","counted_quantity":null,"qtd_contada":null}
			]}`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		items, err := c.FetchItems(context.Background(), testSession())
		require.NoError(t, err)
		require.Len(t, items, 4)

		assert.True(t, items[0].ExpectedStock.Equal(decimal.RequireFromString("1234.56")))
		assert.Nil(t, items[0].CountedQuantity)

		require.NotNil(t, items[1].CountedQuantity)
		assert.Equal(t, 12, *items[1].CountedQuantity)

		require.NotNil(t, items[2].CountedQuantity)
		assert.Equal(t, 5, *items[2].CountedQuantity)
		assert.True(t, items[2].ExpectedStock.Equal(decimal.NewFromInt(7)))

		assert.Nil(t, items[3].CountedQuantity)
	})

	t.Run("counted_quantity wins over the legacy key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[
				{"product_id":"P-100","warehouse_id":"WH-1","expected_stock":"10","counted_quantity":9,"qtd_contada":"4"}
			]}`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		items, err := c.FetchItems(context.Background(), testSession())
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].CountedQuantity)
		assert.Equal(t, 9, *items[0].CountedQuantity)
	})

	t.Run("bad expected stock is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[{"product_id":"P-100","warehouse_id":"WH-1","expected_stock":"abc"}]}`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		_, err := c.FetchItems(context.Background(), testSession())
		require.Error(t, err)
		assert.Equal(t, domain.KindMalformedResponse, domain.KindOf(err))
		assert.ErrorContains(t, err, "P-100")
	})

	t.Run("omits the inventory filter for a fresh session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, r.URL.Query().Has("inventory_id"))
			w.Write([]byte(`{"items":[]}`))
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL}, nil, testLogger())
		session := domain.CountSession{CompanyID: "ACME", BranchID: "01"}
		items, err := c.FetchItems(context.Background(), session)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }
