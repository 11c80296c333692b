// internal/adapters/erp/client.go
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

// Config holds the ERP connection settings. SubmitTimeout is short: a count
// submission is a small metadata write and the operator is waiting on it.
type Config struct {
	BaseURL       string
	SubmitTimeout time.Duration
}

// Client is the HTTP adapter for the ERP count endpoints. It implements both
// the submission and the product-list boundary.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenProvider
	logger  *slog.Logger
}

var (
	_ ports.CountSubmitter = (*Client)(nil)
	_ ports.ProductLister  = (*Client)(nil)
)

// NewClient creates an ERP client. tokens may be nil in test setups.
func NewClient(cfg Config, tokens ports.TokenProvider, logger *slog.Logger) *Client {
	timeout := cfg.SubmitTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger.With(slog.String("adapter", "erp")),
	}
}

// submitRequest is the count submission wire shape. The server wants both
// the absolute quantity and the variance, not a derivation.
type submitRequest struct {
	CompanyID       string          `json:"company_id"`
	BranchID        string          `json:"branch_id"`
	InventoryID     string          `json:"inventory_id,omitempty"`
	ProductID       string          `json:"product_id"`
	WarehouseID     string          `json:"warehouse_id"`
	CountedQuantity int             `json:"counted_quantity"`
	Variance        decimal.Decimal `json:"variance"`
}

type submitResponse struct {
	InventoryID string `json:"inventory_id"`
}

// SubmitCount persists one confirmed quantity. The returned id is non-empty
// only when the server issued a new or changed session identifier.
func (c *Client) SubmitCount(ctx context.Context, session domain.CountSession, productID, warehouseID string,
	counted int, expected decimal.Decimal) (string, error) {

	const op = "erp.SubmitCount"

	payload := submitRequest{
		CompanyID:       session.CompanyID,
		BranchID:        session.BranchID,
		InventoryID:     session.InventoryID,
		ProductID:       productID,
		WarehouseID:     warehouseID,
		CountedQuantity: counted,
		Variance:        domain.Variance(counted, expected),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", domain.E(op, domain.KindServerError, err)
	}

	raw, status, err := c.do(ctx, op, http.MethodPost, "/api/v1/inventories/counts", nil, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", statusError(op, status, raw)
	}

	var parsed submitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", domain.EStatus(op, domain.KindMalformedResponse, status, err)
	}

	c.logger.InfoContext(ctx, "count submitted",
		slog.String("product_id", productID),
		slog.Int("counted", counted),
		slog.String("variance", payload.Variance.String()))

	if parsed.InventoryID == session.InventoryID {
		return "", nil
	}
	return parsed.InventoryID, nil
}

// itemPayload is the product-list wire shape. Quantities arrive as
// locale-formatted strings; the counted quantity historically came under
// qtd_contada, so both keys are accepted with counted_quantity taking
// priority. That resolution happens here and nowhere else.
type itemPayload struct {
	ProductID       string          `json:"product_id"`
	Description     string          `json:"description"`
	WarehouseID     string          `json:"warehouse_id"`
	ExpectedStock   string          `json:"expected_stock"`
	CountedQuantity json.RawMessage `json:"counted_quantity"`
	QtdContada      json.RawMessage `json:"qtd_contada"`
}

type itemsResponse struct {
	Items []itemPayload `json:"items"`
}

// FetchItems loads the count items of a session with their book quantities.
func (c *Client) FetchItems(ctx context.Context, session domain.CountSession) ([]domain.CountItem, error) {
	const op = "erp.FetchItems"

	params := url.Values{}
	params.Set("company_id", session.CompanyID)
	params.Set("branch_id", session.BranchID)
	if session.InventoryID != "" {
		params.Set("inventory_id", session.InventoryID)
	}

	raw, status, err := c.do(ctx, op, http.MethodGet, "/api/v1/inventories/items", params, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(op, status, raw)
	}

	var parsed itemsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domain.EStatus(op, domain.KindMalformedResponse, status, err)
	}

	items := make([]domain.CountItem, 0, len(parsed.Items))
	for _, p := range parsed.Items {
		expected, perr := domain.ParseQuantity(p.ExpectedStock)
		if perr != nil {
			return nil, domain.EStatus(op, domain.KindMalformedResponse, status,
				fmt.Errorf("product %s: bad expected_stock %q: %w", p.ProductID, p.ExpectedStock, perr))
		}

		counted, cerr := resolveCounted(p.CountedQuantity, p.QtdContada)
		if cerr != nil {
			return nil, domain.EStatus(op, domain.KindMalformedResponse, status,
				fmt.Errorf("product %s: %w", p.ProductID, cerr))
		}

		items = append(items, domain.CountItem{
			ProductID:       p.ProductID,
			Description:     p.Description,
			WarehouseID:     p.WarehouseID,
			ExpectedStock:   expected,
			CountedQuantity: counted,
		})
	}

	c.logger.InfoContext(ctx, "items fetched",
		slog.String("session", session.Key()),
		slog.Int("count", len(items)))

	return items, nil
}

// resolveCounted picks the counted quantity out of the two historical keys.
// counted_quantity wins; absence under both keys (or JSON null) means the
// product has not been counted yet.
func resolveCounted(countedQuantity, qtdContada json.RawMessage) (*int, error) {
	raw := countedQuantity
	if isAbsent(raw) {
		raw = qtdContada
	}
	if isAbsent(raw) {
		return nil, nil
	}

	// The value may be a JSON number (modern endpoint) or a locale-formatted
	// string (legacy endpoint).
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("bad counted quantity %s", raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseQuantity(s)
	if err != nil {
		return nil, fmt.Errorf("bad counted quantity %q: %w", s, err)
	}
	v := int(d.IntPart())
	return &v, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// do runs one request with auth and returns the raw body and status.
// Transport failures come back as typed boundary errors; caller cancellation
// is passed through untouched.
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body io.Reader) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, domain.E(op, domain.KindNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, terr := c.tokens.Token(ctx)
		if terr != nil {
			return nil, 0, domain.E(op, domain.KindNetwork, fmt.Errorf("failed to obtain token: %w", terr))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, 0, err
		}
		return nil, 0, domain.E(op, transportKind(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, domain.E(op, transportKind(err), err)
	}
	return raw, resp.StatusCode, nil
}

func statusError(op string, status int, raw []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &payload)
	msg := payload.Error
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	kind := domain.KindServerError
	if status == http.StatusServiceUnavailable {
		kind = domain.KindServiceUnavailable
	}
	return domain.EStatus(op, kind, status, errors.New(msg))
}

func transportKind(err error) domain.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}
	var nerr interface{ Timeout() bool }
	if errors.As(err, &nerr) && nerr.Timeout() {
		return domain.KindTimeout
	}
	return domain.KindNetwork
}
