//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/LucasDeWerk/vstcount/internal/adapters/db"
	"github.com/LucasDeWerk/vstcount/internal/adapters/erp"
	redis_a "github.com/LucasDeWerk/vstcount/internal/adapters/redis_adapter"
	"github.com/LucasDeWerk/vstcount/internal/adapters/vision"
	"github.com/LucasDeWerk/vstcount/internal/core/services"
	"github.com/LucasDeWerk/vstcount/internal/handlers"
	"github.com/LucasDeWerk/vstcount/test/helpers"
)

// CountE2ESuite drives the whole counting workflow over HTTP against real
// Postgres (dockertest), real Redis semantics (miniredis), and stub vision
// and ERP services.
type CountE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis

	visionServer *httptest.Server
	erpServer    *httptest.Server

	visionDown  atomic.Bool
	detectCount atomic.Int64
}

func (s *CountE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.visionServer = s.startVisionStub()
	s.erpServer = s.startERPStub()

	s.server = s.startAPIServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *CountE2ESuite) TearDownSuite() {
	s.server.Close()
	s.visionServer.Close()
	s.erpServer.Close()
}

func (s *CountE2ESuite) SetupTest() {
	s.visionDown.Store(false)
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *CountE2ESuite) TestDetectionCountWorkflow() {
	// 1. Open a session; the stub ERP serves the product list
	key := s.openSession("INV-7")

	// 2. Begin an attempt for the round tube product
	var attempt map[string]interface{}
	resp := s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/attempts", key), map[string]string{
		"product_id":  "P-100",
		"object_type": "round_tube",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.decodeResponse(resp, &attempt)
	attemptID := attempt["id"].(string)
	s.Equal("capturing", attempt["state"])

	// 3. Run detection; the stub reports 8 objects
	resp = s.uploadImage(attemptID, []byte("fake-jpeg-bytes"))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &attempt)
	s.Equal("reconciling", attempt["state"])
	s.EqualValues(8, attempt["estimated_count"])
	s.EqualValues(8, attempt["final_count"])

	// 4. The operator corrects the count: two missed, one phantom
	for i := 0; i < 2; i++ {
		resp = s.makeRequest("POST", fmt.Sprintf("/count/attempts/%s/adjustments", attemptID),
			map[string]string{"kind": "add"})
		s.Equal(http.StatusOK, resp.StatusCode)
	}
	resp = s.makeRequest("POST", fmt.Sprintf("/count/attempts/%s/adjustments", attemptID),
		map[string]string{"kind": "remove"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &attempt)
	s.EqualValues(9, attempt["final_count"])

	// 5. Confirm; the count lands in the ERP and the journal
	resp = s.makeRequest("POST", fmt.Sprintf("/count/attempts/%s/confirm", attemptID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &attempt)
	s.Equal("confirmed", attempt["state"])
	s.Equal("-1", attempt["variance"]) // counted 9 against book stock 10

	// 6. The item now carries the confirmed quantity
	resp = s.makeRequest("GET", fmt.Sprintf("/count/sessions/%s/items", key), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var itemList map[string]interface{}
	s.decodeResponse(resp, &itemList)
	items := itemList["items"].([]interface{})
	first := items[0].(map[string]interface{})
	s.Equal("P-100", first["product_id"])
	s.EqualValues(9, first["counted_quantity"])

	// 7. The journal recorded the confirmed submission
	entries := s.listJournal("?company_id=ACME&outcome=confirmed")
	s.Len(entries, 1)
	entry := entries[0].(map[string]interface{})
	s.Equal("P-100", entry["product_id"])
	s.EqualValues(9, entry["counted_quantity"])
	s.Equal("detection", entry["source"])
}

func (s *CountE2ESuite) TestManualCountWorkflow() {
	key := s.openSession("INV-7")

	resp := s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/items/P-200/manual", key),
		map[string]int{"counted": 7})
	s.Equal(http.StatusOK, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	s.EqualValues(7, item["counted_quantity"])

	entries := s.listJournal("?product_id=P-200")
	s.Len(entries, 1)
	s.Equal("manual", entries[0].(map[string]interface{})["source"])
}

func (s *CountE2ESuite) TestCancelDiscardsAttempt() {
	key := s.openSession("INV-7")

	var attempt map[string]interface{}
	resp := s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/attempts", key), map[string]string{
		"product_id":  "P-100",
		"object_type": "bar",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.decodeResponse(resp, &attempt)
	attemptID := attempt["id"].(string)

	resp = s.makeRequest("DELETE", fmt.Sprintf("/count/attempts/%s", attemptID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.makeRequest("GET", fmt.Sprintf("/count/attempts/%s", attemptID), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	// The product is free again
	resp = s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/attempts", key), map[string]string{
		"product_id":  "P-100",
		"object_type": "bar",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	s.decodeResponse(resp, &attempt)
	resp = s.makeRequest("DELETE", fmt.Sprintf("/count/attempts/%s", attempt["id"].(string)), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *CountE2ESuite) TestDetectionServiceDown() {
	key := s.openSession("INV-7")

	var attempt map[string]interface{}
	resp := s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/attempts", key), map[string]string{
		"product_id":  "P-100",
		"object_type": "round_tube",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.decodeResponse(resp, &attempt)
	attemptID := attempt["id"].(string)

	s.visionDown.Store(true)

	resp = s.uploadImage(attemptID, []byte("fake-jpeg-bytes"))
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	var errBody map[string]interface{}
	s.decodeResponse(resp, &errBody)
	s.Equal("service_unavailable", errBody["kind"])

	// Manual counting still works with the model server offline
	s.visionDown.Store(false)
	resp = s.makeRequest("DELETE", fmt.Sprintf("/count/attempts/%s", attemptID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp = s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/items/P-100/manual", key),
		map[string]int{"counted": 11})
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *CountE2ESuite) TestDuplicateAttemptRejected() {
	key := s.openSession("INV-7")

	resp := s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/attempts", key), map[string]string{
		"product_id":  "P-100",
		"object_type": "sheet",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	var attempt map[string]interface{}
	s.decodeResponse(resp, &attempt)

	resp = s.makeRequest("POST", fmt.Sprintf("/count/sessions/%s/attempts", key), map[string]string{
		"product_id":  "P-100",
		"object_type": "sheet",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp = s.makeRequest("DELETE", fmt.Sprintf("/count/attempts/%s", attempt["id"].(string)), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

// Helper methods

func (s *CountE2ESuite) openSession(inventoryID string) string {
	resp := s.makeRequest("POST", "/count/sessions", map[string]string{
		"company_id":   "ACME",
		"branch_id":    "01",
		"inventory_id": inventoryID,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var state map[string]interface{}
	s.decodeResponse(resp, &state)
	key := state["key"].(string)
	s.Require().NotEmpty(key)
	return key
}

func (s *CountE2ESuite) listJournal(query string) []interface{} {
	resp := s.makeRequest("GET", "/count/journal"+query, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	s.decodeResponse(resp, &result)
	return result["entries"].([]interface{})
}

func (s *CountE2ESuite) uploadImage(attemptID string, img []byte) *http.Response {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "capture.jpg")
	s.Require().NoError(err)
	_, err = io.Copy(part, bytes.NewReader(img))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req, err := http.NewRequest("POST", s.baseURL+fmt.Sprintf("/count/attempts/%s/detect", attemptID), body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *CountE2ESuite) startVisionStub() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if s.visionDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /detect", func(w http.ResponseWriter, r *http.Request) {
		if s.visionDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		s.detectCount.Add(1)

		detections := make([]map[string]interface{}, 0, 8)
		for i := 0; i < 8; i++ {
			detections = append(detections, map[string]interface{}{
				"confidence": 0.9,
				"center":     map[string]int{"x": 40 * i, "y": 120},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"total_objects":   8,
			"unique_objects":  8,
			"processed_image": base64.StdEncoding.EncodeToString([]byte("annotated")),
			"detections":      detections,
		})
	})

	return httptest.NewServer(mux)
}

func (s *CountE2ESuite) startERPStub() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/inventories/items", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"product_id":     "P-100",
					"description":    "Round tube 20x2.0mm 6m",
					"warehouse_id":   "WH-1",
					"expected_stock": "10,0000",
				},
				{
					"product_id":     "P-200",
					"description":    "Square tube 40x40mm 6m",
					"warehouse_id":   "WH-1",
					"expected_stock": "25,0000",
				},
			},
		})
	})

	mux.HandleFunc("POST /api/v1/inventories/counts", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InventoryID string `json:"inventory_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"inventory_id": req.InventoryID})
	})

	return httptest.NewServer(mux)
}

func (s *CountE2ESuite) startAPIServer() *httptest.Server {
	slogger := helpers.TestLogger()
	cfg := helpers.LoadTestConfig()

	redisClient := redis.NewClient(&redis.Options{Addr: s.testRedis.Server.Addr()})
	cache := redis_a.NewCache(redisClient, cfg.Redis.SessionTTL, slogger)

	visionClient := vision.NewClient(vision.Config{
		BaseURL:       s.visionServer.URL,
		DetectTimeout: 10 * time.Second,
		ProbeTimeout:  2 * time.Second,
	}, nil, slogger)

	erpClient := erp.NewClient(erp.Config{
		BaseURL:       s.erpServer.URL,
		SubmitTimeout: 5 * time.Second,
	}, nil, slogger)

	journalRepo := db.NewJournalRepository(s.testDB.Database, slogger)

	service := services.NewCountService(
		visionClient,
		erpClient,
		erpClient,
		journalRepo,
		cache,
		nil, // no evidence archiving in e2e
		os.TempDir(),
		slogger,
	)

	countHandler := handlers.NewCountHandler(service, slogger)
	journalHandler := handlers.NewJournalHandler(journalRepo, slogger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/count/sessions", countHandler.OpenSession)
	mux.HandleFunc("GET /api/v1/count/sessions/{id}/items", countHandler.ListItems)
	mux.HandleFunc("POST /api/v1/count/sessions/{id}/attempts", countHandler.BeginAttempt)
	mux.HandleFunc("POST /api/v1/count/sessions/{id}/items/{productId}/manual", countHandler.SubmitManual)
	mux.HandleFunc("GET /api/v1/count/attempts/{attemptId}", countHandler.GetAttempt)
	mux.HandleFunc("POST /api/v1/count/attempts/{attemptId}/detect", countHandler.Detect)
	mux.HandleFunc("POST /api/v1/count/attempts/{attemptId}/adjustments", countHandler.Adjust)
	mux.HandleFunc("DELETE /api/v1/count/attempts/{attemptId}", countHandler.Cancel)
	mux.HandleFunc("POST /api/v1/count/attempts/{attemptId}/confirm", countHandler.Confirm)
	mux.HandleFunc("GET /api/v1/count/journal", journalHandler.List)

	return httptest.NewServer(mux)
}

func (s *CountE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *CountE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestCountE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(CountE2ESuite))
}
