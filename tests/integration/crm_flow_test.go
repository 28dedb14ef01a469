package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharmadesk/backend/internal/database"
	"github.com/pharmadesk/backend/internal/gateway"
	"github.com/pharmadesk/backend/internal/server"
	"github.com/pharmadesk/backend/internal/session"
	"github.com/pharmadesk/backend/internal/store"
)

const (
	sessionSigningSecret = "integration-secret"
	sessionIssuer        = "pharmadesk"
	sessionAudience      = "pharmadesk-api"
	operatorID           = "operator-abc"
	jsonContentType      = "application/json"
)

func TestCRMSyncFlow(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(filepath.Join(testContext.TempDir(), "crm.db"), zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}

	gatewayConfig := gateway.Config{
		Database:   db,
		Session:    session.NewContextProvider(),
		IDProvider: gateway.NewUUIDProvider(),
		Logger:     zap.NewNop(),
	}
	leads, err := gateway.NewLeadGateway(gatewayConfig)
	if err != nil {
		testContext.Fatalf("failed to build lead gateway: %v", err)
	}
	manufacturers, err := gateway.NewManufacturerGateway(gatewayConfig)
	if err != nil {
		testContext.Fatalf("failed to build manufacturer gateway: %v", err)
	}
	orders, err := gateway.NewOrderGateway(gateway.OrderGatewayConfig{Config: gatewayConfig, Leads: leads})
	if err != nil {
		testContext.Fatalf("failed to build order gateway: %v", err)
	}
	documents, err := gateway.NewDocumentGateway(gatewayConfig)
	if err != nil {
		testContext.Fatalf("failed to build document gateway: %v", err)
	}

	crmStore, err := store.New(store.Config{
		Leads:         leads,
		Manufacturers: manufacturers,
		Orders:        orders,
		Documents:     documents,
		Logger:        zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build store: %v", err)
	}

	tokenManager := session.NewTokenManager(session.TokenManagerConfig{
		SigningSecret: []byte(sessionSigningSecret),
		Issuer:        sessionIssuer,
		Audience:      sessionAudience,
		TokenTTL:      time.Hour,
	})
	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:          crmStore,
		TokenManager:   tokenManager,
		Logger:         zap.NewNop(),
		AllowDevTokens: true,
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := newTestServer(handler)
	defer testServer.close()

	token := testServer.mintToken(testContext, operatorID)

	lead := testServer.postJSON(testContext, "/leads", token, `{"name":"Test User","company":"Acme","status":"contacted"}`, http.StatusCreated)
	leadID := lead["id"].(string)
	if leadID == "" {
		testContext.Fatalf("expected lead id, got %#v", lead)
	}

	orderBody := fmt.Sprintf(`{"lead_id":%q,"items":[{"product_id":"p-1","name":"Amoxicillin 500mg","quantity":3,"unit_price":12.5},{"product_id":"p-2","name":"Ibuprofen 200mg","quantity":10,"unit_price":0.8}]}`, leadID)
	order := testServer.postJSON(testContext, "/orders", token, orderBody, http.StatusCreated)
	if order["lead_name"] != "Test User" {
		testContext.Fatalf("expected resolved lead name, got %v", order["lead_name"])
	}
	if order["total_amount"].(float64) != 45.5 {
		testContext.Fatalf("expected derived total 45.5, got %v", order["total_amount"])
	}
	orderID := order["id"].(string)

	documentBody := fmt.Sprintf(`{"title":"Supply Agreement","type":"contract","related_to":{"kind":"order","id":%q}}`, orderID)
	testServer.postJSON(testContext, "/documents", token, documentBody, http.StatusCreated)

	state := testServer.getJSON(testContext, "/state", token)
	if len(state["leads"].([]any)) != 1 || len(state["orders"].([]any)) != 1 || len(state["documents"].([]any)) != 1 {
		testContext.Fatalf("state did not converge: %#v", state)
	}

	// Deleting the lead leaves the order dangling; its display name must
	// degrade to the fallback on the next snapshot.
	deleteResponse := testServer.deleteJSON(testContext, "/leads/"+leadID, token)
	if deleteResponse["deleted"] != true {
		testContext.Fatalf("expected lead delete to succeed, got %#v", deleteResponse)
	}

	state = testServer.getJSON(testContext, "/state", token)
	if len(state["leads"].([]any)) != 0 {
		testContext.Fatalf("expected no leads after delete, got %#v", state["leads"])
	}
	remainingOrders := state["orders"].([]any)
	if len(remainingOrders) != 1 {
		testContext.Fatalf("expected order to survive lead delete, got %#v", remainingOrders)
	}
	if remainingOrders[0].(map[string]any)["lead_name"] != "Unknown" {
		testContext.Fatalf("expected fallback lead name, got %v", remainingOrders[0])
	}
}

type testServer struct {
	server *httptest.Server
}

func newTestServer(handler http.Handler) *testServer {
	return &testServer{server: httptest.NewServer(handler)}
}

func (s *testServer) close() {
	s.server.Close()
}

func (s *testServer) mintToken(testContext *testing.T, userID string) string {
	testContext.Helper()
	response := s.request(testContext, http.MethodPost, "/session/token", "", fmt.Sprintf(`{"user_id":%q}`, userID), http.StatusOK)
	token, _ := response["access_token"].(string)
	if token == "" {
		testContext.Fatalf("expected access token, got %#v", response)
	}
	return token
}

func (s *testServer) postJSON(testContext *testing.T, path, token, body string, expectedStatus int) map[string]any {
	testContext.Helper()
	return s.request(testContext, http.MethodPost, path, token, body, expectedStatus)
}

func (s *testServer) getJSON(testContext *testing.T, path, token string) map[string]any {
	testContext.Helper()
	return s.request(testContext, http.MethodGet, path, token, "", http.StatusOK)
}

func (s *testServer) deleteJSON(testContext *testing.T, path, token string) map[string]any {
	testContext.Helper()
	return s.request(testContext, http.MethodDelete, path, token, "", http.StatusOK)
}

func (s *testServer) request(testContext *testing.T, method, path, token, body string, expectedStatus int) map[string]any {
	testContext.Helper()

	request, err := http.NewRequest(method, s.server.URL+path, bytes.NewBufferString(body))
	if err != nil {
		testContext.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		request.Header.Set("Content-Type", jsonContentType)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		testContext.Fatalf("request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		testContext.Fatalf("%s %s: expected status %d, got %d", method, path, expectedStatus, response.StatusCode)
	}

	var decoded map[string]any
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		testContext.Fatalf("failed to decode response: %v", err)
	}
	return decoded
}
