package greynoise

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pterm/pterm"
)

const sampleBody = `{"ip":"1.2.3.4","seen":true,"classification":"malicious","cve":["CVE-2021-1234","CVE-2021-5678"],"metadata":{"country":"US","organization":"ExampleOrg"}}`

func testLogger() *pterm.Logger {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
	return logger
}

func TestClient_Lookup_Success(t *testing.T) {
	var gotKey, gotAccept, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("key")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-api-key", testLogger())
	verdict, err := client.Lookup(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if gotPath != "/v2/noise/context/1.2.3.4" {
		t.Errorf("Expected path '/v2/noise/context/1.2.3.4', got '%s'", gotPath)
	}
	if gotKey != "test-api-key" {
		t.Errorf("Expected key header 'test-api-key', got '%s'", gotKey)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept 'application/json', got '%s'", gotAccept)
	}

	if !verdict.Seen {
		t.Error("Expected Seen to be true")
	}
	if verdict.Classification != "malicious" {
		t.Errorf("Expected classification 'malicious', got '%s'", verdict.Classification)
	}
	if len(verdict.CVE) != 2 || verdict.CVE[0] != "CVE-2021-1234" {
		t.Errorf("Unexpected CVE list: %v", verdict.CVE)
	}
	if verdict.Country != "US" {
		t.Errorf("Expected country 'US', got '%s'", verdict.Country)
	}
	if verdict.Org != "ExampleOrg" {
		t.Errorf("Expected org 'ExampleOrg', got '%s'", verdict.Org)
	}
	if verdict.RawBody != sampleBody {
		t.Error("Expected raw body to be retained verbatim")
	}
	if verdict.Parsed == nil {
		t.Error("Expected parsed map to be populated")
	}
}

func TestClient_Lookup_UnseenForcesSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Classification in the body must be ignored when seen is false
		w.Write([]byte(`{"seen":false,"classification":"benign"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", testLogger())
	verdict, err := client.Lookup(context.Background(), "5.6.7.8")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if verdict.Seen {
		t.Error("Expected Seen to be false")
	}
	if verdict.Classification != ClassificationUnseen {
		t.Errorf("Expected classification '%s', got '%s'", ClassificationUnseen, verdict.Classification)
	}
}

func TestClient_Lookup_Non200IsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", testLogger())
	_, err := client.Lookup(context.Background(), "1.2.3.4")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.Status)
	}
}

func TestClient_Lookup_TransportErrorIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "key", testLogger())
	_, err := client.Lookup(context.Background(), "1.2.3.4")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != 0 {
		t.Errorf("Transport errors carry no HTTP status, got %d", apiErr.Status)
	}
	if apiErr.Message == "" {
		t.Error("Expected transport error text to be carried")
	}
}

func TestKeyValidator_Validate(t *testing.T) {
	var requestedIP string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedIP = r.URL.Path
		if r.Header.Get("key") != "good-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"seen":false}`))
	}))
	defer server.Close()

	validator := NewKeyValidator(server.URL, testLogger())

	if !validator.Validate(context.Background(), "good-key") {
		t.Error("Expected valid key to be accepted")
	}
	if requestedIP != "/v2/noise/context/"+ValidateIPAddress {
		t.Errorf("Expected probe against %s, got %s", ValidateIPAddress, requestedIP)
	}

	if validator.Validate(context.Background(), "bad-key") {
		t.Error("Expected invalid key to be rejected")
	}
	if validator.Validate(context.Background(), "") {
		t.Error("Expected empty key to be rejected without a network call")
	}
}
