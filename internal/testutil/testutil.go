package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// UserHeader names the header carrying the acting user's id.
const UserHeader = "X-User-ID"

// TestServer wraps an http.Handler for API tests.
type TestServer struct {
	*httptest.Server
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &TestServer{Server: server}
}

// Request represents a test HTTP request
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	Headers     map[string]string
	QueryParams map[string]string
}

// Response is the recorded response with its body decoded: JSON objects
// land in Body, JSON arrays in Items.
type Response struct {
	*httptest.ResponseRecorder
	Body  map[string]interface{}
	Items []interface{}
}

// MakeRequest runs req against the handler without going over the network.
func (ts *TestServer) MakeRequest(t *testing.T, req Request) *Response {
	t.Helper()

	var body *bytes.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if req.QueryParams != nil {
		q := httpReq.URL.Query()
		for key, value := range req.QueryParams {
			q.Add(key, value)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	ts.Server.Config.Handler.ServeHTTP(recorder, httpReq)

	resp := &Response{ResponseRecorder: recorder}
	raw := bytes.TrimSpace(recorder.Body.Bytes())
	switch {
	case len(raw) == 0:
	case raw[0] == '[':
		if err := json.Unmarshal(raw, &resp.Items); err != nil {
			t.Logf("Failed to decode response array: %v", err)
		}
	case raw[0] == '{':
		if err := json.Unmarshal(raw, &resp.Body); err != nil {
			t.Logf("Failed to decode response body: %v", err)
		}
	}
	return resp
}

// RequestAs sends req on behalf of userID.
func (ts *TestServer) RequestAs(t *testing.T, userID string, req Request) *Response {
	t.Helper()
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	req.Headers[UserHeader] = userID
	return ts.MakeRequest(t, req)
}

// Decode unmarshals the raw response into v.
func (r *Response) Decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.ResponseRecorder.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// ErrorCode returns error.code from an error response body.
func (r *Response) ErrorCode() string {
	e, _ := r.Body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

// AssertJSON checks if the response body contains expected JSON fields
func AssertJSON(t *testing.T, resp *Response, field string, expected interface{}) {
	t.Helper()
	if resp.Body[field] != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, resp.Body[field])
	}
}

// AssertJSONExists checks if a JSON field exists in the response
func AssertJSONExists(t *testing.T, resp *Response, field string) {
	t.Helper()
	if _, exists := resp.Body[field]; !exists {
		t.Errorf("Expected field %s to exist in response", field)
	}
}
