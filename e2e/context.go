package e2e

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	baseURL   string
	salt      string
	adminSalt string
	client    *http.Client

	status int
	body   []byte
}

// NewTestContext reads the target server and salts from the environment.
func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:   envOr("SCOREAPI_E2E_URL", "http://localhost:8080"),
		salt:      envOr("SCOREAPI_E2E_SALT", "Otus"),
		adminSalt: envOr("SCOREAPI_E2E_ADMIN_SALT", "42"),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Reset clears the last response between scenarios.
func (tc *TestContext) Reset() {
	tc.status = 0
	tc.body = nil
}

func (tc *TestContext) BaseURL() string { return tc.baseURL }

func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) POSTRaw(path, body string) error {
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.status = resp.StatusCode
	tc.body = body
	return nil
}

func (tc *TestContext) StatusCode() int { return tc.status }

func (tc *TestContext) ResponseBody() []byte { return tc.body }

// ResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.body, &data); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", string(tc.body), err)
	}
	v, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", field, string(tc.body))
	}
	return v, nil
}

// UserToken derives the token the server expects for account and login.
func (tc *TestContext) UserToken(account, login string) string {
	return digest(account + login + tc.salt)
}

// AdminToken derives the admin token for the current hour.
func (tc *TestContext) AdminToken() string {
	return digest(time.Now().Format("2006010215") + tc.adminSalt)
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
