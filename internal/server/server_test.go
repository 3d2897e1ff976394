package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locadoc/locadoc/internal/document"
	"github.com/locadoc/locadoc/internal/storage"
	"github.com/locadoc/locadoc/internal/store"
)

type fakeGenerator struct {
	result  *document.Result
	err     error
	lastReq document.Request
}

func (f *fakeGenerator) generate(_ context.Context, req document.Request) (*document.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGenerator) GenerateLease(ctx context.Context, req document.Request) (*document.Result, error) {
	return f.generate(ctx, req)
}

func (f *fakeGenerator) GenerateInventory(ctx context.Context, req document.Request) (*document.Result, error) {
	return f.generate(ctx, req)
}

func (f *fakeGenerator) GenerateReceipt(ctx context.Context, req document.Request) (*document.Result, error) {
	return f.generate(ctx, req)
}

func newTestServer(t *testing.T, gen Generator) *httptest.Server {
	t.Helper()
	blobs, err := storage.New(t.TempDir(), "test-secret")
	require.NoError(t, err)
	srv := New("127.0.0.1:0", gen, blobs, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{result: &document.Result{
		Bytes:       []byte("%PDF-1.4 fake"),
		Filename:    "quittance-2024-01-5.pdf",
		ContentType: "application/pdf",
		Stored:      true,
		StoragePath: "documents/quittances/quittance-2024-01-5.pdf",
		EmailSent:   true,
	}}
	ts := newTestServer(t, gen)

	resp := post(t, ts, "/api/v1/documents/receipt", `{"record_id": 5, "send_email": true}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="quittance-2024-01-5.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "documents/quittances/quittance-2024-01-5.pdf", resp.Header.Get("X-Document-Stored"))
	assert.Equal(t, "true", resp.Header.Get("X-Email-Sent"))

	assert.Equal(t, int64(5), gen.lastReq.RecordID)
	assert.True(t, gen.lastReq.SendEmail)
}

func TestGenerate_ValidationError(t *testing.T) {
	gen := &fakeGenerator{err: &document.ValidationError{Kind: "bail", Missing: []string{"adresse du logement"}}}
	ts := newTestServer(t, gen)

	resp := post(t, ts, "/api/v1/documents/lease", `{"record_id": 1}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp), "adresse du logement")
}

func TestGenerate_NotFound(t *testing.T) {
	gen := &fakeGenerator{err: store.ErrNotFound}
	ts := newTestServer(t, gen)

	resp := post(t, ts, "/api/v1/documents/lease", `{"record_id": 99}`)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "record not found", decodeError(t, resp))
}

func TestGenerate_InternalError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("writer exploded")}
	ts := newTestServer(t, gen)

	resp := post(t, ts, "/api/v1/documents/inventory", `{"record_id": 3}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	// Internal details stay out of the response body.
	assert.Equal(t, "document generation failed", decodeError(t, resp))
}

func TestGenerate_BadRequestBody(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{})

	resp := post(t, ts, "/api/v1/documents/lease", `{invalid json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts, "/api/v1/documents/lease", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "record_id is required", decodeError(t, resp))
}

func TestGenerate_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/api/v1/documents/lease")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFiles_SignedDownload(t *testing.T) {
	blobs, err := storage.New(t.TempDir(), "test-secret")
	require.NoError(t, err)
	require.NoError(t, blobs.Upload("documents/q.pdf", []byte("%PDF-1.4 stored")))

	srv := New("127.0.0.1:0", &fakeGenerator{}, blobs, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	signed := blobs.SignURL("documents/q.pdf", time.Hour)
	resp, err := http.Get(ts.URL + signed)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestFiles_RejectsBadSignature(t *testing.T) {
	blobs, err := storage.New(t.TempDir(), "test-secret")
	require.NoError(t, err)
	require.NoError(t, blobs.Upload("documents/q.pdf", []byte("%PDF-1.4")))

	srv := New("127.0.0.1:0", &fakeGenerator{}, blobs, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	q := url.Values{}
	q.Set("exp", "9999999999")
	q.Set("sig", "forged")
	resp, err := http.Get(ts.URL + "/files/documents/q.pdf?" + q.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRun_GracefulShutdown(t *testing.T) {
	blobs, err := storage.New(t.TempDir(), "test-secret")
	require.NoError(t, err)
	srv := New("127.0.0.1:0", &fakeGenerator{}, blobs, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
