package storage

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "test-secret")
	require.NoError(t, err)
	return s
}

func TestUploadDownload(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Upload("documents/quittances/q-1.pdf", []byte("%PDF-1.4")))
	b, err := s.Download("documents/quittances/q-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))
	assert.True(t, s.Exists("documents/quittances/q-1.pdf"))
}

func TestDownload_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Download("missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPathEscapeIsContained(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upload("inside.txt", []byte("ok")))

	// Traversal components are cleaned away, never resolved above the root.
	b, err := s.Download("../inside.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))

	_, err = s.Download("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSignedURLRoundtrip(t *testing.T) {
	s := newTestStore(t)

	signed := s.SignURL("documents/q-1.pdf", time.Hour)
	require.True(t, strings.HasPrefix(signed, "/files/documents/q-1.pdf?"))

	u, err := url.Parse(signed)
	require.NoError(t, err)
	blobPath := strings.TrimPrefix(u.Path, "/files/")

	got, err := s.VerifySignedURL(blobPath, u.Query().Get("exp"), u.Query().Get("sig"))
	require.NoError(t, err)
	assert.Equal(t, "documents/q-1.pdf", got)
}

func TestVerifySignedURL_Expired(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	signed := s.SignURL("q.pdf", time.Minute)
	u, _ := url.Parse(signed)

	s.now = func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }
	_, err := s.VerifySignedURL("q.pdf", u.Query().Get("exp"), u.Query().Get("sig"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignedURL_Tampered(t *testing.T) {
	s := newTestStore(t)
	signed := s.SignURL("q.pdf", time.Hour)
	u, _ := url.Parse(signed)

	_, err := s.VerifySignedURL("other.pdf", u.Query().Get("exp"), u.Query().Get("sig"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = s.VerifySignedURL("q.pdf", u.Query().Get("exp"), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestResolveTemplate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upload("templates/quittance.pdf", []byte("%PDF-1.4 tpl")))

	b, err := s.ResolveTemplate("quittance")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 tpl", string(b))

	b, err = s.ResolveTemplate("templates/quittance.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 tpl", string(b))

	_, err = s.ResolveTemplate("absent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ResolveTemplate("")
	assert.ErrorIs(t, err, ErrNotFound)
}
