// Package storage is a disk-rooted blob store for generated documents and
// uploaded templates, with HMAC-signed expiring download URLs so the HTTP
// layer can hand out links without exposing the filesystem.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound means the requested blob does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidSignature means a signed URL failed verification or expired.
	ErrInvalidSignature = errors.New("invalid or expired signature")
)

// Store reads and writes blobs under a single root directory.
type Store struct {
	root   string
	secret []byte
	now    func() time.Time
}

// New builds a store rooted at dir, creating it if needed. secret signs
// download URLs.
func New(dir, secret string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: dir, secret: []byte(secret), now: time.Now}, nil
}

// resolve maps a blob path to a file path, rejecting escapes from the root.
func (s *Store) resolve(blobPath string) (string, error) {
	clean := path.Clean("/" + blobPath)
	if clean == "/" {
		return "", fmt.Errorf("empty blob path")
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Download returns the blob bytes at path.
func (s *Store) Download(blobPath string) ([]byte, error) {
	full, err := s.resolve(blobPath)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, blobPath)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return b, nil
}

// Upload stores data at path, creating parent directories as needed.
func (s *Store) Upload(blobPath string, data []byte) error {
	full, err := s.resolve(blobPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// Exists reports whether a blob is present.
func (s *Store) Exists(blobPath string) bool {
	full, err := s.resolve(blobPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// SignURL issues a relative signed URL for a blob, valid for ttl.
func (s *Store) SignURL(blobPath string, ttl time.Duration) string {
	exp := s.now().Add(ttl).Unix()
	sig := s.signature(blobPath, exp)
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)
	escaped := strings.TrimPrefix(path.Clean("/"+blobPath), "/")
	return "/files/" + escaped + "?" + q.Encode()
}

// VerifySignedURL checks signature and expiry of a /files request and
// returns the blob path it covers.
func (s *Store) VerifySignedURL(blobPath, expStr, sig string) (string, error) {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", ErrInvalidSignature
	}
	if s.now().Unix() > exp {
		return "", ErrInvalidSignature
	}
	want := s.signature(blobPath, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return "", ErrInvalidSignature
	}
	return blobPath, nil
}

func (s *Store) signature(blobPath string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", path.Clean("/"+blobPath), exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// ResolveTemplate finds the template blob for a reference: an exact path
// first, then the conventional templates/<ref>.pdf location.
func (s *Store) ResolveTemplate(ref string) ([]byte, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty template reference", ErrNotFound)
	}
	if b, err := s.Download(ref); err == nil {
		return b, nil
	}
	return s.Download(path.Join("templates", ref+".pdf"))
}
