package attachments

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrRead marks a genuine attachment read or decode failure.
var ErrRead = errors.New("attachment read failed")

// Ref points at a locally-held binary attachment. A nil Ref is a valid
// input everywhere and denotes the absence of an attachment.
type Ref struct {
	name string
	open func() (io.ReadCloser, error)
}

// FromBytes wraps an in-memory attachment, e.g. an uploaded resume.
func FromBytes(name string, data []byte) *Ref {
	return &Ref{
		name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromFile wraps an attachment stored on disk.
func FromFile(path string) *Ref {
	return &Ref{
		name: path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Name returns the attachment's display name.
func (r *Ref) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Loader decodes binary attachments into text. It holds no per-call state
// and supports any number of concurrent invocations; decoded text is cached
// by content digest.
type Loader struct {
	cache *cache.Cache
}

// NewLoader creates a loader with a short-lived decode cache.
func NewLoader() *Loader {
	return &Loader{
		cache: cache.New(15*time.Minute, 5*time.Minute),
	}
}

// Load yields the decoded text content of the referenced attachment. A nil
// ref resolves to an empty string without error; read failures wrap ErrRead.
func (l *Loader) Load(ctx context.Context, ref *Ref) (string, error) {
	if ref == nil {
		return "", nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := ref.open()
	if err != nil {
		return "", fmt.Errorf("%w: open %q: %v", ErrRead, ref.name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %q: %v", ErrRead, ref.name, err)
	}

	digest := fmt.Sprintf("%x", sha256.Sum256(data))
	if cached, found := l.cache.Get(digest); found {
		return cached.(string), nil
	}

	text := strings.ToValidUTF8(string(data), "�")
	l.cache.Set(digest, text, cache.DefaultExpiration)

	return text, nil
}
