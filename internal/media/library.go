package media

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind classifies an attachment by what the viewer can show
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

var kinds = map[string]Kind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".heic": KindImage,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".m4v":  KindVideo,
	".webm": KindVideo,
	".3gp":  KindVideo,
}

// KindOf classifies a path or URI by its extension
func KindOf(ref string) Kind {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		ref = u.Path
	}
	if k, ok := kinds[strings.ToLower(filepath.Ext(ref))]; ok {
		return k
	}
	return KindUnknown
}

// IsURI reports whether ref already carries a scheme and can be stored as is
func IsURI(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && len(u.Scheme) > 1
}

// Library stores attached files under a local directory
type Library struct {
	dir string
}

// NewLibrary creates the media directory if needed
func NewLibrary(dir string) (*Library, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve media dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Library{dir: abs}, nil
}

// Dir returns the absolute media directory
func (l *Library) Dir() string {
	return l.dir
}

// Import copies a local image or video into the library and returns its URI
func (l *Library) Import(src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	return l.Save(filepath.Base(src), f)
}

// Save writes r into the library under a fresh name with the extension of name
func (l *Library) Save(name string, r io.Reader) (string, error) {
	if KindOf(name) == KindUnknown {
		return "", fmt.Errorf("unsupported media type: %s", name)
	}

	dst := filepath.Join(l.dir, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy media: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copy media: %w", err)
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dst)}).String(), nil
}

// Lookup returns the path of a stored file by its base name
func (l *Library) Lookup(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid media name: %q", name)
	}
	p := filepath.Join(l.dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("lookup media: %w", err)
	}
	return p, nil
}
