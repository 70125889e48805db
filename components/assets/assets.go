package assets

import (
	"io"
	"io/fs"
	"sync"

	"github.com/arko-chat/storebridge/components/utils"
)

// Resolver maps asset names to versioned URLs under prefix.
type Resolver struct {
	mu       sync.Mutex
	versions map[string]string
	fs       fs.FS
	prefix   string
	dev      bool
}

var Global *Resolver

func NewResolver(fsys fs.FS, prefix string) *Resolver {
	return &Resolver{fs: fsys, prefix: prefix, versions: make(map[string]string)}
}

func (r *Resolver) SetDev() {
	r.dev = true
}

func (r *Resolver) FS() fs.FS {
	return r.fs
}

func (r *Resolver) version(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.versions[name]; ok && !r.dev {
		return v
	}
	f, err := r.fs.Open(name)
	if err != nil {
		return ""
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	v := utils.Hash(string(data))
	r.versions[name] = v
	return v
}

// URL returns the public URL of name with a content hash for cache busting.
// Missing assets resolve to "".
func (r *Resolver) URL(name string) string {
	v := r.version(name)
	if v == "" {
		return ""
	}
	return r.prefix + name + "?v=" + v
}

func URL(name string) string { return Global.URL(name) }
