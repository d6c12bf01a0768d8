//go:build !cgo

package external

// Available reports whether the in-process libpostal binding was compiled
// in.
const Available = false

// Extract is a no-op without cgo; the HTTP parser service is the only
// statistical fallback then.
func Extract(raw string) map[string]string { return nil }
