//go:build cgo

package external

import (
	"github.com/openvenues/gopostal/expand"
	"github.com/openvenues/gopostal/parser"
)

// Available reports whether the in-process libpostal binding was compiled
// in. When true, the geocoder can parse addresses locally if the HTTP
// parser service is unreachable.
const Available = true

// Extract runs the in-process libpostal parser and returns its labeled
// components (label -> value), matching the wire format of the HTTP parser
// service.
func Extract(raw string) map[string]string {
	opts := expand.DefaultOptions()
	opts.Languages = []string{"hy", "ru", "en"}
	exps := expand.ExpandAddress(raw, opts)
	best := raw
	if len(exps) > 0 {
		best = exps[0]
	}

	comps := parser.ParseAddress(best)
	if len(comps) == 0 {
		return nil
	}
	labeled := make(map[string]string, len(comps))
	for _, c := range comps {
		labeled[c.Label] = c.Value
	}
	return labeled
}
