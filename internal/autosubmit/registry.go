package autosubmit

import (
	"net/url"
	"strings"
)

// Registry maps URL host fragments to adapters. Detection is a pure lookup
// over eagerly-built adapters: for a given registry the same URL always
// yields the same adapter, and checking happens before any browser exists.
type Registry struct {
	entries []registryEntry
}

type registryEntry struct {
	fragment string
	adapter  SiteAdapter
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an adapter for a host fragment. First registration wins on
// overlapping fragments; order is the order of Register calls.
func (r *Registry) Register(fragment string, adapter SiteAdapter) {
	r.entries = append(r.entries, registryEntry{
		fragment: strings.ToLower(fragment),
		adapter:  adapter,
	})
}

// Detect returns the adapter for the URL's host, or nil when no adapter
// supports the site. Unparseable URLs are unsupported.
func (r *Registry) Detect(rawURL string) SiteAdapter {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil
	}
	for _, entry := range r.entries {
		if strings.Contains(host, entry.fragment) {
			return entry.adapter
		}
	}
	return nil
}

// DefaultRegistry wires the built-in site adapters. deps maps adapter names
// to their per-site dependencies (selector configs differ per site).
func DefaultRegistry(deps map[string]AdapterDeps) *Registry {
	r := NewRegistry()
	r.Register("greenhouse.io", NewGreenhouse(deps["greenhouse"]))
	r.Register("lever.co", NewLever(deps["lever"]))
	r.Register("myworkdayjobs.com", NewWorkday(deps["workday"]))
	r.Register("indeed.com", NewIndeed(deps["indeed"]))
	return r
}
