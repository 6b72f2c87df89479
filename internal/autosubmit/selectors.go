package autosubmit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SelectorConfig maps an adapter's logical field keys to static CSS/XPath
// selectors. It is loaded once by the invoker and passed into the adapter
// constructor; a missing key simply means the resolver goes straight to
// semantic matching.
type SelectorConfig struct {
	Selectors map[string]string `json:"selectors"`
}

// Selector returns the static selector for a logical field key.
func (c *SelectorConfig) Selector(key string) (string, bool) {
	if c == nil || c.Selectors == nil {
		return "", false
	}
	sel, ok := c.Selectors[key]
	return sel, ok && sel != ""
}

// LoadSelectorConfig reads one adapter's selector file. A missing file is a
// valid state and yields an empty config, not an error.
func LoadSelectorConfig(path string) (*SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SelectorConfig{}, nil
		}
		return nil, fmt.Errorf("read selector config %s: %w", path, err)
	}
	var cfg SelectorConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse selector config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadSelectorDir loads <name>.json for each adapter name from dir. Adapters
// without a file get an empty config.
func LoadSelectorDir(dir string, names ...string) (map[string]*SelectorConfig, error) {
	out := make(map[string]*SelectorConfig, len(names))
	for _, name := range names {
		cfg, err := LoadSelectorConfig(filepath.Join(dir, name+".json"))
		if err != nil {
			return nil, err
		}
		out[name] = cfg
	}
	return out, nil
}
