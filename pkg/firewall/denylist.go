package firewall

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lbsim/pkg/request"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// denyList is the on-disk deny-list shape, shared by YAML and TOML files.
type denyList struct {
	Blocked []string `yaml:"blocked" toml:"blocked"`
}

// LoadDenyList reads a deny-list file and returns its addresses. The format
// is picked by extension: .yaml/.yml or .toml. Every entry must be a
// dotted-quad address.
func LoadDenyList(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's config
	if err != nil {
		return nil, fmt.Errorf("read deny-list %s: %w", path, err)
	}

	var list denyList
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse deny-list %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse deny-list %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("deny-list %s: unsupported extension %q", path, ext)
	}

	for _, ip := range list.Blocked {
		if err := request.ValidateIP(ip); err != nil {
			return nil, fmt.Errorf("deny-list %s: %w", path, err)
		}
	}

	return list.Blocked, nil
}
