package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"whoislookup/internal/lookup"

	"gopkg.in/yaml.v3"
)

// ServerList is the on-disk form of the WHOIS server directory.
type ServerList struct {
	TLD map[string]string `json:"tld" yaml:"tld"`
	IP  []string          `json:"ip" yaml:"ip"`
}

// LoadDirectory reads a JSON or YAML server list and builds the directory.
// Any failure here is meant to stop the process before serving lookups.
func LoadDirectory(path string) (*lookup.Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load whois servers file: %w", err)
	}

	list, err := ParseServerList(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir, err := lookup.NewDirectory(list.TLD, list.IP)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dir, nil
}

func ParseServerList(data []byte, ext string) (*ServerList, error) {
	var raw map[string]interface{}
	var list ServerList

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("error while parsing whois servers YAML: %w", err)
		}
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("error while parsing whois servers YAML: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("error while parsing whois servers JSON: %w", err)
		}
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("error while parsing whois servers JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported whois servers file format: %s", ext)
	}

	for _, key := range []string{"tld", "ip"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("required whois list %q is not set", key)
		}
	}
	return &list, nil
}
