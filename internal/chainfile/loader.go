// Package chainfile loads chain sources from disk. Two forms are
// supported: marker text, where definitions are written inline as
// `[[name]] = template`, and YAML, where the file is a flat mapping of
// fragment name to template text.
package chainfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/greg-randall/prmptr/internal/chain"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// Loader loads chain documents from files.
type Loader struct {
	basePath string
}

// NewLoader creates a loader. basePath resolves relative chain file paths,
// typically the current working directory.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Load reads and parses a chain file. The format is detected from the
// extension: .yaml and .yml files hold a flat name to template mapping,
// anything else is marker text.
func (l *Loader) Load(path string) (*chain.Document, error) {
	resolvedPath := l.resolvePath(path)

	data, err := os.ReadFile(resolvedPath) //nolint:gosec // Path comes from the user invocation
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", prmptrerrors.ErrChainFileMissing, resolvedPath)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: permission denied: %s", prmptrerrors.ErrChainFileUnreadable, resolvedPath)
		}
		return nil, fmt.Errorf("%w: %w", prmptrerrors.ErrChainFileUnreadable, err)
	}

	var doc *chain.Document
	if l.detectFormat(path) == "yaml" {
		doc, err = parseYAML(data)
	} else {
		doc, err = chain.Parse(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", prmptrerrors.ErrChainFileParse, err)
	}

	return doc, nil
}

// resolvePath supports both absolute and relative chain file paths.
// Relative paths are resolved against the loader's basePath.
func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.basePath, path)
}

// detectFormat returns "yaml" for .yaml/.yml files and "text" for
// everything else.
func (l *Loader) detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "text"
	}
}

// parseYAML decodes a flat name to template mapping. yaml.v3 rejects
// duplicate keys on its own, so YAML chains cannot silently redefine a
// fragment the way marker text can.
func parseYAML(data []byte) (*chain.Document, error) {
	var defs map[string]string
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	return chain.FromDefinitions(defs)
}

// ReadInput reads the initial input file for a run.
func ReadInput(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the user invocation
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", prmptrerrors.ErrInputFileMissing, path)
		}
		return "", fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return string(data), nil
}
