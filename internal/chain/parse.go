// Package chain implements the prompt-chain core: parsing fragment
// definitions, building the dependency graph, computing a cycle-checked
// execution order and depth levels, and executing the chain against a
// generation backend.
//
// Import rules:
//   - CAN import: internal/constants, internal/ctxutil, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/ai, internal/chainfile, internal/cli, internal/config
package chain

import (
	"regexp"
	"sort"
	"strings"

	"github.com/greg-randall/prmptr/internal/constants"
	prmptrerrors "github.com/greg-randall/prmptr/internal/errors"
)

// definitionRe matches the start of a fragment definition: [[name]] =
// The name capture is non-greedy, so a line holds at most one marker.
var definitionRe = regexp.MustCompile(`\[\[(.+?)\]\]\s*=`)

// Document holds the parsed fragment definitions of one chain source.
// It is immutable after Parse returns and safe for concurrent reads.
type Document struct {
	definitions map[string]string
	names       []string
	redefined   []string
}

// Parse scans source text for fragment definitions of the form
// `[[name]] = text` and returns the resulting Document.
//
// A fragment's template is everything between its marker's `=` and the
// start of the next marker (end of input for the last one), with
// surrounding whitespace trimmed. Fragment names are trimmed too; an
// empty template is allowed.
//
// When the same name is defined more than once, the last definition wins
// and the name is recorded in Redefined so callers can warn or reject.
//
// Returns ErrNoDefinitions when no marker matches at all, ErrReservedName
// when a definition claims the reserved input name, and ErrEmptyValue when
// a marker's name trims to nothing.
func Parse(source string) (*Document, error) {
	matches := definitionRe.FindAllStringSubmatchIndex(source, -1)
	if len(matches) == 0 {
		return nil, prmptrerrors.ErrNoDefinitions
	}

	doc := &Document{
		definitions: make(map[string]string, len(matches)),
		names:       make([]string, 0, len(matches)),
	}
	flagged := make(map[string]bool)

	for i, m := range matches {
		name := strings.TrimSpace(source[m[2]:m[3]])
		if name == "" {
			return nil, prmptrerrors.Wrapf(prmptrerrors.ErrEmptyValue,
				"fragment name at offset %d", m[0])
		}
		if name == constants.InputName {
			return nil, prmptrerrors.Wrapf(prmptrerrors.ErrReservedName,
				"fragment %q", name)
		}

		// Template runs from the end of this marker to the start of the next.
		end := len(source)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		template := strings.TrimSpace(source[m[1]:end])

		if _, dup := doc.definitions[name]; dup {
			if !flagged[name] {
				flagged[name] = true
				doc.redefined = append(doc.redefined, name)
			}
		} else {
			doc.names = append(doc.names, name)
		}
		doc.definitions[name] = template
	}

	return doc, nil
}

// FromDefinitions builds a Document from a name to template map, for
// sources that carry definitions structurally instead of as marker text.
// Names and templates are trimmed the same way Parse trims them; discovery
// order is the sorted order of the raw keys. Distinct raw keys that trim
// to the same name count as a redefinition, with the later sorted key
// winning.
func FromDefinitions(defs map[string]string) (*Document, error) {
	if len(defs) == 0 {
		return nil, prmptrerrors.ErrNoDefinitions
	}

	raw := make([]string, 0, len(defs))
	for name := range defs {
		raw = append(raw, name)
	}
	sort.Strings(raw)

	doc := &Document{
		definitions: make(map[string]string, len(defs)),
		names:       make([]string, 0, len(defs)),
	}
	flagged := make(map[string]bool)

	for _, key := range raw {
		name := strings.TrimSpace(key)
		if name == "" {
			return nil, prmptrerrors.Wrap(prmptrerrors.ErrEmptyValue, "fragment name")
		}
		if name == constants.InputName {
			return nil, prmptrerrors.Wrapf(prmptrerrors.ErrReservedName, "fragment %q", name)
		}

		if _, dup := doc.definitions[name]; dup {
			if !flagged[name] {
				flagged[name] = true
				doc.redefined = append(doc.redefined, name)
			}
		} else {
			doc.names = append(doc.names, name)
		}
		doc.definitions[name] = strings.TrimSpace(defs[key])
	}

	return doc, nil
}

// Template returns the template text for name and whether it is defined.
func (d *Document) Template(name string) (string, bool) {
	text, ok := d.definitions[name]
	return text, ok
}

// Has reports whether name is defined.
func (d *Document) Has(name string) bool {
	_, ok := d.definitions[name]
	return ok
}

// Len returns the number of distinct fragment definitions.
func (d *Document) Len() int {
	return len(d.definitions)
}

// Names returns the fragment names in discovery order. Redefining a name
// does not move it. The returned slice is a copy.
func (d *Document) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Redefined returns the names that were defined more than once, each
// listed once in first-redefinition order. The returned slice is a copy.
func (d *Document) Redefined() []string {
	if len(d.redefined) == 0 {
		return nil
	}
	out := make([]string, len(d.redefined))
	copy(out, d.redefined)
	return out
}
