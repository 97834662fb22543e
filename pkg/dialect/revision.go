package dialect

import (
	"sort"
	"strings"

	"github.com/walteh/tmplex/pkg/delim"
	"gitlab.com/tozd/go/errors"
)

// Element is an element that can open an embedded region. Packed in two bits.
type Element uint8

const (
	NoElement Element = iota
	Script
	Style
	Template
)

var elementNames = [...]string{NoElement: "", Script: "script", Style: "style", Template: "template"}

func (e Element) String() string {
	if int(e) >= len(elementNames) {
		return "unknown"
	}
	return elementNames[e]
}

// ElementByName matches a tag name case-insensitively.
func ElementByName(name string) (Element, bool) {
	for i, n := range elementNames {
		if i > 0 && strings.EqualFold(n, name) {
			return Element(i), true
		}
	}
	return NoElement, false
}

// Revision describes one version of a host template grammar. The lexer is
// the same for all of them; only this data changes.
type Revision struct {
	Name string
	// Delimiters is the default interpolation pair. The zero value disables
	// interpolation.
	Delimiters delim.Pair
	// Embeddable maps elements to their default dialect. delim.Host means the
	// element only opens a region when a lang attribute says so.
	Embeddable map[Element]delim.Dialect
	// BindingPrefixes are attribute name prefixes whose quoted values are
	// expressions.
	BindingPrefixes []string
	// InterpolateAttributes enables interpolation inside quoted attribute values.
	InterpolateAttributes bool
	// InterpolateRawText enables interpolation inside script and style bodies.
	InterpolateRawText bool
	// Blocks enables `@if (...) { }` control-flow blocks.
	Blocks bool
}

var revisions = map[string]Revision{
	"html": {
		Name:       "html",
		Embeddable: map[Element]delim.Dialect{Script: delim.JavaScript, Style: delim.CSS},
	},
	"vue": {
		Name:               "vue",
		Delimiters:         delim.Default,
		Embeddable:         map[Element]delim.Dialect{Script: delim.JavaScript, Style: delim.CSS, Template: delim.Host},
		BindingPrefixes:    []string{":", "@", "#", "v-"},
		InterpolateRawText: true,
	},
	"angular": {
		Name:                  "angular",
		Delimiters:            delim.Default,
		Embeddable:            map[Element]delim.Dialect{Script: delim.JavaScript, Style: delim.CSS},
		BindingPrefixes:       []string{"[", "(", "*", "bind-", "on-", "bindon-"},
		InterpolateAttributes: true,
		InterpolateRawText:    true,
	},
	"angular17": {
		Name:                  "angular17",
		Delimiters:            delim.Default,
		Embeddable:            map[Element]delim.Dialect{Script: delim.JavaScript, Style: delim.CSS},
		BindingPrefixes:       []string{"[", "(", "*", "bind-", "on-", "bindon-"},
		InterpolateAttributes: true,
		InterpolateRawText:    true,
		Blocks:                true,
	},
	"astro": {
		Name:                  "astro",
		Delimiters:            delim.Brace,
		Embeddable:            map[Element]delim.Dialect{Script: delim.TypeScript, Style: delim.CSS},
		InterpolateAttributes: true,
	},
}

// DefaultRevision is used when nothing else is configured.
const DefaultRevision = "vue"

// LookupRevision returns a copy of the named built-in revision.
func LookupRevision(name string) (*Revision, error) {
	rev, ok := revisions[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown host grammar revision %q (known: %s)", name, strings.Join(RevisionNames(), ", "))
	}
	return &rev, nil
}

// RevisionNames lists the built-in revisions.
func RevisionNames() []string {
	names := make([]string, 0, len(revisions))
	for n := range revisions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsBinding reports whether attr names an expression-valued attribute.
func (r *Revision) IsBinding(attr string) bool {
	for _, p := range r.BindingPrefixes {
		if strings.HasPrefix(attr, p) && len(attr) > len(p) {
			return true
		}
	}
	return false
}
