package embedlex

import (
	"fmt"

	"github.com/walteh/tmplex/pkg/delim"
	"github.com/walteh/tmplex/pkg/dialect"
	"github.com/walteh/tmplex/pkg/hostlex"
	"github.com/walteh/tmplex/pkg/sublex"
	"gitlab.com/tozd/go/errors"
)

// Region is the dispatcher level a state is in. Interpolation is orthogonal
// (State.Interpolating) and returns to whatever region is underneath.
type Region uint8

const (
	RegionHost Region = iota
	// RegionTagAttributes is the attribute list of an embeddable start tag.
	RegionTagAttributes
	// RegionEmbeddedBody is the body of a script/style (or lang'd template).
	RegionEmbeddedBody
)

func (r Region) String() string {
	switch r {
	case RegionHost:
		return "host"
	case RegionTagAttributes:
		return "tag-attributes"
	case RegionEmbeddedBody:
		return "embedded-body"
	}
	return fmt.Sprintf("region(%d)", uint8(r))
}

// State is the unpacked lexer state. It is always exchanged as an int at the
// API boundary, see Pack and Unpack.
type State struct {
	Host   hostlex.State
	Region Region
	// Dialect is the dialect of the current region: the body dialect in
	// RegionEmbeddedBody, delim.Expression inside a binding attribute value,
	// delim.Host otherwise.
	Dialect delim.Dialect
	Element dialect.Element
	// Interpolating is set between an open delimiter and its close.
	Interpolating bool
	// Unterminated is set after the last token of an interpolation that never
	// found its close delimiter.
	Unterminated bool
	// Attr classifies the attribute being lexed.
	Attr dialect.AttrKind
	// Hint is the dialect named so far by lang/type in an embeddable start tag.
	Hint         delim.Dialect
	HintFromLang bool
	// Sub is the packed state of the body sub-lexer.
	Sub sublex.State
}

// bit layout, least significant first
const (
	hostShift    = 0
	hostBits     = hostlex.StateBits
	regionShift  = hostShift + hostBits
	regionBits   = 2
	dialectShift = regionShift + regionBits
	dialectBits  = 4
	elementShift = dialectShift + dialectBits
	elementBits  = 2
	interpShift  = elementShift + elementBits
	untermShift  = interpShift + 1
	attrShift    = untermShift + 1
	attrBits     = 2
	hintShift    = attrShift + attrBits
	hintBits     = 4
	fromLangBit  = hintShift + hintBits
	subShift     = fromLangBit + 1
	subBits      = sublex.StateBits

	// StateBits is the number of bits a packed state occupies.
	StateBits = subShift + subBits
)

func field(v int, shift, bits int) int {
	return (v >> shift) & (1<<bits - 1)
}

func flag(v int, shift int) bool {
	return v>>shift&1 == 1
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Pack encodes s in a non-negative int.
func Pack(s State) int {
	v := int(s.Host)&(1<<hostBits-1)<<hostShift |
		int(s.Region)&(1<<regionBits-1)<<regionShift |
		int(s.Dialect)&(1<<dialectBits-1)<<dialectShift |
		int(s.Element)&(1<<elementBits-1)<<elementShift |
		b2i(s.Interpolating)<<interpShift |
		b2i(s.Unterminated)<<untermShift |
		int(s.Attr)&(1<<attrBits-1)<<attrShift |
		int(s.Hint)&(1<<hintBits-1)<<hintShift |
		b2i(s.HintFromLang)<<fromLangBit |
		int(s.Sub)&(1<<subBits-1)<<subShift
	return v
}

// Unpack decodes v. Bits above StateBits are ignored; use Validate to reject
// them.
func Unpack(v int) State {
	return State{
		Host:          hostlex.State(field(v, hostShift, hostBits)),
		Region:        Region(field(v, regionShift, regionBits)),
		Dialect:       delim.Dialect(field(v, dialectShift, dialectBits)),
		Element:       dialect.Element(field(v, elementShift, elementBits)),
		Interpolating: flag(v, interpShift),
		Unterminated:  flag(v, untermShift),
		Attr:          dialect.AttrKind(field(v, attrShift, attrBits)),
		Hint:          delim.Dialect(field(v, hintShift, hintBits)),
		HintFromLang:  flag(v, fromLangBit),
		Sub:           sublex.State(field(v, subShift, subBits)),
	}
}

// ValidateInt checks that v is a state the lexer could have produced.
func ValidateInt(v int) error {
	if v < 0 || v >= 1<<StateBits {
		return errors.Errorf("lexer state %d out of range [0, %d)", v, 1<<StateBits)
	}
	return Unpack(v).Validate()
}

// Validate checks the field combinations the dispatcher relies on.
func (s State) Validate() error {
	switch {
	case s.Host > hostlex.MaxState:
		return errors.Errorf("invalid host state %d", s.Host)
	case s.Region > RegionEmbeddedBody:
		return errors.Errorf("invalid region %d", s.Region)
	case s.Region == RegionEmbeddedBody && (s.Dialect == delim.Host || s.Element == dialect.NoElement):
		return errors.Errorf("embedded body without dialect or element")
	case s.Region == RegionTagAttributes && s.Element == dialect.NoElement:
		return errors.Errorf("tag attributes without element")
	case s.Region == RegionHost && s.Element != dialect.NoElement:
		return errors.Errorf("element %s outside of a region", s.Element)
	case s.Region != RegionEmbeddedBody && s.Dialect != delim.Host && !(s.Dialect == delim.Expression && s.Host.InAttrValue()):
		return errors.Errorf("dialect %s outside of a region", s.Dialect)
	case s.Unterminated && !s.Interpolating:
		return errors.Errorf("unterminated flag outside of an interpolation")
	case s.Interpolating && s.Region != RegionEmbeddedBody && s.Host != hostlex.Data && !s.Host.InAttrValue():
		return errors.Errorf("interpolation in host state %s", s.Host)
	}
	return nil
}

// Active returns the dialect tokens are produced under in this state.
func (s State) Active() delim.Dialect {
	if s.Interpolating {
		return delim.Expression
	}
	return s.Dialect
}

func (s State) String() string {
	out := fmt.Sprintf("%s/%s", s.Region, s.Host)
	if s.Dialect != delim.Host {
		out += "/" + s.Dialect.String()
	}
	if s.Element != dialect.NoElement {
		out += "<" + s.Element.String() + ">"
	}
	if s.Interpolating {
		out += "/interpolating"
	}
	if s.Unterminated {
		out += "!unterminated"
	}
	return out
}
