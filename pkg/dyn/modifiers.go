package dyn

import "strings"

// Modifiers is a set of member modifier flags. Bit values follow the class
// file access flags.
type Modifiers uint16

const (
	Public       Modifiers = 0x0001
	Private      Modifiers = 0x0002
	Protected    Modifiers = 0x0004
	Static       Modifiers = 0x0008
	Final        Modifiers = 0x0010
	Synchronized Modifiers = 0x0020
	Volatile     Modifiers = 0x0040
	Transient    Modifiers = 0x0080
	Native       Modifiers = 0x0100
	Interface    Modifiers = 0x0200
	Abstract     Modifiers = 0x0400
	Strict       Modifiers = 0x0800
)

var modifierNames = []struct {
	m    Modifiers
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Abstract, "abstract"},
	{Static, "static"},
	{Final, "final"},
	{Transient, "transient"},
	{Volatile, "volatile"},
	{Synchronized, "synchronized"},
	{Native, "native"},
	{Strict, "strictfp"},
	{Interface, "interface"},
}

// ModifierByName returns the flag for a modifier keyword. Matching is case
// insensitive and also accepts "strict" for strictfp.
func ModifierByName(name string) (Modifiers, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "strict" {
		return Strict, true
	}
	for _, mn := range modifierNames {
		if mn.name == name {
			return mn.m, true
		}
	}
	return 0, false
}

// ParseModifiers parses a whitespace or comma separated keyword list such
// as "public static final". Unknown keywords are returned in unknown.
func ParseModifiers(list string) (m Modifiers, unknown []string) {
	for _, word := range strings.FieldsFunc(list, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' }) {
		f, ok := ModifierByName(word)
		if !ok {
			unknown = append(unknown, word)
			continue
		}
		m |= f
	}
	return m, unknown
}

// Has reports whether every flag in f is set.
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

// HasAny reports whether at least one flag in f is set.
func (m Modifiers) HasAny(f Modifiers) bool { return m&f != 0 }

// String renders the keywords in declaration order.
func (m Modifiers) String() string {
	var words []string
	for _, mn := range modifierNames {
		if m&mn.m != 0 {
			words = append(words, mn.name)
		}
	}
	return strings.Join(words, " ")
}
