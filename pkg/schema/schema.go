// Package schema loads type declarations from TOML, registers them with a
// typeutil.Runtime and generates the equivalent Go registration code.
//
//	[[type]]
//	name = "geo.Point"
//	dynamic = true
//
//	  [[type.property]]
//	  name = "x"
//	  slot = 0
//	  field = true
//	  modifiers = "public"
//
//	  [[type.method]]
//	  name = "Point"
//	  slot = 0
//	  params = "int,int"
//	  constructor = true
package schema

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"dyntype/pkg/dyn"
	"dyntype/pkg/signature"
)

// Schema is a set of type declarations.
type Schema struct {
	Type []TypeDecl
}

// TypeDecl declares one type. Dynamic types are backed by dyn.Instance;
// the others describe host values through a dispatcher.
type TypeDecl struct {
	Name     string
	Super    string
	Dynamic  bool
	Property []PropertyDecl
	Method   []MethodDecl
}

// PropertyDecl declares a property. Slot is the static slot for static
// properties and the instance slot otherwise; Dynamic ignores Slot.
type PropertyDecl struct {
	Name      string
	Slot      int
	Dynamic   bool
	Static    bool
	Constant  bool
	Field     bool
	Modifiers string
}

// MethodDecl declares a method overload. Params is any signature form
// accepted by signature.Parse.
type MethodDecl struct {
	Name        string
	Slot        int
	Params      string
	Static      bool
	Constructor bool
	Modifiers   string
}

// Keys match field names case insensitively, with underscores ignored.
var tomlSettings = toml.Config{
	NormFieldName: func(_ reflect.Type, key string) string {
		return strings.ToLower(strings.ReplaceAll(key, "_", ""))
	},
	FieldToKey: func(_ reflect.Type, field string) string {
		return strings.ToLower(field)
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.Name())
	},
}

// Load decodes a schema from r.
func Load(r io.Reader) (*Schema, error) {
	var s Schema
	if err := tomlSettings.NewDecoder(bufio.NewReader(r)).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode schema")
	}
	return &s, nil
}

// LoadFile decodes the schema file at path.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open schema")
	}
	defer f.Close()
	var s Schema
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&s)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		return nil, errors.New(path + ", " + err.Error())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &s, nil
}

// Lookup returns the declaration named name.
func (s *Schema) Lookup(name string) (*TypeDecl, bool) {
	for i := range s.Type {
		if s.Type[i].Name == name {
			return &s.Type[i], true
		}
	}
	return nil, false
}

// Validate checks the declarations without building anything. A super type
// missing from the schema is accepted when known(super) reports true;
// known may be nil.
func (s *Schema) Validate(known func(name string) bool) error {
	seen := make(map[string]bool, len(s.Type))
	for _, td := range s.Type {
		if td.Name == "" {
			return errors.New("type without a name")
		}
		if seen[td.Name] {
			return errors.Errorf("type %s declared twice", td.Name)
		}
		seen[td.Name] = true
	}
	for _, td := range s.Type {
		if td.Super != "" && !seen[td.Super] && (known == nil || !known(td.Super)) {
			return errors.Errorf("type %s: unknown super type %s", td.Name, td.Super)
		}
		if err := td.validate(); err != nil {
			return errors.Wrapf(err, "type %s", td.Name)
		}
	}
	_, err := s.order()
	return err
}

func (td *TypeDecl) validate() error {
	names := make(map[string]bool, len(td.Property))
	for _, pd := range td.Property {
		if pd.Name == "" {
			return errors.New("property without a name")
		}
		if names[pd.Name] {
			return errors.Errorf("property %s declared twice", pd.Name)
		}
		names[pd.Name] = true
		if pd.Slot < 0 {
			return errors.Errorf("property %s: negative slot %d", pd.Name, pd.Slot)
		}
		if pd.Dynamic && pd.Static {
			return errors.Errorf("property %s: a static property cannot use dynamic lookup", pd.Name)
		}
		if _, err := modifiers(pd.Modifiers); err != nil {
			return errors.Wrapf(err, "property %s", pd.Name)
		}
	}
	simple := simpleName(td.Name)
	for _, md := range td.Method {
		if md.Slot < 0 {
			return errors.Errorf("method %s: negative slot %d", md.Name, md.Slot)
		}
		if md.Constructor && md.Name != "" && md.Name != simple {
			return errors.Errorf("constructor %s must be named %s", md.Name, simple)
		}
		if !md.Constructor && md.Name == "" {
			return errors.New("method without a name")
		}
		if _, err := signature.Parse(md.Params); err != nil {
			return errors.Wrapf(err, "method %s", md.Name)
		}
		if _, err := modifiers(md.Modifiers); err != nil {
			return errors.Wrapf(err, "method %s", md.Name)
		}
	}
	return nil
}

// order returns the declarations with every super type before its
// subtypes, keeping declaration order otherwise.
func (s *Schema) order() ([]*TypeDecl, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(s.Type))
	out := make([]*TypeDecl, 0, len(s.Type))
	var visit func(td *TypeDecl, path []string) error
	visit = func(td *TypeDecl, path []string) error {
		switch state[td.Name] {
		case done:
			return nil
		case visiting:
			return errors.Errorf("inheritance cycle %s", strings.Join(append(path, td.Name), " -> "))
		}
		state[td.Name] = visiting
		if sup, ok := s.Lookup(td.Super); ok {
			if err := visit(sup, append(path, td.Name)); err != nil {
				return err
			}
		}
		state[td.Name] = done
		out = append(out, td)
		return nil
	}
	for i := range s.Type {
		if err := visit(&s.Type[i], nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func modifiers(list string) (dyn.Modifiers, error) {
	m, unknown := dyn.ParseModifiers(list)
	if len(unknown) > 0 {
		return 0, errors.Errorf("unknown modifiers %s", strings.Join(unknown, ", "))
	}
	return m, nil
}

// slots maps a property declaration to its instance and static slots.
func (pd *PropertyDecl) slots() (inst, static dyn.Slot) {
	switch {
	case pd.Dynamic:
		return dyn.DynamicLookup, dyn.NotApplicable
	case pd.Static:
		return dyn.NotApplicable, dyn.Positional(pd.Slot)
	}
	return dyn.Positional(pd.Slot), dyn.NotApplicable
}

// methodName is the declared name, defaulting a constructor to the simple
// name of its type.
func (md *MethodDecl) methodName(typeName string) string {
	if md.Constructor && md.Name == "" {
		return simpleName(typeName)
	}
	return md.Name
}

func simpleName(name string) string {
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		return name[i+1:]
	}
	return name
}
