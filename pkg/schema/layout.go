package schema

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"dyntype/pkg/dyn"
)

// Layout renders the flattened slot tables of t. Flattening errors such
// as slot conflicts are returned unchanged.
func Layout(t *dyn.Type) (string, error) {
	list, err := t.PropertyList()
	if err != nil {
		return "", err
	}
	statics, err := t.StaticPropertyList()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	super := "-"
	if t.Super() != nil {
		super = t.Super().Name()
	}
	fmt.Fprintf(&b, "type %s extends %s\n", t.Name(), super)

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  slot\tproperty\towner\tflags")
	for i, p := range list {
		if p == nil {
			fmt.Fprintf(w, "  %d\t-\t\t\n", i)
			continue
		}
		slot := fmt.Sprint(i)
		if p.InstanceSlot().IsDynamic() {
			slot += "*"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", slot, p.Name(), p.Owner().Name(), flags(p))
	}
	for i, p := range statics {
		if p == nil {
			continue
		}
		fmt.Fprintf(w, "  s%d\t%s\t%s\t%s\n", i, p.Name(), p.Owner().Name(), flags(p))
	}
	for i := 0; i < t.MethodCount(); i++ {
		m := t.MethodAt(i)
		if m == nil {
			continue
		}
		fmt.Fprintf(w, "  m%d\t%s%s\t%s\t%s\n", i, m.Name(), m.ParamSignature(), m.Owner().Name(), m.Modifiers())
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func flags(p *dyn.Property) string {
	var parts []string
	mods, field := p.Field()
	if field {
		parts = append(parts, "field")
		if mods != 0 {
			parts = append(parts, mods.String())
		}
	}
	if p.IsStatic() && !mods.Has(dyn.Static) {
		parts = append(parts, "static")
	}
	if p.IsConstant() {
		parts = append(parts, "constant")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
