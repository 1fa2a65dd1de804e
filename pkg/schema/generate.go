package schema

import (
	"io"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dyntype/pkg/dyn"
	"dyntype/pkg/signature"
)

const (
	dynPath      = "dyntype/pkg/dyn"
	typeutilPath = "dyntype/pkg/typeutil"
)

// modifier bits by the name of their dyn constant
var modifierConsts = []struct {
	m    dyn.Modifiers
	name string
}{
	{dyn.Public, "Public"},
	{dyn.Private, "Private"},
	{dyn.Protected, "Protected"},
	{dyn.Static, "Static"},
	{dyn.Final, "Final"},
	{dyn.Synchronized, "Synchronized"},
	{dyn.Volatile, "Volatile"},
	{dyn.Transient, "Transient"},
	{dyn.Native, "Native"},
	{dyn.Interface, "Interface"},
	{dyn.Abstract, "Abstract"},
	{dyn.Strict, "Strict"},
}

// GoName turns a member or type name into an exported Go identifier:
// "first_name" becomes FirstName.
func GoName(name string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		b.WriteString(title.String(part))
	}
	s := b.String()
	if s == "" || unicode.IsDigit(rune(s[0])) {
		s = "X" + s
	}
	return s
}

// generator holds the Go names chosen for one schema.
type generator struct {
	s      *Schema
	decls  []*TypeDecl
	vars   map[string]string // type name -> var
	consts map[string]map[string]string
	used   map[string]string // identifier -> what claimed it
}

// Generate writes Go source for package pkg that declares and registers
// every type of the schema, using typeutil.Register on the Default
// runtime.
func (s *Schema) Generate(pkg string, w io.Writer) error {
	if err := s.Validate(func(string) bool { return true }); err != nil {
		return err
	}
	decls, err := s.order()
	if err != nil {
		return err
	}
	g := &generator{
		s:      s,
		decls:  decls,
		vars:   make(map[string]string),
		consts: make(map[string]map[string]string),
		used:   map[string]string{"must": "helper", "mustLookup": "helper"},
	}
	if err := g.name(); err != nil {
		return err
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by dyngen. DO NOT EDIT.")
	f.ImportName(dynPath, "dyn")
	f.ImportName(typeutilPath, "typeutil")

	g.constants(f)
	g.variables(f)
	g.init(f)
	g.helpers(f)
	for _, td := range decls {
		if !td.Dynamic {
			g.dispatcher(f, td)
		}
	}
	return errors.Wrap(f.Render(w), "render")
}

func (g *generator) claim(id, owner string) error {
	if prev, ok := g.used[id]; ok {
		return errors.Errorf("identifier %s of %s collides with %s", id, owner, prev)
	}
	g.used[id] = owner
	return nil
}

// name assigns identifiers: <T>Type, <T>Slot<P>, <T>StaticSlot<P> and
// <T>Dispatcher.
func (g *generator) name() error {
	for _, td := range g.decls {
		base := GoName(simpleName(td.Name))
		v := base + "Type"
		if err := g.claim(v, td.Name); err != nil {
			return err
		}
		g.vars[td.Name] = v
		if !td.Dynamic {
			if err := g.claim(base+"Dispatcher", td.Name); err != nil {
				return err
			}
		}
		consts := make(map[string]string)
		for _, pd := range td.Property {
			if pd.Dynamic {
				continue
			}
			id := base + "Slot" + GoName(pd.Name)
			if pd.Static {
				id = base + "StaticSlot" + GoName(pd.Name)
			}
			if err := g.claim(id, td.Name+"."+pd.Name); err != nil {
				return err
			}
			consts[pd.Name] = id
		}
		g.consts[td.Name] = consts
	}
	return nil
}

func (g *generator) constants(f *jen.File) {
	var defs []jen.Code
	for _, td := range g.decls {
		for _, pd := range td.Property {
			if id, ok := g.consts[td.Name][pd.Name]; ok {
				defs = append(defs, jen.Id(id).Op("=").Lit(pd.Slot))
			}
		}
	}
	if len(defs) > 0 {
		f.Comment("Property slots.")
		f.Const().Defs(defs...)
	}
}

func (g *generator) variables(f *jen.File) {
	defs := make([]jen.Code, 0, len(g.decls))
	for _, td := range g.decls {
		var super jen.Code = jen.Nil()
		if td.Super != "" {
			if v, ok := g.vars[td.Super]; ok {
				super = jen.Id(v)
			} else {
				super = jen.Id("mustLookup").Call(jen.Lit(td.Super))
			}
		}
		def := jen.Id(g.vars[td.Name]).Op("=").Qual(dynPath, "NewType").Call(
			jen.Lit(td.Name), super, jen.Lit(len(td.Property)), jen.Lit(len(td.Method)))
		if !td.Dynamic {
			def = def.Dot("WithDispatcher").Call(jen.Id(GoName(simpleName(td.Name)) + "Dispatcher").Values())
		}
		defs = append(defs, def)
	}
	f.Var().Defs(defs...)
}

func (g *generator) init(f *jen.File) {
	var body []jen.Code
	for _, td := range g.decls {
		v := g.vars[td.Name]
		if sv, ok := g.vars[td.Super]; ok {
			body = append(body, jen.For(jen.List(jen.Id("_"), jen.Id("p")).Op(":=").Range().Id(sv).Dot("Properties").Call()).Block(
				jen.Id("must").Call(jen.Id(v).Dot("AddProperty").Call(jen.Id("p"))),
			))
		} else if td.Super != "" {
			body = append(body, jen.For(jen.List(jen.Id("_"), jen.Id("p")).Op(":=").Range().Id(v).Dot("Super").Call().Dot("Properties").Call()).Block(
				jen.Id("must").Call(jen.Id(v).Dot("AddProperty").Call(jen.Id("p"))),
			))
		}
		for i := range td.Property {
			body = append(body, jen.Id("must").Call(jen.Id(v).Dot("AddProperty").Call(g.property(td, &td.Property[i]))))
		}
		for i := range td.Method {
			body = append(body, jen.Id("must").Call(jen.Id(v).Dot("AddMethod").Call(g.method(td, &td.Method[i]))))
		}
		body = append(body, jen.Qual(typeutilPath, "Register").Call(jen.Id(v)), jen.Line())
	}
	f.Func().Id("init").Params().Block(body...)
}

func (g *generator) property(td *TypeDecl, pd *PropertyDecl) jen.Code {
	v := g.vars[td.Name]
	notApplicable := jen.Qual(dynPath, "NotApplicable")
	var inst, static jen.Code
	switch {
	case pd.Dynamic:
		inst, static = jen.Qual(dynPath, "DynamicLookup"), notApplicable
	case pd.Static:
		inst, static = notApplicable, jen.Qual(dynPath, "Positional").Call(jen.Id(g.consts[td.Name][pd.Name]))
	default:
		inst, static = jen.Qual(dynPath, "Positional").Call(jen.Id(g.consts[td.Name][pd.Name])), notApplicable
	}
	args := []jen.Code{jen.Id(v), jen.Lit(pd.Name), inst, static}
	if pd.Constant {
		args = append(args, jen.Qual(dynPath, "Constant").Call())
	}
	if pd.Field || pd.Modifiers != "" {
		mods, _ := modifiers(pd.Modifiers)
		args = append(args, jen.Qual(dynPath, "WithField").Call(modifierExpr(mods)))
	}
	return jen.Qual(dynPath, "NewProperty").Call(args...)
}

func (g *generator) method(td *TypeDecl, md *MethodDecl) jen.Code {
	v := g.vars[td.Name]
	sig := md.Params
	if norm, err := signature.Normalize(sig); err == nil {
		sig = norm
	}
	args := []jen.Code{
		jen.Id(v), jen.Lit(md.methodName(td.Name)), jen.Lit(md.Slot), jen.Lit(sig),
		jen.Lit(md.Static || md.Constructor),
	}
	if mods, _ := modifiers(md.Modifiers); mods != 0 {
		args = append(args, jen.Qual(dynPath, "WithModifiers").Call(modifierExpr(mods)))
	}
	if md.Constructor && td.Dynamic {
		args = append(args, jen.Qual(dynPath, "WithBody").Call(jen.Qual(dynPath, "InstanceConstructor").Call(jen.Id(v))))
	}
	return jen.Qual(dynPath, "NewMethod").Call(args...)
}

// modifierExpr renders mods as dyn.A | dyn.B.
func modifierExpr(mods dyn.Modifiers) *jen.Statement {
	var expr *jen.Statement
	for _, mc := range modifierConsts {
		if !mods.Has(mc.m) {
			continue
		}
		if expr == nil {
			expr = jen.Qual(dynPath, mc.name)
		} else {
			expr = expr.Op("|").Qual(dynPath, mc.name)
		}
	}
	if expr == nil {
		return jen.Qual(dynPath, "Modifiers").Call(jen.Lit(0))
	}
	return expr
}

func (g *generator) helpers(f *jen.File) {
	f.Func().Id("must").Params(jen.Err().Error()).Block(
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Panic(jen.Err())),
	)
	external := false
	for _, td := range g.decls {
		if _, ok := g.vars[td.Super]; td.Super != "" && !ok {
			external = true
		}
	}
	if !external {
		return
	}
	f.Comment("mustLookup finds a super type registered by another package.")
	f.Func().Id("mustLookup").Params(jen.Id("name").String()).Op("*").Qual(dynPath, "Type").Block(
		jen.List(jen.Id("t"), jen.Id("ok")).Op(":=").Qual(typeutilPath, "Lookup").Call(jen.Id("name")),
		jen.If(jen.Op("!").Id("ok")).Block(
			jen.Panic(jen.Lit("dyngen: super type ").Op("+").Id("name").Op("+").Lit(" is not registered")),
		),
		jen.Return(jen.Id("t")),
	)
}

// dispatcher emits a skeleton with one case per positional property and
// per method slot; cases left empty fall back to BaseDispatcher.
func (g *generator) dispatcher(f *jen.File, td *TypeDecl) {
	name := GoName(simpleName(td.Name)) + "Dispatcher"
	f.Commentf("%s routes slot access for host values described by %s.", name, td.Name)
	f.Type().Id(name).Struct(jen.Qual(dynPath, "BaseDispatcher"))
	f.Var().Id("_").Qual(dynPath, "Dispatcher").Op("=").Id(name).Values()

	var propCases, methodCases []jen.Code
	for _, pd := range g.instanceProperties(td) {
		propCases = append(propCases, jen.Case(pd.slot).Block(jen.Comment(pd.name)))
	}
	for _, md := range td.Method {
		if md.Static || md.Constructor {
			continue
		}
		methodCases = append(methodCases, jen.Case(jen.Lit(md.Slot)).Block(jen.Comment(md.Name+signatureComment(md.Params))))
	}
	target := jen.Id("target").Interface()
	slot := jen.Id("slot").Int()
	base := func(method string, args ...jen.Code) jen.Code {
		return jen.Return(jen.Id("d").Dot("BaseDispatcher").Dot(method).Call(args...))
	}
	recv := jen.Id("d").Id(name)

	f.Func().Params(recv.Clone()).Id("GetProperty").Params(target.Clone(), slot.Clone()).Params(jen.Interface(), jen.Error()).Block(
		jen.Switch(jen.Id("slot")).Block(propCases...),
		base("GetProperty", jen.Id("target"), jen.Id("slot")),
	)
	f.Func().Params(recv.Clone()).Id("SetProperty").Params(target.Clone(), slot.Clone(), jen.Id("v").Interface()).Error().Block(
		jen.Switch(jen.Id("slot")).Block(propCases...),
		base("SetProperty", jen.Id("target"), jen.Id("slot"), jen.Id("v")),
	)
	f.Func().Params(recv.Clone()).Id("Invoke").Params(target.Clone(), slot.Clone(), jen.Id("args").Op("...").Interface()).Params(jen.Interface(), jen.Error()).Block(
		jen.Switch(jen.Id("slot")).Block(methodCases...),
		base("Invoke", jen.Id("target"), jen.Id("slot"), jen.Id("args").Op("...")),
	)
}

type slotCase struct {
	name string
	slot jen.Code
}

// instanceProperties lists the positional instance properties visible on
// td, inherited ones from schema super types included, by slot constant.
func (g *generator) instanceProperties(td *TypeDecl) []slotCase {
	var chain []*TypeDecl
	for c := td; c != nil; {
		chain = append(chain, c)
		next, ok := g.s.Lookup(c.Super)
		if !ok {
			break
		}
		c = next
	}
	seen := make(map[int]bool)
	var out []slotCase
	for _, c := range chain {
		for _, pd := range c.Property {
			if pd.Dynamic || pd.Static || seen[pd.Slot] {
				continue
			}
			seen[pd.Slot] = true
			out = append(out, slotCase{name: pd.Name, slot: jen.Id(g.consts[c.Name][pd.Name])})
		}
	}
	return out
}

func signatureComment(params string) string {
	if sig, err := signature.Normalize(params); err == nil {
		return sig
	}
	return "(" + params + ")"
}
