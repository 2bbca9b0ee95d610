package ast

// Class is a class declaration statement.
type Class struct {
	Name       string   // empty only for `export default class {}`.
	Exported   bool     // preceded by `export`.
	Default    bool     // preceded by `export default`.
	Abstract   bool     // `abstract class`.
	Declare    bool     // `declare class`.
	TypeParams string   // raw type parameter list, including angle brackets.
	Heritage   string   // raw `extends ... implements ...` clause.
	Decorators []string // raw decorators, including the leading `@`.
	Members    []ClassMember
}

var _ Stmt = (*Class)(nil)

func (*Class) Kind() NodeKind { return ClassKind }
func (*Class) node()          {}
func (*Class) stmt()          {}

// Property is a field declaration: `private logger: Logger;`.
type Property struct {
	Name       string
	Type       string   // the type annotation without the leading colon; may be empty.
	Modifiers  []string // accessibility, static, readonly, declare, abstract, override, in source order.
	Optional   bool     // `name?: T`.
	Definite   bool     // `name!: T`.
	Value      Expr     // optional initializer.
	Decorators []string
}

var _ ClassMember = (*Property)(nil)

func (*Property) Kind() NodeKind       { return PropertyKind }
func (*Property) node()                {}
func (*Property) classMember()         {}
func (p *Property) MemberName() string { return p.Name }

// Method is a method, accessor or constructor.  A nil Body marks an overload or abstract signature.
type Method struct {
	Name       string
	Modifiers  []string
	Accessor   string // "get", "set" or "".
	Async      bool
	Generator  bool
	Optional   bool
	TypeParams string
	Params     []*Param
	ReturnType string
	Body       *Block
	Decorators []string
}

var _ ClassMember = (*Method)(nil)

func (*Method) Kind() NodeKind       { return MethodKind }
func (*Method) node()                {}
func (*Method) classMember()         {}
func (m *Method) MemberName() string { return m.Name }

// IsConstructor reports whether the method is the class constructor.
func (m *Method) IsConstructor() bool { return m.Name == ConstructorName }

// RawMember is a class member kept verbatim: index signatures, static blocks, computed names.
type RawMember struct {
	Name string // the member name when one is known, such as a method kept verbatim.
	Text string
}

var _ ClassMember = (*RawMember)(nil)

func (*RawMember) Kind() NodeKind       { return RawMemberKind }
func (*RawMember) node()                {}
func (*RawMember) classMember()         {}
func (r *RawMember) MemberName() string { return r.Name }

// Param is a function parameter.
type Param struct {
	Name       string
	Type       string
	Modifiers  []string
	Optional   bool
	Rest       bool
	Default    Expr
	Decorators []string
}

func (*Param) Kind() NodeKind { return ParamKind }
func (*Param) node()          {}

// IsPropertyParam reports whether the parameter also declares a class member, as in
// `constructor(private readonly logger: Logger)`.
func (p *Param) IsPropertyParam() bool {
	for _, mod := range p.Modifiers {
		switch mod {
		case "public", "private", "protected", "readonly", "override":
			return true
		}
	}
	return false
}

// IsTrailing reports whether the parameter must stay after every required parameter.
func (p *Param) IsTrailing() bool {
	return p.Optional || p.Rest || p.Default != nil
}

// Constructor returns the constructor implementation, or nil if the class has none.  Overload signatures
// without a body are skipped; use Constructors to see them.
func (c *Class) Constructor() *Method {
	for _, m := range c.Constructors() {
		if m.Body != nil {
			return m
		}
	}
	return nil
}

// Constructors returns every constructor declaration, including overload signatures.
func (c *Class) Constructors() []*Method {
	var ctors []*Method
	for _, member := range c.Members {
		if m, ok := member.(*Method); ok && m.IsConstructor() {
			ctors = append(ctors, m)
		}
	}
	return ctors
}

// Properties returns the property declarations in source order.
func (c *Class) Properties() []*Property {
	var props []*Property
	for _, member := range c.Members {
		if p, ok := member.(*Property); ok {
			props = append(props, p)
		}
	}
	return props
}

// Methods returns the method declarations in source order, constructors included.
func (c *Class) Methods() []*Method {
	var methods []*Method
	for _, member := range c.Members {
		if m, ok := member.(*Method); ok {
			methods = append(methods, m)
		}
	}
	return methods
}

// Property returns the property declared under name, or nil.
func (c *Class) Property(name string) *Property {
	for _, p := range c.Properties() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PropertyParam returns the constructor parameter property declared under name, or nil.
func (c *Class) PropertyParam(name string) *Param {
	ctor := c.Constructor()
	if ctor == nil {
		return nil
	}
	for _, p := range ctor.Params {
		if p.Name == name && p.IsPropertyParam() {
			return p
		}
	}
	return nil
}

// MemberNames returns the set of names declared on the class, including parameter properties.
func (c *Class) MemberNames() map[string]struct{} {
	names := make(map[string]struct{}, len(c.Members))
	for _, member := range c.Members {
		if name := member.MemberName(); name != "" && name != ConstructorName {
			names[name] = struct{}{}
		}
	}
	if ctor := c.Constructor(); ctor != nil {
		for _, p := range ctor.Params {
			if p.IsPropertyParam() {
				names[p.Name] = struct{}{}
			}
		}
	}
	return names
}

// InsertMember inserts member at index i, clamping i to the member list bounds.
func (c *Class) InsertMember(i int, member ClassMember) {
	if i < 0 {
		i = 0
	}
	if i > len(c.Members) {
		i = len(c.Members)
	}
	c.Members = append(c.Members, nil)
	copy(c.Members[i+1:], c.Members[i:])
	c.Members[i] = member
}
