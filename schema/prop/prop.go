// Package prop provides fluent builders for declaring typed properties on
// graphom models.
//
// Properties are declared once per class tree and shared by every class in
// it. Access at runtime dispatches through the registry by name; no code
// is generated per declaration:
//
//	prop.String("name")
//	prop.Int("age")
//	prop.Any("profile").Marshaled()
//
// A Marshaled property is serialized with msgpack before it reaches the
// store, allowing structured values on stores that only persist scalars.
package prop

// Type is the declared value type of a property.
type Type int

// Property value types.
const (
	TypeAny Type = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTime:
		return "time"
	}
	return "any"
}

// A Descriptor holds one declared property before it is registered.
type Descriptor struct {
	Name      string // property name, unique within one class tree
	Type      Type   // declared value type
	Marshaled bool   // serialize with msgpack before storage
}

// Builder builds a property descriptor.
type Builder struct {
	desc *Descriptor
}

// String declares a string property.
func String(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeString}}
}

// Int declares an integer property.
func Int(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeInt}}
}

// Float declares a floating-point property.
func Float(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeFloat}}
}

// Bool declares a boolean property.
func Bool(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeBool}}
}

// Time declares a time property.
func Time(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeTime}}
}

// Any declares a property with no declared value type.
func Any(name string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: TypeAny}}
}

// Marshaled serializes the property value with msgpack before storage and
// deserializes it on read.
func (b *Builder) Marshaled() *Builder {
	b.desc.Marshaled = true
	return b
}

// Descriptor returns the built descriptor.
func (b *Builder) Descriptor() *Descriptor { return b.desc }
