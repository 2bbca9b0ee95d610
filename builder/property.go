// Package builder adds injected dependencies to class declarations.
//
// The builders only know about class structure.  They check existing declarations by name and leave
// the class untouched when an equivalent declaration is already there, so applying them repeatedly is
// safe.
package builder

import (
	"github.com/arjunmahishi/reconstruct/ast"
)

// PropertyBuilder ensures a class declares a typed property.
type PropertyBuilder struct {
	// Modifiers are written on new properties.  Defaults to `private`.
	Modifiers []string
}

// NewPropertyBuilder creates a PropertyBuilder writing private properties.
func NewPropertyBuilder() *PropertyBuilder {
	return &PropertyBuilder{Modifiers: []string{"private"}}
}

// AddProperty declares `name: typ` on class unless a property or constructor parameter property named
// name already exists.  New properties go after the last existing property, or first in the body.
func (b *PropertyBuilder) AddProperty(class *ast.Class, typ, name string) {
	if class.Property(name) != nil || class.PropertyParam(name) != nil {
		return
	}

	prop := &ast.Property{
		Name:      name,
		Type:      typ,
		Modifiers: append([]string(nil), b.Modifiers...),
	}
	class.InsertMember(afterLastProperty(class), prop)
}

// afterLastProperty returns the member index just past the last property declaration.
func afterLastProperty(class *ast.Class) int {
	at := 0
	for i, member := range class.Members {
		if _, ok := member.(*ast.Property); ok {
			at = i + 1
		}
	}
	return at
}
