package container

import (
	"reflect"

	"github.com/pkg/errors"
)

// Service is a resolved service key.
type Service struct {
	Key  string
	Type TypeName
}

// Bridge answers the two questions the rewrite needs from a Container.  It keeps no cache: every
// ResolveType builds an instance, reads its type and drops it.
type Bridge struct {
	c Container
}

// NewBridge wraps c.
func NewBridge(c Container) *Bridge {
	return &Bridge{c: c}
}

// HasService reports whether key is registered.
func (b *Bridge) HasService(key string) bool {
	return b.c.Has(key)
}

// ResolveType returns the concrete type of the instance the container builds for key.
func (b *Bridge) ResolveType(key string) (TypeName, error) {
	if !b.c.Has(key) {
		return "", MissingServiceError{Key: key}
	}
	instance, err := b.c.Get(key)
	if err != nil {
		return "", errors.Wrapf(err, "building service %q", key)
	}
	name, err := TypeOf(instance)
	if err != nil {
		return "", errors.Wrapf(err, "service %q", key)
	}
	return name, nil
}

// Resolve returns the Service for key.
func (b *Bridge) Resolve(key string) (Service, error) {
	typ, err := b.ResolveType(key)
	if err != nil {
		return Service{}, err
	}
	return Service{Key: key, Type: typ}, nil
}

// TypeOf returns the type name of instance.  Typed instances report their own name; any other value
// reports its Go package path and type name, with pointers dereferenced.
func TypeOf(instance any) (TypeName, error) {
	if instance == nil {
		return "", errors.New("nil instance")
	}
	if typed, ok := instance.(Typed); ok {
		name := typed.TypeName()
		if name == "" {
			return "", errors.New("instance reports an empty type name")
		}
		return name, nil
	}

	t := reflect.TypeOf(instance)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "", errors.Errorf("instance of unnamed type %s", t)
	}
	if t.PkgPath() == "" {
		return TypeName(t.Name()), nil
	}
	return TypeName(t.PkgPath() + "." + t.Name()), nil
}
