// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package brick

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Method describes an exported method of a declared type.
type Method struct {
	Name string
	Tags []Tag
	// Params holds the parameter types, receiver excluded. An empty TypeID
	// marks a parameter without an explicit named type.
	Params []TypeID
}

// HasTag reports whether the method carries a tag of the given kind.
func (m Method) HasTag(kind TagKind) bool {
	return slices.ContainsFunc(m.Tags, func(t Tag) bool { return t.Kind() == kind })
}

// Introspector reads declared metadata of types.
type Introspector interface {
	Has(id TypeID) bool
	IsSubtypeOf(id, base TypeID) (bool, error)
	TagsOf(id TypeID, kind TagKind) ([]Tag, error)
	ConstructorParams(id TypeID) ([]TypeID, error)
	MethodsOf(id TypeID) ([]Method, error)
}

// Instantiator builds instances and calls methods on them.
type Instantiator interface {
	Construct(id TypeID, args []any) (any, error)
	Zero(id TypeID) (any, error)
	Invoke(target any, method string, args ...any) error
}

// TypeSystem is the capability the runtime uses to reach declared types.
type TypeSystem interface {
	Introspector
	Instantiator
}

var _ TypeSystem = (*Catalog)(nil)

var errorType = reflect.TypeFor[error]()

type catalogEntry struct {
	typ       reflect.Type
	tags      []Tag
	ctor      reflect.Value
	listeners []string
}

// Catalog holds declared types and their metadata.
// It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	types map[TypeID]*catalogEntry
	bases map[TypeID]reflect.Type
}

// Default is the catalog brick packages register into.
var Default = NewCatalog()

// NewCatalog creates a catalog that knows the Brick base type.
func NewCatalog() *Catalog {
	return &Catalog{
		types: make(map[TypeID]*catalogEntry),
		bases: map[TypeID]reflect.Type{
			BrickType: reflect.TypeFor[Brick](),
		},
	}
}

// Register declares T in the Default catalog. It panics if the declaration
// is invalid and is meant to be called from init functions.
func Register[T any](opts ...Option) TypeID {
	return MustDeclare[T](Default, opts...)
}

// MustDeclare declares T in c and panics on error.
func MustDeclare[T any](c *Catalog, opts ...Option) TypeID {
	id, err := c.Declare(reflect.TypeFor[T](), opts...)
	if err != nil {
		panic(err)
	}
	return id
}

// Declare adds t to the catalog.
func (c *Catalog) Declare(t reflect.Type, opts ...Option) (TypeID, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	id := TypeIDOf(t)
	if id == "" {
		return "", errInvalidDeclaration(id, "cannot declare unnamed type %v", t)
	}

	d := &declaration{}
	for _, opt := range opts {
		opt(d)
	}

	entry := &catalogEntry{typ: t, tags: d.tags, listeners: d.listeners}
	if d.ctor != nil {
		ctor, err := checkConstructor(id, d.ctor)
		if err != nil {
			return "", err
		}
		entry.ctor = ctor
	}
	ptr := reflect.PointerTo(t)
	for _, name := range d.listeners {
		m, ok := ptr.MethodByName(name)
		if !ok {
			return "", errInvalidDeclaration(id, "listener method %s not found on %s", name, id)
		}
		if m.Type.NumIn() != 2 {
			continue
		}
		if param := m.Type.In(1); param.Kind() != reflect.Pointer && TypeIDOf(param) != "" {
			return "", errInvalidDeclaration(id, "listener %s.%s must take *%s, not %s", id, name, TypeIDOf(param), param)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.types[id]; exists {
		return "", errInvalidDeclaration(id, "type %s already declared", id)
	}
	c.types[id] = entry
	return id, nil
}

func checkConstructor(id TypeID, fn any) (reflect.Value, error) {
	v := reflect.ValueOf(fn)
	ft := v.Type()
	if ft.Kind() != reflect.Func {
		return reflect.Value{}, errInvalidDeclaration(id, "constructor of %s is %v, not a function", id, ft)
	}
	if ft.IsVariadic() {
		return reflect.Value{}, errInvalidDeclaration(id, "constructor of %s must not be variadic", id)
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return reflect.Value{}, errInvalidDeclaration(id, "second result of %s constructor must be error", id)
		}
	default:
		return reflect.Value{}, errInvalidDeclaration(id, "constructor of %s must return the instance and an optional error", id)
	}
	if got := TypeIDOf(ft.Out(0)); got != id {
		return reflect.Value{}, errInvalidDeclaration(id, "constructor of %s returns %s", id, got)
	}
	return v, nil
}

func (c *Catalog) lookup(id TypeID) (*catalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.types[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownType)
	}
	return entry, nil
}

// Has reports whether id is declared.
func (c *Catalog) Has(id TypeID) bool {
	_, err := c.lookup(id)
	return err == nil
}

// Types returns every declared identifier, sorted.
func (c *Catalog) Types() []TypeID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]TypeID, 0, len(c.types))
	for id := range c.types {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsSubtypeOf reports whether id implements (or is) base.
func (c *Catalog) IsSubtypeOf(id, base TypeID) (bool, error) {
	entry, err := c.lookup(id)
	if err != nil {
		return false, err
	}

	c.mu.RLock()
	baseType, ok := c.bases[base]
	c.mu.RUnlock()
	if !ok {
		if baseEntry, err := c.lookup(base); err == nil {
			baseType = baseEntry.typ
		} else {
			return false, err
		}
	}

	if baseType.Kind() == reflect.Interface {
		return reflect.PointerTo(entry.typ).Implements(baseType), nil
	}
	return entry.typ == baseType, nil
}

// TagsOf returns the tags of the given kind declared on id, in declaration
// order. A type without such a tag yields an empty slice.
func (c *Catalog) TagsOf(id TypeID, kind TagKind) ([]Tag, error) {
	entry, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	tags := []Tag{}
	for _, t := range entry.tags {
		if t.Kind() == kind {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

// ConstructorParams returns the constructor parameter types of id.
func (c *Catalog) ConstructorParams(id TypeID) ([]TypeID, error) {
	entry, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	if !entry.ctor.IsValid() {
		return nil, fmt.Errorf("%s: %w", id, ErrNoConstructor)
	}
	ft := entry.ctor.Type()
	params := make([]TypeID, ft.NumIn())
	for i := range params {
		params[i] = TypeIDOf(ft.In(i))
	}
	return params, nil
}

// MethodsOf returns the exported methods of *id, sorted by name.
func (c *Catalog) MethodsOf(id TypeID) ([]Method, error) {
	entry, err := c.lookup(id)
	if err != nil {
		return nil, err
	}

	ptr := reflect.PointerTo(entry.typ)
	methods := make([]Method, 0, ptr.NumMethod())
	for i := range ptr.NumMethod() {
		m := ptr.Method(i)
		params := make([]TypeID, m.Type.NumIn()-1)
		for j := range params {
			params[j] = TypeIDOf(m.Type.In(j + 1))
		}
		method := Method{Name: m.Name, Params: params}
		if slices.Contains(entry.listeners, m.Name) {
			method.Tags = append(method.Tags, ListenerTag{})
		}
		methods = append(methods, method)
	}
	return methods, nil
}

// Construct calls the constructor of id with args.
func (c *Catalog) Construct(id TypeID, args []any) (any, error) {
	entry, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	if !entry.ctor.IsValid() {
		return nil, fmt.Errorf("%s: %w", id, ErrNoConstructor)
	}

	in, err := callArgs(entry.ctor.Type(), 0, args)
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", id, err)
	}
	out := entry.ctor.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error) //nolint:forcetypeassert // checked at declaration
	}
	return out[0].Interface(), nil
}

// Zero returns a pointer to a new zero value of id.
func (c *Catalog) Zero(id TypeID) (any, error) {
	entry, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return reflect.New(entry.typ).Interface(), nil
}

// Invoke calls the named method on target. If the method's last result is an
// error, a non-nil value is returned.
func (c *Catalog) Invoke(target any, method string, args ...any) error {
	if target == nil {
		return fmt.Errorf("invoke %s on nil: %w", method, ErrUnknownMethod)
	}
	m := reflect.ValueOf(target).MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("%s.%s: %w", IDOf(target), method, ErrUnknownMethod)
	}

	in, err := callArgs(m.Type(), 0, args)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", IDOf(target), method, err)
	}
	out := m.Call(in)
	if n := len(out); n > 0 && m.Type().Out(n-1) == errorType && !out[n-1].IsNil() {
		return out[n-1].Interface().(error) //nolint:forcetypeassert // checked above
	}
	return nil
}

// callArgs converts args to call values for ft starting at parameter offset.
func callArgs(ft reflect.Type, offset int, args []any) ([]reflect.Value, error) {
	if ft.IsVariadic() || ft.NumIn()-offset != len(args) {
		return nil, ErrSignatureMismatch
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := ft.In(i + offset)
		if arg == nil {
			switch want.Kind() {
			case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
				in[i] = reflect.Zero(want)
				continue
			default:
				return nil, ErrSignatureMismatch
			}
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, ErrSignatureMismatch
		}
		in[i] = v
	}
	return in, nil
}
