package remote

import (
	"fmt"
	"reflect"

	"github.com/sghaida/remoteresource/di"
)

// binding is one (type, field, descriptor) tuple with the means to check and
// set a value on an instance.
type binding struct {
	owner reflect.Type
	name  string
	typ   reflect.Type
	res   Resource
	// field returns the settable field of instance, which is a *owner.
	field func(instance any) (reflect.Value, error)
}

// Field is a declared remote resource field of T. Build one with Bind, or let
// Tagged derive them from struct tags.
type Field[T any] struct {
	b binding
}

// Name returns the field name used in errors and logs.
func (f Field[T]) Name() string { return f.b.name }

// Resource returns the field's descriptor.
func (f Field[T]) Resource() Resource { return f.b.res }

// Type returns the field's declared type.
func (f Field[T]) Type() reflect.Type { return f.b.typ }

// Bind declares that the field reached through accessor is populated from res.
// The accessor is the only way the field is written, so unexported fields
// work:
//
//	remote.Bind("conn", func(s *Service) *Conn { return &s.conn },
//	  remote.NewResource("externalCtx", "myResource"))
func Bind[T any, V any](name string, accessor func(*T) *V, res Resource) Field[T] {
	return Field[T]{b: binding{
		owner: reflect.TypeFor[T](),
		name:  name,
		typ:   reflect.TypeFor[V](),
		res:   res,
		field: func(instance any) (reflect.Value, error) {
			if accessor == nil {
				return reflect.Value{}, fmt.Errorf("remote: nil accessor for field %s", name)
			}
			t, ok := instance.(*T)
			if !ok || t == nil {
				return reflect.Value{}, fmt.Errorf("%w: got %T, want %s", di.ErrWrongInstance, instance, reflect.TypeFor[*T]())
			}
			p := accessor(t)
			if p == nil {
				return reflect.Value{}, fmt.Errorf("remote: accessor for field %s returned nil", name)
			}
			return reflect.ValueOf(p).Elem(), nil
		},
	}}
}

// Tagged returns the fields of T declared with `remote` struct tags. Only
// fields declared directly on T are considered; tags on unexported fields
// are rejected with ErrUnexportedField.
func Tagged[T any]() ([]Field[T], error) {
	bs, err := scanTags(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	fields := make([]Field[T], len(bs))
	for i, b := range bs {
		fields[i] = Field[T]{b: b}
	}
	return fields, nil
}

func scanTags(t reflect.Type) ([]binding, error) {
	if t.Kind() != reflect.Struct {
		return nil, nil
	}

	var out []binding
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnexportedField, t, sf.Name)
		}
		res, err := ParseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
		}

		index := sf.Index
		out = append(out, binding{
			owner: t,
			name:  sf.Name,
			typ:   sf.Type,
			res:   res,
			field: func(instance any) (reflect.Value, error) {
				v := reflect.ValueOf(instance)
				if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != t {
					return reflect.Value{}, fmt.Errorf("%w: got %T, want *%s", di.ErrWrongInstance, instance, t)
				}
				return v.Elem().FieldByIndex(index), nil
			},
		})
	}
	return out, nil
}

// check validates that v can be assigned to the field.
func (b binding) check(v any) error {
	if v == nil {
		return ErrNoValue
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return ErrNoValue
		}
	}
	if !rv.Type().AssignableTo(b.typ) {
		return fmt.Errorf("%w: %s is not assignable to %s", ErrIncompatibleType, rv.Type(), b.typ)
	}
	return nil
}

// assign sets a checked value on instance.
func (b binding) assign(instance, v any) error {
	fv, err := b.field(instance)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return fmt.Errorf("remote: field %s.%s is not settable", b.owner, b.name)
	}
	fv.Set(reflect.ValueOf(v))
	return nil
}

func (b binding) fail(err error) *FieldError {
	return &FieldError{Owner: b.owner, Field: b.name, Resource: b.res, Err: err}
}
