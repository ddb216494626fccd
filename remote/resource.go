package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// TagName is the struct tag key read by Tagged and remotegen.
const TagName = "remote"

// Tag keys, named after the Resource fields they set.
const (
	tagContext  = "externalContextLookup"
	tagLookup   = "lookup"
	tagCache    = "cache"
	tagValidate = "validateOnDeployment"
)

// Resource describes where a field's value lives in the directory and how
// it is resolved. It carries configuration only.
type Resource struct {
	// ExternalContextLookup names the context opened first.
	ExternalContextLookup string
	// Lookup names the object inside that context.
	Lookup string
	// Cache shares the first resolved value across every instance of every
	// type handled by the same Extension.
	Cache bool
	// ValidateOnDeployment resolves and type-checks the value while the
	// container is built instead of at first injection.
	ValidateOnDeployment bool
}

// ResourceOption adjusts a Resource built with NewResource.
type ResourceOption func(*Resource)

// WithoutCache resolves the value on every injection.
func WithoutCache() ResourceOption {
	return func(r *Resource) { r.Cache = false }
}

// WithoutDeploymentValidation defers resolution to the first injection.
func WithoutDeploymentValidation() ResourceOption {
	return func(r *Resource) { r.ValidateOnDeployment = false }
}

// NewResource returns a Resource for lookup inside externalContext with
// caching and deployment validation enabled.
func NewResource(externalContext, lookup string, opts ...ResourceOption) Resource {
	r := Resource{
		ExternalContextLookup: externalContext,
		Lookup:                lookup,
		Cache:                 true,
		ValidateOnDeployment:  true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Validate reports a Resource that cannot be resolved.
func (r Resource) Validate() error {
	if strings.TrimSpace(r.ExternalContextLookup) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidResource, tagContext)
	}
	if strings.TrimSpace(r.Lookup) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidResource, tagLookup)
	}
	return nil
}

// Key returns the cache key of the resource.
func (r Resource) Key() Key {
	return Key{Context: r.ExternalContextLookup, Name: r.Lookup}
}

func (r Resource) String() string {
	return fmt.Sprintf("context %q, lookup %q", r.ExternalContextLookup, r.Lookup)
}

// ParseTag parses the value of a `remote` struct tag:
//
//	remote:"externalContextLookup=externalCtx,lookup=myResource,cache=false"
//
// externalContextLookup and lookup are required; cache and
// validateOnDeployment default to true. Names cannot contain commas.
func ParseTag(tag string) (Resource, error) {
	r := Resource{Cache: true, ValidateOnDeployment: true}
	seen := make(map[string]bool, 4)

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return Resource{}, fmt.Errorf("%w: %q is not key=value", ErrInvalidTag, part)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if seen[key] {
			return Resource{}, fmt.Errorf("%w: duplicate key %q", ErrInvalidTag, key)
		}
		seen[key] = true

		switch key {
		case tagContext:
			r.ExternalContextLookup = val
		case tagLookup:
			r.Lookup = val
		case tagCache, tagValidate:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return Resource{}, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidTag, key, val)
			}
			if key == tagCache {
				r.Cache = b
			} else {
				r.ValidateOnDeployment = b
			}
		default:
			return Resource{}, fmt.Errorf("%w: unknown key %q", ErrInvalidTag, key)
		}
	}

	if err := r.Validate(); err != nil {
		return Resource{}, fmt.Errorf("%w: %w", ErrInvalidTag, err)
	}
	return r, nil
}
