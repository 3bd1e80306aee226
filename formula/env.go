package formula

import (
	"errors"
	"fmt"
	"maps"

	"github.com/midbel/mis/value"
)

var ErrUndefined = errors.New("undefined identifier")

type Resolver interface {
	Resolve(ident string) (value.Value, error)
}

// Environment maps identifiers to values. It is the name-binding
// dictionary shared by the KPIs of one column.
type Environment struct {
	values map[string]value.Value
	parent Resolver
}

func Empty() *Environment {
	return Enclosed(nil)
}

func Enclosed(parent Resolver) *Environment {
	ctx := Environment{
		values: make(map[string]value.Value),
		parent: parent,
	}
	return &ctx
}

func (c *Environment) Resolve(ident string) (value.Value, error) {
	if v, ok := c.values[ident]; ok {
		return v, nil
	}
	if c.parent != nil {
		return c.parent.Resolve(ident)
	}
	return nil, fmt.Errorf("%s: %w", ident, ErrUndefined)
}

func (c *Environment) Define(ident string, val value.Value) {
	c.values[ident] = val
}

func (c *Environment) Merge(values map[string]value.Value) {
	maps.Copy(c.values, values)
}

func (c *Environment) Has(ident string) bool {
	_, ok := c.values[ident]
	return ok
}

func (c *Environment) Clone() *Environment {
	return &Environment{
		values: maps.Clone(c.values),
		parent: c.parent,
	}
}
