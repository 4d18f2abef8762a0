// Package resolver turns attribute definitions into concrete backend addresses.
// Object names may be macro tokens standing for an object discovered on the
// backend; discovered names are memoized until reset.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/backend"
)

// ErrAddressUnresolvable is returned when a macro token cannot be resolved
// to an object on the backend.
var ErrAddressUnresolvable = errors.New("address unresolvable")

// ErrUnknownMacro is returned when resetting a token that is not a macro.
var ErrUnknownMacro = errors.New("unknown macro")

// Address is the concrete location of a property value on a backend.
type Address struct {
	ObjectName string `json:"objectName"`
	Attribute  string `json:"attribute"`
	// Subfield is the composite key to extract when HasSubfield is set
	Subfield    string `json:"subfield,omitempty"`
	HasSubfield bool   `json:"hasSubfield,omitempty"`
}

// Macro binds a placeholder token to a discovery pattern.
type Macro struct {
	Token   string `json:"token"`
	Pattern string `json:"pattern"`
}

// Resolver resolves definitions against one backend. It is safe for concurrent use.
type Resolver struct {
	gateway backend.Gateway
	macros  []Macro
	cells   map[string]*memoCell
}

// New creates a resolver for the gateway with the given macros.
func New(gateway backend.Gateway, macros []Macro) *Resolver {
	r := &Resolver{
		gateway: gateway,
		cells:   make(map[string]*memoCell, len(macros)),
	}
	for _, m := range macros {
		if _, dup := r.cells[m.Token]; dup {
			continue
		}
		r.macros = append(r.macros, m)
		r.cells[m.Token] = newMemoCell(m.Pattern)
	}
	sort.Slice(r.macros, func(i, j int) bool { return r.macros[i].Token < r.macros[j].Token })
	return r
}

// Macros returns the configured macros sorted by token.
func (r *Resolver) Macros() []Macro {
	return append([]Macro(nil), r.macros...)
}

// IsMacro reports whether token is a configured macro.
func (r *Resolver) IsMacro(token string) bool {
	_, ok := r.cells[token]
	return ok
}

// Resolve returns the address of a definition. The name is split on its last
// composite separator into attribute and sub-field; a macro object is replaced
// by the memoized discovery result.
func (r *Resolver) Resolve(ctx context.Context, def attribute.Definition) (Address, error) {
	attr, subfield, split := attribute.SplitName(def.Name)

	objectName, err := r.ResolveObject(ctx, def.Object)
	if err != nil {
		return Address{}, err
	}

	return Address{ObjectName: objectName, Attribute: attr, Subfield: subfield, HasSubfield: split}, nil
}

// ResolveObject resolves an object name or macro token to an object name.
func (r *Resolver) ResolveObject(ctx context.Context, object string) (string, error) {
	cell, ok := r.cells[object]
	if !ok {
		return object, nil
	}
	return cell.get(ctx, func(ctx context.Context, pattern string) (string, error) {
		return r.discover(ctx, object, pattern)
	})
}

// Cached returns the memoized object of a macro token, if any.
func (r *Resolver) Cached(token string) (string, bool) {
	cell, ok := r.cells[token]
	if !ok {
		return "", false
	}
	return cell.peek()
}

// Invalidate drops the memoized object of a macro token.
func (r *Resolver) Invalidate(token string) error {
	cell, ok := r.cells[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMacro, token)
	}
	cell.invalidate()
	slog.Info("Macro invalidated", "backend", r.gateway.Name(), "macro", token)
	return nil
}

// Reset invalidates a macro and resolves it again, returning the new object name.
func (r *Resolver) Reset(ctx context.Context, token string) (string, error) {
	if err := r.Invalidate(token); err != nil {
		return "", err
	}
	return r.ResolveObject(ctx, token)
}

// discover queries the backend and takes the first match in name order.
func (r *Resolver) discover(ctx context.Context, token, pattern string) (string, error) {
	names, err := r.gateway.ListObjects(ctx, pattern)
	if err != nil {
		return "", fmt.Errorf("%w: macro %s: %w", ErrAddressUnresolvable, token, err)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: macro %s: no object matches %s", ErrAddressUnresolvable, token, pattern)
	}
	if len(names) > 1 {
		slog.Debug("Macro matches several objects, using the first",
			"backend", r.gateway.Name(),
			"macro", token,
			"matches", len(names))
	}

	slog.Info("Macro resolved",
		"backend", r.gateway.Name(),
		"macro", token,
		"object", names[0])
	return names[0], nil
}
