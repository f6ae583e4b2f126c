// internal/ixapi/object.go

package ixapi

import (
	"fmt"
	"sort"
	"strings"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/tcl"
)

// Object is a handle on one remote entity, identified by its schema's
// command and a space separated index path.
type Object struct {
	session  *Session
	schema   *Schema
	fetcher  Fetcher
	uri      string
	name     string
	parent   *Object
	children []*Object
}

// ObjectOption configures an Object.
type ObjectOption func(o *Object)

// WithName overrides the default name, the URI with slashes.
func WithName(name string) ObjectOption {
	return func(o *Object) {
		o.name = name
	}
}

// WithFetcher overrides OwnFetch.
func WithFetcher(f Fetcher) ObjectOption {
	return func(o *Object) {
		o.fetcher = f
	}
}

// NewObject creates a handle and attaches it to parent, if any. A new handle
// of a command type clears that type's cache cell.
func NewObject(session *Session, schema *Schema, parent *Object, uri string, opts ...ObjectOption) *Object {
	o := &Object{
		session: session,
		schema:  schema,
		fetcher: OwnFetch,
		uri:     strings.TrimSpace(strings.ReplaceAll(uri, "/", " ")),
	}
	o.name = strings.ReplaceAll(o.uri, " ", "/")
	for _, opt := range opts {
		opt(o)
	}
	if parent != nil {
		parent.AddChild(o)
	}
	session.setCurrent(schema.Command, nil)
	return o
}

func (o *Object) URI() string         { return o.uri }
func (o *Object) Name() string        { return o.name }
func (o *Object) Type() string        { return o.schema.Command }
func (o *Object) Schema() *Schema     { return o.schema }
func (o *Object) Session() *Session   { return o.session }
func (o *Object) Parent() *Object     { return o.parent }
func (o *Object) String() string      { return o.name }
func (o *Object) Children() []*Object { return append([]*Object(nil), o.children...) }

// ChildrenOf returns the children of the given command type.
func (o *Object) ChildrenOf(command string) []*Object {
	var out []*Object
	for _, c := range o.children {
		if c.schema.Command == command {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the child of the given command type and URI, or nil.
func (o *Object) Child(command, uri string) *Object {
	uri = strings.TrimSpace(strings.ReplaceAll(uri, "/", " "))
	for _, c := range o.children {
		if c.schema.Command == command && c.uri == uri {
			return c
		}
	}
	return nil
}

// AddChild attaches c, moving it from its previous parent.
func (o *Object) AddChild(c *Object) {
	if c.parent != nil {
		c.Detach()
	}
	c.parent = o
	o.children = append(o.children, c)
}

// Detach removes o from its parent.
func (o *Object) Detach() {
	if o.parent == nil {
		return
	}
	siblings := o.parent.children
	for i, c := range siblings {
		if c == o {
			o.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	o.parent = nil
	if o.session.Current(o.schema.Command) == o {
		o.session.setCurrent(o.schema.Command, nil)
	}
}

// Fetch loads o's attributes unless they are already current.
func (o *Object) Fetch(force bool) error {
	return o.fetcher.Fetch(o, force)
}

// Flush commits staged attribute writes.
func (o *Object) Flush() error {
	return o.fetcher.Flush(o)
}

// SetDefault loads the default configuration into the working state, which
// then belongs to o.
func (o *Object) SetDefault() error {
	if _, err := o.session.caller.Call(o.schema.Command + " setDefault"); err != nil {
		return err
	}
	o.session.setCurrent(o.schema.Command, o)
	return nil
}

func (o *Object) member(name string) (Member, error) {
	m, ok := o.schema.Member(name)
	if !ok {
		return Member{}, apperr.Newf(apperr.UsageError, "%s has no member %s", o.schema.Command, name)
	}
	return m, nil
}

// Get returns the decoded value of a member.
func (o *Object) Get(name string) (any, error) {
	m, err := o.member(name)
	if err != nil {
		return nil, err
	}
	if err := o.Fetch(false); err != nil {
		return nil, err
	}
	raw, err := o.session.caller.Call(fmt.Sprintf("%s cget -%s", o.schema.Command, m.Name))
	if err != nil {
		if _, ok := apperr.AsTclError(err); ok && m.Has(FlagIgErr) {
			return m.Zero(), nil
		}
		return nil, err
	}
	return m.Decode(raw)
}

// GetString returns a member formatted as text.
func (o *Object) GetString(name string) (string, error) {
	v, err := o.Get(name)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprint(v), nil
}

// GetInt returns an int member.
func (o *Object) GetInt(name string) (int, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, apperr.Newf(apperr.UsageError, "%s member %s is not an int", o.schema.Command, name)
	}
	return n, nil
}

// GetFloat returns a float member. Int members are converted.
func (o *Object) GetFloat(name string) (float64, error) {
	v, err := o.Get(name)
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	}
	return 0, apperr.Newf(apperr.UsageError, "%s member %s is not a number", o.schema.Command, name)
}

// GetBool returns a bool member.
func (o *Object) GetBool(name string) (bool, error) {
	v, err := o.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, apperr.Newf(apperr.UsageError, "%s member %s is not a bool", o.schema.Command, name)
	}
	return b, nil
}

// Set writes a member and commits it when auto-set is on. Unknown and
// read-only members fail before anything is sent.
func (o *Object) Set(name string, value any) error {
	m, err := o.member(name)
	if err != nil {
		return err
	}
	if m.Has(FlagRdOnly) {
		return apperr.Newf(apperr.UsageError, "%s member %s is read-only", o.schema.Command, m.Name)
	}
	encoded, err := m.Encode(value)
	if err != nil {
		return err
	}
	if err := o.Fetch(false); err != nil {
		return err
	}
	if _, err := o.session.caller.Call(fmt.Sprintf("%s config -%s %s", o.schema.Command, m.Name, encoded)); err != nil {
		return err
	}
	if o.session.AutoSet() {
		return o.Flush()
	}
	return nil
}

// SetAttributes writes several members with a single commit. Auto-set is
// suspended for the duration and always restored; the commit happens only
// if auto-set was on and every write succeeded.
func (o *Object) SetAttributes(attrs map[string]any) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	autoSet := o.session.SetAutoSet(false)
	defer o.session.SetAutoSet(autoSet)

	for _, name := range names {
		if err := o.Set(name, attrs[name]); err != nil {
			return err
		}
	}
	if autoSet {
		return o.Flush()
	}
	return nil
}

// Attributes reads members matching flags, all members when flags is zero,
// optionally restricted to names.
func (o *Object) Attributes(flags Flag, names ...string) (map[string]any, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make(map[string]any)
	for _, m := range o.schema.members {
		if flags != 0 && m.Flags&flags == 0 {
			continue
		}
		if len(wanted) > 0 && !wanted[m.Attr] && !wanted[m.Name] {
			continue
		}
		v, err := o.Get(m.Attr)
		if err != nil {
			return nil, err
		}
		out[m.Attr] = v
	}
	return out, nil
}

// Command invokes a declared verb as "<command> <verb> <uri> <args>".
func (o *Object) Command(verb string, args ...any) (string, error) {
	if !o.schema.HasCommand(verb) {
		return "", apperr.Newf(apperr.UsageError, "%s has no command %s", o.schema.Command, verb)
	}
	params := append([]any{o.uri}, args...)
	return o.session.caller.Call(tcl.Command(o.schema.Command+" "+verb, params...))
}

// ResetCurrent clears the cache cell of o and of every descendant, so the
// next access fetches again.
func (o *Object) ResetCurrent() {
	o.session.setCurrent(o.schema.Command, nil)
	for _, c := range o.children {
		c.ResetCurrent()
	}
}
