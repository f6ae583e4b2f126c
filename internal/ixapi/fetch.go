// internal/ixapi/fetch.go

package ixapi

import "ixexplorer/internal/tcl"

// Fetcher loads an object's attributes into the server's working state and
// commits them back.
type Fetcher interface {
	Fetch(o *Object, force bool) error
	Flush(o *Object) error
}

var (
	// OwnFetch uses the schema's own get and set verbs.
	OwnFetch Fetcher = ownFetch{}
	// ParentFetch is for objects stored under their parent: the parent is
	// fetched first and committed last.
	ParentFetch Fetcher = parentFetch{}
	// NoFetch never calls the server. The owner loads state itself.
	NoFetch Fetcher = noFetch{}
)

type ownFetch struct{}

func (ownFetch) Fetch(o *Object, force bool) error {
	if !force && o.session.Current(o.schema.Command) == o {
		return nil
	}
	if o.schema.GetVerb != "" {
		if err := o.session.caller.CallRC(tcl.Command(o.schema.Command+" "+o.schema.GetVerb, o.uri)); err != nil {
			return err
		}
	}
	o.session.setCurrent(o.schema.Command, o)
	return nil
}

func (ownFetch) Flush(o *Object) error {
	if o.schema.SetVerb == "" {
		return nil
	}
	return o.session.caller.CallRC(tcl.Command(o.schema.Command+" "+o.schema.SetVerb, o.uri))
}

type parentFetch struct{}

func (parentFetch) Fetch(o *Object, force bool) error {
	if o.parent != nil {
		if err := o.parent.Fetch(force); err != nil {
			return err
		}
	}
	return OwnFetch.Fetch(o, force)
}

func (parentFetch) Flush(o *Object) error {
	if err := OwnFetch.Flush(o); err != nil {
		return err
	}
	if o.parent != nil {
		return o.parent.Flush()
	}
	return nil
}

type noFetch struct{}

func (noFetch) Fetch(o *Object, _ bool) error {
	o.session.setCurrent(o.schema.Command, o)
	return nil
}

func (noFetch) Flush(*Object) error {
	return nil
}
