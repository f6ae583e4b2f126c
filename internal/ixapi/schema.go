// internal/ixapi/schema.go

package ixapi

// Schema is the static description of one remote command type: its wire
// command, the verbs used to fetch and commit, its members and the verbs
// that may be invoked on it. A Schema is never modified after NewSchema.
type Schema struct {
	Command string
	GetVerb string
	SetVerb string

	members  []Member
	byAttr   map[string]Member
	byName   map[string]Member
	commands map[string]bool
}

// NewSchema builds a schema with the default get and set verbs.
func NewSchema(command string, members []Member, commands ...string) *Schema {
	s := &Schema{
		Command:  command,
		GetVerb:  "get",
		SetVerb:  "set",
		members:  make([]Member, 0, len(members)),
		byAttr:   make(map[string]Member, len(members)),
		byName:   make(map[string]Member, len(members)),
		commands: make(map[string]bool, len(commands)),
	}
	for _, m := range members {
		if m.Attr == "" {
			m.Attr = m.Name
		}
		s.members = append(s.members, m)
		s.byAttr[m.Attr] = m
		s.byName[m.Name] = m
	}
	for _, c := range commands {
		s.commands[c] = true
	}
	return s
}

// WithVerbs returns a copy of s using other fetch and commit verbs. An
// empty verb disables the corresponding remote call.
func (s *Schema) WithVerbs(get, set string) *Schema {
	c := *s
	c.GetVerb = get
	c.SetVerb = set
	return &c
}

// Member looks a member up by local or wire name.
func (s *Schema) Member(name string) (Member, bool) {
	if m, ok := s.byAttr[name]; ok {
		return m, true
	}
	m, ok := s.byName[name]
	return m, ok
}

// Members returns the members in declaration order.
func (s *Schema) Members() []Member {
	return append([]Member(nil), s.members...)
}

// HasCommand reports whether verb is declared.
func (s *Schema) HasCommand(verb string) bool {
	return s.commands[verb]
}
