// internal/ixe/session.go

package ixe

import (
	"fmt"
	"sort"
	"strings"

	"ixexplorer/internal/ixapi"
	"ixexplorer/internal/tcl"
)

var sessionSchema = ixapi.NewSchema("session", []ixapi.Member{
	ixapi.M("userName", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("captureBufferSegmentSize", ixapi.KindInt),
}, "login", "logout")

// Session is the root of the object tree. Ports reserved by the user live
// directly under it.
type Session struct {
	*ixapi.Object
	app *App

	portLists map[string]bool
	nextGroup int
}

func newSession(a *App) *Session {
	return &Session{
		Object:    ixapi.NewObject(a.api, sessionSchema, nil, ""),
		app:       a,
		portLists: make(map[string]bool),
		nextGroup: 1,
	}
}

// Login opens the IxExplorer user session.
func (s *Session) Login(user string) error {
	_, err := s.Command("login", user)
	return err
}

// Logout closes the IxExplorer user session.
func (s *Session) Logout() error {
	_, err := s.Command("logout")
	return err
}

// AddPorts returns session level handles for the given port URIs, creating
// them when needed. URIs use spaces or slashes: "1 1 1" or "1/1/1".
func (s *Session) AddPorts(uris ...string) []*Port {
	ports := make([]*Port, 0, len(uris))
	for _, uri := range uris {
		o := s.Child(portSchema.Command, uri)
		if o == nil {
			o = ixapi.NewObject(s.app.api, portSchema, s.Object, uri)
		}
		ports = append(ports, &Port{Object: o, app: s.app})
	}
	return ports
}

// ReservePorts takes ownership of the ports and resets them to factory
// defaults with no streams and clear statistics.
func (s *Session) ReservePorts(force bool, uris ...string) (map[string]*Port, error) {
	for _, p := range s.AddPorts(uris...) {
		if err := p.Reserve(force); err != nil {
			return nil, err
		}
		if err := p.SetFactoryDefaults(); err != nil {
			return nil, err
		}
		if err := p.newStream(1).Remove(); err != nil {
			return nil, err
		}
		if err := p.Write(); err != nil {
			return nil, err
		}
		if err := p.ClearStats(); err != nil {
			return nil, err
		}
	}
	return s.Ports(), nil
}

// Ports returns the session level ports by name.
func (s *Session) Ports() map[string]*Port {
	out := make(map[string]*Port)
	for _, o := range s.ChildrenOf(portSchema.Command) {
		out[o.Name()] = &Port{Object: o, app: s.app}
	}
	return out
}

func (s *Session) sortedPorts() []*Port {
	ports := s.Ports()
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Port, 0, len(names))
	for _, name := range names {
		out = append(out, ports[name])
	}
	return out
}

// SetPortsList defines a Tcl variable holding the port list and returns its
// name. With no ports, all session ports are used. Each list is defined
// once per session.
func (s *Session) SetPortsList(ports ...*Port) (string, error) {
	if len(ports) == 0 {
		ports = s.sortedPorts()
	}
	uris := make([]string, 0, len(ports))
	elems := make([]string, 0, len(ports))
	for _, p := range ports {
		uris = append(uris, p.URI())
		elems = append(elems, "[list "+p.URI()+"]")
	}
	name := "pl_" + strings.ReplaceAll(strings.Join(uris, "_"), " ", "_")
	if s.portLists[name] {
		return name, nil
	}
	if _, err := s.app.client.Call(fmt.Sprintf("set %s [list %s]", name, strings.Join(elems, " "))); err != nil {
		return "", err
	}
	s.portLists[name] = true
	return name, nil
}

func (s *Session) portsCall(command string, ports []*Port) error {
	list, err := s.SetPortsList(ports...)
	if err != nil {
		return err
	}
	return s.app.client.CallRC(tcl.Command(command, list))
}

// StartTransmit starts traffic on the ports, all session ports by default.
// With blocking set it returns once transmission is done.
func (s *Session) StartTransmit(blocking bool, ports ...*Port) error {
	for _, command := range []string{"ixClearTimeStamp", "ixStartPacketGroups", "ixStartTransmit"} {
		if err := s.portsCall(command, ports); err != nil {
			return err
		}
	}
	s.app.settleDown()
	if blocking {
		return s.WaitTransmit(ports...)
	}
	return nil
}

// WaitTransmit blocks until the ports stop transmitting.
func (s *Session) WaitTransmit(ports ...*Port) error {
	list, err := s.SetPortsList(ports...)
	if err != nil {
		return err
	}
	command := tcl.Command("ixCheckTransmitDone", list)
	rc, err := s.app.client.CallSlow(command)
	if err != nil {
		return err
	}
	return checkRC(command, strings.TrimSpace(rc))
}

// StopTransmit stops traffic on the ports.
func (s *Session) StopTransmit(ports ...*Port) error {
	if err := s.portsCall("ixStopTransmit", ports); err != nil {
		return err
	}
	s.app.settleDown()
	return nil
}

// StartCapture starts capture on the ports.
func (s *Session) StartCapture(ports ...*Port) error {
	return s.portsCall("ixStartCapture", ports)
}

// StopCapture stops capture and returns the number of captured packets per
// port name.
func (s *Session) StopCapture(ports ...*Port) (map[string]int, error) {
	if len(ports) == 0 {
		ports = s.sortedPorts()
	}
	if err := s.portsCall("ixStopCapture", ports); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(ports))
	for _, p := range ports {
		capture := p.capture()
		if err := capture.Fetch(true); err != nil {
			return nil, err
		}
		n, err := capture.GetInt("nPackets")
		if err != nil {
			return nil, err
		}
		counts[p.Name()] = n
	}
	return counts, nil
}

// ClearStats clears port and per stream statistics.
func (s *Session) ClearStats(ports ...*Port) error {
	for _, command := range []string{"ixClearStats", "ixClearPacketGroups", "ixClearPerStreamTxStats"} {
		if err := s.portsCall(command, ports); err != nil {
			return err
		}
	}
	return nil
}

// NewPortGroup allocates the next free port group id.
func (s *Session) NewPortGroup() *PortGroup {
	id := s.nextGroup
	s.nextGroup++
	return newPortGroup(s.app, id)
}
