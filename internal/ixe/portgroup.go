// internal/ixe/portgroup.go

package ixe

import (
	"strconv"

	"ixexplorer/internal/ixapi"
	"ixexplorer/internal/tcl"
)

// Port group commands.
const (
	GroupStartTransmit        = 7
	GroupStopTransmit         = 8
	GroupStartCapture         = 9
	GroupStopCapture          = 10
	GroupResetStatistics      = 13
	GroupPauseTransmit        = 15
	GroupStepTransmit         = 16
	GroupTransmitPing         = 17
	GroupTakeOwnership        = 40
	GroupTakeOwnershipForced  = 41
	GroupClearOwnership       = 42
	GroupClearOwnershipForced = 43
)

var portGroupSchema = ixapi.NewSchema("portGroup", []ixapi.Member{
	ixapi.M("lastTimeStamp", ixapi.KindInt, ixapi.FlagRdOnly),
}, "create", "destroy", "add", "del")

// PortGroup applies commands to a set of ports at once.
type PortGroup struct {
	*ixapi.Object
	app *App
}

func newPortGroup(a *App, id int) *PortGroup {
	o := ixapi.NewObject(a.api, portGroupSchema, a.Session.Object, strconv.Itoa(id))
	return &PortGroup{Object: o, app: a}
}

// Create defines the group on the server.
func (g *PortGroup) Create() error {
	_, err := g.Command("create")
	return err
}

// Destroy removes the group from the server and the object tree.
func (g *PortGroup) Destroy() error {
	if _, err := g.Command("destroy"); err != nil {
		return err
	}
	g.Detach()
	return nil
}

// AddPort adds p to the group.
func (g *PortGroup) AddPort(p *Port) error {
	_, err := g.Command("add", p.URI())
	return err
}

// DelPort removes p from the group.
func (g *PortGroup) DelPort(p *Port) error {
	_, err := g.Command("del", p.URI())
	return err
}

// SetCommand runs one of the port group commands on every member port.
func (g *PortGroup) SetCommand(command int) error {
	return g.app.client.CallRC(tcl.Command("portGroup setCommand", g.URI(), command))
}

func (g *PortGroup) StartTransmit() error { return g.SetCommand(GroupStartTransmit) }
func (g *PortGroup) StopTransmit() error  { return g.SetCommand(GroupStopTransmit) }
func (g *PortGroup) StartCapture() error  { return g.SetCommand(GroupStartCapture) }
func (g *PortGroup) StopCapture() error   { return g.SetCommand(GroupStopCapture) }
func (g *PortGroup) ResetStats() error    { return g.SetCommand(GroupResetStatistics) }
func (g *PortGroup) PauseTransmit() error { return g.SetCommand(GroupPauseTransmit) }
func (g *PortGroup) StepTransmit() error  { return g.SetCommand(GroupStepTransmit) }
func (g *PortGroup) TransmitPing() error  { return g.SetCommand(GroupTransmitPing) }

// TakeOwnership reserves every member port.
func (g *PortGroup) TakeOwnership(force bool) error {
	if force {
		return g.SetCommand(GroupTakeOwnershipForced)
	}
	return g.SetCommand(GroupTakeOwnership)
}

// ClearOwnership releases every member port.
func (g *PortGroup) ClearOwnership(force bool) error {
	if force {
		return g.SetCommand(GroupClearOwnershipForced)
	}
	return g.SetCommand(GroupClearOwnership)
}
