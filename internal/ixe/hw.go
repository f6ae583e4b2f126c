// internal/ixe/hw.go

package ixe

import (
	"fmt"
	"strconv"
	"strings"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/ixapi"
)

var chassisSchema = ixapi.NewSchema("chassis", []ixapi.Member{
	ixapi.M("baseIpAddress", ixapi.KindString),
	ixapi.M("cableLength", ixapi.KindInt),
	ixapi.M("hostName", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("id", ixapi.KindInt),
	ixapi.M("ipAddress", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("ixServerVersion", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("master", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("maxCardCount", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("name", ixapi.KindString),
	ixapi.M("operatingSystem", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("sequence", ixapi.KindInt),
	ixapi.M("type", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("typeName", ixapi.KindString, ixapi.FlagRdOnly),
}, "add", "refresh", "del")

var cardSchema = ixapi.NewSchema("card", []ixapi.Member{
	ixapi.M("cardOperationMode", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("clockRxRisingEdge", ixapi.KindInt),
	ixapi.M("clockSelect", ixapi.KindInt),
	ixapi.M("clockTxRisingEdge", ixapi.KindInt),
	ixapi.M("fpgaVersion", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("hwVersion", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("portCount", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("serialNumber", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("txFrequencyDeviation", ixapi.KindInt),
	ixapi.M("type", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("typeName", ixapi.KindString),
})

// ChassisTypes maps chassis type codes to their vendor names.
var ChassisTypes = map[int]string{
	2:  "ixia1600",
	3:  "ixia200",
	4:  "ixia400",
	5:  "ixia100",
	6:  "ixia400C",
	7:  "ixia1600T",
	9:  "ixiaDemo",
	10: "ixiaOptixia",
	11: "ixiaOpixJr",
	14: "ixia400T",
	17: "ixia250",
	18: "ixia400Tf",
	19: "ixiaOptixiaX16",
	20: "ixiaOptixiaXL10",
	22: "ixiaOptixiaXM12",
	24: "ixiaOptixiaXV",
}

// Chassis is one chassis, addressed by host name or IP.
type Chassis struct {
	*ixapi.Object
	app *App
}

func newChassis(a *App, host string) *Chassis {
	o := ixapi.NewObject(a.api, chassisSchema, a.Session.Object, host, ixapi.WithName(host))
	return &Chassis{Object: o, app: a}
}

func (c *Chassis) connect(id int) error {
	if _, err := c.Command("add"); err != nil {
		return err
	}
	return c.Set("id", id)
}

// ID returns the chassis id used in card and port URIs.
func (c *Chassis) ID() (int, error) {
	return c.GetInt("id")
}

// Refresh reloads the chassis state on the server.
func (c *Chassis) Refresh() error {
	_, err := c.Command("refresh")
	return err
}

// Disconnect removes the chassis from the server's chassis chain and from
// the object tree.
func (c *Chassis) Disconnect() error {
	if _, err := c.Command("del"); err != nil {
		return err
	}
	c.Detach()
	return nil
}

// Discover probes every card slot. The server has no list of populated
// slots, so slots that fail to load are skipped.
func (c *Chassis) Discover() error {
	c.app.log.Infof("Discover chassis %s", c.Name())
	id, err := c.ID()
	if err != nil {
		return err
	}
	maxCards, err := c.GetInt("maxCardCount")
	if err != nil {
		return err
	}
	for cid := 1; cid <= maxCards; cid++ {
		uri := fmt.Sprintf("%d %d", id, cid)
		o := c.Child(cardSchema.Command, uri)
		if o == nil {
			o = ixapi.NewObject(c.app.api, cardSchema, c.Object, uri)
		}
		card := &Card{Object: o, app: c.app}
		if err := card.Discover(); err != nil {
			if _, ok := apperr.AsTclError(err); ok {
				c.app.log.Debugf("slot %d skipped: %v", cid, err)
				card.Detach()
				continue
			}
			return err
		}
	}
	return nil
}

// Cards returns the discovered cards by slot.
func (c *Chassis) Cards() map[int]*Card {
	out := make(map[int]*Card)
	for _, o := range c.ChildrenOf(cardSchema.Command) {
		out[lastIndex(o.URI())] = &Card{Object: o, app: c.app}
	}
	return out
}

// TypeName returns the vendor name of the chassis type.
func (c *Chassis) TypeName() (string, error) {
	t, err := c.GetInt("type")
	if err != nil {
		return "", err
	}
	if name, ok := ChassisTypes[t]; ok {
		return name, nil
	}
	return strconv.Itoa(t), nil
}

// AddVirtualCard adds a virtual load module to the chassis.
func (c *Chassis) AddVirtualCard(cardIP string, cardID int, keepAlive int) (*Card, error) {
	if err := c.app.client.CallRC(fmt.Sprintf("chassis addVirtualCard %s %s %d %d", c.URI(), cardIP, cardID, keepAlive)); err != nil {
		return nil, err
	}
	id, err := c.ID()
	if err != nil {
		return nil, err
	}
	o := ixapi.NewObject(c.app.api, cardSchema, c.Object, fmt.Sprintf("%d %d", id, cardID))
	return &Card{Object: o, app: c.app}, nil
}

// Card is one load module.
type Card struct {
	*ixapi.Object
	app *App
}

// Discover creates a handle for every port on the card.
func (c *Card) Discover() error {
	c.app.log.Infof("Discover card %s", c.Name())
	count, err := c.GetInt("portCount")
	if err != nil {
		return err
	}
	for pid := 1; pid <= count; pid++ {
		uri := fmt.Sprintf("%s %d", c.URI(), pid)
		if c.Child(portSchema.Command, uri) == nil {
			ixapi.NewObject(c.app.api, portSchema, c.Object, uri)
		}
	}
	return nil
}

// Ports returns the card's ports by port number.
func (c *Card) Ports() map[int]*Port {
	out := make(map[int]*Port)
	for _, o := range c.ChildrenOf(portSchema.Command) {
		out[lastIndex(o.URI())] = &Port{Object: o, app: c.app}
	}
	return out
}

// lastIndex returns the last number of a URI, 0 when it is not numeric.
func lastIndex(uri string) int {
	fields := strings.Fields(uri)
	if len(fields) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(fields[len(fields)-1])
	return n
}
