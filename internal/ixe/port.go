// internal/ixe/port.go

package ixe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/ixapi"
	"ixexplorer/internal/tcl"
	"ixexplorer/internal/utils"
)

const warningSeparator = "LiStSeP"

var portSchema = ixapi.NewSchema("port", []ixapi.Member{
	ixapi.M("advertise1000FullDuplex", ixapi.KindBool),
	ixapi.M("advertise100FullDuplex", ixapi.KindBool),
	ixapi.M("advertise100HalfDuplex", ixapi.KindBool),
	ixapi.M("advertise10FullDuplex", ixapi.KindBool),
	ixapi.M("advertise10HalfDuplex", ixapi.KindBool),
	ixapi.M("advertiseAbilities", ixapi.KindString),
	ixapi.M("autonegotiate", ixapi.KindBool),
	ixapi.M("DestMacAddress", ixapi.KindMac),
	ixapi.M("directedAddress", ixapi.KindMac),
	ixapi.M("duplex", ixapi.KindString),
	ixapi.M("enableDataCenterMode", ixapi.KindBool, ixapi.FlagIgErr),
	ixapi.M("enableSimulateCableDisconnect", ixapi.KindBool, ixapi.FlagIgErr),
	ixapi.M("flowControl", ixapi.KindBool),
	ixapi.M("flowControlType", ixapi.KindInt),
	ixapi.M("ignoreLink", ixapi.KindBool),
	ixapi.M("linkState", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("loopback", ixapi.KindString),
	ixapi.M("MacAddress", ixapi.KindMac),
	ixapi.M("multicastPauseAddress", ixapi.KindMac),
	ixapi.M("operationModeList", ixapi.KindString, ixapi.FlagMultiValue),
	ixapi.M("owner", ixapi.KindString),
	ixapi.M("phyMode", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("pmaClock", ixapi.KindInt, ixapi.FlagIgErr),
	ixapi.M("portMode", ixapi.KindInt),
	ixapi.M("receiveMode", ixapi.KindInt),
	ixapi.M("rxTxMode", ixapi.KindInt),
	ixapi.M("speed", ixapi.KindInt),
	ixapi.M("transmitMode", ixapi.KindInt),
	ixapi.M("txRxSyncInterval", ixapi.KindInt, ixapi.FlagIgErr),
	ixapi.M("type", ixapi.KindString, ixapi.FlagRdOnly),
	ixapi.M("typeName", ixapi.KindString, ixapi.FlagRdOnly),
}, "write", "getFeature", "getStreamCount", "reset", "setFactoryDefaults",
	"setPhyMode", "setModeDefaults", "setReceiveMode", "setTransmitMode",
	"restartAutoNegotiation", "getPortState")

var (
	dataIntegritySchema = ixapi.NewSchema("dataIntegrity", []ixapi.Member{
		ixapi.M("enableTimeStamp", ixapi.KindBool),
		ixapi.M("insertSignature", ixapi.KindBool),
		ixapi.M("signature", ixapi.KindString),
		ixapi.M("signatureOffset", ixapi.KindInt),
	}, "getCircuitRx", "getQueueRx", "setCircuitRx", "setQueueRx").WithVerbs("getRx", "setRx")

	packetGroupSchema = ixapi.NewSchema("packetGroup", []ixapi.Member{
		ixapi.M("signature", ixapi.KindString),
		ixapi.M("groupIdOffset", ixapi.KindInt),
		ixapi.M("signatureOffset", ixapi.KindInt),
	}).WithVerbs("getRx", "setRx")

	streamRegionSchema = ixapi.NewSchema("streamRegion", nil, "generateWarningList")

	captureSchema = ixapi.NewSchema("capture", []ixapi.Member{
		ixapi.M("nPackets", ixapi.KindInt, ixapi.FlagRdOnly),
	})
)

// Port link states.
const (
	LinkDown            = 0
	LinkUp              = 1
	LinkLoopback        = 2
	LinkAutoNegotiating = 5
	LinkNoTransceiver   = 7
	LinkNoLinkPartner   = 10
	LinkLossOfFrame     = 24
	LinkLossOfSignal    = 25
)

var digits = regexp.MustCompile(`\d+`)

// Port is one port, addressed as "chassis card port".
type Port struct {
	*ixapi.Object
	app *App
}

// Reserve takes ownership of the port. Without force it fails when another
// user owns the port, naming the owner.
func (p *Port) Reserve(force bool) error {
	if force {
		return p.app.client.CallRC(tcl.Command("ixPortTakeOwnership", p.URI(), "force"))
	}
	err := p.app.client.CallRC(tcl.Command("ixPortTakeOwnership", p.URI()))
	if err == nil {
		return nil
	}
	owner, ownerErr := p.GetString("owner")
	if ownerErr != nil {
		owner = "unknown"
	}
	return apperr.New(apperr.ValidationError, fmt.Sprintf("failed to take ownership for port %s, current owner is %s", p.Name(), owner), err)
}

// Release clears the port's ownership.
func (p *Port) Release() error {
	return p.app.client.CallRC(tcl.Command("ixPortClearOwnership", p.URI()))
}

// Owner returns the current owner.
func (p *Port) Owner() (string, error) {
	return p.GetString("owner")
}

// LinkState returns one of the Link constants.
func (p *Port) LinkState() (int, error) {
	return p.GetInt("linkState")
}

// SetFactoryDefaults loads the factory defaults into the working state.
func (p *Port) SetFactoryDefaults() error {
	_, err := p.Command("setFactoryDefaults")
	return err
}

// Reset removes all streams from the port's working state.
func (p *Port) Reset() error {
	_, err := p.Command("reset")
	return err
}

// Write commits the port configuration to the hardware and fails with
// *apperr.StreamWarningsError when the stream region reports warnings.
func (p *Port) Write() error {
	if _, err := p.Command("write"); err != nil {
		return err
	}
	warnings, err := p.StreamRegion().Command("generateWarningList")
	if err != nil {
		return err
	}
	if strings.TrimSpace(warnings) == "" {
		return nil
	}
	joined, err := p.app.client.Call("join " + tcl.Quote(warnings) + " " + warningSeparator)
	if err != nil {
		return err
	}
	var list []string
	for _, w := range strings.Split(joined, warningSeparator) {
		if w = strings.TrimSpace(w); w != "" {
			list = append(list, w)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return &apperr.StreamWarningsError{Port: p.Name(), Warnings: list}
}

// StreamCount returns the number of streams defined on the port.
func (p *Port) StreamCount() (int, error) {
	rsp, err := p.Command("getStreamCount")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(rsp))
	if err != nil {
		return 0, apperr.New(apperr.FramingError, fmt.Sprintf("stream count %q", rsp), err)
	}
	return n, nil
}

// Discover creates handles for the port's streams.
func (p *Port) Discover() error {
	p.app.log.Infof("Discover port %s", p.Name())
	count, err := p.StreamCount()
	if err != nil {
		return err
	}
	for id := 1; id <= count; id++ {
		p.newStream(id)
	}
	return nil
}

func (p *Port) newStream(id int) *Stream {
	uri := fmt.Sprintf("%s %d", p.URI(), id)
	o := p.Child(streamSchema.Command, uri)
	if o == nil {
		o = ixapi.NewObject(p.app.api, streamSchema, p.Object, uri)
	}
	return &Stream{Object: o, app: p.app}
}

// AddStream appends a stream with default configuration. The stream is
// named after its URI when name is empty.
func (p *Port) AddStream(name string) (*Stream, error) {
	count, err := p.StreamCount()
	if err != nil {
		return nil, err
	}
	s := p.newStream(count + 1)
	if err := s.SetDefault(); err != nil {
		return nil, err
	}
	if name == "" {
		name = s.Name()
	}
	if err := s.Set("name", name); err != nil {
		return nil, err
	}
	return s, nil
}

// Streams returns the port's streams by id.
func (p *Port) Streams() map[int]*Stream {
	out := make(map[int]*Stream)
	for _, o := range p.ChildrenOf(streamSchema.Command) {
		out[lastIndex(o.URI())] = &Stream{Object: o, app: p.app}
	}
	return out
}

// LoadConfig imports a .prt port file or a .str stream file, then writes
// the port and rediscovers its streams. Against a Linux server the file is
// uploaded first.
func (p *Port) LoadConfig(ctx context.Context, localPath string) error {
	ext := utils.Ext(localPath)
	if ext != ".prt" && ext != ".str" {
		return apperr.Newf(apperr.ValidationError, "configuration file type %s not supported", ext)
	}
	file := utils.ToTclPath(localPath)
	if files := p.app.files(); files != nil {
		file = utils.RemotePath(p.app.uploadDir, localPath)
		n, err := files.Upload(localPath, file)
		if err != nil {
			return err
		}
		p.app.log.Debugf("uploaded %s to %s (%d bytes)", localPath, file, n)
	}

	switch ext {
	case ".prt":
		if err := p.app.client.CallRC(tcl.Command("port import", tcl.Quote(file), p.URI())); err != nil {
			return err
		}
	case ".str":
		if err := p.Reset(); err != nil {
			return err
		}
		if err := p.app.client.CallRC(tcl.Command("stream import", tcl.Quote(file), p.URI())); err != nil {
			return err
		}
	}
	for _, s := range p.Streams() {
		s.Detach()
	}
	if err := p.Write(); err != nil {
		return err
	}
	return p.Discover()
}

// ExportConfig saves the port configuration as a .prt file at localPath.
// Against a Linux server the file is exported remotely and downloaded.
func (p *Port) ExportConfig(ctx context.Context, localPath string) error {
	files := p.app.files()
	if files == nil {
		return p.app.client.CallRC(tcl.Command("port export", tcl.Quote(utils.ToTclPath(localPath)), p.URI()))
	}
	remote := utils.RemotePath(p.app.uploadDir, localPath)
	if err := p.app.client.CallRC(tcl.Command("port export", tcl.Quote(remote), p.URI())); err != nil {
		return err
	}
	return files.Download(ctx, remote, localPath)
}

// ClearStats clears the port, packet group and per stream statistics.
func (p *Port) ClearStats() error {
	if err := p.app.client.CallRC(tcl.Command("ixClearPortStats", p.URI())); err != nil {
		return err
	}
	if err := p.app.client.CallRC(tcl.Command("ixClearPortPacketGroups", p.URI())); err != nil {
		return err
	}
	list, err := p.app.Session.SetPortsList(p)
	if err != nil {
		return err
	}
	return p.app.client.CallRC(tcl.Command("ixClearPerStreamTxStats", list))
}

// SupportedSpeeds returns the line rates the port supports, in Mbps.
func (p *Port) SupportedSpeeds() ([]string, error) {
	rsp, err := p.Command("getFeature", "ethernetLineRate")
	if err != nil {
		return nil, err
	}
	return digits.FindAllString(rsp, -1), nil
}

// StartTransmit starts traffic on this port.
func (p *Port) StartTransmit(blocking bool) error {
	return p.app.Session.StartTransmit(blocking, p)
}

// StopTransmit stops traffic on this port.
func (p *Port) StopTransmit() error {
	return p.app.Session.StopTransmit(p)
}

// StartCapture starts capture on this port.
func (p *Port) StartCapture() error {
	return p.app.Session.StartCapture(p)
}

// StopCapture stops capture and returns the number of captured packets.
func (p *Port) StopCapture() (int, error) {
	counts, err := p.app.Session.StopCapture(p)
	if err != nil {
		return 0, err
	}
	return counts[p.Name()], nil
}

// DataIntegrity returns the port's receive data integrity settings.
func (p *Port) DataIntegrity() *ixapi.Object {
	return p.sub(dataIntegritySchema, ixapi.ParentFetch)
}

// PacketGroup returns the port's receive packet group settings.
func (p *Port) PacketGroup() *ixapi.Object {
	return p.sub(packetGroupSchema, ixapi.ParentFetch)
}

// StreamRegion returns the port's stream region.
func (p *Port) StreamRegion() *ixapi.Object {
	return p.sub(streamRegionSchema, ixapi.ParentFetch)
}

func (p *Port) capture() *ixapi.Object {
	return p.sub(captureSchema, ixapi.OwnFetch)
}

// sub returns the child of the given schema stored under the port's URI,
// creating it on first use.
func (p *Port) sub(schema *ixapi.Schema, fetcher ixapi.Fetcher) *ixapi.Object {
	if o := p.Child(schema.Command, p.URI()); o != nil {
		return o
	}
	return ixapi.NewObject(p.app.api, schema, p.Object, p.URI(), ixapi.WithFetcher(fetcher))
}
