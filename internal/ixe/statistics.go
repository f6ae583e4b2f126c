// internal/ixe/statistics.go

package ixe

import (
	"ixexplorer/internal/ixapi"
	"ixexplorer/internal/tcl"
)

var statSchema = ixapi.NewSchema("stat", []ixapi.Member{
	ixapi.M("framesSent", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("framesReceived", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("bytesSent", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("bytesReceived", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("bitsSent", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("bitsReceived", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("captureTrigger", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("captureFilter", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("userDefinedStat1", ixapi.KindInt, ixapi.FlagRdOnly|ixapi.FlagIgErr),
	ixapi.M("userDefinedStat2", ixapi.KindInt, ixapi.FlagRdOnly|ixapi.FlagIgErr),
	ixapi.M("vlanTaggedFramesRx", ixapi.KindInt, ixapi.FlagRdOnly|ixapi.FlagIgErr),
	ixapi.M("ipPackets", ixapi.KindInt, ixapi.FlagRdOnly|ixapi.FlagIgErr),
	ixapi.M("udpPackets", ixapi.KindInt, ixapi.FlagRdOnly|ixapi.FlagIgErr),
	ixapi.M("transmitDuration", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("link", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("lineSpeed", ixapi.KindInt, ixapi.FlagRdOnly),
	ixapi.M("duplexMode", ixapi.KindInt, ixapi.FlagRdOnly),
})

// PortStats holds counters by name. Rates carry a "_rate" suffix.
type PortStats map[string]int

// ReadStats reads every counter and its rate.
func (p *Port) ReadStats() (PortStats, error) {
	stat := p.sub(statSchema, ixapi.NoFetch)
	stats := make(PortStats)
	for _, pass := range []struct{ verb, suffix string }{
		{"stat get statAllStats", ""},
		{"stat getRate statAllStats", "_rate"},
	} {
		if err := p.app.client.CallRC(tcl.Command(pass.verb, p.URI())); err != nil {
			return nil, err
		}
		values, err := stat.Attributes(ixapi.FlagRdOnly)
		if err != nil {
			return nil, err
		}
		for name, v := range values {
			n, _ := v.(int)
			stats[name+pass.suffix] = n
		}
	}
	return stats, nil
}

// ReadStats reads the statistics of the ports, all session ports by default,
// keyed by port name.
func (s *Session) ReadStats(ports ...*Port) (map[string]PortStats, error) {
	if len(ports) == 0 {
		ports = s.sortedPorts()
	}
	out := make(map[string]PortStats, len(ports))
	for _, p := range ports {
		stats, err := p.ReadStats()
		if err != nil {
			return nil, err
		}
		out[p.Name()] = stats
	}
	return out, nil
}
