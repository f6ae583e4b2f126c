// internal/ixe/stream.go

package ixe

import "ixexplorer/internal/ixapi"

var streamSchema = ixapi.NewSchema("stream", []ixapi.Member{
	ixapi.M("name", ixapi.KindString),
	ixapi.M("enable", ixapi.KindBool),
	ixapi.M("da", ixapi.KindMac),
	ixapi.M("sa", ixapi.KindMac),
	ixapi.M("framesize", ixapi.KindInt),
	ixapi.M("numFrames", ixapi.KindInt),
	ixapi.M("percentPacketRate", ixapi.KindFloat),
	ixapi.M("rateMode", ixapi.KindInt),
	ixapi.M("dma", ixapi.KindInt),
	ixapi.M("ifg", ixapi.KindFloat),
}, "remove", "write", "export")

// Stream is one stream of a port, addressed as "chassis card port stream".
type Stream struct {
	*ixapi.Object
	app *App
}

// ID returns the stream number within its port.
func (s *Stream) ID() int {
	return lastIndex(s.URI())
}

// Write commits the stream to the hardware.
func (s *Stream) Write() error {
	_, err := s.Command("write")
	return err
}

// Remove deletes the stream on the server and from the object tree.
func (s *Stream) Remove() error {
	if _, err := s.Command("remove"); err != nil {
		return err
	}
	if _, err := s.Command("write"); err != nil {
		return err
	}
	s.Detach()
	return nil
}
