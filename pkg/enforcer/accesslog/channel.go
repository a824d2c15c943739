//
//  Copyright © Manetu Inc. All rights reserved.
//

package accesslog

import "sync"

// ChannelFactory is a factory for ChannelStream. Every stream it produces
// delivers to the same channel.
type ChannelFactory struct {
	ch   chan *Record
	once sync.Once
}

// ChannelStream implements the Stream interface by sending records to a
// channel, emulating delivery to an external audit pipeline. Primarily
// used in tests.
type ChannelStream struct {
	factory *ChannelFactory
}

// NewChannelFactory creates a factory producing streams that deliver
// records to the given channel.
func NewChannelFactory(ch chan *Record) Factory {
	return &ChannelFactory{ch: ch}
}

// NewStream creates a new ChannelStream to satisfy the Factory interface.
func (f *ChannelFactory) NewStream() (Stream, error) {
	return &ChannelStream{factory: f}, nil
}

// Send delivers a record to the channel.
func (s *ChannelStream) Send(record *Record) error {
	s.factory.ch <- record

	return nil
}

// Close finalizes the access log by closing the underlying channel. The
// channel is closed once even when multiple streams share the factory.
func (s *ChannelStream) Close() {
	s.factory.once.Do(func() {
		close(s.factory.ch)
	})
}
