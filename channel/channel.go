// Package channel provides the input sources and output sinks that a
// machine reads from and writes to.
//
// Channels carry signed 64-bit words one at a time. A Receiver may run dry
// at any point; what that means is up to the machine reading from it.
package channel

// Receiver is an input source for a machine.
type Receiver interface {
	// Receive returns the next word, or ok == false if none is available.
	Receive() (value int64, ok bool)
}

// Sender is an output sink for a machine.
type Sender interface {
	// Send accepts a single word.
	Send(value int64) error
}

// ReceiverFunc adapts a function to a Receiver.
type ReceiverFunc func() (value int64, ok bool)

// Receive calls rf().
func (rf ReceiverFunc) Receive() (value int64, ok bool) {
	return rf()
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(value int64) error

// Send calls sf(value).
func (sf SenderFunc) Send(value int64) error {
	return sf(value)
}
