package emulator

import (
	"errors"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/intcode/channel"
	"github.com/ezrec/intcode/machine"
)

// Node is a single machine attached to a network.
type Node struct {
	*machine.Machine
	Address int           // Network address, also the first input word.
	Inbox   channel.Queue // Words delivered to the node.

	packet []int64
}

// Idle returns true if the node has asked for input that was not there.
func (node *Node) Idle() bool {
	return node.Inbox.Starved && node.Inbox.Len() == 0
}

// Stopped returns true if the node has halted or failed.
func (node *Node) Stopped() bool {
	return node.Status == machine.STATUS_HALTED || node.Status == machine.STATUS_ERROR
}

// Network runs a set of MODE_NETWORK machines in lockstep. Every
// PacketSize outputs of a node form a packet, whose first word is the
// destination address.
type Network struct {
	Verbose    bool    // If set, enables verbose logging.
	Nodes      []*Node // Attached nodes, indexed by address.
	PacketSize int     // Words per packet, address included.

	// Route is called with every packet sent. When nil, packets are
	// delivered to the node at their address, and packets to any other
	// address are dropped.
	Route func(from int, packet []int64) error

	sent int
}

// NewNetwork creates a network of count nodes, all running a copy of mem.
// Each node receives its address as its first input.
func NewNetwork(mem machine.Memory, count int, packetSize int) (net *Network) {
	net = &Network{
		Nodes:      make([]*Node, count),
		PacketSize: packetSize,
	}

	for addr := range count {
		node := &Node{
			Machine: machine.NewFromMemory(mem, machine.MODE_NETWORK),
			Address: addr,
		}
		node.Inbox.Send(int64(addr))
		net.Nodes[addr] = node
	}

	return
}

// Deliver queues words to the node at addr.
func (net *Network) Deliver(addr int64, values ...int64) (err error) {
	if addr < 0 || addr >= int64(len(net.Nodes)) {
		err = ErrAddressInvalid
		return
	}

	inbox := &net.Nodes[addr].Inbox
	for _, value := range values {
		err = inbox.Send(value)
		if err != nil {
			return
		}
	}

	return
}

// route sends a completed packet.
func (net *Network) route(from int, packet []int64) (err error) {
	if net.Verbose {
		log.Debugf("network: %d -> %v", from, packet)
	}

	if net.Route != nil {
		err = net.Route(from, packet)
		return
	}

	err = net.Deliver(packet[0], packet[1:]...)
	if errors.Is(err, ErrAddressInvalid) {
		if net.Verbose {
			log.Debugf("network: %d: %v: dropped %v", from, err, packet)
		}
		err = nil
	}

	return
}

// Tick executes one instruction on every running node, in address order.
// A failing node does not stop the round; the first error is returned
// once every node has been stepped.
func (net *Network) Tick() (err error) {
	if net.PacketSize < 1 {
		err = ErrPacketSize
		return
	}

	fail := func(e error) {
		if err == nil {
			err = e
		}
	}

	net.sent = 0
	for _, node := range net.Nodes {
		if node.Stopped() {
			continue
		}

		node.Machine.Verbose = net.Verbose

		value, output, status := node.Step(&node.Inbox)
		if status == machine.STATUS_ERROR {
			fail(&ErrRuntime{Node: node.Address, Ip: node.Ip, Err: node.Err})
			continue
		}
		if !output {
			continue
		}

		node.packet = append(node.packet, value)
		if len(node.packet) < net.PacketSize {
			continue
		}

		packet := slices.Clone(node.packet)
		node.packet = node.packet[:0]
		net.sent++

		fail(net.route(node.Address, packet))
	}

	return
}

// Sent returns the number of packets sent by the last Tick.
func (net *Network) Sent() int {
	return net.sent
}

// Idle returns true if every running node is waiting for input, and no
// packet was sent by the last Tick.
func (net *Network) Idle() bool {
	if net.sent != 0 {
		return false
	}

	for _, node := range net.Nodes {
		if !node.Stopped() && !node.Idle() {
			return false
		}
	}

	return true
}

// Halted returns true when every node has stopped.
func (net *Network) Halted() bool {
	for _, node := range net.Nodes {
		if !node.Stopped() {
			return false
		}
	}

	return true
}
