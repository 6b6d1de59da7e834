package channel

import (
	"iter"
)

// QUEUE_INITIAL_SIZE is the first allocation of an unbounded queue.
const QUEUE_INITIAL_SIZE = 16

// Queue implements a circular FIFO buffer of words.
// With a zero Capacity the queue grows without bound.
type Queue struct {
	Capacity int  // Capacity in words, 0 for unbounded.
	Starved  bool // Set when a Receive found the queue empty.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []int64
}

var _ Receiver = (*Queue)(nil)
var _ Sender = (*Queue)(nil)

// Values returns an unbounded queue holding values, in order.
func Values(values ...int64) (queue *Queue) {
	queue = &Queue{}
	for _, value := range values {
		queue.Send(value)
	}
	return
}

// Rewind resets the queue to empty.
func (queue *Queue) Rewind() {
	queue.ReadIndex = 0
	queue.WriteIndex = 0
	queue.Size = 0
	queue.Starved = false
	queue.Data = make([]int64, queue.Capacity)
}

// Len returns the number of words waiting in the queue.
func (queue *Queue) Len() int {
	return queue.Size
}

// Receive removes the oldest word from the queue.
func (queue *Queue) Receive() (value int64, ok bool) {
	if queue.Size == 0 {
		queue.Starved = true
		return
	}

	value = queue.Data[queue.ReadIndex]
	queue.ReadIndex++
	if queue.ReadIndex == len(queue.Data) {
		queue.ReadIndex = 0
	}
	queue.Size--
	ok = true

	return
}

// Send appends a word to the queue.
// Returns ErrChannelFull if a bounded queue has reached capacity.
func (queue *Queue) Send(value int64) (err error) {
	if queue.Capacity > 0 && queue.Size >= queue.Capacity {
		err = ErrChannelFull
		return
	}

	if queue.Size == len(queue.Data) {
		queue.grow()
	}

	queue.Data[queue.WriteIndex] = value

	queue.WriteIndex++
	if queue.WriteIndex == len(queue.Data) {
		queue.WriteIndex = 0
	}
	queue.Size++
	queue.Starved = false

	return
}

// SendAll sends every word of seq, stopping at the first error.
func (queue *Queue) SendAll(seq iter.Seq[int64]) (err error) {
	for value := range seq {
		err = queue.Send(value)
		if err != nil {
			return
		}
	}
	return
}

// All returns an iterator over the queued words, oldest first, without
// removing them.
func (queue *Queue) All() iter.Seq[int64] {
	return func(yield func(value int64) bool) {
		index := queue.ReadIndex
		for range queue.Size {
			if !yield(queue.Data[index]) {
				return
			}
			index++
			if index == len(queue.Data) {
				index = 0
			}
		}
	}
}

// grow reallocates the ring so the words are contiguous from index 0.
func (queue *Queue) grow() {
	size := len(queue.Data) * 2
	if size == 0 {
		size = QUEUE_INITIAL_SIZE
	}
	if queue.Capacity > 0 && size > queue.Capacity {
		size = queue.Capacity
	}

	data := make([]int64, 0, size)
	for value := range queue.All() {
		data = append(data, value)
	}

	queue.ReadIndex = 0
	queue.WriteIndex = len(data)
	queue.Data = data[:size]
}
