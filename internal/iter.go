// Package internal holds helpers shared by the intcode packages.
package internal

import (
	"iter"
)

// Concat yields every value of each sequence in turn, stopping early when
// the consumer does.
func Concat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			stopped := false
			seq(func(val T) bool {
				stopped = !yield(val)
				return !stopped
			})
			if stopped {
				return
			}
		}
	}
}
