package cx

import "sync/atomic"

type Countable interface {
	Inc() uint64
	Add(uint64) uint64
	Val() uint64
}

type uint64Counter struct {
	val uint64
}

func NewUint64Counter() Countable {
	return &uint64Counter{}
}

func (u *uint64Counter) Inc() uint64 {
	return atomic.AddUint64(&u.val, 1)
}

func (u *uint64Counter) Add(delta uint64) uint64 {
	return atomic.AddUint64(&u.val, delta)
}

func (u *uint64Counter) Val() uint64 {
	return atomic.LoadUint64(&u.val)
}
