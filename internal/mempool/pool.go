// Package mempool recycles scratch slices on hot paths.
package mempool

import (
	"sync"
)

const minClass = 64

// sizeClass rounds n up to the next power of two, never below minClass.
func sizeClass(n int) int {
	cls := minClass
	for cls < n {
		cls <<= 1
	}
	return cls
}

// SlicePool is a size-classed pool of []T buffers. The zero value is ready
// to use and a SlicePool is safe for concurrent use.
type SlicePool[T any] struct {
	pools sync.Map // key: size class (int), value: *sync.Pool
}

func (p *SlicePool[T]) class(cls int) *sync.Pool {
	if v, ok := p.pools.Load(cls); ok {
		return v.(*sync.Pool) //nolint:forcetypeassert // only *sync.Pool is stored
	}
	v, _ := p.pools.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]T, 0, cls)
		return &buf
	}})
	return v.(*sync.Pool) //nolint:forcetypeassert // only *sync.Pool is stored
}

// Get returns an empty slice with capacity of at least n. The caller should
// hand it back with Put once no reference to it remains.
func (p *SlicePool[T]) Get(n int) []T {
	cls := sizeClass(n)
	bufp, ok := p.class(cls).Get().(*[]T)
	if !ok || cap(*bufp) < cls {
		return make([]T, 0, cls)
	}
	return (*bufp)[:0]
}

// Put returns a buffer to the pool. Buffers whose capacity is not a size
// class, including nil, are dropped.
func (p *SlicePool[T]) Put(buf []T) {
	c := cap(buf)
	if c < minClass || sizeClass(c) != c {
		return
	}
	clear(buf[:c])
	buf = buf[:0]
	p.class(c).Put(&buf)
}
