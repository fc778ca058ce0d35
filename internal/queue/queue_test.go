package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_PushPop(t *testing.T) {
	q := New[string](0)

	_, ok := q.Pop()
	assert.False(t, ok)

	assert.Zero(t, q.Push("a", "b"))
	assert.Zero(t, q.Push("c"))
	assert.Equal(t, 3, q.Len())

	item, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, "a", item)
	assert.Equal(t, []string{"b", "c"}, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_BoundedDropsOldest(t *testing.T) {
	q := New[int](3)

	assert.Zero(t, q.Push(1, 2, 3))
	assert.Equal(t, 2, q.Push(4, 5))
	assert.Equal(t, []int{3, 4, 5}, q.Drain())
}

func TestQueue_PushFront(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		queued  []int
		back    []int
		want    []int
		dropped int
	}{
		{name: "empty", limit: 0, back: []int{1, 2}, want: []int{1, 2}},
		{name: "ahead of newer items", limit: 0, queued: []int{3}, back: []int{1, 2}, want: []int{1, 2, 3}},
		{name: "over limit", limit: 2, queued: []int{3}, back: []int{1, 2}, want: []int{2, 3}, dropped: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[int](tt.limit)
			q.Push(tt.queued...)
			assert.Equal(t, tt.dropped, q.PushFront(tt.back...))
			assert.Equal(t, tt.want, q.Drain())
		})
	}
}

func TestQueue_NegativeLimit(t *testing.T) {
	q := New[int](-1)
	assert.Zero(t, q.Push(1, 2, 3))
	assert.Equal(t, 3, q.Len())
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int](0)
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				q.Push(i*100 + j)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())
	assert.Len(t, q.Drain(), 1000)
}
