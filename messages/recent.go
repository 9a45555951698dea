package messages

import (
	"sync"

	"github.com/reusee/bridges/configs"
)

// TextLimit bounds the text kept per recent message, in runes.
const TextLimit = 500

type RecentSize int

func (Module) RecentSize(
	loader configs.Loader,
) RecentSize {
	if n := configs.First[int](loader, "recent_size"); n > 0 {
		return RecentSize(n)
	}
	return 50
}

// Recent is a fixed-size ring of the latest messages across all peers.
type Recent struct {
	mu    sync.Mutex
	ring  []Message
	next  int
	count int
}

func NewRecent(size int) *Recent {
	if size <= 0 {
		size = 1
	}
	return &Recent{
		ring: make([]Message, size),
	}
}

func (Module) Recent(
	size RecentSize,
) *Recent {
	return NewRecent(int(size))
}

func (r *Recent) Add(msg Message) {
	msg.Text = truncate(msg.Text, TextLimit)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring[r.next] = msg
	r.next = (r.next + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
}

// Last returns up to n messages, oldest first.
func (r *Recent) Last(n int) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	n = min(n, r.count)
	if n <= 0 {
		return nil
	}
	ret := make([]Message, 0, n)
	start := r.next - n
	if start < 0 {
		start += len(r.ring)
	}
	for i := range n {
		ret = append(ret, r.ring[(start+i)%len(r.ring)])
	}
	return ret
}

func (r *Recent) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func truncate(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
