package messages

import "context"

// Sink receives every accepted message. It runs on the connection's goroutine,
// so messages from one connection arrive in order.
type Sink func(ctx context.Context, msg Message) Reply

// Record keeps messages in recent and acknowledges them.
func Record(recent *Recent) Sink {
	return func(_ context.Context, msg Message) Reply {
		recent.Add(msg)
		return Ack{}
	}
}

// Chain runs sinks in order and returns the first non-Ack reply.
func Chain(sinks ...Sink) Sink {
	return func(ctx context.Context, msg Message) Reply {
		for _, sink := range sinks {
			if sink == nil {
				continue
			}
			reply := sink(ctx, msg)
			if _, ok := reply.(Ack); !ok && reply != nil {
				return reply
			}
		}
		return Ack{}
	}
}
