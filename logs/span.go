package logs

import "context"

type Span string

type spanKey struct{}

var SpanKey spanKey

type peerKey struct{}

var PeerKey peerKey

// WithPeer tags records logged with ctx by the peer name.
func WithPeer(ctx context.Context, peer string) context.Context {
	return context.WithValue(ctx, PeerKey, peer)
}
