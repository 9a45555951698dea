package messages

// Reply describes how a received line was handled. Replies are logged, never
// sent back to the peer.
type Reply interface {
	isReply()
}

type Ack struct{}

type Reject struct {
	Reason string
}

func (Ack) isReply()    {}
func (Reject) isReply() {}

func (Ack) String() string {
	return "ack"
}

func (r Reject) String() string {
	return "reject: " + r.Reason
}
