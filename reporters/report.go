package reporters

import (
	"time"

	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/states"
)

// RecentShown is how many of the latest messages a report carries.
const RecentShown = 3

type Report struct {
	Time   time.Time          `json:"time"`
	State  states.Snapshot    `json:"state"`
	Recent []messages.Message `json:"recent"`
}
