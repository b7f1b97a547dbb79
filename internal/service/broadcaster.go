package service

import "podium/internal/model"

// Broadcaster is the push side of the subscription interface (avoids an
// import cycle with transport/ws). Emits are fire-and-forget: there is
// no buffering or redelivery, and a failed mutation never reaches it.
type Broadcaster interface {
	// Broadcast emits an event on one of a committee's channels
	Broadcast(committeeID, channel string, event model.UpdateEvent)
	// BroadcastDocument emits on a single document's channel
	BroadcastDocument(documentID string, event model.UpdateEvent)
	// DisconnectCommittee tears down every subscriber of the committee
	DisconnectCommittee(committeeID string)
}
