package ws

import (
	"encoding/json"
	"log"
	"sync"

	"podium/internal/model"
)

// Hub fans committee events out to WebSocket subscribers. Topics are
// explicit: a connection joins all of its committee's channels on
// register and may additionally follow individual documents. Nothing
// is buffered for absent subscribers; clients refetch a snapshot when
// they (re)connect.
type Hub struct {
	// topic key -> subscribed connections
	topics map[string]map[*Connection]bool
	// committee id -> its connections, for bulk disconnect
	committees map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *topicMessage
	disconnect chan string
}

// Connection represents one WebSocket subscriber
type Connection struct {
	CommitteeID string
	Send        chan []byte
	Hub         *Hub

	// document topics this connection follows, mutated only by run()
	documents map[string]bool
}

type topicMessage struct {
	topic string
	data  []byte
}

// Message is the wire envelope: the channel the event belongs to plus
// the event itself.
type Message struct {
	Channel    string            `json:"channel"`
	DocumentID string            `json:"documentId,omitempty"`
	Event      model.UpdateEvent `json:"event"`
}

func committeeTopic(committeeID, channel string) string {
	return committeeID + ":" + channel
}

func documentTopic(documentID string) string {
	return "document:" + documentID
}

var committeeChannels = []string{
	model.ChannelCommittee,
	model.ChannelCountries,
	model.ChannelSpeeches,
	model.ChannelMotions,
	model.ChannelDocuments,
	model.ChannelPoints,
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		topics:     make(map[string]map[*Connection]bool),
		committees: make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *topicMessage, 256),
		disconnect: make(chan string),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			for _, channel := range committeeChannels {
				h.addToTopic(committeeTopic(conn.CommitteeID, channel), conn)
			}
			if h.committees[conn.CommitteeID] == nil {
				h.committees[conn.CommitteeID] = make(map[*Connection]bool)
			}
			h.committees[conn.CommitteeID][conn] = true
			h.mu.Unlock()
			log.Printf("Client connected to committee %s", conn.CommitteeID)

		case conn := <-h.unregister:
			h.mu.Lock()
			h.drop(conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.topics[msg.topic] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case committeeID := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.committees[committeeID] {
				h.drop(conn)
			}
			h.mu.Unlock()
			log.Printf("Disconnected all clients of committee %s", committeeID)
		}
	}
}

// addToTopic and drop are called with h.mu held.
func (h *Hub) addToTopic(topic string, conn *Connection) {
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Connection]bool)
	}
	h.topics[topic][conn] = true
}

func (h *Hub) removeFromTopic(topic string, conn *Connection) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

func (h *Hub) drop(conn *Connection) {
	if conns, ok := h.committees[conn.CommitteeID]; ok && conns[conn] {
		for _, channel := range committeeChannels {
			h.removeFromTopic(committeeTopic(conn.CommitteeID, channel), conn)
		}
		for documentID := range conn.documents {
			h.removeFromTopic(documentTopic(documentID), conn)
		}
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.committees, conn.CommitteeID)
		}
		close(conn.Send)
		log.Printf("Client disconnected from committee %s", conn.CommitteeID)
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// FollowDocument subscribes a connection to one document's updates
func (h *Hub) FollowDocument(conn *Connection, documentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.documents[documentID] = true
	h.addToTopic(documentTopic(documentID), conn)
}

// UnfollowDocument drops a connection's document subscription
func (h *Hub) UnfollowDocument(conn *Connection, documentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(conn.documents, documentID)
	h.removeFromTopic(documentTopic(documentID), conn)
}

// Broadcast sends an event to a committee channel's subscribers
// (implements service.Broadcaster)
func (h *Hub) Broadcast(committeeID, channel string, event model.UpdateEvent) {
	data, err := json.Marshal(&Message{Channel: channel, Event: event})
	if err != nil {
		log.Printf("Failed to marshal event for committee %s: %v", committeeID, err)
		return
	}
	h.broadcast <- &topicMessage{topic: committeeTopic(committeeID, channel), data: data}
}

// BroadcastDocument sends an event to one document's followers
// (implements service.Broadcaster)
func (h *Hub) BroadcastDocument(documentID string, event model.UpdateEvent) {
	data, err := json.Marshal(&Message{Channel: model.ChannelDocuments, DocumentID: documentID, Event: event})
	if err != nil {
		log.Printf("Failed to marshal event for document %s: %v", documentID, err)
		return
	}
	h.broadcast <- &topicMessage{topic: documentTopic(documentID), data: data}
}

// DisconnectCommittee closes every connection of a committee
// (implements service.Broadcaster)
func (h *Hub) DisconnectCommittee(committeeID string) {
	h.disconnect <- committeeID
}
