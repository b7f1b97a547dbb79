package model

// Update kinds carried on every channel. Full replaces the subscriber's
// view wholesale; partial is shallow-merged (present keys overwrite,
// absent keys are untouched); new/update/delete carry one record.
const (
	EventFull    = "full"
	EventPartial = "partial"
	EventNew     = "new"
	EventUpdate  = "update"
	EventDelete  = "delete"
)

// Per-committee channels. Each is an independently scoped topic; a
// subscriber joins the channels it renders.
const (
	ChannelCommittee = "committee"
	ChannelCountries = "countries"
	ChannelSpeeches  = "speeches"
	ChannelMotions   = "motions"
	ChannelDocuments = "documents"
	ChannelPoints    = "points"
)

// UpdateEvent is the wire envelope for every broadcast
type UpdateEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Partial is a partial-update payload: exactly the changed fields.
// Collections inside it are always fresh whole snapshots, replaced (not
// diffed) by the client.
type Partial map[string]any
