package model

import "time"

// DocumentType classifies a committee artifact
type DocumentType string

const (
	DocPositionPaper   DocumentType = "positionPaper"
	DocDraftResolution DocumentType = "draftResolution"
	DocAmendment       DocumentType = "amendment"
)

// ValidDocumentType reports whether t is a known type
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocPositionPaper, DocDraftResolution, DocAmendment:
		return true
	}
	return false
}

// DocumentState is the review lifecycle: sent until the chair approves
// or rejects; an approved document may later be introduced into formal
// debate.
type DocumentState string

const (
	DocSent       DocumentState = "sent"
	DocApproved   DocumentState = "approved"
	DocRejected   DocumentState = "rejected"
	DocIntroduced DocumentState = "introduced"
)

// ValidDocumentState reports whether s is a known state
func ValidDocumentState(s DocumentState) bool {
	switch s {
	case DocSent, DocApproved, DocRejected, DocIntroduced:
		return true
	}
	return false
}

// Document is a committee-scoped artifact owned by a country
type Document struct {
	ID          string        `json:"id" bson:"_id"`
	CommitteeID string        `json:"committeeId" bson:"committeeId"`
	CountryID   string        `json:"countryId" bson:"countryId"`
	Type        DocumentType  `json:"type" bson:"type"`
	State       DocumentState `json:"state" bson:"state"`
	Title       string        `json:"title" bson:"title"`
	URL         string        `json:"url" bson:"url"`
	Comments    string        `json:"comments" bson:"comments"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
	Owner       *Country      `json:"owner,omitempty" bson:"-"`
}
