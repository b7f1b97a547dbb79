package model

import "time"

// PointType enumerates the four parliamentary points
type PointType string

const (
	PointPersonalPrivilege PointType = "personalPrivilege"
	PointInformation       PointType = "information"
	PointOrder             PointType = "order"
	PointResponse          PointType = "response"
)

// ValidPointType reports whether t is a known point type
func ValidPointType(t PointType) bool {
	switch t {
	case PointPersonalPrivilege, PointInformation, PointOrder, PointResponse:
		return true
	}
	return false
}

// Point is a lightweight parliamentary request, deleted on resolution.
// At most one open point per country per type.
type Point struct {
	ID          string    `json:"id" bson:"_id"`
	CommitteeID string    `json:"committeeId" bson:"committeeId"`
	CountryID   string    `json:"countryId" bson:"countryId"`
	Type        PointType `json:"type" bson:"type"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	Country     *Country  `json:"country,omitempty" bson:"-"`
}
