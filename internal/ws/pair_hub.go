package ws

import "time"

// PairHub pushes location and presence updates between the two halves of a
// pair. It is a delivery surface only; clients must still refetch state over
// HTTP, the push is advisory.
type PairHub struct {
	*Hub
}

func NewPairHub() *PairHub {
	return &PairHub{Hub: NewHub()}
}

// LocationUpdate is pushed to the partner when a user's position changes.
type LocationUpdate struct {
	Type      string  `json:"type"`
	UserID    uint    `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	UpdatedAt int64   `json:"updated_at"`
}

// PresenceUpdate is pushed to the partner when a heartbeat lands or the
// derived verdict flips.
type PresenceUpdate struct {
	Type       string `json:"type"`
	UserID     uint   `json:"user_id"`
	Online     bool   `json:"online"`
	StatusText string `json:"status_text"`
}

// PushLocation notifies partnerID that userID's position changed.
func (p *PairHub) PushLocation(partnerID, userID uint, lat, lng float64) {
	p.SendToUser(partnerID, LocationUpdate{
		Type:      "location",
		UserID:    userID,
		Latitude:  lat,
		Longitude: lng,
		UpdatedAt: time.Now().Unix(),
	})
}

// PushPresence notifies partnerID of userID's current verdict.
func (p *PairHub) PushPresence(partnerID, userID uint, online bool, statusText string) {
	p.SendToUser(partnerID, PresenceUpdate{
		Type:       "presence",
		UserID:     userID,
		Online:     online,
		StatusText: statusText,
	})
}
