package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MatchAcceptedEvent struct {
	Type      string    `json:"type"`
	MatchID   uuid.UUID `json:"match_id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Score     float64   `json:"score"`
	Timestamp string    `json:"timestamp"`
}

// NotifyMatchAccepted pushes a match_accepted event to both participants,
// each addressed with the other side as partner.
func (h *Hub) NotifyMatchAccepted(matchID, user1ID, user2ID uuid.UUID, score float64) {
	if h == nil {
		return
	}

	ts := time.Now().UTC().Format(time.RFC3339)
	pairs := []struct {
		to      uuid.UUID
		partner uuid.UUID
	}{
		{to: user1ID, partner: user2ID},
		{to: user2ID, partner: user1ID},
	}

	for _, p := range pairs {
		evt := MatchAcceptedEvent{
			Type:      "match_accepted",
			MatchID:   matchID,
			PartnerID: p.partner,
			Score:     score,
			Timestamp: ts,
		}
		b, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		h.SendToUser(p.to, b)
	}
}
