package match

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// AlgorithmVersion tags every persisted record with the scorer revision
	// that produced it.
	AlgorithmVersion = "1.0"

	// Lifetime is how long a pending match stays actionable. Expiry is
	// advisory: a reaper marks records expired, this package never does.
	Lifetime = 7 * 24 * time.Hour
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusExpired:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

var (
	ErrNotParticipant = errors.New("user is not a participant of this match")
)

// AlgorithmData records how a match was produced, for later display and audit.
type AlgorithmData struct {
	Version      string   `json:"version"`
	MatchReasons []string `json:"match_reasons"`
}

// Record is one unordered user pair's matching outcome. User1ID/User2ID are
// always stored in canonical order (User1ID < User2ID lexicographically), so
// at most one record can exist per pair regardless of who discovered whom.
type Record struct {
	ID                  uuid.UUID
	User1ID             uuid.UUID
	User2ID             uuid.UUID
	SkillOfferedSummary string
	SkillWantedSummary  string
	CompatibilityScore  float64
	Status              Status
	User1Interest       bool
	User2Interest       bool
	AlgorithmData       AlgorithmData
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

// CanonicalPair orders two user ids into the stored (user1, user2) form.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) <= 0 {
		return a, b
	}
	return b, a
}

// Involves reports whether userID is one of the two participants.
func (r Record) Involves(userID uuid.UUID) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// OtherUser returns the participant opposite to userID.
func (r Record) OtherUser(userID uuid.UUID) (uuid.UUID, error) {
	switch userID {
	case r.User1ID:
		return r.User2ID, nil
	case r.User2ID:
		return r.User1ID, nil
	default:
		return uuid.Nil, ErrNotParticipant
	}
}

// ApplyInterest records one side's decision and advances the status machine.
// A decline is terminal and unconditional from pending; mutual interest moves
// pending to accepted; decisions on an already decided match keep its status.
func (r *Record) ApplyInterest(userID uuid.UUID, interested bool) error {
	switch userID {
	case r.User1ID:
		r.User1Interest = interested
	case r.User2ID:
		r.User2Interest = interested
	default:
		return ErrNotParticipant
	}

	if r.Status != StatusPending {
		return nil
	}

	if !interested {
		r.Status = StatusDeclined
		return nil
	}
	if r.User1Interest && r.User2Interest {
		r.Status = StatusAccepted
	}
	return nil
}
