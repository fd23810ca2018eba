package skill

import (
	"strings"

	"github.com/google/uuid"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

// Ordinal maps a level to its 1-4 rank. Unknown levels rank 0.
func (l Level) Ordinal() int {
	switch l {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	case LevelExpert:
		return 4
	default:
		return 0
	}
}

func (l Level) IsValid() bool {
	return l.Ordinal() > 0
}

func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	return l, l.IsValid()
}

type UserSkillLevel struct {
	UserID    uuid.UUID
	SkillName string
	Level     Level
}
