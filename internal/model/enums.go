package model

import "strings"

// Level is a proficiency band scoping a question set and its time limit.
type Level string

const (
	LevelA1   Level = "A1"
	LevelA2   Level = "A2"
	LevelB1   Level = "B1"
	LevelB2   Level = "B2"
	LevelC1   Level = "C1"
	LevelC2   Level = "C2"
	LevelEasy Level = "easy"
)

// Levels lists every level in display order.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2, LevelEasy}

func (l Level) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// ParseLevel accepts exactly the level names above.
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	return l, l.Valid()
}

type QuestionType string

const (
	TypeLogic        QuestionType = "logic"
	TypeReading      QuestionType = "reading"
	TypeMotivational QuestionType = "motivational"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeLogic, TypeReading, TypeMotivational:
		return true
	}
	return false
}

// Scored reports whether answers to this type count towards the percentage.
func (t QuestionType) Scored() bool {
	return t != TypeMotivational
}

// Language selects the text variant delivered to a test taker.
type Language string

const (
	LanguageRU Language = "ru"
	LanguageKG Language = "kg"
)

// ParseLanguage falls back to Russian for empty or unknown input.
func ParseLanguage(s string) Language {
	if Language(strings.ToLower(strings.TrimSpace(s))) == LanguageKG {
		return LanguageKG
	}
	return LanguageRU
}

// Tier is the coarse performance bucket derived from a percentage.
type Tier string

const (
	TierWeak   Tier = "weak"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// TierFor maps a percentage to its tier: up to 40 weak, up to 70 medium.
func TierFor(percentage int) Tier {
	switch {
	case percentage <= 40:
		return TierWeak
	case percentage <= 70:
		return TierMedium
	default:
		return TierHigh
	}
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
