package game

import (
	"math"
	"testing"
)

// expectedAfterXP 按升级规则逐级模拟，结果用于断言
func expectedAfterXP(level int, xp, amount float64, maxLevel int) (int, float64, float64) {
	xp += amount
	next := XPForLevel(level)
	for xp >= next && level < maxLevel {
		xp -= next
		level++
		next = XPForLevel(level)
	}
	return level, xp, next
}

func TestXPForLevel(t *testing.T) {
	for level := 0; level < 10; level++ {
		want := math.Floor(100 * math.Pow(float64(level+1), 1.5))
		if got := XPForLevel(level); got != want {
			t.Fatalf("XPForLevel(%d)=%v, want %v", level, got, want)
		}
	}
	if XPForLevel(0) != 100 || XPForLevel(1) != 282 || XPForLevel(2) != 519 {
		t.Fatalf("unexpected curve head: %v %v %v", XPForLevel(0), XPForLevel(1), XPForLevel(2))
	}
}

func TestSkillAddXPFollowsCurve(t *testing.T) {
	s := NewSkill("woodcutting", "Woodcutting", 0, nil)
	if s.CurrentLevel != 0 || s.XP != 0 || s.XPToNextLevel != 100 {
		t.Fatalf("fresh skill=%+v", s)
	}

	wantLevel, wantXP, wantNext := expectedAfterXP(0, 0, 250, s.MaxLevel)
	leveled := s.AddXP(250)
	if !leveled {
		t.Fatalf("AddXP(250) should level up")
	}
	if s.CurrentLevel != wantLevel || s.XP != wantXP || s.XPToNextLevel != wantNext {
		t.Fatalf("level=%d xp=%v next=%v, want %d/%v/%v", s.CurrentLevel, s.XP, s.XPToNextLevel, wantLevel, wantXP, wantNext)
	}
	if s.XP >= s.XPToNextLevel {
		t.Fatalf("xp=%v should stay below threshold %v", s.XP, s.XPToNextLevel)
	}
}

func TestSkillAddXPMultipleLevelsInOneCall(t *testing.T) {
	s := NewSkill("mining", "Mining", 0, nil)
	amount := XPForLevel(0) + XPForLevel(1) + 10
	s.AddXP(amount)
	if s.CurrentLevel != 2 {
		t.Fatalf("level=%d, want 2", s.CurrentLevel)
	}
	if s.XP != 10 || s.XPToNextLevel != XPForLevel(2) {
		t.Fatalf("xp=%v next=%v, want 10/%v", s.XP, s.XPToNextLevel, XPForLevel(2))
	}
}

func TestSkillAddXPNoop(t *testing.T) {
	s := NewSkill("fishing", "Fishing", 2, nil)
	if s.AddXP(0) || s.AddXP(-5) || s.XP != 0 {
		t.Fatalf("non-positive xp should be a no-op")
	}

	s.AddXP(1_000_000)
	if s.CurrentLevel != 2 || s.XP != 0 {
		t.Fatalf("level=%d xp=%v, want capped at 2 with xp 0", s.CurrentLevel, s.XP)
	}
	if s.AddXP(10) {
		t.Fatalf("max level skill should not level")
	}
	if s.LevelProgress() != 100 {
		t.Fatalf("progress at max=%v, want 100", s.LevelProgress())
	}
}

func TestSkillBonuses(t *testing.T) {
	bonuses := []Bonus{
		{Level: 1, Type: "gain_rate", Target: "health", Value: 0.1},
		{Level: 3, Type: "action_speed", Target: "woodcutting", Value: 0.9},
		{Level: 5, Type: "action_reward", Target: "all_currencies", Value: 1.2},
	}
	s := NewSkill("woodcutting", "Woodcutting", 0, bonuses)
	s.CurrentLevel = 3

	if got := s.ActiveBonuses(); len(got) != 2 {
		t.Fatalf("active bonuses=%d, want 2", len(got))
	}
	if got := s.BonusesBetween(1, 3); len(got) != 1 || got[0].Level != 3 {
		t.Fatalf("between(1,3)=%+v, want only level 3", got)
	}
	if got := s.BonusesBetween(3, 3); len(got) != 0 {
		t.Fatalf("between(3,3)=%+v, want none", got)
	}
}

func TestSkillSerializeRoundTrip(t *testing.T) {
	s := NewSkill("cooking", "Cooking", 0, nil)
	s.AddXP(517.25)

	restored := NewSkill("cooking", "Cooking", 0, nil)
	restored.Deserialize(s.Serialize())
	if restored.CurrentLevel != s.CurrentLevel || restored.XP != s.XP || restored.XPToNextLevel != s.XPToNextLevel {
		t.Fatalf("restored=%+v, want %+v", restored.Serialize(), s.Serialize())
	}
	if restored.LevelProgress() != s.LevelProgress() {
		t.Fatalf("progress %v != %v", restored.LevelProgress(), s.LevelProgress())
	}

	// 旧存档缺少阈值
	legacy := NewSkill("cooking", "Cooking", 0, nil)
	legacy.Deserialize(SkillRecord{ID: "cooking", CurrentLevel: 2, XP: 3})
	if legacy.XPToNextLevel != XPForLevel(2) {
		t.Fatalf("missing threshold should be recomputed, got %v", legacy.XPToNextLevel)
	}
}
