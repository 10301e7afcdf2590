package progress

import (
	"math"
	"sort"
	"strconv"
	"time"

	"edu_progress/internal/domain/profile"
)

const (
	// XPPerLevel is the flat XP step between levels.
	XPPerLevel = 1000

	// GlassXPDivisor converts awarded XP into glass fill points.
	GlassXPDivisor = 10.0

	MaxPercent = 100.0
)

// Level returns floor(totalXP/1000)+1. Negative XP is treated as zero.
func Level(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return totalXP/XPPerLevel + 1
}

// XPToNextLevel returns how much XP is missing to reach the next level.
func XPToNextLevel(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return Level(totalXP)*XPPerLevel - totalXP
}

// Percentage returns round(completed/total*100); a zero total yields 0.
func Percentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func ClampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > MaxPercent:
		return MaxPercent
	default:
		return v
	}
}

// GlassAfterXP fills the glass by amount/10, capped at 100.
func GlassAfterXP(glass float64, amount int) float64 {
	return ClampPercent(glass + float64(amount)/GlassXPDivisor)
}

// NormalizeCompleted deduplicates, sorts and drops indices outside [0,total).
func NormalizeCompleted(indices []int, total int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= total {
			continue
		}
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// AllCompleted reports completed.size == total for a positive total.
func AllCompleted(completed []int, total int) bool {
	return total > 0 && len(NormalizeCompleted(completed, total)) == total
}

func TutorialCompleted(t profile.TutorialProgress) bool {
	return AllCompleted(t.CompletedSections, t.TotalSections)
}

func containsDifficulty(ds []profile.Difficulty, d profile.Difficulty) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

// AddDifficulty returns ds with d added once, kept in ladder order.
func AddDifficulty(ds []profile.Difficulty, d profile.Difficulty) []profile.Difficulty {
	if containsDifficulty(ds, d) {
		return ds
	}
	out := make([]profile.Difficulty, 0, len(ds)+1)
	for _, x := range profile.Difficulties {
		if x == d || containsDifficulty(ds, x) {
			out = append(out, x)
		}
	}
	return out
}

// GlobalCompletedDifficulties intersects the completed sets of every
// activity type. Missing activity types count as having nothing completed.
func GlobalCompletedDifficulties(byType map[profile.ActivityType][]profile.Difficulty) []profile.Difficulty {
	out := []profile.Difficulty{}
	for _, d := range profile.Difficulties {
		everywhere := true
		for _, a := range profile.ActivityTypes {
			if !containsDifficulty(byType[a], d) {
				everywhere = false
				break
			}
		}
		if everywhere {
			out = append(out, d)
		}
	}
	return out
}

// CertificateEligible is true once easy, medium and hard are complete in
// tutorial, game and sandbox alike.
func CertificateEligible(byType map[profile.ActivityType][]profile.Difficulty) bool {
	return len(GlobalCompletedDifficulties(byType)) == len(profile.Difficulties)
}

// NextDifficulty returns the first ladder step not in completed; ok is false
// when all three are done.
func NextDifficulty(completed []profile.Difficulty) (profile.Difficulty, bool) {
	for _, d := range profile.Difficulties {
		if !containsDifficulty(completed, d) {
			return d, true
		}
	}
	return "", false
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak grants at most one increment per UTC calendar day. Activity on
// the day after lastActivity extends the streak and a longer gap restarts it
// at 1. A zero lastActivity or streak means no prior activity.
func NextStreak(streak int, lastActivity, now time.Time) int {
	if streak <= 0 || lastActivity.IsZero() {
		return 1
	}
	days := int(utcDay(now).Sub(utcDay(lastActivity)).Hours() / 24)
	switch {
	case days <= 0:
		return streak
	case days == 1:
		return streak + 1
	default:
		return 1
	}
}

var levelMilestones = []int{2, 5, 10, 20}

// LevelAchievements lists milestone achievement ids earned at level.
func LevelAchievements(level int) []string {
	var ids []string
	for _, m := range levelMilestones {
		if level >= m {
			ids = append(ids, LevelAchievementID(m))
		}
	}
	return ids
}

func LevelAchievementID(level int) string {
	return "level_" + strconv.Itoa(level)
}

func CertificateAchievementID(key string) string {
	return "certificate_" + key
}
