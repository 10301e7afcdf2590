package profile

import (
	"fmt"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties is the fixed ladder order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

type ActivityType string

const (
	ActivityTutorial ActivityType = "tutorial"
	ActivityGame     ActivityType = "game"
	ActivitySandbox  ActivityType = "sandbox"
)

var ActivityTypes = []ActivityType{ActivityTutorial, ActivityGame, ActivitySandbox}

func ParseActivityType(s string) (ActivityType, error) {
	switch a := ActivityType(s); a {
	case ActivityTutorial, ActivityGame, ActivitySandbox:
		return a, nil
	default:
		return "", fmt.Errorf("unknown activity type %q", s)
	}
}

// ProgressKey builds the "<moduleId>-<languageId>" activity key.
func ProgressKey(moduleID, languageID string) string {
	return moduleID + "-" + languageID
}

type UserProfile struct {
	Code             string                       `json:"code" bson:"_id"`
	Name             string                       `json:"name" bson:"name"`
	Age              int                          `json:"age" bson:"age"`
	Level            int                          `json:"level" bson:"level"`
	TotalXP          int                          `json:"totalXP" bson:"total_xp"`
	Streak           int                          `json:"streak" bson:"streak"`
	StreakUpdatedAt  time.Time                    `json:"streakUpdatedAt" bson:"streak_updated_at"`
	Achievements     []string                     `json:"achievements" bson:"achievements"`
	GlassProgress    float64                      `json:"glassProgress" bson:"glass_progress"`
	DrinkPreference  string                       `json:"drinkPreference,omitempty" bson:"drink_preference,omitempty"`
	LearningGoal     string                       `json:"learningGoal,omitempty" bson:"learning_goal,omitempty"`
	TreeProgress     float64                      `json:"treeProgress,omitempty" bson:"tree_progress,omitempty"`
	LanguageProgress map[string]*LanguageProgress `json:"languageProgress" bson:"language_progress"`
	CreatedAt        time.Time                    `json:"createdAt" bson:"created_at"`
	LastActive       time.Time                    `json:"lastActive" bson:"last_active"`
	Version          int64                        `json:"-" bson:"version"`
}

type LanguageProgress struct {
	Difficulty            Difficulty                      `json:"difficulty" bson:"difficulty"`
	TutorialProgress      TutorialProgress                `json:"tutorialProgress" bson:"tutorial_progress"`
	GameProgress          GameProgress                    `json:"gameProgress" bson:"game_progress"`
	SandboxProgress       map[Difficulty]*SandboxProgress `json:"sandboxProgress" bson:"sandbox_progress"`
	CompletedDifficulties map[ActivityType][]Difficulty   `json:"completedDifficulties" bson:"completed_difficulties"`
	LastAccessed          time.Time                       `json:"lastAccessed" bson:"last_accessed"`
}

type TutorialProgress struct {
	CurrentSection    int   `json:"currentSection" bson:"current_section"`
	CompletedSections []int `json:"completedSections" bson:"completed_sections"`
	TotalSections     int   `json:"totalSections" bson:"total_sections"`
	Completed         bool  `json:"completed" bson:"completed"`
}

type GameProgress struct {
	CurrentLevel    int   `json:"currentLevel" bson:"current_level"`
	CompletedLevels []int `json:"completedLevels" bson:"completed_levels"`
	TotalLevels     int   `json:"totalLevels" bson:"total_levels"`
	Completed       bool  `json:"completed" bson:"completed"`
}

type SandboxProgress struct {
	CurrentExercise    int   `json:"currentExercise" bson:"current_exercise"`
	CompletedExercises []int `json:"completedExercises" bson:"completed_exercises"`
	TotalExercises     int   `json:"totalExercises" bson:"total_exercises"`
	Completed          bool  `json:"completed" bson:"completed"`
}

func NewUserProfile(code, name string, age int, now time.Time) UserProfile {
	return UserProfile{
		Code:             code,
		Name:             name,
		Age:              age,
		Level:            1,
		Achievements:     []string{},
		LanguageProgress: map[string]*LanguageProgress{},
		CreatedAt:        now,
		LastActive:       now,
	}
}

func NewLanguageProgress(difficulty Difficulty, totalSections, totalLevels int, now time.Time) *LanguageProgress {
	lp := &LanguageProgress{
		Difficulty: difficulty,
		TutorialProgress: TutorialProgress{
			CompletedSections: []int{},
			TotalSections:     totalSections,
		},
		GameProgress: GameProgress{
			CompletedLevels: []int{},
			TotalLevels:     totalLevels,
		},
		SandboxProgress:       map[Difficulty]*SandboxProgress{},
		CompletedDifficulties: map[ActivityType][]Difficulty{},
		LastAccessed:          now,
	}
	for _, a := range ActivityTypes {
		lp.CompletedDifficulties[a] = []Difficulty{}
	}
	return lp
}

func (p *UserProfile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; stores hand clones to mutators so a failed
// update never leaks partial changes.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Achievements = append([]string{}, p.Achievements...)
	out.LanguageProgress = make(map[string]*LanguageProgress, len(p.LanguageProgress))
	for k, lp := range p.LanguageProgress {
		if lp == nil {
			continue
		}
		out.LanguageProgress[k] = lp.Clone()
	}
	return out
}

func (lp *LanguageProgress) Clone() *LanguageProgress {
	out := *lp
	out.TutorialProgress.CompletedSections = append([]int{}, lp.TutorialProgress.CompletedSections...)
	out.GameProgress.CompletedLevels = append([]int{}, lp.GameProgress.CompletedLevels...)
	out.SandboxProgress = make(map[Difficulty]*SandboxProgress, len(lp.SandboxProgress))
	for d, sp := range lp.SandboxProgress {
		if sp == nil {
			continue
		}
		c := *sp
		c.CompletedExercises = append([]int{}, sp.CompletedExercises...)
		out.SandboxProgress[d] = &c
	}
	out.CompletedDifficulties = make(map[ActivityType][]Difficulty, len(lp.CompletedDifficulties))
	for a, ds := range lp.CompletedDifficulties {
		out.CompletedDifficulties[a] = append([]Difficulty{}, ds...)
	}
	return &out
}
