package progress

import "edu_progress/internal/domain/profile"

// Summary is the derived view of one LanguageProgress record.
type Summary struct {
	Key                 string                     `json:"key"`
	Difficulty          profile.Difficulty         `json:"difficulty"`
	TutorialPercent     int                        `json:"tutorialPercent"`
	GamePercent         int                        `json:"gamePercent"`
	SandboxPercent      map[profile.Difficulty]int `json:"sandboxPercent"`
	GlobalCompleted     []profile.Difficulty       `json:"globalCompleted"`
	CertificateEligible bool                       `json:"certificateEligible"`
	NextDifficulty      *profile.Difficulty        `json:"nextDifficulty"`
}

func Summarize(key string, lp *profile.LanguageProgress) Summary {
	s := Summary{
		Key:             key,
		Difficulty:      lp.Difficulty,
		TutorialPercent: Percentage(len(lp.TutorialProgress.CompletedSections), lp.TutorialProgress.TotalSections),
		GamePercent:     Percentage(len(lp.GameProgress.CompletedLevels), lp.GameProgress.TotalLevels),
		SandboxPercent:  make(map[profile.Difficulty]int, len(lp.SandboxProgress)),
		GlobalCompleted: GlobalCompletedDifficulties(lp.CompletedDifficulties),
	}
	for d, sp := range lp.SandboxProgress {
		if sp == nil {
			continue
		}
		s.SandboxPercent[d] = Percentage(len(sp.CompletedExercises), sp.TotalExercises)
	}
	s.CertificateEligible = len(s.GlobalCompleted) == len(profile.Difficulties)
	if next, ok := NextDifficulty(s.GlobalCompleted); ok {
		s.NextDifficulty = &next
	}
	return s
}
