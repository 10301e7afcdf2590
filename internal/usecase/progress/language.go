package progress

import (
	"context"
	"errors"
	"fmt"

	"edu_progress/internal/domain/profile"
	"edu_progress/internal/domain/progress"
	errs "edu_progress/internal/errors"
)

var errKeyMissing = errors.New("language progress key missing")

func (s *Store) InitializeLanguageProgress(ctx context.Context, code, key string, difficulty profile.Difficulty, tutorialSections, gameLevels int) error {
	if err := validateInit(key, difficulty, tutorialSections, gameLevels); err != nil {
		return err
	}
	return s.updateProfile(ctx, "InitializeLanguageProgress", code, func(p *profile.UserProfile) error {
		if p.LanguageProgress == nil {
			p.LanguageProgress = map[string]*profile.LanguageProgress{}
		}
		p.LanguageProgress[key] = profile.NewLanguageProgress(difficulty, tutorialSections, gameLevels, s.now())
		return nil
	})
}

// EnsureLanguageProgress initializes key only if it has no record yet.
func (s *Store) EnsureLanguageProgress(ctx context.Context, code, key string, difficulty profile.Difficulty, tutorialSections, gameLevels int) error {
	if err := validateInit(key, difficulty, tutorialSections, gameLevels); err != nil {
		return err
	}
	return s.updateProfile(ctx, "EnsureLanguageProgress", code, func(p *profile.UserProfile) error {
		if _, ok := p.LanguageProgress[key]; ok {
			return errs.ErrNoChange
		}
		if p.LanguageProgress == nil {
			p.LanguageProgress = map[string]*profile.LanguageProgress{}
		}
		p.LanguageProgress[key] = profile.NewLanguageProgress(difficulty, tutorialSections, gameLevels, s.now())
		return nil
	})
}

func validateInit(key string, difficulty profile.Difficulty, tutorialSections, gameLevels int) error {
	if key == "" {
		return fmt.Errorf("%w: empty progress key", errs.ErrInvalidArgument)
	}
	if err := validateDifficulty(difficulty); err != nil {
		return err
	}
	if tutorialSections < 0 || gameLevels < 0 {
		return fmt.Errorf("%w: negative totals", errs.ErrInvalidArgument)
	}
	return nil
}

func validateDifficulty(d profile.Difficulty) error {
	if _, err := profile.ParseDifficulty(string(d)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	return nil
}

// GetLanguageProgress returns nil when the profile or key does not exist.
func (s *Store) GetLanguageProgress(ctx context.Context, code, key string) (*profile.LanguageProgress, error) {
	p, err := s.GetUserProfile(ctx, code)
	if err != nil || p == nil {
		return nil, err
	}
	return p.LanguageProgress[key], nil
}

// UpdateTutorialProgress merges section progress into key. Completion is
// derived from the completed set; a tutorial finished at the current
// difficulty marks that difficulty done for tutorials.
func (s *Store) UpdateTutorialProgress(ctx context.Context, code, key string, currentSection int, completedSections []int, completed bool) error {
	return s.updateLanguage(ctx, "UpdateTutorialProgress", code, key, func(lp *profile.LanguageProgress) {
		t := &lp.TutorialProgress
		t.CurrentSection = max(currentSection, 0)
		t.CompletedSections = progress.NormalizeCompleted(mergeInts(t.CompletedSections, completedSections), t.TotalSections)
		t.Completed = progress.TutorialCompleted(*t)
		if completed && !t.Completed {
			s.log.Warnf("tutorial %s marked completed with %d/%d sections", key, len(t.CompletedSections), t.TotalSections)
		}
		if t.Completed {
			lp.CompletedDifficulties[profile.ActivityTutorial] = progress.AddDifficulty(lp.CompletedDifficulties[profile.ActivityTutorial], lp.Difficulty)
		}
	})
}

func (s *Store) UpdateGameProgress(ctx context.Context, code, key string, currentLevel int, completedLevels []int, completed bool) error {
	return s.updateLanguage(ctx, "UpdateGameProgress", code, key, func(lp *profile.LanguageProgress) {
		g := &lp.GameProgress
		g.CurrentLevel = max(currentLevel, 0)
		g.CompletedLevels = progress.NormalizeCompleted(mergeInts(g.CompletedLevels, completedLevels), g.TotalLevels)
		g.Completed = progress.AllCompleted(g.CompletedLevels, g.TotalLevels)
		if completed && !g.Completed {
			s.log.Warnf("game %s marked completed with %d/%d levels", key, len(g.CompletedLevels), g.TotalLevels)
		}
		if g.Completed {
			lp.CompletedDifficulties[profile.ActivityGame] = progress.AddDifficulty(lp.CompletedDifficulties[profile.ActivityGame], lp.Difficulty)
		}
	})
}

// UpdateSandboxProgress merges exercise progress into sandboxProgress[difficulty].
func (s *Store) UpdateSandboxProgress(ctx context.Context, code, key string, difficulty profile.Difficulty, currentExercise int, completedExercises []int, totalExercises int) error {
	if err := validateDifficulty(difficulty); err != nil {
		return err
	}
	if totalExercises < 0 {
		return fmt.Errorf("%w: negative exercise total", errs.ErrInvalidArgument)
	}
	return s.updateLanguage(ctx, "UpdateSandboxProgress", code, key, func(lp *profile.LanguageProgress) {
		sp, ok := lp.SandboxProgress[difficulty]
		if !ok || sp == nil {
			sp = &profile.SandboxProgress{CompletedExercises: []int{}}
			lp.SandboxProgress[difficulty] = sp
		}
		sp.TotalExercises = totalExercises
		sp.CurrentExercise = max(currentExercise, 0)
		sp.CompletedExercises = progress.NormalizeCompleted(mergeInts(sp.CompletedExercises, completedExercises), totalExercises)
		sp.Completed = progress.AllCompleted(sp.CompletedExercises, totalExercises)
		if sp.Completed {
			lp.CompletedDifficulties[profile.ActivitySandbox] = progress.AddDifficulty(lp.CompletedDifficulties[profile.ActivitySandbox], difficulty)
		}
	})
}

// MarkDifficultyCompleted records difficulty as done for one activity type,
// moves the working difficulty to the next open step and unlocks the
// certificate achievement once every step is done everywhere.
func (s *Store) MarkDifficultyCompleted(ctx context.Context, code, key string, activity profile.ActivityType, difficulty profile.Difficulty) error {
	if _, err := profile.ParseActivityType(string(activity)); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	if err := validateDifficulty(difficulty); err != nil {
		return err
	}
	return s.updateLanguage(ctx, "MarkDifficultyCompleted", code, key, func(lp *profile.LanguageProgress) {
		lp.CompletedDifficulties[activity] = progress.AddDifficulty(lp.CompletedDifficulties[activity], difficulty)
	})
}

func (s *Store) GlobalCompletedDifficulties(byType map[profile.ActivityType][]profile.Difficulty) []profile.Difficulty {
	return progress.GlobalCompletedDifficulties(byType)
}

func (s *Store) NextDifficulty(completed []profile.Difficulty) (profile.Difficulty, bool) {
	return progress.NextDifficulty(completed)
}

// Summary loads key and derives its percentages and certificate state.
func (s *Store) Summary(ctx context.Context, code, key string) (*progress.Summary, error) {
	lp, err := s.GetLanguageProgress(ctx, code, key)
	if err != nil || lp == nil {
		return nil, err
	}
	summary := progress.Summarize(key, lp)
	return &summary, nil
}

// updateLanguage applies mutate to an existing key, then advances the
// working difficulty and grants the certificate achievement when due.
func (s *Store) updateLanguage(ctx context.Context, op, code, key string, mutate func(*profile.LanguageProgress)) error {
	found, err := s.profiles.AtomicUpdate(ctx, code, func(p *profile.UserProfile) error {
		lp, ok := p.LanguageProgress[key]
		if !ok || lp == nil {
			return errKeyMissing
		}
		if lp.SandboxProgress == nil {
			lp.SandboxProgress = map[profile.Difficulty]*profile.SandboxProgress{}
		}
		if lp.CompletedDifficulties == nil {
			lp.CompletedDifficulties = map[profile.ActivityType][]profile.Difficulty{}
		}

		mutate(lp)

		global := progress.GlobalCompletedDifficulties(lp.CompletedDifficulties)
		if containsDifficulty(global, lp.Difficulty) {
			if next, ok := progress.NextDifficulty(global); ok {
				lp.Difficulty = next
			}
		}
		if progress.CertificateEligible(lp.CompletedDifficulties) {
			certificate := progress.CertificateAchievementID(key)
			if !p.HasAchievement(certificate) {
				p.Achievements = append(p.Achievements, certificate)
				s.log.Infof("certificate unlocked for %s: %s", code, key)
			}
		}
		now := s.now()
		lp.LastAccessed = now
		p.LastActive = now
		return nil
	})
	switch {
	case errors.Is(err, errKeyMissing):
		return s.missing(op, code, key, errs.ErrProgressNotInitialized)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	case !found:
		return s.missing(op, code, key, errs.ErrProfileNotFound)
	}
	return nil
}

func containsDifficulty(ds []profile.Difficulty, d profile.Difficulty) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

func mergeInts(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
