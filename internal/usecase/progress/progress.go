package progress

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edu_progress/internal/domain/profile"
	"edu_progress/internal/domain/progress"
	errs "edu_progress/internal/errors"
)

// MaxCodeAttempts bounds user code generation on collisions.
const MaxCodeAttempts = 10

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type ProfileStore interface {
	Get(ctx context.Context, code string) (profile.UserProfile, bool, error)
	Exists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, p profile.UserProfile) error
	AtomicUpdate(ctx context.Context, code string, mutate func(*profile.UserProfile) error) (found bool, err error)
}

// Store implements the per-user progress operations on top of ProfileStore.
// Updates against a missing profile or progress key are silent no-ops unless
// strict mode is on; every such miss is logged and counted.
type Store struct {
	profiles ProfileStore
	log      *zap.SugaredLogger
	now      func() time.Time
	newCode  func() string
	strict   bool
	missed   atomic.Int64
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCodeGenerator replaces the random user code source.
func WithCodeGenerator(gen func() string) Option {
	return func(s *Store) { s.newCode = gen }
}

// WithStrictMode makes updates of missing records fail with
// ErrProfileNotFound or ErrProgressNotInitialized.
func WithStrictMode(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func NewStore(profiles ProfileStore, log *zap.SugaredLogger, opts ...Option) *Store {
	s := &Store{
		profiles: profiles,
		log:      log,
		now:      time.Now,
		newCode:  GenerateUserCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateUserCode derives an AAAA-BBBB code from a random uuid.
func GenerateUserCode() string {
	id := uuid.New()
	sum := sha256.Sum256(id[:])
	n := binary.BigEndian.Uint64(sum[:8])

	var sb strings.Builder
	sb.Grow(9)
	for i := 0; i < 8; i++ {
		if i == 4 {
			sb.WriteByte('-')
		}
		sb.WriteByte(codeAlphabet[n%uint64(len(codeAlphabet))])
		n /= uint64(len(codeAlphabet))
	}
	return sb.String()
}

// MissedWrites counts updates that targeted a missing profile or progress key.
func (s *Store) MissedWrites() int64 {
	return s.missed.Load()
}

func (s *Store) CreateUserProfile(ctx context.Context, name string, age int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || age < 0 {
		return "", fmt.Errorf("%w: name must be set and age non-negative", errs.ErrInvalidArgument)
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code := s.newCode()
		exists, err := s.profiles.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check user code: %w", err)
		}
		if exists {
			s.log.Warnf("user code collision on attempt %d", attempt)
			continue
		}

		err = s.profiles.Insert(ctx, profile.NewUserProfile(code, name, age, s.now()))
		if errors.Is(err, errs.ErrDuplicateCode) {
			s.log.Warnf("user code collision on insert, attempt %d", attempt)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create profile: %w", err)
		}
		s.log.Infof("profile created: %s", code)
		return code, nil
	}
	return "", errs.ErrCodeAllocation
}

// GetUserProfile returns nil without error when the profile does not exist.
func (s *Store) GetUserProfile(ctx context.Context, code string) (*profile.UserProfile, error) {
	p, found, err := s.profiles.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) AddUserXP(ctx context.Context, code string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: xp amount %d", errs.ErrInvalidArgument, amount)
	}
	return s.updateProfile(ctx, "AddUserXP", code, func(p *profile.UserProfile) error {
		if amount > math.MaxInt-p.TotalXP {
			return fmt.Errorf("%w: xp total %d cannot grow by %d", errs.ErrInvalidArgument, p.TotalXP, amount)
		}
		p.TotalXP += amount
		p.Level = progress.Level(p.TotalXP)
		p.GlassProgress = progress.GlassAfterXP(p.GlassProgress, amount)
		p.LastActive = s.now()
		return nil
	})
}

func (s *Store) UnlockAchievement(ctx context.Context, code, achievementID string) error {
	if achievementID == "" {
		return fmt.Errorf("%w: empty achievement id", errs.ErrInvalidArgument)
	}
	return s.updateProfile(ctx, "UnlockAchievement", code, func(p *profile.UserProfile) error {
		if p.HasAchievement(achievementID) {
			return errs.ErrNoChange
		}
		p.Achievements = append(p.Achievements, achievementID)
		p.LastActive = s.now()
		return nil
	})
}

// SyncLevelAchievements unlocks the level milestones the profile has reached.
func (s *Store) SyncLevelAchievements(ctx context.Context, code string) error {
	return s.updateProfile(ctx, "SyncLevelAchievements", code, func(p *profile.UserProfile) error {
		changed := false
		for _, id := range progress.LevelAchievements(progress.Level(p.TotalXP)) {
			if !p.HasAchievement(id) {
				p.Achievements = append(p.Achievements, id)
				changed = true
			}
		}
		if !changed {
			return errs.ErrNoChange
		}
		return nil
	})
}

func (s *Store) EmptyGlass(ctx context.Context, code string) error {
	return s.setGlass(ctx, "EmptyGlass", code, 0)
}

func (s *Store) FillGlass(ctx context.Context, code string) error {
	return s.setGlass(ctx, "FillGlass", code, progress.MaxPercent)
}

func (s *Store) setGlass(ctx context.Context, op, code string, value float64) error {
	return s.updateProfile(ctx, op, code, func(p *profile.UserProfile) error {
		p.GlassProgress = value
		p.LastActive = s.now()
		return nil
	})
}

func (s *Store) SetDrinkPreference(ctx context.Context, code, drink string) error {
	return s.updateProfile(ctx, "SetDrinkPreference", code, func(p *profile.UserProfile) error {
		p.DrinkPreference = drink
		return nil
	})
}

func (s *Store) SetLearningGoal(ctx context.Context, code, goal string) error {
	return s.updateProfile(ctx, "SetLearningGoal", code, func(p *profile.UserProfile) error {
		p.LearningGoal = goal
		return nil
	})
}

func (s *Store) UpdateTreeProgress(ctx context.Context, code string, value float64) error {
	return s.updateProfile(ctx, "UpdateTreeProgress", code, func(p *profile.UserProfile) error {
		p.TreeProgress = progress.ClampPercent(value)
		return nil
	})
}

// Preferences carries the optional profile settings. Nil fields are left as
// they are.
type Preferences struct {
	DrinkPreference *string
	LearningGoal    *string
	TreeProgress    *float64
}

// UpdatePreferences writes all given settings in a single update.
func (s *Store) UpdatePreferences(ctx context.Context, code string, prefs Preferences) error {
	if prefs.DrinkPreference == nil && prefs.LearningGoal == nil && prefs.TreeProgress == nil {
		return nil
	}
	return s.updateProfile(ctx, "UpdatePreferences", code, func(p *profile.UserProfile) error {
		if prefs.DrinkPreference != nil {
			p.DrinkPreference = *prefs.DrinkPreference
		}
		if prefs.LearningGoal != nil {
			p.LearningGoal = *prefs.LearningGoal
		}
		if prefs.TreeProgress != nil {
			p.TreeProgress = progress.ClampPercent(*prefs.TreeProgress)
		}
		return nil
	})
}

// RecordActivity grants the daily streak increment and touches lastActive.
func (s *Store) RecordActivity(ctx context.Context, code string) error {
	return s.updateProfile(ctx, "RecordActivity", code, func(p *profile.UserProfile) error {
		now := s.now()
		p.Streak = progress.NextStreak(p.Streak, p.StreakUpdatedAt, now)
		p.StreakUpdatedAt = now
		p.LastActive = now
		return nil
	})
}

func (s *Store) updateProfile(ctx context.Context, op, code string, mutate func(*profile.UserProfile) error) error {
	found, err := s.profiles.AtomicUpdate(ctx, code, mutate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return s.missing(op, code, "", errs.ErrProfileNotFound)
	}
	return nil
}

func (s *Store) missing(op, code, key string, strictErr error) error {
	s.missed.Add(1)
	s.log.Warnw("update skipped, record missing", "op", op, "code", code, "key", key, "strict", s.strict)
	if s.strict {
		return fmt.Errorf("%s: %w", op, strictErr)
	}
	return nil
}
