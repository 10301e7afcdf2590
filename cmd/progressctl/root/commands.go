package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"edu_progress/internal/domain/profile"
	"edu_progress/internal/domain/progress"
	errs "edu_progress/internal/errors"
	progressUC "edu_progress/internal/usecase/progress"
)

type storeRunner func(run func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error) func(*cobra.Command, []string) error

func newCreateCmd(withStore storeRunner) *cobra.Command {
	var age int

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile and print its user code",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error {
			code, err := store.CreateUserProfile(ctx, args[0], age)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), labelValue("Code", good.Render(code)))
			return nil
		}),
	}
	cmd.Flags().IntVar(&age, "age", 0, "learner age")
	return cmd
}

func newShowCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show level, XP and progress of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error {
			p, err := loadProfile(ctx, store, args[0])
			if err != nil {
				return err
			}
			renderProfile(cmd.OutOrStdout(), p)
			return nil
		}),
	}
}

func newXPCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "xp <code> <amount>",
		Short: "Grant experience points",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error {
			code := normalizeCode(args[0])
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			if err := store.AddUserXP(ctx, code, amount); err != nil {
				return err
			}
			if err := store.SyncLevelAchievements(ctx, code); err != nil {
				return err
			}
			p, err := loadProfile(ctx, store, code)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), labelValue("Level", p.Level)+"  "+labelValue("Total XP", p.TotalXP))
			return nil
		}),
	}
}

func newUnlockCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <code> <achievement>",
		Short: "Unlock an achievement",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error {
			if err := store.UnlockAchievement(ctx, normalizeCode(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), good.Render("unlocked "+args[1]))
			return nil
		}),
	}
}

func newProgressCmd(withStore storeRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <code> <key>",
		Short: "Show the progress summary of one module/language",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error {
			summary, err := store.Summary(ctx, normalizeCode(args[0]), args[1])
			if err != nil {
				return err
			}
			if summary == nil {
				return fmt.Errorf("%s: %w", args[1], errs.ErrProgressNotInitialized)
			}
			renderSummary(cmd.OutOrStdout(), *summary)
			return nil
		}),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func loadProfile(ctx context.Context, store *progressUC.Store, code string) (*profile.UserProfile, error) {
	p, err := store.GetUserProfile(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.Join(errs.ErrProfileNotFound, fmt.Errorf("no profile with code %s", normalizeCode(code)))
	}
	return p, nil
}

func renderProfile(w io.Writer, p *profile.UserProfile) {
	fmt.Fprintln(w, title.Render(p.Name+" ("+p.Code+")"))
	fmt.Fprintln(w, labelValue("Level", p.Level))
	fmt.Fprintln(w, labelValue("Total XP", fmt.Sprintf("%d (%d to next level)", p.TotalXP, progress.XPToNextLevel(p.TotalXP))))
	fmt.Fprintln(w, labelValue("Streak", p.Streak))
	fmt.Fprintln(w, labelValue("Glass", bar(int(p.GlassProgress))))

	if len(p.Achievements) > 0 {
		fmt.Fprintln(w, h2.Render("Achievements"))
		for _, a := range p.Achievements {
			fmt.Fprintln(w, "- "+a)
		}
	}

	keys := make([]string, 0, len(p.LanguageProgress))
	for k := range p.LanguageProgress {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if lp := p.LanguageProgress[k]; lp != nil {
			renderSummary(w, progress.Summarize(k, lp))
		}
	}
}

func renderSummary(w io.Writer, s progress.Summary) {
	fmt.Fprintln(w, h2.Render(s.Key)+" "+muted.Render("("+string(s.Difficulty)+")"))
	fmt.Fprintln(w, labelValue("  Tutorial", bar(s.TutorialPercent)))
	fmt.Fprintln(w, labelValue("  Game", bar(s.GamePercent)))
	for _, d := range profile.Difficulties {
		if pct, ok := s.SandboxPercent[d]; ok {
			fmt.Fprintln(w, labelValue("  Sandbox "+string(d), bar(pct)))
		}
	}
	if s.CertificateEligible {
		fmt.Fprintln(w, good.Render("  certificate earned"))
	} else if s.NextDifficulty != nil {
		fmt.Fprintln(w, muted.Render("  next: "+string(*s.NextDifficulty)))
	}
}
