package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edu_progress/internal/adapters"
	"edu_progress/internal/bootstrap"
	"edu_progress/internal/repository"
	progressUC "edu_progress/internal/usecase/progress"
)

const Version = "0.1.0"

// StoreOpener builds the profile store the commands work on.
type StoreOpener func(ctx context.Context, envPath string) (*progressUC.Store, func(), error)

// NewRootCmd wires every subcommand to the store returned by open.
func NewRootCmd(open StoreOpener) *cobra.Command {
	var envPath string

	rootCmd := &cobra.Command{
		Use:           "progressctl",
		Short:         "Inspect and adjust learner profiles",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "path to the .env configuration file")

	withStore := func(run func(ctx context.Context, cmd *cobra.Command, store *progressUC.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			store, cleanup, err := open(ctx, envPath)
			if err != nil {
				return err
			}
			defer cleanup()
			return run(ctx, cmd, store, args)
		}
	}

	rootCmd.AddCommand(
		newCreateCmd(withStore),
		newShowCmd(withStore),
		newXPCmd(withStore),
		newUnlockCmd(withStore),
		newProgressCmd(withStore),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd(openMongoStore).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, bad.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func openMongoStore(ctx context.Context, envPath string) (*progressUC.Store, func(), error) {
	cfg, err := bootstrap.Load(envPath)
	if err != nil {
		return nil, nil, err
	}
	log := zap.NewNop().Sugar()
	if os.Getenv("PROGRESSCTL_DEBUG") != "" {
		if dev, err := zap.NewDevelopment(); err == nil {
			log = dev.Sugar()
		}
	}

	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = mongoAdapter.Close(context.Background())
		_ = log.Sync()
	}

	profiles := repository.NewMongoProfileStorage(mongoAdapter.Collection(), log)
	return progressUC.NewStore(profiles, log, progressUC.WithStrictMode(true)), cleanup, nil
}
