package root

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	errs "edu_progress/internal/errors"
	"edu_progress/internal/repository"
	progressUC "edu_progress/internal/usecase/progress"
)

func memoryOpener(store *progressUC.Store) StoreOpener {
	return func(context.Context, string) (*progressUC.Store, func(), error) {
		return store, func() {}, nil
	}
}

func run(t *testing.T, store *progressUC.Store, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(memoryOpener(store))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateXPAndShow(t *testing.T) {
	t.Parallel()
	store := progressUC.NewStore(repository.NewMapProfileStorage(), zap.NewNop().Sugar(), progressUC.WithStrictMode(true))

	out, err := run(t, store, "create", "Alice", "--age", "10")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	idx := strings.Index(out, "Code:")
	if idx < 0 {
		t.Fatalf("create output %q has no code", out)
	}
	fields := strings.Fields(out[idx+len("Code:"):])
	if len(fields) == 0 {
		t.Fatalf("create output %q has no code", out)
	}
	code := stripANSI(fields[0])

	if out, err = run(t, store, "xp", strings.ToLower(code), "1500"); err != nil {
		t.Fatalf("xp: %v", err)
	}
	if !strings.Contains(out, "2") {
		t.Fatalf("xp output %q", out)
	}

	out, err = run(t, store, "show", code)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Alice", "Level", "level_2", "500 to next level"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestUnknownProfile(t *testing.T) {
	t.Parallel()
	store := progressUC.NewStore(repository.NewMapProfileStorage(), zap.NewNop().Sugar(), progressUC.WithStrictMode(true))

	if _, err := run(t, store, "show", "NONE-0000"); !errors.Is(err, errs.ErrProfileNotFound) {
		t.Fatalf("show err=%v, want ErrProfileNotFound", err)
	}
	if _, err := run(t, store, "xp", "NONE-0000", "10"); !errors.Is(err, errs.ErrProfileNotFound) {
		t.Fatalf("xp err=%v, want ErrProfileNotFound", err)
	}
	if _, err := run(t, store, "xp", "NONE-0000", "ten"); err == nil {
		t.Fatalf("non-numeric amount accepted")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && r == 'm':
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
