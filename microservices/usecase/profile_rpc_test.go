package usecase

import (
	"context"
	"net"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"edu_progress/internal/repository"
	progressUC "edu_progress/internal/usecase/progress"
	profileRPC "edu_progress/microservices/proto"
)

func newClient(t *testing.T) profileRPC.ProfileServiceClient {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := progressUC.NewStore(repository.NewMapProfileStorage(), log, progressUC.WithStrictMode(true))

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	profileRPC.RegisterProfileServiceServer(server, NewProfileUseCase(store, log))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return profileRPC.NewProfileServiceClient(conn)
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func TestProfileServiceRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newClient(t)

	code, err := client.CreateProfile(ctx, mustStruct(t, map[string]any{"name": "Alice", "age": 10}))
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	p, err := client.AddXP(ctx, mustStruct(t, map[string]any{"code": code.GetValue(), "amount": 1500}))
	if err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if lvl := p.GetFields()["level"].GetNumberValue(); lvl != 2 {
		t.Fatalf("level=%v, want 2", lvl)
	}

	if _, err := client.UnlockAchievement(ctx, mustStruct(t, map[string]any{"code": code.GetValue(), "id": "first_login"})); err != nil {
		t.Fatalf("UnlockAchievement: %v", err)
	}
	p, err = client.GetProfile(ctx, wrapperspb.String(code.GetValue()))
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	achievements := p.GetFields()["achievements"].GetListValue().GetValues()
	if len(achievements) != 2 {
		t.Fatalf("achievements=%v, want level_2 and first_login", achievements)
	}
}

func TestProfileServiceErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := newClient(t)

	_, err := client.GetProfile(ctx, wrapperspb.String("NONE-0000"))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("GetProfile code=%v, want NotFound", status.Code(err))
	}
	_, err = client.AddXP(ctx, mustStruct(t, map[string]any{"code": "NONE-0000", "amount": 5}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("AddXP code=%v, want NotFound", status.Code(err))
	}
	_, err = client.CreateProfile(ctx, mustStruct(t, map[string]any{"name": "", "age": 3}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("CreateProfile code=%v, want InvalidArgument", status.Code(err))
	}
	_, err = client.GetSummary(ctx, mustStruct(t, map[string]any{"code": "NONE-0000", "key": "intro-go"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("GetSummary code=%v, want NotFound", status.Code(err))
	}
}
