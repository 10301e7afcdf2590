package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"edu_progress/internal/domain/profile"
	"edu_progress/internal/domain/progress"
	errs "edu_progress/internal/errors"
	profileRPC "edu_progress/microservices/proto"
)

// ProfileStore is the part of the progress store exposed over gRPC.
type ProfileStore interface {
	CreateUserProfile(ctx context.Context, name string, age int) (string, error)
	GetUserProfile(ctx context.Context, code string) (*profile.UserProfile, error)
	AddUserXP(ctx context.Context, code string, amount int) error
	SyncLevelAchievements(ctx context.Context, code string) error
	UnlockAchievement(ctx context.Context, code, achievementID string) error
	Summary(ctx context.Context, code, key string) (*progress.Summary, error)
}

type ProfileUseCase struct {
	store ProfileStore
	log   *zap.SugaredLogger
	profileRPC.UnimplementedProfileServiceServer
}

func NewProfileUseCase(store ProfileStore, log *zap.SugaredLogger) *ProfileUseCase {
	return &ProfileUseCase{
		store: store,
		log:   log,
	}
}

func (p *ProfileUseCase) CreateProfile(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	name := in.GetFields()["name"].GetStringValue()
	age := int(in.GetFields()["age"].GetNumberValue())

	code, err := p.store.CreateUserProfile(ctx, name, age)
	if err != nil {
		return nil, p.toStatus("CreateProfile", err)
	}
	return wrapperspb.String(code), nil
}

func (p *ProfileUseCase) GetProfile(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	return p.profileStruct(ctx, in.GetValue())
}

func (p *ProfileUseCase) AddXP(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	code := in.GetFields()["code"].GetStringValue()
	amount := int(in.GetFields()["amount"].GetNumberValue())

	if err := p.store.AddUserXP(ctx, code, amount); err != nil {
		return nil, p.toStatus("AddXP", err)
	}
	if err := p.store.SyncLevelAchievements(ctx, code); err != nil {
		return nil, p.toStatus("AddXP", err)
	}
	return p.profileStruct(ctx, code)
}

func (p *ProfileUseCase) UnlockAchievement(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	code := in.GetFields()["code"].GetStringValue()
	id := in.GetFields()["id"].GetStringValue()

	if err := p.store.UnlockAchievement(ctx, code, id); err != nil {
		return nil, p.toStatus("UnlockAchievement", err)
	}
	return &emptypb.Empty{}, nil
}

func (p *ProfileUseCase) GetSummary(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	code := in.GetFields()["code"].GetStringValue()
	key := in.GetFields()["key"].GetStringValue()

	summary, err := p.store.Summary(ctx, code, key)
	if err != nil {
		return nil, p.toStatus("GetSummary", err)
	}
	if summary == nil {
		return nil, status.Errorf(codes.NotFound, "no progress for %s", key)
	}
	return toStruct(summary)
}

func (p *ProfileUseCase) profileStruct(ctx context.Context, code string) (*structpb.Struct, error) {
	prof, err := p.store.GetUserProfile(ctx, code)
	if err != nil {
		return nil, p.toStatus("GetProfile", err)
	}
	if prof == nil {
		return nil, status.Errorf(codes.NotFound, "no profile with code %s", code)
	}
	return toStruct(prof)
}

// toStruct converts v through its JSON form, so field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

func (p *ProfileUseCase) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrProfileNotFound), errors.Is(err, errs.ErrProgressNotInitialized):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errs.ErrCodeAllocation), errors.Is(err, errs.ErrConcurrentUpdate):
		return status.Error(codes.Aborted, err.Error())
	default:
		p.log.Errorf("%s: %v", op, err)
		return status.Error(codes.Unavailable, "progress not saved")
	}
}
