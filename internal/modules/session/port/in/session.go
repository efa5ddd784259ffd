package in

import (
	"context"

	"keycycle/internal/modules/session/dto"
)

type Usecase interface {
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	Transition(ctx context.Context, input dto.TransitionInput) (dto.SnapshotOutput, error)
	Dispatch(ctx context.Context) (dto.DispatchOutput, error)
	Perform(ctx context.Context, input dto.ActionInput) (dto.DispatchOutput, error)
	RequestKey(ctx context.Context) (dto.SnapshotOutput, error)
	SkipKey(ctx context.Context) (dto.SnapshotOutput, error)
	Pause(ctx context.Context) (dto.SnapshotOutput, error)
	Resume(ctx context.Context) (dto.SnapshotOutput, error)
	EndSession(ctx context.Context) (dto.EndOutput, error)
	ListReceipts(ctx context.Context) ([]dto.ReceiptSummaryOutput, error)
	GetReceipt(ctx context.Context, id string) (dto.ReceiptDetailOutput, error)
	Reindex(ctx context.Context) error
	KeyTotals(ctx context.Context) ([]dto.KeyOutput, error)
	GetPreferences(ctx context.Context) (dto.PreferencesOutput, error)
	SetTheme(ctx context.Context, theme string) (dto.PreferencesOutput, error)
}
