package in

import (
	"context"

	sessiondto "keycycle/internal/modules/session/dto"
	sessionin "keycycle/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Snapshot(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Perform(ctx context.Context, action string) (sessiondto.DispatchOutput, error) {
	return h.usecase.Perform(ctx, sessiondto.ActionInput{Action: action})
}

func (h CLIHandler) Transition(ctx context.Context, target string) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Transition(ctx, sessiondto.TransitionInput{Target: target})
}

func (h CLIHandler) Dispatch(ctx context.Context) (sessiondto.DispatchOutput, error) {
	return h.usecase.Dispatch(ctx)
}

func (h CLIHandler) ListReceipts(ctx context.Context) ([]sessiondto.ReceiptSummaryOutput, error) {
	return h.usecase.ListReceipts(ctx)
}

func (h CLIHandler) GetReceipt(ctx context.Context, id string) (sessiondto.ReceiptDetailOutput, error) {
	return h.usecase.GetReceipt(ctx, id)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}

func (h CLIHandler) KeyTotals(ctx context.Context) ([]sessiondto.KeyOutput, error) {
	return h.usecase.KeyTotals(ctx)
}

func (h CLIHandler) GetPreferences(ctx context.Context) (sessiondto.PreferencesOutput, error) {
	return h.usecase.GetPreferences(ctx)
}

func (h CLIHandler) SetTheme(ctx context.Context, theme string) (sessiondto.PreferencesOutput, error) {
	return h.usecase.SetTheme(ctx, theme)
}
