package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"keycycle/internal/modules/session/domain"
	sessiondto "keycycle/internal/modules/session/dto"
	sessionin "keycycle/internal/modules/session/port/in"
	sessionout "keycycle/internal/modules/session/port/out"
	"keycycle/internal/modules/session/service"
	apperrors "keycycle/internal/platform/errors"
)

// Interactor owns the single live practice session. Every call holds the
// mutex, so transitions and dispatches from the TUI's command goroutines
// never interleave.
type Interactor struct {
	mu       sync.Mutex
	machine  *service.Machine
	receipts sessionout.ReceiptStore
	index    sessionout.ReceiptIndexProjector
	prefs    sessionout.PreferenceStore
	logger   hclog.Logger

	lastNotePath string
}

func NewInteractor(
	machine *service.Machine,
	receipts sessionout.ReceiptStore,
	index sessionout.ReceiptIndexProjector,
	prefs sessionout.PreferenceStore,
	logger hclog.Logger,
) sessionin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{machine: machine, receipts: receipts, index: index, prefs: prefs, logger: logger}
}

func (i *Interactor) Snapshot(_ context.Context) (sessiondto.SnapshotOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.snapshot(), nil
}

func (i *Interactor) Transition(_ context.Context, input sessiondto.TransitionInput) (sessiondto.SnapshotOutput, error) {
	target, err := domain.ParseState(input.Target)
	if err != nil {
		return sessiondto.SnapshotOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.machine.Transition(target); err != nil {
		return sessiondto.SnapshotOutput{}, err
	}
	return i.snapshot(), nil
}

func (i *Interactor) Dispatch(ctx context.Context) (sessiondto.DispatchOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.settle(ctx, i.machine.Dispatch())
}

func (i *Interactor) Perform(ctx context.Context, input sessiondto.ActionInput) (sessiondto.DispatchOutput, error) {
	action, err := domain.ParseAction(input.Action)
	if err != nil {
		return sessiondto.DispatchOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.perform(ctx, action)
}

func (i *Interactor) RequestKey(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return i.performSnapshot(ctx, domain.ActionRequestKey)
}

func (i *Interactor) SkipKey(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return i.performSnapshot(ctx, domain.ActionSkipKey)
}

func (i *Interactor) Pause(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return i.performSnapshot(ctx, domain.ActionPause)
}

func (i *Interactor) Resume(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return i.performSnapshot(ctx, domain.ActionResume)
}

func (i *Interactor) EndSession(ctx context.Context) (sessiondto.EndOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	out, err := i.perform(ctx, domain.ActionEnd)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	return sessiondto.EndOutput{Receipt: out.Receipt, NotePath: out.Receipt.NotePath}, nil
}

func (i *Interactor) ListReceipts(ctx context.Context) ([]sessiondto.ReceiptSummaryOutput, error) {
	if i.index != nil {
		rows, err := i.index.ListReceipts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]sessiondto.ReceiptSummaryOutput, 0, len(rows))
		for _, row := range rows {
			out = append(out, fromRow(row))
		}
		return out, nil
	}
	if i.receipts == nil {
		return nil, nil
	}
	stored, err := i.receipts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.ReceiptSummaryOutput, 0, len(stored))
	for idx := len(stored) - 1; idx >= 0; idx-- {
		out = append(out, toSummary(stored[idx].Receipt, stored[idx].NotePath))
	}
	return out, nil
}

func (i *Interactor) GetReceipt(ctx context.Context, id string) (sessiondto.ReceiptDetailOutput, error) {
	if strings.TrimSpace(id) == "" {
		return sessiondto.ReceiptDetailOutput{}, fmt.Errorf("%w: receipt id is required", apperrors.ErrInvalidInput)
	}
	if i.receipts == nil {
		return sessiondto.ReceiptDetailOutput{}, apperrors.ErrNotFound
	}
	stored, err := i.receipts.FindByID(ctx, id)
	if err != nil {
		return sessiondto.ReceiptDetailOutput{}, err
	}
	receipt := stored.Receipt
	detail := sessiondto.ReceiptDetailOutput{
		ReceiptSummaryOutput: toSummary(receipt, stored.NotePath),
		History:              toEntries(receipt.TimeStampArchive),
		RestSec:              int64(receipt.TimeIn(domain.StateResting) / time.Second),
		Content:              stored.Body,
	}
	for _, row := range receipt.Report() {
		detail.Keys = append(detail.Keys, sessiondto.KeyReportOutput{
			Name:        row.Name,
			Repetitions: row.Key.Repetitions,
			WorkSec:     int64(row.Work / time.Second),
		})
	}
	return detail, nil
}

// Reindex rebuilds the receipt index from the notes on disk.
func (i *Interactor) Reindex(ctx context.Context) error {
	if i.index == nil || i.receipts == nil {
		return nil
	}
	stored, err := i.receipts.List(ctx)
	if err != nil {
		return err
	}
	if err := i.index.Reset(ctx); err != nil {
		return err
	}
	for _, s := range stored {
		if err := i.index.UpsertReceipt(ctx, s.Receipt, s.NotePath); err != nil {
			return err
		}
	}
	i.logger.Info("receipt index rebuilt", "receipts", len(stored))
	return nil
}

func (i *Interactor) KeyTotals(ctx context.Context) ([]sessiondto.KeyOutput, error) {
	var totals [domain.KeyCount]int
	if i.index != nil {
		var err error
		if totals, err = i.index.KeyTotals(ctx); err != nil {
			return nil, err
		}
	}
	out := make([]sessiondto.KeyOutput, 0, domain.KeyCount)
	for nid, total := range totals {
		out = append(out, sessiondto.KeyOutput{NID: nid, Name: domain.KeyName(nid), Repetitions: total})
	}
	return out, nil
}

func (i *Interactor) GetPreferences(ctx context.Context) (sessiondto.PreferencesOutput, error) {
	if i.prefs == nil {
		return sessiondto.PreferencesOutput{Theme: domain.DefaultPreferences().Theme}, nil
	}
	prefs, err := i.prefs.Load(ctx)
	if err != nil {
		return sessiondto.PreferencesOutput{}, err
	}
	return sessiondto.PreferencesOutput{Theme: prefs.Theme}, nil
}

func (i *Interactor) SetTheme(ctx context.Context, theme string) (sessiondto.PreferencesOutput, error) {
	prefs := domain.Preferences{Theme: strings.ToLower(strings.TrimSpace(theme))}
	if err := prefs.Validate(); err != nil {
		return sessiondto.PreferencesOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if i.prefs != nil {
		if err := i.prefs.Save(ctx, prefs); err != nil {
			return sessiondto.PreferencesOutput{}, err
		}
	}
	return sessiondto.PreferencesOutput{Theme: prefs.Theme}, nil
}

func (i *Interactor) performSnapshot(ctx context.Context, action domain.Action) (sessiondto.SnapshotOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.perform(ctx, action); err != nil {
		return sessiondto.SnapshotOutput{}, err
	}
	return i.snapshot(), nil
}

func (i *Interactor) perform(ctx context.Context, action domain.Action) (sessiondto.DispatchOutput, error) {
	out, err := i.machine.Perform(action)
	if err != nil {
		return sessiondto.DispatchOutput{}, err
	}
	return i.settle(ctx, out)
}

// settle persists the receipt of a finishing dispatch. The receipt is already
// kept in the session data, so a failed write loses nothing in memory.
func (i *Interactor) settle(ctx context.Context, out service.Outcome) (sessiondto.DispatchOutput, error) {
	result := sessiondto.DispatchOutput{State: string(out.State), Recovered: out.Recovered, Finished: out.Finished}
	if !out.Finished {
		return result, nil
	}
	path, err := i.persist(ctx, out.Receipt)
	result.Receipt = toSummary(out.Receipt, path)
	if err != nil {
		i.logger.Error("persist receipt failed", "receipt", out.Receipt.ID, "error", err)
		return result, fmt.Errorf("persist receipt %s: %w", out.Receipt.ID, err)
	}
	return result, nil
}

func (i *Interactor) persist(ctx context.Context, receipt domain.Receipt) (string, error) {
	if i.receipts == nil {
		return "", nil
	}
	path, err := i.receipts.Save(ctx, receipt)
	if err != nil {
		return "", err
	}
	i.lastNotePath = path
	if i.index != nil {
		if err := i.index.UpsertReceipt(ctx, receipt, path); err != nil {
			return path, err
		}
	}
	i.logger.Info("receipt saved", "receipt", receipt.ID, "path", path)
	return path, nil
}

func (i *Interactor) snapshot() sessiondto.SnapshotOutput {
	state := i.machine.State()
	data := i.machine.Data()
	out := sessiondto.SnapshotOutput{
		State:      string(state),
		StateLabel: state.Label(),
		Phase:      string(data.Phase()),
		History:    toEntries(data.History()),
	}
	if key, ok := data.CurrentKey(); ok {
		out.CurrentKey = toKey(key)
		out.HasCurrentKey = true
	}
	for _, target := range i.machine.LegalTargets() {
		out.LegalTargets = append(out.LegalTargets, string(target))
	}
	for _, action := range domain.Actions() {
		out.Actions = append(out.Actions, sessiondto.ActionOutput{
			Name:    string(action),
			Label:   action.Label(),
			Enabled: action.Available(state, data.Phase()),
		})
	}
	for _, key := range data.Catalog().Keys() {
		out.Keys = append(out.Keys, toKey(key))
	}
	if receipt, ok := data.Receipt(); ok {
		out.LastReceipt = toSummary(receipt, i.lastNotePath)
		out.HasReceipt = true
	}
	return out
}

func toKey(key domain.Key) sessiondto.KeyOutput {
	return sessiondto.KeyOutput{NID: key.NID, Name: key.Name(), Repetitions: key.Repetitions}
}

func toEntries(history domain.History) []sessiondto.EntryOutput {
	out := make([]sessiondto.EntryOutput, 0, len(history))
	for _, e := range history {
		out = append(out, sessiondto.EntryOutput{
			State:   string(e.State),
			Label:   e.State.Label(),
			At:      e.Time(),
			KeyName: domain.KeyName(e.KeyID),
		})
	}
	return out
}

func toSummary(receipt domain.Receipt, notePath string) sessiondto.ReceiptSummaryOutput {
	return sessiondto.ReceiptSummaryOutput{
		ID:               receipt.ID,
		StartedAt:        receipt.StartedAt,
		EndedAt:          receipt.EndedAt,
		DurationSec:      int64(receipt.Duration() / time.Second),
		TotalRepetitions: receipt.KeyArchive.TotalRepetitions(),
		KeysPracticed:    receipt.KeysPracticed(),
		NotePath:         notePath,
	}
}

func fromRow(row sessionout.ReceiptRow) sessiondto.ReceiptSummaryOutput {
	started, _ := time.Parse(time.RFC3339, row.StartedAt)
	ended, _ := time.Parse(time.RFC3339, row.EndedAt)
	return sessiondto.ReceiptSummaryOutput{
		ID:               row.ID,
		StartedAt:        started,
		EndedAt:          ended,
		DurationSec:      row.DurationSec,
		TotalRepetitions: row.TotalRepetitions,
		KeysPracticed:    row.KeysPracticed,
		NotePath:         row.NotePath,
	}
}
