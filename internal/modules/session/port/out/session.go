package out

import (
	"context"

	"keycycle/internal/modules/session/domain"
)

// StoredReceipt is a receipt together with the note it was read from.
type StoredReceipt struct {
	Receipt  domain.Receipt
	NotePath string
	Body     string
}

type ReceiptStore interface {
	Save(ctx context.Context, receipt domain.Receipt) (string, error)
	FindByID(ctx context.Context, id string) (StoredReceipt, error)
	List(ctx context.Context) ([]StoredReceipt, error)
}

type ReceiptIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertReceipt(ctx context.Context, receipt domain.Receipt, notePath string) error
	ListReceipts(ctx context.Context) ([]ReceiptRow, error)
	KeyTotals(ctx context.Context) ([domain.KeyCount]int, error)
}

// ReceiptRow is one line of the receipt index, newest first when listed.
type ReceiptRow struct {
	ID               string
	StartedAt        string
	EndedAt          string
	DurationSec      int64
	TotalRepetitions int
	KeysPracticed    int
	NotePath         string
}

type PreferenceStore interface {
	Load(ctx context.Context) (domain.Preferences, error)
	Save(ctx context.Context, prefs domain.Preferences) error
}
