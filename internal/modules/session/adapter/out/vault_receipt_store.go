package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"keycycle/internal/modules/session/domain"
	sessionout "keycycle/internal/modules/session/port/out"
	apperrors "keycycle/internal/platform/errors"
	"keycycle/internal/platform/markdown"
)

type VaultReceiptStore struct {
	notesDir string
}

func NewVaultReceiptStore(notesDir string) sessionout.ReceiptStore {
	return &VaultReceiptStore{notesDir: notesDir}
}

type receiptFrontmatter struct {
	SchemaVersion   int                `yaml:"schema_version"`
	ID              string             `yaml:"id"`
	StartedAt       time.Time          `yaml:"started_at"`
	EndedAt         time.Time          `yaml:"ended_at"`
	DurationSeconds int64              `yaml:"duration_seconds"`
	Keys            []domain.Key       `yaml:"keys"`
	Timeline        []domain.TimeEntry `yaml:"timeline"`
}

func (s *VaultReceiptStore) Save(_ context.Context, receipt domain.Receipt) (string, error) {
	if strings.TrimSpace(receipt.ID) == "" {
		return "", fmt.Errorf("%w: receipt id is required", apperrors.ErrInvalidInput)
	}
	date := receipt.StartedAt.UTC()
	dir := filepath.Join(s.notesDir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", date.Format("150405"), receipt.ID))

	meta := receiptFrontmatter{
		SchemaVersion:   domain.SchemaVersion,
		ID:              receipt.ID,
		StartedAt:       receipt.StartedAt.UTC(),
		EndedAt:         receipt.EndedAt.UTC(),
		DurationSeconds: int64(receipt.Duration() / time.Second),
		Keys:            receipt.KeyArchive.Keys(),
		Timeline:        receipt.TimeStampArchive,
	}
	rendered, err := markdown.RenderFrontmatter(meta, RenderReceiptBody(receipt))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write receipt note: %w", err)
	}
	return path, nil
}

func (s *VaultReceiptStore) FindByID(ctx context.Context, id string) (sessionout.StoredReceipt, error) {
	receipts, err := s.List(ctx)
	if err != nil {
		return sessionout.StoredReceipt{}, err
	}
	for _, stored := range receipts {
		if stored.Receipt.ID == id {
			return stored, nil
		}
	}
	return sessionout.StoredReceipt{}, apperrors.ErrNotFound
}

func (s *VaultReceiptStore) List(_ context.Context) ([]sessionout.StoredReceipt, error) {
	var paths []string
	err := filepath.WalkDir(s.notesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".md" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("walk receipt notes: %w", err)
	}
	sort.Strings(paths)

	out := make([]sessionout.StoredReceipt, 0, len(paths))
	for _, path := range paths {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		meta := receiptFrontmatter{}
		body, decodeErr := markdown.DecodeFrontmatter(string(content), &meta)
		if decodeErr != nil {
			return nil, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
		receipt, convErr := fromFrontmatter(meta)
		if convErr != nil {
			return nil, fmt.Errorf("decode receipt %s: %w", path, convErr)
		}
		out = append(out, sessionout.StoredReceipt{Receipt: receipt, NotePath: path, Body: body})
	}
	return out, nil
}

func fromFrontmatter(meta receiptFrontmatter) (domain.Receipt, error) {
	if meta.ID == "" {
		return domain.Receipt{}, fmt.Errorf("missing id")
	}
	if meta.SchemaVersion > domain.SchemaVersion {
		return domain.Receipt{}, fmt.Errorf("unsupported schema version %d", meta.SchemaVersion)
	}
	catalog := domain.NewCatalog()
	for _, k := range meta.Keys {
		if k.NID < 0 || k.NID >= domain.KeyCount {
			return domain.Receipt{}, fmt.Errorf("key nid %d out of range", k.NID)
		}
		catalog[k.NID] = k
	}
	return domain.Receipt{
		ID:               meta.ID,
		StartedAt:        meta.StartedAt.UTC(),
		EndedAt:          meta.EndedAt.UTC(),
		KeyArchive:       catalog,
		TimeStampArchive: domain.History(meta.Timeline).Clone(),
	}, nil
}

// RenderReceiptBody writes the human-readable half of a receipt note: the
// per-key report table followed by the state timeline.
func RenderReceiptBody(receipt domain.Receipt) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# Practice Session %s\n\n", receipt.ID)
	fmt.Fprintf(&b, "- Started: %s\n", receipt.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", receipt.Duration())
	fmt.Fprintf(&b, "- Keys practiced: %d\n", receipt.KeysPracticed())
	fmt.Fprintf(&b, "- Total repetitions: %d\n", receipt.KeyArchive.TotalRepetitions())
	fmt.Fprintf(&b, "- Resting: %s\n\n", receipt.TimeIn(domain.StateResting))

	b.WriteString("## Report\n\n")
	b.WriteString("| Key Name | Key Repetitions | Duration |\n")
	b.WriteString("|---|---|---|\n")
	for _, row := range receipt.Report() {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", row.Name, row.Key.Repetitions, row.Work)
	}

	b.WriteString("\n## Timeline\n\n")
	if len(receipt.TimeStampArchive) == 0 {
		b.WriteString("_No practice recorded._\n")
		return b.String()
	}
	for _, e := range receipt.TimeStampArchive {
		fmt.Fprintf(&b, "- %s %s", e.Time().Format("15:04:05"), e.State.Label())
		if e.KeyID != domain.NoKey {
			fmt.Fprintf(&b, " (%s)", domain.KeyName(e.KeyID))
		}
		b.WriteString("\n")
	}
	return b.String()
}
