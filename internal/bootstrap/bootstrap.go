package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	sessioninadapter "keycycle/internal/modules/session/adapter/in"
	sessionoutadapter "keycycle/internal/modules/session/adapter/out"
	"keycycle/internal/modules/session/domain"
	sessionin "keycycle/internal/modules/session/port/in"
	sessionservice "keycycle/internal/modules/session/service"
	sessionusecase "keycycle/internal/modules/session/usecase"
	"keycycle/internal/platform/clock"
	"keycycle/internal/platform/config"
	"keycycle/internal/platform/id"
	uiapp "keycycle/internal/ui/app"
)

type App struct {
	Session    sessionin.Usecase
	SessionCLI sessioninadapter.CLIHandler
	Config     config.Config
	Logger     hclog.Logger

	closers []func() error
}

func New(cfg config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	selector, err := domain.NewSelector(cfg.Selector)
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}

	projector, err := sessionoutadapter.NewSQLiteReceiptProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new receipt projector: %w", err)
	}
	machine := sessionservice.NewMachine(clock.SystemClock{}, id.UUID{}, selector, logger.Named("machine"))
	sessionUC := sessionusecase.NewInteractor(
		machine,
		sessionoutadapter.NewVaultReceiptStore(cfg.NotesDir),
		projector,
		sessionoutadapter.NewFilePreferenceStore(cfg.PrefsPath),
		logger.Named("session"),
	)
	logger.Debug("app ready", "data_dir", cfg.DataDir, "selector", cfg.Selector)

	return &App{
		Session:    sessionUC,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		Config:     cfg,
		Logger:     logger,
		closers:    []func() error{projector.Close},
	}, nil
}

// Close releases the receipt index.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RunTUI starts the terminal UI. An explicit theme from config wins over the
// saved preference for this run.
func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Session, app.Config.Theme)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
