package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "cryptofolio/internal/sheets/google"
	"cryptofolio/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsMirror:
		return f.createSheetsMirror(ctx, config)
	case MemoryMirror:
		return f.createMemoryMirror(), nil
	default:
		return nil, fmt.Errorf("unsupported mirror backend: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	cli, err := gsheet.NewClient(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleCredentialsJSON,
		CredentialsFile: config.GoogleCredentialsFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
	return &MirrorResult{Mirror: cli, Kind: SheetsMirror}, nil
}

func (f *DefaultFactory) createMemoryMirror() *MirrorResult {
	f.logger.Info("Initialized in-memory mirror")
	return &MirrorResult{Mirror: memory.New(), Kind: MemoryMirror}
}
