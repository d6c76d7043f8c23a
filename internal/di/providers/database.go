package providers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/knowledgeboard/knowledge-server/internal/config"
	"github.com/knowledgeboard/knowledge-server/internal/logger"
	"github.com/knowledgeboard/knowledge-server/internal/sheet"
	"github.com/knowledgeboard/knowledge-server/internal/sheet/gsheets"
	"github.com/knowledgeboard/knowledge-server/internal/sheet/sqlite"
	"github.com/knowledgeboard/knowledge-server/internal/store"
)

// SheetStoreHandle wraps the selected table backend with shutdown capability.
type SheetStoreHandle struct {
	sheet.Store
	closer io.Closer
}

// Shutdown implements do.Shutdownable.
func (h *SheetStoreHandle) Shutdown() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

// ProvideSheetStore opens the table backend named by the store driver.
func ProvideSheetStore(i do.Injector) (*SheetStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn("Using in-memory store, data will not survive a restart")
		return &SheetStoreHandle{Store: sheet.NewMemory()}, nil

	case config.StoreGSheets:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		client, err := gsheets.New(ctx, gsheets.Config{
			SpreadsheetID:   cfg.Store.SpreadsheetID,
			CredentialsFile: cfg.Store.CredentialsFile,
			CredentialsJSON: cfg.Store.CredentialsJSON,
		}, log.Component("gsheets"))
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("reach spreadsheet %s: %w", cfg.Store.SpreadsheetID, err)
		}
		log.Info("Google Sheets store connected", "spreadsheet_id", cfg.Store.SpreadsheetID)
		return &SheetStoreHandle{Store: client}, nil

	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		db, err := sqlite.Open(cfg.Store.SQLitePath, log.Component("sqlite"))
		if err != nil {
			return nil, err
		}
		log.Info("SQLite store opened", "path", cfg.Store.SQLitePath)
		return &SheetStoreHandle{Store: db, closer: db}, nil
	}
}

// ProvideStore provides the typed knowledge store and makes sure every table exists.
func ProvideStore(i do.Injector) (*store.Store, error) {
	log := do.MustInvoke[*logger.Logger](i)
	sheets := do.MustInvoke[*SheetStoreHandle](i)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	st, err := store.New(ctx, sheets.Store, log.Component("store"))
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	log.Info("Store schema ready")
	return st, nil
}
