package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"area-map/internal/config"
	"area-map/internal/logger"
	"area-map/internal/server"
	"area-map/internal/store"
)

func main() {
	cfg := config.Load()
	l := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(l)

	gin.SetMode(gin.ReleaseMode)

	records, err := store.OpenRecordFile(cfg.DataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.Error("data_file_missing", "path", cfg.DataPath)
		} else {
			l.Error("data_load_error", "path", cfg.DataPath, "err", err)
		}
		os.Exit(1)
	}
	l.Info("data_loaded", "path", cfg.DataPath, "records", len(records.Records()))

	notes := store.NewNoteFile(cfg.NotesPath)
	if err := notes.Ensure(); err != nil {
		l.Error("notes_file_error", "path", cfg.NotesPath, "err", err)
		os.Exit(1)
	}

	srv := server.New(cfg, records, notes, l)
	l.Info("server_listening", "addr", cfg.Addr(), "auto_refresh", cfg.AutoRefresh)
	if err := http.ListenAndServe(cfg.Addr(), srv.Router()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}
