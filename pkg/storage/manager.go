package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"feedharvest/pkg/config"
	errs "feedharvest/pkg/errors"
	"feedharvest/pkg/logger"
	"feedharvest/pkg/models"
)

// StampLayout is the minute-resolution timestamp embedded in output names
const StampLayout = "20060102_1504"

// Written lists the artifacts produced by one Write call
type Written struct {
	JSONPath   string
	CSVPath    string
	SQLiteRows int
}

// Manager writes crawl results and debug artifacts under one directory
type Manager struct {
	cfg    config.OutputConfig
	logger logger.Logger
}

// NewManager creates the output directory if needed
func NewManager(cfg config.OutputConfig, log logger.Logger) (*Manager, error) {
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, errs.New(errs.ErrorTypeOutput, "failed to create output directory", err)
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{cfg: cfg, logger: log}, nil
}

// Paths returns the JSON and CSV paths for a result generated at t
func (m *Manager) Paths(t time.Time) (string, string) {
	base := fmt.Sprintf("%s_%s", m.cfg.FilePrefix, t.Format(StampLayout))
	return filepath.Join(m.cfg.Directory, base+".json"), filepath.Join(m.cfg.Directory, base+".csv")
}

// Write serializes the document to JSON, and to CSV and SQLite when
// enabled. Each file is replaced atomically.
func (m *Manager) Write(ctx context.Context, doc *models.Document) (*Written, error) {
	jsonPath, csvPath := m.Paths(doc.GeneratedAt)
	out := &Written{}

	if err := WriteJSONAtomic(jsonPath, 0644, doc); err != nil {
		return nil, errs.New(errs.ErrorTypeOutput, "failed to write json output", err)
	}
	out.JSONPath = jsonPath

	if m.cfg.CSV {
		err := WriteFileAtomic(csvPath, 0644, func(w io.Writer) error {
			return EncodeCSV(w, doc.Tweets)
		})
		if err != nil {
			return out, errs.New(errs.ErrorTypeOutput, "failed to write csv output", err)
		}
		out.CSVPath = csvPath
	}

	if m.cfg.SQLite != "" {
		sink, err := OpenSQLite(m.cfg.SQLite)
		if err != nil {
			return out, errs.New(errs.ErrorTypeOutput, "failed to open sqlite output", err)
		}
		defer sink.Close()

		added, err := sink.Insert(ctx, doc)
		if err != nil {
			return out, errs.New(errs.ErrorTypeOutput, "failed to insert sqlite rows", err)
		}
		out.SQLiteRows = added
	}

	m.logger.InfoWithFields("results written", map[string]interface{}{
		"json":        out.JSONPath,
		"csv":         out.CSVPath,
		"sqlite_rows": out.SQLiteRows,
		"count":       doc.Count,
	})
	return out, nil
}

// WriteDebugArtifacts saves the rendered page source and a screenshot to
// their fixed names. An empty screenshot is skipped.
func (m *Manager) WriteDebugArtifacts(html string, screenshot []byte) ([]string, error) {
	var paths []string

	if m.cfg.DebugHTML != "" {
		path := m.resolve(m.cfg.DebugHTML)
		err := WriteFileAtomic(path, 0644, func(w io.Writer) error {
			_, err := io.WriteString(w, html)
			return err
		})
		if err != nil {
			return paths, errs.New(errs.ErrorTypeOutput, "failed to write debug html", err)
		}
		paths = append(paths, path)
	}

	if m.cfg.DebugScreenshot != "" && len(screenshot) > 0 {
		path := m.resolve(m.cfg.DebugScreenshot)
		err := WriteFileAtomic(path, 0644, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(screenshot))
			return err
		})
		if err != nil {
			return paths, errs.New(errs.ErrorTypeOutput, "failed to write debug screenshot", err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (m *Manager) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.cfg.Directory, name)
}
