package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/model"
	"github.com/sells-group/disruption-cli/internal/pipeline"
	"github.com/sells-group/disruption-cli/internal/quality"
	"github.com/sells-group/disruption-cli/internal/scorer"
	"github.com/sells-group/disruption-cli/internal/store"
)

// env bundles the pipeline dependencies a command needs.
type env struct {
	Tables   *scorer.Tables
	Monitor  *quality.Monitor
	Pipeline *pipeline.Pipeline
	Store    store.Store
}

// initEnv validates the config for the mode, loads scoring tables, wires the
// quality monitor into the pipeline and opens the store.
func initEnv(ctx context.Context, mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	tables := scorer.DefaultTables()
	if cfg.Scoring.TablesPath != "" {
		t, err := scorer.LoadTables(cfg.Scoring.TablesPath)
		if err != nil {
			return nil, err
		}
		tables = t
		zap.L().Info("loaded scoring table overrides",
			zap.String("path", cfg.Scoring.TablesPath))
	}

	monitor := quality.NewMonitor(tables)

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	return &env{
		Tables:   tables,
		Monitor:  monitor,
		Pipeline: pipeline.New(tables, monitor, cfg.Scoring.BlendQuality),
		Store:    st,
	}, nil
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// readObservations loads a JSON array of observations from the path, or from
// stdin when the path is "-".
func readObservations(path string) ([]model.Observation, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	var observations []model.Observation
	if err := json.NewDecoder(r).Decode(&observations); err != nil {
		return nil, eris.Wrapf(err, "decode observations from %s", path)
	}
	return observations, nil
}

// writeJSON marshals v to the path, or to stdout when the path is "-" or
// empty.
func writeJSON(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
