package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/kerala-atlas/locality-cli/internal/model"
	"github.com/kerala-atlas/locality-cli/internal/scoring"
	"github.com/kerala-atlas/locality-cli/internal/store"
)

// initStore opens the configured backend and applies migrations.
// Callers should defer st.Close().
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// resolvePreset picks the scoring preset: an explicit file wins over a
// named built-in; empty name falls back to the configured default.
func resolvePreset(name, file string) (scoring.Preset, error) {
	if file == "" {
		file = cfg.Scoring.PresetFile
	}
	if file != "" {
		return scoring.LoadPresetFile(file)
	}

	if name == "" {
		name = cfg.Scoring.Preset
	}
	preset, ok := scoring.PresetByName(name)
	if !ok {
		return scoring.Preset{}, eris.Errorf("unknown preset %q (want objective, clean, or pillar)", name)
	}
	return preset, nil
}

// readLocalityFile loads locality records from a JSON array file.
func readLocalityFile(path string) ([]model.LocalityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	var recs []model.LocalityRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	return recs, nil
}

// writeLocalityFile writes locality records as an indented JSON array.
func writeLocalityFile(path string, recs []model.LocalityRecord) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal localities")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
