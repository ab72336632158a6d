// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/recctl/internal/log"
)

const (
	scheduleTimeLayout = "2006-01-02 15:04:05"
	watchDebounce      = 500 * time.Millisecond
)

// scheduleFile is the on-disk layout:
//
//	recordings:
//	  - id: news-2000
//	    name: Tagesschau
//	    start: "2025-03-01 20:00:00"
//	    end: "2025-03-01 20:15:00"
type scheduleFile struct {
	Recordings []scheduleEntry `yaml:"recordings"`
}

type scheduleEntry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// FileSource reads the schedule from a YAML file. Times without a zone
// are interpreted in the source's location; RFC 3339 is also accepted.
type FileSource struct {
	path   string
	loc    *time.Location
	logger zerolog.Logger
}

func NewFileSource(path string, loc *time.Location) *FileSource {
	if loc == nil {
		loc = time.Local
	}
	return &FileSource{
		path:   path,
		loc:    loc,
		logger: log.WithComponent("recorder.file"),
	}
}

func (s *FileSource) Name() string { return "file" }

// Path returns the watched schedule file.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Fetch(context.Context) ([]RecordingInfo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", s.path, err)
	}
	return s.parse(data)
}

func (s *FileSource) parse(data []byte) ([]RecordingInfo, error) {
	var doc scheduleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse schedule %s: %w", s.path, err)
	}

	out := make([]RecordingInfo, 0, len(doc.Recordings))
	for i, e := range doc.Recordings {
		start, err := s.parseTime(e.Start)
		if err != nil {
			return nil, fmt.Errorf("recording %d (%q): start: %w", i, e.ID, err)
		}
		end, err := s.parseTime(e.End)
		if err != nil {
			return nil, fmt.Errorf("recording %d (%q): end: %w", i, e.ID, err)
		}
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("%s@%d", e.Name, start.Unix())
		}
		out = append(out, RecordingInfo{ID: id, Name: e.Name, StartTime: start, EndTime: end})
	}
	return out, nil
}

func (s *FileSource) parseTime(v string) (time.Time, error) {
	if t, err := time.ParseInLocation(scheduleTimeLayout, v, s.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", v)
	}
	return t, nil
}

// Watch calls onChange (debounced) whenever the schedule file is written,
// created or replaced. The directory is watched so atomic renames are
// seen. Watch blocks until ctx is cancelled.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch schedule dir: %w", err)
	}
	target := filepath.Clean(s.path)

	s.logger.Info().
		Str(log.FieldEvent, "recorder.watch_started").
		Str(log.FieldPath, s.path).
		Msg("watching schedule file for changes")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str(log.FieldEvent, "recorder.watch_stopped").Msg("schedule watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.logger.Debug().
				Str(log.FieldEvent, "recorder.file_changed").
				Str("op", event.Op.String()).
				Msg("schedule file changed")
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error().
				Err(err).
				Str(log.FieldEvent, "recorder.watch_error").
				Msg("schedule watcher error")
		}
	}
}
