// Package calendar reads the user's upcoming events for the assistant's local search.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

type Event struct {
	ID       string    `yaml:"id,omitempty" json:"id,omitempty"`
	Title    string    `yaml:"title" json:"title"`
	Start    time.Time `yaml:"start" json:"start"`
	End      time.Time `yaml:"end" json:"end"`
	Notes    string    `yaml:"notes,omitempty" json:"notes,omitempty"`
	Location string    `yaml:"location,omitempty" json:"location,omitempty"`
}

type Source interface {
	Events(ctx context.Context) ([]Event, error)
}

type eventsFile struct {
	Events []Event `yaml:"events"`
}

// YAMLSource reads events from a YAML file with a top-level "events" list.
type YAMLSource struct {
	path string
}

func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Events returns no events when the path is empty or the file does not exist.
func (s *YAMLSource) Events(_ context.Context) ([]Event, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", s.path, err)
	}

	var file eventsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", s.path, err)
	}
	return file.Events, nil
}

type StaticSource []Event

func (s StaticSource) Events(_ context.Context) ([]Event, error) {
	return slices.Clone(s), nil
}

// Upcoming returns events that have not ended and start within the next days, earliest first.
func Upcoming(events []Event, now time.Time, days int) []Event {
	until := now.AddDate(0, 0, days)
	var result []Event
	for _, e := range events {
		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		if end.Before(now) || e.Start.After(until) {
			continue
		}
		result = append(result, e)
	}
	slices.SortStableFunc(result, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})
	return result
}
