package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/services.yaml data/life_events.yaml
var dataFS embed.FS

// ErrNotFound is returned when a service id is not present in a source.
var ErrNotFound = errors.New("service not found")

// Source is the single query interface over service records, whatever their
// origin. Scoring and formatting never need to know which source answered.
type Source interface {
	Services(ctx context.Context) ([]ServiceRecord, error)
	Service(ctx context.Context, id string) (*ServiceRecord, error)
}

var (
	loadOnce    sync.Once
	localTable  []ServiceRecord
	lifeEvents  []LifeEvent
	loadFailure error
)

func loadEmbedded() {
	loadOnce.Do(func() {
		raw, err := dataFS.ReadFile("data/services.yaml")
		if err != nil {
			loadFailure = err
			return
		}
		if localTable, err = ParseServices(raw); err != nil {
			loadFailure = fmt.Errorf("embedded services: %w", err)
			return
		}
		raw, err = dataFS.ReadFile("data/life_events.yaml")
		if err != nil {
			loadFailure = err
			return
		}
		if err := yaml.Unmarshal(raw, &lifeEvents); err != nil {
			loadFailure = fmt.Errorf("embedded life events: %w", err)
		}
	})
	if loadFailure != nil {
		panic(loadFailure)
	}
}

// ParseServices decodes a YAML list of service records and checks that every
// record carries an id and an English name.
func ParseServices(raw []byte) ([]ServiceRecord, error) {
	var records []ServiceRecord
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if r.Name.EN == "" {
			return nil, fmt.Errorf("record %q: missing name", r.ID)
		}
	}
	return records, nil
}

// LocalServices returns the built-in fallback service table in authored order.
func LocalServices() []ServiceRecord {
	loadEmbedded()
	return localTable
}

// LifeEvents returns the built-in life events in match priority order.
func LifeEvents() []LifeEvent {
	loadEmbedded()
	return lifeEvents
}

// Local serves records from an in-memory table.
type Local struct {
	records []ServiceRecord
}

// NewLocal wraps records as a Source. A nil slice means the built-in table.
func NewLocal(records []ServiceRecord) *Local {
	if records == nil {
		records = LocalServices()
	}
	return &Local{records: records}
}

func (l *Local) Services(ctx context.Context) ([]ServiceRecord, error) {
	return l.records, nil
}

func (l *Local) Service(ctx context.Context, id string) (*ServiceRecord, error) {
	for i := range l.records {
		if l.records[i].ID == id {
			rec := l.records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}
