package navigator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/db"
	"github.com/kerala-navigator/navigator/internal/generate"
	"github.com/kerala-navigator/navigator/internal/geo"
	"github.com/kerala-navigator/navigator/internal/history"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/match"
	"github.com/kerala-navigator/navigator/internal/quality"
)

type stubGenerator struct {
	text   string
	source string

	mu       sync.Mutex
	requests []generate.Request
}

func (g *stubGenerator) Generate(_ context.Context, r generate.Request) generate.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, r)
	return generate.Result{Text: g.text, Source: g.source}
}

type memoryRecorder struct {
	err error

	mu      sync.Mutex
	entries []history.Entry
}

func (m *memoryRecorder) Append(_ context.Context, e history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

type brokenSource struct{}

func (brokenSource) Services(context.Context) ([]catalog.ServiceRecord, error) {
	return nil, errors.New("disk gone")
}

func (brokenSource) Service(context.Context, string) (*catalog.ServiceRecord, error) {
	return nil, errors.New("disk gone")
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newResolver(gen Generator, rec Recorder) *Resolver {
	return New(Config{
		LifeEvents: match.NewLifeEvents(nil),
		Services:   match.NewServices(nil, catalog.NewLocal(nil), nil),
		Generator:  gen,
		Recorder:   rec,
	})
}

func TestResolveLifeEvent(t *testing.T) {
	gen := &stubGenerator{}
	r := newResolver(gen, nil)

	res, err := r.Resolve(context.Background(), Query{Message: "My father passed away last week", Language: lang.English})
	require.NoError(t, err)
	assert.Equal(t, SourceLifeEvent, res.Source)
	require.NotNil(t, res.LifeEvent)
	assert.Equal(t, "death", res.LifeEvent.ID)
	assert.Len(t, res.LifeEvent.Checklist, 7)
	assert.Empty(t, res.ServiceID)
	assert.True(t, strings.HasPrefix(res.Reply, "📋 LIFE EVENT"))
	assert.Empty(t, gen.requests)
}

func TestResolveService(t *testing.T) {
	gen := &stubGenerator{}
	r := newResolver(gen, nil)

	res, err := r.Resolve(context.Background(), Query{Message: "How to update Aadhar address?", Language: lang.English})
	require.NoError(t, err)
	assert.Equal(t, SourceCatalog, res.Source)
	assert.Equal(t, "aadhaar_address_update", res.ServiceID)
	require.NotNil(t, res.Service)
	assert.Equal(t, "₹50", res.Service.Fee.String())
	assert.Len(t, res.Service.Steps.EN, 6)
	assert.Contains(t, res.Reply, "₹50")
	assert.Nil(t, res.LifeEvent)
	assert.Empty(t, gen.requests)
}

func TestResolveSwitchesToMalayalamScript(t *testing.T) {
	r := newResolver(&stubGenerator{}, nil)

	res, err := r.Resolve(context.Background(), Query{Message: "ആധാർ address update", Language: lang.English})
	require.NoError(t, err)
	assert.Equal(t, lang.Malayalam, res.Language)
	assert.Equal(t, "aadhaar_address_update", res.ServiceID)
	assert.NotContains(t, res.Reply, "Required Documents")
}

func TestResolveGeneratesUnmatched(t *testing.T) {
	answer := "Apply at the Matsyabhavan office with the boat ownership papers and ID proof."
	gen := &stubGenerator{text: answer, source: generate.SourceGemini}
	r := newResolver(gen, nil)

	loc := &geo.Location{Lat: 9.93, Lng: 76.26}
	res, err := r.Resolve(context.Background(), Query{Message: "How do I register a fishing boat?", Language: lang.English, Location: loc})
	require.NoError(t, err)
	assert.Empty(t, res.ServiceID)
	assert.Nil(t, res.LifeEvent)
	assert.Equal(t, generate.SourceGemini, res.Source)
	assert.Equal(t, answer, res.Reply)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "How do I register a fishing boat?", gen.requests[0].Message)
	assert.Equal(t, loc, gen.requests[0].Location)
}

func TestResolveGatesGeneratedText(t *testing.T) {
	r := newResolver(&stubGenerator{text: "undefined", source: generate.SourceHuggingFace}, nil)

	res, err := r.Resolve(context.Background(), Query{Message: "How do I register a fishing boat?", Language: lang.Malayalam})
	require.NoError(t, err)
	assert.Empty(t, res.ServiceID)
	assert.Equal(t, quality.SafeFallback(lang.Malayalam), res.Reply)
	assert.Equal(t, generate.SourceHuggingFace, res.Source)
}

func TestResolveSourceError(t *testing.T) {
	r := New(Config{
		LifeEvents: match.NewLifeEvents(nil),
		Services:   match.NewServices(nil, brokenSource{}, nil),
		Generator:  &stubGenerator{},
	})

	_, err := r.Resolve(context.Background(), Query{Message: "ration card"})
	assert.ErrorContains(t, err, "disk gone")
}

func TestResolveRecordsHistory(t *testing.T) {
	rec := &memoryRecorder{}
	r := newResolver(&stubGenerator{}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := r.Resolve(ctx, Query{Message: "How to update Aadhar address?", UserID: "u-1", Language: lang.English})
	require.NoError(t, err)
	cancel()
	r.Wait()

	require.Len(t, rec.entries, 1)
	e := rec.entries[0]
	assert.Equal(t, "u-1", e.UserID)
	assert.Equal(t, "How to update Aadhar address?", e.Message)
	assert.Equal(t, res.Reply, e.Reply)
	assert.Equal(t, SourceCatalog, e.Source)
	assert.Equal(t, lang.English, e.Language)
}

func TestResolveIgnoresHistoryFailure(t *testing.T) {
	rec := &memoryRecorder{err: errors.New("database is locked")}
	r := newResolver(&stubGenerator{}, rec)

	res, err := r.Resolve(context.Background(), Query{Message: "My mother died", UserID: "u-2"})
	require.NoError(t, err)
	r.Wait()
	assert.Equal(t, SourceLifeEvent, res.Source)
	assert.Len(t, rec.entries, 1)
}

func TestResolveWithHistoryStore(t *testing.T) {
	database := openTestDB(t)
	store := history.NewStore(database)
	r := newResolver(&stubGenerator{}, store)

	_, err := r.Resolve(context.Background(), Query{Message: "new business license", UserID: "trader"})
	require.NoError(t, err)
	r.Wait()

	entries, err := store.Recent(context.Background(), "trader")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, SourceLifeEvent, entries[0].Source)
}
