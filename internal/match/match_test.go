package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerala-navigator/navigator/internal/catalog"
	"github.com/kerala-navigator/navigator/internal/lang"
)

func TestLifeEventMatch(t *testing.T) {
	m := NewLifeEvents(nil)

	tests := []struct {
		text string
		want string
	}{
		{"my father passed away", "death"},
		{"MY FATHER PASSED AWAY", "death"},
		{"we just got married last week", "marriage"},
		{"അച്ഛൻ മരിച്ചു", "death"},
		{"how do i renew my passport", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := m.Match(lang.Normalize(tt.text))
		if tt.want == "" {
			assert.Nil(t, got, "text %q", tt.text)
			continue
		}
		require.NotNil(t, got, "text %q", tt.text)
		assert.Equal(t, tt.want, got.ID, "text %q", tt.text)
	}
}

func TestLifeEventFirstInListOrderWins(t *testing.T) {
	m := NewLifeEvents([]catalog.LifeEvent{
		{ID: "first", Triggers: []string{"Zeta"}},
		{ID: "second", Triggers: []string{"alpha"}},
	})

	got := m.Match("alpha then zeta")
	require.NotNil(t, got)
	assert.Equal(t, "first", got.ID)
}

func TestScoreRules(t *testing.T) {
	rec := &catalog.ServiceRecord{
		ID:       "income",
		Name:     catalog.Text{EN: "Income Certificate", ML: "വരുമാന സർട്ടിഫിക്കറ്റ്"},
		Keywords: []string{"income", "salary proof", "certificate", "വരുമാനം"},
	}

	tests := []struct {
		name string
		text string
		want int
	}{
		{"english name plus keyword", "income certificate please", nameScore + wordKeywordScore},
		{"malayalam name", "വരുമാന സർട്ടിഫിക്കറ്റ്", nameScore},
		{"phrase keyword", "need salary proof", phraseKeywordScore},
		{"whole word only", "incomes are taxed", 0},
		{"generic keyword alone", "certificate", 0},
		{"malayalam keyword uses containment", "എന്റെ വരുമാനം", wordKeywordScore},
		{"nothing", "hello there", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.text, rec))
		})
	}
}

func TestWholeWordPatternIsCached(t *testing.T) {
	first := wholeWordPattern("pension")
	assert.Same(t, first, wholeWordPattern("pension"))
	assert.NotSame(t, first, wholeWordPattern("ration"))

	assert.True(t, hasWholeWord("my Pension stopped", "pension"))
	assert.False(t, hasWholeWord("pensioner id", "pension"))
}

func TestScoreConcurrent(t *testing.T) {
	records, err := catalog.NewLocal(nil).Services(context.Background())
	require.NoError(t, err)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range records {
				Score("ration card for my family", &records[i])
			}
		}()
	}
	wg.Wait()
	best, _ := Best("ration card for my family", records)
	require.NotNil(t, best)
	assert.Equal(t, "ration_card", best.ID)
}

func TestBestKeepsFirstOnTie(t *testing.T) {
	records := []catalog.ServiceRecord{
		{ID: "a", Name: catalog.Text{EN: "Alpha"}, Keywords: []string{"shared"}},
		{ID: "b", Name: catalog.Text{EN: "Beta"}, Keywords: []string{"shared"}},
	}
	best, score := Best("shared", records)
	require.NotNil(t, best)
	assert.Equal(t, "a", best.ID)
	assert.Equal(t, wordKeywordScore, score)
}

func TestBestNeverReturnsZeroScore(t *testing.T) {
	records := []catalog.ServiceRecord{
		{ID: "a", Name: catalog.Text{EN: "Alpha"}, Keywords: []string{"card", "new"}},
	}
	best, score := Best("new card", records)
	assert.Nil(t, best)
	assert.Zero(t, score)
}

func TestFullNameBeatsKeywordOnlyCompetitor(t *testing.T) {
	records := []catalog.ServiceRecord{
		{ID: "keywords", Name: catalog.Text{EN: "Something Else"}, Keywords: []string{"ration card", "supply"}},
		{ID: "named", Name: catalog.Text{EN: "Ration Card Services"}},
	}
	text := "ration card services"
	assert.Equal(t, phraseKeywordScore, Score(text, &records[0]))
	assert.Equal(t, nameScore, Score(text, &records[1]))

	best, score := Best(text, records)
	require.NotNil(t, best)
	assert.Equal(t, "named", best.ID)
	assert.Equal(t, nameScore, score)
}

func TestNameTieKeepsFirstSeen(t *testing.T) {
	records := []catalog.ServiceRecord{
		{ID: "keywords", Name: catalog.Text{EN: "Something Else"}, Keywords: []string{"ration", "ration card", "supply"}},
		{ID: "named", Name: catalog.Text{EN: "Ration Card Services"}},
	}
	best, score := Best("ration card services", records)
	require.NotNil(t, best)
	assert.Equal(t, "keywords", best.ID)
	assert.Equal(t, nameScore, score)
}

type fakeSource struct {
	records []catalog.ServiceRecord
	err     error
}

func (f fakeSource) Services(context.Context) ([]catalog.ServiceRecord, error) {
	return f.records, f.err
}

func (f fakeSource) Service(context.Context, string) (*catalog.ServiceRecord, error) {
	return nil, catalog.ErrNotFound
}

func TestServicesMatchLocal(t *testing.T) {
	m := NewServices(nil, catalog.NewLocal(nil), nil)

	got, err := m.Match(context.Background(), lang.Normalize("How to update Aadhar address?"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "aadhaar_address_update", got.ID)
	assert.Equal(t, "₹50", got.Fee.String())
	assert.Len(t, got.Steps.EN, 6)
}

func TestServicesRemoteFallback(t *testing.T) {
	remoteRec := catalog.ServiceRecord{ID: "remote_pension", Name: catalog.Text{EN: "Pension"}, Keywords: []string{"pension"}}
	ctx := context.Background()
	local := catalog.NewLocal(nil)

	t.Run("remote wins when it scores", func(t *testing.T) {
		m := NewServices(fakeSource{records: []catalog.ServiceRecord{remoteRec}}, local, nil)
		got, err := m.Match(ctx, "old age pension")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "remote_pension", got.ID)
	})

	t.Run("remote error is swallowed", func(t *testing.T) {
		m := NewServices(fakeSource{err: errors.New("connection refused")}, local, nil)
		got, err := m.Match(ctx, "old age pension")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "pension", got.ID)
	})

	t.Run("remote without positive score", func(t *testing.T) {
		m := NewServices(fakeSource{records: []catalog.ServiceRecord{remoteRec}}, local, nil)
		got, err := m.Match(ctx, "ration card for my family")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "ration_card", got.ID)
	})

	t.Run("no match anywhere", func(t *testing.T) {
		m := NewServices(fakeSource{}, local, nil)
		got, err := m.Match(ctx, "what is the weather today")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
