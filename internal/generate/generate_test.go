package generate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerala-navigator/navigator/internal/geo"
	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/llm"
)

// fakeProvider answers with reply(req), recording every request.
type fakeProvider struct {
	name  string
	reply func(req llm.CompletionRequest) (string, error)

	mu    sync.Mutex
	calls []llm.CompletionRequest
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	text, err := f.reply(req)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: text}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func answers(text string) func(llm.CompletionRequest) (string, error) {
	return func(llm.CompletionRequest) (string, error) { return text, nil }
}

func fails(msg string) func(llm.CompletionRequest) (string, error) {
	return func(llm.CompletionRequest) (string, error) { return "", errors.New(msg) }
}

func TestBuildPrompt(t *testing.T) {
	en := BuildPrompt(Request{Message: "How do I get a PAN card?", Language: lang.English})
	assert.True(t, strings.HasPrefix(en, "You are Kerala Government Service Navigator AI"))
	assert.Contains(t, en, "understand government services in English.")
	assert.Contains(t, en, englishDirective)
	assert.Contains(t, en, "📋 LIFE EVENT: [Event Name]")
	assert.Contains(t, en, "Service | What You Need | How to Apply")
	assert.Contains(t, en, "User location not provided.")
	assert.True(t, strings.HasSuffix(en, "\nCitizen query: How do I get a PAN card?"))

	ml := BuildPrompt(Request{
		Message:  "പാൻ കാർഡ്",
		Language: lang.Malayalam,
		Location: &geo.Location{Lat: 8.524139, Lng: 76.936638},
	})
	assert.Contains(t, ml, "in Malayalam.")
	assert.Contains(t, ml, "CRITICAL LANGUAGE INSTRUCTION")
	assert.Contains(t, ml, "📋 ജീവിത ഇവന്റ്: [Event Name]")
	assert.Contains(t, ml, "സേവനം | ആവശ്യമായ രേഖകൾ")
	assert.Contains(t, ml, "User location coordinates: 8.524139, 76.936638.")
	assert.True(t, strings.HasSuffix(ml, "Citizen query: പാൻ കാർഡ്"))
}

func TestChainFirstSuccessWins(t *testing.T) {
	primary := &fakeProvider{name: "p", reply: answers("primary answer")}
	secondary := &fakeProvider{name: "s", reply: answers("secondary answer")}
	local := &fakeProvider{name: "ollama", reply: answers("local answer")}

	chain := NewChain([]Tier{
		{Name: "gemini-primary", Source: SourceGemini, Provider: primary},
		{Name: "gemini-secondary", Source: SourceGemini, Provider: secondary},
	}, NewLocalChain(local, nil, nil), nil)

	got := chain.Generate(context.Background(), Request{Message: "hi", Language: lang.English})
	assert.Equal(t, Result{Text: "primary answer", Source: SourceGemini}, got)
	assert.Equal(t, 0, secondary.callCount())
	assert.Equal(t, 0, local.callCount())
}

func TestChainAdvancesPastFailures(t *testing.T) {
	primary := &fakeProvider{name: "p", reply: fails("quota exceeded")}
	secondary := &fakeProvider{name: "s", reply: func(llm.CompletionRequest) (string, error) {
		panic("nil map")
	}}
	hf := &fakeProvider{name: "hf", reply: answers("   ")}
	local := &fakeProvider{name: "ollama", reply: answers("local answer")}

	chain := NewChain([]Tier{
		{Name: "gemini-primary", Source: SourceGemini, Provider: primary},
		{Name: "gemini-secondary", Source: SourceGemini, Provider: secondary},
		{Name: "huggingface", Source: SourceHuggingFace, Provider: hf, System: HuggingFaceSystemPrompt},
	}, NewLocalChain(local, nil, nil), nil)

	got := chain.Generate(context.Background(), Request{Message: "hi", Language: lang.Malayalam})
	assert.Equal(t, Result{Text: "local answer", Source: SourceLocal}, got)
	assert.Equal(t, 1, primary.callCount())
	assert.Equal(t, 1, secondary.callCount())
	require.Equal(t, 1, hf.callCount())

	hfReq := hf.calls[0]
	require.Len(t, hfReq.Messages, 2)
	assert.Equal(t, llm.RoleSystem, hfReq.Messages[0].Role)
	assert.Equal(t, HuggingFaceSystemPrompt(lang.Malayalam), hfReq.Messages[0].Content)
}

func TestTierParametersReachProvider(t *testing.T) {
	hf := &fakeProvider{name: "hf", reply: answers("ok")}
	chain := NewChain([]Tier{{
		Name: "huggingface", Source: SourceHuggingFace, Provider: hf,
		Model: "zephyr", MaxTokens: 200, Temperature: 0.3,
	}}, nil, nil)

	chain.Generate(context.Background(), Request{Message: "hi"})
	require.Equal(t, 1, hf.callCount())
	assert.Equal(t, "zephyr", hf.calls[0].Model)
	assert.Equal(t, 200, hf.calls[0].MaxTokens)
	assert.Equal(t, 0.3, hf.calls[0].Temperature)
	assert.Len(t, hf.calls[0].Messages, 1)
}

func TestLocalChainTriesModelsInOrder(t *testing.T) {
	local := &fakeProvider{name: "ollama", reply: func(req llm.CompletionRequest) (string, error) {
		if req.Model == "qwen2.5:7b" {
			return "from qwen", nil
		}
		return "", errors.New(req.Model + " failed")
	}}

	text := NewLocalChain(local, nil, nil).Generate(context.Background(), "prompt", lang.English)
	assert.Equal(t, "from qwen", text)
	require.Equal(t, 2, local.callCount())
	assert.Equal(t, "deepseek-v3.2:cloud", local.calls[0].Model)
	assert.Equal(t, localTemperature, local.calls[1].Temperature)
	assert.Equal(t, localMaxTokens, local.calls[1].MaxTokens)
	assert.Equal(t, LocalSystemPrompt(lang.English), local.calls[1].Messages[0].Content)
}

func TestChainNeverFails(t *testing.T) {
	broken := &fakeProvider{name: "x", reply: fails("down")}
	local := &fakeProvider{name: "ollama", reply: func(llm.CompletionRequest) (string, error) {
		panic("connection reset")
	}}

	chain := NewChain([]Tier{
		{Name: "gemini-primary", Source: SourceGemini, Provider: broken},
		{Name: "gemini-secondary", Source: SourceGemini, Provider: broken},
		{Name: "huggingface", Source: SourceHuggingFace, Provider: broken},
	}, NewLocalChain(local, nil, nil), nil)

	for _, l := range []lang.Language{lang.English, lang.Malayalam} {
		got := chain.Generate(context.Background(), Request{Message: "hi", Language: l})
		assert.Equal(t, Result{Text: LocalApology(l), Source: SourceLocal}, got)
	}
	assert.Equal(t, 2*len(DefaultLocalModels), local.callCount())
}

func TestNilLocalChainApologizes(t *testing.T) {
	var c *LocalChain
	assert.Equal(t, LocalApology(lang.Malayalam), c.Generate(context.Background(), "p", lang.Malayalam))
}

func TestTierConstructors(t *testing.T) {
	p := &fakeProvider{name: "p", reply: answers("ok")}

	g := GeminiTier("gemini-secondary", p, "")
	assert.Equal(t, DefaultGeminiModel, g.Model)
	assert.Equal(t, SourceGemini, g.Source)
	assert.Zero(t, g.MaxTokens)
	assert.Nil(t, g.System)

	hf := HuggingFaceTier(p, "")
	assert.Equal(t, DefaultHuggingFaceModel, hf.Model)
	assert.Equal(t, 200, hf.MaxTokens)
	assert.Equal(t, 0.3, hf.Temperature)
	assert.NotNil(t, hf.System)
}
