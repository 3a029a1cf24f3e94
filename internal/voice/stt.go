// Package voice turns recorded speech into text and text into speech, each
// through an ordered list of providers.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/llm"
	"github.com/kerala-navigator/navigator/internal/metrics"
)

// DefaultAudioMIMEType is assumed when an upload does not declare one.
const DefaultAudioMIMEType = "audio/webm"

// DefaultWhisperURL is the hosted whisper-large-v3 inference endpoint.
const DefaultWhisperURL = "https://router.huggingface.co/hf-inference/models/openai/whisper-large-v3"

// Source tags reported for transcripts.
const (
	SourceGeminiVoice = "gemini-voice"
	SourceWhisper     = "whisper"
)

// ErrAllTranscribersFailed is wrapped by the error returned when no
// transcriber produced text.
var ErrAllTranscribersFailed = errors.New("all transcription providers failed")

// Audio is an uploaded recording.
type Audio struct {
	Data     []byte
	MIMEType string
}

func (a Audio) mimeType() string {
	if a.MIMEType == "" {
		return DefaultAudioMIMEType
	}
	return a.MIMEType
}

// Transcriber converts one recording to text.
type Transcriber interface {
	Source() string
	Transcribe(ctx context.Context, audio Audio, l lang.Language) (string, error)
}

// Transcript is recognized text and the transcriber that produced it.
type Transcript struct {
	Text   string
	Source string
}

// STT tries each transcriber in order. Unlike text generation, exhausting the
// list is an error.
type STT struct {
	transcribers []Transcriber
	logger       *zap.Logger
}

// NewSTT creates the speech-to-text cascade.
func NewSTT(logger *zap.Logger, transcribers ...Transcriber) *STT {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &STT{transcribers: transcribers, logger: logger}
}

// Transcribe returns the first successful transcript. When every transcriber
// fails the error joins each failure with ErrAllTranscribersFailed.
func (s *STT) Transcribe(ctx context.Context, audio Audio, l lang.Language) (Transcript, error) {
	errs := []error{ErrAllTranscribersFailed}
	for _, t := range s.transcribers {
		text, err := transcribeSafely(ctx, t, audio, l)
		metrics.ObserveAttempt(metrics.CascadeSTT, t.Source(), err)
		if err == nil {
			return Transcript{Text: text, Source: t.Source()}, nil
		}
		s.logger.Warn("transcriber failed", zap.String("source", t.Source()), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", t.Source(), err))
	}
	return Transcript{}, errors.Join(errs...)
}

func transcribeSafely(ctx context.Context, t Transcriber, audio Audio, l lang.Language) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Transcribe(ctx, audio, l)
}

const (
	geminiVoiceInstructionEN = `Transcribe this audio accurately. The speaker may use English or Malayalam.
Return ONLY the transcript text, nothing else. Do not add explanations, labels, or quotes.
If the audio is unclear, transcribe your best guess. Do NOT return empty text.`

	geminiVoiceInstructionML = `You are a speech-to-text transcriber for Kerala, India.
Transcribe the audio EXACTLY as spoken. The speaker may use Malayalam, English, or a mix of both (Manglish).
- If the speech is in Malayalam, write in Malayalam script (e.g. ആധാർ കാർഡ് മാറ്റണം).
- If the speech is in English, write in English.
- If it's a mix, write each word in its original script.
- Return ONLY the transcript, nothing else. No explanations, no labels, no quotes.
- If the audio is unclear, transcribe your best guess. Do NOT return empty text.`
)

// GeminiTranscriber sends the recording inline to a multimodal model.
type GeminiTranscriber struct {
	provider llm.Provider
	model    string
}

// NewGeminiTranscriber creates a transcriber backed by provider.
func NewGeminiTranscriber(provider llm.Provider, model string) *GeminiTranscriber {
	return &GeminiTranscriber{provider: provider, model: model}
}

func (g *GeminiTranscriber) Source() string { return SourceGeminiVoice }

func (g *GeminiTranscriber) Transcribe(ctx context.Context, audio Audio, l lang.Language) (string, error) {
	text, err := llm.Prompt(ctx, g.provider, llm.CompletionRequest{
		Model:       g.model,
		Temperature: 0,
		MaxTokens:   500,
		Messages: []llm.Message{{
			Role:        llm.RoleUser,
			Content:     lang.Pick(l, geminiVoiceInstructionEN, geminiVoiceInstructionML),
			Attachments: []llm.Blob{{MIMEType: audio.mimeType(), Data: audio.Data}},
		}},
	})
	if err != nil {
		return "", err
	}
	text = stripQuotes(text)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

// stripQuotes removes one leading and one trailing quote character.
func stripQuotes(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "'") {
		s = s[1:]
	}
	if strings.HasSuffix(s, `"`) || strings.HasSuffix(s, "'") {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}

// WhisperTranscriber posts the raw recording to a hosted Whisper model.
type WhisperTranscriber struct {
	url    string
	apiKey string
	client *http.Client
}

// NewWhisperTranscriber creates a transcriber for the endpoint at url. An
// empty url selects DefaultWhisperURL.
func NewWhisperTranscriber(apiKey, url string) *WhisperTranscriber {
	if url == "" {
		url = DefaultWhisperURL
	}
	return &WhisperTranscriber{url: url, apiKey: apiKey, client: &http.Client{}}
}

func (w *WhisperTranscriber) Source() string { return SourceWhisper }

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio Audio, _ lang.Language) (string, error) {
	if w.apiKey == "" {
		return "", fmt.Errorf("whisper: no API key configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(audio.Data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", audio.mimeType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read whisper response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper returned status %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal whisper response: %w", err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", fmt.Errorf("whisper returned an empty transcript")
	}
	return text, nil
}
