package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"

	"github.com/kerala-navigator/navigator/internal/lang"
	"github.com/kerala-navigator/navigator/internal/metrics"
)

// DefaultTTSURL is the Google Cloud Text-to-Speech synthesize endpoint.
const DefaultTTSURL = "https://texttospeech.googleapis.com/v1/text:synthesize"

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// SourceGoogleTTS is the source tag reported for synthesized speech.
const SourceGoogleTTS = "google-tts"

// ErrNoText is returned when nothing speakable remains after sanitizing.
var ErrNoText = errors.New("no text to synthesize")

var (
	urlPattern      = regexp.MustCompile(`https?://\S+`)
	markdownControl = regexp.MustCompile("[#*_`>|\\[\\]{}]")
	spaceRun        = regexp.MustCompile(`\s+`)
)

// Sanitize strips URLs and markdown control characters and collapses
// whitespace so the text reads naturally aloud.
func Sanitize(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = markdownControl.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// Voice selects a synthesis voice. An empty Name lets the service pick the
// default voice for the locale and gender.
type Voice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
	SSMLGender   string `json:"ssmlGender"`
}

// Voices returns the candidates for l, best first.
func Voices(l lang.Language) []Voice {
	locale := lang.Pick(l, "en-IN", "ml-IN")
	return []Voice{
		{LanguageCode: locale, Name: locale + "-Wavenet-A", SSMLGender: "FEMALE"},
		{LanguageCode: locale, Name: locale + "-Standard-A", SSMLGender: "FEMALE"},
		{LanguageCode: locale, SSMLGender: "FEMALE"},
	}
}

func speakingRate(v Voice) float64 {
	if v.LanguageCode == "ml-IN" {
		return 0.9
	}
	return 0.95
}

// Speech is base64-encoded MP3 audio and its source.
type Speech struct {
	Audio  string
	Source string
}

// Synthesizer calls Google Text-to-Speech, trying each voice candidate in turn.
type Synthesizer struct {
	apiKey string
	url    string
	client *http.Client
	logger *zap.Logger

	// serviceAccount is set when client attaches OAuth tokens itself.
	serviceAccount bool
}

// NewSynthesizer creates a synthesizer. An empty url selects DefaultTTSURL.
func NewSynthesizer(apiKey, url string, logger *zap.Logger) *Synthesizer {
	if url == "" {
		url = DefaultTTSURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{apiKey: apiKey, url: url, client: &http.Client{}, logger: logger}
}

// NewServiceAccountSynthesizer authenticates with a Google service account
// key file's contents instead of an API key.
func NewServiceAccountSynthesizer(ctx context.Context, credentialsJSON []byte, url string, logger *zap.Logger) (*Synthesizer, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	s := NewSynthesizer("", url, logger)
	s.client = conf.Client(ctx)
	s.serviceAccount = true
	return s, nil
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice       Voice `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
		Pitch         float64 `json:"pitch"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Synthesize speaks text in l. The first voice that succeeds wins; if all
// fail, the last error is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, l lang.Language) (Speech, error) {
	cleaned := Sanitize(text)
	if cleaned == "" {
		return Speech{}, ErrNoText
	}
	if s.apiKey == "" && !s.serviceAccount {
		return Speech{}, fmt.Errorf("google TTS API key missing")
	}

	var lastErr error
	for _, v := range Voices(l) {
		audio, err := s.synthesize(ctx, cleaned, v)
		label := v.Name
		if label == "" {
			label = v.LanguageCode + "-default"
		}
		metrics.ObserveAttempt(metrics.CascadeTTS, label, err)
		if err == nil {
			return Speech{Audio: audio, Source: SourceGoogleTTS}, nil
		}
		s.logger.Warn("tts voice failed", zap.String("voice", label), zap.Error(err))
		lastErr = err
	}
	return Speech{}, lastErr
}

func (s *Synthesizer) synthesize(ctx context.Context, text string, v Voice) (audio string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var payload synthesizeRequest
	payload.Input.Text = text
	payload.Voice = v
	payload.AudioConfig.AudioEncoding = "MP3"
	payload.AudioConfig.SpeakingRate = speakingRate(v)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tts request: %w", err)
	}

	target := s.url
	if !s.serviceAccount {
		target += "?key=" + s.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tts response: %w", err)
	}

	var out synthesizeResponse
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", errors.New(out.Error.Message)
		}
		if len(respBody) > 0 {
			return "", errors.New(string(respBody))
		}
		return "", fmt.Errorf("TTS error %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to unmarshal tts response: %w", decodeErr)
	}
	if out.AudioContent == "" {
		return "", errors.New("no audioContent in TTS response")
	}
	return out.AudioContent, nil
}
