// Package speech wraps the external speech service used for the voice
// channel. Audio travels as base64 both ways: LINEAR16 in, MP3 out.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/dharti/dharti/bridge/pkg/errors"
	"go.uber.org/zap"
)

// DefaultLanguage is the recognition/synthesis language when the
// caller does not specify one.
const DefaultLanguage = "en-IN"

// Provider converts between speech and text.
type Provider interface {
	// Transcribe recognizes base64-encoded LINEAR16 audio and returns
	// the transcript. An empty transcript is not an error — silence is
	// a valid recording.
	Transcribe(ctx context.Context, base64Audio, languageCode string) (string, error)

	// Synthesize renders text to base64-encoded MP3 audio.
	Synthesize(ctx context.Context, text, languageCode string) (string, error)
}

// HTTPProvider talks to a speech service over HTTP.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPProvider creates a speech provider against the given base URL.
func NewHTTPProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "speech-provider")),
	}
}

var _ Provider = (*HTTPProvider)(nil)

type recognizeRequest struct {
	Audio        string `json:"audio"`
	LanguageCode string `json:"language_code"`
}

type recognizeResponse struct {
	Transcript string `json:"transcript"`
}

type synthesizeRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

type synthesizeResponse struct {
	Audio string `json:"audio"`
}

// Transcribe implements Provider.
func (p *HTTPProvider) Transcribe(ctx context.Context, base64Audio, languageCode string) (string, error) {
	if languageCode == "" {
		languageCode = DefaultLanguage
	}

	var out recognizeResponse
	err := p.post(ctx, "/recognize", recognizeRequest{
		Audio:        base64Audio,
		LanguageCode: languageCode,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Transcript, nil
}

// Synthesize implements Provider.
func (p *HTTPProvider) Synthesize(ctx context.Context, text, languageCode string) (string, error) {
	if languageCode == "" {
		languageCode = DefaultLanguage
	}

	var out synthesizeResponse
	err := p.post(ctx, "/synthesize", synthesizeRequest{
		Text:         text,
		LanguageCode: languageCode,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Audio, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.NewInternalError("encode speech request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.NewInternalError("build speech request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return pkgerrors.NewSpeechError("speech service unreachable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.NewSpeechError("read speech response", err)
	}

	p.logger.Debug("Speech service call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.NewSpeechError(
			fmt.Sprintf("speech service returned %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return pkgerrors.NewSpeechError("speech response is not valid JSON", err)
	}
	return nil
}
