package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dharti/dharti/bridge/internal/infrastructure/speech"
)

// SpeechHandler serves the speech endpoints. Unlike the prompt path,
// provider failures here are HTTP errors: there is no conversational
// fallback for broken audio.
type SpeechHandler struct {
	provider speech.Provider
	logger   *zap.Logger
}

// NewSpeechHandler creates the handler. provider may be nil when the
// speech channel is disabled.
func NewSpeechHandler(provider speech.Provider, logger *zap.Logger) *SpeechHandler {
	return &SpeechHandler{provider: provider, logger: logger}
}

// TranscribeRequest is the POST /stt body. Audio is base64 LINEAR16.
type TranscribeRequest struct {
	Audio        string `json:"audio" binding:"required"`
	LanguageCode string `json:"language_code"`
}

// SynthesizeRequest is the POST /tts body.
type SynthesizeRequest struct {
	Text         string `json:"text" binding:"required"`
	LanguageCode string `json:"language_code"`
}

// Transcribe converts audio to text.
func (h *SpeechHandler) Transcribe(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech is not enabled"})
		return
	}

	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio is required"})
		return
	}

	transcript, err := h.provider.Transcribe(c.Request.Context(), req.Audio, req.LanguageCode)
	if err != nil {
		h.logger.Error("Transcription failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}

// Synthesize converts text to audio.
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech is not enabled"})
		return
	}

	var req SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	audio, err := h.provider.Synthesize(c.Request.Context(), req.Text, req.LanguageCode)
	if err != nil {
		h.logger.Error("Synthesis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "synthesis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audio": audio})
}
