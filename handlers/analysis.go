package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"m3allem/models"
	"m3allem/services/intelligence"
	"m3allem/services/pricing"
	"m3allem/services/storage"
	"m3allem/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalysisHandler turns text, photos and voice notes into a structured job signal.
// Transcriber and Photos are optional.
type AnalysisHandler struct {
	Analyzer    intelligence.Analyzer
	Transcriber intelligence.Transcriber
	Photos      storage.PhotoStore
}

func NewAnalysisHandler(analyzer intelligence.Analyzer, transcriber intelligence.Transcriber, photos storage.PhotoStore) *AnalysisHandler {
	return &AnalysisHandler{Analyzer: analyzer, Transcriber: transcriber, Photos: photos}
}

type analysisResponse struct {
	Analysis models.AnalysisSignal `json:"analysis"`
	Estimate *models.QuickEstimate `json:"estimate,omitempty"`
	PhotoURL string                `json:"photoUrl,omitempty"`
}

// AnalyzeText handles POST /api/analyze/text.
func (h *AnalysisHandler) AnalyzeText(c *gin.Context) {
	var body struct {
		Text     string `json:"text"`
		City     string `json:"city"`
		Language string `json:"language"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		utils.JSONError(c, http.StatusBadRequest, "text is required", "")
		return
	}
	signal, ok := h.analyze(c, models.AnalysisInput{Text: body.Text, Language: body.Language})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysisResponse{Analysis: signal, Estimate: estimateFor(signal, body.City, body.Text)})
}

// AnalyzePhoto handles POST /api/analyze/photo as multipart with a "photo" file and
// optional "description" and "city" fields.
func (h *AnalysisHandler) AnalyzePhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "photo not provided", err.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "photo unreadable", err.Error())
		return
	}
	defer file.Close()

	photo, err := storage.PreparePhoto("jobs", fileHeader.Filename, file)
	if err != nil {
		utils.RespondError(c, "invalid photo", err)
		return
	}
	description := c.PostForm("description")
	signal, ok := h.analyze(c, models.AnalysisInput{
		Text:      description,
		Image:     photo.Data,
		ImageMIME: photo.ContentType,
		Language:  c.PostForm("language"),
	})
	if !ok {
		return
	}

	resp := analysisResponse{Analysis: signal, Estimate: estimateFor(signal, c.PostForm("city"), description)}
	if h.Photos != nil {
		url, err := h.Photos.UploadJobPhoto(c.Request.Context(), fileHeader.Filename, photo.Reader())
		if err != nil {
			// The analysis is still useful without a stored copy.
			getLogger(c).Warn("AnalyzePhoto: upload failed", zap.Error(err))
		} else {
			resp.PhotoURL = url
		}
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzeVoice handles POST /api/analyze/voice as multipart with an "audio" WAV file.
func (h *AnalysisHandler) AnalyzeVoice(c *gin.Context) {
	if h.Transcriber == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "voice requests are not available", "")
		return
	}
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio not provided", err.Error())
		return
	}
	if fileHeader.Size > intelligence.MaxAudioBytes {
		utils.JSONError(c, http.StatusBadRequest, "audio file too large", "")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio unreadable", err.Error())
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(io.LimitReader(file, intelligence.MaxAudioBytes+1))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio unreadable", err.Error())
		return
	}

	transcript, err := h.Transcriber.Transcribe(c.Request.Context(), audio, c.PostForm("language"))
	if err != nil {
		utils.RespondError(c, "transcription failed", err)
		return
	}
	if strings.TrimSpace(transcript) == "" {
		utils.JSONError(c, http.StatusUnprocessableEntity, "no speech recognized", "")
		return
	}
	signal, ok := h.analyze(c, models.AnalysisInput{Text: transcript, Language: c.PostForm("language")})
	if !ok {
		return
	}
	signal.Transcript = transcript
	c.JSON(http.StatusOK, analysisResponse{Analysis: signal, Estimate: estimateFor(signal, c.PostForm("city"), transcript)})
}

func (h *AnalysisHandler) analyze(c *gin.Context, in models.AnalysisInput) (models.AnalysisSignal, bool) {
	signal, err := h.Analyzer.Analyze(c.Request.Context(), in)
	if errors.Is(err, intelligence.ErrEmptyInput) {
		utils.JSONError(c, http.StatusBadRequest, "nothing to analyze", err.Error())
		return signal, false
	}
	if err != nil {
		utils.RespondError(c, "analysis failed", err)
		return signal, false
	}
	return signal, true
}

// estimateFor prices the detected job when the caller told us where it is.
func estimateFor(signal models.AnalysisSignal, city, description string) *models.QuickEstimate {
	if strings.TrimSpace(city) == "" || signal.Service == "" {
		return nil
	}
	est := pricing.QuickEstimate(models.QuickEstimateParams{
		Service:            signal.Service,
		City:               city,
		Urgency:            signal.Urgency,
		Complexity:         signal.Complexity,
		ComplexityExplicit: signal.Explicit,
		Description:        description,
		AnalyzerConfidence: signal.Confidence,
	})
	return &est
}
