package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"m3allem/models"
	"m3allem/services/intelligence"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakePhotoStore struct {
	uploaded []string
}

func (f *fakePhotoStore) UploadJobPhoto(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !bytes.Equal(data, pngHeader) {
		return "", io.ErrUnexpectedEOF
	}
	f.uploaded = append(f.uploaded, name)
	return "https://cdn.example.ma/jobs/" + name, nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, ref string) error { return nil }

type fakeTranscriber struct {
	text string
}

func (f fakeTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	return f.text, nil
}

func analysisRouter(h *AnalysisHandler) *gin.Engine {
	r := gin.New()
	r.POST("/analyze/text", h.AnalyzeText)
	r.POST("/analyze/photo", h.AnalyzePhoto)
	r.POST("/analyze/voice", h.AnalyzeVoice)
	return r
}

func multipartRequest(t *testing.T, path, fileField, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile(fileField, fileName)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	fw.Write(data)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeAnalysis(t *testing.T, w *httptest.ResponseRecorder) analysisResponse {
	t.Helper()
	var resp analysisResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestAnalyzeText(t *testing.T) {
	r := analysisRouter(NewAnalysisHandler(intelligence.NewRuleAnalyzer(), nil, nil))

	tests := []struct {
		name     string
		body     string
		want     int
		service  string
		estimate bool
	}{
		{"with city", `{"text":"Fuite d'eau sous l'évier, urgent","city":"Casablanca"}`, http.StatusOK, models.ServicePlumbing, true},
		{"without city", `{"text":"La clim ne refroidit plus"}`, http.StatusOK, models.ServiceAC, false},
		{"blank text", `{"text":"   "}`, http.StatusBadRequest, "", false},
		{"not json", `fuite`, http.StatusBadRequest, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analyze/text", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			resp := decodeAnalysis(t, w)
			if resp.Analysis.Service != tt.service {
				t.Errorf("service %q, want %q", resp.Analysis.Service, tt.service)
			}
			if (resp.Estimate != nil) != tt.estimate {
				t.Errorf("estimate present = %v, want %v", resp.Estimate != nil, tt.estimate)
			}
			if resp.Estimate != nil && resp.Estimate.LikelyCost <= 0 {
				t.Errorf("unexpected estimate %+v", resp.Estimate)
			}
		})
	}
}

func TestAnalyzePhotoUploadsCopy(t *testing.T) {
	photos := &fakePhotoStore{}
	r := analysisRouter(NewAnalysisHandler(intelligence.NewRuleAnalyzer(), nil, photos))

	req := multipartRequest(t, "/analyze/photo", "photo", "evier.png", pngHeader, map[string]string{
		"description": "Fuite d'eau sous l'évier",
		"city":        "Rabat",
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	resp := decodeAnalysis(t, w)
	if resp.Analysis.Service != models.ServicePlumbing || resp.Estimate == nil {
		t.Fatalf("unexpected analysis %+v", resp)
	}
	if len(photos.uploaded) != 1 || resp.PhotoURL != "https://cdn.example.ma/jobs/evier.png" {
		t.Fatalf("photo not stored: %v / %q", photos.uploaded, resp.PhotoURL)
	}
}

func TestAnalyzePhotoRejectsNonImage(t *testing.T) {
	r := analysisRouter(NewAnalysisHandler(intelligence.NewRuleAnalyzer(), nil, nil))
	req := multipartRequest(t, "/analyze/photo", "photo", "note.png", []byte("ceci n'est pas une image"), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestAnalyzeVoice(t *testing.T) {
	audio := []byte("RIFF....WAVE")

	t.Run("no transcriber", func(t *testing.T) {
		r := analysisRouter(NewAnalysisHandler(intelligence.NewRuleAnalyzer(), nil, nil))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "/analyze/voice", "audio", "note.wav", audio, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status %d, want 503", w.Code)
		}
	})

	t.Run("transcribed", func(t *testing.T) {
		h := NewAnalysisHandler(intelligence.NewRuleAnalyzer(), fakeTranscriber{text: "La clim ne refroidit plus"}, nil)
		w := httptest.NewRecorder()
		analysisRouter(h).ServeHTTP(w, multipartRequest(t, "/analyze/voice", "audio", "note.wav", audio, map[string]string{"language": "fr-FR"}))
		if w.Code != http.StatusOK {
			t.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
		resp := decodeAnalysis(t, w)
		if resp.Analysis.Service != models.ServiceAC || resp.Analysis.Transcript != "La clim ne refroidit plus" {
			t.Fatalf("unexpected analysis %+v", resp.Analysis)
		}
	})

	t.Run("silence", func(t *testing.T) {
		h := NewAnalysisHandler(intelligence.NewRuleAnalyzer(), fakeTranscriber{text: " "}, nil)
		w := httptest.NewRecorder()
		analysisRouter(h).ServeHTTP(w, multipartRequest(t, "/analyze/voice", "audio", "note.wav", audio, nil))
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status %d, want 422", w.Code)
		}
	})
}
