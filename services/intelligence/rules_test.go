package intelligence

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"m3allem/models"
)

func TestRuleAnalyzer(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		service    string
		urgency    models.Urgency
		complexity models.Complexity
		explicit   bool
		confidence float64
	}{
		{"plumbing emergency", "Fuite d'eau sous l'évier, urgent", models.ServicePlumbing, models.UrgencyEmergency, models.ComplexityModerate, false, 0.75},
		{"single keyword", "La clim ne refroidit plus", models.ServiceAC, models.UrgencyNormal, models.ComplexityModerate, false, 0.6},
		{"small and flexible", "Petite prise cassée, pas pressé", models.ServiceElectrical, models.UrgencyLow, models.ComplexitySimple, true, 0.6},
		{"darija", "kahraba mqat3a daba", models.ServiceElectrical, models.UrgencyEmergency, models.ComplexityModerate, false, 0.6},
		{"short keyword is a whole word", "douche bouchée", models.ServicePlumbing, models.UrgencyNormal, models.ComplexityModerate, false, 0.6},
		{"no service", "Rénovation complète de la salle", "", models.UrgencyNormal, models.ComplexityComplex, true, 0.3},
	}

	r := NewRuleAnalyzer()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Analyze(context.Background(), models.AnalysisInput{Text: tc.text})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Service != tc.service {
				t.Errorf("service = %q, want %q", got.Service, tc.service)
			}
			if got.Urgency != tc.urgency {
				t.Errorf("urgency = %q, want %q", got.Urgency, tc.urgency)
			}
			if got.Complexity != tc.complexity || got.Explicit != tc.explicit {
				t.Errorf("complexity = %q/%v, want %q/%v", got.Complexity, got.Explicit, tc.complexity, tc.explicit)
			}
			if got.Confidence != tc.confidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tc.confidence)
			}
			if got.Source != "rules" {
				t.Errorf("source = %q", got.Source)
			}
		})
	}
}

func TestRuleAnalyzerEmpty(t *testing.T) {
	_, err := NewRuleAnalyzer().Analyze(context.Background(), models.AnalysisInput{Text: "   "})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

type stubAnalyzer struct {
	signal models.AnalysisSignal
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, in models.AnalysisInput) (models.AnalysisSignal, error) {
	s.calls++
	return s.signal, s.err
}

func TestFallbackAnalyzer(t *testing.T) {
	in := models.AnalysisInput{Text: "robinet qui fuit"}

	t.Run("primary answer kept", func(t *testing.T) {
		primary := &stubAnalyzer{signal: models.AnalysisSignal{Service: models.ServiceAC, Source: "gemini"}}
		got, err := NewFallbackAnalyzer(primary, nil).Analyze(context.Background(), in)
		if err != nil || got.Service != models.ServiceAC || got.Source != "gemini" {
			t.Fatalf("got %+v, %v", got, err)
		}
	})

	t.Run("primary failure uses rules", func(t *testing.T) {
		primary := &stubAnalyzer{err: errors.New("quota exceeded")}
		got, err := NewFallbackAnalyzer(primary, nil).Analyze(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Service != models.ServicePlumbing || got.Source != "rules" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("unknown service replaced", func(t *testing.T) {
		primary := &stubAnalyzer{signal: models.AnalysisSignal{Service: "astrologie", Urgency: models.UrgencyHigh, Source: "gemini"}}
		got, err := NewFallbackAnalyzer(primary, nil).Analyze(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Service != models.ServicePlumbing || got.Urgency != models.UrgencyHigh {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("no primary", func(t *testing.T) {
		got, err := NewFallbackAnalyzer(nil, nil).Analyze(context.Background(), in)
		if err != nil || got.Source != "rules" {
			t.Fatalf("got %+v, %v", got, err)
		}
	})
}

func TestParseGeminiAnswer(t *testing.T) {
	raw := "```json\n{\"service\":\"Électricité\",\"urgency\":\"urgent\",\"complexity\":\"complex\",\"confidence\":1.4,\"summary\":\"prise brûlée\"}\n```"
	got, err := parseGeminiAnswer(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.AnalysisSignal{
		Service:    models.ServiceElectrical,
		Urgency:    models.UrgencyEmergency,
		Complexity: models.ComplexityComplex,
		Confidence: 1,
		Summary:    "prise brûlée",
		Source:     "gemini",
		Explicit:   true,
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if _, err := parseGeminiAnswer("not json"); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func wav(rate uint32, channels uint16, seconds uint32) []byte {
	h := waveHeader{
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    rate,
		BitsPerSample: 16,
		BlockAlign:    2 * channels,
		FmtSize:       16,
	}
	copy(h.RiffTag[:], "RIFF")
	copy(h.WaveTag[:], "WAVE")
	copy(h.FmtTag[:], "fmt ")
	copy(h.DataTag[:], "data")
	h.ByteRate = rate * uint32(channels) * 2
	h.DataSize = h.ByteRate * seconds
	h.FileSize = 36 + h.DataSize

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

func TestParseWaveHeader(t *testing.T) {
	h, err := parseWaveHeader(wav(16000, 1, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.duration() != 12 || !h.speechReady() {
		t.Fatalf("duration=%v ready=%v", h.duration(), h.speechReady())
	}

	stereo, err := parseWaveHeader(wav(44100, 2, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stereo.speechReady() {
		t.Fatal("stereo 44.1kHz should need conversion")
	}

	if _, err := parseWaveHeader([]byte("RIFF")); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	bad := wav(16000, 1, 1)
	copy(bad[8:12], "AVI ")
	if _, err := parseWaveHeader(bad); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeRejectsLongAudio(t *testing.T) {
	s := &SpeechTranscriber{}
	if _, err := s.Transcribe(context.Background(), wav(16000, 1, 90), "fr-FR"); !errors.Is(err, ErrAudioTooLong) {
		t.Fatalf("expected ErrAudioTooLong, got %v", err)
	}
}
