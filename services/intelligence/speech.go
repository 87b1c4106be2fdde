package intelligence

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"m3allem/models"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

const (
	MaxAudioSeconds = 60
	MaxAudioBytes   = 5 * 1024 * 1024
	targetRate      = 16000
)

var (
	ErrInvalidAudio = models.NewValidationError("audio", "expected a PCM WAV file")
	ErrAudioTooLong = models.NewValidationError("audio", fmt.Sprintf("recording exceeds %d seconds", MaxAudioSeconds))
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, ErrInvalidAudio
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &header); err != nil {
		return nil, ErrInvalidAudio
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, ErrInvalidAudio
	}
	return &header, nil
}

// duration returns the recording length in seconds.
func (h *waveHeader) duration() float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}

// speechReady reports whether the recording can go to the API without conversion.
func (h *waveHeader) speechReady() bool {
	return h.AudioFormat == 1 && h.NumChannels == 1 && h.BitsPerSample == 16 && h.SampleRate == targetRate
}

// SpeechTranscriber sends short WAV recordings to Google Cloud Speech.
type SpeechTranscriber struct {
	client *speech.Client
}

func NewSpeechTranscriber(ctx context.Context, credentialsFile string) (*SpeechTranscriber, error) {
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &SpeechTranscriber{client: client}, nil
}

func (s *SpeechTranscriber) Close() error {
	return s.client.Close()
}

// Transcribe returns the best transcript for a recording in French, with
// Moroccan Arabic as an alternative language.
func (s *SpeechTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) > MaxAudioBytes {
		return "", models.NewValidationError("audio", "file too large")
	}

	// 1. Validate the container
	header, err := parseWaveHeader(audio)
	if err != nil {
		return "", err
	}
	if header.duration() > MaxAudioSeconds {
		return "", ErrAudioTooLong
	}

	// 2. Resample to LINEAR16 mono 16kHz when needed
	if !header.speechReady() {
		if audio, err = convertAudio(ctx, audio); err != nil {
			return "", err
		}
	}

	if language == "" {
		language = "fr-FR"
	}
	alternatives := []string{"ar-MA"}
	if language == "ar-MA" {
		alternatives = []string{"fr-FR"}
	}

	// 3. Recognize
	resp, err := s.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            targetRate,
			LanguageCode:               language,
			AlternativeLanguageCodes:   alternatives,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
		}
	}
	transcript := strings.Join(parts, " ")
	if transcript == "" {
		return "", errors.New("no speech detected")
	}
	return transcript, nil
}

// convertAudio pipes the recording through ffmpeg.
func convertAudio(ctx context.Context, audio []byte) ([]byte, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in system PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", "pipe:0",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(audio)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return stdout.Bytes(), nil
}
