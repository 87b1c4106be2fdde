package intelligence

import (
	"context"
	"errors"

	"m3allem/models"
	"m3allem/utils"

	"go.uber.org/zap"
)

// ErrEmptyInput is returned when neither text nor image was provided.
var ErrEmptyInput = errors.New("nothing to analyze")

// Analyzer turns a free-form job request into a structured signal.
type Analyzer interface {
	Analyze(ctx context.Context, in models.AnalysisInput) (models.AnalysisSignal, error)
}

// Transcriber converts a voice request into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// FallbackAnalyzer asks Primary first and answers from the keyword rules when the
// primary is missing, fails, or names a service outside the taxonomy.
type FallbackAnalyzer struct {
	Primary Analyzer
	Rules   *RuleAnalyzer
	Logger  *zap.Logger
}

func NewFallbackAnalyzer(primary Analyzer, logger *zap.Logger) *FallbackAnalyzer {
	return &FallbackAnalyzer{Primary: primary, Rules: NewRuleAnalyzer(), Logger: utils.LoggerOr(logger)}
}

func (f *FallbackAnalyzer) Analyze(ctx context.Context, in models.AnalysisInput) (models.AnalysisSignal, error) {
	rules := f.Rules
	if rules == nil {
		rules = NewRuleAnalyzer()
	}
	if f.Primary == nil {
		return rules.Analyze(ctx, in)
	}

	signal, err := f.Primary.Analyze(ctx, in)
	if err != nil {
		if errors.Is(err, ErrEmptyInput) {
			return models.AnalysisSignal{}, err
		}
		utils.LoggerOr(f.Logger).Warn("Analyze: primary analyzer failed, using rules", zap.Error(err))
		if in.Text == "" {
			return models.AnalysisSignal{}, err
		}
		return rules.Analyze(ctx, in)
	}

	if _, ok := models.LookupService(signal.Service); !ok && in.Text != "" {
		fallback, rerr := rules.Analyze(ctx, in)
		if rerr == nil && fallback.Service != "" {
			signal.Service = fallback.Service
		}
	}
	return signal, nil
}
