package models

// AnalysisSignal is the structured output of a text, photo or voice analyzer.
type AnalysisSignal struct {
	Service    string     `bson:"service" json:"service"`
	Urgency    Urgency    `bson:"urgency" json:"urgency"`
	Complexity Complexity `bson:"complexity" json:"complexity"`
	Confidence float64    `bson:"confidence" json:"confidence"`
	Summary    string     `bson:"summary,omitempty" json:"summary,omitempty"`
	Transcript string     `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Source     string     `bson:"source" json:"source"` // "gemini", "rules"
	Explicit   bool       `bson:"-" json:"-"`           // complexity was stated, not defaulted
}

// AnalysisInput is what the client handed us: free text, an image, or both.
type AnalysisInput struct {
	Text      string
	Image     []byte
	ImageMIME string
	Language  string
}
