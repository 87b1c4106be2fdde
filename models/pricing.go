package models

// PricingParams is the input of the dynamic estimator.
type PricingParams struct {
	ServiceType   string  `json:"serviceType"`
	City          string  `json:"city"`
	Urgency       string  `json:"urgency"`
	ScheduledDate string  `json:"scheduledDate"` // YYYY-MM-DD
	ScheduledTime string  `json:"scheduledTime"` // HH:MM
	TechnicianID  string  `json:"technicianId,omitempty"`
	DistanceKm    float64 `json:"distanceKm,omitempty"`
	Complexity    string  `json:"complexity,omitempty"`
	JobID         string  `json:"jobId,omitempty"` // excluded from the demand count
}

// PriceAdjustment is one applied step. Exactly one of Multiplier or Addition is set.
type PriceAdjustment struct {
	Factor      string  `bson:"factor" json:"factor"`
	Multiplier  float64 `bson:"multiplier,omitempty" json:"multiplier,omitempty"`
	Addition    float64 `bson:"addition,omitempty" json:"addition,omitempty"`
	Description string  `bson:"description" json:"description"`
}

type PriceBreakdown struct {
	Labor     float64 `bson:"labor" json:"labor"`
	Transport float64 `bson:"transport" json:"transport"`
	Surge     float64 `bson:"surge" json:"surge"`
	Premium   float64 `bson:"premium" json:"premium"`
	Discount  float64 `bson:"discount" json:"discount"`
}

type PricingResult struct {
	BasePrice   float64           `bson:"basePrice" json:"basePrice"`
	FinalPrice  float64           `bson:"finalPrice" json:"finalPrice"`
	Currency    string            `bson:"currency" json:"currency"`
	Unit        string            `bson:"unit" json:"unit"`
	Multipliers []PriceAdjustment `bson:"multipliers" json:"multipliers"`
	Savings     float64           `bson:"savings" json:"savings"`
	Explanation string            `bson:"explanation" json:"explanation"`
	Breakdown   PriceBreakdown    `bson:"breakdown" json:"breakdown"`
	Confidence  float64           `bson:"confidence" json:"confidence"`
}

// QuickEstimateParams feeds the min/likely/max estimate shown at job creation.
type QuickEstimateParams struct {
	Service            string     `json:"service"`
	City               string     `json:"city"`
	Urgency            Urgency    `json:"urgency"`
	Complexity         Complexity `json:"complexity"`
	ComplexityExplicit bool       `json:"-"`
	ScheduledDate      string     `json:"scheduledDate"`
	ScheduledTime      string     `json:"scheduledTime"`
	Description        string     `json:"description"`
	AnalyzerConfidence float64    `json:"analyzerConfidence,omitempty"`
}

type QuickEstimate struct {
	BasePrice      float64 `json:"basePrice"`
	CityMultiplier float64 `json:"cityMultiplier"`
	AdjustedBase   float64 `json:"adjustedBase"`
	UrgencyFee     float64 `json:"urgencyFee"`
	ComplexityFee  float64 `json:"complexityFee"`
	TimePremium    float64 `json:"timePremium"`
	MinCost        float64 `json:"minCost"`
	LikelyCost     float64 `json:"likelyCost"`
	MaxCost        float64 `json:"maxCost"`
	Confidence     float64 `json:"confidence"`
	Currency       string  `json:"currency"`
}

type JobCost struct {
	HourlyPrice float64 `json:"hourlyPrice"`
	Hours       float64 `json:"hours"`
	Labor       float64 `json:"labor"`
	Materials   float64 `json:"materials"`
	ServiceFee  float64 `json:"serviceFee"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

type DiscountResult struct {
	DiscountedPrice float64 `json:"discountedPrice"`
	DiscountAmount  float64 `json:"discountAmount"`
	Valid           bool    `json:"valid"`
	Message         string  `json:"message"`
}
