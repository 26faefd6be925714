package screening

// Classification buckets a composite score.
type Classification string

const (
	ClassificationHit    Classification = "HIT"
	ClassificationReview Classification = "REVIEW"
	ClassificationClear  Classification = "CLEAR"
)

// Query is a single screening request against the entity store.
type Query struct {
	Name        string
	DateOfBirth string
	CountryCode string
}

// ScoredMatch is one candidate entity that survived the name floor, with its
// per-field scores and final classification.
type ScoredMatch struct {
	EntityID       string         `json:"entity_id"`
	SourceListID   string         `json:"source_list_id"`
	MatchedAlias   string         `json:"matched_alias"`
	NameScore      int            `json:"name_score"`
	DateScore      int            `json:"date_score"`
	CountryScore   int            `json:"country_score"`
	Composite      int            `json:"composite_score"`
	Classification Classification `json:"classification"`
}

// Weights are the composite blend. When the query omits a field, its weight
// is redistributed proportionally across the fields that are present.
type Weights struct {
	Name    float64
	Date    float64
	Country float64
}

// Thresholds classify a composite score. NameFloor prunes candidates before
// secondary fields are even looked at.
type Thresholds struct {
	Hit       int
	Review    int
	NameFloor int
}

// Config carries all tunables of the matching engine.
type Config struct {
	Weights    Weights
	Thresholds Thresholds
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Name:    0.7,
			Date:    0.15,
			Country: 0.15,
		},
		Thresholds: Thresholds{
			Hit:       90,
			Review:    60,
			NameFloor: 60,
		},
	}
}
