// Package reports computes scoped aggregate views over the case set.
// Every figure is derived from the cases the calling actor may see, so
// two actors asking for the same report can receive different numbers.
package reports

// Bucket is one row of a breakdown: a label and how many scoped cases
// carry it.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Breakdown is a single-dimension distribution over the scoped case set.
type Breakdown struct {
	Dimension string   `json:"dimension"`
	Total     int      `json:"total"`
	Buckets   []Bucket `json:"buckets"`
}

// TrendPoint is one month of case submissions, keyed YYYY-MM.
type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Summary is the overview report: headline counts plus every breakdown
// computed in one pass.
type Summary struct {
	TotalCases     int            `json:"total_cases"`
	ByStatus       map[string]int `json:"by_status"`
	ResolutionRate float64        `json:"resolution_rate"`
	ViolenceTypes  *Breakdown     `json:"violence_types"`
	AgeBuckets     *Breakdown     `json:"age_buckets"`
	Regions        *Breakdown     `json:"regions"`
	Relationships  *Breakdown     `json:"relationships"`
	MaritalStatus  *Breakdown     `json:"marital_status"`
	Disability     *Breakdown     `json:"disability"`
	Trend          []TrendPoint   `json:"trend"`
}
