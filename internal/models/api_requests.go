package models

// PredictRequest asks for one match forecast. Either team names, explicit
// features, or both may be given; explicit features win.
type PredictRequest struct {
	ID       string             `json:"id,omitempty"`
	Home     string             `json:"home" validate:"required_without=Features"`
	Away     string             `json:"away" validate:"required_without=Features"`
	Round    int                `json:"round,omitempty" validate:"gte=0"`
	Features map[string]float64 `json:"features,omitempty"`
}

type BatchPredictRequest struct {
	Matches []PredictRequest `json:"matches" validate:"required,min=1,max=100,dive"`
}

type BatchPredictResponse struct {
	Predictions []RankedMatch `json:"predictions"`
	Count       int           `json:"count"`
}

type RefreshFixturesResponse struct {
	Status        string `json:"status"`
	FixturesCount int    `json:"fixtures_count"`
	Source        string `json:"source"`
	Message       string `json:"message"`
}
