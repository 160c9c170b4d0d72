package models

import "time"

// RankedMatch is one fixture with its liveliness forecast and position in the ranking
type RankedMatch struct {
	Rank       int           `json:"rank"`
	MatchID    string        `json:"matchId,omitempty"`
	Round      int           `json:"round"`
	HomeTeam   string        `json:"home"`
	AwayTeam   string        `json:"away"`
	HomeTeamID int64         `json:"homeTeamId,omitempty"`
	AwayTeamID int64         `json:"awayTeamId,omitempty"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Status     FixtureStatus `json:"status"`

	PredictedLiveliness float64 `json:"predicted_liveliness"`
	Confidence          int     `json:"confidence"`
	IsHighStakes        bool    `json:"isHighStakes"`
	HomePosition        int     `json:"homePosition,omitempty"`
	AwayPosition        int     `json:"awayPosition,omitempty"`
	HomeForm            string  `json:"homeForm,omitempty"`
	AwayForm            string  `json:"awayForm,omitempty"`

	ActualXG         *XGPair  `json:"actualXG,omitempty"`
	ActualScore      *Score   `json:"actualScore,omitempty"`
	ActualLiveliness *float64 `json:"actual_liveliness,omitempty"`
	KeyFactors       []Factor `json:"key_factors,omitempty"`
}

// Factor is a single feature's contribution to a prediction
type Factor struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// MatchPrediction is the response for a single predict call
type MatchPrediction struct {
	HomeTeam            string             `json:"home"`
	AwayTeam            string             `json:"away"`
	PredictedLiveliness float64            `json:"predicted_liveliness"`
	Confidence          int                `json:"confidence"`
	IsHighStakes        bool               `json:"isHighStakes"`
	KeyFactors          []Factor           `json:"key_factors"`
	Features            map[string]float64 `json:"features,omitempty"`
	Timestamp           time.Time          `json:"timestamp"`
}

// RankingQuery narrows the ranked fixture list
type RankingQuery struct {
	Round  *int          `json:"round,omitempty"`
	Status FixtureStatus `json:"status,omitempty"`
	Filter string        `json:"filter,omitempty"`
	Limit  int           `json:"limit,omitempty"`
}

// ModelPerformance holds offline or backtested evaluation metrics
type ModelPerformance struct {
	R2           float64 `json:"r2" yaml:"r2"`
	MAE          float64 `json:"mae" yaml:"mae"`
	RMSE         float64 `json:"rmse" yaml:"rmse"`
	Spearman     float64 `json:"spearman_rho" yaml:"spearman"`
	Top10HitRate float64 `json:"top10_hit_rate" yaml:"top10_hit_rate"`
}

// ModelStats describes the loaded model for the stats endpoint
type ModelStats struct {
	Model           string           `json:"model"`
	Version         string           `json:"version"`
	Target          string           `json:"target"`
	Features        int              `json:"features"`
	Performance     ModelPerformance `json:"performance"`
	TrainingSeason  string           `json:"training_season"`
	TrainingMatches int              `json:"training_matches"`
	Alpha           float64          `json:"alpha,omitempty"`
	L1Ratio         float64          `json:"l1_ratio,omitempty"`
	TopCoefficients []Factor         `json:"top_coefficients"`
}

// BacktestReport compares predictions with realised liveliness on finished fixtures
type BacktestReport struct {
	Season              string             `json:"season,omitempty"`
	Matches             int                `json:"matches"`
	Performance         ModelPerformance   `json:"performance"`
	TopKHitRate         map[string]float64 `json:"top_k_hit_rate"`
	PrecisionAtK        map[string]float64 `json:"precision_at_k"`
	NDCG                map[string]float64 `json:"ndcg"`
	CategoricalAccuracy float64            `json:"categorical_accuracy"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

// PredictionRecord is one logged prediction from a ranking run
type PredictionRecord struct {
	RunID     string
	MatchID   string
	Round     int
	HomeTeam  string
	AwayTeam  string
	Predicted float64
	Actual    float64
	HasActual bool
	Model     string
	CreatedAt time.Time
}
