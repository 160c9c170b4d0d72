package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/footyliveliness/api/internal/logic"
	"github.com/footyliveliness/api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// IngestQueue defines the interface for the result ingestion worker pool
type IngestQueue interface {
	Enqueue(result *models.MatchResult) bool
	QueueDepth() int
}

// Pinger is a dependency reported by the readiness check
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelInfo describes the loaded model for the health check
type ModelInfo struct {
	Name     string
	Version  string
	Features int
}

type Config struct {
	WorkerPool IngestQueue
	Checks     map[string]Pinger
	Model      ModelInfo
	Logger     *zap.Logger
	// Services
	Prediction logic.PredictionService
	ModelStats logic.ModelStatsService
	Fixtures   logic.FixtureService
	TeamForm   logic.TeamFormService
	// Auth
	IngestTokenHash string
}

type Handler struct {
	pool            IngestQueue
	checks          map[string]Pinger
	model           ModelInfo
	logger          *zap.SugaredLogger
	prediction      logic.PredictionService
	modelStats      logic.ModelStatsService
	fixtures        logic.FixtureService
	teamForm        logic.TeamFormService
	ingestTokenHash string
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:            cfg.WorkerPool,
		checks:          cfg.Checks,
		model:           cfg.Model,
		logger:          cfg.Logger.Sugar(),
		prediction:      cfg.Prediction,
		modelStats:      cfg.ModelStats,
		fixtures:        cfg.Fixtures,
		teamForm:        cfg.TeamForm,
		ingestTokenHash: cfg.IngestTokenHash,
	}
}
