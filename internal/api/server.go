package api

import (
	"context"
	"errors"

	"sourcing-agent/internal/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner is the single pipeline entry point the HTTP layer wraps.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Report, error)
}

// Server is the thin REST surface over the sourcing pipeline.
type Server struct {
	app    *fiber.App
	runner Runner
	logger *zap.Logger
}

func NewServer(runner Runner, logger *zap.Logger) *Server {
	s := &Server{
		runner: runner,
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "sourcing-agent",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())

	app.Get("/", s.root)
	app.Get("/health", s.health)
	app.Get("/sample-request", s.sampleRequest)
	app.Post("/source-candidates", s.sourceCandidates)

	s.app = app
	return s
}

func (s *Server) Listen(address string) error {
	s.logger.Info("starting http server", zap.String("address", address))
	return s.app.Listen(address)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "sourcing-agent",
		"endpoints": fiber.Map{
			"health":            "GET /health",
			"sample_request":    "GET /sample-request",
			"source_candidates": "POST /source-candidates",
		},
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "sourcing-agent",
	})
}

func (s *Server) sampleRequest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sample_request": pipeline.Request{
			JobDescription: "Software Engineer, ML Research - Windsurf\nLocation: Mountain View, CA (On-site)\nLooking for candidates with experience in LLMs and production ML systems.",
			CandidateNames: []string{"Andrej Karpathy", "Shreya Shankar", "Sebastian Ruder"},
		},
		"usage": "POST this JSON to /source-candidates",
	})
}

// sourceCandidates runs the full pipeline for the posted request.
// POST /source-candidates
func (s *Server) sourceCandidates(c *fiber.Ctx) error {
	var req pipeline.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID))

	log.Info("sourcing request received",
		zap.Int("candidates", len(req.CandidateNames)),
	)

	report, err := s.runner.Run(c.Context(), req)
	if err != nil {
		var inputErr *pipeline.InputError
		if errors.As(err, &inputErr) {
			return fiber.NewError(fiber.StatusBadRequest, inputErr.Error())
		}
		log.Error("pipeline run failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "pipeline execution failed")
	}

	return c.JSON(report)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"detail": err.Error(),
	})
}
