package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/shreeshk9/group-trip-planner/internal/config"
	"github.com/shreeshk9/group-trip-planner/internal/consensus"
	"github.com/shreeshk9/group-trip-planner/internal/db"
	"github.com/shreeshk9/group-trip-planner/internal/narrative"
	"github.com/shreeshk9/group-trip-planner/internal/region"
	"github.com/shreeshk9/group-trip-planner/internal/session"
	"github.com/shreeshk9/group-trip-planner/internal/stream"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	Redis   *redis.Client
	Stream  *stream.Hub
	Store   *session.Store
	Regions region.Database
	Planner *consensus.Planner

	validate *validator.Validate
}

func NewServer(cfg config.Config, archive db.Querier, redisClient *redis.Client,
	regions region.Database, gen narrative.Generator, policy consensus.Policy) *Server {

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		Cfg:      cfg,
		Redis:    redisClient,
		Stream:   stream.NewHub(redisClient),
		Store:    session.NewStore(redisClient, archive),
		Regions:  regions,
		Planner:  consensus.NewPlanner(regions, gen, policy, nil),
		validate: validator.New(),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	sessions := s.App.Group("/sessions")
	sessions.Post("/", s.createSession)
	sessions.Get("/:id", s.getSession)
	sessions.Post("/:id/preferences", s.submitPreference)
	sessions.Get("/:id/progress", s.getProgress)
	sessions.Post("/:id/consensus", s.runConsensus)
	sessions.Get("/:id/results", s.getResults)

	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
