// Package httpapi implements the engine's minimal, unauthenticated HTTP
// surface: enough of the teacher's flat route-registration style
// (main.go's app.Get/app.Patch calls, fiber.Map{"error": ...} responses)
// to expose the latest JobRun, resource inventory, and recommendation
// list per workspace, plus the one user mutation the spec describes —
// acknowledging or dismissing a recommendation.
package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/finopsbridge/engine/internal/store"
)

// New builds the fiber app and registers every route. Auth is out of
// scope (SPEC_FULL.md §6.1); this surface is meant to sit behind a
// trusted network boundary or an API gateway.
func New(st *store.Store) *fiber.App {
	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/workspaces", listWorkspaces(st))
	app.Get("/workspaces/:id/jobs/latest", latestJob(st))
	app.Get("/workspaces/:id/resources", listResources(st))
	app.Get("/workspaces/:id/recommendations", listRecommendations(st))
	app.Patch("/workspaces/:id/recommendations/:recId", updateRecommendationStatus(st))

	return app
}

type workspaceView struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Status    store.ConnectionStatus  `json:"status"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

func listWorkspaces(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workspaces, err := st.ListWorkspaces()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list workspaces"})
		}
		views := make([]workspaceView, 0, len(workspaces))
		for _, ws := range workspaces {
			views = append(views, workspaceView{ID: ws.ID, Name: ws.Name, Status: ws.Status, UpdatedAt: ws.UpdatedAt})
		}
		return c.JSON(views)
	}
}

func latestJob(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		run, err := st.LatestJobRun(id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load latest job run"})
		}
		if run == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no job run for this workspace"})
		}
		return c.JSON(run)
	}
}

func listResources(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		service := c.Query("service")

		resources, err := st.ListResources(id, service)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list resources"})
		}
		return c.JSON(resources)
	}
}

func listRecommendations(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		status := c.Query("status")

		recs, err := st.ListRecommendations(id, status)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list recommendations"})
		}
		return c.JSON(recs)
	}
}

type updateRecommendationRequest struct {
	Status string `json:"status"`
}

func updateRecommendationStatus(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		workspaceID := c.Params("id")
		recID := c.Params("recId")

		var body updateRecommendationRequest
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		switch store.RecommendationStatus(body.Status) {
		case store.RecAcknowledged, store.RecDismissed:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be acknowledged or dismissed"})
		}

		err := st.SetRecommendationStatus(workspaceID, recID, store.RecommendationStatus(body.Status))
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "recommendation not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update recommendation"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
