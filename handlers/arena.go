package handlers

import (
	"arc-mindshare-system/middleware"
	"arc-mindshare-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupArenaRoutes(app *fiber.App, arenaService *services.ArenaService, backfillService *services.BackfillService) {
	// 🔓 Public reads
	app.Get("/projects/:id/arenas", arenaService.GetProjectArenas)
	app.Get("/arenas/:id", arenaService.GetArenaByID)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/arenas/:id/join", arenaService.JoinArena)

	// 🔒 Super-admin only: lifecycle control plane
	admin := secured.Group("/admin", middleware.RequireSuperAdmin())
	admin.Post("/arenas", arenaService.CreateArena)
	admin.Post("/arenas/:id/activate", arenaService.ActivateArena)
	admin.Post("/arenas/:id/end", arenaService.EndArena)
	admin.Post("/arenas/:id/adjustments", arenaService.AdjustPoints)
	admin.Post("/backfill", backfillService.RunBackfill)
}
