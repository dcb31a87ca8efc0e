package handlers

import (
	"arc-mindshare-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// 🔓 Public: the ranked board (gateway token still enforced globally)
	app.Get("/projects/:id/leaderboard", leaderboardService.GetProjectLeaderboard)
}
