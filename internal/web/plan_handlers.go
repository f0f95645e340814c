package web

import (
	"strconv"
	"strings"

	"travelshare/internal/middleware"
	"travelshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

const msgPlanFailed = "Failed to plan trip."

type planPage struct {
	City    string
	Concept string
	Budget  string
	Days    string
	People  string

	Plan  string
	Error string
}

// PlanForm handles GET /plan with an empty form.
func (s *Server) PlanForm(c *fiber.Ctx) error {
	return c.Render("plan", &planPage{})
}

// PlanTrip handles the planner form submission. Budget, days and people are
// parsed as integers; the response carries exactly one of the plan text or
// the generic failure message.
func (s *Server) PlanTrip(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := &planPage{
		City:    strings.TrimSpace(c.FormValue("city")),
		Concept: strings.TrimSpace(c.FormValue("concept")),
		Budget:  c.FormValue("budget"),
		Days:    c.FormValue("days"),
		People:  c.FormValue("people"),
	}

	req := models.PlanRequest{
		City:    page.City,
		Concept: page.Concept,
		Budget:  formInt(page.Budget),
		Days:    formInt(page.Days),
		People:  formInt(page.People),
	}

	plan, err := s.api.PlanTrip(ctx, req)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to plan trip",
			"error", err, "city", req.City, "days", req.Days)
		page.Error = msgPlanFailed
		return c.Status(fiber.StatusBadGateway).Render("plan", page)
	}

	page.Plan = plan
	return c.Render("plan", page)
}

// formInt parses a form value as an integer, zero when absent or malformed.
func formInt(v string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}
