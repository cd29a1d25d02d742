package handlers

import (
	"net/http"
	"strconv"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// Search runs the global keyword search across clients, cases, contacts,
// and documents
func Search(c echo.Context) error {
	query := c.QueryParam("q")

	limit := 10
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	// Consultants only get case hits for their own cases
	assigneeID := ""
	currentUser := middleware.GetCurrentUser(c)
	if currentUser.Role == models.RoleConsultant {
		assigneeID = currentUser.ID
	}

	searcher := services.NewSearchService(db.DB)
	results, err := searcher.Search(query, limit, assigneeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}

	return c.JSON(http.StatusOK, results)
}
