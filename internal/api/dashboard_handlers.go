package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// QuickAction is a shortcut offered on the dashboard
type QuickAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

// DashboardResponse is the payload of the dashboard shell
type DashboardResponse struct {
	User         SessionUser   `json:"user"`
	Greeting     string        `json:"greeting"`
	QuickActions []QuickAction `json:"quick_actions"`
}

var dashboardQuickActions = []QuickAction{
	{Title: "Create Workflow", Description: "Build a new automation from scratch", Href: "/workflows/new"},
	{Title: "Browse Templates", Description: "Start with pre-built workflows", Href: "/templates"},
	{Title: "Connect Apps", Description: "Link your favorite services", Href: "/connections"},
}

// dashboardHandler godoc
// @Summary Dashboard
// @Description Return the signed-in user's dashboard. Requests without a valid session are redirected to the login page.
// @Tags dashboard
// @Produce json
// @Success 200 {object} DashboardResponse
// @Failure 302 "Redirect to login"
// @Router /dashboard [get]
func (s *Server) dashboardHandler(c *gin.Context) {
	user, exists := getSessionUser(c)
	if !exists || user == nil {
		c.Redirect(http.StatusFound, s.config.Site.LoginPath)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		User:         *user,
		Greeting:     "Welcome back, " + user.DisplayName() + "!",
		QuickActions: dashboardQuickActions,
	})
}
