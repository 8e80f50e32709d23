package main

import (
	"crm-platform/internal/httpapi"
	"crm-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", h.Health)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/auth/me", h.Me)

		// USER admin routes
		adminUsers := v1.Group("/users")
		adminUsers.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			adminUsers.GET("", h.ListUsers)
			adminUsers.POST("/:id/deactivate", h.DeactivateUser)
		}

		// LEAD routes
		leads := v1.Group("/leads")
		leads.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAgent))
		{
			leads.POST("", h.CreateLead)
			leads.GET("", h.ListLeads)
			leads.POST("/upload-csv", h.ImportLeads)
			leads.GET("/:id", h.GetLead)
			leads.PUT("/:id", h.UpdateLead)
			leads.DELETE("/:id", h.DeleteLead)
		}

		// CAMPAIGN routes
		campaigns := v1.Group("/campaigns")
		campaigns.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAgent))
		{
			campaigns.POST("", h.CreateCampaign)
			campaigns.GET("", h.ListCampaigns)
			campaigns.GET("/:id", h.GetCampaign)
			campaigns.PUT("/:id", h.UpdateCampaign)
			campaigns.DELETE("/:id", h.DeleteCampaign)
			campaigns.GET("/:id/stats", h.CampaignStats)

			// Starting a calling session is agent work only.
			campaigns.POST("/:id/start", rbac.RequireAnyRole(rbac.RoleAgent), h.StartCampaign)
		}

		// CALL LOG routes
		v1.POST("/calls", rbac.RequireAnyRole(rbac.RoleAgent), h.CreateCallLog)

		// MEETING routes
		meetings := v1.Group("/meetings")
		{
			meetings.POST("", h.CreateMeeting)
			meetings.GET("", h.ListMeetings)
			meetings.GET("/day", h.MeetingsDay)
			meetings.GET("/:id", h.GetMeeting)
			meetings.PUT("/:id", h.UpdateMeeting)
			meetings.DELETE("/:id", h.DeleteMeeting)
		}

		// TICKET routes
		tickets := v1.Group("/tickets")
		{
			tickets.POST("", h.CreateTicket)
			tickets.GET("", h.ListTickets)
			tickets.GET("/stats", rbac.RequireAnyRole(rbac.RoleAdmin), h.TicketStats)
			tickets.GET("/:id", h.GetTicket)
			tickets.PUT("/:id", h.UpdateTicket)
			tickets.DELETE("/:id", rbac.RequireAnyRole(rbac.RoleAdmin), h.DeleteTicket)
		}

		// REPORTING routes
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAgent))
		{
			reports.GET("/calls", h.CallsSummary)
			reports.GET("/conversion", h.ConversionMetrics)
		}
		v1.GET("/dashboard/summary", rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAgent), h.Dashboard)
	}
}
