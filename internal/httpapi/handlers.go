package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"crm-platform/internal/audit"
	"crm-platform/internal/auth"
	"crm-platform/internal/callflow"
	"crm-platform/internal/campaigns"
	"crm-platform/internal/leads"
	"crm-platform/internal/meetings"
	"crm-platform/internal/reporting"
	"crm-platform/internal/tickets"
	"crm-platform/internal/users"
	"crm-platform/pkg/logger"
	"crm-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
//
// Error bodies always use the "detail" key; clients parse it.

type Handlers struct {
	Auth      *auth.Manager
	Users     *users.Service
	Leads     *leads.Service
	Campaigns *campaigns.Service
	Meetings  *meetings.Service
	Tickets   *tickets.Service
	Reports   *reporting.Service
	Audit     *audit.Service

	// Redis guards concurrent dialing per agent; nil disables the guard.
	Redis *redis.Client

	// DB is pinged by the health endpoint when set.
	DB *sql.DB
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// respondErr maps service sentinels onto HTTP statuses. Unknown errors are
// logged and surface as a generic 500 so internals never leak.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, campaigns.ErrNoLeadsAvailable):
		detail(c, http.StatusNotFound, "No available leads in this campaign")
	case errors.Is(err, campaigns.ErrNotFound),
		errors.Is(err, campaigns.ErrCampaignLeadNotFound),
		errors.Is(err, leads.ErrNotFound),
		errors.Is(err, meetings.ErrNotFound),
		errors.Is(err, tickets.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		detail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, campaigns.ErrForbidden),
		errors.Is(err, leads.ErrForbidden),
		errors.Is(err, meetings.ErrForbidden),
		errors.Is(err, tickets.ErrForbidden),
		errors.Is(err, users.ErrForbidden):
		detail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, users.ErrBadCredentials), errors.Is(err, users.ErrInactive):
		detail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, campaigns.ErrInvalidArgument),
		errors.Is(err, campaigns.ErrCallsInProgress),
		errors.Is(err, leads.ErrInvalidArgument),
		errors.Is(err, leads.ErrDuplicate),
		errors.Is(err, meetings.ErrInvalidArgument),
		errors.Is(err, meetings.ErrTimeConflict),
		errors.Is(err, tickets.ErrInvalidArgument),
		errors.Is(err, users.ErrInvalidArgument),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, reporting.ErrInvalidRequest):
		detail(c, http.StatusBadRequest, err.Error())
	default:
		logger.FromGin(c).Error("request failed", "err", err)
		detail(c, http.StatusInternalServerError, "internal error")
	}
}

func identity(c *gin.Context) (userID, role string) {
	userID, _ = auth.UserID(c.Request.Context())
	role, _ = auth.Role(c.Request.Context())
	return userID, role
}

/* ===================== AUTH ===================== */

func (h Handlers) Register(c *gin.Context) {
	var req users.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) Login(c *gin.Context) {
	var req users.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	tok, err := h.Users.Login(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h Handlers) Refresh(c *gin.Context) {
	var req users.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	tok, err := h.Users.Refresh(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h Handlers) Me(c *gin.Context) {
	userID, _ := identity(c)
	u, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Handlers) ListUsers(c *gin.Context) {
	_, role := identity(c)
	list, err := h.Users.List(c.Request.Context(), role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) DeactivateUser(c *gin.Context) {
	_, role := identity(c)
	u, err := h.Users.Deactivate(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

/* ===================== LEADS ===================== */

func (h Handlers) CreateLead(c *gin.Context) {
	userID, role := identity(c)
	var req leads.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	l, err := h.Leads.Create(c.Request.Context(), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h Handlers) ListLeads(c *gin.Context) {
	userID, role := identity(c)
	list, err := h.Leads.List(c.Request.Context(), userID, role,
		c.Query("campaign_id"), leads.LeadStatus(c.Query("status")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetLead(c *gin.Context) {
	userID, role := identity(c)
	l, err := h.Leads.Get(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h Handlers) UpdateLead(c *gin.Context) {
	userID, role := identity(c)
	var req leads.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	l, err := h.Leads.Update(c.Request.Context(), c.Param("id"), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h Handlers) DeleteLead(c *gin.Context) {
	userID, role := identity(c)
	if err := h.Leads.Delete(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted successfully"})
}

// ImportLeads accepts a multipart CSV upload. Bad rows are reported, never
// fatal to the batch.
func (h Handlers) ImportLeads(c *gin.Context) {
	userID, role := identity(c)
	file, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "csv file required")
		return
	}
	f, err := file.Open()
	if err != nil {
		detail(c, http.StatusBadRequest, "could not read upload")
		return
	}
	defer f.Close()

	res, err := h.Leads.ImportCSV(c.Request.Context(), f, c.Query("campaign_id"), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogLeadImport(c.Request.Context(), userID, role, c.ClientIP(), res.Created, len(res.Skipped))
	}
	c.JSON(http.StatusOK, res)
}

/* ===================== CAMPAIGNS ===================== */

func (h Handlers) CreateCampaign(c *gin.Context) {
	userID, role := identity(c)
	var req campaigns.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.Campaigns.Create(c.Request.Context(), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) ListCampaigns(c *gin.Context) {
	userID, role := identity(c)
	list, err := h.Campaigns.List(c.Request.Context(), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetCampaign(c *gin.Context) {
	out, err := h.Campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) UpdateCampaign(c *gin.Context) {
	userID, role := identity(c)
	var req campaigns.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.Campaigns.Update(c.Request.Context(), c.Param("id"), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteCampaign(c *gin.Context) {
	userID, role := identity(c)
	id := c.Param("id")
	if err := h.Campaigns.Delete(c.Request.Context(), id, userID, role); err != nil {
		respondErr(c, err)
		return
	}
	if h.Audit != nil {
		_ = h.Audit.LogCampaignDelete(c.Request.Context(), userID, role, c.ClientIP(), id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted successfully"})
}

// StartCampaign hands the agent their next workable lead. A per-agent dial
// slot in Redis keeps one agent from working two leads at once across
// devices.
func (h Handlers) StartCampaign(c *gin.Context) {
	userID, role := identity(c)
	ctx := c.Request.Context()

	if h.Redis != nil {
		key := "dial_slot:" + userID
		ok, err := utils.AcquireDialSlot(ctx, h.Redis, key, 1, 2*time.Minute)
		if err == nil && !ok {
			detail(c, http.StatusConflict, "A call is already in progress for this agent")
			return
		}
		// Redis being down must not block calling; skip the guard.
		defer func() { _ = utils.ReleaseDialSlot(ctx, h.Redis, key) }()
	}

	out, err := h.Campaigns.StartAgent(ctx, c.Param("id"), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CampaignStats(c *gin.Context) {
	out, err := h.Campaigns.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* ===================== CALL LOGS ===================== */

func (h Handlers) CreateCallLog(c *gin.Context) {
	userID, role := identity(c)
	var req campaigns.LogCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	log, cl, err := h.Campaigns.LogCall(c.Request.Context(), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, callflow.CallLogResult{CallLog: log, CampaignLead: cl})
}

/* ===================== MEETINGS ===================== */

func (h Handlers) CreateMeeting(c *gin.Context) {
	userID, _ := identity(c)
	var raw meetings.RawMeeting
	if err := c.ShouldBindJSON(&raw); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	// Accept either wire shape; flatten before validation.
	m := meetings.NormalizeMeeting(raw)
	out, err := h.Meetings.Create(c.Request.Context(), meetings.CreateRequest{
		Title:           m.Title,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		DurationMinutes: raw.DurationMinutes,
		Notes:           m.Notes,
		Status:          string(m.Status),
		LeadID:          m.LeadID,
		LeadName:        m.LeadName,
		MeetingURL:      m.MeetingURL,
	}, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) ListMeetings(c *gin.Context) {
	userID, role := identity(c)
	list, err := h.Meetings.List(c.Request.Context(), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetMeeting(c *gin.Context) {
	userID, role := identity(c)
	out, err := h.Meetings.Get(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) UpdateMeeting(c *gin.Context) {
	userID, role := identity(c)
	var req meetings.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.Meetings.Update(c.Request.Context(), c.Param("id"), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	if h.Audit != nil && out.Status == meetings.MeetingStatusCancelled {
		_ = h.Audit.LogMeetingCancel(c.Request.Context(), userID, role, c.ClientIP(), out.ID)
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteMeeting(c *gin.Context) {
	userID, role := identity(c)
	if err := h.Meetings.Delete(c.Request.Context(), c.Param("id"), userID, role); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted successfully"})
}

// MeetingsDay returns the computed day-view layout. The date query is
// YYYY-MM-DD; missing means today.
func (h Handlers) MeetingsDay(c *gin.Context) {
	userID, role := identity(c)
	day := time.Now()
	if d := c.Query("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, time.Local)
		if err != nil {
			detail(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	entries, err := h.Meetings.Layout(c.Request.Context(), userID, role, day)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

/* ===================== TICKETS ===================== */

func (h Handlers) CreateTicket(c *gin.Context) {
	userID, _ := identity(c)
	var req tickets.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.Tickets.Create(c.Request.Context(), req, userID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) ListTickets(c *gin.Context) {
	userID, role := identity(c)
	list, err := h.Tickets.List(c.Request.Context(), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetTicket(c *gin.Context) {
	userID, role := identity(c)
	out, err := h.Tickets.Get(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) UpdateTicket(c *gin.Context) {
	userID, role := identity(c)
	var req tickets.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := h.Tickets.Update(c.Request.Context(), c.Param("id"), req, userID, role)
	if err != nil {
		respondErr(c, err)
		return
	}
	if h.Audit != nil && req.Status != nil &&
		(*req.Status == tickets.TicketStatusResolved || *req.Status == tickets.TicketStatusClosed) {
		_ = h.Audit.LogTicketResolve(c.Request.Context(), userID, role, c.ClientIP(), out.ID, string(out.Status))
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) DeleteTicket(c *gin.Context) {
	_, role := identity(c)
	if err := h.Tickets.Delete(c.Request.Context(), c.Param("id"), role); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}

func (h Handlers) TicketStats(c *gin.Context) {
	_, role := identity(c)
	out, err := h.Tickets.Stats(c.Request.Context(), role)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* ===================== REPORTING ===================== */

func (h Handlers) Dashboard(c *gin.Context) {
	out, err := h.Reports.DashboardFor(c.Request.Context(), time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CallsSummary(c *gin.Context) {
	rng, err := parseRange(c)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		Range:      rng,
		CampaignID: c.Query("campaign_id"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ConversionMetrics(c *gin.Context) {
	rng, err := parseRange(c)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.Reports.ConversionMetrics(c.Request.Context(), reporting.ConversionMetricsRequest{
		Range:      rng,
		CampaignID: c.Query("campaign_id"),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseRange(c *gin.Context) (reporting.TimeRange, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("from must be RFC 3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("to must be RFC 3339")
	}
	return reporting.TimeRange{From: from, To: to}, nil
}

/* ===================== HEALTH ===================== */

func (h Handlers) Health(c *gin.Context) {
	if h.DB != nil {
		if err := utils.HealthCheck(c.Request.Context(), h.DB, 2*time.Second); err != nil {
			detail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
