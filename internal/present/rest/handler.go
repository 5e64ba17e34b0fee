package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/shiftwyse/shiftwyse"
	"github.com/shiftwyse/shiftwyse/i18n"
	"github.com/shiftwyse/shiftwyse/internal/domain"
	"github.com/shiftwyse/shiftwyse/internal/infra/gateway"
	"github.com/shiftwyse/shiftwyse/internal/present/rest/presenter"
	"github.com/shiftwyse/shiftwyse/internal/service"
	"github.com/shiftwyse/shiftwyse/internal/session"
	"github.com/shiftwyse/shiftwyse/internal/usecase"
)

type Handler struct {
	config    domain.Config
	auth      *service.AuthService
	chat      *usecase.ChatUsecase
	snapshots *usecase.SnapshotUsecase
	mentors   *usecase.MentorUsecase
	analytics *usecase.AnalyticsUsecase
	knowledge *usecase.KnowledgeUsecase
	signal    *service.SignalService
}

func NewHandler(
	config domain.Config,
	auth *service.AuthService,
	chat *usecase.ChatUsecase,
	snapshots *usecase.SnapshotUsecase,
	mentors *usecase.MentorUsecase,
	analytics *usecase.AnalyticsUsecase,
	knowledge *usecase.KnowledgeUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:    config,
		auth:      auth,
		chat:      chat,
		snapshots: snapshots,
		mentors:   mentors,
		analytics: analytics,
		knowledge: knowledge,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/session", h.handleBootstrap)
	e.POST("/api/v1/chat", h.handleChatSend)
	e.GET("/api/v1/chat", h.handleChatList)
	e.POST("/api/v1/snapshots", h.handleSnapshotSave)
	e.GET("/api/v1/snapshots", h.handleSnapshotList)
	e.GET("/api/v1/snapshots/latest", h.handleSnapshotLatest)
	e.POST("/api/v1/mentors", h.handleMentorSubmit)
	e.GET("/api/v1/mentors", h.handleMentorList)
	e.POST("/api/v1/analytics/events", h.handleAnalyticsRecord)
	e.POST("/api/v1/analytics/sample", h.handleAnalyticsSample)
	e.GET("/api/v1/analytics/summary", h.handleAnalyticsSummary)
	e.POST("/api/v1/knowledge", h.handleKnowledgeIngest)
	e.GET("/api/v1/knowledge", h.handleKnowledgeList)
	e.GET("/api/v1/boost", h.handleDailyBoost)
	e.GET("/realtime", h.handleRealtime)
}

// requester reconstructs the identity the auth middleware resolved.
func requester(c echo.Context) (shiftwyse.Identity, bool) {
	ctx := c.Request().Context()

	id, ok := ctx.Value(domain.RequesterIdCtxKey).(string)
	if !ok || id == "" {
		return shiftwyse.Identity{}, false
	}
	authed, _ := ctx.Value(domain.RequesterAuthedCtxKey).(bool)
	privileged, _ := ctx.Value(domain.RequesterPrivilegedCtxKey).(bool)

	return shiftwyse.Identity{
		ID:            id,
		Authenticated: authed,
		IsPrivileged:  privileged,
	}, true
}

type bootstrapRequest struct {
	SessionID     string `json:"sessionId"`
	ExchangeToken string `json:"exchangeToken"`
}

type bootstrapResponse struct {
	Identity shiftwyse.Identity `json:"identity"`
	Token    string             `json:"token"`
}

func (h *Handler) handleBootstrap(c echo.Context) error {
	ctx := c.Request().Context()

	var req bootstrapRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.auth.Bootstrap(ctx, req.SessionID, req.ExchangeToken)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, bootstrapResponse{
		Identity: result.Identity,
		Token:    result.Token,
	})
}

type chatSendRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

type chatSendResponse struct {
	User      shiftwyse.Message `json:"user"`
	Assistant shiftwyse.Message `json:"assistant"`
}

func (h *Handler) handleChatSend(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	var req chatSendRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	if !i18n.IsSupported(req.Locale) {
		req.Locale = i18n.DefaultLocale
	}

	user, assistant, err := h.chat.Send(ctx, identity, req.Text, req.Locale)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		if errors.Is(err, domain.ErrInFlight) {
			return presenter.Conflict(c, err)
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, chatSendResponse{User: user, Assistant: assistant})
}

func (h *Handler) handleChatList(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	messages, err := h.chat.List(ctx, identity)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, messages)
}

type snapshotSaveRequest struct {
	Ratings map[string]int `json:"ratings"`
}

func (h *Handler) handleSnapshotSave(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	var req snapshotSaveRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	snapshot, err := h.snapshots.Save(ctx, identity, req.Ratings)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, snapshot)
}

func (h *Handler) handleSnapshotList(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	snapshots, err := h.snapshots.List(ctx, identity)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, snapshots)
}

func (h *Handler) handleSnapshotLatest(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	latest, err := h.snapshots.Latest(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "no snapshots saved yet")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, latest)
}

func (h *Handler) handleMentorSubmit(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	var profile shiftwyse.MentorProfile
	err := c.Bind(&profile)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	saved, err := h.mentors.Submit(ctx, identity, profile)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, saved)
}

func (h *Handler) handleMentorList(c echo.Context) error {
	ctx := c.Request().Context()

	profiles, err := h.mentors.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, profiles)
}

func (h *Handler) handleAnalyticsRecord(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	var event shiftwyse.AnalyticsEvent
	err := c.Bind(&event)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	saved, err := h.analytics.Record(ctx, identity, event)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return presenter.Forbidden(c, "analytics requires a privileged identity")
		}
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, saved)
}

func (h *Handler) handleAnalyticsSample(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	event, err := h.analytics.GenerateSample(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return presenter.Forbidden(c, "analytics requires a privileged identity")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, event)
}

func (h *Handler) handleAnalyticsSummary(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	summary, err := h.analytics.Aggregate(ctx, identity)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return presenter.Forbidden(c, "analytics requires a privileged identity")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, summary)
}

func (h *Handler) handleKnowledgeIngest(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	var upload gateway.Upload
	err := c.Bind(&upload)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	insight, err := h.knowledge.Ingest(ctx, identity, upload)
	if err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, insight)
}

func (h *Handler) handleKnowledgeList(c echo.Context) error {
	ctx := c.Request().Context()

	insights, err := h.knowledge.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, insights)
}

type boostResponse struct {
	Locale string `json:"locale"`
	Quote  string `json:"quote"`
}

func (h *Handler) handleDailyBoost(c echo.Context) error {
	locale := c.QueryParam("locale")
	if !i18n.IsSupported(locale) {
		locale = i18n.DefaultLocale
	}

	return presenter.OK(c, boostResponse{
		Locale: locale,
		Quote:  i18n.DailyBoost(locale, time.Now().UTC()),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Ratings map[string]int `json:"ratings,omitempty"`
}

type realtimeEvent struct {
	Type  string         `json:"type"`
	State *session.State `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	identity, ok := requester(c)
	if !ok {
		return presenter.Unauthorized(c, "session token required")
	}

	locale := c.QueryParam("locale")
	if locale == "" {
		locale = i18n.DefaultLocale
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	output := make(chan realtimeEvent, 16)
	sess := session.New(h.config, identity, locale, h.signal, session.Services{
		Chat:      h.chat,
		Snapshots: h.snapshots,
		Mentors:   h.mentors,
		Analytics: h.analytics,
	}, func(state session.State) {
		select {
		case output <- realtimeEvent{Type: "state", State: &state}:
		default:
			slog.WarnContext(
				ctx, "Dropping state push, slow consumer",
				slog.String("module", "socket"),
			)
		}
	})
	defer sess.Close()

	sess.Start(ctx)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "send":
				err := sess.SubmitMessage(ctx, req.Text)
				if err != nil {
					output <- realtimeEvent{Type: "error", Error: err.Error()}
				}
			case "snapshot":
				_, err := sess.SaveSnapshot(ctx, req.Ratings)
				if err != nil {
					output <- realtimeEvent{Type: "error", Error: err.Error()}
				}
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
