package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/eventgate/scanlink/internal/config"
	"github.com/eventgate/scanlink/internal/domain"
	"github.com/eventgate/scanlink/internal/service"
	"github.com/eventgate/scanlink/internal/usecase"
)

type Handler struct {
	config       config.Config
	mapping      *usecase.MappingUsecase
	registration *usecase.RegistrationUsecase
	checkin      *usecase.CheckinUsecase
	event        *usecase.EventUsecase
	signal       *service.SignalService
	presence     *service.PresenceService
}

func NewHandler(
	conf config.Config,
	mapping *usecase.MappingUsecase,
	registration *usecase.RegistrationUsecase,
	checkin *usecase.CheckinUsecase,
	event *usecase.EventUsecase,
	signal *service.SignalService,
	presence *service.PresenceService,
) *Handler {
	return &Handler{
		config:       conf,
		mapping:      mapping,
		registration: registration,
		checkin:      checkin,
		event:        event,
		signal:       signal,
		presence:     presence,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)
	e.POST("/api/v1/scan", h.handleScan)
	e.POST("/api/v1/register", h.handleRegister)
	e.POST("/api/v1/attendance", h.handleCheckin(domain.CheckinAttendance))
	e.POST("/api/v1/security", h.handleCheckin(domain.CheckinSecurity))
	e.POST("/api/v1/meal", h.handleCheckin(domain.CheckinMeal))
	e.POST("/api/v1/events", h.handleCreateEvent)
	e.GET("/api/v1/events/:id", h.handleGetEvent)
	e.POST("/api/v1/presence", h.handlePresence)
	e.GET("/api/v1/presence/:deviceId", h.handleGetPresence)
	e.GET("/api/v1/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

type scanRequest struct {
	ScopeID string `json:"scopeId"`
	Token   string `json:"token"`
}

func (h *Handler) handleScan(c echo.Context) error {
	ctx := c.Request().Context()

	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	resolution, found, err := h.mapping.Resolve(ctx, req.ScopeID, req.Token)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if !found {
		return c.JSON(http.StatusOK, echo.Map{
			"found":             false,
			"needsRegistration": true,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"found":      true,
		"attendeeId": resolution.AttendeeID,
		"source":     resolution.Source,
	})
}

type registerRequest struct {
	ScopeID  string `json:"scopeId"`
	Token    string `json:"token"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	Phone    string `json:"phone"`
	DeviceID string `json:"deviceId"`
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Token == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and name are required"})
	}

	output, err := h.registration.Register(ctx, usecase.RegisterInput{
		ScopeID:  req.ScopeID,
		Token:    req.Token,
		Name:     req.Name,
		Region:   req.Region,
		Phone:    req.Phone,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	response := echo.Map{
		"attendee":  output.Attendee,
		"synced":    output.Synced,
		"confirmed": output.Confirmed,
	}
	if !output.Confirmed {
		response["warning"] = domain.ErrUnconfirmed.Error()
	}

	return c.JSON(http.StatusOK, response)
}

type checkinRequest struct {
	ScopeID  string `json:"scopeId"`
	Token    string `json:"token"`
	DeviceID string `json:"deviceId"`
}

func (h *Handler) handleCheckin(kind domain.CheckinKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req checkinRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if req.Token == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
		}

		output, err := h.checkin.Checkin(ctx, usecase.CheckinInput{
			ScopeID:  req.ScopeID,
			Token:    req.Token,
			Kind:     kind,
			DeviceID: req.DeviceID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		if output.NeedsRegistration {
			return c.JSON(http.StatusOK, echo.Map{
				"found":             false,
				"needsRegistration": true,
			})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"found":   true,
			"checkin": output.Checkin,
			"source":  output.Source,
		})
	}
}

type createEventRequest struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

func (h *Handler) handleCreateEvent(c echo.Context) error {
	ctx := c.Request().Context()

	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.ID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id and name are required"})
	}

	event := domain.Event{
		ID:       req.ID,
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
	if err := h.event.Create(ctx, event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, event)
}

func (h *Handler) handleGetEvent(c echo.Context) error {
	ctx := c.Request().Context()

	event, err := h.event.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, event)
}

type presenceRequest struct {
	DeviceID string `json:"deviceId"`
	ScopeID  string `json:"scopeId"`
}

func (h *Handler) handlePresence(c echo.Context) error {
	var req presenceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.DeviceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "deviceId is required"})
	}

	if err := h.presence.Heartbeat(req.DeviceID, req.ScopeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) handleGetPresence(c echo.Context) error {
	seenAt, err := h.presence.LastSeen(c.Param("deviceId"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"online": false})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"online": true,
		"seenAt": seenAt,
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
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
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

	input := make(chan []string)
	defer close(input)
	output := make(chan domain.CheckinEvent)

	go h.signal.Realtime(ctx, input, output)

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
			case "listen":
				input <- req.Channels
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
