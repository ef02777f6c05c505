package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mrsobakin/seabattle/internal/game"
	"github.com/mrsobakin/seabattle/internal/game/field"
	"github.com/mrsobakin/seabattle/internal/lobby"
	"github.com/mrsobakin/seabattle/internal/match"
)

const (
	ErrBadFormat      string = "bad_format"
	ErrBadFleet       string = "bad_fleet"
	ErrCapacity       string = "capacity"
	ErrNotFound       string = "not_found"
	ErrInvalidCommand string = "invalid_command"
	ErrAdversary      string = "adversary_stuck"
	ErrUnknown        string = "unknown"
)

const (
	writeWait    time.Duration = 10 * time.Second
	pingInterval time.Duration = 30 * time.Second
)

type server struct {
	lobby  *lobby.Lobby
	logger *log.Logger
}

func NewServer(l *lobby.Lobby, logger *log.Logger) *server {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &server{
		lobby:  l,
		logger: logger,
	}
}

func (s *server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]any{
		"specs": s.lobby.Catalog().Specs(),
	})
}

// A ship is given either by catalog id or by name.
type placementParams struct {
	SpecID      int               `json:"spec_id"`
	Ship        string            `json:"ship"`
	Origin      field.Coord       `json:"origin"`
	Orientation field.Orientation `json:"orientation"`
}

func (s *server) resolveFleet(params []placementParams) ([]field.Placement, error) {
	if params == nil {
		return nil, nil
	}

	out := make([]field.Placement, 0, len(params))
	for _, p := range params {
		id := p.SpecID
		if p.Ship != "" {
			spec, ok := s.lobby.Catalog().ByName(p.Ship)
			if !ok {
				return nil, fmt.Errorf("%w: unknown ship %q", field.ErrConfiguration, p.Ship)
			}
			id = spec.ID
		}

		out = append(out, field.Placement{SpecID: id, Origin: p.Origin, Orientation: p.Orientation})
	}

	return out, nil
}

func (s *server) handleCreate(c *gin.Context) {
	var params struct {
		Mode       string            `json:"mode" binding:"required"`
		Difficulty string            `json:"difficulty"`
		First      []placementParams `json:"first" binding:"required"`
		Second     []placementParams `json:"second"`
	}

	if !tryBindParams(c, &params) {
		return
	}

	var req lobby.Request
	var err error

	if req.First, err = s.resolveFleet(params.First); err != nil {
		s.respondError(c, err)
		return
	}

	if req.Second, err = s.resolveFleet(params.Second); err != nil {
		s.respondError(c, err)
		return
	}

	if err := req.Mode.FromString(params.Mode); err != nil {
		respondBadFormat(c, err)
		return
	}

	if err := req.Difficulty.FromString(params.Difficulty); err != nil {
		respondBadFormat(c, err)
		return
	}

	session, err := s.lobby.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, map[string]any{
		"id":    session.ID(),
		"state": session.State(),
	})
}

func (s *server) handleGet(c *gin.Context) {
	session, ok := s.findSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

func (s *server) handleAttack(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var params struct {
		Side string `json:"side" binding:"required"`
		X    *int64 `json:"x" binding:"required"`
		Y    *int64 `json:"y" binding:"required"`
	}

	if !tryBindParams(c, &params) {
		return
	}

	var side game.Side
	if err := side.FromString(params.Side); err != nil {
		respondBadFormat(c, err)
		return
	}

	result, state, err := s.lobby.Attack(c.Request.Context(), id, side, field.Coord{X: *params.X, Y: *params.Y})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, map[string]any{
		"result": result,
		"state":  state,
	})
}

func (s *server) handleAbandon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.lobby.Abandon(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Streams match events over a websocket until the match is abandoned
// or the client goes away.
func (s *server) handleEvents(c *gin.Context) {
	session, ok := s.findSession(c)
	if !ok {
		return
	}

	// Subscribe before the handshake so no event after it is missed.
	events, cancel := session.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "match", session.ID(), "err", err)
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match abandoned")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				s.logger.Debug("websocket write failed", "match", session.ID(), "err", err)
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-gone:
			return
		}
	}
}

func (s *server) findSession(c *gin.Context) (*lobby.Session, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}

	session, err := s.lobby.Get(id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}

	return session, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, map[string]any{
			"error":   ErrNotFound,
			"details": err.Error(),
		})
		return uuid.Nil, false
	}
	return id, true
}

func (s *server) respondError(c *gin.Context, err error) {
	var code int
	var kind string

	if errors.Is(err, lobby.ErrNotFound) {
		code = http.StatusNotFound
		kind = ErrNotFound
	} else if errors.Is(err, lobby.ErrCapacity) {
		code = http.StatusTooManyRequests
		kind = ErrCapacity
	} else if errors.Is(err, field.ErrConfiguration) || errors.Is(err, field.ErrIllegalPlacement) {
		code = http.StatusUnprocessableEntity
		kind = ErrBadFleet
	} else if errors.Is(err, game.ErrInvalidCommand) {
		code = http.StatusConflict
		kind = ErrInvalidCommand
	} else if errors.Is(err, match.ErrAdversaryStuck) {
		code = http.StatusInternalServerError
		kind = ErrAdversary
	} else {
		code = http.StatusInternalServerError
		kind = ErrUnknown
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}

	c.JSON(code, map[string]any{
		"error":   kind,
		"details": err.Error(),
	})
}

func (s *server) RegisterEndpoints(e *gin.Engine) {
	e.GET("/catalog", s.handleCatalog)
	e.POST("/matches", s.handleCreate)
	e.GET("/matches/:id", s.handleGet)
	e.DELETE("/matches/:id", s.handleAbandon)
	e.POST("/matches/:id/attack", s.handleAttack)
	e.GET("/matches/:id/events", s.handleEvents)
}
