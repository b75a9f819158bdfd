// Package api exposes the command surface over HTTP.
//
// Routes, relative to the group passed to RegisterRoutes:
//
//	GET    /health
//	GET    /keys                 every key with its value
//	POST   /keys                 add an inline key (201), or update one (200)
//	GET    /keys/:name           one key
//	PUT    /keys/:name           overwrite an inline value
//	GET    /index/:index         key by registration index
//	DELETE /providers/:name      detach a provider from its keys
//	POST   /slots/:kind          take the lowest free fan or gpu slot
//	PUT    /slots/gpu/:index     take a specific gpu slot
//	DELETE /slots/:kind/:index   release a slot
//
// Names containing '#' must be percent-encoded ("%23KEY").
package api

import (
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshuapare/smckit/internal/logger"
	"github.com/joshuapare/smckit/pkg/types"
	"github.com/joshuapare/smckit/smc/codec"
	"github.com/joshuapare/smckit/smc/command"
)

// KeyResponse is the JSON shape of a key.
type KeyResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Value    string `json:"value"` // hex
	Decoded  string `json:"decoded,omitempty"`
	Provider string `json:"provider,omitempty"`
	Priority int    `json:"priority,omitempty"`
	Derived  bool   `json:"derived,omitempty"`
}

// ListResponse is returned by GET /keys.
type ListResponse struct {
	Keys  []KeyResponse `json:"keys"`
	Count int           `json:"count"`
	Error string        `json:"error,omitempty"`
}

// AddRequest is the body of POST /keys.
type AddRequest struct {
	Name  string `json:"name" binding:"required,max=4"`
	Type  string `json:"type" binding:"max=4"`
	Value string `json:"value" binding:"required"` // hex
}

// SetRequest is the body of PUT /keys/:name.
type SetRequest struct {
	Value string `json:"value" binding:"required"` // hex
}

// SlotResponse reports a claimed slot.
type SlotResponse struct {
	Kind  string `json:"kind"`
	Index uint8  `json:"index"`
}

// ErrorResponse carries a failed command's status.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// Handlers serves the command surface.
type Handlers struct {
	cmds *command.Surface
	log  *slog.Logger
}

// NewHandlers returns handlers over cmds.
func NewHandlers(cmds *command.Surface) *Handlers {
	return &Handlers{cmds: cmds, log: logger.L}
}

// RegisterRoutes mounts the handlers on g.
func RegisterRoutes(g *gin.RouterGroup, h *Handlers) {
	g.Use(requestID)
	g.GET("/health", h.HandleHealth)
	g.GET("/keys", h.HandleList)
	g.POST("/keys", h.HandleAdd)
	g.GET("/keys/:name", h.HandleGet)
	g.PUT("/keys/:name", h.HandleSet)
	g.GET("/index/:index", h.HandleGetIndex)
	g.DELETE("/providers/:name", h.HandleRemoveProvider)
	g.POST("/slots/:kind", h.HandleTakeVacant)
	g.PUT("/slots/gpu/:index", h.HandleTakeGPU)
	g.DELETE("/slots/:kind/:index", h.HandleRelease)
}

// NewRouter returns an engine serving the handlers under /v1.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r.Group("/v1"), h)
	return r
}

func requestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Header("X-Request-ID", id)
	c.Set("request_id", id)
	c.Next()
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "keys": h.cmds.Store().Count()})
}

// HandleList handles GET /keys.
func (h *Handlers) HandleList(c *gin.Context) {
	infos, _, err := h.cmds.GetAll(c.Request.Context())
	resp := ListResponse{Keys: make([]KeyResponse, 0, len(infos)), Count: len(infos)}
	for _, info := range infos {
		resp.Keys = append(resp.Keys, toResponse(info))
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGet handles GET /keys/:name.
func (h *Handlers) HandleGet(c *gin.Context) {
	info, st, err := h.cmds.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, st, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(info))
}

// HandleGetIndex handles GET /index/:index.
func (h *Handlers) HandleGetIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	info, st, err := h.cmds.GetByIndex(c.Request.Context(), index)
	if err != nil {
		h.fail(c, st, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(info))
}

// HandleAdd handles POST /keys.
func (h *Handlers) HandleAdd(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	value, err := codec.ParseHex(req.Value)
	if err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	code := http.StatusCreated
	if _, exists := h.cmds.Store().Key(req.Name); exists {
		code = http.StatusOK
	}
	info, st, err := h.cmds.AddValue(c.Request.Context(), req.Name, req.Type, len(value), value)
	if err != nil {
		h.fail(c, st, err)
		return
	}
	info.Value = value
	c.JSON(code, toResponse(info))
}

// HandleSet handles PUT /keys/:name.
func (h *Handlers) HandleSet(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	value, err := codec.ParseHex(req.Value)
	if err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	if st, err := h.cmds.SetValue(c.Request.Context(), c.Param("name"), value); err != nil {
		h.fail(c, st, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleRemoveProvider handles DELETE /providers/:name.
func (h *Handlers) HandleRemoveProvider(c *gin.Context) {
	n, st, err := h.cmds.RemoveProvider(c.Param("name"))
	if err != nil {
		h.fail(c, st, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detached": n})
}

// HandleTakeVacant handles POST /slots/:kind.
func (h *Handlers) HandleTakeVacant(c *gin.Context) {
	var (
		index uint8
		st    command.Status
		err   error
	)
	switch kind := c.Param("kind"); kind {
	case "fan":
		index, st, err = h.cmds.TakeVacantFan()
	case "gpu":
		index, st, err = h.cmds.TakeVacantGPU()
	default:
		h.fail(c, command.NotFound, types.Errorf(types.ErrKindNotFound, "unknown slot kind %q", kind))
		return
	}
	if err != nil {
		h.fail(c, st, err)
		return
	}
	c.JSON(http.StatusCreated, SlotResponse{Kind: c.Param("kind"), Index: index})
}

// HandleTakeGPU handles PUT /slots/gpu/:index.
func (h *Handlers) HandleTakeGPU(c *gin.Context) {
	index, err := parseSlot(c.Param("index"))
	if err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	if st, err := h.cmds.TakeGPU(index); err != nil {
		h.fail(c, st, err)
		return
	}
	c.JSON(http.StatusCreated, SlotResponse{Kind: "gpu", Index: index})
}

// HandleRelease handles DELETE /slots/:kind/:index.
func (h *Handlers) HandleRelease(c *gin.Context) {
	index, err := parseSlot(c.Param("index"))
	if err != nil {
		h.fail(c, command.BadArgument, err)
		return
	}
	var st command.Status
	switch kind := c.Param("kind"); kind {
	case "fan":
		st, err = h.cmds.ReleaseFan(index)
	case "gpu":
		st, err = h.cmds.ReleaseGPU(index)
	default:
		h.fail(c, command.NotFound, types.Errorf(types.ErrKindNotFound, "unknown slot kind %q", kind))
		return
	}
	if err != nil {
		h.fail(c, st, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) fail(c *gin.Context, st command.Status, err error) {
	code := httpStatus(st)
	log := h.log.With("request_id", c.GetString("request_id"), "path", c.FullPath())
	if code >= http.StatusInternalServerError {
		log.Error("command failed", "status", st, "err", err)
	} else {
		log.Debug("command refused", "status", st, "err", err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error(), Status: st.String()})
}

func httpStatus(st command.Status) int {
	switch st {
	case command.Success:
		return http.StatusOK
	case command.NotFound:
		return http.StatusNotFound
	case command.Rejected:
		return http.StatusConflict
	case command.BadArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(info types.KeyInfo) KeyResponse {
	return KeyResponse{
		Name:     info.Name,
		Type:     info.Type,
		Size:     info.Size,
		Value:    hex.EncodeToString(info.Value),
		Decoded:  codec.Format(info.Type, info.Value),
		Provider: info.Provider,
		Priority: info.Priority,
		Derived:  info.Derived,
	}
}

func parseSlot(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, types.Wrap(types.ErrKindOutOfRange, err, "invalid slot index %q", s)
	}
	return uint8(v), nil
}
