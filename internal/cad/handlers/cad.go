package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"cad-editor/internal/cad/codec"
	"cad-editor/internal/cad/models"
	"cad-editor/internal/cad/render"
	"cad-editor/internal/cad/service"
	"cad-editor/internal/cad/store"
	"cad-editor/internal/cad/tools"
	"cad-editor/internal/common/logger"
)

// ============================================================
// CAD Handler
// ============================================================

type CADHandler struct {
	svc      *service.Service
	tools    *tools.Dispatcher
	renderer *render.Renderer
}

func NewCADHandler(svc *service.Service, dispatcher *tools.Dispatcher) *CADHandler {
	return &CADHandler{
		svc:      svc,
		tools:    dispatcher,
		renderer: render.NewRenderer(),
	}
}

// Register mounts every CAD route on the router.
func (h *CADHandler) Register(r fiber.Router) {
	r.Get("/tools", h.ListTools)
	r.Post("/tools/:name", h.CallTool)

	r.Post("/sessions", h.OpenSession)
	r.Delete("/sessions/:id", h.CloseSession)

	r.Get("/documents/summary", h.Summary)
	r.Get("/documents/brief", h.Brief)
	r.Get("/documents/svg", h.SVG)
}

// ListTools отдаёт каталог инструментов агента.
func (h *CADHandler) ListTools(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"tools": tools.Catalogue})
}

// CallTool runs one tool. The JSON body holds the tool arguments plus the
// optional "location" and "session" fields; query parameters of the same
// name are used when the body does not set them.
func (h *CADHandler) CallTool(c fiber.Ctx) error {
	name := c.Params("name")
	if !tools.Has(name) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "unknown tool: " + name})
	}

	body := c.Body()
	if len(body) == 0 {
		body = []byte("{}")
	}
	var src service.Source
	if err := json.Unmarshal(body, &src); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	src = withQuery(c, src)

	return c.JSON(h.tools.Call(c.Context(), name, src, json.RawMessage(body)))
}

type openSessionRequest struct {
	Location string `json:"location"`
}

// OpenSession загружает документ в память и выдаёт токен сессии.
func (h *CADHandler) OpenSession(c fiber.Ctx) error {
	var req openSessionRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}
	if req.Location == "" {
		req.Location = c.Query("location")
	}
	if req.Location == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "location required"})
	}

	info, err := h.svc.OpenSession(c.Context(), req.Location)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(info)
}

func (h *CADHandler) CloseSession(c fiber.Ctx) error {
	if err := h.svc.CloseSession(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Summary отдаёт полную сводку документа.
func (h *CADHandler) Summary(c fiber.Ctx) error {
	paperspace, _ := strconv.ParseBool(c.Query("paperspace"))
	sum, err := h.svc.Summarize(c.Context(), withQuery(c, service.Source{}), paperspace)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sum)
}

func (h *CADHandler) Brief(c fiber.Ctx) error {
	brief, err := h.svc.Brief(c.Context(), withQuery(c, service.Source{}))
	if err != nil {
		return fail(c, err)
	}
	c.Set("Content-Type", "text/plain; charset=utf-8")
	return c.SendString(brief)
}

// SVG отдаёт превью документа.
func (h *CADHandler) SVG(c fiber.Ctx) error {
	doc, err := h.svc.Document(c.Context(), withQuery(c, service.Source{}))
	if err != nil {
		return fail(c, err)
	}
	svg, err := h.renderer.Render(doc)
	if err != nil {
		return fail(c, err)
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// ============================================================
// Helpers
// ============================================================

func withQuery(c fiber.Ctx, src service.Source) service.Source {
	if src.Location == "" {
		src.Location = c.Query("location")
	}
	if src.Session == "" {
		src.Session = c.Query("session")
	}
	return src
}

func fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.L().Error("request_failed", "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrWrongEntityKind):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidArgument),
		errors.Is(err, codec.ErrUnknownFormat),
		errors.Is(err, store.ErrBackendDisabled):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
