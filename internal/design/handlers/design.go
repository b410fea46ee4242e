package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"net/http"

	authhandlers "roomdesigner/internal/auth/handlers"
	"roomdesigner/internal/design/models"
	"roomdesigner/internal/design/plan"
	"roomdesigner/internal/design/store"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// ============================================================
// Design Handler
// ============================================================

// DesignHandler exposes the design store over HTTP. Every mutating route
// maps to one store action; a rejected action answers 404.
type DesignHandler struct {
	store   *store.Store
	render  *plan.Renderer
	sources *plan.FileStorage
	log     zerolog.Logger
}

// NewDesignHandler wires the store. sources may be nil, in which case
// imported SVGs are not kept.
func NewDesignHandler(s *store.Store, sources *plan.FileStorage, log zerolog.Logger) *DesignHandler {
	return &DesignHandler{
		store:   s,
		render:  plan.NewRenderer(),
		sources: sources,
		log:     log.With().Str("component", "design").Logger(),
	}
}

// Register mounts the routes on r. Routes under /projects/current are added
// before the /projects/:id ones so "current" never binds as an id.
func (h *DesignHandler) Register(r fiber.Router) {
	r.Get("/state", h.State)

	r.Get("/catalog/templates", h.Templates)
	r.Get("/catalog/color-presets", h.ColorPresets)

	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Post("/projects/import", h.ImportProject)

	r.Get("/projects/current", h.CurrentProject)
	r.Post("/projects/current/save", h.SaveProject)
	r.Patch("/projects/current/room", h.UpdateRoom)
	r.Get("/projects/current/plan.svg", h.PlanSVG)
	r.Get("/projects/current/plan.pdf", h.PlanPDF)

	r.Post("/projects/current/furniture", h.AddFurniture)
	r.Patch("/projects/current/furniture/:fid", h.UpdateFurniture)
	r.Post("/projects/current/furniture/:fid/move", h.MoveFurniture)
	r.Post("/projects/current/furniture/:fid/duplicate", h.DuplicateFurniture)
	r.Delete("/projects/current/furniture/:fid", h.RemoveFurniture)

	r.Post("/projects/:id/load", h.LoadProject)
	r.Get("/projects/:id/source.svg", h.ProjectSource)
	r.Delete("/projects/:id", h.DeleteProject)

	r.Put("/ui/selection", h.SetSelection)
	r.Put("/ui/view", h.SetView)
	r.Post("/ui/room-setup/toggle", h.ToggleRoomSetup)
	r.Post("/ui/furniture-panel/toggle", h.ToggleFurniturePanel)
	r.Put("/ui/camera", h.SetCamera)
	r.Post("/ui/camera/reset", h.ResetCamera)
}

func (h *DesignHandler) State(c fiber.Ctx) error {
	return c.JSON(h.store.State())
}

func (h *DesignHandler) Templates(c fiber.Ctx) error {
	return c.JSON(models.Templates())
}

func (h *DesignHandler) ColorPresets(c fiber.Ctx) error {
	return c.JSON(models.ColorPresets())
}

// ============================================================
// Projects
// ============================================================

func (h *DesignHandler) ListProjects(c fiber.Ctx) error {
	return c.JSON(h.store.Projects())
}

type createProjectRequest struct {
	Name string `json:"name"`
}

// CreateProject names the project "Design N" when no name is given.
func (h *DesignHandler) CreateProject(c fiber.Ctx) error {
	var req createProjectRequest
	if err := decodeOptional(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Name == "" {
		req.Name = h.defaultName()
	}

	p := h.store.CreateNewProject(req.Name)
	h.log.Info().Str("project", p.ID).Str("name", p.Name).Msg("project created")
	return c.Status(http.StatusCreated).JSON(p)
}

func (h *DesignHandler) CurrentProject(c fiber.Ctx) error {
	p, ok := h.store.CurrentProject()
	if !ok {
		return noCurrentProject(c)
	}
	return c.JSON(p)
}

func (h *DesignHandler) LoadProject(c fiber.Ctx) error {
	id := c.Params("id")
	p, ok := h.store.LoadProject(id)
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	return c.JSON(p)
}

func (h *DesignHandler) SaveProject(c fiber.Ctx) error {
	p, ok := h.store.SaveProject()
	if !ok {
		return noCurrentProject(c)
	}
	return c.JSON(p)
}

func (h *DesignHandler) DeleteProject(c fiber.Ctx) error {
	id := c.Params("id")
	if !h.store.DeleteProject(id) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	h.log.Info().Str("project", id).Msg("project deleted")
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Room
// ============================================================

type roomPatchRequest struct {
	models.RoomPatch
	Preset *string `json:"preset,omitempty"`
}

// UpdateRoom edits the working copy only. With ?save=true the project is
// saved right after, the way the room setup dialog does it.
func (h *DesignHandler) UpdateRoom(c fiber.Ctx) error {
	var req roomPatchRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := req.RoomPatch
	if req.Preset != nil {
		preset, ok := models.PresetByName(*req.Preset)
		if !ok {
			return badRequest(c, fmt.Sprintf("unknown color preset %q", *req.Preset))
		}
		colors := preset.Patch()
		if patch.FloorColor == nil {
			patch.FloorColor = colors.FloorColor
		}
		if patch.WallColor == nil {
			patch.WallColor = colors.WallColor
		}
	}
	if err := models.Validate(patch); err != nil {
		return badRequest(c, err.Error())
	}

	update := h.store.UpdateRoomConfig
	if c.Query("save") == "true" {
		update = h.store.UpdateRoomConfigAndSave
	}
	p, ok := update(patch)
	if !ok {
		return noCurrentProject(c)
	}
	return c.JSON(p)
}

// ============================================================
// Furniture
// ============================================================

type addFurnitureRequest struct {
	Template models.FurnitureType  `json:"template,omitempty"`
	Position *models.Vec3          `json:"position,omitempty"`
	Item     *models.FurnitureSpec `json:"item,omitempty"`
}

// AddFurniture takes either a catalog template (optionally positioned) or a
// full item. A template without a position lands somewhere inside the room.
func (h *DesignHandler) AddFurniture(c fiber.Ctx) error {
	var req addFurnitureRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	cur, ok := h.store.CurrentProject()
	if !ok {
		return noCurrentProject(c)
	}

	var spec models.FurnitureSpec
	switch {
	case req.Item != nil && req.Template != "":
		return badRequest(c, "template and item are mutually exclusive")
	case req.Item != nil:
		spec = *req.Item
	case req.Template != "":
		tpl, ok := models.Template(req.Template)
		if !ok {
			return badRequest(c, fmt.Sprintf("unknown template %q", req.Template))
		}
		spec = tpl
		if req.Position != nil {
			spec.Position = *req.Position
		} else {
			spec.Position = randomSpot(cur.RoomConfig)
		}
	default:
		return badRequest(c, "template or item required")
	}
	if err := models.Validate(spec); err != nil {
		return badRequest(c, err.Error())
	}

	item, ok := h.store.AddFurniture(spec)
	if !ok {
		return noCurrentProject(c)
	}
	return c.Status(http.StatusCreated).JSON(item)
}

// furniturePatchRequest lets editors send rotation in degrees, the way the
// furniture panel shows it.
type furniturePatchRequest struct {
	models.FurniturePatch
	RotationDegrees *models.Vec3Patch `json:"rotationDegrees,omitempty"`
}

func (h *DesignHandler) UpdateFurniture(c fiber.Ctx) error {
	var req furniturePatchRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := req.FurniturePatch
	if req.RotationDegrees != nil {
		if patch.Rotation != nil {
			return badRequest(c, "rotation and rotationDegrees are mutually exclusive")
		}
		patch.Rotation = degreesToRadians(req.RotationDegrees)
	}
	if patch.Empty() {
		return badRequest(c, "empty patch")
	}
	if err := models.Validate(patch); err != nil {
		return badRequest(c, err.Error())
	}

	item, ok := h.store.UpdateFurniture(c.Params("fid"), patch)
	if !ok {
		return furnitureNotFound(c)
	}
	return c.JSON(item)
}

type moveRequest struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// MoveFurniture is a drag on the 2D plan: the target is clamped inside the
// room and dropped to the floor.
func (h *DesignHandler) MoveFurniture(c fiber.Ctx) error {
	var req moveRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	item, ok := h.store.MoveFurniture(c.Params("fid"), models.Vec3{X: req.X, Z: req.Z})
	if !ok {
		return furnitureNotFound(c)
	}
	return c.JSON(item)
}

func (h *DesignHandler) RemoveFurniture(c fiber.Ctx) error {
	if !h.store.RemoveFurniture(c.Params("fid")) {
		return furnitureNotFound(c)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *DesignHandler) DuplicateFurniture(c fiber.Ctx) error {
	item, ok := h.store.DuplicateFurniture(c.Params("fid"))
	if !ok {
		return furnitureNotFound(c)
	}
	return c.Status(http.StatusCreated).JSON(item)
}

// ============================================================
// UI state
// ============================================================

type selectionRequest struct {
	ID string `json:"id"`
}

// SetSelection stores any id, including one that matches nothing; an empty
// id clears the selection.
func (h *DesignHandler) SetSelection(c fiber.Ctx) error {
	var req selectionRequest
	if err := decodeOptional(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	h.store.SetSelectedFurniture(req.ID)

	item, ok := h.store.SelectedItem()
	if !ok {
		return c.JSON(fiber.Map{"selectedFurniture": req.ID, "item": nil})
	}
	return c.JSON(fiber.Map{"selectedFurniture": req.ID, "item": item})
}

type viewRequest struct {
	View models.View `json:"view"`
}

func (h *DesignHandler) SetView(c fiber.Ctx) error {
	var req viewRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if !req.View.Valid() {
		return badRequest(c, fmt.Sprintf("unknown view %q", req.View))
	}
	h.store.SetActiveView(req.View)
	return c.JSON(fiber.Map{"activeView": req.View})
}

type toggleRequest struct {
	Show *bool `json:"show,omitempty"`
}

func (h *DesignHandler) ToggleRoomSetup(c fiber.Ctx) error {
	var req toggleRequest
	if err := decodeOptional(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"showRoomSetup": h.store.ToggleRoomSetup(req.Show)})
}

func (h *DesignHandler) ToggleFurniturePanel(c fiber.Ctx) error {
	var req toggleRequest
	if err := decodeOptional(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"showFurniturePanel": h.store.ToggleFurniturePanel(req.Show)})
}

type cameraRequest struct {
	Position *models.Vec3 `json:"position,omitempty"`
	Target   *models.Vec3 `json:"target,omitempty"`
}

func (h *DesignHandler) SetCamera(c fiber.Ctx) error {
	var req cameraRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Position == nil && req.Target == nil {
		return badRequest(c, "position or target required")
	}
	if req.Position != nil {
		h.store.SetCameraPosition(*req.Position)
	}
	if req.Target != nil {
		h.store.SetCameraTarget(*req.Target)
	}
	return h.camera(c)
}

func (h *DesignHandler) ResetCamera(c fiber.Ctx) error {
	h.store.ResetCamera()
	return h.camera(c)
}

func (h *DesignHandler) camera(c fiber.Ctx) error {
	st := h.store.State()
	return c.JSON(fiber.Map{"cameraPosition": st.CameraPosition, "cameraTarget": st.CameraTarget})
}

// ============================================================
// Plan export & import
// ============================================================

func (h *DesignHandler) PlanSVG(c fiber.Ctx) error {
	cur, ok := h.store.CurrentProject()
	if !ok {
		return noCurrentProject(c)
	}
	svg, err := h.render.Render(cur, h.store.State().SelectedFurniture)
	if err != nil {
		h.log.Error().Err(err).Str("project", cur.ID).Msg("render failed")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

func (h *DesignHandler) PlanPDF(c fiber.Ctx) error {
	cur, ok := h.store.CurrentProject()
	if !ok {
		return noCurrentProject(c)
	}
	var buf bytes.Buffer
	if err := plan.WritePDF(&buf, cur); err != nil {
		h.log.Error().Err(err).Str("project", cur.ID).Msg("pdf export failed")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, cur.ID))
	return c.Send(buf.Bytes())
}

// ImportProject turns an uploaded SVG plan into a new, saved project.
func (h *DesignHandler) ImportProject(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file required in multipart/form-data")
	}
	f, err := file.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	im, err := plan.Import(bytes.NewReader(data))
	if err != nil {
		h.log.Info().Err(err).Str("file", file.Filename).Msg("import rejected")
		return badRequest(c, err.Error())
	}

	name := c.FormValue("name")
	if name == "" {
		name = im.Name
	}
	if name == "" {
		name = h.defaultName()
	}

	p := h.store.CreateProjectFrom(name, im.RoomPatch(), im.Furniture)

	if h.sources != nil {
		if err := h.sources.SaveSource(h.owner(c), p.ID, data); err != nil {
			h.log.Warn().Err(err).Str("project", p.ID).Msg("keeping import source failed")
		}
	}

	h.log.Info().Str("project", p.ID).Int("furniture", len(p.Furniture)).Msg("plan imported")
	return c.Status(http.StatusCreated).JSON(p)
}

// ProjectSource returns the SVG a project was imported from.
func (h *DesignHandler) ProjectSource(c fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := h.store.Project(id); !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	if h.sources == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "sources not kept"})
	}
	data, err := h.sources.LoadSource(h.owner(c), id)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "project was not imported"})
	case errors.Is(err, plan.ErrBadName):
		return badRequest(c, err.Error())
	case err != nil:
		h.log.Error().Err(err).Str("project", id).Msg("reading import source failed")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.Send(data)
}

// ============================================================
// Helpers
// ============================================================

func (h *DesignHandler) defaultName() string {
	return fmt.Sprintf("Design %d", len(h.store.Projects())+1)
}

// owner is the login the import sources are filed under.
func (h *DesignHandler) owner(c fiber.Ctx) string {
	if session, ok := authhandlers.SessionFrom(c); ok {
		return session.Login
	}
	if name := h.store.State().UserName; name != "" {
		return name
	}
	return "anonymous"
}

func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	return decodeOptional(c, v)
}

func decodeOptional(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.New("invalid json")
	}
	return nil
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func noCurrentProject(c fiber.Ctx) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "no current project"})
}

func furnitureNotFound(c fiber.Ctx) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "furniture not found"})
}

func degreesToRadians(p *models.Vec3Patch) *models.Vec3Patch {
	conv := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		r := models.DegToRad(*v)
		return &r
	}
	return &models.Vec3Patch{X: conv(p.X), Y: conv(p.Y), Z: conv(p.Z)}
}

// randomSpot mirrors how the catalog drops new pieces: anywhere in the
// room minus a meter, on the floor.
func randomSpot(room models.RoomConfig) models.Vec3 {
	return models.Vec3{
		X: rand.Float64() * max(room.Width-1, 0),
		Z: rand.Float64() * max(room.Length-1, 0),
	}
}
