package store

import (
	"slices"

	"roomdesigner/internal/design/models"
)

// ============================================================
// Session
// ============================================================

// Login trusts the caller; credentials are checked before it is reached.
func (s *Store) Login(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsLoggedIn = true
	s.state.UserName = name
	s.applied(Event{Action: ActionLogin}, true)
}

// Logout ends the session and drops the working project. Saved projects stay.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsLoggedIn = false
	s.state.UserName = ""
	s.state.CurrentProject = nil
	s.state.SelectedFurniture = ""
	s.applied(Event{Action: ActionLogout}, true)
}

// ============================================================
// Projects
// ============================================================

func (s *Store) CreateNewProject(name string) models.DesignProject {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := models.DesignProject{
		ID:         s.projectID(),
		Name:       name,
		RoomConfig: models.DefaultRoomConfig(),
		Furniture:  []models.FurnitureItem{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cur := p.Clone()
	s.state.Projects = append(s.state.Projects, p)
	s.state.CurrentProject = &cur
	s.state.SelectedFurniture = ""

	s.applied(Event{Action: ActionProjectCreate, ProjectID: p.ID}, true)
	return p.Clone()
}

// CreateProjectFrom builds a project from a room patch and furniture specs,
// appends it to the list already saved and makes it current. Nothing else
// can touch the project before it is complete.
func (s *Store) CreateProjectFrom(name string, room models.RoomPatch, specs []models.FurnitureSpec) models.DesignProject {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := models.DesignProject{
		ID:         s.projectID(),
		Name:       name,
		RoomConfig: room.Apply(models.DefaultRoomConfig()),
		Furniture:  make([]models.FurnitureItem, 0, len(specs)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, spec := range specs {
		p.Furniture = append(p.Furniture, spec.WithID(s.furnitureID(&p)))
	}
	cur := p.Clone()
	s.state.Projects = append(s.state.Projects, p)
	s.state.CurrentProject = &cur
	s.state.SelectedFurniture = ""

	s.applied(Event{Action: ActionProjectImport, ProjectID: p.ID}, true)
	return p.Clone()
}

// LoadProject makes a copy of the saved project current and returns it.
func (s *Store) LoadProject(id string) (models.DesignProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.projectIndex(id)
	if idx < 0 {
		s.skipped(ActionProjectLoad, id)
		return models.DesignProject{}, false
	}
	cur := s.state.Projects[idx].Clone()
	s.state.CurrentProject = &cur
	s.state.SelectedFurniture = ""

	s.applied(Event{Action: ActionProjectLoad, ProjectID: id}, true)
	return cur.Clone(), true
}

// SaveProject stamps the working project and writes it over its entry in
// the project list. Both end up deep-equal. If the entry has been deleted
// the save does nothing.
func (s *Store) SaveProject() (models.DesignProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok := s.saveLocked()
	if !ok {
		return models.DesignProject{}, false
	}
	s.applied(Event{Action: ActionProjectSave, ProjectID: saved.ID}, true)
	return saved, true
}

func (s *Store) saveLocked() (models.DesignProject, bool) {
	if s.state.CurrentProject == nil {
		s.skipped(ActionProjectSave, "")
		return models.DesignProject{}, false
	}
	id := s.state.CurrentProject.ID
	idx := s.projectIndex(id)
	if idx < 0 {
		s.skipped(ActionProjectSave, id)
		return models.DesignProject{}, false
	}

	saved := s.state.CurrentProject.Clone()
	saved.UpdatedAt = s.now()
	cur := saved.Clone()
	s.state.Projects[idx] = saved
	s.state.CurrentProject = &cur
	return cur.Clone(), true
}

func (s *Store) DeleteProject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.projectIndex(id)
	if idx < 0 {
		s.skipped(ActionProjectDelete, id)
		return false
	}
	s.state.Projects = slices.Delete(s.state.Projects, idx, idx+1)
	if s.state.CurrentProject != nil && s.state.CurrentProject.ID == id {
		s.state.CurrentProject = nil
		s.state.SelectedFurniture = ""
	}

	s.applied(Event{Action: ActionProjectDelete, ProjectID: id}, true)
	return true
}

// ============================================================
// Room
// ============================================================

// UpdateRoomConfig merges patch into the working project only and returns
// it. The project list keeps the old room until SaveProject.
func (s *Store) UpdateRoomConfig(patch models.RoomPatch) (models.DesignProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.updateRoomLocked(patch) {
		return models.DesignProject{}, false
	}
	s.applied(Event{Action: ActionRoomUpdate, ProjectID: s.state.CurrentProject.ID}, true)
	return s.state.CurrentProject.Clone(), true
}

// UpdateRoomConfigAndSave is UpdateRoomConfig followed by SaveProject under
// one lock. The bool reports the room update; like SaveProject, the save
// does nothing when the project has no list entry.
func (s *Store) UpdateRoomConfigAndSave(patch models.RoomPatch) (models.DesignProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.updateRoomLocked(patch) {
		return models.DesignProject{}, false
	}
	id := s.state.CurrentProject.ID
	_, saved := s.saveLocked()
	s.applied(Event{Action: ActionRoomUpdate, ProjectID: id}, !saved)
	if saved {
		s.applied(Event{Action: ActionProjectSave, ProjectID: id}, true)
	}
	return s.state.CurrentProject.Clone(), true
}

func (s *Store) updateRoomLocked(patch models.RoomPatch) bool {
	ok := s.editCurrent(func(p *models.DesignProject) bool {
		p.RoomConfig = patch.Apply(p.RoomConfig)
		return true
	})
	if !ok {
		s.skipped(ActionRoomUpdate, "")
	}
	return ok
}

// ============================================================
// Furniture
// ============================================================

func (s *Store) AddFurniture(spec models.FurnitureSpec) (models.FurnitureItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var item models.FurnitureItem
	ok := s.editCurrent(func(p *models.DesignProject) bool {
		item = spec.WithID(s.furnitureID(p))
		p.Furniture = append(p.Furniture, item)
		return true
	})
	if !ok {
		s.skipped(ActionFurnitureAdd, "")
		return models.FurnitureItem{}, false
	}
	s.applied(Event{Action: ActionFurnitureAdd, ProjectID: s.state.CurrentProject.ID, FurnitureID: item.ID}, true)
	return item, true
}

// UpdateFurniture merges patch into the item with id and returns the
// result. Vector fields merge per component.
func (s *Store) UpdateFurniture(id string, patch models.FurniturePatch) (models.FurnitureItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateFurnitureLocked(id, func(_ models.RoomConfig, item models.FurnitureItem) models.FurnitureItem {
		return patch.Apply(item)
	})
}

// MoveFurniture drags the item to (to.X, to.Z) on the floor, clamped to the
// room of the project it belongs to.
func (s *Store) MoveFurniture(id string, to models.Vec3) (models.FurnitureItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateFurnitureLocked(id, func(room models.RoomConfig, item models.FurnitureItem) models.FurnitureItem {
		item.Position = models.ClampToRoom(to, room)
		return item
	})
}

func (s *Store) updateFurnitureLocked(id string, fn func(models.RoomConfig, models.FurnitureItem) models.FurnitureItem) (models.FurnitureItem, bool) {
	var updated models.FurnitureItem
	ok := s.editCurrent(func(p *models.DesignProject) bool {
		idx := p.FindFurniture(id)
		if idx < 0 {
			return false
		}
		p.Furniture[idx] = fn(p.RoomConfig, p.Furniture[idx])
		updated = p.Furniture[idx]
		return true
	})
	if !ok {
		s.skipped(ActionFurnitureUpdate, id)
		return models.FurnitureItem{}, false
	}
	s.applied(Event{Action: ActionFurnitureUpdate, ProjectID: s.state.CurrentProject.ID, FurnitureID: id}, true)
	return updated, true
}

func (s *Store) RemoveFurniture(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.editCurrent(func(p *models.DesignProject) bool {
		idx := p.FindFurniture(id)
		if idx < 0 {
			return false
		}
		p.Furniture = slices.Delete(p.Furniture, idx, idx+1)
		return true
	})
	if !ok {
		s.skipped(ActionFurnitureRemove, id)
		return false
	}
	if s.state.SelectedFurniture == id {
		s.state.SelectedFurniture = ""
	}
	s.applied(Event{Action: ActionFurnitureRemove, ProjectID: s.state.CurrentProject.ID, FurnitureID: id}, true)
	return true
}

// DuplicateFurniture appends a copy of the item with a new id, shifted by
// DuplicateOffset.
func (s *Store) DuplicateFurniture(id string) (models.FurnitureItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dup models.FurnitureItem
	ok := s.editCurrent(func(p *models.DesignProject) bool {
		idx := p.FindFurniture(id)
		if idx < 0 {
			return false
		}
		dup = p.Furniture[idx]
		dup.ID = s.furnitureID(p)
		dup.Position = dup.Position.Add(DuplicateOffset)
		p.Furniture = append(p.Furniture, dup)
		return true
	})
	if !ok {
		s.skipped(ActionFurnitureDuplicate, id)
		return models.FurnitureItem{}, false
	}
	s.applied(Event{Action: ActionFurnitureDuplicate, ProjectID: s.state.CurrentProject.ID, FurnitureID: dup.ID}, true)
	return dup, true
}

// ============================================================
// Selection & view
// ============================================================

// SetSelectedFurniture accepts any id, including stale ones. "" clears.
func (s *Store) SetSelectedFurniture(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SelectedFurniture = id
	s.applied(Event{Action: ActionSelect, FurnitureID: id}, false)
}

func (s *Store) SetActiveView(v models.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ActiveView = v
	s.applied(Event{Action: ActionView}, false)
}

// ToggleRoomSetup sets the flag to *show, or inverts it when show is nil.
func (s *Store) ToggleRoomSetup(show *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ShowRoomSetup = toggle(s.state.ShowRoomSetup, show)
	s.applied(Event{Action: ActionRoomSetup}, false)
	return s.state.ShowRoomSetup
}

func (s *Store) ToggleFurniturePanel(show *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ShowFurniturePanel = toggle(s.state.ShowFurniturePanel, show)
	s.applied(Event{Action: ActionFurniturePanel}, false)
	return s.state.ShowFurniturePanel
}

func toggle(cur bool, show *bool) bool {
	if show != nil {
		return *show
	}
	return !cur
}

// ============================================================
// Camera
// ============================================================

func (s *Store) SetCameraPosition(v models.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CameraPosition = v
	s.applied(Event{Action: ActionCameraPosition}, false)
}

func (s *Store) SetCameraTarget(v models.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CameraTarget = v
	s.applied(Event{Action: ActionCameraTarget}, false)
}

func (s *Store) ResetCamera() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.CameraPosition = DefaultCameraPosition
	s.state.CameraTarget = DefaultCameraTarget
	s.applied(Event{Action: ActionCameraReset}, false)
}
