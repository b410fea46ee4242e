// Package store holds the application state of the room designer: session,
// projects, the current working project, selection, view flags and camera.
//
// Every action serializes on one mutex and runs to completion before the
// next starts. Actions whose preconditions are not met (no current project,
// unknown id) leave the state untouched and report false; they never error.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"roomdesigner/internal/common/metrics"
	"roomdesigner/internal/design/models"
	"roomdesigner/internal/design/snapshot"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	DefaultCameraPosition = models.Vec3{X: 5, Y: 5, Z: 5}
	DefaultCameraTarget   = models.Vec3{}

	// DuplicateOffset keeps a duplicate visibly apart from its source.
	DuplicateOffset = models.Vec3{X: 1, Y: 0, Z: 1}
)

// Persister keeps the persisted subset of the state between runs.
// *snapshot.Persister implements it.
type Persister interface {
	Load(ctx context.Context) (snapshot.Document, error)
	Save(ctx context.Context, doc snapshot.Document) error
}

// State is a full read of the store. Values returned by State share nothing
// with the store.
type State struct {
	IsLoggedIn         bool                   `json:"isLoggedIn"`
	UserName           string                 `json:"userName"`
	Projects           []models.DesignProject `json:"projects"`
	CurrentProject     *models.DesignProject  `json:"currentProject"`
	ActiveView         models.View            `json:"activeView"`
	SelectedFurniture  string                 `json:"selectedFurniture,omitempty"`
	ShowRoomSetup      bool                   `json:"showRoomSetup"`
	ShowFurniturePanel bool                   `json:"showFurniturePanel"`
	CameraPosition     models.Vec3            `json:"cameraPosition"`
	CameraTarget       models.Vec3            `json:"cameraTarget"`
}

func defaultState() State {
	return State{
		Projects:           []models.DesignProject{},
		ActiveView:         models.View3D,
		ShowFurniturePanel: true,
		CameraPosition:     DefaultCameraPosition,
		CameraTarget:       DefaultCameraTarget,
	}
}

func (st State) clone() State {
	out := st
	out.Projects = make([]models.DesignProject, len(st.Projects))
	for i := range st.Projects {
		out.Projects[i] = st.Projects[i].Clone()
	}
	if st.CurrentProject != nil {
		cur := st.CurrentProject.Clone()
		out.CurrentProject = &cur
	}
	return out
}

// ============================================================
// Store
// ============================================================

type Store struct {
	mu    sync.Mutex
	state State

	persister   Persister
	saveTimeout time.Duration
	log         zerolog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	newID       func() string

	listeners      []listener
	nextListenerID int
}

// New returns a store in its default state. Without WithPersister nothing
// is written anywhere.
func New(opts ...Option) *Store {
	s := &Store{
		state:       defaultState(),
		saveTimeout: 5 * time.Second,
		log:         zerolog.Nop(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a store backed by p and rehydrates the persisted fields from
// it. An empty slot gives the default state; an unreadable one is logged and
// overwritten by the next persisted action.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := New(append(opts, WithPersister(p))...)

	doc, err := p.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrEmptySlot):
		s.log.Debug().Msg("snapshot slot empty, starting fresh")
		return s
	case err != nil:
		s.metrics.IncSnapshotFailure("load")
		s.log.Warn().Err(err).Msg("snapshot unreadable, starting fresh")
		return s
	}

	s.state.IsLoggedIn = doc.IsLoggedIn
	s.state.UserName = doc.UserName
	for _, proj := range doc.Projects {
		s.state.Projects = append(s.state.Projects, proj.Clone())
	}
	if doc.CurrentProject != nil {
		cur := doc.CurrentProject.Clone()
		s.state.CurrentProject = &cur
	}
	s.log.Info().
		Int("projects", len(s.state.Projects)).
		Bool("logged_in", s.state.IsLoggedIn).
		Msg("state restored from snapshot")
	return s
}

// ============================================================
// Reads
// ============================================================

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) Projects() []models.DesignProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().Projects
}

// Project returns the saved entry with id.
func (s *Store) Project(id string) (models.DesignProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.projectIndex(id)
	if idx < 0 {
		return models.DesignProject{}, false
	}
	return s.state.Projects[idx].Clone(), true
}

func (s *Store) CurrentProject() (models.DesignProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentProject == nil {
		return models.DesignProject{}, false
	}
	return s.state.CurrentProject.Clone(), true
}

// SelectedItem resolves the selection against the current project. A
// dangling selection reads as not found.
func (s *Store) SelectedItem() (models.FurnitureItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.CurrentProject
	if cur == nil || s.state.SelectedFurniture == "" {
		return models.FurnitureItem{}, false
	}
	idx := cur.FindFurniture(s.state.SelectedFurniture)
	if idx < 0 {
		return models.FurnitureItem{}, false
	}
	return cur.Furniture[idx], true
}

// Snapshot returns the persisted subset of the state.
func (s *Store) Snapshot() snapshot.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *Store) documentLocked() snapshot.Document {
	st := s.state.clone()
	return snapshot.Document{
		IsLoggedIn:     st.IsLoggedIn,
		UserName:       st.UserName,
		Projects:       st.Projects,
		CurrentProject: st.CurrentProject,
	}
}

// ============================================================
// Internals
// ============================================================

func (s *Store) projectIndex(id string) int {
	for i := range s.state.Projects {
		if s.state.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) projectID() string {
	for {
		id := "project-" + s.newID()
		if s.projectIndex(id) < 0 {
			return id
		}
	}
}

func (s *Store) furnitureID(p *models.DesignProject) string {
	for {
		id := "furniture-" + s.newID()
		if p.FindFurniture(id) < 0 {
			return id
		}
	}
}

// editCurrent applies fn to a copy of the current project, stamps updatedAt
// and swaps the copy in. fn reports whether it changed anything.
func (s *Store) editCurrent(fn func(p *models.DesignProject) bool) bool {
	if s.state.CurrentProject == nil {
		return false
	}
	next := s.state.CurrentProject.Clone()
	if !fn(&next) {
		return false
	}
	next.UpdatedAt = s.now()
	s.state.CurrentProject = &next
	return true
}

// applied finishes an action that changed state. persist is false for UI
// and camera fields, which never reach the snapshot.
func (s *Store) applied(ev Event, persist bool) {
	if persist {
		s.persistLocked()
	}
	s.metrics.IncStoreAction(ev.Action, true)
	s.emitLocked(ev)
}

func (s *Store) skipped(action, id string) {
	s.metrics.IncStoreAction(action, false)
	s.log.Debug().Str("action", action).Str("id", id).Msg("action skipped")
}

func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, s.documentLocked()); err != nil {
		s.metrics.IncSnapshotFailure("save")
		s.log.Error().Err(err).Msg("snapshot save failed")
	}
}
