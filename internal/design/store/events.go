package store

import "time"

// Action names carried by events and metrics.
const (
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionProjectCreate      = "project.create"
	ActionProjectImport      = "project.import"
	ActionProjectLoad        = "project.load"
	ActionProjectSave        = "project.save"
	ActionProjectDelete      = "project.delete"
	ActionRoomUpdate         = "room.update"
	ActionFurnitureAdd       = "furniture.add"
	ActionFurnitureUpdate    = "furniture.update"
	ActionFurnitureRemove    = "furniture.remove"
	ActionFurnitureDuplicate = "furniture.duplicate"
	ActionSelect             = "ui.select"
	ActionView               = "ui.view"
	ActionRoomSetup          = "ui.room-setup"
	ActionFurniturePanel     = "ui.furniture-panel"
	ActionCameraPosition     = "camera.position"
	ActionCameraTarget       = "camera.target"
	ActionCameraReset        = "camera.reset"
)

// Event describes one applied action.
type Event struct {
	Action      string    `json:"action"`
	ProjectID   string    `json:"projectId,omitempty"`
	FurnitureID string    `json:"furnitureId,omitempty"`
	At          time.Time `json:"at"`
}

// Listener is called synchronously, in action order, while the store is
// locked. It must not call back into the store.
type Listener func(Event)

type listener struct {
	id int
	fn Listener
}

// Subscribe registers fn for every applied action and returns a func that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emitLocked(ev Event) {
	ev.At = s.now()
	for _, l := range s.listeners {
		l.fn(ev)
	}
}
