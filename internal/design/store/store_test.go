package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roomdesigner/internal/design/models"
	"roomdesigner/internal/design/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Helpers
// ============================================================

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%04d", n)
	}
}

type recordingPersister struct {
	mu      sync.Mutex
	saves   []snapshot.Document
	loadDoc snapshot.Document
	loadErr error
	saveErr error
}

func (p *recordingPersister) Load(context.Context) (snapshot.Document, error) {
	return p.loadDoc, p.loadErr
}

func (p *recordingPersister) Save(_ context.Context, doc snapshot.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, doc)
	return p.saveErr
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	clock := &tickingClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	base := []Option{WithClock(clock.Now), WithIDSource(sequentialIDs())}
	return New(append(base, opts...)...)
}

func chair() models.FurnitureSpec {
	spec, _ := models.Template(models.FurnitureChair)
	return spec
}

func ptr[T any](v T) *T { return &v }

// ============================================================
// Session
// ============================================================

func TestLoginLogout(t *testing.T) {
	s := newTestStore(t)

	s.Login("demo")
	st := s.State()
	assert.True(t, st.IsLoggedIn)
	assert.Equal(t, "demo", st.UserName)

	s.CreateNewProject("Design 1")
	s.CreateNewProject("Design 2")
	item, ok := s.AddFurniture(chair())
	require.True(t, ok)
	s.SetSelectedFurniture(item.ID)

	s.Logout()
	st = s.State()
	assert.False(t, st.IsLoggedIn)
	assert.Empty(t, st.UserName)
	assert.Nil(t, st.CurrentProject)
	assert.Empty(t, st.SelectedFurniture)
	assert.Len(t, st.Projects, 2, "projects survive logout")
}

// ============================================================
// Projects
// ============================================================

func TestCreateNewProject(t *testing.T) {
	s := newTestStore(t)

	p := s.CreateNewProject("Design 1")

	assert.Equal(t, "project-0001", p.ID)
	assert.Equal(t, "Design 1", p.Name)
	assert.Equal(t, models.DefaultRoomConfig(), p.RoomConfig)
	assert.NotNil(t, p.Furniture)
	assert.Empty(t, p.Furniture)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	cur, ok := s.CurrentProject()
	require.True(t, ok)
	assert.Equal(t, p, cur)
	assert.Equal(t, []models.DesignProject{p}, s.Projects())
}

func TestCreateNewProjectRegeneratesCollidingID(t *testing.T) {
	ids := []string{"a", "a", "a", "b"}
	s := newTestStore(t, WithIDSource(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	first := s.CreateNewProject("one")
	second := s.CreateNewProject("two")

	assert.Equal(t, "project-a", first.ID)
	assert.Equal(t, "project-b", second.ID)
}

func TestLoadProject(t *testing.T) {
	s := newTestStore(t)
	first := s.CreateNewProject("Design 1")
	s.CreateNewProject("Design 2")
	item, _ := s.AddFurniture(chair())
	s.SetSelectedFurniture(item.ID)

	loaded, ok := s.LoadProject(first.ID)
	require.True(t, ok)
	assert.Equal(t, first, loaded)

	cur, ok := s.CurrentProject()
	require.True(t, ok)
	assert.Equal(t, first, cur)
	assert.Empty(t, s.State().SelectedFurniture)
}

func TestLoadUnknownProjectIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	item, _ := s.AddFurniture(chair())
	s.SetSelectedFurniture(item.ID)
	before := s.State()

	_, ok := s.LoadProject("project-missing")
	assert.False(t, ok)

	assert.Equal(t, before, s.State())
}

func TestSaveProject(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	s.AddFurniture(chair())
	s.UpdateRoomConfig(models.RoomPatch{Width: ptr(8.0)})
	before, _ := s.CurrentProject()

	returned, ok := s.SaveProject()
	require.True(t, ok)

	cur, _ := s.CurrentProject()
	saved, ok := s.Project(cur.ID)
	require.True(t, ok)
	assert.Equal(t, cur, saved)
	assert.Equal(t, saved, returned)
	assert.False(t, cur.UpdatedAt.Before(before.UpdatedAt))
	assert.Equal(t, 8.0, saved.RoomConfig.Width)
	assert.Len(t, saved.Furniture, 1)
}

func TestSaveWithoutCurrentIsNoop(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.SaveProject()
	assert.False(t, ok)
	assert.Equal(t, defaultState(), s.State())
}

func TestSaveWithoutListEntryIsNoop(t *testing.T) {
	orphan := models.DesignProject{ID: "project-orphan", Name: "Orphan", Furniture: []models.FurnitureItem{}}
	p := &recordingPersister{loadDoc: snapshot.Document{CurrentProject: &orphan}}
	s := Open(context.Background(), p)

	_, ok := s.SaveProject()
	assert.False(t, ok)
	assert.Empty(t, s.Projects(), "save never resurrects a missing entry")
	assert.Zero(t, p.count())
}

func TestDeleteProject(t *testing.T) {
	s := newTestStore(t)
	first := s.CreateNewProject("Design 1")
	second := s.CreateNewProject("Design 2")

	t.Run("non current keeps current", func(t *testing.T) {
		require.True(t, s.DeleteProject(first.ID))
		cur, ok := s.CurrentProject()
		require.True(t, ok)
		assert.Equal(t, second.ID, cur.ID)
		assert.Len(t, s.Projects(), 1)
	})

	t.Run("current clears current and selection", func(t *testing.T) {
		item, _ := s.AddFurniture(chair())
		s.SetSelectedFurniture(item.ID)

		require.True(t, s.DeleteProject(second.ID))
		st := s.State()
		assert.Nil(t, st.CurrentProject)
		assert.Empty(t, st.SelectedFurniture)
		assert.Empty(t, st.Projects)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.False(t, s.DeleteProject("project-missing"))
	})
}

// ============================================================
// Room
// ============================================================

func TestUpdateRoomConfigIsTwoPhase(t *testing.T) {
	s := newTestStore(t)
	p := s.CreateNewProject("Design 1")

	edited, ok := s.UpdateRoomConfig(models.RoomPatch{Length: ptr(7.5), Shape: ptr(models.ShapeLShape)})
	require.True(t, ok)

	cur, _ := s.CurrentProject()
	assert.Equal(t, cur, edited)
	assert.Equal(t, 7.5, cur.RoomConfig.Length)
	assert.Equal(t, models.ShapeLShape, cur.RoomConfig.Shape)
	assert.Equal(t, p.RoomConfig.Width, cur.RoomConfig.Width)
	assert.True(t, cur.UpdatedAt.After(p.UpdatedAt))

	saved, _ := s.Project(p.ID)
	assert.Equal(t, p.RoomConfig, saved.RoomConfig, "list entry stays stale until saved")

	s.SaveProject()
	saved, _ = s.Project(p.ID)
	assert.Equal(t, 7.5, saved.RoomConfig.Length)
}

func TestUpdateRoomConfigAndSave(t *testing.T) {
	s := newTestStore(t)
	p := s.CreateNewProject("Design 1")

	got, ok := s.UpdateRoomConfigAndSave(models.RoomPatch{Width: ptr(9.0)})
	require.True(t, ok)
	assert.Equal(t, 9.0, got.RoomConfig.Width)

	saved, _ := s.Project(p.ID)
	assert.Equal(t, got, saved)

	t.Run("deleted entry keeps the room edit", func(t *testing.T) {
		orphan := models.DesignProject{ID: "project-orphan", Name: "Orphan", RoomConfig: models.DefaultRoomConfig(), Furniture: []models.FurnitureItem{}}
		o := Open(context.Background(), &recordingPersister{loadDoc: snapshot.Document{CurrentProject: &orphan}})

		got, ok := o.UpdateRoomConfigAndSave(models.RoomPatch{Height: ptr(3.0)})
		require.True(t, ok)
		assert.Equal(t, 3.0, got.RoomConfig.Height)
		assert.Empty(t, o.Projects())
	})
}

// ============================================================
// Import
// ============================================================

func TestCreateProjectFrom(t *testing.T) {
	s := newTestStore(t)
	bed := chair()
	bed.Type = models.FurnitureBed
	p := s.CreateProjectFrom("Imported", models.RoomPatch{Width: ptr(7.0), Shape: ptr(models.ShapeSquare)}, []models.FurnitureSpec{chair(), bed})

	assert.Equal(t, "Imported", p.Name)
	assert.Equal(t, 7.0, p.RoomConfig.Width)
	assert.Equal(t, models.DefaultRoomConfig().Height, p.RoomConfig.Height)
	require.Len(t, p.Furniture, 2)
	assert.NotEqual(t, p.Furniture[0].ID, p.Furniture[1].ID)
	assert.Equal(t, models.FurnitureBed, p.Furniture[1].Type)

	saved, ok := s.Project(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, saved)
	cur, _ := s.CurrentProject()
	assert.Equal(t, p, cur)
}

func TestCreateProjectFromIsAtomic(t *testing.T) {
	s := New()
	specs := []models.FurnitureSpec{chair(), chair(), chair()}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.CreateProjectFrom("Imported", models.RoomPatch{Width: ptr(9.0)}, specs)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				p := s.CreateNewProject("Other")
				s.LoadProject(p.ID)
			}
		}()
	}
	wg.Wait()

	require.Len(t, s.Projects(), 320)
	for _, p := range s.Projects() {
		switch p.Name {
		case "Imported":
			assert.Len(t, p.Furniture, 3)
			assert.Equal(t, 9.0, p.RoomConfig.Width)
		case "Other":
			assert.Empty(t, p.Furniture)
			assert.Equal(t, models.DefaultRoomConfig(), p.RoomConfig)
		}
	}
}

// ============================================================
// Furniture
// ============================================================

func TestFurnitureWithoutCurrentIsNoop(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.AddFurniture(chair())
	assert.False(t, ok)
	_, ok = s.UpdateFurniture("x", models.FurniturePatch{Name: ptr("y")})
	assert.False(t, ok)
	_, ok = s.MoveFurniture("x", models.Vec3{X: 1, Z: 1})
	assert.False(t, ok)
	assert.False(t, s.RemoveFurniture("x"))
	_, ok = s.DuplicateFurniture("x")
	assert.False(t, ok)
	_, ok = s.UpdateRoomConfig(models.RoomPatch{Width: ptr(3.0)})
	assert.False(t, ok)
	_, ok = s.UpdateRoomConfigAndSave(models.RoomPatch{Width: ptr(3.0)})
	assert.False(t, ok)

	assert.Equal(t, defaultState(), s.State())
}

func TestAddFurnitureIDsAreDistinct(t *testing.T) {
	s := New()
	s.CreateNewProject("Design 1")

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		item, ok := s.AddFurniture(models.Templates()[i%len(models.FurnitureTypes)])
		require.True(t, ok)
		require.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}

	cur, _ := s.CurrentProject()
	assert.Len(t, cur.Furniture, 200)
}

func TestAddFurnitureAppends(t *testing.T) {
	s := newTestStore(t)
	p := s.CreateNewProject("Design 1")

	item, ok := s.AddFurniture(chair())
	require.True(t, ok)

	assert.Equal(t, "furniture-0002", item.ID)
	assert.Equal(t, chair().WithID(item.ID), item)

	cur, _ := s.CurrentProject()
	assert.Equal(t, []models.FurnitureItem{item}, cur.Furniture)
	assert.True(t, cur.UpdatedAt.After(p.UpdatedAt))
}

func TestUpdateFurniturePositionX(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	spec := chair()
	spec.Position = models.Vec3{X: 1, Y: 0.5, Z: 2}
	item, _ := s.AddFurniture(spec)
	other, _ := s.AddFurniture(chair())

	updated, ok := s.UpdateFurniture(item.ID, models.FurniturePatch{Position: &models.Vec3Patch{X: ptr(4.0)}})
	require.True(t, ok)

	cur, _ := s.CurrentProject()
	want := item
	want.Position.X = 4
	assert.Equal(t, want, updated)
	assert.Equal(t, want, cur.Furniture[0])
	assert.Equal(t, other, cur.Furniture[1])
}

func TestMoveFurnitureClampsToRoom(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	s.UpdateRoomConfig(models.RoomPatch{Width: ptr(4.0), Length: ptr(3.0)})
	spec := chair()
	spec.Position = models.Vec3{X: 1, Y: 0.4, Z: 1}
	item, _ := s.AddFurniture(spec)

	moved, ok := s.MoveFurniture(item.ID, models.Vec3{X: -2, Y: 1, Z: 10})
	require.True(t, ok)
	assert.Equal(t, models.Vec3{X: 0.5, Y: 0, Z: 2.5}, moved.Position)

	cur, _ := s.CurrentProject()
	assert.Equal(t, moved, cur.Furniture[0])
}

func TestUpdateUnknownFurnitureIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	s.AddFurniture(chair())
	before := s.State()

	_, ok := s.UpdateFurniture("furniture-missing", models.FurniturePatch{Name: ptr("x")})
	assert.False(t, ok)
	assert.Equal(t, before, s.State())
}

func TestRemoveFurnitureIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	item, _ := s.AddFurniture(chair())
	keep, _ := s.AddFurniture(chair())
	s.SetSelectedFurniture(item.ID)

	require.True(t, s.RemoveFurniture(item.ID))
	afterFirst := s.State()
	assert.Empty(t, afterFirst.SelectedFurniture)
	assert.Equal(t, []models.FurnitureItem{keep}, afterFirst.CurrentProject.Furniture)

	assert.False(t, s.RemoveFurniture(item.ID))
	assert.Equal(t, afterFirst, s.State())
}

func TestRemoveOtherFurnitureKeepsSelection(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	a, _ := s.AddFurniture(chair())
	b, _ := s.AddFurniture(chair())
	s.SetSelectedFurniture(a.ID)

	s.RemoveFurniture(b.ID)
	assert.Equal(t, a.ID, s.State().SelectedFurniture)
}

func TestDuplicateFurniture(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	spec := chair()
	spec.Position = models.Vec3{X: 2, Y: 0.25, Z: 3}
	spec.Rotation = models.Vec3{Y: 1.2}
	src, _ := s.AddFurniture(spec)

	dup, ok := s.DuplicateFurniture(src.ID)
	require.True(t, ok)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, src.Type, dup.Type)
	assert.Equal(t, src.Size, dup.Size)
	assert.Equal(t, src.Color, dup.Color)
	assert.Equal(t, src.Rotation, dup.Rotation)
	assert.Equal(t, models.Vec3{X: 3, Y: 0.25, Z: 4}, dup.Position)

	cur, _ := s.CurrentProject()
	require.Len(t, cur.Furniture, 2)
	assert.Equal(t, src, cur.Furniture[0])
	assert.Equal(t, dup, cur.Furniture[1])

	_, ok = s.DuplicateFurniture("furniture-missing")
	assert.False(t, ok)
}

// ============================================================
// Selection, view, camera
// ============================================================

func TestSelection(t *testing.T) {
	s := newTestStore(t)
	s.CreateNewProject("Design 1")
	item, _ := s.AddFurniture(chair())

	s.SetSelectedFurniture(item.ID)
	got, ok := s.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, item, got)

	s.SetSelectedFurniture("furniture-stale")
	assert.Equal(t, "furniture-stale", s.State().SelectedFurniture)
	_, ok = s.SelectedItem()
	assert.False(t, ok, "dangling selection reads as not found")

	s.SetSelectedFurniture("")
	_, ok = s.SelectedItem()
	assert.False(t, ok)
}

func TestViewAndToggles(t *testing.T) {
	s := newTestStore(t)
	st := s.State()
	assert.Equal(t, models.View3D, st.ActiveView)
	assert.False(t, st.ShowRoomSetup)
	assert.True(t, st.ShowFurniturePanel)

	s.SetActiveView(models.View2D)
	assert.Equal(t, models.View2D, s.State().ActiveView)

	assert.True(t, s.ToggleRoomSetup(nil))
	assert.False(t, s.ToggleRoomSetup(nil))
	assert.False(t, s.ToggleRoomSetup(ptr(false)))
	assert.True(t, s.ToggleRoomSetup(ptr(true)))
	assert.True(t, s.ToggleRoomSetup(ptr(true)))

	assert.False(t, s.ToggleFurniturePanel(nil))
	assert.True(t, s.ToggleFurniturePanel(ptr(true)))
	assert.True(t, s.State().ShowFurniturePanel)
}

func TestCamera(t *testing.T) {
	s := newTestStore(t)

	s.SetCameraPosition(models.Vec3{X: 1, Y: 2, Z: 3})
	s.SetCameraTarget(models.Vec3{X: 4, Y: 0, Z: 4})
	st := s.State()
	assert.Equal(t, models.Vec3{X: 1, Y: 2, Z: 3}, st.CameraPosition)
	assert.Equal(t, models.Vec3{X: 4, Y: 0, Z: 4}, st.CameraTarget)

	s.ResetCamera()
	st = s.State()
	assert.Equal(t, models.Vec3{X: 5, Y: 5, Z: 5}, st.CameraPosition)
	assert.Equal(t, models.Vec3{}, st.CameraTarget)
}

// ============================================================
// Copy semantics
// ============================================================

func TestReadsDoNotAlias(t *testing.T) {
	s := newTestStore(t)
	p := s.CreateNewProject("Design 1")
	s.AddFurniture(chair())
	s.SaveProject()

	st := s.State()
	st.CurrentProject.Furniture[0].Name = "mutated"
	st.Projects[0].Furniture[0].Name = "mutated"
	st.Projects[0].Name = "mutated"

	cur, _ := s.CurrentProject()
	saved, _ := s.Project(p.ID)
	assert.Equal(t, "Modern Chair", cur.Furniture[0].Name)
	assert.Equal(t, "Modern Chair", saved.Furniture[0].Name)
	assert.Equal(t, "Design 1", saved.Name)
}

func TestCurrentAndListDoNotAliasAfterSave(t *testing.T) {
	s := newTestStore(t)
	p := s.CreateNewProject("Design 1")
	item, _ := s.AddFurniture(chair())
	s.SaveProject()

	s.UpdateFurniture(item.ID, models.FurniturePatch{Name: ptr("Edited")})

	saved, _ := s.Project(p.ID)
	cur, _ := s.CurrentProject()
	assert.Equal(t, "Modern Chair", saved.Furniture[0].Name)
	assert.Equal(t, "Edited", cur.Furniture[0].Name)
}

// ============================================================
// Persistence
// ============================================================

func TestPersistsOnlyPersistedFields(t *testing.T) {
	p := &recordingPersister{}
	s := newTestStore(t, WithPersister(p))

	s.Login("demo")
	s.CreateNewProject("Design 1")
	require.Equal(t, 2, p.count())

	s.SetActiveView(models.View2D)
	s.ToggleRoomSetup(nil)
	s.ToggleFurniturePanel(nil)
	s.SetCameraPosition(models.Vec3{X: 1})
	s.SetCameraTarget(models.Vec3{X: 1})
	s.ResetCamera()
	s.SetSelectedFurniture("x")
	assert.Equal(t, 2, p.count(), "ui and camera changes are not written")

	s.LoadProject("project-missing")
	assert.Equal(t, 2, p.count(), "no-ops are not written")

	s.AddFurniture(chair())
	require.Equal(t, 3, p.count())
	last := p.saves[2]
	assert.True(t, last.IsLoggedIn)
	assert.Equal(t, "demo", last.UserName)
	require.NotNil(t, last.CurrentProject)
	assert.Len(t, last.CurrentProject.Furniture, 1)
	assert.Empty(t, last.Projects[0].Furniture)
}

func TestSaveFailureDoesNotReachCaller(t *testing.T) {
	p := &recordingPersister{saveErr: errors.New("disk full")}
	s := newTestStore(t, WithPersister(p))

	s.Login("demo")
	created := s.CreateNewProject("Design 1")

	cur, ok := s.CurrentProject()
	require.True(t, ok)
	assert.Equal(t, created, cur)
	assert.Equal(t, 2, p.count())
}

func TestOpenRehydrates(t *testing.T) {
	ctx := context.Background()
	persister := snapshot.NewPersister(snapshot.JSONCodec{}, snapshot.NewMemorySlot())

	first := Open(ctx, persister)
	first.Login("demo")
	p := first.CreateNewProject("Design 1")
	first.SetActiveView(models.View2D)
	first.SetCameraPosition(models.Vec3{X: 9})

	second := Open(ctx, persister)
	st := second.State()
	assert.True(t, st.IsLoggedIn)
	assert.Equal(t, "demo", st.UserName)
	require.Len(t, st.Projects, 1)
	assert.Equal(t, p.ID, st.Projects[0].ID)
	require.NotNil(t, st.CurrentProject)
	assert.Equal(t, p.ID, st.CurrentProject.ID)

	assert.Equal(t, models.View3D, st.ActiveView, "ui state resets")
	assert.Equal(t, DefaultCameraPosition, st.CameraPosition)
}

func TestOpenEmptyOrBrokenSlotGivesDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s := Open(ctx, &recordingPersister{loadErr: snapshot.ErrEmptySlot})
		assert.Equal(t, defaultState(), s.State())
	})

	t.Run("broken", func(t *testing.T) {
		p := &recordingPersister{loadErr: errors.New("decode json snapshot: unexpected EOF")}
		s := Open(ctx, p)
		assert.Equal(t, defaultState(), s.State())

		s.Login("demo")
		assert.Equal(t, 1, p.count(), "next action overwrites the broken snapshot")
	})
}

func TestScenarioCreateFurnishSaveReload(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"json", "cbor"} {
		t.Run(name, func(t *testing.T) {
			codec, err := snapshot.CodecByName(name)
			require.NoError(t, err)
			persister := snapshot.NewPersister(codec, snapshot.NewMemorySlot())

			s := Open(ctx, persister)
			s.CreateNewProject("Design 1")
			item, ok := s.AddFurniture(chair())
			require.True(t, ok)
			s.SetSelectedFurniture(item.ID)
			_, ok = s.UpdateFurniture(item.ID, models.FurniturePatch{Position: models.Vec3{X: 2, Y: 0, Z: 3}.Full()})
			require.True(t, ok)
			_, ok = s.SaveProject()
			require.True(t, ok)
			want, _ := s.CurrentProject()

			reloaded := Open(ctx, persister)
			projects := reloaded.Projects()
			require.Len(t, projects, 1)
			require.Len(t, projects[0].Furniture, 1)
			assert.Equal(t, models.FurnitureChair, projects[0].Furniture[0].Type)
			assert.Equal(t, models.Vec3{X: 2, Y: 0, Z: 3}, projects[0].Furniture[0].Position)
			assert.True(t, want.UpdatedAt.Equal(projects[0].UpdatedAt))
			assert.False(t, projects[0].UpdatedAt.Before(projects[0].CreatedAt))
		})
	}
}

func TestScenarioLogoutKeepsProjectCount(t *testing.T) {
	s := newTestStore(t)
	s.Login("demo")
	s.CreateNewProject("Design 1")
	s.CreateNewProject("Design 2")
	s.SaveProject()
	before := len(s.Projects())

	s.Logout()

	_, ok := s.CurrentProject()
	assert.False(t, ok)
	assert.Len(t, s.Projects(), before)
}

// ============================================================
// Events & concurrency
// ============================================================

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)

	var got []Event
	unsubscribe := s.Subscribe(func(ev Event) { got = append(got, ev) })

	p := s.CreateNewProject("Design 1")
	item, _ := s.AddFurniture(chair())
	s.LoadProject("project-missing")
	s.SetActiveView(models.View2D)

	require.Len(t, got, 3, "skipped actions emit nothing")
	assert.Equal(t, ActionProjectCreate, got[0].Action)
	assert.Equal(t, p.ID, got[0].ProjectID)
	assert.Equal(t, ActionFurnitureAdd, got[1].Action)
	assert.Equal(t, item.ID, got[1].FurnitureID)
	assert.Equal(t, ActionView, got[2].Action)
	assert.False(t, got[2].At.IsZero())

	unsubscribe()
	s.ResetCamera()
	assert.Len(t, got, 3)
}

func TestConcurrentActions(t *testing.T) {
	s := New()
	s.CreateNewProject("Design 1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				item, ok := s.AddFurniture(chair())
				if ok {
					s.UpdateFurniture(item.ID, models.FurniturePatch{Position: &models.Vec3Patch{X: ptr(float64(j))}})
				}
				_ = s.State()
			}
		}()
	}
	wg.Wait()

	cur, _ := s.CurrentProject()
	assert.Len(t, cur.Furniture, 200)
}
