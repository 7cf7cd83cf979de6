package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanewayhq/laneway/engine"
)

func testDatabase(t *testing.T) *engine.Database {
	t.Helper()
	db := engine.NewDatabase()
	x := engine.RegisterScalarInput[int](db, "x", nil)
	double := engine.RegisterDerived(db, "double", nil, func(ctx *engine.Context, _ engine.NoArgs) (int, error) {
		v, err := x.Get(ctx, engine.NoArgs{})
		return v * 2, err
	})
	x.Set(engine.NoArgs{}, 21)
	_, err := double.Call(engine.NoArgs{})
	require.NoError(t, err)
	return db
}

func TestNewModel_PopulatesDerivedAndKeys(t *testing.T) {
	m := newModel(testDatabase(t))

	require.Len(t, m.derivedIds, 1)
	assert.Contains(t, m.derivedIds[0].String(), "double")
	require.Len(t, m.keys, 1)
}

func TestModel_Update_Quit(t *testing.T) {
	m := newModel(testDatabase(t))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	mm := updated.(model)

	assert.True(t, mm.quitting)
	require.NotNil(t, cmd)
}

func TestModel_Update_NavigatesPanes(t *testing.T) {
	m := newModel(testDatabase(t))
	assert.Equal(t, paneDerived, m.focus)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	mm := updated.(model)
	assert.Equal(t, paneKeys, mm.focus)

	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyRight})
	mm = updated.(model)
	assert.Equal(t, paneDetail, mm.focus)

	// Already at the rightmost pane: another Right is a no-op.
	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyRight})
	mm = updated.(model)
	assert.Equal(t, paneDetail, mm.focus)

	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyLeft})
	mm = updated.(model)
	assert.Equal(t, paneKeys, mm.focus)
}

func TestModel_View_RendersRevisionAndEntries(t *testing.T) {
	m := newModel(testDatabase(t))
	view := m.View()

	assert.Contains(t, view, "revision 1")
	assert.Contains(t, view, "double")
	assert.Contains(t, view, "changed_at:")
}

func TestModel_Refresh_PicksUpNewRevision(t *testing.T) {
	db := testDatabase(t)
	m := newModel(db)

	x := engine.RegisterScalarInput[int](db, "x", nil)
	x.Set(engine.NoArgs{}, 99)
	m.refresh()

	assert.EqualValues(t, 2, db.Revision())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-5, 0, 10))
	assert.Equal(t, 10, clamp(50, 0, 10))
	assert.Equal(t, 5, clamp(5, 0, 10))
}
