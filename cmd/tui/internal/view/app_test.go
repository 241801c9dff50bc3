package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a screen that remembers what it received.
type recorder struct {
	title string
	msgs  *[]tea.Msg
}

func newRecorder(title string) recorder {
	return recorder{title: title, msgs: &[]tea.Msg{}}
}

func (r recorder) Title() string     { return r.title }
func (r recorder) ShortHelp() string { return "help " + r.title }
func (r recorder) Init() tea.Cmd     { return nil }
func (r recorder) View() string      { return "screen " + r.title }

func (r recorder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	*r.msgs = append(*r.msgs, msg)
	return r, nil
}

func (r recorder) received(target tea.Msg) bool {
	for _, m := range *r.msgs {
		if assert.ObjectsAreEqual(target, m) {
			return true
		}
	}

	return false
}

func TestApp_PushAndBack(t *testing.T) {
	root, child := newRecorder("Объекты"), newRecorder("Сметы")
	app := NewApp(&Services{}, discardLogger(), root)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, _ = model.Update(PushMsg{View: child})

	a := model.(App)
	require.Len(t, a.stack, 2)
	assert.Contains(t, a.View(), "Объекты › Сметы")
	assert.Contains(t, a.View(), "help Сметы")
	assert.True(t, child.received(tea.WindowSizeMsg{Width: 120, Height: 38}), "pushed screen gets the size")

	model, _ = model.Update(key("x"))
	assert.True(t, child.received(key("x")), "keys go to the top screen")
	assert.False(t, root.received(key("x")))

	model, _ = model.Update(BackMsg{})

	a = model.(App)
	require.Len(t, a.stack, 1)
	assert.True(t, root.received(ShownMsg{}), "revealed screen is told to reload")
}

func TestApp_BackFromRootQuits(t *testing.T) {
	app := NewApp(&Services{}, discardLogger(), newRecorder("Объекты"))

	_, cmd := app.Update(BackMsg{})
	require.NotNil(t, cmd)

	_, ok := exec(cmd).(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_UnreadBadge(t *testing.T) {
	app := NewApp(&Services{}, discardLogger(), newRecorder("Объекты"))

	model, cmd := app.Update(unreadMsg{count: 3, poll: false})
	assert.Nil(t, cmd, "a one-off refresh does not start another poll")
	assert.Contains(t, model.View(), "✉ 3")

	model, cmd = model.Update(unreadMsg{count: 0, poll: true})
	assert.NotNil(t, cmd)
	assert.NotContains(t, model.View(), "✉")
}

func TestApp_NotifyInterval(t *testing.T) {
	type testCase struct {
		name       string
		configured time.Duration
		want       time.Duration
	}

	tests := []testCase{
		{name: "Default", configured: 0, want: 30 * time.Second},
		{name: "Configured", configured: 2 * time.Minute, want: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp(&Services{NotifyInterval: tt.configured}, discardLogger(), newRecorder("Объекты"))
			assert.Equal(t, tt.want, app.interval())
		})
	}
}
