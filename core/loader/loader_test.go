package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type testFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *testFeature) Name() string    { return f.name }
func (f *testFeature) IsEnabled() bool { return f.enabled }
func (f *testFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("Skips disabled features", func(t *testing.T) {
		enabled := &testFeature{name: "inventory", enabled: true}
		disabled := &testFeature{name: "reports"}

		mgr := NewManager(nil)
		mgr.Register(enabled)
		mgr.Register(disabled)

		assert.NoError(t, mgr.LoadAll(fiber.New()))
		assert.True(t, enabled.loaded)
		assert.False(t, disabled.loaded)
		assert.Len(t, mgr.Features(), 2)
	})

	t.Run("Stops at first failure", func(t *testing.T) {
		failing := &testFeature{name: "inventory", enabled: true, err: errors.New("boom")}
		next := &testFeature{name: "other", enabled: true}

		mgr := NewManager(nil)
		mgr.Register(failing)
		mgr.Register(next)

		err := mgr.LoadAll(fiber.New())
		assert.ErrorContains(t, err, "inventory")
		assert.False(t, next.loaded)
	})

	t.Run("Duplicate names", func(t *testing.T) {
		mgr := NewManager(nil)
		mgr.Register(&testFeature{name: "inventory", enabled: true})
		mgr.Register(&testFeature{name: "inventory", enabled: true})

		assert.ErrorContains(t, mgr.LoadAll(fiber.New()), "registered twice")
	})
}
