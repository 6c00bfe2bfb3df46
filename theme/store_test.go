package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsWhenFileAbsent(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Equal(t, State{Mode: ModeLight, Hue: 250}, s.Current())
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	require.NoError(t, s.SetMode(ModeDark))
	require.NoError(t, s.SetHue(120))

	reloaded := NewStore(dir)
	assert.Equal(t, State{Mode: ModeDark, Hue: 120}, reloaded.Current())
}

func TestMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme.json"), []byte("{not json"), 0644))

	s := NewStore(dir)
	assert.Equal(t, ModeLight, s.Mode())
}

func TestValidation(t *testing.T) {
	s := NewStore(t.TempDir())
	assert.Error(t, s.SetMode("sepia"))
	assert.Error(t, s.SetHue(-1))
	assert.Error(t, s.SetHue(361))
	assert.Equal(t, State{Mode: ModeLight, Hue: 250}, s.Current(), "failed writes leave state untouched")
}

func TestSubscribersSeeEveryWrite(t *testing.T) {
	s := NewStore(t.TempDir())
	ch := s.Subscribe()

	require.NoError(t, s.SetMode(ModeDark))
	require.NoError(t, s.SetMode(ModeDark))
	require.NoError(t, s.SetHue(30))

	assert.Equal(t, State{Mode: ModeDark, Hue: 250}, <-ch)
	assert.Equal(t, State{Mode: ModeDark, Hue: 250}, <-ch, "redundant writes are delivered, not deduped here")
	assert.Equal(t, State{Mode: ModeDark, Hue: 30}, <-ch)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := NewStore(t.TempDir())
	kept := s.Subscribe()
	dropped := s.Subscribe()

	s.Unsubscribe(dropped)

	_, open := <-dropped
	assert.False(t, open, "unsubscribed channel is closed")

	require.NoError(t, s.SetMode(ModeDark))
	assert.Equal(t, ModeDark, (<-kept).Mode, "remaining subscriber still notified")

	// Unknown channels are a no-op.
	s.Unsubscribe(dropped)
	s.Unsubscribe(make(chan State))
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	s := NewStore(t.TempDir())
	s.Subscribe() // never drained

	for i := 0; i < 20; i++ {
		require.NoError(t, s.SetHue(i))
	}
	assert.Equal(t, 19, s.Current().Hue)
}
