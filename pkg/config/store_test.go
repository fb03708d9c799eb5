package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefaultsOnNilSeed(t *testing.T) {
	store := NewStore(nil)
	require.NotNil(t, store.Load())
	assert.Equal(t, DefaultSystemConfig().MaxToolSteps, store.Load().MaxToolSteps)
}

func TestStoreReplaceIgnoresNil(t *testing.T) {
	seed := DefaultSystemConfig()
	store := NewStore(seed)
	store.Replace(nil)
	assert.Same(t, seed, store.Load())
}

func TestStoreConcurrentReplaceAndLoad(t *testing.T) {
	// A reload must never be observable as a half-written config. Each
	// published snapshot keeps MaxToolSteps and RunTimeoutMs equal, so a
	// reader that ever sees them differ caught a torn write.
	seed := DefaultSystemConfig()
	seed.MaxToolSteps = 0
	seed.RunTimeoutMs = 0
	store := NewStore(seed)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 1000; i++ {
			next := DefaultSystemConfig()
			next.MaxToolSteps = i
			next.RunTimeoutMs = i
			next.LogLevel = "debug"
			store.Replace(next)
		}
	}()

	for i := 0; i < 1000; i++ {
		snap := store.Load()
		if snap.MaxToolSteps != snap.RunTimeoutMs {
			t.Fatalf("torn snapshot: steps=%d timeout=%d", snap.MaxToolSteps, snap.RunTimeoutMs)
		}
		_ = snap.LogLevel
	}
	<-done
}
