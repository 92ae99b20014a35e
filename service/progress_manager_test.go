package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressManager_NonInteractiveWriter(t *testing.T) {
	pm := NewProgressManager()
	var buf bytes.Buffer
	pm.SetWriter(&buf)

	assert.False(t, pm.IsInteractive())

	pm.Initialize(3)
	pm.Start()
	pm.Update(1, 3)
	pm.Update(3, 3)
	pm.Complete(true)
	pm.Close()

	assert.Nil(t, pm.bar)
	assert.Empty(t, buf.String())
}

func TestProgressManager_InteractiveBar(t *testing.T) {
	pm := NewProgressManager()
	var buf bytes.Buffer
	pm.SetWriter(&buf)
	pm.interactive = true
	pm.SetDescription("Testing")

	pm.Initialize(2)
	pm.Start()
	assert.NotNil(t, pm.bar)

	pm.Update(1, 2)
	pm.Update(2, 2)
	pm.Complete(true)

	assert.Nil(t, pm.bar)
	assert.Contains(t, buf.String(), "Testing")
}

func TestProgressManager_ZeroTotalDrawsNothing(t *testing.T) {
	pm := NewProgressManager()
	pm.SetWriter(&bytes.Buffer{})
	pm.interactive = true

	pm.Initialize(0)
	pm.Start()
	assert.Nil(t, pm.bar)
	pm.Complete(false)
}
