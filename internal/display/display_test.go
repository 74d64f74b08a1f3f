package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElement(t *testing.T) {
	a := NewElement("Job 1")
	b := NewElement("Job 1")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, PhaseEntering, a.Phase())
	assert.Equal(t, "entering", a.Phase().String())
}

func TestElement_CompleteTransitionOnce(t *testing.T) {
	el := NewElement("x")

	select {
	case <-el.TransitionEnd():
		t.Fatal("transition should not be complete yet")
	default:
	}

	el.CompleteTransition()
	el.CompleteTransition()

	select {
	case <-el.TransitionEnd():
	default:
		t.Fatal("transition should be complete")
	}
}

func TestWriter_MissingContainer(t *testing.T) {
	w := NewWriter("text-container", &bytes.Buffer{})

	_, err := w.Container("banner")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingContainer)
}

func TestWriter_Step(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter("text-container", &buf)
	c, err := w.Container("text-container")
	require.NoError(t, err)

	el := NewElement("09:00 AM | News | ops")
	require.NoError(t, c.Append(el))
	assert.Error(t, c.Append(NewElement("second")), "only one live element")

	done, err := c.Leave(el)
	require.NoError(t, err)
	<-done
	assert.Equal(t, PhaseLeaving, el.Phase())

	require.NoError(t, c.Remove(el))
	assert.Error(t, c.Remove(el))
	assert.Equal(t, "09:00 AM | News | ops\n", buf.String())
}
