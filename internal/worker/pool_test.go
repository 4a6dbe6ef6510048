package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcessor struct{ calls int }

func (p *countingProcessor) Process(context.Context, json.RawMessage) { p.calls++ }

type panickingProcessor struct{}

func (panickingProcessor) Process(context.Context, json.RawMessage) { panic("boom") }

func TestProcessJobDispatchesByType(t *testing.T) {
	p := &countingProcessor{}
	raw, err := json.Marshal(Job{Type: JobTypeEmail, Payload: json.RawMessage(`{"shipment_id":"x"}`)})
	require.NoError(t, err)

	processJob(context.Background(), nil, map[string]Processor{JobTypeEmail: p}, QueueEmail, string(raw))
	assert.Equal(t, 1, p.calls)
}

// A handler panic must not take the worker goroutine down with it.
func TestProcessJobSurvivesHandlerPanic(t *testing.T) {
	raw, err := json.Marshal(Job{Type: JobTypeWhatsApp, Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		processJob(context.Background(), nil, map[string]Processor{JobTypeWhatsApp: panickingProcessor{}}, QueueWhatsApp, string(raw))
	})
}

func TestProcessJobUnknownTypeDoesNotDispatch(t *testing.T) {
	p := &countingProcessor{}
	raw, err := json.Marshal(Job{Type: "fax", Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	processJob(context.Background(), nil, map[string]Processor{JobTypeEmail: p}, QueueEmail, string(raw))
	assert.Zero(t, p.calls)
}
