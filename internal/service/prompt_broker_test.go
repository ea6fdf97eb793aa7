package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

func waitForPending(t *testing.T, b *PromptBroker) models.Prompt {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("no prompt became pending")
		default:
		}
		if pending := b.Pending(); len(pending) > 0 {
			return pending[0]
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPromptBrokerResolvePayment(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())

	type result struct {
		entry models.ManualPaymentEntry
		err   error
	}
	done := make(chan result, 1)
	go func() {
		entry, err := b.ManualPayment(context.Background(), "Ana Perez")
		done <- result{entry, err}
	}()

	prompt := waitForPending(t, b)
	assert.Equal(t, models.PromptManualPayment, prompt.Kind)
	assert.Equal(t, "Ana Perez", prompt.StudentName)

	require.NoError(t, b.ResolvePayment(prompt.ID, models.ManualPaymentEntry{
		Reference: "manual", Plan: models.PlanEstandar, Amount: 350,
	}))

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, 350.0, res.entry.Amount)
	assert.Equal(t, models.PlanEstandar, res.entry.Plan)
	assert.Empty(t, b.Pending())
}

func TestPromptBrokerResolvePaymentRejectsInvalidEntry(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := b.ManualPayment(context.Background(), "Ana Perez")
		done <- err
	}()
	prompt := waitForPending(t, b)

	// Unknown plan labels and negative amounts never reach the suspended run.
	err := b.ResolvePayment(prompt.ID, models.ManualPaymentEntry{Plan: "PLAN PIRATA", Amount: 350})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	err = b.ResolvePayment(prompt.ID, models.ManualPaymentEntry{Plan: models.PlanEstandar, Amount: -50})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	// The prompt is still pending and a valid entry resolves it.
	require.Len(t, b.Pending(), 1)
	require.NoError(t, b.ResolvePayment(prompt.ID, models.ManualPaymentEntry{Plan: models.PlanEstandar, Amount: 350}))
	require.NoError(t, <-done)
}

func TestPromptBrokerResolveCareer(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())
	candidates := []models.CareerCatalogEntry{
		{ID: "c1", Name: "Derecho"},
		{ID: "c2", Name: "Medicina"},
	}

	done := make(chan models.CareerCatalogEntry, 1)
	go func() {
		choice, err := b.SelectCareer(context.Background(), "Luis Rojas", "Medizina", candidates)
		require.NoError(t, err)
		done <- choice
	}()

	prompt := waitForPending(t, b)
	assert.Equal(t, models.PromptCareerChoice, prompt.Kind)

	require.NoError(t, b.ResolveCareer(prompt.ID, "c2"))
	choice := <-done
	assert.Equal(t, "Medicina", choice.Name)
}

func TestPromptBrokerResolveCareerRejectsUnknownCandidate(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())
	candidates := []models.CareerCatalogEntry{{ID: "c1", Name: "Derecho"}}

	done := make(chan error, 1)
	go func() {
		_, err := b.SelectCareer(context.Background(), "Luis Rojas", "X", candidates)
		done <- err
	}()

	prompt := waitForPending(t, b)

	err := b.ResolveCareer(prompt.ID, "nope")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	// Prompt stays pending until a valid answer arrives.
	require.NoError(t, b.ResolveCareer(prompt.ID, "c1"))
	require.NoError(t, <-done)
}

func TestPromptBrokerCancelAbortsBatch(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := b.ManualPayment(context.Background(), "Ana Perez")
		done <- err
	}()

	prompt := waitForPending(t, b)
	require.NoError(t, b.Cancel(prompt.ID))

	err := <-done
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBatchCancelled))
}

func TestPromptBrokerTimeout(t *testing.T) {
	b := NewPromptBroker(20*time.Millisecond, nil, zap.NewNop())

	_, err := b.ManualPayment(context.Background(), "Ana Perez")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBatchCancelled))
}

func TestPromptBrokerContextCancellation(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := b.ManualPayment(ctx, "Ana Perez")
		done <- err
	}()

	waitForPending(t, b)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBatchCancelled))
}

func TestPromptBrokerResolveUnknownPrompt(t *testing.T) {
	b := NewPromptBroker(time.Minute, nil, zap.NewNop())
	err := b.ResolvePayment("missing", models.ManualPaymentEntry{})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPromptNotFound))
	assert.True(t, appErrors.HasCode(b.Cancel("missing"), appErrors.ErrPromptNotFound))
}
