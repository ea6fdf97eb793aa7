package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
	appErrors "github.com/diegocaceres21/saae-discount-api/pkg/errors"
)

// Prompter is the pipeline's view of the operator interaction point. Both
// calls block the batch until the operator answers; cancellation surfaces as
// ErrBatchCancelled.
type Prompter interface {
	ManualPayment(ctx context.Context, studentName string) (models.ManualPaymentEntry, error)
	SelectCareer(ctx context.Context, studentName, career string, candidates []models.CareerCatalogEntry) (models.CareerCatalogEntry, error)
}

type promptWaitObserver interface {
	ObservePromptWait(kind string, duration time.Duration, resolved bool)
}

type promptResolution struct {
	payment   *models.ManualPaymentEntry
	career    *models.CareerCatalogEntry
	cancelled bool
}

type pendingPrompt struct {
	prompt models.Prompt
	done   chan promptResolution
}

// PromptBroker is the rendezvous between a suspended pipeline run and the
// operator UI. The run registers a typed prompt and blocks on its channel;
// the prompt endpoints resolve or cancel it. There is no shared mutable flag
// state: each prompt owns its resolution channel.
type PromptBroker struct {
	mu      sync.Mutex
	pending map[string]*pendingPrompt

	timeout  time.Duration
	metrics  promptWaitObserver
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPromptBroker constructs a broker. A prompt left unanswered past the
// timeout cancels its batch, mirroring an operator walking away.
func NewPromptBroker(timeout time.Duration, metrics promptWaitObserver, logger *zap.Logger) *PromptBroker {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptBroker{
		pending:  make(map[string]*pendingPrompt),
		timeout:  timeout,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
	}
}

// ManualPayment suspends until the operator supplies a manual payment entry.
func (b *PromptBroker) ManualPayment(ctx context.Context, studentName string) (models.ManualPaymentEntry, error) {
	prompt := models.Prompt{
		ID:          uuid.NewString(),
		Kind:        models.PromptManualPayment,
		StudentName: studentName,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := b.await(ctx, prompt)
	if err != nil {
		return models.ManualPaymentEntry{}, err
	}
	return *res.payment, nil
}

// SelectCareer suspends until the operator picks a catalog career for the
// unmatched extracted name.
func (b *PromptBroker) SelectCareer(ctx context.Context, studentName, career string, candidates []models.CareerCatalogEntry) (models.CareerCatalogEntry, error) {
	prompt := models.Prompt{
		ID:          uuid.NewString(),
		Kind:        models.PromptCareerChoice,
		StudentName: studentName,
		Career:      career,
		Candidates:  candidates,
		CreatedAt:   time.Now().UTC(),
	}
	res, err := b.await(ctx, prompt)
	if err != nil {
		return models.CareerCatalogEntry{}, err
	}
	return *res.career, nil
}

func (b *PromptBroker) await(ctx context.Context, prompt models.Prompt) (promptResolution, error) {
	entry := &pendingPrompt{prompt: prompt, done: make(chan promptResolution, 1)}

	b.mu.Lock()
	b.pending[prompt.ID] = entry
	b.mu.Unlock()
	defer b.remove(prompt.ID)

	b.logger.Info("pipeline suspended on operator prompt",
		zap.String("prompt_id", prompt.ID),
		zap.String("kind", string(prompt.Kind)),
		zap.String("student", prompt.StudentName))

	start := time.Now()
	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	var res promptResolution
	select {
	case <-ctx.Done():
		return res, appErrors.Wrap(ctx.Err(), appErrors.ErrBatchCancelled.Code, appErrors.ErrBatchCancelled.Status, "batch context cancelled while awaiting operator")
	case <-timer.C:
		return res, appErrors.Clone(appErrors.ErrBatchCancelled, "operator prompt timed out")
	case res = <-entry.done:
	}

	if b.metrics != nil {
		b.metrics.ObservePromptWait(string(prompt.Kind), time.Since(start), !res.cancelled)
	}
	if res.cancelled {
		return res, appErrors.Clone(appErrors.ErrBatchCancelled, fmt.Sprintf("operator cancelled prompt for %s", prompt.StudentName))
	}
	return res, nil
}

// Pending lists open prompts, oldest first.
func (b *PromptBroker) Pending() []models.Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	prompts := make([]models.Prompt, 0, len(b.pending))
	for _, p := range b.pending {
		prompts = append(prompts, p.prompt)
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].CreatedAt.Before(prompts[j].CreatedAt) })
	return prompts
}

// ResolvePayment answers a pending manual-payment prompt. The entry is
// validated before it is handed to the suspended run; whatever resumes the
// pipeline here ends up committed to the registry.
func (b *PromptBroker) ResolvePayment(id string, payment models.ManualPaymentEntry) error {
	if err := b.validate.Struct(payment); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual payment entry")
	}
	return b.resolve(id, models.PromptManualPayment, promptResolution{payment: &payment})
}

// ResolveCareer answers a pending career prompt with one of its candidates.
func (b *PromptBroker) ResolveCareer(id, careerID string) error {
	b.mu.Lock()
	entry, ok := b.pending[id]
	b.mu.Unlock()
	if !ok {
		return appErrors.ErrPromptNotFound
	}
	for i := range entry.prompt.Candidates {
		if entry.prompt.Candidates[i].ID == careerID {
			return b.resolve(id, models.PromptCareerChoice, promptResolution{career: &entry.prompt.Candidates[i]})
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "career is not among the prompt candidates")
}

// Cancel aborts the prompt and, with it, the whole suspended batch.
func (b *PromptBroker) Cancel(id string) error {
	b.mu.Lock()
	entry, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()
	if !ok {
		return appErrors.ErrPromptNotFound
	}
	entry.done <- promptResolution{cancelled: true}
	return nil
}

func (b *PromptBroker) resolve(id string, kind models.PromptKind, res promptResolution) error {
	b.mu.Lock()
	entry, ok := b.pending[id]
	if ok && entry.prompt.Kind != kind {
		b.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "resolution does not match prompt kind")
	}
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()
	if !ok {
		return appErrors.ErrPromptNotFound
	}
	entry.done <- res
	return nil
}

func (b *PromptBroker) remove(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
