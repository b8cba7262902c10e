package toxicity

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/abadojack/whatlanggo"

	"safespace/domain"
	"safespace/errors"
)

//go:embed weights/toxicity-en.json
var defaultArtifact []byte

// State is the model lifecycle. It only ever moves forward:
// Unloaded -> Loading -> Ready | Failed. A failed load is permanent for the
// session; validation degrades to the deterministic layer.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Loader owns the process-wide model handle. It runs as a supervised worker:
// Run performs the one-time load and returns nil even on failure, because a
// missing statistical layer must never take the client down.
type Loader struct {
	log       *slog.Logger
	threshold float64
	state     atomic.Int32

	mu    sync.RWMutex
	model Classifier

	build func() (Classifier, error)
}

func NewLoader(log *slog.Logger, threshold float64) *Loader {
	l := &Loader{log: log, threshold: threshold}
	l.build = func() (Classifier, error) {
		return newLinearModel(defaultArtifact, threshold)
	}
	return l
}

// WithBuilder swaps the model construction step. Used by tests to simulate
// load failures and slow or broken models.
func (l *Loader) WithBuilder(build func() (Classifier, error)) *Loader {
	l.build = build
	return l
}

func (l *Loader) Run(_ context.Context) error {
	// The model loads exactly once per session, even under a restarting
	// supervisor.
	if !l.state.CompareAndSwap(int32(StateUnloaded), int32(StateLoading)) {
		return nil
	}

	model, err := l.build()
	if err != nil {
		l.state.Store(int32(StateFailed))
		l.log.Error("Toxicity model load failed, statistical layer disabled", "error", err)
		return nil
	}

	l.mu.Lock()
	l.model = model
	l.mu.Unlock()
	l.state.Store(int32(StateReady))
	l.log.Info("Toxicity model ready", "threshold", l.threshold)
	return nil
}

func (l *Loader) State() State {
	return State(l.state.Load())
}

func (l *Loader) Ready() bool {
	return l.State() == StateReady
}

// Classify scores a single message and maps matched categories to violations.
// Messages in languages the model was not trained on are skipped rather than
// scored with garbage features.
func (l *Loader) Classify(ctx context.Context, text string) ([]domain.Violation, error) {
	l.mu.RLock()
	model := l.model
	l.mu.RUnlock()
	if model == nil {
		return nil, errors.ErrModelNotReady
	}

	info := whatlanggo.Detect(text)
	if info.IsReliable() && info.Lang != whatlanggo.Eng {
		l.log.Debug("Skipping statistical check, unsupported language",
			"lang", info.Lang.Iso6391())
		return nil, nil
	}

	predictions, err := model.Classify(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, nil
	}
	return Violations(predictions[0]), nil
}
