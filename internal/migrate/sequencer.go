package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pet-registry/internal/platform/logger"
)

var (
	// ErrBackward: las transiciones son unidireccionales.
	ErrBackward = errors.New("cannot migrate backwards: revert requires a new forward migration")
	// ErrNotVerified: el cutover exige verificación previa OK de la misma transición.
	ErrNotVerified = errors.New("cutover requires a verified copy phase")
	ErrNoPending   = errors.New("no pending transition")
)

// Sequencer ordena las transiciones de generación y garantiza el protocolo
// de dos fases: copia idempotente -> verificación -> cutover separado.
type Sequencer struct {
	store Store
	steps map[Generation]Step // keyed por generación origen
	log   logger.Logger
	now   func() time.Time
}

func NewSequencer(store Store, steps []Step, log logger.Logger) (*Sequencer, error) {
	byFrom := make(map[Generation]Step, len(steps))
	for _, st := range steps {
		next, ok := st.From().Next()
		if !ok || next != st.To() {
			return nil, fmt.Errorf("step %s does not follow the generation order", TransitionName(st.From(), st.To()))
		}
		if _, dup := byFrom[st.From()]; dup {
			return nil, fmt.Errorf("duplicate step from %s", st.From())
		}
		byFrom[st.From()] = st
	}

	return &Sequencer{
		store: store,
		steps: byFrom,
		log:   log,
		now:   time.Now,
	}, nil
}

func (s *Sequencer) Current(ctx context.Context) (Generation, error) {
	return s.store.Current(ctx)
}

// Status devuelve la generación vigente y los run records conocidos.
func (s *Sequencer) Status(ctx context.Context) (Generation, []RunRecord, error) {
	cur, err := s.store.Current(ctx)
	if err != nil {
		return "", nil, err
	}
	runs, err := s.store.ListRuns(ctx)
	if err != nil {
		return "", nil, err
	}
	return cur, runs, nil
}

// AdvanceTo corre transiciones completas (copy + verify + cutover) hasta
// llegar a target. Si una verificación falla se corta ahí y el error sube
// al operador; el cutover de esa transición nunca se ejecuta.
func (s *Sequencer) AdvanceTo(ctx context.Context, target Generation) error {
	if target.ordinal() < 0 {
		return fmt.Errorf("unknown generation %q", target)
	}

	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock(ctx)

	cur, err := s.store.Current(ctx)
	if err != nil {
		return err
	}
	if target.Before(cur) {
		return ErrBackward
	}

	for cur.Before(target) {
		step, ok := s.steps[cur]
		if !ok {
			return fmt.Errorf("no step registered from generation %s", cur)
		}

		if _, err := s.runPhase(ctx, step, PhaseCopy); err != nil {
			return err
		}
		if _, err := s.runPhase(ctx, step, PhaseVerify); err != nil {
			return err
		}
		if _, err := s.runPhase(ctx, step, PhaseCutover); err != nil {
			return err
		}

		cur = step.To()
	}

	return nil
}

// RunPhase ejecuta una sola fase de la próxima transición pendiente.
// Permite al operador avanzar de a pasos (copy hoy, cutover mañana).
func (s *Sequencer) RunPhase(ctx context.Context, phase Phase) (RunRecord, error) {
	if err := s.lock(ctx); err != nil {
		return RunRecord{}, err
	}
	defer s.unlock(ctx)

	cur, err := s.store.Current(ctx)
	if err != nil {
		return RunRecord{}, err
	}

	step, ok := s.steps[cur]
	if !ok {
		return RunRecord{}, ErrNoPending
	}

	return s.runPhase(ctx, step, phase)
}

func (s *Sequencer) runPhase(ctx context.Context, step Step, phase Phase) (RunRecord, error) {
	transition := TransitionName(step.From(), step.To())

	run, err := s.store.GetRun(ctx, transition)
	if errors.Is(err, ErrRunNotFound) {
		run = RunRecord{
			Transition: transition,
			From:       step.From(),
			To:         step.To(),
			Status:     StatusPending,
			StartedAt:  s.now(),
		}
	} else if err != nil {
		return RunRecord{}, err
	}

	switch phase {
	case PhaseCopy:
		return s.copy(ctx, step, run)
	case PhaseVerify:
		return s.verify(ctx, step, run)
	case PhaseCutover:
		return s.cutover(ctx, step, run)
	}
	return RunRecord{}, fmt.Errorf("unknown phase %q", phase)
}

// copy corre la fase 1. Es re-ejecutable: si una corrida anterior quedó a
// medias (failed o copied), volver a correr no duplica filas.
func (s *Sequencer) copy(ctx context.Context, step Step, run RunRecord) (RunRecord, error) {
	if run.Status == StatusApplied {
		return run, nil
	}

	s.log.Info("migration copy phase", "transition", run.Transition)

	stats, err := step.CopyData(ctx)
	if err != nil {
		return s.fail(ctx, run, err)
	}

	now := s.now()
	run.Status = StatusCopied
	run.CopiedRows = stats.Copied + stats.Skipped
	run.CopiedAt = &now
	run.Error = nil

	if err := s.store.SaveRun(ctx, run); err != nil {
		return RunRecord{}, err
	}

	s.log.Info("migration copy done",
		"transition", run.Transition,
		"source", stats.Source,
		"copied", stats.Copied,
		"skipped", stats.Skipped,
	)
	return run, nil
}

func (s *Sequencer) verify(ctx context.Context, step Step, run RunRecord) (RunRecord, error) {
	if run.Status == StatusApplied {
		return run, nil
	}
	if run.Status != StatusCopied && run.Status != StatusVerified {
		return run, fmt.Errorf("verify requires a completed copy phase (status %s)", run.Status)
	}

	if err := step.Verify(ctx); err != nil {
		// La inconsistencia queda registrada y frena el cutover;
		// el operador decide si re-copiar o investigar.
		return s.fail(ctx, run, err)
	}

	now := s.now()
	run.Status = StatusVerified
	run.VerifiedAt = &now
	run.Error = nil

	if err := s.store.SaveRun(ctx, run); err != nil {
		return RunRecord{}, err
	}

	s.log.Info("migration verified", "transition", run.Transition)
	return run, nil
}

// cutover corre la fase 2: deprecia la forma vieja y mueve la generación
// vigente. Exige verificación previa OK y nunca se deshace sola.
func (s *Sequencer) cutover(ctx context.Context, step Step, run RunRecord) (RunRecord, error) {
	if run.Status == StatusApplied {
		return run, nil
	}
	if run.Status != StatusVerified {
		return run, ErrNotVerified
	}

	if err := step.Cutover(ctx); err != nil {
		return s.fail(ctx, run, err)
	}
	if err := s.store.SetCurrent(ctx, step.To()); err != nil {
		return RunRecord{}, err
	}

	now := s.now()
	run.Status = StatusApplied
	run.AppliedAt = &now
	run.Error = nil

	if err := s.store.SaveRun(ctx, run); err != nil {
		return RunRecord{}, err
	}

	s.log.Info("migration cutover applied", "transition", run.Transition, "generation", string(step.To()))
	return run, nil
}

func (s *Sequencer) fail(ctx context.Context, run RunRecord, cause error) (RunRecord, error) {
	msg := cause.Error()
	run.Status = StatusFailed
	run.Error = &msg

	if saveErr := s.store.SaveRun(ctx, run); saveErr != nil {
		s.log.Error("saving failed run record", "transition", run.Transition, "error", saveErr.Error())
	}

	s.log.Error("migration phase failed", "transition", run.Transition, "error", msg)
	return run, cause
}

func (s *Sequencer) lock(ctx context.Context) error {
	if l, ok := s.store.(Locker); ok {
		return l.Lock(ctx)
	}
	return nil
}

func (s *Sequencer) unlock(ctx context.Context) {
	if l, ok := s.store.(Locker); ok {
		_ = l.Unlock(ctx)
	}
}
