package migrate

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RunStatus es el estado de una transición en el tracking store.
type RunStatus string

const (
	// StatusPending: la transición todavía no corrió ninguna fase.
	StatusPending RunStatus = "pending"
	// StatusCopied: fase 1 (copia de datos) completada; falta verificar.
	StatusCopied RunStatus = "copied"
	// StatusVerified: la copia se verificó consistente con el origen.
	StatusVerified RunStatus = "verified"
	// StatusApplied: cutover hecho; la forma vieja queda deprecada.
	StatusApplied RunStatus = "applied"
	// StatusFailed: la última fase falló (la copia se puede reintentar).
	StatusFailed RunStatus = "failed"
)

// Phase es una fase ejecutable de una transición.
type Phase string

const (
	PhaseCopy    Phase = "copy"
	PhaseVerify  Phase = "verify"
	PhaseCutover Phase = "cutover"
)

func ParsePhase(s string) (Phase, error) {
	switch Phase(strings.TrimSpace(s)) {
	case PhaseCopy:
		return PhaseCopy, nil
	case PhaseVerify:
		return PhaseVerify, nil
	case PhaseCutover:
		return PhaseCutover, nil
	}
	return "", errors.New("phase must be copy, verify or cutover")
}

// RunRecord es el registro de una transición en el tracking store.
type RunRecord struct {
	Transition string
	From       Generation
	To         Generation

	Status RunStatus

	// CopiedRows: filas presentes en el destino tras la última copia.
	CopiedRows int

	StartedAt  time.Time
	CopiedAt   *time.Time
	VerifiedAt *time.Time
	AppliedAt  *time.Time

	Error *string
}

// CopyStats resume una corrida de la fase de copia.
type CopyStats struct {
	Source  int // registros en la forma vieja
	Copied  int // insertados en esta corrida
	Skipped int // ya existían (re-corrida idempotente)
}

// VerificationError: la salida de la fase 1 no es consistente con el origen.
// Frena la progresión al cutover y se muestra al operador; no se reintenta solo.
type VerificationError struct {
	Transition string
	Problems   []string
}

func (e *VerificationError) Error() string {
	return "migration verification failed (" + e.Transition + "): " + strings.Join(e.Problems, "; ")
}

// Step implementa una transición concreta entre dos generaciones.
// CopyData tiene que ser idempotente: re-correrla no duplica filas y
// preserva identificadores y created_at del origen.
type Step interface {
	From() Generation
	To() Generation

	CopyData(ctx context.Context) (CopyStats, error)
	// Verify devuelve *VerificationError si el destino no coincide con el origen.
	Verify(ctx context.Context) error
	// Cutover deprecia la forma vieja. Solo se llama con verificación previa OK,
	// siempre en un paso separado de la copia. No hay reversa automática.
	Cutover(ctx context.Context) error
}

var ErrRunNotFound = errors.New("migration run not found")

// Store persiste la generación vigente y los run records.
type Store interface {
	Current(ctx context.Context) (Generation, error)
	SetCurrent(ctx context.Context, g Generation) error

	GetRun(ctx context.Context, transition string) (RunRecord, error)
	SaveRun(ctx context.Context, r RunRecord) error
	ListRuns(ctx context.Context) ([]RunRecord, error)
}

// Locker lo implementa el store de Postgres (advisory lock) para impedir
// sequencers concurrentes. El store in-memory no lo necesita.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}
