package rollout

import "errors"

var (
	ErrPhaseAlreadyOpen     = errors.New("a migration phase is already open")
	ErrConcurrentTransition = errors.New("phase log changed concurrently")
	ErrNoOpenPhase          = errors.New("no migration phase is open")
	ErrUnknownPhase         = errors.New("unknown migration phase")
	ErrInvalidConfig        = errors.New("invalid rollout configuration")
)
