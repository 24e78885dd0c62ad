package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const sweepLockKey = "inventario-ledger:reservation-sweep"

// SweepResult resumen de una pasada del barrido.
type SweepResult struct {
	Scanned int
	Expired int
	Skipped int // ya no estaban activas
	Failed  int
}

// SweeperConfig parámetros del barrido de reservas vencidas.
type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
	LockTTL   time.Duration
}

// ExpirySweeper vence periódicamente las reservas ACTIVE cuyo expiresAt ya pasó.
// Es seguro en varias instancias porque Expire es idempotente; el lock solo evita trabajo repetido.
type ExpirySweeper struct {
	reservations *ReservationEngine
	locker       SweepLocker
	cfg          SweeperConfig
}

// NewExpirySweeper construye el barrido. locker puede ser nil.
func NewExpirySweeper(reservations *ReservationEngine, cfg SweeperConfig, locker SweepLocker) *ExpirySweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	return &ExpirySweeper{reservations: reservations, locker: locker, cfg: cfg}
}

// SweepOnce recorre las reservas vencidas por lotes, avanzando con un cursor (expiresAt, id).
// Un fallo individual se registra y se cuenta; el barrido sigue con las demás y la reserva
// fallida se reintenta en la siguiente pasada.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	e := s.reservations.engine
	start := time.Now()
	now := e.now()
	var result SweepResult
	var cursor repository.ExpiryCursor

	for {
		batch, err := e.repos.Reservations.ListExpiredActive(ctx, now, cursor, s.cfg.BatchSize)
		if err != nil {
			return result, err
		}
		for _, res := range batch {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Scanned++
			changed, err := s.reservations.Expire(ctx, res.ID)
			switch {
			case err != nil:
				result.Failed++
				e.log.Error().Err(err).Str("reservation_id", res.ID).Msg("no se pudo vencer la reserva")
			case changed:
				result.Expired++
			default:
				result.Skipped++
			}
		}
		if len(batch) < s.cfg.BatchSize {
			break
		}
		last := batch[len(batch)-1]
		cursor = repository.ExpiryCursor{ExpiresAt: last.ExpiresAt, ID: last.ID}
	}

	e.metrics.SweepFinished(result, time.Since(start))
	if result.Scanned > 0 {
		e.log.Info().Int("scanned", result.Scanned).Int("expired", result.Expired).
			Int("skipped", result.Skipped).Int("failed", result.Failed).Msg("barrido de reservas terminado")
	}
	return result, nil
}

// Run ejecuta el barrido al arrancar y luego en cada tick hasta que ctx termine.
func (s *ExpirySweeper) Run(ctx context.Context) {
	e := s.reservations.engine
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	e.log.Info().Dur("interval", s.cfg.Interval).Int("batch_size", s.cfg.BatchSize).
		Msg("barrido de reservas iniciado")
	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			e.log.Info().Msg("barrido de reservas detenido")
			return
		case <-ticker.C:
		}
	}
}

func (s *ExpirySweeper) tick(ctx context.Context) {
	e := s.reservations.engine
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.cfg.LockTTL)
		if err != nil {
			e.log.Warn().Err(err).Msg("lock del barrido no disponible, se omite el tick")
			return
		}
		if !ok {
			e.log.Debug().Msg("otra instancia está barriendo")
			return
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				e.log.Warn().Err(err).Msg("liberar lock del barrido")
			}
		}()
	}
	if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
		e.log.Error().Err(err).Msg("barrido de reservas falló")
	}
}
