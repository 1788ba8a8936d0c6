package worker

// retry_cron.go
// Background goroutine that periodically moves dead-lettered jobs back onto
// their queue. A queue is skipped while its downstream is unavailable, and a
// job stays in the DLQ for good once it has been replayed MaxReencolados times.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultLoteReintento = 20

// RetryCronConfig holds all dependencies for the replay goroutine.
type RetryCronConfig struct {
	RDB   redis.Cmdable
	Colas []string
	// Disponible reports whether a queue's downstream can take work again.
	// Nil means always.
	Disponible     func(queue string) bool
	Intervalo      time.Duration
	Lote           int
	MaxReencolados int
}

// StartRetryCron launches a goroutine that replays one batch per queue every
// Intervalo. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Intervalo <= 0 || cfg.MaxReencolados <= 0 {
		log.Info().Msg("retry_cron: deshabilitado")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				reencolar(ctx, cfg)
			}
		}
	}()
}

// reencolar returns how many jobs went back to their queue.
func reencolar(ctx context.Context, cfg RetryCronConfig) int {
	lote := cfg.Lote
	if lote <= 0 {
		lote = defaultLoteReintento
	}

	total := 0
	for _, queue := range cfg.Colas {
		if cfg.Disponible != nil && !cfg.Disponible(queue) {
			log.Debug().Str("queue", queue).Msg("retry_cron: destino no disponible, se omite la cola")
			continue
		}

		key := DLQPrefix + queue
		pendientes, err := cfg.RDB.LLen(ctx, key).Result()
		if err != nil {
			log.Error().Err(err).Str("dlq_key", key).Msg("retry_cron: failed to read DLQ length")
			continue
		}
		// Entries pushed back this tick land at the head, so the bound keeps
		// them from being read twice.
		n := int(pendientes)
		if n > lote {
			n = lote
		}

		movidos := 0
		for i := 0; i < n; i++ {
			raw, err := cfg.RDB.RPop(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				break
			}
			if err != nil {
				log.Error().Err(err).Str("dlq_key", key).Msg("retry_cron: failed to pop DLQ entry")
				break
			}

			var entry DLQEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.JobType == "" || entry.Reencolados >= cfg.MaxReencolados {
				devolverADLQ(ctx, cfg.RDB, key, raw)
				continue
			}

			data, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload, Reencolados: entry.Reencolados + 1})
			if err != nil {
				devolverADLQ(ctx, cfg.RDB, key, raw)
				continue
			}
			if err := cfg.RDB.LPush(ctx, queue, data).Err(); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("retry_cron: failed to requeue job")
				devolverADLQ(ctx, cfg.RDB, key, raw)
				continue
			}
			movidos++
		}

		if movidos > 0 {
			log.Info().Str("queue", queue).Int("jobs", movidos).Msg("retry_cron: jobs reencolados desde la DLQ")
		}
		total += movidos
	}
	return total
}

func devolverADLQ(ctx context.Context, rdb redis.Cmdable, key, raw string) {
	if err := rdb.LPush(ctx, key, raw).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("retry_cron: entrada de DLQ perdida")
	}
}
