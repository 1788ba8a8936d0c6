package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueActas = "jobs:actas"
	QueueEmail = "jobs:email"

	JobActaConteo = "acta_conteo"
	JobEmail      = "email"

	// MaxIntentos is how many times a job runs before it goes to the DLQ.
	MaxIntentos = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	// Reencolados counts how many times the job came back from the DLQ.
	Reencolados int             `json:"reencolados,omitempty"`
}

// Handler processes one job payload. A returned error triggers a retry.
type Handler interface {
	Procesar(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists; the pool pops them with BRPOP.
type Dispatcher struct {
	rdb redis.Cmdable
}

func NewDispatcher(rdb redis.Cmdable) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarActaConteo schedules the count certificate.
func (d *Dispatcher) EncolarActaConteo(ctx context.Context, conteoID uuid.UUID) error {
	return d.enqueue(ctx, QueueActas, JobActaConteo, ActaJobPayload{ConteoID: conteoID.String()})
}

func (d *Dispatcher) EncolarEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb         redis.Cmdable
	handlers    map[string]Handler
	backoff     time.Duration
	esperaError time.Duration
}

func NewPool(rdb redis.Cmdable) *Pool {
	return &Pool{rdb: rdb, handlers: map[string]Handler{}, backoff: time.Second, esperaError: 2 * time.Second}
}

// Handle registers h for jobs of the given type.
func (p *Pool) Handle(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueActas, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				// redis.Nil is the normal timeout; anything else means Redis
				// failed fast, so back off instead of spinning.
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: redis no disponible")
					esperar(ctx, p.esperaError)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process runs the handler with backoff and sends the job to the DLQ once
// every attempt has failed.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: job ilegible")
		SendToDLQ(ctx, p.rdb, queue, Job{Payload: json.RawMessage(fmt.Sprintf("%q", raw))}, "unmarshal: "+err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("worker: sin handler para el job")
		SendToDLQ(ctx, p.rdb, queue, job, "handler no registrado", 0)
		return
	}

	intentos := 0
	err := withRetry(ctx, MaxIntentos, p.backoff, func(attempt int) error {
		intentos = attempt + 1
		err := h.Procesar(ctx, job.Payload)
		if err != nil {
			log.Warn().Err(err).
				Str("type", job.Type).
				Int("attempt", intentos).
				Msg("worker: intento fallido")
		}
		return err
	})
	if err != nil {
		SendToDLQ(ctx, p.rdb, queue, job, err.Error(), intentos)
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("worker: job procesado")
}

func esperar(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// withRetry calls fn up to maxAttempts times, waiting base, 2×base, … between
// attempts. Returns the last error.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if lastErr = fn(i); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
