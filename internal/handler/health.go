package handler

import (
	"context"
	"net/http"
	"time"

	"sistemaservicios/internal/infra"
	"sistemaservicios/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis; Kafka and the DLQs are reported but do not
// fail the check, since the ledger keeps working without them.
func Health(db *gorm.DB, rdb *redis.Client, kafka *infra.KafkaPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		dlq := gin.H{}
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			for _, q := range []string{worker.QueueActas, worker.QueueEmail} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
		}

		kafkaStatus := "disabled"
		if kafka != nil {
			kafkaStatus = kafka.Estado().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"kafka": kafkaStatus,
			"dlq":   dlq,
		})
	}
}
