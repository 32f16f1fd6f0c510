package cron

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"curbside/config"
	"curbside/services/scheduling"
)

const TypeExpirySweep = "booking:expire_sweep"

// sweepInterval is how often overdue unpaid bookings are cancelled and their
// slots returned to the pool.
const sweepInterval = "@every 5m"

// InitExpirySweepWorker runs the async worker and its periodic scheduler in
// the background.
func InitExpirySweepWorker(svc scheduling.SchedulingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpirySweep, handleExpirySweep(svc))

	go func() {
		log.Println("[ExpirySweep] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpirySweep] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpirySweep] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go func() {
		scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
		if _, err := scheduler.Register(sweepInterval, asynq.NewTask(TypeExpirySweep, nil)); err != nil {
			log.Printf("[ExpirySweep] Failed to register periodic sweep: %v", err)
			return
		}
		if err := scheduler.Run(); err != nil {
			log.Printf("[ExpirySweep] Scheduler stopped: %v", err)
		}
	}()
}

func handleExpirySweep(svc scheduling.SchedulingService) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		count, err := svc.ExpireOverdue(ctx, time.Now())
		if err != nil {
			log.Printf("[ExpirySweep] Sweep failed: %v", err)
			return err
		}
		if count > 0 {
			log.Printf("[ExpirySweep] Cancelled %d overdue bookings", count)
		}
		return nil
	}
}
