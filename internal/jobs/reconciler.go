package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/services"
	"barterhub/pkg/logger"
)

// ParticipantSource lists users whose denormalised counters may need repair.
type ParticipantSource interface {
	CompletedParticipants(ctx context.Context) ([]primitive.ObjectID, error)
}

type RevieweeSource interface {
	Reviewees(ctx context.Context) ([]primitive.ObjectID, error)
}

// ReconcileReport summarises one run.
type ReconcileReport struct {
	UsersReconciled   int
	RatingsRecomputed int
	Failures          int
	Duration          time.Duration
}

// Reconciler rewrites total_barters and the rating summary from the source
// collections, repairing drift left by best-effort updates.
type Reconciler struct {
	participants ParticipantSource
	reviewees    RevieweeSource
	stats        services.StatsService
	ratings      services.RatingService
	log          *logger.Logger
	timeout      time.Duration

	cron *cron.Cron
}

func NewReconciler(
	participants ParticipantSource,
	reviewees RevieweeSource,
	stats services.StatsService,
	ratings services.RatingService,
	log *logger.Logger,
) *Reconciler {
	log = log.WithField("job", "reconciler")

	return &Reconciler{
		participants: participants,
		reviewees:    reviewees,
		stats:        stats,
		ratings:      ratings,
		log:          log,
		timeout:      30 * time.Minute,
		cron:         cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log.Logrus())), cron.SkipIfStillRunning(cron.PrintfLogger(log.Logrus())))),
	}
}

// Start schedules RunOnce on spec, e.g. "@every 6h" or "0 3 * * *".
func (r *Reconciler) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule reconciler %q: %w", spec, err)
	}

	r.cron.Start()
	r.log.WithField("schedule", spec).Info("Reconciler scheduled")
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (r *Reconciler) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
		r.log.Warn("Reconciler still running at shutdown")
	}
}

// RunOnce reconciles every affected user. A failure for one user is logged
// and the run moves on.
func (r *Reconciler) RunOnce(ctx context.Context) ReconcileReport {
	start := time.Now()
	report := ReconcileReport{}

	users, err := r.participants.CompletedParticipants(ctx)
	if err != nil {
		r.log.WithError(err).Error("Failed to list barter participants")
		report.Failures++
	}
	for _, userID := range users {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.stats.ReconcileUser(ctx, userID); err != nil {
			r.log.WithUserID(userID).WithError(err).Error("Failed to reconcile total barters")
			report.Failures++
			continue
		}
		report.UsersReconciled++
	}

	reviewees, err := r.reviewees.Reviewees(ctx)
	if err != nil {
		r.log.WithError(err).Error("Failed to list reviewees")
		report.Failures++
	}
	for _, userID := range reviewees {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.ratings.Recompute(ctx, userID); err != nil {
			r.log.WithUserID(userID).WithError(err).Error("Failed to recompute rating summary")
			report.Failures++
			continue
		}
		report.RatingsRecomputed++
	}

	report.Duration = time.Since(start)
	r.log.WithFields(map[string]interface{}{
		"users":       report.UsersReconciled,
		"ratings":     report.RatingsRecomputed,
		"failures":    report.Failures,
		"duration_ms": report.Duration.Milliseconds(),
	}).Info("Reconciliation finished")

	return report
}
