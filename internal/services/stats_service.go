package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/pkg/logger"
)

type StatsService interface {
	StatsFor(ctx context.Context, userID primitive.ObjectID) (*models.BarterStats, error)
	// RecordCompletion bumps total_barters for both parties. Failures are
	// logged and left for ReconcileUser to repair.
	RecordCompletion(ctx context.Context, senderID, receiverID primitive.ObjectID)
	// ReconcileUser rewrites total_barters from the completed requests on record.
	ReconcileUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type statsService struct {
	barterRepo interfaces.BarterRepository
	userRepo   interfaces.UserRepository
	log        *logger.Logger
}

func NewStatsService(barterRepo interfaces.BarterRepository, userRepo interfaces.UserRepository, log *logger.Logger) StatsService {
	return &statsService{
		barterRepo: barterRepo,
		userRepo:   userRepo,
		log:        log.WithField("service", "stats"),
	}
}

func (s *statsService) StatsFor(ctx context.Context, userID primitive.ObjectID) (*models.BarterStats, error) {
	counts, err := s.barterRepo.CountStatusesForUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}

	stats := &models.BarterStats{
		ByStatus: make(map[models.BarterStatus]int64, len(models.AllBarterStatuses)),
	}
	for _, status := range models.AllBarterStatuses {
		stats.ByStatus[status] = 0
	}

	for _, row := range counts {
		stats.ByStatus[row.Status] += row.Count
		if row.Sent {
			stats.Sent += row.Count
		} else {
			stats.Received += row.Count
		}
	}
	stats.Total = stats.Sent + stats.Received

	return stats, nil
}

func (s *statsService) RecordCompletion(ctx context.Context, senderID, receiverID primitive.ObjectID) {
	var g errgroup.Group

	for _, userID := range []primitive.ObjectID{senderID, receiverID} {
		userID := userID
		g.Go(func() error {
			if err := s.userRepo.IncrementTotalBarters(ctx, userID, 1); err != nil {
				s.log.WithContext(ctx).WithUserID(userID).WithError(err).Error("Failed to increment total barters")
				return err
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (s *statsService) ReconcileUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	completed, err := s.barterRepo.CountCompletedForUser(ctx, userID)
	if err != nil {
		return 0, internalError(err)
	}

	if err := s.userRepo.SetTotalBarters(ctx, userID, completed); err != nil {
		return 0, internalError(err)
	}

	return completed, nil
}
