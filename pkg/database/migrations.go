package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationsCollection = "migrations"

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	log        logrus.FieldLogger
}

func NewMigrator(db *mongo.Database, log logrus.FieldLogger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		log:        log,
	}
}

// Up applies every migration newer than the stored version, in order.
func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create barter_requests indexes",
			Up:          createBarterIndexes,
			Down:        dropIndexes("barter_requests"),
		},
		{
			Version:     2,
			Description: "Create reviews indexes",
			Up:          createReviewIndexes,
			Down:        dropIndexes("reviews"),
		},
		{
			Version:     3,
			Description: "Create skills and users indexes",
			Up:          createSkillAndUserIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes("skills")(ctx, db); err != nil {
					return err
				}
				return dropIndexes("users")(ctx, db)
			},
		},
		{
			Version:     4,
			Description: "Create notifications and conversations indexes",
			Up:          createNotificationAndConversationIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes("notifications")(ctx, db); err != nil {
					return err
				}
				return dropIndexes("conversations")(ctx, db)
			},
		},
		{
			Version:     5,
			Description: "Create categories and skill catalogue indexes",
			Up:          createCatalogueIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes("categories")(ctx, db); err != nil {
					return err
				}
				_, err := db.Collection("skills").Indexes().DropOne(ctx, "category_listing")
				return err
			},
		},
	}
}

func createBarterIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			// one pending request per sender, receiver and skill pair
			Keys: bson.D{
				{Key: "sender_id", Value: 1},
				{Key: "receiver_id", Value: 1},
				{Key: "offered_skill_id", Value: 1},
				{Key: "requested_skill_id", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_pending_tuple").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		{
			Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := db.Collection("barter_requests").Indexes().CreateMany(ctx, indexes)
	return err
}

func createReviewIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reviewer_id", Value: 1}, {Key: "barter_id", Value: 1}},
			Options: options.Index().SetName("uniq_reviewer_barter").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reviewee_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := db.Collection("reviews").Indexes().CreateMany(ctx, indexes)
	return err
}

func createSkillAndUserIndexes(ctx context.Context, db *mongo.Database) error {
	skillIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "offered_by", Value: 1}, {Key: "is_active", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "verification_status", Value: 1}},
		},
	}
	if _, err := db.Collection("skills").Indexes().CreateMany(ctx, skillIndexes); err != nil {
		return err
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection("users").Indexes().CreateMany(ctx, userIndexes)
	return err
}

func createNotificationAndConversationIndexes(ctx context.Context, db *mongo.Database) error {
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection("notifications").Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return err
	}

	conversationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "participants", Value: 1}, {Key: "barter_id", Value: 1}},
		},
	}
	_, err := db.Collection("conversations").Indexes().CreateMany(ctx, conversationIndexes)
	return err
}

func createCatalogueIndexes(ctx context.Context, db *mongo.Database) error {
	categoryIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("categories").Indexes().CreateMany(ctx, categoryIndexes); err != nil {
		return err
	}

	skillIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "verification_status", Value: 1}},
			Options: options.Index().SetName("category_listing"),
		},
	}
	_, err := db.Collection("skills").Indexes().CreateMany(ctx, skillIndexes)
	return err
}

func dropIndexes(collection string) func(ctx context.Context, db *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		_, err := db.Collection(collection).Indexes().DropAll(ctx)
		return err
	}
}
