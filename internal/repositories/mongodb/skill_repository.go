package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
)

const SkillCollection = "skills"

type skillRepository struct {
	collection *mongo.Collection
}

func NewSkillRepository(db *mongo.Database) interfaces.SkillRepository {
	return &skillRepository{
		collection: db.Collection(SkillCollection),
	}
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) error {
	skill.ID = primitive.NewObjectID()
	skill.CreatedAt = time.Now()
	skill.UpdatedAt = skill.CreatedAt

	if _, err := r.collection.InsertOne(ctx, skill); err != nil {
		return fmt.Errorf("failed to create skill: %w", err)
	}

	return nil
}

func (r *skillRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	var skill models.Skill
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&skill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	return &skill, nil
}

func (r *skillRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	var skill models.Skill
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&skill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete skill: %w", err)
	}

	return &skill, nil
}

func (r *skillRepository) UpdateVerificationStatus(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus) (*models.Skill, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"verification_status": status, "updated_at": time.Now()}}

	var skill models.Skill
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&skill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update skill verification: %w", err)
	}

	return &skill, nil
}

func (r *skillRepository) List(ctx context.Context, filter interfaces.SkillListFilter, params *utils.PaginationParams) ([]*models.Skill, int64, error) {
	query := skillListQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count skills: %w", err)
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find skills: %w", err)
	}
	defer cursor.Close(ctx)

	skills := make([]*models.Skill, 0, params.GetLimit())
	for cursor.Next(ctx) {
		var skill models.Skill
		if err := cursor.Decode(&skill); err != nil {
			return nil, 0, fmt.Errorf("failed to decode skill: %w", err)
		}
		skills = append(skills, &skill)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate skills: %w", err)
	}

	return skills, total, nil
}

func skillListQuery(filter interfaces.SkillListFilter) bson.M {
	query := bson.M{"is_active": true}
	if !filter.IncludeUnverified {
		query["verification_status"] = models.VerificationStatusApproved
	}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}
	if filter.OfferedBy != nil {
		query["offered_by"] = *filter.OfferedBy
	}
	if filter.Level != "" {
		query["level"] = filter.Level
	}
	if filter.DeliveryMode != "" {
		query["delivery_mode"] = filter.DeliveryMode
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	return query
}
