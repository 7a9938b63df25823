package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devflow/internal/database"
	"devflow/internal/models"
)

type interactionRepository struct {
	*BaseRepository
}

// NewInteractionRepository creates the MongoDB interaction repository
func NewInteractionRepository(db *database.Manager) InteractionRepository {
	return &interactionRepository{BaseRepository: NewBaseRepository(db, database.InteractionsCollection)}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	if interaction.ID.IsZero() {
		interaction.ID = models.NewID()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}
	interaction.Tags = idList(interaction.Tags)

	start := time.Now()
	_, err := r.coll.InsertOne(ctx, interaction)
	return r.observe("create", start, err)
}

// RecordView upserts on (user, question, view); the partial unique index
// guarantees a single document even under concurrent views
func (r *interactionRepository) RecordView(ctx context.Context, userID, questionID models.ID, tags []models.ID) (bool, error) {
	start := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user": userID, "question": questionID, "action": models.ActionView},
		bson.M{"$setOnInsert": bson.M{"tags": idList(tags), "createdAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		r.metrics.Observe(r.name, "record_view", start, nil)
		return false, nil
	}
	if err := r.observe("record_view", start, err); err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func interactionFilter(q InteractionQuery) bson.M {
	filter := bson.M{}
	if !q.User.IsZero() {
		filter["user"] = q.User
	}
	if !q.Question.IsZero() {
		filter["question"] = q.Question
	}
	if q.Action != "" {
		filter["action"] = q.Action
	}
	return filter
}

func (r *interactionRepository) Count(ctx context.Context, q InteractionQuery) (int64, error) {
	return r.count(ctx, "count", interactionFilter(q))
}

func (r *interactionRepository) DistinctTags(ctx context.Context, userID models.ID) ([]models.ID, error) {
	start := time.Now()
	values, err := r.coll.Distinct(ctx, "tags", bson.M{"user": userID})
	if err := r.observe("distinct_tags", start, err); err != nil {
		return nil, err
	}
	return fromObjectIDs(values), nil
}

func (r *interactionRepository) TopTags(ctx context.Context, userID models.ID, limit int64) ([]models.TagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	var out []models.TagCount
	if err := r.aggregateAll(ctx, "top_tags", pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interactionRepository) deleteMany(ctx context.Context, op string, filter bson.M) (int64, error) {
	start := time.Now()
	res, err := r.coll.DeleteMany(ctx, filter)
	if err := r.observe(op, start, err); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *interactionRepository) DeleteByQuestion(ctx context.Context, questionID models.ID) (int64, error) {
	return r.deleteMany(ctx, "delete_by_question", bson.M{"question": questionID})
}

func (r *interactionRepository) DeleteByAnswer(ctx context.Context, answerID models.ID) (int64, error) {
	return r.deleteMany(ctx, "delete_by_answer", bson.M{"answer": answerID})
}

func (r *interactionRepository) DeleteByUser(ctx context.Context, userID models.ID) (int64, error) {
	return r.deleteMany(ctx, "delete_by_user", bson.M{"user": userID})
}
