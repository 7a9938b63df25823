package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"devflow/internal/database"
	"devflow/internal/models"
)

// BaseRepository provides the shared plumbing of the MongoDB repositories:
// operation metrics, error translation and listing helpers
type BaseRepository struct {
	coll    *mongo.Collection
	name    string
	metrics *database.Metrics
	logger  *zap.Logger
}

// NewBaseRepository binds a base repository to one collection
func NewBaseRepository(db *database.Manager, collection string) *BaseRepository {
	return &BaseRepository{
		coll:    db.Collection(collection),
		name:    collection,
		metrics: db.Metrics(),
		logger:  db.Logger().With(zap.String("collection", collection)),
	}
}

// observe records an operation and translates driver errors into the store
// sentinels
func (r *BaseRepository) observe(op string, started time.Time, err error) error {
	r.metrics.Observe(r.name, op, started, err)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s %s: %w", r.name, op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s %s: %w", r.name, op, ErrDuplicate)
	default:
		r.logger.Error("Store operation failed", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%s %s: %w", r.name, op, err)
	}
}

// notFound reports a missing document for operations that detect it from a
// result count rather than a driver error
func (r *BaseRepository) notFound(op string, id models.ID) error {
	return fmt.Errorf("%s %s %s: %w", r.name, op, id, ErrNotFound)
}

// aggregateAll runs a pipeline and decodes every result into out
func (r *BaseRepository) aggregateAll(ctx context.Context, op string, pipeline mongo.Pipeline, out interface{}) error {
	start := time.Now()
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return r.observe(op, start, err)
	}
	err = cursor.All(ctx, out)
	return r.observe(op, start, err)
}

// count runs CountDocuments
func (r *BaseRepository) count(ctx context.Context, op string, filter bson.M) (int64, error) {
	start := time.Now()
	n, err := r.coll.CountDocuments(ctx, filter)
	return n, r.observe(op, start, err)
}

// ===============================
// LISTING HELPERS
// ===============================

// ordering is a sort document plus the computed fields it needs
type ordering struct {
	computed bson.D
	sort     bson.D
}

var (
	upvoteCount   = bson.E{Key: "upvoteCount", Value: sizeOf("$upvotes")}
	answerCount   = bson.E{Key: "answerCount", Value: sizeOf("$answers")}
	questionCount = bson.E{Key: "questionCount", Value: sizeOf("$questions")}
)

func sizeOf(field string) bson.M {
	return bson.M{"$size": bson.M{"$ifNull": bson.A{field, bson.A{}}}}
}

// listPipeline builds match, computed fields, sort and window stages
func listPipeline(filter bson.M, order ordering, opts FindOptions) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(order.computed) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: order.computed}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: order.sort}})
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: opts.Skip}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: opts.Limit}})
	}
	if len(order.computed) > 0 {
		unset := make(bson.A, 0, len(order.computed))
		for _, field := range order.computed {
			unset = append(unset, field.Key)
		}
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: unset}})
	}
	return pipeline
}

// containsRegex matches s literally anywhere in a field, ignoring case
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// idList keeps $in operands arrays even when empty
func idList(ids []models.ID) []models.ID {
	if ids == nil {
		return []models.ID{}
	}
	return ids
}

// voteUpdate places voter into the set matching state and out of the other
func voteUpdate(voter models.ID, state models.VoteState) bson.M {
	switch state {
	case models.VoteUp:
		return bson.M{
			"$addToSet": bson.M{"upvotes": voter},
			"$pull":     bson.M{"downvotes": voter},
		}
	case models.VoteDown:
		return bson.M{
			"$addToSet": bson.M{"downvotes": voter},
			"$pull":     bson.M{"upvotes": voter},
		}
	default:
		return bson.M{"$pull": bson.M{"upvotes": voter, "downvotes": voter}}
	}
}

var voteProjection = bson.M{"author": 1, "upvotes": 1, "downvotes": 1}

func fromObjectIDs(values []interface{}) []models.ID {
	out := make([]models.ID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			out = append(out, models.ID(oid))
		}
	}
	return out
}
