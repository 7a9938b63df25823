package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devflow/internal/database"
	"devflow/internal/models"
)

// caseInsensitive matches the collation of the unique tag name index
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type tagRepository struct {
	*BaseRepository
}

// NewTagRepository creates the MongoDB tag repository
func NewTagRepository(db *database.Manager) TagRepository {
	return &tagRepository{BaseRepository: NewBaseRepository(db, database.TagsCollection)}
}

func (r *tagRepository) AttachQuestion(ctx context.Context, name string, questionID models.ID) (*models.Tag, error) {
	tag, err := r.upsert(ctx, name, questionID)
	// Two concurrent upserts of a new name race on the unique index; the
	// loser finds the winner's document on the second try.
	if errors.Is(err, ErrDuplicate) {
		tag, err = r.upsert(ctx, name, questionID)
	}
	return tag, err
}

func (r *tagRepository) upsert(ctx context.Context, name string, questionID models.ID) (*models.Tag, error) {
	var tag models.Tag
	start := time.Now()
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{
			"$setOnInsert": bson.M{"name": name, "createdOn": time.Now().UTC()},
			"$addToSet":    bson.M{"questions": questionID},
		},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After).
			SetCollation(caseInsensitive),
	).Decode(&tag)
	if err := r.observe("attach_question", start, err); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByID(ctx context.Context, id models.ID) (*models.Tag, error) {
	var tag models.Tag
	start := time.Now()
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&tag)
	if err := r.observe("get", start, err); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []models.ID) ([]*models.Tag, error) {
	var out []*models.Tag
	start := time.Now()
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": idList(ids)}})
	if err == nil {
		err = cursor.All(ctx, &out)
	}
	if err := r.observe("get_many", start, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepository) PullQuestion(ctx context.Context, questionID models.ID) (int64, error) {
	start := time.Now()
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"questions": questionID},
		bson.M{"$pull": bson.M{"questions": questionID}},
	)
	if err := r.observe("pull_question", start, err); err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func tagFilter(q TagQuery) bson.M {
	filter := bson.M{}
	if q.PopulatedOnly {
		filter["questions.0"] = bson.M{"$exists": true}
	}
	if q.Search != "" {
		filter["name"] = containsRegex(q.Search)
	}
	return filter
}

func tagOrdering(spec models.SortSpec) ordering {
	switch spec {
	case models.SortName:
		return ordering{sort: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}}
	case models.SortNewest:
		return ordering{sort: bson.D{{Key: "createdOn", Value: -1}, {Key: "_id", Value: -1}}}
	case models.SortOldest:
		return ordering{sort: bson.D{{Key: "createdOn", Value: 1}, {Key: "_id", Value: 1}}}
	default:
		return ordering{
			computed: bson.D{questionCount},
			sort:     bson.D{{Key: "questionCount", Value: -1}, {Key: "_id", Value: 1}},
		}
	}
}

func (r *tagRepository) Find(ctx context.Context, q TagQuery, opts FindOptions) ([]*models.Tag, error) {
	var out []*models.Tag
	pipeline := listPipeline(tagFilter(q), tagOrdering(opts.Sort), opts)
	if err := r.aggregateAll(ctx, "find", pipeline, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Tag{}
	}
	return out, nil
}

func (r *tagRepository) Count(ctx context.Context, q TagQuery) (int64, error) {
	return r.count(ctx, "count", tagFilter(q))
}
