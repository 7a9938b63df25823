package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devflow/internal/database"
	"devflow/internal/models"
)

type answerRepository struct {
	*BaseRepository
}

// NewAnswerRepository creates the MongoDB answer repository
func NewAnswerRepository(db *database.Manager) AnswerRepository {
	return &answerRepository{BaseRepository: NewBaseRepository(db, database.AnswersCollection)}
}

func (r *answerRepository) Create(ctx context.Context, answer *models.Answer) error {
	if answer.ID.IsZero() {
		answer.ID = models.NewID()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now().UTC()
	}
	answer.Upvotes = idList(answer.Upvotes)
	answer.Downvotes = idList(answer.Downvotes)

	start := time.Now()
	_, err := r.coll.InsertOne(ctx, answer)
	return r.observe("create", start, err)
}

func (r *answerRepository) GetByID(ctx context.Context, id models.ID) (*models.Answer, error) {
	var a models.Answer
	start := time.Now()
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err := r.observe("get", start, err); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *answerRepository) Delete(ctx context.Context, id models.ID) error {
	start := time.Now()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err := r.observe("delete", start, err); err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.notFound("delete", id)
	}
	return nil
}

func (r *answerRepository) DeleteByQuestion(ctx context.Context, questionID models.ID) (int64, error) {
	start := time.Now()
	res, err := r.coll.DeleteMany(ctx, bson.M{"question": questionID})
	if err := r.observe("delete_by_question", start, err); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func answerFilter(q AnswerQuery) bson.M {
	filter := bson.M{}
	if !q.Question.IsZero() {
		filter["question"] = q.Question
	}
	if !q.Author.IsZero() {
		filter["author"] = q.Author
	}
	if q.Search != "" {
		filter["content"] = containsRegex(q.Search)
	}
	return filter
}

func answerOrdering(spec models.SortSpec) ordering {
	switch spec {
	case models.SortOldest:
		return ordering{sort: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}
	case models.SortMostVoted:
		return ordering{
			computed: bson.D{upvoteCount},
			sort:     bson.D{{Key: "upvoteCount", Value: -1}, {Key: "_id", Value: 1}},
		}
	default:
		return ordering{sort: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}
	}
}

func (r *answerRepository) Find(ctx context.Context, q AnswerQuery, opts FindOptions) ([]*models.Answer, error) {
	var out []*models.Answer
	pipeline := listPipeline(answerFilter(q), answerOrdering(opts.Sort), opts)
	if err := r.aggregateAll(ctx, "find", pipeline, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Answer{}
	}
	return out, nil
}

func (r *answerRepository) Count(ctx context.Context, q AnswerQuery) (int64, error) {
	return r.count(ctx, "count", answerFilter(q))
}

func (r *answerRepository) SetVote(ctx context.Context, itemID, voterID models.ID, state models.VoteState) (*models.VoteSets, error) {
	var sets models.VoteSets
	start := time.Now()
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": itemID},
		voteUpdate(voterID, state),
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(voteProjection),
	).Decode(&sets)
	if err := r.observe("set_vote", start, err); err != nil {
		return nil, err
	}
	return &sets, nil
}
