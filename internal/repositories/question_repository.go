package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devflow/internal/database"
	"devflow/internal/models"
)

type questionRepository struct {
	*BaseRepository
}

// NewQuestionRepository creates the MongoDB question repository
func NewQuestionRepository(db *database.Manager) QuestionRepository {
	return &questionRepository{BaseRepository: NewBaseRepository(db, database.QuestionsCollection)}
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID.IsZero() {
		question.ID = models.NewID()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}
	question.Tags = idList(question.Tags)
	question.Upvotes = idList(question.Upvotes)
	question.Downvotes = idList(question.Downvotes)
	question.Answers = idList(question.Answers)

	start := time.Now()
	_, err := r.coll.InsertOne(ctx, question)
	return r.observe("create", start, err)
}

func (r *questionRepository) GetByID(ctx context.Context, id models.ID) (*models.Question, error) {
	var q models.Question
	start := time.Now()
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err := r.observe("get", start, err); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) UpdateContent(ctx context.Context, id models.ID, title, content string) (*models.Question, error) {
	var q models.Question
	start := time.Now()
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"title": title, "content": content}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err := r.observe("update_content", start, err); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) Delete(ctx context.Context, id models.ID) error {
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

func questionFilter(q QuestionQuery) bson.M {
	filter := bson.M{}

	if q.Search != "" {
		rx := containsRegex(q.Search)
		if q.SearchContent {
			filter["$or"] = bson.A{bson.M{"title": rx}, bson.M{"content": rx}}
		} else {
			filter["title"] = rx
		}
	}
	if q.UnansweredOnly {
		filter["answers"] = bson.M{"$size": 0}
	}

	author := bson.M{}
	if !q.Author.IsZero() {
		author["$eq"] = q.Author
	}
	if !q.ExcludeAuthor.IsZero() {
		author["$ne"] = q.ExcludeAuthor
	}
	if len(author) > 0 {
		filter["author"] = author
	}

	if len(q.TagsAny) > 0 {
		filter["tags"] = bson.M{"$in": q.TagsAny}
	}
	if q.RestrictIDs {
		filter["_id"] = bson.M{"$in": idList(q.IDs)}
	}
	return filter
}

// questionOrdering maps presets onto sort documents. SortPopular is the hot
// ordering: views, then upvote count.
func questionOrdering(spec models.SortSpec) ordering {
	switch spec {
	case models.SortOldest:
		return ordering{sort: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}
	case models.SortMostViewed:
		return ordering{sort: bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}}
	case models.SortMostVoted:
		return ordering{
			computed: bson.D{upvoteCount},
			sort:     bson.D{{Key: "upvoteCount", Value: -1}, {Key: "_id", Value: 1}},
		}
	case models.SortMostAnswered:
		return ordering{
			computed: bson.D{answerCount},
			sort:     bson.D{{Key: "answerCount", Value: -1}, {Key: "_id", Value: 1}},
		}
	case models.SortPopular:
		return ordering{
			computed: bson.D{upvoteCount},
			sort:     bson.D{{Key: "views", Value: -1}, {Key: "upvoteCount", Value: -1}, {Key: "_id", Value: 1}},
		}
	default:
		return ordering{sort: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}
	}
}

func (r *questionRepository) Find(ctx context.Context, q QuestionQuery, opts FindOptions) ([]*models.Question, error) {
	var out []*models.Question
	pipeline := listPipeline(questionFilter(q), questionOrdering(opts.Sort), opts)
	if err := r.aggregateAll(ctx, "find", pipeline, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Question{}
	}
	return out, nil
}

func (r *questionRepository) Count(ctx context.Context, q QuestionQuery) (int64, error) {
	return r.count(ctx, "count", questionFilter(q))
}

func (r *questionRepository) AddTags(ctx context.Context, id models.ID, tagIDs []models.ID) error {
	return r.updateOne(ctx, "add_tags", id, bson.M{"$addToSet": bson.M{"tags": bson.M{"$each": idList(tagIDs)}}})
}

func (r *questionRepository) PushAnswer(ctx context.Context, id, answerID models.ID) error {
	return r.updateOne(ctx, "push_answer", id, bson.M{"$addToSet": bson.M{"answers": answerID}})
}

func (r *questionRepository) PullAnswer(ctx context.Context, id, answerID models.ID) error {
	return r.updateOne(ctx, "pull_answer", id, bson.M{"$pull": bson.M{"answers": answerID}})
}

func (r *questionRepository) updateOne(ctx context.Context, op string, id models.ID, update bson.M) error {
	start := time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err := r.observe(op, start, err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.notFound(op, id)
	}
	return nil
}

func (r *questionRepository) IncrementViews(ctx context.Context, id models.ID) (*models.Question, error) {
	var q models.Question
	start := time.Now()
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err := r.observe("increment_views", start, err); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) SetVote(ctx context.Context, itemID, voterID models.ID, state models.VoteState) (*models.VoteSets, error) {
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
