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

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates the MongoDB user repository
func NewUserRepository(db *database.Manager) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db, database.UsersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = models.NewID()
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now().UTC()
	}
	user.Saved = idList(user.Saved)

	start := time.Now()
	_, err := r.coll.InsertOne(ctx, user)
	return r.observe("create", start, err)
}

func (r *userRepository) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var u models.User
	start := time.Now()
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if err := r.observe(op, start, err); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id models.ID) (*models.User, error) {
	return r.findOne(ctx, "get", bson.M{"_id": id})
}

func (r *userRepository) GetByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return r.findOne(ctx, "get_by_clerk_id", bson.M{"clerkId": clerkID})
}

func (r *userRepository) UpdateProfile(ctx context.Context, clerkID string, update UserProfileUpdate) (*models.User, error) {
	set := bson.M{}
	fields := map[string]*string{
		"name":             update.Name,
		"username":         update.Username,
		"bio":              update.Bio,
		"portfolioWebsite": update.Portfolio,
		"location":         update.Location,
		"picture":          update.Picture,
	}
	for field, value := range fields {
		if value != nil {
			set[field] = *value
		}
	}
	if len(set) == 0 {
		return r.GetByClerkID(ctx, clerkID)
	}

	var u models.User
	start := time.Now()
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"clerkId": clerkID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err := r.observe("update_profile", start, err); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Delete(ctx context.Context, id models.ID) error {
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

func userFilter(q UserQuery) bson.M {
	if q.Search == "" {
		return bson.M{}
	}
	rx := containsRegex(q.Search)
	if q.NameOnly {
		return bson.M{"name": rx}
	}
	return bson.M{"$or": bson.A{bson.M{"name": rx}, bson.M{"username": rx}}}
}

func userOrdering(spec models.SortSpec) ordering {
	switch spec {
	case models.SortOldest:
		return ordering{sort: bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}}}
	case models.SortTopContributors:
		return ordering{sort: bson.D{{Key: "reputation", Value: -1}, {Key: "_id", Value: 1}}}
	default:
		return ordering{sort: bson.D{{Key: "joinedAt", Value: -1}, {Key: "_id", Value: -1}}}
	}
}

func (r *userRepository) Find(ctx context.Context, q UserQuery, opts FindOptions) ([]*models.User, error) {
	var out []*models.User
	pipeline := listPipeline(userFilter(q), userOrdering(opts.Sort), opts)
	if err := r.aggregateAll(ctx, "find", pipeline, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.User{}
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context, q UserQuery) (int64, error) {
	return r.count(ctx, "count", userFilter(q))
}

func (r *userRepository) IncrementReputation(ctx context.Context, id models.ID, delta int64) error {
	start := time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"reputation": delta}})
	if err := r.observe("increment_reputation", start, err); err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.notFound("increment_reputation", id)
	}
	return nil
}

// ToggleSaved flips membership with an update pipeline so the read of the
// current set and the write happen in one atomic document update
func (r *userRepository) ToggleSaved(ctx context.Context, userID, questionID models.ID) (bool, error) {
	saved := bson.M{"$ifNull": bson.A{"$saved", bson.A{}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"saved": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{questionID, saved}},
				bson.M{"$filter": bson.M{
					"input": saved,
					"cond":  bson.M{"$ne": bson.A{"$$this", questionID}},
				}},
				bson.M{"$concatArrays": bson.A{saved, bson.A{questionID}}},
			}},
		}}},
	}

	var u models.User
	start := time.Now()
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		pipeline,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"saved": 1}),
	).Decode(&u)
	if err := r.observe("toggle_saved", start, err); err != nil {
		return false, err
	}
	return models.ContainsID(u.Saved, questionID), nil
}

func (r *userRepository) PullSaved(ctx context.Context, questionID models.ID) (int64, error) {
	start := time.Now()
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"saved": questionID},
		bson.M{"$pull": bson.M{"saved": questionID}},
	)
	if err := r.observe("pull_saved", start, err); err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
