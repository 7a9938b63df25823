package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"devflow/internal/models"
)

func TestQuestionFilter(t *testing.T) {
	author := models.NewID()
	tag := models.NewID()

	filter := questionFilter(QuestionQuery{
		Search:         "a.b",
		SearchContent:  true,
		UnansweredOnly: true,
		ExcludeAuthor:  author,
		TagsAny:        []models.ID{tag},
	})

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"title": primitive.Regex{Pattern: `a\.b`, Options: "i"}}, or[0])
	assert.Equal(t, bson.M{"$size": 0}, filter["answers"])
	assert.Equal(t, bson.M{"$ne": author}, filter["author"])
	assert.Equal(t, bson.M{"$in": []models.ID{tag}}, filter["tags"])
	assert.NotContains(t, filter, "_id")
}

func TestQuestionFilter_RestrictToEmptyIDs(t *testing.T) {
	filter := questionFilter(QuestionQuery{RestrictIDs: true})
	assert.Equal(t, bson.M{"$in": []models.ID{}}, filter["_id"])
}

func TestListPipeline_ComputedSort(t *testing.T) {
	pipeline := listPipeline(bson.M{}, questionOrdering(models.SortMostVoted), FindOptions{Skip: 20, Limit: 10})

	require.Len(t, pipeline, 6)
	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, "$addFields", pipeline[1][0].Key)
	assert.Equal(t, "$sort", pipeline[2][0].Key)
	assert.Equal(t, bson.D{{Key: "upvoteCount", Value: -1}, {Key: "_id", Value: 1}}, pipeline[2][0].Value)
	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(20)}}, pipeline[3])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(10)}}, pipeline[4])
	assert.Equal(t, "$unset", pipeline[5][0].Key)
}

func TestListPipeline_PlainSort(t *testing.T) {
	pipeline := listPipeline(bson.M{}, questionOrdering(models.SortNewest), FindOptions{Limit: 5})

	require.Len(t, pipeline, 3)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, pipeline[1][0].Value)
}

func TestVoteUpdate(t *testing.T) {
	voter := models.NewID()

	up := voteUpdate(voter, models.VoteUp)
	assert.Equal(t, bson.M{"upvotes": voter}, up["$addToSet"])
	assert.Equal(t, bson.M{"downvotes": voter}, up["$pull"])

	none := voteUpdate(voter, models.VoteNone)
	assert.NotContains(t, none, "$addToSet")
	assert.Equal(t, bson.M{"upvotes": voter, "downvotes": voter}, none["$pull"])
}

func TestTagFilter(t *testing.T) {
	filter := tagFilter(TagQuery{Search: "go", PopulatedOnly: true})
	assert.Equal(t, bson.M{"$exists": true}, filter["questions.0"])
	assert.Equal(t, primitive.Regex{Pattern: "go", Options: "i"}, filter["name"])
}

func TestFromObjectIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	ids := fromObjectIDs([]interface{}{oid, "ignored"})
	require.Len(t, ids, 1)
	assert.Equal(t, oid.Hex(), ids[0].String())
}
