package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseID(t *testing.T) {
	id := NewID()

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = ParseID("000000000000000000000000")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestID_AllocationOrder(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(a))
}

func TestID_JSON(t *testing.T) {
	q := Question{ID: NewID(), Author: NewID(), Tags: []ID{NewID()}}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var decoded Question
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, q.ID, decoded.ID)
	assert.Equal(t, q.Tags, decoded.Tags)
}

func TestID_EncodesAsObjectID(t *testing.T) {
	id := NewID()
	raw, err := bson.Marshal(bson.M{"_id": id})
	require.NoError(t, err)

	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, id.String(), doc.ID.Hex())

	var back struct {
		ID ID `bson:"_id"`
	}
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, id, back.ID)
}

func TestParseSortSpec(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		allowed []SortSpec
		want    SortSpec
		wantErr bool
	}{
		{"empty uses fallback", "", QuestionSorts, SortNewest, false},
		{"exact preset", "most_voted", QuestionSorts, SortMostVoted, false},
		{"alias frequent", "frequent", QuestionSorts, SortMostViewed, false},
		{"alias old_users", "old_users", UserSorts, SortOldest, false},
		{"case insensitive", "Name", TagSorts, SortName, false},
		{"not allowed for listing", "name", QuestionSorts, "", true},
		{"unknown", "sideways", TagSorts, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortSpec(tt.raw, tt.allowed, SortNewest)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuestionListing(t *testing.T) {
	sort, unanswered, err := ParseQuestionListing("unanswered")
	require.NoError(t, err)
	assert.True(t, unanswered)
	assert.Equal(t, SortNewest, sort)

	sort, unanswered, err = ParseQuestionListing("frequent")
	require.NoError(t, err)
	assert.False(t, unanswered)
	assert.Equal(t, SortMostViewed, sort)
}

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{Page: -3, PageSize: 0}.Normalize(20, 100)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, int64(0), p.Skip())

	p = PageRequest{Page: 3, PageSize: 500}.Normalize(20, 100)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, int64(200), p.Skip())
}

func TestParseSearchKind(t *testing.T) {
	k, ok := ParseSearchKind("answer")
	assert.True(t, ok)
	assert.Equal(t, SearchAnswer, k)

	_, ok = ParseSearchKind("comment")
	assert.False(t, ok)
}
