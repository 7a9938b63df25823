// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User is a community member. ClerkID is the identity provider's subject
// and is the only identity the core ever compares against callers.
type User struct {
	ID         ID        `json:"id" bson:"_id,omitempty"`
	ClerkID    string    `json:"clerk_id" bson:"clerkId"`
	Name       string    `json:"name" bson:"name"`
	Username   string    `json:"username" bson:"username"`
	Email      string    `json:"email" bson:"email"`
	Picture    string    `json:"picture,omitempty" bson:"picture,omitempty"`
	Bio        string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Portfolio  string    `json:"portfolio_website,omitempty" bson:"portfolioWebsite,omitempty"`
	Location   string    `json:"location,omitempty" bson:"location,omitempty"`
	Reputation int64     `json:"reputation" bson:"reputation"`
	Saved      []ID      `json:"saved" bson:"saved"`
	JoinedAt   time.Time `json:"joined_at" bson:"joinedAt"`
}

// Question is the root content item. Upvotes and Downvotes never share a
// member; len(Answers) mirrors the number of stored answers.
type Question struct {
	ID        ID        `json:"id" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Author    ID        `json:"author" bson:"author"`
	Tags      []ID      `json:"tags" bson:"tags"`
	Upvotes   []ID      `json:"upvotes" bson:"upvotes"`
	Downvotes []ID      `json:"downvotes" bson:"downvotes"`
	Views     int64     `json:"views" bson:"views"`
	Answers   []ID      `json:"answers" bson:"answers"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// Answer belongs to exactly one Question.
type Answer struct {
	ID        ID        `json:"id" bson:"_id,omitempty"`
	Content   string    `json:"content" bson:"content"`
	Author    ID        `json:"author" bson:"author"`
	Question  ID        `json:"question" bson:"question"`
	Upvotes   []ID      `json:"upvotes" bson:"upvotes"`
	Downvotes []ID      `json:"downvotes" bson:"downvotes"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// Tag names are unique ignoring case. A tag whose Questions set is empty is
// kept but hidden from populated listings.
type Tag struct {
	ID          ID        `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Questions   []ID      `json:"questions" bson:"questions"`
	CreatedAt   time.Time `json:"created_at" bson:"createdOn"`
}

// InteractionAction enumerates the recorded user actions.
type InteractionAction string

const (
	ActionAskQuestion InteractionAction = "ask_question"
	ActionView        InteractionAction = "view"
	ActionAnswer      InteractionAction = "answer"
)

// Interaction is an append-only event used as recommendation input. At most
// one ActionView exists per (User, Question).
type Interaction struct {
	ID        ID                `json:"id" bson:"_id,omitempty"`
	User      ID                `json:"user" bson:"user"`
	Action    InteractionAction `json:"action" bson:"action"`
	Question  *ID               `json:"question,omitempty" bson:"question,omitempty"`
	Answer    *ID               `json:"answer,omitempty" bson:"answer,omitempty"`
	Tags      []ID              `json:"tags" bson:"tags"`
	CreatedAt time.Time         `json:"created_at" bson:"createdAt"`
}

// ===============================
// VOTING
// ===============================

// VoteState is the position of one voter on one item.
type VoteState int

const (
	VoteDown VoteState = -1
	VoteNone VoteState = 0
	VoteUp   VoteState = 1
)

func (s VoteState) String() string {
	switch s {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// VoteDirection is the button a voter pressed.
type VoteDirection string

const (
	DirectionUp   VoteDirection = "up"
	DirectionDown VoteDirection = "down"
)

// VoteKind selects the collection a vote applies to.
type VoteKind string

const (
	VoteOnQuestion VoteKind = "question"
	VoteOnAnswer   VoteKind = "answer"
)

// VoteSets is the post-mutation vote state of an item together with its
// author, as returned by the store after a vote update.
type VoteSets struct {
	ItemID    ID   `json:"id" bson:"_id"`
	Author    ID   `json:"author" bson:"author"`
	Upvotes   []ID `json:"upvotes" bson:"upvotes"`
	Downvotes []ID `json:"downvotes" bson:"downvotes"`
}

// ===============================
// DERIVED VIEWS
// ===============================

// TagCount is a tag together with how often it occurred in some context.
type TagCount struct {
	ID    ID     `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Count int64  `json:"count" bson:"count"`
}

// UserInfo is a profile together with its content totals.
type UserInfo struct {
	User           *User `json:"user"`
	TotalQuestions int64 `json:"total_questions"`
	TotalAnswers   int64 `json:"total_answers"`
}

// SearchResult is the uniform shape of every search hit.
type SearchResult struct {
	Title string     `json:"title"`
	Type  SearchKind `json:"type"`
	ID    string     `json:"id"`
}

// SearchKind names a searchable record type.
type SearchKind string

const (
	SearchQuestion SearchKind = "question"
	SearchUser     SearchKind = "user"
	SearchAnswer   SearchKind = "answer"
	SearchTag      SearchKind = "tag"
)

// SearchKinds lists the kinds in global result order.
var SearchKinds = []SearchKind{SearchQuestion, SearchUser, SearchAnswer, SearchTag}

// ParseSearchKind reports whether raw names a recognized kind.
func ParseSearchKind(raw string) (SearchKind, bool) {
	for _, k := range SearchKinds {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}
