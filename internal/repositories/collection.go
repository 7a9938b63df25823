package repositories

import (
	"context"

	"devflow/internal/database"
)

// NewMongoStore wires the MongoDB repositories over one database manager.
// Closing the store disconnects the manager.
func NewMongoStore(db *database.Manager) *Store {
	return &Store{
		Users:        NewUserRepository(db),
		Questions:    NewQuestionRepository(db),
		Answers:      NewAnswerRepository(db),
		Tags:         NewTagRepository(db),
		Interactions: NewInteractionRepository(db),
		Ping:         db.Ping,
		Close: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	}
}
