package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when a string cannot be decoded into an ID.
var ErrInvalidID = errors.New("invalid id")

// ID is an opaque, stable record identifier. It is stored as a 12-byte
// ObjectID and travels across the API as a 24-character hex string;
// ParseID and String are the only conversions.
type ID primitive.ObjectID

// NilID is the zero ID. It never identifies a stored record.
var NilID ID

// NewID allocates a new identifier. IDs allocated by one process sort in
// allocation order.
func NewID() ID {
	return ID(primitive.NewObjectID())
}

// ParseID decodes the string form of an ID.
func ParseID(s string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil || oid.IsZero() {
		return NilID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(oid), nil
}

func (id ID) String() string {
	return primitive.ObjectID(id).Hex()
}

func (id ID) IsZero() bool {
	return id == NilID
}

// Compare orders IDs by their byte representation, which is allocation order.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*id = NilID
		return nil
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(primitive.ObjectID(id))
}

func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		*id = NilID
		return nil
	}
	if t != bson.TypeObjectID || len(data) != 12 {
		return fmt.Errorf("%w: bson type %s", ErrInvalidID, t)
	}
	copy(id[:], data)
	return nil
}

// ContainsID reports whether id is present in ids.
func ContainsID(ids []ID, id ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
