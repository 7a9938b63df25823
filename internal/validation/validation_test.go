package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name      string   `json:"name" validate:"required,min=5,max=50"`
	Portfolio string   `json:"portfolio_website" validate:"omitempty,url"`
	Tags      []string `json:"tags" validate:"min=1,max=3,dive,notblank,max=15"`
}

func TestValidateStruct_Valid(t *testing.T) {
	fields, err := ValidateStruct(&profile{Name: "Ada Lovelace", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestValidateStruct_ReportsJSONFieldNames(t *testing.T) {
	fields, err := ValidateStruct(profile{Name: "Ada", Portfolio: "nope", Tags: nil})
	require.NoError(t, err)

	byField := map[string]FieldError{}
	for _, f := range fields {
		byField[f.Field] = f
	}

	require.Contains(t, byField, "name")
	assert.Equal(t, "must be at least 5 characters", byField["name"].Message)
	require.Contains(t, byField, "portfolio_website")
	assert.Equal(t, "url", byField["portfolio_website"].Tag)
	require.Contains(t, byField, "tags")
	assert.Equal(t, "must contain at least 1 items", byField["tags"].Message)
}

func TestValidateStruct_DivesIntoSlices(t *testing.T) {
	fields, err := ValidateStruct(profile{Name: "Grace Hopper", Tags: []string{"  ", "averyveryverylongtag"}})
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}

func TestValidateStruct_RejectsNonStruct(t *testing.T) {
	_, err := ValidateStruct("just a string")
	assert.Error(t, err)
}
