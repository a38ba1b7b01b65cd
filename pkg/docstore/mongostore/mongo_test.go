package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jakechorley/hope-hub/pkg/docstore"
)

func TestToDocument_ConvertsDriverTypes(t *testing.T) {
	when := time.Date(2025, 8, 4, 9, 30, 0, 0, time.UTC)
	raw := bson.M{
		"_id":    "evt2",
		"title":  "Charity Fun Run",
		"date":   primitive.NewDateTimeFromTime(when),
		"points": int32(5),
		"volunteerRoles": primitive.A{
			primitive.D{{Key: "id", Value: "r1"}, {Key: "points", Value: int32(10)}},
		},
		"meta": primitive.M{"source": "seed"},
	}

	doc := toDocument(raw)

	assert.Equal(t, "evt2", doc.ID)
	assert.NotContains(t, doc.Fields, "_id")
	assert.Equal(t, "Charity Fun Run", doc.Fields["title"])
	assert.True(t, when.Equal(doc.Fields["date"].(time.Time)))
	assert.Equal(t, int64(5), doc.Fields["points"])
	assert.Equal(t, []any{map[string]any{"id": "r1", "points": int64(10)}}, doc.Fields["volunteerRoles"])
	assert.Equal(t, map[string]any{"source": "seed"}, doc.Fields["meta"])
}

func TestWithID(t *testing.T) {
	doc := withID("u1", map[string]any{"name": "Jane"})
	assert.Equal(t, bson.M{"_id": "u1", "name": "Jane"}, doc)
}

func TestFilterQuery(t *testing.T) {
	query, err := filterQuery(nil)
	require.NoError(t, err)
	assert.Empty(t, query)

	query, err = filterQuery([]docstore.Filter{
		docstore.Eq("role", "Admin"),
		docstore.ArrayContains("participantIds", "u1"),
		docstore.ArrayContains("participantIds", "u2"),
	})
	require.NoError(t, err)

	assert.Equal(t, bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "role", Value: bson.D{
			{Key: "$eq", Value: "Admin"},
			{Key: "$not", Value: bson.D{{Key: "$type", Value: "array"}}},
		}}},
		bson.D{{Key: "participantIds", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: "u1"}}}}}},
		bson.D{{Key: "participantIds", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "$eq", Value: "u2"}}}}}},
	}}}, query)
}

func TestFilterQuery_UnknownOperator(t *testing.T) {
	_, err := filterQuery([]docstore.Filter{{Field: "age", Op: ">", Value: 3}})
	assert.ErrorContains(t, err, "unsupported filter operator")
}
