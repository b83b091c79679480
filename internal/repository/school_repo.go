package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// SchoolRepo handles MongoDB operations for the school master list.
type SchoolRepo interface {
	// Search returns the best full-text match for name inside the given
	// province, or nil when nothing matches. Province may be empty to
	// search nationally.
	Search(ctx context.Context, name, province string) (*model.School, error)
	Insert(ctx context.Context, schools []model.School) error
	EnsureIndexes(ctx context.Context) error
}

type schoolRepo struct {
	collection *mongo.Collection
}

// NewSchoolRepo creates a new school repository
func NewSchoolRepo(db *mongo.Database) SchoolRepo {
	return &schoolRepo{
		collection: db.Collection("schools"),
	}
}

func (r *schoolRepo) Search(ctx context.Context, name, province string) (*model.School, error) {
	filter := bson.M{"$text": bson.M{"$search": name}}
	if province != "" {
		filter["province"] = province
	}

	opts := options.FindOne().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})

	var school model.School
	err := r.collection.FindOne(ctx, filter, opts).Decode(&school)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepo) Insert(ctx context.Context, schools []model.School) error {
	docs := make([]any, len(schools))
	for i, s := range schools {
		docs[i] = s
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *schoolRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: "text"}},
	})
	return err
}
