package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
)

// MarkingCentreRepo handles MongoDB operations for exam marking venues.
type MarkingCentreRepo interface {
	Search(ctx context.Context, name, province string) (*model.MarkingCentre, error)
	Insert(ctx context.Context, centres []model.MarkingCentre) error
	EnsureIndexes(ctx context.Context) error
}

type markingCentreRepo struct {
	collection *mongo.Collection
}

// NewMarkingCentreRepo creates a new marking centre repository
func NewMarkingCentreRepo(db *mongo.Database) MarkingCentreRepo {
	return &markingCentreRepo{
		collection: db.Collection("marking_centres"),
	}
}

func (r *markingCentreRepo) Search(ctx context.Context, name, province string) (*model.MarkingCentre, error) {
	filter := bson.M{"$text": bson.M{"$search": name}}
	if province != "" {
		filter["province"] = province
	}

	opts := options.FindOne().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})

	var centre model.MarkingCentre
	err := r.collection.FindOne(ctx, filter, opts).Decode(&centre)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &centre, nil
}

func (r *markingCentreRepo) Insert(ctx context.Context, centres []model.MarkingCentre) error {
	docs := make([]any, len(centres))
	for i, c := range centres {
		docs[i] = c
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *markingCentreRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: "text"}},
	})
	return err
}
