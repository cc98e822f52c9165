package store

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schemtools/spicenet/pkg/errors"
	"github.com/schemtools/spicenet/pkg/schematic"
)

// Mongo is a Store over a MongoDB collection holding the same documents a
// CouchDB deployment would, keyed by _id. Group and model fetches are
// expressed as _id range queries so the two backends stay behaviorally
// interchangeable.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to MongoDB and binds the store to db.collection.
func NewMongo(ctx context.Context, uri, db, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connecting to %s", uri)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(db).Collection(collection),
	}, nil
}

// Group fetches every document with id prefix "name:".
func (m *Mongo) Group(ctx context.Context, name string) (schematic.Level, error) {
	if err := errors.ValidateSchematicName(name); err != nil {
		return nil, err
	}
	cur, err := m.coll.Find(ctx, idRange(name+":"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "querying group %s", name)
	}
	defer cur.Close(ctx)

	level := make(schematic.Level)
	for cur.Next(ctx) {
		var doc schematic.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decoding document in group %s", name)
		}
		level[doc.ID] = &doc
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterating group %s", name)
	}
	return level, nil
}

// Models fetches the model library as a "models:" id range.
func (m *Mongo) Models(ctx context.Context) (map[string]*schematic.Model, error) {
	cur, err := m.coll.Find(ctx, idRange(schematic.ModelPrefix))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "querying models")
	}
	defer cur.Close(ctx)

	models := make(map[string]*schematic.Model)
	for cur.Next(ctx) {
		var model schematic.Model
		if err := cur.Decode(&model); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decoding model")
		}
		models[model.ID] = &model
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterating models")
	}
	return models, nil
}

// Library searches models by name regex and category path position, the
// same selector shape the CouchDB backend sends to _find.
func (m *Mongo) Library(ctx context.Context, filter string, category []string) ([]*schematic.Model, error) {
	query := idRange(schematic.ModelPrefix)
	for i, cat := range category {
		query[fmt.Sprintf("category.%d", i)] = cat
	}
	if filter != "" {
		query["name"] = bson.M{"$regex": filter, "$options": "i"}
	}

	cur, err := m.coll.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "searching library")
	}
	defer cur.Close(ctx)

	var out []*schematic.Model
	for cur.Next(ctx) {
		var model schematic.Model
		if err := cur.Decode(&model); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decoding library result")
		}
		out = append(out, &model)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterating library")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close disconnects from the server.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func idRange(prefix string) bson.M {
	return bson.M{"_id": bson.M{"$gte": prefix, "$lte": prefix + rangeEnd}}
}

var _ Store = (*Mongo)(nil)
