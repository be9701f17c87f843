package journal

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// Mongo inserts entries into a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo wraps an existing collection. Close does not disconnect a client
// it did not create.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

// DialMongo connects to uri and journals into database.collection.
func DialMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &Mongo{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Record implements Recorder.
func (m *Mongo) Record(ctx context.Context, e Entry) error {
	if _, err := m.coll.InsertOne(ctx, e); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "insert journal entry %s", e.ID)
	}
	return nil
}

// Close implements Recorder.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
