package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"zappy/internal/world/app/port"
	"zappy/internal/world/entity"
	"zappy/internal/world/infra/persistence/model"
)

const defaultCollectionName = "world"

var errNilCollection = errors.New("mongodb world collection is nil")

type WorldRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewWorldRepository(db *mongo.Database) *WorldRepository {
	return &WorldRepository{
		coll: db.Collection(defaultCollectionName),
		now:  time.Now,
	}
}

func (r *WorldRepository) LoadWorld(ctx context.Context, id entity.WorldID) (*entity.WorldPersistSnapshot, error) {
	if r == nil || r.coll == nil {
		return nil, errNilCollection
	}

	var doc model.WorldDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": int(id)}).Decode(&doc)
	if err == nil {
		return model.DocToSnapshot(doc), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, port.ErrWorldNotFound.WithData("world_id", int(id))
	}
	return nil, err
}

// Save 整篇替换；已存在更高版本时过滤条件不命中，upsert 撞主键后视为过期写入。
func (r *WorldRepository) Save(ctx context.Context, s *entity.WorldPersistSnapshot) error {
	if s == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errNilCollection
	}

	doc := model.SnapshotToDoc(s, r.now())
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.WorldID, "version": bson.M{"$lt": doc.Version}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
