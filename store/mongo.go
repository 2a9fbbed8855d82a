package store

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/onboardflow/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// employeeDoc 集合中的文档，key 字段上建唯一索引
type employeeDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Key         string        `bson:"key"`
	Name        string        `bson:"name"`
	Phone       string        `bson:"phone"`
	Designation string        `bson:"designation"`
	Salary      float64       `bson:"salary"`
	CreatedAt   time.Time     `bson:"created_at"`
}

func (d employeeDoc) record() types.EmployeeRecord {
	return types.EmployeeRecord{
		Name:        d.Name,
		Phone:       d.Phone,
		Designation: d.Designation,
		Salary:      d.Salary,
		CreatedAt:   d.CreatedAt,
	}
}

// MongoStore 基于 MongoDB 的记录存储
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore 连接 MongoDB 并确保唯一索引存在
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	s, err := NewMongoStoreFromClient(ctx, client, database, collection)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient 使用共享客户端创建存储
func NewMongoStoreFromClient(ctx context.Context, client *mongo.Client, database, collection string) (*MongoStore, error) {
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_key"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "key", Value: key}}, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable(BackendMongo, "exists", err)
	}
	return n > 0, nil
}

func (s *MongoStore) Append(ctx context.Context, key string, rec types.EmployeeRecord) error {
	doc := newEmployeeDoc(key, rec)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return mongoError("append", key, err)
	}
	return nil
}

func newEmployeeDoc(key string, rec types.EmployeeRecord) employeeDoc {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return employeeDoc{
		Key:         key,
		Name:        rec.Name,
		Phone:       rec.Phone,
		Designation: rec.Designation,
		Salary:      rec.Salary,
		CreatedAt:   createdAt,
	}
}

// mongoError 唯一索引冲突映射为重复键，其余为不可用
func mongoError(op, key string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return duplicate(BackendMongo, key)
	}
	return unavailable(BackendMongo, op, err)
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]types.EmployeeRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable(BackendMongo, "list", err)
	}
	var docs []employeeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable(BackendMongo, "list", err)
	}

	out := make([]types.EmployeeRecord, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	reverse(out)
	return out, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable(BackendMongo, "ping", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
