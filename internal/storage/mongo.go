package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore keeps each collection in a MongoDB collection of the same
// name. Documents are stored as {_id, data, updatedAt}.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type mongoDoc struct {
	ID        string `bson:"_id"`
	Data      string `bson:"data"`
	UpdatedAt int64  `bson:"updatedAt"`
}

func buildMongoURI(p Params) string {
	if strings.HasPrefix(p.Host, "mongodb+srv://") || strings.HasPrefix(p.Host, "mongodb://") {
		uri := p.Host
		if p.Password != "" {
			uri = strings.ReplaceAll(uri, "<password>", p.Password)
			uri = strings.ReplaceAll(uri, "<db_password>", p.Password)
		}
		return uri
	}
	port := p.Port
	if port == 0 {
		port = 27017
	}
	if p.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", p.User, p.Password, p.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", p.Host, port)
}

// NewMongo connects to uri and uses database dbName.
func NewMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = "boards"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Printf("[MONGO] connected, database %s", dbName)
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) Put(ctx context.Context, collection, id string, data []byte) error {
	doc := mongoDoc{ID: id, Data: string(data), UpdatedAt: time.Now().UnixNano()}
	_, err := m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var doc mongoDoc
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return []byte(doc.Data), nil
}

func (m *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (m *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var d mongoDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: d.ID, Data: []byte(d.Data), UpdatedAt: d.UpdatedAt})
	}
	return docs, cursor.Err()
}

func (m *MongoStore) Fingerprint(ctx context.Context, collection string) (Fingerprint, error) {
	coll := m.db.Collection(collection)
	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint %s: %w", collection, err)
	}
	fp := Fingerprint{Count: count}
	if count == 0 {
		return fp, nil
	}
	var latest mongoDoc
	err = coll.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})).Decode(&latest)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return Fingerprint{}, fmt.Errorf("fingerprint %s: %w", collection, err)
	}
	fp.UpdatedAt = latest.UpdatedAt
	return fp, nil
}
