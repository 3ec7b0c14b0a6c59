package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/types"
)

const (
	collectionsColl = "package_collections"
	stagesColl      = "stages"
)

// Mongo is the document-database realization of Gateway.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logging.Logger
}

// stageDoc pairs the domain Stage with its Mongo object id.
type stageDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	types.Stage `bson:",inline"`
}

// Connect dials the store and validates the connection string with a ping
// before the gateway is handed out. The URI is rejected up front rather
// than failing on first use.
func Connect(ctx context.Context, uri, database string, logger *logging.Logger) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("storage connectivity probe failed: %w", err)
	}

	logger.Info("Connected to storage", zap.String("database", database))

	return &Mongo{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) FindCollections(ctx context.Context, uri string) ([]types.PackageCollection, error) {
	filter := bson.M{}
	if uri != "" {
		filter["uri"] = uri
	}

	cursor, err := m.db.Collection(collectionsColl).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer cursor.Close(ctx)

	var records []types.PackageCollection
	for cursor.Next(ctx) {
		var rec types.PackageCollection
		if err := cursor.Decode(&rec); err != nil {
			// Skip undecodable documents rather than failing the query.
			m.logger.Warn("Skipping undecodable collection document", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("collection cursor failed: %w", err)
	}

	m.logger.Debug("Retrieved package collections",
		zap.String("uri", uri), zap.Int("count", len(records)))
	return records, nil
}

func (m *Mongo) InsertCollection(ctx context.Context, rec types.PackageCollection) error {
	if _, err := m.db.Collection(collectionsColl).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	return nil
}

func (m *Mongo) FindCollectionTools(ctx context.Context, version, uri string) ([]string, error) {
	var rec types.PackageCollection
	err := m.db.Collection(collectionsColl).
		FindOne(ctx, bson.M{"version": version, "uri": uri}).
		Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query collection tools: %w", err)
	}
	return rec.Tools, nil
}

func (m *Mongo) FindStages(ctx context.Context, uri string, activeOnly bool) ([]types.Stage, error) {
	filter := bson.M{"uri": uri}
	if activeOnly {
		filter["active"] = true
	}
	return m.findStages(ctx, filter)
}

func (m *Mongo) InsertStage(ctx context.Context, st types.Stage) (types.Stage, error) {
	res, err := m.db.Collection(stagesColl).InsertOne(ctx, stageDoc{Stage: st})
	if err != nil {
		return types.Stage{}, fmt.Errorf("failed to insert stage: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		st.ID = oid.Hex()
	}
	return st, nil
}

func (m *Mongo) SetStagesActive(ctx context.Context, name, uri string, active bool) error {
	_, err := m.db.Collection(stagesColl).UpdateMany(ctx,
		bson.M{"name": name, "uri": uri},
		bson.M{"$set": bson.M{"active": active}},
	)
	if err != nil {
		return fmt.Errorf("failed to update stages active status: %w", err)
	}
	return nil
}

func (m *Mongo) SetStageActiveByID(ctx context.Context, id string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid stage id %q: %w", id, err)
	}
	_, err = m.db.Collection(stagesColl).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"active": active}},
	)
	if err != nil {
		return fmt.Errorf("failed to update stage %s: %w", id, err)
	}
	return nil
}

func (m *Mongo) FindStageByID(ctx context.Context, id string) (types.Stage, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Stage{}, fmt.Errorf("invalid stage id %q: %w", id, err)
	}

	var doc stageDoc
	err = m.db.Collection(stagesColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return types.Stage{}, ErrNotFound
	}
	if err != nil {
		return types.Stage{}, fmt.Errorf("failed to query stage %s: %w", id, err)
	}

	doc.Stage.ID = doc.ID.Hex()
	return doc.Stage, nil
}

func (m *Mongo) FindStageHistory(ctx context.Context, name, uri string) ([]types.Stage, error) {
	return m.findStages(ctx, bson.M{"name": name, "uri": uri})
}

func (m *Mongo) DistinctStageNames(ctx context.Context) ([]string, error) {
	values, err := m.db.Collection(stagesColl).Distinct(ctx, "name", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct stage names: %w", err)
	}

	names := filterStageNames(values, m.logger)
	m.logger.Debug("Retrieved distinct stage names", zap.Int("count", len(names)))
	return names, nil
}

// filterStageNames keeps string values and drops anything else. Legacy
// documents are known to carry non-string names; a bad value must not fail
// the whole query.
func filterStageNames(values []interface{}, logger *logging.Logger) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			logger.Warn("Non-string value in distinct stage names",
				zap.Any("value", v))
			continue
		}
		names = append(names, s)
	}
	return names
}

// findStages runs a stage query and converts object ids to hex strings.
func (m *Mongo) findStages(ctx context.Context, filter bson.M) ([]types.Stage, error) {
	cursor, err := m.db.Collection(stagesColl).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages: %w", err)
	}
	defer cursor.Close(ctx)

	var stages []types.Stage
	for cursor.Next(ctx) {
		var doc stageDoc
		if err := cursor.Decode(&doc); err != nil {
			m.logger.Warn("Skipping undecodable stage document", zap.Error(err))
			continue
		}
		doc.Stage.ID = doc.ID.Hex()
		stages = append(stages, doc.Stage)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("stage cursor failed: %w", err)
	}
	return stages, nil
}
