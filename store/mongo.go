package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"infrasense-be/apperrors"
	"infrasense-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// IssuesCollection is the collection holding every issue document.
const IssuesCollection = "issues"

const opTimeout = 10 * time.Second

// issueDocument is the stored shape of an issue.
type issueDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	models.Issue `bson:",inline"`
}

func (d issueDocument) issue() models.Issue {
	issue := d.Issue
	issue.ID = d.ID.Hex()
	return issue
}

// MongoStore stores issues in a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore returns a store over the issues collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(IssuesCollection)}
}

// EnsureIndexes creates the indexes backing the admin filters and the
// default createdAt sort.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "severity", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		return classify("create indexes", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, issue models.Issue) (models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	issue.Note = ""
	doc := issueDocument{ID: primitive.NewObjectID(), Issue: issue}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return models.Issue{}, classify("insert issue", err)
	}
	return doc.issue(), nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (models.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Issue{}, apperrors.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc issueDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Issue{}, classify("find issue", err)
	}
	return doc.issue(), nil
}

func (s *MongoStore) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, buildFilter(filter), options.Find().SetSort(buildSort(filter)))
	if err != nil {
		return nil, classify("find issues", err)
	}
	defer cursor.Close(ctx)

	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify("decode issues", err)
	}

	issues := make([]models.Issue, 0, len(docs))
	for _, d := range docs {
		issues = append(issues, d.issue())
	}
	return issues, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id string, change models.StatusChange) (models.Issue, error) {
	if !change.Status.Valid() {
		return models.Issue{}, apperrors.ErrInvalidStatus
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Issue{}, apperrors.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": oid}
	if len(change.From) > 0 {
		filter["status"] = bson.M{"$in": change.From}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc issueDocument
	err = s.collection.FindOneAndUpdate(ctx, filter, statusUpdate(change), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) && len(change.From) > 0 {
		// Tell a missing issue apart from one in a disallowed state.
		n, cerr := s.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if cerr != nil {
			return models.Issue{}, classify("check issue", cerr)
		}
		if n > 0 {
			return models.Issue{}, apperrors.ErrInvalidTransition
		}
	}
	if err != nil {
		return models.Issue{}, classify("update issue status", err)
	}
	return doc.issue(), nil
}

func (s *MongoStore) Persistent() bool { return true }

// buildFilter AND-combines the set exact-match predicates.
func buildFilter(f models.IssueFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Severity != "" {
		filter["severity"] = f.Severity
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func buildSort(f models.IssueFilter) bson.D {
	f = f.Normalize()
	dir := -1
	if f.Order == models.Asc {
		dir = 1
	}
	sort := bson.D{{Key: f.SortBy, Value: dir}}
	if f.SortBy != models.SortCreatedAt {
		sort = append(sort, bson.E{Key: models.SortCreatedAt, Value: dir})
	}
	return append(sort, bson.E{Key: "_id", Value: dir})
}

// statusUpdate is a single-stage pipeline so the whole read-modify-write
// happens server side. updatedAt is bumped at least 1ms past its stored
// value, keeping it strictly increasing under clock skew. Caller-supplied
// strings are wrapped in $literal so a leading "$" is never read as a
// field path.
func statusUpdate(change models.StatusChange) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: literal(string(change.Status))},
			{Key: "updatedBy", Value: literal(change.UpdatedBy)},
			{Key: "updatedAt", Value: bson.D{{Key: "$max", Value: bson.A{
				change.At,
				bson.D{{Key: "$add", Value: bson.A{"$updatedAt", 1}}},
			}}}},
		}}},
	}
}

func literal(v string) bson.D {
	return bson.D{{Key: "$literal", Value: v}}
}

// classify maps driver errors onto the apperrors taxonomy.
func classify(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}
	var selErr topology.ServerSelectionError
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.As(err, &selErr) {
		return apperrors.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
