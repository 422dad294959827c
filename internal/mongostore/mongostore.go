// Package mongostore reads meal feedback from the MongoDB collections the
// feedback portal writes.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/blackwell-systems/messwatch/internal/feedback"
)

// DefaultDatabase is used when neither the options nor the URI name one.
const DefaultDatabase = "hostel-food-analysis"

const (
	feedbackCollection = "feedbacks"
	usersCollection    = "users"
)

// Options configures a connection.
type Options struct {
	URI      string
	Database string

	// Timeout bounds connecting, pinging and disconnecting.
	Timeout time.Duration

	// Location defines the calendar day of stored dates; UTC when nil.
	Location *time.Location

	Log logrus.FieldLogger
}

// Store is a feedback.Source backed by MongoDB.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	loc     *time.Location
	timeout time.Duration
	log     logrus.FieldLogger
}

var _ feedback.Source = (*Store)(nil)

// databaseName picks the explicit name, then the URI path, then the
// default.
func databaseName(opts Options) (string, error) {
	if opts.Database != "" {
		return opts.Database, nil
	}
	cs, err := connstring.ParseAndValidate(opts.URI)
	if err != nil {
		return "", fmt.Errorf("parsing mongodb uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return DefaultDatabase, nil
}

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*Store, error) {
	name, err := databaseName(opts)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.Timeout).
		SetServerSelectionTimeout(opts.Timeout)

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	opts.Log.WithField("database", name).Debug("connected to mongodb")
	return &Store{
		client:  client,
		db:      client.Database(name),
		loc:     opts.Location,
		timeout: opts.Timeout,
		log:     opts.Log,
	}, nil
}

// FetchFeedback returns the documents dated in [start, end), where the
// bounds are calendar days in the store's location.
func (s *Store) FetchFeedback(ctx context.Context, start, end time.Time) ([]feedback.Record, error) {
	filter := bson.M{"date": bson.M{
		"$gte": feedback.InLocation(start, s.loc),
		"$lt":  feedback.InLocation(end, s.loc),
	}}
	findOpts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "user", Value: 1}})

	cur, err := s.db.Collection(feedbackCollection).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("querying feedbacks: %w", err)
	}
	defer cur.Close(ctx)

	var records []feedback.Record
	for cur.Next(ctx) {
		var doc feedbackDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding feedback: %w", err)
		}
		rec, err := toRecord(doc, s.loc)
		if err != nil {
			return nil, fmt.Errorf("decoding feedback: %w", err)
		}
		records = append(records, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedbacks: %w", err)
	}
	return records, nil
}

// CountRegisteredUsers counts documents in users, leaving out admins when
// asked.
func (s *Store) CountRegisteredUsers(ctx context.Context, excludingAdmins bool) (int, error) {
	filter := bson.M{}
	if excludingAdmins {
		filter = bson.M{"isAdmin": false}
	}
	n, err := s.db.Collection(usersCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return int(n), nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
