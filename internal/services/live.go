package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"casr-tracker/internal/logging"
	"casr-tracker/internal/search"
)

// LiveCollection is the part of *mongo.Collection the live indexer needs.
type LiveCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Watch(ctx context.Context, pipeline interface{}, opts ...*options.ChangeStreamOptions) (*mongo.ChangeStream, error)
}

// LiveIndexer keeps a search.Index in step with the database: one goroutine
// per source loads the collection, then follows its change stream. Where
// change streams are unavailable (standalone servers) it re-reads the
// collection every poll interval.
type LiveIndexer struct {
	index      *search.Index
	sources    []search.Source
	collection func(name string) LiveCollection
	poll       time.Duration
}

func NewLiveIndexer(db *mongo.Database, index *search.Index, poll time.Duration) *LiveIndexer {
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &LiveIndexer{
		index:      index,
		sources:    search.Sources,
		collection: func(name string) LiveCollection { return db.Collection(name) },
		poll:       poll,
	}
}

// Run blocks until ctx is cancelled.
func (l *LiveIndexer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, src := range l.sources {
		wg.Add(1)
		go func(src search.Source) {
			defer wg.Done()
			l.follow(ctx, src)
		}(src)
	}
	wg.Wait()
	logging.Logger.Info("Event ID: LIVE_INDEX_STOPPED, Description: all search subscriptions closed")
}

func (l *LiveIndexer) follow(ctx context.Context, src search.Source) {
	coll := l.collection(src.Collection)
	for {
		if err := l.load(ctx, coll, src); err != nil && ctx.Err() == nil {
			logging.Logger.Warnf("Event ID: LIVE_INDEX_LOAD_FAILED, Description: %s: %v", src.Key, err)
		}

		opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
		stream, err := coll.Watch(ctx, mongo.Pipeline{}, opts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Logger.Infof("Event ID: LIVE_INDEX_POLLING, Description: %s: change stream unavailable (%v), polling every %s", src.Key, err, l.poll)
			l.pollLoop(ctx, coll, src)
			return
		}

		err = l.consume(ctx, stream, src)
		stream.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		logging.Logger.Warnf("Event ID: LIVE_INDEX_STREAM_CLOSED, Description: %s: %v, resubscribing", src.Key, err)
		if !sleep(ctx, l.poll) {
			return
		}
	}
}

func (l *LiveIndexer) pollLoop(ctx context.Context, coll LiveCollection, src search.Source) {
	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.load(ctx, coll, src); err != nil && ctx.Err() == nil {
				logging.Logger.Warnf("Event ID: LIVE_INDEX_LOAD_FAILED, Description: %s: %v", src.Key, err)
			}
		}
	}
}

// load replaces the source's whole slot with the current collection.
func (l *LiveIndexer) load(ctx context.Context, coll LiveCollection, src search.Source) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("find %s: %w", src.Collection, err)
	}
	defer cursor.Close(ctx)

	byDoc := map[string][]search.Item{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("decode %s: %w", src.Collection, err)
		}
		m := map[string]any(doc)
		if items := src.Items(m); len(items) > 0 {
			byDoc[search.DocID(m)] = items
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("read %s: %w", src.Collection, err)
	}
	l.index.Replace(src.Key, byDoc)
	logging.Logger.Debugf("Event ID: LIVE_INDEX_LOADED, Description: %s: %d documents", src.Key, len(byDoc))
	return nil
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   bson.M `bson:"documentKey"`
	FullDocument  bson.M `bson:"fullDocument"`
}

func (l *LiveIndexer) consume(ctx context.Context, stream *mongo.ChangeStream, src search.Source) error {
	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			return fmt.Errorf("decode change event: %w", err)
		}
		l.apply(src, ev)
	}
	return stream.Err()
}

func (l *LiveIndexer) apply(src search.Source, ev changeEvent) {
	id := search.DocID(map[string]any(ev.DocumentKey))
	if id == "" {
		return
	}
	switch ev.OperationType {
	case "delete":
		l.index.Delete(src.Key, id)
	case "insert", "update", "replace":
		if ev.FullDocument == nil {
			// Deleted again before the lookup ran.
			l.index.Delete(src.Key, id)
			return
		}
		l.index.Upsert(src.Key, id, src.Items(map[string]any(ev.FullDocument)))
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
