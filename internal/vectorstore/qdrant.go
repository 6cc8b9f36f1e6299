package vectorstore

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/vendormatch/recommender/internal/embedder"
)

const (
	// payloadDocID is the payload key carrying the persisted vendor id.
	// Qdrant point ids must be UUIDs, so the original id rides in the payload.
	payloadDocID = "doc_id"

	// payloadText is the payload key carrying the embedded text.
	payloadText = "text"

	// scrollPageSize is the page size used when listing persisted ids.
	scrollPageSize = 256
)

// pointIDNamespace seeds deterministic UUIDs so re-upserting the same vendor
// id overwrites the existing point instead of duplicating it.
var pointIDNamespace = uuid.MustParse("5b1f0cc2-6bfb-4f3e-9a45-66cf7f7a2a1e")

// QdrantStore implements Store using Qdrant with Euclidean distance, so the
// score returned per point is a true distance (lower = closer) and the
// pipeline's 1/(1+d) normalization applies directly.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	embedder   embedder.Embedder
}

// NewQdrantStore creates a new Qdrant vendor store client.
// url should be in format "host:port" (e.g., "localhost:6334").
func NewQdrantStore(ctx context.Context, url, collection string, embed embedder.Embedder) (*QdrantStore, error) {
	host, portStr, err := net.SplitHostPort(url)
	if err != nil {
		// If no port specified, assume default
		host = url
		portStr = "6334"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant url: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create qdrant client: %v", ErrUnavailable, err)
	}

	return &QdrantStore{client: client, collection: collection, embedder: embed}, nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the collection if it does not exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: failed to check collection existence: %v", ErrUnavailable, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// DeleteCollection drops the collection and all points in it.
func (s *QdrantStore) DeleteCollection(ctx context.Context) error {
	err := s.client.DeleteCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: failed to delete collection: %v", ErrUnavailable, err)
	}

	return nil
}

// Upsert inserts or updates pre-embedded documents.
func (s *QdrantStore) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		payload := map[string]*qdrant.Value{
			payloadDocID: qdrant.NewValueString(doc.ID),
			payloadText:  qdrant.NewValueString(doc.Text),
		}
		for k, v := range doc.Metadata {
			if v == "" {
				continue
			}
			payload[k] = qdrant.NewValueString(v)
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(s.pointID(doc.ID)),
			Payload: payload,
			Vectors: qdrant.NewVectors(doc.Vector...),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Query embeds the query text and returns up to k nearest documents.
func (s *QdrantStore) Query(ctx context.Context, text string, k int) ([]Match, error) {
	vector, err := s.embedder.Embed(ctx, text, embedder.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	response, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query failed: %v", ErrUnavailable, err)
	}

	matches := make([]Match, 0, len(response))
	for _, point := range response {
		match := Match{
			// With Euclidean distance the qdrant score is the distance itself.
			Distance: float64(point.Score),
			Metadata: make(map[string]string),
		}

		for key, value := range point.Payload {
			switch key {
			case payloadDocID:
				match.DocID = value.GetStringValue()
			case payloadText:
				// The embedded text is not a display field.
			default:
				match.Metadata[key] = value.GetStringValue()
			}
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// ListIDs returns the set of persisted document ids by scrolling the collection.
func (s *QdrantStore) ListIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	var offset *qdrant.PointId
	for {
		resp, err := s.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude(payloadDocID),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scroll failed: %v", ErrUnavailable, err)
		}

		for _, point := range resp.GetResult() {
			if docID, ok := point.GetPayload()[payloadDocID]; ok {
				ids[docID.GetStringValue()] = struct{}{}
			}
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	return ids, nil
}

// pointID derives a deterministic UUID point id from a vendor id.
func (s *QdrantStore) pointID(docID string) string {
	return uuid.NewSHA1(pointIDNamespace, []byte(docID)).String()
}

// Ensure QdrantStore implements Store
var _ Store = (*QdrantStore)(nil)
