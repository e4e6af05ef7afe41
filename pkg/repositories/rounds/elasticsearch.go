package rounds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/entities"
)

// maxLeaderboardPlayers bounds the terms aggregation behind GetAllPlayerStatistics
const maxLeaderboardPlayers = 1000

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	// Transport replaces the HTTP transport, mainly for tests
	Transport http.RoundTripper
	// Refresh makes each saved round searchable before SaveRound returns
	Refresh bool
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "placebo",
	}
}

// ElasticsearchRepository implements Repository on a single rounds index
type ElasticsearchRepository struct {
	client *elasticsearch.Client
	index  string
	config ElasticsearchConfig
	log    *logging.Logger
}

const roundsMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"user_id": { "type": "keyword" },
			"game_id": { "type": "keyword" },
			"points_used": { "type": "long" },
			"result": { "type": "keyword" },
			"points_change": { "type": "long" },
			"balance_after": { "type": "long" },
			"player_cards": { "type": "keyword" },
			"dealer_cards": { "type": "keyword" },
			"player_score": { "type": "integer" },
			"dealer_score": { "type": "integer" },
			"completed_at": { "type": "date" }
		}
	}
}`

// NewElasticsearchRepository connects and creates the rounds index when missing
func NewElasticsearchRepository(ctx context.Context, config *ElasticsearchConfig) (*ElasticsearchRepository, error) {
	if config == nil {
		config = DefaultElasticsearchConfig()
	}
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
		Transport: config.Transport,
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := config.IndexPrefix
	if prefix == "" {
		prefix = "placebo"
	}

	repo := &ElasticsearchRepository{
		client: client,
		index:  prefix + "_rounds",
		config: *config,
		log:    logging.Default.With("elasticsearch"),
	}

	if err := repo.initIndex(ctx); err != nil {
		return nil, fmt.Errorf("error initializing index: %w", err)
	}
	return repo, nil
}

func (r *ElasticsearchRepository) initIndex(ctx context.Context) error {
	res, err := r.client.Indices.Exists([]string{r.index}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if rounds index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: r.index,
		Body:  bytes.NewReader([]byte(roundsMapping)),
	}
	res, err = req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating rounds index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating rounds index: %s", res.String())
	}
	r.log.Info("Created index %s", r.index)
	return nil
}

// Index returns the name of the rounds index
func (r *ElasticsearchRepository) Index() string {
	return r.index
}

// SaveRound indexes the record under its id
func (r *ElasticsearchRepository) SaveRound(ctx context.Context, record *entities.RoundRecord) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshaling round: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(record.ID),
	}
	if r.config.Refresh {
		opts = append(opts, r.client.Index.WithRefresh("true"))
	}

	res, err := r.client.Index(r.index, bytes.NewReader(jsonData), opts...)
	if err != nil {
		return fmt.Errorf("error indexing round: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing round: %s", res.String())
	}
	return nil
}

// GetPlayerRounds returns the player's most recent rounds
func (r *ElasticsearchRepository) GetPlayerRounds(ctx context.Context, playerID string, limit int) ([]*entities.RoundRecord, error) {
	if limit <= 0 {
		limit = entities.MaxHistoryEntries
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"user_id": playerID},
		},
		"sort": []interface{}{
			map[string]interface{}{"completed_at": map[string]string{"order": "desc"}},
		},
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source entities.RoundRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := r.search(ctx, query, limit, &result); err != nil {
		return nil, fmt.Errorf("error searching for player rounds: %w", err)
	}

	records := make([]*entities.RoundRecord, 0, len(result.Hits.Hits))
	for i := range result.Hits.Hits {
		records = append(records, &result.Hits.Hits[i].Source)
	}
	return records, nil
}

// statsAggregations are computed per player by both statistics queries
func statsAggregations() map[string]interface{} {
	return map[string]interface{}{
		"results": map[string]interface{}{
			"terms": map[string]interface{}{"field": "result"},
		},
		"won": map[string]interface{}{
			"filter": map[string]interface{}{"range": map[string]interface{}{"points_change": map[string]int{"gt": 0}}},
			"aggs":   map[string]interface{}{"total": map[string]interface{}{"sum": map[string]string{"field": "points_change"}}},
		},
		"lost": map[string]interface{}{
			"filter": map[string]interface{}{"range": map[string]interface{}{"points_change": map[string]int{"lt": 0}}},
			"aggs":   map[string]interface{}{"total": map[string]interface{}{"sum": map[string]string{"field": "points_change"}}},
		},
		"last_played": map[string]interface{}{
			"max": map[string]string{"field": "completed_at"},
		},
	}
}

type statsBucket struct {
	DocCount int `json:"doc_count"`
	Results  struct {
		Buckets []struct {
			Key      string `json:"key"`
			DocCount int    `json:"doc_count"`
		} `json:"buckets"`
	} `json:"results"`
	Won struct {
		Total struct {
			Value float64 `json:"value"`
		} `json:"total"`
	} `json:"won"`
	Lost struct {
		Total struct {
			Value float64 `json:"value"`
		} `json:"total"`
	} `json:"lost"`
	LastPlayed struct {
		Value *float64 `json:"value"`
	} `json:"last_played"`
}

func (b *statsBucket) statistics(playerID string) *entities.PlayerStatistics {
	stats := &entities.PlayerStatistics{
		PlayerID:        playerID,
		GamesPlayed:     b.DocCount,
		TotalPointsWon:  int64(b.Won.Total.Value),
		TotalPointsLost: -int64(b.Lost.Total.Value),
	}
	for _, bucket := range b.Results.Buckets {
		switch entities.Result(bucket.Key) {
		case entities.ResultWin:
			stats.Wins = bucket.DocCount
		case entities.ResultLoss:
			stats.Losses = bucket.DocCount
		case entities.ResultPush:
			stats.Pushes = bucket.DocCount
		}
	}
	if b.LastPlayed.Value != nil {
		stats.LastPlayed = time.UnixMilli(int64(*b.LastPlayed.Value)).UTC()
	}
	return stats
}

// GetPlayerStatistics aggregates the player's rounds in Elasticsearch
func (r *ElasticsearchRepository) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"user_id": playerID},
		},
		"aggs": statsAggregations(),
	}

	var result struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations statsBucket `json:"aggregations"`
	}
	if err := r.search(ctx, query, 0, &result); err != nil {
		return nil, fmt.Errorf("error searching for player statistics: %w", err)
	}

	result.Aggregations.DocCount = result.Hits.Total.Value
	return result.Aggregations.statistics(playerID), nil
}

// GetAllPlayerStatistics aggregates per player with a terms aggregation
func (r *ElasticsearchRepository) GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error) {
	query := map[string]interface{}{
		"aggs": map[string]interface{}{
			"players": map[string]interface{}{
				"terms": map[string]interface{}{"field": "user_id", "size": maxLeaderboardPlayers},
				"aggs":  statsAggregations(),
			},
		},
	}

	var result struct {
		Aggregations struct {
			Players struct {
				Buckets []struct {
					Key string `json:"key"`
					statsBucket
				} `json:"buckets"`
			} `json:"players"`
		} `json:"aggregations"`
	}
	if err := r.search(ctx, query, 0, &result); err != nil {
		return nil, fmt.Errorf("error searching for all player statistics: %w", err)
	}

	stats := make([]*entities.PlayerStatistics, 0, len(result.Aggregations.Players.Buckets))
	for i := range result.Aggregations.Players.Buckets {
		bucket := &result.Aggregations.Players.Buckets[i]
		stats = append(stats, bucket.statistics(bucket.Key))
	}
	return stats, nil
}

// PruneBefore deletes rounds completed before cutoff with a delete-by-query
func (r *ElasticsearchRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"completed_at": map[string]string{"lt": cutoff.UTC().Format(time.RFC3339)},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return 0, err
	}

	res, err := r.client.DeleteByQuery(
		[]string{r.index},
		bytes.NewReader(body),
		r.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("error pruning rounds: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("error pruning rounds: %s", res.String())
	}

	var result struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("error parsing prune response: %w", err)
	}
	if result.Deleted > 0 {
		r.log.Info("Pruned %d rounds older than %s", result.Deleted, cutoff.Format(time.RFC3339))
	}
	return result.Deleted, nil
}

// Close is a no-op; the client keeps no open resources
func (r *ElasticsearchRepository) Close() error {
	return nil
}

func (r *ElasticsearchRepository) search(ctx context.Context, query map[string]interface{}, size int, out interface{}) error {
	body, err := json.Marshal(query)
	if err != nil {
		return err
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
		r.client.Search.WithSize(size),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s", res.Status(), raw)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
