package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oneu-vn/voucher-search/internal/index"
	"github.com/oneu-vn/voucher-search/internal/models"
)

// Tên các clause trong bool query, dùng để tách score lexical và dense
// từ matched_queries của response.
const (
	clauseLexical = "lexical"
	clauseDense   = "dense"
)

// Trọng số boost của hai nhánh trong bool query
const (
	lexicalBoost = 3.0
	denseBoost   = 1.0
)

// Hit là một document trả về từ index kèm score theo từng nhánh
type Hit struct {
	Voucher models.Voucher
	// Score là _score tổng của Elasticsearch
	Score float64
	// LexicalScore là score BM25 thô của nhánh lexical (0 nếu không khớp)
	LexicalScore float64
	// DenseRaw là cosineSimilarity + 1.0 của nhánh dense, trong [0,2]
	DenseRaw float64
}

// ElasticAdapter đóng gói các thao tác với Elasticsearch
type ElasticAdapter struct {
	es    *elasticsearch.Client
	index string
}

// NewElasticAdapter tạo adapter cho một index voucher
func NewElasticAdapter(es *elasticsearch.Client, indexName string) *ElasticAdapter {
	return &ElasticAdapter{es: es, index: indexName}
}

// NewElasticClient tạo client Elasticsearch từ danh sách địa chỉ
func NewElasticClient(addresses []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
}

// Ping kiểm tra cluster có phản hồi không
func (a *ElasticAdapter) Ping(ctx context.Context) error {
	res, err := a.es.Info(a.es.Info.WithContext(ctx))
	if err != nil {
		return models.ErrIndexUnavailable.WithDetail("%v", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return models.ErrIndexUnavailable.WithDetail("cluster trả về %s", res.Status())
	}
	return nil
}

// EnsureIndex tạo index với mapping chuẩn nếu chưa tồn tại
func (a *ElasticAdapter) EnsureIndex(ctx context.Context, dims int) error {
	res, err := a.es.Indices.Exists([]string{a.index}, a.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return models.ErrIndexUnavailable.WithDetail("%v", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = a.es.Indices.Create(a.index,
		a.es.Indices.Create.WithContext(ctx),
		a.es.Indices.Create.WithBody(bytes.NewReader([]byte(index.Mapping(dims)))),
	)
	if err != nil {
		return models.ErrIndexUnavailable.WithDetail("%v", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return models.ErrIndexUnavailable.WithDetail("tạo index thất bại: %s", res.Status())
	}
	return nil
}

// esDocument là dạng lưu trong index, embeddings tách khỏi Voucher để
// chỉ ghi các field vector được index.
type esDocument struct {
	models.Voucher
	Embeddings map[string][]float32 `json:"embeddings,omitempty"`
}

// UpsertVoucher ghi document theo voucher_id, thay thế toàn bộ nếu đã có
func (a *ElasticAdapter) UpsertVoucher(ctx context.Context, v *models.Voucher) error {
	doc := esDocument{Voucher: *v, Embeddings: index.IndexedEmbeddings(v)}
	doc.Voucher.Embeddings = nil

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize voucher %s: %w", v.ID, err)
	}

	res, err := a.es.Index(a.index,
		bytes.NewReader(body),
		a.es.Index.WithContext(ctx),
		a.es.Index.WithDocumentID(v.ID),
		a.es.Index.WithRefresh("false"),
	)
	if err != nil {
		return a.wrapErr(ctx, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return models.ErrIndexUnavailable.WithDetail("index voucher %s: %s", v.ID, res.Status())
	}
	return nil
}

// DeleteVoucher xóa document theo id. Xóa id không tồn tại không lỗi.
func (a *ElasticAdapter) DeleteVoucher(ctx context.Context, id string) error {
	res, err := a.es.Delete(a.index, id, a.es.Delete.WithContext(ctx))
	if err != nil {
		return a.wrapErr(ctx, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return models.ErrIndexUnavailable.WithDetail("xóa voucher %s: %s", id, res.Status())
	}
	return nil
}

// GetVoucher đọc document theo id, không kèm embeddings
func (a *ElasticAdapter) GetVoucher(ctx context.Context, id string) (*models.Voucher, error) {
	res, err := a.es.Get(a.index, id,
		a.es.Get.WithContext(ctx),
		a.es.Get.WithSourceExcludes("embeddings"),
	)
	if err != nil {
		return nil, a.wrapErr(ctx, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, models.ErrVoucherNotFound.WithDetail("id %s", id)
	}
	if res.IsError() {
		return nil, models.ErrIndexUnavailable.WithDetail("đọc voucher %s: %s", id, res.Status())
	}

	var doc struct {
		Source models.Voucher `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, models.ErrIndexUnavailable.WithDetail("parse response: %v", err)
	}
	return &doc.Source, nil
}

// SearchParams gom tham số chung của hai kiểu truy hồi
type SearchParams struct {
	QueryText string
	Vector    []float32
	// Field là field dense dùng để so khớp (content, location, service,
	// target, combined)
	Field   string
	Size    int
	Filters map[string]string
}

// HybridSearch chạy bool query hai nhánh: multi_match trên
// voucher_name^3 và content, cộng script_score cosine trên field dense
// đã chọn. Score từng nhánh đọc từ matched_queries.
func (a *ElasticAdapter) HybridSearch(ctx context.Context, p SearchParams) ([]Hit, error) {
	body := map[string]interface{}{
		"size":    p.Size,
		"_source": map[string]interface{}{"excludes": []string{"embeddings"}},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":     p.QueryText,
							"fields":    []string{"voucher_name^3", "content"},
							"type":      "best_fields",
							"fuzziness": "AUTO",
							"boost":     lexicalBoost,
							"_name":     clauseLexical,
						},
					},
					a.denseClause(p),
				},
				"minimum_should_match": 1,
				"filter":               filterClauses(p.Filters),
			},
		},
	}
	return a.executeSearch(ctx, body)
}

// VectorSearch chạy script_score cosine thuần trên field dense đã chọn
func (a *ElasticAdapter) VectorSearch(ctx context.Context, p SearchParams) ([]Hit, error) {
	body := map[string]interface{}{
		"size":    p.Size,
		"_source": map[string]interface{}{"excludes": []string{"embeddings"}},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               []interface{}{a.denseClause(p)},
				"minimum_should_match": 1,
				"filter":               filterClauses(p.Filters),
			},
		},
	}
	return a.executeSearch(ctx, body)
}

// denseClause dựng nhánh script_score. Cosine cộng 1.0 để score luôn
// không âm; chỉ áp lên document có field vector tương ứng.
func (a *ElasticAdapter) denseClause(p SearchParams) map[string]interface{} {
	field := "embeddings." + p.Field
	return map[string]interface{}{
		"script_score": map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"filter": []interface{}{
						map[string]interface{}{"exists": map[string]interface{}{"field": field}},
					},
				},
			},
			"script": map[string]interface{}{
				"source": fmt.Sprintf("cosineSimilarity(params.query_vector, '%s') + 1.0", field),
				"params": map[string]interface{}{"query_vector": p.Vector},
			},
			"boost": denseBoost,
			"_name": clauseDense,
		},
	}
}

func filterClauses(filters map[string]string) []interface{} {
	clauses := make([]interface{}, 0, len(filters))
	for field, value := range filters {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{field: value},
		})
	}
	return clauses
}

// executeSearch gửi query và tách score từng nhánh từ matched_queries.
// Luôn bật include_named_queries_score để matched_queries là map
// tên -> score thay vì mảng tên.
func (a *ElasticAdapter) executeSearch(ctx context.Context, body map[string]interface{}) ([]Hit, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("serialize query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(a.index),
		a.es.Search.WithBody(bytes.NewReader(payload)),
		a.es.Search.WithIncludeNamedQueriesScore(true),
	}

	res, err := a.es.Search(opts...)
	if err != nil {
		return nil, a.wrapErr(ctx, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, models.ErrIndexUnavailable.WithDetail("search trả về %s: %s", res.Status(), string(msg))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID             string             `json:"_id"`
				Score          float64            `json:"_score"`
				Source         models.Voucher     `json:"_source"`
				MatchedQueries map[string]float64 `json:"matched_queries"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, models.ErrIndexUnavailable.WithDetail("parse response: %v", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hit := Hit{Voucher: h.Source, Score: h.Score}
		hit.Voucher.ID = h.ID
		// matched_queries trả score đã nhân boost, chia lại để có score
		// thô của từng nhánh
		if s, ok := h.MatchedQueries[clauseLexical]; ok {
			hit.LexicalScore = s / lexicalBoost
		}
		if s, ok := h.MatchedQueries[clauseDense]; ok {
			hit.DenseRaw = s / denseBoost
		}
		if len(h.MatchedQueries) == 0 {
			hit.DenseRaw = h.Score
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// wrapErr phân loại lỗi transport thành lỗi domain
func (a *ElasticAdapter) wrapErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.ErrDeadlineExceeded.WithDetail("index không phản hồi kịp")
	}
	return models.ErrIndexUnavailable.WithDetail("%v", err)
}
