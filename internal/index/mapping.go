package index

import "fmt"

// Mapping trả về mapping Elasticsearch của index voucher. Các dense
// vector không đánh index HNSW vì scoring dùng script exact trên tập
// ứng viên đã lọc.
func Mapping(dims int) string {
	return fmt.Sprintf(`{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "vietnamese_text": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "voucher_id": {"type": "keyword"},
      "voucher_name": {
        "type": "text",
        "analyzer": "vietnamese_text",
        "fields": {"keyword": {"type": "keyword"}}
      },
      "content": {"type": "text", "analyzer": "vietnamese_text"},
      "keywords": {"type": "keyword"},
      "location": {
        "properties": {
          "name": {"type": "keyword"},
          "district": {"type": "keyword"},
          "region": {"type": "keyword"}
        }
      },
      "service_info": {
        "properties": {
          "category": {"type": "keyword"},
          "subcategory": {"type": "keyword"},
          "tags": {"type": "keyword"},
          "has_kids_area": {"type": "boolean"},
          "restaurant_type": {"type": "keyword"}
        }
      },
      "price_info": {
        "properties": {
          "price": {"type": "long"},
          "price_range": {"type": "keyword"},
          "currency": {"type": "keyword"}
        }
      },
      "target_audience": {"type": "keyword"},
      "data_quality_score": {"type": "float"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"},
      "embeddings": {
        "properties": {
          "content": {"type": "dense_vector", "dims": %d, "index": false},
          "location": {"type": "dense_vector", "dims": %d, "index": false},
          "service": {"type": "dense_vector", "dims": %d, "index": false},
          "target": {"type": "dense_vector", "dims": %d, "index": false},
          "combined": {"type": "dense_vector", "dims": %d, "index": false}
        }
      }
    }
  }
}`, dims, dims, dims, dims, dims)
}
