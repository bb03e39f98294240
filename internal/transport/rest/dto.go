package rest

import (
	"encoding/json"

	domdoc "github.com/kailas-cloud/colbertdb-go/internal/domain/document"
	"github.com/kailas-cloud/colbertdb-go/internal/domain/search/result"
)

// documentDTO is a document on the wire.
type documentDTO struct {
	ID       string            `json:"document_id,omitempty"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score,omitempty"`
}

type collectionOptionsDTO struct {
	ForceCreate bool `json:"force_create"`
}

type createCollectionRequest struct {
	Name      string               `json:"name"`
	Documents []documentDTO        `json:"documents"`
	Options   collectionOptionsDTO `json:"options"`
}

type addDocumentsRequest struct {
	Documents []documentDTO `json:"documents"`
}

type deleteDocumentsRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResponse struct {
	Documents []documentDTO `json:"documents"`
}

type collectionResponse struct {
	Name   string `json:"name"`
	Exists *bool  `json:"exists,omitempty"`
}

type listCollectionsResponse struct {
	Collections []string `json:"collections"`
}

type connectResponse struct {
	AccessToken string `json:"access_token"`
}

// errorResponse covers both {"error", "code"} and FastAPI-style {"detail"} payloads.
type errorResponse struct {
	Error  string          `json:"error"`
	Code   string          `json:"code"`
	Detail json.RawMessage `json:"detail"`
}

func toDocumentDTOs(docs []domdoc.Document) []documentDTO {
	out := make([]documentDTO, len(docs))
	for i := range docs {
		d := &docs[i]
		md := d.Metadata()
		if md == nil {
			md = map[string]string{}
		}
		out[i] = documentDTO{Content: d.Content(), Metadata: md}
	}
	return out
}

func fromDocumentDTOs(dtos []documentDTO) []result.Result {
	out := make([]result.Result, len(dtos))
	for i, d := range dtos {
		out[i] = result.New(d.ID, d.Score, d.Content, d.Metadata)
	}
	return out
}
