package chi

import "github.com/kailas-cloud/colbertdb-go/internal/engine"

type documentRequest struct {
	Content  string            `json:"content" validate:"not_blank"`
	Metadata map[string]string `json:"metadata"`
}

type collectionOptions struct {
	ForceCreate bool `json:"force_create"`
}

type createCollectionRequest struct {
	Name      string            `json:"name" validate:"required,max=256,excludesall=/?#"`
	Documents []documentRequest `json:"documents" validate:"required,min=1,dive"`
	Options   collectionOptions `json:"options"`
}

type addDocumentsRequest struct {
	Documents []documentRequest `json:"documents" validate:"required,min=1,dive"`
}

type deleteDocumentsRequest struct {
	DocumentIDs []string `json:"document_ids" validate:"required,min=1,dive,not_blank"`
}

type searchRequest struct {
	Query string `json:"query" validate:"not_blank,max=4096"`
	K     int    `json:"k" validate:"gt=0"`
}

type documentResponse struct {
	ID       string            `json:"document_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
}

type searchResponse struct {
	Documents []documentResponse `json:"documents"`
}

type collectionResponse struct {
	Name        string   `json:"name"`
	Exists      *bool    `json:"exists,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type listCollectionsResponse struct {
	Collections []string `json:"collections"`
}

type connectResponse struct {
	AccessToken string `json:"access_token"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func documentsFromRequest(docs []documentRequest) []engine.Document {
	out := make([]engine.Document, len(docs))
	for i, d := range docs {
		out[i] = engine.Document{Content: d.Content, Metadata: d.Metadata}
	}
	return out
}
