package api

import "github.com/JiwonJeong414/TechTive-Backend/internal/model"

// pageResponse is the envelope for all paginated history endpoints.
type pageResponse struct {
	Items   interface{} `json:"items"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
}

func newPageResponse(items interface{}, total int, p model.Page) pageResponse {
	return pageResponse{Items: items, Total: total, Page: p.Page, PerPage: p.PerPage}
}
