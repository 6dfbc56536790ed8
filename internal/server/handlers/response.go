package handlers

import "time"

const (
	CATALOG_PRODUCTS_CACHE_KEY   = "catalog:products"
	CATALOG_CATEGORIES_CACHE_KEY = "catalog:categories"
	PROMOTIONS_CACHE_KEY         = "promotions:all"
	LAYOUT_CACHE_KEY             = "layout:zones"

	CACHE_TTL_SHORT  = 5 * time.Minute
	CACHE_TTL_MEDIUM = 30 * time.Minute
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
