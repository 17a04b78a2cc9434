package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestGetOrdersClampsPagination(t *testing.T) {
	db := setupTestDB(t)

	controller := NewOrderController(db, nil, nil, nil)
	router := newTestRouter()
	router.GET("/admin/orders", controller.GetOrders)

	resp := performRequest(router, http.MethodGet, "/admin/orders?page=0&limit=0", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Metadata struct {
			CurrentPage int  `json:"currentPage"`
			Limit       int  `json:"limit"`
			HasNextPage bool `json:"hasNextPage"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Metadata.CurrentPage != 1 {
		t.Errorf("page should clamp to 1, got %d", body.Metadata.CurrentPage)
	}
	if body.Metadata.Limit != 15 {
		t.Errorf("limit should fall back to 15, got %d", body.Metadata.Limit)
	}
	if body.Metadata.HasNextPage {
		t.Error("empty listing should have no next page")
	}
}
