package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/restoweb/pos-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter()
	router.GET("/api/categories", GetCategories)
	router.POST("/api/categories", CreateCategory)
	router.DELETE("/api/categories/:id", DeleteCategory)

	t.Run("create", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/categories",
			map[string]interface{}{"name": "Starters"}, "")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/categories",
			map[string]interface{}{"name": "Starters"}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		errObj := parseEnvelope(t, w)["error"].(map[string]interface{})
		assert.Equal(t, "CONFLICT", errObj["code"])
	})

	t.Run("missing name", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/categories",
			map[string]interface{}{}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list sorted by name", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Category{Name: "Beverages"}).Error)

		w := doJSON(router, http.MethodGet, "/api/categories", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		data := parseEnvelope(t, w)["data"].([]interface{})
		require.Len(t, data, 2)
		assert.Equal(t, "Beverages", data[0].(map[string]interface{})["name"])
		assert.Equal(t, "Starters", data[1].(map[string]interface{})["name"])
	})

	t.Run("delete", func(t *testing.T) {
		var category models.Category
		require.NoError(t, db.Where("name = ?", "Starters").First(&category).Error)

		w := doJSON(router, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
