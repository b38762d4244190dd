package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldName(t *testing.T) {
	assert.Equal(t, "title", jsonFieldName("Title"))
	assert.Equal(t, "publication_year", jsonFieldName("PublicationYear"))
	assert.Equal(t, "phone_number", jsonFieldName("PhoneNumber"))
}

func TestValidationMessages(t *testing.T) {
	t.Run("missing required field names the json field", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doRequest(t, r, http.MethodPost, "/api/books", map[string]any{"author": "No Title"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "VALIDATION_FAILED", body["error"])
		assert.Equal(t, "title is required", body["errorMessage"])
	})

	t.Run("range failure names the limit", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doRequest(t, r, http.MethodPost, "/api/books", map[string]any{
			"title": "Thin", "pages": 10,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "pages must be at least 100", decodeBody(t, w)["errorMessage"])
	})

	t.Run("several failures are joined without internal names", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doRequest(t, r, http.MethodPost, "/api/patrons", map[string]any{"phone_number": "123"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		msg, ok := decodeBody(t, w)["errorMessage"].(string)
		require.True(t, ok)
		assert.Contains(t, msg, "name is required")
		assert.Contains(t, msg, "phone_number must have at least 10 characters")
		assert.Contains(t, msg, "address is required")
		assert.NotContains(t, msg, "PatronRequest")
	})

	t.Run("wrong value type gets the generic message", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := doRequest(t, r, http.MethodPost, "/api/books", map[string]any{"title": 123})
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "VALIDATION_FAILED", body["error"])
		assert.Equal(t, "request body could not be parsed", body["errorMessage"])
		assert.NotContains(t, body["errorMessage"], "BookRequest")
	})
}
