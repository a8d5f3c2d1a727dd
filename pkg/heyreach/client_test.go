package heyreach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLeadsToList(t *testing.T) {
	var gotReq addLeadsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/AddLeadsToListV2", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"addedLeadsCount": 2, "failedLeadsCount": 0}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL), WithRateLimit(0))
	result, err := client.AddLeadsToList(context.Background(), 42, []Lead{
		{
			FirstName:  "Jane",
			LastName:   "Doe",
			ProfileURL: "https://linkedin.com/in/janedoe",
			CustomUserFields: []CustomUserField{
				{Name: "personalized_message", Value: "Hey Jane!"},
			},
		},
		{FirstName: "John", LastName: "Smith", ProfileURL: "https://linkedin.com/in/jsmith"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 42, gotReq.ListID)
	require.Len(t, gotReq.Leads, 2)
	require.Len(t, gotReq.Leads[0].CustomUserFields, 1)
	assert.Equal(t, "personalized_message", gotReq.Leads[0].CustomUserFields[0].Name)
}

func TestAddLeadsToListChunks(t *testing.T) {
	var batches [][]Lead
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req addLeadsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batches = append(batches, req.Leads)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"addedLeadsCount": %d, "failedLeadsCount": 0}`, len(req.Leads))
	}))
	defer server.Close()

	leads := make([]Lead, 5)
	for i := range leads {
		leads[i] = Lead{ProfileURL: fmt.Sprintf("https://linkedin.com/in/lead%d", i)}
	}

	client := NewClient("secret", WithBaseURL(server.URL), WithChunkSize(2), WithRateLimit(0))
	result, err := client.AddLeadsToList(context.Background(), 7, leads)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Accepted)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
}

func TestAddLeadsToListPartialFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			http.Error(w, `{"message": "server error"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"addedLeadsCount": 2, "failedLeadsCount": 0}`))
	}))
	defer server.Close()

	leads := make([]Lead, 4)
	for i := range leads {
		leads[i] = Lead{ProfileURL: fmt.Sprintf("https://linkedin.com/in/lead%d", i)}
	}

	client := NewClient("secret", WithBaseURL(server.URL), WithChunkSize(2), WithRateLimit(0))
	result, err := client.AddLeadsToList(context.Background(), 7, leads)
	require.Error(t, err)

	// the first chunk landed before the failure
	assert.Equal(t, 2, result.Accepted)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestGetList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/GetById", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("listId"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "name": "Q3 outbound", "totalItemsCount": 118}`))
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL), WithRateLimit(0))
	list, err := client.GetList(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Q3 outbound", list.Name)
	assert.Equal(t, 118, list.TotalItems)
}

func TestStopLeadInCampaign(t *testing.T) {
	var gotReq stopLeadRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/campaign/StopLeadInCampaign", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL), WithRateLimit(0))
	err := client.StopLeadInCampaign(context.Background(), 9, "https://linkedin.com/in/jane/")
	require.NoError(t, err)
	assert.Equal(t, 9, gotReq.CampaignID)
	assert.Equal(t, "https://linkedin.com/in/jane/", gotReq.LeadURL)
}

func TestStopLeadInCampaignNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "lead not in campaign", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL), WithRateLimit(0))
	err := client.StopLeadInCampaign(context.Background(), 9, "https://linkedin.com/in/jane/")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCheckAPIKeyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL), WithRateLimit(0))
	err := client.CheckAPIKey(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
