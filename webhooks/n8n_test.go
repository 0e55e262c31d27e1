package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCompliance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/compliance-check", r.URL.Path)

		var req ComplianceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "shop-1", req.ShopID)
		assert.Equal(t, []string{"Alprazolam"}, req.Medicines)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"medicine_name":"Alprazolam","schedule":"H1","rx_required":true}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	result, err := client.CheckCompliance(context.Background(), ComplianceRequest{
		ShopID:    "shop-1",
		Medicines: []string{"Alprazolam"},
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.True(t, result.Results[0].RxRequired)
	assert.Equal(t, "H1", result.Results[0].Schedule)
}

func TestCheckComplianceWorkflowError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"workflow crashed"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.CheckCompliance(context.Background(), ComplianceRequest{ShopID: "shop-1", Medicines: []string{"X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow crashed")
}

func TestExtractPrescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webhook/prescription-ocr", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"medicines":[{"name":"Dolo 650","dosage":"1-0-1","quantity":10}],"raw_text":"Dolo 650 1-0-1 x10"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	result, err := client.ExtractPrescription(context.Background(), OCRRequest{
		ShopID:    "shop-1",
		ImageData: "aGVsbG8=",
		MimeType:  "image/png",
	})
	require.NoError(t, err)
	require.Len(t, result.Medicines, 1)
	assert.Equal(t, "Dolo 650", result.Medicines[0].Name)
	assert.Equal(t, 10, result.Medicines[0].Quantity)
}
