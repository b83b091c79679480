package eventstore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitTriage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, TriagePath, r.URL.Path)
		assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "rasa/covid19-healthcheckbot", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"abc123","profile":{"hcs_study_a_arm":"T1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", 3)
	resp, err := c.SubmitTriage(TriagePath, map[string]any{
		"msisdn": "+27820001001",
		"risk":   "low",
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.Profile.HCSStudyAArm)
	assert.Equal(t, "+27820001001", got["msisdn"])
	assert.Equal(t, "low", got["risk"])
}

func TestSubmitTriageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		w.Write([]byte(`{"id":"abc123","profile":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", 3)
	resp, err := c.SubmitTriage(TriagePathDBE, map[string]any{"risk": "high"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "", resp.Profile.HCSStudyAArm)
}

func TestSubmitTriageExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", 3)
	_, err := c.SubmitTriage(TriagePath, map[string]any{"risk": "low"})
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetOnBehalfProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v2/dbeonbehalfofprofile/", r.URL.Path)
		assert.Equal(t, "+27820001001", r.URL.Query().Get("msisdn"))
		w.Write([]byte(`{"results":[
			{"id":"1","name":"Thabo","age":12,"gender":"male","province":"ZA-WC",
			 "school":"BERGVLIET HIGH SCHOOL","school_emis":"105310201","obesity":false,
			 "preexisting_condition":"not_sure"},
			{"id":"2","name":"Lerato","age":null,"gender":"female","province":"ZA-GT",
			 "school":"EPWORTH HIGH SCHOOL","school_emis":null}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", 3)
	profiles, err := c.GetOnBehalfProfiles("+27820001001")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, "Thabo", profiles[0].Name)
	require.NotNil(t, profiles[0].Age)
	assert.Equal(t, 12, *profiles[0].Age)
	require.NotNil(t, profiles[0].Obesity)
	assert.False(t, *profiles[0].Obesity)
	assert.Equal(t, "not_sure", profiles[0].PreexistingCondition)

	assert.Nil(t, profiles[1].Age)
	assert.Nil(t, profiles[1].SchoolEmis)
	assert.Nil(t, profiles[1].Obesity)
}

func TestGetOnBehalfProfilesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", 3)
	profiles, err := c.GetOnBehalfProfiles("+27820001001")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, NewClient("http://x", "tok", 3).IsConfigured())
	assert.False(t, NewClient("http://x", "", 3).IsConfigured())
}
