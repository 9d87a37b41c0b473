package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/abhinaya/internal/config"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/pointer"
	"github.com/ayusman/abhinaya/internal/store"
)

func TestAPI_ConfigWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	ts := httptest.NewServer(New(Config{Store: s, Active: config.Default()}))
	defer ts.Close()
	client := ts.Client()

	// 1. Nothing stored: the active preset is returned.
	resp, err := client.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	var got struct {
		Config config.Config `json:"config"`
		Stored bool          `json:"stored"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.False(t, got.Stored)
	assert.Equal(t, config.PresetAdaptive, got.Config.Preset)

	// 2. Store a fixed-region configuration.
	body := `{"preset":"fixed-region","calibration":{"region":{"x_min":0.3,"x_max":0.7,"y_min":0.3,"y_max":0.7}}}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/config", bytes.NewBufferString(body))
	resp, err = client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 3. Read it back.
	resp, err = client.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.True(t, got.Stored)
	assert.Equal(t, 0.3, got.Config.Calibration.Region.XMin)

	// 4. A degenerate region is refused and the stored one survives.
	bad := `{"preset":"fixed-region","calibration":{"region":{"x_min":0.7,"x_max":0.3,"y_min":0.3,"y_max":0.7}}}`
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/config", bytes.NewBufferString(bad))
	resp, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, 0.3, got.Config.Calibration.Region.XMin)
}

func TestAPI_CommandFeed(t *testing.T) {
	feed := NewCommandFeed()
	ts := httptest.NewServer(New(Config{Feed: feed}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/commands"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	feed.Publish([]engine.Command{
		engine.Move(pointer.ScreenPoint{X: 100, Y: 200}),
		{Kind: engine.LeftClick},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg FeedMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Len(t, msg.Commands, 2)
	assert.Equal(t, engine.MoveTo, msg.Commands[0].Kind)
	assert.Equal(t, pointer.ScreenPoint{X: 100, Y: 200}, msg.Commands[0].Point)
	assert.Equal(t, engine.LeftClick, msg.Commands[1].Kind)
	assert.NotZero(t, msg.Timestamp)

	feed.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "connection should be closed after feed.Close")
}

func TestAPI_HealthCheck(t *testing.T) {
	ts := httptest.NewServer(New(Config{}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
