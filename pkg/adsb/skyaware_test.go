package adsb

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestNewSkyAwareClient tests client construction.
func TestNewSkyAwareClient(t *testing.T) {
	client := NewSkyAwareClient("http://receiver.local/skyaware/data/aircraft.json")

	if client == nil {
		t.Fatal("Expected client, got nil")
	}
	if client.baseURL != "http://receiver.local/skyaware/data/aircraft.json" {
		t.Errorf("Unexpected baseURL: %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

// TestFeedURL tests the standard SkyAware URL layout.
func TestFeedURL(t *testing.T) {
	got := FeedURL("192.168.1.20", 80)
	want := "http://192.168.1.20:80/skyaware/data/aircraft.json"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

// TestFetch tests decoding the aircraft.json document.
func TestFetch(t *testing.T) {
	t.Run("Successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"now": 1700000000.0,
				"messages": 123456,
				"aircraft": [
					{
						"hex": "A12345",
						"flight": "RCH4521 ",
						"squawk": "4521",
						"lat": 40.7128,
						"lon": -74.0060,
						"alt_baro": 31000,
						"gs": 450.0,
						"track": 90.0,
						"seen": 2.0
					},
					{
						"hex": "ae01ff",
						"alt_baro": "ground",
						"seen": 0.5
					}
				]
			}`))
		}))
		defer server.Close()

		client := NewSkyAwareClient(server.URL)
		aircraft, err := client.Fetch()

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(aircraft) != 2 {
			t.Fatalf("Expected 2 aircraft, got %d", len(aircraft))
		}

		ac := aircraft[0]
		if ac.Hex != "a12345" {
			t.Errorf("Expected hex lowercased to a12345, got %s", ac.Hex)
		}
		if ac.Callsign != "RCH4521" {
			t.Errorf("Expected trimmed callsign RCH4521, got %q", ac.Callsign)
		}
		if ac.Squawk != "4521" {
			t.Errorf("Expected squawk 4521, got %s", ac.Squawk)
		}
		if !ac.HasPosition() {
			t.Fatal("Expected position fix")
		}
		if *ac.Latitude != 40.7128 || *ac.Longitude != -74.0060 {
			t.Errorf("Unexpected position: %f, %f", *ac.Latitude, *ac.Longitude)
		}
		if ac.Altitude == nil || *ac.Altitude != 31000 {
			t.Errorf("Expected altitude 31000, got %v", ac.Altitude)
		}
		if ac.SeenAt.Unix() != 1699999998 {
			t.Errorf("Expected SeenAt anchored to feed time minus seen, got %v", ac.SeenAt)
		}

		// Ground aircraft: altitude 0, no position, still listed.
		ground := aircraft[1]
		if ground.HasPosition() {
			t.Error("Expected no position for ground aircraft")
		}
		if ground.Altitude == nil || *ground.Altitude != 0 {
			t.Errorf("Expected ground altitude 0, got %v", ground.Altitude)
		}
	})

	t.Run("Skips aircraft without hex", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"now": 1.0, "aircraft": [{"hex": ""}, {"hex": "abc123"}]}`))
		}))
		defer server.Close()

		client := NewSkyAwareClient(server.URL)
		aircraft, err := client.Fetch()

		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(aircraft) != 1 {
			t.Errorf("Expected 1 aircraft, got %d", len(aircraft))
		}
	})

	t.Run("Handles HTTP error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewSkyAwareClient(server.URL)
		if _, err := client.Fetch(); err == nil {
			t.Fatal("Expected error, got nil")
		}
	})

	t.Run("Handles malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"aircraft": [`))
		}))
		defer server.Close()

		client := NewSkyAwareClient(server.URL)
		if _, err := client.Fetch(); err == nil {
			t.Fatal("Expected parse error, got nil")
		}
	})
}

// TestReceiverPosition tests reading the receiver's own coordinates.
func TestReceiverPosition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"now": 1.0, "lat": 40.7128, "lon": -74.0060, "aircraft": []}`))
	}))
	defer server.Close()

	client := NewSkyAwareClient(server.URL)
	lat, lon, err := client.ReceiverPosition()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if lat == nil || lon == nil {
		t.Fatal("Expected receiver coordinates")
	}
	if *lat != 40.7128 || *lon != -74.0060 {
		t.Errorf("Unexpected coordinates: %f, %f", *lat, *lon)
	}
}

// TestParseAltitude tests the mixed-type alt_baro field.
func TestParseAltitude(t *testing.T) {
	if alt := parseAltitude(35000.0); alt == nil || *alt != 35000.0 {
		t.Errorf("Expected 35000, got %v", alt)
	}
	if alt := parseAltitude("ground"); alt == nil || *alt != 0 {
		t.Errorf("Expected 0 for ground, got %v", alt)
	}
	if alt := parseAltitude("climbing"); alt != nil {
		t.Errorf("Expected nil for unknown string, got %v", alt)
	}
	if alt := parseAltitude(nil); alt != nil {
		t.Errorf("Expected nil for nil, got %v", alt)
	}
}
