package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLast7DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/power/last7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"count":2,"data":[
			{"id":1,"voltage":231.2,"current":4.1,"power_watts":910.5,"energy_kwh":120.4,"frequency":50.0,"power_factor":0.96,"timestamp":"2026-08-30T10:00:00Z"},
			{"id":2,"voltage":229.8,"current":3.9,"power_watts":880.1,"energy_kwh":120.5,"frequency":49.9,"power_factor":0.95,"timestamp":"2026-08-30T10:00:05Z"}
		]}`))
	}))
	defer srv.Close()

	readings, err := New(srv.URL).Last7(context.Background())
	if err != nil {
		t.Fatalf("Last7 failed: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}
	if readings[0].Voltage != 231.2 {
		t.Errorf("voltage = %v, want 231.2", readings[0].Voltage)
	}
	if readings[1].PowerFactor != 0.95 {
		t.Errorf("power factor = %v, want 0.95", readings[1].PowerFactor)
	}
}

func TestStatisticsQueryParameter(t *testing.T) {
	var gotDays string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDays = r.URL.Query().Get("days")
		w.Write([]byte(`{"success":true,"data":{"avg_power":450.2,"samples":1200}}`))
	}))
	defer srv.Close()

	stats, err := New(srv.URL).Statistics(context.Background(), 30)
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if gotDays != "30" {
		t.Errorf("days parameter = %q, want 30", gotDays)
	}
	if stats.AvgPower != 450.2 {
		t.Errorf("avg power = %v, want 450.2", stats.AvgPower)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "envelope with success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":false,"error":"db down"}`))
			},
			wantErr: ErrEnvelope,
		},
		{
			name: "envelope missing data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":true}`))
			},
			wantErr: ErrEnvelope,
		},
		{
			name: "envelope with explicit null data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":true,"data":null}`))
			},
			wantErr: ErrEnvelope,
		},
		{
			name: "non-JSON body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>gateway error</html>`))
			},
			wantErr: ErrEnvelope,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := New(srv.URL).Alerts(context.Background())
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Last7(context.Background()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := New(srv.URL).Last7(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("got error %v, want ErrUnreachable", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if err := New(srv.URL).Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}
