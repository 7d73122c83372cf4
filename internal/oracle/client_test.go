package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(url string) *Client {
	return NewClient(Endpoints{Forecast: url, Reorder: url, Pricing: url}, 0)
}

func TestForecast_Success(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"predicted_demand": 80, "confidence_interval": [70, 90], "method_used": "time-series"}`))
	}))
	defer srv.Close()

	res := testClient(srv.URL).Forecast(context.Background(), "predict something")
	if !res.OK {
		t.Fatalf("Forecast failed: %s", res.Message)
	}

	if gotBody["query"] != "predict something" {
		t.Errorf("request query = %q, want %q", gotBody["query"], "predict something")
	}

	if v, ok := res.Int("predicted_demand"); !ok || v != 80 {
		t.Errorf("Int(predicted_demand) = %d, %v, want 80, true", v, ok)
	}
}

func TestCall_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := testClient(srv.URL).Forecast(context.Background(), "q")
	assertFailure(t, res)
}

func TestCall_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	res := testClient(srv.URL).Reorder(context.Background(), "q")
	assertFailure(t, res)
}

func TestCall_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	res := testClient(srv.URL).Price(context.Background(), "q")
	assertFailure(t, res)
}

func TestCall_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	res := testClient(srv.URL).Forecast(context.Background(), "q")
	assertFailure(t, res)
}

// assertFailure checks the containment contract: a failed call yields a
// result whose map has exactly one "error" key and nothing else.
func assertFailure(t *testing.T, res Result) {
	t.Helper()
	if res.OK {
		t.Fatal("expected a failure result, got success")
	}
	m := res.Map()
	if len(m) != 1 {
		t.Fatalf("failure map has %d keys, want 1: %v", len(m), m)
	}
	msg, ok := m["error"].(string)
	if !ok || msg == "" {
		t.Fatalf("failure map missing error message: %v", m)
	}
}

func TestResult_IntCoercion(t *testing.T) {
	res := Success(map[string]any{
		"whole":  float64(42),
		"text":   "42",
		"listed": []any{1, 2},
	})

	if v, ok := res.Int("whole"); !ok || v != 42 {
		t.Errorf("Int(whole) = %d, %v, want 42, true", v, ok)
	}
	if _, ok := res.Int("text"); ok {
		t.Error("Int(text) succeeded on a string value")
	}
	if _, ok := res.Int("listed"); ok {
		t.Error("Int(listed) succeeded on an array value")
	}
	if _, ok := res.Int("absent"); ok {
		t.Error("Int(absent) succeeded on a missing key")
	}

	if _, ok := Failure("down").Int("whole"); ok {
		t.Error("Int on a failure result succeeded")
	}
}

func TestResult_MapSuccessPassthrough(t *testing.T) {
	fields := map[string]any{"suggested_price": 10.49, "risk_level": "Low"}
	m := Success(fields).Map()
	if len(m) != 2 || m["risk_level"] != "Low" {
		t.Errorf("success map altered the oracle fields: %v", m)
	}
}
