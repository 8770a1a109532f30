package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestClient_AttachesTokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenSource(staticToken("abc123")))
	if _, err := c.ListRooms(context.Background()); err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if gotAuth != "Token abc123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Token abc123")
	}
}

func TestClient_OmitsHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenSource(staticToken("")))
	if _, err := c.ListRooms(context.Background()); err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty for anonymous requests", gotAuth)
	}
}

func TestClient_NetworkErrorTaxonomy(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.ListRooms(context.Background())
	if !IsNetworkError(err) {
		t.Errorf("connection refused should classify as network error, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != 0 {
		t.Errorf("network errors carry no HTTP status, got %+v", apiErr)
	}
}

func TestClient_APIErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail":"upstream exploded"}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListRooms(context.Background())

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *Error, got %T", err)
	}
	if apiErr.Kind != KindAPI {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindAPI)
	}
	if Message(err) != "upstream exploded" {
		t.Errorf("Message() = %q, want the detail field", Message(err))
	}
}

func TestClient_ValidationErrorTaxonomy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"non_field_errors":["Name already in use."]}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateRoom(context.Background(), "Kitchen", "kitchen")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *Error, got %T", err)
	}
	if apiErr.Kind != KindValidation {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, KindValidation)
	}
	if Message(err) != "Name already in use." {
		t.Errorf("Message() = %q, want first non_field_errors entry", Message(err))
	}
}

func TestClient_GenericMessageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":500}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListRooms(context.Background())
	if Message(err) != genericErrorMessage {
		t.Errorf("Message() = %q, want generic fallback", Message(err))
	}
}

func TestClient_UnauthorizedDetection(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := NewClient(srv.URL)
		_, err := c.ListRooms(context.Background())
		if !IsUnauthorized(err) {
			t.Errorf("status %d should classify as unauthorized", status)
		}
		srv.Close()
	}
}

func TestClient_CreateDevicePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/" || r.Method != "POST" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck // test handler
		w.Write([]byte(`{"id":42,"name":"Desk Lamp"}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	d, err := c.CreateDevice(context.Background(), CreateDeviceInput{
		RoomID:     3,
		Name:       "Desk Lamp",
		DeviceType: DeviceTypeLight,
		DeviceKind: DeviceKindActuator,
		SignalType: SignalDigital,
	})
	if err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}
	if d.ID != 42 {
		t.Errorf("ID = %d, want 42", d.ID)
	}
	if got["room"] != float64(3) {
		t.Errorf("room = %v, want 3", got["room"])
	}
	if got["device_type"] != "light" || got["device_kind"] != "actuator" || got["signal_type"] != "digital" {
		t.Errorf("payload = %v", got)
	}
	if got["is_on"] != false {
		t.Errorf("is_on = %v, want false", got["is_on"])
	}
}

func TestClient_ToggleSendsCommand(t *testing.T) {
	var gotPath string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck // test handler
		w.Write([]byte(`{"id":7,"is_on":true}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	d, err := c.ToggleDevice(context.Background(), 7, true)
	if err != nil {
		t.Fatalf("ToggleDevice() error = %v", err)
	}
	if gotPath != "/devices/7/command/" {
		t.Errorf("path = %q, want /devices/7/command/", gotPath)
	}
	if got["state"] != "on" {
		t.Errorf("state = %v, want on", got["state"])
	}
	if _, present := got["target_value"]; present {
		t.Error("digital command should omit target_value")
	}
	if !d.IsOn {
		t.Error("response device should be on")
	}
}

func TestClient_UpdateDevicePositionPayload(t *testing.T) {
	var got map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PATCH" {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.UpdateDevicePosition(context.Background(), 7, 42.5, 13.25); err != nil {
		t.Fatalf("UpdateDevicePosition() error = %v", err)
	}
	if got["position_x"] != 42.5 || got["position_y"] != 13.25 {
		t.Errorf("payload = %v", got)
	}
}

func TestClient_UpdateRoomEncodingSelection(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"id":1,"name":"Kitchen"}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	name := "Kitchen"

	if _, err := c.UpdateRoom(context.Background(), 1, RoomUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateRoom() error = %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("rename should be JSON, got %q", contentType)
	}

	upload := &FileUpload{Name: "bg.png", Reader: strings.NewReader("png-bytes")}
	if _, err := c.UpdateRoom(context.Background(), 1, RoomUpdate{Name: &name, Background: upload}); err != nil {
		t.Fatalf("UpdateRoom() with file error = %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Errorf("file upload should be multipart, got %q", contentType)
	}
}

func TestClient_LoginReturnsTokenAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"token":"tok-1","user":{"id":1,"username":"alice"}}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Login(context.Background(), Credentials{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token != "tok-1" || resp.User.Username != "alice" {
		t.Errorf("resp = %+v", resp)
	}
}
