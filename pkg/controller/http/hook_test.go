package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	controller "github.com/charmkit/pje-agent/pkg/controller/http"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

// recordingHookUC captures processed events so tests can wait for the
// asynchronous dispatch to complete
type recordingHookUC struct {
	events chan *model.HookEvent
}

func newRecordingHookUC() *recordingHookUC {
	return &recordingHookUC{events: make(chan *model.HookEvent, 1)}
}

func (uc *recordingHookUC) ProcessHook(ctx context.Context, event *model.HookEvent) error {
	uc.events <- event
	return nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newTestServer(t *testing.T, uc *recordingHookUC) *controller.Server {
	t.Helper()

	server, err := controller.NewServer(
		context.Background(),
		uc,
		controller.WithAddr("localhost:0"),
		controller.WithHookSecret("test-secret"),
	)
	gt.NoError(t, err)
	return server
}

func TestHookDelivery(t *testing.T) {
	uc := newRecordingHookUC()
	server := newTestServer(t, uc)

	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/hooks/config-changed", bytes.NewReader(body))
	req.Header.Set(controller.SignatureHeader, sign("test-secret", body))
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusAccepted)

	select {
	case event := <-uc.events:
		gt.Value(t, event.Kind).Equal(model.HookConfigChanged)
		gt.Value(t, event.ID).NotEqual("")
	case <-time.After(time.Second):
		t.Fatal("hook event was not dispatched")
	}
}

func TestHookDeliveryRejectsBadSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
	}{
		{name: "missing signature", signature: ""},
		{name: "wrong secret", signature: sign("other-secret", []byte(`{}`))},
		{name: "garbage signature", signature: "sha256=deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newRecordingHookUC()
			server := newTestServer(t, uc)

			req := httptest.NewRequest(http.MethodPost, "/hooks/config-changed", bytes.NewReader([]byte(`{}`)))
			if tt.signature != "" {
				req.Header.Set(controller.SignatureHeader, tt.signature)
			}
			w := httptest.NewRecorder()

			server.Handler.ServeHTTP(w, req)

			gt.Number(t, w.Code).Equal(http.StatusUnauthorized)

			select {
			case <-uc.events:
				t.Fatal("unauthenticated hook must not be processed")
			case <-time.After(50 * time.Millisecond):
			}
		})
	}
}

func TestHookDeliveryRejectsUnknownHook(t *testing.T) {
	uc := newRecordingHookUC()
	server := newTestServer(t, uc)

	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/hooks/format-disks", bytes.NewReader(body))
	req.Header.Set(controller.SignatureHeader, sign("test-secret", body))
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	gt.Number(t, w.Code).Equal(http.StatusBadRequest)
}
