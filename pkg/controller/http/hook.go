package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmkit/pje-agent/pkg/domain/interfaces"
	"github.com/charmkit/pje-agent/pkg/domain/model"
	"github.com/charmkit/pje-agent/pkg/utils/async"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// SignatureHeader carries the HMAC-SHA256 signature of the request body
const SignatureHeader = "X-Hook-Signature-256"

// HookHandler accepts hook deliveries over HTTP
type HookHandler struct {
	secret string
	hookUC interfaces.HookUseCase
}

// NewHookHandler creates a new HookHandler
func NewHookHandler(secret string, hookUC interfaces.HookUseCase) *HookHandler {
	return &HookHandler{
		secret: secret,
		hookUC: hookUC,
	}
}

// Handle processes a hook delivery. The hook itself runs asynchronously:
// a reconcile can take a while and the deliverer only needs to know the
// event was accepted.
func (h *HookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		logger.Warn("Invalid hook delivery signature")
		writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	name := chi.URLParam(r, "name")
	event := &model.HookEvent{
		ID:         uuid.NewString(),
		Kind:       model.ParseHookKind(name),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	if !event.IsSupported() {
		logger.Warn("Unknown hook name", "name", name)
		writeError(w, goerr.New("unknown hook name", goerr.V("name", name)), http.StatusBadRequest)
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return h.hookUC.ProcessHook(ctx, event)
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "accepted",
		"id":     event.ID,
	}); err != nil {
		logger.Error("Failed to encode accepted response", "error", err)
	}
}

// verifySignature verifies the hook delivery signature
func (h *HookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
