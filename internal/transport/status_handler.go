package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/model"
	"github.com/goodnatureofminers/txconfirm-backend/internal/monitor"
	"github.com/goodnatureofminers/txconfirm-backend/internal/repository/postgres"
	"github.com/goodnatureofminers/txconfirm-backend/internal/validate"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	hintNotFound = "transaction not found: check the hash and the selected network"
	hintUnknown  = "node temporarily unreachable, retry later"

	statusUnknown = "unknown"

	defaultLookupTimeout = 30 * time.Second
)

// StatusHandler serves transaction lookups, tracking requests and the endpoint view.
type StatusHandler struct {
	records   Records
	trackers  map[model.Chain]Tracker
	endpoints []Endpoints
	logger    *zap.Logger
	timeout   time.Duration
	json      gwruntime.Marshaler
	mux       *gwruntime.ServeMux
}

// NewStatusHandler builds a StatusHandler for the chains trackers cover.
func NewStatusHandler(records Records, trackers []Tracker, endpoints []Endpoints, logger *zap.Logger) (*StatusHandler, error) {
	if records == nil {
		return nil, errors.New("status handler records are required")
	}
	if len(trackers) == 0 {
		return nil, errors.New("at least one tracker is required")
	}
	byChain := make(map[model.Chain]Tracker, len(trackers))
	for _, t := range trackers {
		byChain[t.Chain()] = t
	}
	return &StatusHandler{
		records:   records,
		trackers:  byChain,
		endpoints: endpoints,
		logger:    logger.Named("status_handler"),
		timeout:   defaultLookupTimeout,
		json:      &gwruntime.JSONBuiltin{},
	}, nil
}

// Register mounts the REST routes on mux.
func (h *StatusHandler) Register(mux *gwruntime.ServeMux) error {
	h.mux = mux
	routes := []struct {
		method, pattern string
		handler         gwruntime.HandlerFunc
	}{
		{http.MethodGet, "/v1/transactions/{chain}/{hash}", h.getTransaction},
		{http.MethodPost, "/v1/transactions/{chain}/{hash}", h.trackTransaction},
		{http.MethodGet, "/v1/endpoints", h.listEndpoints},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

type transactionResponse struct {
	Chain                 string      `json:"chain"`
	Hash                  string      `json:"hash"`
	Tracked               bool        `json:"tracked"`
	Owner                 string      `json:"owner,omitempty"`
	Status                string      `json:"status"`
	Confirmations         uint64      `json:"confirmations"`
	RequiredConfirmations uint64      `json:"required_confirmations"`
	ProgressPercent       int         `json:"progress_percent"`
	BlockHeight           *uint64     `json:"block_height,omitempty"`
	UpdatedAt             *time.Time  `json:"updated_at,omitempty"`
	Live                  *liveStatus `json:"live,omitempty"`
	Hint                  string      `json:"hint,omitempty"`
}

type liveStatus struct {
	Status        string  `json:"status"`
	Confirmations uint64  `json:"confirmations"`
	Outcome       string  `json:"outcome"`
	BlockHeight   *uint64 `json:"block_height,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type trackRequest struct {
	Owner                 string `json:"owner"`
	RequiredConfirmations uint64 `json:"required_confirmations"`
}

type endpointsResponse struct {
	Chains []chainEndpoints `json:"chains"`
}

type chainEndpoints struct {
	Chain     string          `json:"chain"`
	Available bool            `json:"available"`
	Endpoints []endpointState `json:"endpoints"`
}

type endpointState struct {
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Priority    int        `json:"priority"`
	State       string     `json:"state"`
	Failures    int        `json:"failures"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

func (h *StatusHandler) getTransaction(w http.ResponseWriter, r *http.Request, params map[string]string) {
	tracker, hash, err := h.target(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := transactionResponse{Chain: string(tracker.Chain()), Hash: hash, RequiredConfirmations: tracker.Required()}

	rec, err := h.records.GetByHash(ctx, tracker.Chain(), hash)
	switch {
	case errors.Is(err, postgres.ErrNotFound):
	case err != nil:
		h.logger.Error("lookup tracked transaction", zap.String("hash", hash), zap.Error(err))
		h.fail(w, r, status.Error(codes.Internal, "record lookup failed"))
		return
	default:
		resp = fromRecord(rec)
	}

	if !resp.Tracked || !model.TxStatus(resp.Status).Terminal() {
		live := tracker.Status(ctx, hash)
		resp.Live = h.live(live, resp.RequiredConfirmations)
		if !resp.Tracked {
			resp.Status = resp.Live.Status
			resp.BlockHeight = live.BlockHeight
		}
		if !live.Unknown() {
			resp.Confirmations = max(resp.Confirmations, live.Confirmations)
		}
	}

	resp.ProgressPercent = progress(model.TxStatus(resp.Status), resp.Confirmations, resp.RequiredConfirmations)
	resp.Hint = hint(resp)
	h.write(w, r, http.StatusOK, resp)
}

func (h *StatusHandler) trackTransaction(w http.ResponseWriter, r *http.Request, params map[string]string) {
	tracker, hash, err := h.target(params)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req trackRequest
	if err := h.json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, status.Errorf(codes.InvalidArgument, "decode body: %v", err))
		return
	}
	req.Owner = strings.TrimSpace(req.Owner)
	if req.Owner == "" {
		h.fail(w, r, status.Error(codes.InvalidArgument, "owner is required"))
		return
	}
	if req.RequiredConfirmations == 0 {
		req.RequiredConfirmations = tracker.Required()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stored, err := h.records.Track(ctx, model.TransactionRecord{
		Chain:                 tracker.Chain(),
		Hash:                  hash,
		Owner:                 req.Owner,
		Status:                model.StatusPending,
		RequiredConfirmations: req.RequiredConfirmations,
	})
	if errors.Is(err, postgres.ErrOwnerConflict) {
		h.fail(w, r, status.Error(codes.AlreadyExists, err.Error()))
		return
	}
	if err != nil {
		h.logger.Error("track transaction", zap.String("hash", hash), zap.Error(err))
		h.fail(w, r, status.Error(codes.Internal, "tracking failed"))
		return
	}
	h.logger.Info("tracking transaction",
		zap.String("chain", string(stored.Chain)),
		zap.String("hash", stored.Hash),
		zap.String("status", string(stored.Status)),
	)

	resp := fromRecord(stored)
	resp.ProgressPercent = progress(stored.Status, stored.Confirmations, stored.RequiredConfirmations)
	h.write(w, r, http.StatusOK, resp)
}

func (h *StatusHandler) listEndpoints(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp := endpointsResponse{Chains: make([]chainEndpoints, 0, len(h.endpoints))}
	for _, e := range h.endpoints {
		chain := chainEndpoints{Chain: string(e.Chain()), Available: e.Available()}
		for _, s := range e.Snapshot() {
			state := endpointState{
				Name:     s.Name,
				URL:      redact(s.URL),
				Priority: s.Priority,
				State:    string(s.State),
				Failures: s.Failures,
			}
			if !s.LastFailure.IsZero() {
				last := s.LastFailure.UTC()
				state.LastFailure = &last
			}
			chain.Endpoints = append(chain.Endpoints, state)
		}
		resp.Chains = append(resp.Chains, chain)
	}
	h.write(w, r, http.StatusOK, resp)
}

// target resolves the chain and normalized hash of a transaction route.
func (h *StatusHandler) target(params map[string]string) (Tracker, string, error) {
	chain, err := model.ParseChain(strings.ToLower(params["chain"]))
	if err != nil {
		return nil, "", status.Error(codes.InvalidArgument, err.Error())
	}
	tracker, ok := h.trackers[chain]
	if !ok {
		return nil, "", status.Errorf(codes.FailedPrecondition, "chain %s is not enabled", chain)
	}
	hash, err := validate.Hash(chain, params["hash"])
	if err != nil {
		return nil, "", status.Error(codes.InvalidArgument, err.Error())
	}
	return tracker, hash, nil
}

func (h *StatusHandler) live(st model.ConfirmationStatus, required uint64) *liveStatus {
	if st.Unknown() {
		return &liveStatus{Status: statusUnknown, Outcome: string(model.OutcomeUnknown), Error: st.Err.Error()}
	}
	return &liveStatus{
		Status:        string(monitor.Classify(st, required)),
		Confirmations: st.Confirmations,
		Outcome:       string(st.Outcome),
		BlockHeight:   st.BlockHeight,
	}
}

func (h *StatusHandler) write(w http.ResponseWriter, r *http.Request, code int, v any) {
	body, err := h.json.Marshal(v)
	if err != nil {
		h.fail(w, r, status.Errorf(codes.Internal, "encode response: %v", err))
		return
	}
	w.Header().Set("Content-Type", h.json.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

// fail renders err the way the gateway renders gRPC errors.
func (h *StatusHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	mux := h.mux
	if mux == nil {
		mux = gwruntime.NewServeMux()
	}
	_, outbound := gwruntime.MarshalerForRequest(mux, r)
	gwruntime.DefaultHTTPErrorHandler(r.Context(), mux, outbound, w, r, err)
}

func fromRecord(rec model.TransactionRecord) transactionResponse {
	updated := rec.UpdatedAt.UTC()
	return transactionResponse{
		Chain:                 string(rec.Chain),
		Hash:                  rec.Hash,
		Tracked:               true,
		Owner:                 rec.Owner,
		Status:                string(rec.Status),
		Confirmations:         rec.Confirmations,
		RequiredConfirmations: rec.RequiredConfirmations,
		BlockHeight:           rec.BlockHeight,
		UpdatedAt:             &updated,
	}
}

func progress(s model.TxStatus, confirmations, required uint64) int {
	if s == model.StatusConfirmed {
		return 100
	}
	if required == 0 {
		return 0
	}
	return int(min(confirmations, required) * 100 / required)
}

func hint(resp transactionResponse) string {
	switch {
	case resp.Status == string(model.StatusNotFound):
		return hintNotFound
	case resp.Status == statusUnknown, resp.Live != nil && resp.Live.Status == statusUnknown:
		return hintUnknown
	default:
		return ""
	}
}

// redact keeps scheme and host so API keys in paths or userinfo never leave the process.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "redacted"
	}
	return u.Scheme + "://" + u.Host
}
