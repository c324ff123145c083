package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"liquidity-monitor/internal/logger"
	"liquidity-monitor/internal/tracking"
)

type SessionStatus struct {
	Account   string    `json:"account"`
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"started_at"`
}

var (
	isReady       int32
	sessionStatus *SessionStatus
	statusMutex   sync.RWMutex
)

func SetReady(ready bool) {
	if ready {
		atomic.StoreInt32(&isReady, 1)
	} else {
		atomic.StoreInt32(&isReady, 0)
	}
}

func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	statusMutex.RLock()
	defer statusMutex.RUnlock()

	if atomic.LoadInt32(&isReady) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Not Ready"))

		return
	}

	response := make(map[string]interface{})
	response["status"] = "Ready"
	if sessionStatus != nil {
		response["session"] = sessionStatus
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// RegisterManager samples the tracking manager's live session periodically
// so readiness reflects what is actually being tracked.
func RegisterManager(ctx context.Context, manager *tracking.Manager) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				updateSessionStatus(manager.Session())
				time.Sleep(10 * time.Second)
			}
		}
	}()

	logger.GetLogger().Debug().Msg("Health sampling registered for tracking manager")
}

func updateSessionStatus(session *tracking.Session) {
	statusMutex.Lock()
	defer statusMutex.Unlock()

	if session == nil {
		sessionStatus = nil
		return
	}
	sessionStatus = &SessionStatus{
		Account:   session.Account(),
		Active:    session.Active(),
		StartedAt: session.StartedAt(),
	}
}
