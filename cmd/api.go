package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"liquidity-monitor/internal/amount"
	"liquidity-monitor/internal/config"
	"liquidity-monitor/internal/database"
	"liquidity-monitor/internal/lifecycle"
	"liquidity-monitor/internal/logger"
	"liquidity-monitor/internal/presentation"
	"liquidity-monitor/internal/tracking"
	"liquidity-monitor/internal/validation"
)

type api struct {
	manager     *tracking.Manager
	controller  *lifecycle.Controller
	coordinator *presentation.Coordinator
	cfg         *config.Config
}

func (a *api) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /account", a.setAccount)
	mux.HandleFunc("GET /transfers", a.transfers)
	mux.HandleFunc("POST /deposit/check", a.checkAllowance)
	mux.HandleFunc("POST /deposit/approve", a.approve)
	mux.HandleFunc("POST /deposit", a.submit)
	mux.HandleFunc("GET /deposit/status", a.status)
	mux.HandleFunc("GET /deposits", a.deposits)
	mux.HandleFunc("PUT /prefs/page-size", a.setPageSize)
}

func (a *api) setAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Account != "" {
		if err := validation.ValidateAddress(req.Account); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := a.manager.SetAccount(req.Account); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) transfers(w http.ResponseWriter, _ *http.Request) {
	session := a.manager.Session()
	if session == nil {
		http.Error(w, "no tracking session", http.StatusNotFound)
		return
	}

	filled, pending := session.Snapshots()
	view := a.coordinator.View(filled, pending, a.cfg.Chain.ExplorerBaseURL)

	writeJSON(w, map[string]interface{}{
		"initial_loading": session.InitialLoading(),
		"view":            view,
	})
}

func (a *api) checkAllowance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount string `json:"amount"`
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	decimals := a.decimalsFor(req.Symbol)
	required, err := amount.ToBaseUnits(req.Amount, decimals)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.controller.CheckAllowance(r.Context(), required, req.Symbol); err != nil {
		logger.GetLogger().Error().Err(err).Msg("Allowance check failed")
	}
	a.status(w, r)
}

func (a *api) approve(w http.ResponseWriter, r *http.Request) {
	if err := a.controller.Approve(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	a.status(w, r)
}

func (a *api) submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount string `json:"amount"`
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.controller.Submit(r.Context(), req.Amount, req.Symbol, a.decimalsFor(req.Symbol)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.status(w, r)
}

func (a *api) status(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]interface{}{
		"phase":          a.controller.Phase().String(),
		"needs_approval": a.controller.NeedsApproval(),
	}
	if hash := a.controller.TxHash(); hash.Big().Sign() != 0 {
		resp["tx_hash"] = hash.Hex()
	}
	if url := a.controller.DepositURL(); url != "" {
		resp["deposit_url"] = url
	}
	if err := a.controller.LastError(); err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, resp)
}

func (a *api) deposits(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if err := validation.ValidateAddress(account); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	deposits, err := database.GetDeposits(account, limit, offset)
	if err != nil {
		logger.GetLogger().Error().Err(err).Str("account", account).Msg("Failed to load deposits")
		http.Error(w, "failed to load deposits", http.StatusInternalServerError)
		return
	}
	writeJSON(w, deposits)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (a *api) setPageSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.coordinator.SetPageSize(req.Size); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) decimalsFor(symbol string) int {
	if symbol == a.cfg.Chain.NativeSymbol {
		return 18
	}
	return a.cfg.Pool.TokenDecimals
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
