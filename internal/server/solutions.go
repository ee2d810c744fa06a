package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iwvelando/valuecalc/internal/solution"
	"github.com/iwvelando/valuecalc/internal/store"
	"github.com/iwvelando/valuecalc/internal/wizard"
	"go.uber.org/zap"
)

const errNoStore = "solution store is not configured"

type wizardRequest struct {
	State  wizard.State  `json:"state"`
	Action wizard.Action `json:"action"`
}

type wizardResponse struct {
	State    wizard.State `json:"state"`
	Error    string       `json:"error,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (h *handler) requireStore(w http.ResponseWriter, op string) bool {
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, errNoStore, op)
		return false
	}
	return true
}

// storeErrorStatus maps store errors onto HTTP statuses.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrSubmitted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *handler) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListSolutions"
	if !h.requireStore(w, op) {
		return
	}
	solutions, err := h.store.ListClientSolutions(r.Context(), r.URL.Query().Get("client"))
	if err != nil {
		h.respondErrorWithOp(w, storeErrorStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, solutions)
}

func (h *handler) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetSolution"
	if !h.requireStore(w, op) {
		return
	}
	sol, err := h.store.GetSolution(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondErrorWithOp(w, storeErrorStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, sol)
}

func (h *handler) handleSaveSolution(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveSolution"
	if !h.requireStore(w, op) {
		return
	}
	var sol solution.Solution
	if !h.decodeJSON(w, r, &sol, op) {
		return
	}
	if strings.TrimSpace(sol.Name) == "" {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, "solution name is required", op)
		return
	}

	created := sol.ID == ""
	saved, err := h.store.SaveSolution(r.Context(), sol)
	if err != nil {
		h.respondErrorWithOp(w, storeErrorStatus(err), err.Error(), op)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, saved)
}

func (h *handler) handleSubmitSolution(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSubmitSolution"
	if !h.requireStore(w, op) {
		return
	}
	sol, err := h.store.SubmitSolution(r.Context(), r.PathValue("id"))
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusInternalServerError {
			// Anything else the store reports on submit is a validation failure.
			status = http.StatusUnprocessableEntity
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, sol)
}

func (h *handler) handleDeleteSolution(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteSolution"
	if !h.requireStore(w, op) {
		return
	}
	if err := h.store.DeleteSolution(r.Context(), r.PathValue("id")); err != nil {
		h.respondErrorWithOp(w, storeErrorStatus(err), err.Error(), op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetCatalog"
	if !h.requireStore(w, op) {
		return
	}
	kind, err := store.ParseKind(r.PathValue("kind"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	items, err := h.store.GetCatalog(r.Context(), kind, splitIDs(r.URL.Query().Get("ids")))
	if err != nil {
		h.respondErrorWithOp(w, storeErrorStatus(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *handler) handlePutCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutCatalog"
	if !h.requireStore(w, op) {
		return
	}
	kind, err := store.ParseKind(r.PathValue("kind"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	var item store.CatalogItem
	if !h.decodeJSON(w, r, &item, op) {
		return
	}
	saved, err := h.store.PutCatalog(r.Context(), kind, item)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

// handleWizard applies one action to the client-held wizard state. A
// rejected action answers 422 with the unchanged state.
func (h *handler) handleWizard(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleWizard"
	var req wizardRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	next, err := wizard.Reduce(req.State, req.Action)
	if err != nil {
		h.logger.Debug("wizard action rejected",
			zap.String("op", op),
			zap.String("action", string(req.Action.Type)),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusUnprocessableEntity, wizardResponse{State: next, Error: err.Error()})
		return
	}

	if next.Step == wizard.StepDone && h.store != nil {
		saved, err := h.store.SaveSolution(r.Context(), next.Solution)
		if err == nil {
			saved, err = h.store.SubmitSolution(r.Context(), saved.ID)
		}
		if err != nil {
			h.respondErrorWithOp(w, storeErrorStatus(err), err.Error(), op)
			return
		}
		next.Solution = saved
	}

	h.writeJSON(w, http.StatusOK, wizardResponse{State: next, Warnings: next.Solution.Warnings()})
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
