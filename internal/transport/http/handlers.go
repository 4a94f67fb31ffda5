package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quiz-economy-service/internal/domain"
)

var errBadRequest = errors.New("bad request")

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	fail(w, status, msg)
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadRequest
	}
	return id, nil
}

func pathPlayer(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		return uuid.Nil, errBadRequest
	}
	return id, nil
}

// caller is set by RequireAuth; every handler here sits behind it.
func caller(r *http.Request) uuid.UUID {
	id, _ := PlayerFromContext(r.Context())
	return id
}

func (h *Handler) recordHistory(w http.ResponseWriter, r *http.Request) {
	var in domain.HistoryInput
	if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	history, err := h.histories.Record(r.Context(), caller(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusCreated, history)
}

func (h *Handler) listHistories(w http.ResponseWriter, r *http.Request) {
	histories, err := h.histories.List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, histories)
}

func (h *Handler) listPlayerHistories(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathPlayer(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid player id")
		return
	}
	histories, err := h.histories.ListByPlayer(r.Context(), playerID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, histories)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	history, err := h.histories.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, history)
}

func (h *Handler) amendHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	var in domain.HistoryInput
	if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	history, err := h.histories.Amend(r.Context(), id, caller(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, history)
}

func (h *Handler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.histories.Delete(r.Context(), id, caller(r)); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]int64{"id": id})
}

type collectRequest struct {
	QuizID int64 `json:"quizId"`
}

func (h *Handler) collectReward(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := decode(r, &req); err != nil || req.QuizID <= 0 {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reward, err := h.rewards.Collect(r.Context(), req.QuizID, caller(r))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusCreated, reward)
}

func (h *Handler) listRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, rewards)
}

func (h *Handler) listPlayerRewards(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathPlayer(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid player id")
		return
	}
	rewards, err := h.rewards.ListByPlayer(r.Context(), playerID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, rewards)
}

func (h *Handler) getReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	reward, err := h.rewards.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, reward)
}

func (h *Handler) updateReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	var upd domain.RewardUpdate
	if err := decode(r, &upd); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reward, err := h.rewards.Update(r.Context(), id, caller(r), upd)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, reward)
}

func (h *Handler) deleteReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.rewards.Delete(r.Context(), id, caller(r)); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) listListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.exchange.Listings(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, listings)
}

func (h *Handler) getListing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}
	listing, err := h.exchange.Listing(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, listing)
}

type sellRequest struct {
	RewardID int64 `json:"rewardId"`
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := decode(r, &req); err != nil || req.RewardID <= 0 {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	listing, err := h.exchange.Sell(r.Context(), req.RewardID, caller(r))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusCreated, listing)
}

type buyRequest struct {
	ListingID int64 `json:"listingId"`
}

func (h *Handler) buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := decode(r, &req); err != nil || req.ListingID <= 0 {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reward, err := h.exchange.Buy(r.Context(), req.ListingID, caller(r))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusCreated, reward)
}

type balanceResponse struct {
	PlayerID uuid.UUID `json:"playerId"`
	Balance  int64     `json:"balance"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	playerID := caller(r)
	balance, err := h.exchange.Balance(r.Context(), playerID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, http.StatusOK, balanceResponse{PlayerID: playerID, Balance: balance})
}
