package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/service/discovery"
)

func modeParam(r *http.Request) (domain.Mode, error) {
	m, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		return "", svcErr.InvalidArgument(err.Error())
	}
	return m, nil
}

func pathParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", svcErr.InvalidArgument(name + " is required")
	}
	return v, nil
}

// --- discovery ---

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeError(w, r, svcErr.InvalidArgument("limit must be an integer"))
			return
		}
	}

	page, err := h.discovery.Feed(r.Context(), discovery.FeedRequest{
		UserID: CallerFrom(r.Context()),
		Mode:   mode,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) trending(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	profiles, err := h.discovery.Trending(r.Context(), CallerFrom(r.Context()), mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(profiles))
}

func (h *Handler) spotlight(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	profiles, err := h.discovery.Spotlight(r.Context(), CallerFrom(r.Context()), mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(profiles))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.discovery.Profile(r.Context(), CallerFrom(r.Context()), id, mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- likes ---

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.social.Like(r.Context(), CallerFrom(r.Context()), req.TargetUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) receivedLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := h.social.ReceivedLikes(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(likes))
}

// --- requests ---

func (h *Handler) sendRequest(w http.ResponseWriter, r *http.Request) {
	var req friendRequestRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.social.SendRequest(r.Context(), CallerFrom(r.Context()), req.ToUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) receivedRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.social.ReceivedRequests(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(reqs))
}

func (h *Handler) sentRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.social.SentRequests(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(reqs))
}

func (h *Handler) acceptRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.social.AcceptRequest(r.Context(), id, CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.social.RejectRequest(r.Context(), id, CallerFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.social.CancelRequest(r.Context(), id, CallerFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- friends ---

func (h *Handler) friends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.social.Friends(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(friends))
}

func (h *Handler) removeFriendship(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "friendshipID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.social.RemoveFriendship(r.Context(), id, CallerFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFriendshipByUser(w http.ResponseWriter, r *http.Request) {
	other, err := pathParam(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.social.RemoveFriendshipByParticipants(r.Context(), CallerFrom(r.Context()), other); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- favorites ---

func (h *Handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fav, err := h.social.AddFavorite(r.Context(), CallerFrom(r.Context()), req.TargetUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (h *Handler) favorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.social.Favorites(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(favs))
}

func (h *Handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "favoriteID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.social.RemoveFavorite(r.Context(), CallerFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- skips & reports ---

func (h *Handler) skip(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	expires, err := h.social.Skip(r.Context(), CallerFrom(r.Context()), req.TargetUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, skipResponse{TargetUserID: req.TargetUserID, ExpiresAt: expires.Format(time.RFC3339)})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.social.Report(r.Context(), CallerFrom(r.Context()), req.ReportedUserID, req.Reason, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
