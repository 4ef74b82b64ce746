package httpapi

import (
	"net/http"

	"RosterRoyalsServer/internal/domain"
)

// orEmpty keeps list endpoints from encoding null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.friendsSvc.List(r.Context(), u.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, orEmpty(out))
}

func (a *api) handleFriendsIncoming(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.friendsSvc.Incoming(r.Context(), u.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, orEmpty(out))
}

type userIDRequest struct {
	UserID string `json:"user_id"`
}

func (a *api) handleFriendsSendRequest(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req userIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	toID, err := parseUUIDField(req.UserID, "user_id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if _, err := a.friendsSvc.SendRequest(r.Context(), u, toID); err != nil {
		a.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Friend request sent")
}

type respondRequest struct {
	Action string `json:"action"`
}

func (a *api) handleFriendsRespond(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	fr, err := a.friendsSvc.Respond(r.Context(), u, id, req.Action)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Friend request "+string(fr.Status))
}

func (a *api) handleFriendsRemove(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	otherID, err := uuidParam(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.RemoveFriend(r.Context(), u, otherID); err != nil {
		a.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Friend removed")
}
