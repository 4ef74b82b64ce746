package httpapi

import (
	"net/http"

	"RosterRoyalsServer/internal/domain"
)

func (a *api) handleGroupsList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.groupsSvc.List(r.Context(), u.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, orEmpty(out))
}

type createGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Sports      []string `json:"sports"`
}

func (a *api) handleGroupsCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req createGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	g, err := a.groupsSvc.Create(r.Context(), u, domain.GroupAttrs{
		Name:        req.Name,
		Description: req.Description,
		Sports:      req.Sports,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, g)
}

func (a *api) handleGroupsGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentUser(r.Context()); !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := uuidParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	g, err := a.groupsSvc.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, g)
}

// groupTarget reads the {id} path param and the user_id body shared by the
// member and invite endpoints.
func groupTarget(w http.ResponseWriter, r *http.Request) (groupID, userID string, ok bool) {
	groupID, err := uuidParam(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return "", "", false
	}
	var req userIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadJSON(w, err)
		return "", "", false
	}
	userID, err = parseUUIDField(req.UserID, "user_id")
	if err != nil {
		WriteDomainError(w, err)
		return "", "", false
	}
	return groupID, userID, true
}

func (a *api) handleGroupsAddMember(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	groupID, userID, ok := groupTarget(w, r)
	if !ok {
		return
	}

	if err := a.groupsSvc.AddMember(r.Context(), u, groupID, userID); err != nil {
		a.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Member added successfully")
}

type inviteResponse struct {
	Message        string `json:"message"`
	InviteID       string `json:"invite_id"`
	NotificationID string `json:"notification_id"`
}

func (a *api) handleGroupsInvite(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	groupID, userID, ok := groupTarget(w, r)
	if !ok {
		return
	}

	receipt, err := a.groupsSvc.Invite(r.Context(), u, groupID, userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, inviteResponse{
		Message:        "Invite sent successfully",
		InviteID:       receipt.Invite.ID,
		NotificationID: receipt.Notification.ID,
	})
}

func (a *api) handleGroupInviteRespond(w http.ResponseWriter, r *http.Request) {
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

	inv, err := a.groupsSvc.RespondInvite(r.Context(), u, id, req.Action)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Group invite "+string(inv.Status))
}
