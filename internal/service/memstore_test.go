package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"RosterRoyalsServer/internal/domain"
)

// memStore is an in-memory stand-in for the relationship and group tables. It
// applies the same rules the SQL stores enforce so service flows can be run
// end to end.
type memStore struct {
	mu sync.Mutex

	users         map[string]domain.User
	requests      map[string]domain.FriendRequest
	friendships   map[[2]string]bool
	groups        map[string]domain.BettingGroup
	members       map[string][]string
	invites       map[string]domain.GroupInvite
	notifications []domain.Notification
	seq           int
}

func newMemStore(users ...domain.User) *memStore {
	m := &memStore{
		users:       map[string]domain.User{},
		requests:    map[string]domain.FriendRequest{},
		friendships: map[[2]string]bool{},
		groups:      map[string]domain.BettingGroup{},
		members:     map[string][]string{},
		invites:     map[string]domain.GroupInvite{},
	}
	for _, u := range users {
		if u.Status == "" {
			u.Status = domain.UserStatusActive
		}
		m.users[u.ID] = u
	}
	return m
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memStore) insertNotification(n domain.Notification) domain.Notification {
	n.ID = m.nextID("n")
	n.CreatedAt = time.Unix(int64(m.seq), 0)
	m.notifications = append(m.notifications, n)
	return n
}

func (m *memStore) deleteActionNotifications(userID string, typ domain.NotificationType, ref string) {
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == typ && n.RequiresAction && n.ReferenceID == ref {
			continue
		}
		kept = append(kept, n)
	}
	m.notifications = kept
}

func (m *memStore) notificationsFor(userID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// friend requests

func (m *memStore) findRequest(from, to string) (domain.FriendRequest, bool) {
	for _, r := range m.requests {
		if r.FromUserID == from && r.ToUserID == to {
			return r, true
		}
	}
	return domain.FriendRequest{}, false
}

func (m *memStore) GetRequest(_ context.Context, from, to string) (domain.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.findRequest(from, to)
	if !ok {
		return domain.FriendRequest{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memStore) GetRequestByID(_ context.Context, id string) (domain.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return domain.FriendRequest{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memStore) AreFriends(_ context.Context, a, b string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.friendships[[2]string{a, b}], nil
}

func (m *memStore) CreateRequest(_ context.Context, req domain.FriendRequest, notify domain.Notification) (domain.FriendRequest, domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.findRequest(req.FromUserID, req.ToUserID); ok {
		if r.Status != domain.RequestRejected {
			return domain.FriendRequest{}, domain.Notification{}, domain.Conflict("friend request already sent")
		}
		delete(m.requests, r.ID)
	}
	req.Status = domain.RequestPending
	req.CreatedAt = time.Unix(int64(m.seq), 0)
	m.requests[req.ID] = req
	return req, m.insertNotification(notify), nil
}

func (m *memStore) ResolveRequest(_ context.Context, res domain.FriendRequestResolution) (domain.FriendRequest, *domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[res.RequestID]
	if !ok || r.ToUserID != res.AddresseeID || r.Status != domain.RequestPending {
		return domain.FriendRequest{}, nil, domain.NotFound("friend request not found")
	}
	r.Status = res.Status
	when := res.RespondedAt
	r.RespondedAt = &when
	m.requests[r.ID] = r
	if r.Status == domain.RequestAccepted {
		m.friendships[[2]string{r.FromUserID, r.ToUserID}] = true
		m.friendships[[2]string{r.ToUserID, r.FromUserID}] = true
	}
	var created *domain.Notification
	if res.Notify != nil {
		n := m.insertNotification(*res.Notify)
		created = &n
	}
	m.deleteActionNotifications(r.ToUserID, domain.NotificationFriendRequest, r.ID)
	return r, created, nil
}

func (m *memStore) RemoveFriendship(_ context.Context, a, b string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.friendships, [2]string{a, b})
	delete(m.friendships, [2]string{b, a})
	for id, r := range m.requests {
		if (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a) {
			m.deleteActionNotifications(r.ToUserID, domain.NotificationFriendRequest, id)
			delete(m.requests, id)
		}
	}
	return nil
}

func (m *memStore) ListFriends(_ context.Context, userID string) ([]domain.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.UserSummary{}
	for pair := range m.friendships {
		if pair[0] == userID {
			out = append(out, m.users[pair[1]].Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memStore) ListIncoming(_ context.Context, userID string) ([]domain.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.FriendRequest{}
	for _, r := range m.requests {
		if r.ToUserID == userID && r.Status == domain.RequestPending {
			r.From = m.users[r.FromUserID].Summary()
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) friendshipRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.friendships)
}

func (m *memStore) requestRows() []domain.FriendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FriendRequest
	for _, r := range m.requests {
		out = append(out, r)
	}
	return out
}

// groups

func (m *memStore) groupView(id string) domain.BettingGroup {
	g := m.groups[id]
	g.President = m.users[g.PresidentID].Summary()
	g.Members = []domain.UserSummary{}
	for _, uid := range m.members[id] {
		g.Members = append(g.Members, m.users[uid].Summary())
	}
	return g
}

func (m *memStore) isMember(groupID, userID string) bool {
	for _, uid := range m.members[groupID] {
		if uid == userID {
			return true
		}
	}
	return false
}

func (m *memStore) addMember(groupID, userID string) bool {
	if m.isMember(groupID, userID) {
		return false
	}
	m.members[groupID] = append(m.members[groupID], userID)
	return true
}

func (m *memStore) CreateGroup(_ context.Context, presidentID string, attrs domain.GroupAttrs) (domain.BettingGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("g")
	m.groups[id] = domain.BettingGroup{
		ID:          id,
		Name:        attrs.Name,
		Description: attrs.Description,
		Sports:      attrs.Sports,
		PresidentID: presidentID,
	}
	m.addMember(id, presidentID)
	return m.groupView(id), nil
}

func (m *memStore) GetGroup(_ context.Context, id string) (domain.BettingGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return domain.BettingGroup{}, domain.ErrNotFound
	}
	return m.groupView(id), nil
}

func (m *memStore) ListGroupsForMember(_ context.Context, userID string) ([]domain.BettingGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.BettingGroup{}
	for id := range m.groups {
		if m.isMember(id, userID) {
			out = append(out, m.groupView(id))
		}
	}
	return out, nil
}

func (m *memStore) AddMember(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addMember(groupID, userID), nil
}

func (m *memStore) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isMember(groupID, userID), nil
}

func (m *memStore) findInvite(groupID, userID string) (domain.GroupInvite, bool) {
	for _, inv := range m.invites {
		if inv.GroupID == groupID && inv.ToUserID == userID {
			return inv, true
		}
	}
	return domain.GroupInvite{}, false
}

func (m *memStore) GetInvite(_ context.Context, groupID, userID string) (domain.GroupInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.findInvite(groupID, userID)
	if !ok {
		return domain.GroupInvite{}, domain.ErrNotFound
	}
	return inv, nil
}

func (m *memStore) GetInviteByID(_ context.Context, id string) (domain.GroupInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[id]
	if !ok {
		return domain.GroupInvite{}, domain.ErrNotFound
	}
	return inv, nil
}

func (m *memStore) CreateInvite(_ context.Context, inv domain.GroupInvite, notify domain.Notification) (domain.InviteReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.findInvite(inv.GroupID, inv.ToUserID); ok {
		if !old.Status.Terminal() {
			return domain.InviteReceipt{}, domain.Conflict("user already has a pending invite to this group")
		}
		delete(m.invites, old.ID)
	}
	inv.Status = domain.RequestPending
	m.invites[inv.ID] = inv
	return domain.InviteReceipt{Invite: inv, Notification: m.insertNotification(notify)}, nil
}

func (m *memStore) ResolveInvite(_ context.Context, res domain.GroupInviteResolution) (domain.GroupInvite, *domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[res.InviteID]
	if !ok || inv.ToUserID != res.AddresseeID || inv.Status != domain.RequestPending {
		return domain.GroupInvite{}, nil, domain.NotFound("group invite not found")
	}
	inv.Status = res.Status
	when := res.RespondedAt
	inv.RespondedAt = &when
	m.invites[inv.ID] = inv
	if inv.Status == domain.RequestAccepted {
		m.addMember(inv.GroupID, inv.ToUserID)
	}
	var created *domain.Notification
	if res.Notify != nil {
		n := m.insertNotification(*res.Notify)
		created = &n
	}
	m.deleteActionNotifications(inv.ToUserID, domain.NotificationGroupInvite, inv.ID)
	return inv, created, nil
}

// notifications

func (m *memStore) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	out := m.notificationsFor(userID)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) MarkAllReadAndSweep(_ context.Context, userID string) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var marked, swept int64
	kept := m.notifications[:0]
	for _, n := range m.notifications {
		if n.UserID == userID {
			if !n.IsRead {
				n.IsRead = true
				marked++
			}
			if !n.RequiresAction {
				swept++
				continue
			}
		}
		kept = append(kept, n)
	}
	m.notifications = kept
	return marked, swept, nil
}

type recordingPusher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (p *recordingPusher) Push(_ context.Context, n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func sequentialIDs(prefix string) func() string {
	var i int
	return func() string {
		i++
		return fmt.Sprintf("%s-%d", prefix, i)
	}
}
