package social

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/notify"
	"github.com/oggyb/vibeu-engine/internal/repository"
)

// SendRequest creates a pending friend request from -> to.
//
// Behavior:
//  1. Self, unknown and cross-bracket targets are rejected.
//  2. Fails AlreadyFriends, CooldownActive (after a rejection) or RequestExists
//     (a pending request in this direction) before any quota is used.
//  3. Consumes one unit of the daily request quota.
//  4. Inserts the request; the pending-key index resolves concurrent sends.
//  5. Notifies the recipient.
func (s *Service) SendRequest(ctx context.Context, fromID, toID string) (res *RequestResult, err error) {
	defer s.observe("send_request", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	s.appCtx.Logger.Debug("SendRequest called", "from", fromID, "to", toID)

	from, _, err := s.pair(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.Friendships.Exists(ctx, fromID, toID)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	if friends {
		return nil, svcErr.AlreadyFriends()
	}

	cd, err := s.store.Cooldowns.Active(ctx, fromID, toID, string(domain.ActionRequest), s.appCtx.Now())
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	if cd != nil {
		return nil, svcErr.CooldownActive(cd.ExpiresAt)
	}

	pending, err := s.store.Requests.HasPending(ctx, fromID, toID)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	if pending {
		return nil, svcErr.RequestExists()
	}

	decision, err := s.consume(ctx, from, domain.ActionRequest)
	if err != nil {
		return nil, err
	}

	req := db.Request{ID: s.appCtx.NewID(), FromUserID: fromID, ToUserID: toID, CreatedAt: s.appCtx.Now()}
	inserted, err := s.store.Requests.Create(ctx, &req)
	if err != nil {
		s.appCtx.Logger.Error("request insert failed", "from", fromID, "to", toID, "err", err)
		return nil, svcErr.Normalize(err)
	}
	if !inserted {
		return nil, svcErr.RequestExists()
	}

	s.appCtx.Notifier.Notify(ctx, notify.Intent{
		UserID: toID,
		Type:   domain.NotifyRequestReceived,
		Payload: map[string]any{
			"request_id":        req.ID,
			"from_user_id":      fromID,
			"from_display_name": from.DisplayName,
		},
		CreatedAt: req.CreatedAt,
	})

	return &RequestResult{RequestID: req.ID, Remaining: decision.Remaining, ResetAt: decision.ResetAt}, nil
}

// loadRequest fetches a request and checks that actorID may act on it.
// recipient selects which side is allowed: the receiver (accept/reject) or
// the sender (cancel).
func (s *Service) loadRequest(ctx context.Context, requestID, actorID string, recipient bool) (*db.Request, error) {
	if requestID == "" {
		return nil, svcErr.InvalidArgument("request id is required")
	}
	req, err := s.store.Requests.Get(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("request")
	}
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	owner := req.FromUserID
	if recipient {
		owner = req.ToUserID
	}
	if owner != actorID {
		return nil, svcErr.NotAuthorized()
	}
	if req.Status.Terminal() {
		return nil, svcErr.RequestAlreadyProcessed()
	}
	return req, nil
}

// AcceptRequest accepts a pending request addressed to actorID and creates
// the friendship in the same transaction.
//
// Exactly one of several concurrent accepts wins; the rest observe
// RequestAlreadyProcessed. The requester is notified.
func (s *Service) AcceptRequest(ctx context.Context, requestID, actorID string) (res *AcceptResult, err error) {
	defer s.observe("accept_request", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	req, err := s.loadRequest(ctx, requestID, actorID, true)
	if err != nil {
		return nil, err
	}

	// Birthdays can move a user across the boundary while a request waits.
	requester, recipient, err := s.pair(ctx, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}

	now := s.appCtx.Now()
	var friendship *db.Friendship
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Requests.Transition(ctx, req.ID, db.RequestAccepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return svcErr.RequestAlreadyProcessed()
		}
		friendship, err = tx.Friendships.CreateOrGet(ctx, s.appCtx.NewID(), req.FromUserID, req.ToUserID, now)
		return err
	})
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	s.appCtx.Notifier.Notify(ctx, notify.Intent{
		UserID: req.FromUserID,
		Type:   domain.NotifyRequestAccepted,
		Payload: map[string]any{
			"request_id":      req.ID,
			"friendship_id":   friendship.ID,
			"by_user_id":      recipient.ID,
			"by_display_name": recipient.DisplayName,
		},
		CreatedAt: now,
	})
	s.appCtx.Logger.Info("friend request accepted", "request_id", req.ID, "friendship_id", friendship.ID)

	return &AcceptResult{FriendshipID: friendship.ID, Friend: s.summary(*requester)}, nil
}

// RejectRequest rejects a pending request addressed to actorID. The sender
// may not request the same recipient again until the reject cooldown ends.
func (s *Service) RejectRequest(ctx context.Context, requestID, actorID string) (err error) {
	defer s.observe("reject_request", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	req, err := s.loadRequest(ctx, requestID, actorID, true)
	if err != nil {
		return err
	}

	now := s.appCtx.Now()
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Requests.Transition(ctx, req.ID, db.RequestRejected, now)
		if err != nil {
			return err
		}
		if !ok {
			return svcErr.RequestAlreadyProcessed()
		}
		return tx.Cooldowns.Upsert(ctx, db.Cooldown{
			UserID:       req.FromUserID,
			TargetUserID: req.ToUserID,
			ActionType:   string(domain.ActionRequest),
			ExpiresAt:    now.Add(s.appCtx.Config.Engine.RejectCooldown),
		})
	})
	if err != nil {
		return svcErr.Normalize(err)
	}
	return nil
}

// CancelRequest withdraws a pending request sent by actorID. No cooldown.
func (s *Service) CancelRequest(ctx context.Context, requestID, actorID string) (err error) {
	defer s.observe("cancel_request", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	req, err := s.loadRequest(ctx, requestID, actorID, false)
	if err != nil {
		return err
	}

	ok, err := s.store.Requests.Transition(ctx, req.ID, db.RequestCancelled, s.appCtx.Now())
	if err != nil {
		return svcErr.Normalize(err)
	}
	if !ok {
		return svcErr.RequestAlreadyProcessed()
	}
	return nil
}

// ReceivedRequests lists pending requests addressed to userID, newest first.
func (s *Service) ReceivedRequests(ctx context.Context, userID string) ([]RequestView, error) {
	return s.pendingRequests(ctx, userID, true)
}

// SentRequests lists pending requests sent by userID, newest first.
func (s *Service) SentRequests(ctx context.Context, userID string) ([]RequestView, error) {
	return s.pendingRequests(ctx, userID, false)
}

func (s *Service) pendingRequests(ctx context.Context, userID string, received bool) ([]RequestView, error) {
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var reqs []db.Request
	if received {
		reqs, err = s.store.Requests.PendingTo(ctx, userID)
	} else {
		reqs, err = s.store.Requests.PendingFrom(ctx, userID)
	}
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	counterpart := func(r db.Request) string {
		if received {
			return r.FromUserID
		}
		return r.ToUserID
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, counterpart(r))
	}
	users, err := s.visible(ctx, user, ids)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	out := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		u, ok := users[counterpart(r)]
		if !ok {
			continue
		}
		out = append(out, RequestView{ID: r.ID, Status: string(r.Status), CreatedAt: r.CreatedAt, User: s.summary(u)})
	}
	return out, nil
}
