package server

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/oggyb/vibeu-engine/internal/app"
	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/service/discovery"
	"github.com/oggyb/vibeu-engine/internal/service/social"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "vibeu.engine.v1.Engine"

// Request messages. UserID is always the authenticated caller.
type (
	FeedRequest struct {
		UserID string `json:"user_id"`
		Mode   string `json:"mode"`
		Cursor string `json:"cursor"`
		Limit  int    `json:"limit"`
	}
	ScopeRequest struct {
		UserID string `json:"user_id"`
		Mode   string `json:"mode"`
	}
	ProfileRequest struct {
		UserID       string `json:"user_id"`
		TargetUserID string `json:"target_user_id"`
		Mode         string `json:"mode"`
	}
	TargetRequest struct {
		UserID       string `json:"user_id"`
		TargetUserID string `json:"target_user_id"`
	}
	CallerRequest struct {
		UserID string `json:"user_id"`
	}
	RequestAction struct {
		UserID    string `json:"user_id"`
		RequestID string `json:"request_id"`
	}
	FriendshipAction struct {
		UserID       string `json:"user_id"`
		FriendshipID string `json:"friendship_id"`
	}
	FavoriteAction struct {
		UserID     string `json:"user_id"`
		FavoriteID string `json:"favorite_id"`
	}
	ReportRequest struct {
		UserID         string `json:"user_id"`
		ReportedUserID string `json:"reported_user_id"`
		Reason         string `json:"reason"`
		Description    string `json:"description"`
	}
)

// Response messages beyond the service result types.
type (
	Empty        struct{}
	ProfileList  struct{ Profiles []discovery.Profile `json:"profiles"` }
	FriendList   struct{ Friends []social.Friend `json:"friends"` }
	RequestList  struct{ Requests []social.RequestView `json:"requests"` }
	LikeList     struct{ Likes []social.ReceivedLike `json:"likes"` }
	FavoriteList struct{ Favorites []social.Favorite `json:"favorites"` }
	SkipResponse struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
)

// Engine adapts the discovery and social services to the gRPC surface.
type Engine struct {
	discovery *discovery.Service
	social    *social.Service
}

// NewEngine wires the services from appCtx.
func NewEngine(appCtx *app.AppContext) *Engine {
	return &Engine{discovery: discovery.NewService(appCtx), social: social.NewService(appCtx)}
}

func parseMode(s string) (domain.Mode, error) {
	m, err := domain.ParseMode(s)
	if err != nil {
		return "", svcErr.InvalidArgument(err.Error())
	}
	return m, nil
}

func (e *Engine) GetDiscoveryFeed(ctx context.Context, in *FeedRequest) (*discovery.FeedPage, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	return e.discovery.Feed(ctx, discovery.FeedRequest{UserID: in.UserID, Mode: mode, Cursor: in.Cursor, Limit: in.Limit})
}

func (e *Engine) GetTrending(ctx context.Context, in *ScopeRequest) (*ProfileList, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	ps, err := e.discovery.Trending(ctx, in.UserID, mode)
	if err != nil {
		return nil, err
	}
	return &ProfileList{Profiles: ps}, nil
}

func (e *Engine) GetSpotlight(ctx context.Context, in *ScopeRequest) (*ProfileList, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	ps, err := e.discovery.Spotlight(ctx, in.UserID, mode)
	if err != nil {
		return nil, err
	}
	return &ProfileList{Profiles: ps}, nil
}

func (e *Engine) GetProfile(ctx context.Context, in *ProfileRequest) (*discovery.Profile, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}
	return e.discovery.Profile(ctx, in.UserID, in.TargetUserID, mode)
}

func (e *Engine) Like(ctx context.Context, in *TargetRequest) (*social.LikeResult, error) {
	return e.social.Like(ctx, in.UserID, in.TargetUserID)
}

func (e *Engine) ReceivedLikes(ctx context.Context, in *CallerRequest) (*LikeList, error) {
	likes, err := e.social.ReceivedLikes(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &LikeList{Likes: likes}, nil
}

func (e *Engine) SendRequest(ctx context.Context, in *TargetRequest) (*social.RequestResult, error) {
	return e.social.SendRequest(ctx, in.UserID, in.TargetUserID)
}

func (e *Engine) AcceptRequest(ctx context.Context, in *RequestAction) (*social.AcceptResult, error) {
	return e.social.AcceptRequest(ctx, in.RequestID, in.UserID)
}

func (e *Engine) RejectRequest(ctx context.Context, in *RequestAction) (*Empty, error) {
	return &Empty{}, e.social.RejectRequest(ctx, in.RequestID, in.UserID)
}

func (e *Engine) CancelRequest(ctx context.Context, in *RequestAction) (*Empty, error) {
	return &Empty{}, e.social.CancelRequest(ctx, in.RequestID, in.UserID)
}

func (e *Engine) ReceivedRequests(ctx context.Context, in *CallerRequest) (*RequestList, error) {
	reqs, err := e.social.ReceivedRequests(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &RequestList{Requests: reqs}, nil
}

func (e *Engine) SentRequests(ctx context.Context, in *CallerRequest) (*RequestList, error) {
	reqs, err := e.social.SentRequests(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &RequestList{Requests: reqs}, nil
}

func (e *Engine) GetFriends(ctx context.Context, in *CallerRequest) (*FriendList, error) {
	friends, err := e.social.Friends(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &FriendList{Friends: friends}, nil
}

func (e *Engine) RemoveFriendship(ctx context.Context, in *FriendshipAction) (*Empty, error) {
	return &Empty{}, e.social.RemoveFriendship(ctx, in.FriendshipID, in.UserID)
}

func (e *Engine) RemoveFriendshipByParticipants(ctx context.Context, in *TargetRequest) (*Empty, error) {
	return &Empty{}, e.social.RemoveFriendshipByParticipants(ctx, in.UserID, in.TargetUserID)
}

func (e *Engine) SkipUser(ctx context.Context, in *TargetRequest) (*SkipResponse, error) {
	expires, err := e.social.Skip(ctx, in.UserID, in.TargetUserID)
	if err != nil {
		return nil, err
	}
	return &SkipResponse{ExpiresAt: expires}, nil
}

func (e *Engine) AddFavorite(ctx context.Context, in *TargetRequest) (*social.Favorite, error) {
	return e.social.AddFavorite(ctx, in.UserID, in.TargetUserID)
}

func (e *Engine) GetFavorites(ctx context.Context, in *CallerRequest) (*FavoriteList, error) {
	favs, err := e.social.Favorites(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	return &FavoriteList{Favorites: favs}, nil
}

func (e *Engine) RemoveFavorite(ctx context.Context, in *FavoriteAction) (*Empty, error) {
	return &Empty{}, e.social.RemoveFavorite(ctx, in.UserID, in.FavoriteID)
}

func (e *Engine) Report(ctx context.Context, in *ReportRequest) (*social.ReportResult, error) {
	return e.social.Report(ctx, in.UserID, in.ReportedUserID, in.Reason, in.Description)
}

// unary builds a MethodDesc the way protoc-gen-go-grpc does, with a typed
// request and svcErr.Map applied to every error.
func unary[Req, Resp any](name string, call func(*Engine, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				out, err := call(srv.(*Engine), ctx, req.(*Req))
				if err != nil {
					return nil, svcErr.Map(err)
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EngineServiceDesc describes vibeu.engine.v1.Engine.
var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetDiscoveryFeed", (*Engine).GetDiscoveryFeed),
		unary("GetTrending", (*Engine).GetTrending),
		unary("GetSpotlight", (*Engine).GetSpotlight),
		unary("GetProfile", (*Engine).GetProfile),
		unary("Like", (*Engine).Like),
		unary("ReceivedLikes", (*Engine).ReceivedLikes),
		unary("SendRequest", (*Engine).SendRequest),
		unary("AcceptRequest", (*Engine).AcceptRequest),
		unary("RejectRequest", (*Engine).RejectRequest),
		unary("CancelRequest", (*Engine).CancelRequest),
		unary("ReceivedRequests", (*Engine).ReceivedRequests),
		unary("SentRequests", (*Engine).SentRequests),
		unary("GetFriends", (*Engine).GetFriends),
		unary("RemoveFriendship", (*Engine).RemoveFriendship),
		unary("RemoveFriendshipByParticipants", (*Engine).RemoveFriendshipByParticipants),
		unary("AddFavorite", (*Engine).AddFavorite),
		unary("GetFavorites", (*Engine).GetFavorites),
		unary("RemoveFavorite", (*Engine).RemoveFavorite),
		unary("SkipUser", (*Engine).SkipUser),
		unary("Report", (*Engine).Report),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vibeu/engine/v1/engine.json",
}
