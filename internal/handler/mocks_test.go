package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/middleware"
	"essay-hub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, name, email, password string) (string, string, *domain.User, error)
	LoginFunc                func(ctx context.Context, email, password string) (string, string, *domain.User, error)
	ChangePasswordFunc       func(ctx context.Context, userID, currentPassword, newPassword string) error
	GetGoogleLoginURLFunc    func(state string) string
	HandleGoogleCallbackFunc func(ctx context.Context, code, receivedState, expectedState string) (string, string, *domain.User, error)
	ValidateJWTFunc          func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	RefreshTokenFunc         func(ctx context.Context, refreshTokenString string) (string, string, error)
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (string, string, *domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	panic("MockAuthService.RegisterFunc not implemented")
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	panic("MockAuthService.LoginFunc not implemented")
}
func (m *MockAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	panic("MockAuthService.ChangePasswordFunc not implemented")
}
func (m *MockAuthService) GetGoogleLoginURL(state string) string {
	if m.GetGoogleLoginURLFunc != nil {
		return m.GetGoogleLoginURLFunc(state)
	}
	panic("MockAuthService.GetGoogleLoginURLFunc not implemented")
}
func (m *MockAuthService) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (string, string, *domain.User, error) {
	if m.HandleGoogleCallbackFunc != nil {
		return m.HandleGoogleCallbackFunc(ctx, code, receivedState, expectedState)
	}
	panic("MockAuthService.HandleGoogleCallbackFunc not implemented")
}
func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	panic("MockAuthService.ValidateJWTFunc not implemented")
}
func (m *MockAuthService) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	panic("MockAuthService.CreateJWT not implemented")
}
func (m *MockAuthService) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshTokenString)
	}
	panic("MockAuthService.RefreshTokenFunc not implemented")
}
func (m *MockAuthService) EncryptToken(token string) (string, error) {
	panic("MockAuthService.EncryptToken not implemented")
}
func (m *MockAuthService) DecryptToken(encryptedToken string) (string, error) {
	panic("MockAuthService.DecryptToken not implemented")
}

type MockUserService struct {
	GetMeFunc         func(ctx context.Context, userID string) (*domain.User, error)
	GetUserFunc       func(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfileFunc func(ctx context.Context, userID string, update service.ProfileUpdate) (*domain.User, error)
}

func (m *MockUserService) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx, userID)
	}
	panic("MockUserService.GetMeFunc not implemented")
}
func (m *MockUserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	panic("MockUserService.GetUserFunc not implemented")
}
func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, update service.ProfileUpdate) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, update)
	}
	panic("MockUserService.UpdateProfileFunc not implemented")
}

type MockEssayService struct {
	UploadEssayFunc          func(ctx context.Context, userID, title, fileName, content string) (*domain.Essay, error)
	ReevaluateEssayFunc      func(ctx context.Context, userID, essayID string) (*domain.Essay, error)
	GetEssayFunc             func(ctx context.Context, userID, essayID string) (*domain.Essay, error)
	ListMyEssaysFunc         func(ctx context.Context, userID string, limit int) ([]*domain.Essay, error)
	DeleteEssayFunc          func(ctx context.Context, userID, essayID string) error
	GetStatementsFunc        func(ctx context.Context, userID, essayID string) (*service.StatementsResult, error)
	RegenerateStatementsFunc func(ctx context.Context, userID, essayID string) (*service.StatementsResult, error)
}

func (m *MockEssayService) UploadEssay(ctx context.Context, userID, title, fileName, content string) (*domain.Essay, error) {
	if m.UploadEssayFunc != nil {
		return m.UploadEssayFunc(ctx, userID, title, fileName, content)
	}
	panic("MockEssayService.UploadEssayFunc not implemented")
}
func (m *MockEssayService) ReevaluateEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
	if m.ReevaluateEssayFunc != nil {
		return m.ReevaluateEssayFunc(ctx, userID, essayID)
	}
	panic("MockEssayService.ReevaluateEssayFunc not implemented")
}
func (m *MockEssayService) GetEssay(ctx context.Context, userID, essayID string) (*domain.Essay, error) {
	if m.GetEssayFunc != nil {
		return m.GetEssayFunc(ctx, userID, essayID)
	}
	panic("MockEssayService.GetEssayFunc not implemented")
}
func (m *MockEssayService) ListMyEssays(ctx context.Context, userID string, limit int) ([]*domain.Essay, error) {
	if m.ListMyEssaysFunc != nil {
		return m.ListMyEssaysFunc(ctx, userID, limit)
	}
	panic("MockEssayService.ListMyEssaysFunc not implemented")
}
func (m *MockEssayService) DeleteEssay(ctx context.Context, userID, essayID string) error {
	if m.DeleteEssayFunc != nil {
		return m.DeleteEssayFunc(ctx, userID, essayID)
	}
	panic("MockEssayService.DeleteEssayFunc not implemented")
}
func (m *MockEssayService) GetStatements(ctx context.Context, userID, essayID string) (*service.StatementsResult, error) {
	if m.GetStatementsFunc != nil {
		return m.GetStatementsFunc(ctx, userID, essayID)
	}
	panic("MockEssayService.GetStatementsFunc not implemented")
}
func (m *MockEssayService) RegenerateStatements(ctx context.Context, userID, essayID string) (*service.StatementsResult, error) {
	if m.RegenerateStatementsFunc != nil {
		return m.RegenerateStatementsFunc(ctx, userID, essayID)
	}
	panic("MockEssayService.RegenerateStatementsFunc not implemented")
}

type MockFriendService struct {
	SendRequestFunc         func(ctx context.Context, senderID, receiverID string) (*domain.FriendRequestResult, error)
	AcceptRequestFunc       func(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)
	RejectRequestFunc       func(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)
	CancelRequestFunc       func(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error)
	RemoveFriendFunc        func(ctx context.Context, userID, friendID string) error
	ListFriendsFunc         func(ctx context.Context, userID string) ([]*domain.User, error)
	ListPendingRequestsFunc func(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	ListSentRequestsFunc    func(ctx context.Context, userID string) ([]*domain.FriendRequest, error)
	GetStatusFunc           func(ctx context.Context, userID, otherID string) (domain.FriendshipStatus, error)
	SuggestionsFunc         func(ctx context.Context, userID string, limit int) ([]*domain.User, error)
}

func (m *MockFriendService) SendRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequestResult, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, senderID, receiverID)
	}
	panic("MockFriendService.SendRequestFunc not implemented")
}
func (m *MockFriendService) AcceptRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error) {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, requestID, userID)
	}
	panic("MockFriendService.AcceptRequestFunc not implemented")
}
func (m *MockFriendService) RejectRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error) {
	if m.RejectRequestFunc != nil {
		return m.RejectRequestFunc(ctx, requestID, userID)
	}
	panic("MockFriendService.RejectRequestFunc not implemented")
}
func (m *MockFriendService) CancelRequest(ctx context.Context, requestID, userID string) (*domain.FriendRequest, error) {
	if m.CancelRequestFunc != nil {
		return m.CancelRequestFunc(ctx, requestID, userID)
	}
	panic("MockFriendService.CancelRequestFunc not implemented")
}
func (m *MockFriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if m.RemoveFriendFunc != nil {
		return m.RemoveFriendFunc(ctx, userID, friendID)
	}
	panic("MockFriendService.RemoveFriendFunc not implemented")
}
func (m *MockFriendService) ListFriends(ctx context.Context, userID string) ([]*domain.User, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	panic("MockFriendService.ListFriendsFunc not implemented")
}
func (m *MockFriendService) ListPendingRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	if m.ListPendingRequestsFunc != nil {
		return m.ListPendingRequestsFunc(ctx, userID)
	}
	panic("MockFriendService.ListPendingRequestsFunc not implemented")
}
func (m *MockFriendService) ListSentRequests(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	if m.ListSentRequestsFunc != nil {
		return m.ListSentRequestsFunc(ctx, userID)
	}
	panic("MockFriendService.ListSentRequestsFunc not implemented")
}
func (m *MockFriendService) GetStatus(ctx context.Context, userID, otherID string) (domain.FriendshipStatus, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, userID, otherID)
	}
	panic("MockFriendService.GetStatusFunc not implemented")
}
func (m *MockFriendService) Suggestions(ctx context.Context, userID string, limit int) ([]*domain.User, error) {
	if m.SuggestionsFunc != nil {
		return m.SuggestionsFunc(ctx, userID, limit)
	}
	panic("MockFriendService.SuggestionsFunc not implemented")
}

type MockPostService struct {
	CreatePostFunc    func(ctx context.Context, authorID, essayID, caption string, visibility domain.Visibility) (*domain.Post, error)
	GetPostFunc       func(ctx context.Context, viewerID, postID string) (*domain.Post, error)
	FeedFunc          func(ctx context.Context, viewerID string, limit, offset int) ([]*domain.Post, error)
	ListUserPostsFunc func(ctx context.Context, viewerID, authorID string, limit, offset int) ([]*domain.Post, error)
	DeletePostFunc    func(ctx context.Context, userID, postID string) error
	LikeFunc          func(ctx context.Context, userID, postID string) (*domain.Post, error)
	UnlikeFunc        func(ctx context.Context, userID, postID string) (*domain.Post, error)
	ShareFunc         func(ctx context.Context, userID, postID string) (*domain.Post, error)
	AddCommentFunc    func(ctx context.Context, userID, postID, text string) (*domain.Comment, error)
	ListCommentsFunc  func(ctx context.Context, viewerID, postID string, limit int) ([]*domain.Comment, error)
	DeleteCommentFunc func(ctx context.Context, userID, postID, commentID string) error
}

func (m *MockPostService) CreatePost(ctx context.Context, authorID, essayID, caption string, visibility domain.Visibility) (*domain.Post, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, authorID, essayID, caption, visibility)
	}
	panic("MockPostService.CreatePostFunc not implemented")
}
func (m *MockPostService) GetPost(ctx context.Context, viewerID, postID string) (*domain.Post, error) {
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, viewerID, postID)
	}
	panic("MockPostService.GetPostFunc not implemented")
}
func (m *MockPostService) Feed(ctx context.Context, viewerID string, limit, offset int) ([]*domain.Post, error) {
	if m.FeedFunc != nil {
		return m.FeedFunc(ctx, viewerID, limit, offset)
	}
	panic("MockPostService.FeedFunc not implemented")
}
func (m *MockPostService) ListUserPosts(ctx context.Context, viewerID, authorID string, limit, offset int) ([]*domain.Post, error) {
	if m.ListUserPostsFunc != nil {
		return m.ListUserPostsFunc(ctx, viewerID, authorID, limit, offset)
	}
	panic("MockPostService.ListUserPostsFunc not implemented")
}
func (m *MockPostService) DeletePost(ctx context.Context, userID, postID string) error {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(ctx, userID, postID)
	}
	panic("MockPostService.DeletePostFunc not implemented")
}
func (m *MockPostService) Like(ctx context.Context, userID, postID string) (*domain.Post, error) {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, userID, postID)
	}
	panic("MockPostService.LikeFunc not implemented")
}
func (m *MockPostService) Unlike(ctx context.Context, userID, postID string) (*domain.Post, error) {
	if m.UnlikeFunc != nil {
		return m.UnlikeFunc(ctx, userID, postID)
	}
	panic("MockPostService.UnlikeFunc not implemented")
}
func (m *MockPostService) Share(ctx context.Context, userID, postID string) (*domain.Post, error) {
	if m.ShareFunc != nil {
		return m.ShareFunc(ctx, userID, postID)
	}
	panic("MockPostService.ShareFunc not implemented")
}
func (m *MockPostService) AddComment(ctx context.Context, userID, postID, text string) (*domain.Comment, error) {
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(ctx, userID, postID, text)
	}
	panic("MockPostService.AddCommentFunc not implemented")
}
func (m *MockPostService) ListComments(ctx context.Context, viewerID, postID string, limit int) ([]*domain.Comment, error) {
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, viewerID, postID, limit)
	}
	panic("MockPostService.ListCommentsFunc not implemented")
}
func (m *MockPostService) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	if m.DeleteCommentFunc != nil {
		return m.DeleteCommentFunc(ctx, userID, postID, commentID)
	}
	panic("MockPostService.DeleteCommentFunc not implemented")
}

type MockNotificationService struct {
	NotifyFunc      func(ctx context.Context, userID string, typ domain.NotificationType, data map[string]interface{})
	ListFunc        func(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, int64, error)
	UnreadCountFunc func(ctx context.Context, userID string) (int64, error)
	MarkReadFunc    func(ctx context.Context, userID, notificationID string) error
	MarkAllReadFunc func(ctx context.Context, userID string) (int64, error)
	DeleteFunc      func(ctx context.Context, userID, notificationID string) error
	SubscribeFunc   func(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error)
}

func (m *MockNotificationService) Notify(ctx context.Context, userID string, typ domain.NotificationType, data map[string]interface{}) {
	if m.NotifyFunc != nil {
		m.NotifyFunc(ctx, userID, typ, data)
		return
	}
	panic("MockNotificationService.NotifyFunc not implemented")
}
func (m *MockNotificationService) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit, unreadOnly)
	}
	panic("MockNotificationService.ListFunc not implemented")
}
func (m *MockNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, userID)
	}
	panic("MockNotificationService.UnreadCountFunc not implemented")
}
func (m *MockNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, notificationID)
	}
	panic("MockNotificationService.MarkReadFunc not implemented")
}
func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	panic("MockNotificationService.MarkAllReadFunc not implemented")
}
func (m *MockNotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, notificationID)
	}
	panic("MockNotificationService.DeleteFunc not implemented")
}
func (m *MockNotificationService) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, userID)
	}
	panic("MockNotificationService.SubscribeFunc not implemented")
}

type MockSearchService struct {
	SearchFunc func(ctx context.Context, viewerID, query string) (*service.SearchResult, error)
}

func (m *MockSearchService) Search(ctx context.Context, viewerID, query string) (*service.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, viewerID, query)
	}
	panic("MockSearchService.SearchFunc not implemented")
}

// --- Helpers ---

const (
	testUserID  = "01HGZ8VNRYXS8QKNJV5GRWPWDQ"
	otherUserID = "01HGZ8VNRYXS8QKNJV5GRWPWDR"
	testItemID  = "01HGZ8VNRYXS8QKNJV5GRWPWDS"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

// asUser stands in for middleware.Protected.
func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDKey, userID)
		return c.Next()
	}
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dst), string(body))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body middleware.ErrorResponse
	decodeBody(t, resp, &body)
	return body.Code
}
