package service

import (
	"context"
	"time"

	"essay-hub/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// --- MockEssayRepository ---
type MockEssayRepository struct {
	mock.Mock
}

func (m *MockEssayRepository) CreateEssay(ctx context.Context, essay *domain.Essay) error {
	args := m.Called(ctx, essay)
	return args.Error(0)
}

func (m *MockEssayRepository) GetEssayByID(ctx context.Context, id string) (*domain.Essay, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Essay), args.Error(1)
}

func (m *MockEssayRepository) ListEssaysByUser(ctx context.Context, userID string, limit int) ([]*domain.Essay, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Essay), args.Error(1)
}

func (m *MockEssayRepository) ListEssaysByStatus(ctx context.Context, status domain.EssayStatus, limit int) ([]*domain.Essay, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Essay), args.Error(1)
}

func (m *MockEssayRepository) SaveEvaluation(ctx context.Context, essayID string, eval *domain.EssayEvaluation) error {
	args := m.Called(ctx, essayID, eval)
	return args.Error(0)
}

func (m *MockEssayRepository) SaveStatements(ctx context.Context, essayID string, statements []domain.Statement, summary *domain.StatementSummary) error {
	args := m.Called(ctx, essayID, statements, summary)
	return args.Error(0)
}

func (m *MockEssayRepository) DeleteEssay(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- MockFriendRepository ---
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockFriendRepository) GetRequestForUpdate(ctx context.Context, id string) (*domain.FriendRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) GetRequestByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) FindPendingRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) UpdateRequestStatus(ctx context.Context, id string, status domain.FriendRequestStatus, resolvedAt time.Time) error {
	args := m.Called(ctx, id, status, resolvedAt)
	return args.Error(0)
}

func (m *MockFriendRepository) CancelPairRequests(ctx context.Context, userA, userB string, resolvedAt time.Time) (int64, error) {
	args := m.Called(ctx, userA, userB, resolvedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFriendRepository) ListIncomingPending(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) ListOutgoingPending(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRepository) CreateFriendship(ctx context.Context, userA, userB string) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

func (m *MockFriendRepository) DeleteFriendship(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID string) ([]*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockFriendRepository) ListSuggestions(ctx context.Context, userID string, limit int) ([]*domain.User, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// --- MockPostRepository ---
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetVisiblePost(ctx context.Context, postID, viewerID string) (*domain.Post, error) {
	args := m.Called(ctx, postID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostRepository) ListPosts(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockPostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) IncrementCounter(ctx context.Context, postID string, counter domain.PostCounter, delta int) error {
	args := m.Called(ctx, postID, counter, delta)
	return args.Error(0)
}

func (m *MockPostRepository) MarkShared(ctx context.Context, postID string, at time.Time) error {
	args := m.Called(ctx, postID, at)
	return args.Error(0)
}

func (m *MockPostRepository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockPostRepository) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockPostRepository) ListComments(ctx context.Context, postID string, limit int) ([]*domain.Comment, error) {
	args := m.Called(ctx, postID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockPostRepository) DeleteComment(ctx context.Context, commentID string) error {
	args := m.Called(ctx, commentID)
	return args.Error(0)
}

// --- MockTransactionManager ---
// Runs fn inline and reports whether the last transaction committed.
type MockTransactionManager struct {
	Calls      int
	RolledBack bool
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	err := fn(ctx)
	m.RolledBack = err != nil
	return err
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockNotificationStore ---
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Insert(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStore) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, limit, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationStore) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

// --- MockNotificationPublisher ---
type MockNotificationPublisher struct {
	mock.Mock
}

func (m *MockNotificationPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationPublisher) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(<-chan *domain.Notification), args.Get(1).(func()), args.Error(2)
}

// --- recordingNotifier ---
type sentNotification struct {
	UserID string
	Type   domain.NotificationType
	Data   map[string]interface{}
}

type recordingNotifier struct {
	sent []sentNotification
}

func (r *recordingNotifier) Notify(ctx context.Context, userID string, typ domain.NotificationType, data map[string]interface{}) {
	r.sent = append(r.sent, sentNotification{UserID: userID, Type: typ, Data: data})
}

// --- MockEssayEvaluator ---
type MockEssayEvaluator struct {
	mock.Mock
}

func (m *MockEssayEvaluator) EvaluateEssay(ctx context.Context, title, content string, language *domain.LanguageInfo) (*domain.EssayEvaluation, error) {
	args := m.Called(ctx, title, content, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EssayEvaluation), args.Error(1)
}

func (m *MockEssayEvaluator) ClassifyStatements(ctx context.Context, sentences []string) (map[int]domain.StatementClass, error) {
	args := m.Called(ctx, sentences)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]domain.StatementClass), args.Error(1)
}

// --- MockGrammarChecker ---
type MockGrammarChecker struct {
	mock.Mock
}

func (m *MockGrammarChecker) Check(ctx context.Context, text, language string) (*domain.GrammarCheck, error) {
	args := m.Called(ctx, text, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GrammarCheck), args.Error(1)
}

// --- stubAnalyzer ---
type stubAnalyzer struct {
	lang      domain.LanguageInfo
	sentences []domain.Sentence
}

func (a *stubAnalyzer) Analyze(text string) domain.LinguisticStats {
	return domain.LinguisticStats{Sentences: len(a.sentences), Tokens: 12, AvgSentenceLength: 6}
}

func (a *stubAnalyzer) Segment(text string) []domain.Sentence {
	return a.sentences
}

func (a *stubAnalyzer) DetectLanguage(text string) domain.LanguageInfo {
	return a.lang
}
