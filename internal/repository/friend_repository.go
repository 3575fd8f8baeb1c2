package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"essay-hub/internal/domain"
	"essay-hub/internal/repository/models"
	"essay-hub/internal/util"

	"github.com/jmoiron/sqlx"
)

const friendRequestColumns = `fr.id, fr.sender_id, fr.receiver_id, fr.pair_key, fr.status, fr.created_at, fr.resolved_at`

// sqlxFriendRepository implements domain.FriendRepository using sqlx.
// Friendships are stored once per pair in canonical (low, high) order.
type sqlxFriendRepository struct {
	db *sqlx.DB
}

// NewSQLXFriendRepository creates a new instance of sqlxFriendRepository.
func NewSQLXFriendRepository(db *sqlx.DB) domain.FriendRepository {
	return &sqlxFriendRepository{db: db}
}

func toDomainFriendRequest(m *models.FriendRequest) *domain.FriendRequest {
	if m == nil {
		return nil
	}
	req := &domain.FriendRequest{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Status:     domain.FriendRequestStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		ResolvedAt: util.NullTimeToPtr(m.ResolvedAt),
	}
	return req
}

// qualify prefixes every column of a comma separated list with alias.
func qualify(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// CreateRequest inserts a pending request. The unique index on pending pair
// keys turns a concurrent duplicate into FRIEND_REQUEST_ALREADY_SENT.
func (r *sqlxFriendRepository) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	if req.ID == "" {
		req.ID = util.NewULID()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if req.Status == "" {
		req.Status = domain.RequestPending
	}

	query := `INSERT INTO friend_requests (id, sender_id, receiver_id, pair_key, status, created_at)
	          VALUES (:1, :2, :3, :4, :5, :6)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		req.ID, req.SenderID, req.ReceiverID, domain.PairKey(req.SenderID, req.ReceiverID), string(req.Status), req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeRequestAlreadySent, "A pending friend request already exists between these users", err)
		}
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

func (r *sqlxFriendRepository) getRequest(ctx context.Context, query string, args ...interface{}) (*domain.FriendRequest, error) {
	var m models.FriendRequest
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, args...); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return toDomainFriendRequest(&m), nil
}

// GetRequestForUpdate must run inside WithTransaction for the lock to matter.
func (r *sqlxFriendRepository) GetRequestForUpdate(ctx context.Context, id string) (*domain.FriendRequest, error) {
	return r.getRequest(ctx, `SELECT `+friendRequestColumns+` FROM friend_requests fr WHERE fr.id = :1 FOR UPDATE`, id)
}

func (r *sqlxFriendRepository) GetRequestByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	return r.getRequest(ctx, `SELECT `+friendRequestColumns+` FROM friend_requests fr WHERE fr.id = :1`, id)
}

// FindPendingRequest looks for a pending request in the given direction only.
func (r *sqlxFriendRepository) FindPendingRequest(ctx context.Context, senderID, receiverID string) (*domain.FriendRequest, error) {
	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests fr
	          WHERE fr.sender_id = :1 AND fr.receiver_id = :2 AND fr.status = 'pending'`
	return r.getRequest(ctx, query, senderID, receiverID)
}

func (r *sqlxFriendRepository) UpdateRequestStatus(ctx context.Context, id string, status domain.FriendRequestStatus, resolvedAt time.Time) error {
	query := `UPDATE friend_requests SET status = :1, resolved_at = :2 WHERE id = :3`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, string(status), util.TimeToNullTime(resolvedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update friend request %s: %w", id, err)
	}
	return requireAffected(result, domain.NewFriendRequestNotFoundError(id))
}

// CancelPairRequests retires every pending or accepted request of the pair,
// whichever direction it was sent in.
func (r *sqlxFriendRepository) CancelPairRequests(ctx context.Context, userA, userB string, resolvedAt time.Time) (int64, error) {
	query := `UPDATE friend_requests SET status = 'cancelled', resolved_at = :1
	          WHERE pair_key = :2 AND status IN ('pending', 'accepted')`
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, resolvedAt, domain.PairKey(userA, userB))
	if err != nil {
		return 0, fmt.Errorf("failed to cancel friend requests: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// listPending joins the counterpart profile; joinColumn names the side to join.
func (r *sqlxFriendRepository) listPending(ctx context.Context, filterColumn, joinColumn, userID string) ([]models.FriendRequestWithUser, error) {
	query := `SELECT ` + friendRequestColumns + `, u.name other_name, u.email other_email, u.profile_picture_url other_picture
	          FROM friend_requests fr
	          JOIN users u ON u.id = fr.` + joinColumn + `
	          WHERE fr.` + filterColumn + ` = :1 AND fr.status = 'pending' AND u.deleted_at IS NULL
	          ORDER BY fr.created_at DESC`

	var rows []models.FriendRequestWithUser
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list pending friend requests: %w", err)
	}
	return rows, nil
}

func counterpart(row *models.FriendRequestWithUser, id string) *domain.User {
	return &domain.User{
		ID:                id,
		Name:              row.OtherName.String,
		Email:             row.OtherEmail.String,
		ProfilePictureURL: row.OtherPicture.String,
	}
}

func (r *sqlxFriendRepository) ListIncomingPending(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	rows, err := r.listPending(ctx, "receiver_id", "sender_id", userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.FriendRequest, 0, len(rows))
	for i := range rows {
		req := toDomainFriendRequest(&rows[i].FriendRequest)
		req.Sender = counterpart(&rows[i], req.SenderID)
		out = append(out, req)
	}
	return out, nil
}

func (r *sqlxFriendRepository) ListOutgoingPending(ctx context.Context, userID string) ([]*domain.FriendRequest, error) {
	rows, err := r.listPending(ctx, "sender_id", "receiver_id", userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.FriendRequest, 0, len(rows))
	for i := range rows {
		req := toDomainFriendRequest(&rows[i].FriendRequest)
		req.Receiver = counterpart(&rows[i], req.ReceiverID)
		out = append(out, req)
	}
	return out, nil
}

// CreateFriendship inserts the single edge for the pair.
func (r *sqlxFriendRepository) CreateFriendship(ctx context.Context, userA, userB string) error {
	low, high := domain.OrderedPair(userA, userB)
	query := `INSERT INTO friendships (user_low, user_high, created_at) VALUES (:1, :2, :3)`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, low, high, time.Now()); err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeAlreadyFriends, "Users are already friends", err)
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// DeleteFriendship reports false when there was no edge.
func (r *sqlxFriendRepository) DeleteFriendship(ctx context.Context, userA, userB string) (bool, error) {
	low, high := domain.OrderedPair(userA, userB)
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM friendships WHERE user_low = :1 AND user_high = :2`, low, high)
	if err != nil {
		return false, fmt.Errorf("failed to delete friendship: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *sqlxFriendRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	low, high := domain.OrderedPair(userA, userB)
	var count int
	query := `SELECT COUNT(*) FROM friendships WHERE user_low = :1 AND user_high = :2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, low, high); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return count > 0, nil
}

// ListFriends reads the edge from either side.
func (r *sqlxFriendRepository) ListFriends(ctx context.Context, userID string) ([]*domain.User, error) {
	query := `SELECT ` + qualify(userColumns, "u") + `
	          FROM friendships f
	          JOIN users u ON (f.user_low = :1 AND u.id = f.user_high) OR (f.user_high = :2 AND u.id = f.user_low)
	          WHERE u.deleted_at IS NULL
	          ORDER BY u.name`

	var rows []models.User
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to list friends of %s: %w", userID, err)
	}
	return toDomainUsers(rows), nil
}

// ListSuggestions returns users who are neither friends nor in a pending request with userID.
func (r *sqlxFriendRepository) ListSuggestions(ctx context.Context, userID string, limit int) ([]*domain.User, error) {
	query := `SELECT ` + qualify(userColumns, "u") + `
	          FROM users u
	          WHERE u.id <> :1 AND u.deleted_at IS NULL
	            AND NOT EXISTS (
	              SELECT 1 FROM friendships f
	              WHERE (f.user_low = u.id AND f.user_high = :2) OR (f.user_high = u.id AND f.user_low = :3))
	            AND NOT EXISTS (
	              SELECT 1 FROM friend_requests r
	              WHERE r.status = 'pending'
	                AND ((r.sender_id = :4 AND r.receiver_id = u.id) OR (r.receiver_id = :5 AND r.sender_id = u.id)))
	          ORDER BY u.created_at DESC
	          FETCH FIRST :6 ROWS ONLY`

	var rows []models.User
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, userID, userID, userID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list friend suggestions for %s: %w", userID, err)
	}
	return toDomainUsers(rows), nil
}
