package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pingloop/messenger/internal/core/domain"
)

const collectionUsers = "users"

// errNoReciprocal aborts the reciprocal transaction when the caller holds no
// pending request from the target. Never escapes this package.
var errNoReciprocal = errors.New("no reciprocal request")

// UserRepository implements the directory-store port against MongoDB.
//
// Guards live in the update filters: a write whose precondition no longer
// holds matches zero documents instead of corrupting state, and pair-wise
// operations (edges, last-interaction entries) run inside multi-document
// transactions so no half-applied transition is ever observable.
type UserRepository struct {
	col    *mongo.Collection
	client *mongo.Client
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers), client: db.Client()}
}

// Create inserts a new user document. A duplicate email maps to ErrUserExists
// via the unique index.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *user
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &doc, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByIDs returns the matching users sorted by name then id, so callers get
// a deterministic order for a fixed input set.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	var users []*domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SearchByName performs a case-insensitive partial match on the name field,
// excluding excludeID.
func (r *UserRepository) SearchByName(ctx context.Context, query, excludeID string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":  bson.M{"$ne": excludeID},
		"name": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var users []*domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateFriendRequest appends a pending request onto the receiving user. The
// filter rejects the write when the pair is already friends or a request from
// the same sender is already pending; the zero-match case is then classified
// into the precise domain error.
func (r *UserRepository) CreateFriendRequest(ctx context.Context, to, from string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                  to,
		"friends":              bson.M{"$ne": from},
		"friend_requests.from": bson.M{"$ne": from},
	}
	update := bson.M{"$push": bson.M{"friend_requests": bson.M{"from": from, "created_at": at.UTC()}}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.classifyRequestConflict(ctx, to, from)
	}
	return nil
}

func (r *UserRepository) classifyRequestConflict(ctx context.Context, to, from string) error {
	u, err := r.FindByID(ctx, to)
	if err != nil {
		return err
	}
	if u.IsFriend(from) {
		return domain.ErrAlreadyFriends
	}
	return domain.ErrDuplicateRequest
}

// ResolveReciprocal collapses mutual pending requests into a friendship. The
// first update both proves the reciprocal request exists and consumes it, so
// of two concurrent callers at most one resolves. Callers run it both before
// creating a request (the sequential mutual case) and again after the create,
// reconciling opposite-direction sends whose checks and writes interleaved.
func (r *UserRepository) ResolveReciprocal(ctx context.Context, requester, target string) (bool, error) {
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.col.UpdateOne(sc,
			bson.M{"_id": requester, "friend_requests.from": target},
			bson.M{
				"$pull":     bson.M{"friend_requests": bson.M{"from": target}},
				"$addToSet": bson.M{"friends": target},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return errNoReciprocal
		}
		_, err = r.col.UpdateOne(sc,
			bson.M{"_id": target},
			bson.M{
				"$pull":     bson.M{"friend_requests": bson.M{"from": requester}},
				"$addToSet": bson.M{"friends": requester},
			})
		return err
	})
	if errors.Is(err, errNoReciprocal) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AcceptRequest removes the pending request and creates the symmetric edge in
// one transaction.
func (r *UserRepository) AcceptRequest(ctx context.Context, accepter, requester string) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.col.UpdateOne(sc,
			bson.M{"_id": accepter, "friend_requests.from": requester},
			bson.M{
				"$pull":     bson.M{"friend_requests": bson.M{"from": requester}},
				"$addToSet": bson.M{"friends": requester},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrRequestNotFound
		}
		_, err = r.col.UpdateOne(sc,
			bson.M{"_id": requester},
			bson.M{"$addToSet": bson.M{"friends": accepter}})
		return err
	})
}

// DeclineRequest deletes the pending request. No record is retained.
func (r *UserRepository) DeclineRequest(ctx context.Context, accepter, requester string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": accepter, "friend_requests.from": requester},
		bson.M{"$pull": bson.M{"friend_requests": bson.M{"from": requester}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// RemoveFriendEdge deletes the edge from both documents and drops any pin
// either side holds on the other, keeping pinned_chats a subset of friends.
func (r *UserRepository) RemoveFriendEdge(ctx context.Context, a, b string) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.col.UpdateOne(sc,
			bson.M{"_id": a, "friends": b},
			bson.M{"$pull": bson.M{"friends": b, "pinned_chats": b}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return domain.ErrNotFriends
		}
		_, err = r.col.UpdateOne(sc,
			bson.M{"_id": b},
			bson.M{"$pull": bson.M{"friends": a, "pinned_chats": a}})
		return err
	})
}

// PinChat appends the target under three filter guards: the pair is friends,
// the target is not already pinned, and the pin list is below the limit. The
// positional $exists check is the race-safe form of the length guard: two
// concurrent pins cannot both observe a free slot and overflow it.
func (r *UserRepository) PinChat(ctx context.Context, userID, target string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	lastSlot := fmt.Sprintf("pinned_chats.%d", domain.MaxPinnedChats-1)
	filter := bson.M{
		"_id":          userID,
		"friends":      target,
		"pinned_chats": bson.M{"$ne": target},
		lastSlot:       bson.M{"$exists": false},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"pinned_chats": target}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.classifyPinConflict(ctx, userID, target)
	}
	return nil
}

func (r *UserRepository) classifyPinConflict(ctx context.Context, userID, target string) error {
	u, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	switch {
	case !u.IsFriend(target):
		return domain.ErrNotFriends
	case u.IsPinned(target):
		return domain.ErrAlreadyPinned
	default:
		return domain.ErrPinLimitExceeded
	}
}

// UnpinChat removes the target from the pin list; pulling an absent element
// is a no-op success.
func (r *UserRepository) UnpinChat(ctx context.Context, userID, target string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"pinned_chats": target}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetLastInteraction writes the per-peer timestamp on both documents inside
// one transaction, touching only the single map entry on each side.
func (r *UserRepository) SetLastInteraction(ctx context.Context, a, b string, at time.Time) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, pair := range [][2]string{{a, b}, {b, a}} {
			res, err := r.col.UpdateOne(sc,
				bson.M{"_id": pair[0]},
				bson.M{"$set": bson.M{"last_interaction." + pair[1]: at.UTC()}})
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return domain.ErrUserNotFound
			}
		}
		return nil
	})
}

// AppendNotification pushes a notification record onto the user's feed.
func (r *UserRepository) AppendNotification(ctx context.Context, userID string, n domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"notifications": n}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// MarkNotificationsRead flips the read flag on every currently-unread entry
// with a single array-filter update.
func (r *UserRepository) MarkNotificationsRead(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"n.read": false}},
	})
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"notifications.$[n].read": true}},
		opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
