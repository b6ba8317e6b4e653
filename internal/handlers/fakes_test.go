package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/velora/backend/internal/models"
	"github.com/velora/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the handler tests. They mirror the
// store's observable semantics: idempotent set-style likes and follow edges,
// front-inserted comments, newest-first listings.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) add(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}
	user, ok := f.users[objID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	user, ok := f.users[objID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	for key, value := range fields {
		s, _ := value.(string)
		switch key {
		case "username":
			user.Username = s
		case "email":
			user.Email = s
		case "bio":
			user.Bio = s
		case "full_name":
			user.FullName = s
		case "avatar":
			user.Avatar = s
		case "avatar_id":
			user.AvatarID = s
		}
	}
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	user, ok := f.users[objID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	user.Password = passwordHash
	return nil
}

func (f *fakeUserRepo) SearchUsers(_ context.Context, query string) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		if strings.Contains(strings.ToLower(user.Username), strings.ToLower(query)) {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetSuggestions(_ context.Context, userID string) ([]models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	self, ok := f.users[objID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	var out []models.User
	for id, user := range f.users {
		if id == objID || containsID(self.Following, id) {
			continue
		}
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i].Followers) > len(out[j].Followers) })
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}

func (f *fakeUserRepo) updateEdge(userID, otherID string, add bool, follower bool) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}
	otherObjID, err := primitive.ObjectIDFromHex(otherID)
	if err != nil {
		return err
	}
	user, ok := f.users[objID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	set := &user.Following
	if follower {
		set = &user.Followers
	}
	if add {
		if !containsID(*set, otherObjID) {
			*set = append(*set, otherObjID)
		}
		return nil
	}
	for i, id := range *set {
		if id == otherObjID {
			*set = append((*set)[:i], (*set)[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeUserRepo) AddFollowing(_ context.Context, userID, targetID string) error {
	return f.updateEdge(userID, targetID, true, false)
}

func (f *fakeUserRepo) RemoveFollowing(_ context.Context, userID, targetID string) error {
	return f.updateEdge(userID, targetID, false, false)
}

func (f *fakeUserRepo) AddFollower(_ context.Context, userID, followerID string) error {
	return f.updateEdge(userID, followerID, true, true)
}

func (f *fakeUserRepo) RemoveFollower(_ context.Context, userID, followerID string) error {
	return f.updateEdge(userID, followerID, false, true)
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

type fakePostRepo struct {
	posts map[primitive.ObjectID]*models.Post
	order []primitive.ObjectID
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	f.posts[post.ID] = post
	f.order = append(f.order, post.ID)
	return nil
}

func (f *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}
	post, ok := f.posts[objID]
	if !ok {
		return nil, fmt.Errorf("post not found")
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) listNewestFirst(filter func(*models.Post) bool) []models.Post {
	out := make([]models.Post, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		post, ok := f.posts[f.order[i]]
		if ok && filter(post) {
			out = append(out, *post)
		}
	}
	return out
}

func (f *fakePostRepo) GetAllPosts(_ context.Context) ([]models.Post, error) {
	return f.listNewestFirst(func(*models.Post) bool { return true }), nil
}

func (f *fakePostRepo) GetFeedPosts(_ context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	return f.listNewestFirst(func(p *models.Post) bool { return containsID(userIDs, p.UserID) }), nil
}

func (f *fakePostRepo) GetPostsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	return f.listNewestFirst(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (f *fakePostRepo) UpdatePost(_ context.Context, id string, fields map[string]interface{}) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	post, ok := f.posts[objID]
	if !ok {
		return nil, fmt.Errorf("post not found")
	}
	for key, value := range fields {
		s, _ := value.(string)
		switch key {
		case "caption":
			post.Caption = s
		case "location":
			post.Location = s
		}
	}
	post.UpdatedAt = time.Now()
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) DeletePost(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	if _, ok := f.posts[objID]; !ok {
		return fmt.Errorf("post not found")
	}
	delete(f.posts, objID)
	return nil
}

func (f *fakePostRepo) AddLike(_ context.Context, postID string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	post, ok := f.posts[objID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	if !containsID(post.Likes, userID) {
		post.Likes = append(post.Likes, userID)
	}
	return nil
}

func (f *fakePostRepo) RemoveLike(_ context.Context, postID string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	post, ok := f.posts[objID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakePostRepo) PushComment(_ context.Context, postID string, comment models.Comment) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	post, ok := f.posts[objID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)
	return nil
}

func (f *fakePostRepo) PullComment(_ context.Context, postID string, commentID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return err
	}
	post, ok := f.posts[objID]
	if !ok {
		return fmt.Errorf("post not found")
	}
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			break
		}
	}
	return nil
}

var _ repositories.PostRepository = (*fakePostRepo)(nil)

type fakeReelRepo struct {
	reels map[primitive.ObjectID]*models.Reel
	order []primitive.ObjectID
}

func newFakeReelRepo() *fakeReelRepo {
	return &fakeReelRepo{reels: make(map[primitive.ObjectID]*models.Reel)}
}

func (f *fakeReelRepo) CreateReel(_ context.Context, reel *models.Reel) error {
	reel.ID = primitive.NewObjectID()
	reel.CreatedAt = time.Now()
	reel.UpdatedAt = reel.CreatedAt
	f.reels[reel.ID] = reel
	f.order = append(f.order, reel.ID)
	return nil
}

func (f *fakeReelRepo) GetReelByID(_ context.Context, id string) (*models.Reel, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reel ID format: %w", err)
	}
	reel, ok := f.reels[objID]
	if !ok {
		return nil, fmt.Errorf("reel not found")
	}
	copied := *reel
	return &copied, nil
}

func (f *fakeReelRepo) listNewestFirst(filter func(*models.Reel) bool) []models.Reel {
	out := make([]models.Reel, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		reel, ok := f.reels[f.order[i]]
		if ok && filter(reel) {
			out = append(out, *reel)
		}
	}
	return out
}

func (f *fakeReelRepo) GetAllReels(_ context.Context) ([]models.Reel, error) {
	return f.listNewestFirst(func(*models.Reel) bool { return true }), nil
}

func (f *fakeReelRepo) GetFeedReels(_ context.Context, userIDs []primitive.ObjectID) ([]models.Reel, error) {
	return f.listNewestFirst(func(r *models.Reel) bool { return containsID(userIDs, r.UserID) }), nil
}

func (f *fakeReelRepo) GetReelsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Reel, error) {
	return f.listNewestFirst(func(r *models.Reel) bool { return r.UserID == userID }), nil
}

func (f *fakeReelRepo) UpdateReel(_ context.Context, id string, fields map[string]interface{}) (*models.Reel, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	reel, ok := f.reels[objID]
	if !ok {
		return nil, fmt.Errorf("reel not found")
	}
	if caption, ok := fields["caption"].(string); ok {
		reel.Caption = caption
	}
	reel.UpdatedAt = time.Now()
	copied := *reel
	return &copied, nil
}

func (f *fakeReelRepo) DeleteReel(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	if _, ok := f.reels[objID]; !ok {
		return fmt.Errorf("reel not found")
	}
	delete(f.reels, objID)
	return nil
}

func (f *fakeReelRepo) AddLike(_ context.Context, reelID string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(reelID)
	if err != nil {
		return err
	}
	reel, ok := f.reels[objID]
	if !ok {
		return fmt.Errorf("reel not found")
	}
	if !containsID(reel.Likes, userID) {
		reel.Likes = append(reel.Likes, userID)
	}
	return nil
}

func (f *fakeReelRepo) RemoveLike(_ context.Context, reelID string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(reelID)
	if err != nil {
		return err
	}
	reel, ok := f.reels[objID]
	if !ok {
		return fmt.Errorf("reel not found")
	}
	for i, id := range reel.Likes {
		if id == userID {
			reel.Likes = append(reel.Likes[:i], reel.Likes[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeReelRepo) PushComment(_ context.Context, reelID string, comment models.Comment) error {
	objID, err := primitive.ObjectIDFromHex(reelID)
	if err != nil {
		return err
	}
	reel, ok := f.reels[objID]
	if !ok {
		return fmt.Errorf("reel not found")
	}
	reel.Comments = append([]models.Comment{comment}, reel.Comments...)
	return nil
}

func (f *fakeReelRepo) PullComment(_ context.Context, reelID string, commentID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(reelID)
	if err != nil {
		return err
	}
	reel, ok := f.reels[objID]
	if !ok {
		return fmt.Errorf("reel not found")
	}
	for i := range reel.Comments {
		if reel.Comments[i].ID == commentID {
			reel.Comments = append(reel.Comments[:i], reel.Comments[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeReelRepo) IncrementViews(_ context.Context, reelID string) error {
	objID, err := primitive.ObjectIDFromHex(reelID)
	if err != nil {
		return err
	}
	reel, ok := f.reels[objID]
	if !ok {
		return fmt.Errorf("reel not found")
	}
	reel.Views++
	return nil
}

var _ repositories.ReelRepository = (*fakeReelRepo)(nil)

type fakeMessageRepo struct {
	messages []*models.Message
	clock    time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{clock: time.Now()}
}

func (f *fakeMessageRepo) CreateMessage(_ context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.Read = false
	message.ReadAt = nil
	// Strictly increasing timestamps so ordering assertions are deterministic
	f.clock = f.clock.Add(time.Millisecond)
	message.CreatedAt = f.clock
	stored := *message
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageRepo) GetMessagesBetween(_ context.Context, userA, userB primitive.ObjectID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetConversations(_ context.Context, userID primitive.ObjectID) ([]repositories.ConversationEntry, error) {
	byPartner := make(map[primitive.ObjectID]*repositories.ConversationEntry)
	var order []primitive.ObjectID
	for i := len(f.messages) - 1; i >= 0; i-- {
		m := f.messages[i]
		var partner primitive.ObjectID
		switch userID {
		case m.SenderID:
			partner = m.ReceiverID
		case m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		entry, ok := byPartner[partner]
		if !ok {
			entry = &repositories.ConversationEntry{PartnerID: partner, LastMessage: *m}
			byPartner[partner] = entry
			order = append(order, partner)
		}
		if m.ReceiverID == userID && !m.Read {
			entry.UnreadCount++
		}
	}
	out := make([]repositories.ConversationEntry, 0, len(order))
	for _, partner := range order {
		out = append(out, *byPartner[partner])
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkMessagesAsRead(_ context.Context, senderID, receiverID primitive.ObjectID) (int64, error) {
	now := time.Now()
	var count int64
	for _, m := range f.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Read {
			m.Read = true
			m.ReadAt = &now
			count++
		}
	}
	return count, nil
}

var _ repositories.MessageRepository = (*fakeMessageRepo)(nil)

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (f *fakeNotificationRepo) CreateNotification(_ context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.Read = false
	notification.CreatedAt = time.Now()
	stored := *notification
	f.notifications = append(f.notifications, &stored)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(_ context.Context, userID primitive.ObjectID, page, limit int) ([]models.Notification, int64, error) {
	var all []models.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].UserID == userID {
			all = append(all, *f.notifications[i])
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, id string, userID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	for _, n := range f.notifications {
		if n.ID == objID && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification not found")
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, userID primitive.ObjectID) error {
	for _, n := range f.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

var _ repositories.NotificationRepository = (*fakeNotificationRepo)(nil)

// fakeMediaStore records uploads and deletes without touching object storage
type fakeMediaStore struct {
	uploads int
	deleted []string
}

func (f *fakeMediaStore) Upload(_ context.Context, folder string, file *multipart.FileHeader) (string, string, error) {
	f.uploads++
	key := fmt.Sprintf("%s/%d-%s", folder, f.uploads, file.Filename)
	return "http://media.local/test-bucket/" + key, key, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}
