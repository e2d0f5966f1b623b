package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/utils"
)

type memBarterRepo struct {
	mu      sync.Mutex
	barters map[primitive.ObjectID]models.BarterRequest
	// beforeUpdate runs inside UpdateIfStatus before the precondition check,
	// letting tests interleave a competing writer.
	beforeUpdate func(id primitive.ObjectID)
}

func newMemBarterRepo() *memBarterRepo {
	return &memBarterRepo{barters: make(map[primitive.ObjectID]models.BarterRequest)}
}

func (r *memBarterRepo) Create(ctx context.Context, barter *models.BarterRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.barters {
		if b.Status == models.BarterStatusPending &&
			b.SenderID == barter.SenderID && b.ReceiverID == barter.ReceiverID &&
			b.OfferedSkillID == barter.OfferedSkillID && b.RequestedSkillID == barter.RequestedSkillID {
			return interfaces.ErrDuplicate
		}
	}

	barter.ID = primitive.NewObjectID()
	barter.CreatedAt = time.Now()
	barter.UpdatedAt = barter.CreatedAt
	r.barters[barter.ID] = *barter
	return nil
}

func (r *memBarterRepo) put(barter models.BarterRequest) *models.BarterRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if barter.ID.IsZero() {
		barter.ID = primitive.NewObjectID()
	}
	r.barters[barter.ID] = barter
	return &barter
}

func (r *memBarterRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BarterRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.barters[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &b, nil
}

func (r *memBarterRepo) ExistsPending(ctx context.Context, senderID, receiverID, offeredSkillID, requestedSkillID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.barters {
		if b.Status == models.BarterStatusPending && b.SenderID == senderID && b.ReceiverID == receiverID &&
			b.OfferedSkillID == offeredSkillID && b.RequestedSkillID == requestedSkillID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBarterRepo) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowedFrom []models.BarterStatus, update interfaces.BarterUpdate) (*models.BarterRequest, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.barters[id]
	if !ok || !containsStatus(allowedFrom, b.Status) {
		return nil, interfaces.ErrStatusChanged
	}

	if update.Status != nil {
		b.Status = *update.Status
	}
	if update.CounterOffer != nil {
		offer := *update.CounterOffer
		b.CounterOffer = &offer
	}
	if update.RejectionReason != nil {
		b.RejectionReason = *update.RejectionReason
	}
	if update.CompletedAt != nil {
		at := *update.CompletedAt
		b.CompletedAt = &at
	}
	b.UpdatedAt = time.Now()
	r.barters[id] = b

	return &b, nil
}

func (r *memBarterRepo) SetConversation(ctx context.Context, id, conversationID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.barters[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	b.ConversationID = &conversationID
	r.barters[id] = b
	return nil
}

func (r *memBarterRepo) matches(b models.BarterRequest, filter interfaces.BarterListFilter) bool {
	switch filter.Direction {
	case interfaces.BarterDirectionSent:
		if b.SenderID != filter.UserID {
			return false
		}
	case interfaces.BarterDirectionReceived:
		if b.ReceiverID != filter.UserID {
			return false
		}
	default:
		if b.SenderID != filter.UserID && b.ReceiverID != filter.UserID {
			return false
		}
	}
	return filter.Status == "" || b.Status == filter.Status
}

func (r *memBarterRepo) List(ctx context.Context, filter interfaces.BarterListFilter, params *utils.PaginationParams) ([]*models.BarterRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*models.BarterRequest
	for _, b := range r.barters {
		if r.matches(b, filter) {
			b := b
			all = append(all, &b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := params.GetSkip()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.GetLimit()
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memBarterRepo) CountStatusesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.BarterStatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type key struct {
		status models.BarterStatus
		sent   bool
	}
	counts := map[key]int64{}
	for _, b := range r.barters {
		if b.SenderID != userID && b.ReceiverID != userID {
			continue
		}
		counts[key{b.Status, b.SenderID == userID}]++
	}

	var rows []models.BarterStatusCount
	for k, n := range counts {
		rows = append(rows, models.BarterStatusCount{Status: k.status, Sent: k.sent, Count: n})
	}
	return rows, nil
}

func (r *memBarterRepo) CountCompletedForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.barters {
		if b.Status == models.BarterStatusCompleted && (b.SenderID == userID || b.ReceiverID == userID) {
			n++
		}
	}
	return n, nil
}

func (r *memBarterRepo) CompletedParticipants(ctx context.Context) ([]primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, b := range r.barters {
		if b.Status != models.BarterStatusCompleted {
			continue
		}
		for _, id := range []primitive.ObjectID{b.SenderID, b.ReceiverID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

type memSkillRepo struct {
	mu     sync.Mutex
	skills map[primitive.ObjectID]*models.Skill
	// lastFilter is the filter the most recent List call received.
	lastFilter interfaces.SkillListFilter
}

func (r *memSkillRepo) Create(ctx context.Context, skill *models.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	skill.ID = primitive.NewObjectID()
	skill.CreatedAt = time.Now()
	copied := *skill
	r.skills[skill.ID] = &copied
	return nil
}

func (r *memSkillRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skills[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memSkillRepo) Delete(ctx context.Context, id primitive.ObjectID) (*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skills[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	delete(r.skills, id)
	return s, nil
}

func (r *memSkillRepo) UpdateVerificationStatus(ctx context.Context, id primitive.ObjectID, status models.VerificationStatus) (*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skills[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	s.VerificationStatus = status
	copied := *s
	return &copied, nil
}

func (r *memSkillRepo) List(ctx context.Context, filter interfaces.SkillListFilter, params *utils.PaginationParams) ([]*models.Skill, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []*models.Skill
	for _, s := range r.skills {
		if !s.IsActive {
			continue
		}
		if !filter.IncludeUnverified && !s.IsListable() {
			continue
		}
		if filter.OfferedBy != nil && s.OfferedBy != *filter.OfferedBy {
			continue
		}
		if filter.CategoryID != nil && s.CategoryID != *filter.CategoryID {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*models.Category
	failUpdate error
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{categories: make(map[primitive.ObjectID]*models.Category)}
}

func (r *memCategoryRepo) add(name string, active bool) *models.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &models.Category{ID: primitive.NewObjectID(), Name: name, Slug: name, IsActive: active}
	r.categories[c.ID] = c
	return c
}

func (r *memCategoryRepo) count(id primitive.ObjectID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categories[id].SkillCount
}

func (r *memCategoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memCategoryRepo) IncrementSkillCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	c, ok := r.categories[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	c.SkillCount += delta
	return nil
}

type memUserRepo struct {
	mu         sync.Mutex
	users      map[primitive.ObjectID]*models.User
	failUpdate error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) add(name string, active bool) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{ID: primitive.NewObjectID(), Name: name, IsActive: active, Role: models.UserRoleUser}
	r.users[u.ID] = u
	return u
}

func (r *memUserRepo) get(id primitive.ObjectID) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) Reload(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUserRepo) mutate(ctx context.Context, id primitive.ObjectID, fn func(u *models.User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	u, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	fn(u)
	return nil
}

func (r *memUserRepo) IncrementTotalBarters(ctx context.Context, id primitive.ObjectID, delta int64) error {
	return r.mutate(ctx, id, func(u *models.User) { u.TotalBarters += delta })
}

func (r *memUserRepo) SetTotalBarters(ctx context.Context, id primitive.ObjectID, total int64) error {
	return r.mutate(ctx, id, func(u *models.User) { u.TotalBarters = total })
}

func (r *memUserRepo) UpdateRatingSummary(ctx context.Context, id primitive.ObjectID, summary models.RatingSummary) error {
	return r.mutate(ctx, id, func(u *models.User) {
		u.AverageRating = summary.AverageRating
		u.TotalReviews = summary.TotalReviews
	})
}

type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[primitive.ObjectID]models.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[primitive.ObjectID]models.Review)}
}

func (r *memReviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.ReviewerID == review.ReviewerID && existing.BarterID == review.BarterID {
			return interfaces.ErrDuplicate
		}
	}
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	r.reviews[review.ID] = *review
	return nil
}

func (r *memReviewRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &review, nil
}

func (r *memReviewRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *memReviewRepo) ExistsForReviewer(ctx context.Context, reviewerID, barterID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, review := range r.reviews {
		if review.ReviewerID == reviewerID && review.BarterID == barterID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memReviewRepo) filter(fn func(models.Review) bool) ([]*models.Review, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Review
	for _, review := range r.reviews {
		if fn(review) {
			review := review
			out = append(out, &review)
		}
	}
	return out, int64(len(out))
}

func (r *memReviewRepo) ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	out, total := r.filter(func(rv models.Review) bool { return rv.RevieweeID == revieweeID })
	return out, total, nil
}

func (r *memReviewRepo) ListByReviewer(ctx context.Context, reviewerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	out, total := r.filter(func(rv models.Review) bool { return rv.ReviewerID == reviewerID })
	return out, total, nil
}

func (r *memReviewRepo) SummaryForReviewee(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingSummary, error) {
	out, total := r.filter(func(rv models.Review) bool { return rv.RevieweeID == revieweeID })
	if total == 0 {
		return models.RatingSummary{}, nil
	}
	sum := 0
	for _, rv := range out {
		sum += rv.Rating
	}
	return models.RatingSummary{AverageRating: float64(sum) / float64(total), TotalReviews: total}, nil
}

func (r *memReviewRepo) Reviewees(ctx context.Context) ([]primitive.ObjectID, error) {
	out, _ := r.filter(func(models.Review) bool { return true })
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, rv := range out {
		if !seen[rv.RevieweeID] {
			seen[rv.RevieweeID] = true
			ids = append(ids, rv.RevieweeID)
		}
	}
	return ids, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func (r *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *memNotificationRepo) List(ctx context.Context, recipientID primitive.ObjectID, isRead *bool, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && (isRead == nil || n.IsRead == *isRead) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	unread := false
	_, n, err := r.List(ctx, recipientID, &unread, nil)
	return n, err
}

func (r *memNotificationRepo) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (r *memNotificationRepo) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

type memConversationRepo struct {
	mu            sync.Mutex
	conversations []*models.Conversation
}

func (r *memConversationRepo) GetOrCreate(ctx context.Context, userA, userB primitive.ObjectID, barterID *primitive.ObjectID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conversations {
		samePair := (c.Participants[0] == userA && c.Participants[1] == userB) ||
			(c.Participants[0] == userB && c.Participants[1] == userA)
		if samePair && ((barterID == nil && c.BarterID == nil) || (barterID != nil && c.BarterID != nil && *barterID == *c.BarterID)) {
			return c, nil
		}
	}
	c := &models.Conversation{ID: primitive.NewObjectID(), Participants: []primitive.ObjectID{userA, userB}, BarterID: barterID}
	r.conversations = append(r.conversations, c)
	return c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.DomainEvent
}

func (p *recordingPublisher) Publish(event *models.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingMessagePublisher struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (p *recordingMessagePublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return p.err
}

var errBoom = errors.New("boom")
