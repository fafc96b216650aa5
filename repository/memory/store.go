// Package memory implements the repository interfaces on top of plain Go
// maps guarded by one mutex. Every method is atomic with respect to the
// others, matching the transactional guarantees of the Postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type userBadgeKey struct {
	userID  int64
	badgeID int64
}

// Store holds every table in memory.
type Store struct {
	mu sync.Mutex

	seq int64
	now func() time.Time

	users      map[int64]*domain.User
	tasks      map[int64]*domain.Task
	points     []domain.PointsLogEntry
	badges     []domain.Badge
	userBadges map[userBadgeKey]domain.UserBadge
	activity   []domain.ActivityLogEntry
	comments   []domain.Comment
	sessions   map[string]domain.Session
	ranking    []domain.RankingEntry
	rankingSet bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[int64]*domain.User),
		tasks:      make(map[int64]*domain.Task),
		userBadges: make(map[userBadgeKey]domain.UserBadge),
		sessions:   make(map[string]domain.Session),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Tasks() repository.TaskRepository { return taskRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }
func (s *Store) Points() repository.PointsRepository { return pointsRepo{s} }
func (s *Store) Badges() repository.BadgeRepository { return badgeRepo{s} }
func (s *Store) Activity() repository.ActivityRepository { return activityRepo{s} }
func (s *Store) Stats() repository.StatsRepository { return statsRepo{s} }
func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }
func (s *Store) RankingCache() repository.RankingCache { return rankingCache{s} }

// SetClock overrides the time source used for generated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// PointsLog returns a copy of every ledger entry for userID in insertion order.
func (s *Store) PointsLog(userID int64) []domain.PointsLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PointsLogEntry
	for _, e := range s.points {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// UserBadgeCount returns the number of award rows for userID.
func (s *Store) UserBadgeCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.userBadges {
		if k.userID == userID {
			n++
		}
	}
	return n
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	now := r.s.now()
	user.ID = r.s.nextID()
	user.TotalPoints = 0
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r userRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = user.Name
	u.Phone = user.Phone
	u.UpdatedAt = r.s.now()
	user.UpdatedAt = u.UpdatedAt
	return nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r taskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Task
	for _, t := range r.s.tasks {
		if filter.AssigneeID != 0 && !t.IsAssignee(filter.AssigneeID) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r taskRepo) Create(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.SortOrder <= 0 {
		maxOrder := 0
		for _, t := range r.s.tasks {
			if t.SortOrder > maxOrder {
				maxOrder = t.SortOrder
			}
		}
		task.SortOrder = maxOrder + 1
	}
	now := r.s.now()
	task.ID = r.s.nextID()
	task.CreatedAt, task.UpdatedAt = now, now
	cp := *task
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r taskRepo) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.Title = task.Title
	t.Description = task.Description
	t.Priority = task.Priority
	t.AssigneeID = task.AssigneeID
	t.DueDate = task.DueDate
	t.SortOrder = task.SortOrder
	t.UpdatedAt = r.s.now()
	task.UpdatedAt = t.UpdatedAt
	return nil
}

func (r taskRepo) UpdateStatus(_ context.Context, task *domain.Task, from domain.TaskStatus) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if t.Status != from {
		return domain.ErrTaskConflict
	}
	t.Status = task.Status
	t.CompletedAt = task.CompletedAt
	t.PointsAwarded = task.PointsAwarded
	t.UpdatedAt = r.s.now()
	task.UpdatedAt = t.UpdatedAt
	return nil
}

func (r taskRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.TaskID != id {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
	return nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[comment.TaskID]; !ok {
		return domain.ErrTaskNotFound
	}
	comment.ID = r.s.nextID()
	comment.CreatedAt = r.s.now()
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r commentRepo) ListByTask(_ context.Context, taskID int64) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

type pointsRepo struct{ s *Store }

func (r pointsRepo) Grant(_ context.Context, entry *domain.PointsLogEntry) (int, error) {
	if entry == nil {
		return 0, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[entry.UserID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	entry.ID = r.s.nextID()
	entry.CreatedAt = r.s.now()
	r.s.points = append(r.s.points, *entry)
	u.TotalPoints += entry.Delta
	return u.TotalPoints, nil
}

func (r pointsRepo) History(_ context.Context, userID int64, limit int) ([]domain.PointsLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	var out []domain.PointsLogEntry
	for i := len(r.s.points) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.points[i].UserID == userID {
			out = append(out, r.s.points[i])
		}
	}
	return out, nil
}

func (r pointsRepo) Total(_ context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	return u.TotalPoints, nil
}

type badgeRepo struct{ s *Store }

func (r badgeRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.badges), nil
}

func (r badgeRepo) InsertCatalog(_ context.Context, badges []domain.Badge) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inserted := 0
	for _, b := range badges {
		if r.hasName(b.Name) {
			continue
		}
		b.ID = r.s.nextID()
		r.s.badges = append(r.s.badges, b)
		inserted++
	}
	return inserted, nil
}

func (r badgeRepo) hasName(name string) bool {
	for _, b := range r.s.badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

func (r badgeRepo) List(_ context.Context) ([]domain.Badge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Badge(nil), r.s.badges...), nil
}

func (r badgeRepo) ListEarned(_ context.Context, userID int64) ([]domain.UserBadge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.UserBadge
	for k, ub := range r.s.userBadges {
		if k.userID != userID {
			continue
		}
		for i := range r.s.badges {
			if r.s.badges[i].ID == ub.BadgeID {
				b := r.s.badges[i]
				ub.Badge = &b
			}
		}
		out = append(out, ub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r badgeRepo) Award(_ context.Context, userID, badgeID int64, earnedAt time.Time) (*domain.UserBadge, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := false
	for _, b := range r.s.badges {
		if b.ID == badgeID {
			found = true
			break
		}
	}
	if !found {
		return nil, false, domain.ErrBadgeNotFound
	}
	key := userBadgeKey{userID: userID, badgeID: badgeID}
	if _, exists := r.s.userBadges[key]; exists {
		return nil, false, nil
	}
	ub := domain.UserBadge{ID: r.s.nextID(), UserID: userID, BadgeID: badgeID, EarnedAt: earnedAt}
	r.s.userBadges[key] = ub
	return &ub, true, nil
}

type activityRepo struct{ s *Store }

func (r activityRepo) Append(_ context.Context, entry *domain.ActivityLogEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.nextID()
	entry.CreatedAt = r.s.now()
	r.s.activity = append(r.s.activity, *entry)
	return nil
}

func (r activityRepo) List(_ context.Context, filter repository.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	var out []domain.ActivityLogEntry
	for i := len(r.s.activity) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.s.activity[i]
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type statsRepo struct{ s *Store }

func (r statsRepo) TaskCounts(_ context.Context, assigneeID int64, now time.Time) (domain.TaskCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return domain.CountTasks(r.s.tasksFor(assigneeID), now), nil
}

func (r statsRepo) UserStatistics(_ context.Context, userID int64) (domain.UserStatistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return domain.UserStatistics{}, domain.ErrUserNotFound
	}

	var completed []domain.Task
	for _, t := range r.s.tasksFor(userID) {
		if t.IsCompleted() {
			completed = append(completed, t)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		if !completed[i].CompletedAt.Equal(*completed[j].CompletedAt) {
			return completed[i].CompletedAt.After(*completed[j].CompletedAt)
		}
		return completed[i].ID > completed[j].ID
	})

	stats := domain.UserStatistics{TotalPoints: u.TotalPoints, CompletedTasks: len(completed)}
	flags := make([]bool, len(completed))
	for i := range completed {
		flags[i] = completed[i].CompletedOnTime()
		if flags[i] {
			stats.OnTimeCompletions++
		}
	}
	stats.OnTimeStreak = domain.OnTimeStreak(flags)
	return stats, nil
}

func (r statsRepo) Ranking(_ context.Context) ([]domain.RankingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.RankingEntry, 0, len(r.s.users))
	for _, u := range r.s.users {
		e := domain.RankingEntry{UserID: u.ID, Name: u.Name, Role: u.Role, TotalPoints: u.TotalPoints}
		for _, t := range r.s.tasksFor(u.ID) {
			e.TotalAssigned++
			if t.IsCompleted() {
				e.CompletedTasks++
			}
			if t.CompletedOnTime() {
				e.OnTimeTasks++
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// tasksFor must be called with the lock held.
func (s *Store) tasksFor(assigneeID int64) []domain.Task {
	var out []domain.Task
	for _, t := range s.tasks {
		if assigneeID == 0 || t.IsAssignee(assigneeID) {
			out = append(out, *t)
		}
	}
	return out
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.IsExpired(r.s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (r sessionRepo) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == 0 {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = *session
	return nil
}

func (r sessionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r sessionRepo) Extend(_ context.Context, id string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.ExpiresAt = r.s.now().Add(ttl)
	r.s.sessions[id] = sess
	return nil
}

type rankingCache struct{ s *Store }

func (c rankingCache) Get(_ context.Context) ([]domain.RankingEntry, bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.s.rankingSet {
		return nil, false, nil
	}
	return append([]domain.RankingEntry(nil), c.s.ranking...), true, nil
}

func (c rankingCache) Set(_ context.Context, entries []domain.RankingEntry) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.ranking = append([]domain.RankingEntry(nil), entries...)
	c.s.rankingSet = true
	return nil
}

func (c rankingCache) Invalidate(_ context.Context) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.ranking = nil
	c.s.rankingSet = false
	return nil
}
