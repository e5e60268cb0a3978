package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TaskFilters narrows a task search. All fields are exact-match; nil/empty
// fields are ignored.
type TaskFilters struct {
	WorkspaceID *uint
	StatusID    *uint
	Priorities  []string
	AssigneeID  *uint
	CreatorID   *uint
	IsClosed    *bool
	LabelIDs    []uint
	DueBefore   *time.Time
	DueAfter    *time.Time
}

// UserFilters narrows a user search.
type UserFilters struct {
	IsActive       *bool
	IsStaff        *bool
	IsSuperuser    *bool
	PermissionCode string
}

// Index is the secondary search store. It is best-effort: callers must treat
// every error as degraded search, never as a failed primary operation.
type Index interface {
	IndexTask(ctx context.Context, doc *TaskDocument) error
	DeleteTask(ctx context.Context, taskID uint) error
	IndexUser(ctx context.Context, doc *UserDocument) error
	DeleteUser(ctx context.Context, userID uint) error

	// SearchTasks returns ranked task ids. A query matching nothing yields an
	// empty slice and a nil error. Callers re-fetch primary rows by id and
	// must preserve the returned order; ties keep insertion order.
	SearchTasks(ctx context.Context, query string, filters TaskFilters) ([]uint, error)
	SearchUsers(ctx context.Context, query string, filters UserFilters) ([]uint, error)
}

const (
	taskKeyPrefix = "search:task:"
	taskIDSetKey  = "search:task:ids"
	userKeyPrefix = "search:user:"
	userIDSetKey  = "search:user:ids"
)

// RedisIndex keeps one JSON document per task/user plus an id set per kind.
type RedisIndex struct {
	rdb *redis.Client
}

func NewRedisIndex(rdb *redis.Client) *RedisIndex {
	return &RedisIndex{rdb: rdb}
}

func (r *RedisIndex) IndexTask(ctx context.Context, doc *TaskDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal task document: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+strconv.FormatUint(uint64(doc.ID), 10), data, 0)
	pipe.SAdd(ctx, taskIDSetKey, doc.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisIndex) DeleteTask(ctx context.Context, taskID uint) error {
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, taskKeyPrefix+strconv.FormatUint(uint64(taskID), 10))
	pipe.SRem(ctx, taskIDSetKey, taskID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisIndex) IndexUser(ctx context.Context, doc *UserDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal user document: %w", err)
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, userKeyPrefix+strconv.FormatUint(uint64(doc.ID), 10), data, 0)
	pipe.SAdd(ctx, userIDSetKey, doc.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisIndex) DeleteUser(ctx context.Context, userID uint) error {
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, userKeyPrefix+strconv.FormatUint(uint64(userID), 10))
	pipe.SRem(ctx, userIDSetKey, userID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisIndex) SearchTasks(ctx context.Context, query string, filters TaskFilters) ([]uint, error) {
	docs, err := loadDocs[TaskDocument](ctx, r.rdb, taskIDSetKey, taskKeyPrefix)
	if err != nil {
		return nil, err
	}

	type hit struct {
		id    uint
		score float64
	}
	terms := tokenize(query)
	hits := make([]hit, 0, len(docs))
	for _, doc := range docs {
		if !matchTaskFilters(doc, filters) {
			continue
		}
		score := 0.0
		if len(terms) > 0 {
			score = scoreTask(doc, terms)
			if score == 0 {
				continue
			}
		}
		hits = append(hits, hit{id: doc.ID, score: score})
	}

	// Stable sort preserves insertion order between equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids, nil
}

func (r *RedisIndex) SearchUsers(ctx context.Context, query string, filters UserFilters) ([]uint, error) {
	docs, err := loadDocs[UserDocument](ctx, r.rdb, userIDSetKey, userKeyPrefix)
	if err != nil {
		return nil, err
	}

	type hit struct {
		id    uint
		score float64
	}
	terms := tokenize(query)
	hits := make([]hit, 0, len(docs))
	for _, doc := range docs {
		if !matchUserFilters(doc, filters) {
			continue
		}
		score := 0.0
		if len(terms) > 0 {
			score = scoreUser(doc, terms)
			if score == 0 {
				continue
			}
		}
		hits = append(hits, hit{id: doc.ID, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids, nil
}

// loadDocs fetches every document of one kind in ascending id order, skipping
// ids whose document vanished between the set read and the MGET.
func loadDocs[D any](ctx context.Context, rdb *redis.Client, setKey, keyPrefix string) ([]*D, error) {
	members, err := rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + strconv.FormatUint(id, 10)
	}
	values, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]*D, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var doc D
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

func matchTaskFilters(doc *TaskDocument, f TaskFilters) bool {
	if f.WorkspaceID != nil && (doc.Workspace == nil || doc.Workspace.ID != *f.WorkspaceID) {
		return false
	}
	if f.StatusID != nil && (doc.Status == nil || doc.Status.ID != *f.StatusID) {
		return false
	}
	if len(f.Priorities) > 0 && !containsString(f.Priorities, doc.Priority) {
		return false
	}
	if f.AssigneeID != nil && (doc.Assignee == nil || doc.Assignee.ID != *f.AssigneeID) {
		return false
	}
	if f.CreatorID != nil && (doc.Creator == nil || doc.Creator.ID != *f.CreatorID) {
		return false
	}
	if f.IsClosed != nil && doc.IsClosed != *f.IsClosed {
		return false
	}
	if len(f.LabelIDs) > 0 {
		found := false
		for _, l := range doc.Labels {
			for _, want := range f.LabelIDs {
				if l.ID == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.DueBefore != nil && (doc.DueDate == nil || doc.DueDate.After(*f.DueBefore)) {
		return false
	}
	if f.DueAfter != nil && (doc.DueDate == nil || doc.DueDate.Before(*f.DueAfter)) {
		return false
	}
	return true
}

func matchUserFilters(doc *UserDocument, f UserFilters) bool {
	if f.IsActive != nil && doc.IsActive != *f.IsActive {
		return false
	}
	if f.IsStaff != nil && doc.IsStaff != *f.IsStaff {
		return false
	}
	if f.IsSuperuser != nil && doc.IsSuperuser != *f.IsSuperuser {
		return false
	}
	if f.PermissionCode != "" {
		found := false
		for _, p := range doc.Permissions {
			if p.Code == f.PermissionCode {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Field boosts mirror the primary search contract: title weighs most, then
// description, then embedded comment/label/people text.
func scoreTask(doc *TaskDocument, terms []string) float64 {
	score := 0.0
	for _, term := range terms {
		score += 3 * occurrences(doc.Title, term)
		score += 2 * occurrences(doc.Description, term)
		for _, c := range doc.Comments {
			score += occurrences(c.Content, term)
		}
		for _, l := range doc.Labels {
			score += occurrences(l.Name, term)
		}
		if doc.Assignee != nil {
			score += occurrences(doc.Assignee.FIO, term)
		}
		if doc.Creator != nil {
			score += occurrences(doc.Creator.FIO, term)
		}
	}
	return score
}

func scoreUser(doc *UserDocument, terms []string) float64 {
	score := 0.0
	for _, term := range terms {
		score += 2 * occurrences(doc.Email, term)
		score += occurrences(doc.FIO, term)
	}
	return score
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}

func occurrences(text, term string) float64 {
	if text == "" {
		return 0
	}
	return float64(strings.Count(strings.ToLower(text), term))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
