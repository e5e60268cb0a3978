package search

import (
	"context"
	"sync"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ChangeKind names the primary entity a mutation touched. The projector maps
// each kind to the set of documents that embed it.
type ChangeKind string

const (
	ChangeTask          ChangeKind = "task"
	ChangeTaskDeleted   ChangeKind = "task_deleted"
	ChangeStatus        ChangeKind = "status"
	ChangeTaskType      ChangeKind = "task_type"
	ChangeLabel         ChangeKind = "label"
	ChangeUser          ChangeKind = "user"
	ChangeUserDeleted   ChangeKind = "user_deleted"
	ChangeWorkspace     ChangeKind = "workspace"
	ChangeComment       ChangeKind = "comment"
	ChangeChecklistItem ChangeKind = "checklist_item"
	ChangeRole          ChangeKind = "role"
	ChangePermission    ChangeKind = "permission"
	ChangeMembership    ChangeKind = "membership"
)

type Change struct {
	Kind ChangeKind
	ID   uint
}

// Projector keeps the search index converging on the primary store. Writers
// enqueue changes fire-and-forget; a full queue drops the change and a
// failed upsert is logged, never propagated. The primary write has already
// committed and the index is a rebuildable cache.
type Projector struct {
	db      *gorm.DB
	builder *Builder
	index   Index
	log     *logrus.Logger

	ch   chan Change
	wg   sync.WaitGroup
	once sync.Once
}

func NewProjector(db *gorm.DB, index Index, log *logrus.Logger) *Projector {
	if log == nil {
		log = logrus.New()
	}
	return &Projector{
		db:      db,
		builder: NewBuilder(db),
		index:   index,
		log:     log,
		ch:      make(chan Change, 1024),
	}
}

// Start launches the background worker. Stop drains what is already queued.
func (p *Projector) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for change := range p.ch {
			p.Apply(context.Background(), change)
		}
	}()
}

func (p *Projector) Stop() {
	p.once.Do(func() { close(p.ch) })
	p.wg.Wait()
}

// Notify enqueues a change without blocking the request path.
func (p *Projector) Notify(change Change) {
	select {
	case p.ch <- change:
	default:
		p.log.WithFields(logrus.Fields{
			"kind": change.Kind,
			"id":   change.ID,
		}).Warn("projection queue full, dropping change")
	}
}

// Apply resolves the documents affected by one change and reindexes them
// synchronously. Exposed for the worker, rebuild paths and tests.
func (p *Projector) Apply(ctx context.Context, change Change) {
	switch change.Kind {
	case ChangeTask, ChangeComment, ChangeChecklistItem:
		for _, id := range p.affectedTasks(change) {
			p.reindexTask(ctx, id)
		}
	case ChangeTaskDeleted:
		if err := p.index.DeleteTask(ctx, change.ID); err != nil {
			p.logErr("delete task document", change, err)
		}
	case ChangeStatus, ChangeTaskType, ChangeLabel, ChangeWorkspace:
		for _, id := range p.affectedTasks(change) {
			p.reindexTask(ctx, id)
		}
		if change.Kind == ChangeWorkspace {
			for _, id := range p.memberUserIDs(change.ID) {
				p.reindexUser(ctx, id)
			}
		}
	case ChangeUser:
		p.reindexUser(ctx, change.ID)
		for _, id := range p.affectedTasks(change) {
			p.reindexTask(ctx, id)
		}
	case ChangeUserDeleted:
		if err := p.index.DeleteUser(ctx, change.ID); err != nil {
			p.logErr("delete user document", change, err)
		}
	case ChangeRole:
		for _, id := range p.roleUserIDs(change.ID) {
			p.reindexUser(ctx, id)
		}
	case ChangePermission:
		for _, id := range p.permissionUserIDs(change.ID) {
			p.reindexUser(ctx, id)
		}
	case ChangeMembership:
		// Membership events carry the user id: the user's permission and
		// workspace sets changed.
		p.reindexUser(ctx, change.ID)
	}
}

// affectedTasks answers "which task documents embed this entity".
func (p *Projector) affectedTasks(change Change) []uint {
	var ids []uint
	switch change.Kind {
	case ChangeTask:
		ids = []uint{change.ID}
	case ChangeStatus:
		p.db.Model(&model.Task{}).Where("status_id = ?", change.ID).Pluck("id", &ids)
	case ChangeTaskType:
		p.db.Model(&model.Task{}).Where("task_type_id = ?", change.ID).Pluck("id", &ids)
	case ChangeLabel:
		p.db.Table("task_labels").Where("label_id = ?", change.ID).Pluck("task_id", &ids)
	case ChangeWorkspace:
		p.db.Model(&model.Task{}).Where("workspace_id = ?", change.ID).Pluck("id", &ids)
	case ChangeUser:
		// Creator, assignee or watcher, deduplicated.
		seen := make(map[uint]bool)
		var direct []uint
		p.db.Model(&model.Task{}).
			Where("creator_id = ? OR assignee_id = ?", change.ID, change.ID).
			Pluck("id", &direct)
		var watched []uint
		p.db.Table("task_watchers").Where("user_id = ?", change.ID).Pluck("task_id", &watched)
		for _, id := range append(direct, watched...) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	case ChangeComment:
		var comment model.TaskComment
		if err := p.db.First(&comment, change.ID).Error; err == nil {
			ids = []uint{comment.TaskID}
		}
	case ChangeChecklistItem:
		var item model.TaskChecklistItem
		if err := p.db.First(&item, change.ID).Error; err == nil {
			ids = []uint{item.TaskID}
		}
	}
	return ids
}

func (p *Projector) memberUserIDs(workspaceID uint) []uint {
	var ids []uint
	p.db.Model(&model.UserWorkspaceRole{}).
		Where("workspace_id = ?", workspaceID).
		Distinct().
		Pluck("user_id", &ids)
	return ids
}

func (p *Projector) roleUserIDs(roleID uint) []uint {
	var ids []uint
	p.db.Model(&model.UserWorkspaceRole{}).
		Where("role_id = ?", roleID).
		Distinct().
		Pluck("user_id", &ids)
	return ids
}

func (p *Projector) permissionUserIDs(permissionID uint) []uint {
	var ids []uint
	p.db.Model(&model.UserWorkspaceRole{}).
		Joins("JOIN role_permissions ON role_permissions.role_id = user_workspace_roles.role_id").
		Where("role_permissions.permission_id = ?", permissionID).
		Distinct().
		Pluck("user_workspace_roles.user_id", &ids)
	return ids
}

func (p *Projector) reindexTask(ctx context.Context, taskID uint) {
	doc, err := p.builder.BuildTask(taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if err := p.index.DeleteTask(ctx, taskID); err != nil {
				p.logErr("delete task document", Change{Kind: ChangeTask, ID: taskID}, err)
			}
			return
		}
		p.logErr("build task document", Change{Kind: ChangeTask, ID: taskID}, err)
		return
	}
	if err := p.index.IndexTask(ctx, doc); err != nil {
		p.logErr("index task document", Change{Kind: ChangeTask, ID: taskID}, err)
	}
}

func (p *Projector) reindexUser(ctx context.Context, userID uint) {
	doc, err := p.builder.BuildUser(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if err := p.index.DeleteUser(ctx, userID); err != nil {
				p.logErr("delete user document", Change{Kind: ChangeUser, ID: userID}, err)
			}
			return
		}
		p.logErr("build user document", Change{Kind: ChangeUser, ID: userID}, err)
		return
	}
	if err := p.index.IndexUser(ctx, doc); err != nil {
		p.logErr("index user document", Change{Kind: ChangeUser, ID: userID}, err)
	}
}

// ReindexAll rebuilds every task and user document from the primary store.
func (p *Projector) ReindexAll(ctx context.Context) error {
	var taskIDs []uint
	if err := p.db.Model(&model.Task{}).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	for _, id := range taskIDs {
		p.reindexTask(ctx, id)
	}
	var userIDs []uint
	if err := p.db.Model(&model.User{}).Pluck("id", &userIDs).Error; err != nil {
		return err
	}
	for _, id := range userIDs {
		p.reindexUser(ctx, id)
	}
	return nil
}

func (p *Projector) logErr(op string, change Change, err error) {
	p.log.WithFields(logrus.Fields{
		"kind": change.Kind,
		"id":   change.ID,
	}).WithError(err).Warnf("search projection: %s failed", op)
}
