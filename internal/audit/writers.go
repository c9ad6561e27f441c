package audit

import (
	"context"
	"fmt"

	"leadtrail/internal/model"
	"leadtrail/internal/repository"

	"gorm.io/gorm"
)

// LeadHistoryWriter copies a lead's assignment and status columns into
// lead_assign_histories.
type LeadHistoryWriter struct {
	repo repository.HistoryWriter[model.LeadAssignHistory]
}

func NewLeadHistoryWriter(repo repository.HistoryWriter[model.LeadAssignHistory]) *LeadHistoryWriter {
	return &LeadHistoryWriter{repo: repo}
}

func (w *LeadHistoryWriter) Name() string { return "lead_assign_histories" }

func (w *LeadHistoryWriter) Intercept(ctx context.Context, tx *gorm.DB, ch Change) error {
	if ch.Action == model.ActionForceDeleted {
		return ErrSkip
	}
	if !ch.Touches("current_assign_user", "priority_id", "lead_status_id", "call_status_id", "status") {
		return ErrSkip
	}
	lead, ok := ch.Entity.(*model.Lead)
	if !ok {
		return fmt.Errorf("lead history: unexpected entity %T", ch.Entity)
	}

	h := &model.LeadAssignHistory{
		HistoryBase:   model.HistoryBase{Action: ch.Action, Status: lead.Status},
		LeadID:        lead.ID,
		AssignUserID:  lead.CurrentAssignUser,
		CurrentUserID: ch.ActorID,
		PriorityID:    lead.PriorityID,
		LeadStatusID:  lead.LeadStatusID,
		CallStatusID:  lead.CallStatusID,
	}
	return w.repo.WithTx(tx).Create(ctx, h)
}

// PlannerHistoryWriter snapshots a planner's assignment into planner_histories.
type PlannerHistoryWriter struct {
	repo repository.HistoryWriter[model.PlannerHistory]
}

func NewPlannerHistoryWriter(repo repository.HistoryWriter[model.PlannerHistory]) *PlannerHistoryWriter {
	return &PlannerHistoryWriter{repo: repo}
}

func (w *PlannerHistoryWriter) Name() string { return "planner_histories" }

func (w *PlannerHistoryWriter) Intercept(ctx context.Context, tx *gorm.DB, ch Change) error {
	if ch.Action == model.ActionForceDeleted {
		return ErrSkip
	}
	if !ch.Touches("brief_id", "assign_user_id", "planner_status_id", "status") {
		return ErrSkip
	}
	planner, ok := ch.Entity.(*model.Planner)
	if !ok {
		return fmt.Errorf("planner history: unexpected entity %T", ch.Entity)
	}

	h := &model.PlannerHistory{
		HistoryBase:     model.HistoryBase{Action: ch.Action, Status: planner.Status},
		PlannerID:       planner.ID,
		BriefID:         planner.BriefID,
		AssignUserID:    planner.AssignUserID,
		CurrentUserID:   ch.ActorID,
		PlannerStatusID: planner.PlannerStatusID,
	}
	return w.repo.WithTx(tx).Create(ctx, h)
}

// BriefHistoryWriter snapshots a brief's assignment into brief_assign_histories.
type BriefHistoryWriter struct {
	repo repository.HistoryWriter[model.BriefAssignHistory]
}

func NewBriefHistoryWriter(repo repository.HistoryWriter[model.BriefAssignHistory]) *BriefHistoryWriter {
	return &BriefHistoryWriter{repo: repo}
}

func (w *BriefHistoryWriter) Name() string { return "brief_assign_histories" }

func (w *BriefHistoryWriter) Intercept(ctx context.Context, tx *gorm.DB, ch Change) error {
	if ch.Action == model.ActionForceDeleted {
		return ErrSkip
	}
	if !ch.Touches("assign_user_id", "priority_id", "brief_status_id", "status") {
		return ErrSkip
	}
	brief, ok := ch.Entity.(*model.Brief)
	if !ok {
		return fmt.Errorf("brief history: unexpected entity %T", ch.Entity)
	}

	h := &model.BriefAssignHistory{
		HistoryBase:   model.HistoryBase{Action: ch.Action, Status: brief.Status},
		BriefID:       brief.ID,
		AssignUserID:  brief.AssignUserID,
		CurrentUserID: ch.ActorID,
		PriorityID:    brief.PriorityID,
		BriefStatusID: brief.BriefStatusID,
	}
	return w.repo.WithTx(tx).Create(ctx, h)
}

// RecordInput is what the generic writer needs to append one activity row.
type RecordInput struct {
	EntityType  string
	EntityID    uint64
	ActorID     *uint64
	Action      string
	OldData     map[string]any
	NewData     map[string]any
	Description *string
}

// ActivityWriter appends rows to the generic activity_logs table. Updates
// carry only the changed columns in old_data/new_data.
type ActivityWriter struct {
	repo repository.HistoryWriter[model.ActivityLog]
}

func NewActivityWriter(repo repository.HistoryWriter[model.ActivityLog]) *ActivityWriter {
	return &ActivityWriter{repo: repo}
}

func (w *ActivityWriter) Name() string { return "activity_logs" }

func (w *ActivityWriter) Intercept(ctx context.Context, tx *gorm.DB, ch Change) error {
	desc := fmt.Sprintf("%s #%d %s", ch.EntityType, ch.EntityID, describe(ch.Action))
	_, err := w.Record(ctx, tx, RecordInput{
		EntityType:  ch.EntityType,
		EntityID:    ch.EntityID,
		ActorID:     ch.ActorID,
		Action:      ch.Action,
		OldData:     ch.Old,
		NewData:     ch.New,
		Description: &desc,
	})
	return err
}

// Record persists one activity row and returns it.
func (w *ActivityWriter) Record(ctx context.Context, tx *gorm.DB, in RecordInput) (*model.ActivityLog, error) {
	entry := &model.ActivityLog{
		HistoryBase: model.HistoryBase{Action: in.Action, Status: model.StatusActive},
		UserID:      in.ActorID,
		Model:       in.EntityType,
		ModelID:     in.EntityID,
		Description: in.Description,
		OldData:     model.Payload(in.OldData),
		NewData:     model.Payload(in.NewData),
	}
	repo := w.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func describe(action string) string {
	switch action {
	case model.ActionForceDeleted:
		return "force deleted"
	default:
		return action
	}
}
