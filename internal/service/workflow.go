package service

import (
	"context"

	"leadtrail/internal/model"
)

type (
	LeadEntityService    = EntityService[model.Lead, *model.Lead]
	BriefEntityService   = EntityService[model.Brief, *model.Brief]
	PlannerEntityService = EntityService[model.Planner, *model.Planner]
)

// LeadService adds the lead assignment and status workflow on top of the
// audited CRUD path.
type LeadService struct {
	*LeadEntityService
}

func NewLeadService(entities *LeadEntityService) *LeadService {
	return &LeadService{LeadEntityService: entities}
}

func (s *LeadService) Assign(ctx context.Context, actorID *uint64, leadID, userID uint64) (*model.Lead, error) {
	return s.Update(ctx, actorID, leadID, map[string]any{"current_assign_user": userID})
}

func (s *LeadService) ChangePriority(ctx context.Context, actorID *uint64, leadID, priorityID uint64) (*model.Lead, error) {
	return s.Update(ctx, actorID, leadID, map[string]any{"priority_id": priorityID})
}

func (s *LeadService) ChangeStatus(ctx context.Context, actorID *uint64, leadID, leadStatusID uint64) (*model.Lead, error) {
	return s.Update(ctx, actorID, leadID, map[string]any{"lead_status_id": leadStatusID})
}

func (s *LeadService) ChangeCallStatus(ctx context.Context, actorID *uint64, leadID, callStatusID uint64) (*model.Lead, error) {
	return s.Update(ctx, actorID, leadID, map[string]any{"call_status_id": callStatusID})
}

type BriefService struct {
	*BriefEntityService
}

func NewBriefService(entities *BriefEntityService) *BriefService {
	return &BriefService{BriefEntityService: entities}
}

func (s *BriefService) Assign(ctx context.Context, actorID *uint64, briefID, userID uint64) (*model.Brief, error) {
	return s.Update(ctx, actorID, briefID, map[string]any{"assign_user_id": userID})
}

func (s *BriefService) ChangeStatus(ctx context.Context, actorID *uint64, briefID, briefStatusID uint64) (*model.Brief, error) {
	return s.Update(ctx, actorID, briefID, map[string]any{"brief_status_id": briefStatusID})
}

type PlannerService struct {
	*PlannerEntityService
}

func NewPlannerService(entities *PlannerEntityService) *PlannerService {
	return &PlannerService{PlannerEntityService: entities}
}

func (s *PlannerService) Assign(ctx context.Context, actorID *uint64, plannerID, userID uint64) (*model.Planner, error) {
	return s.Update(ctx, actorID, plannerID, map[string]any{"assign_user_id": userID})
}
