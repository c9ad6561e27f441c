package service

import (
	"context"
	"testing"

	"leadtrail/internal/model"
	"leadtrail/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadWorkflowHistory(t *testing.T) {
	db := testutil.NewDB(t)
	leads := NewLeadService(newService[model.Lead](db))
	ctx := context.Background()
	actor := testutil.Ptr[uint64](9)

	lead := &model.Lead{Name: "Acme", PriorityID: testutil.Ptr[uint64](2), CurrentAssignUser: testutil.Ptr[uint64](5)}
	require.NoError(t, leads.Create(ctx, actor, lead))

	var rows []model.LeadAssignHistory
	require.NoError(t, db.Where("lead_id = ?", lead.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(5), *rows[0].AssignUserID)
	assert.Equal(t, uint64(2), *rows[0].PriorityID)
	assert.Equal(t, uint64(9), *rows[0].CurrentUserID)
	assert.Nil(t, rows[0].LeadStatusID)
	assert.Nil(t, rows[0].CallStatusID)

	_, err := leads.ChangePriority(ctx, actor, lead.ID, 1)
	require.NoError(t, err)

	rows = nil
	require.NoError(t, db.Where("lead_id = ?", lead.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, model.ActionUpdated, rows[1].Action)
	assert.Equal(t, uint64(1), *rows[1].PriorityID)
	assert.Equal(t, uint64(5), *rows[1].AssignUserID)
	assert.Nil(t, rows[1].LeadStatusID)
	assert.Nil(t, rows[1].CallStatusID)

	_, err = leads.Update(ctx, actor, lead.ID, map[string]any{"email": "ops@acme.test"})
	require.NoError(t, err)

	var trail int64
	require.NoError(t, db.Model(&model.LeadAssignHistory{}).Where("lead_id = ?", lead.ID).Count(&trail).Error)
	assert.Equal(t, int64(2), trail)

	assigned, err := leads.Assign(ctx, actor, lead.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), *assigned.CurrentAssignUser)

	_, err = leads.ChangeStatus(ctx, actor, lead.ID, 3)
	require.NoError(t, err)
	called, err := leads.ChangeCallStatus(ctx, actor, lead.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), *called.CallStatusID)

	require.NoError(t, db.Model(&model.LeadAssignHistory{}).Where("lead_id = ?", lead.ID).Count(&trail).Error)
	assert.Equal(t, int64(5), trail)
}

func TestBriefWorkflowHistory(t *testing.T) {
	db := testutil.NewDB(t)
	briefs := NewBriefService(newService[model.Brief](db))
	ctx := context.Background()

	brief := &model.Brief{Name: "Q3 launch", Budget: 1000}
	require.NoError(t, briefs.Create(ctx, nil, brief))

	_, err := briefs.Assign(ctx, nil, brief.ID, 8)
	require.NoError(t, err)
	_, err = briefs.ChangeStatus(ctx, nil, brief.ID, 2)
	require.NoError(t, err)
	_, err = briefs.Update(ctx, nil, brief.ID, map[string]any{"budget": 2500.5})
	require.NoError(t, err)

	var rows []model.BriefAssignHistory
	require.NoError(t, db.Where("brief_id = ?", brief.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Nil(t, rows[0].AssignUserID)
	assert.Nil(t, rows[0].CurrentUserID)
	assert.Equal(t, uint64(8), *rows[2].AssignUserID)
	assert.Equal(t, uint64(2), *rows[2].BriefStatusID)

	rowsActivity := activityFor(t, db, "Brief", brief.ID)
	assert.Len(t, rowsActivity, 4)
}

func TestPlannerHistoryFollowsSoftDelete(t *testing.T) {
	db := testutil.NewDB(t)
	planners := NewPlannerService(newService[model.Planner](db))
	ctx := context.Background()

	planner := &model.Planner{BriefID: 3, Notes: "media mix"}
	require.NoError(t, planners.Create(ctx, nil, planner))
	_, err := planners.Assign(ctx, nil, planner.ID, 12)
	require.NoError(t, err)
	require.NoError(t, planners.Delete(ctx, nil, planner.ID))
	_, err = planners.Restore(ctx, nil, planner.ID)
	require.NoError(t, err)
	require.NoError(t, planners.ForceDelete(ctx, nil, planner.ID))

	var rows []model.PlannerHistory
	require.NoError(t, db.Where("planner_id = ?", planner.ID).Order("id").Find(&rows).Error)

	actions := make([]string, 0, len(rows))
	for _, r := range rows {
		actions = append(actions, r.Action)
	}
	assert.Equal(t, []string{model.ActionCreated, model.ActionUpdated, model.ActionDeleted, model.ActionRestored}, actions)
	assert.Equal(t, model.StatusActive, rows[2].Status)
	assert.Equal(t, uint64(12), *rows[3].AssignUserID)
}
