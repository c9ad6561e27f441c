package audit

import (
	"leadtrail/internal/metrics"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"

	"gorm.io/gorm"
)

// NewDefaultRegistry wires the history writers: the specialized trails for
// leads, briefs and planners, and the activity log for every watched entity.
func NewDefaultRegistry(db *gorm.DB, observer metrics.HistoryObserver) *Registry {
	r := NewRegistry(NewSnapshotter(db.NamingStrategy), observer)

	r.Register(TypeName(&model.Lead{}), NewLeadHistoryWriter(repository.NewLeadHistoryRepository(db)))
	r.Register(TypeName(&model.Planner{}), NewPlannerHistoryWriter(repository.NewPlannerHistoryRepository(db)))
	r.Register(TypeName(&model.Brief{}), NewBriefHistoryWriter(repository.NewBriefHistoryRepository(db)))
	r.RegisterEntities(model.Watched(), NewActivityWriter(repository.NewActivityLogRepository(db)))
	return r
}
