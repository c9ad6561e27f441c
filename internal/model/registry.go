package model

// Watched lists every entity whose lifecycle lands in activity_logs.
func Watched() []any {
	return []any{
		&Lead{}, &Brief{}, &Planner{}, &Agency{}, &Brand{},
		&Role{}, &Permission{}, &Department{}, &Designation{}, &MissCampaign{},
		&Industry{}, &LeadSubSource{}, &Meeting{}, &Team{}, &User{},
	}
}

// Migrations lists every table the service owns, entities first.
func Migrations() []any {
	return append(Watched(),
		&LeadAssignHistory{}, &PlannerHistory{}, &BriefAssignHistory{}, &ActivityLog{},
	)
}
