package bedspace

// PremisesTotals summarises the statuses of all bedspaces in one premises.
// The premises' aggregate status is derived from these counts, never stored.
type PremisesTotals struct {
	Online   int `json:"online"`
	Archived int `json:"archived"`
	Upcoming int `json:"upcoming"`
}

// FullyArchived reports whether the premises has no online or upcoming
// bedspaces left. Archiving the last online bedspace makes this true, which
// is reported to the user as the property itself being archived.
func (t PremisesTotals) FullyArchived() bool {
	return t.Online == 0 && t.Upcoming == 0 && t.Archived > 0
}

// FullyOnline reports whether every bedspace in the premises is online or
// upcoming. Unarchiving the last archived bedspace makes this true, reported
// as the property coming back online.
func (t PremisesTotals) FullyOnline() bool {
	return t.Archived == 0 && t.Online+t.Upcoming > 0
}
