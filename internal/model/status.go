package model

import "fmt"

// DocumentStatus is the lifecycle state of a transmittal. A document can only
// ever hold one of the values below; anything else is rejected at parse time.
type DocumentStatus string

const (
	StatusDraft              DocumentStatus = "draft"
	StatusSentToBranch       DocumentStatus = "sent_to_branch"
	StatusAcknowledged       DocumentStatus = "acknowledged"
	StatusSentBackToDistrict DocumentStatus = "sent_back_to_district"
	StatusAllChecked         DocumentStatus = "all_checked"
	StatusComplete           DocumentStatus = "complete"
)

// ParseDocumentStatus validates a raw status string.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	status := DocumentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown document status %q", s)
	}
	return status, nil
}

// Valid reports whether the status is a node of the lifecycle graph.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSentToBranch, StatusAcknowledged,
		StatusSentBackToDistrict, StatusAllChecked, StatusComplete:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves this status.
func (s DocumentStatus) Terminal() bool {
	return s == StatusComplete
}

func (s DocumentStatus) String() string {
	return string(s)
}

// statusTransitions is the full lifecycle graph: for each current status, the
// statuses directly reachable from it and the roles allowed to perform the
// move. There are no jump transitions; a pair absent here is illegal.
//
//	draft -> sent_to_branch -> acknowledged -> sent_back_to_district -> all_checked -> complete
//
// A branch may also bounce a transmittal straight back without acknowledging
// (sent_to_branch -> sent_back_to_district).
var statusTransitions = map[DocumentStatus]map[DocumentStatus][]RoleName{
	StatusDraft: {
		StatusSentToBranch: {RoleUploader, RoleAdmin, RoleDistrictManager},
	},
	StatusSentToBranch: {
		StatusAcknowledged:       {RoleBranchUser, RoleBranchManager, RoleAdmin},
		StatusSentBackToDistrict: {RoleBranchUser, RoleBranchManager, RoleAdmin},
	},
	StatusAcknowledged: {
		StatusSentBackToDistrict: {RoleBranchUser, RoleBranchManager, RoleAdmin},
	},
	StatusSentBackToDistrict: {
		StatusAllChecked: {RoleAdmin, RoleDistrictManager},
	},
	StatusAllChecked: {
		StatusComplete: {RoleAdmin, RoleDistrictManager, RoleUploader},
	},
}

// AllowedTransitionRoles returns the roles permitted to move a document from
// one status to another. ok is false when the edge does not exist.
func AllowedTransitionRoles(from, to DocumentStatus) (roles []RoleName, ok bool) {
	next, ok := statusTransitions[from]
	if !ok {
		return nil, false
	}
	roles, ok = next[to]
	return roles, ok
}

// NextStatuses lists the statuses directly reachable from the given one.
func NextStatuses(from DocumentStatus) []DocumentStatus {
	next := statusTransitions[from]
	out := make([]DocumentStatus, 0, len(next))
	for to := range next {
		out = append(out, to)
	}
	return out
}
