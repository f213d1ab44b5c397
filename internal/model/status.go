package model

import (
	"fmt"
	"strings"
)

// SyncState tracks how a local row relates to the server copy.
type SyncState string

const (
	SyncSynced        SyncState = "synced"
	SyncPendingCreate SyncState = "pending_create"
	SyncPendingUpdate SyncState = "pending_update"
	SyncPendingDelete SyncState = "pending_delete"
)

// Lifecycle is the task-level progress state. Entities without a lifecycle
// concept carry the empty value.
type Lifecycle string

const (
	LifecycleNotStarted Lifecycle = "not_started"
	LifecycleInProgress Lifecycle = "in_progress"
	LifecycleCompleted  Lifecycle = "completed"
)

// RowStatus combines the sync state and the optional lifecycle of a local
// row. The two axes are independent: editing a task's lifecycle must not
// disturb its sync state, and acknowledging a push must not disturb its
// lifecycle.
type RowStatus struct {
	Sync      SyncState
	Lifecycle Lifecycle
}

// Synced returns the status of a row that matches the server copy.
func Synced(lc Lifecycle) RowStatus {
	return RowStatus{Sync: SyncSynced, Lifecycle: lc}
}

// PendingCreate returns the status of a row created locally and not yet
// pushed.
func PendingCreate(lc Lifecycle) RowStatus {
	return RowStatus{Sync: SyncPendingCreate, Lifecycle: lc}
}

// AfterLocalEdit returns the status after a local mutation that sets the
// lifecycle to lc. A row that was never pushed remains a pending create;
// every other state becomes a pending update.
func (s RowStatus) AfterLocalEdit(lc Lifecycle) RowStatus {
	if s.Sync == SyncPendingCreate {
		return RowStatus{Sync: SyncPendingCreate, Lifecycle: lc}
	}
	return RowStatus{Sync: SyncPendingUpdate, Lifecycle: lc}
}

// AfterLocalDelete returns the status after a local delete. Rows still in
// pending_create must not reach this path: they are discarded outright by
// the store and never pushed as deletes.
func (s RowStatus) AfterLocalDelete() RowStatus {
	return RowStatus{Sync: SyncPendingDelete, Lifecycle: s.Lifecycle}
}

// AfterPushAck returns the status after the server acknowledged a create or
// update push. Acknowledged deletes remove the row instead.
func (s RowStatus) AfterPushAck() RowStatus {
	return RowStatus{Sync: SyncSynced, Lifecycle: s.Lifecycle}
}

// IsPending reports whether the row still has unpushed local work.
func (s RowStatus) IsPending() bool {
	return s.Sync != SyncSynced
}

// Encode renders the status in the combined wire/storage form:
// "pending_create:in_progress" for pending rows with a lifecycle, the bare
// sync tag otherwise. This is the only place the colon form is produced.
func (s RowStatus) Encode() string {
	if s.Lifecycle != "" && (s.Sync == SyncPendingCreate || s.Sync == SyncPendingUpdate) {
		return string(s.Sync) + ":" + string(s.Lifecycle)
	}
	return string(s.Sync)
}

// ParseRowStatus parses the combined form produced by Encode. This is the
// only place the colon form is consumed.
func ParseRowStatus(raw string) (RowStatus, error) {
	tag, suffix, hasSuffix := strings.Cut(raw, ":")

	st := RowStatus{Sync: SyncState(tag)}
	switch st.Sync {
	case SyncSynced, SyncPendingDelete:
		if hasSuffix {
			return RowStatus{}, fmt.Errorf("status %q: %s does not take a lifecycle suffix", raw, tag)
		}
		return st, nil
	case SyncPendingCreate, SyncPendingUpdate:
		if hasSuffix {
			lc := Lifecycle(suffix)
			switch lc {
			case LifecycleNotStarted, LifecycleInProgress, LifecycleCompleted:
				st.Lifecycle = lc
			default:
				return RowStatus{}, fmt.Errorf("status %q: unknown lifecycle %q", raw, suffix)
			}
		}
		return st, nil
	default:
		return RowStatus{}, fmt.Errorf("unknown sync state %q", raw)
	}
}
