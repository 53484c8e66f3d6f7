package acs

import (
	"github.com/nanoncore/nano-access/cwmp"
	"github.com/nanoncore/nano-access/model"
)

// Decision is the outcome of dispatching one Inform: the reply to send
// in place of a bare InformResponse, and the task it carries, if any.
type Decision struct {
	// Task is the queue entry the reply carries, nil when the reply is
	// a plain InformResponse.
	Task *model.Task

	// Reply is the envelope to send back. Never nil.
	Reply cwmp.Outbound
}

// Dispatch picks the device's next task for one Inform session. Pure
// function over a snapshot: the oldest non-terminal task wins, and its
// RPC replaces the InformResponse. An in_progress task is re-issued
// as-is so an interrupted session can finish. With nothing to do the
// reply is a bare InformResponse. State transitions are the store's
// job, not Dispatch's.
func Dispatch(tasks []model.Task, inform *cwmp.Inform) Decision {
	var picked *model.Task
	for i := range tasks {
		task := &tasks[i]
		if task.Terminal() {
			continue
		}
		if picked == nil || task.CreatedAt.Before(picked.CreatedAt) {
			picked = task
		}
	}

	if picked == nil {
		return Decision{Reply: &cwmp.InformResponse{ID: inform.ID, MaxEnvelopes: 1}}
	}

	reply := taskRPC(picked)
	if reply == nil {
		// Unknown kind: answer the Inform normally rather than stall
		// the session.
		return Decision{Reply: &cwmp.InformResponse{ID: inform.ID, MaxEnvelopes: 1}}
	}
	return Decision{Task: picked, Reply: reply}
}

// taskRPC builds the outbound RPC for a task. The task ID doubles as
// the cwmp:ID header so the response session can be matched back.
func taskRPC(task *model.Task) cwmp.Outbound {
	switch task.Kind {
	case model.TaskGetParameterValues:
		return &cwmp.GetParameterValues{
			ID:             task.ID,
			ParameterNames: task.ParameterNames,
		}
	case model.TaskSetParameterValues:
		return &cwmp.SetParameterValues{
			ID:           task.ID,
			ParameterKey: task.CommandKey,
			Parameters:   task.Parameters,
		}
	case model.TaskDownload:
		var spec model.DownloadSpec
		if task.Download != nil {
			spec = *task.Download
		}
		return &cwmp.Download{
			ID:         task.ID,
			CommandKey: task.CommandKey,
			Spec:       spec,
		}
	case model.TaskReboot:
		return &cwmp.Reboot{ID: task.ID, CommandKey: task.CommandKey}
	case model.TaskFactoryReset:
		return &cwmp.FactoryReset{ID: task.ID}
	default:
		return nil
	}
}
