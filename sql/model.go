package sql

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/romanqed/queuectl"
	"github.com/romanqed/queuectl/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	ID            string `bun:"id,pk"`

	Command string `bun:"command,notnull"`

	State      job.State `bun:"state,notnull,default:0"`
	Attempts   int       `bun:"attempts,notnull,default:0"`
	MaxRetries int       `bun:"max_retries,notnull,default:0"`
	NextRunAt  time.Time `bun:"next_run_at,notnull"`
	LastError  *string   `bun:"last_error,nullzero,default:null"`
	Owner      *string   `bun:"owner,nullzero,default:null"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (jm *jobModel) toJob() *job.Job {
	return &job.Job{
		ID:         jm.ID,
		Command:    jm.Command,
		State:      jm.State,
		Attempts:   jm.Attempts,
		MaxRetries: jm.MaxRetries,
		NextRunAt:  jm.NextRunAt,
		LastError:  jm.LastError,
		Owner:      jm.Owner,
		CreatedAt:  jm.CreatedAt,
		UpdatedAt:  jm.UpdatedAt,
	}
}

func fromJob(jb *job.Job) *jobModel {
	return &jobModel{
		ID:         jb.ID,
		Command:    jb.Command,
		State:      jb.State,
		Attempts:   jb.Attempts,
		MaxRetries: jb.MaxRetries,
		NextRunAt:  jb.NextRunAt,
		LastError:  jb.LastError,
		Owner:      jb.Owner,
		CreatedAt:  jb.CreatedAt,
		UpdatedAt:  jb.UpdatedAt,
	}
}

type configModel struct {
	bun.BaseModel `bun:"table:config"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value,notnull"`
}

type workerModel struct {
	bun.BaseModel `bun:"table:workers"`
	ID            string    `bun:"id,pk"`
	StartedAt     time.Time `bun:"started_at,notnull"`
}

func (wm *workerModel) toInfo() *queuectl.WorkerInfo {
	return &queuectl.WorkerInfo{
		ID:        wm.ID,
		StartedAt: wm.StartedAt,
	}
}
