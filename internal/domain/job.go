package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether a job in this status will never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// CanTransition reports whether a status change is allowed. A job moves
// queued -> running exactly once (the claim) and from running only to a
// terminal status. running -> running is permitted because the retry loop
// re-asserts the status after a backoff wait.
func CanTransition(from, to JobStatus) bool {
	switch from {
	case JobStatusQueued:
		return to == JobStatusRunning
	case JobStatusRunning:
		return to == JobStatusRunning || to == JobStatusSucceeded || to == JobStatusFailed
	default:
		return false
	}
}

// JobStage enumerates the pipeline sub-steps, tracked separately from status
// so clients can render progress while the job is running.
type JobStage string

const (
	StageInit      JobStage = "init"
	StageSpec      JobStage = "spec"
	StagePlan      JobStage = "plan"
	StageRender    JobStage = "render"
	StageImage     JobStage = "image"
	StageRetryWait JobStage = "retry_wait"
	StageDone      JobStage = "done"
)

// FailureCode classifies terminal and mid-retry failures.
type FailureCode string

const (
	FailureProviderTransient FailureCode = "provider_transient"
	FailureProviderPermanent FailureCode = "provider_permanent"
	FailureValidation        FailureCode = "validation"
	FailureSystem            FailureCode = "system"
)

// JobPriority orders queued work; high-priority jobs are claimed first.
type JobPriority string

const (
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
)

// ProviderCallMeta records one upstream generation call made on behalf of a
// job. Reused parent specs are recorded with provider "reuse".
type ProviderCallMeta struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	RequestID    string `json:"request_id,omitempty"`
	LatencyMS    int64  `json:"latency_ms,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	TotalTokens  int    `json:"total_tokens,omitempty"`
	ImageTokens  int    `json:"image_tokens,omitempty"`
}

// ProviderMeta aggregates provider usage across all attempts of a job.
type ProviderMeta struct {
	Calls                []ProviderCallMeta `json:"calls"`
	ReuseSpec            bool               `json:"reuse_spec,omitempty"`
	RegeneratedFromJobID string             `json:"regenerated_from_job_id,omitempty"`
}

// Job is the unit of work: one request to turn a prompt into design
// artifacts. It is created queued, claimed exactly once by a worker and
// mutated only by that worker until it reaches a terminal status.
type Job struct {
	ID                string
	UID               string
	SessionID         string
	ParentJobID       string
	Prompt            string
	Bedrooms          int
	Bathrooms         int
	Style             string
	WantExteriorImage bool
	IdempotencyKey    string
	RequestHash       string
	Priority          JobPriority
	Status            JobStatus
	Stage             JobStage
	Error             string
	FailureCode       FailureCode
	RetryCount        int
	ProviderMeta      ProviderMeta
	StageTimestamps   map[string]string
	Warnings          []string
	HouseSpec         *HouseSpec
	PlanGraph         *PlanGraph
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone returns a deep copy so store snapshots cannot alias caller state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.ProviderMeta.Calls = append([]ProviderCallMeta(nil), j.ProviderMeta.Calls...)
	out.Warnings = append([]string(nil), j.Warnings...)
	if j.StageTimestamps != nil {
		out.StageTimestamps = make(map[string]string, len(j.StageTimestamps))
		for k, v := range j.StageTimestamps {
			out.StageTimestamps[k] = v
		}
	}
	if j.HouseSpec != nil {
		spec := *j.HouseSpec
		spec.Rooms = append([]Room(nil), j.HouseSpec.Rooms...)
		spec.Notes = append([]string(nil), j.HouseSpec.Notes...)
		out.HouseSpec = &spec
	}
	if j.PlanGraph != nil {
		plan := *j.PlanGraph
		plan.Rooms = append([]PlanRoom(nil), j.PlanGraph.Rooms...)
		plan.Edges = append([]PlanEdge(nil), j.PlanGraph.Edges...)
		plan.Warnings = append([]string(nil), j.PlanGraph.Warnings...)
		out.PlanGraph = &plan
	}
	return &out
}

// Session groups jobs created from one design studio.
type Session struct {
	ID        string
	UID       string
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
