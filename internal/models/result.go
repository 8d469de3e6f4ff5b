package models

// OrchestrationState tracks where a creation attempt is in its lifecycle.
// Failed is only reachable from Creating: category attachment and image upload
// are best-effort stages and never fail the workflow as a whole.
type OrchestrationState string

const (
	StateIdle                OrchestrationState = "idle"
	StateCreating            OrchestrationState = "creating"
	StateAttachingCategories OrchestrationState = "attaching_categories"
	StateUploadingImages     OrchestrationState = "uploading_images"
	StateDone                OrchestrationState = "done"
	StateFailed              OrchestrationState = "failed"
)

// OrchestrationResult is the per-attempt outcome of the creation workflow.
// It exists for the duration of one submission and is discarded after the
// terminal notification has been emitted.
type OrchestrationResult struct {
	ProductID              int64              `json:"product_id"`
	State                  OrchestrationState `json:"state"`
	CategoryAttachFailures []int64            `json:"category_attach_failures,omitempty"`
	ImageUploadSucceeded   bool               `json:"image_upload_succeeded"`
	Message                string             `json:"message"`
}
