package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReceiptThumbnailRetry = "media.receipt_thumbnail.retry"

type ReceiptThumbnailRetryPayload struct {
	ReceiptID  string `json:"receiptId"`
	TenantID   string `json:"tenantId"`
	StorageKey string `json:"storageKey"`
}

func NewReceiptThumbnailRetryTask(payload ReceiptThumbnailRetryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptThumbnailRetry, data), nil
}

func ParseReceiptThumbnailRetryPayload(task *asynq.Task) (ReceiptThumbnailRetryPayload, error) {
	var payload ReceiptThumbnailRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReceiptThumbnailRetryPayload{}, err
	}
	return payload, nil
}

// receiptThumbnailTaskID keeps at most one pending retry per receipt.
func receiptThumbnailTaskID(receiptID string) string {
	return "receipt-thumbnail:" + receiptID
}
