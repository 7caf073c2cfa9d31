package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/atelier/pkg/database"
)

// FailedJobRepository persists exhausted queue jobs to the failed_jobs
// collection. It satisfies queue.FailedStore.
type FailedJobRepository struct {
	col *mongo.Collection
}

func NewFailedJobRepository() *FailedJobRepository {
	return &FailedJobRepository{col: database.Collection("failed_jobs")}
}

type failedJobDoc struct {
	JobType  string    `bson:"jobType"`
	Payload  string    `bson:"payload"`
	Error    string    `bson:"error"`
	Attempts int       `bson:"attempts"`
	FailedAt time.Time `bson:"failedAt"`
}

// SaveFailed writes one durable failed-job record.
func (r *FailedJobRepository) SaveFailed(jobType string, payload []byte, jobErr error, attempts int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := r.col.InsertOne(ctx, failedJobDoc{
		JobType:  jobType,
		Payload:  string(payload),
		Error:    jobErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	})
	return err
}
