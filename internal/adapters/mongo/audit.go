package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/selvamkrish/table-reservations-and-content/internal/domain"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger records staff-facing mutations (status transitions, content
// CRUD) for diagnostics. Best-effort: a failed audit write is logged and
// never surfaced.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	Actor     string    `bson:"actor"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action, actor string, data map[string]interface{}) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}

func (a *AuditLogger) LogStatusChange(ctx context.Context, reservationID uuid.UUID, from, to domain.Status, actor string) error {
	return a.LogEvent(ctx, "reservation.status_changed", actor, map[string]interface{}{
		"reservation_id": reservationID,
		"from":           from,
		"to":             to,
	})
}

func (a *AuditLogger) LogContentChange(ctx context.Context, collection, action string, id uuid.UUID, actor string) error {
	return a.LogEvent(ctx, "content."+action, actor, map[string]interface{}{
		"collection": collection,
		"doc_id":     id,
	})
}
