package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/models"
)

// NotificationStore persists notifications. Get returns ErrNotFound for unknown ids.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	Get(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const notificationListLimit = 50

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Notify stores n unless the actor is notifying themselves.
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) error {
	if n.RecipientID == 0 || n.RecipientID == n.ActorID {
		return nil
	}
	now := time.Now()
	n.ID = uuid.NewString()
	n.Read = false
	n.CreatedAt = now
	n.UpdatedAt = now
	return s.store.Insert(ctx, &n)
}

// List returns the newest notifications of recipientID.
func (s *NotificationService) List(ctx context.Context, recipientID uint) ([]models.Notification, error) {
	return s.store.ListByRecipient(ctx, recipientID, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string, recipientID uint) error {
	if _, err := s.owned(ctx, id, recipientID); err != nil {
		return err
	}
	return s.store.MarkRead(ctx, id)
}

func (s *NotificationService) Delete(ctx context.Context, id string, recipientID uint) error {
	if _, err := s.owned(ctx, id, recipientID); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// PurgeRead removes read notifications older than maxAge.
func (s *NotificationService) PurgeRead(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.store.DeleteReadBefore(ctx, time.Now().Add(-maxAge))
}

func (s *NotificationService) owned(ctx context.Context, id string, recipientID uint) (*models.Notification, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != recipientID {
		return nil, fmt.Errorf("%w: notification belongs to another user", ErrPermissionDenied)
	}
	return n, nil
}

// GormNotificationStore keeps notifications in the relational database.
type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormNotificationStore) ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *GormNotificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *GormNotificationStore) MarkRead(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (s *GormNotificationStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{}).Error
}

func (s *GormNotificationStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// MongoNotificationStore keeps notifications in a MongoDB collection.
type MongoNotificationStore struct {
	collection *mongo.Collection
}

func NewMongoNotificationStore(db *mongo.Database) *MongoNotificationStore {
	return &MongoNotificationStore{collection: db.Collection("notifications")}
}

func (s *MongoNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	_, err := s.collection.InsertOne(ctx, n)
	return err
}

func (s *MongoNotificationStore) ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.M{"recipient": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *MongoNotificationStore) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *MongoNotificationStore) MarkRead(ctx context.Context, id string) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}},
	)
	return err
}

func (s *MongoNotificationStore) Delete(ctx context.Context, id string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoNotificationStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.collection.DeleteMany(ctx, bson.M{"read": true, "createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
