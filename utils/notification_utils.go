package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/goldsip/goldsip_backend/config"
	"github.com/goldsip/goldsip_backend/models"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendWithdrawalEmail emails the user when an administrator decides their
// withdrawal request. Email failure is logged, never surfaced; the
// decision itself has already been committed.
func SendWithdrawalEmail(db *mongo.Client, userID primitive.ObjectID, status string, amount float64, notes string) {
	var user models.User
	err := config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		log.Printf("Failed to find user for withdrawal email: %v", err)
		return
	}

	subject := fmt.Sprintf("Withdrawal request %s", status)
	body := fmt.Sprintf("Dear %s,\n\nYour withdrawal request for ₹%.2f has been %s.", user.FullName, amount, status)
	if notes != "" {
		body += fmt.Sprintf("\nNote from our team: %s", notes)
	}
	body += "\n\nBest regards,\nGoldSIP Team"

	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send withdrawal email: %v", err)
	}
}

// SendFCMNotificationToUser sends a Firebase Cloud Messaging notification to a user
func SendFCMNotificationToUser(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]interface{}) error {
	collection := config.GetCollection(db, "users")
	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		log.Printf("User %s has no FCM token", userID.Hex())
		return fmt.Errorf("user has no FCM token")
	}

	if config.FirebaseApp == nil {
		log.Printf("Firebase app is not initialized")
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		log.Printf("Error getting messaging client: %v", err)
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if data != nil {
		for key, value := range data {
			if str, ok := value.(string); ok {
				notificationData[key] = str
			} else {
				notificationData[key] = fmt.Sprintf("%v", value)
			}
		}
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "goldsip_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
					Badge: func() *int { v := 1; return &v }(),
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		log.Printf("Error sending FCM notification to user: %v", err)
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent successfully to user %s: %s", userID.Hex(), response)
	return nil
}
