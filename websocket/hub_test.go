package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestSendToUserConcurrentWrites pushes notifications to one client from
// many goroutines at once. Commission distributions fan out like this
// when several ancestors share a connection window; every message must
// arrive intact because writes to a connection are serialized.
func TestSendToUserConcurrentWrites(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := primitive.NewObjectID()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.register <- &Client{UserID: userID, Conn: conn}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration races the dial; wait until the hub can reach the user.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := hub.SendToUser(userID, Notification{Type: "connected"}); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				notification := Notification{
					Type:    NotificationTypeCommissionCredited,
					Message: "You earned a referral commission",
					UserID:  userID.Hex(),
				}
				if err := hub.SendToUser(userID, notification); err != nil {
					t.Errorf("SendToUser: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	// One message from the registration wait plus the fan-out.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < writers*perWriter+1; i++ {
		var got Notification
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
}

func TestSendToUserNotConnected(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	if err := hub.SendToUser(primitive.NewObjectID(), Notification{Type: "connected"}); err == nil {
		t.Fatal("expected an error for a user with no connection")
	}
}
