// Command challengewatch follows a user's challenges over the WebSocket
// stream and prints every snapshot.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

type challenge struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Exercise            string `json:"exercise"`
	TargetRepetitions   int    `json:"target_repetitions"`
	CreatorProgress     int    `json:"creator_progress"`
	ParticipantProgress int    `json:"participant_progress"`
	Status              string `json:"status"`
	Role                string `json:"role"`
	Winner              string `json:"winner"`
}

type frame struct {
	Type       string      `json:"type"`
	Challenges []challenge `json:"challenges"`
	Error      string      `json:"error"`
	At         time.Time   `json:"at"`
}

func main() {
	host := flag.String("host", "localhost:8080", "API server host")
	secure := flag.Bool("tls", false, "Use wss://")
	token := flag.String("token", os.Getenv("GYMRACE_TOKEN"), "Bearer token")
	user := flag.String("user", "", "Mint a development token for this user ID instead of -token")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret used with -user")
	refresh := flag.Duration("refresh", 0, "Ask for a snapshot on this interval as well (0 disables)")
	flag.Parse()

	if *user != "" {
		minted, err := devToken(*user, *secret)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		*token = minted
	}
	if *token == "" {
		log.Fatal("a -token or -user is required")
	}

	scheme := "ws"
	if *secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     *host,
		Path:     "/api/ws/challenges",
		RawQuery: url.Values{"token": {*token}}.Encode(),
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("Dial failed with status %d: %v", resp.StatusCode, err)
		}
		log.Fatalf("Dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()
	log.Printf("Watching challenges on %s", *host)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("Stream closed: %v", err)
				return
			}
			var f frame
			if err := json.Unmarshal(msg, &f); err != nil {
				log.Printf("Skipping malformed frame: %v", err)
				continue
			}
			printFrame(f)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var tick <-chan time.Time
	if *refresh > 0 {
		ticker := time.NewTicker(*refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-done:
			return
		case <-tick:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"refresh"}`)); err != nil {
				log.Printf("Refresh failed: %v", err)
				return
			}
		case <-interrupt:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}

func devToken(userID, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("-secret or JWT_SECRET is required with -user")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"jti": fmt.Sprintf("challengewatch-%d", time.Now().UnixNano()),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(12 * time.Hour).Unix(),
	}).SignedString([]byte(secret))
}

func printFrame(f frame) {
	stamp := f.At.Local().Format("15:04:05")
	if f.Type == "error" {
		fmt.Printf("[%s] error: %s\n", stamp, f.Error)
		return
	}
	fmt.Printf("[%s] %d challenge(s)\n", stamp, len(f.Challenges))
	if len(f.Challenges) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEXERCISE\tYOU\tCREATOR\tPARTICIPANT\tTARGET\tSTATUS\tLEADER")
	for _, c := range f.Challenges {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			c.Name, c.Exercise, c.Role, c.CreatorProgress, c.ParticipantProgress,
			c.TargetRepetitions, c.Status, c.Winner)
	}
	_ = w.Flush()
}
