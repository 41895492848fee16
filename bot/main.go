package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Player struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Step   float64 `json:"step"`
}

type Obstacle struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Speed     float64 `json:"speed"`
	Direction string  `json:"direction"`
	Emergency bool    `json:"emergency"`
	Crashed   bool    `json:"crashed"`
	LaneIndex int     `json:"lane_index"`
}

type Lane struct {
	Direction string  `json:"direction"`
	Width     float64 `json:"width"`
	TopY      float64 `json:"top_y"`
	BottomY   float64 `json:"bottom_y"`
}

type Sign struct {
	X        float64 `json:"x"`
	Width    float64 `json:"width"`
	Flashing bool    `json:"flashing"`
}

type GameState struct {
	Tick         int64      `json:"tick"`
	Player       Player     `json:"player"`
	Obstacles    []Obstacle `json:"obstacles"`
	Lanes        []Lane     `json:"lanes"`
	Signs        []Sign     `json:"signs"`
	StreetTop    float64    `json:"street_top"`
	StreetWidth  float64    `json:"street_width"`
	StreetLength float64    `json:"street_length"`
	Crashed      bool       `json:"crashed"`
	GameOver     bool       `json:"game_over"`
	Crossings    int        `json:"crossings"`
	Message      string     `json:"message"`
	TotalMoves   int        `json:"total_moves"`
	ConfigName   string     `json:"config_name"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

type MoveRequest struct {
	Direction string `json:"direction,omitempty"`
	Reset     bool   `json:"reset,omitempty"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(configID string) (*GameState, error) {
	var reqBody []byte
	var err error

	if configID != "" {
		reqBody, err = json.Marshal(map[string]string{"config_id": configID})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/state", c.baseURL, c.sessionID)
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(body))
	}

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

type MoveResponse struct {
	Success   bool       `json:"success"`
	GameState *GameState `json:"game_state"`
	Message   string     `json:"message"`
}

func (c *Client) Move(direction string) (*GameState, error) {
	body, err := json.Marshal(MoveRequest{Direction: direction})
	if err != nil {
		return nil, fmt.Errorf("marshal move: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/move", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("execute move: %w", err)
	}
	defer resp.Body.Close()

	var moveResp MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&moveResp); err != nil {
		return nil, fmt.Errorf("parse move response: %w", err)
	}

	// A rejected move (edge of the area, game over) still returns the
	// current state, keep playing from it.
	if !moveResp.Success {
		if moveResp.GameState != nil && !moveResp.GameState.GameOver {
			return moveResp.GameState, nil
		}
		return moveResp.GameState, fmt.Errorf("move failed: %s", moveResp.Message)
	}

	return moveResp.GameState, nil
}

type ResetResponse struct {
	Message string     `json:"message"`
	State   *GameState `json:"state"`
}

func (c *Client) Reset() (*GameState, error) {
	url := fmt.Sprintf("%s/api/sessions/%s/reset", c.baseURL, c.sessionID)
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	defer resp.Body.Close()

	var resetResp ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&resetResp); err != nil {
		return nil, fmt.Errorf("parse reset response: %w", err)
	}

	return resetResp.State, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Game configuration id (classic, rush_hour)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	targetCrossings := flag.Int("crossings", 5, "Stop after this many successful crossings")
	maxAttempts := flag.Int("max-attempts", 20, "Maximum attempts (resets after a crash) before giving up")
	pollMs := flag.Int("poll", 30, "Milliseconds between state polls")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *GameState
	var err error

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		savedSessionID = *continueSession
	} else {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		// Resume existing session
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		state, err = client.GetState()
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
			savedSessionID = ""
		} else {
			log.Printf("Session resumed - Lanes: %d, Crossings: %d", len(state.Lanes), state.Crossings)
		}
	}

	if savedSessionID == "" {
		state, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)
		log.Printf("Street: %.0f units, Lanes: %d, Config: %s",
			state.StreetLength, len(state.Lanes), state.ConfigName)

		// Save session ID for next run
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	// Start every run from a clean street
	log.Printf("🔄 Resetting game state...")
	state, err = client.Reset()
	if err != nil {
		log.Fatalf("Failed to reset game: %v", err)
	}
	log.Printf("Game reset - Position: (%.0f,%.0f)", state.Player.X, state.Player.Y)

	strategy := NewGapStrategy()

	attemptNum := 0
	for attemptNum < *maxAttempts {
		attemptNum++

		if attemptNum > 1 {
			state, err = client.Reset()
			if err != nil {
				log.Printf("Failed to reset: %v", err)
				break
			}
			strategy.Reset()
		}

		log.Printf("\n=== 🚶 Attempt %d/%d (crossings so far: %d) ===", attemptNum, *maxAttempts, state.Crossings)

		for !state.GameOver && state.Crossings < *targetCrossings {
			// The street moves on its own, re-read before every decision
			state, err = client.GetState()
			if err != nil {
				log.Printf("Failed to read state: %v", err)
				time.Sleep(time.Duration(*pollMs) * time.Millisecond)
				continue
			}
			if state.GameOver {
				break
			}

			direction := strategy.NextMove(state)
			if direction == "" {
				// Waiting for a gap
				time.Sleep(time.Duration(*pollMs) * time.Millisecond)
				continue
			}

			if *verbose {
				log.Printf("Tick %d: moving %s from (%.0f,%.0f)", state.Tick, direction, state.Player.X, state.Player.Y)
			}

			newState, err := client.Move(direction)
			if err != nil {
				if newState != nil {
					state = newState
				}
				continue
			}
			state = newState

			time.Sleep(time.Duration(*pollMs) * time.Millisecond)
		}

		log.Printf("Attempt %d: Crossings=%d, Moves=%d, Crashed=%v",
			attemptNum, state.Crossings, state.TotalMoves, state.Crashed)

		if state.Crossings >= *targetCrossings {
			log.Printf("\n🎉 Done! %d crossings in %d moves (attempt %d)", state.Crossings, state.TotalMoves, attemptNum)
			log.Printf("Session: %s", client.sessionID)
			os.Exit(0)
		}

		if state.Crashed {
			log.Printf("💥 Hit by a vehicle at (%.0f,%.0f)", state.Player.X, state.Player.Y)
		}
	}

	log.Printf("\n❌ Gave up after %d attempts with %d crossings", attemptNum, state.Crossings)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}
