package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case RegisterResult:
		o.printRegisterResult(v)
	case Profile:
		o.printProfile(v)
	case Message:
		fmt.Println(v.Message)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User      `json:"user"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TwoFactorSetup is returned when registering with two-factor enabled
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

// RegisterResult response type
type RegisterResult struct {
	Outcome   string          `json:"outcome"`
	Message   string          `json:"message"`
	User      User            `json:"user"`
	TwoFactor *TwoFactorSetup `json:"two_factor,omitempty"`
}

// Message response type
type Message struct {
	Message string `json:"message"`
}

// Stats response type
type Stats struct {
	Played   int `json:"played"`
	Won      int `json:"won"`
	Lost     int `json:"lost"`
	Drawn    int `json:"drawn"`
	NotEnded int `json:"not_ended"`
}

// MatchPlayer response type
type MatchPlayer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Symbol string `json:"symbol"`
}

// Match response type
type Match struct {
	GameID    int64       `json:"game_id"`
	PlayerOne MatchPlayer `json:"player_one"`
	PlayerTwo MatchPlayer `json:"player_two"`
	Winner    string      `json:"winner"`
	CreatedAt time.Time   `json:"created_at"`
}

// Profile response type
type Profile struct {
	User        User    `json:"user"`
	MemberSince string  `json:"member_since"`
	Stats       Stats   `json:"stats"`
	History     []Match `json:"history"`
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	Server    string `json:"server,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%d)\n", u.Name, u.ID)
	fmt.Printf("Email: %s\n", u.Email)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printRegisterResult(r RegisterResult) {
	fmt.Println(r.Message)
	o.printUser(r.User)
	if r.TwoFactor != nil {
		fmt.Println("\nTwo-factor authentication enabled.")
		fmt.Printf("Secret: %s\n", r.TwoFactor.Secret)
		fmt.Println("Add the secret to an authenticator app, or use --output json to get the QR code.")
	}
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("%s <%s>\n", p.User.Name, p.User.Email)
	fmt.Printf("Member since: %s\n", p.MemberSince)
	fmt.Printf("Played: %d  Won: %d  Lost: %d  Drawn: %d\n",
		p.Stats.Played, p.Stats.Won, p.Stats.Lost, p.Stats.Drawn)

	if len(p.History) == 0 {
		return
	}
	fmt.Printf("\nHistory (%d):\n", len(p.History))
	for _, m := range p.History {
		fmt.Printf("  #%d  %s (%s) vs %s (%s)  %s  %s\n",
			m.GameID,
			m.PlayerOne.Name, m.PlayerOne.Symbol,
			m.PlayerTwo.Name, m.PlayerTwo.Symbol,
			resultFor(m),
			m.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
}

// resultFor describes a match from player one's side
func resultFor(m Match) string {
	switch m.Winner {
	case "draw":
		return "draw"
	case m.PlayerOne.Symbol:
		return "won"
	default:
		return "lost"
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.Server != "" {
		fmt.Printf("Server: %s\n", h.Server)
	}
	fmt.Printf("Latency: %dms\n", h.LatencyMS)
}
