package model

import "time"

// GameID uniquely identifies a recorded game
type GameID int64

// Symbols played on the board, and the winner value of a drawn game
const (
	SymbolX    = "X"
	SymbolO    = "O"
	WinnerDraw = "draw"
)

// Game is a recorded tic-tac-toe game.
// Winner is nil while the game is in progress, WinnerDraw for a draw,
// otherwise the symbol of the winning participant.
type Game struct {
	ID        GameID
	Winner    *string
	CreatedAt time.Time
}

// IsEnded reports whether the game has a recorded result
func (g *Game) IsEnded() bool {
	return g.Winner != nil
}

// Participation links a user to a game with the symbol they played
type Participation struct {
	UserID UserID
	GameID GameID
	Symbol string
}

// ParticipationResult is one participation of a user joined with its game's winner
type ParticipationResult struct {
	Winner *string
	Symbol string
}

// MatchPlayer is one side of a finished match
type MatchPlayer struct {
	ID     UserID
	Name   string
	Email  string
	Symbol string
}

// Match is a completed two-player game as shown in a profile history
type Match struct {
	GameID    GameID
	PlayerOne MatchPlayer
	PlayerTwo MatchPlayer
	Winner    string
	CreatedAt time.Time
}
