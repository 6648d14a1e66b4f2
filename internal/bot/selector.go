// Package bot picks moves for computer-controlled players. Scoring is a
// weighted heuristic; the weights only matter through the ordering they
// induce: win > capture > leaving home > safe landing > plain progress.
package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/luminagames/ludo-backend/internal/entity"
	"github.com/luminagames/ludo-backend/internal/rules"
)

const (
	wWin       = 100000.0
	wCapture   = 5000.0
	wPerExtra  = 500.0
	wLeaveHome = 3000.0
	wSafe      = 1500.0
	wEscape    = 800.0
	wProgress  = 10.0
	wLeader    = 300.0
	wStar      = 200.0

	// Hard-only bonuses.
	wBlock   = 1200.0
	wCluster = 250.0

	// Distance within which a piece counts as blocking an opponent's run-in.
	blockWindow = 12
	// Distance within which two own pieces count as clustered.
	clusterWindow = 6

	easyJitter   = 2000.0
	mediumJitter = 150.0

	// Easy sometimes plays the runner-up instead of the best move, but only
	// when the runner-up is close on the un-jittered evaluation. Winning and
	// capturing moves stay out of blunder range.
	easyBlunderChance = 0.3
	easyBlunderGap    = 2500.0
)

type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector() *Selector {
	return NewSelectorWithRand(rand.New(rand.NewSource(time.Now().UnixNano()))) //nolint: gosec // it's ok
}

func NewSelectorWithRand(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// SelectMove scores every legal move and returns the best one, or nil when
// the player has no legal moves for this roll.
func (that *Selector) SelectMove(room *entity.Room, playerID string, roll int, difficulty entity.Difficulty) *rules.Move {
	moves := rules.LegalMoves(room, playerID, roll)
	if len(moves) == 0 {
		return nil
	}

	player := room.PlayerByID(playerID)

	type scored struct {
		move  rules.Move
		score float64
		base  float64
	}

	ranked := make([]scored, 0, len(moves))
	for _, move := range moves {
		base := that.scoreMove(room, player, move, difficulty)

		score := base
		switch difficulty {
		case entity.DifficultyEasy:
			score += that.jitter(easyJitter)
		case entity.DifficultyMedium:
			score += that.jitter(mediumJitter)
		}

		ranked = append(ranked, scored{move: move, score: score, base: base})
	}

	best, second := 0, -1
	for i := 1; i < len(ranked); i++ {
		if ranked[i].score > ranked[best].score {
			second = best
			best = i
		} else if second < 0 || ranked[i].score > ranked[second].score {
			second = i
		}
	}

	if difficulty == entity.DifficultyEasy && second >= 0 &&
		ranked[best].base-ranked[second].base <= easyBlunderGap &&
		that.chance(easyBlunderChance) {
		return &ranked[second].move
	}

	return &ranked[best].move
}

// ThinkDelay returns a randomized pause before the selector's answer is
// applied, purely for pacing. Callers must not hold any room lock while
// waiting it out.
func (that *Selector) ThinkDelay(difficulty entity.Difficulty) time.Duration {
	var low, high time.Duration

	switch difficulty {
	case entity.DifficultyEasy:
		low, high = 800*time.Millisecond, 2*time.Second
	case entity.DifficultyHard:
		low, high = 300*time.Millisecond, time.Second
	default:
		low, high = 500*time.Millisecond, 1500*time.Millisecond
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return low + time.Duration(that.rng.Int63n(int64(high-low)))
}

func (that *Selector) scoreMove(room *entity.Room, player *entity.Player, move rules.Move, difficulty entity.Difficulty) float64 {
	after, _ := rules.ApplyMove(room, move)
	if rules.HasWon(after, player.ID) {
		return wWin
	}

	score := 0.0

	if n := len(move.Captures); n > 0 {
		score += wCapture + float64(n-1)*wPerExtra
	}

	if move.From.Zone == entity.ZoneHome {
		score += wLeaveHome
	}

	if move.To.Zone == entity.ZonePath && entity.IsSafeCell(move.To.Cell) {
		score += wSafe
		if capturableNextRoll(room, room.PieceByID(move.PieceID)) {
			score += wEscape
		}
	}

	piece := room.PieceByID(move.PieceID)
	moved := after.PieceByID(move.PieceID)
	score += float64(piece.DistanceToFinish()-moved.DistanceToFinish()) * wProgress

	if isFurthest(room, player.Color, piece) {
		score += wLeader
	}

	if move.To.Zone == entity.ZonePath && entity.IsStarCell(move.To.Cell) {
		score += wStar
	}

	if difficulty == entity.DifficultyHard {
		if blocksLeadingOpponent(after, player.Color, moved) {
			score += wBlock
		}
		if clustered(after, player.Color, moved) {
			score += wCluster
		}
	}

	return score
}

// capturableNextRoll simulates all six opponent dice values against every
// opponent piece and reports whether any lands on this piece's cell.
func capturableNextRoll(room *entity.Room, piece *entity.Piece) bool {
	if piece.Position.Zone != entity.ZonePath || entity.IsSafeCell(piece.Position.Cell) {
		return false
	}

	for _, player := range room.Players {
		if player.Color == piece.Color {
			continue
		}

		for roll := entity.DiceMin; roll <= entity.DiceMax; roll++ {
			for _, move := range rules.LegalMoves(room, player.ID, roll) {
				for _, id := range move.Captures {
					if id == piece.ID {
						return true
					}
				}
			}
		}
	}

	return false
}

func isFurthest(room *entity.Room, color entity.Color, piece *entity.Piece) bool {
	dist := piece.DistanceToFinish()
	for _, other := range room.PiecesOf(color) {
		if other.ID != piece.ID && other.DistanceToFinish() < dist {
			return false
		}
	}

	return true
}

// blocksLeadingOpponent reports whether the moved piece now stands on the
// run-in of the opponent closest to winning: between that opponent's
// furthest piece and its stretch entry.
func blocksLeadingOpponent(room *entity.Room, mover entity.Color, moved *entity.Piece) bool {
	if moved.Position.Zone != entity.ZonePath {
		return false
	}

	var leader *entity.Piece
	for _, piece := range room.Pieces {
		if piece.Color == mover || piece.Position.Zone != entity.ZonePath {
			continue
		}
		if leader == nil || piece.DistanceToFinish() < leader.DistanceToFinish() {
			leader = piece
		}
	}

	if leader == nil || leader.DistanceToFinish() > blockWindow+entity.StretchLength {
		return false
	}

	ahead := (moved.Position.Cell - leader.Position.Cell + entity.PathLength) % entity.PathLength

	return ahead > 0 && ahead <= blockWindow
}

func clustered(room *entity.Room, color entity.Color, moved *entity.Piece) bool {
	if moved.Position.Zone != entity.ZonePath {
		return false
	}

	for _, other := range room.PiecesOf(color) {
		if other.ID == moved.ID || other.Position.Zone != entity.ZonePath {
			continue
		}

		gap := (moved.Position.Cell - other.Position.Cell + entity.PathLength) % entity.PathLength
		if gap <= clusterWindow || entity.PathLength-gap <= clusterWindow {
			return true
		}
	}

	return false
}

func (that *Selector) jitter(width float64) float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return (that.rng.Float64()*2 - 1) * width
}

func (that *Selector) chance(p float64) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.Float64() < p
}
