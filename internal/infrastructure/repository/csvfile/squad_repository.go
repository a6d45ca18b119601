// Package csvfile loads roster snapshots from Fantrax CSV exports. The
// export interleaves two sections (Goalkeeper and Outfielder) that carry
// different column sets, each introduced by its own header row.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lineupwatch/lineup-tracker/internal/domain/squad"
	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

const (
	sectionGoalkeeper = "Goalkeeper"
	sectionOutfielder = "Outfielder"
)

var positionCodes = map[string]string{
	"G": squad.PositionGoalkeeper,
	"D": squad.PositionDefender,
	"M": squad.PositionMidfielder,
	"F": squad.PositionForward,
}

type SquadRepository struct {
	path   string
	logger *logging.Logger
	now    func() time.Time
}

func NewSquadRepository(path string, logger *logging.Logger) *SquadRepository {
	if logger == nil {
		logger = logging.Default()
	}

	return &SquadRepository{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

func (r *SquadRepository) Load(ctx context.Context) (squad.Squad, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("open roster file: %w", err)
	}
	defer file.Close()

	players, err := r.parse(ctx, file)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("parse roster file %s: %w", r.path, err)
	}

	return squad.Squad{
		Players:   players,
		LoadedAt:  r.now(),
		SourceRef: r.path,
	}, nil
}

func (r *SquadRepository) parse(ctx context.Context, source io.Reader) ([]squad.Player, error) {
	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		players []squad.Player
		section string
		headers []string
		line    int
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			r.logger.WarnContext(ctx, "skipping malformed roster line", "line", line, "error", err)
			continue
		}
		if len(row) == 0 {
			continue
		}

		// Section marker rows carry the section name in the second column.
		if len(row) >= 2 && (row[1] == sectionGoalkeeper || row[1] == sectionOutfielder) {
			section = row[1]
			headers = nil
			continue
		}

		if row[0] == "ID" {
			headers = append([]string(nil), row...)
			continue
		}

		// Player rows have a Fantrax ID starting with an asterisk.
		if !strings.HasPrefix(row[0], "*") || headers == nil || section == "" {
			continue
		}

		player, ok := buildPlayer(row, headers, section)
		if !ok {
			r.logger.WarnContext(ctx, "skipping roster row with missing core fields", "line", line)
			continue
		}
		players = append(players, player)
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("no players found")
	}

	r.logger.InfoContext(ctx, "roster parsed", "path", r.path, "players", len(players))
	return players, nil
}

func buildPlayer(row, headers []string, section string) (squad.Player, bool) {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if i < len(row) {
			fields[header] = strings.TrimSpace(row[i])
		}
	}

	id := fields["ID"]
	name := fields["Player"]
	teamAbbrev := fields["Team"]
	if id == "" || name == "" || teamAbbrev == "" {
		return squad.Player{}, false
	}

	return squad.Player{
		ID:              id,
		Name:            name,
		TeamName:        squad.FullTeamName(teamAbbrev),
		TeamAbbrev:      teamAbbrev,
		Position:        resolvePosition(fields["Pos"], section),
		Status:          resolveStatus(fields["Status"]),
		FantasyPoints:   parseFloat(fields["Fantasy Points"]),
		AveragePoints:   parseFloat(fields["Average Fantasy Points per Game"]),
		GamesPlayed:     parseInt(fields["GP"]),
		DraftPercentage: fields["% of leagues in which player was drafted"],
	}, true
}

func resolvePosition(code, section string) string {
	if pos, ok := positionCodes[code]; ok {
		return pos
	}
	if section == sectionGoalkeeper {
		return squad.PositionGoalkeeper
	}
	return squad.PositionMidfielder
}

// resolveStatus defaults unknown markers to reserve so a parsing surprise
// never fabricates a starting expectation.
func resolveStatus(value string) string {
	if strings.EqualFold(value, squad.StatusActive) {
		return squad.StatusActive
	}
	return squad.StatusReserve
}

func parseFloat(value string) float64 {
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseInt(value string) int {
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
