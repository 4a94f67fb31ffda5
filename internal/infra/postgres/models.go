package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quiz-economy-service/internal/domain"
)

type playerRow struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	Username string    `bun:"username,notnull"`
	Balance  int64     `bun:"balance,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Text   string `bun:"text,notnull"`
	QuizID int64  `bun:"quiz_id,notnull"`
}

type historyRow struct {
	bun.BaseModel `bun:"table:history,alias:h"`

	ID             int64     `bun:"id,pk,autoincrement"`
	PlayerID       uuid.UUID `bun:"player_id,type:uuid,notnull"`
	QuizID         int64     `bun:"quiz_id,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	CorrectAnswers int       `bun:"correct_answers,notnull"`
	Effectiveness  float64   `bun:"effectiveness,notnull"`
	Timestamp      time.Time `bun:"timestamp,notnull"`
}

func historyFromDomain(h domain.PlayHistory) historyRow {
	return historyRow{
		ID:             h.ID,
		PlayerID:       h.PlayerID,
		QuizID:         h.QuizID,
		TotalQuestions: h.TotalQuestions,
		CorrectAnswers: h.CorrectAnswers,
		Effectiveness:  h.Effectiveness,
		Timestamp:      h.Timestamp,
	}
}

func (r historyRow) toDomain() domain.PlayHistory {
	return domain.PlayHistory{
		ID:             r.ID,
		PlayerID:       r.PlayerID,
		QuizID:         r.QuizID,
		CorrectAnswers: r.CorrectAnswers,
		TotalQuestions: r.TotalQuestions,
		Effectiveness:  r.Effectiveness,
		Timestamp:      r.Timestamp.UTC(),
	}
}

type rewardRow struct {
	bun.BaseModel `bun:"table:rewards,alias:r"`

	ID       int64     `bun:"id,pk,autoincrement"`
	PlayerID uuid.UUID `bun:"player_id,type:uuid,notnull"`
	QuizID   int64     `bun:"quiz_id,notnull"`
	Reward   string    `bun:"reward,notnull"`
	Value    int64     `bun:"value,notnull"`
}

func rewardFromDomain(r domain.Reward) rewardRow {
	return rewardRow{ID: r.ID, PlayerID: r.PlayerID, QuizID: r.QuizID, Reward: r.Reward, Value: r.Value}
}

func (r rewardRow) toDomain() domain.Reward {
	return domain.Reward{ID: r.ID, PlayerID: r.PlayerID, QuizID: r.QuizID, Reward: r.Reward, Value: r.Value}
}

type listingRow struct {
	bun.BaseModel `bun:"table:shop,alias:s"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Name   string `bun:"name,notnull"`
	Value  int64  `bun:"value,notnull"`
	QuizID int64  `bun:"quiz_id,notnull"`
}

func listingFromDomain(l domain.ShopListing) listingRow {
	return listingRow{ID: l.ID, Name: l.Name, Value: l.Value, QuizID: l.QuizID}
}

func (r listingRow) toDomain() domain.ShopListing {
	return domain.ShopListing{ID: r.ID, Name: r.Name, Value: r.Value, QuizID: r.QuizID}
}
