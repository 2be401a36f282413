package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"neuro-arena/internal/db"
)

const (
	leaderboardKey     = "leaderboard:total"
	pointsPerLevel     = 500
	scoreRecordTimeout = 5 * time.Second
)

// ScoreKeeper is the persistence collaborator. The coordination core
// hands it finished scores and never waits on the result; with no
// database configured it is a no-op.
type ScoreKeeper struct {
	db   *gorm.DB
	rdb  *redis.Client
	size int
}

func newScoreKeeper(conn *gorm.DB, rdb *redis.Client, size int) *ScoreKeeper {
	return &ScoreKeeper{db: conn, rdb: rdb, size: size}
}

// RecordBattle upserts the user by display name, appends a score row and
// promotes total score and level when the new score beats the stored
// best. Errors are logged, never propagated to gameplay.
func (k *ScoreKeeper) RecordBattle(name, avatar, mode string, score int) {
	if k.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), scoreRecordTimeout)
	defer cancel()

	user, err := k.upsertUser(ctx, name, avatar)
	if err != nil {
		log.Printf("score persist failed player=%s error=%v", name, err)
		return
	}

	record := db.Score{UserID: user.ID, GameMode: mode, Score: score}
	if err := k.db.WithContext(ctx).Create(&record).Error; err != nil {
		log.Printf("score row insert failed player=%s error=%v", name, err)
		return
	}

	updates := map[string]any{
		"games_played": gorm.Expr("games_played + 1"),
	}
	if avatar != "" {
		updates["avatar"] = avatar
	}
	best := user.TotalScore
	if score > best {
		best = score
		updates["total_score"] = score
		updates["level"] = levelForScore(score)
	}
	if err := k.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		log.Printf("user update failed player=%s error=%v", name, err)
		return
	}

	if k.rdb != nil {
		if err := k.rdb.ZAddGT(ctx, leaderboardKey, redis.Z{
			Score:  float64(best),
			Member: name,
		}).Err(); err != nil {
			log.Printf("leaderboard cache update failed player=%s error=%v", name, err)
		}
	}
}

func (k *ScoreKeeper) upsertUser(ctx context.Context, name, avatar string) (db.User, error) {
	var user db.User
	err := k.db.WithContext(ctx).Where("username = ?", name).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}
	user = db.User{Username: name, Avatar: avatar, Level: 1}
	if createErr := k.db.WithContext(ctx).Create(&user).Error; createErr != nil {
		if isUniqueViolation(createErr) {
			// Lost a create race; the row exists now.
			err = k.db.WithContext(ctx).Where("username = ?", name).First(&user).Error
			return user, err
		}
		return user, createErr
	}
	return user, nil
}

// Leaderboard returns the top entries by best total score. The redis
// sorted set is the fast path; postgres is the fallback and the source
// of truth.
func (k *ScoreKeeper) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if k.rdb != nil {
		entries, err := k.leaderboardFromCache(ctx)
		if err == nil {
			return entries, nil
		}
		log.Printf("leaderboard cache read failed error=%v", err)
	}
	if k.db == nil {
		return []LeaderboardEntry{}, nil
	}
	var users []db.User
	if err := k.db.Order("total_score desc").Limit(k.size).Find(&users).Error; err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			Name:   u.Username,
			Score:  u.TotalScore,
			Level:  u.Level,
			Avatar: u.Avatar,
		})
	}
	return entries, nil
}

func (k *ScoreKeeper) leaderboardFromCache(ctx context.Context) ([]LeaderboardEntry, error) {
	members, err := k.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(k.size-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(members))
	for _, member := range members {
		name, _ := member.Member.(string)
		score := int(member.Score)
		entries = append(entries, LeaderboardEntry{
			Name:  name,
			Score: score,
			Level: levelForScore(score),
		})
	}
	return entries, nil
}

func levelForScore(score int) int {
	return score/pointsPerLevel + 1
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
